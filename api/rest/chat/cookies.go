package chat

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// creates the cookie store that carries conversation IDs between requests
func NewCookieStore(secret string, ttl time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

// picks the conversation for this request: explicit ID, then cookie, then
// a fresh one. the choice is written back to the cookie.
func resolveConversation(c *gin.Context, store sessions.Store, requested string) string {
	session, err := store.Get(c.Request, CookieName)
	if err != nil {
		logger.Debug("discarding unreadable conversation cookie", "error", err)
	}

	id := requested

	if id == "" {
		if stored, ok := session.Values[conversationKey].(string); ok {
			id = stored
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	session.Values[conversationKey] = id

	if err := session.Save(c.Request, c.Writer); err != nil {
		logger.Warn("failed to save conversation cookie",
			"conversation_id", id,
			"error", err,
		)
	}

	return id
}
