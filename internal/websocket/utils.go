package websocket

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// builds a message with the payload marshaled; a nil payload is omitted
func NewMessage(messageType, conversationID string, payload any) (*Message, error) {
	msg := &Message{
		Type:           messageType,
		ConversationID: conversationID,
		Timestamp:      time.Now(),
	}

	if payload == nil {
		return msg, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg.Payload = raw

	return msg, nil
}

// returns an upgrader origin check. outside production every origin is
// accepted; in production only the configured ones are.
func NewOriginChecker(allowedOrigins []string, production bool) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if !production {
			return true
		}

		if origin == "" {
			logger.Warn("websocket connection with no origin header")
			return false
		}

		if len(allowedOrigins) == 0 {
			logger.Warn("websocket origin rejected - CORS_ORIGINS not configured",
				"origin", origin,
			)
			return false
		}

		if slices.Contains(allowedOrigins, origin) {
			return true
		}

		logger.Warn("websocket origin rejected - not in allowed origins",
			"origin", origin,
			"allowed_origins", allowedOrigins,
		)

		return false
	}
}
