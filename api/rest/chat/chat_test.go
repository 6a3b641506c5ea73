package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/recommend"
	"github.com/AndreySuncov/bot-exam/internal/sessions"
	"github.com/AndreySuncov/bot-exam/internal/shell"
)

type staticRetriever struct{ texts []string }

func (s staticRetriever) Retrieve(context.Context, string, corpus.Program) ([]string, error) {
	return s.texts, nil
}

type staticCounter map[corpus.Program]int

func (s staticCounter) CountByProgram() map[corpus.Program]int { return s }

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	sh := shell.New(sessions.NewManager(time.Hour), staticRetriever{texts: []string{"Стоимость обучения указана на сайте."}}, recommend.Default(), shell.Config{})
	store := NewCookieStore("test-secret-test-secret-test-sec", time.Hour, false)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), sh, store, staticCounter{corpus.ProgramAI: 12, corpus.ProgramAIProduct: 9})

	return router
}

func post(t *testing.T, router *gin.Engine, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp Response
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}

	return w, resp
}

func cookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == CookieName {
			return cookie
		}
	}

	t.Fatal("conversation cookie not set")
	return nil
}

func TestChatConversationByCookie(t *testing.T) {
	router := newRouter()

	w, resp := post(t, router, "/api/v1/chat", `{"message":"ai"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.ConversationID, 36)
	assert.Equal(t, sessions.StateActive, resp.State)
	assert.Equal(t, corpus.ProgramAI, resp.Program)

	cookie := cookieFrom(t, w)
	assert.True(t, cookie.HttpOnly)

	w, next := post(t, router, "/api/v1/chat", `{"message":"сколько стоит обучение?"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resp.ConversationID, next.ConversationID)
	assert.Equal(t, []string{"Стоимость обучения указана на сайте."}, next.Messages)
}

func TestChatExplicitConversationID(t *testing.T) {
	router := newRouter()

	w, resp := post(t, router, "/api/v1/chat", `{"message":"ai_product","conversation_id":"tg-42"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tg-42", resp.ConversationID)

	// a request without cookie or id starts a different conversation
	w, other := post(t, router, "/api/v1/chat", `{"message":"что изучают?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "tg-42", other.ConversationID)
	assert.Equal(t, sessions.StateAwaitingProgram, other.State)
	assert.Equal(t, []string{"ai", "ai_product"}, other.Options)

	w, again := post(t, router, "/api/v1/chat", `{"message":"я знаю python","conversation_id":"tg-42"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, corpus.ProgramAIProduct, again.Program)
	require.Len(t, again.Messages, 1)
	assert.Contains(t, again.Messages[0], "Основы программирования на Python")
}

func TestChatRejectsBadInput(t *testing.T) {
	router := newRouter()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"message":`},
		{name: "too long", body: `{"message":"` + strings.Repeat("a", 5001) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := post(t, router, "/api/v1/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestReset(t *testing.T) {
	router := newRouter()

	w, _ := post(t, router, "/api/v1/chat", `{"message":"ai"}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := cookieFrom(t, w)

	w, resp := post(t, router, "/api/v1/chat/reset", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sessions.StateAwaitingProgram, resp.State)
	assert.Empty(t, resp.Program)
	assert.Equal(t, []string{"ai", "ai_product"}, resp.Options)
	require.Len(t, resp.Messages, 1)
	assert.True(t, strings.HasPrefix(resp.Messages[0], "Привет!"))
}

func TestPrograms(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/programs", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.JSONEq(t, `{"programs":[{"name":"ai","fragments":12},{"name":"ai_product","fragments":9}]}`, w.Body.String())
}
