package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/shell"
	"github.com/AndreySuncov/bot-exam/internal/sessions"
)

type fakeChatter struct {
	reply         shell.Reply
	err           error
	texts         []string
	conversations []string
}

func (f *fakeChatter) Handle(_ context.Context, conversationID, text string) (shell.Reply, error) {
	f.texts = append(f.texts, text)
	f.conversations = append(f.conversations, conversationID)
	return f.reply, f.err
}

func (f *fakeChatter) Reset(string) (shell.Reply, error) {
	return f.reply, f.err
}

func newTestClient(hub *Hub, id string) *Client {
	return &Client{
		ID:             id,
		ConversationID: id,
		hub:            hub,
		send:           make(chan []byte, 256),
		now:            time.Now,
	}
}

func drain(t *testing.T, c *Client) []Message {
	t.Helper()

	var out []Message

	for {
		select {
		case raw := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			out = append(out, msg)
		default:
			return out
		}
	}
}

func chatMessage(t *testing.T, clientID, text string) *Message {
	t.Helper()

	msg, err := NewMessage(TypeChatMessage, clientID, ChatMessagePayload{Message: text})
	require.NoError(t, err)
	msg.ClientID = clientID

	return msg
}

func registered(hub *Hub, c *Client) {
	hub.mu.Lock()
	hub.clients[c.ID] = c
	hub.mu.Unlock()
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TypePong, "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, TypePong, msg.Type)
	assert.Nil(t, msg.Payload)

	msg, err = NewMessage(TypeReply, "c1", ReplyPayload{Text: "ok", Part: 1, Parts: 1, State: "active"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"ok","part":1,"parts":1,"state":"active"}`, string(msg.Payload))
}

func TestChatHandlerSendsOneFramePerChunk(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "c1")
	registered(hub, client)

	chatter := &fakeChatter{reply: shell.Reply{
		Messages: []string{"part one", "part two"},
		Options:  []string{"ai", "ai_product"},
		State:    sessions.StateAwaitingProgram,
	}}
	hub.RegisterHandler(TypeChatMessage, ChatHandler(chatter))

	hub.handleMessage(chatMessage(t, "c1", "hello"))

	frames := drain(t, client)
	require.Len(t, frames, 2)
	assert.Equal(t, []string{"hello"}, chatter.texts)

	var first, last ReplyPayload
	require.NoError(t, json.Unmarshal(frames[0].Payload, &first))
	require.NoError(t, json.Unmarshal(frames[1].Payload, &last))

	assert.Equal(t, TypeReply, frames[0].Type)
	assert.Equal(t, "part one", first.Text)
	assert.Equal(t, 1, first.Part)
	assert.Equal(t, 2, first.Parts)
	assert.Empty(t, first.Options)
	assert.Equal(t, []string{"ai", "ai_product"}, last.Options)
	assert.Less(t, frames[0].Sequence, frames[1].Sequence)
}

func TestChatHandlerRejections(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "c1")
	registered(hub, client)

	chatter := &fakeChatter{reply: shell.Reply{Messages: []string{"ok"}}}
	hub.RegisterHandler(TypeChatMessage, ChatHandler(chatter))

	huge := make([]rune, maxChatMessageSize+1)
	for i := range huge {
		huge[i] = 'я'
	}

	hub.handleMessage(chatMessage(t, "c1", string(huge)))

	bad := &Message{Type: TypeChatMessage, ClientID: "c1", Payload: json.RawMessage(`"not an object"`)}
	hub.handleMessage(bad)

	unknown := &Message{Type: "code_update", ClientID: "c1"}
	hub.handleMessage(unknown)

	frames := drain(t, client)
	require.Len(t, frames, 3)

	for _, frame := range frames {
		assert.Equal(t, TypeError, frame.Type)
	}

	assert.Empty(t, chatter.texts)
}

func TestChatHandlerError(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "c1")
	registered(hub, client)

	hub.RegisterHandler(TypeChatMessage, ChatHandler(&fakeChatter{err: errors.New("boom")}))
	hub.handleMessage(chatMessage(t, "c1", "hi"))

	frames := drain(t, client)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeError, frames[0].Type)
	assert.Contains(t, string(frames[0].Payload), "server_error")
}

func TestResetHandler(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "c1")
	registered(hub, client)

	hub.RegisterHandler(TypeReset, ResetHandler(&fakeChatter{reply: shell.Reply{
		Messages: []string{"hi"},
		Options:  corpus.ProgramNames(),
		State:    sessions.StateAwaitingProgram,
	}}))
	hub.handleMessage(&Message{Type: TypeReset, ClientID: "c1"})

	frames := drain(t, client)
	require.Len(t, frames, 1)

	var payload ReplyPayload
	require.NoError(t, json.Unmarshal(frames[0].Payload, &payload))
	assert.Equal(t, "awaiting_program", payload.State)
	assert.Equal(t, []string{"ai", "ai_product"}, payload.Options)
}

func TestChatRateLimit(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	client := newTestClient(NewHub(), "c1")
	client.now = func() time.Time { return now }

	for range maxChatMessagesPerMinute {
		assert.True(t, client.checkChatRateLimit())
	}

	assert.False(t, client.checkChatRateLimit())

	now = now.Add(61 * time.Second)
	assert.True(t, client.checkChatRateLimit())
}

func TestClientSendAfterClose(t *testing.T) {
	client := newTestClient(NewHub(), "c1")
	client.Close()
	client.Close()

	assert.True(t, client.IsClosed())

	msg, err := NewMessage(TypePong, "c1", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, client.Send(msg), ErrConnectionClosed)
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	disconnected := make(chan string, 1)
	hub.OnClientDisconnect(func(c *Client) { disconnected <- c.ID })

	client := newTestClient(hub, "c1")
	client.IPAddress = "10.0.0.1"
	hub.TrackIPConnection("10.0.0.1")

	hub.Register <- client

	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 1 && len(client.send) == 1
	}, time.Second, 5*time.Millisecond)

	frames := drain(t, client)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeSessionState, frames[0].Type)

	var state SessionStatePayload
	require.NoError(t, json.Unmarshal(frames[0].Payload, &state))
	assert.Equal(t, "c1", state.ConversationID)
	assert.Equal(t, []string{"ai", "ai_product"}, state.Options)

	hub.Unregister <- client

	select {
	case id := <-disconnected:
		assert.Equal(t, "c1", id)
	case <-time.After(time.Second):
		t.Fatal("disconnect callback not called")
	}

	assert.Zero(t, hub.GetClientCount())
	assert.True(t, client.IsClosed())

	ok, _ := hub.CanAcceptConnection("10.0.0.1")
	assert.True(t, ok)
}

func TestHubClientsSharingConversation(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	chatter := &fakeChatter{reply: shell.Reply{Messages: []string{"ok"}}}
	hub.RegisterHandler(TypeChatMessage, ChatHandler(chatter))

	first := newTestClient(hub, "first")
	second := newTestClient(hub, "second")

	for _, c := range []*Client{first, second} {
		c.ConversationID = "shared"
		c.IPAddress = "10.0.0.3"
		hub.TrackIPConnection("10.0.0.3")
		hub.Register <- c
	}

	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 2 && len(first.send) == 1 && len(second.send) == 1
	}, time.Second, 5*time.Millisecond)

	drain(t, first)
	drain(t, second)

	hub.handleMessage(chatMessage(t, "first", "ai"))

	frames := drain(t, first)
	require.Len(t, frames, 1)
	assert.Equal(t, "shared", frames[0].ConversationID)
	assert.Empty(t, drain(t, second))
	assert.Equal(t, []string{"shared"}, chatter.conversations)

	hub.Unregister <- first
	hub.Unregister <- second

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		_, tracked := hub.ipConnections["10.0.0.3"]
		hub.mu.RUnlock()

		return hub.GetClientCount() == 0 && !tracked
	}, time.Second, 5*time.Millisecond)
}

func TestConnectionLimitPerIP(t *testing.T) {
	hub := NewHub()

	for range maxConnectionsPerIP {
		hub.TrackIPConnection("10.0.0.2")
	}

	ok, reason := hub.CanAcceptConnection("10.0.0.2")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	hub.UntrackIPConnection("10.0.0.2")

	ok, _ = hub.CanAcceptConnection("10.0.0.2")
	assert.True(t, ok)
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		allowed    []string
		production bool
		want       bool
	}{
		{name: "development accepts anything", origin: "http://evil.example", want: true},
		{name: "development accepts missing origin", want: true},
		{name: "production allowed", origin: "https://bot.example", allowed: []string{"https://bot.example"}, production: true, want: true},
		{name: "production rejected", origin: "https://evil.example", allowed: []string{"https://bot.example"}, production: true},
		{name: "production missing origin", allowed: []string{"https://bot.example"}, production: true},
		{name: "production unconfigured", origin: "https://bot.example", production: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}

			assert.Equal(t, tt.want, NewOriginChecker(tt.allowed, tt.production)(r))
		})
	}
}
