package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(t *testing.T, msgType string, payload any) wsMessage {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	return wsMessage{Type: msgType, ConversationID: "conv-ws", Timestamp: time.Now(), Payload: raw}
}

// fakeHub answers chat messages with two reply chunks and "boom" with an error frame
func fakeHub(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close() //nolint:errcheck

		id := r.URL.Query().Get("conversation_id")
		if id == "" {
			id = "conv-ws"
		}

		if err := conn.WriteJSON(frame(t, typeSessionState, wsSessionState{
			ConversationID: id,
			Options:        []string{"ai", "ai_product"},
		})); err != nil {
			return
		}

		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}

			switch msg.Type {
			case typeReset:
				conn.WriteJSON(frame(t, typeReply, wsReplyPayload{ //nolint:errcheck
					Text: "Выберите программу", Part: 1, Parts: 1,
					Options: []string{"ai", "ai_product"}, State: stateAwaitingProgram,
				}))

			case typeChatMessage:
				var payload wsChatPayload
				json.Unmarshal(msg.Payload, &payload) //nolint:errcheck

				if payload.Message == "boom" {
					conn.WriteJSON(frame(t, typeError, errorResponse{Error: "server_error", Message: "failed"})) //nolint:errcheck
					continue
				}

				conn.WriteJSON(frame(t, typeReply, wsReplyPayload{Text: "первая часть", Part: 1, Parts: 2, State: "active", Program: "ai"}))                                    //nolint:errcheck
				conn.WriteJSON(frame(t, typeReply, wsReplyPayload{Text: "вторая часть", Part: 2, Parts: 2, State: "active", Program: "ai", Options: []string{"/start"}})) //nolint:errcheck
			}
		}
	}))
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
		wantErr  bool
	}{
		{endpoint: "http://localhost:8080", want: "ws://localhost:8080/api/v1/ws"},
		{endpoint: "https://bot.example/", want: "wss://bot.example/api/v1/ws"},
		{endpoint: "ws://localhost:8080/api/v1/ws", want: "ws://localhost:8080/api/v1/ws"},
		{endpoint: "ftp://localhost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := websocketURL(tt.endpoint)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWSClientConversation(t *testing.T) {
	srv := fakeHub(t)
	defer srv.Close()

	client, err := NewWSClient(strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = client.Send(ctx, "ai")
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, client.Connect(ctx, "conv-42"))
	defer client.Close()

	assert.True(t, client.IsConnected())
	assert.Equal(t, "conv-42", client.ConversationID())
	assert.Equal(t, []string{"ai", "ai_product"}, client.Programs())

	greeting, err := client.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Выберите программу"}, greeting.Messages)
	assert.Equal(t, stateAwaitingProgram, greeting.State)

	reply, err := client.Send(ctx, "ai")
	require.NoError(t, err)
	assert.Equal(t, []string{"первая часть", "вторая часть"}, reply.Messages)
	assert.Equal(t, []string{"/start"}, reply.Options)
	assert.Equal(t, "ai", reply.Program)
	assert.Equal(t, "conv-42", reply.ConversationID)

	_, err = client.Send(ctx, "boom")
	require.Error(t, err)
	assert.Equal(t, "server_error: failed", err.Error())
}

func TestWSClientClose(t *testing.T) {
	srv := fakeHub(t)
	defer srv.Close()

	client, err := NewWSClient(srv.URL)
	require.NoError(t, err)

	// fake hub serves every path
	require.NoError(t, client.Connect(context.Background(), ""))
	assert.Equal(t, "conv-ws", client.ConversationID())

	client.Close()
	client.Close()

	assert.False(t, client.IsConnected())

	_, err = client.Send(context.Background(), "ai")
	assert.ErrorIs(t, err, ErrNotConnected)
}
