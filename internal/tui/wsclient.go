package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// websocket message types shared with the server
const (
	typeChatMessage    = "chat_message"
	typeReset          = "reset"
	typeReply          = "reply"
	typeSessionState   = "session_state"
	typeError          = "error"
	typeServerShutdown = "server_shutdown"
)

var ErrNotConnected = errors.New("not connected")

type wsMessage struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id"`
	Timestamp      time.Time       `json:"timestamp"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type wsChatPayload struct {
	Message string `json:"message"`
}

type wsReplyPayload struct {
	Text    string   `json:"text"`
	Part    int      `json:"part"`
	Parts   int      `json:"parts"`
	Options []string `json:"options,omitempty"`
	State   string   `json:"state"`
	Program string   `json:"program,omitempty"`
}

type wsSessionState struct {
	ConversationID string   `json:"conversation_id"`
	Options        []string `json:"options"`
}

// talks to the chat over a websocket; one request is in flight at a time
type WSClient struct {
	endpoint string

	mu             sync.Mutex // guards conn writes and state
	conn           *websocket.Conn
	connected      bool
	conversationID string
	programs       []string

	reqMu    sync.Mutex
	incoming chan wsMessage
	done     chan struct{} // closed when the read pump exits
	quit     chan struct{} // closed by Close
}

// creates a websocket client for a server base URL (http or ws scheme)
func NewWSClient(endpoint string) (*WSClient, error) {
	wsURL, err := websocketURL(endpoint)
	if err != nil {
		return nil, err
	}

	return &WSClient{endpoint: wsURL}, nil
}

// maps a server base URL to its websocket endpoint
func websocketURL(endpoint string) (string, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid endpoint %q: unsupported scheme", endpoint)
	}

	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path += "/api/v1/ws"
	}

	return u.String(), nil
}

// dials the server and waits for the session state; conversationID may be empty
func (c *WSClient) Connect(ctx context.Context, conversationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	target := c.endpoint
	if conversationID != "" {
		target += "?conversation_id=" + url.QueryEscape(conversationID)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec

	var stateMsg wsMessage
	if err := conn.ReadJSON(&stateMsg); err != nil {
		conn.Close() //nolint:errcheck,gosec
		return fmt.Errorf("failed to read session state: %w", err)
	}

	if stateMsg.Type != typeSessionState {
		conn.Close() //nolint:errcheck,gosec
		return fmt.Errorf("unexpected first message: %s", stateMsg.Type)
	}

	var state wsSessionState
	if err := json.Unmarshal(stateMsg.Payload, &state); err != nil {
		conn.Close() //nolint:errcheck,gosec
		return fmt.Errorf("failed to parse session state: %w", err)
	}

	c.conn = conn
	c.conversationID = state.ConversationID
	c.programs = state.Options
	c.connected = true
	c.incoming = make(chan wsMessage, 16)
	c.done = make(chan struct{})
	c.quit = make(chan struct{})

	go c.readPump(conn, c.incoming, c.done, c.quit)
	go c.pingPump(c.done)

	return nil
}

// returns the conversation the server bound this connection to
func (c *WSClient) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conversationID
}

// returns the program names announced on connect
func (c *WSClient) Programs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.programs
}

// returns whether the client is connected
func (c *WSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// closes the websocket connection
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return
	}

	c.conn.WriteControl(websocket.CloseMessage, //nolint:errcheck,gosec
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.conn.Close() //nolint:errcheck,gosec
	c.conn = nil
	c.connected = false

	close(c.quit)
}

// sends one user message and collects every chunk of the answer
func (c *WSClient) Send(ctx context.Context, text string) (*Reply, error) {
	payload, err := json.Marshal(wsChatPayload{Message: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return c.request(ctx, typeChatMessage, payload)
}

// starts the conversation over and returns the greeting
func (c *WSClient) Reset(ctx context.Context) (*Reply, error) {
	return c.request(ctx, typeReset, nil)
}

func (c *WSClient) request(ctx context.Context, msgType string, payload json.RawMessage) (*Reply, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}

	incoming, done := c.incoming, c.done
	reply := &Reply{ConversationID: c.conversationID}

	// frames left over from a request that timed out
	drain(incoming)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec
	err := c.conn.WriteJSON(wsMessage{
		Type:           msgType,
		ConversationID: c.conversationID,
		Timestamp:      time.Now(),
		Payload:        payload,
	})
	c.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-done:
			return nil, ErrNotConnected

		case msg := <-incoming:
			finished, err := collect(reply, msg)
			if err != nil {
				return nil, err
			}

			if finished {
				return reply, nil
			}
		}
	}
}

func drain(incoming chan wsMessage) {
	for {
		select {
		case <-incoming:
		default:
			return
		}
	}
}

// folds one server frame into reply; reports whether the answer is complete
func collect(reply *Reply, msg wsMessage) (bool, error) {
	switch msg.Type {
	case typeReply:
		var part wsReplyPayload
		if err := json.Unmarshal(msg.Payload, &part); err != nil {
			return false, fmt.Errorf("failed to parse reply: %w", err)
		}

		reply.Messages = append(reply.Messages, part.Text)
		reply.State = part.State
		reply.Program = part.Program

		if part.Part < part.Parts {
			return false, nil
		}

		reply.Options = part.Options

		return true, nil

	case typeError:
		var errResp errorResponse
		if err := json.Unmarshal(msg.Payload, &errResp); err != nil {
			return false, fmt.Errorf("failed to parse error: %w", err)
		}

		return false, fmt.Errorf("%s: %s", errResp.Error, errResp.Message)

	case typeServerShutdown:
		return false, errors.New("server is shutting down")

	default:
		return false, nil
	}
}

// sends periodic pings to keep the connection alive
func (c *WSClient) pingPump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		c.mu.Lock()

		if !c.connected || c.conn == nil {
			c.mu.Unlock()
			return
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec
		if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

// reads frames and hands them to the request waiting for them
func (c *WSClient) readPump(conn *websocket.Conn, incoming chan<- wsMessage, done, quit chan struct{}) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.connected = false
		}
		c.mu.Unlock()

		conn.Close() //nolint:errcheck,gosec
		close(done)
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case typeReply, typeError, typeServerShutdown:
			select {
			case incoming <- msg:
			case <-quit:
				return
			}
		default:
			// pong and anything unknown
		}
	}
}
