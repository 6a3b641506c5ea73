package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AndreySuncov/bot-exam/internal/shell"
)

// message type constants for websocket communication
const (
	// is sent by the user with a question or a program choice
	TypeChatMessage = "chat_message"

	// is sent by the user to start the conversation over
	TypeReset = "reset"

	// is sent by server with one chunk of an answer
	TypeReply = "reply"

	// is sent to connecting client with conversation info
	TypeSessionState = "session_state"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	// time allowed for one answer, embedding included
	handlerTimeout = 30 * time.Second

	maxChatMessagesPerMinute = 20
	maxChatMessageSize       = 5000 // characters
)

// hub connection limit constants
const (
	maxConnectionsPerIP = 10
)

// errors
var (
	ErrInvalidMessage    = errors.New("invalid message format")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrMessageTooLarge   = errors.New("message too large")
)

// represents a websocket message with typed payload
type Message struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id"`
	ClientID       string          `json:"-"` // internal only, not sent to clients
	Timestamp      time.Time       `json:"timestamp"`
	Sequence       uint64          `json:"seq,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// contains a chat message from the user
type ChatMessagePayload struct {
	Message string `json:"message"`
}

// contains one chunk of the shell reply. Part counts from 1.
type ReplyPayload struct {
	Text    string   `json:"text"`
	Part    int      `json:"part"`
	Parts   int      `json:"parts"`
	Options []string `json:"options,omitempty"`
	State   string   `json:"state"`
	Program string   `json:"program,omitempty"`
}

// contains conversation info sent to connecting client
type SessionStatePayload struct {
	ConversationID string   `json:"conversation_id"`
	Options        []string `json:"options"`
}

// contains information about server shutdown
type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// what the hub needs from the conversation shell
type Chatter interface {
	Handle(ctx context.Context, conversationID, text string) (shell.Reply, error)
	Reset(conversationID string) (shell.Reply, error)
}

// represents one websocket connection
type Client struct {
	// unique per connection
	ID string

	// conversation this connection drives; several connections may share it
	ConversationID string

	// IP address of the client (for connection tracking)
	IPAddress string

	// websocket connection
	conn *websocket.Conn

	// hub reference for message dispatch
	hub *Hub

	// buffered channel of outbound messages
	send chan []byte

	// mutex for thread-safe operations
	mu sync.RWMutex

	// flag indicating if client is closed
	closed bool

	// per-client outbound sequence
	sequence uint64

	// rate limiting: chat message timestamps (sliding window)
	chatMessageTimestamps []time.Time

	// clock, replaced in tests
	now func() time.Time
}

// maintains the set of active clients
type Hub struct {
	// registered clients by client ID
	clients map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// mutex for thread-safe access to clients
	mu sync.RWMutex

	// message handlers for different message types
	handlers map[string]MessageHandler

	// flag indicating if hub is running
	running bool

	// channel to signal shutdown
	shutdown     chan struct{}
	shutdownOnce sync.Once

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// callback for client disconnect (e.g., drop the conversation)
	onClientDisconnect func(client *Client)
}

// processes a specific message type
type MessageHandler func(ctx context.Context, hub *Hub, client *Client, msg *Message) error
