package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AndreySuncov/bot-exam/internal/errors"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// creates a new webSocket client connection; id is unique per connection,
// conversationID may be shared by several connections
func NewClient(id, conversationID, ipAddress string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:                    id,
		ConversationID:        conversationID,
		IPAddress:             ipAddress,
		conn:                  conn,
		hub:                   hub,
		send:                  make(chan []byte, 256),
		closed:                false,
		chatMessageTimestamps: make([]time.Time, 0, maxChatMessagesPerMinute),
		now:                   time.Now,
	}
}

// reads messages from the webSocket connection and dispatches them in order
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.shutdown:
		}

		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error",
					"client_id", c.ID,
					"error", err,
				)
			}

			break
		}

		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			logger.Warn("failed to unmarshal message",
				"client_id", c.ID,
				"error", err,
			)

			c.SendError(errors.CodeBadRequest, ErrInvalidMessage.Error())
			continue
		}

		msg.ConversationID = c.ConversationID
		msg.ClientID = c.ID
		msg.Timestamp = time.Now()

		// handled inline so answers leave in the order questions arrived
		c.hub.handleMessage(&msg)
	}
}

// writes queued messages to the webSocket connection, one frame each
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sends a message to the client
func (c *Client) Send(msg *Message) (err error) {
	// recover from panic if channel is closed
	defer func() {
		if r := recover(); r != nil {
			err = ErrConnectionClosed
		}
	}()

	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return ErrConnectionClosed
	}

	c.sequence++
	msg.Sequence = c.sequence
	c.mu.Unlock()

	messageBytes, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		return marshalErr
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		logger.Warn("client send buffer full, closing connection", "client_id", c.ID)
		c.Close()
		return ErrConnectionClosed
	}
}

// sends an error message to the client
func (c *Client) SendError(code, message string) {
	errorMsg, err := NewMessage(TypeError, c.ConversationID, errors.ErrorResponse{
		Error:   code,
		Message: message,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to create error message",
			"client_id", c.ID,
			"error_code", code,
		)
		return
	}

	c.Send(errorMsg) //nolint:errcheck,gosec // G104: best effort error notification
}

// closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// checks if the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}

// checks if the client can send a chat message
func (c *Client) checkChatRateLimit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	oneMinuteAgo := now.Add(-1 * time.Minute)

	// remove timestamps older than 1 minute
	validTimestamps := make([]time.Time, 0, maxChatMessagesPerMinute)
	for _, ts := range c.chatMessageTimestamps {
		if ts.After(oneMinuteAgo) {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	c.chatMessageTimestamps = validTimestamps

	if len(c.chatMessageTimestamps) >= maxChatMessagesPerMinute {
		return false
	}

	c.chatMessageTimestamps = append(c.chatMessageTimestamps, now)
	return true
}
