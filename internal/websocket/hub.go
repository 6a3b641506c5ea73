package websocket

import (
	"context"
	"time"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/errors"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[string]*Client),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		handlers:      make(map[string]MessageHandler),
		running:       false,
		shutdown:      make(chan struct{}),
		ipConnections: make(map[string]int),
	}
}

// registers a handler for a specific message type
func (h *Hub) RegisterHandler(messageType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[messageType] = handler
}

// sets callback to be called when a client disconnects
func (h *Hub) OnClientDisconnect(callback func(client *Client)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClientDisconnect = callback
}

// starts the hub's main loop
func (h *Hub) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// adds a client to the hub and greets it with the conversation state
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	logger.Info("client registered",
		"client_id", client.ID,
		"conversation_id", client.ConversationID,
		"ip", client.IPAddress,
	)

	stateMsg, err := NewMessage(TypeSessionState, client.ConversationID, SessionStatePayload{
		ConversationID: client.ConversationID,
		Options:        corpus.ProgramNames(),
	})
	if err != nil {
		logger.ErrorErr(err, "failed to create session state", "client_id", client.ID)
		return
	}

	if err := client.Send(stateMsg); err != nil {
		logger.ErrorErr(err, "failed to send session state", "client_id", client.ID)
	}
}

// removes a client from the hub and releases its IP slot
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	registered, exists := h.clients[client.ID]
	ok := exists && registered == client

	if ok {
		delete(h.clients, client.ID)
	}

	callback := h.onClientDisconnect
	h.mu.Unlock()

	// a client missing from the map was dropped by shutdown, which resets the IP counts
	if !ok {
		client.Close()
		return
	}

	client.Close()
	h.UntrackIPConnection(client.IPAddress)

	logger.Info("client unregistered",
		"client_id", client.ID,
		"conversation_id", client.ConversationID,
	)

	if callback != nil {
		callback(client)
	}
}

// dispatches an incoming message to its handler
func (h *Hub) handleMessage(msg *Message) {
	h.mu.RLock()
	sender, exists := h.clients[msg.ClientID]
	handler, handled := h.handlers[msg.Type]
	h.mu.RUnlock()

	if !exists {
		logger.Warn("sender client not found for message",
			"client_id", msg.ClientID,
			"message_type", msg.Type,
		)
		return
	}

	if !handled {
		logger.Warn("unhandled message type received",
			"message_type", msg.Type,
			"client_id", sender.ID,
		)

		sender.SendError(errors.CodeBadRequest, "unsupported message type")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	ctx = logger.WithContext(ctx, logger.With(
		"conversation_id", sender.ConversationID,
		"client_id", sender.ID,
	))

	if err := handler(ctx, h, sender, msg); err != nil {
		logger.ErrorErr(err, "handler error",
			"message_type", msg.Type,
			"client_id", sender.ID,
		)

		sender.SendError(errors.CodeServerError, "failed to process message")
	}
}

// returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.shutdown)
	})
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()

	logger.Info("notifying clients of server shutdown")

	for _, client := range h.clients {
		shutdownMsg, err := NewMessage(TypeServerShutdown, client.ConversationID, ServerShutdownPayload{
			Reason: "server is shutting down for maintenance",
		})
		if err != nil {
			logger.ErrorErr(err, "failed to create shutdown message")
			continue
		}

		if err := client.Send(shutdownMsg); err != nil {
			logger.Debug("failed to send shutdown notification",
				"client_id", client.ID,
				"error", err,
			)
		}
	}

	h.mu.Unlock()

	// give clients time to receive the shutdown message
	time.Sleep(500 * time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections")

	for clientID, client := range h.clients {
		client.Close()
		logger.Debug("closed client", "client_id", clientID)
	}

	h.clients = make(map[string]*Client)
	h.ipConnections = make(map[string]int)
}

// checks if a new connection should be allowed based on limits
func (h *Hub) CanAcceptConnection(ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return false, "Maximum connections per IP address exceeded"
	}

	return true, ""
}

// increments the connection count for an IP address
func (h *Hub) TrackIPConnection(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipConnections[ipAddress]++
}

// decrements the connection count for an IP address
func (h *Hub) UntrackIPConnection(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipConnections[ipAddress]--

	if h.ipConnections[ipAddress] <= 0 {
		delete(h.ipConnections, ipAddress)
	}
}
