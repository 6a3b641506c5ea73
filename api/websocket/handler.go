package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AndreySuncov/bot-exam/internal/errors"
	"github.com/AndreySuncov/bot-exam/internal/logger"
	ws "github.com/AndreySuncov/bot-exam/internal/websocket"
)

// handles WebSocket connections for the chat. every connection drives one
// conversation, resumed by conversation_id or started fresh.
func WebSocketHandler(hub *ws.Hub, checkOrigin func(r *http.Request) bool) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		conversationID := params.ConversationID
		if conversationID == "" {
			conversationID = uuid.NewString()
		}

		ipAddress := c.ClientIP()

		if canAccept, reason := hub.CanAcceptConnection(ipAddress); !canAccept {
			errors.TooManyRequests(c, reason)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"conversation_id", conversationID,
				"ip", ipAddress,
			)

			return
		}

		// track IP connection only after successful upgrade
		hub.TrackIPConnection(ipAddress)

		client := ws.NewClient(uuid.NewString(), conversationID, ipAddress, conn, hub)
		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", client.ID,
			"conversation_id", conversationID,
			"ip", ipAddress,
		)
	}
}
