package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ws "github.com/AndreySuncov/bot-exam/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, checkOrigin func(r *http.Request) bool) {
	router.GET("/ws", WebSocketHandler(hub, checkOrigin))
}
