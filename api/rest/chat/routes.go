package chat

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// registers chat routes
func RegisterRoutes(router *gin.RouterGroup, chatter Chatter, store sessions.Store, counter ProgramCounter) {
	router.POST("/chat", ChatHandler(chatter, store))
	router.POST("/chat/reset", ResetHandler(chatter, store))
	router.GET("/programs", ProgramsHandler(counter))
}
