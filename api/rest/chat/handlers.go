package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/errors"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

// answers one user message
func ChatHandler(chatter Chatter, store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		conversationID := resolveConversation(c, store, req.ConversationID)

		ctx := logger.WithContext(c.Request.Context(), logger.With("conversation_id", conversationID))

		reply, err := chatter.Handle(ctx, conversationID, req.Message)
		if err != nil {
			errors.InternalError(c, "failed to handle message", err)
			return
		}

		c.JSON(http.StatusOK, Response{
			ConversationID: conversationID,
			Reply:          reply,
		})
	}
}

// starts the conversation over and returns the greeting
func ResetHandler(chatter Chatter, store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetRequest

		// an empty body resets the cookie conversation
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				errors.ValidationError(c, err)
				return
			}
		}

		conversationID := resolveConversation(c, store, req.ConversationID)

		reply, err := chatter.Reset(conversationID)
		if err != nil {
			errors.InternalError(c, "failed to reset conversation", err)
			return
		}

		c.JSON(http.StatusOK, Response{
			ConversationID: conversationID,
			Reply:          reply,
		})
	}
}

// lists the programs with the number of indexed fragments for each
func ProgramsHandler(counter ProgramCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts := counter.CountByProgram()
		programs := make([]ProgramInfo, 0, len(corpus.KnownPrograms()))

		for _, p := range corpus.KnownPrograms() {
			programs = append(programs, ProgramInfo{
				Name:      p.String(),
				Fragments: counts[p],
			})
		}

		c.JSON(http.StatusOK, ProgramsResponse{Programs: programs})
	}
}
