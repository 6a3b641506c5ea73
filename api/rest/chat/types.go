package chat

import (
	"context"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/shell"
)

const (
	// CookieName is the cookie that remembers the conversation of a browser
	CookieName = "bot_exam"

	conversationKey = "conversation_id"
)

type Chatter interface {
	Handle(ctx context.Context, conversationID, text string) (shell.Reply, error)
	Reset(conversationID string) (shell.Reply, error)
}

type ProgramCounter interface {
	CountByProgram() map[corpus.Program]int
}

// Request is one user message. ConversationID falls back to the cookie.
type Request struct {
	Message        string `json:"message" binding:"max=5000"`
	ConversationID string `json:"conversation_id" binding:"max=100"`
}

type ResetRequest struct {
	ConversationID string `json:"conversation_id" binding:"max=100"`
}

// Response is the shell reply plus the conversation it belongs to
type Response struct {
	ConversationID string `json:"conversation_id"`
	shell.Reply
}

type ProgramInfo struct {
	Name      string `json:"name"`
	Fragments int    `json:"fragments"`
}

type ProgramsResponse struct {
	Programs []ProgramInfo `json:"programs"`
}
