package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// represents the current state of the TUI
type AppState int

const (
	StateMenu AppState = iota
	StateChat
)

const (
	stateAwaitingProgram = "awaiting_program"

	roleUser      = "user"
	roleAssistant = "assistant"

	requestTimeout = 60 * time.Second
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// main TUI application model
type Model struct {
	state  AppState
	width  int
	height int
	err    error
	client *ChatClient
	menu   *MenuModel
	chat   *ChatModel
}

// one server reply, as returned by the chat API
type Reply struct {
	ConversationID string   `json:"conversation_id"`
	Messages       []string `json:"messages"`
	Options        []string `json:"options,omitempty"`
	State          string   `json:"state"`
	Program        string   `json:"program,omitempty"`
}

type ProgramInfo struct {
	Name      string `json:"name"`
	Fragments int    `json:"fragments"`
}

// represents a chat message in the conversation
type MessageModel struct {
	Role    string
	Content string
}

// program picker
type MenuModel struct {
	list     list.Model
	greeting string
}

// conversation view
type ChatModel struct {
	input           textinput.Model
	viewport        viewport.Model
	spinner         spinner.Model
	glamourRenderer *glamour.TermRenderer
	history         []MessageModel
	program         string
	isFetching      bool
	ready           bool
	width           int
	height          int
	client          *ChatClient
}

// sent when a request fails outside the conversation (e.g. loading programs)
type ErrorMsg struct {
	err error
}

// sent when a chat request fails
type ChatErrorMsg struct {
	err error
}

// sent when the server replied
type ReplyMsg struct {
	reply Reply
}

// sent when the program list arrived
type ProgramsMsg struct {
	programs []ProgramInfo
}

// sent when the user picked a program in the menu
type ProgramChosenMsg struct {
	name string
}

// REST API request/response types

type chatRequest struct {
	Message        string `json:"message,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type programsResponse struct {
	Programs []ProgramInfo `json:"programs"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
