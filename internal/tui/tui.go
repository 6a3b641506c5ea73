package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// returns the chat application for a server base URL
func NewApp(endpoint string) *Model {
	client := NewChatClient(endpoint)

	return &Model{
		state:  StateMenu,
		client: client,
		menu:   NewMenu(),
		chat:   NewChat(client),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.client.ProgramsCmd(), m.client.ResetCmd(), m.chat.Init())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+r":
			return m, m.client.ResetCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width, msg.Height)
		m.chat.SetSize(msg.Width, msg.Height)

		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case ProgramsMsg:
		return m, m.menu.SetPrograms(msg.programs)

	case ReplyMsg:
		return m, m.receive(msg.reply)

	case ChatErrorMsg:
		if m.state == StateMenu {
			m.err = msg.err
			return m, nil
		}

	case ProgramChosenMsg:
		m.state = StateChat
		return m, m.chat.Submit(msg.name)
	}

	switch m.state {
	case StateMenu:
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)

		return m, cmd

	case StateChat:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)

		return m, cmd

	default:
		return m, nil
	}
}

// routes a reply: a program question goes to the menu, everything else to the chat
func (m *Model) receive(reply Reply) tea.Cmd {
	if reply.State != stateAwaitingProgram {
		m.state = StateChat
		m.chat.Receive(reply)

		return nil
	}

	m.state = StateMenu
	m.chat.Receive(reply)
	m.menu.SetGreeting(strings.Join(reply.Messages, "\n\n"))
	m.menu.SetSize(m.width, m.height)

	return m.menu.SetOptions(reply.Options)
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateMenu:
		return m.menu.View()

	case StateChat:
		return m.chat.View()

	default:
		return "Unknown state"
	}
}

func errorView(err error) string {
	return fmt.Sprintf("\n  %s\n\n  Нажмите Ctrl+C для выхода\n", errorStyle.Render("Ошибка: "+err.Error()))
}
