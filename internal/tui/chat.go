package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// height taken by the header, input box and status line
const chatChromeHeight = 7

// returns a new conversation view
func NewChat(client *ChatClient) *ChatModel {
	ti := textinput.New()
	ti.Placeholder = "спросите о программе или расскажите о своём опыте..."
	ti.Focus()
	ti.CharLimit = 5000
	ti.Width = 80
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle

	return &ChatModel{
		input:   ti,
		spinner: s,
		history: []MessageModel{},
		client:  client,
	}
}

func (m *ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// starts a request for text and records it in the history
func (m *ChatModel) Submit(text string) tea.Cmd {
	m.isFetching = true
	m.history = append(m.history, MessageModel{Role: roleUser, Content: text})
	m.refresh()

	return tea.Batch(m.client.SendCmd(text), m.spinner.Tick)
}

// records a server reply; every chunk becomes its own message
func (m *ChatModel) Receive(reply Reply) {
	m.isFetching = false
	m.program = reply.Program

	for _, text := range reply.Messages {
		m.history = append(m.history, MessageModel{Role: roleAssistant, Content: text})
	}

	m.input.Focus()
	m.refresh()
}

// returns the latest assistant message
func (m *ChatModel) LastReply() string {
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Role == roleAssistant {
			return m.history[i].Content
		}
	}

	return ""
}

func (m *ChatModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-10, 10)

	viewportHeight := max(height-chatChromeHeight, 3)

	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-6, 20)),
	)
	if err == nil {
		m.glamourRenderer = renderer
	}

	m.refresh()
}

func (m *ChatModel) Update(msg tea.Msg) (*ChatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" || m.isFetching {
				return m, nil
			}

			m.input.SetValue("")

			return m, m.Submit(query)

		case "ctrl+l":
			m.history = []MessageModel{}
			m.refresh()

			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)

			return m, cmd
		}

	case ChatErrorMsg:
		m.isFetching = false
		m.history = append(m.history, MessageModel{Role: roleAssistant, Content: fmt.Sprintf("Ошибка: %v", msg.err)})
		m.input.Focus()
		m.refresh()

		return m, nil

	case spinner.TickMsg:
		if !m.isFetching {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) View() string {
	var b strings.Builder

	header := titleStyle.Render("Приёмная комиссия")
	if m.program != "" {
		header += " " + programStyle.Render(m.program)
	}

	b.WriteString(header)
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	b.WriteString(borderStyle.Width(max(m.width-4, 10)).Render(m.input.View()))
	b.WriteString("\n")

	if m.isFetching {
		b.WriteString(infoStyle.Render(m.spinner.View() + " ищу ответ..."))
	} else {
		b.WriteString(helpStyle.Render("[Enter: отправить] [Ctrl+R: сначала] [Ctrl+L: очистить] [Ctrl+C: выход]"))
	}

	return b.String()
}

// re-renders the history into the viewport and scrolls to the bottom
func (m *ChatModel) refresh() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m *ChatModel) renderHistory() string {
	var b strings.Builder

	for _, msg := range m.history {
		switch msg.Role {
		case roleUser:
			b.WriteString(userStyle.Render("> " + msg.Content))
			b.WriteString("\n\n")
		default:
			b.WriteString(m.render(msg.Content))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m *ChatModel) render(text string) string {
	if m.glamourRenderer == nil {
		return text + "\n"
	}

	out, err := m.glamourRenderer.Render(text)
	if err != nil {
		return text + "\n"
	}

	return out
}
