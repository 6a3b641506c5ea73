package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type programItem struct {
	info ProgramInfo
}

func (i programItem) Title() string { return i.info.Name }

func (i programItem) Description() string {
	return fmt.Sprintf("%d фрагментов в базе знаний", i.info.Fragments)
}

func (i programItem) FilterValue() string { return i.info.Name }

// returns a program picker; the list is filled once the server answers
func NewMenu() *MenuModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = menuItemSelectedStyle
	delegate.Styles.NormalTitle = menuItemStyle

	l := list.New(nil, delegate, 40, 10)
	l.Title = "Программы"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return &MenuModel{list: l}
}

// replaces the listed programs
func (m *MenuModel) SetPrograms(programs []ProgramInfo) tea.Cmd {
	items := make([]list.Item, 0, len(programs))
	for _, p := range programs {
		items = append(items, programItem{info: p})
	}

	return m.list.SetItems(items)
}

// restricts the list to the options the server offered, keeping counts
func (m *MenuModel) SetOptions(options []string) tea.Cmd {
	if len(options) == 0 {
		return nil
	}

	known := make(map[string]ProgramInfo, len(m.list.Items()))
	for _, item := range m.list.Items() {
		if p, ok := item.(programItem); ok {
			known[p.info.Name] = p.info
		}
	}

	programs := make([]ProgramInfo, 0, len(options))
	for _, name := range options {
		info, ok := known[name]
		if !ok {
			info = ProgramInfo{Name: name}
		}

		programs = append(programs, info)
	}

	return m.SetPrograms(programs)
}

func (m *MenuModel) SetGreeting(text string) {
	m.greeting = text
}

func (m *MenuModel) SetSize(width, height int) {
	m.list.SetSize(width, max(height-lineCount(m.greeting)-2, 5))
}

func (m *MenuModel) Update(msg tea.Msg) (*MenuModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		item, ok := m.list.SelectedItem().(programItem)
		if !ok {
			return m, nil
		}

		return m, func() tea.Msg {
			return ProgramChosenMsg{name: item.info.Name}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m *MenuModel) View() string {
	var b strings.Builder

	if m.greeting != "" {
		b.WriteString(subtitleStyle.Render(m.greeting))
		b.WriteString("\n")
	}

	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ выбрать • enter подтвердить • ctrl+c выход"))

	return b.String()
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}

	return strings.Count(s, "\n") + 1
}
