package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#303030", Dark: "#e0e0e0"})
	promptHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#707070"})
)

// loginPrompt asks for a handle and an app password.
type loginPrompt struct {
	handle    textinput.Model
	password  textinput.Model
	focus     int
	submitted bool
	cancelled bool
}

func newLoginPrompt(handle string) loginPrompt {
	h := textinput.New()
	h.Placeholder = "alice.bsky.social"
	h.CharLimit = 253
	h.Width = 40
	h.SetValue(handle)

	p := textinput.New()
	p.Placeholder = "xxxx-xxxx-xxxx-xxxx"
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	p.CharLimit = 128
	p.Width = 40

	m := loginPrompt{handle: h, password: p}
	if handle != "" {
		m.focus = 1
		m.password.Focus()
	} else {
		m.handle.Focus()
	}
	return m
}

func (m loginPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "tab", "shift+tab", "up", "down":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.focus == 0 {
				m.toggleFocus()
				return m, nil
			}
			if m.Handle() == "" || m.Password() == "" {
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.handle, cmd = m.handle.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *loginPrompt) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.handle.Blur()
		m.password.Focus()
		return
	}
	m.focus = 0
	m.password.Blur()
	m.handle.Focus()
}

func (m loginPrompt) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptTitleStyle.Render("Sign in to your PDS"))
	b.WriteString("\n\nHandle\n")
	b.WriteString(m.handle.View())
	b.WriteString("\n\nApp password\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")
	b.WriteString(promptHintStyle.Render("[enter] next/sign in  [tab] switch  [esc] browse without signing in"))
	b.WriteString("\n")
	return b.String()
}

func (m loginPrompt) Handle() string   { return strings.TrimSpace(m.handle.Value()) }
func (m loginPrompt) Password() string { return m.password.Value() }
func (m loginPrompt) Submitted() bool  { return m.submitted }
