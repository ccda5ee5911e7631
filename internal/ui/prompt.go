package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// openPrompt shows the text input for kind.
func (m *Model) openPrompt(kind promptKind) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	m.prompt = kind
	m.input.Reset()
	switch kind {
	case promptAPIKey:
		m.input.Placeholder = "Anytype API key"
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
	case promptBaseURL:
		m.input.Placeholder = "http://192.168.1.20:31010"
		m.input.EchoMode = textinput.EchoNormal
		if url := m.snapshot.BaseURL; url != "" {
			m.input.SetValue(url)
		}
	}
	m.input.Width = maxInt(20, minInt(60, m.width-12))
	return m.input.Focus()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.closePrompt()
		if value == "" {
			return m, nil
		}
		ctx, ctrl := m.ctx, m.ctrl
		switch kind {
		case promptAPIKey:
			m.busy = "Connecting"
			return m, saveKeyCmd(ctx, ctrl, value)
		case promptBaseURL:
			m.busy = "Connecting"
			return m, connectToCmd(ctx, ctrl, value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.Reset()
}

// renderPrompt renders the centered input modal.
func (m Model) renderPrompt() string {
	styles := m.theme.Styles()

	var title, hint string
	switch m.prompt {
	case promptAPIKey:
		title = "Anytype API key"
		hint = "Create one in Anytype under Settings > API Keys."
	case promptBaseURL:
		title = "Anytype address"
		hint = "Host and port of the Anytype API. Leave the port off for 31010."
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(hint))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("enter save  esc cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(maxInt(30, minInt(72, m.width-4)))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
	)
}
