package ui

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap/zapcore"

	"github.com/five82/gemnote/internal/logtail"
)

// refreshLogs reloads the tail of the log file into the log viewport.
func (m *Model) refreshLogs() {
	styles := m.theme.Styles()
	m.logView.Width = maxInt(10, m.width-2)
	m.logView.Height = maxInt(1, m.height-headerHeight-footerHeight-2)

	if m.logPath == "" {
		m.logView.SetContent(styles.FaintText.Render("File logging is disabled"))
		return
	}
	lines, err := logtail.Read(m.logPath, LogBufferLimit)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		m.logView.SetContent(styles.FaintText.Render("No log file yet at " + m.logPath))
		return
	case err != nil:
		m.logView.SetContent(styles.DangerText.Render(err.Error()))
		return
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, m.colorizeLogLine(logtail.Parse(line), logtail.Format(line)))
	}
	m.logView.SetContent(strings.Join(out, "\n"))
	m.logView.GotoBottom()
}

func (m Model) colorizeLogLine(rec logtail.Record, text string) string {
	styles := m.theme.Styles()
	if !rec.JSON {
		return styles.MutedText.Render(text)
	}
	switch {
	case rec.Level >= zapcore.ErrorLevel:
		return styles.DangerText.Render(text)
	case rec.Level == zapcore.WarnLevel:
		return styles.WarningText.Render(text)
	case rec.Level == zapcore.DebugLevel:
		return styles.FaintText.Render(text)
	}
	return styles.Text.Render(text)
}

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Logs, m.keys.Cancel, m.keys.Quit):
		m.showLogs = false
	case key.Matches(msg, m.keys.Up):
		m.logView.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logView.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logView.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logView.HalfViewDown()
	case key.Matches(msg, m.keys.Top):
		m.logView.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logView.GotoBottom()
	case key.Matches(msg, m.keys.Rescan):
		m.refreshLogs()
	}
	return m, nil
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	title := bg.Render("gemnote", styles.Logo) + bg.Spaces(2) +
		bg.Render("logs", styles.Text.Bold(true)) + bg.Spaces(2) +
		bg.Render(truncateMiddle(m.logPath, maxInt(10, m.width-24)), styles.MutedText)
	header := styles.Header.Width(m.width).Render(title)

	pane := m.theme.Styles().Pane.Width(m.logView.Width).Render(m.logView.View())

	footer := styles.Footer.Width(m.width).Render(
		bg.Render("j/k scroll  g/G top/bottom  r refresh  esc close", styles.MutedText))

	return lipgloss.JoinVertical(lipgloss.Left, header, pane, footer)
}
