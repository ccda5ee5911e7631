package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/five82/gemnote/internal/entries"
)

// updateDetail refreshes the detail viewport for the selected entry.
func (m *Model) updateDetail() {
	if !m.ready {
		return
	}
	entry, ok := m.selectedEntry()
	if !ok {
		m.detail.SetContent(m.theme.Styles().FaintText.Render("Nothing selected"))
		return
	}
	m.detail.SetContent(m.renderDetail(entry))
	m.detail.GotoTop()
}

func (m *Model) renderDetail(e entries.Entry) string {
	styles := m.theme.Styles()

	state := styles.WarningText.Render("pending")
	if e.Synced {
		state = styles.SuccessText.Render("sent")
		if e.ObjectID != "" {
			state += styles.FaintText.Render(" " + truncateMiddle(e.ObjectID, 24))
		}
	}
	meta := fmt.Sprintf("%s  %s  %s  %s",
		styles.AccentText.Render(shortEntryID(e.ID)),
		styles.MutedText.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
		styles.MutedText.Render(fmt.Sprintf("%d chars", len([]rune(e.Content)))),
		state)

	return meta + "\n\n" + m.renderMarkdown(e.Content)
}

// renderMarkdown renders content with glamour, falling back to wrapped raw
// text when rendering fails.
func (m *Model) renderMarkdown(content string) string {
	width := maxInt(20, m.detail.Width)
	style := m.theme.GlamourStyle
	if style == "" {
		style = "dark"
	}
	if m.renderer == nil || m.rendererWidth != width || m.rendererStyle != style {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width-2),
		)
		if err != nil {
			m.logger.Debug("glamour renderer unavailable", zap.Error(err))
			m.renderer = nil
		} else {
			m.renderer = r
			m.rendererWidth = width
			m.rendererStyle = style
		}
	}
	if m.renderer != nil {
		out, err := m.renderer.Render(content)
		if err == nil {
			return strings.TrimRight(out, "\n")
		}
		m.logger.Debug("render entry failed", zap.Error(err))
	}
	return m.theme.Styles().Text.Width(width).Render(content)
}

func shortEntryID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
