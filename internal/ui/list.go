package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const timestampLayout = "Jan 02 15:04"

// renderList renders the entry list, newest first, scrolled so the cursor
// stays visible.
func (m Model) renderList(width, height int) string {
	styles := m.theme.Styles()
	if height <= 0 || width <= 0 {
		return ""
	}

	if len(m.items) == 0 {
		msg := "No entries yet.\n\nPress p to paste the clipboard\nor w to start capture."
		return lipgloss.NewStyle().Width(width).Height(height).
			Foreground(lipgloss.Color(m.theme.Muted)).
			Render(msg)
	}

	start := 0
	if m.selected >= height {
		start = m.selected - height + 1
	}
	end := minInt(len(m.items), start+height)

	synced := lipgloss.NewStyle().Foreground(styles.StatusColor("synced"))
	pending := lipgloss.NewStyle().Foreground(styles.StatusColor("pending"))

	rows := make([]string, 0, height)
	for i := start; i < end; i++ {
		e := m.items[i]
		glyph, glyphStyle := "○", pending
		if e.Synced {
			glyph, glyphStyle = "●", synced
		}
		stamp := e.Timestamp.Local().Format(timestampLayout)
		previewWidth := maxInt(4, width-lipgloss.Width(stamp)-5)
		preview := truncate(singleLine(e.Preview), previewWidth)

		if i == m.selected {
			rows = append(rows, styles.Selected.Width(width).Render(glyph+" "+stamp+"  "+preview))
			continue
		}
		rows = append(rows, glyphStyle.Render(glyph)+" "+styles.MutedText.Render(stamp)+"  "+styles.Text.Render(preview))
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}
