package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/gemnote/internal/state"
)

// renderHeader renders the top bar: connection badge, target and counts.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	snap := m.snapshot
	status := snap.Status.String()
	badge := styles.StatusStyle(status).Render(strings.ToUpper(status))
	if snap.Status == state.StatusScanning {
		badge = bg.Render(m.spinner.View(), styles.AccentText) + bg.Space() + badge
	}

	left := []string{
		bg.Render("gemnote", styles.Logo),
		badge,
	}

	switch {
	case snap.Connected():
		space := snap.SpaceName
		if space == "" {
			space = "no space"
		}
		left = append(left,
			bg.Render("space", styles.FaintText)+bg.Space()+bg.Render(space, styles.Text.Bold(true)),
			bg.Render("type", styles.FaintText)+bg.Space()+bg.Render(m.typeLabel(), styles.Text))
		if m.width >= LayoutWideWidth && snap.BaseURL != "" {
			left = append(left, bg.Render(truncateMiddle(snap.BaseURL, 32), styles.MutedText))
		}
	case snap.Status == state.StatusScanning:
		left = append(left, bg.Render("Searching the local network...", styles.MutedText))
	case snap.LastError != nil:
		msg := truncate(singleLine(m.describe(snap.LastError)), maxInt(20, m.width/3))
		errStyle := styles.WarningText
		if snap.IsOffline() {
			errStyle = styles.DangerText
		}
		left = append(left, bg.Render(msg, errStyle))
	}

	right := []string{m.renderCounts(styles, bg)}
	if m.capturing {
		right = append([]string{
			bg.Render("●", lipgloss.NewStyle().Foreground(styles.StatusColor("capturing"))) +
				bg.Space() + bg.Render("capturing", styles.Text),
		}, right...)
	}

	leftStr := bg.Join(left, "  ")
	rightStr := bg.Join(right, "  ")
	gap := m.width - 2 - lipgloss.Width(leftStr) - lipgloss.Width(rightStr)
	var line string
	if gap >= 2 {
		line = leftStr + bg.Spaces(gap) + rightStr
	} else {
		line = leftStr + sep + rightStr
	}

	return styles.Header.Width(m.width).MaxHeight(headerHeight).Render(line)
}

// renderCounts shows the entry total and how many still need sending.
func (m Model) renderCounts(styles Styles, bg BgStyle) string {
	total := len(m.items)
	pending := 0
	for _, e := range m.items {
		if !e.Synced {
			pending++
		}
	}
	out := bg.Render(fmt.Sprintf("%d %s", total, plural(total, "entry", "entries")), styles.MutedText)
	if pending > 0 {
		out += bg.Sep(" · ") + bg.Render(fmt.Sprintf("%d pending", pending), styles.WarningText)
	}
	return out
}

func (m Model) typeLabel() string {
	key := m.snapshot.TypeKey
	if key == "" {
		key = "note"
	}
	for _, t := range m.snapshot.Types {
		if t.Key == key && t.Name != "" {
			return t.Name
		}
	}
	return key
}
