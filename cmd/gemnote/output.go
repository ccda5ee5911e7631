package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/gemnote/internal/anytype"
	"github.com/five82/gemnote/internal/entries"
)

const timeLayout = "Jan 02 15:04"

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.PaddingRight(2)
			}
			return cellStyle
		})
}

func renderEntries(items []entries.Entry) string {
	t := newTable("ID", "CAPTURED", "SENT", "PREVIEW")
	for _, e := range items {
		sent := "no"
		if e.Synced {
			sent = "yes"
		}
		t.Row(shortID(e.ID), e.Timestamp.Local().Format(timeLayout), sent, oneLine(e.Preview, 60))
	}
	return t.Render()
}

func renderSpaces(spaces []anytype.Space, selected string) string {
	t := newTable("", "ID", "NAME")
	for _, sp := range spaces {
		t.Row(marker(sp.ID == selected), sp.ID, sp.Name)
	}
	return t.Render()
}

func renderTypes(types []anytype.ObjectType, selected string) string {
	t := newTable("", "KEY", "NAME")
	for _, ot := range types {
		t.Row(marker(ot.Key == selected), ot.Key, ot.Name)
	}
	return t.Render()
}

func printConnection(w io.Writer, c *cli) {
	snap := c.rt.State.Snapshot()
	fmt.Fprintf(w, "Connected to %s\n", snap.BaseURL)
	if snap.SpaceName != "" {
		fmt.Fprintf(w, "Space: %s (%s)\n", snap.SpaceName, snap.SpaceID)
	}
	fmt.Fprintf(w, "%d %s available\n", len(snap.Spaces), plural(len(snap.Spaces), "space", "spaces"))
}

func printStatus(w io.Writer, c *cli, checked bool, connErr error) {
	p := c.rt.Connector.Prefs()
	items := c.rt.Entries.List()
	pending := 0
	for _, e := range items {
		if !e.Synced {
			pending++
		}
	}

	key := "not set"
	if k := c.rt.Connector.APIKey(); k != "" {
		key = maskKey(k)
	}
	baseURL := p.BaseURL
	if c.rt.Config.BaseURL != "" {
		baseURL = c.rt.Config.BaseURL + " (environment)"
	}

	t := newTable("", "")
	t.Row("API key", key)
	t.Row("Address", orDash(baseURL))
	t.Row("Space", orDash(strings.TrimSpace(p.SpaceName+" "+paren(p.SpaceID))))
	t.Row("Type", orDash(p.TypeKey))
	t.Row("Entries", fmt.Sprintf("%d (%d pending)", len(items), pending))
	t.Row("Clipboard", c.rt.Clipboard.Name())
	t.Row("Entries file", c.rt.Entries.Path())
	t.Row("Log file", c.rt.Config.LogPath())
	if checked {
		snap := c.rt.State.Snapshot()
		result := snap.Status.String() + " " + snap.BaseURL
		if connErr != nil {
			result = "failed: " + describe(connErr)
		}
		t.Row("Connection", strings.TrimSpace(result))
	}
	fmt.Fprintln(w, t.Render())
}

func marker(on bool) string {
	if on {
		return "*"
	}
	return ""
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func paren(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
