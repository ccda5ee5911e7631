package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/gemnote/internal/clipboard"
	"github.com/five82/gemnote/internal/entries"
)

// stateMsg signals that the connection snapshot changed.
type stateMsg struct{}

// entriesMsg carries the entry list after the backing file changed.
type entriesMsg struct {
	items []entries.Entry
	err   error
}

// actionMsg reports the outcome of a user-triggered action.
type actionMsg struct {
	text string
	err  error
}

type promptRequestMsg struct {
	kind promptKind
}

// captureDoneMsg is sent when a capture run returns. seq ties it to the run
// that produced it so a stale result cannot stop a newer run.
type captureDoneMsg struct {
	seq int
	err error
}

type clearStatusMsg struct {
	seq int
}

// waitForState blocks until the state store notifies or ctx ends.
func waitForState(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ch:
			return stateMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// waitForEntries blocks until the entry file changes, then reloads it.
func waitForEntries(ctx context.Context, ch <-chan struct{}, store *entries.Store) tea.Cmd {
	if ch == nil || store == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			err := store.Reload()
			return entriesMsg{items: store.List(), err: err}
		case <-ctx.Done():
			return nil
		}
	}
}

func clearStatusAfter(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func connectCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.Connect(ctx); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: "Connected"}
	}
}

func scanCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.Scan(ctx); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: "Found Anytype on the local network"}
	}
}

func connectToCmd(ctx context.Context, ctrl Controller, baseURL string) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.ConnectTo(ctx, baseURL); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: "Connected to " + baseURL}
	}
}

func sendCmd(ctx context.Context, ctrl Controller, entry entries.Entry) tea.Cmd {
	return func() tea.Msg {
		if _, err := ctrl.Send(ctx, entry.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: "Sent: " + truncate(singleLine(entry.Preview), 40)}
	}
}

func sendAllCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		n, err := ctrl.SendAll(ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		if n == 0 {
			return actionMsg{text: "Nothing to send"}
		}
		return actionMsg{text: fmt.Sprintf("Sent %d %s", n, plural(n, "entry", "entries"))}
	}
}

func selectSpaceCmd(ctx context.Context, ctrl Controller, id, name string) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.SelectSpace(ctx, id); err != nil {
			return actionMsg{err: err}
		}
		if name == "" {
			name = id
		}
		return actionMsg{text: "Space: " + name}
	}
}

// saveKeyCmd stores a new API key and connects with it.
func saveKeyCmd(ctx context.Context, ctrl Controller, key string) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.SetAPIKey(key); err != nil {
			return actionMsg{err: err}
		}
		if err := ctrl.Connect(ctx); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: "API key saved, connected"}
	}
}

func pasteCmd(ctx context.Context, clip clipboard.Clipboard, store *entries.Store) tea.Cmd {
	return func() tea.Msg {
		text, err := clip.Read(ctx)
		if err != nil {
			return actionMsg{err: fmt.Errorf("read clipboard: %w", err)}
		}
		entry, err := store.Add(text)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: "Captured: " + truncate(singleLine(entry.Preview), 40)}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
