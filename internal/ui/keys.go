package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	Logs       key.Binding
	CycleTheme key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Entries
	Paste   key.Binding
	Send    key.Binding
	SendAll key.Binding
	Delete  key.Binding
	Clear   key.Binding
	Capture key.Binding

	// Connection
	Connect    key.Binding
	Rescan     key.Binding
	CycleSpace key.Binding
	CycleType  key.Binding
	APIKey     key.Binding
	BaseURL    key.Binding

	// Prompt
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle log view"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Scroll detail up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Scroll detail down"),
		),

		Paste: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Add clipboard text"),
		),
		Send: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "Send entry"),
		),
		SendAll: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Send all unsynced"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete entry"),
		),
		Clear: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Clear all entries"),
		),
		Capture: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Toggle clipboard capture"),
		),

		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Connect"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rescan network"),
		),
		CycleSpace: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Next space"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Next object type"),
		),
		APIKey: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Set API key"),
		),
		BaseURL: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Set API address"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Paste, k.Send, k.SendAll, k.Capture, k.CycleSpace, k.CycleType, k.Rescan, k.Help, k.Quit}
}

// FullHelp returns every binding grouped by area.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Paste, k.Send, k.SendAll, k.Delete, k.Clear, k.Capture},
		{k.Connect, k.Rescan, k.CycleSpace, k.CycleType, k.APIKey, k.BaseURL},
		{k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
