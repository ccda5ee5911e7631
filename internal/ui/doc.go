// Package ui implements the gemnote terminal interface with Bubble Tea.
//
// The screen has a header bar with the connection badge and the selected
// space and type, the entry list on the left and a glamour-rendered preview
// of the selected entry on the right. Narrow terminals stack the panes.
// A footer shows key hints, the running action or a short-lived status
// message.
//
// The model never talks to Anytype directly. Network work goes through the
// Controller passed in Options and runs inside tea.Cmd functions; results
// come back as messages. Connection changes arrive from state.Store
// subscriptions and entry changes from the entry file watcher, so entries
// captured by a separate `gemnote watch` process show up without a refresh.
//
// Overlays (help, log view, text prompts) take over key handling while open.
package ui
