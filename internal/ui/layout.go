package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane
	// stacks under the list instead of sitting beside it.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show the base URL in the header.
	LayoutWideWidth = 130
)

// Pane sizing.
const (
	listWidthRatio = 0.42
	minListWidth   = 30
	headerHeight   = 1
	footerHeight   = 1
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines read into the log view.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// StatusMessageTTL is how long a status line message stays visible.
	StatusMessageTTL = 4 * time.Second
)
