// Package state holds the connection state shared between the background
// reconnector, the capture loop, and the TUI.
//
// Writers call the Set* and Select* methods; readers take a Snapshot, which
// is an independent copy. Subscribe delivers a wake-up after every change.
package state
