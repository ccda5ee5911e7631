// Package entries persists captured clipboard snippets.
//
// Entries live in a single JSON array on disk, newest first, capped at 50.
// Content is unique: adding text that is already stored is rejected rather
// than moved to the top. Each entry keeps a one-line preview (the first 100
// runes with line breaks flattened), its capture time, and whether it has
// been sent to the note service.
//
// Several gemnote processes may share the file. The capture watcher appends
// while the TUI sends and deletes, so Store re-reads the file before every
// mutation and the TUI listens to Watch to pick up changes made elsewhere.
package entries
