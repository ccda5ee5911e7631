// Package logtail reads the tail of gemnote's JSON log file.
//
// Read returns the last N lines using a ring buffer, so memory stays
// proportional to N rather than to the file size. Parse decodes a zap JSON
// line, Filter drops lines below a level, and Format renders a line for a
// terminal. Lines that are not JSON pass through untouched.
//
// A missing file reads as no lines.
package logtail
