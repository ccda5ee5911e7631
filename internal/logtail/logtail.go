package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Record is one decoded JSON log line.
type Record struct {
	Time    time.Time
	Level   zapcore.Level
	Message string
	Fields  map[string]any
	Raw     string
	JSON    bool
}

// Parse decodes a zap JSON line. Lines that are not JSON come back with
// JSON=false, InfoLevel, and the text as Message.
func Parse(line string) Record {
	rec := Record{Raw: line, Level: zapcore.InfoLevel, Message: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return rec
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return rec
	}
	rec.JSON = true
	rec.Message = ""
	if v, ok := fields["level"].(string); ok {
		var lvl zapcore.Level
		if lvl.UnmarshalText([]byte(v)) == nil {
			rec.Level = lvl
		}
		delete(fields, "level")
	}
	if v, ok := fields["msg"].(string); ok {
		rec.Message = v
		delete(fields, "msg")
	}
	if v, ok := fields["ts"].(string); ok {
		if ts, err := time.Parse("2006-01-02T15:04:05.000Z0700", v); err == nil {
			rec.Time = ts
		} else if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			rec.Time = ts
		}
		delete(fields, "ts")
	}
	delete(fields, "caller")
	rec.Fields = fields
	return rec
}

// Filter keeps lines at or above minLevel. Non-JSON lines are always kept.
func Filter(lines []string, minLevel zapcore.Level) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		rec := Parse(line)
		if rec.JSON && rec.Level < minLevel {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Format renders a line as "15:04:05 INFO  message key=value ...". Non-JSON
// lines are returned unchanged.
func Format(line string) string {
	rec := Parse(line)
	if !rec.JSON {
		return line
	}
	var b strings.Builder
	if !rec.Time.IsZero() {
		b.WriteString(rec.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", rec.Level.CapitalString(), rec.Message)

	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, rec.Fields[k])
	}
	return b.String()
}
