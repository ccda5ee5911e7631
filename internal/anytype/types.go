package anytype

import (
	"strings"
	"unicode/utf8"
)

// Space mirrors an entry of GET /v1/spaces.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// ObjectType mirrors an entry of GET /v1/spaces/{id}/types.
type ObjectType struct {
	Key  string `json:"unique_key"`
	Name string `json:"name"`
}

// Object is the created object echoed back by the API.
type Object struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	TypeKey string `json:"type_key,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// CreateObjectRequest is the body of POST /v1/spaces/{id}/objects.
type CreateObjectRequest struct {
	Name    string `json:"name"`
	TypeKey string `json:"type_key"`
	Body    string `json:"body,omitempty"`
	Icon    string `json:"icon,omitempty"`
}

// listResponse wraps list endpoints.
type listResponse[T any] struct {
	Data []T `json:"data"`
}

type createObjectResponse struct {
	Object *Object `json:"object"`
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

const (
	maxTitleLength = 100
	fallbackTitle  = "Note"
)

// NoteFromContent splits captured text into a note title and body. The
// title is the first line without leading markdown heading marks, cut to
// 100 runes; the body is every following line.
func NoteFromContent(content string) (title, body string) {
	content = lineBreaks.Replace(content)
	first, rest, _ := strings.Cut(content, "\n")

	if utf8.RuneCountInString(first) > maxTitleLength {
		first = string([]rune(first)[:maxTitleLength])
	}
	title = strings.TrimSpace(strings.TrimLeft(first, "# "))
	if title == "" {
		title = fallbackTitle
	}
	return title, strings.TrimSpace(rest)
}
