package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/gemnote/internal/anytype"
	"github.com/five82/gemnote/internal/clipboard"
	"github.com/five82/gemnote/internal/discovery"
	"github.com/five82/gemnote/internal/entries"
)

// Describe returns a short user-facing message for err. Unknown errors fall
// back to err.Error().
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *anytype.APIError
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return "Set an API key first (press a)"
	case errors.Is(err, ErrConnectionLost):
		return "Connection lost, press c to reconnect"
	case errors.Is(err, ErrNotConnected):
		return "Not connected"
	case errors.Is(err, ErrNoSpace):
		return "No space selected"
	case errors.Is(err, ErrUnknownSpace):
		return "That space is not available"
	case errors.Is(err, ErrUnknownType):
		return "That object type is not available in this space"
	case errors.Is(err, discovery.ErrNoSubnet):
		return "Not on a local network"
	case errors.Is(err, discovery.ErrNotFound):
		return "Anytype not found on the local network"
	case errors.Is(err, entries.ErrDuplicate):
		return "Already captured"
	case errors.Is(err, entries.ErrEmpty):
		return "Clipboard is empty"
	case errors.Is(err, entries.ErrNotFound):
		return "Entry not found"
	case errors.Is(err, clipboard.ErrUnavailable):
		return "Clipboard unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Anytype returned status %d", apiErr.Status)
	}
	return err.Error()
}
