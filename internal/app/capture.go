package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/gemnote/internal/entries"
)

// ClipboardSource streams clipboard changes.
type ClipboardSource interface {
	Watch(ctx context.Context, interval time.Duration) <-chan string
}

// Sender sends a stored entry. *Connector implements it.
type Sender interface {
	Send(ctx context.Context, id string) (entries.Entry, error)
}

// Capture turns clipboard changes into entries.
type Capture struct {
	Source   ClipboardSource
	Entries  *entries.Store
	Sender   Sender // nil disables auto-send
	AutoSend bool
	Interval time.Duration
	Logger   *zap.Logger

	// OnCapture is called after each stored entry.
	OnCapture func(entries.Entry)
}

// Run blocks until ctx is done or the clipboard source closes.
func (c *Capture) Run(ctx context.Context) error {
	if c.Source == nil || c.Entries == nil {
		return errors.New("capture needs a clipboard source and an entry store")
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("clipboard capture started", zap.Bool("auto_send", c.AutoSend))
	defer logger.Info("clipboard capture stopped")

	var previous string
	for text := range c.Source.Watch(ctx, c.Interval) {
		if strings.TrimSpace(text) == "" || text == previous {
			continue
		}
		previous = text

		entry, err := c.Entries.Add(text)
		switch {
		case errors.Is(err, entries.ErrDuplicate):
			logger.Debug("clipboard text already captured")
			continue
		case err != nil:
			logger.Warn("failed to store clipboard text", zap.Error(err))
			continue
		}
		if c.OnCapture != nil {
			c.OnCapture(entry)
		}

		if c.AutoSend && c.Sender != nil {
			c.send(ctx, logger, entry)
		}
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (c *Capture) send(ctx context.Context, logger *zap.Logger, entry entries.Entry) {
	_, err := c.Sender.Send(ctx, entry.ID)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotConnected), errors.Is(err, ErrNoSpace):
		logger.Debug("entry queued until connected", zap.String("id", entry.ID), zap.Error(err))
	default:
		logger.Warn("auto-send failed", zap.String("id", entry.ID), zap.Error(err))
	}
}
