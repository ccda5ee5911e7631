package clipboard

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// watcher is implemented by backends that push change notifications.
type watcher interface {
	watch(ctx context.Context) <-chan []byte
}

// Watch emits the clipboard text every time it changes until ctx is done.
// Neither blank text nor the text present when Watch starts is emitted.
// Backends without change notifications are polled every interval.
func (m *Manager) Watch(ctx context.Context, interval time.Duration) <-chan string {
	out := make(chan string)
	if w, ok := m.primary.(watcher); ok {
		go m.forward(ctx, w.watch(ctx), out)
		return out
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	last, _ := m.Read(ctx)
	go m.poll(ctx, interval, last, out)
	return out
}

func (m *Manager) forward(ctx context.Context, in <-chan []byte, out chan<- string) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-in:
			if !ok {
				return
			}
			text := Normalize(string(data))
			if strings.TrimSpace(text) == "" {
				continue
			}
			select {
			case out <- text:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (m *Manager) poll(ctx context.Context, interval time.Duration, last string, out chan<- string) {
	defer close(out)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		text, err := m.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Debug("clipboard read failed", zap.Error(err))
			}
			continue
		}
		if text == last {
			continue
		}
		last = text
		if strings.TrimSpace(text) == "" {
			continue
		}
		select {
		case out <- text:
		case <-ctx.Done():
			return
		}
	}
}
