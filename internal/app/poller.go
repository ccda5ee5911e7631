package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/five82/gemnote/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
	healthInterval      = 15 * time.Second
)

// connection is the part of Connector the reconnector drives.
type connection interface {
	Connect(ctx context.Context) error
	Check(ctx context.Context) error
	APIKey() string
	State() *state.Store
}

// StartReconnector launches a background goroutine that keeps the connection
// alive: it reconnects with exponential backoff while disconnected and
// re-verifies the endpoint while connected. The first step runs one interval
// after the call, leaving the initial connect to the caller. It returns
// immediately.
func StartReconnector(ctx context.Context, conn connection, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &reconnector{conn: conn, base: interval, logger: logger}
	go func() {
		wait := interval
		for {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			wait = r.step(ctx)
		}
	}()
}

type reconnector struct {
	conn     connection
	base     time.Duration
	failures int
	logger   *zap.Logger
}

// step runs one iteration and returns how long to wait before the next.
func (r *reconnector) step(ctx context.Context) time.Duration {
	if ctx.Err() != nil {
		return r.base
	}
	if r.conn.APIKey() == "" {
		r.failures = 0
		return r.base
	}

	switch r.conn.State().Snapshot().Status {
	case state.StatusScanning:
		// Someone else is sweeping.
		return r.base
	case state.StatusConnected:
		if err := r.conn.Check(ctx); err != nil {
			r.failures++
			r.logger.Warn("health check failed", zap.Error(err))
			return calculateBackoff(r.failures, r.base)
		}
		r.failures = 0
		return healthInterval
	default:
		if err := r.conn.Connect(ctx); err != nil {
			r.failures++
			wait := calculateBackoff(r.failures, r.base)
			if !errors.Is(err, context.Canceled) {
				r.logger.Debug("reconnect failed",
					zap.Error(err),
					zap.Int("failures", r.failures),
					zap.Duration("retry_in", wait))
			}
			return wait
		}
		r.failures = 0
		return healthInterval
	}
}

// calculateBackoff returns base * 2^failures, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
