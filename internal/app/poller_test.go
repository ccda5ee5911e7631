package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/five82/gemnote/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeConnection struct {
	key        string
	store      *state.Store
	connectErr error
	checkErr   error
	connects   int
	checks     int
}

func (f *fakeConnection) Connect(context.Context) error {
	f.connects++
	if f.connectErr != nil {
		f.store.SetDisconnected(f.connectErr)
		return f.connectErr
	}
	f.store.SetConnected("http://h:1", nil)
	return nil
}

func (f *fakeConnection) Check(context.Context) error {
	f.checks++
	if f.checkErr != nil {
		f.store.SetDisconnected(f.checkErr)
	}
	return f.checkErr
}

func (f *fakeConnection) APIKey() string      { return f.key }
func (f *fakeConnection) State() *state.Store { return f.store }

func TestReconnector_Step(t *testing.T) {
	ctx := context.Background()
	base := 2 * time.Second
	conn := &fakeConnection{store: &state.Store{}, connectErr: errors.New("not found")}
	r := &reconnector{conn: conn, base: base, logger: zap.NewNop()}

	// No key: idle at base interval without connecting.
	if got := r.step(ctx); got != base || conn.connects != 0 {
		t.Fatalf("step without key = %v (connects=%d), want %v and no connect", got, conn.connects, base)
	}

	conn.key = "k"
	if got := r.step(ctx); got != 4*time.Second {
		t.Fatalf("first failed reconnect wait = %v, want 4s", got)
	}
	if got := r.step(ctx); got != 8*time.Second {
		t.Fatalf("second failed reconnect wait = %v, want 8s", got)
	}

	conn.connectErr = nil
	if got := r.step(ctx); got != healthInterval {
		t.Fatalf("successful reconnect wait = %v, want %v", got, healthInterval)
	}
	if r.failures != 0 {
		t.Fatalf("failures = %d after success, want 0", r.failures)
	}

	// Connected: health check instead of connect.
	if got := r.step(ctx); got != healthInterval || conn.checks != 1 {
		t.Fatalf("healthy step = %v (checks=%d)", got, conn.checks)
	}

	conn.checkErr = errors.New("gone")
	if got := r.step(ctx); got != 4*time.Second {
		t.Fatalf("failed health check wait = %v, want 4s", got)
	}
	if conn.store.Snapshot().Status != state.StatusDisconnected {
		t.Fatalf("status after failed check = %v, want disconnected", conn.store.Snapshot().Status)
	}
}

func TestReconnector_SkipsWhileScanning(t *testing.T) {
	conn := &fakeConnection{key: "k", store: &state.Store{}}
	conn.store.SetScanning()
	r := &reconnector{conn: conn, base: time.Second, logger: zap.NewNop()}

	if got := r.step(context.Background()); got != time.Second {
		t.Fatalf("step while scanning = %v, want 1s", got)
	}
	if conn.connects != 0 || conn.checks != 0 {
		t.Fatalf("step while scanning should not touch the connection")
	}
}

func TestStartReconnector_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn := &fakeConnection{store: &state.Store{}}
	StartReconnector(ctx, conn, time.Millisecond, nil)
	time.Sleep(10 * time.Millisecond)
	cancel()
	// goleak in TestMain verifies the goroutine exits.
	time.Sleep(10 * time.Millisecond)
}

func TestStartReconnector_WaitsBeforeFirstConnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn := &fakeConnection{key: "k", store: &state.Store{}, connectErr: errors.New("not found")}
	StartReconnector(ctx, conn, time.Hour, nil)
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	if conn.connects != 0 {
		t.Fatalf("connects = %d before the first interval, want 0", conn.connects)
	}
}
