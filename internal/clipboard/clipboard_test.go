package clipboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeBackend is a controllable backend.
type fakeBackend struct {
	mu    sync.Mutex
	data  string
	err   error
	block chan struct{}
}

func (f *fakeBackend) read() ([]byte, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return []byte(f.data), f.err
}

func (f *fakeBackend) write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = string(data)
	return f.err
}

func (f *fakeBackend) name() string { return "fake" }

func (f *fakeBackend) set(s string) {
	f.mu.Lock()
	f.data = s
	f.mu.Unlock()
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, "memory", m.Name())

	require.NoError(t, m.Write("line one\r\nline two"))
	got, err := m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", Normalize("a\r\nb\rc\n"))
	assert.Equal(t, "", Normalize(""))
}

func TestReadUsesPrimary(t *testing.T) {
	fb := &fakeBackend{data: "hello"}
	m := newManager(fb, time.Second, nil)

	got, err := m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "fake", m.Name())

	require.NoError(t, m.Write("bye"))
	assert.Equal(t, "bye", fb.data)
}

func TestReadErrorPropagates(t *testing.T) {
	fb := &fakeBackend{err: errors.New("no display")}
	m := newManager(fb, time.Second, nil)

	_, err := m.Read(context.Background())
	assert.EqualError(t, err, "no display")
}

func TestTimeoutFallsBackAndRecovers(t *testing.T) {
	fb := &fakeBackend{data: "system", block: make(chan struct{})}
	m := newManager(fb, 20*time.Millisecond, nil)
	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.fallback.write([]byte("buffered")))

	got, err := m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "buffered", got)
	assert.Equal(t, "memory", m.Name(), "degraded manager should report the buffer")

	// Unblock the stuck read so the goroutine exits.
	close(fb.block)

	now = now.Add(healthCheckInterval)
	got, err = m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "system", got)
	assert.Equal(t, "fake", m.Name())
}

func TestReadHonoursContext(t *testing.T) {
	fb := &fakeBackend{block: make(chan struct{})}
	m := newManager(fb, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	close(fb.block)
}

func TestWatchPollsForChanges(t *testing.T) {
	fb := &fakeBackend{data: "initial"}
	m := newManager(fb, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := m.Watch(ctx, 5*time.Millisecond)

	fb.set("first")
	select {
	case got := <-ch:
		assert.Equal(t, "first", got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first change")
	}

	fb.set("second\r\n")
	select {
	case got := <-ch:
		assert.Equal(t, "second\n", got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second change")
	}

	cancel()
	for range ch {
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	ch := m.Watch(ctx, time.Millisecond)
	cancel()

	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed")
	}
}
