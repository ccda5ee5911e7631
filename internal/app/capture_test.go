package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/gemnote/internal/entries"
)

// scriptedSource replays a fixed list of clipboard changes.
type scriptedSource struct {
	texts []string
}

func (s scriptedSource) Watch(ctx context.Context, _ time.Duration) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for _, text := range s.texts {
			select {
			case out <- text:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

type recordingSender struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (r *recordingSender) Send(_ context.Context, id string) (entries.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return entries.Entry{ID: id}, r.err
}

func openEntries(t *testing.T) *entries.Store {
	t.Helper()
	store, err := entries.Open(filepath.Join(t.TempDir(), "entries.json"), entries.Options{})
	require.NoError(t, err)
	return store
}

func TestCapture_StoresDistinctText(t *testing.T) {
	store := openEntries(t)
	var captured []string
	c := &Capture{
		Source:  scriptedSource{texts: []string{"alpha", "alpha", "   ", "beta", "alpha"}},
		Entries: store,
		OnCapture: func(e entries.Entry) {
			captured = append(captured, e.Content)
		},
	}

	require.NoError(t, c.Run(context.Background()))

	// The trailing "alpha" is not the previous clip but is already stored.
	assert.Equal(t, []string{"alpha", "beta"}, captured)
	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "beta", list[0].Content)
}

func TestCapture_AutoSend(t *testing.T) {
	store := openEntries(t)
	sender := &recordingSender{}
	c := &Capture{
		Source:   scriptedSource{texts: []string{"one", "two"}},
		Entries:  store,
		Sender:   sender,
		AutoSend: true,
	}
	require.NoError(t, c.Run(context.Background()))
	assert.Len(t, sender.ids, 2)

	sender.err = ErrNotConnected
	c.Source = scriptedSource{texts: []string{"three"}}
	require.NoError(t, c.Run(context.Background()), "unsent entries stay queued")
	assert.Len(t, sender.ids, 3)
	assert.Equal(t, 3, store.Len())
}

func TestCapture_NoAutoSendWithoutFlag(t *testing.T) {
	sender := &recordingSender{}
	c := &Capture{
		Source:  scriptedSource{texts: []string{"one"}},
		Entries: openEntries(t),
		Sender:  sender,
	}
	require.NoError(t, c.Run(context.Background()))
	assert.Empty(t, sender.ids)
}

func TestCapture_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	block := blockingSource{}
	c := &Capture{Source: block, Entries: openEntries(t)}

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("capture did not stop after cancel")
	}
}

func TestCapture_Validation(t *testing.T) {
	assert.Error(t, (&Capture{}).Run(context.Background()))
}

type blockingSource struct{}

func (blockingSource) Watch(ctx context.Context, _ time.Duration) <-chan string {
	out := make(chan string)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
