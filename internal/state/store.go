package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/gemnote/internal/anytype"
)

// Status is the connection state of the companion API.
type Status int

const (
	StatusDisconnected Status = iota
	StatusScanning
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusScanning:
		return "scanning"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Snapshot represents the latest connection data available to the UI.
type Snapshot struct {
	Status              Status
	BaseURL             string
	Spaces              []anytype.Space
	SpaceID             string
	SpaceName           string
	TypeKey             string
	Types               []anytype.ObjectType
	LastError           error
	LastChange          time.Time
	ConsecutiveFailures int // Number of consecutive failed connects or health checks
}

// IsOffline returns true when the API has been unreachable for multiple attempts.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Connected reports whether a base URL is known to answer.
func (s Snapshot) Connected() bool {
	return s.Status == StatusConnected
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	subs     []chan struct{}
}

// SetScanning marks a sweep in progress. The previous endpoint is forgotten.
func (s *Store) SetScanning() {
	s.mutate(func(snap *Snapshot) {
		snap.Status = StatusScanning
		snap.BaseURL = ""
	})
}

// SetConnected records a working endpoint and the spaces it exposes. The
// current space selection survives when it is still listed.
func (s *Store) SetConnected(baseURL string, spaces []anytype.Space) {
	s.mutate(func(snap *Snapshot) {
		snap.Status = StatusConnected
		snap.BaseURL = baseURL
		snap.Spaces = cloneSlice(spaces)
		snap.LastError = nil
		snap.ConsecutiveFailures = 0
		if snap.SpaceID != "" && !hasSpace(spaces, snap.SpaceID) {
			snap.SpaceID = ""
			snap.SpaceName = ""
			snap.Types = nil
		}
	})
}

// SetDisconnected drops the endpoint and records why. Spaces and selections
// are kept for display until the next successful connect.
func (s *Store) SetDisconnected(err error) {
	s.mutate(func(snap *Snapshot) {
		snap.Status = StatusDisconnected
		snap.BaseURL = ""
		snap.LastError = err
		if err != nil {
			snap.ConsecutiveFailures++
		}
	})
}

// RecordError notes a failure that did not change the connection status.
func (s *Store) RecordError(err error) {
	s.mutate(func(snap *Snapshot) {
		snap.LastError = err
	})
}

// SelectSpace sets the target space. Types belong to a space and are cleared.
func (s *Store) SelectSpace(id, name string) {
	s.mutate(func(snap *Snapshot) {
		if snap.SpaceID != id {
			snap.Types = nil
		}
		snap.SpaceID = id
		snap.SpaceName = name
	})
}

// SetTypes records the object types of the selected space.
func (s *Store) SetTypes(types []anytype.ObjectType) {
	s.mutate(func(snap *Snapshot) {
		snap.Types = cloneSlice(types)
	})
}

// SelectType sets the object type used for new notes.
func (s *Store) SelectType(key string) {
	s.mutate(func(snap *Snapshot) {
		snap.TypeKey = key
	})
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Spaces = cloneSlice(s.snapshot.Spaces)
	snap.Types = cloneSlice(s.snapshot.Types)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Subscribe returns a channel that receives a value after each change.
// Notifications coalesce when the reader falls behind.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snapshot)
	s.snapshot.LastChange = time.Now()
	subs := s.subs
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func hasSpace(spaces []anytype.Space, id string) bool {
	for _, sp := range spaces {
		if sp.ID == id {
			return true
		}
	}
	return false
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
