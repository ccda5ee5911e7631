package entries

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// HardLimit is the maximum number of entries a store ever keeps.
	HardLimit            = 50
	defaultPreviewLength = 100
)

var (
	// ErrEmpty is returned when adding blank content.
	ErrEmpty = errors.New("entry content is empty")
	// ErrDuplicate is returned when the content is already stored.
	ErrDuplicate = errors.New("entry already exists")
	// ErrNotFound is returned when no entry matches an id.
	ErrNotFound = errors.New("entry not found")
	// ErrAmbiguous is returned when an id prefix matches several entries.
	ErrAmbiguous = errors.New("entry id prefix is ambiguous")
)

// Entry is one captured clipboard snippet.
type Entry struct {
	ID        string
	Content   string
	Preview   string
	Timestamp time.Time
	Synced    bool
	ObjectID  string
}

// entryJSON is the persisted shape. Timestamps are Unix milliseconds.
type entryJSON struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Preview   string `json:"preview"`
	Timestamp int64  `json:"timestamp"`
	Synced    bool   `json:"isSynced"`
	ObjectID  string `json:"objectId,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		ID:        e.ID,
		Content:   e.Content,
		Preview:   e.Preview,
		Timestamp: e.Timestamp.UnixMilli(),
		Synced:    e.Synced,
		ObjectID:  e.ObjectID,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		entryJSON
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	*e = Entry{
		ID:        id,
		Content:   raw.Content,
		Preview:   raw.Preview,
		Timestamp: time.UnixMilli(raw.Timestamp),
		Synced:    raw.Synced,
		ObjectID:  raw.ObjectID,
	}
	return nil
}

// decodeID accepts a string id or the numeric millisecond ids older files
// carry, returned in decimal form.
func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("entry id: %w", err)
	}
	return n.String(), nil
}

// Options tune a Store.
type Options struct {
	MaxEntries    int // clamped to HardLimit; zero uses HardLimit
	PreviewLength int // zero uses 100
	Logger        *zap.Logger

	now   func() time.Time
	newID func() string
}

// Store is a file-backed, newest-first list of entries.
//
// Every mutation re-reads the file before applying the change so that two
// processes sharing the file (the capture watcher and the TUI) rarely lose
// each other's writes. Writes go to a temporary file that is renamed over
// the old one, so readers never observe a partial array.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []Entry

	maxEntries    int
	previewLength int
	logger        *zap.Logger
	now           func() time.Time
	newID         func() string
}

// Open loads the entries file at path. A missing file is an empty list; a
// corrupt file is logged and treated as empty.
func Open(path string, opts Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("entries path is empty")
	}
	s := &Store{
		path:          filepath.Clean(path),
		maxEntries:    opts.MaxEntries,
		previewLength: opts.PreviewLength,
		logger:        opts.Logger,
		now:           opts.now,
		newID:         opts.newID,
	}
	if s.maxEntries <= 0 || s.maxEntries > HardLimit {
		s.maxEntries = HardLimit
	}
	if s.previewLength <= 0 {
		s.previewLength = defaultPreviewLength
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Add stores content as the newest entry, dropping the oldest entries beyond
// the cap.
func (s *Store) Add(content string) (Entry, error) {
	if strings.TrimSpace(content) == "" {
		return Entry{}, ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return Entry{}, err
	}
	for _, e := range s.entries {
		if e.Content == content {
			return Entry{}, ErrDuplicate
		}
	}

	entry := Entry{
		ID:        s.newID(),
		Content:   content,
		Preview:   MakePreview(content, s.previewLength),
		Timestamp: s.now(),
	}
	next := make([]Entry, 0, len(s.entries)+1)
	next = append(next, entry)
	next = append(next, s.entries...)
	if len(next) > s.maxEntries {
		dropped := len(next) - s.maxEntries
		next = next[:s.maxEntries]
		s.logger.Debug("entry cap reached", zap.Int("dropped", dropped))
	}

	if err := s.writeLocked(next); err != nil {
		return Entry{}, err
	}
	s.logger.Info("entry added", zap.String("id", entry.ID), zap.Int("count", len(next)))
	return entry, nil
}

// List returns a copy of all entries, newest first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.entries)
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Unsynced returns entries that have not been sent, oldest first.
func (s *Store) Unsynced() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if !s.entries[i].Synced {
			out = append(out, s.entries[i])
		}
	}
	return out
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return Entry{}, ErrNotFound
	}
	return s.entries[idx], nil
}

// Resolve returns the entry whose id equals ref or starts with it.
func (s *Store) Resolve(ref string) (Entry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Entry{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexLocked(ref); idx >= 0 {
		return s.entries[idx], nil
	}
	var match *Entry
	for i := range s.entries {
		if strings.HasPrefix(s.entries[i].ID, ref) {
			if match != nil {
				return Entry{}, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
			}
			match = &s.entries[i]
		}
	}
	if match == nil {
		return Entry{}, ErrNotFound
	}
	return *match, nil
}

// Delete removes the entry with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	return s.writeLocked(next)
}

// MarkSynced flags the entry as sent and records the remote object id.
func (s *Store) MarkSynced(id, objectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	next := cloneEntries(s.entries)
	next[idx].Synced = true
	next[idx].ObjectID = objectID
	return s.writeLocked(next)
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(nil)
}

// Reload re-reads the backing file.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) indexLocked(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.entries = nil
			return nil
		}
		return fmt.Errorf("read entries: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		s.entries = nil
		return nil
	}

	var loaded []Entry
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("entries file is corrupt, starting empty", zap.String("path", s.path), zap.Error(err))
		s.entries = nil
		return nil
	}
	if len(loaded) > s.maxEntries {
		loaded = loaded[:s.maxEntries]
	}
	s.entries = loaded
	return nil
}

func (s *Store) writeLocked(next []Entry) error {
	if next == nil {
		next = []Entry{}
	}
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create entries dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".entries-*.json")
	if err != nil {
		return fmt.Errorf("create temp entries file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write entries: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close entries: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace entries: %w", err)
	}

	s.entries = next
	return nil
}

// MakePreview returns the first n runes of content with line breaks
// replaced by spaces.
func MakePreview(content string, n int) string {
	if n <= 0 {
		n = defaultPreviewLength
	}
	if utf8.RuneCountInString(content) > n {
		runes := []rune(content)
		content = string(runes[:n])
	}
	content = strings.ReplaceAll(content, "\r\n", " ")
	content = strings.ReplaceAll(content, "\n", " ")
	return strings.ReplaceAll(content, "\r", " ")
}

func cloneEntries(in []Entry) []Entry {
	if len(in) == 0 {
		return nil
	}
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}
