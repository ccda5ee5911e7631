package clipboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	atotto "github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Clipboard is the surface the rest of gemnote uses.
type Clipboard interface {
	Read(ctx context.Context) (string, error)
	Write(text string) error
	Name() string
}

const (
	defaultTimeout      = 2 * time.Second
	healthCheckInterval = 5 * time.Second
	defaultPollInterval = time.Second
)

// ErrUnavailable is returned when no backend can serve a request.
var ErrUnavailable = errors.New("clipboard unavailable")

// backend is one clipboard implementation.
type backend interface {
	read() ([]byte, error)
	write(data []byte) error
	name() string
}

// memoryBackend is used as a fallback when the system clipboard is not available.
type memoryBackend struct {
	mu   sync.RWMutex
	data []byte
}

func (m *memoryBackend) read() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.data...), nil
}

func (m *memoryBackend) write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memoryBackend) name() string { return "memory" }

// atottoBackend goes through github.com/atotto/clipboard.
type atottoBackend struct{}

func (atottoBackend) read() ([]byte, error) {
	text, err := atotto.ReadAll()
	return []byte(text), err
}

func (atottoBackend) write(data []byte) error {
	return atotto.WriteAll(string(data))
}

func (atottoBackend) name() string { return "atotto" }

// Options tune New.
type Options struct {
	InMemory bool          // skip system backends entirely
	Timeout  time.Duration // per-call budget for system backends
	Logger   *zap.Logger
}

// Manager implements Clipboard on top of the selected backend.
type Manager struct {
	primary  backend
	fallback *memoryBackend
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	degraded    bool
	lastFailure time.Time
}

var _ Clipboard = (*Manager)(nil)

// New returns a Manager using the best backend available on this host.
func New(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var primary backend
	if !opts.InMemory {
		primary = selectBackend(logger)
	}
	return newManager(primary, opts.Timeout, logger)
}

// NewMemory returns a Manager backed only by an in-memory buffer.
func NewMemory() *Manager {
	return newManager(nil, 0, nil)
}

func newManager(primary backend, timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		primary:  primary,
		fallback: &memoryBackend{},
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

func selectBackend(logger *zap.Logger) backend {
	b, err := newSystemBackend()
	if err == nil {
		logger.Debug("using system clipboard", zap.String("backend", b.name()))
		return b
	}
	logger.Debug("system clipboard unavailable", zap.Error(err))
	if !atotto.Unsupported {
		logger.Debug("using clipboard command line tools")
		return atottoBackend{}
	}
	logger.Info("no clipboard utilities available, using in-memory clipboard")
	return nil
}

// Name reports which backend currently serves reads.
func (m *Manager) Name() string {
	if b := m.active(); b != nil {
		return b.name()
	}
	return m.fallback.name()
}

// Read returns the current clipboard text with line endings normalized.
func (m *Manager) Read(ctx context.Context) (string, error) {
	b := m.active()
	if b == nil {
		data, _ := m.fallback.read()
		return Normalize(string(data)), nil
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := b.read()
		done <- result{data, err}
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		m.recovered()
		return Normalize(string(r.data)), nil
	case <-timer.C:
		m.markDegraded(b)
		data, _ := m.fallback.read()
		return Normalize(string(data)), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Write places text on the clipboard. The in-memory buffer always receives
// a copy so that a later fallback read still sees it.
func (m *Manager) Write(text string) error {
	_ = m.fallback.write([]byte(text))
	b := m.active()
	if b == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- b.write([]byte(text)) }()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err == nil {
			m.recovered()
		}
		return err
	case <-timer.C:
		m.markDegraded(b)
		return nil
	}
}

// active returns the backend to use, or nil for the in-memory buffer. A
// degraded primary is retried once per health check interval.
func (m *Manager) active() backend {
	if m.primary == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.degraded && m.now().Sub(m.lastFailure) < healthCheckInterval {
		return nil
	}
	return m.primary
}

func (m *Manager) markDegraded(b backend) {
	m.mu.Lock()
	was := m.degraded
	m.degraded = true
	m.lastFailure = m.now()
	m.mu.Unlock()
	if !was {
		m.logger.Warn("system clipboard unresponsive, using in-memory fallback",
			zap.String("backend", b.name()),
			zap.Duration("timeout", m.timeout))
	}
}

func (m *Manager) recovered() {
	m.mu.Lock()
	was := m.degraded
	m.degraded = false
	m.mu.Unlock()
	if was {
		m.logger.Info("system clipboard recovered")
	}
}

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
