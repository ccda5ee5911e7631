package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/gemnote/internal/anytype"
	"github.com/five82/gemnote/internal/config"
	"github.com/five82/gemnote/internal/discovery"
	"github.com/five82/gemnote/internal/entries"
	"github.com/five82/gemnote/internal/prefs"
	"github.com/five82/gemnote/internal/state"
)

var (
	// ErrNoAPIKey is returned when no API key has been entered.
	ErrNoAPIKey = errors.New("api key not set")
	// ErrNotConnected is returned when an operation needs a live endpoint.
	ErrNotConnected = errors.New("not connected")
	// ErrNoSpace is returned when sending without a selected space.
	ErrNoSpace = errors.New("no space selected")
	// ErrUnknownSpace is returned when selecting a space the endpoint did not list.
	ErrUnknownSpace = errors.New("unknown space")
	// ErrUnknownType is returned when selecting a type the space does not define.
	ErrUnknownType = errors.New("unknown object type")
	// ErrConnectionLost wraps failures that dropped the connection.
	ErrConnectionLost = errors.New("connection lost")
)

// ServiceFactory builds a NoteService for an endpoint.
type ServiceFactory func(baseURL, apiKey string) (anytype.NoteService, error)

// ConnectorOptions wire a Connector.
type ConnectorOptions struct {
	Config    config.Config
	PrefsPath string
	Entries   *entries.Store
	State     *state.Store
	Logger    *zap.Logger

	// NewService defaults to anytype.NewClient with the configured timeout.
	NewService ServiceFactory
	// LocalSubnet defaults to discovery.LocalSubnet.
	LocalSubnet func(iface string) (string, error)
}

// Connector owns the connection to the companion API: discovery, the cached
// endpoint, space and type selection, and sending entries.
type Connector struct {
	cfg         config.Config
	prefsPath   string
	entries     *entries.Store
	state       *state.Store
	logger      *zap.Logger
	newService  ServiceFactory
	localSubnet func(string) (string, error)

	connectMu sync.Mutex

	mu      sync.RWMutex
	prefs   prefs.Prefs
	service anytype.NoteService
}

// NewConnector loads preferences and seeds the state store from them.
func NewConnector(opts ConnectorOptions) (*Connector, error) {
	if opts.Entries == nil {
		return nil, fmt.Errorf("entries store required")
	}
	if opts.State == nil {
		opts.State = &state.Store{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("load prefs: %w", err)
	}

	c := &Connector{
		cfg:         opts.Config,
		prefsPath:   opts.PrefsPath,
		entries:     opts.Entries,
		state:       opts.State,
		logger:      logger,
		newService:  opts.NewService,
		localSubnet: opts.LocalSubnet,
		prefs:       p,
	}
	if c.newService == nil {
		timeout := opts.Config.RequestTimeout
		c.newService = func(baseURL, apiKey string) (anytype.NoteService, error) {
			return anytype.NewClient(baseURL, apiKey, anytype.WithTimeout(timeout), anytype.WithLogger(logger))
		}
	}
	if c.localSubnet == nil {
		c.localSubnet = discovery.LocalSubnet
	}

	if p.SpaceID != "" {
		c.state.SelectSpace(p.SpaceID, p.SpaceName)
	}
	c.state.SelectType(p.TypeKey)
	return c, nil
}

// State returns the shared connection state.
func (c *Connector) State() *state.Store { return c.state }

// Entries returns the entry store.
func (c *Connector) Entries() *entries.Store { return c.entries }

// Prefs returns the current preferences.
func (c *Connector) Prefs() prefs.Prefs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

// APIKey returns the key in effect. The environment wins over prefs.
func (c *Connector) APIKey() string {
	if k := strings.TrimSpace(c.cfg.APIKey); k != "" {
		return k
	}
	return c.Prefs().APIKey
}

// SetAPIKey stores the key in prefs. An empty key clears it and drops the
// connection.
func (c *Connector) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if err := c.updatePrefs(func(p *prefs.Prefs) { p.APIKey = key }); err != nil {
		return err
	}
	c.setService(nil)
	c.state.SetDisconnected(nil)
	return nil
}

// SetTheme persists the TUI theme.
func (c *Connector) SetTheme(name string) error {
	return c.updatePrefs(func(p *prefs.Prefs) { p.Theme = name })
}

// Connect verifies the cached endpoint and falls back to a LAN sweep.
func (c *Connector) Connect(ctx context.Context) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	key := c.APIKey()
	if key == "" {
		c.state.RecordError(ErrNoAPIKey)
		return ErrNoAPIKey
	}

	if cached := c.cachedURL(); cached != "" {
		spaces, svc, err := c.verify(ctx, cached, key)
		if err == nil {
			return c.finishConnect(ctx, cached, svc, spaces)
		}
		if ctx.Err() != nil {
			c.state.SetDisconnected(ctx.Err())
			return ctx.Err()
		}
		c.logger.Info("cached endpoint unreachable, scanning",
			zap.String("base_url", cached), zap.Error(err))
	}
	return c.scanLocked(ctx, key)
}

// ConnectTo verifies baseURL only and caches it on success.
func (c *Connector) ConnectTo(ctx context.Context, baseURL string) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	key := c.APIKey()
	if key == "" {
		c.state.RecordError(ErrNoAPIKey)
		return ErrNoAPIKey
	}
	u, err := anytype.ParseBaseURL(baseURL)
	if err != nil {
		return err
	}
	normalized := u.String()
	spaces, svc, err := c.verify(ctx, normalized, key)
	if err != nil {
		err = fmt.Errorf("connect %s: %w", normalized, err)
		c.setService(nil)
		c.state.SetDisconnected(err)
		return err
	}
	return c.finishConnect(ctx, normalized, svc, spaces)
}

// Scan runs a LAN sweep, ignoring the cached endpoint.
func (c *Connector) Scan(ctx context.Context) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	key := c.APIKey()
	if key == "" {
		c.state.RecordError(ErrNoAPIKey)
		return ErrNoAPIKey
	}
	return c.scanLocked(ctx, key)
}

func (c *Connector) scanLocked(ctx context.Context, key string) error {
	c.setService(nil)
	c.state.SetScanning()

	subnet := strings.TrimSpace(c.cfg.Subnet)
	if subnet == "" {
		detected, err := c.localSubnet(c.cfg.Interface)
		if err != nil {
			c.state.SetDisconnected(err)
			return err
		}
		subnet = detected
	}

	sweeper := discovery.Sweeper{
		Port:        c.cfg.APIPort,
		Concurrency: c.cfg.ScanConcurrency,
		Timeout:     c.cfg.ProbeTimeout,
		Prober:      c.prober(key),
		Logger:      c.logger,
	}
	baseURL, err := sweeper.Sweep(ctx, subnet)
	if err != nil {
		c.state.SetDisconnected(err)
		return err
	}

	spaces, svc, err := c.verify(ctx, baseURL, key)
	if err != nil {
		err = fmt.Errorf("connect %s: %w", baseURL, err)
		c.state.SetDisconnected(err)
		return err
	}
	return c.finishConnect(ctx, baseURL, svc, spaces)
}

func (c *Connector) prober(key string) discovery.Prober {
	return discovery.ProberFunc(func(ctx context.Context, baseURL string) bool {
		svc, err := c.newService(baseURL, key)
		if err != nil {
			return false
		}
		_, err = svc.ListSpaces(ctx)
		return err == nil
	})
}

func (c *Connector) verify(ctx context.Context, baseURL, key string) ([]anytype.Space, anytype.NoteService, error) {
	svc, err := c.newService(baseURL, key)
	if err != nil {
		return nil, nil, err
	}
	spaces, err := svc.ListSpaces(ctx)
	if err != nil {
		return nil, nil, err
	}
	return spaces, svc, nil
}

// finishConnect records the endpoint and settles the space selection.
func (c *Connector) finishConnect(ctx context.Context, baseURL string, svc anytype.NoteService, spaces []anytype.Space) error {
	c.setService(svc)
	c.state.SetConnected(baseURL, spaces)

	space, ok := findSpace(spaces, c.Prefs().SpaceID)
	if !ok && len(spaces) > 0 {
		space, ok = spaces[0], true
	}

	err := c.updatePrefs(func(p *prefs.Prefs) {
		p.BaseURL = baseURL
		if ok {
			p.SpaceID = space.ID
			p.SpaceName = space.Name
		} else {
			p.SpaceID = ""
			p.SpaceName = ""
		}
	})
	if err != nil {
		c.logger.Warn("failed to persist endpoint", zap.Error(err))
	}

	c.logger.Info("connected",
		zap.String("base_url", baseURL),
		zap.Int("spaces", len(spaces)),
		zap.String("space", space.Name))

	if !ok {
		c.state.SelectSpace("", "")
		return nil
	}
	c.state.SelectSpace(space.ID, space.Name)
	return c.loadTypes(ctx, space.ID)
}

// loadTypes fetches the object types of spaceID. It only returns an error
// when the failure dropped the connection; otherwise the previous types stay.
func (c *Connector) loadTypes(ctx context.Context, spaceID string) error {
	svc := c.currentService()
	if svc == nil {
		return nil
	}
	types, err := svc.ListTypes(ctx, spaceID)
	if err != nil {
		c.logger.Warn("failed to load object types", zap.String("space", spaceID), zap.Error(err))
		err = c.handleFailure(ctx, err)
		if c.state.Snapshot().Status != state.StatusConnected {
			return fmt.Errorf("load types: %w", err)
		}
		return nil
	}
	c.state.SetTypes(types)
	return nil
}

// SelectSpace switches the target space and reloads its types.
func (c *Connector) SelectSpace(ctx context.Context, id string) error {
	snap := c.state.Snapshot()
	space, ok := findSpace(snap.Spaces, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSpace, id)
	}
	if err := c.updatePrefs(func(p *prefs.Prefs) {
		p.SpaceID = space.ID
		p.SpaceName = space.Name
	}); err != nil {
		return err
	}
	c.state.SelectSpace(space.ID, space.Name)
	return c.loadTypes(ctx, space.ID)
}

// SelectType sets the object type key used for new notes. When the space's
// types are known the key must be one of them.
func (c *Connector) SelectType(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		key = prefs.DefaultTypeKey
	}
	snap := c.state.Snapshot()
	if len(snap.Types) > 0 && !hasType(snap.Types, key) {
		return fmt.Errorf("%w: %s", ErrUnknownType, key)
	}
	if err := c.updatePrefs(func(p *prefs.Prefs) { p.TypeKey = key }); err != nil {
		return err
	}
	c.state.SelectType(key)
	return nil
}

// Check re-verifies a connected endpoint. It is a no-op while disconnected.
func (c *Connector) Check(ctx context.Context) error {
	snap := c.state.Snapshot()
	svc := c.currentService()
	if snap.Status != state.StatusConnected || svc == nil {
		return nil
	}
	spaces, err := svc.ListSpaces(ctx)
	if err != nil {
		c.handleFailure(ctx, err)
		return err
	}
	c.state.SetConnected(snap.BaseURL, spaces)
	return nil
}

// Send creates a note from the entry and marks it synced.
func (c *Connector) Send(ctx context.Context, id string) (entries.Entry, error) {
	snap := c.state.Snapshot()
	svc := c.currentService()
	if snap.Status != state.StatusConnected || svc == nil {
		return entries.Entry{}, ErrNotConnected
	}
	if snap.SpaceID == "" {
		return entries.Entry{}, ErrNoSpace
	}
	if err := c.entries.Reload(); err != nil {
		return entries.Entry{}, err
	}
	entry, err := c.entries.Get(id)
	if err != nil {
		return entries.Entry{}, err
	}

	typeKey := snap.TypeKey
	if typeKey == "" {
		typeKey = prefs.DefaultTypeKey
	}
	title, body := anytype.NoteFromContent(entry.Content)
	obj, err := svc.CreateObject(ctx, snap.SpaceID, anytype.CreateObjectRequest{
		Name:    title,
		TypeKey: typeKey,
		Body:    body,
	})
	if err != nil {
		err = c.handleFailure(ctx, err)
		return entry, fmt.Errorf("send entry %s: %w", shortID(entry.ID), err)
	}

	objectID := ""
	if obj != nil {
		objectID = obj.ID
	}
	if err := c.entries.MarkSynced(entry.ID, objectID); err != nil {
		return entry, err
	}
	entry.Synced = true
	entry.ObjectID = objectID
	c.logger.Info("entry sent",
		zap.String("id", entry.ID),
		zap.String("space", snap.SpaceName),
		zap.String("type", typeKey),
		zap.String("object", objectID))
	return entry, nil
}

// SendAll sends unsynced entries oldest first. It stops at the first
// failure that drops the connection; other failures are collected.
func (c *Connector) SendAll(ctx context.Context) (int, error) {
	if err := c.entries.Reload(); err != nil {
		return 0, err
	}
	pending := c.entries.Unsynced()
	sent := 0
	var errs []error
	for _, e := range pending {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := c.Send(ctx, e.ID); err != nil {
			errs = append(errs, err)
			if errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrNotConnected) || errors.Is(err, ErrNoSpace) {
				break
			}
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// handleFailure drops the connection when err means the endpoint is gone
// and returns err, wrapped with ErrConnectionLost in that case.
func (c *Connector) handleFailure(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	if anytype.IsConnectionLost(err) || !anytype.IsAPIError(err) {
		lost := fmt.Errorf("%w: %w", ErrConnectionLost, err)
		c.setService(nil)
		c.state.SetDisconnected(lost)
		c.logger.Warn("connection lost", zap.Error(err))
		return lost
	}
	c.state.RecordError(err)
	return err
}

func (c *Connector) cachedURL() string {
	raw := strings.TrimSpace(c.cfg.BaseURL)
	if raw == "" {
		raw = c.Prefs().BaseURL
	}
	if raw == "" {
		return ""
	}
	u, err := anytype.ParseBaseURL(raw)
	if err != nil {
		c.logger.Warn("ignoring invalid cached base url", zap.String("base_url", raw), zap.Error(err))
		return ""
	}
	return u.String()
}

func (c *Connector) currentService() anytype.NoteService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.service
}

func (c *Connector) setService(svc anytype.NoteService) {
	c.mu.Lock()
	c.service = svc
	c.mu.Unlock()
}

func (c *Connector) updatePrefs(fn func(*prefs.Prefs)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := prefs.Update(c.prefsPath, fn)
	if err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	c.prefs = next
	return nil
}

func findSpace(spaces []anytype.Space, id string) (anytype.Space, bool) {
	if id == "" {
		return anytype.Space{}, false
	}
	for _, sp := range spaces {
		if sp.ID == id {
			return sp, true
		}
	}
	return anytype.Space{}, false
}

func hasType(types []anytype.ObjectType, key string) bool {
	for _, t := range types {
		if t.Key == key {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
