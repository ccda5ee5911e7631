package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/five82/gemnote/internal/clipboard"
	"github.com/five82/gemnote/internal/config"
	"github.com/five82/gemnote/internal/entries"
	"github.com/five82/gemnote/internal/logging"
	"github.com/five82/gemnote/internal/state"
	"github.com/five82/gemnote/internal/ui"
)

// Options configure a Runtime.
type Options struct {
	ConfigPath        string
	PrefsPath         string // empty uses default ~/.config/gemnote/prefs.toml
	InMemoryClipboard bool
	Verbose           bool
	LogLevel          string    // overrides the config file when set
	Console           io.Writer // console log sink; nil keeps logs in the file only
	ConsoleLevel      string    // console threshold when above the file level
}

// Runtime holds the wired components shared by every command.
type Runtime struct {
	Config    config.Config
	Logger    *zap.Logger
	Entries   *entries.Store
	State     *state.Store
	Connector *Connector
	Clipboard *clipboard.Manager

	closeLog func()
}

// Open loads configuration, builds the logger and opens the entry store.
func Open(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:        level,
		File:         cfg.LogPath(),
		Console:      opts.Console,
		ConsoleLevel: opts.ConsoleLevel,
		Verbose:      opts.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := entries.Open(cfg.EntriesPath(), entries.Options{
		MaxEntries:    cfg.MaxEntries,
		PreviewLength: cfg.PreviewLength,
		Logger:        logger.Named("entries"),
	})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open entries: %w", err)
	}

	st := &state.Store{}
	conn, err := NewConnector(ConnectorOptions{
		Config:    cfg,
		PrefsPath: opts.PrefsPath,
		Entries:   store,
		State:     st,
		Logger:    logger.Named("connect"),
	})
	if err != nil {
		closeLog()
		return nil, err
	}

	clip := clipboard.New(clipboard.Options{
		InMemory: opts.InMemoryClipboard,
		Logger:   logger.Named("clipboard"),
	})

	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Entries:   store,
		State:     st,
		Connector: conn,
		Clipboard: clip,
		closeLog:  closeLog,
	}, nil
}

// Close flushes the logger.
func (r *Runtime) Close() {
	if r != nil && r.closeLog != nil {
		r.closeLog()
	}
}

// Capture returns a capture loop bound to this runtime.
func (r *Runtime) Capture(autoSend bool) *Capture {
	return &Capture{
		Source:   r.Clipboard,
		Entries:  r.Entries,
		Sender:   r.Connector,
		AutoSend: autoSend,
		Interval: r.Config.PollInterval,
		Logger:   r.Logger.Named("capture"),
	}
}

// Watch captures clipboard changes until ctx is cancelled. With autoSend the
// connection is kept alive in the background and new entries are sent as
// they arrive.
func (r *Runtime) Watch(ctx context.Context, autoSend bool) error {
	if autoSend {
		logger := r.Logger.Named("reconnect")
		go func() {
			if err := r.Connector.Connect(ctx); err != nil && ctx.Err() == nil {
				logger.Info("initial connect failed", zap.Error(err))
			}
		}()
		StartReconnector(ctx, r.Connector, r.Config.PollInterval, logger)
	}
	return r.Capture(autoSend).Run(ctx)
}

// RunTUI starts background reconnection and blocks on the TUI.
func (r *Runtime) RunTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	StartReconnector(ctx, r.Connector, r.Config.PollInterval, r.Logger.Named("reconnect"))

	uiOpts := ui.Options{
		Context:    ctx,
		Controller: r.Connector,
		Entries:    r.Entries,
		Store:      r.State,
		Clipboard:  r.Clipboard,
		StartCapture: func(ctx context.Context) error {
			return r.Capture(true).Run(ctx)
		},
		Describe:  Describe,
		LogPath:   r.Config.LogPath(),
		ThemeName: r.Connector.Prefs().Theme,
		Logger:    r.Logger.Named("ui"),
	}
	return ui.Run(uiOpts)
}
