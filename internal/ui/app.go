package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/five82/gemnote/internal/clipboard"
	"github.com/five82/gemnote/internal/entries"
	"github.com/five82/gemnote/internal/state"
)

// Controller is the connection surface the TUI drives.
type Controller interface {
	Connect(ctx context.Context) error
	Scan(ctx context.Context) error
	ConnectTo(ctx context.Context, baseURL string) error
	SelectSpace(ctx context.Context, id string) error
	SelectType(key string) error
	Send(ctx context.Context, id string) (entries.Entry, error)
	SendAll(ctx context.Context) (int, error)
	SetAPIKey(key string) error
	APIKey() string
	SetTheme(name string) error
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller Controller
	Entries    *entries.Store
	Store      *state.Store
	Clipboard  clipboard.Clipboard

	// StartCapture runs clipboard capture until its context is cancelled.
	// Nil disables the capture toggle.
	StartCapture func(ctx context.Context) error

	// Describe turns errors into status line text. Nil uses err.Error().
	Describe func(error) string

	LogPath   string
	ThemeName string
	Logger    *zap.Logger
}

type promptKind int

const (
	promptNone promptKind = iota
	promptAPIKey
	promptBaseURL
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	ctrl         Controller
	entries      *entries.Store
	store        *state.Store
	clip         clipboard.Clipboard
	startCapture func(context.Context) error
	describe     func(error) string
	logPath      string
	logger       *zap.Logger
	keys         keyMap
	help         help.Model

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	snapshot state.Snapshot
	items    []entries.Entry
	selected int

	// Detail pane
	detail        viewport.Model
	renderer      *glamour.TermRenderer
	rendererWidth int
	rendererStyle string

	// Activity
	spinner spinner.Model
	busy    string

	// Overlays
	showHelp     bool
	showLogs     bool
	logView      viewport.Model
	confirmClear bool
	prompt       promptKind
	input        textinput.Model

	// Status line
	status    string
	statusErr bool
	statusSeq int

	// Capture
	capturing     bool
	captureSeq    int
	captureCancel context.CancelFunc

	// Change feeds
	stateCh   <-chan struct{}
	entriesCh <-chan struct{}
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	describe := opts.Describe
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.CharLimit = 256

	m := Model{
		ctx:          ctx,
		ctrl:         opts.Controller,
		entries:      opts.Entries,
		store:        opts.Store,
		clip:         opts.Clipboard,
		startCapture: opts.StartCapture,
		describe:     describe,
		logPath:      opts.LogPath,
		logger:       logger,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		theme:        GetTheme(opts.ThemeName),
		spinner:      sp,
		input:        ti,
	}

	if m.ctrl != nil && m.ctrl.APIKey() != "" {
		m.busy = "Connecting"
	}
	if m.store != nil {
		m.stateCh = m.store.Subscribe()
		m.snapshot = m.store.Snapshot()
	}
	if m.entries != nil {
		m.items = m.entries.List()
		ch, err := m.entries.Watch(ctx)
		if err != nil {
			logger.Warn("entry file watch unavailable", zap.Error(err))
		} else {
			m.entriesCh = ch
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		waitForState(m.ctx, m.stateCh),
		waitForEntries(m.ctx, m.entriesCh, m.entries),
	}
	if m.ctrl != nil && m.ctrl.APIKey() == "" {
		cmds = append(cmds, func() tea.Msg {
			return promptRequestMsg{kind: promptAPIKey}
		})
	} else if m.ctrl != nil {
		cmds = append(cmds, connectCmd(m.ctx, m.ctrl))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detail = viewport.New(0, 0)
			m.logView = viewport.New(0, 0)
		}
		m.ready = true
		m.layout()
		if m.showLogs {
			m.refreshLogs()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateMsg:
		m.snapshot = m.store.Snapshot()
		return m, waitForState(m.ctx, m.stateCh)

	case entriesMsg:
		if msg.err != nil {
			m.logger.Warn("reload entries failed", zap.Error(msg.err))
		} else {
			m.setItems(msg.items)
		}
		return m, waitForEntries(m.ctx, m.entriesCh, m.entries)

	case actionMsg:
		m.busy = ""
		m.refreshItems()
		if msg.err != nil {
			cmd := m.setStatus(m.describe(msg.err), true)
			return m, cmd
		}
		cmd := m.setStatus(msg.text, false)
		return m, cmd

	case promptRequestMsg:
		cmd := m.openPrompt(msg.kind)
		return m, cmd

	case captureDoneMsg:
		if msg.seq == m.captureSeq {
			m.capturing = false
			m.captureCancel = nil
			if msg.err != nil {
				cmd := m.setStatus(m.describe(msg.err), true)
				return m, cmd
			}
		}
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil
	}

	// Cursor blink and similar messages belong to the open prompt.
	if m.prompt != promptNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogs()
	}
	if m.prompt != promptNone {
		return m.renderPrompt()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.showLogs {
		return m.handleLogKey(msg)
	}
	if m.confirmClear {
		m.confirmClear = false
		if key.Matches(msg, m.keys.Clear) {
			return m.clearEntries()
		}
		cmd := m.setStatus("Clear cancelled", false)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopCapture()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.showLogs = true
		m.refreshLogs()
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.renderer = nil
		m.updateDetail()
		if m.ctrl != nil {
			if err := m.ctrl.SetTheme(m.theme.Name); err != nil {
				m.logger.Warn("save theme failed", zap.Error(err))
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.moveSelection(-len(m.items))
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.moveSelection(len(m.items))
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.detail.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.detail.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Paste):
		return m.pasteClipboard()
	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()
	case key.Matches(msg, m.keys.Clear):
		if len(m.items) == 0 {
			return m, nil
		}
		m.confirmClear = true
		cmd := m.setStatus(fmt.Sprintf("Press X again to delete all %d entries", len(m.items)), true)
		return m, cmd
	case key.Matches(msg, m.keys.Capture):
		return m.toggleCapture()
	case key.Matches(msg, m.keys.APIKey):
		cmd := m.openPrompt(promptAPIKey)
		return m, cmd
	case key.Matches(msg, m.keys.BaseURL):
		cmd := m.openPrompt(promptBaseURL)
		return m, cmd
	case key.Matches(msg, m.keys.CycleType):
		return m.cycleType()
	}

	// Everything below talks to the network; one action at a time.
	if m.ctrl == nil {
		return m, nil
	}
	if m.busy != "" {
		switch {
		case key.Matches(msg, m.keys.Send, m.keys.SendAll, m.keys.Connect, m.keys.Rescan, m.keys.CycleSpace):
			cmd := m.setStatus(m.busy+"...", false)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Send):
		entry, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		m.busy = "Sending"
		return m, sendCmd(m.ctx, m.ctrl, entry)
	case key.Matches(msg, m.keys.SendAll):
		m.busy = "Sending all"
		return m, sendAllCmd(m.ctx, m.ctrl)
	case key.Matches(msg, m.keys.Connect):
		m.busy = "Connecting"
		return m, connectCmd(m.ctx, m.ctrl)
	case key.Matches(msg, m.keys.Rescan):
		m.busy = "Scanning"
		return m, scanCmd(m.ctx, m.ctrl)
	case key.Matches(msg, m.keys.CycleSpace):
		return m.cycleSpace()
	}
	return m, nil
}

func (m Model) pasteClipboard() (tea.Model, tea.Cmd) {
	if m.clip == nil || m.entries == nil {
		return m, nil
	}
	return m, pasteCmd(m.ctx, m.clip, m.entries)
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	entry, ok := m.selectedEntry()
	if !ok {
		return m, nil
	}
	if err := m.entries.Delete(entry.ID); err != nil && !errors.Is(err, entries.ErrNotFound) {
		cmd := m.setStatus(m.describe(err), true)
		return m, cmd
	}
	m.refreshItems()
	cmd := m.setStatus("Entry deleted", false)
	return m, cmd
}

func (m Model) clearEntries() (tea.Model, tea.Cmd) {
	if err := m.entries.Clear(); err != nil {
		cmd := m.setStatus(m.describe(err), true)
		return m, cmd
	}
	m.refreshItems()
	cmd := m.setStatus("All entries cleared", false)
	return m, cmd
}

func (m Model) cycleSpace() (tea.Model, tea.Cmd) {
	spaces := m.snapshot.Spaces
	if len(spaces) == 0 {
		cmd := m.setStatus("No spaces available", true)
		return m, cmd
	}
	next := spaces[0]
	for i, sp := range spaces {
		if sp.ID == m.snapshot.SpaceID {
			next = spaces[(i+1)%len(spaces)]
			break
		}
	}
	m.busy = "Switching space"
	return m, selectSpaceCmd(m.ctx, m.ctrl, next.ID, next.Name)
}

func (m Model) cycleType() (tea.Model, tea.Cmd) {
	types := m.snapshot.Types
	if len(types) == 0 || m.ctrl == nil {
		cmd := m.setStatus("No object types loaded", true)
		return m, cmd
	}
	next := types[0]
	for i, t := range types {
		if t.Key == m.snapshot.TypeKey {
			next = types[(i+1)%len(types)]
			break
		}
	}
	if err := m.ctrl.SelectType(next.Key); err != nil {
		cmd := m.setStatus(m.describe(err), true)
		return m, cmd
	}
	label := next.Name
	if label == "" {
		label = next.Key
	}
	cmd := m.setStatus("Type: "+label, false)
	return m, cmd
}

func (m Model) toggleCapture() (tea.Model, tea.Cmd) {
	if m.startCapture == nil {
		cmd := m.setStatus("Clipboard capture unavailable", true)
		return m, cmd
	}
	if m.capturing {
		m.stopCapture()
		cmd := m.setStatus("Clipboard capture off", false)
		return m, cmd
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.captureSeq++
	m.captureCancel = cancel
	m.capturing = true
	seq := m.captureSeq
	run := m.startCapture
	status := m.setStatus("Clipboard capture on", false)
	return m, tea.Batch(
		status,
		func() tea.Msg { return captureDoneMsg{seq: seq, err: run(ctx)} },
	)
}

func (m *Model) stopCapture() {
	if m.captureCancel != nil {
		m.captureCancel()
		m.captureCancel = nil
	}
	m.capturing = false
}

func (m *Model) moveSelection(delta int) {
	if len(m.items) == 0 {
		m.selected = 0
		return
	}
	m.selected = maxInt(0, minInt(len(m.items)-1, m.selected+delta))
	m.updateDetail()
}

func (m Model) selectedEntry() (entries.Entry, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return entries.Entry{}, false
	}
	return m.items[m.selected], true
}

// setItems replaces the list, keeping the cursor on the same entry when it
// still exists.
func (m *Model) setItems(items []entries.Entry) {
	var current string
	if e, ok := m.selectedEntry(); ok {
		current = e.ID
	}
	m.items = items
	m.selected = 0
	for i, e := range items {
		if e.ID == current {
			m.selected = i
			break
		}
	}
	m.updateDetail()
}

func (m *Model) refreshItems() {
	if m.entries == nil {
		return
	}
	if err := m.entries.Reload(); err != nil {
		m.logger.Warn("reload entries failed", zap.Error(err))
	}
	m.setItems(m.entries.List())
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	return clearStatusAfter(m.statusSeq, StatusMessageTTL)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
