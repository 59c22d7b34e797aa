package ui

import (
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/atomicstack/quicklaunch/internal/backend"
	"github.com/atomicstack/quicklaunch/internal/menu"
	"github.com/atomicstack/quicklaunch/internal/theme"
	"github.com/atomicstack/quicklaunch/internal/ui/command"
	uistate "github.com/atomicstack/quicklaunch/internal/ui/state"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

const (
	menuHeaderSeparator = "→"
	defaultRootTitle    = "quicklaunch"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

func newLevel(id, title string, m *menu.Menu) *level {
	return uistate.NewLevel(id, title, m)
}

// Options wires the model to its collaborators.
type Options struct {
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool

	// Title names the root level.
	Title string
	// Programs is the root menu in popup mode.
	Programs *menu.Menu
	// BrowsePath, when set, opens that folder as the root menu instead.
	BrowsePath string

	Builder    *menu.Builder
	Controller *menu.Controller
	Launcher   menu.Launcher
	Text       menu.Localizer
	Notifier   menu.Notifier

	// Scans delivers completed folder scans. Nil disables the wait loop.
	Scans <-chan backend.Event
}

// Model implements the Bubble Tea model for the launcher menu.
type Model struct {
	stack        []*level
	loading      bool
	pendingID    string
	pendingLabel string
	errMsg       string
	infoMsg      string
	infoExpire   time.Time
	width        int
	height       int
	fixedWidth   bool
	fixedHeight  bool
	showFooter   bool
	verbose      bool
	spinner      spinner.Model

	handlers map[reflect.Type]msgHandler

	registry  *menu.Registry
	bus       *command.Bus
	rootTitle string

	builder  *menu.Builder
	folders  *menu.Controller
	scans    <-chan backend.Event
	launcher menu.Launcher
	text     menu.Localizer
	notifier menu.Notifier
	seq      int
}

// NewModel initialises the UI state with the root menu and configuration.
func NewModel(opts Options) *Model {
	m := &Model{
		registry:   menu.BuildRegistry(),
		bus:        command.New(),
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
		rootTitle:  strings.TrimSpace(opts.Title),
		builder:    opts.Builder,
		folders:    opts.Controller,
		scans:      opts.Scans,
		launcher:   opts.Launcher,
		text:       opts.Text,
		notifier:   opts.Notifier,
	}
	if m.text == nil {
		m.text = keyText{}
	}
	if m.rootTitle == "" {
		m.rootTitle = defaultRootTitle
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}

	s := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	if styles.Spinner != nil {
		s.Style = styles.Spinner.Copy()
	}
	m.spinner = s

	if opts.BrowsePath != "" {
		m.openRootFolder(filepath.Base(filepath.Clean(opts.BrowsePath)), opts.BrowsePath)
	} else {
		root := newLevel("programs", m.rootTitle, opts.Programs)
		m.syncViewport(root)
		m.stack = []*level{root}
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.scans != nil {
		cmds = append(cmds, waitForScan(m.scans))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):         m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):  m.handleWindowSizeMsg,
		reflect.TypeOf(spinner.TickMsg{}):    m.handleSpinnerTickMsg,
		reflect.TypeOf(scanCompletedMsg{}):   m.handleScanCompletedMsg,
		reflect.TypeOf(scansDoneMsg{}):       m.handleScansDoneMsg,
		reflect.TypeOf(menu.ActionResult{}):  m.handleActionResultMsg,
		reflect.TypeOf(menu.CloseRequest{}):  m.handleCloseRequestMsg,
		reflect.TypeOf(menu.BrowseRequest{}): m.handleBrowseRequestMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleSpinnerTickMsg(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(tick)
	return cmd
}

// Close disposes every root folder menu still on the stack.
func (m *Model) Close() {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if lvl := m.stack[i]; lvl.Menu != nil && lvl.Menu.Root {
			lvl.Menu.Close()
		}
	}
}

// keyText is the fallback localizer: it shows message keys verbatim.
type keyText struct{}

func (keyText) Text(key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, key)
	for _, a := range args {
		if s, ok := a.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ": ")
}
