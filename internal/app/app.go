package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/quicklaunch/internal/backend"
	"github.com/atomicstack/quicklaunch/internal/config"
	"github.com/atomicstack/quicklaunch/internal/foldercache"
	"github.com/atomicstack/quicklaunch/internal/icon"
	"github.com/atomicstack/quicklaunch/internal/launch"
	"github.com/atomicstack/quicklaunch/internal/listing"
	"github.com/atomicstack/quicklaunch/internal/logging"
	"github.com/atomicstack/quicklaunch/internal/logging/events"
	"github.com/atomicstack/quicklaunch/internal/menu"
	"github.com/atomicstack/quicklaunch/internal/metrics"
	"github.com/atomicstack/quicklaunch/internal/notify"
	"github.com/atomicstack/quicklaunch/internal/tray"
	"github.com/atomicstack/quicklaunch/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	appTitle   = "QuickLaunch"
	scanBuffer = 64
)

// Session owns the long-lived collaborators of one run: both caches, the
// scan pool and the menu builder.
type Session struct {
	Metrics    *metrics.Metrics
	Icons      *icon.Cache
	Folders    *foldercache.Cache
	Pool       *backend.Pool
	Builder    *menu.Builder
	Controller *menu.Controller
	Launcher   *launch.Launcher
	Notifier   notify.Notifier
	Text       menu.Localizer

	closeOnce sync.Once
}

// SessionOption customises a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	extractor icon.Extractor
	notifier  notify.Notifier
	launcher  *launch.Launcher
}

// WithExtractor replaces the system icon lookup.
func WithExtractor(e icon.Extractor) SessionOption {
	return func(o *sessionOptions) { o.extractor = e }
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(n notify.Notifier) SessionOption {
	return func(o *sessionOptions) { o.notifier = n }
}

// WithLauncher replaces the process launcher.
func WithLauncher(l *launch.Launcher) SessionOption {
	return func(o *sessionOptions) { o.launcher = l }
}

// NewSession wires the caches, pool and builder for cfg.
func NewSession(cfg config.Config, text menu.Localizer, opts ...SessionOption) *Session {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = notify.New()
	}
	if o.launcher == nil {
		o.launcher = launch.New()
	}

	m := metrics.New()
	icons := icon.NewCache(o.extractor, icon.WithMetrics(m))
	folders := foldercache.New(listing.New(icons).List,
		foldercache.WithTTL(cfg.FolderTTL),
		foldercache.WithMetrics(m),
	)
	pool := backend.NewPool(scanBuffer)
	builder := menu.NewBuilder(folders, pool, text,
		menu.WithNotifier(o.notifier),
		menu.WithMetrics(m),
	)
	return &Session{
		Metrics:    m,
		Icons:      icons,
		Folders:    folders,
		Pool:       pool,
		Builder:    builder,
		Controller: menu.NewController(builder, folders.TTL(), nil),
		Launcher:   o.launcher,
		Notifier:   o.notifier,
		Text:       text,
	}
}

// ServeMetrics exposes the session counters on addr until ctx ends. An empty
// addr disables the endpoint.
func (s *Session) ServeMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	go func() {
		if err := s.Metrics.Serve(ctx, addr); err != nil {
			logging.Error(fmt.Errorf("metrics endpoint %s: %w", addr, err))
		}
	}()
}

// Close stops the scan pool and empties both caches. Safe to call twice.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Pool.Stop()
		icons := s.Icons.Close()
		folders := s.Folders.Clear()
		events.App.Purge(icons, folders)
		if c, ok := s.Notifier.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				logging.Error(err)
			}
		}
	})
}

// Model builds the terminal menu for cfg on top of the session.
func (s *Session) Model(cfg config.Config, programs []config.Program) *ui.Model {
	opts := ui.Options{
		Width:      cfg.UI.Width,
		Height:     cfg.UI.Height,
		ShowFooter: cfg.UI.ShowFooter,
		Verbose:    cfg.Logging.Trace,
		Title:      appTitle,
		Builder:    s.Builder,
		Controller: s.Controller,
		Launcher:   s.Launcher,
		Text:       s.Text,
		Notifier:   s.Notifier,
		Scans:      s.Pool.Events(),
	}
	if cfg.Mode == config.ModeBrowse {
		opts.BrowsePath = cfg.BrowsePath
	} else {
		opts.Programs = menu.ProgramMenu(appTitle, programs, s.Icons)
	}
	return ui.NewModel(opts)
}

// Run bootstraps the mode selected by cfg and blocks until it ends.
func Run(cfg config.Config, programs []config.Program, text menu.Localizer) error {
	s := NewSession(cfg, text)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.ServeMetrics(ctx, cfg.MetricsAddr)

	if cfg.Mode == config.ModeTray {
		tray.New(tray.Options{
			Programs:     programs,
			Launcher:     s.Launcher,
			Text:         text,
			Notifier:     s.Notifier,
			PopupCommand: cfg.PopupCommand,
			Args:         passThroughArgs(cfg),
		}).Run(nil)
		events.App.Stop("tray-exit")
		return nil
	}

	model := s.Model(cfg, programs)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	model.Close()
	events.App.Stop(cfg.Mode.String())
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// passThroughArgs are the flags a browse popup needs to match this process.
func passThroughArgs(cfg config.Config) []string {
	var args []string
	if v := cfg.Flags["lang"]; v != "" {
		args = append(args, "-lang", v)
	}
	if v := cfg.Flags["ttl"]; v != "" {
		args = append(args, "-ttl", v)
	}
	if cfg.Logging.FilePath != "" {
		args = append(args, "-log-file", cfg.Logging.FilePath)
	}
	if cfg.Logging.Trace {
		args = append(args, "-trace")
	}
	return args
}
