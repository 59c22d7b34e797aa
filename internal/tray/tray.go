// Package tray puts the configured programs in the system tray. Folder
// programs can be browsed, which opens the folder menu in a terminal popup.
package tray

import (
	_ "embed"
	"os"
	"sync"

	"github.com/getlantern/systray"

	"github.com/atomicstack/quicklaunch/internal/config"
	"github.com/atomicstack/quicklaunch/internal/logging"
	"github.com/atomicstack/quicklaunch/internal/menu"
)

//go:embed icon.png
var trayIcon []byte

const appTitle = "QuickLaunch"

// Launcher runs programs, opens folders and spawns the browse popup.
type Launcher interface {
	Launch(path string) error
	Open(path string) error
	Spawn(argv []string) error
}

// Options configures the tray.
type Options struct {
	Programs []config.Program
	Launcher Launcher
	Text     menu.Localizer
	Notifier menu.Notifier
	// PopupCommand prefixes the browse command, e.g. "tmux display-popup -E".
	PopupCommand []string
	// Executable is the binary re-run with -browse; defaults to os.Executable.
	Executable string
	// Args are passed to every browse invocation before -browse.
	Args []string
}

// host is the part of systray the tray drives.
type host interface {
	AddItem(title, tooltip string) item
	AddSeparator()
	Quit()
}

type item interface {
	AddSubItem(title, tooltip string) item
	Clicked() <-chan struct{}
}

// binding ties a clickable item to what it does.
type binding struct {
	label  string
	clicks <-chan struct{}
	run    func()
}

// Tray owns the tray menu.
type Tray struct {
	opts     Options
	quit     chan struct{}
	quitOnce sync.Once
}

// New returns a Tray for opts.
func New(opts Options) *Tray {
	if opts.Executable == "" {
		if exe, err := os.Executable(); err == nil {
			opts.Executable = exe
		} else {
			opts.Executable = os.Args[0]
		}
	}
	return &Tray{opts: opts, quit: make(chan struct{})}
}

// Run blocks until the tray is terminated. onExit runs once the tray is gone.
func (t *Tray) Run(onExit func()) {
	systray.Run(func() {
		systray.SetIcon(trayIcon)
		systray.SetTitle(appTitle)
		systray.SetTooltip(appTitle)
		t.serve(t.build(systrayHost{}))
	}, func() {
		t.stop()
		if onExit != nil {
			onExit()
		}
	})
}

// build lays out the menu on h: one item per program, then terminate.
func (t *Tray) build(h host) []binding {
	text := t.opts.Text
	bindings := make([]binding, 0, len(t.opts.Programs)*2+1)
	for _, p := range t.opts.Programs {
		parent := h.AddItem(p.Name, p.Path)
		if isFolder(p.Path) {
			open := parent.AddSubItem(text.Text("OpenFolder"), p.Path)
			browse := parent.AddSubItem(text.Text("Browse"), p.Path)
			bindings = append(bindings,
				binding{label: p.Name + "/OpenFolder", clicks: open.Clicked(), run: func() { t.openFolder(p.Path) }},
				binding{label: p.Name + "/Browse", clicks: browse.Clicked(), run: func() { t.browse(p.Path) }},
			)
			continue
		}
		run := parent.AddSubItem(text.Text("RunProgram"), p.Path)
		bindings = append(bindings, binding{label: p.Name + "/RunProgram", clicks: run.Clicked(), run: func() { t.run(p.Path) }})
	}
	h.AddSeparator()
	terminate := h.AddItem(text.Text("TerminateApp"), text.Text("ConfirmTermination"))
	confirm := terminate.AddSubItem(text.Text("Confirm"), text.Text("ConfirmTermination"))
	bindings = append(bindings, binding{label: "TerminateApp/Confirm", clicks: confirm.Clicked(), run: func() {
		t.stop()
		h.Quit()
	}})
	return bindings
}

// serve runs each binding's action as its item is clicked.
func (t *Tray) serve(bindings []binding) {
	for _, b := range bindings {
		go func(b binding) {
			for {
				select {
				case <-t.quit:
					return
				case _, ok := <-b.clicks:
					if !ok {
						return
					}
					b.run()
				}
			}
		}(b)
	}
}

func (t *Tray) stop() {
	t.quitOnce.Do(func() { close(t.quit) })
}

func (t *Tray) run(path string) {
	if err := t.opts.Launcher.Launch(path); err != nil {
		logging.Error(err)
		t.notify(t.opts.Text.Text("ProgramRunError", err.Error()))
	}
}

func (t *Tray) openFolder(path string) {
	if err := t.opts.Launcher.Open(path); err != nil {
		logging.Error(err)
		t.notify(t.opts.Text.Text("ShowFolderMenuError", err.Error()))
	}
}

func (t *Tray) browse(path string) {
	if !isFolder(path) {
		t.notify(t.opts.Text.Text("ShowFolderMenuError", path))
		return
	}
	if err := t.opts.Launcher.Spawn(t.browseCommand(path)); err != nil {
		logging.Error(err)
		t.notify(t.opts.Text.Text("ShowFolderMenuError", err.Error()))
	}
}

// browseCommand is the popup command that shows path's folder menu.
func (t *Tray) browseCommand(path string) []string {
	argv := make([]string, 0, len(t.opts.PopupCommand)+len(t.opts.Args)+3)
	argv = append(argv, t.opts.PopupCommand...)
	argv = append(argv, t.opts.Executable)
	argv = append(argv, t.opts.Args...)
	return append(argv, "-browse", path)
}

func (t *Tray) notify(body string) {
	if t.opts.Notifier != nil {
		t.opts.Notifier.Notify(t.opts.Text.Text("Error"), body)
	}
}

func isFolder(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

type systrayHost struct{}

func (systrayHost) AddItem(title, tooltip string) item {
	return systrayItem{systray.AddMenuItem(title, tooltip)}
}

func (systrayHost) AddSeparator() { systray.AddSeparator() }

func (systrayHost) Quit() { systray.Quit() }

type systrayItem struct {
	*systray.MenuItem
}

func (i systrayItem) AddSubItem(title, tooltip string) item {
	return systrayItem{i.AddSubMenuItem(title, tooltip)}
}

func (i systrayItem) Clicked() <-chan struct{} { return i.ClickedCh }
