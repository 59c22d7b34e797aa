// Package launch starts configured programs and opens folders in the desktop
// file browser.
package launch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atomicstack/quicklaunch/internal/logging/events"
)

// Starter starts a prepared command without waiting for it.
type Starter func(cmd *exec.Cmd) error

// Launcher runs programs detached from the menu process.
type Launcher struct {
	goos  string
	start Starter
}

// New returns a Launcher for the current platform.
func New() *Launcher {
	return &Launcher{goos: runtime.GOOS, start: startDetached}
}

// NewWith returns a Launcher for goos that hands commands to start. Used by
// tests to observe commands without running them.
func NewWith(goos string, start Starter) *Launcher {
	if start == nil {
		start = startDetached
	}
	return &Launcher{goos: goos, start: start}
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Launch runs the program at path. Executables are started directly with
// their folder as working directory; anything else is handed to the
// platform's default opener.
func (l *Launcher) Launch(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("launch: empty path")
	}
	events.Action.Launch(path)
	var cmd *exec.Cmd
	if l.isExecutable(path) {
		cmd = exec.Command(path)
		cmd.Dir = filepath.Dir(path)
	} else {
		cmd = l.openerCommand(path)
	}
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("launch %s: %w", path, err)
	}
	return nil
}

// Open shows path in the platform file browser.
func (l *Launcher) Open(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("open: empty path")
	}
	events.Action.OpenFolder(path)
	if err := l.start(l.openerCommand(path)); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

// Spawn starts argv as a detached command.
func (l *Launcher) Spawn(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("spawn: empty command")
	}
	if err := l.start(exec.Command(argv[0], argv[1:]...)); err != nil {
		return fmt.Errorf("spawn %s: %w", argv[0], err)
	}
	return nil
}

func (l *Launcher) openerCommand(path string) *exec.Cmd {
	switch l.goos {
	case "windows":
		return exec.Command("explorer", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		if strings.EqualFold(filepath.Ext(path), ".desktop") {
			return exec.Command("gio", "launch", path)
		}
		return exec.Command("xdg-open", path)
	}
}

func (l *Launcher) isExecutable(path string) bool {
	if l.goos == "windows" {
		return strings.EqualFold(filepath.Ext(path), ".exe")
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
