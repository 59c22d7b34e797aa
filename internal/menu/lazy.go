package menu

import (
	"fmt"
	"os"
	"time"

	"github.com/atomicstack/quicklaunch/internal/logging/events"
)

// Controller decides when a folder submenu needs (re)loading.
type Controller struct {
	builder *Builder
	ttl     time.Duration
	now     func() time.Time
}

// NewController returns a Controller that reloads submenus older than ttl.
func NewController(builder *Builder, ttl time.Duration, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{builder: builder, ttl: ttl, now: now}
}

// Open handles the user opening entry's submenu. It returns true when a scan
// was dispatched.
func (c *Controller) Open(entry *Entry) bool {
	if entry == nil || entry.Disposed() || entry.State == nil || entry.Submenu == nil {
		return false
	}
	state := entry.State
	if !state.SupportsLazyLoad {
		return false
	}
	if state.IsLoading {
		events.Folder.Open(state.FolderPath, false, "loading")
		return false
	}
	reload, reason := c.shouldReload(entry)
	events.Folder.Open(state.FolderPath, reload, reason)
	if !reload {
		return false
	}
	state.IsLoading = true
	c.builder.PopulateAsync(state.FolderPath, entry.Submenu, false, entry)
	return true
}

func (c *Controller) shouldReload(entry *Entry) (bool, string) {
	state := entry.State
	switch {
	case !state.HasLoadedOnce:
		return true, "never-loaded"
	case c.now().Sub(state.LastLoaded) > c.ttl:
		return true, "expired"
	case entry.Submenu.ShowsPlaceholder():
		return true, "placeholder"
	default:
		return false, "fresh"
	}
}

// OpenRoot creates a root folder menu for path and starts filling it. A
// missing folder is reported instead of opening an empty menu.
func (c *Controller) OpenRoot(id, title, path string) (*Menu, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open folder menu %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open folder menu %s: not a folder", path)
	}
	m := NewRootMenu(id, title, path)
	c.builder.PopulateAsync(path, m, true, nil)
	return m, nil
}
