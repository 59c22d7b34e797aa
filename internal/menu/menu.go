package menu

import (
	"time"

	"github.com/atomicstack/quicklaunch/internal/icon"
)

// Kind classifies a menu entry.
type Kind int

const (
	KindFolder Kind = iota
	KindFile
	KindPlaceholder
	KindAction
	KindSeparator
)

// Tag marks placeholder entries so stale content can be recognised later.
type Tag int

const (
	TagNone Tag = iota
	TagLoading
	TagEmpty
	TagError
)

// Action identifiers understood by the registry.
const (
	ActionLaunch     = "launch"
	ActionOpenFolder = "open-folder"
	ActionClose      = "close"
	ActionBrowse     = "browse"
)

// Entry is one row of a menu. Entries are created and mutated on the UI loop
// only.
type Entry struct {
	Kind    Kind
	Label   string
	Path    string
	Enabled bool
	Icon    *icon.Bitmap
	Action  string
	Tag     Tag

	// Submenu and State are set for folder entries inside folder menus.
	Submenu *Menu
	State   *SubmenuState

	disposed bool
}

// Disposed reports whether the entry has been torn down.
func (e *Entry) Disposed() bool {
	return e == nil || e.disposed
}

// Actionable reports whether selecting the entry does something.
func (e *Entry) Actionable() bool {
	if e == nil || !e.Enabled {
		return false
	}
	return e.Kind == KindFile || e.Kind == KindFolder || e.Kind == KindAction
}

func (e *Entry) dispose() {
	if e == nil || e.disposed {
		return
	}
	e.disposed = true
	if e.Submenu != nil {
		e.Submenu.Close()
	}
}

// Menu is an ordered collection of entries. A root menu is one opened
// directly (from the program list or -browse); it carries the close action.
type Menu struct {
	ID    string
	Title string
	Path  string
	Root  bool

	owner   *Entry
	entries []*Entry
	closed  bool
}

// NewRootMenu returns an empty root menu.
func NewRootMenu(id, title, path string) *Menu {
	return &Menu{ID: id, Title: title, Path: path, Root: true}
}

func newSubmenu(owner *Entry) *Menu {
	return &Menu{ID: "folder:" + owner.Path, Title: owner.Label, Path: owner.Path, owner: owner}
}

// Owner returns the folder entry the submenu hangs off, or nil for root menus.
func (m *Menu) Owner() *Entry { return m.owner }

// Entries returns the current content. Callers must not modify the slice.
func (m *Menu) Entries() []*Entry { return m.entries }

// Len returns the number of entries.
func (m *Menu) Len() int { return len(m.entries) }

// Close disposes the menu and, recursively, every entry and submenu in it.
func (m *Menu) Close() {
	if m == nil || m.closed {
		return
	}
	m.closed = true
	for _, e := range m.entries {
		e.dispose()
	}
}

// Closed reports whether the menu, or the entry owning it, has been torn
// down.
func (m *Menu) Closed() bool {
	if m == nil || m.closed {
		return true
	}
	return m.owner != nil && m.owner.Disposed()
}

// ShowsPlaceholder reports whether the only visible content is the loading
// placeholder.
func (m *Menu) ShowsPlaceholder() bool {
	return len(m.entries) == 1 && m.entries[0].Tag == TagLoading
}

// ActionableCount returns how many entries can be selected.
func (m *Menu) ActionableCount() int {
	n := 0
	for _, e := range m.entries {
		if e.Actionable() {
			n++
		}
	}
	return n
}

// replace swaps the content, disposing what was there before.
func (m *Menu) replace(entries []*Entry) {
	for _, e := range m.entries {
		e.dispose()
	}
	m.entries = entries
}

// Phase is the lazy-load state of a folder submenu.
type Phase int

const (
	NeverLoaded Phase = iota
	Loading
	Loaded
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "never-loaded"
	}
}

// SubmenuState is the per-folder-entry load bookkeeping.
type SubmenuState struct {
	FolderPath       string
	SupportsLazyLoad bool
	HasLoadedOnce    bool
	LastLoaded       time.Time
	IsLoading        bool
}

// Phase derives the state machine position from the flags.
func (s *SubmenuState) Phase() Phase {
	switch {
	case s == nil:
		return NeverLoaded
	case s.IsLoading:
		return Loading
	case s.HasLoadedOnce:
		return Loaded
	default:
		return NeverLoaded
	}
}
