package state

import (
	"strconv"

	"github.com/atomicstack/quicklaunch/internal/menu"
)

// Level encapsulates menu level state such as cursor position, filter, and viewport.
type Level struct {
	ID             string
	Title          string
	Items          []menu.Item
	Full           []menu.Item
	Filter         string
	Cursor         int
	LastCursor     int
	Menu           *menu.Menu
	ViewportOffset int

	anchor int
}

// NewLevel constructs a Level showing the entries of m.
func NewLevel(id, title string, m *menu.Menu) *Level {
	l := &Level{
		ID:         id,
		Title:      title,
		LastCursor: -1,
		Menu:       m,
	}
	l.Refresh()
	return l
}

// ItemsFromMenu projects menu entries to items whose IDs are entry indexes.
func ItemsFromMenu(m *menu.Menu) []menu.Item {
	if m == nil {
		return nil
	}
	entries := m.Entries()
	items := make([]menu.Item, 0, len(entries))
	for i, e := range entries {
		items = append(items, menu.Item{ID: strconv.Itoa(i), Label: e.Label, Path: e.Path})
	}
	return items
}

// Refresh rebuilds the items from the backing menu.
func (l *Level) Refresh() {
	l.UpdateItems(ItemsFromMenu(l.Menu))
}

// EntryFor resolves an item back to its menu entry.
func (l *Level) EntryFor(item menu.Item) *menu.Entry {
	if l.Menu == nil {
		return nil
	}
	idx, err := strconv.Atoi(item.ID)
	if err != nil {
		return nil
	}
	entries := l.Menu.Entries()
	if idx < 0 || idx >= len(entries) {
		return nil
	}
	return entries[idx]
}

// CurrentEntry returns the entry under the cursor.
func (l *Level) CurrentEntry() *menu.Entry {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return nil
	}
	return l.EntryFor(l.Items[l.Cursor])
}

// IndexOf returns the index for a given item identifier.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// UpdateItems refreshes the level items while keeping the viewport if possible.
func (l *Level) UpdateItems(items []menu.Item) {
	prevOffset := l.ViewportOffset
	l.Full = CloneItems(items)
	l.applyFilter()
	if len(l.Items) == 0 {
		l.ViewportOffset = 0
		return
	}
	if prevOffset < 0 {
		prevOffset = 0
	}
	if prevOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
		return
	}
	l.ViewportOffset = prevOffset
}
