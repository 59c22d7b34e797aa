package ui

import (
	"fmt"

	"github.com/atomicstack/quicklaunch/internal/logging"
	"github.com/atomicstack/quicklaunch/internal/logging/events"
	"github.com/atomicstack/quicklaunch/internal/menu"
	"github.com/atomicstack/quicklaunch/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleEscapeKey() tea.Cmd {
	current := m.currentLevel()
	if current == nil {
		return tea.Quit
	}
	if len(m.stack) <= 1 {
		m.closeLevel(current)
		return tea.Quit
	}
	m.stack = m.stack[:len(m.stack)-1]
	m.closeLevel(current)
	m.restoreParent(m.currentLevel(), current)
	m.errMsg = ""
	m.forceClearInfo()
	return nil
}

// closeLevel tears down root folder menus; nested menus stay cached on their
// owner entry so reopening them within the TTL is free.
func (m *Model) closeLevel(l *level) {
	if l == nil || l.Menu == nil {
		return
	}
	events.UI.MenuClose(l.ID, l.Menu.Root)
	if l.Menu.Root {
		l.Menu.Close()
	}
}

func (m *Model) restoreParent(parent, child *level) {
	if parent == nil {
		return
	}
	if parent.LastCursor >= 0 && parent.LastCursor < len(parent.Items) {
		parent.Cursor = parent.LastCursor
	} else if child != nil {
		if idx := parent.IndexOf(child.ID); idx >= 0 {
			parent.Cursor = idx
		}
	}
	parent.LastCursor = -1
	m.syncViewport(parent)
}

func (m *Model) handleEnterKey() tea.Cmd {
	if m.loading {
		return nil
	}
	current := m.currentLevel()
	if current == nil || len(current.Items) == 0 {
		return nil
	}
	if current.Cursor < 0 || current.Cursor >= len(current.Items) {
		return nil
	}
	item := current.Items[current.Cursor]
	events.UI.MenuEnter(current.ID, item.ID, item.Label, current.Filter)
	entry := current.EntryFor(item)
	if !entry.Actionable() {
		return nil
	}
	current.ClearFilter()
	if idx := current.IndexOf(item.ID); idx >= 0 {
		current.Cursor = idx
	}
	m.errMsg = ""
	m.forceClearInfo()

	if entry.Kind == menu.KindFolder && entry.Submenu != nil {
		m.openSubmenu(current, entry)
		return nil
	}

	node, ok := m.registry.Find(entry.Action)
	if !ok {
		m.setInfo(fmt.Sprintf("Selected %s (no action defined)", entry.Label))
		return nil
	}
	target := menu.Item{ID: current.ID, Label: entry.Label, Path: entry.Path}
	m.loading = true
	m.pendingID = node.ID
	m.pendingLabel = entry.Label
	return m.bus.Execute(m.menuContext(), command.Request{ID: node.ID, Label: entry.Label, Handler: node.Action, Item: target})
}

// openSubmenu shows a folder entry's submenu, starting a scan when the
// cached content is missing or stale.
func (m *Model) openSubmenu(parent *level, entry *menu.Entry) {
	if m.folders != nil {
		m.folders.Open(entry)
	}
	parent.LastCursor = parent.Cursor
	child := newLevel(entry.Submenu.ID, entry.Label, entry.Submenu)
	m.syncViewport(child)
	m.stack = append(m.stack, child)
}

// openRootFolder pushes a root folder menu for path. A folder that cannot be
// shown is reported instead.
func (m *Model) openRootFolder(title, path string) bool {
	if m.folders == nil {
		m.reportFolderError(path, fmt.Errorf("no folder controller"))
		return false
	}
	m.seq++
	id := fmt.Sprintf("root:%d", m.seq)
	fm, err := m.folders.OpenRoot(id, title, path)
	if err != nil {
		m.reportFolderError(path, err)
		return false
	}
	if parent := m.currentLevel(); parent != nil {
		parent.LastCursor = parent.Cursor
	}
	lvl := newLevel(fm.ID, title, fm)
	m.syncViewport(lvl)
	m.stack = append(m.stack, lvl)
	return true
}

func (m *Model) reportFolderError(path string, err error) {
	logging.Error(err)
	msg := m.text.Text("ShowFolderMenuError", path)
	m.errMsg = msg
	if m.notifier != nil {
		m.notifier.Notify(m.text.Text("Error"), msg)
	}
}

// closeRootFolder pops every level down to and including the root folder menu
// containing menuID.
func (m *Model) closeRootFolder(menuID string) tea.Cmd {
	idx := -1
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i].ID == menuID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	for idx > 0 && (m.stack[idx].Menu == nil || !m.stack[idx].Menu.Root) {
		idx--
	}
	closing := m.stack[idx]
	for i := len(m.stack) - 1; i >= idx; i-- {
		m.closeLevel(m.stack[i])
	}
	m.stack = m.stack[:idx]
	if len(m.stack) == 0 {
		return tea.Quit
	}
	m.restoreParent(m.currentLevel(), closing)
	return nil
}

func (m *Model) moveCursorUp() {
	if current := m.currentLevel(); current != nil {
		if n := len(current.Items); n > 0 {
			if current.Cursor > 0 {
				current.Cursor--
			} else {
				current.Cursor = n - 1
			}
			events.UI.MenuCursor(current.ID, current.Cursor)
			m.syncViewport(current)
		}
	}
}

func (m *Model) moveCursorDown() {
	if current := m.currentLevel(); current != nil {
		if n := len(current.Items); n > 0 {
			if current.Cursor < n-1 {
				current.Cursor++
			} else {
				current.Cursor = 0
			}
			events.UI.MenuCursor(current.ID, current.Cursor)
			m.syncViewport(current)
		}
	}
}

func (m *Model) moveCursorPageUp() {
	if current := m.currentLevel(); current != nil {
		if moved := current.MoveCursorPageUp(m.maxVisibleItems()); moved {
			events.UI.MenuCursor(current.ID, current.Cursor)
		}
		m.syncViewport(current)
	}
}

func (m *Model) moveCursorPageDown() {
	if current := m.currentLevel(); current != nil {
		if moved := current.MoveCursorPageDown(m.maxVisibleItems()); moved {
			events.UI.MenuCursor(current.ID, current.Cursor)
		}
		m.syncViewport(current)
	}
}

func (m *Model) moveCursorHome() {
	if current := m.currentLevel(); current != nil {
		if moved := current.MoveCursorHome(); moved {
			events.UI.MenuCursor(current.ID, current.Cursor)
		}
		m.syncViewport(current)
	}
}

func (m *Model) moveCursorEnd() {
	if current := m.currentLevel(); current != nil {
		if moved := current.MoveCursorEnd(); moved {
			events.UI.MenuCursor(current.ID, current.Cursor)
		}
		m.syncViewport(current)
	}
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.EnsureCursorVisible(m.maxVisibleItems())
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.handleTextInput(keyMsg) {
		return nil
	}
	switch keyMsg.String() {
	case "ctrl+c":
		m.Close()
		return tea.Quit
	case "esc":
		return m.handleEscapeKey()
	case "enter":
		return m.handleEnterKey()
	case "right":
		if current := m.currentLevel(); current != nil {
			if entry := current.CurrentEntry(); entry != nil && entry.Kind == menu.KindFolder && entry.Submenu != nil {
				return m.handleEnterKey()
			}
		}
	case "up":
		m.moveCursorUp()
	case "down":
		m.moveCursorDown()
	case "pgup":
		m.moveCursorPageUp()
	case "pgdown":
		m.moveCursorPageDown()
	case "home":
		m.moveCursorHome()
	case "end":
		m.moveCursorEnd()
	}
	return nil
}

// refreshLevels re-projects every level from its menu after a scan landed.
func (m *Model) refreshLevels() {
	for _, lvl := range m.stack {
		if lvl.Menu == nil {
			continue
		}
		lvl.Refresh()
		m.syncViewport(lvl)
	}
}

func (m *Model) currentLevel() *level {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}
