package ui

import (
	"unicode"

	"github.com/atomicstack/quicklaunch/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	filterPromptText  = "» "
	filterPlaceholder = "(type to filter)"
)

// handleTextInput applies type-to-select keys to the current level. It
// reports false for keys that should fall through to navigation.
func (m *Model) handleTextInput(msg tea.KeyMsg) bool {
	if m.loading {
		return false
	}
	current := m.currentLevel()
	if current == nil {
		return false
	}
	switch msg.String() {
	case "ctrl+u":
		if !current.ClearFilter() {
			return false
		}
		events.Filter.Cleared(current.ID)
		m.filterChanged(current)
		return true
	case "ctrl+w":
		if !current.TrimFilterWord() {
			return false
		}
		events.Filter.WordBackspace(current.ID, current.Filter)
		m.filterChanged(current)
		return true
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		if !current.TrimFilter() {
			return false
		}
		events.Filter.Backspace(current.ID, current.Filter)
		m.filterChanged(current)
		return true
	case tea.KeySpace:
		// a leading space is not a query
		if current.Filter == "" {
			return false
		}
		return m.appendToFilter(current, " ")
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) || unicode.IsSpace(r) {
				return false
			}
		}
		return m.appendToFilter(current, string(msg.Runes))
	}
	return false
}

func (m *Model) appendToFilter(current *level, text string) bool {
	if !current.AppendFilter(text) {
		return false
	}
	events.Filter.Append(current.ID, current.Filter)
	m.filterChanged(current)
	return true
}

func (m *Model) filterChanged(current *level) {
	m.forceClearInfo()
	m.errMsg = ""
	m.syncViewport(current)
}

func (m *Model) filterPrompt() string {
	prompt := render(styles.FilterPrompt, filterPromptText)
	current := m.currentLevel()
	if current == nil || current.Filter == "" {
		return prompt + render(styles.FilterPlaceholder, filterPlaceholder)
	}
	return prompt + render(styles.Filter, current.Filter) + render(styles.Cursor, " ")
}
