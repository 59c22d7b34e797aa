package ui

import (
	"github.com/atomicstack/quicklaunch/internal/backend"
	tea "github.com/charmbracelet/bubbletea"
)

// waitForScan blocks until the next folder scan completes.
func waitForScan(events <-chan backend.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return scansDoneMsg{}
		}
		return scanCompletedMsg{event: evt}
	}
}

type scanCompletedMsg struct {
	event backend.Event
}

type scansDoneMsg struct{}

func (m *Model) handleScanCompletedMsg(msg tea.Msg) tea.Cmd {
	completed, ok := msg.(scanCompletedMsg)
	if !ok {
		return nil
	}
	if m.builder != nil && m.builder.Apply(completed.event) {
		m.refreshLevels()
	}
	if m.scans != nil {
		return waitForScan(m.scans)
	}
	return nil
}

func (m *Model) handleScansDoneMsg(tea.Msg) tea.Cmd {
	m.scans = nil
	return nil
}
