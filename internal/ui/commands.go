package ui

import (
	"path/filepath"
	"strings"

	"github.com/atomicstack/quicklaunch/internal/logging/events"
	"github.com/atomicstack/quicklaunch/internal/menu"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(menu.ActionResult)
	if !ok {
		return nil
	}
	m.clearPending()
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		m.forceClearInfo()
		events.Action.Error(result.Err)
		if m.notifier != nil {
			m.notifier.Notify(m.text.Text("Error"), result.Err.Error())
		}
		return nil
	}
	if result.Info != "" && m.verbose {
		m.setInfo(result.Info)
	} else {
		m.forceClearInfo()
	}
	events.Action.Success(result.Info)
	m.Close()
	return tea.Quit
}

func (m *Model) handleCloseRequestMsg(msg tea.Msg) tea.Cmd {
	req, ok := msg.(menu.CloseRequest)
	if !ok {
		return nil
	}
	m.clearPending()
	return m.closeRootFolder(req.MenuID)
}

func (m *Model) handleBrowseRequestMsg(msg tea.Msg) tea.Cmd {
	req, ok := msg.(menu.BrowseRequest)
	if !ok {
		return nil
	}
	m.clearPending()
	title := strings.TrimSpace(req.Label)
	if title == "" {
		title = filepath.Base(req.Path)
	}
	m.openRootFolder(title, req.Path)
	return nil
}

func (m *Model) clearPending() {
	m.loading = false
	m.pendingID = ""
	m.pendingLabel = ""
}

func (m *Model) menuContext() menu.Context {
	return menu.Context{Launcher: m.launcher, Text: m.text}
}
