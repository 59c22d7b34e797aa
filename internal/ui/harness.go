package ui

import (
	"fmt"
	"time"

	"github.com/atomicstack/quicklaunch/internal/backend"
	tea "github.com/charmbracelet/bubbletea"
)

// Harness drives the UI model programmatically for integration tests.
type Harness struct {
	model *Model
}

// NewHarness creates a harness for the provided model.
func NewHarness(model *Model) *Harness {
	return &Harness{model: model}
}

// Send routes a message through the model and executes any returned commands.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil {
		return
	}
	mdl, cmd := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.processCmd(cmd)
}

func (h *Harness) processCmd(cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		mdl, next := h.model.Update(msg)
		if updated, ok := mdl.(*Model); ok {
			h.model = updated
		}
		cmd = next
	}
}

// DeliverScans feeds n completed scans from events into the model, the way
// the running program does on its own.
func (h *Harness) DeliverScans(events <-chan backend.Event, n int, timeout time.Duration) error {
	deadline := time.After(timeout)
	for i := 0; i < n; i++ {
		select {
		case evt, ok := <-events:
			if !ok {
				return fmt.Errorf("scan channel closed after %d of %d scans", i, n)
			}
			h.Send(scanCompletedMsg{event: evt})
		case <-deadline:
			return fmt.Errorf("timed out after %d of %d scans", i, n)
		}
	}
	return nil
}

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}
