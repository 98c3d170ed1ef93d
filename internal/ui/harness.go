package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/nui-overlay/internal/backend"
	"github.com/atomicstack/nui-overlay/internal/protocol"
)

// Harness drives the UI model programmatically for integration tests.
type Harness struct {
	model *Model
}

// NewHarness creates a harness for the provided model and runs its Init
// command.
func NewHarness(model *Model) *Harness {
	h := &Harness{model: model}
	if model != nil {
		h.processCmd(model.Init())
	}
	return h
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

// Inbound feeds a host message through the model as if the listener had
// received it.
func (h *Harness) Inbound(msg protocol.Inbound) {
	h.Send(listenerEventMsg{event: backend.Event{Kind: backend.KindMessage, Message: msg}})
}

// processCmd runs cmd and feeds the resulting messages back into the model.
// Batches are expanded. Models driven by a harness should not carry a
// listener, since waiting on it would block.
func (h *Harness) processCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			h.processCmd(c)
		}
	case tea.QuitMsg:
		return
	default:
		mdl, next := h.model.Update(msg)
		if updated, ok := mdl.(*Model); ok {
			h.model = updated
		}
		h.processCmd(next)
	}
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
