package engine

import (
	"github.com/atomicstack/nui-overlay/internal/logging"
	"github.com/atomicstack/nui-overlay/internal/logging/events"
	"github.com/atomicstack/nui-overlay/internal/menu"
	"github.com/atomicstack/nui-overlay/internal/protocol"
	uistate "github.com/atomicstack/nui-overlay/internal/ui/state"
)

// Action routes a navigation action to its handler. Unknown actions and
// actions with nothing to act on are ignored.
func (e *Engine) Action(name string) {
	switch name {
	case protocol.ActionUp:
		e.moveIndex(name, -1)
	case protocol.ActionDown:
		e.moveIndex(name, 1)
	case protocol.ActionLeft:
		e.moveList(name, -1)
	case protocol.ActionRight:
		e.moveList(name, 1)
	case protocol.ActionSelect:
		e.selectFocused()
	default:
		events.Nav.Ignored(name, "unknown action")
	}
}

func (e *Engine) moveIndex(action string, delta int) {
	m, ok := e.ActiveMenu()
	if !ok {
		events.Nav.Ignored(action, "no open menu")
		return
	}
	buttons := e.resolved(m)
	v := uistate.Viewport{Index: m.Index, Top: m.Top}
	if !v.Step(delta, len(buttons), e.WindowLength(m)) {
		events.Nav.Ignored(action, "nothing to move to")
		return
	}
	events.Nav.Action(action, m.ID.String(), "")
	e.update(menu.KindMenu, m.ID, map[string]interface{}{"index": v.Index, "top": v.Top})
}

func (e *Engine) moveList(action string, delta int) {
	m, b, ok := e.Focused()
	if !ok {
		events.Nav.Ignored(action, "no focused button")
		return
	}
	if !b.HasList() {
		events.Nav.Ignored(action, "focused button has no list")
		return
	}
	next, ok := uistate.Advance(b.ListIndex, delta, len(b.List))
	if !ok || next == b.ListIndex {
		return
	}
	events.Nav.Action(action, m.ID.String(), b.ID.String())
	e.update(menu.KindButton, b.ID, map[string]interface{}{"listIndex": next})
}

// selectFocused flips a checkbox before announcing the selection. The flip
// goes through the store so its check_update is emitted first.
func (e *Engine) selectFocused() {
	m, b, ok := e.Focused()
	if !ok {
		events.Nav.Ignored(protocol.ActionSelect, "no focused button")
		return
	}
	events.Nav.Action(protocol.ActionSelect, m.ID.String(), b.ID.String())
	if b.IsCheckbox() {
		checked := !b.Checked()
		events.Nav.Toggle(b.ID.String(), checked)
		e.update(menu.KindButton, b.ID, map[string]interface{}{"check": checked})
	}
	e.emit(protocol.Select(m.ID, b.ID))
}

func (e *Engine) update(kind menu.Kind, id menu.ID, fields map[string]interface{}) {
	payload, err := protocol.NewPayload(id, fields)
	if err != nil {
		logging.Error(err)
		return
	}
	if _, err := e.store.Update(kind, payload); err != nil {
		logging.Error(err)
	}
}
