package engine

import (
	"github.com/atomicstack/nui-overlay/internal/logging/events"
	"github.com/atomicstack/nui-overlay/internal/menu"
	"github.com/atomicstack/nui-overlay/internal/protocol"
	"github.com/atomicstack/nui-overlay/internal/state"
	uistate "github.com/atomicstack/nui-overlay/internal/ui/state"
)

// observe turns store changes into outbound messages. It runs synchronously
// inside the store mutation that produced the change.
func (e *Engine) observe(c state.Change) {
	switch c.Kind {
	case menu.KindMenu:
		e.syncOpen()
		switch {
		case c.Op == protocol.OpCreate && c.Menu.After != nil && c.Menu.After.Open:
			e.reconcile(*c.Menu.After)
		case c.Op == protocol.OpUpdate && c.Menu.After != nil:
			e.menuChanged(c)
		}
	case menu.KindButton:
		switch {
		case c.Op == protocol.OpCreate && c.Button.After != nil:
			e.clampList(*c.Button.After)
		case c.Op == protocol.OpUpdate && c.Button.Before != nil && c.Button.After != nil:
			clamped := (c.Has("list") || c.Has("listIndex")) && e.clampList(*c.Button.After)
			e.buttonChanged(c, !clamped)
		}
	}
}

// syncOpen diffs the open set by id and reports every menu that entered or
// left it, one message per menu.
func (e *Engine) syncOpen() {
	current := state.OpenMenuIDs(e.store)
	previous := e.open
	e.open = current

	for _, id := range current {
		if !containsID(previous, id) {
			e.emit(protocol.Open(id))
		}
	}
	for _, id := range previous {
		if !containsID(current, id) {
			e.emit(protocol.Close(id))
		}
	}
}

func (e *Engine) menuChanged(c state.Change) {
	after := *c.Menu.After
	if !after.Open {
		return
	}
	if c.Has("buttons") || c.Has("windowLength") || c.Has("open") {
		if e.reconcile(after) {
			return
		}
	}
	if !c.Has("index") {
		return
	}
	// the viewport follows the index before the move is reported
	top := uistate.WindowFor(after.Index, after.Top, e.WindowLength(after))
	if top != after.Top {
		events.Nav.Window(after.ID.String(), after.Index, top)
		e.update(menu.KindMenu, after.ID, map[string]interface{}{"top": top})
	}
	move := protocol.Move(after.ID, "", after.Index)
	if b, ok := state.SelectedButton(after, e.resolved(after)); ok {
		move.Button = b.ID
	}
	e.emit(move)
}

// reconcile pulls the index back inside a menu whose button list shrank, or
// that was created with an index outside its buttons, and re-fits the
// viewport. It reports whether it issued an index update, in which case the
// move is derived from that update instead.
func (e *Engine) reconcile(m menu.Menu) bool {
	n := len(e.resolved(m))
	if n > 0 && (m.Index >= n || m.Index < 0) {
		index := clamp(m.Index, n)
		top := uistate.WindowFor(index, m.Top, e.WindowLength(m))
		e.update(menu.KindMenu, m.ID, map[string]interface{}{"index": index, "top": top})
		return true
	}
	top := uistate.WindowFor(m.Index, m.Top, e.WindowLength(m))
	if top != m.Top {
		e.update(menu.KindMenu, m.ID, map[string]interface{}{"top": top})
	}
	return false
}

// clampList pulls a list cursor left outside its list back onto the nearest
// entry. The resulting listIndex update derives its own list_move, so the
// triggering change must not report one when it returns true.
func (e *Engine) clampList(b menu.Button) bool {
	n := len(b.List)
	if n == 0 || (b.ListIndex >= 0 && b.ListIndex < n) {
		return false
	}
	e.update(menu.KindButton, b.ID, map[string]interface{}{"listIndex": clamp(b.ListIndex, n)})
	return true
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (e *Engine) buttonChanged(c state.Change, reportList bool) {
	before, after := *c.Button.Before, *c.Button.After
	listMoved := reportList && c.Has("listIndex")
	checkChanged := c.Has("check") && before.Checked() != after.Checked()
	if !listMoved && !checkChanged {
		return
	}
	for _, m := range state.OpenMenus(e.store) {
		if !m.Lists(after.ID) {
			continue
		}
		if listMoved {
			e.emit(protocol.ListMove(m.ID, after.ID, after.ListIndex))
		}
		if checkChanged {
			e.emit(protocol.CheckUpdate(m.ID, after.ID, after.Checked()))
		}
	}
}

func (e *Engine) resolved(m menu.Menu) []menu.Button {
	return state.MenuButtons(e.store, m)
}

func containsID(ids []menu.ID, id menu.ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
