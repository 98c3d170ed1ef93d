package state

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/atomicstack/nui-overlay/internal/logging/events"
	"github.com/atomicstack/nui-overlay/internal/menu"
	"github.com/atomicstack/nui-overlay/internal/protocol"
)

// Store holds the menus and buttons mirrored from the host. It is the only
// mutation authority for them: every change goes through Create, Update or
// Destroy so listeners never miss a transition.
type Store interface {
	Menus() []menu.Menu
	Buttons() []menu.Button
	Menu(menu.ID) (menu.Menu, bool)
	Button(menu.ID) (menu.Button, bool)
	Create(menu.Kind, protocol.Payload) error
	Update(menu.Kind, protocol.Payload) (bool, error)
	Destroy(menu.Kind, protocol.Payload) bool
	Subscribe(Listener) (cancel func())
}

// Change describes one completed store mutation. Fields lists the payload
// fields whose value actually changed and is only set for updates.
type Change struct {
	Op     protocol.Op
	Kind   menu.Kind
	ID     menu.ID
	Fields []string
	Menu   MenuDelta
	Button ButtonDelta
}

// MenuDelta carries the menu before and after a change. Before is nil for
// creates and After is nil for destroys.
type MenuDelta struct {
	Before *menu.Menu
	After  *menu.Menu
}

// ButtonDelta mirrors MenuDelta for buttons.
type ButtonDelta struct {
	Before *menu.Button
	After  *menu.Button
}

// Has reports whether field changed.
func (c Change) Has(field string) bool {
	for _, f := range c.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Listener is notified synchronously after each mutation has been applied.
type Listener func(Change)

type store struct {
	menus     []menu.Menu
	buttons   []menu.Button
	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewStore returns an empty store.
func NewStore() Store {
	return &store{listeners: make(map[int]Listener)}
}

func (s *store) Menus() []menu.Menu {
	return cloneMenus(s.menus)
}

func (s *store) Buttons() []menu.Button {
	return cloneButtons(s.buttons)
}

func (s *store) Menu(id menu.ID) (menu.Menu, bool) {
	if i := s.menuIndex(id); i >= 0 {
		return s.menus[i].Clone(), true
	}
	return menu.Menu{}, false
}

func (s *store) Button(id menu.ID) (menu.Button, bool) {
	if i := s.buttonIndex(id); i >= 0 {
		return s.buttons[i].Clone(), true
	}
	return menu.Button{}, false
}

// Create appends the payload as a new entity. Ids are not checked for
// uniqueness; lookups resolve to the first entity with a matching id.
func (s *store) Create(kind menu.Kind, payload protocol.Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}
	switch kind {
	case menu.KindMenu:
		var m menu.Menu
		if err := json.Unmarshal(raw, &m); err != nil {
			events.Store.Invalid(kind.String(), "create", err)
			return fmt.Errorf("decode menu: %w", err)
		}
		s.menus = append(s.menus, m)
		events.Store.Create(kind.String(), m.ID.String())
		after := m.Clone()
		s.notify(Change{Op: protocol.OpCreate, Kind: kind, ID: m.ID, Menu: MenuDelta{After: &after}})
	case menu.KindButton:
		var b menu.Button
		if err := json.Unmarshal(raw, &b); err != nil {
			events.Store.Invalid(kind.String(), "create", err)
			return fmt.Errorf("decode button: %w", err)
		}
		s.buttons = append(s.buttons, b)
		events.Store.Create(kind.String(), b.ID.String())
		after := b.Clone()
		s.notify(Change{Op: protocol.OpCreate, Kind: kind, ID: b.ID, Button: ButtonDelta{After: &after}})
	default:
		return fmt.Errorf("unknown kind %s", kind)
	}
	return nil
}

// Update merges every payload field into the entity with the payload id.
// Fields missing from the payload keep their value. An unknown id is a
// no-op and reports false. The merged entity replaces the old one before any
// listener runs, so no listener observes a partial merge.
func (s *store) Update(kind menu.Kind, payload protocol.Payload) (bool, error) {
	id, ok := payload.ID()
	if !ok {
		events.Store.Stale(kind.String(), "", "update")
		return false, nil
	}
	switch kind {
	case menu.KindMenu:
		i := s.menuIndex(id)
		if i < 0 {
			events.Store.Stale(kind.String(), id.String(), "update")
			return false, nil
		}
		before := s.menus[i].Clone()
		var after menu.Menu
		fields, err := merge(before, payload, &after)
		if err != nil {
			events.Store.Invalid(kind.String(), "update", err)
			return false, fmt.Errorf("update menu %s: %w", id, err)
		}
		s.menus[i] = after
		events.Store.Update(kind.String(), id.String(), fields)
		if len(fields) == 0 {
			return true, nil
		}
		next := after.Clone()
		s.notify(Change{Op: protocol.OpUpdate, Kind: kind, ID: id, Fields: fields, Menu: MenuDelta{Before: &before, After: &next}})
	case menu.KindButton:
		i := s.buttonIndex(id)
		if i < 0 {
			events.Store.Stale(kind.String(), id.String(), "update")
			return false, nil
		}
		before := s.buttons[i].Clone()
		var after menu.Button
		fields, err := merge(before, payload, &after)
		if err != nil {
			events.Store.Invalid(kind.String(), "update", err)
			return false, fmt.Errorf("update button %s: %w", id, err)
		}
		s.buttons[i] = after
		events.Store.Update(kind.String(), id.String(), fields)
		if len(fields) == 0 {
			return true, nil
		}
		next := after.Clone()
		s.notify(Change{Op: protocol.OpUpdate, Kind: kind, ID: id, Fields: fields, Button: ButtonDelta{Before: &before, After: &next}})
	default:
		return false, fmt.Errorf("unknown kind %s", kind)
	}
	return true, nil
}

// Destroy removes the entity with the payload id. An unknown id is a no-op.
func (s *store) Destroy(kind menu.Kind, payload protocol.Payload) bool {
	id, ok := payload.ID()
	if !ok {
		events.Store.Stale(kind.String(), "", "destroy")
		return false
	}
	switch kind {
	case menu.KindMenu:
		i := s.menuIndex(id)
		if i < 0 {
			events.Store.Stale(kind.String(), id.String(), "destroy")
			return false
		}
		before := s.menus[i]
		s.menus = append(s.menus[:i:i], s.menus[i+1:]...)
		events.Store.Destroy(kind.String(), id.String())
		s.notify(Change{Op: protocol.OpDestroy, Kind: kind, ID: id, Menu: MenuDelta{Before: &before}})
	case menu.KindButton:
		i := s.buttonIndex(id)
		if i < 0 {
			events.Store.Stale(kind.String(), id.String(), "destroy")
			return false
		}
		before := s.buttons[i]
		s.buttons = append(s.buttons[:i:i], s.buttons[i+1:]...)
		events.Store.Destroy(kind.String(), id.String())
		s.notify(Change{Op: protocol.OpDestroy, Kind: kind, ID: id, Button: ButtonDelta{Before: &before}})
	default:
		return false
	}
	return true
}

// Subscribe registers l for change notifications. Listeners run in
// registration order; the returned func removes the registration.
func (s *store) Subscribe(l Listener) func() {
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)
	return func() {
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		for i, candidate := range s.order {
			if candidate == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *store) notify(c Change) {
	ids := append([]int(nil), s.order...)
	for _, id := range ids {
		if l, ok := s.listeners[id]; ok {
			l(c)
		}
	}
}

func (s *store) menuIndex(id menu.ID) int {
	for i, m := range s.menus {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *store) buttonIndex(id menu.ID) int {
	for i, b := range s.buttons {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// merge overlays payload onto current and decodes the result into out. It
// returns the payload fields whose encoded value differs afterwards.
func merge(current interface{}, payload protocol.Payload, out interface{}) ([]string, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	before := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		before[k] = v
	}
	for k, v := range payload {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(merged, out); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	after := map[string]json.RawMessage{}
	if err := json.Unmarshal(encoded, &after); err != nil {
		return nil, err
	}
	var changed []string
	for _, k := range payload.Keys() {
		if k == "id" {
			continue
		}
		if !bytes.Equal(compact(before[k]), compact(after[k])) {
			changed = append(changed, k)
		}
	}
	return changed, nil
}

func compact(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func cloneMenus(menus []menu.Menu) []menu.Menu {
	if len(menus) == 0 {
		return nil
	}
	dup := make([]menu.Menu, len(menus))
	for i, m := range menus {
		dup[i] = m.Clone()
	}
	return dup
}

func cloneButtons(buttons []menu.Button) []menu.Button {
	if len(buttons) == 0 {
		return nil
	}
	dup := make([]menu.Button, len(buttons))
	for i, b := range buttons {
		dup[i] = b.Clone()
	}
	return dup
}
