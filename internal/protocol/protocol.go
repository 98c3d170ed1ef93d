// Package protocol defines the messages exchanged with the host process.
//
// Inbound messages arrive as {type, payload} for lifecycle changes and
// {type: "action", action} for navigation. Outbound messages are flat
// {type, ...fields} objects posted to the host's message route.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/atomicstack/nui-overlay/internal/menu"
)

// Type names an inbound or outbound message.
type Type string

const (
	TypeAction        Type = "action"
	TypeMenuCreate    Type = "menu_create"
	TypeButtonCreate  Type = "button_create"
	TypeMenuUpdate    Type = "menu_update"
	TypeButtonUpdate  Type = "button_update"
	TypeMenuDestroy   Type = "menu_destroy"
	TypeButtonDestroy Type = "button_destroy"
	TypeReady         Type = "ready"

	TypeMove        Type = "move"
	TypeSelect      Type = "select"
	TypeListMove    Type = "list_move"
	TypeCheckUpdate Type = "check_update"
	TypeOpen        Type = "open"
	TypeClose       Type = "close"
)

// Navigation action names carried by TypeAction messages.
const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionLeft   = "left"
	ActionRight  = "right"
	ActionSelect = "sel"
)

// Op is the lifecycle operation carried by a create/update/destroy message.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpDestroy
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDestroy:
		return "destroy"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

var lifecycle = map[Type]struct {
	kind menu.Kind
	op   Op
}{
	TypeMenuCreate:    {menu.KindMenu, OpCreate},
	TypeButtonCreate:  {menu.KindButton, OpCreate},
	TypeMenuUpdate:    {menu.KindMenu, OpUpdate},
	TypeButtonUpdate:  {menu.KindButton, OpUpdate},
	TypeMenuDestroy:   {menu.KindMenu, OpDestroy},
	TypeButtonDestroy: {menu.KindButton, OpDestroy},
}

// Lifecycle reports the entity kind and operation for lifecycle message types.
func (t Type) Lifecycle() (menu.Kind, Op, bool) {
	entry, ok := lifecycle[t]
	return entry.kind, entry.op, ok
}

// InboundTypes lists every inbound type the overlay reacts to.
func InboundTypes() []Type {
	return []Type{
		TypeAction,
		TypeMenuCreate,
		TypeButtonCreate,
		TypeMenuUpdate,
		TypeButtonUpdate,
		TypeMenuDestroy,
		TypeButtonDestroy,
		TypeReady,
	}
}

// LifecycleTypes lists the create/update/destroy message types.
func LifecycleTypes() []Type {
	types := make([]Type, 0, len(lifecycle))
	for t := range lifecycle {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ErrMalformed marks inbound data that could not be decoded or validated.
var ErrMalformed = errors.New("malformed inbound message")

// Payload keeps each field of a lifecycle payload as raw JSON so updates can
// be merged field by field.
type Payload map[string]json.RawMessage

// ID extracts the payload id. A missing or undecodable id reports false.
func (p Payload) ID() (menu.ID, bool) {
	raw, ok := p["id"]
	if !ok {
		return "", false
	}
	var id menu.ID
	if err := json.Unmarshal(raw, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Keys returns the payload field names in sorted order.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewPayload builds a payload for id with the given field values.
func NewPayload(id menu.ID, fields map[string]interface{}) (Payload, error) {
	p := make(Payload, len(fields)+1)
	rawID, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	p["id"] = rawID
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		p[k] = raw
	}
	return p, nil
}

// Inbound is a message received from the host.
type Inbound struct {
	Type    Type    `json:"type"`
	Action  string  `json:"action,omitempty"`
	Payload Payload `json:"payload,omitempty"`
}

// Decode validates and decodes a single inbound message.
func Decode(data []byte) (Inbound, error) {
	if err := validate(data); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var msg Inbound
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&msg); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return msg, nil
}

// Outbound is a message sent to the host. Optional fields are omitted when
// they do not apply to the message type.
type Outbound struct {
	Type    Type    `json:"type"`
	Button  menu.ID `json:"button,omitempty"`
	Menu    menu.ID `json:"menu,omitempty"`
	Index   *int    `json:"index,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

// Move reports a menu selection index change.
func Move(menuID, buttonID menu.ID, index int) Outbound {
	return Outbound{Type: TypeMove, Button: buttonID, Menu: menuID, Index: &index}
}

// ListMove reports a button list cursor change.
func ListMove(menuID, buttonID menu.ID, index int) Outbound {
	return Outbound{Type: TypeListMove, Button: buttonID, Menu: menuID, Index: &index}
}

// CheckUpdate reports a checkbox value change.
func CheckUpdate(menuID, buttonID menu.ID, checked bool) Outbound {
	return Outbound{Type: TypeCheckUpdate, Button: buttonID, Menu: menuID, Checked: &checked}
}

// Select reports a selection on the focused button.
func Select(menuID, buttonID menu.ID) Outbound {
	return Outbound{Type: TypeSelect, Button: buttonID, Menu: menuID}
}

// Open reports a menu entering the open set.
func Open(menuID menu.ID) Outbound {
	return Outbound{Type: TypeOpen, Menu: menuID}
}

// Close reports a menu leaving the open set.
func Close(menuID menu.ID) Outbound {
	return Outbound{Type: TypeClose, Menu: menuID}
}

// Ready announces that the overlay is listening.
func Ready() Outbound {
	return Outbound{Type: TypeReady}
}

// Fields flattens the message for logging and tabular output.
func (o Outbound) Fields() map[string]interface{} {
	fields := map[string]interface{}{"type": string(o.Type)}
	if o.Menu != "" {
		fields["menu"] = o.Menu.String()
	}
	if o.Button != "" {
		fields["button"] = o.Button.String()
	}
	if o.Index != nil {
		fields["index"] = *o.Index
	}
	if o.Checked != nil {
		fields["checked"] = *o.Checked
	}
	return fields
}
