package dispatcher

import (
	"github.com/atomicstack/nui-overlay/internal/channel"
	"github.com/atomicstack/nui-overlay/internal/logging"
	"github.com/atomicstack/nui-overlay/internal/menu"
	"github.com/atomicstack/nui-overlay/internal/protocol"
	"github.com/atomicstack/nui-overlay/internal/state"
)

// Subscriber is the router name the dispatcher registers under.
const Subscriber = "store"

// Result reports which collections a handled message changed.
type Result struct {
	MenusUpdated   bool
	ButtonsUpdated bool
}

// Dispatcher applies inbound lifecycle messages to the store.
type Dispatcher struct {
	store state.Store
}

// New returns a dispatcher that applies messages to s.
func New(s state.Store) *Dispatcher {
	return &Dispatcher{store: s}
}

// Bind registers the dispatcher for every lifecycle message type.
func (d *Dispatcher) Bind(r *channel.Router) {
	handlers := channel.Handlers{}
	for _, t := range protocol.LifecycleTypes() {
		handlers[t] = func(msg protocol.Inbound) { d.Handle(msg) }
	}
	r.Subscribe(Subscriber, handlers)
}

// Unbind removes the dispatcher from the router.
func (d *Dispatcher) Unbind(r *channel.Router) {
	r.Unsubscribe(Subscriber)
}

// Handle applies msg and reports which collection changed. Non-lifecycle
// messages and stale ids leave the store untouched.
func (d *Dispatcher) Handle(msg protocol.Inbound) Result {
	var res Result
	kind, op, ok := msg.Type.Lifecycle()
	if !ok || msg.Payload == nil {
		return res
	}
	applied := false
	switch op {
	case protocol.OpCreate:
		if err := d.store.Create(kind, msg.Payload); err != nil {
			logging.Error(err)
			return res
		}
		applied = true
	case protocol.OpUpdate:
		updated, err := d.store.Update(kind, msg.Payload)
		if err != nil {
			logging.Error(err)
			return res
		}
		applied = updated
	case protocol.OpDestroy:
		applied = d.store.Destroy(kind, msg.Payload)
	}
	if !applied {
		return res
	}
	switch kind {
	case menu.KindMenu:
		res.MenusUpdated = true
	case menu.KindButton:
		res.ButtonsUpdated = true
	}
	return res
}
