// Package channel connects the overlay to its host: Router fans inbound
// messages out to registered handlers and Client posts outbound messages to
// the host's message route.
package channel

import (
	"sort"
	"sync"

	"github.com/atomicstack/nui-overlay/internal/logging/events"
	"github.com/atomicstack/nui-overlay/internal/protocol"
)

// Handler reacts to one inbound message.
type Handler func(protocol.Inbound)

// Handlers maps message types to the handler a subscriber registers for them.
type Handlers map[protocol.Type]Handler

type subscription struct {
	name     string
	handlers Handlers
}

// Router is the process-wide inbound dispatcher. Each named subscriber holds
// at most one registration; subscribing again under the same name replaces
// the previous handlers in place, so a handler never fires twice for the
// same message.
type Router struct {
	mu   sync.Mutex
	subs []subscription
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Subscribe registers handlers under name, replacing any earlier
// registration with that name while keeping its dispatch position.
func (r *Router) Subscribe(name string, handlers Handlers) {
	dup := make(Handlers, len(handlers))
	types := make([]string, 0, len(handlers))
	for t, h := range handlers {
		if h == nil {
			continue
		}
		dup[t] = h
		types = append(types, string(t))
	}
	sort.Strings(types)

	r.mu.Lock()
	replaced := false
	for i := range r.subs {
		if r.subs[i].name == name {
			r.subs[i].handlers = dup
			replaced = true
			break
		}
	}
	if !replaced {
		r.subs = append(r.subs, subscription{name: name, handlers: dup})
	}
	r.mu.Unlock()
	events.Channel.Subscribe(name, types)
}

// Unsubscribe removes the registration for name. It reports whether one
// existed; removing an unknown name is harmless.
func (r *Router) Unsubscribe(name string) bool {
	r.mu.Lock()
	removed := false
	for i := range r.subs {
		if r.subs[i].name == name {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			removed = true
			break
		}
	}
	r.mu.Unlock()
	if removed {
		events.Channel.Unsubscribe(name)
	}
	return removed
}

// Subscribed reports whether name currently holds a registration.
func (r *Router) Subscribed(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.name == name {
			return true
		}
	}
	return false
}

// Dispatch delivers msg to every handler registered for its type, in
// subscription order, and returns how many ran. Messages nobody handles are
// ignored.
func (r *Router) Dispatch(msg protocol.Inbound) int {
	r.mu.Lock()
	var targets []Handler
	for _, sub := range r.subs {
		if h, ok := sub.handlers[msg.Type]; ok {
			targets = append(targets, h)
		}
	}
	r.mu.Unlock()

	events.Inbound.Received(string(msg.Type), len(targets))
	for _, h := range targets {
		h(msg)
	}
	return len(targets)
}
