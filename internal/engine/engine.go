// Package engine drives navigation over the store and derives the outbound
// messages the host is told about.
//
// The engine never holds references into store entities. Actions request
// changes through Store.Update, and outbound messages are derived from the
// store's change notifications, so a transition caused by the host and one
// caused by local navigation produce the same messages.
package engine

import (
	"sync"

	"github.com/atomicstack/nui-overlay/internal/channel"
	"github.com/atomicstack/nui-overlay/internal/menu"
	"github.com/atomicstack/nui-overlay/internal/protocol"
	"github.com/atomicstack/nui-overlay/internal/state"
)

// Subscriber names the engine registers on the router.
const (
	NavSubscriber       = "engine.nav"
	HandshakeSubscriber = "engine.handshake"
)

// DefaultWindowLength is the number of buttons shown per menu when neither
// the menu nor the configuration says otherwise.
const DefaultWindowLength = 10

// Sender delivers outbound messages. Implementations must not block on the
// host's acknowledgement.
type Sender interface {
	Send(protocol.Outbound)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(protocol.Outbound)

// Send calls f(msg).
func (f SenderFunc) Send(msg protocol.Outbound) { f(msg) }

// Options tunes an Engine.
type Options struct {
	WindowLength int
}

// Engine owns the navigation rules and outbound event derivation.
type Engine struct {
	store  state.Store
	sender Sender
	window int

	open     []menu.ID
	cancel   func()
	stopOnce sync.Once
}

// New builds an engine over store that reports to sender.
func New(store state.Store, sender Sender, opts Options) *Engine {
	window := opts.WindowLength
	if window < 1 {
		window = DefaultWindowLength
	}
	return &Engine{store: store, sender: sender, window: window}
}

// Start begins watching the store and announces readiness to the host.
// Calling Start again has no effect.
func (e *Engine) Start() {
	if e.cancel != nil {
		return
	}
	e.open = state.OpenMenuIDs(e.store)
	e.cancel = e.store.Subscribe(e.observe)
	e.emit(protocol.Ready())
}

// Stop detaches the engine from the store.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.cancel != nil {
			e.cancel()
		}
	})
}

// Activate registers the engine's inbound handlers. It is safe to call on
// every activation; the router keeps a single registration per subscriber.
func (e *Engine) Activate(r *channel.Router) {
	r.Subscribe(NavSubscriber, channel.Handlers{
		protocol.TypeAction: func(msg protocol.Inbound) { e.Action(msg.Action) },
	})
	r.Subscribe(HandshakeSubscriber, channel.Handlers{
		protocol.TypeReady: func(protocol.Inbound) { e.emit(protocol.Ready()) },
	})
}

// Deactivate removes the engine's inbound handlers.
func (e *Engine) Deactivate(r *channel.Router) {
	r.Unsubscribe(NavSubscriber)
	r.Unsubscribe(HandshakeSubscriber)
}

// WindowLength resolves the viewport length used for m.
func (e *Engine) WindowLength(m menu.Menu) int {
	return state.WindowLength(m, e.window)
}

// ActiveMenu returns the menu that receives up/down navigation: the last
// open menu in collection order.
func (e *Engine) ActiveMenu() (menu.Menu, bool) {
	open := state.OpenMenus(e.store)
	if len(open) == 0 {
		return menu.Menu{}, false
	}
	return open[len(open)-1], true
}

// Focused returns the active menu and its selected button.
func (e *Engine) Focused() (menu.Menu, menu.Button, bool) {
	m, ok := e.ActiveMenu()
	if !ok {
		return menu.Menu{}, menu.Button{}, false
	}
	b, ok := state.SelectedButton(m, state.MenuButtons(e.store, m))
	if !ok {
		return m, menu.Button{}, false
	}
	return m, b, true
}

func (e *Engine) emit(msg protocol.Outbound) {
	if e.sender == nil {
		return
	}
	e.sender.Send(msg)
}
