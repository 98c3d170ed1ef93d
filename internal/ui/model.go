package ui

import (
	"reflect"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/nui-overlay/internal/backend"
	"github.com/atomicstack/nui-overlay/internal/channel"
	"github.com/atomicstack/nui-overlay/internal/engine"
	"github.com/atomicstack/nui-overlay/internal/state"
	"github.com/atomicstack/nui-overlay/internal/theme"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options wires a Model to the rest of the overlay.
type Options struct {
	Store    state.Store
	Engine   *engine.Engine
	Router   *channel.Router
	Listener *backend.Listener
	Width    int
	Height   int
	Footer   bool
	// Now is used for the "last message" status; defaults to time.Now.
	Now func() time.Time
}

// Model implements the Bubble Tea model for the overlay.
type Model struct {
	store    state.Store
	engine   *engine.Engine
	router   *channel.Router
	listener *backend.Listener

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	keys        keyMap

	connected   bool
	errMsg      string
	lastInbound time.Time
	now         func() time.Time

	handlers map[reflect.Type]msgHandler
}

// NewModel builds the model. Store, Engine and Router are required.
func NewModel(opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := &Model{
		store:      opts.Store,
		engine:     opts.Engine,
		router:     opts.Router,
		listener:   opts.Listener,
		showFooter: opts.Footer,
		keys:       defaultKeyMap(),
		now:        now,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface. It registers the engine on the
// router and starts it.
func (m *Model) Init() tea.Cmd {
	if m.router != nil {
		m.engine.Activate(m.router)
	}
	m.engine.Start()
	if m.listener != nil {
		return waitForListenerEvent(m.listener)
	}
	return nil
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(listenerEventMsg{}):  m.handleListenerEventMsg,
		reflect.TypeOf(listenerDoneMsg{}):   m.handleListenerDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	return nil
}

// shutdown detaches the engine before the program exits.
func (m *Model) shutdown() {
	if m.router != nil {
		m.engine.Deactivate(m.router)
	}
	if m.listener != nil {
		m.listener.Stop()
	}
}
