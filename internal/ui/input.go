package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/nui-overlay/internal/protocol"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev value"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next value"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Select, k.Quit}
}

// actionFor maps a key press to the action message the host would send.
func (k keyMap) actionFor(msg tea.KeyMsg) (string, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return protocol.ActionUp, true
	case key.Matches(msg, k.Down):
		return protocol.ActionDown, true
	case key.Matches(msg, k.Left):
		return protocol.ActionLeft, true
	case key.Matches(msg, k.Right):
		return protocol.ActionRight, true
	case key.Matches(msg, k.Select):
		return protocol.ActionSelect, true
	}
	return "", false
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.Matches(keyMsg, m.keys.Quit) {
		m.shutdown()
		return tea.Quit
	}
	action, ok := m.keys.actionFor(keyMsg)
	if !ok {
		return nil
	}
	m.dispatch(protocol.Inbound{Type: protocol.TypeAction, Action: action})
	return nil
}

// dispatch routes a message the same way a host frame would be routed.
func (m *Model) dispatch(msg protocol.Inbound) {
	if m.router != nil {
		m.router.Dispatch(msg)
		return
	}
	if msg.Type == protocol.TypeAction {
		m.engine.Action(msg.Action)
	}
}
