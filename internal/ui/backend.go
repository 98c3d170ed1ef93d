package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/nui-overlay/internal/backend"
)

func waitForListenerEvent(l *backend.Listener) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-l.Events()
		if !ok {
			return listenerDoneMsg{}
		}
		return listenerEventMsg{event: evt}
	}
}

type listenerEventMsg struct {
	event backend.Event
}

type listenerDoneMsg struct{}

func (m *Model) handleListenerEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(listenerEventMsg)
	if !ok {
		return nil
	}
	m.applyListenerEvent(eventMsg.event)
	if m.listener != nil {
		return waitForListenerEvent(m.listener)
	}
	return nil
}

func (m *Model) handleListenerDoneMsg(msg tea.Msg) tea.Cmd {
	m.listener = nil
	m.connected = false
	return nil
}

func (m *Model) applyListenerEvent(evt backend.Event) {
	switch evt.Kind {
	case backend.KindConnected:
		m.connected = true
		m.errMsg = ""
	case backend.KindDisconnected:
		m.connected = false
		if evt.Err != nil {
			m.errMsg = evt.Err.Error()
		}
	case backend.KindMessage:
		m.lastInbound = m.now()
		m.dispatch(evt.Message)
	}
}
