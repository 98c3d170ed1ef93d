package channel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atomicstack/nui-overlay/internal/protocol"
)

func TestSubscribeTwiceDoesNotDuplicate(t *testing.T) {
	r := NewRouter()
	calls := 0
	handlers := Handlers{protocol.TypeAction: func(protocol.Inbound) { calls++ }}

	r.Subscribe("nav", handlers)
	r.Subscribe("nav", handlers)

	n := r.Dispatch(protocol.Inbound{Type: protocol.TypeAction, Action: protocol.ActionDown})
	require.Equal(t, 1, n)
	require.Equal(t, 1, calls)
}

func TestResubscribeReplacesHandlersInPlace(t *testing.T) {
	r := NewRouter()
	var order []string
	r.Subscribe("first", Handlers{protocol.TypeReady: func(protocol.Inbound) { order = append(order, "first-old") }})
	r.Subscribe("second", Handlers{protocol.TypeReady: func(protocol.Inbound) { order = append(order, "second") }})
	r.Subscribe("first", Handlers{protocol.TypeReady: func(protocol.Inbound) { order = append(order, "first-new") }})

	r.Dispatch(protocol.Inbound{Type: protocol.TypeReady})
	require.Equal(t, []string{"first-new", "second"}, order)
}

func TestUnsubscribe(t *testing.T) {
	r := NewRouter()
	calls := 0
	r.Subscribe("nav", Handlers{protocol.TypeAction: func(protocol.Inbound) { calls++ }})
	require.True(t, r.Subscribed("nav"))

	require.True(t, r.Unsubscribe("nav"))
	require.False(t, r.Unsubscribe("nav"))
	require.False(t, r.Subscribed("nav"))

	require.Zero(t, r.Dispatch(protocol.Inbound{Type: protocol.TypeAction}))
	require.Zero(t, calls)
}

func TestDispatchIgnoresUnknownTypes(t *testing.T) {
	r := NewRouter()
	r.Subscribe("store", Handlers{protocol.TypeMenuCreate: func(protocol.Inbound) { t.Fatal("unexpected call") }})
	require.Zero(t, r.Dispatch(protocol.Inbound{Type: "telemetry"}))
}

func TestHandlerMaySubscribeDuringDispatch(t *testing.T) {
	r := NewRouter()
	r.Subscribe("bootstrap", Handlers{protocol.TypeReady: func(protocol.Inbound) {
		r.Subscribe("late", Handlers{protocol.TypeReady: func(protocol.Inbound) {}})
	}})
	require.Equal(t, 1, r.Dispatch(protocol.Inbound{Type: protocol.TypeReady}))
	require.Equal(t, 2, r.Dispatch(protocol.Inbound{Type: protocol.TypeReady}))
}
