package journal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atomicstack/nui-overlay/internal/channel"
	"github.com/atomicstack/nui-overlay/internal/menu"
	"github.com/atomicstack/nui-overlay/internal/protocol"
)

func openTemp(t *testing.T, run string) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal", "nui.db"), run)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordsBothDirections(t *testing.T) {
	j := openTemp(t, "run-1")

	msg, err := protocol.Decode([]byte(`{"type":"action","action":"down"}`))
	require.NoError(t, err)
	require.NoError(t, j.RecordInbound(msg))
	require.NoError(t, j.RecordOutbound(protocol.Move("main", "b", 1), "req-1", nil))
	require.NoError(t, j.RecordOutbound(protocol.Ready(), "req-2", errors.New("host did not acknowledge message")))

	entries, err := j.Entries(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Equal(t, Inbound, entries[0].Direction)
	require.Equal(t, "action", entries[0].Type)
	require.JSONEq(t, `{"type":"action","action":"down"}`, entries[0].Body)

	require.Equal(t, Outbound, entries[1].Direction)
	require.Equal(t, "req-1", entries[1].RequestID)
	require.Empty(t, entries[1].Error)
	require.JSONEq(t, `{"type":"move","menu":"main","button":"b","index":1}`, entries[1].Body)

	require.Equal(t, "ready", entries[2].Type)
	require.Contains(t, entries[2].Error, "acknowledge")
}

func TestEntriesLimitKeepsNewest(t *testing.T) {
	j := openTemp(t, "run-2")
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, j.RecordOutbound(protocol.Open(menu.ID(id)), "", nil))
	}
	entries, err := j.Entries(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.JSONEq(t, `{"type":"open","menu":"b"}`, entries[0].Body)
	require.JSONEq(t, `{"type":"open","menu":"c"}`, entries[1].Body)
}

func TestEntriesAreScopedToRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	first, err := Open(path, "first")
	require.NoError(t, err)
	require.NoError(t, first.RecordOutbound(protocol.Ready(), "", nil))
	require.NoError(t, first.Close())

	second, err := Open(path, "second")
	require.NoError(t, err)
	defer second.Close()
	entries, err := second.Entries(0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestHandlersAndObserverWiring(t *testing.T) {
	j := openTemp(t, "run-3")
	r := channel.NewRouter()
	r.Subscribe(Subscriber, j.Handlers())

	msg, err := protocol.Decode([]byte(`{"type":"ready"}`))
	require.NoError(t, err)
	require.Equal(t, 1, r.Dispatch(msg))

	var observer channel.Observer = j
	observer.Sent(protocol.Close("main"), "req", nil)

	entries, err := j.Entries(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "ready", entries[0].Type)
	require.Equal(t, "close", entries[1].Type)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())
}
