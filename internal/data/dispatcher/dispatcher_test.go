package dispatcher

import (
	"path/filepath"
	"testing"

	"github.com/atomicstack/nui-overlay/internal/channel"
	"github.com/atomicstack/nui-overlay/internal/logging"
	"github.com/atomicstack/nui-overlay/internal/protocol"
	"github.com/atomicstack/nui-overlay/internal/state"
)

func decode(t *testing.T, raw string) protocol.Inbound {
	t.Helper()
	msg, err := protocol.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return msg
}

func TestHandleAppliesLifecycleMessages(t *testing.T) {
	s := state.NewStore()
	d := New(s)

	res := d.Handle(decode(t, `{"type":"menu_create","payload":{"id":"main","open":false,"buttons":["a"]}}`))
	if !res.MenusUpdated || res.ButtonsUpdated {
		t.Fatalf("unexpected result %+v", res)
	}
	res = d.Handle(decode(t, `{"type":"button_create","payload":{"id":"a","text":"Alpha"}}`))
	if !res.ButtonsUpdated {
		t.Fatalf("expected button update, got %+v", res)
	}
	d.Handle(decode(t, `{"type":"menu_update","payload":{"id":"main","open":true}}`))

	m, ok := s.Menu("main")
	if !ok || !m.Open || len(m.Buttons) != 1 {
		t.Fatalf("unexpected menu %#v", m)
	}

	d.Handle(decode(t, `{"type":"button_destroy","payload":{"id":"a"}}`))
	if len(s.Buttons()) != 0 {
		t.Fatalf("expected button to be destroyed")
	}
}

func TestHandleIgnoresStaleAndForeignMessages(t *testing.T) {
	s := state.NewStore()
	d := New(s)
	if res := d.Handle(decode(t, `{"type":"menu_update","payload":{"id":"ghost","open":true}}`)); res.MenusUpdated {
		t.Fatal("expected stale update to report nothing")
	}
	if res := d.Handle(decode(t, `{"type":"menu_destroy","payload":{"id":"ghost"}}`)); res.MenusUpdated {
		t.Fatal("expected stale destroy to report nothing")
	}
	if res := d.Handle(decode(t, `{"type":"action","action":"down"}`)); res != (Result{}) {
		t.Fatalf("expected action to be ignored, got %+v", res)
	}
}

func TestHandleLogsBadUpdates(t *testing.T) {
	logging.Configure(filepath.Join(t.TempDir(), "dispatch.log"))
	t.Cleanup(func() { logging.Configure("") })

	s := state.NewStore()
	d := New(s)
	d.Handle(decode(t, `{"type":"menu_create","payload":{"id":"main"}}`))
	msg := protocol.Inbound{Type: protocol.TypeMenuUpdate, Payload: protocol.Payload{
		"id":    []byte(`"main"`),
		"index": []byte(`"two"`),
	}}
	if res := d.Handle(msg); res.MenusUpdated {
		t.Fatal("expected rejected update to report nothing")
	}
}

func TestBindRoutesLifecycleTypes(t *testing.T) {
	s := state.NewStore()
	r := channel.NewRouter()
	d := New(s)
	d.Bind(r)
	d.Bind(r)

	if n := r.Dispatch(decode(t, `{"type":"button_create","payload":{"id":"a"}}`)); n != 1 {
		t.Fatalf("expected a single handler, got %d", n)
	}
	if len(s.Buttons()) != 1 {
		t.Fatalf("expected one button, got %d", len(s.Buttons()))
	}
	if n := r.Dispatch(decode(t, `{"type":"ready"}`)); n != 0 {
		t.Fatalf("expected ready to bypass the store, got %d", n)
	}
	d.Unbind(r)
	r.Dispatch(decode(t, `{"type":"button_create","payload":{"id":"b"}}`))
	if len(s.Buttons()) != 1 {
		t.Fatal("expected unbound dispatcher to ignore messages")
	}
}
