package events

import "github.com/atomicstack/nui-overlay/internal/logging"

type StoreTracer struct{}

var Store = StoreTracer{}

func (StoreTracer) Create(kind, id string) {
	logging.Trace("store.create", map[string]interface{}{"kind": kind, "id": id})
}

func (StoreTracer) Update(kind, id string, fields []string) {
	logging.Trace("store.update", map[string]interface{}{"kind": kind, "id": id, "fields": fields})
}

func (StoreTracer) Destroy(kind, id string) {
	logging.Trace("store.destroy", map[string]interface{}{"kind": kind, "id": id})
}

// Stale records an update or destroy that referenced an unknown id.
func (StoreTracer) Stale(kind, id, op string) {
	logging.Trace("store.stale", map[string]interface{}{"kind": kind, "id": id, "op": op})
}

func (StoreTracer) Invalid(kind, op string, err error) {
	logging.Trace("store.invalid", map[string]interface{}{"kind": kind, "op": op, "error": err.Error()})
}
