package engine

import (
	"sync"

	"github.com/atomicstack/nui-overlay/internal/protocol"
)

// Recorder is a Sender that keeps every message in memory. Replays and tests
// use it in place of the host.
type Recorder struct {
	mu   sync.Mutex
	msgs []protocol.Outbound
	next Sender
}

// NewRecorder returns a recorder that also forwards to next when it is not nil.
func NewRecorder(next Sender) *Recorder {
	return &Recorder{next: next}
}

// Send records msg.
func (r *Recorder) Send(msg protocol.Outbound) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	if r.next != nil {
		r.next.Send(msg)
	}
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []protocol.Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]protocol.Outbound(nil), r.msgs...)
}

// Types lists the recorded message types in order.
func (r *Recorder) Types() []protocol.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]protocol.Type, len(r.msgs))
	for i, msg := range r.msgs {
		types[i] = msg.Type
	}
	return types
}

// Reset forgets the recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.msgs = nil
	r.mu.Unlock()
}
