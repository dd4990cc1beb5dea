package contract

import (
	"sync"

	"auction-ledger/internal/models"
)

// dispatcher hands committed events to the sinks strictly in Seq order.
// Operations finish out of order once they leave the auction lock, so an event
// waits in pending until every lower seq has been delivered or skipped.
type dispatcher struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]*models.Event
	sinks   []EventSink
}

func newDispatcher() *dispatcher {
	return &dispatcher{next: 1, pending: make(map[uint64]*models.Event)}
}

// deliver releases ev and flushes every event that is now in order
func (d *dispatcher) deliver(ev models.Event) {
	d.release(ev.Seq, &ev)
}

// skip releases a seq whose operation was rolled back
func (d *dispatcher) skip(seq uint64) {
	d.release(seq, nil)
}

// resume makes seq the last delivered one; used after replay
func (d *dispatcher) resume(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next = seq + 1
}

func (d *dispatcher) release(seq uint64, ev *models.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq < d.next {
		return
	}
	d.pending[seq] = ev
	for {
		p, ok := d.pending[d.next]
		if !ok {
			return
		}
		delete(d.pending, d.next)
		d.next++
		if p == nil {
			continue
		}
		for _, sink := range d.sinks {
			sink.Emit(*p)
		}
	}
}
