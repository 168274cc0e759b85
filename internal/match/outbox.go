// Package match contains the per-match machinery: the round state machine,
// the combat runner, per-client event outboxes and the matchmaking
// coordinator that ties them to client sessions.
package match

import (
	"sync"

	"github.com/roundhold/roundhold/internal/protocol"
)

// maxOutboxDepth bounds a client outbox. A consumer this far behind is not
// draining; the match is unhealthy and gets torn down.
const maxOutboxDepth = 256

// Outbox is one client's FIFO of pending MatchEvents plus a ready signal.
// Producers append under the outbox lock and signal; the client's stream
// goroutine waits on Ready, drains everything in order, and loops. Order is
// preserved within one outbox; nothing is guaranteed across clients.
type Outbox struct {
	mu       sync.Mutex
	events   []protocol.MatchEvent
	ready    chan struct{}
	closed   bool
	overflow bool
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{ready: make(chan struct{}, 1)}
}

// Append enqueues an event and signals the consumer. Returns false if the
// outbox is closed or has overflowed; the caller treats that as a dead
// match.
func (o *Outbox) Append(ev protocol.MatchEvent) bool {
	o.mu.Lock()
	if o.closed || o.overflow {
		o.mu.Unlock()
		return false
	}
	if len(o.events) >= maxOutboxDepth {
		o.overflow = true
		o.mu.Unlock()
		return false
	}
	o.events = append(o.events, ev)
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
	return true
}

// Drain removes and returns all pending events in enqueue order.
func (o *Outbox) Drain() []protocol.MatchEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.events) == 0 {
		return nil
	}
	out := o.events
	o.events = nil
	return out
}

// Ready returns the signal channel. A receive means at least one event may
// be pending; always follow with Drain.
func (o *Outbox) Ready() <-chan struct{} {
	return o.ready
}

// Healthy reports whether the outbox is usable: open and not overflowed.
func (o *Outbox) Healthy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.closed && !o.overflow
}

// Close marks the outbox dead and wakes the consumer so it can observe the
// closure. Pending events are dropped.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.events = nil
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
}

// Closed reports whether Close has been called.
func (o *Outbox) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
