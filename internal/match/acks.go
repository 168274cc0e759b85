package match

import (
	"sync"
	"time"

	"github.com/roundhold/roundhold/internal/protocol"
)

// ackGate collects both players' end-of-round acknowledgements. Acks are
// keyed by round number; duplicates and acks for other rounds are ignored,
// so a client may ack as often as it likes.
type ackGate struct {
	mu    sync.Mutex
	round int
	acked map[protocol.PlayerID]bool
	both  chan struct{}
}

func newAckGate() *ackGate {
	return &ackGate{
		acked: make(map[protocol.PlayerID]bool),
		both:  make(chan struct{}),
	}
}

// Reset arms the gate for a new round, discarding earlier acks.
func (g *ackGate) Reset(round int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.round = round
	g.acked = make(map[protocol.PlayerID]bool)
	g.both = make(chan struct{})
}

// Ack records one player's acknowledgement for the given round. The gate
// opens when both players have acked the current round.
func (g *ackGate) Ack(player protocol.PlayerID, round int) {
	if !player.Valid() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if round != g.round || g.acked[player] {
		return
	}
	g.acked[player] = true
	if g.acked[protocol.PlayerA] && g.acked[protocol.PlayerB] {
		close(g.both)
	}
}

// Wait blocks until both acks arrive, the timeout passes, or stop closes.
// Returns true iff both acks arrived.
func (g *ackGate) Wait(timeout time.Duration, stop <-chan struct{}) bool {
	g.mu.Lock()
	both := g.both
	g.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-both:
		return true
	case <-timer.C:
		return false
	case <-stop:
		return false
	}
}
