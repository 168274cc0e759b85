package match

import (
	"sync"
	"time"

	"github.com/roundhold/roundhold/internal/protocol"
	"github.com/roundhold/roundhold/internal/state"
)

// Match is one active 1v1 game: its authoritative state, round loop, the
// two clients' outboxes and the ack gate.
type Match struct {
	ID      string
	started time.Time

	clients map[protocol.PlayerID]string // player -> client session id
	names   map[protocol.PlayerID]string

	stateMgr *state.Manager
	rounds   *RoundManager
	outboxes map[protocol.PlayerID]*Outbox
	acks     *ackGate

	// emitMu serializes accept-then-broadcast sequences so both clients
	// observe TowerPlaced events in acceptance order.
	emitMu sync.Mutex
}

// Role returns the player role of the given client session, if it is part
// of this match.
func (m *Match) Role(clientID string) (protocol.PlayerID, bool) {
	for player, id := range m.clients {
		if id == clientID {
			return player, true
		}
	}
	return "", false
}

// Outbox returns the given player's outbox.
func (m *Match) Outbox(p protocol.PlayerID) *Outbox {
	return m.outboxes[p]
}

// State returns the match's game state manager.
func (m *Match) State() *state.Manager {
	return m.stateMgr
}

// Rounds returns the match's round manager.
func (m *Match) Rounds() *RoundManager {
	return m.rounds
}
