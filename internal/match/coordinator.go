package match

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/roundhold/roundhold/internal/protocol"
	"github.com/roundhold/roundhold/internal/state"
)

// ResultSaver persists completed match results. Optional; a nil saver
// disables persistence without touching the match flow.
type ResultSaver interface {
	SaveMatchResult(MatchRecord) error
}

// MatchRecord is the persisted summary of a finished match.
type MatchRecord struct {
	MatchID      string
	PlayerA      string
	PlayerB      string
	Winner       string // "A", "B" or empty
	Rounds       int
	EndReason    string
	DurationSecs int
}

// CoordinatorConfig holds matchmaking and round pacing settings.
type CoordinatorConfig struct {
	PrepDuration time.Duration
	AckTimeout   time.Duration
	TickRate     int
}

// Coordinator owns matchmaking and the registry of active matches. A single
// waiting slot pairs the first two queued clients; each pair gets a fresh
// Match with its own state, round loop and outboxes.
//
// Lock order across the package: Coordinator.mu, then Match.emitMu, then
// outbox locks, then the state manager's mutex, then the round manager's
// phase lock. Never the reverse.
type Coordinator struct {
	config CoordinatorConfig
	logger *log.Logger
	saver  ResultSaver

	mu          sync.Mutex
	waiting     *waitingClient
	matches     map[string]*Match
	clientMatch map[string]*Match
}

type waitingClient struct {
	id     string
	name   string
	outbox *Outbox
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(cfg CoordinatorConfig, logger *log.Logger) *Coordinator {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 20
	}
	return &Coordinator{
		config:      cfg,
		logger:      logger,
		matches:     make(map[string]*Match),
		clientMatch: make(map[string]*Match),
	}
}

// SetResultSaver attaches an optional persistence sink for finished
// matches.
func (c *Coordinator) SetResultSaver(saver ResultSaver) {
	c.saver = saver
}

// Queue enters a client into matchmaking and returns the outbox its stream
// must drain. If another client is already waiting the two are paired
// immediately: roles assigned, MatchFound enqueued to both, round loop
// started.
func (c *Coordinator) Queue(clientID, name string) (*Outbox, error) {
	if name == "" {
		name = "Player"
	}
	outbox := NewOutbox()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inMatch := c.clientMatch[clientID]; inMatch {
		return nil, fmt.Errorf("client %s already in a match", clientID)
	}
	if c.waiting != nil && c.waiting.id == clientID {
		return nil, fmt.Errorf("client %s already queued", clientID)
	}

	if c.waiting == nil {
		c.waiting = &waitingClient{id: clientID, name: name, outbox: outbox}
		c.logger.Info("client queued", "client", clientID, "name", name)
		return outbox, nil
	}

	partner := c.waiting
	c.waiting = nil
	c.startMatchLocked(partner, &waitingClient{id: clientID, name: name, outbox: outbox})
	return outbox, nil
}

// startMatchLocked pairs two clients. Caller holds c.mu.
func (c *Coordinator) startMatchLocked(a, b *waitingClient) {
	stateMgr := state.NewManager()
	if c.config.TickRate != 0 {
		_ = stateMgr.SetTickRate(c.config.TickRate)
	}

	acks := newAckGate()
	outboxes := map[protocol.PlayerID]*Outbox{
		protocol.PlayerA: a.outbox,
		protocol.PlayerB: b.outbox,
	}
	matchLogger := c.logger.With("match", shortID(a.id, b.id))
	rounds := newRoundManager(stateMgr, outboxes, acks,
		c.config.PrepDuration, c.config.AckTimeout, matchLogger)

	m := &Match{
		ID:      uuid.NewString(),
		started: time.Now(),
		clients: map[protocol.PlayerID]string{
			protocol.PlayerA: a.id,
			protocol.PlayerB: b.id,
		},
		names: map[protocol.PlayerID]string{
			protocol.PlayerA: a.name,
			protocol.PlayerB: b.name,
		},
		stateMgr: stateMgr,
		rounds:   rounds,
		outboxes: outboxes,
		acks:     acks,
	}

	c.matches[m.ID] = m
	c.clientMatch[a.id] = m
	c.clientMatch[b.id] = m

	initial := stateMgr.StateSnapshot()
	a.outbox.Append(protocol.MatchFound{
		MatchID: m.ID, Player: protocol.PlayerA, Opponent: b.name, InitialState: initial,
	})
	b.outbox.Append(protocol.MatchFound{
		MatchID: m.ID, Player: protocol.PlayerB, Opponent: a.name, InitialState: initial,
	})

	c.logger.Info("match found", "id", m.ID, "player_a", a.name, "player_b", b.name)

	go rounds.Run(func(o Outcome) { c.finishMatch(m, o) })
}

// finishMatch records and unregisters a match once its round loop exits.
func (c *Coordinator) finishMatch(m *Match, o Outcome) {
	c.mu.Lock()
	_, known := c.matches[m.ID]
	delete(c.matches, m.ID)
	for _, clientID := range m.clients {
		if c.clientMatch[clientID] == m {
			delete(c.clientMatch, clientID)
		}
	}
	c.mu.Unlock()

	if !known || c.saver == nil {
		return
	}
	record := MatchRecord{
		MatchID:      m.ID,
		PlayerA:      m.names[protocol.PlayerA],
		PlayerB:      m.names[protocol.PlayerB],
		Winner:       string(o.Winner),
		Rounds:       o.Rounds,
		EndReason:    o.Reason,
		DurationSecs: int(time.Since(m.started).Seconds()),
	}
	// Best effort. This runs on the round loop's goroutine after the loop
	// has finished, so no round waits on it.
	if err := c.saver.SaveMatchResult(record); err != nil {
		c.logger.Warn("could not save match result", "match", m.ID, "error", err)
	}
}

// matchFor resolves a client's match and role.
func (c *Coordinator) matchFor(clientID string) (*Match, protocol.PlayerID, error) {
	c.mu.Lock()
	m, ok := c.clientMatch[clientID]
	c.mu.Unlock()
	if !ok {
		return nil, "", protocol.ErrNotInMatch
	}
	role, ok := m.Role(clientID)
	if !ok {
		return nil, "", protocol.ErrNotInMatch
	}
	return m, role, nil
}

// BuildTower validates and applies a build for the given client, then
// broadcasts TowerPlaced to both outboxes. The match's emit lock makes the
// accept-then-broadcast sequence atomic, so both clients see placements in
// acceptance order.
func (c *Coordinator) BuildTower(clientID string, req protocol.BuildTowerRequest) (protocol.TowerPlacement, error) {
	m, role, err := c.matchFor(clientID)
	if err != nil {
		return protocol.TowerPlacement{}, err
	}
	if req.Player != "" && req.Player != role {
		return protocol.TowerPlacement{}, fmt.Errorf("%w: role mismatch", protocol.ErrNotInMatch)
	}

	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	placement, err := m.stateMgr.BuildTower(role, req.TowerType, req.TileRow, req.TileCol, req.Level)
	if err != nil {
		return protocol.TowerPlacement{}, err
	}
	ev := protocol.TowerPlaced{Placement: placement}
	for _, ob := range m.outboxes {
		ob.Append(ev)
	}
	return placement, nil
}

// SendUnits queues units for the client's next wave. Accepted compositions
// are not broadcast; only the round snapshot reveals them.
func (c *Coordinator) SendUnits(clientID string, req protocol.SendUnitsRequest) error {
	m, role, err := c.matchFor(clientID)
	if err != nil {
		return err
	}
	if req.Player != "" && req.Player != role {
		return fmt.Errorf("%w: role mismatch", protocol.ErrNotInMatch)
	}
	return m.stateMgr.AddUnitsToWave(role, req.Units)
}

// RoundAck records the client's acknowledgement of a finished round.
func (c *Coordinator) RoundAck(clientID string, req protocol.RoundAckRequest) error {
	m, role, err := c.matchFor(clientID)
	if err != nil {
		return err
	}
	if req.Player != "" && req.Player != role {
		return fmt.Errorf("%w: role mismatch", protocol.ErrNotInMatch)
	}
	m.rounds.Ack(role, req.Round)
	return nil
}

// Gold returns the client's current gold, or zero if it has no match.
func (c *Coordinator) Gold(clientID string) int {
	m, role, err := c.matchFor(clientID)
	if err != nil {
		return 0
	}
	return m.stateMgr.Gold(role)
}

// InMatch reports whether the client has an active match.
func (c *Coordinator) InMatch(clientID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.clientMatch[clientID]
	return ok
}

// Disconnect removes a client. A waiting client is dropped from the queue;
// a matched client's partner is told the opponent is gone and the match is
// torn down.
func (c *Coordinator) Disconnect(clientID string) {
	c.mu.Lock()
	if c.waiting != nil && c.waiting.id == clientID {
		c.waiting.outbox.Close()
		c.waiting = nil
		c.mu.Unlock()
		c.logger.Info("waiting client left", "client", clientID)
		return
	}
	m, ok := c.clientMatch[clientID]
	c.mu.Unlock()
	if !ok {
		return
	}

	role, _ := m.Role(clientID)
	c.logger.Info("client disconnected mid-match", "client", clientID, "player", string(role))

	partner := role.Opponent()
	m.outboxes[partner].Append(protocol.OpponentDisconnected{})
	m.rounds.Stop()
	m.outboxes[role].Close()
}

// Shutdown stops every active match and wakes all streams.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	if c.waiting != nil {
		c.waiting.outbox.Close()
		c.waiting = nil
	}
	matches := make([]*Match, 0, len(c.matches))
	for _, m := range c.matches {
		matches = append(matches, m)
	}
	c.mu.Unlock()

	for _, m := range matches {
		m.rounds.Stop()
		<-m.rounds.Done()
		for _, ob := range m.outboxes {
			ob.Close()
		}
	}
}

// ActiveMatches returns the number of running matches.
func (c *Coordinator) ActiveMatches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.matches)
}

func shortID(ids ...string) string {
	s := ""
	for i, id := range ids {
		if len(id) > 8 {
			id = id[:8]
		}
		if i > 0 {
			s += "/"
		}
		s += id
	}
	return s
}
