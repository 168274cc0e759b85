package state

import (
	"fmt"
	"sync"

	"github.com/roundhold/roundhold/internal/balance"
	"github.com/roundhold/roundhold/internal/grid"
	"github.com/roundhold/roundhold/internal/protocol"
)

// Manager is the thread-safe façade over one match's authoritative state.
// A single non-reentrant mutex guards economy, grids, placements and the
// wave queue; every mutation is a validate-then-apply sequence held under
// it for its full duration. Nothing under the mutex blocks or does I/O.
type Manager struct {
	mu sync.Mutex

	accepting bool
	tickRate  int

	economy    *Economy
	grids      map[protocol.PlayerID]*grid.PlacementGrid
	placements *Placements
	waves      *WaveQueue
	snapshots  *SnapshotBuilder
}

// NewManager creates a fresh match state at starting values. Mutations are
// rejected until the round loop opens the first preparation phase.
func NewManager() *Manager {
	placements := NewPlacements()
	waves := NewWaveQueue()
	return &Manager{
		tickRate: balance.DefaultTickRate,
		economy:  defaultEconomy(),
		grids: map[protocol.PlayerID]*grid.PlacementGrid{
			protocol.PlayerA: grid.NewDefault(),
			protocol.PlayerB: grid.NewDefault(),
		},
		placements: placements,
		waves:      waves,
		snapshots:  NewSnapshotBuilder(placements, waves),
	}
}

// TickRate returns the simulation tick rate for this match.
func (m *Manager) TickRate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickRate
}

// SetTickRate overrides the tick rate. Only meaningful before the first
// snapshot is taken.
func (m *Manager) SetTickRate(rate int) error {
	if rate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", rate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickRate = rate
	return nil
}

// SetAccepting opens or closes the mutation window. The round loop opens it
// on entering preparation and closes it at round start; while closed every
// client mutation fails with ErrWrongPhase.
func (m *Manager) SetAccepting(accepting bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepting = accepting
}

// BuildTower validates and applies a tower build atomically: phase, type,
// gold and cell are checked in order, then gold is spent, the cell is
// occupied and the placement recorded. On any rejection no state changes.
func (m *Manager) BuildTower(player protocol.PlayerID, towerType string, row, col, level int) (protocol.TowerPlacement, error) {
	if !player.Valid() {
		return protocol.TowerPlacement{}, fmt.Errorf("%w: bad player %q", protocol.ErrNotInMatch, player)
	}
	if level < 1 {
		level = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.accepting {
		return protocol.TowerPlacement{}, protocol.ErrWrongPhase
	}
	stats, ok := balance.TowerTypes[towerType]
	if !ok {
		return protocol.TowerPlacement{}, fmt.Errorf("%w: %q", protocol.ErrUnknownType, towerType)
	}
	if m.economy.Gold(player) < stats.Cost {
		return protocol.TowerPlacement{}, fmt.Errorf("%w: have %d, need %d",
			protocol.ErrInsufficientGold, m.economy.Gold(player), stats.Cost)
	}

	g := m.grids[player]
	if !g.IsBuildable(row, col) {
		if g.Cell(row, col) == grid.Occupied {
			return protocol.TowerPlacement{}, fmt.Errorf("%w: (%d,%d)", protocol.ErrCellOccupied, row, col)
		}
		return protocol.TowerPlacement{}, fmt.Errorf("%w: (%d,%d)", protocol.ErrNotBuildable, row, col)
	}

	if err := m.economy.SpendGold(player, stats.Cost); err != nil {
		return protocol.TowerPlacement{}, err
	}
	g.Occupy(row, col)
	return m.placements.Record(player, towerType, row, col, level), nil
}

// AddUnitsToWave validates and applies a unit purchase atomically.
func (m *Manager) AddUnitsToWave(player protocol.PlayerID, orders []protocol.UnitOrder) error {
	if !player.Valid() {
		return fmt.Errorf("%w: bad player %q", protocol.ErrNotInMatch, player)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.accepting {
		return protocol.ErrWrongPhase
	}
	units, cost, err := m.waves.PrepareUnits(player, orders)
	if err != nil {
		return err
	}
	if err := m.economy.SpendGold(player, cost); err != nil {
		return err
	}
	m.waves.Enqueue(units, m.tickRate)
	return nil
}

// Snapshot freezes towers and queued units into simulation data. Read-only.
func (m *Manager) Snapshot() protocol.SimulationData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots.Build(m.tickRate)
}

// ApplyRoundResult applies the authoritative round outcome to the economy.
func (m *Manager) ApplyRoundResult(r protocol.RoundResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.economy.ApplyRoundResult(r)
}

// ClearWaveData drops the consumed wave queue after a round.
func (m *Manager) ClearWaveData() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waves.Clear()
}

// MatchOver reports whether a player is out of lives. The winner is the
// opponent; if both hit zero in the same round the match is a draw and the
// returned winner is empty.
func (m *Manager) MatchOver() (winner protocol.PlayerID, over bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	aDead := m.economy.Lives(protocol.PlayerA) == 0
	bDead := m.economy.Lives(protocol.PlayerB) == 0
	switch {
	case aDead && bDead:
		return "", true
	case aDead:
		return protocol.PlayerB, true
	case bDead:
		return protocol.PlayerA, true
	default:
		return "", false
	}
}

// Gold returns the player's current gold.
func (m *Manager) Gold(p protocol.PlayerID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.economy.Gold(p)
}

// Lives returns the player's current lives.
func (m *Manager) Lives(p protocol.PlayerID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.economy.Lives(p)
}

// StateSnapshot returns both players' visible economy state.
func (m *Manager) StateSnapshot() protocol.StateSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.economy.Snapshot()
}

// Placements returns the accepted placements in acceptance order.
func (m *Manager) Placements() []protocol.TowerPlacement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placements.All()
}

// OccupiedTiles returns the player's occupied grid cells.
func (m *Manager) OccupiedTiles(p protocol.PlayerID) []balance.Tile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grids[p].OccupiedTiles()
}

// QueuedUnits returns a copy of the pending wave queue.
func (m *Manager) QueuedUnits() []protocol.SimUnitData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waves.Units()
}
