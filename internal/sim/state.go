package sim

import (
	"fmt"

	"github.com/roundhold/roundhold/internal/balance"
	"github.com/roundhold/roundhold/internal/protocol"
)

// maxSimHours caps a runaway round. Termination is deterministic from the
// rules below; the ceiling is a safety net only.
const maxSimHours = 1

// State is the full simulation state for one combat round.
//
// State owns its towers and units in master slices whose order never
// changes within a round: entity ids equal master-slice indices, and every
// per-tick iteration walks the master order. Inactive
// units are dropped from the active view but never compacted out of the
// master list.
type State struct {
	TickRate int
	SimDT    float64
	Tick     int

	Towers []*Tower
	Units  []*Unit

	active  []*Unit
	pending int

	killsA     int
	killsB     int
	livesLostA int
	livesLostB int

	minTicks  int
	tailTicks int
	maxTicks  int
	// quietTick is the first tick at which no unit was active or pending
	// (and the minimum duration had passed); -1 until then.
	quietTick int
}

// NewState constructs a fresh simulation from a snapshot. Entity order
// follows snapshot order exactly.
func NewState(data protocol.SimulationData) (*State, error) {
	if data.TickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", data.TickRate)
	}

	st := &State{
		TickRate:  data.TickRate,
		SimDT:     balance.SimDT(data.TickRate),
		minTicks:  balance.MinSimSeconds * data.TickRate,
		tailTicks: balance.TailSeconds * data.TickRate,
		maxTicks:  maxSimHours * 3600 * data.TickRate,
		quietTick: -1,
	}

	st.Towers = make([]*Tower, 0, len(data.Towers))
	for i, td := range data.Towers {
		tower, err := NewTower(i, td)
		if err != nil {
			return nil, err
		}
		st.Towers = append(st.Towers, tower)
	}

	st.Units = make([]*Unit, 0, len(data.Units))
	for i, ud := range data.Units {
		unit, err := NewUnit(i, ud, st.SimDT)
		if err != nil {
			return nil, err
		}
		st.Units = append(st.Units, unit)
	}
	st.pending = len(st.Units)

	return st, nil
}

// UpdateTick advances the simulation one step: spawn, move, shoot, collect.
func (s *State) UpdateTick() {
	// Activate units whose spawn tick has come, in master order.
	for _, u := range s.Units {
		if !u.Spawned() && u.SpawnTick <= s.Tick {
			u.Spawn()
			s.pending--
		}
	}

	// The active view for this tick, in master order. Towers target against
	// this same slice, so the lowest-index rule holds.
	s.active = s.active[:0]
	for _, u := range s.Units {
		if u.Active {
			s.active = append(s.active, u)
		}
	}

	// Units move first. A unit crossing its final waypoint this tick scores
	// before any tower fires at it.
	for _, u := range s.active {
		wasReached := u.ReachedBase
		u.Update()
		if u.ReachedBase && !wasReached {
			if u.Player == protocol.PlayerA {
				s.livesLostB++
			} else {
				s.livesLostA++
			}
		}
	}

	// Towers fire over the current active view.
	for _, t := range s.Towers {
		t.Update(s.active, s)
	}

	// Drop inactive units from the active view.
	live := s.active[:0]
	for _, u := range s.active {
		if u.Active {
			live = append(live, u)
		}
	}
	s.active = live

	if len(s.active) == 0 && s.pending == 0 && s.quietTick < 0 && s.Tick >= s.minTicks {
		s.quietTick = s.Tick
	}

	s.Tick++
}

// Complete reports whether the round is over: the minimum duration has
// passed and a full quiet tail has elapsed since the last unit went
// inactive. The tick ceiling is a safety net and cannot fire for any legal
// snapshot.
func (s *State) Complete() bool {
	if s.Tick >= s.maxTicks {
		return true
	}
	if s.quietTick < 0 {
		return false
	}
	return s.Tick-s.quietTick >= s.tailTicks
}

// Run advances the simulation until Complete.
func (s *State) Run() {
	for !s.Complete() {
		s.UpdateTick()
	}
}

func (s *State) recordKill(attacker protocol.PlayerID) {
	if attacker == protocol.PlayerA {
		s.killsA++
	} else {
		s.killsB++
	}
}

// Kills returns the number of enemy units destroyed by the player's towers.
func (s *State) Kills(p protocol.PlayerID) int {
	if p == protocol.PlayerA {
		return s.killsA
	}
	return s.killsB
}

// UnitsReachedBase counts enemy units that reached this player's base.
func (s *State) UnitsReachedBase(p protocol.PlayerID) int {
	n := 0
	for _, u := range s.Units {
		if u.ReachedBase && u.Player != p {
			n++
		}
	}
	return n
}

// LivesLost returns the lives the player lost this round.
func (s *State) LivesLost(p protocol.PlayerID) int {
	if p == protocol.PlayerA {
		return s.livesLostA
	}
	return s.livesLostB
}

// ActiveUnits returns the units active after the last tick, in master
// order. Clients use this to drive rendering.
func (s *State) ActiveUnits() []*Unit {
	return s.active
}
