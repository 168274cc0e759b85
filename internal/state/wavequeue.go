package state

import (
	"fmt"

	"github.com/roundhold/roundhold/internal/balance"
	"github.com/roundhold/roundhold/internal/protocol"
)

// WaveQueue collects the units both players have bought for the next round
// and assigns their spawn ticks. Spawn ticks depend only on enqueue order,
// never on wall time, so the queue is deterministic by construction.
type WaveQueue struct {
	units []protocol.SimUnitData
}

// NewWaveQueue creates an empty queue.
func NewWaveQueue() *WaveQueue {
	return &WaveQueue{}
}

// PrepareUnits expands an order list into individual units and returns the
// total cost. State is not touched; the caller checks gold before Enqueue.
func (q *WaveQueue) PrepareUnits(player protocol.PlayerID, orders []protocol.UnitOrder) ([]protocol.SimUnitData, int, error) {
	var units []protocol.SimUnitData
	total := 0

	for _, o := range orders {
		stats, ok := balance.UnitTypes[o.UnitType]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", protocol.ErrUnknownType, o.UnitType)
		}
		if !balance.ValidRoute(o.Route) {
			return nil, 0, fmt.Errorf("%w: %d", protocol.ErrInvalidRoute, o.Route)
		}
		count := o.Count
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			units = append(units, protocol.SimUnitData{
				Player:   player,
				UnitType: o.UnitType,
				Route:    o.Route,
			})
			total += stats.Cost
		}
	}
	return units, total, nil
}

// Enqueue appends units and assigns each a spawn tick. Within one (player,
// route) group, spawn ticks step by the spawn delay: the first unit of an
// empty group spawns at tick 0, later units follow the group's current
// maximum.
func (q *WaveQueue) Enqueue(units []protocol.SimUnitData, tickRate int) {
	if len(units) == 0 {
		return
	}
	delay := balance.SpawnDelayTicks(tickRate)

	type group struct {
		player protocol.PlayerID
		route  int
	}
	last := make(map[group]int)
	for _, u := range q.units {
		g := group{u.Player, u.Route}
		if tick, ok := last[g]; !ok || u.SpawnTick > tick {
			last[g] = u.SpawnTick
		}
	}

	for i := range units {
		g := group{units[i].Player, units[i].Route}
		if tick, ok := last[g]; ok {
			units[i].SpawnTick = tick + delay
		} else {
			units[i].SpawnTick = 0
		}
		last[g] = units[i].SpawnTick
	}

	q.units = append(q.units, units...)
}

// Units returns a copy of the queued units in enqueue order.
func (q *WaveQueue) Units() []protocol.SimUnitData {
	out := make([]protocol.SimUnitData, len(q.units))
	copy(out, q.units)
	return out
}

// Len returns the number of queued units.
func (q *WaveQueue) Len() int {
	return len(q.units)
}

// Clear drops all queued units. Called after they are frozen into a round
// snapshot.
func (q *WaveQueue) Clear() {
	q.units = q.units[:0]
}
