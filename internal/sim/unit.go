// Package sim is the deterministic combat kernel run in lockstep by server
// and client. It is pure: no clocks, no I/O, no randomness. Given the same
// SimulationData, two independent processes produce identical tick-by-tick
// entity states.
package sim

import (
	"fmt"
	"math"

	"github.com/roundhold/roundhold/internal/balance"
	"github.com/roundhold/roundhold/internal/protocol"
)

// Unit is an attacking unit following a fixed route.
type Unit struct {
	ID       int
	Player   protocol.PlayerID
	UnitType string

	X, Y  float64
	HP    int
	MaxHP int
	Speed float64 // pixels per second

	Active      bool
	SpawnTick   int
	ReachedBase bool
	spawned     bool

	path        [][2]float64
	waypointIdx int
	simDT       float64
}

// NewUnit builds a unit from snapshot data. The unit starts inactive at the
// first waypoint of its route and activates at SpawnTick.
func NewUnit(id int, data protocol.SimUnitData, simDT float64) (*Unit, error) {
	stats, ok := balance.UnitTypes[data.UnitType]
	if !ok {
		return nil, fmt.Errorf("unit %d: %w: %q", id, protocol.ErrUnknownType, data.UnitType)
	}
	if !balance.ValidRoute(data.Route) {
		return nil, fmt.Errorf("unit %d: %w: %d", id, protocol.ErrInvalidRoute, data.Route)
	}
	if !data.Player.Valid() {
		return nil, fmt.Errorf("unit %d: invalid player %q", id, data.Player)
	}

	path := balance.RouteWaypoints(data.Route)
	return &Unit{
		ID:        id,
		Player:    data.Player,
		UnitType:  data.UnitType,
		X:         path[0][0],
		Y:         path[0][1],
		HP:        stats.Health,
		MaxHP:     stats.Health,
		Speed:     stats.SpeedPxPS,
		SpawnTick: data.SpawnTick,
		path:      path,
		simDT:     simDT,
	}, nil
}

// Update advances the unit one tick along its path. Overshoot past a
// waypoint carries into the next segment. Crossing the final waypoint sets
// ReachedBase and deactivates the unit.
func (u *Unit) Update() {
	if !u.Active {
		return
	}

	remaining := u.Speed * u.simDT
	for remaining > 0 {
		if u.waypointIdx >= len(u.path)-1 {
			u.ReachedBase = true
			u.Active = false
			return
		}

		next := u.path[u.waypointIdx+1]
		dx := next[0] - u.X
		dy := next[1] - u.Y
		dist := math.Sqrt(dx*dx + dy*dy)

		if remaining >= dist {
			u.X = next[0]
			u.Y = next[1]
			u.waypointIdx++
			remaining -= dist
		} else {
			u.X += dx / dist * remaining
			u.Y += dy / dist * remaining
			remaining = 0
		}
	}
}

// TakeDamage applies damage and deactivates the unit when HP reaches zero.
// Returns true if this hit killed the unit.
func (u *Unit) TakeDamage(damage int) bool {
	u.HP -= damage
	if u.HP <= 0 {
		u.HP = 0
		u.Active = false
		return true
	}
	return false
}

// Spawn activates the unit at the head of its route. Idempotent per round:
// the kernel calls it exactly once, at the unit's spawn tick.
func (u *Unit) Spawn() {
	if u.spawned {
		return
	}
	u.spawned = true
	u.Active = true
}

// Spawned reports whether the unit has entered the field.
func (u *Unit) Spawned() bool {
	return u.spawned
}

// DistanceTo returns the distance in pixels from the unit to a point.
func (u *Unit) DistanceTo(x, y float64) float64 {
	dx := x - u.X
	dy := y - u.Y
	return math.Sqrt(dx*dx + dy*dy)
}
