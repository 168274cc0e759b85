package sim

import (
	"fmt"

	"github.com/roundhold/roundhold/internal/balance"
	"github.com/roundhold/roundhold/internal/protocol"
)

// Tower is a stationary defender. Towers never move or die within a round.
type Tower struct {
	ID        int
	Player    protocol.PlayerID
	TowerType string
	Level     int

	X, Y          float64
	Damage        int
	RangePx       float64
	CooldownTicks int
	Cooldown      int
}

// NewTower builds a tower from snapshot data.
func NewTower(id int, data protocol.SimTowerData) (*Tower, error) {
	stats, ok := balance.TowerTypes[data.TowerType]
	if !ok {
		return nil, fmt.Errorf("tower %d: %w: %q", id, protocol.ErrUnknownType, data.TowerType)
	}
	if !data.Player.Valid() {
		return nil, fmt.Errorf("tower %d: invalid player %q", id, data.Player)
	}
	return &Tower{
		ID:            id,
		Player:        data.Player,
		TowerType:     data.TowerType,
		Level:         data.Level,
		X:             data.PositionX,
		Y:             data.PositionY,
		Damage:        stats.Damage,
		RangePx:       stats.RangePx,
		CooldownTicks: stats.CooldownTicks,
	}, nil
}

// Update ticks the cooldown and fires at most once. Target selection is the
// lowest-id active enemy unit in range: ids are assigned in snapshot order,
// so the tie-break is insertion order and identical on every host.
func (t *Tower) Update(units []*Unit, st *State) {
	if t.Cooldown > 0 {
		t.Cooldown--
	}
	if t.Cooldown > 0 {
		return
	}

	target := t.findTarget(units)
	if target == nil {
		return
	}
	if target.TakeDamage(t.Damage) {
		st.recordKill(t.Player)
	}
	t.Cooldown = t.CooldownTicks
}

func (t *Tower) findTarget(units []*Unit) *Unit {
	for _, u := range units {
		if !u.Active || u.Player == t.Player {
			continue
		}
		if u.DistanceTo(t.X, t.Y) <= t.RangePx {
			return u
		}
	}
	return nil
}
