package state

import (
	"github.com/roundhold/roundhold/internal/balance"
	"github.com/roundhold/roundhold/internal/protocol"
)

// Placements stores accepted tower placements in acceptance order. Callers
// must have validated buildability and gold beforehand; this is the record
// of what stands on the board.
type Placements struct {
	placements []protocol.TowerPlacement
}

// NewPlacements creates an empty placement store.
func NewPlacements() *Placements {
	return &Placements{}
}

// Record appends an accepted placement and returns it.
func (s *Placements) Record(player protocol.PlayerID, towerType string, row, col, level int) protocol.TowerPlacement {
	p := protocol.TowerPlacement{
		Player:    player,
		TowerType: towerType,
		TileRow:   row,
		TileCol:   col,
		Level:     level,
	}
	s.placements = append(s.placements, p)
	return p
}

// SimTowers converts all placements to snapshot tower data, centered on
// their tiles, in acceptance order.
func (s *Placements) SimTowers() []protocol.SimTowerData {
	towers := make([]protocol.SimTowerData, 0, len(s.placements))
	for _, p := range s.placements {
		x, y := balance.TileCenter(p.TileRow, p.TileCol)
		towers = append(towers, protocol.SimTowerData{
			Player:    p.Player,
			TowerType: p.TowerType,
			PositionX: x,
			PositionY: y,
			Level:     p.Level,
		})
	}
	return towers
}

// All returns the placements in acceptance order.
func (s *Placements) All() []protocol.TowerPlacement {
	out := make([]protocol.TowerPlacement, len(s.placements))
	copy(out, s.placements)
	return out
}

// TilesFor returns the tiles occupied by the given player's towers.
func (s *Placements) TilesFor(player protocol.PlayerID) []balance.Tile {
	var tiles []balance.Tile
	for _, p := range s.placements {
		if p.Player == player {
			tiles = append(tiles, balance.Tile{Row: p.TileRow, Col: p.TileCol})
		}
	}
	return tiles
}
