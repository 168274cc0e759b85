// Package protocol defines the data model exchanged between the Roundhold
// server and its clients: the simulation snapshot types, the round result,
// the MatchEvent union streamed to clients, and the wire envelopes.
//
// The in-memory shapes here are the lockstep contract. The JSON encoding is
// an implementation detail of the websocket transport.
package protocol

import "github.com/roundhold/roundhold/internal/balance"

// PlayerID identifies one of the two players in a match.
type PlayerID string

const (
	PlayerA PlayerID = "A"
	PlayerB PlayerID = "B"
)

// Valid reports whether p is one of the two match roles.
func (p PlayerID) Valid() bool {
	return p == PlayerA || p == PlayerB
}

// Opponent returns the other player.
func (p PlayerID) Opponent() PlayerID {
	if p == PlayerA {
		return PlayerB
	}
	return PlayerA
}

// SimTowerData is a tower frozen into a round snapshot. Positions are pixel
// coordinates of the tile center.
type SimTowerData struct {
	Player    PlayerID `json:"player_id"`
	TowerType string   `json:"tower_type"`
	PositionX float64  `json:"position_x"`
	PositionY float64  `json:"position_y"`
	Level     int      `json:"level"`
}

// SimUnitData is a queued unit frozen into a round snapshot.
type SimUnitData struct {
	Player    PlayerID `json:"player_id"`
	UnitType  string   `json:"unit_type"`
	Route     int      `json:"route"`
	SpawnTick int      `json:"spawn_tick"`
}

// SimulationData fully determines one combat round. The slice order of
// Towers and Units is part of the contract: the kernel assigns entity ids
// and breaks targeting ties by insertion order.
type SimulationData struct {
	Towers   []SimTowerData `json:"towers"`
	Units    []SimUnitData  `json:"units"`
	TickRate int            `json:"tick_rate"`
}

// RoundResult is the authoritative outcome of one combat round.
type RoundResult struct {
	LivesLostA  int `json:"lives_lost_player_a"`
	GoldEarnedA int `json:"gold_earned_player_a"`
	LivesLostB  int `json:"lives_lost_player_b"`
	GoldEarnedB int `json:"gold_earned_player_b"`
}

// LivesLost returns the lives lost by the given player.
func (r RoundResult) LivesLost(p PlayerID) int {
	if p == PlayerA {
		return r.LivesLostA
	}
	return r.LivesLostB
}

// GoldEarned returns the gold earned by the given player.
func (r RoundResult) GoldEarned(p PlayerID) int {
	if p == PlayerA {
		return r.GoldEarnedA
	}
	return r.GoldEarnedB
}

// PlayerState is one player's visible economy state.
type PlayerState struct {
	Gold  int `json:"gold"`
	Lives int `json:"lives"`
}

// StateSnapshot carries both players' economy state, sent with MatchFound
// and after every round so clients never drift from the server's totals.
type StateSnapshot struct {
	PlayerA PlayerState `json:"player_a"`
	PlayerB PlayerState `json:"player_b"`
}

// TowerPlacement is the wire form of an accepted tower placement.
type TowerPlacement struct {
	Player    PlayerID `json:"player_id"`
	TowerType string   `json:"tower_type"`
	TileRow   int      `json:"tile_row"`
	TileCol   int      `json:"tile_col"`
	Level     int      `json:"level"`
}

// UnitOrder is one entry of a SendUnits request: "count units of this type
// on this route". Spawn ticks are always assigned by the server.
type UnitOrder struct {
	UnitType string `json:"unit_type"`
	Route    int    `json:"route"`
	Count    int    `json:"count"`
}

// MirrorCol maps a column between the local frame and player B's mirrored
// display frame. The server stores local-frame coordinates only; clients
// rendering player B apply this at the boundary.
func MirrorCol(col int) int {
	return balance.MapWidthTiles - 1 - col
}
