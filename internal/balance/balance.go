// Package balance holds the game balance tables shared by server and client.
// Every value here is part of the lockstep contract: both sides must be
// compiled against identical numbers or their simulations diverge.
package balance

import "math"

// Round pacing.
const (
	// DefaultTickRate is the simulation tick rate in Hz.
	DefaultTickRate = 20

	// PrepSeconds is the length of the preparation window between rounds.
	PrepSeconds = 30

	// RoundAckTimeoutSeconds bounds how long the server waits for both
	// clients to acknowledge a finished round before moving on.
	RoundAckTimeoutSeconds = 30

	// MinSimSeconds is the minimum simulated duration of a combat round.
	MinSimSeconds = 5

	// TailSeconds is the quiet window required after the last unit goes
	// inactive before a round may end.
	TailSeconds = 3
)

// Player economy.
const (
	StartLives  = 20
	StartGold   = 50
	GoldPerKill = 1
)

// Map geometry.
const (
	// TileSizePx is the edge length of one map tile in pixels.
	TileSizePx = 40

	MapWidthTiles  = 22
	MapHeightTiles = 25
)

// RouteCount is the number of fixed unit routes per player.
const RouteCount = 5

// SimDT returns the fixed timestep in seconds for a given tick rate.
func SimDT(tickRate int) float64 {
	return 1.0 / float64(tickRate)
}

// SpawnDelayTicks is the tick gap between consecutive units queued on the
// same route. Half a second at the given tick rate, rounded to the nearest
// tick, never less than one tick.
func SpawnDelayTicks(tickRate int) int {
	d := int(math.Round(0.5 * float64(tickRate)))
	if d < 1 {
		d = 1
	}
	return d
}

// TileToPixel converts tile coordinates (row, col) to the pixel position of
// the tile's top-left corner.
func TileToPixel(row, col int) (x, y float64) {
	return float64(col * TileSizePx), float64(row * TileSizePx)
}

// TileCenter converts tile coordinates to the pixel position of the tile's
// center. Towers and route waypoints are anchored here.
func TileCenter(row, col int) (x, y float64) {
	x, y = TileToPixel(row, col)
	return x + TileSizePx/2.0, y + TileSizePx/2.0
}

// UnitStats describes one unit type.
type UnitStats struct {
	Cost      int
	Health    int
	SpeedPxPS float64 // pixels per second
}

// TowerStats describes one tower type.
type TowerStats struct {
	Cost          int
	Damage        int
	RangePx       float64
	CooldownTicks int
}

// UnitTypes is the unit stats table keyed by type name.
var UnitTypes = map[string]UnitStats{
	"standard": {
		Cost:      5,
		Health:    50,
		SpeedPxPS: 120.0,
	},
}

// TowerTypes is the tower stats table keyed by type name.
var TowerTypes = map[string]TowerStats{
	"standard": {
		Cost:          20,
		Damage:        25,
		RangePx:       120.0,
		CooldownTicks: 10,
	},
}
