// Package grid implements the per-player placement grid used to validate
// tower builds. The grid itself is not synchronized; the game state manager
// serializes all access.
package grid

import "github.com/roundhold/roundhold/internal/balance"

// CellState classifies one map tile.
type CellState int

const (
	// Empty terrain, open for building.
	Empty CellState = iota
	// Path cells carry a unit route and can never be built on.
	Path
	// Occupied cells hold exactly one tower.
	Occupied
)

func (s CellState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Path:
		return "path"
	case Occupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// PlacementGrid is one player's build map.
type PlacementGrid struct {
	rows  int
	cols  int
	cells [][]CellState
}

// New creates a grid of the given size with the given tiles marked as path.
func New(rows, cols int, paths []balance.Tile) *PlacementGrid {
	g := &PlacementGrid{
		rows:  rows,
		cols:  cols,
		cells: make([][]CellState, rows),
	}
	for r := range g.cells {
		g.cells[r] = make([]CellState, cols)
	}
	for _, t := range paths {
		if g.inBounds(t.Row, t.Col) {
			g.cells[t.Row][t.Col] = Path
		}
	}
	return g
}

// NewDefault creates a grid sized to the game map with all route tiles
// marked as path.
func NewDefault() *PlacementGrid {
	return New(balance.MapHeightTiles, balance.MapWidthTiles, balance.PathTiles())
}

func (g *PlacementGrid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// IsBuildable reports whether the cell is in bounds and empty.
func (g *PlacementGrid) IsBuildable(row, col int) bool {
	return g.inBounds(row, col) && g.cells[row][col] == Empty
}

// Cell returns the state of the cell; out-of-bounds cells read as Path.
func (g *PlacementGrid) Cell(row, col int) CellState {
	if !g.inBounds(row, col) {
		return Path
	}
	return g.cells[row][col]
}

// Occupy marks a buildable cell as occupied. Returns false if the cell was
// not buildable.
func (g *PlacementGrid) Occupy(row, col int) bool {
	if !g.IsBuildable(row, col) {
		return false
	}
	g.cells[row][col] = Occupied
	return true
}

// Free returns an occupied cell to empty. Path cells are immutable.
func (g *PlacementGrid) Free(row, col int) {
	if g.inBounds(row, col) && g.cells[row][col] == Occupied {
		g.cells[row][col] = Empty
	}
}

// OccupiedTiles returns all occupied cells in row-major order.
func (g *PlacementGrid) OccupiedTiles() []balance.Tile {
	var tiles []balance.Tile
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.cells[r][c] == Occupied {
				tiles = append(tiles, balance.Tile{Row: r, Col: c})
			}
		}
	}
	return tiles
}
