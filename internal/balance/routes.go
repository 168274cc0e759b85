package balance

// Tile is a (row, col) map coordinate.
type Tile struct {
	Row int
	Col int
}

// Routes are the five fixed unit paths, as ordered tile coordinates from the
// spawn edge to the base. Both players use the same routes in their local
// frame; any mirroring for display is the client's concern.
//
// Units enter at Routes[r][0] and reach the base when they cross the final
// waypoint.
var Routes = [RouteCount][]Tile{
	{
		// Route 0: straight run along the top lane, then down the left edge.
		{1, 21}, {1, 20}, {1, 19}, {1, 18}, {1, 17}, {1, 16}, {1, 15}, {1, 14}, {1, 13}, {1, 12},
		{1, 11}, {1, 10}, {1, 9}, {1, 8}, {1, 7}, {1, 6}, {1, 5}, {1, 4}, {1, 3},
		{1, 2}, {2, 2}, {3, 2}, {4, 2}, {5, 2}, {6, 2}, {7, 2}, {8, 2}, {9, 2}, {10, 2},
	},
	{
		// Route 1: mid entry that climbs to the top lane before joining route 0's tail.
		{7, 21}, {7, 20}, {7, 19}, {7, 18}, {7, 17}, {7, 16}, {7, 15}, {7, 14},
		{7, 13}, {6, 13}, {5, 13}, {4, 13}, {3, 13}, {2, 13}, {1, 13},
		{1, 12}, {1, 11}, {1, 10}, {1, 9}, {1, 8}, {1, 7}, {1, 6}, {1, 5}, {1, 4}, {1, 3},
		{1, 2}, {2, 2}, {3, 2}, {4, 2}, {5, 2}, {6, 2}, {7, 2}, {8, 2}, {9, 2}, {10, 2},
	},
	{
		// Route 2: winding center route.
		{11, 21}, {11, 20}, {11, 19}, {11, 18}, {11, 17}, {11, 16},
		{10, 16}, {10, 15}, {10, 14}, {10, 13}, {11, 13}, {12, 13}, {13, 13},
		{13, 12}, {13, 11}, {13, 10}, {13, 9}, {12, 9},
		{11, 9}, {11, 8}, {11, 7}, {11, 6}, {11, 5}, {12, 5}, {13, 5}, {13, 4}, {13, 3}, {13, 2}, {12, 2},
	},
	{
		// Route 3: lower lane that drops to the bottom edge, then climbs the left side.
		{16, 21}, {16, 20}, {16, 19}, {16, 18}, {16, 17}, {16, 16}, {16, 15}, {16, 14}, {16, 13}, {16, 12}, {16, 11}, {16, 10}, {16, 9},
		{16, 8}, {17, 8}, {18, 8}, {19, 8}, {20, 8}, {21, 8}, {22, 8},
		{23, 8}, {23, 7}, {23, 6}, {23, 5}, {23, 4}, {23, 3},
		{23, 2}, {22, 2}, {21, 2}, {20, 2}, {19, 2}, {18, 2}, {17, 2}, {16, 2}, {15, 2}, {14, 2}, {13, 2}, {12, 2},
	},
	{
		// Route 4: full run along the bottom lane.
		{23, 21}, {23, 20}, {23, 19}, {23, 18}, {23, 17}, {23, 16}, {23, 15}, {23, 14}, {23, 13}, {23, 12}, {23, 11}, {23, 10}, {23, 9},
		{23, 8}, {23, 7}, {23, 6}, {23, 5}, {23, 4}, {23, 3},
		{23, 2}, {22, 2}, {21, 2}, {20, 2}, {19, 2}, {18, 2}, {17, 2}, {16, 2}, {15, 2}, {14, 2}, {13, 2}, {12, 2},
	},
}

// ValidRoute reports whether r is a usable route index.
func ValidRoute(r int) bool {
	return r >= 0 && r < RouteCount
}

// RouteWaypoints converts a route's tiles to pixel waypoints at tile centers.
func RouteWaypoints(route int) [][2]float64 {
	tiles := Routes[route]
	points := make([][2]float64, len(tiles))
	for i, t := range tiles {
		x, y := TileCenter(t.Row, t.Col)
		points[i] = [2]float64{x, y}
	}
	return points
}

// PathTiles returns the union of all route tiles. The placement grid marks
// these cells as path so towers can never sit on a unit lane.
func PathTiles() []Tile {
	seen := make(map[Tile]bool)
	var tiles []Tile
	for _, route := range Routes {
		for _, t := range route {
			if !seen[t] {
				seen[t] = true
				tiles = append(tiles, t)
			}
		}
	}
	return tiles
}
