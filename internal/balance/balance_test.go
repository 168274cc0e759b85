package balance

import "testing"

func TestSpawnDelayTicks(t *testing.T) {
	tests := []struct {
		tickRate int
		want     int
	}{
		{20, 10},
		{60, 30},
		{1, 1}, // floor at one tick
		{2, 1},
	}
	for _, tt := range tests {
		if got := SpawnDelayTicks(tt.tickRate); got != tt.want {
			t.Errorf("SpawnDelayTicks(%d) = %d, want %d", tt.tickRate, got, tt.want)
		}
	}
}

func TestTileCenter(t *testing.T) {
	x, y := TileCenter(5, 3)
	if x != 3*TileSizePx+TileSizePx/2.0 || y != 5*TileSizePx+TileSizePx/2.0 {
		t.Errorf("TileCenter(5,3) = (%v,%v)", x, y)
	}
}

func TestRoutesAreContiguous(t *testing.T) {
	for r, route := range Routes {
		if len(route) < 2 {
			t.Fatalf("route %d has %d tiles", r, len(route))
		}
		for i := 1; i < len(route); i++ {
			dr := route[i].Row - route[i-1].Row
			dc := route[i].Col - route[i-1].Col
			if dr < 0 {
				dr = -dr
			}
			if dc < 0 {
				dc = -dc
			}
			if dr+dc != 1 {
				t.Errorf("route %d: tiles %d and %d are not adjacent: %v -> %v",
					r, i-1, i, route[i-1], route[i])
			}
		}
	}
}

func TestRoutesInBounds(t *testing.T) {
	for r, route := range Routes {
		for _, tile := range route {
			if tile.Row < 0 || tile.Row >= MapHeightTiles || tile.Col < 0 || tile.Col >= MapWidthTiles {
				t.Errorf("route %d: tile %v out of bounds", r, tile)
			}
		}
	}
}

func TestStatsTables(t *testing.T) {
	if _, ok := UnitTypes["standard"]; !ok {
		t.Fatal("missing standard unit type")
	}
	if _, ok := TowerTypes["standard"]; !ok {
		t.Fatal("missing standard tower type")
	}
	for name, s := range UnitTypes {
		if s.Cost < 0 || s.Health <= 0 || s.SpeedPxPS <= 0 {
			t.Errorf("unit %q has invalid stats: %+v", name, s)
		}
	}
	for name, s := range TowerTypes {
		if s.Cost < 0 || s.Damage <= 0 || s.RangePx <= 0 || s.CooldownTicks < 0 {
			t.Errorf("tower %q has invalid stats: %+v", name, s)
		}
	}
}
