package state

import "github.com/roundhold/roundhold/internal/protocol"

// SnapshotBuilder freezes the current placements and wave queue into an
// immutable SimulationData. The returned value shares nothing with live
// state; both slices are fresh copies in deterministic order.
type SnapshotBuilder struct {
	placements *Placements
	waves      *WaveQueue
}

// NewSnapshotBuilder wires a builder to its sources.
func NewSnapshotBuilder(placements *Placements, waves *WaveQueue) *SnapshotBuilder {
	return &SnapshotBuilder{placements: placements, waves: waves}
}

// Build produces the snapshot for the next round at the given tick rate.
func (b *SnapshotBuilder) Build(tickRate int) protocol.SimulationData {
	return protocol.SimulationData{
		Towers:   b.placements.SimTowers(),
		Units:    b.waves.Units(),
		TickRate: tickRate,
	}
}
