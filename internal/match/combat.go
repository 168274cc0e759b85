package match

import (
	"fmt"

	"github.com/roundhold/roundhold/internal/balance"
	"github.com/roundhold/roundhold/internal/protocol"
	"github.com/roundhold/roundhold/internal/sim"
)

// RunCombat executes one round headlessly: fresh kernel state, tick to
// completion, aggregate the outcome. Pure with respect to its input and
// safe to run on any goroutine.
//
// Lives lost by a player are the opponent's units that reached their base;
// gold earned is the player's kill count times the per-kill bounty.
func RunCombat(data protocol.SimulationData) (protocol.RoundResult, error) {
	st, err := sim.NewState(data)
	if err != nil {
		return protocol.RoundResult{}, fmt.Errorf("combat setup: %w", err)
	}
	st.Run()

	return protocol.RoundResult{
		LivesLostA:  st.UnitsReachedBase(protocol.PlayerA),
		LivesLostB:  st.UnitsReachedBase(protocol.PlayerB),
		GoldEarnedA: st.Kills(protocol.PlayerA) * balance.GoldPerKill,
		GoldEarnedB: st.Kills(protocol.PlayerB) * balance.GoldPerKill,
	}, nil
}
