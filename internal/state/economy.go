// Package state holds the authoritative per-match game state: economy,
// placement grids, tower placements and the pending wave queue, all behind
// the single mutex of the Manager.
package state

import (
	"fmt"

	"github.com/roundhold/roundhold/internal/balance"
	"github.com/roundhold/roundhold/internal/protocol"
)

// Economy tracks gold and lives for both players. Not synchronized; the
// Manager serializes access.
type Economy struct {
	gold  map[protocol.PlayerID]int
	lives map[protocol.PlayerID]int
}

// NewEconomy creates both players' counters at their starting values.
func NewEconomy(startGold, startLives int) *Economy {
	return &Economy{
		gold: map[protocol.PlayerID]int{
			protocol.PlayerA: startGold,
			protocol.PlayerB: startGold,
		},
		lives: map[protocol.PlayerID]int{
			protocol.PlayerA: startLives,
			protocol.PlayerB: startLives,
		},
	}
}

// Gold returns the player's current gold.
func (e *Economy) Gold(p protocol.PlayerID) int {
	return e.gold[p]
}

// Lives returns the player's current lives.
func (e *Economy) Lives(p protocol.PlayerID) int {
	return e.lives[p]
}

// SpendGold deducts amount or fails with ErrInsufficientGold, leaving the
// balance untouched.
func (e *Economy) SpendGold(p protocol.PlayerID, amount int) error {
	if amount < 0 {
		return fmt.Errorf("spend amount must not be negative: %d", amount)
	}
	if e.gold[p] < amount {
		return fmt.Errorf("%w: have %d, need %d", protocol.ErrInsufficientGold, e.gold[p], amount)
	}
	e.gold[p] -= amount
	return nil
}

// AddGold credits amount to the player.
func (e *Economy) AddGold(p protocol.PlayerID, amount int) {
	if amount > 0 {
		e.gold[p] += amount
	}
}

// LoseLives deducts lives, saturating at zero.
func (e *Economy) LoseLives(p protocol.PlayerID, amount int) {
	if amount <= 0 {
		return
	}
	e.lives[p] -= amount
	if e.lives[p] < 0 {
		e.lives[p] = 0
	}
}

// ApplyRoundResult is the single entry point for end-of-round accounting:
// both players' lives losses and gold rewards in one step.
func (e *Economy) ApplyRoundResult(r protocol.RoundResult) {
	e.LoseLives(protocol.PlayerA, r.LivesLostA)
	e.LoseLives(protocol.PlayerB, r.LivesLostB)
	e.AddGold(protocol.PlayerA, r.GoldEarnedA)
	e.AddGold(protocol.PlayerB, r.GoldEarnedB)
}

// Snapshot returns both players' visible state.
func (e *Economy) Snapshot() protocol.StateSnapshot {
	return protocol.StateSnapshot{
		PlayerA: protocol.PlayerState{Gold: e.gold[protocol.PlayerA], Lives: e.lives[protocol.PlayerA]},
		PlayerB: protocol.PlayerState{Gold: e.gold[protocol.PlayerB], Lives: e.lives[protocol.PlayerB]},
	}
}

// defaultEconomy builds an economy at the balance table's starting values.
func defaultEconomy() *Economy {
	return NewEconomy(balance.StartGold, balance.StartLives)
}
