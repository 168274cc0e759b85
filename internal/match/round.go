package match

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/roundhold/roundhold/internal/protocol"
	"github.com/roundhold/roundhold/internal/state"
)

// Phase is the round state machine's current position.
type Phase int

const (
	PhasePreparation Phase = iota
	PhaseRoundStart
	PhaseCombat
	PhaseAwaitAck
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhasePreparation:
		return "preparation"
	case PhaseRoundStart:
		return "round_start"
	case PhaseCombat:
		return "combat"
	case PhaseAwaitAck:
		return "await_ack"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// prepSlice is the granularity of the cancellable preparation sleep.
const prepSlice = 100 * time.Millisecond

// Outcome describes how a match ended.
type Outcome struct {
	Winner protocol.PlayerID // empty on draw or abnormal end
	Rounds int
	Reason string // "completed", "stopped", "unhealthy", "combat_error"
}

// RoundManager drives one match's phase loop:
//
//	Preparation -> RoundStart -> Combat -> AwaitAck -> Preparation ...
//
// with a terminal Ended state once a player is out of lives or the match is
// torn down. It owns the phase lock only; the game state has its own mutex
// and the phase lock is never held across sleeps or state calls.
type RoundManager struct {
	stateMgr *state.Manager
	outboxes map[protocol.PlayerID]*Outbox
	acks     *ackGate
	logger   *log.Logger

	prepDuration time.Duration
	ackTimeout   time.Duration

	phaseMu sync.Mutex
	phase   Phase
	round   int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// newRoundManager wires a round loop to its match's state and outboxes.
func newRoundManager(
	stateMgr *state.Manager,
	outboxes map[protocol.PlayerID]*Outbox,
	acks *ackGate,
	prepDuration, ackTimeout time.Duration,
	logger *log.Logger,
) *RoundManager {
	return &RoundManager{
		stateMgr:     stateMgr,
		outboxes:     outboxes,
		acks:         acks,
		logger:       logger,
		prepDuration: prepDuration,
		ackTimeout:   ackTimeout,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Phase returns the current phase.
func (rm *RoundManager) Phase() Phase {
	rm.phaseMu.Lock()
	defer rm.phaseMu.Unlock()
	return rm.phase
}

// Round returns the current 1-based round number.
func (rm *RoundManager) Round() int {
	rm.phaseMu.Lock()
	defer rm.phaseMu.Unlock()
	return rm.round
}

// Ack records a player's acknowledgement of the given round.
func (rm *RoundManager) Ack(player protocol.PlayerID, round int) {
	rm.acks.Ack(player, round)
}

// Stop requests a clean shutdown of the loop. Safe to call repeatedly and
// from any goroutine; the preparation sleep and ack wait notice promptly.
func (rm *RoundManager) Stop() {
	rm.stopOnce.Do(func() { close(rm.stop) })
}

// Done closes when the loop has exited.
func (rm *RoundManager) Done() <-chan struct{} {
	return rm.done
}

func (rm *RoundManager) setPhase(p Phase) {
	rm.phaseMu.Lock()
	rm.phase = p
	rm.phaseMu.Unlock()
}

// Run executes the phase loop until the match ends, then reports the
// outcome. Run the loop on its own goroutine, one per match.
func (rm *RoundManager) Run(onEnd func(Outcome)) {
	defer close(rm.done)

	end := func(o Outcome) {
		rm.stateMgr.SetAccepting(false)
		rm.setPhase(PhaseEnded)
		rm.logger.Info("match ended", "reason", o.Reason, "winner", string(o.Winner), "rounds", o.Rounds)
		if onEnd != nil {
			onEnd(o)
		}
	}

	for {
		rm.phaseMu.Lock()
		rm.round++
		round := rm.round
		rm.phase = PhasePreparation
		rm.phaseMu.Unlock()

		rm.stateMgr.SetAccepting(true)
		rm.logger.Info("preparation started", "round", round)
		if !rm.sleepPrep() {
			end(Outcome{Rounds: round - 1, Reason: "stopped"})
			return
		}
		rm.stateMgr.SetAccepting(false)

		rm.setPhase(PhaseRoundStart)
		snapshot := rm.stateMgr.Snapshot()
		rm.logger.Info("round starting", "round", round,
			"towers", len(snapshot.Towers), "units", len(snapshot.Units))
		if !rm.broadcast(protocol.RoundStart{Round: round, Simulation: snapshot}) {
			end(Outcome{Rounds: round - 1, Reason: "unhealthy"})
			return
		}

		rm.setPhase(PhaseCombat)
		result, err := rm.runCombatWorker(snapshot)
		if err != nil {
			rm.logger.Error("combat failed", "round", round, "error", err)
			end(Outcome{Rounds: round, Reason: "combat_error"})
			return
		}
		select {
		case <-rm.stop:
			end(Outcome{Rounds: round, Reason: "stopped"})
			return
		default:
		}

		rm.stateMgr.ApplyRoundResult(result)
		rm.stateMgr.ClearWaveData()
		winner, over := rm.stateMgr.MatchOver()

		rm.setPhase(PhaseAwaitAck)
		rm.acks.Reset(round)
		ok := rm.broadcast(protocol.RoundResultEvent{
			Round:    round,
			Result:   result,
			NewState: rm.stateMgr.StateSnapshot(),
		})
		if !ok {
			end(Outcome{Rounds: round, Reason: "unhealthy"})
			return
		}

		if over {
			rm.broadcast(protocol.MatchOver{Winner: winner})
			end(Outcome{Winner: winner, Rounds: round, Reason: "completed"})
			return
		}

		if !rm.acks.Wait(rm.ackTimeout, rm.stop) {
			select {
			case <-rm.stop:
				end(Outcome{Rounds: round, Reason: "stopped"})
				return
			default:
				rm.logger.Warn("round ack timeout, advancing", "round", round)
			}
		}
	}
}

// sleepPrep sleeps the preparation window in small slices so Stop can
// interrupt it. Returns false if stopped.
func (rm *RoundManager) sleepPrep() bool {
	deadline := time.Now().Add(rm.prepDuration)
	ticker := time.NewTicker(prepSlice)
	defer ticker.Stop()

	for {
		select {
		case <-rm.stop:
			return false
		case now := <-ticker.C:
			if !now.Before(deadline) {
				return true
			}
		}
	}
}

// runCombatWorker launches the combat simulation on a throwaway goroutine
// and blocks the round loop on its completion.
func (rm *RoundManager) runCombatWorker(snapshot protocol.SimulationData) (protocol.RoundResult, error) {
	type combatDone struct {
		result protocol.RoundResult
		err    error
	}
	ch := make(chan combatDone, 1)
	go func() {
		result, err := RunCombat(snapshot)
		ch <- combatDone{result, err}
	}()
	out := <-ch
	return out.result, out.err
}

// broadcast appends the event to both outboxes. Returns false if either
// outbox is dead, which ends the match.
func (rm *RoundManager) broadcast(ev protocol.MatchEvent) bool {
	ok := true
	for player, ob := range rm.outboxes {
		if !ob.Append(ev) {
			rm.logger.Warn("outbox dead, dropping event", "player", string(player))
			ok = false
		}
	}
	return ok
}
