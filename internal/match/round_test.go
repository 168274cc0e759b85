package match

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/roundhold/roundhold/internal/protocol"
	"github.com/roundhold/roundhold/internal/state"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// eventReader pulls events off an outbox the way a client stream would.
type eventReader struct {
	ob  *Outbox
	buf []protocol.MatchEvent
}

func (r *eventReader) next(t *testing.T, timeout time.Duration) protocol.MatchEvent {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if len(r.buf) == 0 {
			r.buf = r.ob.Drain()
		}
		if len(r.buf) > 0 {
			ev := r.buf[0]
			r.buf = r.buf[1:]
			return ev
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatal("timed out waiting for event")
		}
		select {
		case <-r.ob.Ready():
		case <-time.After(remaining):
			t.Fatal("timed out waiting for event")
		}
	}
}

type roundHarness struct {
	stateMgr *state.Manager
	rm       *RoundManager
	readerA  *eventReader
	readerB  *eventReader
	outcome  chan Outcome
}

func newRoundHarness(prep, ackTimeout time.Duration) *roundHarness {
	stateMgr := state.NewManager()
	obA, obB := NewOutbox(), NewOutbox()
	outboxes := map[protocol.PlayerID]*Outbox{
		protocol.PlayerA: obA,
		protocol.PlayerB: obB,
	}
	rm := newRoundManager(stateMgr, outboxes, newAckGate(), prep, ackTimeout, testLogger())
	return &roundHarness{
		stateMgr: stateMgr,
		rm:       rm,
		readerA:  &eventReader{ob: obA},
		readerB:  &eventReader{ob: obB},
		outcome:  make(chan Outcome, 1),
	}
}

func (h *roundHarness) start() {
	go h.rm.Run(func(o Outcome) { h.outcome <- o })
}

func (h *roundHarness) stopAndWait(t *testing.T) {
	t.Helper()
	h.rm.Stop()
	select {
	case <-h.rm.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("round loop did not stop")
	}
}

func TestRoundLoopBroadcastsStartAndResult(t *testing.T) {
	h := newRoundHarness(50*time.Millisecond, 5*time.Second)
	h.start()
	defer h.stopAndWait(t)

	for _, r := range []*eventReader{h.readerA, h.readerB} {
		ev := r.next(t, 5*time.Second)
		start, ok := ev.(protocol.RoundStart)
		if !ok {
			t.Fatalf("first event = %#v, want RoundStart", ev)
		}
		if start.Round != 1 || len(start.Simulation.Towers) != 0 || len(start.Simulation.Units) != 0 {
			t.Errorf("round start = %+v, want empty round 1", start)
		}

		ev = r.next(t, 5*time.Second)
		result, ok := ev.(protocol.RoundResultEvent)
		if !ok {
			t.Fatalf("second event = %#v, want RoundResultEvent", ev)
		}
		if result.Result != (protocol.RoundResult{}) {
			t.Errorf("empty round result = %+v, want zeros", result.Result)
		}
	}
}

func TestRoundLoopAdvancesOnBothAcks(t *testing.T) {
	h := newRoundHarness(50*time.Millisecond, time.Hour)
	h.start()
	defer h.stopAndWait(t)

	// Consume round 1 events, then ack from both sides.
	h.readerA.next(t, 5*time.Second) // RoundStart
	h.readerA.next(t, 5*time.Second) // RoundResult
	h.rm.Ack(protocol.PlayerA, 1)
	h.rm.Ack(protocol.PlayerA, 1) // duplicate collapses
	h.rm.Ack(protocol.PlayerB, 1)

	ev := h.readerA.next(t, 5*time.Second)
	start, ok := ev.(protocol.RoundStart)
	if !ok || start.Round != 2 {
		t.Fatalf("after both acks got %#v, want RoundStart round 2", ev)
	}
}

func TestRoundLoopAdvancesOnAckTimeout(t *testing.T) {
	h := newRoundHarness(50*time.Millisecond, 200*time.Millisecond)
	h.start()
	defer h.stopAndWait(t)

	// Player B never acks; the non-acking side still receives the result.
	h.readerB.next(t, 5*time.Second) // RoundStart
	ev := h.readerB.next(t, 5*time.Second)
	if _, ok := ev.(protocol.RoundResultEvent); !ok {
		t.Fatalf("non-acking client got %#v, want RoundResultEvent", ev)
	}
	h.rm.Ack(protocol.PlayerA, 1)

	ev = h.readerB.next(t, 5*time.Second)
	start, ok := ev.(protocol.RoundStart)
	if !ok || start.Round != 2 {
		t.Fatalf("after timeout got %#v, want RoundStart round 2", ev)
	}
}

func TestRoundLoopGatesMutationsOnPreparation(t *testing.T) {
	h := newRoundHarness(100*time.Millisecond, time.Hour)

	// Before the loop opens the first preparation window the manager
	// rejects everything with a phase error.
	if _, err := h.stateMgr.BuildTower(protocol.PlayerA, "standard", 5, 3, 1); err == nil {
		t.Fatal("build before preparation must fail")
	}

	h.start()
	defer h.stopAndWait(t)

	// During preparation the same request succeeds.
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := h.stateMgr.BuildTower(protocol.PlayerA, "standard", 5, 3, 1)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("build never accepted during preparation")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The round 1 snapshot carries the accepted tower.
	ev := h.readerA.next(t, 5*time.Second)
	start, ok := ev.(protocol.RoundStart)
	if !ok {
		t.Fatalf("got %#v, want RoundStart", ev)
	}
	if len(start.Simulation.Towers) != 1 {
		t.Errorf("snapshot has %d towers, want 1", len(start.Simulation.Towers))
	}
}

func TestRoundLoopEndsWhenLivesRunOut(t *testing.T) {
	h := newRoundHarness(50*time.Millisecond, time.Hour)
	// Take all of player B's lives before the loop starts; the first round's
	// end-of-round check reports the elimination.
	h.stateMgr.ApplyRoundResult(protocol.RoundResult{LivesLostB: 20})
	h.start()

	h.readerA.next(t, 5*time.Second) // RoundStart
	h.readerA.next(t, 5*time.Second) // RoundResult

	ev := h.readerA.next(t, 5*time.Second)
	over, ok := ev.(protocol.MatchOver)
	if !ok {
		t.Fatalf("got %#v, want MatchOver", ev)
	}
	if over.Winner != protocol.PlayerA {
		t.Errorf("winner = %q, want A", over.Winner)
	}

	select {
	case o := <-h.outcome:
		if o.Reason != "completed" || o.Winner != protocol.PlayerA {
			t.Errorf("outcome = %+v", o)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("round loop never reported an outcome")
	}
	if h.rm.Phase() != PhaseEnded {
		t.Errorf("phase = %v, want ended", h.rm.Phase())
	}
}

func TestStopInterruptsPreparation(t *testing.T) {
	h := newRoundHarness(time.Hour, time.Hour)
	h.start()

	time.Sleep(50 * time.Millisecond)
	h.rm.Stop()

	select {
	case <-h.rm.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not interrupt the preparation sleep")
	}
	select {
	case o := <-h.outcome:
		if o.Reason != "stopped" {
			t.Errorf("outcome reason = %q, want stopped", o.Reason)
		}
	default:
		t.Fatal("no outcome reported")
	}
}
