package match

import (
	"errors"
	"testing"
	"time"

	"github.com/roundhold/roundhold/internal/protocol"
)

func testCoordinator(prep time.Duration) *Coordinator {
	return NewCoordinator(CoordinatorConfig{
		PrepDuration: prep,
		AckTimeout:   time.Second,
		TickRate:     20,
	}, testLogger())
}

func TestQueuePairsTwoClients(t *testing.T) {
	c := testCoordinator(time.Hour)
	defer c.Shutdown()

	obA, err := c.Queue("c1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if c.InMatch("c1") {
		t.Fatal("single queued client cannot be in a match")
	}

	obB, err := c.Queue("c2", "bob")
	if err != nil {
		t.Fatal(err)
	}

	readerA := &eventReader{ob: obA}
	readerB := &eventReader{ob: obB}

	foundA, ok := readerA.next(t, 5*time.Second).(protocol.MatchFound)
	if !ok {
		t.Fatal("first event for A is not MatchFound")
	}
	foundB, ok := readerB.next(t, 5*time.Second).(protocol.MatchFound)
	if !ok {
		t.Fatal("first event for B is not MatchFound")
	}

	if foundA.Player != protocol.PlayerA || foundB.Player != protocol.PlayerB {
		t.Errorf("roles = %q/%q, want A/B", foundA.Player, foundB.Player)
	}
	if foundA.Opponent != "bob" || foundB.Opponent != "alice" {
		t.Errorf("opponents = %q/%q", foundA.Opponent, foundB.Opponent)
	}
	if foundA.MatchID == "" || foundA.MatchID != foundB.MatchID {
		t.Errorf("match ids %q vs %q", foundA.MatchID, foundB.MatchID)
	}
	if !c.InMatch("c1") || !c.InMatch("c2") {
		t.Error("both clients should be in the match")
	}
	if c.ActiveMatches() != 1 {
		t.Errorf("active matches = %d, want 1", c.ActiveMatches())
	}
}

func TestRequestsWithoutMatchAreRejected(t *testing.T) {
	c := testCoordinator(time.Hour)
	defer c.Shutdown()

	_, err := c.BuildTower("ghost", protocol.BuildTowerRequest{TowerType: "standard", TileRow: 5, TileCol: 3})
	if !errors.Is(err, protocol.ErrNotInMatch) {
		t.Errorf("build error = %v, want ErrNotInMatch", err)
	}
	if err := c.SendUnits("ghost", protocol.SendUnitsRequest{}); !errors.Is(err, protocol.ErrNotInMatch) {
		t.Errorf("send error = %v, want ErrNotInMatch", err)
	}
	if err := c.RoundAck("ghost", protocol.RoundAckRequest{Round: 1}); !errors.Is(err, protocol.ErrNotInMatch) {
		t.Errorf("ack error = %v, want ErrNotInMatch", err)
	}
}

func TestBuildTowerBroadcastsToBothClients(t *testing.T) {
	c := testCoordinator(time.Hour) // long prep: the window stays open
	defer c.Shutdown()

	obA, _ := c.Queue("c1", "alice")
	obB, _ := c.Queue("c2", "bob")
	readerA := &eventReader{ob: obA}
	readerB := &eventReader{ob: obB}
	readerA.next(t, 5*time.Second) // MatchFound
	readerB.next(t, 5*time.Second)

	// Wait for the preparation window to open.
	var placement protocol.TowerPlacement
	deadline := time.Now().Add(5 * time.Second)
	for {
		var err error
		placement, err = c.BuildTower("c1", protocol.BuildTowerRequest{
			Player: protocol.PlayerA, TowerType: "standard", TileRow: 5, TileCol: 3,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, protocol.ErrWrongPhase) || time.Now().After(deadline) {
			t.Fatalf("build failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	for _, r := range []*eventReader{readerA, readerB} {
		ev := r.next(t, 5*time.Second)
		placed, ok := ev.(protocol.TowerPlaced)
		if !ok {
			t.Fatalf("got %#v, want TowerPlaced", ev)
		}
		if placed.Placement != placement {
			t.Errorf("broadcast placement = %+v, want %+v", placed.Placement, placement)
		}
	}
}

func TestRoleSpoofingIsRejected(t *testing.T) {
	c := testCoordinator(time.Hour)
	defer c.Shutdown()

	c.Queue("c1", "alice")
	c.Queue("c2", "bob")

	// c2 is player B; claiming to act as A must fail.
	_, err := c.BuildTower("c2", protocol.BuildTowerRequest{
		Player: protocol.PlayerA, TowerType: "standard", TileRow: 5, TileCol: 3,
	})
	if !errors.Is(err, protocol.ErrNotInMatch) {
		t.Errorf("spoofed build error = %v, want ErrNotInMatch", err)
	}
}

func TestDisconnectNotifiesPartnerAndTearsDown(t *testing.T) {
	c := testCoordinator(time.Hour)
	defer c.Shutdown()

	c.Queue("c1", "alice")
	obB, _ := c.Queue("c2", "bob")
	readerB := &eventReader{ob: obB}
	readerB.next(t, 5*time.Second) // MatchFound

	c.Disconnect("c1")

	ev := readerB.next(t, 5*time.Second)
	if _, ok := ev.(protocol.OpponentDisconnected); !ok {
		t.Fatalf("partner got %#v, want OpponentDisconnected", ev)
	}

	deadline := time.Now().Add(5 * time.Second)
	for c.ActiveMatches() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("match was not torn down")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if c.InMatch("c1") || c.InMatch("c2") {
		t.Error("clients still mapped to the dead match")
	}
}

func TestDisconnectFromWaitingQueue(t *testing.T) {
	c := testCoordinator(time.Hour)
	defer c.Shutdown()

	ob, _ := c.Queue("c1", "alice")
	c.Disconnect("c1")
	if !ob.Closed() {
		t.Error("waiting client's outbox should close on disconnect")
	}

	// The slot is free again: a fresh pair still matches.
	c.Queue("c2", "bob")
	obC, _ := c.Queue("c3", "carol")
	reader := &eventReader{ob: obC}
	if _, ok := reader.next(t, 5*time.Second).(protocol.MatchFound); !ok {
		t.Error("queue did not recover after a waiting client left")
	}
}

type captureSaver struct {
	records chan MatchRecord
}

func (s *captureSaver) SaveMatchResult(r MatchRecord) error {
	s.records <- r
	return nil
}

func TestMatchResultIsSaved(t *testing.T) {
	c := testCoordinator(time.Hour)
	defer c.Shutdown()
	saver := &captureSaver{records: make(chan MatchRecord, 1)}
	c.SetResultSaver(saver)

	c.Queue("c1", "alice")
	c.Queue("c2", "bob")
	c.Disconnect("c2")

	select {
	case r := <-saver.records:
		if r.PlayerA != "alice" || r.PlayerB != "bob" {
			t.Errorf("record = %+v", r)
		}
		if r.EndReason != "stopped" {
			t.Errorf("end reason = %q, want stopped", r.EndReason)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("match result was never saved")
	}
}
