package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestEventRoundTrip(t *testing.T) {
	events := []MatchEvent{
		QueueUpdate{Message: "Waiting for another player..."},
		MatchFound{
			MatchID:  "m-1",
			Player:   PlayerA,
			Opponent: "bob",
			InitialState: StateSnapshot{
				PlayerA: PlayerState{Gold: 50, Lives: 20},
				PlayerB: PlayerState{Gold: 50, Lives: 20},
			},
		},
		RoundStart{
			Round: 3,
			Simulation: SimulationData{
				Towers: []SimTowerData{
					{Player: PlayerA, TowerType: "standard", PositionX: 140, PositionY: 220, Level: 1},
				},
				Units: []SimUnitData{
					{Player: PlayerB, UnitType: "standard", Route: 0, SpawnTick: 10},
				},
				TickRate: 20,
			},
		},
		RoundResultEvent{
			Round:  3,
			Result: RoundResult{LivesLostA: 1, GoldEarnedB: 2},
			NewState: StateSnapshot{
				PlayerA: PlayerState{Gold: 30, Lives: 19},
				PlayerB: PlayerState{Gold: 52, Lives: 20},
			},
		},
		TowerPlaced{Placement: TowerPlacement{Player: PlayerB, TowerType: "standard", TileRow: 5, TileCol: 3, Level: 1}},
		MatchOver{Winner: PlayerB},
		OpponentDisconnected{},
	}

	for _, ev := range events {
		data, err := EncodeEvent(ev)
		if err != nil {
			t.Fatalf("encode %T: %v", ev, err)
		}
		decoded, err := DecodeEvent(data)
		if err != nil {
			t.Fatalf("decode %T: %v", ev, err)
		}
		// Decode returns pointers for struct events; compare via string form.
		if fmt.Sprintf("%+v", deref(decoded)) != fmt.Sprintf("%+v", ev) {
			t.Errorf("round trip changed %T:\n got %+v\nwant %+v", ev, decoded, ev)
		}
	}
}

func deref(ev MatchEvent) MatchEvent {
	switch e := ev.(type) {
	case *QueueUpdate:
		return *e
	case *MatchFound:
		return *e
	case *RoundStart:
		return *e
	case *RoundResultEvent:
		return *e
	case *TowerPlaced:
		return *e
	case *MatchOver:
		return *e
	case *OpponentDisconnected:
		return *e
	default:
		return ev
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"type":"event","event":"nonsense"}`)); err == nil {
		t.Error("unknown event name must fail")
	}
	if _, err := DecodeEvent([]byte(`{"type":"response"}`)); err == nil {
		t.Error("non-event envelope must fail")
	}
	if _, err := DecodeEvent([]byte(`not json`)); err == nil {
		t.Error("malformed json must fail")
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrWrongPhase, "wrong_phase"},
		{fmt.Errorf("context: %w", ErrInsufficientGold), "insufficient_gold"},
		{ErrCellOccupied, "cell_occupied"},
		{ErrNotBuildable, "not_buildable"},
		{ErrUnknownType, "unknown_type"},
		{ErrInvalidRoute, "invalid_route"},
		{ErrNotInMatch, "not_in_match"},
		{errors.New("disk on fire"), "internal_error"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNewActionResponse(t *testing.T) {
	ok := NewActionResponse(MsgBuildTower, nil, 30)
	if !ok.Success || ok.Error != "" || ok.Gold != 30 || ok.Op != MsgBuildTower {
		t.Errorf("success response = %+v", ok)
	}

	rejected := NewActionResponse(MsgBuildTower, ErrInsufficientGold, 10)
	if rejected.Success || rejected.Error != "insufficient_gold" || rejected.Gold != 10 {
		t.Errorf("rejection response = %+v", rejected)
	}
}

func TestMirrorCol(t *testing.T) {
	if got := MirrorCol(0); got != 21 {
		t.Errorf("MirrorCol(0) = %d, want 21", got)
	}
	for col := 0; col < 22; col++ {
		if MirrorCol(MirrorCol(col)) != col {
			t.Errorf("mirror is not an involution at col %d", col)
		}
	}
}

func TestOpponent(t *testing.T) {
	if PlayerA.Opponent() != PlayerB || PlayerB.Opponent() != PlayerA {
		t.Error("opponent mapping broken")
	}
	if PlayerID("C").Valid() {
		t.Error("arbitrary ids must not validate")
	}
}
