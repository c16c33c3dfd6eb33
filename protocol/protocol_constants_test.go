package protocol

import "testing"

func TestMessageConstants(t *testing.T) {
	cases := map[string]string{
		MsgPlayerJoin:        "playerJoin",
		MsgPlayerMove:        "playerMove",
		MsgPlayerMoved:       "playerMoved",
		MsgFullGameState:     "fullGameState",
		MsgGameStateUpdate:   "gameStateUpdate",
		MsgHubContribution:   "hubContribution",
		MsgHubComplete:       "hubComplete",
		MsgNewHost:           "newHost",
		MsgPingPlaced:        "pingPlaced",
		MsgResourceHarvested: "resourceHarvested",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("constant = %q, want %q", got, want)
		}
	}
}

func TestTimingSanity(t *testing.T) {
	if ClientFrameHz <= 0 || SnapshotHz <= 0 {
		t.Fatalf("timing constants must be > 0")
	}
	if SnapshotHz > ClientFrameHz {
		t.Fatalf("snapshots (%d Hz) faster than frames (%d Hz)", SnapshotHz, ClientFrameHz)
	}
}
