package client

import (
	"testing"

	"cosmic/game"
)

func TestSentRingMatchKeepsLatestEcho(t *testing.T) {
	var r sentRing
	for i := 1; i <= 5; i++ {
		r.push(game.Vec2{X: float64(i * 10)})
	}
	if !r.match(game.Vec2{X: 31}, 5) {
		t.Fatalf("no match near x=30")
	}
	if len(r.positions) != 3 || r.positions[0].X != 30 {
		t.Fatalf("positions after match = %v", r.positions)
	}
	// the periodic snapshot repeats the last accepted position
	if !r.match(game.Vec2{X: 30}, 5) {
		t.Fatalf("repeated echo no longer matches")
	}
	if r.match(game.Vec2{X: 10}, 5) {
		t.Fatalf("dropped position still matches")
	}
}

func TestSentRingIsBounded(t *testing.T) {
	var r sentRing
	for i := 0; i < game.SentHistorySize*2; i++ {
		r.push(game.Vec2{X: float64(i)})
	}
	if len(r.positions) != game.SentHistorySize {
		t.Fatalf("len = %d, want %d", len(r.positions), game.SentHistorySize)
	}
	if r.positions[0].X != float64(game.SentHistorySize) {
		t.Fatalf("oldest kept = %v", r.positions[0])
	}
	r.reset()
	if r.match(game.Vec2{X: float64(game.SentHistorySize*2 - 1)}, 1) {
		t.Fatalf("match after reset")
	}
}
