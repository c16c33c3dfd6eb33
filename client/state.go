package client

import (
	"time"

	"cosmic/game"
)

// Self is the locally controlled rocket. Position is predicted; the server
// only ever nudges it through reconciliation.
type Self struct {
	ID            string
	Name          string
	Rocket        game.RocketType
	IsHost        bool
	Position      game.Vec2
	Target        game.Vec2
	Velocity      game.Vec2
	Direction     float64
	Moving        bool
	DockedAt      string // star the rocket last stopped against
	Inventory     map[game.ResourceType]int
	Contributions map[game.ResourceType]int
}

// Remote is another player as last reported by the server. Position is what
// gets drawn and chases Target every frame.
type Remote struct {
	ID        string
	Name      string
	Rocket    game.RocketType
	IsHost    bool
	Position  game.Vec2
	Target    game.Vec2
	Velocity  game.Vec2
	Direction float64
	IsMoving  bool
}

type Ping struct {
	ID       string
	Pos      game.Vec2
	Message  string
	Sender   string
	SenderID string
	Expires  time.Time
}

// GameClientState is everything a client knows about the room. It is owned
// by one Controller and is never shared across goroutines.
type GameClientState struct {
	Connected   bool
	Joined      bool
	Started     bool
	HubComplete bool
	PlayerCount int

	Self    Self
	Remotes map[string]*Remote
	Pings   []Ping
	Stars   []game.Star
	Shards  *game.ShardSet
	History map[string][]game.HarvestEntry

	// ledger is the last authoritative hub progress; pending holds own
	// contributions sent but not yet echoed.
	ledger  map[game.ResourceType]game.Goal
	pending map[game.ResourceType]int
}

func newState() GameClientState {
	ledger := make(map[game.ResourceType]game.Goal, len(game.DefaultTargets))
	for res, target := range game.DefaultTargets {
		ledger[res] = game.Goal{Target: target}
	}
	return GameClientState{
		Self: Self{
			Inventory:     make(map[game.ResourceType]int),
			Contributions: make(map[game.ResourceType]int),
		},
		Remotes: make(map[string]*Remote),
		Shards:  game.NewShardSet(),
		History: make(map[string][]game.HarvestEntry),
		ledger:  ledger,
		pending: make(map[game.ResourceType]int),
	}
}

// Ledger is the mirror shown to the player: authoritative totals plus own
// contributions still in flight, clamped to each target.
func (s *GameClientState) Ledger() map[game.ResourceType]game.Goal {
	out := make(map[game.ResourceType]game.Goal, len(s.ledger))
	for res, g := range s.ledger {
		g.Current = min(g.Target, max(0, g.Current+s.pending[res]))
		out[res] = g
	}
	return out
}

// LedgerComplete applies the completion predicate to the mirror.
func (s *GameClientState) LedgerComplete() bool {
	for _, g := range s.Ledger() {
		if g.Current < g.Target {
			return false
		}
	}
	return len(s.ledger) > 0
}

// CanStart drives the Start Game control.
func (s *GameClientState) CanStart() bool {
	return s.Joined && s.Self.IsHost && !s.Started
}

func (s *GameClientState) NexusComplete() bool {
	return s.Shards.AllActivated()
}
