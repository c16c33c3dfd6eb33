package game

import "time"

// Internal truth: the session registry for the single implicit room.

// Phase is the room lifecycle: EMPTY -> WAITING -> RUNNING, and back to EMPTY
// only when every player has left.
type Phase string

const (
	PhaseEmpty   Phase = "empty"
	PhaseWaiting Phase = "waiting"
	PhaseRunning Phase = "running"
)

type TimedPosition struct {
	Position Vec2  `json:"position"`
	At       int64 `json:"timestamp"`
}

type Player struct {
	ID        string
	Name      string
	Rocket    RocketType
	IsHost    bool
	Position  Vec2
	Velocity  Vec2
	Direction float64
	IsMoving  bool

	LastMoveTime      time.Time
	PreviousPositions []TimedPosition // newest first

	Inventory     map[ResourceType]int
	Contributions map[ResourceType]int
}

type State struct {
	Players map[string]*Player
	Started bool
	Ledger  *Ledger
	Shards  *ShardSet
	Stars   map[string]*StarHarvest

	order        []string // join order, drives host promotion
	hubCompleted bool
}

func NewState(targets map[ResourceType]int) *State {
	return &State{
		Players: make(map[string]*Player),
		Ledger:  NewLedger(targets),
		Shards:  NewShardSet(),
		Stars:   make(map[string]*StarHarvest),
	}
}

func (s *State) Phase() Phase {
	switch {
	case len(s.Players) == 0:
		return PhaseEmpty
	case s.Started:
		return PhaseRunning
	default:
		return PhaseWaiting
	}
}

// HostID returns the current host, or "" when the room is empty.
func (s *State) HostID() string {
	for _, id := range s.order {
		if s.Players[id].IsHost {
			return id
		}
	}
	return ""
}

// Order returns player ids in join order.
func (s *State) Order() []string {
	return append([]string(nil), s.order...)
}

// Join registers a player. The first player into an empty room becomes host.
// Joining twice on the same id returns the existing record and created=false.
func (s *State) Join(id, name string, rocket RocketType) (p *Player, created bool) {
	if existing, ok := s.Players[id]; ok {
		return existing, false
	}
	p = &Player{
		ID:            id,
		Name:          name,
		Rocket:        rocket,
		IsHost:        len(s.Players) == 0,
		Inventory:     make(map[ResourceType]int),
		Contributions: make(map[ResourceType]int),
	}
	s.Players[id] = p
	s.order = append(s.order, id)
	return p, true
}

// Leave removes a player. When the host leaves and others remain, the
// earliest-joined remaining player is promoted and returned as newHost. When
// the room empties, the ledger, shards, harvest tallies and started flag reset.
func (s *State) Leave(id string) (removed *Player, newHost string, ok bool) {
	removed, ok = s.Players[id]
	if !ok {
		return nil, "", false
	}
	delete(s.Players, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if len(s.Players) == 0 {
		s.reset()
		return removed, "", true
	}
	if removed.IsHost {
		newHost = s.order[0]
		s.Players[newHost].IsHost = true
	}
	return removed, newHost, true
}

func (s *State) reset() {
	s.Started = false
	s.hubCompleted = false
	s.order = nil
	s.Ledger.Reset()
	s.Shards.Reset()
	s.Stars = make(map[string]*StarHarvest)
}

// Start flips the started flag. It reports false for non-hosts, unknown ids
// and a game that is already running.
func (s *State) Start(id string) bool {
	p, ok := s.Players[id]
	if !ok || !p.IsHost || s.Started {
		return false
	}
	s.Started = true
	return true
}

// Move applies a motion intent.
func (s *State) Move(id string, pos, vel Vec2, dir float64, now time.Time) (*Player, bool) {
	p, ok := s.Players[id]
	if !ok {
		return nil, false
	}
	if !p.Position.IsZero() && p.Position.Dist(pos) > MovementThreshold {
		p.PreviousPositions = append([]TimedPosition{{Position: p.Position, At: p.LastMoveTime.UnixMilli()}}, p.PreviousPositions...)
		if len(p.PreviousPositions) > PositionHistoryLimit {
			p.PreviousPositions = p.PreviousPositions[:PositionHistoryLimit]
		}
	}
	p.Position = pos
	p.Velocity = vel
	p.Direction = dir
	p.IsMoving = Moving(vel)
	p.LastMoveTime = now
	return p, true
}

// StopMove halts a player. A nil pos keeps the last known position.
func (s *State) StopMove(id string, pos *Vec2, now time.Time) (*Player, bool) {
	p, ok := s.Players[id]
	if !ok {
		return nil, false
	}
	if pos != nil {
		p.Position = *pos
	}
	p.Velocity = Vec2{}
	p.IsMoving = false
	p.LastMoveTime = now
	return p, true
}

// Harvest credits the player's inventory and records the extraction on the star.
func (s *State) Harvest(id, starID string, res ResourceType, amount int, now time.Time) (*StarHarvest, bool) {
	p, ok := s.Players[id]
	if !ok || starID == "" || !res.Valid() || amount < 0 {
		return nil, false
	}
	p.Inventory[res] += amount
	sh, ok := s.Stars[starID]
	if !ok {
		sh = &StarHarvest{}
		s.Stars[starID] = sh
	}
	sh.record(HarvestEntry{
		PlayerID:     id,
		PlayerName:   p.Name,
		ResourceType: res,
		Amount:       amount,
		Timestamp:    now.UnixMilli(),
	})
	return sh, true
}

// Contribution is the outcome of one contribute intent.
type Contribution struct {
	Player    *Player
	Requested int
	Applied   int
	NewTotal  int
	// Completed is true only for the contribution that first completed the hub.
	Completed bool
}

// Contribute adds to the shared ledger, clamped at the target, and spends the
// applied amount from the player's inventory (never below zero).
func (s *State) Contribute(id string, res ResourceType, amount int) (Contribution, bool) {
	p, ok := s.Players[id]
	if !ok {
		return Contribution{}, false
	}
	applied, total, ok := s.Ledger.Contribute(res, amount)
	if !ok {
		return Contribution{}, false
	}
	p.Contributions[res] += applied
	p.Inventory[res] = max(0, p.Inventory[res]-applied)

	c := Contribution{Player: p, Requested: amount, Applied: applied, NewTotal: total}
	if !s.hubCompleted && s.Ledger.Complete() {
		s.hubCompleted = true
		c.Completed = true
	}
	return c, true
}

// HubCompleted reports whether hubComplete has already been announced.
func (s *State) HubCompleted() bool { return s.hubCompleted }

// ActivateShard records a shard activation. changed is false for repeats.
func (s *State) ActivateShard(id, starID string, res ResourceType) (changed, ok bool) {
	if _, found := s.Players[id]; !found || starID == "" {
		return false, false
	}
	return s.Shards.Activate(starID, res), true
}
