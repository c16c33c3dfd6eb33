package room

import (
	"log"
	"time"

	"cosmic/game"
	"cosmic/protocol"
)

type Options struct {
	SnapshotInterval time.Duration
	Targets          map[game.ResourceType]int
	InboxSize        int
	Logger           *log.Logger
}

// Room is the single implicit game room. Run owns every field; other
// goroutines talk to it through Inbox only.
type Room struct {
	Inbox         chan any
	snapshotEvery time.Duration
	state         *game.State
	clients       map[string]Conn
	failed        []string
	handlers      map[string]handler
	pingSeq       int
	logger        *log.Logger
	now           func() time.Time
	quit          chan struct{}
}

func New(opts Options) *Room {
	every := opts.SnapshotInterval
	if every <= 0 {
		every = time.Second / protocol.SnapshotHz
	}
	size := opts.InboxSize
	if size <= 0 {
		size = 256
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	r := &Room{
		Inbox:         make(chan any, size),
		snapshotEvery: every,
		state:         game.NewState(opts.Targets),
		clients:       make(map[string]Conn),
		logger:        logger,
		now:           time.Now,
		quit:          make(chan struct{}),
	}
	r.handlers = dispatchTable()
	return r
}

func (r *Room) Stop() {
	close(r.quit)
}

// Post queues a command, giving up if the room has stopped.
func (r *Room) Post(cmd any) bool {
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.quit:
		return false
	}
}

func (r *Room) Run() {
	ticker := time.NewTicker(r.snapshotEvery)
	defer ticker.Stop()
	defer r.closeAll()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.broadcastPositions()
		}
		r.flushFailed()
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Connect:
		r.clients[c.ID] = c.Conn
		r.logger.Printf("room: connect id=%s (connections=%d)", c.ID, len(r.clients))
		r.sendTo(c.ID, protocol.MsgConnectionEstablished, protocol.ConnectionEstablished{
			ID:        c.ID,
			Timestamp: r.now().UnixMilli(),
		})
	case Intent:
		r.dispatch(c.ID, c.Env)
	case Leave:
		r.disconnect(c.ID)
	case Query:
		c.Reply <- r.info()
	}
}

// disconnect is the single cleanup path for explicit closes, heartbeat
// timeouts and failed sends.
func (r *Room) disconnect(id string) {
	if c, ok := r.clients[id]; ok {
		_ = c.Close()
		delete(r.clients, id)
	}
	removed, newHost, ok := r.state.Leave(id)
	if !ok {
		return
	}
	r.logger.Printf("room: player left id=%s name=%q (players=%d)", id, removed.Name, len(r.state.Players))
	r.broadcast(protocol.MsgPlayerLeft, protocol.PlayerLeft{ID: id}, "")
	if newHost != "" {
		r.logger.Printf("room: host %s left, promoting %s", id, newHost)
		r.broadcast(protocol.MsgNewHost, protocol.NewHost{ID: newHost}, "")
	}
	if r.state.Phase() == game.PhaseEmpty {
		r.logger.Printf("room: empty, hub progress and started flag reset")
	}
}

func (r *Room) flushFailed() {
	for len(r.failed) > 0 {
		id := r.failed[0]
		r.failed = r.failed[1:]
		if _, ok := r.clients[id]; !ok {
			continue
		}
		r.logger.Printf("room: send to %s failed, dropping connection", id)
		r.disconnect(id)
	}
}

func (r *Room) sendTo(id, t string, payload any) {
	c, ok := r.clients[id]
	if !ok {
		return
	}
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.logger.Printf("room: %v", err)
		return
	}
	if err := c.Send(b); err != nil {
		r.failed = append(r.failed, id)
	}
}

// broadcast sends to every connection except the one named by except.
func (r *Room) broadcast(t string, payload any, except string) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.logger.Printf("room: %v", err)
		return
	}
	for id, c := range r.clients {
		if id == except {
			continue
		}
		if err := c.Send(b); err != nil {
			r.failed = append(r.failed, id)
		}
	}
}

// broadcastPositions is the anti-entropy backstop: every player's motion,
// regardless of which per-event messages were lost.
func (r *Room) broadcastPositions() {
	if len(r.state.Players) == 0 {
		return
	}
	positions := make(map[string]protocol.PositionSnapshot, len(r.state.Players))
	for id, p := range r.state.Players {
		positions[id] = protocol.PositionSnapshot{
			Position:  p.Position,
			Velocity:  p.Velocity,
			Direction: p.Direction,
			IsMoving:  p.IsMoving,
		}
	}
	r.broadcast(protocol.MsgGameStateUpdate, protocol.GameStateUpdate{
		PlayerPositions: positions,
		Timestamp:       r.now().UnixMilli(),
	}, "")
}

func (r *Room) buildSnapshot() protocol.FullGameState {
	snapshot := protocol.FullGameState{
		Players:       make([]protocol.PlayerInfo, 0, len(r.state.Players)),
		HubProgress:   r.state.Ledger.Progress(),
		IsGameStarted: r.state.Started,
		HubComplete:   r.state.HubCompleted(),
		Phase:         r.state.Phase(),
		NexusShards:   r.state.Shards.Activated(),
		Timestamp:     r.now().UnixMilli(),
	}
	for _, id := range r.state.Order() {
		snapshot.Players = append(snapshot.Players, playerInfo(r.state.Players[id]))
	}
	return snapshot
}

func playerInfo(p *game.Player) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:            p.ID,
		Name:          p.Name,
		IsHost:        p.IsHost,
		RocketType:    p.Rocket,
		Position:      p.Position,
		Velocity:      p.Velocity,
		Direction:     p.Direction,
		IsMoving:      p.IsMoving,
		Inventory:     copyCounts(p.Inventory),
		Contributions: copyCounts(p.Contributions),

		PreviousPositions: append([]game.TimedPosition(nil), p.PreviousPositions...),
	}
}

func copyCounts(m map[game.ResourceType]int) map[game.ResourceType]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[game.ResourceType]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *Room) info() Info {
	return Info{
		Players:     len(r.state.Players),
		Connections: len(r.clients),
		Phase:       r.state.Phase(),
		Started:     r.state.Started,
		HostID:      r.state.HostID(),
		HubProgress: r.state.Ledger.Progress(),
		HubComplete: r.state.HubCompleted(),
	}
}

func (r *Room) closeAll() {
	for _, c := range r.clients {
		_ = c.Close()
	}
}
