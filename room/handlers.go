package room

import (
	"fmt"
	"strings"

	"cosmic/game"
	"cosmic/protocol"
)

type handler struct {
	// needsPlayer drops the intent unless the connection has joined.
	needsPlayer bool
	fn          func(r *Room, id string, env protocol.Envelope)
}

func dispatchTable() map[string]handler {
	return map[string]handler{
		protocol.MsgPlayerJoin:         {fn: (*Room).onJoin},
		protocol.MsgRequestGameState:   {fn: (*Room).onRequestGameState},
		protocol.MsgPingServer:         {fn: (*Room).onPingServer},
		protocol.MsgStartGame:          {needsPlayer: true, fn: (*Room).onStartGame},
		protocol.MsgPlayerMove:         {needsPlayer: true, fn: (*Room).onMove},
		protocol.MsgPlayerStopMove:     {needsPlayer: true, fn: (*Room).onStopMove},
		protocol.MsgHarvestResource:    {needsPlayer: true, fn: (*Room).onHarvest},
		protocol.MsgContributeToHub:    {needsPlayer: true, fn: (*Room).onContribute},
		protocol.MsgActivateNexusShard: {needsPlayer: true, fn: (*Room).onActivateShard},
		protocol.MsgAddPing:            {needsPlayer: true, fn: (*Room).onPing},
	}
}

func (r *Room) dispatch(id string, env protocol.Envelope) {
	if _, ok := r.clients[id]; !ok {
		r.logger.Printf("room: %s from closed connection %s ignored", env.T, id)
		return
	}
	h, ok := r.handlers[env.T]
	if !ok {
		r.logger.Printf("room: unknown event %q from %s", env.T, id)
		return
	}
	if h.needsPlayer {
		if _, joined := r.state.Players[id]; !joined {
			r.logger.Printf("room: %s from %s before join ignored", env.T, id)
			return
		}
	}
	h.fn(r, id, env)
}

func (r *Room) drop(id string, env protocol.Envelope, err error) {
	r.logger.Printf("room: discarding malformed %s from %s: %v", env.T, id, err)
}

func (r *Room) onJoin(id string, env protocol.Envelope) {
	in, err := protocol.DecodePayload[protocol.PlayerJoin](env)
	if err != nil {
		r.drop(id, env, err)
		return
	}
	rocket, err := game.ParseRocket(in.RocketType)
	if err != nil {
		r.drop(id, env, err)
		return
	}
	name := strings.TrimSpace(in.PlayerName)
	if name == "" {
		name = fmt.Sprintf("Pilot %d", len(r.state.Players)+1)
	}

	p, created := r.state.Join(id, name, rocket)
	if !created {
		r.logger.Printf("room: duplicate join from %s, resending snapshot", id)
		r.sendTo(id, protocol.MsgFullGameState, r.buildSnapshot())
		return
	}
	r.logger.Printf("room: player joined id=%s name=%q rocket=%s host=%v (players=%d)",
		id, p.Name, p.Rocket, p.IsHost, len(r.state.Players))

	r.broadcast(protocol.MsgPlayerJoined, playerInfo(p), "")
	r.sendTo(id, protocol.MsgFullGameState, r.buildSnapshot())
	if r.state.Started {
		r.sendTo(id, protocol.MsgGameStarted, protocol.GameStarted{Timestamp: r.now().UnixMilli()})
	}
}

func (r *Room) onRequestGameState(id string, _ protocol.Envelope) {
	r.sendTo(id, protocol.MsgFullGameState, r.buildSnapshot())
}

func (r *Room) onPingServer(id string, _ protocol.Envelope) {
	r.sendTo(id, protocol.MsgPongServer, protocol.PongServer{
		Status:      "connected",
		Timestamp:   r.now().UnixMilli(),
		PlayerCount: len(r.state.Players),
	})
}

func (r *Room) onStartGame(id string, _ protocol.Envelope) {
	if !r.state.Start(id) {
		r.logger.Printf("room: startGame from %s ignored (host=%s started=%v)", id, r.state.HostID(), r.state.Started)
		return
	}
	r.logger.Printf("room: host %s started the game with %d players", id, len(r.state.Players))
	r.broadcast(protocol.MsgGameStarted, protocol.GameStarted{Timestamp: r.now().UnixMilli()}, "")
}

// onMove echoes to the sender as well, so its reconciliation can compare
// its prediction with what the server accepted.
func (r *Room) onMove(id string, env protocol.Envelope) {
	in, err := protocol.DecodePayload[protocol.PlayerMove](env)
	if err == nil && in.Position == nil {
		err = fmt.Errorf("missing position")
	}
	if err != nil {
		r.drop(id, env, err)
		return
	}
	var vel game.Vec2
	if in.Velocity != nil {
		vel = *in.Velocity
	}
	var dir float64
	if in.Direction != nil {
		dir = *in.Direction
	}
	now := r.now()
	p, _ := r.state.Move(id, *in.Position, vel, dir, now)
	r.broadcast(protocol.MsgPlayerMoved, protocol.PlayerMoved{
		ID:        id,
		Position:  p.Position,
		Velocity:  p.Velocity,
		Direction: p.Direction,
		IsMoving:  p.IsMoving,
		Timestamp: now.UnixMilli(),
	}, "")
}

func (r *Room) onStopMove(id string, env protocol.Envelope) {
	var pos *game.Vec2
	if len(env.P) > 0 {
		in, err := protocol.DecodePayload[protocol.PlayerStopMove](env)
		if err != nil {
			r.drop(id, env, err)
			return
		}
		pos = in.Position
	}
	now := r.now()
	p, _ := r.state.StopMove(id, pos, now)
	r.broadcast(protocol.MsgPlayerStoppedMoving, protocol.PlayerStoppedMoving{
		ID:        id,
		Position:  p.Position,
		Timestamp: now.UnixMilli(),
	}, "")
}

// onHarvest relays the harvest to everyone else. Amounts are not checked
// against what the star has left.
func (r *Room) onHarvest(id string, env protocol.Envelope) {
	in, err := protocol.DecodePayload[protocol.HarvestResource](env)
	if err == nil && (in.Amount == nil || in.StarID == "") {
		err = fmt.Errorf("missing starId or amount")
	}
	if err != nil {
		r.drop(id, env, err)
		return
	}
	sh, ok := r.state.Harvest(id, in.StarID, in.ResourceType, *in.Amount, r.now())
	if !ok {
		r.drop(id, env, fmt.Errorf("rejected resource %q amount %d", in.ResourceType, *in.Amount))
		return
	}
	r.broadcast(protocol.MsgResourceHarvested, protocol.ResourceHarvested{
		ID:           id,
		StarID:       in.StarID,
		ResourceType: in.ResourceType,
		Amount:       *in.Amount,
	}, id)
	r.broadcast(protocol.MsgHarvestHistoryUpdate, protocol.HarvestHistoryUpdate{
		StarID:  in.StarID,
		History: append([]game.HarvestEntry(nil), sh.History...),
		Totals:  copyCounts(sh.Totals),
	}, "")
}

func (r *Room) onContribute(id string, env protocol.Envelope) {
	in, err := protocol.DecodePayload[protocol.ContributeToHub](env)
	if err == nil && in.Amount == nil {
		err = fmt.Errorf("missing amount")
	}
	if err != nil {
		r.drop(id, env, err)
		return
	}
	c, ok := r.state.Contribute(id, in.ResourceType, *in.Amount)
	if !ok {
		r.drop(id, env, fmt.Errorf("rejected resource %q amount %d", in.ResourceType, *in.Amount))
		return
	}
	r.broadcast(protocol.MsgHubContribution, protocol.HubContribution{
		PlayerID:     id,
		PlayerName:   c.Player.Name,
		ResourceType: in.ResourceType,
		Amount:       c.Applied,
		Requested:    c.Requested,
		NewTotal:     c.NewTotal,
		HubProgress:  r.state.Ledger.Progress(),
	}, "")
	if c.Completed {
		r.logger.Printf("room: galactic hub complete (last contribution by %s)", id)
		r.broadcast(protocol.MsgHubComplete, protocol.HubComplete{Timestamp: r.now().UnixMilli()}, "")
	}
}

func (r *Room) onActivateShard(id string, env protocol.Envelope) {
	in, err := protocol.DecodePayload[protocol.ActivateNexusShard](env)
	if err == nil && in.StarID == "" {
		err = fmt.Errorf("missing starId")
	}
	if err != nil {
		r.drop(id, env, err)
		return
	}
	changed, _ := r.state.ActivateShard(id, in.StarID, in.ResourceType)
	if !changed {
		return
	}
	r.broadcast(protocol.MsgNexusShardActivated, protocol.NexusShardActivated{
		StarID:       in.StarID,
		StarName:     in.StarName,
		ResourceType: in.ResourceType,
		PlayerID:     id,
	}, "")
}

// onPing fans out an ephemeral marker. Nothing is stored.
func (r *Room) onPing(id string, env protocol.Envelope) {
	in, err := protocol.DecodePayload[protocol.AddPing](env)
	if err == nil && (in.X == nil || in.Y == nil) {
		err = fmt.Errorf("missing coordinates")
	}
	if err != nil {
		r.drop(id, env, err)
		return
	}
	r.pingSeq++
	r.broadcast(protocol.MsgPingPlaced, protocol.PingPlaced{
		ID:        fmt.Sprintf("%s-%d", id, r.pingSeq),
		X:         *in.X,
		Y:         *in.Y,
		Message:   in.Message,
		Sender:    r.state.Players[id].Name,
		SenderID:  id,
		Timestamp: r.now().UnixMilli(),
	}, "")
}
