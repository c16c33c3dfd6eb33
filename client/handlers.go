package client

import (
	"fmt"
	"time"

	"cosmic/game"
	"cosmic/protocol"
)

func dispatchTable() map[string]func(*Controller, protocol.Envelope) error {
	return map[string]func(*Controller, protocol.Envelope) error{
		protocol.MsgConnectionEstablished: (*Controller).onConnectionEstablished,
		protocol.MsgPlayerJoined:          (*Controller).onPlayerJoined,
		protocol.MsgFullGameState:         (*Controller).onFullGameState,
		protocol.MsgGameStarted:           (*Controller).onGameStarted,
		protocol.MsgPlayerMoved:           (*Controller).onPlayerMoved,
		protocol.MsgPlayerStoppedMoving:   (*Controller).onPlayerStoppedMoving,
		protocol.MsgGameStateUpdate:       (*Controller).onGameStateUpdate,
		protocol.MsgResourceHarvested:     (*Controller).onResourceHarvested,
		protocol.MsgHarvestHistoryUpdate:  (*Controller).onHarvestHistory,
		protocol.MsgHubContribution:       (*Controller).onHubContribution,
		protocol.MsgHubComplete:           (*Controller).onHubComplete,
		protocol.MsgNexusShardActivated:   (*Controller).onShardActivated,
		protocol.MsgPingPlaced:            (*Controller).onPingPlaced,
		protocol.MsgPlayerLeft:            (*Controller).onPlayerLeft,
		protocol.MsgNewHost:               (*Controller).onNewHost,
		protocol.MsgPongServer:            (*Controller).onPong,
	}
}

// Handle applies one server frame. Unknown events are ignored; a malformed
// payload is reported and leaves the state untouched.
func (c *Controller) Handle(env protocol.Envelope) error {
	h, ok := c.handlers[env.T]
	if !ok {
		c.logger.Printf("client: ignoring unknown event %q", env.T)
		return nil
	}
	if err := h(c, env); err != nil {
		return fmt.Errorf("client: %s: %w", env.T, err)
	}
	return nil
}

func (c *Controller) onConnectionEstablished(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.ConnectionEstablished](env)
	if err != nil {
		return err
	}
	c.state.Connected = true
	c.state.Self.ID = in.ID
	if c.name == "" {
		return nil
	}
	c.logger.Printf("client: rejoining as %q with new id %s", c.name, in.ID)
	return c.send(protocol.MsgPlayerJoin, protocol.PlayerJoin{PlayerName: c.name, RocketType: string(c.rocket)})
}

func (c *Controller) onPlayerJoined(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.PlayerInfo](env)
	if err != nil {
		return err
	}
	if in.ID == c.state.Self.ID {
		c.state.Self.IsHost = in.IsHost
		return nil
	}
	r := c.observeRemote(in.ID, in.Position, in.Velocity, in.Direction, in.IsMoving)
	r.Name, r.Rocket, r.IsHost = in.Name, in.RocketType, in.IsHost
	c.state.PlayerCount = len(c.state.Remotes) + 1
	return nil
}

// onFullGameState rebuilds the player map and ledger mirror from scratch.
func (c *Controller) onFullGameState(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.FullGameState](env)
	if err != nil {
		return err
	}
	s := &c.state
	wasJoined := s.Joined
	s.Remotes = make(map[string]*Remote, len(in.Players))
	for _, p := range in.Players {
		if p.ID != s.Self.ID {
			s.Remotes[p.ID] = &Remote{
				ID:        p.ID,
				Name:      p.Name,
				Rocket:    p.RocketType,
				IsHost:    p.IsHost,
				Position:  p.Position,
				Target:    p.Position,
				Velocity:  p.Velocity,
				Direction: p.Direction,
				IsMoving:  p.IsMoving,
			}
			continue
		}
		s.Joined = true
		s.Self.IsHost = p.IsHost
		s.Self.Name, s.Self.Rocket = p.Name, p.RocketType
		if !wasJoined && s.Self.Position.IsZero() {
			s.Self.Position, s.Self.Target = p.Position, p.Position
		}
	}
	if len(in.HubProgress) > 0 {
		s.ledger = make(map[game.ResourceType]game.Goal, len(in.HubProgress))
		for res, g := range in.HubProgress {
			s.ledger[res] = g
		}
		// The snapshot already counts anything the server accepted.
		for res := range s.pending {
			delete(s.pending, res)
		}
	}
	s.Started = in.IsGameStarted
	s.HubComplete = in.HubComplete

	// Shard activation comes only from the snapshot; locally registered
	// stars survive unactivated.
	shards := game.NewShardSet()
	for _, sh := range s.Shards.All() {
		shards.Register(sh.StarID, sh.RequiredResource)
	}
	for _, sh := range in.NexusShards {
		if sh.Activated {
			shards.Activate(sh.StarID, sh.RequiredResource)
		} else {
			shards.Register(sh.StarID, sh.RequiredResource)
		}
	}
	s.Shards = shards
	if s.Joined && !wasJoined {
		s.History = make(map[string][]game.HarvestEntry)
	}
	s.PlayerCount = len(in.Players)

	// A rejoin keeps the predicted position and tells the server about it.
	if s.Joined && !wasJoined && !s.Self.Position.IsZero() {
		c.sent.reset()
		c.stop()
	}
	return nil
}

func (c *Controller) onGameStarted(protocol.Envelope) error {
	c.state.Started = true
	return nil
}

func (c *Controller) onPlayerMoved(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.PlayerMoved](env)
	if err != nil {
		return err
	}
	if in.ID == c.state.Self.ID {
		c.reconcileSelf(in.Position)
		return nil
	}
	c.observeRemote(in.ID, in.Position, in.Velocity, in.Direction, in.IsMoving)
	return nil
}

func (c *Controller) onPlayerStoppedMoving(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.PlayerStoppedMoving](env)
	if err != nil {
		return err
	}
	if in.ID == c.state.Self.ID {
		c.reconcileSelf(in.Position)
		return nil
	}
	var dir float64
	if r, ok := c.state.Remotes[in.ID]; ok {
		dir = r.Direction
	}
	c.observeRemote(in.ID, in.Position, game.Vec2{}, dir, false)
	return nil
}

func (c *Controller) onGameStateUpdate(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.GameStateUpdate](env)
	if err != nil {
		return err
	}
	for id, ps := range in.PlayerPositions {
		if id == c.state.Self.ID {
			if c.state.Joined {
				c.reconcileSelf(ps.Position)
			}
			continue
		}
		c.observeRemote(id, ps.Position, ps.Velocity, ps.Direction, ps.IsMoving)
	}
	return nil
}

// onResourceHarvested only validates the frame; per-star history arrives in
// harvestHistoryUpdate.
func (c *Controller) onResourceHarvested(env protocol.Envelope) error {
	_, err := protocol.DecodePayload[protocol.ResourceHarvested](env)
	return err
}

func (c *Controller) onHarvestHistory(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.HarvestHistoryUpdate](env)
	if err != nil {
		return err
	}
	c.state.History[in.StarID] = in.History
	return nil
}

// onHubContribution moves the authoritative ledger forward. For the local
// player's own echo it also settles the pending amount and refunds whatever
// the server clamped away.
func (c *Controller) onHubContribution(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.HubContribution](env)
	if err != nil {
		return err
	}
	s := &c.state
	if len(in.HubProgress) > 0 {
		for res, g := range in.HubProgress {
			s.ledger[res] = g
		}
	} else {
		g := s.ledger[in.ResourceType]
		g.Current = in.NewTotal
		s.ledger[in.ResourceType] = g
	}

	if in.PlayerID != s.Self.ID {
		return nil
	}
	s.pending[in.ResourceType] = max(0, s.pending[in.ResourceType]-in.Requested)
	if refund := in.Requested - in.Amount; refund > 0 {
		s.Self.Inventory[in.ResourceType] += refund
		s.Self.Contributions[in.ResourceType] -= refund
		c.logger.Printf("client: hub took %d of %d %s, %d refunded", in.Amount, in.Requested, in.ResourceType, refund)
	}
	return nil
}

func (c *Controller) onHubComplete(protocol.Envelope) error {
	c.state.HubComplete = true
	return nil
}

func (c *Controller) onShardActivated(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.NexusShardActivated](env)
	if err != nil {
		return err
	}
	c.state.Shards.Activate(in.StarID, in.ResourceType)
	return nil
}

func (c *Controller) onPingPlaced(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.PingPlaced](env)
	if err != nil {
		return err
	}
	c.state.Pings = append(c.state.Pings, Ping{
		ID:       in.ID,
		Pos:      game.Vec2{X: in.X, Y: in.Y},
		Message:  in.Message,
		Sender:   in.Sender,
		SenderID: in.SenderID,
		Expires:  c.now().Add(game.PingLifetimeSeconds * time.Second),
	})
	return nil
}

func (c *Controller) onPlayerLeft(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.PlayerLeft](env)
	if err != nil {
		return err
	}
	delete(c.state.Remotes, in.ID)
	c.state.PlayerCount = len(c.state.Remotes) + 1
	return nil
}

// onNewHost is the only way host status changes after a join.
func (c *Controller) onNewHost(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.NewHost](env)
	if err != nil {
		return err
	}
	c.state.Self.IsHost = in.ID == c.state.Self.ID
	for id, r := range c.state.Remotes {
		r.IsHost = id == in.ID
	}
	return nil
}

func (c *Controller) onPong(env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.PongServer](env)
	if err != nil {
		return err
	}
	c.state.PlayerCount = in.PlayerCount
	return nil
}
