package client

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cosmic/game"
	"cosmic/protocol"
)

var (
	ErrNotJoined             = errors.New("client: not joined")
	ErrNotHost               = errors.New("client: only the host can start the game")
	ErrNameTooShort          = fmt.Errorf("client: name must be at least %d characters", game.MinNameLength)
	ErrInsufficientResources = errors.New("client: insufficient resources")
	ErrInvalidAmount         = errors.New("client: amount must be positive")
	ErrUnknownShard          = errors.New("client: no nexus shard at star")
)

// Sender delivers one intent to the server.
type Sender interface {
	Send(t string, payload any) error
}

// Controller owns a GameClientState and is its only writer. It is driven
// from a single loop: Handle for inbound frames, Step once per frame, and
// the intent methods for player input.
type Controller struct {
	state    GameClientState
	out      Sender
	handlers map[string]func(*Controller, protocol.Envelope) error

	sent       sentRing
	corrStep   game.Vec2
	corrFrames int

	// remembered for the automatic rejoin after a reconnect
	name   string
	rocket game.RocketType

	logger *log.Logger
	now    func() time.Time
}

func New(out Sender, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		state:    newState(),
		out:      out,
		handlers: dispatchTable(),
		logger:   logger,
		now:      time.Now,
	}
}

// State exposes the state for rendering. Callers must stay on the
// controller's goroutine.
func (c *Controller) State() *GameClientState { return &c.state }

// SetStars installs the galaxy's stars for collision checks.
func (c *Controller) SetStars(stars []game.Star) {
	c.state.Stars = append([]game.Star(nil), stars...)
}

// RegisterShard marks starID as carrying a nexus shard that needs res.
func (c *Controller) RegisterShard(starID string, res game.ResourceType) {
	c.state.Shards.Register(starID, res)
}

func (c *Controller) Join(name, rocket string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < game.MinNameLength {
		return ErrNameTooShort
	}
	r, err := game.ParseRocket(rocket)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	c.name, c.rocket = name, r
	c.state.Self.Name, c.state.Self.Rocket = name, r
	return c.send(protocol.MsgPlayerJoin, protocol.PlayerJoin{PlayerName: name, RocketType: string(r)})
}

func (c *Controller) RequestState() error {
	return c.send(protocol.MsgRequestGameState, protocol.Empty{})
}

// MoveTo sets a new destination. Movement starts on the next Step without
// waiting for the server.
func (c *Controller) MoveTo(target game.Vec2) error {
	if !c.state.Joined {
		return ErrNotJoined
	}
	self := &c.state.Self
	self.Target = target
	self.Moving = self.Position.Dist(target) > 0
	return nil
}

// Step advances one frame: local prediction, any pending correction, remote
// interpolation and ping expiry.
func (c *Controller) Step() {
	if c.state.Joined && c.state.Self.Moving {
		c.advanceSelf()
	}
	c.applyCorrection()
	c.interpolateRemotes()
	c.expirePings()
}

func (c *Controller) advanceSelf() {
	self := &c.state.Self
	prev := self.Position
	next, arrived := game.Advance(prev, self.Target, game.PlayerSpeed)

	star, hit := game.Collides(next, c.state.Stars)
	switch {
	case hit && star.ID == self.DockedAt:
		// still leaving the star we stopped at
	case hit:
		self.Position = next
		self.DockedAt = star.ID
		c.stop()
		return
	default:
		self.DockedAt = ""
	}

	self.Position = next
	self.Velocity = next.Sub(prev)
	self.Direction = game.RocketHeading(self.Velocity)
	pos, vel, dir := self.Position, self.Velocity, self.Direction
	c.sent.push(pos)
	if err := c.send(protocol.MsgPlayerMove, protocol.PlayerMove{Position: &pos, Velocity: &vel, Direction: &dir}); err != nil {
		c.logger.Printf("client: move not sent: %v", err)
	}
	if arrived {
		c.stop()
	}
}

func (c *Controller) stop() {
	self := &c.state.Self
	self.Moving = false
	self.Velocity = game.Vec2{}
	self.Target = self.Position
	pos := self.Position
	c.sent.push(pos)
	if err := c.send(protocol.MsgPlayerStopMove, protocol.PlayerStopMove{Position: &pos}); err != nil {
		c.logger.Printf("client: stop not sent: %v", err)
	}
}

// Harvest collects base units of res from a star, applying the rocket's
// specialty bonus, and reports the result. It returns the amount gained.
func (c *Controller) Harvest(starID string, res game.ResourceType, base int) (int, error) {
	if !c.state.Joined {
		return 0, ErrNotJoined
	}
	if !res.Valid() {
		return 0, fmt.Errorf("client: unknown resource %q", res)
	}
	amount := game.HarvestYield(c.state.Self.Rocket, res, base)
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	c.state.Self.Inventory[res] += amount
	err := c.send(protocol.MsgHarvestResource, protocol.HarvestResource{StarID: starID, ResourceType: res, Amount: &amount})
	return amount, err
}

// Contribute spends inventory on the hub. The mirror shows the contribution
// at once; the server's hubContribution echo settles it.
func (c *Controller) Contribute(res game.ResourceType, amount int) error {
	if !c.state.Joined {
		return ErrNotJoined
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	self := &c.state.Self
	if self.Inventory[res] < amount {
		return fmt.Errorf("%w: have %d %s, need %d", ErrInsufficientResources, self.Inventory[res], res, amount)
	}
	self.Inventory[res] -= amount
	self.Contributions[res] += amount
	c.state.pending[res] += amount

	if err := c.send(protocol.MsgContributeToHub, protocol.ContributeToHub{ResourceType: res, Amount: &amount}); err != nil {
		self.Inventory[res] += amount
		self.Contributions[res] -= amount
		c.state.pending[res] -= amount
		return err
	}
	return nil
}

func (c *Controller) StartGame() error {
	if !c.state.Joined {
		return ErrNotJoined
	}
	if !c.state.Self.IsHost {
		return ErrNotHost
	}
	if c.state.Started {
		return nil
	}
	return c.send(protocol.MsgStartGame, protocol.Empty{})
}

func (c *Controller) PlacePing(at game.Vec2, message string) error {
	if !c.state.Joined {
		return ErrNotJoined
	}
	return c.send(protocol.MsgAddPing, protocol.AddPing{X: &at.X, Y: &at.Y, Message: message})
}

// ActivateShard spends ShardActivationCost of the shard's resource.
func (c *Controller) ActivateShard(starID, starName string) error {
	if !c.state.Joined {
		return ErrNotJoined
	}
	shard, ok := c.state.Shards.Get(starID)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownShard, starID)
	}
	if shard.Activated {
		return nil
	}
	res := shard.RequiredResource
	if c.state.Self.Inventory[res] < game.ShardActivationCost {
		return fmt.Errorf("%w: shard needs %d %s", ErrInsufficientResources, game.ShardActivationCost, res)
	}
	c.state.Self.Inventory[res] -= game.ShardActivationCost
	c.state.Shards.Activate(starID, res)
	return c.send(protocol.MsgActivateNexusShard, protocol.ActivateNexusShard{StarID: starID, StarName: starName, ResourceType: res})
}

// OnDisconnect drops everything tied to the lost identity. Inventory is kept;
// in-flight contributions are forgotten because the next snapshot carries
// whatever the server applied.
func (c *Controller) OnDisconnect() {
	c.logger.Printf("client: disconnected, reconnecting")
	c.state.Connected = false
	c.state.Joined = false
	c.state.Self.IsHost = false
	c.state.Self.ID = ""
	c.state.Self.Moving = false
	c.state.Self.Velocity = game.Vec2{}
	for res := range c.state.pending {
		delete(c.state.pending, res)
	}
	c.sent.reset()
	c.corrFrames = 0
}

// OnReconnect marks the transport as up again. The rejoin itself is sent
// once the server assigns the new identity.
func (c *Controller) OnReconnect() {
	c.state.Connected = true
}

func (c *Controller) expirePings() {
	if len(c.state.Pings) == 0 {
		return
	}
	now := c.now()
	kept := c.state.Pings[:0]
	for _, p := range c.state.Pings {
		if now.Before(p.Expires) {
			kept = append(kept, p)
		}
	}
	c.state.Pings = kept
}

func (c *Controller) send(t string, payload any) error {
	if c.out == nil {
		return errors.New("client: no transport")
	}
	if err := c.out.Send(t, payload); err != nil {
		return fmt.Errorf("client: send %s: %w", t, err)
	}
	return nil
}
