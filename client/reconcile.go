package client

import "cosmic/game"

// sentRing remembers the positions this client most recently reported, oldest
// first, so an echo can be matched without sequence numbers.
type sentRing struct {
	positions []game.Vec2
}

func (r *sentRing) push(p game.Vec2) {
	r.positions = append(r.positions, p)
	if over := len(r.positions) - game.SentHistorySize; over > 0 {
		r.positions = r.positions[over:]
	}
}

// match reports whether p is within eps of a sent position. Entries older
// than the match are dropped; the match itself stays because the periodic
// snapshot repeats the last accepted position.
func (r *sentRing) match(p game.Vec2, eps float64) bool {
	for i, q := range r.positions {
		if q.Dist(p) < eps {
			r.positions = r.positions[i:]
			return true
		}
	}
	return false
}

func (r *sentRing) reset() { r.positions = r.positions[:0] }

// reconcileSelf merges a server-reported position for the local rocket. An
// echo of anything recently sent, or anything within ReconcileEpsilon of the
// predicted position, leaves the prediction alone. A larger divergence is
// spread over ReconcileFrames frames instead of snapping.
func (c *Controller) reconcileSelf(server game.Vec2) {
	if c.sent.match(server, game.ReconcileEpsilon) {
		return
	}
	self := &c.state.Self
	diff := server.Sub(self.Position)
	if diff.Len() < game.ReconcileEpsilon {
		return
	}
	c.logger.Printf("client: prediction off by %.1f, correcting over %d frames", diff.Len(), game.ReconcileFrames)
	c.sent.reset()
	c.corrStep = diff.Scale(1 / float64(game.ReconcileFrames))
	c.corrFrames = game.ReconcileFrames
}

func (c *Controller) applyCorrection() {
	if c.corrFrames == 0 {
		return
	}
	self := &c.state.Self
	self.Position = self.Position.Add(c.corrStep)
	if !self.Moving {
		self.Target = self.Position
	}
	c.corrFrames--
}

// interpolateRemotes eases every remote toward its server position, leading
// it along its velocity while it is moving.
func (c *Controller) interpolateRemotes() {
	for _, r := range c.state.Remotes {
		aim := r.Target
		if r.IsMoving {
			aim = aim.Add(r.Velocity.Scale(game.RemoteLeadFactor))
		}
		r.Position = r.Position.Lerp(aim, game.RemoteLerp)
	}
}

// observeRemote records a server position for another player. The first
// sighting places the player directly; later ones only move the target.
func (c *Controller) observeRemote(id string, pos, vel game.Vec2, dir float64, moving bool) *Remote {
	r, ok := c.state.Remotes[id]
	if !ok {
		r = &Remote{ID: id, Position: pos}
		c.state.Remotes[id] = r
	}
	r.Target = pos
	r.Velocity = vel
	r.Direction = dir
	r.IsMoving = moving
	return r
}
