package game

import "math"

// Star is the part of a star system the movement rules need. Stars come from
// galaxy generation and are only ever known to clients.
type Star struct {
	ID     string  `json:"id"`
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
}

// Advance moves pos toward target by at most speed. arrived is true when the
// remaining distance was within one step, in which case target is returned.
func Advance(pos, target Vec2, speed float64) (next Vec2, arrived bool) {
	d := target.Sub(pos)
	dist := d.Len()
	if dist <= speed+1e-9 {
		return target, true
	}
	return pos.Add(d.Scale(speed / dist)), false
}

// Collides returns the first star whose radius contains pos.
func Collides(pos Vec2, stars []Star) (Star, bool) {
	for _, s := range stars {
		if pos.Dist(s.Pos) <= s.Radius {
			return s, true
		}
	}
	return Star{}, false
}

// RocketHeading is the sprite rotation for travel along d (nose up at zero).
func RocketHeading(d Vec2) float64 {
	return math.Atan2(d.Y, d.X) + math.Pi/2
}
