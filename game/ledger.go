package game

// Goal is one resource line of the Galactic Hub.
type Goal struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

// Ledger holds the shared hub goal. Invariant: 0 <= Current <= Target for
// every resource.
type Ledger struct {
	goals map[ResourceType]*Goal
}

func NewLedger(targets map[ResourceType]int) *Ledger {
	l := &Ledger{goals: make(map[ResourceType]*Goal, len(Resources))}
	for _, res := range Resources {
		t, ok := targets[res]
		if !ok {
			t = DefaultTargets[res]
		}
		if t < 0 {
			t = 0
		}
		l.goals[res] = &Goal{Target: t}
	}
	return l
}

// Contribute adds amount toward res, clamped at the target. applied is what
// was actually added. ok is false for unknown resources and negative amounts.
func (l *Ledger) Contribute(res ResourceType, amount int) (applied, newTotal int, ok bool) {
	g, found := l.goals[res]
	if !found || amount < 0 {
		return 0, 0, false
	}
	applied = amount
	if room := g.Target - g.Current; applied > room {
		applied = room
	}
	g.Current += applied
	return applied, g.Current, true
}

func (l *Ledger) Get(res ResourceType) Goal {
	if g, ok := l.goals[res]; ok {
		return *g
	}
	return Goal{}
}

// Complete reports whether every resource has reached its target.
func (l *Ledger) Complete() bool {
	for _, g := range l.goals {
		if g.Current < g.Target {
			return false
		}
	}
	return true
}

// Reset zeroes every current value, keeping targets.
func (l *Ledger) Reset() {
	for _, g := range l.goals {
		g.Current = 0
	}
}

// Progress copies the ledger for the wire.
func (l *Ledger) Progress() map[ResourceType]Goal {
	out := make(map[ResourceType]Goal, len(l.goals))
	for res, g := range l.goals {
		out[res] = *g
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
