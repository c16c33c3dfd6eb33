package game

import "fmt"

type ResourceType string

const (
	Energy  ResourceType = "energy"
	Mineral ResourceType = "mineral"
	Organic ResourceType = "organic"
	Water   ResourceType = "water"
)

// Resources lists every resource type in a stable order.
var Resources = []ResourceType{Energy, Mineral, Organic, Water}

func (r ResourceType) Valid() bool {
	switch r {
	case Energy, Mineral, Organic, Water:
		return true
	}
	return false
}

type RocketType string

const (
	RocketRed    RocketType = "red"
	RocketBlue   RocketType = "blue"
	RocketGreen  RocketType = "green"
	RocketYellow RocketType = "yellow"
)

var specializations = map[RocketType]ResourceType{
	RocketRed:    Energy,
	RocketBlue:   Mineral,
	RocketGreen:  Organic,
	RocketYellow: Water,
}

func (r RocketType) Valid() bool {
	_, ok := specializations[r]
	return ok
}

// ParseRocket accepts only the four known rocket colours.
func ParseRocket(s string) (RocketType, error) {
	r := RocketType(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rocket type %q", s)
	}
	return r, nil
}

// Specialization returns the one resource a rocket harvests with a bonus.
func Specialization(r RocketType) ResourceType {
	return specializations[r]
}

// RocketFor is the inverse of Specialization.
func RocketFor(res ResourceType) RocketType {
	for rocket, spec := range specializations {
		if spec == res {
			return rocket
		}
	}
	return ""
}

// HarvestYield applies the specialty bonus, rounding half up like the browser client did.
func HarvestYield(r RocketType, res ResourceType, base int) int {
	if base <= 0 {
		return 0
	}
	if Specialization(r) != res {
		return base
	}
	return int(float64(base)*SpecialtyBonus + 0.5)
}
