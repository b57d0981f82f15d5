package truss

import (
	"fmt"
	"math"
)

// LoadCase classifies a load by its origin so that load combinations can
// factor it
type LoadCase string

const (
	Dead       LoadCase = "D"
	Live       LoadCase = "L"
	Roof       LoadCase = "Lr"
	Wind       LoadCase = "W"
	Earthquake LoadCase = "E"
	Rain       LoadCase = "R"
)

// LoadCases lists the known cases
var LoadCases = []LoadCase{Dead, Live, Roof, Wind, Earthquake, Rain}

// ParseLoadCase accepts a case symbol (D, L, Lr, W, E, R) or an empty string
func ParseLoadCase(s string) (LoadCase, error) {
	if s == "" {
		return "", nil
	}
	for _, c := range LoadCases {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown load case %q (expected D, L, Lr, W, E or R)", s)
}

// Load is a point force applied to a Point
type Load struct {
	X    float64  // Force along x
	Y    float64  // Force along y
	Case LoadCase // empty when unclassified
}

// NewLoad creates a load with the given components
func NewLoad(x, y float64) *Load {
	return &Load{X: x, Y: y}
}

// Norm returns the magnitude of the force
func (l Load) Norm() float64 {
	return math.Hypot(l.X, l.Y)
}

// Angle returns the direction of the force in radians
func (l Load) Angle() float64 {
	return math.Atan2(l.Y, l.X)
}

// Scaled returns a copy multiplied by c
func (l Load) Scaled(c float64) Load {
	return Load{X: l.X * c, Y: l.Y * c, Case: l.Case}
}

// IsZero reports whether both components are zero
func (l Load) IsZero() bool {
	return l.X == 0 && l.Y == 0
}
