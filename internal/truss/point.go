package truss

import (
	"fmt"
	"math"
)

// Constraint marks which translations of a Point are restrained.
// A true flag forces that displacement to zero.
type Constraint struct {
	X bool
	Y bool
}

// Any reports whether at least one direction is restrained
func (c Constraint) Any() bool { return c.X || c.Y }

// Point is a pin joint of the truss. Identity is the pointer: two points at the
// same coordinates are different joints unless the same *Point is reused.
type Point struct {
	X float64
	Y float64

	// ID is assigned when the point is added to a Structure (1-based)
	ID int

	Constraint Constraint

	loads []*Load
}

// NewPoint creates a free, unloaded point
func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

// RestrainX fixes the x translation
func (p *Point) RestrainX() *Point {
	p.Constraint.X = true
	return p
}

// RestrainY fixes the y translation
func (p *Point) RestrainY() *Point {
	p.Constraint.Y = true
	return p
}

// Pin fixes both translations
func (p *Point) Pin() *Point {
	p.Constraint = Constraint{X: true, Y: true}
	return p
}

// ReleaseX frees the x translation
func (p *Point) ReleaseX() *Point {
	p.Constraint.X = false
	return p
}

// ReleaseY frees the y translation
func (p *Point) ReleaseY() *Point {
	p.Constraint.Y = false
	return p
}

// AddLoad attaches l to the point. A load that is already attached is ignored.
func (p *Point) AddLoad(l *Load) *Point {
	for _, existing := range p.loads {
		if existing == l {
			return p
		}
	}
	p.loads = append(p.loads, l)
	return p
}

// ApplyForce creates a load and attaches it to the point
func (p *Point) ApplyForce(x, y float64) *Load {
	l := NewLoad(x, y)
	p.AddLoad(l)
	return l
}

// Loads returns the attached loads in insertion order
func (p *Point) Loads() []*Load {
	out := make([]*Load, len(p.loads))
	copy(out, p.loads)
	return out
}

// Resultant returns the vector sum of all attached loads
func (p *Point) Resultant() Load {
	var r Load
	for _, l := range p.loads {
		r.X += l.X
		r.Y += l.Y
	}
	return r
}

// FactoredResultant returns the vector sum of all attached loads, each
// multiplied by the factor of its case
func (p *Point) FactoredResultant(factor func(LoadCase) float64) Load {
	var r Load
	for _, l := range p.loads {
		f := factor(l.Case)
		r.X += f * l.X
		r.Y += f * l.Y
	}
	return r
}

// DistanceTo returns the Euclidean distance to q
func (p *Point) DistanceTo(q *Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// AngleFrom returns atan2 of (p - q) offset by -π
func (p *Point) AngleFrom(q *Point) float64 {
	return math.Atan2(p.Y-q.Y, p.X-q.X) - math.Pi
}

// RotateAbout rotates the point by theta radians counter-clockwise around origin
func (p *Point) RotateAbout(theta float64, origin *Point) *Point {
	x := p.X - origin.X
	y := p.Y - origin.Y
	sin, cos := math.Sincos(theta)

	p.X = origin.X + x*cos - y*sin
	p.Y = origin.Y + x*sin + y*cos
	return p
}

func (p *Point) String() string {
	return fmt.Sprintf("P%d(%g, %g)", p.ID, p.X, p.Y)
}
