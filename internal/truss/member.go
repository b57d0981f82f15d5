package truss

import (
	"fmt"
	"math"
)

// Member is a straight two-force bar between two points
type Member struct {
	// ID is assigned when the member is added to a Structure (1-based)
	ID int

	P1       *Point
	P2       *Point
	Material *Material
}

// NewMember joins p1 and p2. The endpoints must be different points.
func NewMember(p1, p2 *Point) (*Member, error) {
	if p1 == nil || p2 == nil {
		return nil, fmt.Errorf("%w: member endpoint is nil", ErrInvalidGeometry)
	}
	if p1 == p2 {
		return nil, fmt.Errorf("%w: member endpoints are the same point", ErrInvalidGeometry)
	}
	return &Member{P1: p1, P2: p2}, nil
}

// SetMaterial assigns the material and returns the member for chaining
func (m *Member) SetMaterial(mat *Material) *Member {
	m.Material = mat
	return m
}

// Length returns the distance between the endpoints
func (m *Member) Length() float64 {
	return m.P1.DistanceTo(m.P2)
}

// Angle returns the orientation used for label placement: atan2 of P1 - P2
// minus π. It plays no part in the mechanics.
func (m *Member) Angle() float64 {
	return m.P1.AngleFrom(m.P2)
}

// SinCos returns the direction sines and cosines of the axis P1 -> P2
func (m *Member) SinCos() (sin, cos float64) {
	dx := m.P2.X - m.P1.X
	dy := m.P2.Y - m.P1.Y
	l := math.Hypot(dx, dy)
	return dy / l, dx / l
}

// Center returns the midpoint of the member
func (m *Member) Center() (x, y float64) {
	return (m.P1.X + m.P2.X) / 2, (m.P1.Y + m.P2.Y) / 2
}

// Validate checks that the member can be assembled
func (m *Member) Validate() error {
	if m.Length() == 0 {
		return fmt.Errorf("%w: member %d has zero length", ErrInvalidGeometry, m.ID)
	}
	if m.Material == nil {
		return fmt.Errorf("%w: member %d", ErrNoMaterial, m.ID)
	}
	return nil
}

// Stiffness returns the 4x4 member stiffness in global coordinates, ordered
// (u1x, u1y, u2x, u2y):
//
//	K = Tᵀ · (EA/L) · [[1, -1], [-1, 1]] · T,  T = [[c, s, 0, 0], [0, 0, c, s]]
func (m *Member) Stiffness() ([4][4]float64, error) {
	var k [4][4]float64
	if err := m.Validate(); err != nil {
		return k, err
	}

	rigidity := m.Material.Rigidity() / m.Length()
	sin, cos := m.SinCos()
	axis := [4]float64{cos, sin, -cos, -sin}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			k[i][j] = rigidity * axis[i] * axis[j]
		}
	}
	return k, nil
}

// Deformation returns the axial strain produced by end displacements u1 and u2,
// positive in elongation
func (m *Member) Deformation(u1, u2 [2]float64) float64 {
	sin, cos := m.SinCos()
	return (-cos*u1[0] - sin*u1[1] + cos*u2[0] + sin*u2[1]) / m.Length()
}

func (m *Member) String() string {
	return fmt.Sprintf("M%d(P%d-P%d)", m.ID, m.P1.ID, m.P2.ID)
}
