package analysis

import (
	"github.com/alexiusacademia/gotruss/internal/truss"
	"gonum.org/v1/gonum/mat"
)

// endDisplacements returns the (ux, uy) pairs of both member ends
func endDisplacements(m *truss.Member, u mat.Vector) (u1, u2 [2]float64) {
	i1, i2 := dofX(m.P1.ID), dofX(m.P2.ID)
	u1 = [2]float64{u.AtVec(i1), u.AtVec(i1 + 1)}
	u2 = [2]float64{u.AtVec(i2), u.AtVec(i2 + 1)}
	return u1, u2
}

// ApplyDisplacements moves every point of s by its entry in u.
// Each point moves once, however many members share it.
func ApplyDisplacements(s *truss.Structure, u mat.Vector) {
	for _, p := range s.Points() {
		i := dofX(p.ID)
		p.X += u.AtVec(i)
		p.Y += u.AtVec(i + 1)
	}
}

// RecoverForces returns f with its restrained entries replaced by (K·u)
func RecoverForces(k mat.Symmetric, u, f mat.Vector, mask Mask) []float64 {
	n := mask.Len()
	forces := make([]float64, n)
	if n == 0 {
		return forces
	}

	var ku mat.VecDense
	ku.MulVec(k, u)

	for i, restrained := range mask.restrained {
		if restrained {
			forces[i] = ku.AtVec(i)
		} else {
			forces[i] = f.AtVec(i)
		}
	}
	return forces
}

// Reactions extracts the support reaction of every constrained point. The
// load applied directly on a restrained DOF is removed from K·u, so the
// reactions and the applied loads sum to zero.
func Reactions(s *truss.Structure, forces []float64, f mat.Vector) []Reaction {
	var reactions []Reaction
	for _, p := range s.Points() {
		if !p.Constraint.Any() {
			continue
		}
		i := dofX(p.ID)
		r := Reaction{PointID: p.ID, Constraint: p.Constraint}
		if p.Constraint.X {
			r.X = forces[i] - f.AtVec(i)
		}
		if p.Constraint.Y {
			r.Y = forces[i+1] - f.AtVec(i+1)
		}
		reactions = append(reactions, r)
	}
	return reactions
}

// Deformations returns the axial strain of each member
func Deformations(s *truss.Structure, u mat.Vector) []float64 {
	members := s.Members()
	out := make([]float64, len(members))
	for i, m := range members {
		u1, u2 := endDisplacements(m, u)
		out[i] = m.Deformation(u1, u2)
	}
	return out
}

// Tensions multiplies each deformation by the member elasticity
func Tensions(s *truss.Structure, deformation []float64) []float64 {
	members := s.Members()
	out := make([]float64, len(members))
	for i, m := range members {
		out[i] = deformation[i] * m.Material.Elasticity()
	}
	return out
}

// MemberForces multiplies each tension by the member area
func MemberForces(s *truss.Structure, tension []float64) []float64 {
	members := s.Members()
	out := make([]float64, len(members))
	for i, m := range members {
		out[i] = tension[i] * m.Material.Area()
	}
	return out
}
