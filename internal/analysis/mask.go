package analysis

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/alexiusacademia/gotruss/internal/truss"
	"gonum.org/v1/gonum/mat"
)

// Mask partitions the degrees of freedom into restrained and free sets,
// using the same ordering as the global matrix
type Mask struct {
	restrained []bool

	// coordinates of the owning point, per DOF
	at [][2]float64
}

// NewMask reads the constraint and position of every point
func NewMask(s *truss.Structure) Mask {
	restrained := make([]bool, s.NumDOF())
	at := make([][2]float64, s.NumDOF())
	for _, p := range s.Points() {
		i := dofX(p.ID)
		restrained[i] = p.Constraint.X
		restrained[i+1] = p.Constraint.Y
		at[i] = [2]float64{p.X, p.Y}
		at[i+1] = at[i]
	}
	return Mask{restrained: restrained, at: at}
}

// Len returns the total number of degrees of freedom
func (m Mask) Len() int { return len(m.restrained) }

// Restrained returns a copy of the mask, true for restrained DOFs
func (m Mask) Restrained() []bool {
	out := make([]bool, len(m.restrained))
	copy(out, m.restrained)
	return out
}

// Free returns the complement of Restrained
func (m Mask) Free() []bool {
	out := make([]bool, len(m.restrained))
	for i, r := range m.restrained {
		out[i] = !r
	}
	return out
}

// FreeIndices returns the indices of free DOFs in ascending order
func (m Mask) FreeIndices() []int {
	return m.indices(false)
}

// RestrainedIndices returns the indices of restrained DOFs in ascending order
func (m Mask) RestrainedIndices() []int {
	return m.indices(true)
}

func (m Mask) indices(restrained bool) []int {
	var idx []int
	for i, r := range m.restrained {
		if r == restrained {
			idx = append(idx, i)
		}
	}
	return idx
}

// ReduceMatrix selects K[free, free]
func (m Mask) ReduceMatrix(k mat.Symmetric) *mat.SymDense {
	free := m.FreeIndices()
	if len(free) == 0 {
		return &mat.SymDense{}
	}
	kff := mat.NewSymDense(len(free), nil)
	for a, i := range free {
		for b := a; b < len(free); b++ {
			kff.SetSym(a, b, k.At(i, free[b]))
		}
	}
	return kff
}

// ReduceVector selects f[free]
func (m Mask) ReduceVector(f mat.Vector) *mat.VecDense {
	free := m.FreeIndices()
	if len(free) == 0 {
		return &mat.VecDense{}
	}
	ff := mat.NewVecDense(len(free), nil)
	for a, i := range free {
		ff.SetVec(a, f.AtVec(i))
	}
	return ff
}

// Expand scatters a free-DOF vector back to full length, with zeros at the
// restrained DOFs
func (m Mask) Expand(x mat.Vector) *mat.VecDense {
	if m.Len() == 0 {
		return &mat.VecDense{}
	}
	u := mat.NewVecDense(m.Len(), nil)
	for a, i := range m.FreeIndices() {
		u.SetVec(i, x.AtVec(a))
	}
	return u
}

// rankTolerance is the smallest singular value of the rigid body matrix,
// relative to the largest, that still counts as independent
const rankTolerance = 1e-9

// CheckRestraints rejects restraint sets that cannot remove the three rigid
// body motions of a plane structure: fewer than three restrained DOFs,
// restraints acting in a single direction only, or restraints that are
// dependent, such as a roller whose line of action passes through a pin.
func (m Mask) CheckRestraints() error {
	var nx, ny int
	for i, r := range m.restrained {
		if !r {
			continue
		}
		if i%2 == 0 {
			nx++
		} else {
			ny++
		}
	}

	if nx+ny < 3 {
		return fmt.Errorf("%w: %d restrained DOFs, at least 3 are needed", solver.ErrSingular, nx+ny)
	}
	if nx == 0 {
		return fmt.Errorf("%w: no restraint in the x direction", solver.ErrSingular)
	}
	if ny == 0 {
		return fmt.Errorf("%w: no restraint in the y direction", solver.ErrSingular)
	}
	if rank := m.restraintRank(); rank < 3 {
		return fmt.Errorf("%w: restraints are not independent (rank %d), the structure can still move as a rigid body",
			solver.ErrSingular, rank)
	}
	return nil
}

// restraintRank returns the rank of the matrix whose rows are the rigid body
// modes (translation x, translation y, rotation) seen by each restrained DOF:
// [1, 0, -y] for an x restraint and [0, 1, x] for a y restraint. Positions are
// taken about the centroid of the restrained points and divided by their
// extent, so the rank does not depend on units or placement.
func (m Mask) restraintRank() int {
	idx := m.RestrainedIndices()

	var cx, cy float64
	for _, i := range idx {
		cx += m.at[i][0]
		cy += m.at[i][1]
	}
	cx /= float64(len(idx))
	cy /= float64(len(idx))

	var extent float64
	for _, i := range idx {
		extent = math.Max(extent, math.Hypot(m.at[i][0]-cx, m.at[i][1]-cy))
	}
	if extent == 0 {
		extent = 1
	}

	modes := mat.NewDense(len(idx), 3, nil)
	for r, i := range idx {
		x := (m.at[i][0] - cx) / extent
		y := (m.at[i][1] - cy) / extent
		if i%2 == 0 {
			modes.SetRow(r, []float64{1, 0, -y})
		} else {
			modes.SetRow(r, []float64{0, 1, x})
		}
	}

	var svd mat.SVD
	if !svd.Factorize(modes, mat.SVDNone) {
		return 0
	}
	values := svd.Values(nil)
	rank := 0
	for _, v := range values {
		if v > rankTolerance*values[0] {
			rank++
		}
	}
	return rank
}
