package analysis

import (
	"fmt"

	"github.com/alexiusacademia/gotruss/internal/truss"
	"gonum.org/v1/gonum/mat"
)

// dofX returns the row of the x translation of the point with the given id.
// The y translation follows at dofX(id)+1.
func dofX(id int) int {
	return 2 * (id - 1)
}

// Assemble builds the 2N x 2N global stiffness matrix by accumulating the
// stiffness of every member into the rows and columns of its two endpoints.
func Assemble(s *truss.Structure) (*mat.SymDense, error) {
	n := s.NumDOF()
	if n == 0 {
		return &mat.SymDense{}, nil
	}
	k := mat.NewSymDense(n, nil)

	for _, m := range s.Members() {
		ke, err := m.Stiffness()
		if err != nil {
			return nil, fmt.Errorf("assembling member %d: %w", m.ID, err)
		}

		i1, i2 := dofX(m.P1.ID), dofX(m.P2.ID)
		idx := [4]int{i1, i1 + 1, i2, i2 + 1}

		// SetSym writes both triangles, so visit each pair once
		for a := 0; a < 4; a++ {
			for b := a; b < 4; b++ {
				i, j := idx[a], idx[b]
				k.SetSym(i, j, k.At(i, j)+ke[a][b])
			}
		}
	}

	return k, nil
}

// LoadVector returns the 2N global load vector with every resultant point
// load multiplied by scale
func LoadVector(s *truss.Structure, scale float64) *mat.VecDense {
	return FactoredLoadVector(s, scale, nil)
}

// FactoredLoadVector is LoadVector with each load first multiplied by the
// factor of its load case. A nil factor leaves every load unfactored.
func FactoredLoadVector(s *truss.Structure, scale float64, factor func(truss.LoadCase) float64) *mat.VecDense {
	n := s.NumDOF()
	if n == 0 {
		return &mat.VecDense{}
	}
	f := mat.NewVecDense(n, nil)

	for _, p := range s.Points() {
		r := p.Resultant()
		if factor != nil {
			r = p.FactoredResultant(factor)
		}
		r = r.Scaled(scale)
		i := dofX(p.ID)
		f.SetVec(i, r.X)
		f.SetVec(i+1, r.Y)
	}

	return f
}
