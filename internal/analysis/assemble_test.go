package analysis

import (
	"testing"

	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/alexiusacademia/gotruss/internal/truss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAssemble_Bar(t *testing.T) {
	k, err := Assemble(bar(t))
	require.NoError(t, err)

	r, c := k.Dims()
	require.Equal(t, 6, r)
	require.Equal(t, 6, c)

	const ea = 200e6 * 0.02
	want := mat.NewSymDense(6, []float64{
		ea, 0, -ea, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		-ea, 0, 2 * ea, 0, -ea, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, -ea, 0, ea, 0,
		0, 0, 0, 0, 0, 0,
	})
	assert.True(t, mat.EqualApprox(want, k, 1e-6), "K =\n%v", mat.Formatted(k))
}

func TestAssemble_Symmetric(t *testing.T) {
	k, err := Assemble(shelf(t))
	require.NoError(t, err)

	n := k.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			assert.Equal(t, k.At(i, j), k.At(j, i))
		}
	}
}

func TestAssemble_Empty(t *testing.T) {
	k, err := Assemble(truss.New())
	require.NoError(t, err)
	assert.Equal(t, 0, k.SymmetricDim())
	assert.Equal(t, 0, LoadVector(truss.New(), 1).Len())
}

func TestLoadVector(t *testing.T) {
	s := bar(t)
	s.Points()[1].ApplyForce(0, -10)

	f := LoadVector(s, 0.5)
	assert.Equal(t, []float64{0, 0, 0, -5, 25000, 0}, f.RawVector().Data)
}

func TestMask(t *testing.T) {
	s := bar(t)
	m := NewMask(s)

	assert.Equal(t, 6, m.Len())
	assert.Equal(t, []bool{true, true, false, true, false, true}, m.Restrained())
	assert.Equal(t, []bool{false, false, true, false, true, false}, m.Free())
	assert.Equal(t, []int{2, 4}, m.FreeIndices())
	assert.Equal(t, []int{0, 1, 3, 5}, m.RestrainedIndices())
	require.NoError(t, m.CheckRestraints())

	k, err := Assemble(s)
	require.NoError(t, err)
	kff := m.ReduceMatrix(k)
	const ea = 200e6 * 0.02
	assert.True(t, mat.EqualApprox(mat.NewSymDense(2, []float64{2 * ea, -ea, -ea, ea}), kff, 1e-6))

	ff := m.ReduceVector(LoadVector(s, 1))
	assert.Equal(t, []float64{0, 50000}, ff.RawVector().Data)

	u := m.Expand(mat.NewVecDense(2, []float64{7, 8}))
	assert.Equal(t, []float64{0, 0, 7, 0, 8, 0}, u.RawVector().Data)
}

func TestMask_AllRestrained(t *testing.T) {
	s := truss.New().SetMaterial(truss.MustMaterial(1, 1))
	_, err := s.MakeMember(s.MakePoint(0, 0).Pin(), s.MakePoint(1, 0).Pin())
	require.NoError(t, err)

	m := NewMask(s)
	assert.Empty(t, m.FreeIndices())
	assert.Equal(t, 0, m.ReduceMatrix(mat.NewSymDense(4, nil)).SymmetricDim())
	assert.Equal(t, 0, m.ReduceVector(mat.NewVecDense(4, nil)).Len())
	assert.Equal(t, 4, m.Expand(&mat.VecDense{}).Len())
}

func TestMask_CheckRestraintsIndependence(t *testing.T) {
	triangle := func(off float64, restrain func(a, b, c *truss.Point)) Mask {
		s := truss.New()
		a := s.MakePoint(off, off)
		b := s.MakePoint(off+2, off)
		c := s.MakePoint(off+1, off+1)
		restrain(a, b, c)
		return NewMask(s)
	}

	tests := []struct {
		name     string
		restrain func(a, b, c *truss.Point)
		singular bool
	}{
		{"pin and vertical roller", func(a, b, _ *truss.Point) { a.Pin(); b.RestrainY() }, false},
		{"pin and horizontal roller in line", func(a, b, _ *truss.Point) { a.Pin(); b.RestrainX() }, true},
		{"pin and horizontal roller off line", func(a, _, c *truss.Point) { a.Pin(); c.RestrainX() }, false},
		{"parallel vertical rollers", func(a, b, c *truss.Point) { a.RestrainY(); b.RestrainY(); c.RestrainY(); a.RestrainX() }, false},
		{"concurrent rollers", func(a, b, c *truss.Point) { a.RestrainX(); a.RestrainY(); b.RestrainX(); c.RestrainY() }, false},
		{"two pins", func(a, b, _ *truss.Point) { a.Pin(); b.Pin() }, false},
	}
	for _, tt := range tests {
		for _, off := range []float64{0, 1e5} {
			m := triangle(off, tt.restrain)
			err := m.CheckRestraints()
			if tt.singular {
				assert.ErrorIs(t, err, solver.ErrSingular, "%s at offset %g", tt.name, off)
			} else {
				assert.NoError(t, err, "%s at offset %g", tt.name, off)
			}
		}
	}
}

func TestApplyDisplacements_SharedJointMovesOnce(t *testing.T) {
	s := bar(t)
	u := mat.NewVecDense(6, []float64{0, 0, 0.5, 0, 1, 0})
	ApplyDisplacements(s, u)

	// point 2 ends both members but moves by its own displacement only
	assert.Equal(t, []float64{0, 1.5, 3}, []float64{s.Points()[0].X, s.Points()[1].X, s.Points()[2].X})
}
