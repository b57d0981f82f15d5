package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// spd returns a small diagonally dominant system with solution (1, 2, 3)
func spd() (*mat.SymDense, *mat.VecDense, []float64) {
	k := mat.NewSymDense(3, []float64{
		4, -1, 0,
		-1, 4, -1,
		0, -1, 4,
	})
	want := []float64{1, 2, 3}
	var f mat.VecDense
	f.MulVec(k, mat.NewVecDense(3, want))
	return k, &f, want
}

func solvers() map[string]Solver {
	return map[string]Solver{
		NameGaussSeidel:       &GaussSeidel{},
		NameConjugateGradient: &ConjugateGradient{},
	}
}

func TestSolvers_SolveSPD(t *testing.T) {
	for name, s := range solvers() {
		t.Run(name, func(t *testing.T) {
			k, f, want := spd()
			x, err := s.Solve(context.Background(), k, f, 1e-10)
			require.NoError(t, err)
			require.Equal(t, 3, x.Len())
			for i, w := range want {
				assert.InDelta(t, w, x.AtVec(i), 1e-6)
			}
			assert.Less(t, Residual(k, x, f), 1e-6)
		})
	}
}

func TestSolvers_ZeroLoadIsExactlyZero(t *testing.T) {
	for name, s := range solvers() {
		t.Run(name, func(t *testing.T) {
			k, _, _ := spd()
			x, err := s.Solve(context.Background(), k, mat.NewVecDense(3, nil), DefaultTolerance)
			require.NoError(t, err)
			for i := 0; i < 3; i++ {
				assert.Equal(t, 0.0, x.AtVec(i))
			}
		})
	}
}

func TestSolvers_ZeroDiagonal(t *testing.T) {
	k := mat.NewSymDense(2, []float64{
		1, 0,
		0, 0,
	})
	f := mat.NewVecDense(2, []float64{1, 1})
	for name, s := range solvers() {
		t.Run(name, func(t *testing.T) {
			_, err := s.Solve(context.Background(), k, f, DefaultTolerance)
			assert.ErrorIs(t, err, ErrSingular)
		})
	}
}

func TestSolvers_DimensionMismatch(t *testing.T) {
	k, _, _ := spd()
	for name, s := range solvers() {
		t.Run(name, func(t *testing.T) {
			_, err := s.Solve(context.Background(), k, mat.NewVecDense(2, []float64{1, 1}), DefaultTolerance)
			assert.Error(t, err)
		})
	}
}

func TestSolvers_Empty(t *testing.T) {
	for name, s := range solvers() {
		t.Run(name, func(t *testing.T) {
			x, err := s.Solve(context.Background(), &mat.SymDense{}, &mat.VecDense{}, DefaultTolerance)
			require.NoError(t, err)
			assert.Equal(t, 0, x.Len())
		})
	}
}

func TestGaussSeidel_ConvergenceError(t *testing.T) {
	k, f, _ := spd()
	gs := &GaussSeidel{MaxSweeps: 2}

	_, err := gs.Solve(context.Background(), k, f, 1e-14)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConverged))

	var ce *ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2, ce.Iterations)
	assert.Equal(t, NameGaussSeidel, ce.Method)
	assert.Equal(t, 3, ce.Last.Len())
	assert.Greater(t, ce.Residual, 0.0)
}

func TestGaussSeidel_SingularSystemDoesNotHang(t *testing.T) {
	// Rank deficient: a free bar with opposite loads has no unique solution
	k := mat.NewSymDense(2, []float64{
		1, -1,
		-1, 1,
	})
	f := mat.NewVecDense(2, []float64{1, 0})
	gs := &GaussSeidel{MaxSweeps: 1000}

	_, err := gs.Solve(context.Background(), k, f, DefaultTolerance)
	assert.Error(t, err)
}

func TestGaussSeidel_OnSweep(t *testing.T) {
	k, f, _ := spd()
	var sweeps []Sweep
	gs := &GaussSeidel{OnSweep: func(s Sweep) { sweeps = append(sweeps, s) }}

	_, err := gs.Solve(context.Background(), k, f, 1e-8)
	require.NoError(t, err)
	require.NotEmpty(t, sweeps)

	last := sweeps[len(sweeps)-1]
	assert.Equal(t, last.Total, last.Converged)
	for i, s := range sweeps {
		assert.Equal(t, i+1, s.Number)
	}
}

func TestGaussSeidel_Cancelled(t *testing.T) {
	k, f, _ := spd()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&GaussSeidel{}).Solve(ctx, k, f, DefaultTolerance)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGaussSeidel_Deterministic(t *testing.T) {
	k, f, _ := spd()
	a, err := (&GaussSeidel{}).Solve(context.Background(), k, f, DefaultTolerance)
	require.NoError(t, err)
	b, err := (&GaussSeidel{}).Solve(context.Background(), k, f, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, a.RawVector().Data, b.RawVector().Data)
}

func TestConjugateGradient_NotPositiveDefinite(t *testing.T) {
	k := mat.NewSymDense(2, []float64{
		1, 2,
		2, 1,
	})
	f := mat.NewVecDense(2, []float64{1, -1})

	_, err := (&ConjugateGradient{}).Solve(context.Background(), k, f, DefaultTolerance)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestRelativeChange(t *testing.T) {
	tests := []struct {
		name           string
		old, new       float64
		want           float64
		wantDetermined bool
	}{
		{"both zero", 0, 0, 0, false},
		{"unchanged", 2, 2, 0, true},
		{"from zero", 0, 1, 1, true},
		{"to zero", 1, 0, 0, true},
		{"halved", 2, 1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, determined := relativeChange(tt.old, tt.new)
			assert.Equal(t, tt.wantDetermined, determined)
			if tt.name == "to zero" {
				assert.True(t, got > 1e300)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	gs, err := New(NameGaussSeidel, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, gs.(*GaussSeidel).MaxSweeps)

	cg, err := New(NameConjugateGradient, 0)
	require.NoError(t, err)
	assert.IsType(t, &ConjugateGradient{}, cg)

	_, err = New("jacobi", 0)
	assert.Error(t, err)

	assert.Equal(t, []string{NameConjugateGradient, NameGaussSeidel}, Names())
}
