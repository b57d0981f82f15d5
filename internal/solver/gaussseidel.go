package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultMaxSweeps bounds Gauss-Seidel when MaxSweeps is zero
const DefaultMaxSweeps = 100000

// Sweep summarises one pass of Gauss-Seidel over the unconverged unknowns
type Sweep struct {
	Number    int     // 1-based sweep count
	MaxChange float64 // largest relative change seen in the sweep
	Converged int     // unknowns frozen so far
	Total     int     // number of unknowns
}

// GaussSeidel relaxes each unknown in place, in round-robin order, using the
// latest value of every other unknown. An unknown whose relative change drops
// below the tolerance is written one last time and then frozen.
type GaussSeidel struct {
	// MaxSweeps bounds the number of passes. Zero means DefaultMaxSweeps.
	MaxSweeps int

	// OnSweep, when set, is called after every pass
	OnSweep func(Sweep)
}

// Solve implements Solver
func (g *GaussSeidel) Solve(ctx context.Context, k mat.Symmetric, f mat.Vector, tol float64) (*mat.VecDense, error) {
	n, err := checkSystem(k, f)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return &mat.VecDense{}, nil
	}
	if tol <= 0 {
		tol = DefaultTolerance
	}
	maxSweeps := g.MaxSweeps
	if maxSweeps <= 0 {
		maxSweeps = DefaultMaxSweeps
	}

	x := make([]float64, n)
	converged := make([]bool, n)
	remaining := n

	for sweep := 1; sweep <= maxSweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		maxChange := 0.0
		for i := 0; i < n; i++ {
			if converged[i] {
				continue
			}

			xi := g.relax(k, f, x, i)
			if !finite(xi) {
				return nil, fmt.Errorf("%w: non-finite value for unknown %d", ErrSingular, i)
			}

			change, determined := relativeChange(x[i], xi)
			if determined && change < tol {
				converged[i] = true
				remaining--
			}
			if xi != x[i] {
				changed = true
			}
			if determined && change > maxChange {
				maxChange = change
			}
			x[i] = xi
		}

		// A pass that changed nothing is a fixed point: the iterate is exact
		if !changed && remaining > 0 {
			for i := range converged {
				converged[i] = true
			}
			remaining = 0
		}

		if g.OnSweep != nil {
			g.OnSweep(Sweep{Number: sweep, MaxChange: maxChange, Converged: n - remaining, Total: n})
		}
		if remaining == 0 {
			return mat.NewVecDense(n, x), nil
		}
	}

	last := mat.NewVecDense(n, x)
	return nil, &ConvergenceError{
		Method:     NameGaussSeidel,
		Iterations: maxSweeps,
		Residual:   Residual(k, last, f),
		Last:       last,
	}
}

// relax returns the Gauss-Seidel update of unknown i
func (g *GaussSeidel) relax(k mat.Symmetric, f mat.Vector, x []float64, i int) float64 {
	sum := 0.0
	for j, xj := range x {
		if j != i {
			sum += k.At(i, j) * xj
		}
	}
	return (f.AtVec(i) - sum) / k.At(i, i)
}

// relativeChange returns |new - old| / |new|. The ratio is undetermined when
// both values are zero; such an unknown is not frozen on its own.
func relativeChange(old, new float64) (float64, bool) {
	if new == old {
		if new == 0 {
			return 0, false
		}
		return 0, true
	}
	return math.Abs((new - old) / new), true
}
