// Package solver provides iterative methods for the reduced stiffness system
// K·x = F of a truss. Solvers work on any symmetric matrix and never form an
// explicit inverse.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance is the relative convergence tolerance used when none is given
const DefaultTolerance = 1e-5

var (
	// ErrSingular is returned when the system has no unique solution:
	// a zero diagonal term, a non-finite iterate or an under-restrained structure
	ErrSingular = errors.New("unsolvable system")

	// ErrNotConverged is matched by *ConvergenceError
	ErrNotConverged = errors.New("solver did not converge")
)

// Solver solves K·x = f for x
type Solver interface {
	Solve(ctx context.Context, k mat.Symmetric, f mat.Vector, tol float64) (*mat.VecDense, error)
}

// ConvergenceError reports an iteration budget exhausted before every unknown
// met the tolerance. Last holds the final iterate.
type ConvergenceError struct {
	Method     string
	Iterations int
	Residual   float64 // max |K·x - f| of the last iterate
	Last       *mat.VecDense
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: no convergence after %d iterations (residual %.3e)", e.Method, e.Iterations, e.Residual)
}

// Is makes errors.Is(err, ErrNotConverged) hold
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrNotConverged
}

// Solver names accepted by New
const (
	NameGaussSeidel       = "gauss-seidel"
	NameConjugateGradient = "conjugate-gradient"
)

var registry = map[string]func(maxIterations int) Solver{
	NameGaussSeidel: func(maxIterations int) Solver {
		return &GaussSeidel{MaxSweeps: maxIterations}
	},
	NameConjugateGradient: func(maxIterations int) Solver {
		return &ConjugateGradient{MaxIterations: maxIterations}
	},
}

// New returns the solver registered under name. A maxIterations of zero keeps
// the solver's default budget.
func New(name string, maxIterations int) (Solver, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver %q (available: %v)", name, Names())
	}
	return build(maxIterations), nil
}

// Names lists the registered solver names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkSystem validates dimensions and rejects zero diagonal terms
func checkSystem(k mat.Symmetric, f mat.Vector) (int, error) {
	n := k.SymmetricDim()
	if f.Len() != n {
		return 0, fmt.Errorf("dimension mismatch: matrix is %dx%d, load vector has %d entries", n, n, f.Len())
	}
	for i := 0; i < n; i++ {
		if k.At(i, i) == 0 {
			return 0, fmt.Errorf("%w: zero stiffness on unknown %d", ErrSingular, i)
		}
	}
	return n, nil
}

// Residual returns max |K·x - f|
func Residual(k mat.Symmetric, x, f mat.Vector) float64 {
	n := k.SymmetricDim()
	if n == 0 {
		return 0
	}
	var kx mat.VecDense
	kx.MulVec(k, x)
	kx.SubVec(&kx, f)
	return mat.Norm(&kx, math.Inf(1))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
