package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ConjugateGradient solves symmetric positive definite systems. It stops when
// the relative residual |r|/|f| falls below the tolerance.
type ConjugateGradient struct {
	// MaxIterations bounds the iteration count. Zero means 10·n (at least 100).
	MaxIterations int
}

// Solve implements Solver
func (c *ConjugateGradient) Solve(ctx context.Context, k mat.Symmetric, f mat.Vector, tol float64) (*mat.VecDense, error) {
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
	maxIter := c.MaxIterations
	if maxIter <= 0 {
		maxIter = max(10*n, 100)
	}

	x := mat.NewVecDense(n, nil)
	r := mat.VecDenseCopyOf(f)
	fNorm := mat.Norm(r, 2)
	if fNorm == 0 {
		return x, nil
	}

	p := mat.VecDenseCopyOf(r)
	ap := mat.NewVecDense(n, nil)
	rs := mat.Dot(r, r)

	for it := 1; it <= maxIter; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ap.MulVec(k, p)
		pAp := mat.Dot(p, ap)
		if !(pAp > 0) {
			return nil, fmt.Errorf("%w: matrix is not positive definite (pᵀKp = %g)", ErrSingular, pAp)
		}

		alpha := rs / pAp
		x.AddScaledVec(x, alpha, p)
		r.AddScaledVec(r, -alpha, ap)

		rsNew := mat.Dot(r, r)
		if !finite(rsNew) {
			return nil, fmt.Errorf("%w: non-finite residual", ErrSingular)
		}
		if math.Sqrt(rsNew)/fNorm < tol {
			return x, nil
		}

		p.AddScaledVec(r, rsNew/rs, p)
		rs = rsNew
	}

	return nil, &ConvergenceError{
		Method:     NameConjugateGradient,
		Iterations: maxIter,
		Residual:   Residual(k, x, f),
		Last:       x,
	}
}
