// Package analysis runs the direct stiffness method on a truss: assembly,
// restraint masking, the iterative solve and recovery of reactions and member
// quantities.
package analysis

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/alexiusacademia/gotruss/internal/logger"
	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/alexiusacademia/gotruss/internal/truss"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Options tune an analysis
type Options struct {
	Tolerance float64
	Solver    solver.Solver
	LoadScale float64
	Factors   func(truss.LoadCase) float64 // nil leaves loads unfactored
	Workers   int
	Logger    logger.Logger
}

// Option modifies Options
type Option func(*Options)

// WithTolerance sets the solver convergence tolerance
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// WithSolver replaces the default Gauss-Seidel solver
func WithSolver(s solver.Solver) Option {
	return func(o *Options) { o.Solver = s }
}

// WithLoadScale multiplies every load by c before assembly
func WithLoadScale(c float64) Option {
	return func(o *Options) { o.LoadScale = c }
}

// WithLoadFactors multiplies each load by the factor of its load case
func WithLoadFactors(factor func(truss.LoadCase) float64) Option {
	return func(o *Options) { o.Factors = factor }
}

// WithWorkers bounds the concurrency of SolveScaled
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithLogger sets the logger used for stage diagnostics
func WithLogger(l logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func newOptions(opts []Option) Options {
	o := Options{
		Tolerance: solver.DefaultTolerance,
		Solver:    &solver.GaussSeidel{},
		LoadScale: 1,
		Workers:   runtime.GOMAXPROCS(0),
		Logger:    logger.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o
}

// Solve analyses s and returns the result. s itself is never modified.
func Solve(ctx context.Context, s *truss.Structure, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	work := s.Clone()
	start := time.Now()
	k, err := Assemble(work)
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("assembled stiffness matrix",
		logger.F("points", work.NumPoints()),
		logger.F("members", work.NumMembers()),
		logger.F("elapsed", time.Since(start)))

	return run(ctx, work, k, o.LoadScale, o.Factors, o)
}

// SolveScaled analyses s once per load scale, concurrently. The stiffness
// matrix is assembled once and shared read-only; every run gets its own copy
// of the structure. Results follow the order of scales.
func SolveScaled(ctx context.Context, s *truss.Structure, scales []float64, opts ...Option) ([]*Result, error) {
	o := newOptions(opts)
	return solveEach(ctx, s, len(scales), o, func(i int) (float64, func(truss.LoadCase) float64, string) {
		return scales[i], o.Factors, fmt.Sprintf("load scale %g", scales[i])
	})
}

// SolveFactored analyses s once per set of load case factors, concurrently,
// the way SolveScaled does. Results follow the order of factors.
func SolveFactored(ctx context.Context, s *truss.Structure, factors []func(truss.LoadCase) float64, opts ...Option) ([]*Result, error) {
	o := newOptions(opts)
	return solveEach(ctx, s, len(factors), o, func(i int) (float64, func(truss.LoadCase) float64, string) {
		return o.LoadScale, factors[i], fmt.Sprintf("load set %d", i+1)
	})
}

// solveEach runs n analyses sharing one stiffness matrix, bounded by
// o.Workers. job returns the load scale, load factors and an error label of
// analysis i.
func solveEach(ctx context.Context, s *truss.Structure, n int, o Options,
	job func(i int) (float64, func(truss.LoadCase) float64, string)) ([]*Result, error) {
	base := s.Clone()
	k, err := Assemble(base)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			scale, factors, label := job(i)
			r, err := run(ctx, base.Clone(), k, scale, factors, o)
			if err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// run takes work through masking, solving and post-processing. work must be
// a private copy: its points are displaced in place.
func run(ctx context.Context, work *truss.Structure, k *mat.SymDense, scale float64,
	factors func(truss.LoadCase) float64, o Options) (*Result, error) {
	log := o.Logger.WithFields(logger.F("scale", scale))

	f := FactoredLoadVector(work, scale, factors)
	mask := NewMask(work)
	if err := mask.CheckRestraints(); err != nil {
		return nil, err
	}

	kff := mask.ReduceMatrix(k)
	ff := mask.ReduceVector(f)
	log.Debug("reduced system", logger.F("free", len(mask.FreeIndices())), logger.F("restrained", len(mask.RestrainedIndices())))

	start := time.Now()
	x, err := o.Solver.Solve(ctx, kff, ff, o.Tolerance)
	if err != nil {
		return nil, err
	}
	residual := solver.Residual(kff, x, ff)
	log.Debug("solved", logger.F("residual", residual), logger.F("elapsed", time.Since(start)))

	u := mask.Expand(x)
	forces := RecoverForces(k, u, f, mask)

	// Member strains use the undeformed axis and length
	deformation := Deformations(work, u)
	tension := Tensions(work, deformation)
	force := MemberForces(work, tension)
	ApplyDisplacements(work, u)

	return &Result{
		structure:     work,
		loadScale:     scale,
		residual:      residual,
		displacements: u.RawVector().Data,
		forces:        forces,
		restrained:    mask.Restrained(),
		deformation:   deformation,
		tension:       tension,
		force:         force,
		reactions:     Reactions(work, forces, f),
	}, nil
}
