package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/alexiusacademia/gotruss/internal/logger"
	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/alexiusacademia/gotruss/internal/truss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = WithLogger(logger.NewSilent())

// bar builds three colinear points joined by two members, pinned at the
// left end, on rollers elsewhere and pulled at the right end
func bar(t *testing.T) *truss.Structure {
	t.Helper()
	s := truss.New().SetMaterial(truss.MustMaterial(200e6, 0.02))
	p1 := s.MakePoint(0, 0).Pin()
	p2 := s.MakePoint(1, 0).RestrainY()
	p3 := s.MakePoint(2, 0).RestrainY()
	p3.ApplyForce(50000, 0)

	_, err := s.MakeMember(p1, p2)
	require.NoError(t, err)
	_, err = s.MakeMember(p2, p3)
	require.NoError(t, err)
	return s
}

// shelf builds a bracket: a horizontal arm held by a strut and a tie, all
// three meeting at a loaded joint
func shelf(t *testing.T) *truss.Structure {
	t.Helper()
	wood := truss.MustMaterial(95e6, 0.02)
	steel := truss.MustMaterial(200e6, 0.01)
	rope := truss.MustMaterial(9e6, 0.001)

	s := truss.New()
	p1 := s.MakePoint(0, 0).Pin()
	p2 := s.MakePoint(1, 0)
	p3 := s.MakePoint(0, -1).Pin()
	p4 := s.MakePoint(0, 2).Pin()
	p2.ApplyForce(0, -50*9.81)

	for _, def := range []struct {
		a, b *truss.Point
		mat  *truss.Material
	}{{p1, p2, wood}, {p2, p3, steel}, {p2, p4, rope}} {
		m, err := s.MakeMember(def.a, def.b)
		require.NoError(t, err)
		m.SetMaterial(def.mat)
	}
	return s
}

func TestSolve_Bar(t *testing.T) {
	s := bar(t)
	res, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)

	// two members in series: 2 · F·L/(E·A)
	ux, uy, err := res.Displacement(3)
	require.NoError(t, err)
	assert.InEpsilon(t, 2*50000*1/(200e6*0.02), ux, 1e-3)
	assert.Equal(t, 0.0, uy)

	ux2, _, err := res.Displacement(2)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.0125, ux2, 1e-3)

	for i, f := range res.MemberForces() {
		assert.InEpsilon(t, 50000, f, 1e-3, "member %d", i+1)
	}
	for i, d := range res.Deformations() {
		assert.InEpsilon(t, 50000/(200e6*0.02), d, 1e-3, "member %d", i+1)
	}
	for i, ten := range res.Tensions() {
		assert.InEpsilon(t, 50000/0.02, ten, 1e-3, "member %d", i+1)
	}

	reactions := res.Reactions()
	require.Len(t, reactions, 3)
	assert.Equal(t, 1, reactions[0].PointID)
	assert.InEpsilon(t, -50000, reactions[0].X, 1e-3)
	assert.Equal(t, 0.0, reactions[1].X, "x is free at a roller")

	// displaced geometry
	p3, err := res.Structure().Point(3)
	require.NoError(t, err)
	assert.InEpsilon(t, 2.025, p3.X, 1e-5)
}

func TestSolve_SingleAxialMember(t *testing.T) {
	const (
		E = 70e6
		A = 0.005
		L = 3.0
		F = -12000.0 // compression
	)
	s := truss.New().SetMaterial(truss.MustMaterial(E, A))
	p1 := s.MakePoint(0, 0).Pin()
	p2 := s.MakePoint(L, 0).RestrainY()
	p2.ApplyForce(F, 0)
	_, err := s.MakeMember(p1, p2)
	require.NoError(t, err)

	res, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)

	ux, _, err := res.Displacement(2)
	require.NoError(t, err)
	assert.InEpsilon(t, F*L/(E*A), ux, 1e-6)
	assert.InEpsilon(t, F, res.MemberForces()[0], 1e-6)
}

func TestSolve_ZeroLoadIsExactlyZero(t *testing.T) {
	s := shelf(t)
	for _, p := range s.Points() {
		for _, l := range p.Loads() {
			l.X, l.Y = 0, 0
		}
	}

	res, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)
	for i, u := range res.Displacements() {
		assert.Equal(t, 0.0, u, "dof %d", i)
	}
	for _, f := range res.MemberForces() {
		assert.Equal(t, 0.0, f)
	}
}

func TestSolve_GlobalEquilibrium(t *testing.T) {
	for name, build := range map[string]func(*testing.T) *truss.Structure{"bar": bar, "shelf": shelf} {
		t.Run(name, func(t *testing.T) {
			s := build(t)
			res, err := Solve(context.Background(), s, quiet, WithTolerance(1e-9))
			require.NoError(t, err)

			var sumX, sumY, scale float64
			for _, p := range s.Points() {
				r := p.Resultant()
				sumX += r.X
				sumY += r.Y
				scale = math.Max(scale, r.Norm())
			}
			for _, r := range res.Reactions() {
				sumX += r.X
				sumY += r.Y
			}
			assert.InDelta(t, 0, sumX, 1e-6*scale)
			assert.InDelta(t, 0, sumY, 1e-6*scale)
		})
	}
}

func TestSolve_Shelf(t *testing.T) {
	res, err := Solve(context.Background(), shelf(t), quiet, WithTolerance(1e-9))
	require.NoError(t, err)

	forces := res.MemberForces()
	require.Len(t, forces, 3)

	// the load hangs from the tie (tension) and pushes into the strut (compression)
	assert.Greater(t, forces[2], 0.0, "rope")
	assert.Less(t, forces[1], 0.0, "steel strut")

	// vertical equilibrium at the loaded joint: the inclined strut and the
	// vertical components of the tie carry the 490.5 N load
	sin2 := -1 / math.Sqrt2 // strut from (1,0) to (0,-1)
	sin3 := 2 / math.Sqrt(5) // tie from (1,0) to (0,2)
	assert.InDelta(t, 50*9.81, forces[1]*sin2+forces[2]*sin3, 1e-3)
}

func TestSolve_Deterministic(t *testing.T) {
	s := shelf(t)
	a, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)
	b, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)

	assert.Equal(t, a.Displacements(), b.Displacements())
	assert.Equal(t, a.MemberForces(), b.MemberForces())
	assert.Equal(t, a.Reactions(), b.Reactions())
}

func TestSolve_Linearity(t *testing.T) {
	s := shelf(t)
	base, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)
	doubled, err := Solve(context.Background(), s, quiet, WithLoadScale(2))
	require.NoError(t, err)

	pairs := [][2][]float64{
		{base.Displacements(), doubled.Displacements()},
		{base.Forces(), doubled.Forces()},
		{base.Deformations(), doubled.Deformations()},
		{base.Tensions(), doubled.Tensions()},
		{base.MemberForces(), doubled.MemberForces()},
	}
	for _, p := range pairs {
		require.Equal(t, len(p[0]), len(p[1]))
		for i := range p[0] {
			assert.InDelta(t, 2*p[0][i], p[1][i], 1e-12*math.Max(1, math.Abs(p[1][i])))
		}
	}
	for i, r := range base.Reactions() {
		d := doubled.Reactions()[i]
		assert.InDelta(t, 2*r.X, d.X, 1e-9)
		assert.InDelta(t, 2*r.Y, d.Y, 1e-9)
	}
	assert.Equal(t, 2.0, doubled.LoadScale())
}

func TestSolve_DoesNotModifyInput(t *testing.T) {
	s := bar(t)
	_, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)

	for i, p := range s.Points() {
		assert.Equal(t, float64(i), p.X)
		assert.Equal(t, 0.0, p.Y)
	}
}

func TestSolve_ResultIsIndependent(t *testing.T) {
	res, err := Solve(context.Background(), bar(t), quiet)
	require.NoError(t, err)

	forces := res.MemberForces()
	forces[0] = 0
	assert.NotEqual(t, 0.0, res.MemberForces()[0])

	st := res.Structure()
	st.Points()[2].X = -1
	p3, err := res.Structure().Point(3)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, p3.X)
}

func TestSolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *truss.Structure
		want  error
	}{
		{
			name: "under restrained",
			build: func(t *testing.T) *truss.Structure {
				s := truss.New().SetMaterial(truss.MustMaterial(1, 1))
				_, err := s.MakeMember(s.MakePoint(0, 0).Pin(), s.MakePoint(1, 0))
				require.NoError(t, err)
				return s
			},
			want: solver.ErrSingular,
		},
		{
			name: "restraints in one direction only",
			build: func(t *testing.T) *truss.Structure {
				s := truss.New().SetMaterial(truss.MustMaterial(1, 1))
				a := s.MakePoint(0, 0).RestrainY()
				b := s.MakePoint(1, 0).RestrainY()
				c := s.MakePoint(0.5, 1).RestrainY()
				for _, pair := range [][2]*truss.Point{{a, b}, {b, c}, {c, a}} {
					_, err := s.MakeMember(pair[0], pair[1])
					require.NoError(t, err)
				}
				return s
			},
			want: solver.ErrSingular,
		},
		{
			name: "roller in line with the pin",
			build: func(t *testing.T) *truss.Structure {
				s := truss.New().SetMaterial(truss.MustMaterial(200e6, 0.01))
				a := s.MakePoint(0, 0).Pin()
				b := s.MakePoint(2, 0).RestrainX()
				c := s.MakePoint(1, 1)
				c.ApplyForce(-1000, -1000)
				for _, pair := range [][2]*truss.Point{{a, b}, {b, c}, {c, a}} {
					_, err := s.MakeMember(pair[0], pair[1])
					require.NoError(t, err)
				}
				return s
			},
			want: solver.ErrSingular,
		},
		{
			name: "isolated free point",
			build: func(t *testing.T) *truss.Structure {
				s := bar(t)
				s.MakePoint(5, 5).ApplyForce(1, 1)
				return s
			},
			want: solver.ErrSingular,
		},
		{
			name: "zero length member",
			build: func(t *testing.T) *truss.Structure {
				s := bar(t)
				_, err := s.MakeMember(s.Points()[0], s.MakePoint(0, 0))
				require.NoError(t, err)
				return s
			},
			want: truss.ErrInvalidGeometry,
		},
		{
			name: "member without material",
			build: func(t *testing.T) *truss.Structure {
				s := bar(t)
				m, err := truss.NewMember(s.Points()[0], s.Points()[2])
				require.NoError(t, err)
				s.AddMember(m)
				return s
			},
			want: truss.ErrNoMaterial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Solve(context.Background(), tt.build(t), quiet)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestSolve_NotConverged(t *testing.T) {
	_, err := Solve(context.Background(), shelf(t), quiet,
		WithTolerance(1e-15), WithSolver(&solver.GaussSeidel{MaxSweeps: 1}))
	assert.ErrorIs(t, err, solver.ErrNotConverged)
}

func TestSolve_ConjugateGradientAgrees(t *testing.T) {
	s := shelf(t)
	gs, err := Solve(context.Background(), s, quiet, WithTolerance(1e-10))
	require.NoError(t, err)
	cg, err := Solve(context.Background(), s, quiet, WithTolerance(1e-10), WithSolver(&solver.ConjugateGradient{}))
	require.NoError(t, err)

	for i, f := range gs.MemberForces() {
		assert.InEpsilon(t, f, cg.MemberForces()[i], 1e-6)
	}
}

func TestSolveScaled(t *testing.T) {
	s := bar(t)
	scales := []float64{0.25, 0.5, 1}

	results, err := SolveScaled(context.Background(), s, scales, quiet, WithWorkers(2))
	require.NoError(t, err)
	require.Len(t, results, len(scales))

	single, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)

	for i, r := range results {
		assert.Equal(t, scales[i], r.LoadScale())
		assert.InEpsilon(t, 50000*scales[i], r.MemberForces()[1], 1e-3)
	}
	assert.Equal(t, single.Displacements(), results[2].Displacements())
}

func TestSolveScaled_PropagatesErrors(t *testing.T) {
	s := truss.New().SetMaterial(truss.MustMaterial(1, 1))
	_, err := s.MakeMember(s.MakePoint(0, 0), s.MakePoint(1, 0))
	require.NoError(t, err)

	_, err = SolveScaled(context.Background(), s, []float64{1, 2}, quiet)
	assert.ErrorIs(t, err, solver.ErrSingular)
}

func TestSolveFactored(t *testing.T) {
	s := truss.New().SetMaterial(truss.MustMaterial(200e6, 0.02))
	p1 := s.MakePoint(0, 0).Pin()
	p2 := s.MakePoint(1, 0).RestrainY()
	p2.AddLoad(&truss.Load{X: 30000, Case: truss.Dead})
	p2.AddLoad(&truss.Load{X: 10000, Case: truss.Live})
	_, err := s.MakeMember(p1, p2)
	require.NoError(t, err)

	factors := []func(truss.LoadCase) float64{
		func(c truss.LoadCase) float64 { return map[truss.LoadCase]float64{truss.Dead: 1.4}[c] },
		func(c truss.LoadCase) float64 {
			return map[truss.LoadCase]float64{truss.Dead: 1.2, truss.Live: 1.6}[c]
		},
	}
	results, err := SolveFactored(context.Background(), s, factors, quiet, WithWorkers(2))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InEpsilon(t, 42000, results[0].MemberForces()[0], 1e-3)
	assert.InEpsilon(t, 52000, results[1].MemberForces()[0], 1e-3)

	single, err := Solve(context.Background(), s, quiet, WithLoadFactors(factors[1]))
	require.NoError(t, err)
	assert.Equal(t, results[1].Displacements(), single.Displacements())

	unfactored, err := Solve(context.Background(), s, quiet)
	require.NoError(t, err)
	assert.InEpsilon(t, 40000, unfactored.MemberForces()[0], 1e-3)
}

func TestResult_MaxDisplacement(t *testing.T) {
	res, err := Solve(context.Background(), bar(t), quiet)
	require.NoError(t, err)

	id, mag := res.MaxDisplacement()
	assert.Equal(t, 3, id)
	assert.InEpsilon(t, 0.025, mag, 1e-3)
}

func TestResult_Field(t *testing.T) {
	res, err := Solve(context.Background(), bar(t), quiet)
	require.NoError(t, err)

	for _, f := range Fields {
		v, err := res.Field(f)
		require.NoError(t, err)
		assert.Len(t, v, res.NumMembers())
	}
	_, err = res.Field("stress")
	assert.Error(t, err)

	f, err := ParseField("tension")
	require.NoError(t, err)
	assert.Equal(t, FieldTension, f)
	_, err = ParseField("moment")
	assert.Error(t, err)
}
