package analysis

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotruss/internal/truss"
)

// Field names a per-member result array
type Field string

const (
	FieldDeformation Field = "deformation" // axial strain
	FieldTension     Field = "tension"     // axial stress
	FieldForce       Field = "force"       // axial force
)

// Fields lists the per-member result arrays
var Fields = []Field{FieldDeformation, FieldTension, FieldForce}

// ParseField converts a name into a Field
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown result field %q (expected deformation, tension or force)", s)
}

// Reaction is the force a support exerts on a constrained point.
// Components along unrestrained directions are zero.
type Reaction struct {
	PointID    int
	Constraint truss.Constraint
	X          float64
	Y          float64
}

// Result is the immutable outcome of one analysis. Accessors return copies.
type Result struct {
	structure *truss.Structure // displaced copy
	loadScale float64
	residual  float64

	displacements []float64 // full DOF vector
	forces        []float64 // applied loads at free DOFs, K·u at restrained DOFs
	restrained    []bool

	deformation []float64
	tension     []float64
	force       []float64
	reactions   []Reaction
}

// Structure returns a copy of the displaced structure
func (r *Result) Structure() *truss.Structure {
	return r.structure.Clone()
}

// LoadScale returns the factor the loads were multiplied by
func (r *Result) LoadScale() float64 { return r.loadScale }

// Residual returns max |K_ff·x - F_f| of the accepted solution
func (r *Result) Residual() float64 { return r.residual }

// NumMembers returns the length of the per-member arrays
func (r *Result) NumMembers() int { return len(r.deformation) }

// Displacements returns the full displacement vector, two entries per point
func (r *Result) Displacements() []float64 { return clone(r.displacements) }

// Forces returns the post-solve force vector: applied loads at free DOFs and
// K·u at restrained DOFs
func (r *Result) Forces() []float64 { return clone(r.forces) }

// Restrained returns the DOF mask used by the analysis
func (r *Result) Restrained() []bool {
	out := make([]bool, len(r.restrained))
	copy(out, r.restrained)
	return out
}

// Deformations returns the axial strain of each member, ordered by member id
func (r *Result) Deformations() []float64 { return clone(r.deformation) }

// Tensions returns the axial stress of each member, ordered by member id
func (r *Result) Tensions() []float64 { return clone(r.tension) }

// MemberForces returns the axial force of each member, ordered by member id
func (r *Result) MemberForces() []float64 { return clone(r.force) }

// Field returns the per-member array for f
func (r *Result) Field(f Field) ([]float64, error) {
	switch f {
	case FieldDeformation:
		return r.Deformations(), nil
	case FieldTension:
		return r.Tensions(), nil
	case FieldForce:
		return r.MemberForces(), nil
	}
	return nil, fmt.Errorf("unknown result field %q", f)
}

// Reactions returns the support reactions of every constrained point,
// ordered by point id
func (r *Result) Reactions() []Reaction {
	out := make([]Reaction, len(r.reactions))
	copy(out, r.reactions)
	return out
}

// Displacement returns the translation of the point with the given id
func (r *Result) Displacement(pointID int) (ux, uy float64, err error) {
	i := dofX(pointID)
	if pointID < 1 || i+1 >= len(r.displacements) {
		return 0, 0, fmt.Errorf("point %d does not exist", pointID)
	}
	return r.displacements[i], r.displacements[i+1], nil
}

// MaxDisplacement returns the largest translation magnitude and the id of the
// point where it occurs
func (r *Result) MaxDisplacement() (pointID int, magnitude float64) {
	for i := 0; i+1 < len(r.displacements); i += 2 {
		m := math.Hypot(r.displacements[i], r.displacements[i+1])
		if m > magnitude || pointID == 0 {
			pointID, magnitude = i/2+1, m
		}
	}
	return pointID, magnitude
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
