// Package combination factors classified truss loads by strength design load
// combinations and envelopes the resulting member forces.
package combination

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"github.com/alexiusacademia/gotruss/internal/truss"
)

// Combination holds the load factor of every load case
// Based on NSCP 2015 Section 203.3 - Load Combinations Using Strength Design
type Combination struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Dead        float64 `json:"dead,omitempty" yaml:"dead,omitempty"`
	Live        float64 `json:"live,omitempty" yaml:"live,omitempty"`
	Roof        float64 `json:"roof,omitempty" yaml:"roof,omitempty"`
	Wind        float64 `json:"wind,omitempty" yaml:"wind,omitempty"`
	Earthquake  float64 `json:"earthquake,omitempty" yaml:"earthquake,omitempty"`
	Rain        float64 `json:"rain,omitempty" yaml:"rain,omitempty"`
}

// Basic lists NSCP 2015 Section 203.3.1 - Basic Load Combinations.
// Combinations that read "Lr or R" or "L or 0.5W" are split into one
// alternative per choice (2a, 2b, ...), so a structure loaded with both
// roof live and rain load is never factored for both at once.
var Basic = []Combination{
	{ID: "1", Description: "1.4D", Dead: 1.4},
	{ID: "2a", Description: "1.2D + 1.6L + 0.5Lr", Dead: 1.2, Live: 1.6, Roof: 0.5},
	{ID: "2b", Description: "1.2D + 1.6L + 0.5R", Dead: 1.2, Live: 1.6, Rain: 0.5},
	{ID: "3a", Description: "1.2D + 1.6Lr + 1.0L", Dead: 1.2, Roof: 1.6, Live: 1.0},
	{ID: "3b", Description: "1.2D + 1.6Lr + 0.5W", Dead: 1.2, Roof: 1.6, Wind: 0.5},
	{ID: "3c", Description: "1.2D + 1.6R + 1.0L", Dead: 1.2, Rain: 1.6, Live: 1.0},
	{ID: "3d", Description: "1.2D + 1.6R + 0.5W", Dead: 1.2, Rain: 1.6, Wind: 0.5},
	{ID: "4a", Description: "1.2D + 1.0W + 1.0L + 0.5Lr", Dead: 1.2, Wind: 1.0, Live: 1.0, Roof: 0.5},
	{ID: "4b", Description: "1.2D + 1.0W + 1.0L + 0.5R", Dead: 1.2, Wind: 1.0, Live: 1.0, Rain: 0.5},
	{ID: "5", Description: "1.2D + 1.0E + 1.0L", Dead: 1.2, Live: 1.0, Earthquake: 1.0},
	{ID: "6", Description: "0.9D + 1.0W", Dead: 0.9, Wind: 1.0},
	{ID: "7", Description: "0.9D + 1.0E", Dead: 0.9, Earthquake: 1.0},
}

// Simplified holds the gravity-only combinations
var Simplified = []Combination{
	{ID: "1", Description: "1.4D", Dead: 1.4},
	{ID: "2", Description: "1.2D + 1.6L", Dead: 1.2, Live: 1.6},
}

// Factor returns the load factor of c. Unclassified loads count as dead load.
func (lc Combination) Factor(c truss.LoadCase) float64 {
	switch c {
	case truss.Dead, "":
		return lc.Dead
	case truss.Live:
		return lc.Live
	case truss.Roof:
		return lc.Roof
	case truss.Wind:
		return lc.Wind
	case truss.Earthquake:
		return lc.Earthquake
	case truss.Rain:
		return lc.Rain
	}
	return 0
}

// Find returns the combination with the given ID
func Find(id string, set []Combination) (Combination, error) {
	for _, c := range set {
		if c.ID == id {
			return c, nil
		}
	}
	return Combination{}, fmt.Errorf("unknown load combination %q", id)
}

// Select returns the combinations named by id: the one with that exact ID, or
// else every alternative of that number ("3" selects 3a to 3d)
func Select(id string, set []Combination) ([]Combination, error) {
	if c, err := Find(id, set); err == nil {
		return []Combination{c}, nil
	}
	var out []Combination
	for _, c := range set {
		if alt := strings.TrimPrefix(c.ID, id); alt != c.ID && len(alt) == 1 && alt[0] >= 'a' && alt[0] <= 'z' {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unknown load combination %q", id)
	}
	return out, nil
}

// Solve analyses s once per combination, concurrently. Results follow the
// order of combos.
func Solve(ctx context.Context, s *truss.Structure, combos []Combination, opts ...analysis.Option) ([]*analysis.Result, error) {
	factors := make([]func(truss.LoadCase) float64, len(combos))
	for i, c := range combos {
		factors[i] = c.Factor
	}
	results, err := analysis.SolveFactored(ctx, s, factors, opts...)
	if err != nil {
		return nil, fmt.Errorf("load combinations: %w", err)
	}
	return results, nil
}

// MemberEnvelope is the range of the axial force of one member over a set of
// combinations. Positive forces are tension.
type MemberEnvelope struct {
	MemberID int     `json:"member" yaml:"member"`
	Max      float64 `json:"max" yaml:"max"`
	MaxCombo string  `json:"max_combo" yaml:"max_combo"`
	Min      float64 `json:"min" yaml:"min"`
	MinCombo string  `json:"min_combo" yaml:"min_combo"`
}

// Governing returns the force of largest magnitude and its combination
func (e MemberEnvelope) Governing() (float64, string) {
	if math.Abs(e.Min) > math.Abs(e.Max) {
		return e.Min, e.MinCombo
	}
	return e.Max, e.MaxCombo
}

// Envelope collects, for every member, the largest and smallest axial force
// over results. results[i] must be the analysis of combos[i].
func Envelope(combos []Combination, results []*analysis.Result) ([]MemberEnvelope, error) {
	if len(combos) != len(results) {
		return nil, fmt.Errorf("%d combinations but %d results", len(combos), len(results))
	}
	if len(results) == 0 {
		return nil, nil
	}

	n := results[0].NumMembers()
	env := make([]MemberEnvelope, n)
	for j := range env {
		env[j] = MemberEnvelope{MemberID: j + 1, Max: math.Inf(-1), Min: math.Inf(1)}
	}

	for i, r := range results {
		if r.NumMembers() != n {
			return nil, fmt.Errorf("combination %s: %d members, expected %d", combos[i].ID, r.NumMembers(), n)
		}
		for j, f := range r.MemberForces() {
			if f > env[j].Max {
				env[j].Max, env[j].MaxCombo = f, combos[i].ID
			}
			if f < env[j].Min {
				env[j].Min, env[j].MinCombo = f, combos[i].ID
			}
		}
	}
	return env, nil
}
