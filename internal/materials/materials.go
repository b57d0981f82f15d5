// Package materials provides reference elastic moduli for common truss
// materials. Values are in kPa (kN/m²), so lengths in m and forces in kN give
// consistent results.
package materials

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexiusacademia/gotruss/internal/truss"
)

// Modulus of elasticity of common materials (kPa)
const (
	// Structural steel, ASTM A36 / Grade 250
	ESteel = 200e6

	// Aluminium alloy 6061-T6
	EAluminium = 69e6

	// Normal-weight concrete, f'c = 28 MPa: Ec = 4700·√f'c MPa
	EConcrete = 24.87e6

	// Softwood lumber parallel to grain
	EWood = 11e6

	// Steel wire rope, effective modulus of the strand
	ERope = 90e6
)

// Preset is a named reference material
type Preset struct {
	Name        string  `json:"name" yaml:"name"`
	Elasticity  float64 `json:"elasticity" yaml:"elasticity"`
	Description string  `json:"description" yaml:"description"`
}

var presets = map[string]Preset{
	"steel":     {"steel", ESteel, "Structural steel (A36)"},
	"aluminium": {"aluminium", EAluminium, "Aluminium alloy 6061-T6"},
	"concrete":  {"concrete", EConcrete, "Normal-weight concrete, f'c = 28 MPa"},
	"wood":      {"wood", EWood, "Softwood lumber, parallel to grain"},
	"rope":      {"rope", ERope, "Steel wire rope"},
}

var aliases = map[string]string{
	"aluminum": "aluminium",
	"timber":   "wood",
	"cable":    "rope",
}

// Lookup returns the preset registered under name (case-insensitive)
func Lookup(name string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	p, ok := presets[key]
	if !ok {
		return Preset{}, fmt.Errorf("unknown material preset %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the preset names in sorted order
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every preset sorted by name
func All() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, name := range Names() {
		out = append(out, presets[name])
	}
	return out
}

// New creates a truss material from the named preset and a cross-sectional area
func New(name string, area float64) (*truss.Material, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	m, err := truss.NewMaterial(p.Elasticity, area)
	if err != nil {
		return nil, err
	}
	m.Name = p.Name
	return m, nil
}
