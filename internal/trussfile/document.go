// Package trussfile reads structure descriptions from YAML, JSON and the
// plain entry text format, and writes analysis results as reports and
// GeoJSON.
package trussfile

import (
	"fmt"
	"sort"

	"github.com/alexiusacademia/gotruss/internal/materials"
	"github.com/alexiusacademia/gotruss/internal/truss"
)

// Document is the serialised form of a structure. Points are numbered from 1
// in the order they appear; members refer to them by that number.
type Document struct {
	Name            string                  `json:"name,omitempty" yaml:"name,omitempty"`
	Materials       map[string]MaterialSpec `json:"materials,omitempty" yaml:"materials,omitempty"`
	DefaultMaterial string                  `json:"default_material,omitempty" yaml:"default_material,omitempty"`
	Points          []PointSpec             `json:"points" yaml:"points"`
	Members         []MemberSpec            `json:"members" yaml:"members"`
}

// MaterialSpec gives a material either by value or by preset name. An explicit
// elasticity overrides the preset.
type MaterialSpec struct {
	Preset     string  `json:"preset,omitempty" yaml:"preset,omitempty"`
	Elasticity float64 `json:"elasticity,omitempty" yaml:"elasticity,omitempty"`
	Area       float64 `json:"area" yaml:"area"`
}

// PointSpec describes one point
type PointSpec struct {
	X         float64    `json:"x" yaml:"x"`
	Y         float64    `json:"y" yaml:"y"`
	RestrainX bool       `json:"restrain_x,omitempty" yaml:"restrain_x,omitempty"`
	RestrainY bool       `json:"restrain_y,omitempty" yaml:"restrain_y,omitempty"`
	Loads     []LoadSpec `json:"loads,omitempty" yaml:"loads,omitempty"`
}

// LoadSpec is a force applied to a point
type LoadSpec struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Case string  `json:"case,omitempty" yaml:"case,omitempty"` // D, L, Lr, W, E or R
}

// MemberSpec connects two points. An empty Material uses the document default.
type MemberSpec struct {
	From     int    `json:"from" yaml:"from"`
	To       int    `json:"to" yaml:"to"`
	Material string `json:"material,omitempty" yaml:"material,omitempty"`
}

// ValidationError reports an invalid entry in a document
type ValidationError struct {
	Entry string
	msg   string
}

func (e *ValidationError) Error() string {
	if e.Entry == "" {
		return e.msg
	}
	return e.Entry + ": " + e.msg
}

func invalid(entry, format string, args ...any) error {
	return &ValidationError{Entry: entry, msg: fmt.Sprintf(format, args...)}
}

// Validate checks references and values without building the structure
func (d *Document) Validate() error {
	if len(d.Points) == 0 {
		return invalid("points", "at least one point is required")
	}
	if d.DefaultMaterial != "" {
		if _, ok := d.Materials[d.DefaultMaterial]; !ok {
			return invalid("default_material", "unknown material %q", d.DefaultMaterial)
		}
	}
	for i, p := range d.Points {
		for j, l := range p.Loads {
			if _, err := truss.ParseLoadCase(l.Case); err != nil {
				return invalid(fmt.Sprintf("points[%d].loads[%d]", i+1, j+1), "%v", err)
			}
		}
	}
	for _, name := range d.materialNames() {
		spec := d.Materials[name]
		entry := fmt.Sprintf("materials.%s", name)
		if spec.Preset == "" && !(spec.Elasticity > 0) {
			return invalid(entry, "elasticity must be positive or a preset given")
		}
		if spec.Preset != "" {
			if _, err := materials.Lookup(spec.Preset); err != nil {
				return invalid(entry, "%v", err)
			}
		}
		if !(spec.Area > 0) {
			return invalid(entry, "area must be positive")
		}
	}
	for i, m := range d.Members {
		entry := fmt.Sprintf("members[%d]", i+1)
		if m.From < 1 || m.From > len(d.Points) {
			return invalid(entry, "point %d does not exist", m.From)
		}
		if m.To < 1 || m.To > len(d.Points) {
			return invalid(entry, "point %d does not exist", m.To)
		}
		if m.From == m.To {
			return invalid(entry, "member connects point %d to itself", m.From)
		}
		name := m.Material
		if name == "" {
			name = d.DefaultMaterial
		}
		if name == "" {
			return invalid(entry, "no material and no default_material")
		}
		if _, ok := d.Materials[name]; !ok {
			return invalid(entry, "unknown material %q", name)
		}
	}
	return nil
}

func (d *Document) materialNames() []string {
	names := make([]string, 0, len(d.Materials))
	for name := range d.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build validates the document and constructs the structure it describes.
// Members naming the same material share one *truss.Material.
func (d *Document) Build() (*truss.Structure, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	mats := make(map[string]*truss.Material, len(d.Materials))
	for _, name := range d.materialNames() {
		m, err := buildMaterial(d.Materials[name])
		if err != nil {
			return nil, invalid("materials."+name, "%v", err)
		}
		m.Name = name
		mats[name] = m
	}

	s := truss.New()
	if d.DefaultMaterial != "" {
		s.SetMaterial(mats[d.DefaultMaterial])
	}

	points := make([]*truss.Point, len(d.Points))
	for i, ps := range d.Points {
		p := s.MakePoint(ps.X, ps.Y)
		if ps.RestrainX {
			p.RestrainX()
		}
		if ps.RestrainY {
			p.RestrainY()
		}
		for _, l := range ps.Loads {
			c, _ := truss.ParseLoadCase(l.Case)
			p.AddLoad(&truss.Load{X: l.X, Y: l.Y, Case: c})
		}
		points[i] = p
	}

	for i, ms := range d.Members {
		m, err := s.MakeMember(points[ms.From-1], points[ms.To-1])
		if err != nil {
			return nil, invalid(fmt.Sprintf("members[%d]", i+1), "%v", err)
		}
		if ms.Material != "" {
			m.SetMaterial(mats[ms.Material])
		}
	}
	return s, nil
}

func buildMaterial(spec MaterialSpec) (*truss.Material, error) {
	e := spec.Elasticity
	if e == 0 && spec.Preset != "" {
		p, err := materials.Lookup(spec.Preset)
		if err != nil {
			return nil, err
		}
		e = p.Elasticity
	}
	return truss.NewMaterial(e, spec.Area)
}

// FromStructure serialises s. Materials are named after their Name field or
// numbered in order of first use.
func FromStructure(s *truss.Structure) *Document {
	d := &Document{Materials: map[string]MaterialSpec{}}
	names := map[*truss.Material]string{}
	name := func(m *truss.Material) string {
		if m == nil {
			return ""
		}
		if n, ok := names[m]; ok {
			return n
		}
		n := m.Name
		for k := len(names) + 1; ; k++ {
			if _, taken := d.Materials[n]; n != "" && !taken {
				break
			}
			n = fmt.Sprintf("material%d", k)
		}
		names[m] = n
		d.Materials[n] = MaterialSpec{Elasticity: m.Elasticity(), Area: m.Area()}
		return n
	}

	d.DefaultMaterial = name(s.Material())
	for _, p := range s.Points() {
		ps := PointSpec{X: p.X, Y: p.Y, RestrainX: p.Constraint.X, RestrainY: p.Constraint.Y}
		for _, l := range p.Loads() {
			ps.Loads = append(ps.Loads, LoadSpec{X: l.X, Y: l.Y, Case: string(l.Case)})
		}
		d.Points = append(d.Points, ps)
	}
	for _, m := range s.Members() {
		d.Members = append(d.Members, MemberSpec{From: m.P1.ID, To: m.P2.ID, Material: name(m.Material)})
	}
	if len(d.Materials) == 0 {
		d.Materials = nil
	}
	return d
}
