package truss

import "fmt"

// Material holds the axial properties of a member. A Material is shared by
// pointer, so changing it affects every member that references it.
type Material struct {
	Name string

	elasticity float64 // E - modulus of elasticity
	area       float64 // A - cross-sectional area
}

// NewMaterial creates a material, rejecting non-positive properties
func NewMaterial(elasticity, area float64) (*Material, error) {
	m := &Material{}
	if err := m.SetElasticity(elasticity); err != nil {
		return nil, err
	}
	if err := m.SetArea(area); err != nil {
		return nil, err
	}
	return m, nil
}

// MustMaterial is like NewMaterial but panics on invalid input.
// Intended for literals in tests and examples.
func MustMaterial(elasticity, area float64) *Material {
	m, err := NewMaterial(elasticity, area)
	if err != nil {
		panic(err)
	}
	return m
}

// Elasticity returns the modulus of elasticity
func (m *Material) Elasticity() float64 { return m.elasticity }

// Area returns the cross-sectional area
func (m *Material) Area() float64 { return m.area }

// Rigidity returns the axial rigidity E·A
func (m *Material) Rigidity() float64 { return m.elasticity * m.area }

// SetElasticity updates the modulus of elasticity
func (m *Material) SetElasticity(e float64) error {
	if !(e > 0) {
		return fmt.Errorf("%w: elasticity must be positive, got %g", ErrInvalidMaterial, e)
	}
	m.elasticity = e
	return nil
}

// SetArea updates the cross-sectional area
func (m *Material) SetArea(a float64) error {
	if !(a > 0) {
		return fmt.Errorf("%w: area must be positive, got %g", ErrInvalidMaterial, a)
	}
	m.area = a
	return nil
}

func (m *Material) String() string {
	if m.Name != "" {
		return fmt.Sprintf("%s (E=%g, A=%g)", m.Name, m.elasticity, m.area)
	}
	return fmt.Sprintf("E=%g, A=%g", m.elasticity, m.area)
}
