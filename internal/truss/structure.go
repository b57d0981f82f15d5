package truss

import "fmt"

// Structure owns the points and members of a truss. Points and members keep
// their insertion order and receive dense 1-based ids.
type Structure struct {
	points  []*Point
	members []*Member

	pointIndex  map[*Point]int
	memberIndex map[*Member]int

	// material applied to members created through MakeMember
	material *Material
}

// New creates an empty structure
func New() *Structure {
	return &Structure{
		pointIndex:  make(map[*Point]int),
		memberIndex: make(map[*Member]int),
	}
}

// AddPoint inserts p and assigns its id. Adding a point twice is a no-op.
func (s *Structure) AddPoint(p *Point) *Structure {
	if _, ok := s.pointIndex[p]; ok {
		return s
	}
	s.points = append(s.points, p)
	p.ID = len(s.points)
	s.pointIndex[p] = p.ID
	return s
}

// AddMember inserts m, adding its endpoints first if needed.
// Adding a member twice is a no-op.
func (s *Structure) AddMember(m *Member) *Structure {
	if _, ok := s.memberIndex[m]; ok {
		return s
	}
	s.AddPoint(m.P1).AddPoint(m.P2)
	s.members = append(s.members, m)
	m.ID = len(s.members)
	s.memberIndex[m] = m.ID
	return s
}

// MakePoint creates a point at (x, y) and adds it
func (s *Structure) MakePoint(x, y float64) *Point {
	p := NewPoint(x, y)
	s.AddPoint(p)
	return p
}

// MakeMember joins p1 and p2 with a new member carrying the default material
func (s *Structure) MakeMember(p1, p2 *Point) (*Member, error) {
	m, err := NewMember(p1, p2)
	if err != nil {
		return nil, err
	}
	m.Material = s.material
	s.AddMember(m)
	return m, nil
}

// SetMaterial sets the default material for members created afterwards.
// Existing members keep their material.
func (s *Structure) SetMaterial(m *Material) *Structure {
	s.material = m
	return s
}

// Material returns the default material
func (s *Structure) Material() *Material {
	return s.material
}

// Points returns the points ordered by id
func (s *Structure) Points() []*Point {
	out := make([]*Point, len(s.points))
	copy(out, s.points)
	return out
}

// Members returns the members ordered by id
func (s *Structure) Members() []*Member {
	out := make([]*Member, len(s.members))
	copy(out, s.members)
	return out
}

// Point returns the point with the given 1-based id
func (s *Structure) Point(id int) (*Point, error) {
	if id < 1 || id > len(s.points) {
		return nil, fmt.Errorf("point %d does not exist (structure has %d points)", id, len(s.points))
	}
	return s.points[id-1], nil
}

// Member returns the member with the given 1-based id
func (s *Structure) Member(id int) (*Member, error) {
	if id < 1 || id > len(s.members) {
		return nil, fmt.Errorf("member %d does not exist (structure has %d members)", id, len(s.members))
	}
	return s.members[id-1], nil
}

// NumPoints returns the point count
func (s *Structure) NumPoints() int { return len(s.points) }

// NumMembers returns the member count
func (s *Structure) NumMembers() int { return len(s.members) }

// NumDOF returns the number of degrees of freedom, two per point
func (s *Structure) NumDOF() int { return 2 * len(s.points) }

// Validate checks every member for assembly
func (s *Structure) Validate() error {
	for _, m := range s.members {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent deep copy. Ids, loads, constraints and the
// sharing of materials between members are preserved inside the copy.
func (s *Structure) Clone() *Structure {
	c := New()

	materials := make(map[*Material]*Material)
	cloneMaterial := func(m *Material) *Material {
		if m == nil {
			return nil
		}
		if cm, ok := materials[m]; ok {
			return cm
		}
		cm := &Material{}
		*cm = *m
		materials[m] = cm
		return cm
	}

	loads := make(map[*Load]*Load)
	points := make(map[*Point]*Point, len(s.points))
	for _, p := range s.points {
		cp := &Point{X: p.X, Y: p.Y, Constraint: p.Constraint}
		for _, l := range p.loads {
			cl, ok := loads[l]
			if !ok {
				cl = &Load{X: l.X, Y: l.Y, Case: l.Case}
				loads[l] = cl
			}
			cp.loads = append(cp.loads, cl)
		}
		points[p] = cp
		c.AddPoint(cp)
	}

	for _, m := range s.members {
		c.AddMember(&Member{
			P1:       points[m.P1],
			P2:       points[m.P2],
			Material: cloneMaterial(m.Material),
		})
	}

	c.material = cloneMaterial(s.material)
	return c
}
