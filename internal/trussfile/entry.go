package trussfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexiusacademia/gotruss/internal/truss"
)

// ParseEntry reads the entry text format. Blank lines separate sections:
//
//	x y freeX freeY fx fy     one line per point, freeX/freeY 0 = restrained
//
//	p1 p2 area elasticity     one line per member, points numbered from 1
//
// Lines starting with # are ignored, as is anything after the second section.
func ParseEntry(r io.Reader) (*truss.Structure, error) {
	s := truss.New()
	var points []*truss.Point

	section := 1
	inSection := false
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" {
			if inSection {
				section++
				inSection = false
			}
			continue
		}
		inSection = true
		entry := fmt.Sprintf("line %d", n)

		fields := strings.Fields(line)
		switch section {
		case 1:
			v, err := parseFloats(fields, 6)
			if err != nil {
				return nil, invalid(entry, "point: %v", err)
			}
			p := s.MakePoint(v[0], v[1])
			if v[2] == 0 {
				p.RestrainX()
			}
			if v[3] == 0 {
				p.RestrainY()
			}
			if v[4] != 0 || v[5] != 0 {
				p.ApplyForce(v[4], v[5])
			}
			points = append(points, p)
		case 2:
			if len(fields) != 4 {
				return nil, invalid(entry, "member: expected 4 fields, got %d", len(fields))
			}
			i, err1 := strconv.Atoi(fields[0])
			j, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				return nil, invalid(entry, "member: point numbers must be integers")
			}
			if i < 1 || i > len(points) || j < 1 || j > len(points) {
				return nil, invalid(entry, "member: point %d or %d does not exist", i, j)
			}
			v, err := parseFloats(fields[2:], 2)
			if err != nil {
				return nil, invalid(entry, "member: %v", err)
			}
			mat, err := truss.NewMaterial(v[1], v[0])
			if err != nil {
				return nil, invalid(entry, "member: %v", err)
			}
			m, err := s.MakeMember(points[i-1], points[j-1])
			if err != nil {
				return nil, invalid(entry, "member: %v", err)
			}
			m.SetMaterial(mat)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, invalid("", "entry file defines no points")
	}
	return s, nil
}

func parseFloats(fields []string, want int) ([]float64, error) {
	if len(fields) != want {
		return nil, fmt.Errorf("expected %d fields, got %d", want, len(fields))
	}
	v := make([]float64, want)
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %q is not a number", i+1, f)
		}
		v[i] = x
	}
	return v, nil
}
