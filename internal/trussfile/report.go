package trussfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

// Report is the serialised form of an analysis result. Point coordinates are
// the displaced positions.
type Report struct {
	LoadScale float64          `json:"load_scale" yaml:"load_scale"`
	Residual  float64          `json:"residual" yaml:"residual"`
	Points    []PointReport    `json:"points" yaml:"points"`
	Members   []MemberReport   `json:"members" yaml:"members"`
	Reactions []ReactionReport `json:"reactions" yaml:"reactions"`
}

type PointReport struct {
	ID        int     `json:"id" yaml:"id"`
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	UX        float64 `json:"ux" yaml:"ux"`
	UY        float64 `json:"uy" yaml:"uy"`
	RestrainX bool    `json:"restrain_x,omitempty" yaml:"restrain_x,omitempty"`
	RestrainY bool    `json:"restrain_y,omitempty" yaml:"restrain_y,omitempty"`
}

type MemberReport struct {
	ID          int     `json:"id" yaml:"id"`
	From        int     `json:"from" yaml:"from"`
	To          int     `json:"to" yaml:"to"`
	Deformation float64 `json:"deformation" yaml:"deformation"`
	Tension     float64 `json:"tension" yaml:"tension"`
	Force       float64 `json:"force" yaml:"force"`
}

type ReactionReport struct {
	PointID int     `json:"point" yaml:"point"`
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
}

// NewReport flattens a result
func NewReport(r *analysis.Result) *Report {
	s := r.Structure()
	u := r.Displacements()
	rep := &Report{LoadScale: r.LoadScale(), Residual: r.Residual()}

	for _, p := range s.Points() {
		i := 2 * (p.ID - 1)
		rep.Points = append(rep.Points, PointReport{
			ID: p.ID, X: p.X, Y: p.Y, UX: u[i], UY: u[i+1],
			RestrainX: p.Constraint.X, RestrainY: p.Constraint.Y,
		})
	}

	def, ten, frc := r.Deformations(), r.Tensions(), r.MemberForces()
	for i, m := range s.Members() {
		rep.Members = append(rep.Members, MemberReport{
			ID: m.ID, From: m.P1.ID, To: m.P2.ID,
			Deformation: def[i], Tension: ten[i], Force: frc[i],
		})
	}

	rep.Reactions = []ReactionReport{}
	for _, rc := range r.Reactions() {
		rep.Reactions = append(rep.Reactions, ReactionReport{PointID: rc.PointID, X: rc.X, Y: rc.Y})
	}
	return rep
}

// WriteReport encodes the result as YAML or JSON
func WriteReport(w io.Writer, r *analysis.Result, format Format) error {
	rep := NewReport(r)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q cannot hold a report", format)
}

// GeoJSON returns the displaced structure as a feature collection: one
// LineString per member carrying its results, one Point per point carrying
// its displacement and reaction.
func GeoJSON(r *analysis.Result) *geojson.FeatureCollection {
	rep := NewReport(r)
	fc := geojson.NewFeatureCollection()

	coords := make(map[int]orb.Point, len(rep.Points))
	for _, p := range rep.Points {
		coords[p.ID] = orb.Point{p.X, p.Y}
	}

	for _, m := range rep.Members {
		f := geojson.NewFeature(orb.LineString{coords[m.From], coords[m.To]})
		f.ID = fmt.Sprintf("member-%d", m.ID)
		f.Properties = geojson.Properties{
			"kind":        "member",
			"id":          m.ID,
			"from":        m.From,
			"to":          m.To,
			"deformation": m.Deformation,
			"tension":     m.Tension,
			"force":       m.Force,
		}
		fc.Append(f)
	}

	reactions := make(map[int]ReactionReport, len(rep.Reactions))
	for _, rc := range rep.Reactions {
		reactions[rc.PointID] = rc
	}
	for _, p := range rep.Points {
		f := geojson.NewFeature(coords[p.ID])
		f.ID = fmt.Sprintf("point-%d", p.ID)
		f.Properties["kind"] = "point"
		f.Properties["id"] = p.ID
		f.Properties["ux"] = p.UX
		f.Properties["uy"] = p.UY
		if rc, ok := reactions[p.ID]; ok {
			f.Properties["reaction_x"] = rc.X
			f.Properties["reaction_y"] = rc.Y
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON encodes GeoJSON(r) to w
func WriteGeoJSON(w io.Writer, r *analysis.Result) error {
	data, err := GeoJSON(r).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
