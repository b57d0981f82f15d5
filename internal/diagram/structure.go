// Package diagram draws analysed trusses as images, animations and terminal
// charts.
package diagram

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"github.com/alexiusacademia/gotruss/internal/truss"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Options control how a structure is drawn
type Options struct {
	Title   string
	Field   analysis.Field
	Magnify float64 // displacement exaggeration, 1 draws the true displaced shape
	Labels  bool    // write the field value along each member
	Width   vg.Length
	Height  vg.Length
}

func (o Options) withDefaults() Options {
	if o.Field == "" {
		o.Field = analysis.FieldForce
	}
	if o.Magnify == 0 {
		o.Magnify = 1
	}
	if o.Width == 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 6 * vg.Inch
	}
	return o
}

var (
	undeformedColor = color.Gray{Y: 170}
	supportColor    = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	freeColor       = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	loadColor       = color.RGBA{R: 200, G: 0, B: 0, A: 255}
)

// frame is one result reduced to drawable geometry
type frame struct {
	points  []*truss.Point
	members []*truss.Member
	orig    plotter.XYs // undeformed position, indexed by point id - 1
	disp    plotter.XYs // magnified displaced position
	values  []float64
	scale   float64
}

func newFrame(res *analysis.Result, opt Options) (*frame, error) {
	values, err := res.Field(opt.Field)
	if err != nil {
		return nil, err
	}
	s := res.Structure()
	u := res.Displacements()
	f := &frame{
		points:  s.Points(),
		members: s.Members(),
		orig:    make(plotter.XYs, s.NumPoints()),
		disp:    make(plotter.XYs, s.NumPoints()),
		values:  values,
		scale:   res.LoadScale(),
	}
	for _, p := range f.points {
		i := p.ID - 1
		ux, uy := u[2*i], u[2*i+1]
		f.orig[i] = plotter.XY{X: p.X - ux, Y: p.Y - uy}
		f.disp[i] = plotter.XY{X: f.orig[i].X + opt.Magnify*ux, Y: f.orig[i].Y + opt.Magnify*uy}
	}
	return f, nil
}

// bounds are the axis and colour ranges of a drawing
type bounds struct {
	xmin, xmax, ymin, ymax float64
	vmin, vmax             float64
}

func emptyBounds() bounds {
	inf := math.Inf(1)
	return bounds{xmin: inf, xmax: -inf, ymin: inf, ymax: -inf, vmin: inf, vmax: -inf}
}

func (b *bounds) include(f *frame) {
	for _, xys := range []plotter.XYs{f.orig, f.disp} {
		for _, pt := range xys {
			b.xmin, b.xmax = math.Min(b.xmin, pt.X), math.Max(b.xmax, pt.X)
			b.ymin, b.ymax = math.Min(b.ymin, pt.Y), math.Max(b.ymax, pt.Y)
		}
	}
	for _, v := range f.values {
		b.vmin, b.vmax = math.Min(b.vmin, v), math.Max(b.vmax, v)
	}
}

// padded widens degenerate ranges and leaves a margin around the geometry
func (b bounds) padded() bounds {
	span := math.Max(b.xmax-b.xmin, b.ymax-b.ymin)
	if !(span > 0) {
		span = 1
	}
	m := 0.1 * span
	b.xmin, b.xmax = b.xmin-m, b.xmax+m
	b.ymin, b.ymax = b.ymin-m, b.ymax+m

	if math.IsInf(b.vmin, 0) {
		b.vmin, b.vmax = 0, 0
	}
	if !(b.vmax > b.vmin) {
		d := math.Max(math.Abs(b.vmin)*0.5, 1e-12)
		b.vmin, b.vmax = b.vmin-d, b.vmax+d
	}
	return b
}

func (b bounds) span() float64 {
	return math.Max(b.xmax-b.xmin, b.ymax-b.ymin)
}

// labelAngle returns the rotation in degrees used for a member's value label,
// kept within ±90° so text never reads upside down
func labelAngle(m *truss.Member) float64 {
	alpha := m.Angle() * 180 / math.Pi
	if alpha > -270 && alpha < -90 {
		alpha += 180
	}
	return alpha
}

func colorMap(b bounds) palette.ColorMap {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(b.vmin)
	cm.SetMax(b.vmax)
	return cm
}

func structurePlot(f *frame, b bounds, opt Options) (*plot.Plot, palette.ColorMap, error) {
	p := plot.New()
	p.Title.Text = opt.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = b.xmin, b.xmax
	p.Y.Min, p.Y.Max = b.ymin, b.ymax
	p.Add(plotter.NewGrid())

	// Undeformed geometry
	for _, m := range f.members {
		l, err := plotter.NewLine(plotter.XYs{f.orig[m.P1.ID-1], f.orig[m.P2.ID-1]})
		if err != nil {
			return nil, nil, err
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = undeformedColor
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(l)
	}

	// Displaced members coloured by value
	cm := colorMap(b)
	for i, m := range f.members {
		l, err := plotter.NewLine(plotter.XYs{f.disp[m.P1.ID-1], f.disp[m.P2.ID-1]})
		if err != nil {
			return nil, nil, err
		}
		c, err := cm.At(f.values[i])
		if err != nil {
			return nil, nil, fmt.Errorf("member %d: %w", m.ID, err)
		}
		l.LineStyle.Width = vg.Points(3)
		l.LineStyle.Color = c
		p.Add(l)
	}

	if opt.Labels && len(f.members) > 0 {
		labels, err := memberLabels(f)
		if err != nil {
			return nil, nil, err
		}
		p.Add(labels)
	}

	if err := addLoads(p, f, b); err != nil {
		return nil, nil, err
	}
	if err := addSupports(p, f); err != nil {
		return nil, nil, err
	}
	return p, cm, nil
}

func memberLabels(f *frame) (*plotter.Labels, error) {
	xyl := plotter.XYLabels{
		XYs:    make([]plotter.XY, len(f.members)),
		Labels: make([]string, len(f.members)),
	}
	for i, m := range f.members {
		a, b := f.disp[m.P1.ID-1], f.disp[m.P2.ID-1]
		xyl.XYs[i] = plotter.XY{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
		xyl.Labels[i] = fmt.Sprintf("%.3g", f.values[i])
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i, m := range f.members {
		labels.TextStyle[i].Rotation = labelAngle(m) * math.Pi / 180
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YBottom
	}
	return labels, nil
}

// addLoads draws each resultant load as a segment ending at its point, the
// largest one spanning a tenth of the drawing
func addLoads(p *plot.Plot, f *frame, b bounds) error {
	var largest float64
	for _, pt := range f.points {
		largest = math.Max(largest, pt.Resultant().Scaled(f.scale).Norm())
	}
	if largest == 0 {
		return nil
	}
	k := 0.1 * b.span() / largest

	for _, pt := range f.points {
		r := pt.Resultant().Scaled(f.scale)
		if r.IsZero() {
			continue
		}
		head := f.disp[pt.ID-1]
		tail := plotter.XY{X: head.X - k*r.X, Y: head.Y - k*r.Y}
		l, err := plotter.NewLine(plotter.XYs{tail, head})
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(2)
		l.LineStyle.Color = loadColor
		p.Add(l)

		lbl, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{tail},
			Labels: []string{fmt.Sprintf("%.3g", r.Norm())},
		})
		if err != nil {
			return err
		}
		lbl.TextStyle[0].Color = loadColor
		p.Add(lbl)
	}
	return nil
}

// addSupports marks each point by its constraint: cross when fixed in both
// directions, right triangle for x only, up triangle for y only, circle when
// free
func addSupports(p *plot.Plot, f *frame) error {
	groups := map[truss.Constraint]plotter.XYs{}
	for _, pt := range f.points {
		groups[pt.Constraint] = append(groups[pt.Constraint], f.disp[pt.ID-1])
	}

	styles := []struct {
		c     truss.Constraint
		shape draw.GlyphDrawer
		color color.Color
	}{
		{truss.Constraint{X: true, Y: true}, draw.CrossGlyph{}, supportColor},
		{truss.Constraint{X: true}, rightTriangleGlyph{}, supportColor},
		{truss.Constraint{Y: true}, draw.TriangleGlyph{}, supportColor},
		{truss.Constraint{}, draw.CircleGlyph{}, freeColor},
	}
	for _, st := range styles {
		xys := groups[st.c]
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Shape = st.shape
		sc.GlyphStyle.Color = st.color
		sc.GlyphStyle.Radius = vg.Points(5)
		p.Add(sc)
	}
	return nil
}

// rightTriangleGlyph is a filled triangle pointing in +x
type rightTriangleGlyph struct{}

func (rightTriangleGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	c.SetLineStyle(draw.LineStyle{Color: sty.Color, Width: vg.Points(0.5)})
	r := sty.Radius
	var path vg.Path
	path.Move(vg.Point{X: pt.X + r, Y: pt.Y})
	path.Line(vg.Point{X: pt.X - r/2, Y: pt.Y + r})
	path.Line(vg.Point{X: pt.X - r/2, Y: pt.Y - r})
	path.Close()
	c.SetColor(sty.Color)
	c.Fill(path)
}

// render draws the structure plot with a colour bar on its right
func render(c draw.Canvas, p *plot.Plot, cm palette.ColorMap, field analysis.Field) {
	w := c.Max.X - c.Min.X
	barWidth := w / 8

	p.Draw(draw.Crop(c, 0, -barWidth, 0, 0))

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})
	bar.HideX()
	bar.Y.Label.Text = string(field)
	bar.Title.Text = " "
	bar.Draw(draw.Crop(c, w-barWidth, 0, 0, 0))
}

// ExportStructure draws the undeformed and displaced structure, members
// coloured by opt.Field, to an image file. The format follows the extension
// (png, svg, pdf, ...); a name without extension gets .png.
func ExportStructure(res *analysis.Result, filename string, opt Options) error {
	opt = opt.withDefaults()
	f, err := newFrame(res, opt)
	if err != nil {
		return err
	}
	b := emptyBounds()
	b.include(f)
	b = b.padded()

	p, cm, err := structurePlot(f, b, opt)
	if err != nil {
		return err
	}

	format := strings.TrimPrefix(filepath.Ext(filename), ".")
	if format == "" {
		format = "png"
		filename += ".png"
	}
	canvas, err := draw.NewFormattedCanvas(opt.Width, opt.Height, strings.ToLower(format))
	if err != nil {
		return err
	}
	render(draw.New(canvas), p, cm, opt.Field)

	return writeTo(filename, canvas)
}

// writeTo creates filename, and its directory when needed, and writes w to it
func writeTo(filename string, w io.WriterTo) error {
	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
