package diagram

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	stdpalette "image/color/palette"
	imagedraw "image/draw"
	"image/gif"
	"time"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DefaultFrameDelay is the time each animation frame stays on screen
const DefaultFrameDelay = 200 * time.Millisecond

// ExportAnimation renders one frame per result and writes them as a looping
// GIF. All frames share the axis and colour ranges of the whole sequence so
// that growth under increasing load is visible.
func ExportAnimation(results []*analysis.Result, filename string, opt Options, delay time.Duration) error {
	if len(results) == 0 {
		return errors.New("animation needs at least one result")
	}
	opt = opt.withDefaults()
	if delay <= 0 {
		delay = DefaultFrameDelay
	}

	frames := make([]*frame, len(results))
	b := emptyBounds()
	for i, res := range results {
		f, err := newFrame(res, opt)
		if err != nil {
			return err
		}
		frames[i] = f
		b.include(f)
	}
	b = b.padded()

	anim := &gif.GIF{}
	title := opt.Title
	for i, f := range frames {
		opt.Title = fmt.Sprintf("load scale %.3g", f.scale)
		if title != "" {
			opt.Title = title + ", " + opt.Title
		}
		p, cm, err := structurePlot(f, b, opt)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i+1, err)
		}

		c := vgimg.New(opt.Width, opt.Height)
		render(draw.New(c), p, cm, opt.Field)

		img := c.Image()
		paletted := image.NewPaletted(img.Bounds(), stdpalette.Plan9)
		imagedraw.FloydSteinberg.Draw(paletted, img.Bounds(), img, image.Point{})

		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, int(delay/(10*time.Millisecond)))
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return err
	}
	return writeTo(filename, &buf)
}

// Scales returns the load scales 1/n, 2/n, ..., 1
func Scales(n int) []float64 {
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) / float64(n)
	}
	return out
}
