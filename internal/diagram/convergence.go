package diagram

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/guptarohit/asciigraph"
)

// floor for log10 of a zero change
const minLogChange = -16

// Trace records solver sweeps. Its Record method fits GaussSeidel.OnSweep.
type Trace struct {
	Sweeps []solver.Sweep
}

// Record appends one sweep
func (t *Trace) Record(s solver.Sweep) {
	t.Sweeps = append(t.Sweeps, s)
}

// LogChanges returns log10 of the largest relative change of every sweep
func (t *Trace) LogChanges() []float64 {
	out := make([]float64, len(t.Sweeps))
	for i, s := range t.Sweeps {
		out[i] = logChange(s.MaxChange)
	}
	return out
}

// ConvergedCounts returns the number of frozen unknowns after every sweep
func (t *Trace) ConvergedCounts() []float64 {
	out := make([]float64, len(t.Sweeps))
	for i, s := range t.Sweeps {
		out[i] = float64(s.Converged)
	}
	return out
}

func logChange(v float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return minLogChange
	}
	return math.Max(math.Log10(v), minLogChange)
}

// ConvergenceASCII plots log10 of the largest relative change per sweep as a
// terminal line chart
func ConvergenceASCII(t *Trace, width, height int) (string, error) {
	if len(t.Sweeps) == 0 {
		return "", errors.New("no sweeps recorded")
	}
	data := t.LogChanges()
	if len(data) == 1 {
		data = append(data, data[0])
	}
	options := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Precision(1),
		asciigraph.Caption(fmt.Sprintf("log10 max relative change, %d sweeps", len(t.Sweeps))),
	}
	if width > 0 {
		options = append(options, asciigraph.Width(width))
	}
	return asciigraph.Plot(data, options...), nil
}

// ExportConvergenceHTML writes an interactive page with the convergence
// history: the largest relative change and the number of frozen unknowns per
// sweep
func ExportConvergenceHTML(t *Trace, w io.Writer) error {
	if len(t.Sweeps) == 0 {
		return errors.New("no sweeps recorded")
	}

	sweeps := make([]int, len(t.Sweeps))
	change := make([]opts.LineData, len(t.Sweeps))
	frozen := make([]opts.LineData, len(t.Sweeps))
	for i, s := range t.Sweeps {
		sweeps[i] = s.Number
		change[i] = opts.LineData{Value: logChange(s.MaxChange)}
		frozen[i] = opts.LineData{Value: s.Converged}
	}

	changeChart := charts.NewLine()
	changeChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Convergence",
			Subtitle: "log10 of the largest relative change per sweep",
		}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100, XAxisIndex: []int{0}}),
	)
	changeChart.SetXAxis(sweeps).AddSeries("max change", change)

	frozenChart := charts.NewLine()
	frozenChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Frozen unknowns",
			Subtitle: fmt.Sprintf("out of %d", t.Sweeps[0].Total),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	frozenChart.SetXAxis(sweeps).AddSeries("converged", frozen)

	page := components.NewPage()
	page.AddCharts(changeChart, frozenChart)
	return page.Render(w)
}
