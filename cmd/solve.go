package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"github.com/alexiusacademia/gotruss/internal/diagram"
	"github.com/alexiusacademia/gotruss/internal/output"
	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/alexiusacademia/gotruss/internal/truss"
	"github.com/alexiusacademia/gotruss/internal/trussfile"
	"github.com/spf13/cobra"
)

var (
	solveEntry     bool
	solvePlot      string
	solveField     string
	solveLabels    bool
	solveReport    string
	solveGeoJSON   string
	solveTrace     bool
	solveTraceHTML string
	solveBars      bool
)

var solveCmd = &cobra.Command{
	Use:   "solve FILE",
	Short: "Analyse a truss and report displacements, reactions and member forces",
	Long: `Analyse the truss described in FILE by the direct stiffness method.

The file format follows the extension: .yaml/.yml, .json, or .txt for the
entry text format (use --entry to force it).

Examples:
  gotruss solve examples/bar.yaml
  gotruss solve examples/shelf.yaml --plot shelf.png --field tension --labels
  gotruss solve examples/pyramid.txt --report pyramid.json --geojson pyramid.geojson
  gotruss solve examples/bridge.json --trace --solver gauss-seidel`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)

	f := solveCmd.Flags()
	f.BoolVar(&solveEntry, "entry", false, "Read FILE in the entry text format")
	f.Float64("scale", 1, "Multiply every load by this factor")

	// Output options
	f.StringVarP(&solvePlot, "plot", "p", "", "Export a diagram to file (png, svg, pdf)")
	f.StringVar(&solveField, "field", string(analysis.FieldForce), "Member result to colour by: deformation, tension, force")
	f.BoolVar(&solveLabels, "labels", false, "Write member values on the diagram")
	f.Float64("magnify", 1, "Displacement magnification in diagrams")
	f.StringVarP(&solveReport, "report", "o", "", "Write the result to a JSON or YAML file")
	f.StringVar(&solveGeoJSON, "geojson", "", "Write the displaced structure as GeoJSON")
	f.BoolVar(&solveTrace, "trace", false, "Show the Gauss-Seidel convergence history")
	f.StringVar(&solveTraceHTML, "trace-html", "", "Write the convergence history as an HTML chart")
	f.BoolVar(&solveBars, "bars", false, "Show an ASCII bar chart of the member results")
}

func runSolve(cmd *cobra.Command, args []string) error {
	out := output.New(cmd.OutOrStdout())
	out.SetVerbose(verbose)

	field, err := analysis.ParseField(solveField)
	if err != nil {
		return err
	}

	s, err := loadStructure(args[0], solveEntry)
	if err != nil {
		return fmt.Errorf("loading structure: %w", err)
	}

	sv, err := solver.New(cfg.Solver.Method, cfg.Solver.MaxSweeps)
	if err != nil {
		return err
	}
	trace := &diagram.Trace{}
	if solveTrace || solveTraceHTML != "" {
		gs, ok := sv.(*solver.GaussSeidel)
		if !ok {
			return errors.New("--trace and --trace-html need the gauss-seidel solver")
		}
		gs.OnSweep = trace.Record
	}

	res, err := analysis.Solve(cmd.Context(), s, analysisOptions(sv)...)
	if err != nil {
		var cerr *solver.ConvergenceError
		if errors.As(err, &cerr) {
			out.Warn(fmt.Sprintf("no convergence after %d iterations (residual %.3g)", cerr.Iterations, cerr.Residual))
			out.Step("raise --max-sweeps or --tolerance, or try --solver conjugate-gradient")
		}
		return err
	}

	printResult(out, s, res)

	if solveBars {
		bars, err := diagram.DrawMemberBars(res, field, min(40, termWidth()/3))
		if err != nil {
			return err
		}
		out.Println(bars)
	}

	if solveTrace {
		chart, err := diagram.ConvergenceASCII(trace, termWidth()-12, 12)
		if err != nil {
			return err
		}
		out.Section("convergence")
		out.Println(chart)
		out.Println()
	}

	return writeOutputs(out, res, field, trace)
}

func writeOutputs(out *output.Printer, res *analysis.Result, field analysis.Field, trace *diagram.Trace) error {
	if solvePlot != "" {
		w, h := imageSize()
		path := outPath(solvePlot, cfg.Output.Format)
		opt := diagram.Options{
			Title:   "Truss " + string(field),
			Field:   field,
			Magnify: cfg.Output.Magnify,
			Labels:  solveLabels,
			Width:   w,
			Height:  h,
		}
		if err := diagram.ExportStructure(res, path, opt); err != nil {
			return fmt.Errorf("exporting diagram: %w", err)
		}
		out.Success("Diagram exported to: " + path)
	}

	if solveReport != "" {
		path := outPath(solveReport, "json")
		if err := writeFile(path, func(f *os.File) error {
			format, err := trussfile.FormatOf(path)
			if err != nil {
				return err
			}
			return trussfile.WriteReport(f, res, format)
		}); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		out.Success("Report written to: " + path)
	}

	if solveGeoJSON != "" {
		path := outPath(solveGeoJSON, "geojson")
		if err := writeFile(path, func(f *os.File) error {
			return trussfile.WriteGeoJSON(f, res)
		}); err != nil {
			return fmt.Errorf("writing geojson: %w", err)
		}
		out.Success("GeoJSON written to: " + path)
	}

	if solveTraceHTML != "" {
		path := outPath(solveTraceHTML, "html")
		if err := writeFile(path, func(f *os.File) error {
			return diagram.ExportConvergenceHTML(trace, f)
		}); err != nil {
			return fmt.Errorf("writing convergence chart: %w", err)
		}
		out.Success("Convergence chart written to: " + path)
	}
	return nil
}

// outPath places name in the output directory unless it is absolute or
// already has a directory, and adds ext when name has none
func outPath(name, ext string) string {
	if filepath.Ext(name) == "" {
		name += "." + ext
	}
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(cfg.Output.Dir, name)
}

func writeFile(path string, write func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printResult(out *output.Printer, s *truss.Structure, res *analysis.Result) {
	out.Header("plane truss analysis")

	out.Section("model")
	w := out.Table()
	fmt.Fprintf(w, "  Points:\t%d\n", s.NumPoints())
	fmt.Fprintf(w, "  Members:\t%d\n", s.NumMembers())
	fmt.Fprintf(w, "  Degrees of freedom:\t%d (%d restrained)\n", s.NumDOF(), countTrue(res.Restrained()))
	fmt.Fprintf(w, "  Solver:\t%s (tolerance %g)\n", cfg.Solver.Method, cfg.Solver.Tolerance)
	fmt.Fprintf(w, "  Load scale:\t%g\n", res.LoadScale())
	fmt.Fprintf(w, "  Residual |Ku - F|:\t%.3g\n", res.Residual())
	w.Flush()
	out.Println()

	out.Section("displacements")
	w = out.Table()
	fmt.Fprintf(w, "  Point\tX\tY\tux\tuy\tSupport\n")
	fmt.Fprintf(w, "  ─────\t─\t─\t──\t──\t───────\n")
	for _, p := range s.Points() {
		ux, uy, _ := res.Displacement(p.ID)
		fmt.Fprintf(w, "  %d\t%g\t%g\t%.6g\t%.6g\t%s\n", p.ID, p.X, p.Y, ux, uy, support(p.Constraint))
	}
	w.Flush()
	out.Println()

	out.Section("members")
	w = out.Table()
	fmt.Fprintf(w, "  Member\tPoints\tStrain\tStress\tForce\tState\n")
	fmt.Fprintf(w, "  ──────\t──────\t──────\t──────\t─────\t─────\n")
	def, ten, frc := res.Deformations(), res.Tensions(), res.MemberForces()
	for i, m := range s.Members() {
		state := "tension"
		switch {
		case frc[i] < 0:
			state = "compression"
		case frc[i] == 0:
			state = "zero"
		}
		fmt.Fprintf(w, "  %d\t%d-%d\t%.6g\t%.6g\t%.6g\t%s\n", m.ID, m.P1.ID, m.P2.ID, def[i], ten[i], frc[i], state)
	}
	w.Flush()
	out.Println()

	out.Section("reactions")
	w = out.Table()
	fmt.Fprintf(w, "  Point\tRx\tRy\n")
	fmt.Fprintf(w, "  ─────\t──\t──\n")
	var sumX, sumY float64
	for _, r := range res.Reactions() {
		fmt.Fprintf(w, "  %d\t%.6g\t%.6g\n", r.PointID, r.X, r.Y)
		sumX += r.X
		sumY += r.Y
	}
	fmt.Fprintf(w, "  Σ\t%.6g\t%.6g\n", sumX, sumY)
	w.Flush()
	out.Println()

	id, umax := res.MaxDisplacement()
	out.Println(diagram.DrawSummaryBox("RESULT", []string{
		fmt.Sprintf("Max displacement  %.6g at point %d", umax, id),
		fmt.Sprintf("Max |force|       %.6g", maxAbs(frc)),
	}))
}

func support(c truss.Constraint) string {
	switch {
	case c.X && c.Y:
		return "pinned"
	case c.X:
		return "roller (x)"
	case c.Y:
		return "roller (y)"
	}
	return ""
}

func countTrue(v []bool) int {
	n := 0
	for _, b := range v {
		if b {
			n++
		}
	}
	return n
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if x < 0 {
			x = -x
		}
		m = max(m, x)
	}
	return m
}
