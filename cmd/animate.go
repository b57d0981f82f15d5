package cmd

import (
	"fmt"
	"time"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"github.com/alexiusacademia/gotruss/internal/diagram"
	"github.com/alexiusacademia/gotruss/internal/output"
	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/spf13/cobra"
)

var (
	animateEntry  bool
	animateFrames int
	animateOut    string
	animateField  string
	animateDelay  time.Duration
)

var animateCmd = &cobra.Command{
	Use:   "animate FILE",
	Short: "Animate the response of a truss under an increasing load",
	Long: `Solve the truss in FILE for load scales 1/n, 2/n, ..., 1 (times --scale)
and write the displaced shapes as an animated GIF. The load scales are
analysed in parallel, bounded by --workers.

Examples:
  gotruss animate examples/bridge.json --frames 30 --magnify 200
  gotruss animate examples/pyramid.txt -o pyramid.gif --field tension`,
	Args: cobra.ExactArgs(1),
	RunE: runAnimate,
}

func init() {
	rootCmd.AddCommand(animateCmd)

	f := animateCmd.Flags()
	f.BoolVar(&animateEntry, "entry", false, "Read FILE in the entry text format")
	f.IntVarP(&animateFrames, "frames", "n", 20, "Number of load steps")
	f.StringVarP(&animateOut, "output", "o", "animation.gif", "GIF file to write")
	f.StringVar(&animateField, "field", string(analysis.FieldForce), "Member result to colour by: deformation, tension, force")
	f.DurationVar(&animateDelay, "delay", diagram.DefaultFrameDelay, "Time each frame is shown")
	f.Float64("scale", 1, "Load factor reached by the last frame")
	f.Float64("magnify", 1, "Displacement magnification")
}

func runAnimate(cmd *cobra.Command, args []string) error {
	out := output.New(cmd.OutOrStdout())

	field, err := analysis.ParseField(animateField)
	if err != nil {
		return err
	}
	if animateFrames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", animateFrames)
	}

	s, err := loadStructure(args[0], animateEntry)
	if err != nil {
		return fmt.Errorf("loading structure: %w", err)
	}
	sv, err := solver.New(cfg.Solver.Method, cfg.Solver.MaxSweeps)
	if err != nil {
		return err
	}

	scales := diagram.Scales(animateFrames)
	for i := range scales {
		scales[i] *= cfg.Solver.LoadScale
	}

	out.Info(fmt.Sprintf("Solving %d load steps on %d workers", len(scales), cfg.Solver.Workers))
	start := time.Now()
	results, err := analysis.SolveScaled(cmd.Context(), s, scales, analysisOptions(sv)...)
	if err != nil {
		return err
	}
	out.Step(fmt.Sprintf("solved in %s", time.Since(start).Round(time.Millisecond)))

	w, h := imageSize()
	path := outPath(animateOut, "gif")
	opt := diagram.Options{
		Title:   "Truss " + string(field),
		Field:   field,
		Magnify: cfg.Output.Magnify,
		Width:   w,
		Height:  h,
	}
	if err := diagram.ExportAnimation(results, path, opt, animateDelay); err != nil {
		return fmt.Errorf("exporting animation: %w", err)
	}
	out.Success("Animation exported to: " + path)
	return nil
}
