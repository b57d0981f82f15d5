package cmd

import (
	"os"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/alexiusacademia/gotruss/internal/truss"
	"github.com/alexiusacademia/gotruss/internal/trussfile"
	"golang.org/x/term"
	"gonum.org/v1/plot/vg"
)

// loadStructure reads a structure file; entry forces the entry text format
// regardless of the extension
func loadStructure(path string, entry bool) (*truss.Structure, error) {
	if entry {
		return trussfile.LoadAs(path, trussfile.FormatEntry)
	}
	return trussfile.Load(path)
}

// analysisOptions turns the configuration into analysis options around sv
func analysisOptions(sv solver.Solver) []analysis.Option {
	return []analysis.Option{
		analysis.WithSolver(sv),
		analysis.WithTolerance(cfg.Solver.Tolerance),
		analysis.WithLoadScale(cfg.Solver.LoadScale),
		analysis.WithWorkers(cfg.Solver.Workers),
		analysis.WithLogger(log),
	}
}

// imageSize converts the configured output size from inches
func imageSize() (w, h vg.Length) {
	return vg.Length(cfg.Output.Width) * vg.Inch, vg.Length(cfg.Output.Height) * vg.Inch
}

// termWidth returns the width of the terminal on stdout, or 80 when stdout is
// not a terminal
func termWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
