package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alexiusacademia/gotruss/internal/combination"
	"github.com/alexiusacademia/gotruss/internal/output"
	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/alexiusacademia/gotruss/internal/trussfile"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	combosEntry      bool
	combosSimplified bool
	combosOnly       string
	combosReport     string
)

var combosCmd = &cobra.Command{
	Use:   "combos FILE",
	Short: "Envelope member forces over NSCP 2015 load combinations",
	Long: `Analyse FILE once per strength design load combination and report, for
every member, the largest tension and compression with the combination that
produces it.

Loads are classified by their case field (D, L, Lr, W, E, R). Loads without
a case are treated as dead load. Combinations offering a choice ("Lr or R")
run once per alternative (2a, 2b, ...); --combo 2 selects all of them.

Examples:
  gotruss combos examples/bridge.json
  gotruss combos examples/bridge.json --simplified
  gotruss combos examples/bridge.json --combo 2,6 --report envelope.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCombos,
}

func init() {
	rootCmd.AddCommand(combosCmd)

	f := combosCmd.Flags()
	f.BoolVar(&combosEntry, "entry", false, "Read FILE in the entry text format")
	f.BoolVar(&combosSimplified, "simplified", false, "Use the gravity-only combinations (1.4D, 1.2D + 1.6L)")
	f.StringVar(&combosOnly, "combo", "", "Only run the combinations with these comma separated IDs (3 selects 3a to 3d)")
	f.StringVarP(&combosReport, "report", "o", "", "Write the envelope to a JSON or YAML file")
}

// envelopeReport is the file form of a combination run
type envelopeReport struct {
	Combinations []combination.Combination    `json:"combinations" yaml:"combinations"`
	Members      []combination.MemberEnvelope `json:"members" yaml:"members"`
}

func selectCombinations() ([]combination.Combination, error) {
	set := combination.Basic
	if combosSimplified {
		set = combination.Simplified
	}
	if combosOnly == "" {
		return set, nil
	}
	var combos []combination.Combination
	for _, id := range strings.Split(combosOnly, ",") {
		c, err := combination.Select(strings.TrimSpace(id), set)
		if err != nil {
			return nil, err
		}
		combos = append(combos, c...)
	}
	return combos, nil
}

func runCombos(cmd *cobra.Command, args []string) error {
	out := output.New(cmd.OutOrStdout())
	out.SetVerbose(verbose)

	combos, err := selectCombinations()
	if err != nil {
		return err
	}

	s, err := loadStructure(args[0], combosEntry)
	if err != nil {
		return fmt.Errorf("loading structure: %w", err)
	}

	sv, err := solver.New(cfg.Solver.Method, cfg.Solver.MaxSweeps)
	if err != nil {
		return err
	}

	out.Verbose(fmt.Sprintf("running %d load combinations on %d workers", len(combos), cfg.Solver.Workers))
	results, err := combination.Solve(cmd.Context(), s, combos, analysisOptions(sv)...)
	if err != nil {
		return err
	}
	env, err := combination.Envelope(combos, results)
	if err != nil {
		return err
	}

	out.Header("load combinations")
	w := out.Table()
	fmt.Fprintf(w, "  ID\tCombination\n")
	fmt.Fprintf(w, "  ──\t───────────\n")
	for _, c := range combos {
		fmt.Fprintf(w, "  %s\t%s\n", c.ID, c.Description)
	}
	w.Flush()
	out.Println()

	out.Section("member force envelope")
	w = out.Table()
	fmt.Fprintf(w, "  Member\tMax\tCombo\tMin\tCombo\tGoverning\n")
	fmt.Fprintf(w, "  ──────\t───\t─────\t───\t─────\t─────────\n")
	for _, e := range env {
		g, gid := e.Governing()
		fmt.Fprintf(w, "  %d\t%.4g\t%s\t%.4g\t%s\t%.4g (%s)\n", e.MemberID, e.Max, e.MaxCombo, e.Min, e.MinCombo, g, gid)
	}
	w.Flush()
	out.Println()

	if combosReport == "" {
		return nil
	}
	path := outPath(combosReport, "json")
	format, err := trussfile.FormatOf(path)
	if err != nil {
		return err
	}
	rep := envelopeReport{Combinations: combos, Members: env}
	if err := writeFile(path, func(f *os.File) error {
		switch format {
		case trussfile.FormatJSON:
			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		case trussfile.FormatYAML:
			enc := yaml.NewEncoder(f)
			enc.SetIndent(2)
			if err := enc.Encode(rep); err != nil {
				return err
			}
			return enc.Close()
		}
		return fmt.Errorf("envelope reports are written as json or yaml, not %s", format)
	}); err != nil {
		return fmt.Errorf("writing envelope: %w", err)
	}
	out.Success("Envelope written to: " + path)
	return nil
}
