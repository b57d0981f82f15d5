package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"github.com/alexiusacademia/gotruss/internal/output"
	"github.com/spf13/cobra"
)

var validateEntry bool

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a structure file without solving it",
	Long: `Load the structure in FILE, check every member has a length and a
material, and check the supports can hold the structure in the plane.

Examples:
  gotruss validate examples/shelf.yaml
  gotruss validate --entry examples/pyramid.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateEntry, "entry", false, "Read FILE in the entry text format")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := output.New(cmd.OutOrStdout())

	s, err := loadStructure(args[0], validateEntry)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	mask := analysis.NewMask(s)
	if err := mask.CheckRestraints(); err != nil {
		return err
	}

	loaded := 0
	for _, p := range s.Points() {
		if !p.Resultant().IsZero() {
			loaded++
		}
	}

	out.Success(args[0] + " is valid")
	out.Step(fmt.Sprintf("%d points, %d members", s.NumPoints(), s.NumMembers()))
	out.Step(fmt.Sprintf("%d degrees of freedom, %d restrained", mask.Len(), len(mask.RestrainedIndices())))
	out.Step(fmt.Sprintf("%d loaded points", loaded))
	return nil
}
