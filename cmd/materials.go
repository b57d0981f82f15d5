package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gotruss/internal/materials"
	"github.com/alexiusacademia/gotruss/internal/output"
	"github.com/spf13/cobra"
)

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List the material presets usable in structure files",
	Run: func(cmd *cobra.Command, args []string) {
		out := output.New(cmd.OutOrStdout())
		out.Section("material presets")
		w := out.Table()
		fmt.Fprintf(w, "  Name\tE (kPa)\tDescription\n")
		fmt.Fprintf(w, "  ────\t───────\t───────────\n")
		for _, p := range materials.All() {
			fmt.Fprintf(w, "  %s\t%.4g\t%s\n", p.Name, p.Elasticity, p.Description)
		}
		w.Flush()
		out.Println()
		out.Step(`Reference a preset from a structure file with: preset: steel`)
	},
}

func init() {
	rootCmd.AddCommand(materialsCmd)
}
