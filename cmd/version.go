package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gotruss/internal/version"
	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gotruss",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(w, version.Version)
			return
		}
		fmt.Fprintln(w, version.String())
		fmt.Fprintln(w, "Plane truss analysis by the direct stiffness method")
		fmt.Fprintf(w, "(c) %s %s\n", version.Year, version.Author)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print the version number only")
}
