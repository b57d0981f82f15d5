package cmd

import (
	"github.com/alexiusacademia/gotruss/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the solver over HTTP",
	Long: `Start an HTTP server exposing:

  POST /api/v1/solve       structure document (JSON) in, result report out
                           query: scale, solver, tolerance, format=geojson
  GET  /api/v1/materials   material presets
  GET  /healthz            liveness

Examples:
  gotruss serve --addr :8080
  curl -X POST --data @examples/bridge.json localhost:8080/api/v1/solve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.New(cfg, log).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Listen address")
}
