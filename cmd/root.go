package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexiusacademia/gotruss/internal/config"
	"github.com/alexiusacademia/gotruss/internal/logger"
	"github.com/alexiusacademia/gotruss/internal/output"
	"github.com/alexiusacademia/gotruss/internal/version"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool

	// cfg is loaded before any subcommand runs
	cfg = config.Default()
	log = logger.Default()
)

var rootCmd = &cobra.Command{
	Use:   "gotruss",
	Short: "Plane truss analysis tool",
	Long: `gotruss - Go Plane Truss Analyser

A CLI tool for the static analysis of pin-jointed plane trusses
using the direct stiffness method.

This tool helps structural engineers:
  - Compute nodal displacements and support reactions
  - Compute axial strain, stress and force in every member
  - Plot deformed shapes coloured by member results
  - Animate the response under an increasing load
  - Envelope member forces over NSCP 2015 load combinations
  - Serve analyses over an HTTP API

Structures are read from YAML, JSON or plain entry text files.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	Run: func(cmd *cobra.Command, args []string) {
		out := output.New(cmd.OutOrStdout())
		out.Println()
		out.Println("  ╔═══════════════════════════════════════════════════════════╗")
		out.Println("  ║                                                           ║")
		out.Println(fmt.Sprintf("  ║   gotruss v%-47s║", version.Version))
		out.Println("  ║   Go Plane Truss Analyser                                 ║")
		out.Println("  ║                                                           ║")
		out.Println("  ╚═══════════════════════════════════════════════════════════╝")
		out.Println()
		out.Println("  Features:")
		out.Println("    • Direct stiffness assembly of pin-jointed members")
		out.Println("    • Gauss-Seidel and conjugate gradient solvers")
		out.Println("    • Displacements, reactions, member strain, stress and force")
		out.Println("    • PNG/SVG/PDF diagrams and GIF load animations")
		out.Println()
		out.Println("  Use 'gotruss --help' to see available commands.")
		out.Println()
		out.Println("  ─────────────────────────────────────────────────────────────")
		out.Println(fmt.Sprintf("  Copyright © %s %s. All rights reserved.", version.Year, version.Author))
		out.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.New(os.Stderr).Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default ./gotruss.yaml or ~/.config/gotruss/gotruss.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log analysis stages (same as --log-level debug)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error, silent")
	pf.String("solver", "gauss-seidel", "Linear solver: gauss-seidel, conjugate-gradient")
	pf.Float64("tolerance", 1e-5, "Relative convergence tolerance")
	pf.Int("max-sweeps", 100000, "Maximum solver iterations")
	pf.Int("workers", 0, "Parallel analyses for load sequences (default GOMAXPROCS)")
}

// loadConfig merges defaults, config file, environment and flags, then sets
// up the default logger
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Level()
	if verbose {
		level = logger.LevelDebug
	}
	log = logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)
	log.Debug("configuration loaded",
		logger.F("solver", cfg.Solver.Method),
		logger.F("tolerance", cfg.Solver.Tolerance),
		logger.F("workers", cfg.Solver.Workers),
	)
	return nil
}
