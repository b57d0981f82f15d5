// Package config loads gotruss settings from defaults, an optional
// gotruss.yaml file, GOTRUSS_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alexiusacademia/gotruss/internal/logger"
	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Name of the config file without extension
const Name = "gotruss"

// EnvPrefix prefixes every environment override, e.g. GOTRUSS_SOLVER_TOLERANCE
const EnvPrefix = "GOTRUSS"

// Config holds every tunable setting
type Config struct {
	Solver   SolverConfig `mapstructure:"solver"`
	LogLevel string       `mapstructure:"log_level"`
	Output   OutputConfig `mapstructure:"output"`
	Server   ServerConfig `mapstructure:"server"`
}

type SolverConfig struct {
	Method    string  `mapstructure:"method"`
	Tolerance float64 `mapstructure:"tolerance"`
	MaxSweeps int     `mapstructure:"max_sweeps"`
	LoadScale float64 `mapstructure:"load_scale"`
	Workers   int     `mapstructure:"workers"`
}

type OutputConfig struct {
	Dir     string  `mapstructure:"dir"`
	Format  string  `mapstructure:"format"` // image format for diagrams
	Width   float64 `mapstructure:"width"`  // inches
	Height  float64 `mapstructure:"height"` // inches
	Magnify float64 `mapstructure:"magnify"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Keys bound to command-line flags
const (
	KeyMethod    = "solver.method"
	KeyTolerance = "solver.tolerance"
	KeyMaxSweeps = "solver.max_sweeps"
	KeyLoadScale = "solver.load_scale"
	KeyWorkers   = "solver.workers"
	KeyLogLevel  = "log_level"
	KeyOutputDir = "output.dir"
	KeyFormat    = "output.format"
	KeyWidth     = "output.width"
	KeyHeight    = "output.height"
	KeyMagnify   = "output.magnify"
	KeyAddr      = "server.addr"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMethod, solver.NameGaussSeidel)
	v.SetDefault(KeyTolerance, solver.DefaultTolerance)
	v.SetDefault(KeyMaxSweeps, solver.DefaultMaxSweeps)
	v.SetDefault(KeyLoadScale, 1.0)
	v.SetDefault(KeyWorkers, runtime.GOMAXPROCS(0))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyFormat, "png")
	v.SetDefault(KeyWidth, 8.0)
	v.SetDefault(KeyHeight, 6.0)
	v.SetDefault(KeyMagnify, 1.0)
	v.SetDefault(KeyAddr, ":8080")
}

// Default returns the built-in configuration
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config: decoding defaults: %v", err))
	}
	return cfg
}

// Load reads the configuration. path names an explicit config file; when
// empty, gotruss.yaml is looked up in the working directory and in
// $HOME/.config/gotruss, and a missing file is not an error. flags, when not
// nil, override every other source for the flags the user actually set.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"solver":     KeyMethod,
	"tolerance":  KeyTolerance,
	"max-sweeps": KeyMaxSweeps,
	"scale":      KeyLoadScale,
	"workers":    KeyWorkers,
	"log-level":  KeyLogLevel,
	"out-dir":    KeyOutputDir,
	"format":     KeyFormat,
	"width":      KeyWidth,
	"height":     KeyHeight,
	"magnify":    KeyMagnify,
	"addr":       KeyAddr,
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// Validate rejects settings the solver or renderer cannot use
func (c *Config) Validate() error {
	if _, err := solver.New(c.Solver.Method, c.Solver.MaxSweeps); err != nil {
		return err
	}
	if !(c.Solver.Tolerance > 0) {
		return fmt.Errorf("solver.tolerance must be positive, got %g", c.Solver.Tolerance)
	}
	if c.Solver.MaxSweeps < 1 {
		return fmt.Errorf("solver.max_sweeps must be at least 1, got %d", c.Solver.MaxSweeps)
	}
	if !(c.Solver.LoadScale > 0) {
		return fmt.Errorf("solver.load_scale must be positive, got %g", c.Solver.LoadScale)
	}
	if c.Solver.Workers < 1 {
		return fmt.Errorf("solver.workers must be at least 1, got %d", c.Solver.Workers)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if !(c.Output.Width > 0) || !(c.Output.Height > 0) {
		return fmt.Errorf("output size must be positive, got %gx%g", c.Output.Width, c.Output.Height)
	}
	if !(c.Output.Magnify > 0) {
		return fmt.Errorf("output.magnify must be positive, got %g", c.Output.Magnify)
	}
	return nil
}

// NewSolver builds the configured solver
func (c *Config) NewSolver() (solver.Solver, error) {
	return solver.New(c.Solver.Method, c.Solver.MaxSweeps)
}

// Level returns the parsed log level
func (c *Config) Level() logger.Level {
	lvl, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.LevelInfo
	}
	return lvl
}
