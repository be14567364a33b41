// sandbox runs fixed-step 2D scenes with an in-process editor.
//
// Usage:
//
//	sandbox list             - List available scenes
//	sandbox run <scene>      - Open a window and run a scene
//	sandbox bench <scene>    - Run a scene headless over scripted frames
//	sandbox stats [scene]    - Show recorded sessions and crash records
//
// Global flags:
//
//	--config <path>     - Config file (YAML or TOML)
//	--db <path>         - Session database (default: ~/.sandbox/sandbox.db)
//	--log-level <lvl>   - debug, info, warn, error
//	--seed <value>      - World seed
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/storage"

	// Import scenes to register them
	_ "github.com/vovakirdan/sandbox/internal/scenes/bounce"
	_ "github.com/vovakirdan/sandbox/internal/scenes/fountain"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
	flagSeed     int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Sandbox - fixed-step 2D scenes with a live editor",
	Long: `Sandbox runs small 2D scenes on a fixed 60Hz simulation step with an
in-process editor that can pause, single-step and reset the simulation.

Available commands:
  list     - Show all available scenes
  run      - Run a scene in a window
  bench    - Run a scene headless and report frame timings
  stats    - View recorded sessions

Examples:
  sandbox list
  sandbox run bounce
  sandbox run fountain --editor
  sandbox bench bounce --frames 600 --stall-every 30
  sandbox stats bounce`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (YAML or TOML)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to session database (default ~/.sandbox/sandbox.db)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "World seed")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig loads the config file and layers the global flags that were set.
func loadConfig(cmd *cobra.Command, extra config.Overrides) (config.SandboxConfig, error) {
	cfg, source, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		extra.Database = &flagDBPath
	}
	if flags.Changed("log-level") {
		extra.LogLevel = &flagLogLevel
	}
	if flags.Changed("seed") {
		extra.Seed = &flagSeed
	}
	cfg.ApplyOverrides(extra)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", source, err)
	}
	return cfg, nil
}

func newLogger(cfg config.SandboxConfig) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sandbox",
		Level:           cfg.LogLevel(),
	})
}

// openStore opens the session database. Failures are logged and the sandbox
// continues without persistence.
func openStore(cfg config.SandboxConfig, logger *log.Logger) *storage.Store {
	if !cfg.Storage.Enabled {
		return nil
	}
	path := cfg.DatabasePath()
	if path == "" {
		logger.Warn("no session database path, sessions will not be saved")
		return nil
	}
	store, err := storage.Open(path)
	if err != nil {
		logger.Warn("could not open session database", "path", path, "error", err)
		return nil
	}
	return store
}
