package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/skillbench/internal/config"
	"github.com/fakeyudi/skillbench/internal/run"
	"github.com/fakeyudi/skillbench/internal/seed"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var (
	configPath string
	seedPath   string
)

var rootCmd = &cobra.Command{
	Use:           "skillbench",
	Short:         "Browse a skill bundle, its version history, and simulated agent runs",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if seedPath != "" {
			c.SeedPath = seedPath
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file to use instead of the global and project files")
	rootCmd.PersistentFlags().StringVar(&seedPath, "seed", "", "seed document to load instead of the built-in workspace")
}

// loadConfig layers global, project, and environment settings. An explicit
// --config file replaces the global and project layers.
func loadConfig() (config.Config, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading environment: %w", err)
	}
	if configPath != "" {
		file, err := config.LoadFile(configPath)
		if err != nil {
			return config.Config{}, err
		}
		return config.Merge(file, env), nil
	}
	global, err := config.LoadGlobal()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading global config: %w", err)
	}
	project, err := config.LoadProject()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading project config: %w", err)
	}
	return config.Merge(global, project, env), nil
}

// Execute runs the root command under ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openWorkspace loads the configured seed and applies the config overrides
// for the checked-out version and the model list.
func openWorkspace() (*seed.Workspace, error) {
	ws, err := seed.Open(cfg.SeedPath)
	if err != nil {
		return nil, err
	}
	if cfg.CurrentVersion != "" {
		if !hasVersionNamed(ws, cfg.CurrentVersion) {
			return nil, fmt.Errorf("current_version %q is not in %s", cfg.CurrentVersion, ws.Source)
		}
		ws.CurrentVersion = cfg.CurrentVersion
	}
	if len(cfg.Models) > 0 {
		ws.Models = cfg.Models
	}
	if len(ws.Models) == 0 {
		ws.Models = []string{cfg.DefaultModel}
	}
	return ws, nil
}

func hasVersionNamed(ws *seed.Workspace, name string) bool {
	for _, v := range ws.Versions.AllDescendingByNumber() {
		if v.Name == name {
			return true
		}
	}
	return false
}

// newExecutor returns an executor using the configured step delays.
func newExecutor(store *run.Store) *run.Executor {
	lo, hi := cfg.StepDelays()
	return &run.Executor{Store: store, MinDelay: lo, MaxDelay: hi}
}
