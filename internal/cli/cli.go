// Package cli implements the nest command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/4TheSolutions/nest/pkg/buildinfo"
	"github.com/4TheSolutions/nest/pkg/config"
	"github.com/4TheSolutions/nest/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "nest"

	// defaultMapName is the document opened when no name argument is given.
	defaultMapName = "default"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value; empty means the default
	// location (~/.config/nest/nest.toml).
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Nest edits mind maps of nested circles",
		Long:         `Nest is a mind-map editor where every node is a circle and parent circles grow to enclose their children. Maps are edited in the terminal, served over HTTP, and exported as SVG, PNG or DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/nest/nest.toml)")

	// Register all subcommands
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.mapsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

// loadConfig reads the configuration honoring the --config flag.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured storage backend.
func (c *CLI) openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage (%s): %w", cfg.Storage.Backend, err)
	}
	return store, nil
}

// mapName extracts the document name from positional args.
func mapName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultMapName
}
