// Package cmd provides the CLI commands for iconify.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chandu-machineni/iconify/internal/config"
	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/logging"
	"github.com/chandu-machineni/iconify/pkg/version"
)

// Global flags
var (
	debugMode      bool
	projectDir     string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the iconify CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iconify",
		Short: "Search icons across open-source icon libraries",
		Long: `iconify searches many open-source icon libraries at once and merges
the results into one deduplicated list, with a style and category
inferred for every icon.

Use it from the terminal, run it as a REST API with 'iconify serve',
or give AI assistants access with 'iconify mcp'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("iconify version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.iconify/logs/ and stderr")
	cmd.PersistentFlags().StringVar(&projectDir, "dir", ".", "Directory searched for .iconify.yaml")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newPopularCmd())
	cmd.AddCommand(newLibrariesCmd())
	cmd.AddCommand(newCategoriesCmd())
	cmd.AddCommand(newSVGCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging routes slog to the log file at server.log_level. Only --debug
// also writes to stderr, so the MCP transport and command output stay clean.
// A broken config is left for the command itself to report.
func startLogging(cmd *cobra.Command, args []string) error {
	// A failed previous run skips PersistentPostRunE
	_ = stopLogging(cmd, args)

	level := "info"
	if appCfg, err := config.Load(projectDir); err == nil {
		level = appCfg.Server.LogLevel
	}
	cfg := logging.StdioConfig(level)
	if debugMode {
		cfg = logging.DebugConfig()
	}
	cfg.Process = cmd.Name()

	cleanup, err := logging.SetupDefault(cfg)
	if err != nil {
		if debugMode {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		slog.SetDefault(logging.Discard())
		return nil
	}
	loggingCleanup = cleanup

	if debugMode {
		slog.Info("Debug logging enabled",
			slog.String("log_file", cfg.FilePath),
			slog.String("version", version.Version))
	}
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	err := NewRootCmd().Execute()
	_ = stopLogging(nil, nil)
	if err != nil {
		fmt.Fprint(os.Stderr, ierrors.FormatForCLI(err))
	}
	return err
}
