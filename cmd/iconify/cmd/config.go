package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chandu-machineni/iconify/internal/config"
	"github.com/chandu-machineni/iconify/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the iconify configuration.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/iconify/config.yaml)
  3. Project config (.iconify.yaml)
  4. Environment variables (ICONIFY_*)`,
		Example: `  # Create user config with the defaults
  iconify config init

  # Show effective configuration (merged from all sources)
  iconify config show

  # Print user config file path
  iconify config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Write the built-in defaults to ~/.config/iconify/config.yaml
(or $XDG_CONFIG_HOME/iconify/config.yaml if XDG_CONFIG_HOME is set),
including the provider list, ready for editing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())
			path := config.GetUserConfigPath()

			if config.UserConfigExists() && !force {
				out.Warning("User configuration already exists")
				out.Statusf("", "Location: %s", path)
				out.Dim("Use --force to overwrite it with the defaults")
				return nil
			}

			if err := config.NewConfig().WriteYAML(path); err != nil {
				return err
			}
			out.Success("Created user configuration")
			out.Statusf("", "Location: %s", path)
			out.Dim("Run 'iconify config show' to verify")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Example: `  # Show merged configuration
  iconify config show

  # Show as JSON
  iconify config show --json

  # Show only the user config
  iconify config show --source user`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg *config.Config
				err error
			)
			switch source {
			case "merged":
				cfg, err = config.Load(projectDir)
			case "user":
				cfg, err = config.LoadUserConfig()
				if err == nil && cfg == nil {
					return fmt.Errorf("no user configuration at %s (run 'iconify config init')", config.GetUserConfigPath())
				}
			case "defaults":
				cfg = config.NewConfig()
			default:
				return fmt.Errorf("unknown source %q: use merged, user or defaults", source)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, defaults")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}
