package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chandu-machineni/iconify/internal/output"
	"github.com/chandu-machineni/iconify/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var (
		jsonOutput  bool
		shortOutput bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the iconify version, git commit, build date and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case shortOutput:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Short())
				return err
			case jsonOutput:
				return output.New(cmd.OutOrStdout()).JSON(version.GetInfo())
			default:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")

	return cmd
}
