package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/normalize"
	"github.com/chandu-machineni/iconify/internal/output"
	"github.com/chandu-machineni/iconify/internal/provider"
)

type svgOptions struct {
	size   int
	stroke float64
	color  string
	outDir string
	stdout bool
}

func newSVGCmd() *cobra.Command {
	var opts svgOptions

	cmd := &cobra.Command{
		Use:   "svg <prefix:name>",
		Short: "Download an icon as an SVG file",
		Long: `Download one icon as SVG, rendered by the icon API at the requested
size, color and stroke width.

The file is named after the icon and its size, for example
arrow-right-24px.svg or arrow-right-24px-1.5px.svg.

Examples:
  iconify svg mdi:home
  iconify svg lucide:arrow-right --size 32 --stroke 1.5 -o assets/icons
  iconify svg tabler:star --color "#f59e0b" --stdout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qn, err := icon.ParseQualifiedName(args[0])
			if err != nil {
				return ierrors.New(ierrors.ErrCodeInvalidQualifiedName, err.Error(), err).
					WithSuggestion("icon names look like mdi:home; find them with 'iconify search'")
			}
			if opts.size <= 0 || opts.stroke < 0 {
				return ierrors.ValidationError("size must be positive and stroke must not be negative", nil)
			}

			a, err := loadApp()
			if err != nil {
				return err
			}

			render := icon.SVGOptions{Size: opts.size, StrokeWidth: opts.stroke, Color: opts.color}
			warn := output.New(cmd.ErrOrStderr())
			if opts.stroke > 0 && !icon.SupportsStroke(qn.Prefix) {
				warn.Warningf("%s icons ignore stroke width", qn.Prefix)
			}
			if opts.color != "" && icon.IsColored(qn.Prefix) {
				warn.Warningf("%s icons are multi-colour and ignore color", qn.Prefix)
			}

			body, err := a.client.SVG(cmd.Context(), qn, render)
			if err != nil {
				return err
			}

			if opts.stdout {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}

			ic, _ := normalize.Default().Normalize("", provider.RawHit{QualifiedName: qn.String()})
			path := filepath.Join(opts.outDir, icon.Filename(ic, render))
			if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(path, body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			output.New(cmd.OutOrStdout()).Successf("Saved %s", path)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.size, "size", icon.DefaultSize, "Width and height in pixels")
	cmd.Flags().Float64Var(&opts.stroke, "stroke", 0, "Stroke width for line icon sets (lucide, tabler, ...)")
	cmd.Flags().StringVar(&opts.color, "color", "", "Hex color, default currentColor")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "Directory to write the file to")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Write the SVG to stdout instead of a file")

	return cmd
}
