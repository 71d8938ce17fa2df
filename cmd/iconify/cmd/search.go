package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandu-machineni/iconify/internal/api"
	"github.com/chandu-machineni/iconify/internal/output"
	"github.com/chandu-machineni/iconify/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	libraries  []string
	styles     []string
	categories []string
	page       int
	format     string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search icons across all providers",
		Long: `Search icons across every configured provider at once.

Results are merged in provider order, deduplicated by qualified name
and filtered by library, style and category.

Examples:
  iconify search arrow right
  iconify search home --style solid --library mdi,bi
  iconify search cart --category ecommerce --page 2
  iconify search user --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.libraries, "library", "l", nil, "Restrict to library prefixes (repeatable or comma-separated)")
	cmd.Flags().StringSliceVarP(&opts.styles, "style", "s", nil, "Restrict to styles: outline, solid, thin, duotone, bold")
	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "Restrict to categories (see 'iconify categories')")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Provider page to fetch")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	if err := search.ValidateQuery(query); err != nil {
		return err
	}
	if err := search.ValidatePage(opts.page); err != nil {
		return err
	}
	if opts.page == 0 {
		opts.page = 1
	}
	filters, err := search.ParseFilters(opts.libraries, opts.styles, opts.categories)
	if err != nil {
		return err
	}
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	slog.Info("search_started", slog.String("query", query), slog.Int("page", opts.page))
	start := time.Now()
	icons, err := a.engine.Search(ctx, query, filters, opts.page)
	if err != nil {
		return err
	}
	slog.Info("search_complete", slog.Int("results", len(icons)), slog.Duration("duration", time.Since(start)))

	out := output.New(cmd.OutOrStdout())
	if opts.format == "json" {
		return out.JSON(api.SearchResponse{
			Query: strings.TrimSpace(query),
			Page:  opts.page,
			Count: len(icons),
			Icons: icons,
		})
	}
	out.Icons(icons, fmt.Sprintf("%d icons for %q, page %d", len(icons), strings.TrimSpace(query), opts.page))
	return nil
}

func newPopularCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Show popular icons from every provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			icons, err := a.engine.Popular(cmd.Context())
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if format == "json" {
				return out.JSON(api.IconsResponse{Count: len(icons), Icons: icons})
			}
			out.Icons(icons, fmt.Sprintf("%d popular icons", len(icons)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func newLibrariesCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "libraries [prefix]",
		Short: "List icon libraries, or the icons of one library",
		Long: `Without arguments, list the known icon libraries with approximate sizes.
With a library prefix, list icons from that library.

Examples:
  iconify libraries
  iconify libraries heroicons --limit 50`,
		Aliases: []string{"libs"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			a, err := loadApp()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if format == "json" {
					return out.JSON(api.LibrariesResponse{
						Libraries:  a.engine.Libraries(),
						TotalIcons: a.engine.EstimateTotalIconCount(),
					})
				}
				out.Libraries(a.engine.Libraries())
				return nil
			}

			icons, err := a.engine.Library(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if format == "json" {
				return out.JSON(api.IconsResponse{Count: len(icons), Icons: icons})
			}
			out.Icons(icons, fmt.Sprintf("%d icons from %s", len(icons), args[0]))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLibraryLimit, "Maximum icons to list for a library")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List icon categories usable with --category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			if format == "json" {
				return out.JSON(a.engine.Categories())
			}
			out.Categories(a.engine.Categories())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q: use text or json", format)
	}
}
