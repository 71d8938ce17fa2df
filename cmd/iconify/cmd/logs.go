package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chandu-machineni/iconify/internal/logging"
	"github.com/chandu-machineni/iconify/internal/output"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View iconify logs",
		Long: `View and tail the iconify log file.

By default, shows the last 50 lines. Use -f to follow new log entries
in real-time (like 'tail -f').

Examples:
  iconify logs                    # Show last 50 lines
  iconify logs -n 100             # Show last 100 lines
  iconify logs -f                 # Follow logs in real-time
  iconify logs --level error      # Show only error logs
  iconify logs --filter "search"  # Filter by pattern`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Filter by log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter by keyword/pattern (regex)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return err
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	stdout := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || !output.UseColor(stdout),
	}, stdout)

	stderr := cmd.ErrOrStderr()
	_, _ = fmt.Fprintf(stderr, "Log file: %s\n", path)
	if !opts.follow {
		_, _ = fmt.Fprintln(stderr, "---")
		entries, err := viewer.Tail(path, opts.lines)
		if err != nil {
			return err
		}
		viewer.Print(entries)
		return nil
	}

	_, _ = fmt.Fprintln(stderr, "Following... (Ctrl+C to stop)")
	_, _ = fmt.Fprintln(stderr, "---")
	return runFollow(cmd.Context(), cmd, viewer, path)
}

func runFollow(ctx context.Context, cmd *cobra.Command, viewer *logging.Viewer, path string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)

	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "\n---\nStopped.")
			return nil
		}
	}
}
