package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandu-machineni/iconify/internal/api"
	"github.com/chandu-machineni/iconify/internal/output"
)

func newStatsCmd() *cobra.Command {
	var (
		addr   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache and query statistics of a running server",
		Long: `Fetch cache and query statistics from a running 'iconify serve'.

Examples:
  iconify stats
  iconify stats --addr 127.0.0.1:9000 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if addr == "" {
				a, err := loadApp()
				if err != nil {
					return err
				}
				addr = a.cfg.Server.Addr
			}

			stats, err := fetchStats(cmd.Context(), addr)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if format == "json" {
				return out.JSON(stats)
			}
			out.Stats(stats.Cache, stats.Queries)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Server address (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func fetchStats(ctx context.Context, addr string) (*api.StatsResponse, error) {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server not reachable at %s (is 'iconify serve' running?): %w", addr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats request failed: HTTP %d", resp.StatusCode)
	}
	var stats api.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("invalid stats response: %w", err)
	}
	return &stats, nil
}
