package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandu-machineni/iconify/internal/api"
	"github.com/chandu-machineni/iconify/internal/mcp"
	"github.com/chandu-machineni/iconify/internal/output"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Long: `Run the icon search REST API.

Endpoints:
  GET /api/v1/icons?q=&library=&style=&category=&page=
  GET /api/v1/icons/popular
  GET /api/v1/libraries
  GET /api/v1/libraries/{prefix}/icons?limit=
  GET /api/v1/categories
  GET /api/v1/stats
  GET /api/v1/svg/{prefix:name}?size=&stroke=&color=
  GET /healthz
  GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			output.New(cmd.OutOrStdout()).Successf("Serving on http://%s", ln.Addr())
			return runServe(ctx, a, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	return cmd
}

// runServe serves the API on ln until ctx is done, then shuts down gracefully.
func runServe(ctx context.Context, a *app, ln net.Listener) error {
	handler := api.NewServer(a.engine,
		api.WithSVG(a.client),
		api.WithGatherer(a.registry),
		api.WithRecorder(a.recorder),
		api.WithLogger(a.logger),
	)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http_server_started", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	a.logger.Info("http_server_stopped")
	return nil
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout so AI assistants
can search icons and fetch SVGs.

stdout carries JSON-RPC only. Logs go to ~/.iconify/logs/iconify.log;
view them with 'iconify logs -f'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			srv, err := mcp.NewServer(a.engine,
				mcp.WithSVG(a.client),
				mcp.WithRecorder(a.recorder),
				mcp.WithLogger(a.logger),
				mcp.WithPageSize(a.cfg.Search.PageSize),
			)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context(), "stdio")
		},
	}
}
