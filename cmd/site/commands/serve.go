package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/TomerAberbach/website/infrastructure/di"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph API",
		Long: `Serve the graph API over HTTP.

The first graph build starts immediately; /ready reports 503 until it
finishes. In development, or with watchContent set, edits to posts trigger
a rebuild. A failed rebuild keeps serving the previous graph.

Examples:
  site serve
  site serve --addr :3000 --content ./posts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerAddress = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			logger := container.Logger
			defer func() { _ = logger.Sync() }()

			container.GraphService.Start(ctx)
			if container.Watcher != nil {
				container.Watcher.Start(ctx)
				defer container.Watcher.Stop()
			}

			srv := &http.Server{
				Addr:         cfg.ServerAddress,
				Handler:      container.Router.Setup(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting server",
					zap.String("address", cfg.ServerAddress),
					zap.String("contentDir", cfg.ContentDir),
					zap.Bool("watchContent", container.Watcher != nil),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides serverAddress)")
	return cmd
}
