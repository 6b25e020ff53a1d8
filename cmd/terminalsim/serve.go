package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(rc *rootConfig) *cobra.Command {
	var paused bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and websocket stream while the simulation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rc.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a := newApp(cfg, logger)
			if _, err := a.bootstrap.Run(); err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}

			addr := fmt.Sprintf(":%d", cfg.Port)
			srv := &http.Server{
				Addr:         addr,
				Handler:      a.router(ctx),
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
				IdleTimeout:  cfg.IdleTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("server starting", slog.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutdown signal received")

				// Stop cycles first so no batch is published to a closing hub.
				a.scheduler.Stop()
				a.hub.Close()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("server shutdown: %w", err)
				}
				return nil
			})

			if !paused {
				a.scheduler.Start(ctx)
			}

			err = g.Wait()
			logger.Info("server stopped")
			return err
		},
	}
	cmd.Flags().BoolVar(&paused, "paused", false, "start with the simulation stopped (POST /streaming/start to begin)")
	return cmd
}

func newHealthcheckCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe /healthz of a running server on PORT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := rc.load()
			if err != nil {
				return err
			}
			resp, err := http.Get(fmt.Sprintf("http://localhost:%d/healthz", cfg.Port))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("healthz returned %d", resp.StatusCode)
			}
			return nil
		},
	}
}
