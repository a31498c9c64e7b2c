/*
serve.go - HTTP server command

STARTUP SEQUENCE:
  1. Open the configured store (sqlite or postgres)
  2. Optionally seed the demo dataset
  3. Wire resolver, selector, handler, router
  4. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown_timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Embedded store with demo data
  ratesd serve --db ./rates.db --seed-demo

  # Postgres
  ratesd serve --driver postgres --dsn "$DATABASE_URL"
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bph/rate-engine/api"
	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
	"github.com/bph/rate-engine/fixtures"
	"github.com/bph/rate-engine/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rate lookup HTTP server",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	f.BoolVar(&cfg.SeedDemo, "seed-demo", false, "Load the bundled demo dataset on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	st, closeStore, err := openStore(ctx)
	if err != nil {
		log.Error().Err(err).Msg("store initialization failed")
		return err
	}
	defer closeStore()

	if cfg.SeedDemo {
		if err := fixtures.LoadDemo(ctx, st); err != nil {
			log.Error().Err(err).Msg("demo seed failed")
			return err
		}
		log.Info().Msg("demo dataset loaded")
	}

	resolver := engine.NewResolver(st)
	selector := feeschedule.NewSelector(st, log)
	handler := api.NewHandler(resolver, selector, st, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.Driver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
