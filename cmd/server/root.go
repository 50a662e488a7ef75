package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redirector/internal/botdetect"
	"redirector/internal/config"
	"redirector/internal/db"
	"redirector/internal/jobs"
	"redirector/internal/logging"
	"redirector/internal/metrics"
	"redirector/internal/server"
)

// newRootCmd creates the redirector command. Flags override the config file
// and REDIRECTOR_* environment variables.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "redirector",
		Short:         "Short-path redirector with link preview cards for chat crawlers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush
			zap.ReplaceGlobals(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	cmd.Flags().String("host", "0.0.0.0", "address to listen on")
	cmd.Flags().Int("port", 8080, "port to listen on")
	cmd.Flags().String("socket", "", "unix socket path; overrides host and port")
	cmd.Flags().String("db-url", "", "database url (postgres://... or memory://)")
	cmd.Flags().String("admin-token", "", "token required in the Authorization header of admin API requests")
	cmd.Flags().String("seed", "", "YAML file of mappings to insert at startup")

	return cmd
}

// run wires the store, background workers and listeners, then blocks until
// ctx is cancelled or the HTTP server fails.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, err := db.Open(ctx, cfg.Database.URL, db.Options{
		MaxConns: cfg.Database.MaxConns,
		Migrate:  cfg.Database.Migrate,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := seed(ctx, cfg, store, logger); err != nil {
		return err
	}

	metrics.Init(store)
	metricsSrv := startMetrics(cfg.Metrics.Addr, logger)

	hits := jobs.NewHitCounter(store, cfg.Hits.Workers, cfg.Hits.QueueSize, cfg.Hits.Timeout, logger.Named("hits"))
	hitsCtx, stopHits := context.WithCancel(context.Background())
	hitsDone := make(chan struct{})
	go func() {
		hits.Start(hitsCtx)
		close(hitsDone)
	}()

	srv := server.New(&cfg, logger)
	srv.RegisterRoutes(store, hits, botdetect.NewSignatures(cfg.Redirect.CrawlerSignatures...))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Error("server stopped", zap.Error(err))
	}

	if shutdownErr := srv.App.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); shutdownErr != nil {
		logger.Warn("server forced to shutdown", zap.Error(shutdownErr))
	}
	if cfg.Server.Socket != "" {
		_ = os.Remove(cfg.Server.Socket)
	}

	stopHits()
	<-hitsDone

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if shutdownErr := metricsSrv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("metrics server forced to shutdown", zap.Error(shutdownErr))
		}
	}

	logger.Info("server exited")
	return err
}

func seed(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) error {
	file, err := config.LoadSeedFile(cfg.Seed.File)
	if err != nil {
		return err
	}
	if file == nil {
		return nil
	}

	inserted, err := db.SeedMappings(ctx, store, file.Mappings)
	if err != nil {
		return fmt.Errorf("seed mappings: %w", err)
	}
	logger.Info("seeded mappings",
		zap.String("file", cfg.Seed.File),
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(file.Mappings)-inserted),
	)
	return nil
}

// startMetrics serves /metrics on its own listener so it can never shadow a
// mapping path. It returns nil when addr is empty.
func startMetrics(addr string, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
