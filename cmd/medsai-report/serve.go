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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/medsai/report-engine/internal/api"
	"github.com/medsai/report-engine/internal/archive"
	"github.com/medsai/report-engine/internal/config"
	"github.com/medsai/report-engine/internal/logging"
	"github.com/medsai/report-engine/internal/metrics"
	"github.com/medsai/report-engine/internal/pdfcheck"
	"github.com/medsai/report-engine/pkg/reporting"
)

var shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the report API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	// Baseline logging for early startup messages
	logging.Init(logging.Config{
		Format:    "auto",
		Level:     "info",
		Component: "medsai-report",
	})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: "medsai-report",
	})

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	log.Info().
		Str("version", Version).
		Str("addr", cfg.ListenAddr()).
		Bool("archive", cfg.ArchiveEnabled).
		Bool("validate_output", cfg.ValidateOutput).
		Msg("Starting MedsAI report server")

	return svc.Run(ctx)
}

// service wires the configured components behind the API.
type service struct {
	cfg     *config.Config
	handler http.Handler
	store   *archive.Store
	watcher *config.CatalogWatcher
}

func newService(cfg *config.Config) (*service, error) {
	svc := &service{cfg: cfg}

	var loggerOpts []logging.Option
	if logging.IsLevelEnabled(zerolog.DebugLevel) {
		loggerOpts = append(loggerOpts, logging.WithCaller())
	}
	engineOpts := []reporting.Option{
		reporting.WithLogger(logging.New("reporting", loggerOpts...)),
	}
	if cfg.WorkupCatalogPath != "" {
		watcher, err := config.NewCatalogWatcher(cfg.WorkupCatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load workup catalog: %w", err)
		}
		catalogLog := logging.New("catalog", logging.WithFields(map[string]interface{}{
			"path": cfg.WorkupCatalogPath,
		}))
		watcher.SetReloadCallback(func(c *reporting.WorkupCatalog) {
			catalogLog.Info().Int("panels", len(c.Panels)).Msg("New reports use the reloaded workup catalog")
		})
		if err := watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("Workup catalog hot reload disabled")
		}
		svc.watcher = watcher
		engineOpts = append(engineOpts, reporting.WithWorkupSource(watcher.Current))
	}

	opts := api.Options{
		Engine:         reporting.NewReportEngine(engineOpts...),
		MaxBodyBytes:   cfg.MaxBodyBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	if cfg.ArchiveEnabled {
		storeCfg := archive.DefaultConfig(cfg.DataDir)
		storeCfg.DBPath = cfg.ArchivePath
		store, err := archive.NewStore(storeCfg)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("open report archive: %w", err)
		}
		if n, err := store.Count(context.Background()); err == nil {
			metrics.SetArchiveSize(n)
		}
		svc.store = store
		opts.Archive = store
	}

	if cfg.ValidateOutput {
		opts.Validator = pdfcheck.Validate
	}

	svc.handler = api.NewServer(opts)
	return svc, nil
}

// Run serves the API and metrics listeners until ctx is cancelled or one of
// them fails.
func (s *service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// No ReadTimeout: record bodies may be large.
	apiServer := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	g.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Msg("API server listening")
		return serve(apiServer)
	})
	g.Go(func() error {
		<-ctx.Done()
		return shutdown(apiServer)
	})

	if addr := s.cfg.MetricsAddr(); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		}
		g.Go(func() error {
			log.Info().Str("addr", addr).Msg("Metrics endpoint listening")
			return serve(metricsServer)
		})
		g.Go(func() error {
			<-ctx.Done()
			return shutdown(metricsServer)
		})
	}

	err := g.Wait()
	log.Info().Msg("Report server stopped")
	return err
}

// Close releases the watcher and archive.
func (s *service) Close() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close report archive")
		}
	}
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Str("addr", srv.Addr).Msg("Failed to shut down server cleanly")
		return err
	}
	return nil
}
