// Package app wires the storage adapter, control-plane client,
// correlation engine and periodic service into a runnable worker.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/osvik/riskwatch/internal/adapters/catalog"
	"github.com/osvik/riskwatch/internal/adapters/cloud"
	"github.com/osvik/riskwatch/internal/adapters/storage"
	"github.com/osvik/riskwatch/internal/config"
	"github.com/osvik/riskwatch/internal/core/services/correlation"
	"github.com/osvik/riskwatch/internal/core/services/periodic"
	"github.com/osvik/riskwatch/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App owns the worker's long-lived components.
type App struct {
	cfg   *config.Config
	store *storage.SQLiteAdapter

	// Manager is exported so embedding callers (the ingestion path)
	// can hand risks to ProcessRisk directly.
	Manager *correlation.Manager

	periodic   *periodic.Service
	metricsSrv *http.Server
}

// New constructs the application from configuration.
func New(cfg *config.Config) (*App, error) {
	store, err := storage.NewSQLiteAdapter(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if cfg.SeedPath != "" {
		if err := catalog.NewSeedLoader(store).LoadFromFile(cfg.SeedPath); err != nil {
			store.Close()
			return nil, fmt.Errorf("seeding catalog: %w", err)
		}
	}

	cloudClient := cloud.NewClient(cfg.CloudEndpoint, cfg.CloudToken, cfg.CloudTimeout)
	manager := correlation.NewManager(store, cloudClient, cfg.CloudTimeout)

	svc := periodic.NewService()
	svc.Register(periodic.Task{
		Name:     "sweep-expired-risks",
		Interval: cfg.SweepInterval,
		Run: func(ctx context.Context) error {
			return manager.SweepExpired(ctx, time.Now())
		},
	})

	telemetry.InitMetrics()
	prometheus.DefaultRegisterer.Register(telemetry.NewStoreCollector(store))

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &App{
		cfg:      cfg,
		store:    store,
		Manager:  manager,
		periodic: svc,
		metricsSrv: &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: router,
		},
	}, nil
}

// Run starts the periodic service and the metrics endpoint, then blocks
// until ctx is cancelled. Shutdown waits for in-flight periodic work.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics server listening", "addr", a.cfg.MetricsAddr)
		if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	a.periodic.Start(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	}

	slog.Info("shutting down")
	a.periodic.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metricsSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown", "error", err)
	}

	return a.store.Close()
}
