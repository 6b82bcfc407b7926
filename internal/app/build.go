package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ent0n29/neuromod/internal/config"
	"github.com/ent0n29/neuromod/internal/httpapi"
	"github.com/ent0n29/neuromod/internal/lifecycle"
	"github.com/ent0n29/neuromod/internal/observability"
	"github.com/ent0n29/neuromod/internal/policy"
	"github.com/ent0n29/neuromod/internal/session"
	"github.com/ent0n29/neuromod/internal/tools"
)

type BuildResult struct {
	Config   config.Config
	Store    session.Store
	Sessions *lifecycle.Service
	Catalog  *tools.Catalog
	API      *httpapi.Server
	Metrics  *observability.Metrics
	Logger   *zap.Logger

	// Cleanup should be called on shutdown to release the store and flush logs.
	Cleanup func() error
}

// Build wires the service graph. A nil registerer gives the metrics a private registry.
func Build(ctx context.Context, cfg config.Config, reg prometheus.Registerer) (*BuildResult, error) {
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace, reg)

	store, err := session.NewStore(ctx, session.StoreConfig{Mode: cfg.StoreMode, DatabaseURL: cfg.DatabaseURL})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("session store init failed: %w", err)
	}
	logger.Info("session store ready",
		zap.String("mode", store.Mode()),
		zap.String("database_url", policy.RedactDSN(cfg.DatabaseURL)),
	)

	sessions := lifecycle.NewService(store,
		lifecycle.WithLogger(logger.Named("lifecycle")),
		lifecycle.WithMetrics(metrics),
	)
	catalog := tools.NewCatalog(sessions,
		tools.WithDefaultOwner(cfg.DefaultOwner),
		tools.WithLogger(logger.Named("tools")),
		tools.WithMetrics(metrics),
	)
	api := httpapi.New(cfg, catalog, sessions, store.Mode(), metrics, logger.Named("http"))

	cleanup := func() error {
		err := store.Close()
		_ = logger.Sync()
		return err
	}

	return &BuildResult{
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Catalog:  catalog,
		API:      api,
		Metrics:  metrics,
		Logger:   logger,
		Cleanup:  cleanup,
	}, nil
}
