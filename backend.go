package main

import (
	"context"
	"fmt"
	"time"

	"vehicle-storefront/config"
	"vehicle-storefront/storage"
	"vehicle-storefront/utils"
)

// openSource connects the backend selected by cfg.Backend.
func openSource(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.VehicleSource, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
		src, err := storage.NewPostgresSource(ctx, cfg.DSN(), retry)
		if err != nil {
			return nil, fmt.Errorf("%w (is the database running? docker compose up -d)", err)
		}
		return src, nil

	case config.BackendREST:
		return storage.NewRESTSource(cfg.RestURL, cfg.RestAPIKey)

	case config.BackendMemory:
		listings, err := storage.LoadFixtures(cfg.FixturesPath)
		if err != nil {
			return nil, err
		}
		logger.Info("[backend] Loaded %d fixture listings from %s", len(listings), cfg.FixturesPath)
		return storage.NewMemorySource(listings), nil
	}
	return nil, fmt.Errorf("%w %q", config.ErrUnknownBackend, cfg.Backend)
}
