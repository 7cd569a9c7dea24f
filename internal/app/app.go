// Package app assembles the configured store, logger and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tokligence/moviegraph/internal/catalog"
	"github.com/tokligence/moviegraph/internal/catalog/postgres"
	"github.com/tokligence/moviegraph/internal/catalog/sqlite"
	"github.com/tokligence/moviegraph/internal/config"
	"github.com/tokligence/moviegraph/internal/health"
	"github.com/tokligence/moviegraph/internal/httpserver"
	"github.com/tokligence/moviegraph/internal/instance"
	"github.com/tokligence/moviegraph/internal/logging"
	"github.com/tokligence/moviegraph/internal/seed"
	"github.com/tokligence/moviegraph/internal/version"
)

// NewLogger builds the process logger from config.
func NewLogger(cfg config.Config, prefix string) (*log.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:        cfg.LogLevel,
		File:         cfg.LogFile,
		MaxFileBytes: cfg.LogMaxBytes,
		Prefix:       prefix,
	})
}

// OpenStore opens the catalog backend selected by database_driver.
func OpenStore(cfg config.Config) (catalog.Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.Driver = cfg.PostgresDriver
		if cfg.DBMaxOpenConns > 0 {
			pgCfg.MaxOpenConns = cfg.DBMaxOpenConns
		}
		if cfg.DBMaxIdleConns > 0 {
			pgCfg.MaxIdleConns = cfg.DBMaxIdleConns
		}
		if cfg.DBConnMaxLifetime > 0 {
			pgCfg.ConnMaxLifetime = cfg.DBConnMaxLifetime
		}
		store, err := postgres.New(cfg.DatabaseDSN, pgCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres catalog: %w", err)
		}
		return store, nil
	case config.DriverSQLite, "":
		store, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite catalog %s: %w", cfg.DatabasePath, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// SeedFile applies a YAML fixture to the store.
func SeedFile(ctx context.Context, store catalog.Store, path string, logger *log.Logger) (seed.Result, error) {
	fx, err := seed.LoadFile(path)
	if err != nil {
		return seed.Result{}, err
	}
	return seed.Apply(ctx, store, fx, logger)
}

// NewHTTPServer wires the router and health checker for the given store.
func NewHTTPServer(cfg config.Config, store catalog.Store, logger *log.Logger) (*http.Server, error) {
	instanceID, err := instance.GetOrCreateID(cfg.InstanceDir)
	if err != nil {
		// Health still works without an id.
		logger.Warn("instance id unavailable", "err", err)
	}
	checker := health.New(health.Config{
		Database:   store,
		InstanceID: instanceID,
		Version:    version.Version,
	})
	srv, err := httpserver.New(httpserver.Config{
		Store:             store,
		Logger:            logger,
		Health:            checker,
		MaxDepth:          cfg.GraphQLMaxDepth,
		PlaygroundEnabled: cfg.PlaygroundEnabled,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("moviegraph starting", "version", version.Version, "instance_id", instanceID, "driver", cfg.DatabaseDriver)
	return &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.SeedFile != "" {
		if _, err := SeedFile(ctx, store, cfg.SeedFile, logger); err != nil {
			return fmt.Errorf("seed on start: %w", err)
		}
	}

	srv, err := NewHTTPServer(cfg, store, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("moviegraph listening", "addr", cfg.HTTPAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
