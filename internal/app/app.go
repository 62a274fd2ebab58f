// Package app wires the stores, caches and services shared by every binary.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/ilara/internal/cache"
	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/ilara/internal/catalog/store"
	"github.com/MrJamesThe3rd/ilara/internal/config"
	"github.com/MrJamesThe3rd/ilara/internal/database"
	"github.com/MrJamesThe3rd/ilara/internal/importer"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/ilara/internal/ledger/store"
	"github.com/MrJamesThe3rd/ilara/internal/observability"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
	"github.com/MrJamesThe3rd/ilara/internal/summary"
)

const (
	redisPrefix = "ilara:"
	productsKey = "products"
	entriesKey  = "ledger"
)

type App struct {
	Config   *config.Config
	Location *time.Location
	Metrics  *observability.Metrics

	Catalog  *catalog.Service
	Ledger   *ledger.Service
	POS      *pos.Service
	Summary  *summary.Service
	Importer *importer.Service

	closers []io.Closer
}

// New connects to the database, applies the schema and builds the services.
// The cache backend is Redis when REDIS_ADDR is set, process memory otherwise.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Location: loc, Metrics: observability.NewMetrics()}
	a.closers = append(a.closers, db)

	if err := database.Migrate(ctx, db); err != nil {
		a.Close()
		return nil, err
	}

	backend, err := a.cacheBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.wire(db, backend)

	return a, nil
}

func (a *App) cacheBackend(ctx context.Context) (cache.Backend, error) {
	c := a.Config.Cache
	if c.RedisAddr == "" {
		return cache.NewMemory(), nil
	}

	r, err := cache.NewRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB, redisPrefix)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	a.closers = append(a.closers, r)

	slog.Info("using redis cache", "addr", c.RedisAddr)

	return r, nil
}

func (a *App) wire(db *sql.DB, backend cache.Backend) {
	ttl := a.Config.Cache.TTL

	products := catalogStore.New(db)
	entries := ledgerStore.New(db)

	a.Catalog = catalog.NewService(products, cache.New[[]*catalog.Product](backend, productsKey, ttl), a.Config.Catalog.Categories)
	a.Ledger = ledger.NewService(entries, cache.New[[]*ledger.Entry](backend, entriesKey, ttl))
	a.POS = pos.NewService(products, entries, a.Metrics, a.Catalog, a.Ledger)
	a.Summary = summary.NewService(a.Catalog, a.Ledger, a.Config.Catalog.LowStockThreshold, a.Location)
	a.Importer = importer.NewService(a.Catalog, a.Ledger, a.Location)
}

// Close releases the database and cache connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Warn("failed to close resource", "error", err)
		}
	}
}

// NewLogger builds the process logger from the Log config. Output goes to w.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}

	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// LogFile opens cfg.Log.File for appending, or returns io.Discard with a
// no-op closer when no file is configured.
func LogFile(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.Log.File == "" {
		return io.Discard, func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	return f, f.Close, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}
