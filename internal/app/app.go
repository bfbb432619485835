// Package app wires the shared Tessera resources for command-line tools:
// configuration, object storage, the catalog, and the schema engine.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/tessera-db/tessera/internal/catalog"
	"github.com/tessera-db/tessera/internal/config"
	"github.com/tessera-db/tessera/internal/engine"
	"github.com/tessera-db/tessera/internal/storage"
	"github.com/tessera-db/tessera/pkg/schema"
)

// App holds the shared resources behind a schema context.
type App struct {
	cfg     *config.Config
	catalog *catalog.SQLiteCatalog
	store   storage.ObjectStore
	engine  *engine.Engine
	schema  *schema.Context
}

// New resolves and validates cfg, then opens storage and the catalog.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(store, cat, cfg.SchemaCodec)
	if err != nil {
		cat.Close()
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		catalog: cat,
		store:   store,
		engine:  eng,
		schema:  schema.NewContext(eng),
	}
	a.schema.SetErrorHandler(func(err error) {
		log.Printf("schema error: %v", err)
	})
	return a, nil
}

func newStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.Storage.Type {
	case "s3":
		return storage.NewS3Store(ctx, cfg.Storage.S3.Bucket, storage.S3Config{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		})
	default:
		return storage.NewLocalStore(cfg.Storage.Path)
	}
}

// SchemaContext returns the processing context bound to the engine.
func (a *App) SchemaContext() *schema.Context {
	return a.schema
}

// Catalog returns the array catalog.
func (a *App) Catalog() *catalog.SQLiteCatalog {
	return a.catalog
}

// Close releases the catalog connection.
func (a *App) Close() error {
	return a.catalog.Close()
}
