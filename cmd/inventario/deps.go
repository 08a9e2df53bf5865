package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sbertone/inventario/internal/application/handlers"
	"github.com/sbertone/inventario/internal/domain/ports"
	"github.com/sbertone/inventario/internal/domain/services"
	"github.com/sbertone/inventario/internal/infrastructure/config"
	"github.com/sbertone/inventario/internal/infrastructure/logging"
	"github.com/sbertone/inventario/internal/infrastructure/storage"
	"github.com/sbertone/inventario/internal/infrastructure/storage/jsonfile"
	"github.com/sbertone/inventario/internal/infrastructure/storage/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and the store are internal.
type Deps struct {
	Config   *config.Config
	Fields   *handlers.FieldHandler
	Products *handlers.ProductHandler
	Bin      *handlers.BinHandler
	History  *handlers.HistoryHandler
	Import   *handlers.ImportHandler
}

// basePath returns the workspace directory.
func basePath() (string, error) {
	if globalDir != "" {
		return filepath.Abs(globalDir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}

// loadConfig loads the workspace config and applies command-line overrides.
func loadConfig(base string) (*config.Config, error) {
	cfg, err := config.Load(base)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if globalDataDir != "" {
		defaultDB := filepath.Join(cfg.Storage.DataDir, config.DefaultSQLiteFile)
		cfg.Storage.DataDir = globalDataDir
		if cfg.Storage.SQLitePath == defaultDB {
			cfg.Storage.SQLitePath = ""
		}
	}
	if globalBackend != "" {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(globalBackend))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Resolve(base)

	return cfg, nil
}

// openStore opens the document store selected by the config.
func openStore(cfg *config.Config) (ports.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		repo, err := sqlite.NewRepository(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite repository: %w", err)
		}
		return storage.NewStore(repo), nil
	case config.BackendJSON:
		repo, err := jsonfile.NewRepository(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("creating json repository: %w", err)
		}
		return storage.NewStore(repo), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically. Expired recycle bin entries are purged
// before fn runs.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	base, err := basePath()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(base)
	if err != nil {
		return err
	}

	slog.SetDefault(logging.NewSlogLogger(os.Stderr, cfg.Log))

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("preparing store: %w", err)
	}

	deps := buildDeps(cfg, store)

	purged, err := deps.Bin.HandlePurge(ctx)
	if err != nil {
		return err
	}
	if purged > 0 {
		slog.InfoContext(ctx, "expired recycle bin entries purged", "count", purged)
	}

	return fn(deps)
}

// buildDeps wires services and handlers over a store.
func buildDeps(cfg *config.Config, store ports.Store) *Deps {
	history := services.NewHistoryService(store)
	bin := services.NewRecycleBinService(store, history, cfg.BinTTL())
	fields := services.NewFieldService(store, bin, history)
	unique := services.NewUniqueService(store, history)
	inventory := services.NewInventoryService(store, bin, history)
	search := services.NewSearchService(store)

	return &Deps{
		Config:   cfg,
		Fields:   handlers.NewFieldHandler(fields, unique),
		Products: handlers.NewProductHandler(inventory, search),
		Bin:      handlers.NewBinHandler(bin),
		History:  handlers.NewHistoryHandler(history),
		Import:   handlers.NewImportHandler(services.NewImportService(store, history)),
	}
}
