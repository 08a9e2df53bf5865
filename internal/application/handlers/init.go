// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sbertone/inventario/internal/domain/ports"
	"github.com/sbertone/inventario/internal/infrastructure/config"
)

// StoreOpener opens the store described by a configuration.
type StoreOpener func(cfg *config.Config) (ports.Store, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	open StoreOpener
}

// NewInitHandler creates a new init handler.
func NewInitHandler(open StoreOpener) *InitHandler {
	return &InitHandler{open: open}
}

// InitOptions overrides defaults in the written config. Zero values keep the
// commented default template.
type InitOptions struct {
	Backend string
	TTLDays int
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath string
	Backend    string
	DataDir    string
}

// Handle writes the default configuration and creates the empty documents.
func (h *InitHandler) Handle(ctx context.Context, basePath string, opts InitOptions) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("inventario already initialized in %s", basePath)
	}

	if err := writeConfig(basePath, opts); err != nil {
		return nil, err
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := h.open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating documents: %w", err)
	}

	return &InitResult{
		ConfigPath: config.ConfigFilePath(basePath),
		Backend:    cfg.Storage.Backend,
		DataDir:    cfg.Storage.DataDir,
	}, nil
}

func writeConfig(basePath string, opts InitOptions) error {
	if opts == (InitOptions{}) {
		if err := config.WriteDefault(basePath); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
		return nil
	}

	cfg := config.Default()
	if opts.Backend != "" {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(opts.Backend))
	}
	if opts.TTLDays != 0 {
		cfg.RecycleBin.TTLDays = opts.TTLDays
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Write(basePath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
