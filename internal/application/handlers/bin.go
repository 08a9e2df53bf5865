package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/services"
)

// BinHandler handles recycle bin operations.
type BinHandler struct {
	bin *services.RecycleBinService
}

// NewBinHandler creates a new recycle bin handler.
func NewBinHandler(bin *services.RecycleBinService) *BinHandler {
	return &BinHandler{bin: bin}
}

// HandleList returns bin entries. entity may be empty, "producto" or "campo".
func (h *BinHandler) HandleList(ctx context.Context, entity string, includeExpired bool) ([]entities.BinEntry, error) {
	kind, err := parseEntityKind(entity)
	if err != nil {
		return nil, err
	}
	entries, err := h.bin.List(ctx, services.BinFilter{Entity: kind, IncludeExpired: includeExpired})
	if err != nil {
		return nil, fmt.Errorf("listing recycle bin: %w", err)
	}
	return entries, nil
}

// HandleGet returns a single bin entry.
func (h *BinHandler) HandleGet(ctx context.Context, id string) (*entities.BinEntry, error) {
	entry, err := h.bin.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("getting bin entry: %w", err)
	}
	return entry, nil
}

// HandleRestore brings a record back from the bin.
func (h *BinHandler) HandleRestore(ctx context.Context, id string) (*services.RestoreResult, error) {
	result, err := h.bin.Restore(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("restoring bin entry: %w", err)
	}
	return result, nil
}

// HandlePurge drops expired entries and returns how many were removed.
func (h *BinHandler) HandlePurge(ctx context.Context) (int, error) {
	n, err := h.bin.Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("purging recycle bin: %w", err)
	}
	return n, nil
}

func parseEntityKind(s string) (entities.EntityKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return "", nil
	case string(entities.EntityProduct), "productos", "product":
		return entities.EntityProduct, nil
	case string(entities.EntityField), "campos", "field":
		return entities.EntityField, nil
	case string(entities.EntityUniqueField), "unique":
		return entities.EntityUniqueField, nil
	default:
		return "", fmt.Errorf("%w: unknown entity %q", services.ErrInvalidInput, s)
	}
}
