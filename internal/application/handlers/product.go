package handlers

import (
	"context"
	"fmt"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/services"
)

// ProductHandler handles inventory and search operations.
type ProductHandler struct {
	inventory *services.InventoryService
	search    *services.SearchService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(inventory *services.InventoryService, search *services.SearchService) *ProductHandler {
	return &ProductHandler{
		inventory: inventory,
		search:    search,
	}
}

// HandleList returns the inventory, optionally ordered by a field.
func (h *ProductHandler) HandleList(ctx context.Context, sortBy string, desc bool) ([]entities.Product, error) {
	products, err := h.inventory.List(ctx, services.ListOptions{SortBy: sortBy, Desc: desc})
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// HandleAdd validates and stores a new product. A possible duplicate comes
// back as a *services.DuplicateError unless force is set.
func (h *ProductHandler) HandleAdd(ctx context.Context, data, criteria map[string]string, force bool) (entities.Product, error) {
	p, err := h.inventory.Add(ctx, data, services.AddOptions{Criteria: criteria, Force: force})
	if err != nil {
		return nil, fmt.Errorf("adding product: %w", err)
	}
	return p, nil
}

// HandleSearch returns products whose field contains query.
func (h *ProductHandler) HandleSearch(ctx context.Context, field, query string) ([]entities.Product, error) {
	products, err := h.search.ByField(ctx, field, query)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	return products, nil
}

// HandleSimilar returns products matching every criterion.
func (h *ProductHandler) HandleSimilar(ctx context.Context, criteria map[string]string) ([]entities.Product, error) {
	products, err := h.search.Similar(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("searching similar products: %w", err)
	}
	return products, nil
}

// HandleFindUnique returns the product holding value in a unique field, or nil.
func (h *ProductHandler) HandleFindUnique(ctx context.Context, field, value string) (entities.Product, error) {
	p, err := h.search.ByUnique(ctx, field, value)
	if err != nil {
		return nil, fmt.Errorf("searching by unique field: %w", err)
	}
	return p, nil
}

// HandleModify updates the product selected by criteria. pick is the 1-based
// position among the matches; 0 means the criteria must match exactly one.
func (h *ProductHandler) HandleModify(ctx context.Context, criteria map[string]string, pick int, changes map[string]string) (entities.Product, error) {
	chosen, err := h.pick(ctx, criteria, pick)
	if err != nil {
		return nil, err
	}
	p, err := h.inventory.Modify(ctx, criteria, chosen, changes)
	if err != nil {
		return nil, fmt.Errorf("modifying product: %w", err)
	}
	return p, nil
}

// HandleDelete sends the product selected by criteria to the recycle bin.
// pick works as in HandleModify.
func (h *ProductHandler) HandleDelete(ctx context.Context, criteria map[string]string, pick int) (entities.Product, error) {
	chosen, err := h.pick(ctx, criteria, pick)
	if err != nil {
		return nil, err
	}
	p, err := h.inventory.Delete(ctx, criteria, chosen)
	if err != nil {
		return nil, fmt.Errorf("deleting product: %w", err)
	}
	return p, nil
}

func (h *ProductHandler) pick(ctx context.Context, criteria map[string]string, pick int) (entities.Product, error) {
	if pick <= 0 {
		return nil, nil
	}
	candidates, err := h.search.Similar(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("searching candidates: %w", err)
	}
	if pick > len(candidates) {
		return nil, fmt.Errorf("%w: pick %d out of range, %d products match", services.ErrInvalidInput, pick, len(candidates))
	}
	return candidates[pick-1], nil
}
