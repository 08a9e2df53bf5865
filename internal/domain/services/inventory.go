package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/ports"
)

// AddOptions controls duplicate detection when adding a product.
type AddOptions struct {
	// Criteria overrides the similarity criteria. By default every value of
	// the new product is used.
	Criteria map[string]string
	// Force adds the product even when similar products exist.
	Force bool
}

// ListOptions controls product listing order.
type ListOptions struct {
	SortBy string // field name; empty keeps storage order
	Desc   bool
}

// InventoryService orchestrates validation and persistence of products.
type InventoryService struct {
	store   ports.Store
	bin     *RecycleBinService
	history *HistoryService
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(store ports.Store, bin *RecycleBinService, history *HistoryService) *InventoryService {
	return &InventoryService{
		store:   store,
		bin:     bin,
		history: history,
	}
}

// Validate converts raw input into a product for the current schema and checks
// unique fields, without saving anything.
func (s *InventoryService) Validate(ctx context.Context, data map[string]string) (entities.Product, error) {
	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return buildProduct(st, data)
}

// Add validates and stores a new product. It fails if a field is missing or
// invalid, or if a unique field would repeat. If similar products exist and
// opts.Force is false it returns a *DuplicateError and stores nothing.
func (s *InventoryService) Add(ctx context.Context, data map[string]string, opts AddOptions) (entities.Product, error) {
	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}

	product, err := buildProduct(st, data)
	if err != nil {
		return nil, err
	}

	criteria := opts.Criteria
	if criteria == nil {
		criteria = criteriaFromProduct(product)
	}
	if matches := matchSimilar(st, criteria); len(matches) > 0 && !opts.Force {
		dup := &DuplicateError{Matches: make([]entities.Product, 0, len(matches))}
		for _, i := range matches {
			dup.Matches = append(dup.Matches, st.products[i].Clone())
		}
		return nil, dup
	}

	st.products = append(st.products, product)
	if err := s.store.SaveProducts(ctx, st.products); err != nil {
		return nil, fmt.Errorf("saving products: %w", err)
	}

	slog.DebugContext(ctx, "product added", "fields", len(product))
	if _, err := s.history.Record(ctx, entities.ActionCreate, entities.EntityProduct, nil, product.Clone(), nil); err != nil {
		return nil, err
	}
	return product.Clone(), nil
}

// List returns all products, optionally ordered by a field. Products missing
// the sort field go last.
func (s *InventoryService) List(ctx context.Context, opts ListOptions) ([]entities.Product, error) {
	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}

	products := cloneProducts(st.products)
	if opts.SortBy == "" {
		return products, nil
	}

	field := entities.NormalizeName(opts.SortBy)
	t, ok := st.schema.Lookup(field)
	if !ok {
		return nil, fmt.Errorf("%w: field %q does not exist", ErrNotFound, field)
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, aok := products[i][field]
		b, bok := products[j][field]
		if !aok || !bok {
			return aok && !bok
		}
		if opts.Desc {
			return compareValues(b, a, t) < 0
		}
		return compareValues(a, b, t) < 0
	})
	return products, nil
}

// Modify updates the product matching criteria with the given raw changes.
// When more than one product matches and chosen is nil, it returns an
// *AmbiguousMatchError; the caller retries passing one of the candidates.
func (s *InventoryService) Modify(ctx context.Context, criteria map[string]string, chosen entities.Product, changes map[string]string) (entities.Product, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no changes given", ErrInvalidInput)
	}

	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}

	idx, err := selectProduct(st, criteria, chosen)
	if err != nil {
		return nil, err
	}

	before := st.products[idx].Clone()
	updated := st.products[idx].Clone()
	for field, raw := range changes {
		field = entities.NormalizeName(field)
		t, ok := st.schema.Lookup(field)
		if !ok {
			return nil, fmt.Errorf("%w: field %q does not exist", ErrNotFound, field)
		}
		v, ok := ParseValue(raw, t)
		if !ok {
			return nil, fmt.Errorf("%w: invalid value %q for field %q", ErrInvalidInput, raw, field)
		}
		updated[field] = v
	}

	if conflicts := checkUnique(updated, st.unique, st.products, idx); len(conflicts) > 0 {
		return nil, &UniqueConflictError{Conflicts: conflicts}
	}

	st.products[idx] = updated
	if err := s.store.SaveProducts(ctx, st.products); err != nil {
		return nil, fmt.Errorf("saving products: %w", err)
	}

	slog.DebugContext(ctx, "product modified", "index", idx, "changes", len(changes))
	if _, err := s.history.Record(ctx, entities.ActionUpdate, entities.EntityProduct, before, updated.Clone(), nil); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Delete moves the product matching criteria to the recycle bin and removes
// it from the inventory. Ambiguity is handled as in Modify.
func (s *InventoryService) Delete(ctx context.Context, criteria map[string]string, chosen entities.Product) (entities.Product, error) {
	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}

	idx, err := selectProduct(st, criteria, chosen)
	if err != nil {
		return nil, err
	}

	snapshot := st.products[idx].Clone()
	st.products = append(st.products[:idx], st.products[idx+1:]...)
	if err := s.store.SaveProducts(ctx, st.products); err != nil {
		return nil, fmt.Errorf("saving products: %w", err)
	}

	// Inventory before bin: a live product must never have a bin entry.
	if _, err := s.bin.send(ctx, entities.EntityProduct, snapshot, st.schema, entities.ReasonProductDeleted); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "product deleted", "index", idx)
	if _, err := s.history.Record(ctx, entities.ActionDelete, entities.EntityProduct, snapshot, nil, nil); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// buildProduct validates raw input against every schema field.
func buildProduct(st *inventoryState, data map[string]string) (entities.Product, error) {
	if len(st.schema) == 0 {
		return nil, fmt.Errorf("%w: no fields defined", ErrState)
	}

	normalized := make(map[string]string, len(data))
	for k, v := range data {
		normalized[entities.NormalizeName(k)] = v
	}

	product := make(entities.Product, len(st.schema))
	for _, f := range st.schema {
		raw, ok := normalized[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing required field %q", ErrInvalidInput, f.Name)
		}
		v, ok := ParseValue(raw, f.Type)
		if !ok {
			return nil, fmt.Errorf("%w: invalid value %q for field %q (%s)", ErrInvalidInput, raw, f.Name, f.Type)
		}
		product[f.Name] = v
	}

	if conflicts := checkUnique(product, st.unique, st.products, -1); len(conflicts) > 0 {
		return nil, &UniqueConflictError{Conflicts: conflicts}
	}
	return product, nil
}

// selectProduct resolves criteria to a single product index. A chosen product
// must be one of the matches.
func selectProduct(st *inventoryState, criteria map[string]string, chosen entities.Product) (int, error) {
	matches := matchSimilar(st, criteria)
	if len(matches) == 0 {
		return -1, fmt.Errorf("%w: no products match the criteria", ErrNotFound)
	}

	if chosen != nil {
		for _, i := range matches {
			if st.products[i].Equal(chosen) {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: chosen product does not match the criteria", ErrNotFound)
	}

	if len(matches) > 1 {
		candidates := make([]entities.Product, 0, len(matches))
		for _, i := range matches {
			candidates = append(candidates, st.products[i].Clone())
		}
		return -1, &AmbiguousMatchError{Candidates: candidates}
	}
	return matches[0], nil
}

// compareValues orders two stored values: dates of a fecha field
// chronologically, numbers numerically, false before true, everything else by
// case-folded text.
func compareValues(a, b any, t entities.FieldType) int {
	if t == entities.FieldTypeDate {
		ad, aErr := time.Parse(DateLayout, entities.FormatValue(a))
		bd, bErr := time.Parse(DateLayout, entities.FormatValue(b))
		if aErr == nil && bErr == nil {
			return ad.Compare(bd)
		}
	}

	af, aNum := numeric(a)
	bf, bNum := numeric(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	ab, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool && bBool {
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}

	as := foldString(entities.FormatValue(a))
	bs := foldString(entities.FormatValue(b))
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
