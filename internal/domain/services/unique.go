package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/ports"
)

// UniqueService marks fields whose values must be distinct across products.
type UniqueService struct {
	store   ports.Store
	history *HistoryService
}

// NewUniqueService creates a new UniqueService.
func NewUniqueService(store ports.Store, history *HistoryService) *UniqueService {
	return &UniqueService{
		store:   store,
		history: history,
	}
}

// List returns the unique field names that still exist in the schema.
func (s *UniqueService) List(ctx context.Context) ([]string, error) {
	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return st.unique, nil
}

// IsUnique reports whether the named field is marked unique.
func (s *UniqueService) IsUnique(ctx context.Context, name string) (bool, error) {
	name = entities.NormalizeName(name)
	if name == "" {
		return false, nil
	}
	st, err := loadState(ctx, s.store)
	if err != nil {
		return false, err
	}
	return st.isUnique(name), nil
}

// Mark flags a field as unique. It fails with a *UniqueConflictError if two
// products already share a value for the field.
func (s *UniqueService) Mark(ctx context.Context, name string) error {
	name = entities.NormalizeName(name)
	if name == "" {
		return fmt.Errorf("%w: invalid field name", ErrInvalidInput)
	}

	st, err := loadState(ctx, s.store)
	if err != nil {
		return err
	}
	if !st.schema.Has(name) {
		return fmt.Errorf("%w: field %q does not exist", ErrNotFound, name)
	}
	if st.isUnique(name) {
		return fmt.Errorf("%w: field %q is already unique", ErrConflict, name)
	}
	if conflicts := DetectConflicts(name, st.products); len(conflicts) > 0 {
		return &UniqueConflictError{Conflicts: conflicts}
	}

	st.setUnique(name, true)
	if err := s.store.SaveUniqueFields(ctx, st.unique); err != nil {
		return fmt.Errorf("saving unique fields: %w", err)
	}

	slog.DebugContext(ctx, "field marked unique", "field", name)
	return s.recordToggle(ctx, name, true)
}

// Unmark removes the unique flag from a field.
func (s *UniqueService) Unmark(ctx context.Context, name string) error {
	name = entities.NormalizeName(name)
	if name == "" {
		return fmt.Errorf("%w: invalid field name", ErrInvalidInput)
	}

	st, err := loadState(ctx, s.store)
	if err != nil {
		return err
	}
	if !st.isUnique(name) {
		return fmt.Errorf("%w: field %q is not marked unique", ErrNotFound, name)
	}

	st.setUnique(name, false)
	if err := s.store.SaveUniqueFields(ctx, st.unique); err != nil {
		return fmt.Errorf("saving unique fields: %w", err)
	}

	slog.DebugContext(ctx, "field unmarked unique", "field", name)
	return s.recordToggle(ctx, name, false)
}

func (s *UniqueService) recordToggle(ctx context.Context, name string, unique bool) error {
	_, err := s.history.Record(ctx, entities.ActionUpdate, entities.EntityUniqueField,
		map[string]any{"campo": name, "unico": !unique},
		map[string]any{"campo": name, "unico": unique},
		nil,
	)
	return err
}

// DetectConflicts returns every pair of products sharing a value for field.
// Products without the field are ignored.
func DetectConflicts(field string, products []entities.Product) []UniqueConflict {
	var conflicts []UniqueConflict
	type seenValue struct {
		value any
		index int
	}
	var seen []seenValue

	for i, p := range products {
		v, ok := p[field]
		if !ok || v == nil {
			continue
		}
		matched := false
		for _, s := range seen {
			if entities.ValuesEqual(s.value, v) {
				conflicts = append(conflicts, UniqueConflict{
					Field:    field,
					Value:    v,
					Products: []int{s.index, i},
				})
				matched = true
				break
			}
		}
		if !matched {
			seen = append(seen, seenValue{value: v, index: i})
		}
	}
	return conflicts
}

// checkUnique returns the unique-field conflicts candidate would cause against
// products. The product at index skip (if >= 0) is excluded, which lets a
// product be compared against all the others.
func checkUnique(candidate entities.Product, unique []string, products []entities.Product, skip int) []UniqueConflict {
	var conflicts []UniqueConflict
	for _, field := range unique {
		v, ok := candidate[field]
		if !ok || v == nil {
			continue
		}
		for i, existing := range products {
			if i == skip {
				continue
			}
			if ev, ok := existing[field]; ok && entities.ValuesEqual(ev, v) {
				conflicts = append(conflicts, UniqueConflict{
					Field:    field,
					Value:    v,
					Products: []int{i},
				})
				break
			}
		}
	}
	return conflicts
}
