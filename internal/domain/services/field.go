package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/ports"
)

// FieldChanges lists the modifications to apply to a field. Nil members are
// left unchanged.
type FieldChanges struct {
	Name   *string
	Type   *entities.FieldType
	Unique *bool
}

// FieldService manages the user-defined product schema.
type FieldService struct {
	store   ports.Store
	bin     *RecycleBinService
	history *HistoryService
}

// NewFieldService creates a new FieldService.
func NewFieldService(store ports.Store, bin *RecycleBinService, history *HistoryService) *FieldService {
	return &FieldService{
		store:   store,
		bin:     bin,
		history: history,
	}
}

// List returns every field with its type and unique flag, in schema order.
func (s *FieldService) List(ctx context.Context) ([]entities.FieldInfo, error) {
	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	infos := make([]entities.FieldInfo, 0, len(st.schema))
	for _, f := range st.schema {
		infos = append(infos, st.fieldInfo(f.Name))
	}
	return infos, nil
}

// Schema returns the current field schema.
func (s *FieldService) Schema(ctx context.Context) (entities.Schema, error) {
	schema, err := s.store.LoadFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fields: %w", err)
	}
	return schema, nil
}

// Create adds a new field to the schema, optionally marking it unique.
func (s *FieldService) Create(ctx context.Context, name string, t entities.FieldType, unique bool) error {
	name = entities.NormalizeName(name)
	if name == "" || name == entities.HiddenFieldsKey {
		return fmt.Errorf("%w: invalid field name", ErrInvalidInput)
	}
	if !t.IsValid() {
		return fmt.Errorf("%w: invalid field type %q", ErrInvalidInput, t)
	}

	st, err := loadState(ctx, s.store)
	if err != nil {
		return err
	}
	if st.schema.Has(name) {
		return fmt.Errorf("%w: field %q already exists", ErrConflict, name)
	}

	st.schema.Set(name, t)
	if err := s.store.SaveFields(ctx, st.schema); err != nil {
		return fmt.Errorf("saving fields: %w", err)
	}

	if unique {
		st.setUnique(name, true)
		if err := s.store.SaveUniqueFields(ctx, st.unique); err != nil {
			return fmt.Errorf("saving unique fields: %w", err)
		}
	}

	slog.DebugContext(ctx, "field created", "field", name, "type", t, "unique", unique)
	_, err = s.history.Record(ctx, entities.ActionCreate, entities.EntityField, nil, st.fieldInfo(name), nil)
	return err
}

// Modify renames, retypes and/or toggles uniqueness of a field. All checks
// run before anything is written: a value that cannot be converted to the new
// type, or repeated values when marking unique, leaves everything unchanged.
func (s *FieldService) Modify(ctx context.Context, current string, changes FieldChanges) error {
	current = entities.NormalizeName(current)

	st, err := loadState(ctx, s.store)
	if err != nil {
		return err
	}
	if !st.schema.Has(current) {
		return fmt.Errorf("%w: field %q does not exist", ErrNotFound, current)
	}

	final := current
	if changes.Name != nil {
		final = entities.NormalizeName(*changes.Name)
		if final == "" || final == entities.HiddenFieldsKey {
			return fmt.Errorf("%w: invalid field name", ErrInvalidInput)
		}
		if final != current && st.schema.Has(final) {
			return fmt.Errorf("%w: a field named %q already exists", ErrConflict, final)
		}
	}

	converted := make(map[int]any)
	if changes.Type != nil {
		t := *changes.Type
		if !t.IsValid() {
			return fmt.Errorf("%w: invalid field type %q", ErrInvalidInput, t)
		}
		for i, p := range st.products {
			v, ok := p[current]
			if !ok {
				continue
			}
			nv, ok := ParseValue(v, t)
			if !ok {
				return fmt.Errorf("%w: cannot convert value %q of product %d to %q",
					ErrInvalidInput, entities.FormatValue(v), i+1, t)
			}
			converted[i] = nv
		}
	}

	before := st.fieldInfo(current)

	// Apply to the in-memory state.
	if final != current {
		st.schema.Rename(current, final)
		for _, p := range st.products {
			if v, ok := p[current]; ok {
				p[final] = v
				delete(p, current)
			}
		}
		if st.isUnique(current) {
			st.setUnique(current, false)
			st.setUnique(final, true)
		}
	}
	if changes.Type != nil {
		st.schema.Set(final, *changes.Type)
		for i, v := range converted {
			st.products[i][final] = v
		}
	}
	if changes.Unique != nil {
		st.setUnique(final, *changes.Unique)
	}
	// Converted values can collide ("1" and "01" as num entero), so a retyped
	// unique field is checked as well as a newly marked one.
	if st.isUnique(final) && (changes.Type != nil || !before.Unique) {
		if conflicts := DetectConflicts(final, st.products); len(conflicts) > 0 {
			return &UniqueConflictError{Conflicts: conflicts}
		}
	}

	if err := s.store.SaveFields(ctx, st.schema); err != nil {
		return fmt.Errorf("saving fields: %w", err)
	}
	if err := s.store.SaveProducts(ctx, st.products); err != nil {
		return fmt.Errorf("saving products: %w", err)
	}
	if err := s.store.SaveUniqueFields(ctx, st.unique); err != nil {
		return fmt.Errorf("saving unique fields: %w", err)
	}

	after := st.fieldInfo(final)
	slog.DebugContext(ctx, "field modified", "field", current, "name", after.Name, "type", after.Type, "unique", after.Unique)
	_, err = s.history.Record(ctx, entities.ActionUpdate, entities.EntityField, before, after, nil)
	return err
}

// Delete removes a field from the schema without destroying data: each
// product's value moves to its hidden archive and the field goes to the bin.
// The last remaining field cannot be deleted.
func (s *FieldService) Delete(ctx context.Context, name string) error {
	name = entities.NormalizeName(name)

	st, err := loadState(ctx, s.store)
	if err != nil {
		return err
	}
	t, ok := st.schema.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: field %q does not exist", ErrNotFound, name)
	}
	if len(st.schema) == 1 {
		return fmt.Errorf("%w: cannot delete the last remaining field", ErrState)
	}

	snapshot := entities.FieldSnapshot{
		Name:   name,
		Type:   t,
		Unique: st.isUnique(name),
		Values: make(map[string]any),
	}
	for i, p := range st.products {
		if v, ok := p[name]; ok {
			snapshot.Values[strconv.Itoa(i)] = v
			p.Hide(name)
		}
	}

	binSchema := st.schema.Clone()
	st.schema.Remove(name)
	st.setUnique(name, false)

	if err := s.store.SaveFields(ctx, st.schema); err != nil {
		return fmt.Errorf("saving fields: %w", err)
	}
	if err := s.store.SaveProducts(ctx, st.products); err != nil {
		return fmt.Errorf("saving products: %w", err)
	}
	if err := s.store.SaveUniqueFields(ctx, st.unique); err != nil {
		return fmt.Errorf("saving unique fields: %w", err)
	}

	// Live documents before bin: a field still in the schema must never have
	// a bin entry.
	if _, err := s.bin.send(ctx, entities.EntityField, snapshot, binSchema, entities.ReasonFieldDeleted); err != nil {
		return err
	}

	slog.DebugContext(ctx, "field deleted", "field", name)
	_, err = s.history.Record(ctx, entities.ActionDelete, entities.EntityField, snapshot, nil, nil)
	return err
}
