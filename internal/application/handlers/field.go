package handlers

import (
	"context"
	"fmt"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/services"
)

// FieldHandler handles schema and uniqueness operations.
type FieldHandler struct {
	fields *services.FieldService
	unique *services.UniqueService
}

// NewFieldHandler creates a new field handler.
func NewFieldHandler(fields *services.FieldService, unique *services.UniqueService) *FieldHandler {
	return &FieldHandler{
		fields: fields,
		unique: unique,
	}
}

// FieldUpdate carries the user's requested field changes. Empty Name and Type
// and a nil Unique leave the corresponding attribute unchanged.
type FieldUpdate struct {
	Name   string
	Type   string
	Unique *bool
}

// HandleList returns every field in schema order.
func (h *FieldHandler) HandleList(ctx context.Context) ([]entities.FieldInfo, error) {
	fields, err := h.fields.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}
	return fields, nil
}

// HandleAdd creates a field. typeName accepts anything ParseFieldType does.
func (h *FieldHandler) HandleAdd(ctx context.Context, name, typeName string, unique bool) error {
	t, err := entities.ParseFieldType(typeName)
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	if err := h.fields.Create(ctx, name, t, unique); err != nil {
		return fmt.Errorf("creating field: %w", err)
	}
	return nil
}

// HandleModify applies an update to an existing field.
func (h *FieldHandler) HandleModify(ctx context.Context, current string, upd FieldUpdate) error {
	var changes services.FieldChanges
	if upd.Name != "" {
		changes.Name = &upd.Name
	}
	if upd.Type != "" {
		t, err := entities.ParseFieldType(upd.Type)
		if err != nil {
			return fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
		}
		changes.Type = &t
	}
	changes.Unique = upd.Unique

	if err := h.fields.Modify(ctx, current, changes); err != nil {
		return fmt.Errorf("modifying field: %w", err)
	}
	return nil
}

// HandleDelete removes a field, sending it to the recycle bin.
func (h *FieldHandler) HandleDelete(ctx context.Context, name string) error {
	if err := h.fields.Delete(ctx, name); err != nil {
		return fmt.Errorf("deleting field: %w", err)
	}
	return nil
}

// HandleListUnique returns the names of the unique fields.
func (h *FieldHandler) HandleListUnique(ctx context.Context) ([]string, error) {
	names, err := h.unique.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unique fields: %w", err)
	}
	return names, nil
}

// HandleMarkUnique marks a field unique.
func (h *FieldHandler) HandleMarkUnique(ctx context.Context, name string) error {
	if err := h.unique.Mark(ctx, name); err != nil {
		return fmt.Errorf("marking field unique: %w", err)
	}
	return nil
}

// HandleUnmarkUnique clears the unique flag of a field.
func (h *FieldHandler) HandleUnmarkUnique(ctx context.Context, name string) error {
	if err := h.unique.Unmark(ctx, name); err != nil {
		return fmt.Errorf("unmarking unique field: %w", err)
	}
	return nil
}
