package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbertone/inventario/internal/domain/entities"
)

func TestUniqueService_Mark(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()

	err := ts.unique.Mark(context.Background(), "stock")

	require.NoError(t, err)
	assert.Equal(t, []string{"nombre", "stock"}, ts.store.Unique)

	require.Len(t, ts.store.History, 1)
	event := ts.store.History[0]
	assert.Equal(t, entities.EntityUniqueField, event.Entity)
	assert.Equal(t, map[string]any{"campo": "stock", "unico": false}, event.Before)
	assert.Equal(t, map[string]any{"campo": "stock", "unico": true}, event.After)
}

func TestUniqueService_Mark_ExistingDuplicates(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ts.store.Products = append(ts.store.Products, entities.Product{"nombre": "Banco", "precio": 45.0, "stock": int64(1)})

	err := ts.unique.Mark(context.Background(), "precio")

	var uc *UniqueConflictError
	require.True(t, errors.As(err, &uc))
	require.Len(t, uc.Conflicts, 1)
	assert.Equal(t, "precio", uc.Conflicts[0].Field)
	assert.Equal(t, []int{1, 2}, uc.Conflicts[0].Products)
	assert.Equal(t, []string{"nombre"}, ts.store.Unique)
	assert.Empty(t, ts.store.History)
}

func TestUniqueService_Mark_Errors(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		target error
	}{
		{name: "empty name", field: " ", target: ErrInvalidInput},
		{name: "unknown field", field: "color", target: ErrNotFound},
		{name: "already unique", field: "nombre", target: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices(t)
			ts.seedFurniture()

			err := ts.unique.Mark(context.Background(), tt.field)

			assert.ErrorIs(t, err, tt.target)
			assert.Zero(t, ts.store.Saves["unique"])
		})
	}
}

func TestUniqueService_Unmark(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()

	require.NoError(t, ts.unique.Unmark(ctx, "nombre"))
	assert.Empty(t, ts.store.Unique)

	err := ts.unique.Unmark(ctx, "nombre")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUniqueService_List_DropsStaleNames(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ts.store.Unique = []string{"nombre", "borrado", "nombre"}

	names, err := ts.unique.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"nombre"}, names)
}

func TestUniqueService_IsUnique(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()

	tests := []struct {
		field    string
		expected bool
	}{
		{field: "nombre", expected: true},
		{field: " nombre ", expected: true},
		{field: "precio", expected: false},
		{field: "color", expected: false},
		{field: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := ts.unique.IsUnique(ctx, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDetectConflicts(t *testing.T) {
	products := []entities.Product{
		{"codigo": int64(1)},
		{"codigo": 2.0},
		{"otro": "x"},
		{"codigo": 1.0},
		{"codigo": int64(2)},
	}

	conflicts := DetectConflicts("codigo", products)

	require.Len(t, conflicts, 2)
	assert.Equal(t, []int{0, 3}, conflicts[0].Products)
	assert.Equal(t, []int{1, 4}, conflicts[1].Products)
}
