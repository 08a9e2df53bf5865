package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/services"
)

func TestFieldHandler_HandleAdd(t *testing.T) {
	th := newTestHandlers()
	ctx := context.Background()

	require.NoError(t, th.fields.HandleAdd(ctx, "nombre", "texto", true))
	require.NoError(t, th.fields.HandleAdd(ctx, "stock", "entero", false))

	fields, err := th.fields.HandleList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entities.FieldInfo{
		{Name: "nombre", Type: entities.FieldTypeText, Unique: true},
		{Name: "stock", Type: entities.FieldTypeInteger},
	}, fields)
}

func TestFieldHandler_HandleAdd_UnknownType(t *testing.T) {
	th := newTestHandlers()

	err := th.fields.HandleAdd(context.Background(), "color", "rgb", false)

	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Empty(t, th.store.Fields)
}

func TestFieldHandler_HandleModify(t *testing.T) {
	th := newTestHandlers().seed()
	ctx := context.Background()
	unique := false

	err := th.fields.HandleModify(ctx, "nombre", FieldUpdate{Name: "descripcion", Unique: &unique})

	require.NoError(t, err)
	assert.True(t, th.store.Fields.Has("descripcion"))
	assert.Empty(t, th.store.Unique)
	assert.Equal(t, "Silla roja", th.store.Products[0]["descripcion"])
}

func TestFieldHandler_HandleModify_BadType(t *testing.T) {
	th := newTestHandlers().seed()

	err := th.fields.HandleModify(context.Background(), "precio", FieldUpdate{Type: "moneda"})

	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestFieldHandler_HandleDelete(t *testing.T) {
	th := newTestHandlers().seed()

	require.NoError(t, th.fields.HandleDelete(context.Background(), "precio"))

	assert.False(t, th.store.Fields.Has("precio"))
	require.Len(t, th.store.Bin, 1)
	assert.Equal(t, entities.EntityField, th.store.Bin[0].Entity)
}

func TestFieldHandler_Unique(t *testing.T) {
	th := newTestHandlers().seed()
	ctx := context.Background()

	require.NoError(t, th.fields.HandleMarkUnique(ctx, "precio"))
	names, err := th.fields.HandleListUnique(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"nombre", "precio"}, names)

	require.NoError(t, th.fields.HandleUnmarkUnique(ctx, "nombre"))
	names, err = th.fields.HandleListUnique(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"precio"}, names)

	err = th.fields.HandleMarkUnique(ctx, "color")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
