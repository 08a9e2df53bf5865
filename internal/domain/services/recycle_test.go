package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbertone/inventario/internal/domain/entities"
)

// deleteProduct removes the single product matching nombre and returns its bin id.
func (ts *testServices) deleteProduct(t *testing.T, nombre string) string {
	t.Helper()
	_, err := ts.inventory.Delete(context.Background(), map[string]string{"nombre": nombre}, nil)
	require.NoError(t, err)
	return ts.store.Bin[len(ts.store.Bin)-1].ID
}

func TestRecycleBinService_RestoreProduct(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()
	id := ts.deleteProduct(t, "Mesa")

	result, err := ts.bin.Restore(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, entities.EntityProduct, result.Entity)
	assert.Equal(t, entities.Product{"nombre": "Mesa", "precio": 120.5, "stock": int64(3)}, result.Product)
	assert.Empty(t, result.Warnings)

	require.Len(t, ts.store.Products, 2)
	assert.Equal(t, "Mesa", ts.store.Products[1]["nombre"])
	assert.Empty(t, ts.store.Bin)

	require.Len(t, ts.store.History, 2)
	event := ts.store.History[1]
	assert.Equal(t, "evt_000002", event.ID)
	assert.Equal(t, entities.ActionRestore, event.Action)
	assert.Equal(t, id, event.Meta["papelera_id"])
}

func TestRecycleBinService_Restore_Expired(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	id := ts.deleteProduct(t, "Mesa")
	setNow(t, testNow.Add(DefaultBinTTL))

	_, err := ts.bin.Restore(context.Background(), id)

	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, ErrState)
	assert.Len(t, ts.store.Bin, 1)
	assert.Len(t, ts.store.Products, 1)
}

func TestRecycleBinService_Restore_ConflictKeepsEntry(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()
	id := ts.deleteProduct(t, "Mesa")
	_, err := ts.inventory.Add(ctx, map[string]string{"nombre": "Mesa", "precio": "99", "stock": "1"}, AddOptions{})
	require.NoError(t, err)

	_, err = ts.bin.Restore(ctx, id)

	var uc *UniqueConflictError
	require.True(t, errors.As(err, &uc))
	require.Len(t, ts.store.Bin, 1)
	assert.Equal(t, id, ts.store.Bin[0].ID)
	assert.Len(t, ts.store.Products, 2)
}

func TestRecycleBinService_Restore_NotFound(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.bin.Restore(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecycleBinService_RestoreProduct_SchemaChanged(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()
	id := ts.deleteProduct(t, "Mesa")
	require.NoError(t, ts.fields.Delete(ctx, "stock"))
	require.NoError(t, ts.fields.Create(ctx, "color", entities.FieldTypeText, false))

	result, err := ts.bin.Restore(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, []Warning{
		{Kind: WarningUnknownFields, Fields: []string{"stock"}},
		{Kind: WarningMissingFields, Fields: []string{"color"}},
	}, result.Warnings)
	assert.NotContains(t, result.Product, "stock")
	assert.Equal(t, map[string]any{"stock": int64(3)}, result.Product.Hidden())
	assert.Len(t, ts.store.Bin, 1, "field entry stays in the bin")
}

func TestRecycleBinService_RestoreProduct_IncompatibleValue(t *testing.T) {
	ts := newTestServices(t)
	ts.store.Fields = entities.Schema{
		{Name: "nombre", Type: entities.FieldTypeText},
		{Name: "codigo", Type: entities.FieldTypeText},
	}
	ts.store.Products = []entities.Product{{"nombre": "Mesa", "codigo": "abc"}}
	ctx := context.Background()
	id := ts.deleteProduct(t, "Mesa")
	require.NoError(t, ts.fields.Modify(ctx, "codigo", FieldChanges{Type: ptr(entities.FieldTypeInteger)}))

	result, err := ts.bin.Restore(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, []Warning{{Kind: WarningIncompatibleValues, Fields: []string{"codigo"}}}, result.Warnings)
	assert.Equal(t, map[string]any{"codigo": "abc"}, result.Product.Hidden())
}

func TestRecycleBinService_RestoreField(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()
	require.NoError(t, ts.fields.Delete(ctx, "precio"))
	id := ts.store.Bin[0].ID

	result, err := ts.bin.Restore(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, entities.EntityField, result.Entity)
	require.NotNil(t, result.Field)
	assert.Equal(t, entities.FieldInfo{Name: "precio", Type: entities.FieldTypeDecimal}, *result.Field)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, []string{"nombre", "stock", "precio"}, ts.store.Fields.Names())
	assert.Equal(t, 120.5, ts.store.Products[0]["precio"])
	assert.Nil(t, ts.store.Products[0].Hidden())
	assert.Empty(t, ts.store.Bin)
}

func TestRecycleBinService_RestoreField_UniqueDropped(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()
	require.NoError(t, ts.fields.Delete(ctx, "nombre"))
	id := ts.store.Bin[0].ID
	ts.store.Bin[0].Snapshot = []byte(`{"nombre":"nombre","tipo":"texto","unico":true,"valores":{"0":"Mesa","1":"Mesa"}}`)

	result, err := ts.bin.Restore(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, []Warning{{Kind: WarningUniqueDropped, Fields: []string{"nombre"}}}, result.Warnings)
	assert.False(t, result.Field.Unique)
	assert.Empty(t, ts.store.Unique)
	assert.Equal(t, "Mesa", ts.store.Products[1]["nombre"])
}

func TestRecycleBinService_RestoreField_UsesEntryValues(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()
	require.NoError(t, ts.fields.Delete(ctx, "stock"))
	older := ts.store.Bin[0].ID

	ts.store.Fields = append(ts.store.Fields, entities.Field{Name: "stock", Type: entities.FieldTypeInteger})
	ts.store.Products[0]["stock"] = int64(7)
	ts.store.Products[1]["stock"] = int64(8)
	require.NoError(t, ts.fields.Delete(ctx, "stock"))
	require.Len(t, ts.store.Bin, 2)

	_, err := ts.bin.Restore(ctx, older)

	require.NoError(t, err)
	assert.Equal(t, int64(3), ts.store.Products[0]["stock"])
	assert.Equal(t, int64(12), ts.store.Products[1]["stock"])
	assert.Nil(t, ts.store.Products[0].Hidden())
}

func TestRecycleBinService_RestoreField_NameTaken(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()
	require.NoError(t, ts.fields.Delete(ctx, "stock"))
	id := ts.store.Bin[0].ID
	require.NoError(t, ts.fields.Create(ctx, "stock", entities.FieldTypeText, false))

	_, err := ts.bin.Restore(ctx, id)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, ts.store.Bin, 1)
}

func TestRecycleBinService_ListAndPurge(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	ctx := context.Background()
	ts.deleteProduct(t, "Mesa")

	setNow(t, testNow.Add(20*24*time.Hour))
	require.NoError(t, ts.fields.Delete(ctx, "stock"))

	setNow(t, testNow.Add(31*24*time.Hour))

	entries, err := ts.bin.List(ctx, BinFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.EntityField, entries[0].Entity)

	entries, err = ts.bin.List(ctx, BinFilter{IncludeExpired: true})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = ts.bin.List(ctx, BinFilter{Entity: entities.EntityProduct, IncludeExpired: true})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.EntityProduct, entries[0].Entity)

	purged, err := ts.bin.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	require.Len(t, ts.store.Bin, 1)
	assert.Equal(t, entities.EntityField, ts.store.Bin[0].Entity)

	purged, err = ts.bin.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestRecycleBinService_Get(t *testing.T) {
	ts := newTestServices(t)
	ts.seedFurniture()
	id := ts.deleteProduct(t, "Silla")

	entry, err := ts.bin.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.ID)

	_, err = ts.bin.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRecycleBinService_DefaultTTL(t *testing.T) {
	svc := NewRecycleBinService(nil, nil, 0)
	assert.Equal(t, DefaultBinTTL, svc.ttl)
}
