package services

import (
	"testing"
	"time"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/mocks"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type testServices struct {
	store     *mocks.Store
	history   *HistoryService
	unique    *UniqueService
	search    *SearchService
	bin       *RecycleBinService
	fields    *FieldService
	inventory *InventoryService
	imports   *ImportService
}

// newTestServices wires every service to one in-memory store and pins the clock.
func newTestServices(t *testing.T) *testServices {
	t.Helper()
	setNow(t, testNow)

	store := mocks.NewStore()
	history := NewHistoryService(store)
	bin := NewRecycleBinService(store, history, DefaultBinTTL)
	return &testServices{
		store:     store,
		history:   history,
		unique:    NewUniqueService(store, history),
		search:    NewSearchService(store),
		bin:       bin,
		fields:    NewFieldService(store, bin, history),
		inventory: NewInventoryService(store, bin, history),
		imports:   NewImportService(store, history),
	}
}

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
}

// seedFurniture defines nombre (texto, unique), precio (num decimal) and
// stock (num entero) with two products.
func (ts *testServices) seedFurniture() {
	ts.store.Fields = entities.Schema{
		{Name: "nombre", Type: entities.FieldTypeText},
		{Name: "precio", Type: entities.FieldTypeDecimal},
		{Name: "stock", Type: entities.FieldTypeInteger},
	}
	ts.store.Unique = []string{"nombre"}
	ts.store.Products = []entities.Product{
		{"nombre": "Mesa", "precio": 120.5, "stock": int64(3)},
		{"nombre": "Silla", "precio": 45.0, "stock": int64(12)},
	}
}
