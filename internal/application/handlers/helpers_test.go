package handlers

import (
	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/mocks"
	"github.com/sbertone/inventario/internal/domain/services"
)

type testHandlers struct {
	store   *mocks.Store
	fields  *FieldHandler
	product *ProductHandler
	bin     *BinHandler
	history *HistoryHandler
	imports *ImportHandler
}

func newTestHandlers() *testHandlers {
	store := mocks.NewStore()
	history := services.NewHistoryService(store)
	bin := services.NewRecycleBinService(store, history, 0)
	return &testHandlers{
		store:   store,
		fields:  NewFieldHandler(services.NewFieldService(store, bin, history), services.NewUniqueService(store, history)),
		product: NewProductHandler(services.NewInventoryService(store, bin, history), services.NewSearchService(store)),
		bin:     NewBinHandler(bin),
		history: NewHistoryHandler(history),
		imports: NewImportHandler(services.NewImportService(store, history)),
	}
}

// seed defines nombre (unique) and precio, with two chairs in stock.
func (th *testHandlers) seed() *testHandlers {
	th.store.Fields = entities.Schema{
		{Name: "nombre", Type: entities.FieldTypeText},
		{Name: "precio", Type: entities.FieldTypeDecimal},
	}
	th.store.Unique = []string{"nombre"}
	th.store.Products = []entities.Product{
		{"nombre": "Silla roja", "precio": 45.0},
		{"nombre": "Silla azul", "precio": 50.5},
	}
	return th
}
