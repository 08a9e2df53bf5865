package a

import "context"

type Store interface {
	LoadProducts(ctx context.Context) ([]map[string]any, error)
	SaveProducts(ctx context.Context, products []map[string]any) error
	SaveHistory(ctx context.Context, events []string) error
}

func SaveProducts(products []map[string]any) {}

func bad(ctx context.Context, rows []map[string]any, s Store) {
	for _, row := range rows {
		products, _ := s.LoadProducts(ctx) // want "LoadProducts called inside loop"
		products = append(products, row)
		_ = s.SaveProducts(ctx, products) // want "SaveProducts called inside loop"
	}
	for i := 0; i < 3; i++ {
		_ = s.SaveHistory(ctx, nil) // want "SaveHistory called inside loop"
	}
}

func good(ctx context.Context, rows []map[string]any, s Store) {
	products, _ := s.LoadProducts(ctx)
	for _, row := range rows {
		products = append(products, row)
		SaveProducts(products)
	}
	_ = s.SaveProducts(ctx, products)
}

func deferred(ctx context.Context, rows []map[string]any, s Store) []func() {
	var fns []func()
	for range rows {
		fns = append(fns, func() { _ = s.SaveProducts(ctx, nil) })
	}
	return fns
}
