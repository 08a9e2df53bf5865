package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/ports"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = func() time.Time {
	return time.Now().Round(0)
}

// inventoryState is the schema, unique list and products loaded for a single
// operation. It is never cached between operations.
type inventoryState struct {
	schema   entities.Schema
	unique   []string
	products []entities.Product
}

// loadState reads the schema, unique list and products fresh from the store.
// Unique names no longer in the schema are dropped, and stored values are
// coerced to their field types.
func loadState(ctx context.Context, store ports.Store) (*inventoryState, error) {
	schema, err := store.LoadFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fields: %w", err)
	}

	unique, err := store.LoadUniqueFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading unique fields: %w", err)
	}

	products, err := store.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}

	st := &inventoryState{
		schema:   schema,
		unique:   make([]string, 0, len(unique)),
		products: products,
	}
	for _, name := range unique {
		if schema.Has(name) && !st.isUnique(name) {
			st.unique = append(st.unique, name)
		}
	}
	for _, p := range st.products {
		for _, f := range schema {
			if v, ok := p[f.Name]; ok {
				p[f.Name] = coerceStored(v, f.Type)
			}
		}
	}

	return st, nil
}

func (st *inventoryState) isUnique(name string) bool {
	for _, n := range st.unique {
		if n == name {
			return true
		}
	}
	return false
}

func (st *inventoryState) setUnique(name string, unique bool) {
	out := st.unique[:0]
	for _, n := range st.unique {
		if n != name {
			out = append(out, n)
		}
	}
	if unique {
		out = append(out, name)
	}
	st.unique = out
}

// fieldInfo describes one field of the loaded schema.
func (st *inventoryState) fieldInfo(name string) entities.FieldInfo {
	t, _ := st.schema.Lookup(name)
	return entities.FieldInfo{Name: name, Type: t, Unique: st.isUnique(name)}
}

func cloneProducts(products []entities.Product) []entities.Product {
	out := make([]entities.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
