// Package ports defines the interfaces the domain depends on.
package ports

import (
	"context"

	"github.com/sbertone/inventario/internal/domain/entities"
)

// Store persists the five inventory documents. Every Load returns a fresh,
// independent copy; every Save replaces the whole document. A missing or
// unparsable document loads as its empty default.
type Store interface {
	// EnsureSchema creates the backing files or tables if they don't exist.
	EnsureSchema(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error

	// LoadFields returns the field schema (campos.json).
	LoadFields(ctx context.Context) (entities.Schema, error)

	// SaveFields replaces the field schema.
	SaveFields(ctx context.Context, schema entities.Schema) error

	// LoadUniqueFields returns the names of unique fields (campos_unicos.json).
	LoadUniqueFields(ctx context.Context) ([]string, error)

	// SaveUniqueFields replaces the unique-field list. Implementations store
	// it sorted and without duplicates.
	SaveUniqueFields(ctx context.Context, names []string) error

	// LoadProducts returns the product list (inventario.json).
	LoadProducts(ctx context.Context) ([]entities.Product, error)

	// SaveProducts replaces the product list.
	SaveProducts(ctx context.Context, products []entities.Product) error

	// LoadHistory returns the change history (historial.json).
	LoadHistory(ctx context.Context) ([]entities.Event, error)

	// SaveHistory replaces the change history.
	SaveHistory(ctx context.Context, events []entities.Event) error

	// LoadBin returns the recycle bin (papelera.json).
	LoadBin(ctx context.Context) ([]entities.BinEntry, error)

	// SaveBin replaces the recycle bin.
	SaveBin(ctx context.Context, entries []entities.BinEntry) error
}
