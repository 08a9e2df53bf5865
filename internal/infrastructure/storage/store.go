package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sbertone/inventario/internal/domain/entities"
)

// Backend reads and writes raw document bytes by name.
type Backend interface {
	// EnsureSchema prepares the backend (directories, tables) and creates
	// missing documents with their empty defaults.
	EnsureSchema(ctx context.Context) error

	// ReadDocument returns the stored bytes, or nil with no error when the
	// document does not exist.
	ReadDocument(ctx context.Context, name string) ([]byte, error)

	// WriteDocument replaces the whole document.
	WriteDocument(ctx context.Context, name string, data []byte) error

	// Close releases backend resources.
	Close() error
}

// Store implements ports.Store over any Backend. Missing documents load as
// their empty defaults; unparsable ones do too, with a warning logged.
type Store struct {
	Backend
}

// NewStore wraps a backend.
func NewStore(b Backend) *Store {
	return &Store{Backend: b}
}

// LoadFields reads campos.json.
func (s *Store) LoadFields(ctx context.Context) (entities.Schema, error) {
	schema, err := load(ctx, s, DocFields, DecodeFields)
	if schema == nil && err == nil {
		schema = entities.Schema{}
	}
	return schema, err
}

// SaveFields writes campos.json.
func (s *Store) SaveFields(ctx context.Context, schema entities.Schema) error {
	if schema == nil {
		schema = entities.Schema{}
	}
	return s.save(ctx, DocFields, schema)
}

// LoadUniqueFields reads campos_unicos.json.
func (s *Store) LoadUniqueFields(ctx context.Context) ([]string, error) {
	names, err := load(ctx, s, DocUnique, DecodeUnique)
	if names == nil && err == nil {
		names = []string{}
	}
	return names, err
}

// SaveUniqueFields writes campos_unicos.json sorted and de-duplicated.
func (s *Store) SaveUniqueFields(ctx context.Context, names []string) error {
	return s.save(ctx, DocUnique, NormalizeUnique(names))
}

// LoadProducts reads inventario.json.
func (s *Store) LoadProducts(ctx context.Context) ([]entities.Product, error) {
	products, err := load(ctx, s, DocProduct, DecodeProducts)
	if products == nil && err == nil {
		products = []entities.Product{}
	}
	return products, err
}

// SaveProducts writes inventario.json.
func (s *Store) SaveProducts(ctx context.Context, products []entities.Product) error {
	if products == nil {
		products = []entities.Product{}
	}
	return s.save(ctx, DocProduct, products)
}

// LoadHistory reads historial.json.
func (s *Store) LoadHistory(ctx context.Context) ([]entities.Event, error) {
	events, err := load(ctx, s, DocHistory, DecodeHistory)
	if events == nil && err == nil {
		events = []entities.Event{}
	}
	return events, err
}

// SaveHistory writes historial.json.
func (s *Store) SaveHistory(ctx context.Context, events []entities.Event) error {
	if events == nil {
		events = []entities.Event{}
	}
	return s.save(ctx, DocHistory, events)
}

// LoadBin reads papelera.json.
func (s *Store) LoadBin(ctx context.Context) ([]entities.BinEntry, error) {
	entries, err := load(ctx, s, DocBin, DecodeBin)
	if entries == nil && err == nil {
		entries = []entities.BinEntry{}
	}
	return entries, err
}

// SaveBin writes papelera.json.
func (s *Store) SaveBin(ctx context.Context, entries []entities.BinEntry) error {
	if entries == nil {
		entries = []entities.BinEntry{}
	}
	return s.save(ctx, DocBin, entries)
}

func (s *Store) save(ctx context.Context, name string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return s.WriteDocument(ctx, name, data)
}

// load reads and decodes a document. A missing document decodes to the zero
// value; a corrupt one is logged and also yields the zero value.
func load[T any](ctx context.Context, s *Store, name string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := s.ReadDocument(ctx, name)
	if err != nil {
		return zero, err
	}
	if data == nil {
		slog.DebugContext(ctx, "document missing, using default", "document", name)
		return zero, nil
	}
	v, err := decode(data)
	if err != nil {
		slog.WarnContext(ctx, "document unreadable, using empty default", "document", name, "error", err)
		return zero, nil
	}
	return v, nil
}
