// Package mocks provides in-memory implementations of domain ports for tests.
package mocks

import (
	"context"
	"sort"

	"github.com/sbertone/inventario/internal/domain/entities"
)

// Store is an in-memory implementation of ports.Store.
// Loads and saves copy their data so callers never share state with the store.
type Store struct {
	Fields   entities.Schema
	Unique   []string
	Products []entities.Product
	History  []entities.Event
	Bin      []entities.BinEntry
	Err      error

	// Saves counts Save* calls by document, for asserting write-back behaviour.
	Saves map[string]int

	// SaveErrs fails Save* calls for one document, keyed like Saves.
	SaveErrs map[string]error
}

// NewStore creates a new empty mock Store.
func NewStore() *Store {
	return &Store{
		Saves: make(map[string]int),
	}
}

// EnsureSchema is a no-op unless Err is set.
func (m *Store) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close does nothing.
func (m *Store) Close() error {
	return nil
}

// LoadFields returns a copy of the schema.
func (m *Store) LoadFields(_ context.Context) (entities.Schema, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Fields == nil {
		return entities.Schema{}, nil
	}
	return m.Fields.Clone(), nil
}

// SaveFields stores a copy of the schema.
func (m *Store) SaveFields(_ context.Context, schema entities.Schema) error {
	if err := m.saveErr("fields"); err != nil {
		return err
	}
	m.Fields = schema.Clone()
	m.Saves["fields"]++
	return nil
}

// LoadUniqueFields returns a copy of the unique-field list.
func (m *Store) LoadUniqueFields(_ context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]string{}, m.Unique...), nil
}

// SaveUniqueFields stores the list sorted and de-duplicated.
func (m *Store) SaveUniqueFields(_ context.Context, names []string) error {
	if err := m.saveErr("unique"); err != nil {
		return err
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	m.Unique = out
	m.Saves["unique"]++
	return nil
}

// LoadProducts returns deep copies of the products.
func (m *Store) LoadProducts(_ context.Context) ([]entities.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]entities.Product, len(m.Products))
	for i, p := range m.Products {
		out[i] = p.Clone()
	}
	return out, nil
}

// SaveProducts stores deep copies of the products.
func (m *Store) SaveProducts(_ context.Context, products []entities.Product) error {
	if err := m.saveErr("products"); err != nil {
		return err
	}
	m.Products = make([]entities.Product, len(products))
	for i, p := range products {
		m.Products[i] = p.Clone()
	}
	m.Saves["products"]++
	return nil
}

// LoadHistory returns a copy of the event list.
func (m *Store) LoadHistory(_ context.Context) ([]entities.Event, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]entities.Event{}, m.History...), nil
}

// SaveHistory stores a copy of the event list.
func (m *Store) SaveHistory(_ context.Context, events []entities.Event) error {
	if err := m.saveErr("history"); err != nil {
		return err
	}
	m.History = append([]entities.Event{}, events...)
	m.Saves["history"]++
	return nil
}

// LoadBin returns a copy of the recycle bin.
func (m *Store) LoadBin(_ context.Context) ([]entities.BinEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]entities.BinEntry{}, m.Bin...), nil
}

// SaveBin stores a copy of the recycle bin.
func (m *Store) SaveBin(_ context.Context, entries []entities.BinEntry) error {
	if err := m.saveErr("bin"); err != nil {
		return err
	}
	m.Bin = append([]entities.BinEntry{}, entries...)
	m.Saves["bin"]++
	return nil
}

func (m *Store) saveErr(doc string) error {
	if m.Err != nil {
		return m.Err
	}
	return m.SaveErrs[doc]
}
