package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/ports"
)

// SearchService performs linear lookups over the product list.
type SearchService struct {
	store ports.Store
}

// NewSearchService creates a new SearchService.
func NewSearchService(store ports.Store) *SearchService {
	return &SearchService{store: store}
}

// ByField returns products whose value for field contains query, ignoring case.
// An undefined field yields no results.
func (s *SearchService) ByField(ctx context.Context, field, query string) ([]entities.Product, error) {
	return s.Similar(ctx, map[string]string{entities.NormalizeName(field): query})
}

// Similar returns products matching every criterion: each criterion value must
// be a case-insensitive substring of the stored value. Empty criteria, or any
// criterion naming an undefined field, yield no results.
func (s *SearchService) Similar(ctx context.Context, criteria map[string]string) ([]entities.Product, error) {
	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}

	idx := matchSimilar(st, criteria)
	result := make([]entities.Product, 0, len(idx))
	for _, i := range idx {
		result = append(result, st.products[i].Clone())
	}
	return result, nil
}

// ByUnique returns the product holding value for a unique field, or nil if
// the field is not unique or nothing matches.
func (s *SearchService) ByUnique(ctx context.Context, field, raw string) (entities.Product, error) {
	field = entities.NormalizeName(field)

	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if !st.isUnique(field) {
		return nil, nil
	}

	t, _ := st.schema.Lookup(field)
	value, ok := ParseValue(raw, t)
	if !ok {
		return nil, fmt.Errorf("%w: value %q is not a valid %s", ErrInvalidInput, raw, t)
	}

	for _, p := range st.products {
		if v, ok := p[field]; ok && entities.ValuesEqual(v, value) {
			return p.Clone(), nil
		}
	}
	return nil, nil
}

// matchSimilar returns the indexes of products matching all criteria.
func matchSimilar(st *inventoryState, criteria map[string]string) []int {
	if len(criteria) == 0 {
		return nil
	}

	folded := make(map[string]string, len(criteria))
	for field, value := range criteria {
		field = entities.NormalizeName(field)
		if !st.schema.Has(field) {
			return nil
		}
		folded[field] = foldString(strings.TrimSpace(value))
	}

	var matches []int
	for i, p := range st.products {
		if productMatches(p, folded) {
			matches = append(matches, i)
		}
	}
	return matches
}

func productMatches(p entities.Product, folded map[string]string) bool {
	for field, needle := range folded {
		v, ok := p[field]
		if !ok || v == nil {
			return false
		}
		if !strings.Contains(foldString(entities.FormatValue(v)), needle) {
			return false
		}
	}
	return true
}

func foldString(s string) string {
	return cases.Fold().String(s)
}

// criteriaFromProduct builds similarity criteria from every visible value of p.
func criteriaFromProduct(p entities.Product) map[string]string {
	criteria := make(map[string]string, len(p))
	for _, field := range p.Fields() {
		criteria[field] = entities.FormatValue(p[field])
	}
	return criteria
}
