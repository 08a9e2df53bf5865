package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/ports"
	"github.com/sbertone/inventario/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool // Validate without saving
	Force  bool // Import products even when similar ones already exist
}

// ImportError represents an error for a specific product during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error, if known
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int // similar to an existing product and not forced
	Errors   []ImportError
}

// ImportService handles importing products from external sources.
type ImportService struct {
	store   ports.Store
	history *HistoryService
}

// NewImportService creates a new import service.
func NewImportService(store ports.Store, history *HistoryService) *ImportService {
	return &ImportService{
		store:   store,
		history: history,
	}
}

// Import validates raw products against the schema and appends the valid ones.
// Each product is checked against the inventory and the products imported
// before it, so unique values cannot repeat inside one file either.
func (s *ImportService) Import(ctx context.Context, raws []parsers.RawProduct, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if len(st.schema) == 0 {
		return nil, fmt.Errorf("%w: no fields defined", ErrState)
	}

	var added []entities.Product
	for i := range raws {
		raw := &raws[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		if ierr := validateColumns(st, raw, lineNum); ierr != nil {
			result.Errors = append(result.Errors, *ierr)
			continue
		}

		product, err := buildProduct(st, raw.Values)
		if err != nil {
			result.Errors = append(result.Errors, importError(lineNum, err))
			continue
		}

		if !opts.Force && len(matchSimilar(st, criteriaFromProduct(product))) > 0 {
			result.Skipped++
			continue
		}

		st.products = append(st.products, product)
		added = append(added, product)
	}

	result.Imported = len(added)
	if opts.DryRun || len(added) == 0 {
		return result, nil
	}

	if err := s.store.SaveProducts(ctx, st.products); err != nil {
		return nil, fmt.Errorf("saving products: %w", err)
	}

	inputs := make([]EventInput, 0, len(added))
	for _, p := range added {
		inputs = append(inputs, EventInput{
			Action: entities.ActionCreate,
			Entity: entities.EntityProduct,
			After:  p.Clone(),
			Meta:   map[string]any{"origen": "importacion"},
		})
	}
	if _, err := s.history.RecordAll(ctx, inputs); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "products imported", "imported", result.Imported, "skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}

// validateColumns rejects values for fields that are not in the schema.
func validateColumns(st *inventoryState, raw *parsers.RawProduct, lineNum int) *ImportError {
	for name := range raw.Values {
		if !st.schema.Has(entities.NormalizeName(name)) {
			return &ImportError{
				Line:    lineNum,
				Field:   name,
				Message: fmt.Sprintf("unknown field %q", name),
			}
		}
	}
	return nil
}

func importError(lineNum int, err error) ImportError {
	ierr := ImportError{Line: lineNum, Message: err.Error()}
	var uc *UniqueConflictError
	if errors.As(err, &uc) && len(uc.Conflicts) > 0 {
		ierr.Field = uc.Conflicts[0].Field
	}
	return ierr
}
