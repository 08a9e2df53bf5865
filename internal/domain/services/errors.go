package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sbertone/inventario/internal/domain/entities"
)

// Error categories. Every error returned by the services wraps one of these
// (storage failures excepted), so callers can branch with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrState        = errors.New("operation not allowed")
)

// ErrExpired is returned when restoring a bin entry past its expiry.
var ErrExpired = fmt.Errorf("%w: recycle bin entry has expired", ErrState)

// UniqueConflict describes one violated uniqueness constraint.
// Products holds indexes into the product list.
type UniqueConflict struct {
	Field    string `json:"campo"`
	Value    any    `json:"valor"`
	Products []int  `json:"productos"`
}

// UniqueConflictError reports values that would break unique fields.
type UniqueConflictError struct {
	Conflicts []UniqueConflict
}

func (e *UniqueConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s=%s", c.Field, entities.FormatValue(c.Value)))
	}
	return fmt.Sprintf("unique field conflict: %s", strings.Join(parts, ", "))
}

func (e *UniqueConflictError) Unwrap() error {
	return ErrConflict
}

// DuplicateError reports existing products similar to the one being added.
// It is advisory: retrying with Force adds the product anyway.
type DuplicateError struct {
	Matches []entities.Product
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("possible duplicate: %d similar product(s) already exist", len(e.Matches))
}

func (e *DuplicateError) Unwrap() error {
	return ErrConflict
}

// AmbiguousMatchError reports that criteria matched more than one product.
// Callers pick one of Candidates and retry with it.
type AmbiguousMatchError struct {
	Candidates []entities.Product
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match: %d products match the criteria", len(e.Candidates))
}

func (e *AmbiguousMatchError) Unwrap() error {
	return ErrConflict
}
