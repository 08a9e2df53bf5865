package handlers

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/services"
)

// HistoryHandler handles history queries.
type HistoryHandler struct {
	history *services.HistoryService
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// HandleList returns events, oldest first. entity and action may be empty;
// action matches ignoring case and accents ("modificacion" finds "Modificación").
func (h *HistoryHandler) HandleList(ctx context.Context, entity, action string, limit int) ([]entities.Event, error) {
	kind, err := parseEntityKind(entity)
	if err != nil {
		return nil, err
	}
	act, err := parseAction(action)
	if err != nil {
		return nil, err
	}
	events, err := h.history.List(ctx, services.HistoryFilter{Entity: kind, Action: act, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return events, nil
}

var actions = []entities.Action{
	entities.ActionCreate,
	entities.ActionUpdate,
	entities.ActionDelete,
	entities.ActionRestore,
}

func parseAction(s string) (entities.Action, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	want := stripAccents(strings.ToLower(s))
	for _, a := range actions {
		if stripAccents(strings.ToLower(string(a))) == want {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown action %q", services.ErrInvalidInput, s)
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
