package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/ports"
)

// humanTimeLayout is the display form of event timestamps (DD/MM/YYYY HH:MM).
const humanTimeLayout = "02/01/2006 15:04"

// HistoryFilter narrows a history listing. Zero values match everything.
type HistoryFilter struct {
	Entity entities.EntityKind
	Action entities.Action
	Limit  int // most recent N events; 0 means all
}

// HistoryService appends and lists change events.
type HistoryService struct {
	store ports.Store
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(store ports.Store) *HistoryService {
	return &HistoryService{store: store}
}

// EventInput describes one event to record.
type EventInput struct {
	Action entities.Action
	Entity entities.EntityKind
	Before any
	After  any
	Meta   map[string]any
}

// Record appends an event to the history and returns it.
func (s *HistoryService) Record(ctx context.Context, action entities.Action, entity entities.EntityKind, before, after any, meta map[string]any) (*entities.Event, error) {
	events, err := s.RecordAll(ctx, []EventInput{{Action: action, Entity: entity, Before: before, After: after, Meta: meta}})
	if err != nil {
		return nil, err
	}
	return &events[0], nil
}

// RecordAll appends several events with one history write. Ids continue the
// existing sequence and all events share the same timestamp.
func (s *HistoryService) RecordAll(ctx context.Context, inputs []EventInput) ([]entities.Event, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	events, err := s.store.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	now := timeNow()
	stamp := entities.Timestamp{
		Human: now.Format(humanTimeLayout),
		ISO:   now.Format(time.RFC3339),
	}

	recorded := make([]entities.Event, 0, len(inputs))
	for _, in := range inputs {
		meta := in.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		recorded = append(recorded, entities.Event{
			ID:        fmt.Sprintf("evt_%06d", len(events)+len(recorded)+1),
			Timestamp: stamp,
			Action:    in.Action,
			Entity:    in.Entity,
			Before:    in.Before,
			After:     in.After,
			Meta:      meta,
		})
	}

	events = append(events, recorded...)
	if err := s.store.SaveHistory(ctx, events); err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}

	for i := range recorded {
		slog.DebugContext(ctx, "history event recorded", "id", recorded[i].ID, "action", recorded[i].Action, "entity", recorded[i].Entity)
	}
	return recorded, nil
}

// List returns events matching the filter, oldest first.
func (s *HistoryService) List(ctx context.Context, filter HistoryFilter) ([]entities.Event, error) {
	events, err := s.store.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	result := make([]entities.Event, 0, len(events))
	for i := range events {
		if filter.Entity != "" && events[i].Entity != filter.Entity {
			continue
		}
		if filter.Action != "" && events[i].Action != filter.Action {
			continue
		}
		result = append(result, events[i])
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result, nil
}
