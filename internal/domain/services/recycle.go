package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/ports"
)

// DefaultBinTTL is how long deleted records stay restorable.
const DefaultBinTTL = 30 * 24 * time.Hour

// Restore warning kinds.
const (
	WarningUnknownFields      = "campos_inexistentes"
	WarningMissingFields      = "campos_faltantes"
	WarningIncompatibleValues = "valores_incompatibles"
	WarningUniqueDropped      = "unicidad_descartada"
)

// Warning is a non-fatal note produced while restoring a record.
type Warning struct {
	Kind   string   `json:"tipo"`
	Fields []string `json:"campos"`
}

func (w Warning) String() string {
	switch w.Kind {
	case WarningUnknownFields:
		return fmt.Sprintf("fields no longer defined, archived as hidden values: %v", w.Fields)
	case WarningMissingFields:
		return fmt.Sprintf("restored record has no value for: %v", w.Fields)
	case WarningIncompatibleValues:
		return fmt.Sprintf("values not valid for the current field type, archived as hidden values: %v", w.Fields)
	case WarningUniqueDropped:
		return fmt.Sprintf("field restored without unique flag because values now repeat: %v", w.Fields)
	default:
		return fmt.Sprintf("%s: %v", w.Kind, w.Fields)
	}
}

// BinFilter narrows a recycle bin listing.
type BinFilter struct {
	Entity         entities.EntityKind
	IncludeExpired bool
}

// RestoreResult describes a record brought back from the bin.
// Exactly one of Product and Field is set.
type RestoreResult struct {
	Entity   entities.EntityKind
	Product  entities.Product
	Field    *entities.FieldInfo
	Warnings []Warning
}

// RecycleBinService keeps deleted records restorable until they expire.
type RecycleBinService struct {
	store   ports.Store
	history *HistoryService
	ttl     time.Duration
}

// NewRecycleBinService creates a new RecycleBinService. A non-positive ttl
// falls back to DefaultBinTTL.
func NewRecycleBinService(store ports.Store, history *HistoryService, ttl time.Duration) *RecycleBinService {
	if ttl <= 0 {
		ttl = DefaultBinTTL
	}
	return &RecycleBinService{
		store:   store,
		history: history,
		ttl:     ttl,
	}
}

// send stores a snapshot in the bin and returns the new entry.
func (s *RecycleBinService) send(ctx context.Context, entity entities.EntityKind, snapshot any, schema entities.Schema, reason string) (*entities.BinEntry, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}

	now := timeNow()
	entry := entities.BinEntry{
		ID:        uuid.New().String(),
		Entity:    entity,
		Snapshot:  data,
		Reason:    reason,
		Meta:      map[string]any{},
		DeletedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if schema != nil {
		snap := schema.Clone()
		entry.SchemaSnapshot = &snap
	}

	bin, err := s.store.LoadBin(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recycle bin: %w", err)
	}
	bin = append(bin, entry)
	if err := s.store.SaveBin(ctx, bin); err != nil {
		return nil, fmt.Errorf("saving recycle bin: %w", err)
	}

	slog.DebugContext(ctx, "record sent to recycle bin", "id", entry.ID, "entity", entity)
	return &entry, nil
}

// List returns bin entries matching the filter, oldest first.
func (s *RecycleBinService) List(ctx context.Context, filter BinFilter) ([]entities.BinEntry, error) {
	bin, err := s.store.LoadBin(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recycle bin: %w", err)
	}

	now := timeNow()
	result := make([]entities.BinEntry, 0, len(bin))
	for i := range bin {
		if !filter.IncludeExpired && bin[i].Expired(now) {
			continue
		}
		if filter.Entity != "" && bin[i].Entity != filter.Entity {
			continue
		}
		result = append(result, bin[i])
	}
	return result, nil
}

// Get returns a single bin entry by id.
func (s *RecycleBinService) Get(ctx context.Context, id string) (*entities.BinEntry, error) {
	bin, err := s.store.LoadBin(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recycle bin: %w", err)
	}
	for i := range bin {
		if bin[i].ID == id {
			return &bin[i], nil
		}
	}
	return nil, fmt.Errorf("%w: recycle bin entry %q", ErrNotFound, id)
}

// Purge permanently removes expired entries and returns how many were removed.
func (s *RecycleBinService) Purge(ctx context.Context) (int, error) {
	bin, err := s.store.LoadBin(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading recycle bin: %w", err)
	}

	now := timeNow()
	kept := make([]entities.BinEntry, 0, len(bin))
	for i := range bin {
		if !bin[i].Expired(now) {
			kept = append(kept, bin[i])
		}
	}

	purged := len(bin) - len(kept)
	if purged == 0 {
		return 0, nil
	}
	if err := s.store.SaveBin(ctx, kept); err != nil {
		return 0, fmt.Errorf("saving recycle bin: %w", err)
	}
	return purged, nil
}

// Restore brings a product or field back from the bin. The entry is only
// removed from the bin once the record has been restored; a conflict leaves
// it in place.
func (s *RecycleBinService) Restore(ctx context.Context, id string) (*RestoreResult, error) {
	bin, err := s.store.LoadBin(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recycle bin: %w", err)
	}

	pos := -1
	for i := range bin {
		if bin[i].ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("%w: recycle bin entry %q", ErrNotFound, id)
	}
	entry := bin[pos]
	if entry.Expired(timeNow()) {
		return nil, ErrExpired
	}

	var result *RestoreResult
	switch entry.Entity {
	case entities.EntityProduct:
		result, err = s.restoreProduct(ctx, &entry)
	case entities.EntityField:
		result, err = s.restoreField(ctx, &entry)
	default:
		return nil, fmt.Errorf("%w: cannot restore entity kind %q", ErrInvalidInput, entry.Entity)
	}
	if err != nil {
		return nil, err
	}

	bin = append(bin[:pos], bin[pos+1:]...)
	if err := s.store.SaveBin(ctx, bin); err != nil {
		return nil, fmt.Errorf("saving recycle bin: %w", err)
	}

	var after any = result.Product
	if result.Field != nil {
		after = result.Field
	}
	meta := map[string]any{"papelera_id": entry.ID}
	if len(result.Warnings) > 0 {
		meta["advertencias"] = result.Warnings
	}
	if _, err := s.history.Record(ctx, entities.ActionRestore, entry.Entity, nil, after, meta); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "record restored from recycle bin", "id", entry.ID, "entity", entry.Entity, "warnings", len(result.Warnings))
	return result, nil
}

func (s *RecycleBinService) restoreProduct(ctx context.Context, entry *entities.BinEntry) (*RestoreResult, error) {
	product, err := entry.ProductSnapshot()
	if err != nil {
		return nil, err
	}

	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}

	var unknown, incompatible, missing []string
	for _, field := range product.Fields() {
		t, ok := st.schema.Lookup(field)
		if !ok {
			product.Hide(field)
			unknown = append(unknown, field)
			continue
		}
		v, ok := ParseValue(coerceStored(product[field], t), t)
		if !ok {
			product.Hide(field)
			incompatible = append(incompatible, field)
			continue
		}
		product[field] = v
	}
	for _, f := range st.schema {
		if _, ok := product[f.Name]; !ok && !contains(incompatible, f.Name) {
			missing = append(missing, f.Name)
		}
	}

	if conflicts := checkUnique(product, st.unique, st.products, -1); len(conflicts) > 0 {
		return nil, &UniqueConflictError{Conflicts: conflicts}
	}

	st.products = append(st.products, product)
	if err := s.store.SaveProducts(ctx, st.products); err != nil {
		return nil, fmt.Errorf("saving products: %w", err)
	}

	result := &RestoreResult{Entity: entities.EntityProduct, Product: product.Clone()}
	result.Warnings = appendWarning(result.Warnings, WarningUnknownFields, unknown)
	result.Warnings = appendWarning(result.Warnings, WarningIncompatibleValues, incompatible)
	result.Warnings = appendWarning(result.Warnings, WarningMissingFields, missing)
	return result, nil
}

func (s *RecycleBinService) restoreField(ctx context.Context, entry *entities.BinEntry) (*RestoreResult, error) {
	snap, err := entry.FieldSnapshot()
	if err != nil {
		return nil, err
	}
	if !snap.Type.IsValid() {
		return nil, fmt.Errorf("%w: field snapshot has invalid type %q", ErrInvalidInput, snap.Type)
	}

	st, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if st.schema.Has(snap.Name) {
		return nil, fmt.Errorf("%w: a field named %q already exists", ErrConflict, snap.Name)
	}

	// The hidden archive marks which products held the field. The entry's own
	// values win over the archive, which a later deletion of a field with the
	// same name may have overwritten.
	st.schema.Set(snap.Name, snap.Type)
	for i, p := range st.products {
		v, ok := p.Unhide(snap.Name)
		if !ok {
			continue
		}
		if sv, ok := snap.Values[strconv.Itoa(i)]; ok {
			v = sv
		}
		p[snap.Name] = coerceStored(v, snap.Type)
	}

	result := &RestoreResult{Entity: entities.EntityField}
	if snap.Unique {
		if len(DetectConflicts(snap.Name, st.products)) == 0 {
			st.setUnique(snap.Name, true)
		} else {
			result.Warnings = appendWarning(result.Warnings, WarningUniqueDropped, []string{snap.Name})
		}
	}

	if err := s.store.SaveFields(ctx, st.schema); err != nil {
		return nil, fmt.Errorf("saving fields: %w", err)
	}
	if err := s.store.SaveProducts(ctx, st.products); err != nil {
		return nil, fmt.Errorf("saving products: %w", err)
	}
	if err := s.store.SaveUniqueFields(ctx, st.unique); err != nil {
		return nil, fmt.Errorf("saving unique fields: %w", err)
	}

	info := st.fieldInfo(snap.Name)
	result.Field = &info
	return result, nil
}

func appendWarning(warnings []Warning, kind string, fields []string) []Warning {
	if len(fields) == 0 {
		return warnings
	}
	return append(warnings, Warning{Kind: kind, Fields: fields})
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
