package entities

// Action is the kind of mutation recorded in the history.
type Action string

const (
	ActionCreate  Action = "Alta"
	ActionUpdate  Action = "Modificación"
	ActionDelete  Action = "Eliminación"
	ActionRestore Action = "Restauración"
)

// EntityKind names the kind of record an event or bin entry refers to.
type EntityKind string

const (
	EntityProduct     EntityKind = "producto"
	EntityField       EntityKind = "campo"
	EntityUniqueField EntityKind = "campo_unico"
)

// Timestamp carries both a display form and an ISO-8601 form of an instant.
type Timestamp struct {
	Human string `json:"humano"`
	ISO   string `json:"iso"`
}

// Event is an immutable history record. Before and After hold the state of
// the entity around the mutation; either may be nil.
type Event struct {
	ID        string         `json:"id"`
	Timestamp Timestamp      `json:"timestamp"`
	Action    Action         `json:"accion"`
	Entity    EntityKind     `json:"entidad"`
	Before    any            `json:"antes"`
	After     any            `json:"despues"`
	Meta      map[string]any `json:"meta"`
}
