package sync

import "tablesync/internal/record"

// EventKind identifies a host platform record event.
type EventKind int

const (
	// RecordShown fires when a record opens on a create, edit or inline
	// edit screen.
	RecordShown EventKind = iota
	// FieldChanged fires when the named field changes. For fields inside a
	// subtable row the code is the row field's code.
	FieldChanged
	// TableChanged fires when the named subtable changes shape: row added,
	// removed or reordered.
	TableChanged
	// RecordSubmit fires just before a record is saved, on every create,
	// edit and inline edit path.
	RecordSubmit
)

// Handler receives, and may mutate, the live record of an event.
type Handler func(rec record.Record)

// Bus is the host platform's event subscription surface. The code argument
// narrows FieldChanged and TableChanged to one field; it is ignored for
// RecordShown and RecordSubmit.
type Bus interface {
	Subscribe(kind EventKind, code string, h Handler)
}
