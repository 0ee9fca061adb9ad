// Package sync keeps a record's destination fields equal to the coerced
// values of the last row of each configured subtable, re-evaluated on every
// relevant record event, and locks destination fields against manual edits.
package sync

import (
	"time"

	"tablesync/internal/record"
	"tablesync/internal/schema"
	"tablesync/pkg/models"
)

// Orchestrator owns the interactive sync path for one session.
type Orchestrator struct {
	cfg   *models.Configuration
	store *schema.Store
	gate  *Gate
	now   func() time.Time
}

// New returns an orchestrator over the given configuration and field
// definition store. The store may still be empty: locking never waits for
// definitions, and mappings without a known destination schema are skipped
// until the store loads.
func New(cfg *models.Configuration, store *schema.Store) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		store: store,
		gate:  NewGate(DefaultGateInterval),
		now:   time.Now,
	}
}

// Register wires the orchestrator's handlers onto the host event bus: locking
// on every shown event, and a full sync pass on any change to a configured
// table, any change to a configured source field, and every submit.
func (o *Orchestrator) Register(bus Bus) {
	bus.Subscribe(RecordShown, "", o.Lock)
	bus.Subscribe(RecordSubmit, "", o.handleChange)
	for _, tm := range o.cfg.TableMappings {
		bus.Subscribe(TableChanged, tm.TableCode, o.handleChange)
		for _, m := range tm.Mappings {
			bus.Subscribe(FieldChanged, m.Src, o.handleChange)
		}
	}
}

// Lock disables every configured destination field present on the record.
// It runs unconditionally on each shown event, independent of whether field
// definitions have loaded: the lock protects data integrity and must never
// wait on a network round trip. Locks are never cleared by this engine.
func (o *Orchestrator) Lock(rec record.Record) {
	for _, code := range o.cfg.DestCodes() {
		if cell, ok := rec[code]; ok && cell != nil {
			cell.Disabled = true
		}
	}
}

func (o *Orchestrator) handleChange(rec record.Record) {
	if !o.gate.ShouldRun(o.now()) {
		return
	}
	o.SyncAll(rec)
}

// SyncAll recomputes every table mapping against the record and writes the
// results in place. Running all mappings on every trigger is deliberate:
// each mapping targets a distinct destination, so the result is identical to
// re-running only the table that changed.
func (o *Orchestrator) SyncAll(rec record.Record) {
	for _, tm := range o.cfg.TableMappings {
		for code, val := range Values(rec, tm, o.store) {
			if cell, ok := rec[code]; ok && cell != nil {
				cell.Value = val
			}
		}
	}
}
