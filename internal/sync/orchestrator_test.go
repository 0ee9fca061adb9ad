package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesync/internal/record"
	"tablesync/internal/schema"
	"tablesync/pkg/models"
)

func testConfig() *models.Configuration {
	return &models.Configuration{TableMappings: []models.TableMapping{{
		TableCode: "items",
		Mappings: []models.FieldMapping{
			{Src: "item_name", Dest: "last_item_summary"},
			{Src: "item_tags", Dest: "last_item_tags"},
		},
	}}}
}

func testStore() *schema.Store {
	return schema.NewStore(map[string]schema.FieldSchema{
		"items":             {Code: "items", Type: schema.TypeSubtable},
		"last_item_summary": {Code: "last_item_summary", Type: schema.TypeSingleLineText},
		"last_item_tags": {
			Code: "last_item_tags", Type: schema.TypeMultiSelect,
			Options: map[string]struct{}{"X": {}, "Y": {}},
		},
	})
}

func itemsRecord(rows []record.Row) record.Record {
	return record.Record{
		"items":             &record.Field{Value: rows},
		"last_item_summary": &record.Field{Value: "stale"},
		"last_item_tags":    &record.Field{Value: []any{"stale"}},
	}
}

func TestOrchestrator_SyncAll_LastRowWins(t *testing.T) {
	rec := itemsRecord([]record.Row{
		{"item_name": &record.Field{Value: "A"}, "item_tags": &record.Field{Value: []any{"X"}}},
		{"item_name": &record.Field{Value: "B"}, "item_tags": &record.Field{Value: []any{"X", "Z"}}},
	})

	o := New(testConfig(), testStore())
	o.SyncAll(rec)

	assert.Equal(t, "B", rec["last_item_summary"].Value)
	assert.Equal(t, []any{"X"}, rec["last_item_tags"].Value, "invalid option dropped")
}

func TestOrchestrator_SyncAll_EmptyTable(t *testing.T) {
	rec := itemsRecord([]record.Row{})

	o := New(testConfig(), testStore())
	o.SyncAll(rec)

	assert.Equal(t, "", rec["last_item_summary"].Value, "text destination cleared, not left stale")
	assert.Equal(t, []any{}, rec["last_item_tags"].Value, "array destination cleared to an empty sequence")
}

func TestOrchestrator_SyncAll_UnknownSchemaSkipsMapping(t *testing.T) {
	rec := itemsRecord([]record.Row{
		{"item_name": &record.Field{Value: "A"}},
	})

	// Definitions not loaded yet: the pass must skip, not fail or clear.
	o := New(testConfig(), schema.NewStore(nil))
	o.SyncAll(rec)

	assert.Equal(t, "stale", rec["last_item_summary"].Value)
}

func TestOrchestrator_SyncAll_DestinationMissingFromRecord(t *testing.T) {
	rec := record.Record{
		"items": &record.Field{Value: []record.Row{{"item_name": &record.Field{Value: "A"}}}},
	}

	o := New(testConfig(), testStore())
	assert.NotPanics(t, func() { o.SyncAll(rec) })
}

func TestOrchestrator_Lock(t *testing.T) {
	rec := itemsRecord(nil)

	// Locking must work before any schema has loaded.
	o := New(testConfig(), schema.NewStore(nil))
	o.Lock(rec)

	assert.True(t, rec["last_item_summary"].Disabled)
	assert.True(t, rec["last_item_tags"].Disabled)
	assert.False(t, rec["items"].Disabled, "only destinations are locked")
}

func TestOrchestrator_DebounceDropsBursts(t *testing.T) {
	rec := itemsRecord([]record.Row{{"item_name": &record.Field{Value: "A"}}})

	o := New(testConfig(), testStore())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return now }

	o.handleChange(rec)
	require.Equal(t, "A", rec["last_item_summary"].Value)

	// A change landing inside the gate window is a no-op.
	rec["items"].Value = []record.Row{{"item_name": &record.Field{Value: "C"}}}
	now = now.Add(10 * time.Millisecond)
	o.handleChange(rec)
	assert.Equal(t, "A", rec["last_item_summary"].Value)

	now = now.Add(DefaultGateInterval)
	o.handleChange(rec)
	assert.Equal(t, "C", rec["last_item_summary"].Value)
}

type subscription struct {
	kind EventKind
	code string
}

type fakeBus struct {
	subs []subscription
}

func (b *fakeBus) Subscribe(kind EventKind, code string, h Handler) {
	b.subs = append(b.subs, subscription{kind, code})
}

func TestOrchestrator_Register(t *testing.T) {
	bus := &fakeBus{}
	New(testConfig(), testStore()).Register(bus)

	assert.Contains(t, bus.subs, subscription{RecordShown, ""})
	assert.Contains(t, bus.subs, subscription{RecordSubmit, ""})
	assert.Contains(t, bus.subs, subscription{TableChanged, "items"})
	assert.Contains(t, bus.subs, subscription{FieldChanged, "item_name"})
	assert.Contains(t, bus.subs, subscription{FieldChanged, "item_tags"})
}
