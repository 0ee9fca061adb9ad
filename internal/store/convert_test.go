package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tablesync/internal/record"
	"tablesync/internal/schema"
)

func TestToRecord_PlainAndSubtableCells(t *testing.T) {
	fields := map[string]any{
		"last_item_summary": map[string]any{"value": "B"},
		"tags":              map[string]any{"value": []any{"X", "Y"}},
		"items": map[string]any{"value": []any{
			map[string]any{"value": map[string]any{"item_name": map[string]any{"value": "A"}}},
			map[string]any{"value": map[string]any{"item_name": map[string]any{"value": "B"}}},
		}},
	}

	rec := toRecord(fields)

	assert.Equal(t, "B", rec["last_item_summary"].Value)
	assert.Equal(t, []any{"X", "Y"}, rec["tags"].Value)

	row, ok := record.LastRow(rec, "items")
	require.True(t, ok)
	assert.Equal(t, "B", record.SourceValue(row, "item_name"))
}

func TestToRecord_NormalizesDriverContainers(t *testing.T) {
	fields := map[string]any{
		"tags": primitive.M{"value": primitive.A{"X"}},
		"items": primitive.M{"value": primitive.A{
			primitive.M{"value": primitive.M{"qty": primitive.M{"value": "3"}}},
		}},
	}

	rec := toRecord(fields)

	assert.IsType(t, []any{}, rec["tags"].Value, "driver arrays become plain slices")
	assert.Equal(t, []any{"X"}, rec["tags"].Value)

	row, ok := record.LastRow(rec, "items")
	require.True(t, ok)
	assert.Equal(t, "3", record.SourceValue(row, "qty"))
}

func TestToRecord_EmptyTableCell(t *testing.T) {
	rec := toRecord(map[string]any{
		"items": map[string]any{"value": []any{}},
	})
	_, ok := record.LastRow(rec, "items")
	assert.False(t, ok)
}

func TestFieldDef_ToSchema(t *testing.T) {
	def := fieldDef{
		Code: "items",
		Type: "SUBTABLE",
		Fields: map[string]fieldDef{
			"item_tags": {Type: "MULTI_SELECT", Options: []string{"X", "Y"}, Required: true},
		},
	}

	fs := def.toSchema()
	assert.Equal(t, schema.TypeSubtable, fs.Type)

	sub, ok := fs.Fields["item_tags"]
	require.True(t, ok)
	assert.Equal(t, "item_tags", sub.Code, "nested code filled from the map key")
	assert.Equal(t, schema.TypeMultiSelect, sub.Type)
	assert.True(t, sub.Required)
	assert.True(t, sub.HasOption("X"))
	assert.False(t, sub.HasOption("Z"))
}
