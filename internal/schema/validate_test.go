package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesync/pkg/models"
)

func formStore() *Store {
	return NewStore(map[string]FieldSchema{
		"items": {
			Code: "items",
			Type: TypeSubtable,
			Fields: map[string]FieldSchema{
				"item_name": {Code: "item_name", Type: TypeSingleLineText},
			},
		},
		"last_item_summary": {Code: "last_item_summary", Type: TypeSingleLineText},
		"attachment":        {Code: "attachment", Type: TypeFile},
		"notes":             {Code: "notes", Type: TypeMultiLineText},
	})
}

func mapping(tableCode, src, dest string) *models.Configuration {
	return &models.Configuration{TableMappings: []models.TableMapping{{
		TableCode: tableCode,
		Mappings:  []models.FieldMapping{{Src: src, Dest: dest}},
	}}}
}

func TestValidateConfig(t *testing.T) {
	store := formStore()

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateConfig(mapping("items", "item_name", "last_item_summary"), store))
	})

	t.Run("unknown table", func(t *testing.T) {
		assert.Error(t, ValidateConfig(mapping("ghost", "item_name", "last_item_summary"), store))
	})

	t.Run("table code is not a subtable", func(t *testing.T) {
		assert.Error(t, ValidateConfig(mapping("notes", "item_name", "last_item_summary"), store))
	})

	t.Run("unknown source", func(t *testing.T) {
		assert.Error(t, ValidateConfig(mapping("items", "ghost", "last_item_summary"), store))
	})

	t.Run("unknown destination", func(t *testing.T) {
		assert.Error(t, ValidateConfig(mapping("items", "item_name", "ghost"), store))
	})

	t.Run("illegal destination category", func(t *testing.T) {
		assert.Error(t, ValidateConfig(mapping("items", "item_name", "attachment"), store))
	})

	t.Run("definitions not loaded", func(t *testing.T) {
		assert.Error(t, ValidateConfig(mapping("items", "item_name", "last_item_summary"), NewStore(nil)))
	})
}
