// Package store provides the persisted-record adapters behind the bulk
// pipeline and schema store interfaces, for MongoDB and SQL Server backends.
// Both keep records in the same document shape: field code to {value} cell,
// subtable cells holding an array of {value: {code: {value}}} rows.
package store

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tablesync/internal/record"
	"tablesync/internal/schema"
)

// fieldDef is the stored form of one field definition.
type fieldDef struct {
	Code     string              `bson:"code" json:"code"`
	Type     string              `bson:"type" json:"type"`
	Options  []string            `bson:"options,omitempty" json:"options,omitempty"`
	Required bool                `bson:"required,omitempty" json:"required,omitempty"`
	Fields   map[string]fieldDef `bson:"fields,omitempty" json:"fields,omitempty"`
}

func (d fieldDef) toSchema() schema.FieldSchema {
	fs := schema.FieldSchema{
		Code:     d.Code,
		Type:     schema.FieldType(d.Type),
		Required: d.Required,
	}
	if len(d.Options) > 0 {
		fs.Options = make(map[string]struct{}, len(d.Options))
		for _, o := range d.Options {
			fs.Options[o] = struct{}{}
		}
	}
	if len(d.Fields) > 0 {
		fs.Fields = make(map[string]schema.FieldSchema, len(d.Fields))
		for code, sub := range d.Fields {
			sub.Code = code
			fs.Fields[code] = sub.toSchema()
		}
	}
	return fs
}

func toSchemaMap(defs []fieldDef) map[string]schema.FieldSchema {
	out := make(map[string]schema.FieldSchema, len(defs))
	for _, d := range defs {
		out[d.Code] = d.toSchema()
	}
	return out
}

// toRecord converts a stored fields document into the live record shape. All
// driver-specific container types are normalized to plain []any and
// map[string]any so value comparisons behave identically for both backends.
func toRecord(fields map[string]any) record.Record {
	rec := make(record.Record, len(fields))
	for code, cell := range fields {
		rec[code] = toField(cell)
	}
	return rec
}

func toField(cell any) *record.Field {
	m, ok := asMap(cell)
	if !ok {
		return &record.Field{}
	}
	return &record.Field{Value: toValue(m["value"])}
}

// toValue normalizes a stored cell value. An array of row documents becomes
// []record.Row, any other array becomes []any.
func toValue(v any) any {
	arr, ok := asSlice(v)
	if !ok {
		return normalize(v)
	}
	if rows, ok := asRows(arr); ok {
		return rows
	}
	out := make([]any, len(arr))
	for i, item := range arr {
		out[i] = normalize(item)
	}
	return out
}

// asRows interprets an array as a subtable row set: every element must be a
// document of the form {value: {code: cell}}.
func asRows(arr []any) ([]record.Row, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	rows := make([]record.Row, 0, len(arr))
	for _, item := range arr {
		m, ok := asMap(item)
		if !ok {
			return nil, false
		}
		cells, ok := asMap(m["value"])
		if !ok {
			return nil, false
		}
		row := make(record.Row, len(cells))
		for code, cell := range cells {
			row[code] = toField(cell)
		}
		rows = append(rows, row)
	}
	return rows, true
}

func normalize(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	default:
		return v
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case primitive.M:
		return t, true
	default:
		return nil, false
	}
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case primitive.A:
		return t, true
	default:
		return nil, false
	}
}
