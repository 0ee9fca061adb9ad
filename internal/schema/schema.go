// Package schema holds the field definitions of the host form: field codes,
// their types, option sets and required flags. The store is populated once
// per session and read-only afterwards.
package schema

import "context"

// FieldType identifies a field kind on the host platform.
type FieldType string

const (
	TypeSingleLineText FieldType = "SINGLE_LINE_TEXT"
	TypeMultiLineText  FieldType = "MULTI_LINE_TEXT"
	TypeRichText       FieldType = "RICH_TEXT"
	TypeNumber         FieldType = "NUMBER"
	TypeCalc           FieldType = "CALC"
	TypeDate           FieldType = "DATE"
	TypeTime           FieldType = "TIME"
	TypeDateTime       FieldType = "DATETIME"
	TypeLink           FieldType = "LINK"
	TypeDropDown       FieldType = "DROP_DOWN"
	TypeRadioButton    FieldType = "RADIO_BUTTON"
	TypeCheckBox       FieldType = "CHECK_BOX"
	TypeMultiSelect    FieldType = "MULTI_SELECT"
	TypeCategory       FieldType = "CATEGORY"
	TypeStatus         FieldType = "STATUS"
	TypeUserSelect     FieldType = "USER_SELECT"
	TypeOrgSelect      FieldType = "ORGANIZATION_SELECT"
	TypeGroupSelect    FieldType = "GROUP_SELECT"
	TypeFile           FieldType = "FILE"
	TypeLookup         FieldType = "LOOKUP"
	TypeReferenceTable FieldType = "REFERENCE_TABLE"
	TypeSubtable       FieldType = "SUBTABLE"
	TypeGroup          FieldType = "GROUP"
)

// category is the single classification table consulted by both the coercion
// engine and configuration validation, so the two can never disagree.
type category struct {
	array     bool // value is a sequence of codes/entities
	options   bool // value constrained to a fixed option set
	freeText  bool // accepts a stringified rendering of any source
	legalDest bool // may be configured as a sync destination
}

var categories = map[FieldType]category{
	TypeSingleLineText: {freeText: true, legalDest: true},
	TypeMultiLineText:  {freeText: true, legalDest: true},
	TypeRichText:       {freeText: true, legalDest: true},
	TypeLink:           {freeText: true, legalDest: true},
	TypeDropDown:       {options: true, legalDest: true},
	TypeRadioButton:    {options: true, legalDest: true},
	TypeCheckBox:       {array: true, options: true, legalDest: true},
	TypeMultiSelect:    {array: true, options: true, legalDest: true},
	TypeUserSelect:     {array: true, legalDest: true},
	TypeOrgSelect:      {array: true, legalDest: true},
	TypeGroupSelect:    {array: true, legalDest: true},
	TypeCategory:       {array: true},
	TypeNumber:         {},
	TypeCalc:           {},
	TypeDate:           {},
	TypeTime:           {},
	TypeDateTime:       {},
	TypeStatus:         {},
	TypeFile:           {},
	TypeLookup:         {},
	TypeReferenceTable: {},
	TypeSubtable:       {},
	TypeGroup:          {},
}

// IsArray reports whether values of the type are sequences.
func IsArray(t FieldType) bool { return categories[t].array }

// HasOptions reports whether values of the type are constrained to a fixed
// option set.
func HasOptions(t FieldType) bool { return categories[t].options }

// IsFreeText reports whether the type accepts a stringified rendering of any
// source value.
func IsFreeText(t FieldType) bool { return categories[t].freeText }

// IsLegalDest reports whether the type may be configured as a sync
// destination. Attachments, calculated fields and cross-record lookups are
// never legal; neither are scalar kinds that carry no option set and are not
// free text.
func IsLegalDest(t FieldType) bool { return categories[t].legalDest }

// FieldSchema describes a single field of the form. Subtable fields carry
// the schema of their row fields in Fields.
type FieldSchema struct {
	Code     string
	Type     FieldType
	Options  map[string]struct{} // valid choice codes, nil unless HasOptions
	Required bool
	Fields   map[string]FieldSchema // row schema, subtable kinds only
}

// HasOption reports whether code is a member of the field's option set.
func (f FieldSchema) HasOption(code string) bool {
	_, ok := f.Options[code]
	return ok
}

// Fetcher retrieves the form's field definitions from the host platform.
type Fetcher interface {
	FetchSchema(ctx context.Context) (map[string]FieldSchema, error)
}

// Store is the session-local field definition store. It is written once by
// Load and read-only afterwards.
type Store struct {
	fields map[string]FieldSchema
}

// NewStore returns a store pre-populated with the given definitions.
// Intended for tests and for callers that already hold the definitions.
func NewStore(fields map[string]FieldSchema) *Store {
	return &Store{fields: fields}
}

// Load populates the store from the fetcher. Calling Load on an already
// populated store is a no-op so repeated ensure-loaded calls stay cheap.
func (s *Store) Load(ctx context.Context, f Fetcher) error {
	if s.Loaded() {
		return nil
	}
	fields, err := f.FetchSchema(ctx)
	if err != nil {
		return err
	}
	s.fields = fields
	return nil
}

// Loaded reports whether field definitions are available.
func (s *Store) Loaded() bool { return len(s.fields) > 0 }

// Lookup returns the schema of the field with the given code.
func (s *Store) Lookup(code string) (FieldSchema, bool) {
	f, ok := s.fields[code]
	return f, ok
}
