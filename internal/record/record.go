// Package record models the host platform's in-memory record: a mapping from
// field code to a value cell, with repeating-row (subtable) fields holding an
// ordered sequence of rows.
package record

// Field is a single value cell of a record. Disabled marks the field locked
// against manual edits on screen.
type Field struct {
	Value    any
	Disabled bool
}

// Row is one row of a subtable: field code to value cell.
type Row map[string]*Field

// Record is the live record representation handed over by the host: field
// code to value cell. Subtable cells hold a []Row value.
type Record map[string]*Field

// Rows returns the row sequence of a subtable cell, or nil if the cell holds
// no rows.
func Rows(f *Field) []Row {
	if f == nil {
		return nil
	}
	rows, _ := f.Value.([]Row)
	return rows
}

// LastRow returns the value map of the highest-index row of the named
// subtable. The second result is false when the field is missing from the
// record, is not a subtable, or has zero rows.
func LastRow(rec Record, tableCode string) (Row, bool) {
	rows := Rows(rec[tableCode])
	if len(rows) == 0 {
		return nil, false
	}
	return rows[len(rows)-1], true
}

// SourceValue returns the value of the named cell of a row, or nil when the
// cell is absent.
func SourceValue(row Row, code string) any {
	cell, ok := row[code]
	if !ok || cell == nil {
		return nil
	}
	return cell.Value
}
