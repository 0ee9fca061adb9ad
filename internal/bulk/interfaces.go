package bulk

import (
	"context"

	"tablesync/internal/record"
)

// Stored is one persisted record fetched from the host platform.
type Stored struct {
	ID     int64
	Record record.Record
}

// Patch is the write set for one record: destination field code to new value.
type Patch struct {
	ID     int64
	Fields map[string]any
}

// RecordSource pages through the records matching a filter, ascending by id.
// A page contains only records with id greater than cursorID; an empty page
// means the result set is exhausted.
type RecordSource interface {
	FetchPage(ctx context.Context, filter string, cursorID int64, size int) ([]Stored, error)
}

// RecordWriter applies patches to persisted records.
type RecordWriter interface {
	WriteBatch(ctx context.Context, patches []Patch) error
	WriteOne(ctx context.Context, p Patch) error
}
