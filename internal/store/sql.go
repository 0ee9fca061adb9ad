package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tablesync/internal/bulk"
	"tablesync/internal/schema"
)

// SQLStore serves the schema fetcher and bulk record interfaces from SQL
// Server. Records live in records(id BIGINT, data NVARCHAR) with data holding
// the fields document as JSON; definitions in field_defs(code, def).
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// FetchSchema loads the form's field definitions.
func (s *SQLStore) FetchSchema(ctx context.Context) (map[string]schema.FieldSchema, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT def FROM field_defs")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch field definitions: %w", err)
	}
	defer rows.Close()

	var defs []fieldDef
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var def fieldDef
		if err := json.Unmarshal([]byte(raw), &def); err != nil {
			return nil, fmt.Errorf("failed to parse field definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return toSchemaMap(defs), nil
}

// FetchPage returns up to size records with id greater than cursorID,
// ascending by id, narrowed by the filter (a WHERE fragment over the records
// table, empty for all records).
func (s *SQLStore) FetchPage(ctx context.Context, filter string, cursorID int64, size int) ([]bulk.Stored, error) {
	query := "SELECT id, data FROM records WHERE id > @p1"
	if filter != "" {
		query += " AND (" + filter + ")"
	}
	query += " ORDER BY id OFFSET 0 ROWS FETCH NEXT @p2 ROWS ONLY"

	rows, err := s.DB.QueryContext(ctx, query, cursorID, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page []bulk.Stored
	for rows.Next() {
		var id int64
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("record %d has malformed data: %w", id, err)
		}
		page = append(page, bulk.Stored{ID: id, Record: toRecord(fields)})
	}
	return page, rows.Err()
}

// WriteBatch applies all patches inside one transaction; any failure rolls
// the whole batch back so the pipeline can retry record by record.
func (s *SQLStore) WriteBatch(ctx context.Context, patches []bulk.Patch) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, p := range patches {
		if err := applyPatch(ctx, tx, p); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// WriteOne applies a single record's patch outside any transaction.
func (s *SQLStore) WriteOne(ctx context.Context, p bulk.Patch) error {
	return applyPatch(ctx, s.DB, p)
}

// querier covers both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// applyPatch merges the patch into the record's JSON document with a
// read-modify-write, preserving fields the patch does not touch.
func applyPatch(ctx context.Context, q querier, p bulk.Patch) error {
	var data string
	err := q.QueryRowContext(ctx, "SELECT data FROM records WHERE id = @p1", p.ID).Scan(&data)
	if err == sql.ErrNoRows {
		return fmt.Errorf("record %d not found", p.ID)
	}
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return fmt.Errorf("record %d has malformed data: %w", p.ID, err)
	}
	for code, val := range p.Fields {
		cell, _ := fields[code].(map[string]any)
		if cell == nil {
			cell = map[string]any{}
		}
		cell["value"] = val
		fields[code] = cell
	}

	updated, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, "UPDATE records SET data = @p1 WHERE id = @p2", string(updated), p.ID)
	return err
}
