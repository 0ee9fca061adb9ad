// Package bulk applies the last-row mapping semantics to every record
// matching a filter, as a single user-invoked pass: cursor pagination, patch
// computation shared with the interactive path, and chunked batch writes with
// per-record fallback on batch failure.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"tablesync/internal/schema"
	"tablesync/internal/sync"
	"tablesync/pkg/logger"
	"tablesync/pkg/models"
)

const (
	// DefaultPageSize is the record count requested per fetch page.
	DefaultPageSize = 500
	// DefaultChunkSize is the patch count per batched write.
	DefaultChunkSize = 100
)

// ErrCanceled is returned when the confirmation hook declines the run.
// Nothing has been fetched or written at that point.
var ErrCanceled = errors.New("bulk run canceled")

// State tracks pipeline progress. Every transition except confirmation is
// automatic; there is no pause or resume.
type State int

const (
	StateIdle State = iota
	StateConfirming
	StateFetchingSchema
	StatePaginating
	StateComputingUpdates
	StateApplyingBatches
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirming:
		return "confirming"
	case StateFetchingSchema:
		return "fetching schema"
	case StatePaginating:
		return "paginating"
	case StateComputingUpdates:
		return "computing updates"
	case StateApplyingBatches:
		return "applying batches"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Progress is a point-in-time snapshot reported after every chunk and, during
// per-record fallback, after every record.
type Progress struct {
	Processed int
	Total     int
	Errors    int
}

// RecordError is one record whose individual write failed. The run continues
// past it; the error stays available in the final summary.
type RecordError struct {
	ID  int64
	Err error
}

// Summary is the terminal outcome of a successful run. Processed counts every
// visited record, including those that needed no write and those that errored.
type Summary struct {
	Processed int
	Errors    []RecordError
}

// Pipeline is a one-shot bulk propagation run. Zero-value fields fall back to
// the defaults; Confirm and OnProgress may be nil.
type Pipeline struct {
	Cfg    *models.Configuration
	Store  *schema.Store
	Schema schema.Fetcher
	Source RecordSource
	Writer RecordWriter

	Filter    string
	PageSize  int
	ChunkSize int

	// Confirm is asked once before any fetch or write. Returning false
	// cancels the run with no side effects.
	Confirm func() bool
	// OnProgress receives progress snapshots as batches apply.
	OnProgress func(Progress)

	state State
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) transition(s State) {
	p.state = s
	logger.Infof("bulk: %s", s)
}

func (p *Pipeline) report(pr Progress) {
	if p.OnProgress != nil {
		p.OnProgress(pr)
	}
}

// Run executes the pass to completion. A non-nil error means the run failed
// before any write (schema or fetch failure) or was canceled; per-record
// write failures never fail the run and are reported in the summary instead.
// Re-running after a clean pass performs zero writes: values already equal to
// the computed ones are excluded from the write set.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	chunkSize := p.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	p.transition(StateConfirming)
	if p.Confirm != nil && !p.Confirm() {
		p.transition(StateIdle)
		return nil, ErrCanceled
	}

	p.transition(StateFetchingSchema)
	if err := p.Store.Load(ctx, p.Schema); err != nil {
		p.transition(StateFailed)
		return nil, fmt.Errorf("failed to fetch field definitions: %w", err)
	}

	p.transition(StatePaginating)
	var all []Stored
	var cursor int64
	for {
		page, err := p.Source.FetchPage(ctx, p.Filter, cursor, pageSize)
		if err != nil {
			p.transition(StateFailed)
			return nil, fmt.Errorf("failed to fetch records after id %d: %w", cursor, err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		cursor = page[len(page)-1].ID
	}
	total := len(all)
	logger.Infof("bulk: %d records match the filter", total)

	p.transition(StateComputingUpdates)
	summary := &Summary{}
	var patches []Patch
	for _, st := range all {
		patch := p.computePatch(st)
		if len(patch.Fields) == 0 {
			// Nothing to change; counted as processed up front.
			summary.Processed++
			continue
		}
		patches = append(patches, patch)
	}

	p.transition(StateApplyingBatches)
	for start := 0; start < len(patches); start += chunkSize {
		end := min(start+chunkSize, len(patches))
		chunk := patches[start:end]

		if err := p.Writer.WriteBatch(ctx, chunk); err != nil {
			logger.Warnf("bulk: batch of %d failed, retrying records individually: %v", len(chunk), err)
			for _, patch := range chunk {
				if err := p.Writer.WriteOne(ctx, patch); err != nil {
					logger.Errorf("bulk: record %d: %v", patch.ID, err)
					summary.Errors = append(summary.Errors, RecordError{ID: patch.ID, Err: err})
				}
				summary.Processed++
				p.report(Progress{Processed: summary.Processed, Total: total, Errors: len(summary.Errors)})
			}
			continue
		}

		summary.Processed += len(chunk)
		p.report(Progress{Processed: summary.Processed, Total: total, Errors: len(summary.Errors)})
	}

	p.transition(StateDone)
	logger.Infof("bulk: finished, processed %d of %d, %d errors", summary.Processed, total, len(summary.Errors))
	return summary, nil
}

// computePatch runs the shared extractor and coercion semantics for one
// stored record and keeps only values that exist on the record and differ
// from its current ones.
func (p *Pipeline) computePatch(st Stored) Patch {
	patch := Patch{ID: st.ID, Fields: make(map[string]any)}
	for _, tm := range p.Cfg.TableMappings {
		for code, val := range sync.Values(st.Record, tm, p.Store) {
			cell, ok := st.Record[code]
			if !ok || cell == nil {
				continue
			}
			if reflect.DeepEqual(cell.Value, val) {
				continue
			}
			patch.Fields[code] = val
		}
	}
	return patch
}
