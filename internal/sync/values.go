package sync

import (
	"tablesync/internal/coerce"
	"tablesync/internal/record"
	"tablesync/internal/schema"
	"tablesync/pkg/models"
)

// Values computes the destination values one table mapping implies for a
// record: for every field pair, the coerced value of the source field in the
// table's last row, or the type-appropriate empty value when the table has no
// rows. Both the interactive path and the bulk pipeline go through this
// function, so the two always agree.
//
// A mapping whose destination schema is unknown (definitions not loaded, or
// the field no longer exists) is skipped for this pass, as is a destination
// whose category cannot legally be written.
func Values(rec record.Record, tm models.TableMapping, store *schema.Store) map[string]any {
	out := make(map[string]any, len(tm.Mappings))
	row, hasRow := record.LastRow(rec, tm.TableCode)

	for _, m := range tm.Mappings {
		dest, ok := store.Lookup(m.Dest)
		if !ok || !schema.IsLegalDest(dest.Type) {
			continue
		}
		if !hasRow {
			out[m.Dest] = coerce.Empty(dest.Type)
			continue
		}
		val, ok := coerce.Coerce(record.SourceValue(row, m.Src), dest)
		if !ok {
			continue
		}
		out[m.Dest] = val
	}
	return out
}
