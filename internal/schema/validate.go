package schema

import (
	"fmt"

	"tablesync/pkg/models"
)

// ValidateConfig checks a structurally valid configuration against the loaded
// field definitions: every table code must name a subtable field, every
// source must belong to that table's row schema, and every destination must
// exist on the parent record in a category that may legally be written.
//
// This mirrors the compatibility rules the configuration screen applies, and
// is re-checked here so a stale configuration cannot target a field whose
// type changed after it was saved.
func ValidateConfig(cfg *models.Configuration, s *Store) error {
	if !s.Loaded() {
		return fmt.Errorf("field definitions not loaded")
	}
	for _, tm := range cfg.TableMappings {
		table, ok := s.Lookup(tm.TableCode)
		if !ok {
			return fmt.Errorf("table %q not found on the form", tm.TableCode)
		}
		if table.Type != TypeSubtable {
			return fmt.Errorf("field %q is %s, not a subtable", tm.TableCode, table.Type)
		}
		for _, m := range tm.Mappings {
			if table.Fields != nil {
				if _, ok := table.Fields[m.Src]; !ok {
					return fmt.Errorf("source %q not found in table %q", m.Src, tm.TableCode)
				}
			}
			dest, ok := s.Lookup(m.Dest)
			if !ok {
				return fmt.Errorf("destination %q not found on the form", m.Dest)
			}
			if !IsLegalDest(dest.Type) {
				return fmt.Errorf("destination %q has type %s, which cannot receive synchronized values", m.Dest, dest.Type)
			}
		}
	}
	return nil
}
