package models

import (
	"encoding/json"
	"fmt"
)

// FieldMapping pairs a source field inside a subtable row with a destination
// field on the parent record.
type FieldMapping struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
}

// TableMapping is the sync configuration for one subtable: whenever the
// table changes, the value of each Src in the table's last row is written to
// the corresponding Dest on the parent record.
type TableMapping struct {
	TableCode string         `json:"tableCode"`
	Mappings  []FieldMapping `json:"mappings"`
}

// Configuration is the persisted plugin configuration. It is authored by the
// excluded settings screen and treated as read-only by the sync components.
type Configuration struct {
	TableMappings []TableMapping `json:"settings"`
	BulkEnabled   bool           `json:"showBulk"`
}

// LoadConfiguration parses a persisted configuration and validates its
// structure.
func LoadConfiguration(data []byte) (*Configuration, error) {
	var c Configuration
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate enforces the structural invariants of a configuration: at least
// one table mapping, each with at least one field pair, a distinct table code
// per mapping, and unique src and dest codes within each table mapping.
// Schema-aware checks (field existence, destination categories) live in the
// schema package.
func (c *Configuration) Validate() error {
	if len(c.TableMappings) == 0 {
		return fmt.Errorf("configuration has no table mappings")
	}
	tables := make(map[string]struct{}, len(c.TableMappings))
	for _, tm := range c.TableMappings {
		if tm.TableCode == "" {
			return fmt.Errorf("table mapping missing tableCode")
		}
		if _, dup := tables[tm.TableCode]; dup {
			return fmt.Errorf("table %q configured twice", tm.TableCode)
		}
		tables[tm.TableCode] = struct{}{}
		if len(tm.Mappings) == 0 {
			return fmt.Errorf("table %q has no field pairs", tm.TableCode)
		}
		srcs := make(map[string]struct{}, len(tm.Mappings))
		dests := make(map[string]struct{}, len(tm.Mappings))
		for _, m := range tm.Mappings {
			if m.Src == "" || m.Dest == "" {
				return fmt.Errorf("table %q has an incomplete field pair", tm.TableCode)
			}
			if _, dup := srcs[m.Src]; dup {
				return fmt.Errorf("table %q reads source %q twice", tm.TableCode, m.Src)
			}
			if _, dup := dests[m.Dest]; dup {
				return fmt.Errorf("table %q writes destination %q twice", tm.TableCode, m.Dest)
			}
			srcs[m.Src] = struct{}{}
			dests[m.Dest] = struct{}{}
		}
	}
	return nil
}

// DestCodes returns every destination field code across all table mappings,
// in configuration order.
func (c *Configuration) DestCodes() []string {
	var codes []string
	for _, tm := range c.TableMappings {
		for _, m := range tm.Mappings {
			codes = append(codes, m.Dest)
		}
	}
	return codes
}
