package config

import (
	"fmt"
	"os"

	"tablesync/pkg/models"
)

// LoadMapping reads and parses the persisted mapping configuration from the
// given path. The returned configuration is structurally validated.
func LoadMapping(filePath string) (*models.Configuration, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", filePath, err)
	}

	cfg, err := models.LoadConfiguration(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", filePath, err)
	}

	return cfg, nil
}
