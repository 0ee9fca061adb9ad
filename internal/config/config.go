// Package config handles the application's environment settings and the
// loading of the persisted mapping configuration file.
package config

import (
	"fmt"
	"os"
)

// Config holds connection settings, typically populated from the .env file
// loaded in main.
type Config struct {
	SQLConnString   string
	MongoConnString string
	MongoDatabase   string
}

// LoadConfig reads connection settings from environment variables. Which of
// them are required depends on the store backend the command selects, so
// missing values surface there, not here.
func LoadConfig() *Config {
	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "tablesync"
	}
	return &Config{
		SQLConnString:   os.Getenv("SQL_CONNECTION_STRING"),
		MongoConnString: os.Getenv("MONGO_CONNECTION_STRING"),
		MongoDatabase:   database,
	}
}

// RequireMongo returns an error unless the MongoDB connection string is set.
func (c *Config) RequireMongo() error {
	if c.MongoConnString == "" {
		return fmt.Errorf("MONGO_CONNECTION_STRING environment variable not set")
	}
	return nil
}

// RequireSQL returns an error unless the SQL Server connection string is set.
func (c *Config) RequireSQL() error {
	if c.SQLConnString == "" {
		return fmt.Errorf("SQL_CONNECTION_STRING environment variable not set")
	}
	return nil
}
