package config

import (
	"os"
	"strconv"

	"caselens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds the data file paths and the reconciliation contract
type DataConfig struct {
	// DataFile is the working table the server loads once per session.
	DataFile string

	// Offline reconciliation inputs/output (cmd/prepare).
	PrincipalFile     string
	ComplementaryFile string
	MergedFile        string

	// KeyColumn uniquely identifies one case after reconciliation.
	KeyColumn string
	// MultiValueColumn is the attribute packed into a list per key.
	MultiValueColumn string

	// MaxSampleRows caps tabular previews returned over HTTP.
	MaxSampleRows int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			DataFile:          os.Getenv("DATA_FILE"),
			PrincipalFile:     os.Getenv("PRINCIPAL_FILE"),
			ComplementaryFile: os.Getenv("COMPLEMENTARY_FILE"),
			MergedFile:        getEnvOrDefault("MERGED_FILE", "merged.csv"),
			KeyColumn:         getEnvOrDefault("KEY_COLUMN", "Caso Id"),
			MultiValueColumn:  getEnvOrDefault("MULTI_VALUE_COLUMN", "Tipo Penal"),
			MaxSampleRows:     getEnvIntOrDefault("MAX_SAMPLE_ROWS", 100),
		},
	}

	if config.Data.KeyColumn == "" {
		return nil, errors.ConfigInvalid("KEY_COLUMN is required")
	}
	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
