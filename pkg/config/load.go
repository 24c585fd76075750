package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults,
// and validates the result. Environment variables are not consulted;
// use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention GANYMEDE_SECTION_FIELD (e.g. GANYMEDE_LOGGING_LEVEL) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies GANYMEDE_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Logging overrides
	if val := os.Getenv("GANYMEDE_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("GANYMEDE_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("GANYMEDE_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.AddSource = b
		}
	}

	// Metrics overrides
	if val := os.Getenv("GANYMEDE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}

	// Dictionary overrides
	if val := os.Getenv("GANYMEDE_DICTIONARY_FIELDS_BACKEND"); val != "" {
		cfg.Dictionary.FieldsBackend = val
	}
	if val := os.Getenv("GANYMEDE_DICTIONARY_FIELDS_PATH"); val != "" {
		cfg.Dictionary.FieldsPath = val
	}
	if val := os.Getenv("GANYMEDE_DICTIONARY_FIELDS_DB_PATH"); val != "" {
		cfg.Dictionary.FieldsDBPath = val
	}
	if val := os.Getenv("GANYMEDE_DICTIONARY_CODES_PATH"); val != "" {
		cfg.Dictionary.CodesPath = val
	}
	if val := os.Getenv("GANYMEDE_DICTIONARY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Dictionary.Watch = b
		}
	}
	if val := os.Getenv("GANYMEDE_DICTIONARY_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Dictionary.WatchDebounce = d
		}
	}

	// Storage overrides
	if val := os.Getenv("GANYMEDE_STORAGE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("GANYMEDE_STORAGE_SQLITE_PATH"); val != "" {
		cfg.Storage.SQLitePath = val
	}
	if val := os.Getenv("GANYMEDE_STORAGE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Storage.Retention.Days = i
		}
	}
	if val := os.Getenv("GANYMEDE_STORAGE_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Storage.Retention.MaxRecords = i
		}
	}
	if val := os.Getenv("GANYMEDE_STORAGE_RETENTION_SCHEDULE"); val != "" {
		cfg.Storage.Retention.Schedule = val
	}

	// Engine overrides
	if val := os.Getenv("GANYMEDE_ENGINE_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.Workers = i
		}
	}
	if val := os.Getenv("GANYMEDE_ENGINE_MAX_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.MaxDepth = i
		}
	}

	// Graph overrides
	if val := os.Getenv("GANYMEDE_GRAPH_OUTPUT_DIR"); val != "" {
		cfg.Graph.OutputDir = val
	}
}
