package config

import "time"

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any zero-valued fields.
// Explicitly configured values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = "127.0.0.1:9190"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "ganymede"
	}

	if cfg.Dictionary.FieldsBackend == "" {
		cfg.Dictionary.FieldsBackend = "json"
	}
	if cfg.Dictionary.WatchDebounce <= 0 {
		cfg.Dictionary.WatchDebounce = 100 * time.Millisecond
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/runs.db"
	}
	if cfg.Storage.Retention.Days == 0 {
		cfg.Storage.Retention.Days = 90
	}
	if cfg.Storage.Retention.Schedule == "" {
		cfg.Storage.Retention.Schedule = "0 3 * * *"
	}

	if cfg.Engine.Workers <= 0 {
		cfg.Engine.Workers = 4
	}
	if cfg.Engine.MaxDepth <= 0 {
		cfg.Engine.MaxDepth = 64
	}

	if cfg.Graph.OutputDir == "" {
		cfg.Graph.OutputDir = "output"
	}
}
