package config

import "fmt"

// Validate checks the configuration for inconsistencies. It is called
// after defaults and again after environment overrides.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging: unknown format %q", cfg.Logging.Format)
	}

	switch cfg.Dictionary.FieldsBackend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("dictionary: unknown fields backend %q", cfg.Dictionary.FieldsBackend)
	}
	if cfg.Dictionary.FieldsBackend == "sqlite" && cfg.Dictionary.FieldsDBPath == "" {
		return fmt.Errorf("dictionary: sqlite fields backend requires fields_db_path")
	}
	if cfg.Dictionary.Watch && cfg.Dictionary.FieldsPath == "" {
		return fmt.Errorf("dictionary: watch requires fields_path")
	}

	switch cfg.Storage.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("storage: unknown backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Retention.Days < 0 {
		return fmt.Errorf("storage: retention days cannot be negative")
	}
	if cfg.Storage.Retention.MaxRecords < 0 {
		return fmt.Errorf("storage: retention max records cannot be negative")
	}

	if cfg.Engine.Workers <= 0 {
		return fmt.Errorf("engine: workers must be positive")
	}
	if cfg.Engine.MaxDepth <= 0 {
		return fmt.Errorf("engine: max depth must be positive")
	}

	return nil
}
