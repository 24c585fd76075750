package config

import "time"

// Config is the root configuration structure for Ganymede. It covers
// every runtime concern: logging, metrics, the rule dictionaries, run
// storage, the evaluator, and graph export.
type Config struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Dictionary contains field and code dictionary configuration.
	Dictionary DictionaryConfig `yaml:"dictionary"`

	// Storage contains evaluation run storage configuration.
	Storage StorageConfig `yaml:"storage"`

	// Engine contains evaluator configuration.
	Engine EngineConfig `yaml:"engine"`

	// Graph contains knowledge-graph export configuration.
	Graph GraphConfig `yaml:"graph"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the metrics endpoint listens when enabled.
	// Default: "127.0.0.1:9190"
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metric name prefix.
	// Default: "ganymede"
	Namespace string `yaml:"namespace"`
}

// DictionaryConfig contains field and code dictionary configuration.
type DictionaryConfig struct {
	// FieldsBackend selects where field metadata comes from.
	// Options: "json" (file), "sqlite" (database).
	// Default: "json"
	FieldsBackend string `yaml:"fields_backend"`

	// FieldsPath is the JSON field dictionary path when FieldsBackend
	// is "json".
	FieldsPath string `yaml:"fields_path"`

	// FieldsDBPath is the SQLite field dictionary path when
	// FieldsBackend is "sqlite".
	FieldsDBPath string `yaml:"fields_db_path"`

	// CodesPath is the JSON code dictionary path. Empty disables code
	// resolution.
	CodesPath string `yaml:"codes_path"`

	// Watch reloads the JSON field dictionary on file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is how long to wait after a file event before
	// reloading. Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// StorageConfig contains evaluation run storage configuration.
type StorageConfig struct {
	// Enabled controls whether evaluation runs are persisted.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend ("memory", "sqlite").
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the run database path for the sqlite backend.
	// Default: "data/runs.db"
	SQLitePath string `yaml:"sqlite_path"`

	// Retention controls automatic pruning of stored runs.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls pruning of old evaluation runs.
type RetentionConfig struct {
	// Days is how many days of runs to keep. 0 keeps runs forever.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the total number of stored runs. 0 is unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// Schedule is a cron expression for automatic pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// EngineConfig contains evaluator configuration.
type EngineConfig struct {
	// Workers is the batch evaluation worker count.
	// Default: 4
	Workers int `yaml:"workers"`

	// MaxDepth caps condition tree nesting.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`
}

// GraphConfig contains knowledge-graph export configuration.
type GraphConfig struct {
	// OutputDir is where kg_nodes.json and kg_edges.json are written.
	// Default: "output"
	OutputDir string `yaml:"output_dir"`
}
