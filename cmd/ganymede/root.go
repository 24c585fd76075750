package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"verity-hq/ganymede/pkg/config"
	"verity-hq/ganymede/pkg/dictionary"
	"verity-hq/ganymede/pkg/store"
	"verity-hq/ganymede/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - declarative eligibility rule engine",
	Long: `Ganymede evaluates subject records against declarative eligibility
rules written as SQL-style WHERE expressions.

It provides:
  - Rule parsing with precise error reporting and suggestions
  - Per-condition compliance status (satisfied, unsatisfied,
    satisfied via an OR sibling)
  - Field and code dictionary annotation
  - Knowledge-graph export for visualization
  - Persisted evaluation runs with retention pruning

For more information, visit: https://github.com/verity-hq/ganymede`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configured (or default) configuration and
// installs the process logger.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	return cfg, nil
}

// buildFieldSource constructs the field dictionary source selected by
// the configuration, preferring an explicit --fields flag path.
func buildFieldSource(cfg *config.Config, fieldsPath string) (dictionary.FieldSource, func(), error) {
	noop := func() {}

	if fieldsPath != "" {
		src, err := dictionary.LoadFieldFile(fieldsPath)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	}

	switch cfg.Dictionary.FieldsBackend {
	case "sqlite":
		src, err := dictionary.NewSQLiteSource(cfg.Dictionary.FieldsDBPath)
		if err != nil {
			return nil, noop, err
		}
		return src, func() { src.Close() }, nil
	default:
		if cfg.Dictionary.FieldsPath == "" {
			return nil, noop, nil
		}
		src, err := dictionary.LoadFieldFile(cfg.Dictionary.FieldsPath)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	}
}

// buildCodeDictionary loads the code dictionary when configured.
func buildCodeDictionary(cfg *config.Config, codesPath string) (*dictionary.CodeDictionary, error) {
	if codesPath == "" {
		codesPath = cfg.Dictionary.CodesPath
	}
	if codesPath == "" {
		return nil, nil
	}
	return dictionary.LoadCodeFile(codesPath)
}

// buildStorage constructs the run storage backend when enabled.
func buildStorage(cfg *config.Config) (store.Storage, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}

	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemoryStorage(), nil
	default:
		return store.NewSQLiteStorage(&store.SQLiteConfig{
			Path:         cfg.Storage.SQLitePath,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
		})
	}
}
