package engine

import "fmt"

// Config contains configuration for the evaluator.
type Config struct {
	// Workers is the number of concurrent workers used for batch
	// evaluation. Default: 4.
	Workers int

	// MaxDepth caps condition tree nesting, guarding against
	// pathologically nested rule files. Default: 64.
	MaxDepth int
}

// DefaultConfig returns the default evaluator configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:  4,
		MaxDepth: 64,
	}
}

// Validate validates the evaluator configuration.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive", ErrInvalidConfig)
	}
	return nil
}
