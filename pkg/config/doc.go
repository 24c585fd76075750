// Package config loads and validates Ganymede's YAML configuration.
//
// Configuration is loaded in layers: file values, then defaults for
// anything unset, then GANYMEDE_* environment variable overrides, then
// a final validation pass. Every section has workable defaults, so an
// empty file (or no file at all via DefaultConfig) is valid.
package config
