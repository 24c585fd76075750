package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FieldMetadata describes a subject data field as recorded in the data
// dictionary.
type FieldMetadata struct {
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Section     string   `json:"section,omitempty"`
	Rule        string   `json:"rule,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// FieldSource resolves a field name to its metadata. Lookup misses are
// reported via the boolean, never as errors.
type FieldSource interface {
	Lookup(field string) (*FieldMetadata, bool)
}

// MemorySource is an in-memory field dictionary, safe for concurrent
// lookup and replacement.
type MemorySource struct {
	mu     sync.RWMutex
	fields map[string]*FieldMetadata
}

// NewMemorySource builds a field dictionary from a list of entries.
// Field names are matched case-insensitively.
func NewMemorySource(entries []FieldMetadata) *MemorySource {
	s := &MemorySource{}
	s.Replace(entries)
	return s
}

// Lookup implements FieldSource.
func (s *MemorySource) Lookup(field string) (*FieldMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.fields[strings.ToLower(field)]
	return meta, ok
}

// Replace swaps the dictionary contents atomically, used by the file
// watcher on reload.
func (s *MemorySource) Replace(entries []FieldMetadata) {
	fields := make(map[string]*FieldMetadata, len(entries))
	for i := range entries {
		entry := entries[i]
		fields[strings.ToLower(entry.Name)] = &entry
	}

	s.mu.Lock()
	s.fields = fields
	s.mu.Unlock()
}

// Len returns the number of entries.
func (s *MemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}

// ReadFieldFile reads the raw entry list of a JSON field dictionary.
func ReadFieldFile(path string) ([]FieldMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field dictionary %q: %w", path, err)
	}

	var entries []FieldMetadata
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid field dictionary %q: %w", path, err)
	}
	return entries, nil
}

// LoadFieldFile reads a field dictionary from a JSON file holding a
// list of field entries.
func LoadFieldFile(path string) (*MemorySource, error) {
	entries, err := ReadFieldFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemorySource(entries), nil
}
