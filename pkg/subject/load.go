package subject

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a single subject record from a JSON file.
func Load(path string) (*MapAccessor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject file %q: %w", path, err)
	}
	return Decode(data)
}

// Decode parses a single subject record from JSON bytes.
func Decode(data []byte) (*MapAccessor, error) {
	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("invalid subject record: %w", err)
	}
	return NewMapAccessor(record), nil
}

// LoadBatch reads subject records from a JSON file holding either a
// single object or an array of objects, and returns one accessor per
// record in file order.
func LoadBatch(path string) ([]*MapAccessor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject file %q: %w", path, err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err == nil {
		accessors := make([]*MapAccessor, len(records))
		for i, record := range records {
			accessors[i] = NewMapAccessor(record)
		}
		return accessors, nil
	}

	single, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("subject file %q is neither a record nor an array of records: %w", path, err)
	}
	return []*MapAccessor{single}, nil
}
