// Package subject provides access to the data record being evaluated
// against a policy (e.g. a patient record). The evaluator only sees the
// Accessor interface; how the record was loaded (JSON file, relational
// row) is this package's concern.
package subject

// Accessor resolves a field name to an observed value. The second
// return value reports presence: a missing field is an explicit signal,
// not an error, because real-world subject records are frequently
// incomplete.
type Accessor interface {
	Get(field string) (interface{}, bool)
}

// MapAccessor adapts a decoded JSON object to the Accessor interface.
// Lookups check top-level keys first and then scan one level of nested
// objects, since subject records commonly group fields into sections
// (demographics, vital_signs, ...) while policies reference the flat
// field name.
type MapAccessor struct {
	data map[string]interface{}
}

// NewMapAccessor wraps a decoded record. A nil map behaves as an empty
// record: every field is missing.
func NewMapAccessor(data map[string]interface{}) *MapAccessor {
	return &MapAccessor{data: data}
}

// Get implements Accessor.
func (m *MapAccessor) Get(field string) (interface{}, bool) {
	if m == nil || m.data == nil {
		return nil, false
	}

	if v, ok := m.data[field]; ok {
		return v, true
	}

	// Fall back to scanning nested sections for the flat field name.
	for _, v := range m.data {
		nested, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		if inner, ok := nested[field]; ok {
			return inner, true
		}
	}

	return nil, false
}

// ID returns a stable identifier for the record, preferring an explicit
// id, then mrn, then name. Returns "" when none is present.
func (m *MapAccessor) ID() string {
	for _, key := range []string{"id", "mrn", "name"} {
		if v, ok := m.Get(key); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
