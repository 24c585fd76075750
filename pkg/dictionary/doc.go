// Package dictionary provides the external lookup collaborators for
// policy evaluation: the field dictionary (field name → description,
// section, value type) and the medical code dictionary (CPT/ICD code →
// description, with range keys like "E66.0-E66.9").
//
// Dictionary lookups are display-only enrichment. A field or code
// missing from its dictionary is never an error; policies commonly
// reference computed or derived fields absent from any dictionary.
//
// Sources come in three flavors: in-memory (tests, programmatic use),
// JSON files (the shape produced by the data-dictionary tooling), and
// SQLite for dictionaries maintained as a database. A file watcher can
// reload a JSON-backed dictionary when the file changes.
package dictionary
