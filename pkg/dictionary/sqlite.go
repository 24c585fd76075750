package dictionary

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (cgo-free)
)

// fieldSchema is the table layout used by the data-dictionary tooling.
const fieldSchema = `
CREATE TABLE IF NOT EXISTS fields (
    name        TEXT PRIMARY KEY,
    type        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    section     TEXT NOT NULL DEFAULT '',
    rule        TEXT NOT NULL DEFAULT ''
);
`

// SQLiteSource is a field dictionary backed by a SQLite database, for
// deployments that maintain the data dictionary as a database rather
// than a JSON file.
type SQLiteSource struct {
	db     *sql.DB
	lookup *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteSource opens (and if necessary initializes) a SQLite field
// dictionary at path.
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open field dictionary database: %w", err)
	}

	if _, err := db.Exec(fieldSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize field dictionary schema: %w", err)
	}

	lookup, err := db.Prepare(
		`SELECT name, type, description, section, rule FROM fields WHERE name = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare dictionary lookup: %w", err)
	}

	logger := slog.Default().With("component", "dictionary.sqlite")
	logger.Debug("field dictionary opened", "path", path)

	return &SQLiteSource{db: db, lookup: lookup, logger: logger}, nil
}

// Lookup implements FieldSource. Database errors are logged and treated
// as lookup misses, keeping annotation a non-failing operation.
func (s *SQLiteSource) Lookup(field string) (*FieldMetadata, bool) {
	var meta FieldMetadata
	err := s.lookup.QueryRow(strings.ToLower(field)).Scan(
		&meta.Name, &meta.Type, &meta.Description, &meta.Section, &meta.Rule)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("field dictionary lookup failed", "field", field, "error", err)
		return nil, false
	}
	return &meta, true
}

// Upsert inserts or updates a field entry.
func (s *SQLiteSource) Upsert(meta FieldMetadata) error {
	_, err := s.db.Exec(`
		INSERT INTO fields (name, type, description, section, rule)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			type = excluded.type,
			description = excluded.description,
			section = excluded.section,
			rule = excluded.rule`,
		strings.ToLower(meta.Name), meta.Type, meta.Description, meta.Section, meta.Rule)
	if err != nil {
		return fmt.Errorf("failed to upsert field %q: %w", meta.Name, err)
	}
	return nil
}

// Import loads every entry of an in-memory dictionary file into the
// database, used to seed a database dictionary from JSON.
func (s *SQLiteSource) Import(entries []FieldMetadata) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin dictionary import: %w", err)
	}
	defer tx.Rollback()

	for _, meta := range entries {
		if _, err := tx.Exec(`
			INSERT INTO fields (name, type, description, section, rule)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				type = excluded.type,
				description = excluded.description,
				section = excluded.section,
				rule = excluded.rule`,
			strings.ToLower(meta.Name), meta.Type, meta.Description, meta.Section, meta.Rule); err != nil {
			return fmt.Errorf("failed to import field %q: %w", meta.Name, err)
		}
	}

	return tx.Commit()
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	if s.lookup != nil {
		s.lookup.Close()
	}
	return s.db.Close()
}
