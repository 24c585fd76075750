package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"verity-hq/ganymede/pkg/policy/engine"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5.
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true.
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/runs.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	insert *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteStorage opens (and if necessary initializes) the run
// database.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("run storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	insert, err := s.db.Prepare(`
		INSERT INTO runs (id, subject_id, expression, compliant, evaluated_at, summary)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return NewStorageError("sqlite", "prepare_insert", err)
	}
	s.insert = insert

	return nil
}

// Store implements Storage.
func (s *SQLiteStorage) Store(ctx context.Context, record *RunRecord) error {
	summaryJSON, err := json.Marshal(record.Summary)
	if err != nil {
		return NewStorageError("sqlite", "encode_summary", err)
	}

	compliant := 0
	if record.Compliant {
		compliant = 1
	}

	_, err = s.insert.ExecContext(ctx,
		record.ID, record.SubjectID, record.Expression,
		compliant, record.EvaluatedAt, string(summaryJSON))
	if err != nil {
		return NewStorageError("sqlite", "insert", err)
	}
	return nil
}

// Get implements Storage.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, expression, compliant, evaluated_at, summary
		FROM runs WHERE id = ?`, id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "get", err)
	}
	return record, nil
}

// Query implements Storage. Results come back newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *Query) ([]*RunRecord, error) {
	where, args := buildWhere(query)

	sqlQuery := `
		SELECT id, subject_id, expression, compliant, evaluated_at, summary
		FROM runs` + where + ` ORDER BY evaluated_at DESC`
	if query != nil && query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count implements Storage.
func (s *SQLiteStorage) Count(ctx context.Context, query *Query) (int64, error) {
	where, args := buildWhere(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs"+where, args...).Scan(&count)
	if err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete implements Storage.
func (s *SQLiteStorage) Delete(ctx context.Context, query *Query) (int64, error) {
	where, args := buildWhere(query)

	result, err := s.db.ExecContext(ctx, "DELETE FROM runs"+where, args...)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}
	return deleted, nil
}

// Close implements Storage.
func (s *SQLiteStorage) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}

// buildWhere translates a Query into a WHERE clause and its arguments.
func buildWhere(query *Query) (string, []interface{}) {
	if query == nil {
		return "", nil
	}

	var clauses []string
	var args []interface{}

	if query.SubjectID != "" {
		clauses = append(clauses, "subject_id = ?")
		args = append(args, query.SubjectID)
	}
	if query.StartTime != nil {
		clauses = append(clauses, "evaluated_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		clauses = append(clauses, "evaluated_at < ?")
		args = append(args, *query.EndTime)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*RunRecord, error) {
	var record RunRecord
	var compliant int
	var summaryJSON string

	err := row.Scan(&record.ID, &record.SubjectID, &record.Expression,
		&compliant, &record.EvaluatedAt, &summaryJSON)
	if err != nil {
		return nil, err
	}

	record.Compliant = compliant == 1

	var summary engine.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("corrupt summary for run %s: %w", record.ID, err)
	}
	record.Summary = &summary

	return &record, nil
}
