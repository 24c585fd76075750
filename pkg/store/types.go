// Package store persists evaluation runs: one record per subject
// evaluation, holding the expression, the overall verdict, and the full
// compliance summary. Backends are pluggable behind the Storage
// interface; SQLite is the durable default and the in-memory backend
// serves tests and ephemeral runs.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"verity-hq/ganymede/pkg/policy/engine"
)

// RunRecord is one persisted evaluation run.
type RunRecord struct {
	// ID is a generated UUID identifying the run.
	ID string `json:"id"`

	// SubjectID identifies the evaluated subject, when known.
	SubjectID string `json:"subject_id,omitempty"`

	// Expression is the canonical rule expression that was evaluated.
	Expression string `json:"expression"`

	// Compliant is the overall verdict.
	Compliant bool `json:"compliant"`

	// EvaluatedAt is when the evaluation ran (UTC).
	EvaluatedAt time.Time `json:"evaluated_at"`

	// Summary is the full per-condition compliance report.
	Summary *engine.Summary `json:"summary"`
}

// NewRunRecord wraps a compliance summary in a run record with a fresh
// UUID.
func NewRunRecord(summary *engine.Summary) *RunRecord {
	return &RunRecord{
		ID:          uuid.NewString(),
		SubjectID:   summary.SubjectID,
		Expression:  summary.Expression,
		Compliant:   summary.Compliant,
		EvaluatedAt: summary.EvaluatedAt,
		Summary:     summary,
	}
}

// Query filters run records. Zero-valued fields are ignored.
type Query struct {
	// SubjectID restricts results to one subject.
	SubjectID string

	// StartTime includes only runs at or after this time.
	StartTime *time.Time

	// EndTime includes only runs before this time.
	EndTime *time.Time

	// Limit caps the number of returned records. 0 means unlimited.
	Limit int
}

// Storage is the persistence interface for evaluation runs.
type Storage interface {
	// Store persists a run record.
	Store(ctx context.Context, record *RunRecord) error

	// Get retrieves a run by ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*RunRecord, error)

	// Query returns runs matching the query, newest first.
	Query(ctx context.Context, query *Query) ([]*RunRecord, error)

	// Count returns the number of runs matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes runs matching the query and returns how many.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}
