package store

// Schema is the SQLite table layout for evaluation runs. The full
// summary travels as a JSON blob; the indexed columns support the
// query and retention paths without unpacking it.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id           TEXT PRIMARY KEY,
    subject_id   TEXT NOT NULL DEFAULT '',
    expression   TEXT NOT NULL,
    compliant    INTEGER NOT NULL,
    evaluated_at TIMESTAMP NOT NULL,
    summary      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_subject ON runs(subject_id);
CREATE INDEX IF NOT EXISTS idx_runs_evaluated_at ON runs(evaluated_at);
`
