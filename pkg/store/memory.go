package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage is an in-memory Storage backend for tests and
// ephemeral one-shot runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*RunRecord
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*RunRecord)}
}

// Store implements Storage.
func (m *MemoryStorage) Store(ctx context.Context, record *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

// Get implements Storage.
func (m *MemoryStorage) Get(ctx context.Context, id string) (*RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

// Query implements Storage. Results are sorted newest first.
func (m *MemoryStorage) Query(ctx context.Context, query *Query) ([]*RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*RunRecord
	for _, record := range m.records {
		if matches(record, query) {
			matched = append(matched, record)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].EvaluatedAt.After(matched[j].EvaluatedAt)
	})

	if query != nil && query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Count implements Storage.
func (m *MemoryStorage) Count(ctx context.Context, query *Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, record := range m.records {
		if matches(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete implements Storage.
func (m *MemoryStorage) Delete(ctx context.Context, query *Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, record := range m.records {
		if matches(record, query) {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close implements Storage.
func (m *MemoryStorage) Close() error {
	return nil
}

// matches applies query filters; Limit is handled by the caller.
func matches(record *RunRecord, query *Query) bool {
	if query == nil {
		return true
	}
	if query.SubjectID != "" && record.SubjectID != query.SubjectID {
		return false
	}
	if query.StartTime != nil && record.EvaluatedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && !record.EvaluatedAt.Before(*query.EndTime) {
		return false
	}
	return true
}
