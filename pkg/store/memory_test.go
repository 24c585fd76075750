package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"verity-hq/ganymede/pkg/policy/engine"
)

func testRecord(subjectID string, compliant bool, evaluatedAt time.Time) *RunRecord {
	record := NewRunRecord(&engine.Summary{
		SubjectID:   subjectID,
		Expression:  "age >= 18",
		Compliant:   compliant,
		EvaluatedAt: evaluatedAt,
	})
	return record
}

// TestMemoryStorage_StoreAndGet tests round-tripping a record
func TestMemoryStorage_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	defer storage.Close()

	record := testRecord("p1", true, time.Now().UTC())
	if record.ID == "" {
		t.Fatal("NewRunRecord did not assign an ID")
	}

	if err := storage.Store(ctx, record); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := storage.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SubjectID != "p1" || !got.Compliant {
		t.Errorf("got %+v", got)
	}

	t.Run("missing record", func(t *testing.T) {
		_, err := storage.Get(ctx, "no-such-id")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

// TestMemoryStorage_Query tests filtering, ordering, and limits
func TestMemoryStorage_Query(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		subjectID := "p1"
		if i%2 == 1 {
			subjectID = "p2"
		}
		record := testRecord(subjectID, true, base.Add(time.Duration(i)*time.Hour))
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	t.Run("all records newest first", func(t *testing.T) {
		records, err := storage.Query(ctx, nil)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) != 5 {
			t.Fatalf("got %d records, want 5", len(records))
		}
		for i := 1; i < len(records); i++ {
			if records[i].EvaluatedAt.After(records[i-1].EvaluatedAt) {
				t.Fatal("records not sorted newest first")
			}
		}
	})

	t.Run("filter by subject", func(t *testing.T) {
		records, err := storage.Query(ctx, &Query{SubjectID: "p2"})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		for _, record := range records {
			if record.SubjectID != "p2" {
				t.Errorf("record subject = %q", record.SubjectID)
			}
		}
	})

	t.Run("time window", func(t *testing.T) {
		start := base.Add(1 * time.Hour)
		end := base.Add(3 * time.Hour)
		records, err := storage.Query(ctx, &Query{StartTime: &start, EndTime: &end})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		// Start inclusive, end exclusive: hours 1 and 2.
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
	})

	t.Run("limit", func(t *testing.T) {
		records, err := storage.Query(ctx, &Query{Limit: 3})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records, want 3", len(records))
		}
		// The limit keeps the newest ones.
		if !records[0].EvaluatedAt.Equal(base.Add(4 * time.Hour)) {
			t.Errorf("first record at %v, want newest", records[0].EvaluatedAt)
		}
	})
}

// TestMemoryStorage_CountAndDelete tests the aggregate operations
func TestMemoryStorage_CountAndDelete(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if err := storage.Store(ctx, testRecord("p1", false, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	count, err := storage.Count(ctx, nil)
	if err != nil || count != 4 {
		t.Fatalf("Count = %d, %v; want 4", count, err)
	}

	cutoff := base.AddDate(0, 0, 2)
	deleted, err := storage.Delete(ctx, &Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d records, want 2", deleted)
	}

	count, err = storage.Count(ctx, nil)
	if err != nil || count != 2 {
		t.Errorf("Count after delete = %d, %v; want 2", count, err)
	}
}

// TestMemoryStorage_UniqueIDs tests that generated run IDs do not collide
func TestMemoryStorage_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		record := testRecord(fmt.Sprintf("p%d", i), true, time.Now())
		if seen[record.ID] {
			t.Fatalf("duplicate run ID %q", record.ID)
		}
		seen[record.ID] = true
	}
}
