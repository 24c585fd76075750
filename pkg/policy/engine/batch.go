package engine

import (
	"context"
	"sync"

	"verity-hq/ganymede/pkg/pel/ast"
	"verity-hq/ganymede/pkg/subject"
)

// BatchResult pairs one subject's summary with its position in the
// input slice.
type BatchResult struct {
	Index     int
	SubjectID string
	Summary   *Summary
	Err       error
}

// EvaluateBatch evaluates every subject against the same condition tree
// using a bounded worker pool. Results are returned in input order; a
// failing subject produces a per-result error without aborting the
// batch.
func (e *Evaluator) EvaluateBatch(ctx context.Context, tree *ast.ConditionNode, subjects []subject.Accessor) []BatchResult {
	results := make([]BatchResult, len(subjects))
	if len(subjects) == 0 {
		return results
	}

	workers := e.config.Workers
	if workers > len(subjects) {
		workers = len(subjects)
	}

	indexes := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				subj := subjects[idx]
				result := BatchResult{Index: idx, SubjectID: subjectID(subj)}

				status, err := e.Evaluate(ctx, tree, subj)
				if err != nil {
					result.Err = err
					results[idx] = result
					continue
				}

				summary, err := BuildSummary(status, subjectID(subj))
				if err != nil {
					result.Err = err
					results[idx] = result
					continue
				}

				result.Summary = summary
				results[idx] = result
			}
		}()
	}

	for idx := range subjects {
		select {
		case <-ctx.Done():
			// Unqueued subjects report the cancellation.
			for rest := idx; rest < len(subjects); rest++ {
				results[rest] = BatchResult{
					Index:     rest,
					SubjectID: subjectID(subjects[rest]),
					Err:       ctx.Err(),
				}
			}
			close(indexes)
			wg.Wait()
			return results
		case indexes <- idx:
		}
	}

	close(indexes)
	wg.Wait()
	return results
}

// subjectID extracts an identifier from accessors that carry one.
func subjectID(subj subject.Accessor) string {
	if identified, ok := subj.(interface{ ID() string }); ok {
		return identified.ID()
	}
	return ""
}
