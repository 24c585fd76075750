// Package engine evaluates parsed PEL condition trees against subject
// records and produces status trees and compliance summaries.
//
// # Evaluation Flow
//
//	Condition tree + subject
//	       ↓
//	Evaluator (bottom-up verdicts, no short-circuit)
//	       ↓
//	Status tree (verdict + reason per node)
//	       ↓
//	Display pass (SATISFIED / UNSATISFIED / SATISFIED_VIA_SIBLING)
//	       ↓
//	BuildSummary → flat per-condition compliance report
//
// Every node of the tree is evaluated even when the overall verdict is
// already decided, because callers present the outcome of each
// condition, not just the root. A field missing from the subject is a
// FIELD_MISSING outcome with a false verdict, never an error.
//
// # Basic Usage
//
//	tree, err := parser.Parse("age >= 18 AND status = 'active'")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eval, err := engine.NewEvaluator(logger, nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	status, err := eval.Evaluate(ctx, tree, subject.NewMapAccessor(record))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := engine.BuildSummary(status, "subject-1")
//
// # Thread Safety
//
// The evaluator is safe for concurrent use; EvaluateBatch runs subjects
// through a bounded worker pool and returns results in input order.
package engine
