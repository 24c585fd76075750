package engine

import (
	"context"
	"testing"

	"verity-hq/ganymede/pkg/pel/ast"
	pelerrors "verity-hq/ganymede/pkg/pel/errors"
	"verity-hq/ganymede/pkg/pel/parser"
	"verity-hq/ganymede/pkg/subject"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	eval, err := NewEvaluator(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	return eval
}

func mustParse(t *testing.T, expr string) *ast.ConditionNode {
	t.Helper()
	tree, err := parser.Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", expr, err)
	}
	return tree
}

func record(fields map[string]interface{}) subject.Accessor {
	return subject.NewMapAccessor(fields)
}

// TestEvaluate_SingleCondition tests the simplest pass and fail cases
func TestEvaluate_SingleCondition(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "age >= 18")

	t.Run("satisfied", func(t *testing.T) {
		status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
			"age": float64(44),
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.Verdict {
			t.Error("verdict = false, want true")
		}
		if status.Display != DisplaySatisfied {
			t.Errorf("display = %s, want SATISFIED", status.Display)
		}
		if status.Reason != ReasonMatched {
			t.Errorf("reason = %s, want MATCHED", status.Reason)
		}
		if status.Observed != float64(44) || !status.ObservedOK {
			t.Errorf("observed = %v, %v; want 44, true", status.Observed, status.ObservedOK)
		}
	})

	t.Run("unsatisfied", func(t *testing.T) {
		status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
			"age": float64(17),
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.Verdict {
			t.Error("verdict = true, want false")
		}
		if status.Display != DisplayUnsatisfied {
			t.Errorf("display = %s, want UNSATISFIED", status.Display)
		}
		if status.Reason != ReasonUnmatched {
			t.Errorf("reason = %s, want UNMATCHED", status.Reason)
		}
	})
}

// TestEvaluate_SatisfiedViaSibling tests the tri-state display under a
// satisfied OR group
func TestEvaluate_SatisfiedViaSibling(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "bmi >= 40 OR (bmi >= 35 AND comorbidity_flag = 1)")

	status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
		"bmi":              36.0,
		"comorbidity_flag": float64(1),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !status.Verdict {
		t.Fatal("overall verdict = false, want true")
	}
	if status.Display != DisplaySatisfied {
		t.Errorf("root display = %s, want SATISFIED", status.Display)
	}

	// The failed bmi >= 40 branch is carried by its sibling.
	left := status.Children[0]
	if left.Verdict {
		t.Error("bmi >= 40 verdict = true, want false")
	}
	if left.Display != DisplaySatisfiedViaSibling {
		t.Errorf("bmi >= 40 display = %s, want SATISFIED_VIA_SIBLING", left.Display)
	}
	if left.Reason != ReasonUnmatched {
		t.Errorf("bmi >= 40 reason = %s, want UNMATCHED", left.Reason)
	}

	// The satisfied AND branch and both of its leaves show SATISFIED.
	right := status.Children[1]
	if !right.Verdict || right.Display != DisplaySatisfied {
		t.Errorf("AND branch = %v/%s, want true/SATISFIED", right.Verdict, right.Display)
	}
	for _, leaf := range right.Children {
		if leaf.Display != DisplaySatisfied {
			t.Errorf("leaf %q display = %s, want SATISFIED", leaf.Node.Raw, leaf.Display)
		}
	}
}

// TestEvaluate_AllBranchesFail tests that nothing shows as carried when
// the OR group itself is false
func TestEvaluate_AllBranchesFail(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "bmi >= 40 OR (bmi >= 35 AND comorbidity_flag = 1)")

	status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
		"bmi":              30.0,
		"comorbidity_flag": float64(0),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status.Verdict {
		t.Fatal("overall verdict = true, want false")
	}
	if status.Display != DisplayUnsatisfied {
		t.Errorf("root display = %s, want UNSATISFIED", status.Display)
	}
	for _, leaf := range status.Leaves() {
		if leaf.Display != DisplayUnsatisfied {
			t.Errorf("leaf %q display = %s, want UNSATISFIED", leaf.Node.Raw, leaf.Display)
		}
	}
}

// TestEvaluate_FalseLeafUnderFalseORStaysUnsatisfied tests the tie-break
// for a false leaf whose OR parent is also false, nested under a
// satisfied outer group
func TestEvaluate_FalseLeafUnderFalseORStaysUnsatisfied(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "age >= 18 OR (bmi >= 40 OR smoker = 1)")

	status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
		"age":    float64(44),
		"bmi":    30.0,
		"smoker": float64(0),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The inner OR group is false under a satisfied outer OR, so the
	// group shows SATISFIED_VIA_SIBLING but its own false leaves do not.
	inner := status.Children[1]
	if inner.Verdict {
		t.Fatal("inner OR verdict = true, want false")
	}
	if inner.Display != DisplaySatisfiedViaSibling {
		t.Errorf("inner OR display = %s, want SATISFIED_VIA_SIBLING", inner.Display)
	}
	for _, leaf := range inner.Children {
		if leaf.Display != DisplayUnsatisfied {
			t.Errorf("leaf %q display = %s, want UNSATISFIED", leaf.Node.Raw, leaf.Display)
		}
	}
}

// TestEvaluate_NoShortCircuit tests that every leaf gets an outcome even
// once the group verdict is already decided
func TestEvaluate_NoShortCircuit(t *testing.T) {
	eval := newTestEvaluator(t)

	t.Run("AND keeps evaluating after a failure", func(t *testing.T) {
		tree := mustParse(t, "age >= 18 AND bmi >= 35 AND comorbidity_flag = 1")
		status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
			"age":              float64(17), // fails first
			"bmi":              36.0,
			"comorbidity_flag": float64(1),
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		leaves := status.Leaves()
		if len(leaves) != 3 {
			t.Fatalf("got %d leaves, want 3", len(leaves))
		}
		for _, leaf := range leaves {
			if leaf.Reason == "" {
				t.Errorf("leaf %q has no reason; it was not evaluated", leaf.Node.Raw)
			}
		}
		if leaves[1].Reason != ReasonMatched || leaves[2].Reason != ReasonMatched {
			t.Error("later AND siblings were not fully evaluated")
		}
	})

	t.Run("OR keeps evaluating after a success", func(t *testing.T) {
		tree := mustParse(t, "age >= 18 OR bmi >= 35 OR comorbidity_flag = 1")
		status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
			"age":              float64(44), // succeeds first
			"bmi":              30.0,
			"comorbidity_flag": float64(0),
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		leaves := status.Leaves()
		if leaves[1].Reason != ReasonUnmatched || leaves[2].Reason != ReasonUnmatched {
			t.Error("later OR siblings were not fully evaluated")
		}
	})
}

// TestEvaluate_FieldMissing tests FIELD_MISSING as an outcome, not an error
func TestEvaluate_FieldMissing(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "age >= 18 AND comorbidity_flag = 1")

	status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
		"age": float64(44),
	}))
	if err != nil {
		t.Fatalf("missing field must not be an error, got: %v", err)
	}

	if status.Verdict {
		t.Error("verdict = true, want false")
	}

	missing := status.Children[1]
	if missing.Reason != ReasonFieldMissing {
		t.Errorf("reason = %s, want FIELD_MISSING", missing.Reason)
	}
	if missing.ObservedOK {
		t.Error("ObservedOK = true for a missing field")
	}
	if missing.Display != DisplayUnsatisfied {
		t.Errorf("display = %s, want UNSATISFIED", missing.Display)
	}

	t.Run("empty subject", func(t *testing.T) {
		status, err := eval.Evaluate(context.Background(), tree, record(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, leaf := range status.Leaves() {
			if leaf.Reason != ReasonFieldMissing {
				t.Errorf("leaf %q reason = %s, want FIELD_MISSING", leaf.Node.Raw, leaf.Reason)
			}
		}
	})
}

// TestEvaluate_StatusMirrorsTreeShape tests the one-to-one structural
// correspondence between condition and status trees
func TestEvaluate_StatusMirrorsTreeShape(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "a = 1 AND (b = 2 OR c = 3) AND d = 4")

	status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var compare func(node *ast.ConditionNode, st *Status)
	compare = func(node *ast.ConditionNode, st *Status) {
		if st.Node != node {
			t.Fatalf("status points at the wrong node: %v vs %v", st.Node, node)
		}
		if len(st.Children) != len(node.Children) {
			t.Fatalf("status has %d children, node has %d", len(st.Children), len(node.Children))
		}
		for i := range node.Children {
			compare(node.Children[i], st.Children[i])
		}
	}
	compare(tree, status)
}

// TestEvaluate_Errors tests nil and malformed inputs
func TestEvaluate_Errors(t *testing.T) {
	eval := newTestEvaluator(t)

	t.Run("nil tree", func(t *testing.T) {
		_, err := eval.Evaluate(context.Background(), nil, record(nil))
		if err != ErrNilCondition {
			t.Errorf("err = %v, want ErrNilCondition", err)
		}
	})

	t.Run("malformed tree", func(t *testing.T) {
		broken := &ast.ConditionNode{Kind: ast.KindGroup, Operator: ast.GroupAnd}
		_, err := eval.Evaluate(context.Background(), broken, record(nil))
		if !pelerrors.IsInvariantViolation(err) {
			t.Errorf("err = %v, want invariant violation", err)
		}
	})

	t.Run("depth limit", func(t *testing.T) {
		shallow, err := NewEvaluator(nil, nil, &Config{Workers: 1, MaxDepth: 1})
		if err != nil {
			t.Fatalf("NewEvaluator failed: %v", err)
		}
		tree := mustParse(t, "a = 1 AND b = 2")
		_, err = shallow.Evaluate(context.Background(), tree, record(nil))
		if !pelerrors.IsInvariantViolation(err) {
			t.Errorf("err = %v, want invariant violation for depth", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		tree := mustParse(t, "a = 1 AND b = 2")
		_, err := eval.Evaluate(ctx, tree, record(nil))
		if err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

// TestEvaluate_TreeNotMutated tests that evaluation leaves the shared
// parsed tree untouched
func TestEvaluate_TreeNotMutated(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "age >= 18 AND bmi < 40")
	before := tree.String()

	_, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
		"age": float64(44),
		"bmi": 36.0,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if after := tree.String(); after != before {
		t.Errorf("tree changed during evaluation: %q -> %q", before, after)
	}
}
