package engine

import (
	"context"
	"testing"

	"verity-hq/ganymede/pkg/pel/ast"
	pelerrors "verity-hq/ganymede/pkg/pel/errors"
	"verity-hq/ganymede/pkg/subject"
)

// TestBuildSummary tests flattening a status tree into a compliance report
func TestBuildSummary(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "bmi >= 40 OR (bmi >= 35 AND comorbidity_flag = 1)")

	status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
		"id":               "patient-001",
		"bmi":              36.0,
		"comorbidity_flag": float64(1),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := BuildSummary(status, "patient-001")
	if err != nil {
		t.Fatalf("BuildSummary failed: %v", err)
	}

	if summary.SubjectID != "patient-001" {
		t.Errorf("SubjectID = %q", summary.SubjectID)
	}
	if !summary.Compliant {
		t.Error("Compliant = false, want true")
	}
	if summary.EvaluatedAt.IsZero() {
		t.Error("EvaluatedAt not set")
	}

	// One outcome row per condition, left to right.
	if len(summary.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(summary.Outcomes))
	}
	wantFields := []string{"bmi", "bmi", "comorbidity_flag"}
	for i, want := range wantFields {
		if summary.Outcomes[i].Field != want {
			t.Errorf("outcome %d field = %q, want %q", i, summary.Outcomes[i].Field, want)
		}
	}

	first := summary.Outcomes[0]
	if first.Display != DisplaySatisfiedViaSibling || first.Reason != ReasonUnmatched {
		t.Errorf("bmi >= 40 outcome = %s/%s, want SATISFIED_VIA_SIBLING/UNMATCHED", first.Display, first.Reason)
	}
	if first.Observed != 36.0 || !first.ObservedOK {
		t.Errorf("bmi >= 40 observed = %v, %v", first.Observed, first.ObservedOK)
	}

	if summary.Satisfied != 2 || summary.Unsatisfied != 0 || summary.SatisfiedViaSibling != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/0/1",
			summary.Satisfied, summary.Unsatisfied, summary.SatisfiedViaSibling)
	}
}

// TestBuildSummary_FieldMissing tests that missing fields surface in outcomes
func TestBuildSummary_FieldMissing(t *testing.T) {
	eval := newTestEvaluator(t)
	tree := mustParse(t, "age >= 18 AND comorbidity_flag = 1")

	status, err := eval.Evaluate(context.Background(), tree, record(map[string]interface{}{
		"age": float64(44),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := BuildSummary(status, "")
	if err != nil {
		t.Fatalf("BuildSummary failed: %v", err)
	}

	if summary.Compliant {
		t.Error("Compliant = true, want false")
	}
	missing := summary.Outcomes[1]
	if missing.Reason != ReasonFieldMissing {
		t.Errorf("reason = %s, want FIELD_MISSING", missing.Reason)
	}
	if missing.ObservedOK {
		t.Error("ObservedOK = true for missing field")
	}
	if summary.Unsatisfied != 1 || summary.Satisfied != 1 {
		t.Errorf("counts = %d satisfied / %d unsatisfied, want 1/1",
			summary.Satisfied, summary.Unsatisfied)
	}
}

// TestBuildSummary_Errors tests nil and structurally broken status trees
func TestBuildSummary_Errors(t *testing.T) {
	t.Run("nil status", func(t *testing.T) {
		if _, err := BuildSummary(nil, ""); err != ErrNilStatus {
			t.Errorf("err = %v, want ErrNilStatus", err)
		}
	})

	t.Run("leaf without reason", func(t *testing.T) {
		tree := mustParse(t, "age >= 18")
		broken := &Status{Node: tree, Display: DisplaySatisfied}
		_, err := BuildSummary(broken, "")
		if !pelerrors.IsInvariantViolation(err) {
			t.Errorf("err = %v, want invariant violation", err)
		}
	})

	t.Run("status without display state", func(t *testing.T) {
		tree := mustParse(t, "age >= 18")
		broken := &Status{Node: tree, Reason: ReasonMatched}
		_, err := BuildSummary(broken, "")
		if !pelerrors.IsInvariantViolation(err) {
			t.Errorf("err = %v, want invariant violation", err)
		}
	})

	t.Run("group without children", func(t *testing.T) {
		tree := mustParse(t, "a = 1 AND b = 2")
		broken := &Status{Node: tree, Display: DisplayUnsatisfied}
		_, err := BuildSummary(broken, "")
		if !pelerrors.IsInvariantViolation(err) {
			t.Errorf("err = %v, want invariant violation", err)
		}
	})
}

// TestBuildSummary_Annotations tests dictionary metadata pass-through
func TestBuildSummary_Annotations(t *testing.T) {
	eval := newTestEvaluator(t)
	subj := subject.NewMapAccessor(map[string]interface{}{"bmi": 41.0})

	tree := mustParse(t, "bmi >= 40")
	tree.Annotation = &ast.FieldAnnotation{
		Description: "body mass index",
		Category:    "vital_signs",
	}

	status, err := eval.Evaluate(context.Background(), tree, subj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := BuildSummary(status, "")
	if err != nil {
		t.Fatalf("BuildSummary failed: %v", err)
	}

	outcome := summary.Outcomes[0]
	if outcome.Description != "body mass index" || outcome.Category != "vital_signs" {
		t.Errorf("annotation not carried: %+v", outcome)
	}

	t.Run("unannotated tree leaves metadata empty", func(t *testing.T) {
		plain := mustParse(t, "bmi >= 40")
		status, err := eval.Evaluate(context.Background(), plain, subj)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		summary, err := BuildSummary(status, "")
		if err != nil {
			t.Fatalf("BuildSummary failed: %v", err)
		}
		if summary.Outcomes[0].Description != "" {
			t.Errorf("unannotated tree produced description %q", summary.Outcomes[0].Description)
		}
	})
}
