package dictionary

import (
	"testing"

	"verity-hq/ganymede/pkg/pel/ast"
	"verity-hq/ganymede/pkg/pel/parser"
)

// TestAnnotate tests metadata attachment to comparison leaves
func TestAnnotate(t *testing.T) {
	tree, err := parser.Parse("bmi >= 40 OR (bmi >= 35 AND comorbidity_flag = 1)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	src := NewMemorySource([]FieldMetadata{
		{Name: "bmi", Type: "number", Description: "body mass index", Section: "vital_signs"},
	})

	annotated := Annotate(tree, src)

	leaves := ast.Leaves(annotated)
	if len(leaves) != 3 {
		t.Fatalf("got %d leaves, want 3", len(leaves))
	}

	for _, leaf := range leaves[:2] {
		if leaf.Annotation == nil {
			t.Fatalf("bmi leaf has no annotation")
		}
		if leaf.Annotation.Description != "body mass index" {
			t.Errorf("bmi description = %q", leaf.Annotation.Description)
		}
		if leaf.Annotation.Category != "vital_signs" {
			t.Errorf("bmi category = %q", leaf.Annotation.Category)
		}
	}

	// Unknown fields still get an annotation, just an empty one.
	flag := leaves[2]
	if flag.Annotation == nil {
		t.Fatal("comorbidity_flag leaf has no annotation")
	}
	if !flag.Annotation.IsEmpty() {
		t.Errorf("comorbidity_flag annotation = %+v, want empty", flag.Annotation)
	}

	// Group nodes stay unannotated.
	if annotated.Annotation != nil {
		t.Error("group node received an annotation")
	}
}

// TestAnnotate_InputImmutable tests that the original tree is never touched
func TestAnnotate_InputImmutable(t *testing.T) {
	tree, err := parser.Parse("bmi >= 40 AND age >= 18")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	src := NewMemorySource([]FieldMetadata{{Name: "bmi", Description: "body mass index"}})
	annotated := Annotate(tree, src)

	if annotated == tree {
		t.Fatal("Annotate returned the input tree instead of a copy")
	}
	for _, leaf := range ast.Leaves(tree) {
		if leaf.Annotation != nil {
			t.Errorf("input leaf %q was annotated in place", leaf.Field)
		}
	}
}

// TestAnnotate_NilHandling tests nil tree and nil source behavior
func TestAnnotate_NilHandling(t *testing.T) {
	if got := Annotate(nil, nil); got != nil {
		t.Errorf("Annotate(nil) = %v, want nil", got)
	}

	tree, err := parser.Parse("age >= 18")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	annotated := Annotate(tree, nil)
	if annotated.Annotation == nil || !annotated.Annotation.IsEmpty() {
		t.Errorf("nil source should yield an empty annotation, got %+v", annotated.Annotation)
	}
}
