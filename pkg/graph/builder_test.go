package graph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"verity-hq/ganymede/pkg/dictionary"
	"verity-hq/ganymede/pkg/pel/parser"
	"verity-hq/ganymede/pkg/policy/engine"
	"verity-hq/ganymede/pkg/subject"
)

func countByType(nodes []Node) map[string]int {
	counts := make(map[string]int)
	for _, node := range nodes {
		counts[node.Type]++
	}
	return counts
}

func countByRelation(edges []Edge) map[string]int {
	counts := make(map[string]int)
	for _, edge := range edges {
		counts[edge.Relation]++
	}
	return counts
}

// TestBuilder_AddRule tests the node and edge shapes of a rule graph
func TestBuilder_AddRule(t *testing.T) {
	tree, err := parser.Parse("bmi >= 40 OR (bmi >= 35 AND comorbidity_flag = 1)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	builder := NewBuilder(nil)
	if err := builder.AddRule("bariatric-eligibility", tree); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}
	graph := builder.Build()

	nodeCounts := countByType(graph.Nodes)
	if nodeCounts[NodeTypeQuery] != 1 {
		t.Errorf("query nodes = %d, want 1", nodeCounts[NodeTypeQuery])
	}
	if nodeCounts[NodeTypeOperator] != 2 { // outer OR, inner AND
		t.Errorf("operator nodes = %d, want 2", nodeCounts[NodeTypeOperator])
	}
	if nodeCounts[NodeTypeCondition] != 3 {
		t.Errorf("condition nodes = %d, want 3", nodeCounts[NodeTypeCondition])
	}

	edgeCounts := countByRelation(graph.Edges)
	if edgeCounts[RelationHasClause] != 1 {
		t.Errorf("has_clause edges = %d, want 1", edgeCounts[RelationHasClause])
	}
	// OR contains the 40-leaf and the AND; the AND contains two leaves.
	if edgeCounts[RelationContains] != 4 {
		t.Errorf("contains edges = %d, want 4", edgeCounts[RelationContains])
	}

	// The query node carries the canonical expression.
	for _, node := range graph.Nodes {
		if node.Type == NodeTypeQuery {
			if node.Properties["expression"] != tree.String() {
				t.Errorf("query expression property = %v", node.Properties["expression"])
			}
		}
	}
}

// TestBuilder_CodeNodes tests code dictionary references in the graph
func TestBuilder_CodeNodes(t *testing.T) {
	tree, err := parser.Parse("diagnosis_code IN ('E11.9', 'Z99.9')")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	codes := dictionary.NewCodeDictionary(map[string]map[string]string{
		"ICD-10": {"E11.9": "Type 2 diabetes mellitus without complications"},
	})

	builder := NewBuilder(codes)
	if err := builder.AddRule("diabetes", tree); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}
	graph := builder.Build()

	var codeNodes []Node
	for _, node := range graph.Nodes {
		if node.Type == NodeTypeCode {
			codeNodes = append(codeNodes, node)
		}
	}
	// Only the dictionary-known code becomes a node.
	if len(codeNodes) != 1 {
		t.Fatalf("code nodes = %d, want 1", len(codeNodes))
	}
	if codeNodes[0].ID != "code:E11.9" {
		t.Errorf("code node ID = %q", codeNodes[0].ID)
	}
	if countByRelation(graph.Edges)[RelationReferences] != 1 {
		t.Error("expected one references edge")
	}
}

// TestBuilder_AddSubject tests met/not_met and coverage edges
func TestBuilder_AddSubject(t *testing.T) {
	tree, err := parser.Parse("bmi >= 40 OR comorbidity_flag = 1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	eval, err := engine.NewEvaluator(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	status, err := eval.Evaluate(context.Background(), tree, subject.NewMapAccessor(map[string]interface{}{
		"bmi":              30.0,
		"comorbidity_flag": float64(1),
	}))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	builder := NewBuilder(nil)
	if err := builder.AddRule("rule", tree); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}
	if err := builder.AddSubject(status, "patient-001"); err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}
	graph := builder.Build()

	if countByType(graph.Nodes)[NodeTypeSubject] != 1 {
		t.Fatal("expected one subject node")
	}

	edgeCounts := countByRelation(graph.Edges)
	if edgeCounts[RelationMet] != 1 || edgeCounts[RelationNotMet] != 1 {
		t.Errorf("met/not_met = %d/%d, want 1/1", edgeCounts[RelationMet], edgeCounts[RelationNotMet])
	}
	if edgeCounts[RelationCovered] != 1 {
		t.Errorf("covered_by edges = %d, want 1", edgeCounts[RelationCovered])
	}

	for _, node := range graph.Nodes {
		if node.Type == NodeTypeSubject && node.Properties["compliant"] != true {
			t.Errorf("subject compliant property = %v", node.Properties["compliant"])
		}
	}
}

// TestBuilder_AddSubject_NotCovered tests the failing-subject edge
func TestBuilder_AddSubject_NotCovered(t *testing.T) {
	tree, err := parser.Parse("age >= 18")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	eval, err := engine.NewEvaluator(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	status, err := eval.Evaluate(context.Background(), tree, subject.NewMapAccessor(map[string]interface{}{
		"age": float64(17),
	}))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	builder := NewBuilder(nil)
	if err := builder.AddRule("adults", tree); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}
	if err := builder.AddSubject(status, ""); err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}

	edgeCounts := countByRelation(builder.Build().Edges)
	if edgeCounts[RelationNotCovered] != 1 {
		t.Errorf("not_covered_by edges = %d, want 1", edgeCounts[RelationNotCovered])
	}
}

// TestBuilder_Errors tests ordering and nil input errors
func TestBuilder_Errors(t *testing.T) {
	builder := NewBuilder(nil)

	if err := builder.AddRule("x", nil); err == nil {
		t.Error("expected error for nil tree")
	}
	if err := builder.AddSubject(&engine.Status{}, "p1"); err == nil {
		t.Error("expected error for AddSubject before AddRule")
	}
}

// TestGraph_WriteFiles tests JSON serialization to disk
func TestGraph_WriteFiles(t *testing.T) {
	tree, err := parser.Parse("age >= 18 AND bmi < 40")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	builder := NewBuilder(nil)
	if err := builder.AddRule("rule", tree); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "kg")
	if err := builder.Build().WriteFiles(dir); err != nil {
		t.Fatalf("WriteFiles failed: %v", err)
	}

	nodeData, err := os.ReadFile(filepath.Join(dir, "kg_nodes.json"))
	if err != nil {
		t.Fatalf("nodes file missing: %v", err)
	}
	var nodes []Node
	if err := json.Unmarshal(nodeData, &nodes); err != nil {
		t.Fatalf("nodes file is not valid JSON: %v", err)
	}
	if len(nodes) != 4 { // query, AND, two conditions
		t.Errorf("got %d nodes, want 4", len(nodes))
	}

	edgeData, err := os.ReadFile(filepath.Join(dir, "kg_edges.json"))
	if err != nil {
		t.Fatalf("edges file missing: %v", err)
	}
	var edges []Edge
	if err := json.Unmarshal(edgeData, &edges); err != nil {
		t.Fatalf("edges file is not valid JSON: %v", err)
	}
	if len(edges) != 3 {
		t.Errorf("got %d edges, want 3", len(edges))
	}
}
