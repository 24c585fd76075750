// Package graph builds a knowledge-graph view of a rule's condition
// tree, the codes it references, and the subjects evaluated against it.
// The graph serializes to two JSON files (nodes and edges) consumed by
// downstream visualization tooling.
package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Node types.
const (
	NodeTypeQuery     = "query"
	NodeTypeOperator  = "logical_operator"
	NodeTypeCondition = "condition"
	NodeTypeCode      = "code"
	NodeTypeSubject   = "subject"
)

// Edge relations.
const (
	RelationHasClause  = "has_clause"
	RelationContains   = "contains"
	RelationReferences = "references"
	RelationMet        = "met"
	RelationNotMet     = "not_met"
	RelationCovered    = "covered_by"
	RelationNotCovered = "not_covered_by"
)

// Node is a single knowledge-graph node.
type Node struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Label      string                 `json:"label"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Edge connects two nodes by ID.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Graph is the assembled node and edge set.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// WriteFiles writes the graph as kg_nodes.json and kg_edges.json in the
// given directory, creating it if needed.
func (g *Graph) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create graph output directory: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, "kg_nodes.json"), g.Nodes); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "kg_edges.json"), g.Edges)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
