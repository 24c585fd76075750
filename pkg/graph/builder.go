package graph

import (
	"fmt"

	"verity-hq/ganymede/pkg/dictionary"
	"verity-hq/ganymede/pkg/pel/ast"
	"verity-hq/ganymede/pkg/policy/engine"
)

// Builder assembles a knowledge graph incrementally: first the rule's
// condition tree, then any number of evaluated subjects. Node IDs are
// deterministic for a given insertion order, so identical inputs
// produce identical graphs.
type Builder struct {
	nodes []Node
	edges []Edge

	// seen dedupes nodes by ID.
	seen map[string]bool

	// leafID maps a condition leaf's raw text to its node ID so subject
	// edges can point at the right condition.
	leafID map[string]string

	queryID string

	operatorCount  int
	conditionCount int
	subjectCount   int

	codes *dictionary.CodeDictionary
}

// NewBuilder creates a graph builder. The code dictionary may be nil,
// in which case no code nodes are emitted.
func NewBuilder(codes *dictionary.CodeDictionary) *Builder {
	return &Builder{
		seen:   make(map[string]bool),
		leafID: make(map[string]string),
		codes:  codes,
	}
}

// AddRule adds the rule's condition tree: a query root node, an
// operator node per group, a condition node per leaf, and code nodes
// for every dictionary code a leaf references.
func (b *Builder) AddRule(name string, tree *ast.ConditionNode) error {
	if tree == nil {
		return fmt.Errorf("nil condition tree")
	}

	b.queryID = "query:" + name
	b.addNode(Node{
		ID:    b.queryID,
		Type:  NodeTypeQuery,
		Label: name,
		Properties: map[string]interface{}{
			"expression": tree.String(),
		},
	})

	b.addTree(tree, b.queryID, RelationHasClause)
	return nil
}

// addTree walks the condition tree emitting nodes and parent edges.
func (b *Builder) addTree(node *ast.ConditionNode, parentID, relation string) {
	if node.IsComparison() {
		b.addLeaf(node, parentID, relation)
		return
	}

	b.operatorCount++
	opID := fmt.Sprintf("op:%d", b.operatorCount)
	b.addNode(Node{
		ID:    opID,
		Type:  NodeTypeOperator,
		Label: string(node.Operator),
	})
	b.addEdge(Edge{Source: parentID, Target: opID, Relation: relation})

	for _, child := range node.Children {
		b.addTree(child, opID, RelationContains)
	}
}

// addLeaf emits a condition node plus code nodes for any dictionary
// codes its operand references.
func (b *Builder) addLeaf(leaf *ast.ConditionNode, parentID, relation string) {
	b.conditionCount++
	condID := fmt.Sprintf("cond:%d", b.conditionCount)
	b.leafID[leaf.Raw] = condID

	props := map[string]interface{}{
		"field":      leaf.Field,
		"comparator": string(leaf.Comparator),
		"operand":    leaf.Operand.String(),
	}
	if a := leaf.Annotation; a != nil && !a.IsEmpty() {
		props["description"] = a.Description
		if a.Category != "" {
			props["category"] = a.Category
		}
	}

	b.addNode(Node{
		ID:         condID,
		Type:       NodeTypeCondition,
		Label:      leaf.Raw,
		Properties: props,
	})
	b.addEdge(Edge{Source: parentID, Target: condID, Relation: relation})

	for _, entry := range b.codes.ExtractCodes(leaf) {
		codeID := "code:" + entry.Code
		b.addNode(Node{
			ID:    codeID,
			Type:  NodeTypeCode,
			Label: entry.Code,
			Properties: map[string]interface{}{
				"code_type":   entry.CodeType,
				"description": entry.Description,
			},
		})
		b.addEdge(Edge{Source: condID, Target: codeID, Relation: RelationReferences})
	}
}

// AddSubject adds an evaluated subject: one subject node, a met/not_met
// edge per condition, and a covered/not_covered edge to the query root.
func (b *Builder) AddSubject(status *engine.Status, subjectID string) error {
	if status == nil {
		return fmt.Errorf("nil status tree")
	}
	if b.queryID == "" {
		return fmt.Errorf("AddRule must be called before AddSubject")
	}

	b.subjectCount++
	if subjectID == "" {
		subjectID = fmt.Sprintf("subject-%d", b.subjectCount)
	}
	nodeID := "subject:" + subjectID

	b.addNode(Node{
		ID:    nodeID,
		Type:  NodeTypeSubject,
		Label: subjectID,
		Properties: map[string]interface{}{
			"compliant": status.Verdict,
		},
	})

	for _, leaf := range status.Leaves() {
		condID, ok := b.leafID[leaf.Node.Raw]
		if !ok {
			return fmt.Errorf("status leaf %q not present in rule tree", leaf.Node.Raw)
		}
		relation := RelationNotMet
		if leaf.Verdict {
			relation = RelationMet
		}
		b.addEdge(Edge{Source: nodeID, Target: condID, Relation: relation})
	}

	coverage := RelationNotCovered
	if status.Verdict {
		coverage = RelationCovered
	}
	b.addEdge(Edge{Source: nodeID, Target: b.queryID, Relation: coverage})

	return nil
}

// Build returns the assembled graph.
func (b *Builder) Build() *Graph {
	return &Graph{Nodes: b.nodes, Edges: b.edges}
}

func (b *Builder) addNode(n Node) {
	if b.seen[n.ID] {
		return
	}
	b.seen[n.ID] = true
	b.nodes = append(b.nodes, n)
}

func (b *Builder) addEdge(e Edge) {
	b.edges = append(b.edges, e)
}
