package engine

import (
	"context"
	"log/slog"
	"time"

	"verity-hq/ganymede/pkg/pel/ast"
	pelerrors "verity-hq/ganymede/pkg/pel/errors"
	"verity-hq/ganymede/pkg/subject"
	"verity-hq/ganymede/pkg/telemetry/metrics"
)

// Evaluator evaluates condition trees against subjects and produces
// status trees. It is stateless apart from its logger and metrics and
// safe for concurrent use.
type Evaluator struct {
	logger  *slog.Logger
	metrics *metrics.EvaluationMetrics
	config  *Config
}

// NewEvaluator creates an evaluator. A nil logger falls back to
// slog.Default; metrics may be nil to disable instrumentation.
func NewEvaluator(logger *slog.Logger, em *metrics.EvaluationMetrics, config *Config) (*Evaluator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Evaluator{
		logger:  logger.With("component", "engine"),
		metrics: em,
		config:  config,
	}, nil
}

// Evaluate walks the condition tree against the subject and returns the
// status tree. Every node is evaluated; there is no short-circuiting,
// because the caller needs a verdict and display state for each
// condition, not just the overall outcome. Missing subject fields
// produce FIELD_MISSING leaves, never errors.
func (e *Evaluator) Evaluate(ctx context.Context, tree *ast.ConditionNode, subj subject.Accessor) (*Status, error) {
	if tree == nil {
		return nil, ErrNilCondition
	}
	if err := tree.Validate(); err != nil {
		return nil, pelerrors.NewInvariantViolation("cannot evaluate malformed tree: %v", err)
	}
	if d := treeDepth(tree); d > e.config.MaxDepth {
		return nil, pelerrors.NewInvariantViolation("condition tree depth %d exceeds limit %d", d, e.config.MaxDepth)
	}

	start := time.Now()

	status, err := e.evaluateNode(ctx, tree, subj)
	if err != nil {
		return nil, err
	}

	// Display states depend on parent verdicts, so they are derived in
	// a second pass once every verdict is known.
	assignDisplay(status, nil)

	duration := time.Since(start)
	if e.metrics != nil {
		e.metrics.RecordEvaluation(status.Verdict, duration)
		for _, leaf := range status.Leaves() {
			e.metrics.RecordLeafOutcome(string(leaf.Display))
		}
	}

	e.logger.Debug("condition tree evaluated",
		"expression", tree.Raw,
		"verdict", status.Verdict,
		"duration_us", duration.Microseconds(),
	)

	return status, nil
}

// evaluateNode computes verdicts bottom-up for the subtree rooted at
// node.
func (e *Evaluator) evaluateNode(ctx context.Context, node *ast.ConditionNode, subj subject.Accessor) (*Status, error) {
	if node.IsComparison() {
		return e.evaluateLeaf(node, subj), nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	status := &Status{
		Node:     node,
		Children: make([]*Status, 0, len(node.Children)),
	}

	// All children are evaluated regardless of the verdict so far.
	allTrue := true
	anyTrue := false
	for _, child := range node.Children {
		childStatus, err := e.evaluateNode(ctx, child, subj)
		if err != nil {
			return nil, err
		}
		status.Children = append(status.Children, childStatus)
		if childStatus.Verdict {
			anyTrue = true
		} else {
			allTrue = false
		}
	}

	if node.Operator == ast.GroupOr {
		status.Verdict = anyTrue
	} else {
		status.Verdict = allTrue
	}

	return status, nil
}

// evaluateLeaf evaluates a single comparison against the subject.
func (e *Evaluator) evaluateLeaf(node *ast.ConditionNode, subj subject.Accessor) *Status {
	status := &Status{Node: node}

	observed, ok := subj.Get(node.Field)
	if !ok {
		status.Verdict = false
		status.Reason = ReasonFieldMissing
		e.logger.Debug("field missing on subject", "field", node.Field)
		return status
	}

	status.Observed = observed
	status.ObservedOK = true
	status.Verdict = evaluateComparator(observed, node.Comparator, node.Operand)
	if status.Verdict {
		status.Reason = ReasonMatched
	} else {
		status.Reason = ReasonUnmatched
	}

	e.logger.Debug("condition evaluated",
		"field", node.Field,
		"comparator", string(node.Comparator),
		"observed", observed,
		"verdict", status.Verdict,
	)

	return status
}

// treeDepth measures the nesting depth of a condition tree.
func treeDepth(node *ast.ConditionNode) int {
	if node.IsComparison() {
		return 1
	}
	deepest := 0
	for _, child := range node.Children {
		if d := treeDepth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// assignDisplay derives the tri-state display status for every node.
// A true node is SATISFIED. A false node under a satisfied OR parent is
// SATISFIED_VIA_SIBLING because a sibling carried the group; any other
// false node is UNSATISFIED.
func assignDisplay(status *Status, parent *Status) {
	switch {
	case status.Verdict:
		status.Display = DisplaySatisfied
	case parent != nil && parent.Node.Operator == ast.GroupOr && parent.Verdict:
		status.Display = DisplaySatisfiedViaSibling
	default:
		status.Display = DisplayUnsatisfied
	}

	for _, child := range status.Children {
		assignDisplay(child, status)
	}
}
