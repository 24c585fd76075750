package engine

import "errors"

var (
	// ErrNilCondition indicates Evaluate was called without a tree.
	ErrNilCondition = errors.New("nil condition tree")

	// ErrNilStatus indicates a summary was requested for a nil status tree.
	ErrNilStatus = errors.New("nil status tree")

	// ErrInvalidConfig indicates invalid evaluator configuration.
	ErrInvalidConfig = errors.New("invalid evaluator configuration")
)
