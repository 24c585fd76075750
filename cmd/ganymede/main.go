// Ganymede is a declarative eligibility rule engine.
//
// It parses SQL-style WHERE expressions into condition trees, evaluates
// subject records against them, and reports per-condition compliance:
//
//   - Expression linting with parse error suggestions
//   - Subject evaluation with tri-state condition status
//   - Knowledge-graph export of rules, codes, and subjects
//   - Persisted evaluation runs with retention pruning
//
// Usage:
//
//	# Validate a rule expression
//	ganymede lint --expr "age >= 18 AND status = 'active'"
//
//	# Evaluate subjects against a rule
//	ganymede evaluate --rule rule.sql --subjects patients.json
//
//	# Export the rule knowledge graph
//	ganymede graph --rule rule.sql --subjects patients.json --out output/
//
//	# Inspect stored evaluation runs
//	ganymede runs list --limit 20
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}
