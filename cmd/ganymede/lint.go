package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"verity-hq/ganymede/pkg/cli"
	"verity-hq/ganymede/pkg/pel/ast"
	pelErrors "verity-hq/ganymede/pkg/pel/errors"
	"verity-hq/ganymede/pkg/pel/parser"
)

var lintFlags struct {
	expr   string
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rule expressions",
	Long: `Validate PEL rule expressions for syntax errors.

The lint command parses expressions (or the WHERE clause of SQL rule
files) and reports:
  - Lex errors with byte offsets
  - Parse errors with expected/found context and suggestions
  - The canonical form of each valid expression

Examples:
  # Lint an inline expression
  ganymede lint --expr "age >= 18 AND status = 'active'"

  # Lint a rule file (SQL or bare expression)
  ganymede lint --file rule.sql

  # Lint a directory of rule files
  ganymede lint --dir rules/

  # JSON output for CI/CD
  ganymede lint --file rule.sql --format json`,
	RunE: lintExpressions,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.expr, "expr", "e", "", "expression to validate")
	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rule file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rule files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the lint outcome for a single expression source.
type LintResult struct {
	Source    string `json:"source"`
	Valid     bool   `json:"valid"`
	Canonical string `json:"canonical,omitempty"`

	ErrorType  string `json:"error_type,omitempty"`
	Error      string `json:"error,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func lintExpressions(cmd *cobra.Command, args []string) error {
	var results []LintResult

	if lintFlags.expr != "" {
		results = append(results, lintExpression("<expr>", lintFlags.expr))
	}

	if lintFlags.file != "" {
		result, err := lintFile(lintFlags.file)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	if lintFlags.dir != "" {
		files, err := ruleFiles(lintFlags.dir)
		if err != nil {
			return err
		}
		for _, file := range files {
			result, err := lintFile(file)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
	}

	if len(results) == 0 {
		return fmt.Errorf("one of --expr, --file, or --dir must be specified")
	}

	if lintFlags.format == "json" {
		return lintOutputJSON(results)
	}
	return lintOutputText(results)
}

// ruleFiles lists candidate rule files in a directory.
func ruleFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.sql", "*.pel", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list rule files: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no rule files found in %q", dir)
	}
	return files, nil
}

func lintFile(path string) (LintResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LintResult{}, fmt.Errorf("failed to read rule file %q: %w", path, err)
	}
	return lintSQL(path, string(data)), nil
}

func lintExpression(source, expr string) LintResult {
	tree, err := parser.Parse(expr)
	return lintResult(source, tree, err)
}

func lintSQL(source, text string) LintResult {
	tree, err := parser.ParseSQL(text)
	return lintResult(source, tree, err)
}

func lintResult(source string, tree *ast.ConditionNode, err error) LintResult {
	result := LintResult{Source: source}
	if err == nil {
		result.Valid = true
		result.Canonical = tree.String()
		return result
	}

	var pelErr *pelErrors.Error
	if errors.As(err, &pelErr) {
		result.ErrorType = string(pelErr.Type)
		result.Error = pelErr.Message
		result.Offset = pelErr.Offset
		result.Suggestion = pelErr.Suggestion
	} else {
		result.Error = err.Error()
	}
	return result
}

func lintOutputText(results []LintResult) error {
	failures := 0
	for _, result := range results {
		fmt.Printf("Checking %s...\n", result.Source)
		if result.Valid {
			fmt.Printf("✓ Valid: %s\n", result.Canonical)
		} else {
			failures++
			fmt.Printf("✗ Error: %s", result.Error)
			if result.Offset > 0 {
				fmt.Printf(" (offset %d)", result.Offset)
			}
			if result.ErrorType != "" {
				fmt.Printf(" [%s]", result.ErrorType)
			}
			fmt.Println()
			if result.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", result.Suggestion)
			}
		}
		fmt.Println()
	}

	fmt.Printf("Summary: %d checked, %d failed\n", len(results), failures)
	if failures > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}
	return nil
}

func lintOutputJSON(results []LintResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
