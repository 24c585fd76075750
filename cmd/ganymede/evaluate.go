package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"verity-hq/ganymede/pkg/cli"
	"verity-hq/ganymede/pkg/dictionary"
	"verity-hq/ganymede/pkg/pel/ast"
	"verity-hq/ganymede/pkg/pel/parser"
	"verity-hq/ganymede/pkg/policy/engine"
	"verity-hq/ganymede/pkg/store"
	"verity-hq/ganymede/pkg/subject"
	"verity-hq/ganymede/pkg/telemetry/metrics"
)

var evaluateFlags struct {
	expr     string
	rule     string
	subjects string
	fields   string
	codes    string
	format   string
	quiet    bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate subjects against a rule",
	Long: `Evaluate subject records against an eligibility rule and report
per-condition compliance.

Each condition reports one of three states:
  SATISFIED              the condition matched
  UNSATISFIED            the condition failed and blocks compliance
  SATISFIED_VIA_SIBLING  the condition failed but an OR sibling matched

Missing subject fields are reported as FIELD_MISSING outcomes, not
errors. When run storage is enabled in the configuration, every
evaluation is persisted with a generated run ID.

Examples:
  # Evaluate one subject file against an inline expression
  ganymede evaluate --expr "age >= 18" --subjects patient.json

  # Evaluate a batch against a SQL rule file, with dictionaries
  ganymede evaluate --rule rule.sql --subjects patients.json \
    --fields fields.json --codes codes.json

  # JSON output
  ganymede evaluate --rule rule.sql --subjects patients.json --format json`,
	RunE: evaluateSubjects,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.expr, "expr", "e", "", "rule expression")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.rule, "rule", "r", "", "rule file (SQL or bare expression)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.subjects, "subjects", "s", "", "subject JSON file (object or array)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.fields, "fields", "", "field dictionary JSON file")
	evaluateCmd.Flags().StringVar(&evaluateFlags.codes, "codes", "", "code dictionary JSON file")
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "text", "output format: text, json")
	evaluateCmd.Flags().BoolVarP(&evaluateFlags.quiet, "quiet", "q", false, "print only the overall verdicts")
}

func evaluateSubjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tree, err := loadRule(evaluateFlags.expr, evaluateFlags.rule)
	if err != nil {
		return err
	}

	if evaluateFlags.subjects == "" {
		return fmt.Errorf("--subjects is required")
	}
	subjects, err := subject.LoadBatch(evaluateFlags.subjects)
	if err != nil {
		return err
	}

	// Annotate with the field dictionary when one is available.
	fieldSource, closeFields, err := buildFieldSource(cfg, evaluateFlags.fields)
	if err != nil {
		return err
	}
	defer closeFields()
	if fieldSource != nil {
		tree = dictionary.Annotate(tree, fieldSource)
	}

	var em *metrics.EvaluationMetrics
	if cfg.Metrics.Enabled {
		em = metrics.NewEvaluationMetrics(cfg.Metrics.Namespace)
		go serveMetrics(cfg.Metrics.ListenAddress, em)
	}

	eval, err := engine.NewEvaluator(nil, em, &engine.Config{
		Workers:  cfg.Engine.Workers,
		MaxDepth: cfg.Engine.MaxDepth,
	})
	if err != nil {
		return err
	}

	storage, err := buildStorage(cfg)
	if err != nil {
		return err
	}
	if storage != nil {
		defer storage.Close()
	}

	ctx := cli.SetupSignalHandler()

	accessors := make([]subject.Accessor, len(subjects))
	for i, subj := range subjects {
		accessors[i] = subj
	}
	results := eval.EvaluateBatch(ctx, tree, accessors)

	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
			continue
		}
		if storage != nil {
			record := store.NewRunRecord(result.Summary)
			if err := storage.Store(ctx, record); err != nil {
				return err
			}
		}
	}

	if evaluateFlags.format == "json" {
		if err := evaluateOutputJSON(results); err != nil {
			return err
		}
	} else {
		evaluateOutputText(results, evaluateFlags.quiet)
	}

	if failures > 0 {
		return cli.NewCommandError("evaluate", fmt.Errorf("%d subject(s) failed to evaluate", failures))
	}
	return nil
}

// loadRule parses the rule from an inline expression or a rule file.
func loadRule(expr, rulePath string) (*ast.ConditionNode, error) {
	switch {
	case expr != "" && rulePath != "":
		return nil, fmt.Errorf("--expr and --rule are mutually exclusive")
	case expr != "":
		return parser.Parse(expr)
	case rulePath != "":
		data, err := os.ReadFile(rulePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read rule file %q: %w", rulePath, err)
		}
		return parser.ParseSQL(string(data))
	default:
		return nil, fmt.Errorf("either --expr or --rule must be specified")
	}
}

// serveMetrics exposes the Prometheus endpoint for the lifetime of the
// command.
func serveMetrics(addr string, em *metrics.EvaluationMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", em.Handler())
	http.ListenAndServe(addr, mux)
}

func evaluateOutputJSON(results []engine.BatchResult) error {
	type row struct {
		SubjectID string          `json:"subject_id,omitempty"`
		Error     string          `json:"error,omitempty"`
		Summary   *engine.Summary `json:"summary,omitempty"`
	}

	rows := make([]row, len(results))
	for i, result := range results {
		rows[i] = row{SubjectID: result.SubjectID, Summary: result.Summary}
		if result.Err != nil {
			rows[i].Error = result.Err.Error()
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

func evaluateOutputText(results []engine.BatchResult, quiet bool) {
	for _, result := range results {
		name := result.SubjectID
		if name == "" {
			name = fmt.Sprintf("subject %d", result.Index+1)
		}

		if result.Err != nil {
			fmt.Printf("%s: error: %v\n", name, result.Err)
			continue
		}

		verdict := "NOT COMPLIANT"
		if result.Summary.Compliant {
			verdict = "COMPLIANT"
		}
		fmt.Printf("%s: %s\n", name, verdict)

		if quiet {
			continue
		}

		for _, outcome := range result.Summary.Outcomes {
			marker := statusMarker(outcome.Display)
			fmt.Printf("  %s %s", marker, outcome.Expression)
			if outcome.Reason == engine.ReasonFieldMissing {
				fmt.Printf("  [field missing]")
			} else if outcome.ObservedOK {
				fmt.Printf("  [observed: %v]", outcome.Observed)
			}
			if outcome.Description != "" {
				fmt.Printf("  (%s)", outcome.Description)
			}
			fmt.Println()
		}
		fmt.Println()
	}
}

func statusMarker(state engine.DisplayState) string {
	switch state {
	case engine.DisplaySatisfied:
		return "✓"
	case engine.DisplaySatisfiedViaSibling:
		return "~"
	default:
		return "✗"
	}
}
