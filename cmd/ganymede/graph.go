package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"verity-hq/ganymede/pkg/cli"
	"verity-hq/ganymede/pkg/dictionary"
	"verity-hq/ganymede/pkg/graph"
	"verity-hq/ganymede/pkg/policy/engine"
	"verity-hq/ganymede/pkg/subject"
)

var graphFlags struct {
	expr     string
	rule     string
	subjects string
	fields   string
	codes    string
	out      string
	name     string
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export a rule knowledge graph",
	Long: `Build a knowledge graph from a rule's condition tree and export it
as kg_nodes.json and kg_edges.json.

The graph contains the query root, one node per logical operator and
condition, code nodes resolved through the code dictionary, and (when
subjects are given) one node per subject with met/not_met edges to each
condition and a coverage edge to the query.

Examples:
  # Graph the rule structure only
  ganymede graph --rule rule.sql --codes codes.json --out output/

  # Include evaluated subjects
  ganymede graph --rule rule.sql --subjects patients.json --out output/`,
	RunE: exportGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVarP(&graphFlags.expr, "expr", "e", "", "rule expression")
	graphCmd.Flags().StringVarP(&graphFlags.rule, "rule", "r", "", "rule file (SQL or bare expression)")
	graphCmd.Flags().StringVarP(&graphFlags.subjects, "subjects", "s", "", "subject JSON file (object or array)")
	graphCmd.Flags().StringVar(&graphFlags.fields, "fields", "", "field dictionary JSON file")
	graphCmd.Flags().StringVar(&graphFlags.codes, "codes", "", "code dictionary JSON file")
	graphCmd.Flags().StringVarP(&graphFlags.out, "out", "o", "", "output directory (default from config)")
	graphCmd.Flags().StringVar(&graphFlags.name, "name", "", "query node name (default: rule file basename)")
}

func exportGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tree, err := loadRule(graphFlags.expr, graphFlags.rule)
	if err != nil {
		return err
	}

	fieldSource, closeFields, err := buildFieldSource(cfg, graphFlags.fields)
	if err != nil {
		return err
	}
	defer closeFields()
	if fieldSource != nil {
		tree = dictionary.Annotate(tree, fieldSource)
	}

	codes, err := buildCodeDictionary(cfg, graphFlags.codes)
	if err != nil {
		return err
	}

	name := graphFlags.name
	if name == "" && graphFlags.rule != "" {
		base := filepath.Base(graphFlags.rule)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name == "" {
		name = "rule"
	}

	builder := graph.NewBuilder(codes)
	if err := builder.AddRule(name, tree); err != nil {
		return err
	}

	if graphFlags.subjects != "" {
		subjects, err := subject.LoadBatch(graphFlags.subjects)
		if err != nil {
			return err
		}

		eval, err := engine.NewEvaluator(nil, nil, &engine.Config{
			Workers:  cfg.Engine.Workers,
			MaxDepth: cfg.Engine.MaxDepth,
		})
		if err != nil {
			return err
		}

		ctx := cli.SetupSignalHandler()
		for _, subj := range subjects {
			status, err := eval.Evaluate(ctx, tree, subj)
			if err != nil {
				return err
			}
			if err := builder.AddSubject(status, subj.ID()); err != nil {
				return err
			}
		}
	}

	outDir := graphFlags.out
	if outDir == "" {
		outDir = cfg.Graph.OutputDir
	}

	g := builder.Build()
	if err := g.WriteFiles(outDir); err != nil {
		return err
	}

	fmt.Printf("Exported %d nodes and %d edges to %s\n", len(g.Nodes), len(g.Edges), outDir)
	return nil
}
