package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"verity-hq/ganymede/pkg/cli"
	"verity-hq/ganymede/pkg/dictionary"
	"verity-hq/ganymede/pkg/policy/engine"
	"verity-hq/ganymede/pkg/subject"
)

var watchFlags struct {
	rule     string
	subjects string
	fields   string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-evaluate continuously as files change",
	Long: `Watch the rule, subject, and field dictionary files and re-run the
evaluation whenever one of them changes.

The field dictionary hot-reloads in place; rule and subject files are
re-read on each cycle. Stop with Ctrl-C.

Example:
  ganymede watch --rule rule.sql --subjects patients.json --fields fields.json`,
	RunE: watchAndEvaluate,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.rule, "rule", "r", "", "rule file (SQL or bare expression)")
	watchCmd.Flags().StringVarP(&watchFlags.subjects, "subjects", "s", "", "subject JSON file (object or array)")
	watchCmd.Flags().StringVar(&watchFlags.fields, "fields", "", "field dictionary JSON file")
}

func watchAndEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if watchFlags.rule == "" || watchFlags.subjects == "" {
		return fmt.Errorf("--rule and --subjects are required")
	}

	ctx := cli.SetupSignalHandler()
	logger := slog.Default().With("component", "watch")

	// Hot-reload the field dictionary in place when one is given.
	var fieldSource *dictionary.MemorySource
	if watchFlags.fields != "" {
		fieldSource, err = dictionary.LoadFieldFile(watchFlags.fields)
		if err != nil {
			return err
		}

		dictWatcher, err := dictionary.NewWatcher(
			watchFlags.fields, fieldSource, cfg.Dictionary.WatchDebounce, logger)
		if err != nil {
			return err
		}
		go dictWatcher.Watch(ctx)
		defer dictWatcher.Stop()
	}

	eval, err := engine.NewEvaluator(nil, nil, &engine.Config{
		Workers:  cfg.Engine.Workers,
		MaxDepth: cfg.Engine.MaxDepth,
	})
	if err != nil {
		return err
	}

	runCycle := func() {
		if err := watchEvaluateOnce(ctx, eval, fieldSource); err != nil {
			logger.Error("evaluation cycle failed", "error", err)
		}
	}

	// Rule and subject files trigger a full re-read.
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Close()

	watched := []string{watchFlags.rule, watchFlags.subjects}
	if watchFlags.fields != "" {
		watched = append(watched, watchFlags.fields)
	}
	for _, path := range watched {
		if err := fileWatcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
	}

	logger.Info("watching for changes",
		"rule", watchFlags.rule,
		"subjects", watchFlags.subjects,
	)

	runCycle()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil

		case event, ok := <-fileWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(cfg.Dictionary.WatchDebounce, runCycle)

		case err, ok := <-fileWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("file watcher error", "error", err)
		}
	}
}

// watchEvaluateOnce re-reads the rule and subjects and prints the
// evaluation result.
func watchEvaluateOnce(ctx context.Context, eval *engine.Evaluator, fieldSource *dictionary.MemorySource) error {
	tree, err := loadRule("", watchFlags.rule)
	if err != nil {
		return err
	}
	if fieldSource != nil {
		tree = dictionary.Annotate(tree, fieldSource)
	}

	subjects, err := subject.LoadBatch(watchFlags.subjects)
	if err != nil {
		return err
	}

	accessors := make([]subject.Accessor, len(subjects))
	for i, subj := range subjects {
		accessors[i] = subj
	}

	fmt.Printf("--- %s ---\n", time.Now().Format(time.TimeOnly))
	results := eval.EvaluateBatch(ctx, tree, accessors)
	evaluateOutputText(results, false)
	return nil
}
