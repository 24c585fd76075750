package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"verity-hq/ganymede/pkg/cli"
	"verity-hq/ganymede/pkg/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored evaluation runs",
	Long: `Query, show, and prune persisted evaluation runs.

Run storage must be enabled in the configuration (storage.enabled).`,
}

var runsListFlags struct {
	subject string
	limit   int
	format  string
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := openStorage()
		if err != nil {
			return err
		}
		defer storage.Close()

		ctx := cli.SetupSignalHandler()
		records, err := storage.Query(ctx, &store.Query{
			SubjectID: runsListFlags.subject,
			Limit:     runsListFlags.limit,
		})
		if err != nil {
			return err
		}

		if runsListFlags.format == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}

		for _, record := range records {
			verdict := "NOT COMPLIANT"
			if record.Compliant {
				verdict = "COMPLIANT"
			}
			fmt.Printf("%s  %s  %-13s  %s\n",
				record.ID,
				record.EvaluatedAt.Format(time.RFC3339),
				verdict,
				record.SubjectID,
			)
		}
		fmt.Printf("%d run(s)\n", len(records))
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := openStorage()
		if err != nil {
			return err
		}
		defer storage.Close()

		ctx := cli.SetupSignalHandler()
		record, err := storage.Get(ctx, args[0])
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	},
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		storage, err := buildStorage(cfg)
		if err != nil {
			return err
		}
		if storage == nil {
			return fmt.Errorf("run storage is not enabled (set storage.enabled)")
		}
		defer storage.Close()

		pruner := store.NewPruner(storage, &store.RetentionConfig{
			RetentionDays: cfg.Storage.Retention.Days,
			MaxRecords:    cfg.Storage.Retention.MaxRecords,
		})

		ctx := cli.SetupSignalHandler()
		deleted, err := pruner.Prune(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Pruned %d run(s)\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsPruneCmd)

	runsListCmd.Flags().StringVar(&runsListFlags.subject, "subject", "", "filter by subject ID")
	runsListCmd.Flags().IntVar(&runsListFlags.limit, "limit", 50, "maximum number of runs")
	runsListCmd.Flags().StringVar(&runsListFlags.format, "format", "text", "output format: text, json")
}

// openStorage loads the configuration and opens the configured run
// storage, failing when storage is disabled.
func openStorage() (store.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	storage, err := buildStorage(cfg)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, fmt.Errorf("run storage is not enabled (set storage.enabled)")
	}
	return storage, nil
}
