package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"verity-hq/ganymede/pkg/dictionary"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage the field dictionary",
	Long: `Inspect and manage field dictionary sources.

The field dictionary supplies display metadata (description, section,
value type) attached to rule conditions. It lives either in a JSON file
or a SQLite database; import seeds the database from JSON.`,
}

var dictImportFlags struct {
	from string
	to   string
}

var dictImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON field dictionary into SQLite",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		if dictImportFlags.from == "" || dictImportFlags.to == "" {
			return fmt.Errorf("--from and --to are required")
		}

		entries, err := dictionary.ReadFieldFile(dictImportFlags.from)
		if err != nil {
			return err
		}

		db, err := dictionary.NewSQLiteSource(dictImportFlags.to)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Import(entries); err != nil {
			return err
		}

		fmt.Printf("Imported %d field(s) into %s\n", len(entries), dictImportFlags.to)
		return nil
	},
}

var dictLookupFlags struct {
	fields string
	format string
}

var dictLookupCmd = &cobra.Command{
	Use:   "lookup <field>...",
	Short: "Look up field metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		src, closeSource, err := buildFieldSource(cfg, dictLookupFlags.fields)
		if err != nil {
			return err
		}
		defer closeSource()
		if src == nil {
			return fmt.Errorf("no field dictionary configured (set dictionary.fields_path or pass --fields)")
		}

		type row struct {
			Field string                    `json:"field"`
			Found bool                      `json:"found"`
			Meta  *dictionary.FieldMetadata `json:"meta,omitempty"`
		}

		rows := make([]row, 0, len(args))
		for _, field := range args {
			meta, ok := src.Lookup(field)
			rows = append(rows, row{Field: field, Found: ok, Meta: meta})
		}

		if dictLookupFlags.format == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rows)
		}

		for _, r := range rows {
			if !r.Found {
				fmt.Printf("%s: not found\n", r.Field)
				continue
			}
			fmt.Printf("%s: %s", r.Field, r.Meta.Description)
			if r.Meta.Section != "" {
				fmt.Printf(" [%s]", r.Meta.Section)
			}
			if r.Meta.Type != "" {
				fmt.Printf(" (%s)", r.Meta.Type)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dictCmd)
	dictCmd.AddCommand(dictImportCmd, dictLookupCmd)

	dictImportCmd.Flags().StringVar(&dictImportFlags.from, "from", "", "JSON field dictionary to import")
	dictImportCmd.Flags().StringVar(&dictImportFlags.to, "to", "", "SQLite database path")

	dictLookupCmd.Flags().StringVar(&dictLookupFlags.fields, "fields", "", "field dictionary JSON file")
	dictLookupCmd.Flags().StringVar(&dictLookupFlags.format, "format", "text", "output format: text, json")
}
