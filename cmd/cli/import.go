package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glowmirror/configurator/internal/importer"
)

var (
	importField  string
	importOutput string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Validate an option import workbook",
	Long: `Parse an XLSX workbook of catalog options and report what would be
imported. Rows missing a name or sku code are skipped and reported. This
command only validates; the import itself goes through the admin API.`,
	Example: `  configurator import ./data/accessories.xlsx --field accessories
  configurator import ./data/sizes.xlsx --field size --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importField, "field", "", "Target option field (required)")
	importCmd.Flags().StringVar(&importOutput, "output", "table", "Output format: table or json")
	importCmd.MarkFlagRequired("field")
}

func runImport(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	logger.Info().Str("file", filePath).Msg("Reading workbook")
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	options, report, err := importer.ParseOptionsXLSX(content, importField)
	if err != nil {
		return fmt.Errorf("failed to parse workbook: %w", err)
	}

	if importOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"field":   importField,
			"report":  report,
			"options": options,
		})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSKU_CODE\tWIDTH\tHEIGHT")
	for _, opt := range options {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", opt.ID, opt.Name, opt.SKUCode, opt.Width, opt.Height)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d rows, %d parsed, %d skipped\n", report.Rows, report.Parsed, report.Skipped)
	for _, e := range report.Errors {
		fmt.Printf("  - %s\n", e)
	}
	return nil
}
