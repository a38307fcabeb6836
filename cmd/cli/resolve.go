package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glowmirror/configurator/internal/session"
	"github.com/glowmirror/configurator/internal/types"
)

var resolveOutput string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [url]",
	Short: "Run the full configuration pipeline for a URL",
	Long: `Run the full configuration pipeline: infer the product line, decode the
URL's SKU into selections, evaluate rules, compute per-field availability,
auto-correct invalid selections and re-encode the canonical SKU. With no
argument the default configuration of the preferred product line is resolved.`,
	Example: `  configurator resolve "?search=D03L-24X36-300-3K"
  configurator resolve --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveOutput, "output", "table", "Output format: table or json")
}

func runResolve(cmd *cobra.Command, args []string) error {
	rawURL := ""
	if len(args) == 1 {
		rawURL = args[0]
	}

	ctx := context.Background()

	cache, closeCache, err := buildCache(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	composites, err := loadComposites()
	if err != nil {
		return err
	}

	preferred := ""
	if cfg != nil {
		preferred = cfg.Catalog.PreferredLineName
	}

	manager := session.NewManager(cache, session.Options{
		PreferredLineName: preferred,
		Composites:        composites,
	})

	s, err := manager.NewSession(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}
	snap := s.Snapshot()

	if resolveOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "product_line\t%s (%s)\n", snap.ProductLine.Name, snap.ProductLine.SKUCode)
	fmt.Fprintf(w, "sku\t%s\n", snap.SKU)
	fmt.Fprintf(w, "url\t%s\n", snap.URL)
	if snap.Product != nil {
		fmt.Fprintf(w, "product\t%d %s\n", snap.Product.ID, snap.Product.Name)
	} else {
		fmt.Fprintf(w, "product\t(no match)\n")
	}
	for _, field := range types.ConfigurableFields {
		val := snap.Configuration.Get(field)
		avail := ""
		if ids, ok := snap.Availability[field]; ok {
			sorted := append([]int(nil), ids...)
			sort.Ints(sorted)
			avail = fmt.Sprintf("%v", sorted)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", field, val, avail)
	}
	return w.Flush()
}
