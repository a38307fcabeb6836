package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glowmirror/configurator/internal/sku"
	"github.com/glowmirror/configurator/internal/types"
)

var decodeOutput string

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <sku-or-url>",
	Short: "Decode a SKU string or configurator URL",
	Long: `Decode a SKU string or configurator URL into its field values. Accepts a
bare SKU, a full page URL with a search parameter, or a legacy query string
with per-field parameters. The product line is inferred from the SKU prefix.`,
	Example: `  configurator decode D03L-24X36-300-3K-FEM-P-PBB
  configurator decode "https://example.com/configure?search=T01D-2436"
  configurator decode "?ms=5&ld=2&fc=9" --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVar(&decodeOutput, "output", "table", "Output format: table or json")
}

func runDecode(cmd *cobra.Command, args []string) error {
	raw := args[0]
	ctx := context.Background()

	cache, closeCache, err := buildCache(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	lines, err := cache.ProductLines(ctx)
	if err != nil {
		return fmt.Errorf("failed to load product lines: %w", err)
	}

	skuStr, _ := sku.ExtractSKU(raw)
	line, ok := sku.InferProductLine(skuStr, lines)
	if !ok {
		if len(lines) == 0 {
			return fmt.Errorf("catalog has no product lines")
		}
		line = lines[0]
	}

	sets, err := cache.OptionSets(ctx, line.ID)
	if err != nil {
		return fmt.Errorf("failed to load options for %s: %w", line.Name, err)
	}

	composites, err := loadComposites()
	if err != nil {
		return err
	}

	decoded := sku.Decode(raw, sets, line, composites)

	if decodeOutput == "json" {
		out := map[string]any{
			"productLine": line,
			"fields":      decoded.Fields,
			"accessories": decoded.Accessories,
		}
		if decoded.Width != "" || decoded.Height != "" {
			out["width"] = decoded.Width
			out["height"] = decoded.Height
		}
		if decoded.SizeID != "" {
			out["sizeId"] = decoded.SizeID
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "product_line\t%s (%s)\n", line.Name, line.SKUCode)
	for _, field := range types.ConfigurableFields {
		id, ok := decoded.Fields[field]
		if !ok {
			continue
		}
		label := id
		if opt, found := sets.ByID(field, atoiOrZero(id)); found {
			label = fmt.Sprintf("%s (%s)", opt.Name, opt.SKUCode)
		}
		fmt.Fprintf(w, "%s\t%s\n", field, label)
	}
	if decoded.SizeID != "" {
		fmt.Fprintf(w, "size\t%s\n", decoded.SizeID)
	}
	if decoded.Width != "" || decoded.Height != "" {
		fmt.Fprintf(w, "dimensions\t%sx%s\n", decoded.Width, decoded.Height)
	}
	if len(decoded.Accessories) > 0 {
		fmt.Fprintf(w, "accessories\t%s\n", strings.Join(decoded.Accessories, ", "))
	}
	return w.Flush()
}

func atoiOrZero(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
