package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glowmirror/configurator/internal/sku"
	"github.com/glowmirror/configurator/internal/types"
)

var (
	encodeLine        string
	encodeSelections  []string
	encodeAccessories []string
	encodeSize        string
	encodeOutput      string
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a set of selections into a SKU",
	Long: `Encode field selections into a product SKU. Selections are given as
field=value pairs where the value is an option id or its sku code. Fields
without a selection are omitted from the SKU.`,
	Example: `  configurator encode --line Deco --set mirror_style=3 --set light_direction=Both --size 24x36
  configurator encode --line T --set mirror_style=1 --accessory NL --accessory AF --output json`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVar(&encodeLine, "line", "", "Product line name or sku code (required)")
	encodeCmd.Flags().StringArrayVar(&encodeSelections, "set", nil, "Field selection as field=value (repeatable)")
	encodeCmd.Flags().StringArrayVar(&encodeAccessories, "accessory", nil, "Accessory id or sku code (repeatable)")
	encodeCmd.Flags().StringVar(&encodeSize, "size", "", "Size preset code or WxH dimensions")
	encodeCmd.Flags().StringVar(&encodeOutput, "output", "table", "Output format: table or json")
	encodeCmd.MarkFlagRequired("line")
}

func runEncode(cmd *cobra.Command, args []string) error {
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

	var line types.ProductLine
	found := false
	for _, l := range lines {
		if strings.EqualFold(l.Name, encodeLine) || strings.EqualFold(l.SKUCode, encodeLine) {
			line = l
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown product line %q", encodeLine)
	}

	sets, err := cache.OptionSets(ctx, line.ID)
	if err != nil {
		return fmt.Errorf("failed to load options for %s: %w", line.Name, err)
	}

	composites, err := loadComposites()
	if err != nil {
		return err
	}

	var cfg types.Configuration
	cfg.ProductLineID = fmt.Sprintf("%d", line.ID)
	cfg.Quantity = 1

	for _, sel := range encodeSelections {
		field, value, ok := strings.Cut(sel, "=")
		if !ok {
			return fmt.Errorf("invalid selection %q, expected field=value", sel)
		}
		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		id, ok := resolveSelection(field, value, sets)
		if !ok {
			return fmt.Errorf("unknown value %q for field %s", value, field)
		}
		cfg.Set(field, id)
	}

	for _, acc := range encodeAccessories {
		id, ok := resolveSelection(types.FieldAccessories, acc, sets)
		if !ok {
			return fmt.Errorf("unknown accessory %q", acc)
		}
		cfg.Accessories = append(cfg.Accessories, id)
	}

	if encodeSize != "" {
		if err := applySizeFlag(&cfg, sets); err != nil {
			return err
		}
	}

	encoded := sku.Encode(cfg, sets, line, nil, composites)

	if encodeOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(encoded)
	}

	fmt.Println(encoded.SKU)
	return nil
}

// resolveSelection accepts either a numeric option id or a sku code and
// returns the matching option id as a string.
func resolveSelection(field, value string, sets types.OptionSet) (string, bool) {
	if id := atoiOrZero(value); id > 0 {
		if _, ok := sets.ByID(field, id); ok {
			return value, true
		}
	}
	if opt, ok := sets.BySKUCode(field, value); ok {
		return fmt.Sprintf("%d", opt.ID), true
	}
	return "", false
}

func applySizeFlag(cfg *types.Configuration, sets types.OptionSet) error {
	if opt, ok := sets.BySKUCode(types.FieldSize, encodeSize); ok {
		cfg.SizeID = fmt.Sprintf("%d", opt.ID)
		cfg.Width = opt.Width
		cfg.Height = opt.Height
		return nil
	}
	w, h, ok := strings.Cut(strings.ToLower(encodeSize), "x")
	if !ok || w == "" || h == "" {
		return fmt.Errorf("invalid size %q, expected preset code or WxH", encodeSize)
	}
	cfg.Width = w
	cfg.Height = h
	cfg.UseCustomSize = true
	return nil
}
