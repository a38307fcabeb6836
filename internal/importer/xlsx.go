// Package importer parses admin-supplied XLSX workbooks into option rows
// for bulk catalog maintenance. Parsing is lenient: rows that cannot become
// a valid option are reported, not fatal.
package importer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/glowmirror/configurator/internal/types"
)

// Report summarizes an import run.
type Report struct {
	Rows    int      `json:"rows"`
	Parsed  int      `json:"parsed"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// Header names recognized in the first row, case-insensitive.
var headerColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"sku_code":    "sku_code",
	"sku":         "sku_code",
	"code":        "sku_code",
	"description": "description",
	"hex_code":    "hex_code",
	"hex":         "hex_code",
	"width":       "width",
	"height":      "height",
}

// ParseOptionsXLSX reads the first sheet of an XLSX workbook into options
// for one field. The sheet needs a header row naming at least id, name and
// sku_code columns; remaining columns are optional presentation attributes.
func ParseOptionsXLSX(content []byte, field string) ([]types.Option, Report, error) {
	report := Report{}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, report, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, report, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, report, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, report, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns := mapHeader(rows[0])
	if _, ok := columns["name"]; !ok {
		return nil, report, fmt.Errorf("sheet %q has no name column", sheets[0])
	}
	if _, ok := columns["sku_code"]; !ok {
		return nil, report, fmt.Errorf("sheet %q has no sku_code column", sheets[0])
	}

	var options []types.Option
	for i, row := range rows[1:] {
		report.Rows++
		opt, err := parseRow(row, columns)
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		options = append(options, opt)
		report.Parsed++
	}

	log.Info().Str("component", "importer").Str("field", field).
		Int("parsed", report.Parsed).Int("skipped", report.Skipped).
		Msg("parsed option workbook")
	return options, report, nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int)
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canonical, ok := headerColumns[key]; ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = i
			}
		}
	}
	return columns
}

func parseRow(row []string, columns map[string]int) (types.Option, error) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	opt := types.Option{
		Name:        cell("name"),
		SKUCode:     cell("sku_code"),
		Description: cell("description"),
		HexCode:     cell("hex_code"),
		Width:       cell("width"),
		Height:      cell("height"),
	}
	if opt.Name == "" {
		return types.Option{}, fmt.Errorf("missing name")
	}
	if opt.SKUCode == "" {
		return types.Option{}, fmt.Errorf("missing sku_code")
	}
	if raw := cell("id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return types.Option{}, fmt.Errorf("invalid id %q", raw)
		}
		opt.ID = id
	}
	return opt, nil
}
