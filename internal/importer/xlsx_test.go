package importer

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into the default sheet and returns the xlsx bytes.
func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseOptionsXLSX(t *testing.T) {
	content := buildWorkbook(t, [][]string{
		{"id", "name", "sku_code", "hex_code"},
		{"9", "Polished Brass", "PBB", "#C9A227"},
		{"15", "Gunmetal Fog", "GF", "#5B6166"},
	})

	options, report, err := ParseOptionsXLSX(content, "frame_color")
	require.NoError(t, err)
	require.Len(t, options, 2)

	assert.Equal(t, 9, options[0].ID)
	assert.Equal(t, "Polished Brass", options[0].Name)
	assert.Equal(t, "PBB", options[0].SKUCode)
	assert.Equal(t, "#C9A227", options[0].HexCode)

	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Errors)
}

func TestParseOptionsXLSX_HeaderAliases(t *testing.T) {
	// "sku" and "hex" are accepted aliases, header case does not matter.
	content := buildWorkbook(t, [][]string{
		{"ID", "Name", "SKU", "Hex"},
		{"9", "Polished Brass", "PBB", "#C9A227"},
	})

	options, _, err := ParseOptionsXLSX(content, "frame_color")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "PBB", options[0].SKUCode)
	assert.Equal(t, "#C9A227", options[0].HexCode)
}

func TestParseOptionsXLSX_SkipsBadRowsAndReports(t *testing.T) {
	content := buildWorkbook(t, [][]string{
		{"id", "name", "sku_code"},
		{"13", "24 x 36", "2436"},
		{"", "", "3040"},        // missing name
		{"14", "30 x 40", ""},   // missing sku_code
		{"-2", "Bad", "X"},      // invalid id
		{"abc", "Also Bad", "Y"},
	})

	options, report, err := ParseOptionsXLSX(content, "size")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "2436", options[0].SKUCode)

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 1, report.Parsed)
	assert.Equal(t, 4, report.Skipped)
	require.Len(t, report.Errors, 4)
	assert.Contains(t, report.Errors[0], "row 3")
	assert.Contains(t, report.Errors[0], "missing name")
	assert.Contains(t, report.Errors[1], "missing sku_code")
	assert.Contains(t, report.Errors[2], "invalid id")
}

func TestParseOptionsXLSX_IDIsOptional(t *testing.T) {
	content := buildWorkbook(t, [][]string{
		{"name", "sku_code"},
		{"Night Light", "NL"},
	})

	options, report, err := ParseOptionsXLSX(content, "accessories")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Zero(t, options[0].ID)
	assert.Equal(t, 1, report.Parsed)
}

func TestParseOptionsXLSX_ShortRows(t *testing.T) {
	// Rows shorter than the header must not panic; trailing cells read empty.
	content := buildWorkbook(t, [][]string{
		{"id", "name", "sku_code", "description"},
		{"11", "Anti-Fog", "AF"},
	})

	options, _, err := ParseOptionsXLSX(content, "accessories")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Empty(t, options[0].Description)
}

func TestParseOptionsXLSX_MissingRequiredColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
	}{
		{"no name column", []string{"id", "sku_code"}},
		{"no sku_code column", []string{"id", "name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := buildWorkbook(t, [][]string{tt.header})
			_, _, err := ParseOptionsXLSX(content, "driver")
			assert.Error(t, err)
		})
	}
}

func TestParseOptionsXLSX_NotAWorkbook(t *testing.T) {
	_, _, err := ParseOptionsXLSX([]byte("definitely not a zip"), "driver")
	assert.Error(t, err)
}

func TestParseOptionsXLSX_ManyRows(t *testing.T) {
	rows := [][]string{{"id", "name", "sku_code"}}
	for i := 1; i <= 50; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("Option %d", i),
			fmt.Sprintf("OP%02d", i),
		})
	}
	content := buildWorkbook(t, rows)

	options, report, err := ParseOptionsXLSX(content, "light_output")
	require.NoError(t, err)
	assert.Len(t, options, 50)
	assert.Equal(t, 50, report.Parsed)
}
