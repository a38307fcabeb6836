package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowmirror/configurator/internal/types"
)

func TestExtractSKU(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare sku", "D03L-24X36-300-3K", "D03L-24X36-300-3K"},
		{"query string", "?search=D03L-2436", "D03L-2436"},
		{"full url", "https://example.com/configure?search=D03L-2436&utm=x", "D03L-2436"},
		{"no search param", "?ms=3&ld=2", ""},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ExtractSKU(tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}

	_, values := ExtractSKU("?ms=3&ld=2")
	require.NotNil(t, values)
	assert.Equal(t, "3", values.Get("ms"))
}

func TestInferProductLine(t *testing.T) {
	lines := []types.ProductLine{
		{ID: 1, Name: "Deco", SKUCode: "D"},
		{ID: 2, Name: "Double Deco", SKUCode: "DD"},
		{ID: 3, Name: "Thin", SKUCode: "T"},
	}

	line, ok := InferProductLine("D03L-2436", lines)
	require.True(t, ok)
	assert.Equal(t, 1, line.ID)

	// Longest prefix wins.
	line, ok = InferProductLine("DD01L", lines)
	require.True(t, ok)
	assert.Equal(t, 2, line.ID)

	line, ok = InferProductLine("t05d", lines)
	require.True(t, ok)
	assert.Equal(t, 3, line.ID)

	_, ok = InferProductLine("X99", lines)
	assert.False(t, ok)

	_, ok = InferProductLine("", lines)
	assert.False(t, ok)
}

func TestDecode_FullSKU(t *testing.T) {
	dec := Decode("D03L-24X36-300-3K-FEM-P-PBB", testSets(), testLine(), nil)

	assert.Equal(t, "3", dec.Fields[types.FieldMirrorStyle])
	assert.Equal(t, "2", dec.Fields[types.FieldLightDirection])
	assert.Equal(t, "5", dec.Fields[types.FieldLightOutput])
	assert.Equal(t, "6", dec.Fields[types.FieldColorTemperature])
	assert.Equal(t, "7", dec.Fields[types.FieldMounting])
	assert.Equal(t, "8", dec.Fields[types.FieldDriver])
	assert.Equal(t, "9", dec.Fields[types.FieldFrameColor])
	assert.Equal(t, "24", dec.Width)
	assert.Equal(t, "36", dec.Height)
	// Dimensions matching a preset snap back onto it.
	assert.Equal(t, "13", dec.SizeID)
}

func TestDecode_OmittedSegments(t *testing.T) {
	// No size, mounting, driver or accessories; the cursor must not
	// misassign later tokens to earlier segments.
	dec := Decode("D03L-3K-PBB", testSets(), testLine(), nil)

	assert.Equal(t, "3", dec.Fields[types.FieldMirrorStyle])
	assert.Equal(t, "6", dec.Fields[types.FieldColorTemperature])
	assert.Equal(t, "9", dec.Fields[types.FieldFrameColor])
	assert.Empty(t, dec.Width)
	_, hasMounting := dec.Fields[types.FieldMounting]
	assert.False(t, hasMounting)
}

func TestDecode_OverriddenCore(t *testing.T) {
	// A rule-overridden core keeps the style+direction codes as its suffix.
	dec := Decode("W01d-2436", testSets(), testLine(), nil)

	assert.Equal(t, "1", dec.Fields[types.FieldMirrorStyle])
	assert.Equal(t, "4", dec.Fields[types.FieldLightDirection])
	assert.Equal(t, "24", dec.Width)
	assert.Equal(t, "36", dec.Height)
}

func TestDecode_CompactLegacySize(t *testing.T) {
	dec := Decode("D03L-2436", testSets(), testLine(), nil)

	assert.Equal(t, "24", dec.Width)
	assert.Equal(t, "36", dec.Height)
	assert.Equal(t, "13", dec.SizeID)
}

func TestDecode_AccessoryTokens(t *testing.T) {
	t.Run("concatenated codes", func(t *testing.T) {
		dec := Decode("D03L-AFNL", testSets(), testLine(), nil)
		assert.Equal(t, []string{"12", "11"}, dec.Accessories)
	})

	t.Run("composite token", func(t *testing.T) {
		table := NewCompositeTable()
		table.Add("AN", "AF", "NL")

		dec := Decode("D03L-AN", testSets(), testLine(), table)
		assert.Equal(t, []string{"12", "11"}, dec.Accessories)
	})

	t.Run("partially unknown token drops", func(t *testing.T) {
		dec := Decode("D03L-AFZZ", testSets(), testLine(), nil)
		assert.Empty(t, dec.Accessories)
	})
}

func TestDecode_UnknownTokensDropSilently(t *testing.T) {
	dec := Decode("D03L-QQQ-3K", testSets(), testLine(), nil)

	assert.Equal(t, "3", dec.Fields[types.FieldMirrorStyle])
	assert.Equal(t, "6", dec.Fields[types.FieldColorTemperature])
}

func TestDecode_CaseInsensitive(t *testing.T) {
	dec := Decode("d03l-24x36-pbb", testSets(), testLine(), nil)

	assert.Equal(t, "3", dec.Fields[types.FieldMirrorStyle])
	assert.Equal(t, "9", dec.Fields[types.FieldFrameColor])
	assert.Equal(t, "24", dec.Width)
}

func TestDecode_LegacyParams(t *testing.T) {
	dec := Decode("?ms=3&ld=2&fc=PBB&sz=2436&acc=NL", testSets(), testLine(), nil)

	assert.Equal(t, "3", dec.Fields[types.FieldMirrorStyle])
	assert.Equal(t, "2", dec.Fields[types.FieldLightDirection])
	assert.Equal(t, "9", dec.Fields[types.FieldFrameColor])
	assert.Equal(t, "24", dec.Width)
	assert.Equal(t, "36", dec.Height)
	assert.Equal(t, []string{"11"}, dec.Accessories)
}

func TestDecode_LegacyExplicitDimensions(t *testing.T) {
	dec := Decode("?w=30.5&h=40", testSets(), testLine(), nil)

	assert.Equal(t, "30.5", dec.Width)
	assert.Equal(t, "40", dec.Height)
}

func TestDecode_RoundTrip(t *testing.T) {
	cfg := fullConfig()
	cfg.Accessories = []string{"12", "11"}

	enc := Encode(cfg, testSets(), testLine(), nil, nil)
	dec := Decode(enc.SKU, testSets(), testLine(), nil)

	assert.Equal(t, cfg.MirrorStyleID, dec.Fields[types.FieldMirrorStyle])
	assert.Equal(t, cfg.LightDirectionID, dec.Fields[types.FieldLightDirection])
	assert.Equal(t, cfg.LightOutputID, dec.Fields[types.FieldLightOutput])
	assert.Equal(t, cfg.ColorTempID, dec.Fields[types.FieldColorTemperature])
	assert.Equal(t, cfg.MountingID, dec.Fields[types.FieldMounting])
	assert.Equal(t, cfg.DriverID, dec.Fields[types.FieldDriver])
	assert.Equal(t, cfg.FrameColorID, dec.Fields[types.FieldFrameColor])
	assert.Equal(t, cfg.Width, dec.Width)
	assert.Equal(t, cfg.Height, dec.Height)
	assert.Equal(t, cfg.Accessories, dec.Accessories)
}

func TestDecode_RoundTripPresetSize(t *testing.T) {
	cfg := fullConfig()
	cfg.UseCustomSize = false
	cfg.SizeID = "13"

	enc := Encode(cfg, testSets(), testLine(), nil, nil)
	require.Contains(t, enc.SKU, "2436")

	dec := Decode(enc.SKU, testSets(), testLine(), nil)
	assert.Equal(t, "13", dec.SizeID)
	assert.Equal(t, "24", dec.Width)
	assert.Equal(t, "36", dec.Height)
}
