package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowmirror/configurator/internal/types"
)

func TestParseCondition_Operators(t *testing.T) {
	ctx := types.FlatContext{
		MirrorStyleID:    7,
		LightDirectionID: 2,
		ProductLineCode:  "D",
		Width:            "24",
	}

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"eq match", `{"mirror_style": {"_eq": 7}}`, true},
		{"eq mismatch", `{"mirror_style": {"_eq": 8}}`, false},
		{"bare scalar shorthand", `{"mirror_style": 7}`, true},
		{"eq string id coercion", `{"mirror_style": {"_eq": "7"}}`, true},
		{"neq match", `{"mirror_style": {"_neq": 8}}`, true},
		{"neq on unset field", `{"frame_color": {"_neq": 3}}`, true},
		{"in match", `{"light_direction": {"_in": [1, 2, 3]}}`, true},
		{"in mismatch", `{"light_direction": {"_in": [4, 5]}}`, false},
		{"nin match", `{"light_direction": {"_nin": [4, 5]}}`, true},
		{"nin on unset field", `{"driver": {"_nin": [1]}}`, true},
		{"empty on unset", `{"frame_color": {"_empty": true}}`, true},
		{"empty on set", `{"mirror_style": {"_empty": true}}`, false},
		{"nempty on set", `{"mirror_style": {"_nempty": true}}`, true},
		{"sku code eq case-insensitive", `{"product_line_sku_code": {"_eq": "d"}}`, true},
		{"dotted path alias", `{"product_line.sku_code": {"_eq": "D"}}`, true},
		{"width string compare", `{"width": {"_eq": 24}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := ParseCondition([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cond.Eval(&ctx))
		})
	}
}

func TestParseCondition_Combinators(t *testing.T) {
	ctx := types.FlatContext{MirrorStyleID: 7, LightDirectionID: 2}

	and := `{"_and": [{"mirror_style": {"_eq": 7}}, {"light_direction": {"_eq": 2}}]}`
	cond, err := ParseCondition([]byte(and))
	require.NoError(t, err)
	assert.True(t, cond.Eval(&ctx))

	or := `{"_or": [{"mirror_style": {"_eq": 99}}, {"light_direction": {"_eq": 2}}]}`
	cond, err = ParseCondition([]byte(or))
	require.NoError(t, err)
	assert.True(t, cond.Eval(&ctx))

	// Multiple sibling keys are an implicit AND.
	implicit := `{"mirror_style": {"_eq": 7}, "light_direction": {"_eq": 99}}`
	cond, err = ParseCondition([]byte(implicit))
	require.NoError(t, err)
	assert.False(t, cond.Eval(&ctx))

	nested := `{"_or": [
		{"_and": [{"mirror_style": {"_eq": 7}}, {"light_direction": {"_eq": 99}}]},
		{"_and": [{"mirror_style": {"_eq": 7}}, {"light_direction": {"_eq": 2}}]}
	]}`
	cond, err = ParseCondition([]byte(nested))
	require.NoError(t, err)
	assert.True(t, cond.Eval(&ctx))
}

func TestParseCondition_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `[1, 2]`},
		{"empty object", `{}`},
		{"unknown operator", `{"mirror_style": {"_gte": 3}}`},
		{"in without array", `{"mirror_style": {"_in": 3}}`},
		{"and without array", `{"_and": {"mirror_style": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCondition([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestParseCondition_UnknownFieldNeverMatches(t *testing.T) {
	ctx := types.FlatContext{MirrorStyleID: 7}

	cond, err := ParseCondition([]byte(`{"bogus_field": {"_eq": 1}}`))
	require.NoError(t, err)
	assert.False(t, cond.Eval(&ctx))

	// Unknown keys read as unset, so _empty matches them.
	cond, err = ParseCondition([]byte(`{"bogus_field": {"_empty": true}}`))
	require.NoError(t, err)
	assert.True(t, cond.Eval(&ctx))
}

func TestParseActions(t *testing.T) {
	t.Run("set field", func(t *testing.T) {
		actions, err := ParseActions([]byte(`{"frame_color": 5}`))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, ActionSetField, actions[0].Kind)
		assert.Equal(t, "frame_color", actions[0].Field)
	})

	t.Run("segment override", func(t *testing.T) {
		actions, err := ParseActions([]byte(`{"mirror_style_sku_code": "W"}`))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, ActionOverrideSegment, actions[0].Kind)
		assert.Equal(t, "mirror_style", actions[0].Segment)
		assert.Equal(t, "W", actions[0].Literal)
	})

	t.Run("legacy override key", func(t *testing.T) {
		actions, err := ParseActions([]byte(`{"accessories_sku_code_override": "NA"}`))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, ActionOverrideSegment, actions[0].Kind)
		assert.Equal(t, "accessories", actions[0].Segment)
	})

	t.Run("constraint", func(t *testing.T) {
		actions, err := ParseActions([]byte(`{"mounting": {"_allow": [1, 2], "_deny": [3]}}`))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, ActionConstrainOptions, actions[0].Kind)
		assert.True(t, actions[0].AllowSet)
		assert.Equal(t, []int{1, 2}, actions[0].Allow)
		assert.Equal(t, []int{3}, actions[0].Deny)
	})

	t.Run("mixed payload", func(t *testing.T) {
		raw := `{"frame_color": 5, "mirror_style_sku_code": "W", "driver": {"_deny": [9]}}`
		actions, err := ParseActions([]byte(raw))
		require.NoError(t, err)
		assert.Len(t, actions, 3)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := ParseActions([]byte(`{}`))
		assert.Error(t, err)

		_, err = ParseActions([]byte(`{"mirror_style_sku_code": 5}`))
		assert.Error(t, err)

		_, err = ParseActions([]byte(`{"mounting": {"_maybe": [1]}}`))
		assert.Error(t, err)

		_, err = ParseActions([]byte(`{"mounting": {}}`))
		assert.Error(t, err)
	})
}
