package rules

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowmirror/configurator/internal/types"
)

func makeRule(id int, priority *int, ifThis, thenThat string) types.Rule {
	return types.Rule{
		ID:       id,
		Name:     "rule",
		Priority: priority,
		IfThis:   json.RawMessage(ifThis),
		ThenThat: json.RawMessage(thenThat),
	}
}

func intPtr(n int) *int { return &n }

func TestCompile_SkipsMalformedRules(t *testing.T) {
	raw := []types.Rule{
		makeRule(1, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 5}`),
		makeRule(2, intPtr(2), `{"mirror_style": {"_wat": 7}}`, `{"frame_color": 5}`),
		makeRule(3, intPtr(3), `{"mirror_style": {"_eq": 7}}`, `{}`),
		makeRule(4, nil, `{"mirror_style": {"_eq": 7}}`, `{"driver": 2}`),
	}

	compiled := Compile(raw, zerolog.Nop())
	require.Len(t, compiled, 2)
	assert.Equal(t, 1, compiled[0].ID)
	assert.Equal(t, 4, compiled[1].ID)
}

func TestEvaluate_SequentialFold(t *testing.T) {
	// The second rule's condition depends on the first rule's effect.
	raw := []types.Rule{
		makeRule(1, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 5}`),
		makeRule(2, intPtr(2), `{"frame_color": {"_eq": 5}}`, `{"driver": 2}`),
	}
	compiled := Compile(raw, zerolog.Nop())

	res := Evaluate(types.FlatContext{MirrorStyleID: 7}, compiled)
	assert.Equal(t, 5, res.Context.FrameColorID)
	assert.Equal(t, 2, res.Context.DriverID)

	// Without the trigger neither rule fires.
	res = Evaluate(types.FlatContext{MirrorStyleID: 8}, compiled)
	assert.Equal(t, 0, res.Context.FrameColorID)
	assert.Equal(t, 0, res.Context.DriverID)
}

func TestEvaluate_PriorityOrder(t *testing.T) {
	// Lower priority value wins first application; later rules cannot
	// displace a field forced by an earlier one.
	raw := []types.Rule{
		makeRule(1, intPtr(2), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 9}`),
		makeRule(2, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 5}`),
	}
	compiled := Compile(raw, zerolog.Nop())

	res := Evaluate(types.FlatContext{MirrorStyleID: 7}, compiled)
	assert.Equal(t, 5, res.Context.FrameColorID)
}

func TestEvaluate_MissingPriorityRunsLast(t *testing.T) {
	raw := []types.Rule{
		makeRule(1, nil, `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 9}`),
		makeRule(2, intPtr(10), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 5}`),
	}
	compiled := Compile(raw, zerolog.Nop())

	res := Evaluate(types.FlatContext{MirrorStyleID: 7}, compiled)
	assert.Equal(t, 5, res.Context.FrameColorID)
}

func TestEvaluate_TieBreakByFetchOrder(t *testing.T) {
	raw := []types.Rule{
		makeRule(1, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 5}`),
		makeRule(2, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 9}`),
	}
	compiled := Compile(raw, zerolog.Nop())

	res := Evaluate(types.FlatContext{MirrorStyleID: 7}, compiled)
	assert.Equal(t, 5, res.Context.FrameColorID)
}

func TestEvaluate_SegmentOverrideFirstWins(t *testing.T) {
	raw := []types.Rule{
		makeRule(1, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"mirror_style_sku_code": "W"}`),
		makeRule(2, intPtr(2), `{"mirror_style": {"_eq": 7}}`, `{"mirror_style_sku_code": "X"}`),
	}
	compiled := Compile(raw, zerolog.Nop())

	res := Evaluate(types.FlatContext{MirrorStyleID: 7}, compiled)
	assert.Equal(t, "W", res.Overrides["mirror_style"])
}

func TestEvaluate_ConstraintAccumulation(t *testing.T) {
	raw := []types.Rule{
		makeRule(1, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"mounting": {"_allow": [1, 2, 3]}}`),
		makeRule(2, intPtr(2), `{"mirror_style": {"_eq": 7}}`, `{"mounting": {"_allow": [2, 3, 4]}}`),
		makeRule(3, intPtr(3), `{"mirror_style": {"_eq": 7}}`, `{"mounting": {"_deny": [3]}}`),
	}
	compiled := Compile(raw, zerolog.Nop())

	res := Evaluate(types.FlatContext{MirrorStyleID: 7}, compiled)
	con := res.Constraints["mounting"]
	assert.True(t, con.AllowSet)
	assert.Equal(t, []int{2, 3}, con.Allow)
	assert.Equal(t, []int{3}, con.Deny)
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	raw := []types.Rule{
		makeRule(1, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 5}`),
	}
	compiled := Compile(raw, zerolog.Nop())

	in := types.FlatContext{MirrorStyleID: 7, AccessoryIDs: []int{11}}
	res := Evaluate(in, compiled)
	assert.Equal(t, 5, res.Context.FrameColorID)
	assert.Equal(t, 0, in.FrameColorID)
}

func TestEvaluate_Deterministic(t *testing.T) {
	raw := []types.Rule{
		makeRule(1, intPtr(2), `{"mirror_style": {"_eq": 7}}`, `{"driver": 3}`),
		makeRule(2, intPtr(1), `{"mirror_style": {"_eq": 7}}`, `{"frame_color": 5, "mounting": {"_allow": [1]}}`),
		makeRule(3, nil, `{"frame_color": {"_eq": 5}}`, `{"light_output": 4}`),
	}
	compiled := Compile(raw, zerolog.Nop())

	first := Evaluate(types.FlatContext{MirrorStyleID: 7}, compiled)
	for i := 0; i < 10; i++ {
		again := Evaluate(types.FlatContext{MirrorStyleID: 7}, compiled)
		assert.Equal(t, first, again)
	}
}
