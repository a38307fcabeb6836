package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowmirror/configurator/internal/types"
)

// countingSource counts fetches so tests can assert cache behavior.
type countingSource struct {
	lineCalls int32
	setCalls  int32
	err       error
}

func (s *countingSource) ProductLines(ctx context.Context) ([]types.ProductLine, error) {
	atomic.AddInt32(&s.lineCalls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return []types.ProductLine{{ID: 1, Name: "Deco", SKUCode: "D"}}, nil
}

func (s *countingSource) Products(ctx context.Context) ([]types.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []types.Product{{ID: 101, ProductLineID: 1, MirrorStyleID: 1, LightDirectionID: 2}}, nil
}

func (s *countingSource) Rules(ctx context.Context) ([]types.Rule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []types.Rule{
		{ID: 1, Name: "good", IfThis: json.RawMessage(`{"mirror_style": {"_eq": 1}}`), ThenThat: json.RawMessage(`{"frame_color": 5}`)},
		{ID: 2, Name: "broken", IfThis: json.RawMessage(`{"mirror_style": {"_wat": 1}}`), ThenThat: json.RawMessage(`{"frame_color": 5}`)},
	}, nil
}

func (s *countingSource) OptionSets(ctx context.Context, productLineID int) (types.OptionSet, error) {
	atomic.AddInt32(&s.setCalls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return types.OptionSet{
		types.FieldMirrorStyle: {{ID: 1, Name: "Full Frame", SKUCode: "01"}},
	}, nil
}

func TestCache_WarmLoadsOnce(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src)
	ctx := context.Background()

	require.NoError(t, cache.Warm(ctx))
	assert.False(t, cache.LoadedAt().IsZero())

	for i := 0; i < 3; i++ {
		lines, err := cache.ProductLines(ctx)
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.lineCalls))
}

func TestCache_CompilesRulesDroppingMalformed(t *testing.T) {
	cache := NewCache(&countingSource{})
	ctx := context.Background()

	compiled, err := cache.CompiledRules(ctx)
	require.NoError(t, err)
	require.Len(t, compiled, 1)
	assert.Equal(t, 1, compiled[0].ID)
}

func TestCache_LazyWarmOnFirstAccess(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src)

	assert.True(t, cache.LoadedAt().IsZero())
	_, err := cache.Products(context.Background())
	require.NoError(t, err)
	assert.False(t, cache.LoadedAt().IsZero())
}

func TestCache_OptionSetsPerLine(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src)
	ctx := context.Background()
	require.NoError(t, cache.Warm(ctx))

	for i := 0; i < 3; i++ {
		sets, err := cache.OptionSets(ctx, 1)
		require.NoError(t, err)
		assert.NotEmpty(t, sets[types.FieldMirrorStyle])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.setCalls))

	_, err := cache.OptionSets(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.setCalls))
}

func TestCache_InvalidateForcesReload(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src)
	ctx := context.Background()

	require.NoError(t, cache.Warm(ctx))
	_, err := cache.OptionSets(ctx, 1)
	require.NoError(t, err)

	cache.Invalidate()
	assert.True(t, cache.LoadedAt().IsZero())

	_, err = cache.ProductLines(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.lineCalls))

	// Option sets were dropped too.
	_, err = cache.OptionSets(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.setCalls))
}

func TestCache_Reload(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src)
	ctx := context.Background()

	require.NoError(t, cache.Warm(ctx))
	require.NoError(t, cache.Reload(ctx))
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.lineCalls))
	assert.False(t, cache.LoadedAt().IsZero())
}

func TestCache_SourceErrorPropagates(t *testing.T) {
	src := &countingSource{err: errors.New("cms unreachable")}
	cache := NewCache(src)
	ctx := context.Background()

	assert.Error(t, cache.Warm(ctx))
	_, err := cache.ProductLines(ctx)
	assert.Error(t, err)
	_, err = cache.OptionSets(ctx, 1)
	assert.Error(t, err)
}
