package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/glowmirror/configurator/internal/rules"
	"github.com/glowmirror/configurator/internal/types"
)

// Cache is the process-wide catalog cache the server owns explicitly.
// Product lines, products and rules load once on Warm; option sets load
// lazily per product line on first use. Invalidate and Reload are the only
// ways cached data changes.
type Cache struct {
	source Source
	logger zerolog.Logger

	mu       sync.RWMutex
	lines    []types.ProductLine
	products []types.Product
	rawRules []types.Rule
	compiled []rules.CompiledRule
	sets     map[int]types.OptionSet
	loadedAt time.Time
}

// NewCache creates a cold cache over a source.
func NewCache(source Source) *Cache {
	return &Cache{
		source: source,
		logger: log.With().Str("component", "catalog_cache").Logger(),
		sets:   make(map[int]types.OptionSet),
	}
}

// Warm loads product lines, products and rules concurrently. Rules are
// compiled once here; malformed rules are dropped with a warning.
func (c *Cache) Warm(ctx context.Context) error {
	var (
		lines    []types.ProductLine
		products []types.Product
		rawRules []types.Rule
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		lines, err = c.source.ProductLines(gctx)
		observeLoad("product_lines", start, err)
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		products, err = c.source.Products(gctx)
		observeLoad("products", start, err)
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		rawRules, err = c.source.Rules(gctx)
		observeLoad("rules", start, err)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("warm catalog cache: %w", err)
	}

	compiled := rules.Compile(rawRules, c.logger)

	c.mu.Lock()
	c.lines = lines
	c.products = products
	c.rawRules = rawRules
	c.compiled = compiled
	c.sets = make(map[int]types.OptionSet)
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info().
		Int("product_lines", len(lines)).
		Int("products", len(products)).
		Int("rules", len(rawRules)).
		Int("rules_compiled", len(compiled)).
		Msg("catalog cache warmed")
	return nil
}

// ProductLines returns the cached lines, warming on first use.
func (c *Cache) ProductLines(ctx context.Context) ([]types.ProductLine, error) {
	if err := c.ensureWarm(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	cacheHits.WithLabelValues("product_lines").Inc()
	return c.lines, nil
}

// Products returns the cached catalog, warming on first use.
func (c *Cache) Products(ctx context.Context) ([]types.Product, error) {
	if err := c.ensureWarm(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	cacheHits.WithLabelValues("products").Inc()
	return c.products, nil
}

// CompiledRules returns the cached compiled rules, warming on first use.
func (c *Cache) CompiledRules(ctx context.Context) ([]rules.CompiledRule, error) {
	if err := c.ensureWarm(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	cacheHits.WithLabelValues("rules").Inc()
	return c.compiled, nil
}

// OptionSets returns the option sets for a product line, loading and
// caching them on first request for that line.
func (c *Cache) OptionSets(ctx context.Context, productLineID int) (types.OptionSet, error) {
	c.mu.RLock()
	sets, ok := c.sets[productLineID]
	c.mu.RUnlock()
	if ok {
		cacheHits.WithLabelValues("option_sets").Inc()
		return sets, nil
	}

	cacheMisses.WithLabelValues("option_sets").Inc()
	start := time.Now()
	loaded, err := c.source.OptionSets(ctx, productLineID)
	observeLoad("option_sets", start, err)
	if err != nil {
		return nil, fmt.Errorf("load option sets for line %d: %w", productLineID, err)
	}

	c.mu.Lock()
	c.sets[productLineID] = loaded
	c.mu.Unlock()
	return loaded, nil
}

// Invalidate drops all cached data; the next access reloads from source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.products = nil
	c.rawRules = nil
	c.compiled = nil
	c.sets = make(map[int]types.OptionSet)
	c.loadedAt = time.Time{}
	c.logger.Info().Msg("catalog cache invalidated")
}

// Reload invalidates and immediately re-warms.
func (c *Cache) Reload(ctx context.Context) error {
	c.Invalidate()
	return c.Warm(ctx)
}

// LoadedAt reports when the cache was last warmed (zero when cold).
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func (c *Cache) ensureWarm(ctx context.Context) error {
	c.mu.RLock()
	warm := !c.loadedAt.IsZero()
	c.mu.RUnlock()
	if warm {
		return nil
	}
	cacheMisses.WithLabelValues("all").Inc()
	return c.Warm(ctx)
}

func observeLoad(collection string, start time.Time, err error) {
	loadDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	if err != nil {
		loadErrors.WithLabelValues(collection).Inc()
	}
}
