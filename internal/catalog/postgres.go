package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowmirror/configurator/internal/types"
)

// PostgresSource reads catalog collections straight from the Supabase
// schema. Used server-side when catalog.source=postgres; the Directus REST
// surface and these tables hold the same data.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// PoolConfig mirrors the pgx pool knobs exposed through configuration.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ConnectPostgres creates a pooled source and verifies connectivity.
func ConnectPostgres(ctx context.Context, connString string, cfg PoolConfig) (*PostgresSource, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

// NewPostgresSource wraps an existing pool (used by tests).
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Close releases the pool.
func (s *PostgresSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping reports connectivity, for health checks.
func (s *PostgresSource) Ping(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.pool.Ping(ctx)
}

// ProductLines reads all product lines.
func (s *PostgresSource) ProductLines(ctx context.Context) ([]types.ProductLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, sku_code
		FROM product_lines
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query product lines: %w", err)
	}
	defer rows.Close()

	var lines []types.ProductLine
	for rows.Next() {
		var line types.ProductLine
		if err := rows.Scan(&line.ID, &line.Name, &line.SKUCode); err != nil {
			return nil, fmt.Errorf("scan product line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Products reads the full catalog.
func (s *PostgresSource) Products(ctx context.Context) ([]types.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, product_line, mirror_style, light_direction,
		       frame_thickness,
		       COALESCE(vertical_image, ''), COALESCE(horizontal_image, '')
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []types.Product
	for rows.Next() {
		var p types.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.ProductLineID, &p.MirrorStyleID,
			&p.LightDirectionID, &p.FrameThicknessID,
			&p.VerticalImage, &p.HorizontalImage,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Rules reads all rules ordered by priority with NULLs last, preserving the
// fetch-order tie-break the engine relies on.
func (s *PostgresSource) Rules(ctx context.Context) ([]types.Rule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, priority, if_this, then_that
		FROM rules
		ORDER BY priority ASC NULLS LAST, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []types.Rule
	for rows.Next() {
		var r types.Rule
		if err := rows.Scan(&r.ID, &r.Name, &r.Priority, &r.IfThis, &r.ThenThat); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// OptionSets reads every option collection for one product line.
func (s *PostgresSource) OptionSets(ctx context.Context, productLineID int) (types.OptionSet, error) {
	sets := make(types.OptionSet, len(optionCollections))
	for field, table := range optionCollections {
		options, err := s.queryOptions(ctx, table, productLineID)
		if err != nil {
			return nil, err
		}
		sets[field] = options
	}
	return sets, nil
}

func (s *PostgresSource) queryOptions(ctx context.Context, table string, productLineID int) ([]types.Option, error) {
	// Table names come from the closed optionCollections map, never from
	// user input.
	q := fmt.Sprintf(`
		SELECT id, name, sku_code,
		       COALESCE(description, ''), COALESCE(hex_code, ''),
		       COALESCE(width, ''), COALESCE(height, '')
		FROM %s
		WHERE product_line = $1 OR product_line IS NULL
		ORDER BY sort, id
	`, table)

	rows, err := s.pool.Query(ctx, q, productLineID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var options []types.Option
	for rows.Next() {
		var o types.Option
		if err := rows.Scan(&o.ID, &o.Name, &o.SKUCode, &o.Description, &o.HexCode, &o.Width, &o.Height); err != nil {
			return nil, fmt.Errorf("scan %s option: %w", table, err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
