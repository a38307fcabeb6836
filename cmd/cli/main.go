package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/glowmirror/configurator/config"
	"github.com/glowmirror/configurator/internal/catalog"
	"github.com/glowmirror/configurator/internal/httpx"
	"github.com/glowmirror/configurator/internal/httpx/ratelimit"
	"github.com/glowmirror/configurator/internal/sku"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "configurator",
	Short: "Mirror configurator CLI - SKU and catalog tooling",
	Long: `A CLI tool for working with the illuminated mirror configurator catalog.
Supports decoding and encoding product SKUs, running a full configuration
resolution against the live catalog, and validating option imports.`,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for some commands, don't fail here
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	// Always use console format for CLI
	logger = initLogger()
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stdout
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: noColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

// buildCache creates a catalog cache over the configured backend. The caller
// owns the returned close function.
func buildCache(ctx context.Context) (*catalog.Cache, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config required but not loaded")
	}

	switch cfg.Catalog.Source {
	case "postgres":
		dbURL := config.GetDatabaseURL()
		if dbURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL not set")
		}
		pg, err := catalog.ConnectPostgres(ctx, dbURL, catalog.PoolConfig{
			MaxConns:        cfg.Database.MaxConnections,
			MinConns:        cfg.Database.MinConnections,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return catalog.NewCache(pg), pg.Close, nil
	case "directus", "":
		client := httpx.NewClient(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			MaxRetries:        cfg.RateLimit.MaxRetries,
			InitialBackoffMs:  cfg.RateLimit.InitialBackoffMs,
			MaxBackoffMs:      cfg.RateLimit.MaxBackoffMs,
		})
		src := catalog.NewDirectusSource(cfg.Catalog.BaseURL, cfg.Catalog.Token, client)
		return catalog.NewCache(src), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

func loadComposites() (*sku.CompositeTable, error) {
	path := "./config/composites.json"
	if cfg != nil && cfg.Catalog.CompositesPath != "" {
		path = cfg.Catalog.CompositesPath
	}
	return sku.LoadCompositeTable(path)
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
