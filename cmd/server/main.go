package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/glowmirror/configurator/config"
	"github.com/glowmirror/configurator/internal/catalog"
	"github.com/glowmirror/configurator/internal/handlers"
	"github.com/glowmirror/configurator/internal/httpx"
	"github.com/glowmirror/configurator/internal/httpx/ratelimit"
	"github.com/glowmirror/configurator/internal/middleware"
	"github.com/glowmirror/configurator/internal/session"
	"github.com/glowmirror/configurator/internal/sku"
	"github.com/glowmirror/configurator/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting mirror configurator")

	ctx := context.Background()

	cleanup := telemetry.MustInit(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
	})
	defer cleanup(context.Background())

	source, closeSource, err := buildSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create catalog source")
	}
	defer closeSource()

	cache := catalog.NewCache(source)
	if err := cache.Warm(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to warm catalog cache")
	}
	logger.Info().Msg("Catalog cache warmed")

	composites, err := sku.LoadCompositeTable(cfg.Catalog.CompositesPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Catalog.CompositesPath).Msg("Failed to load composite accessory table")
	}

	manager := session.NewManager(cache, session.Options{
		PreferredLineName: cfg.Catalog.PreferredLineName,
		Composites:        composites,
	})

	sweeper := session.NewSweeper(manager, 10*time.Minute, 2*time.Hour)
	go sweeper.Start(ctx)
	defer sweeper.Stop()

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	healthHandler := handlers.NewHealthHandler(cache)
	sessionHandler := handlers.NewSessionHandler(manager)
	skuHandler := handlers.NewSKUHandler(cache, composites)
	linesHandler := handlers.NewLinesHandler(cache)
	adminHandler := handlers.NewAdminHandler(cache)

	ipLimiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.RequestsPerSecond),
		BurstSize:         cfg.RateLimit.Burst,
	})
	go limiterSweep(ctx, ipLimiter)

	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(ipLimiter))
	{
		api.GET("/product-lines", linesHandler.List)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionHandler.Create)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.POST("/:id/select", sessionHandler.Select)
			sessions.POST("/:id/product-line", sessionHandler.SwitchLine)
			sessions.POST("/:id/reset", sessionHandler.Reset)
			sessions.DELETE("/:id", sessionHandler.Delete)
		}

		skuRoutes := api.Group("/sku")
		{
			skuRoutes.GET("/decode", skuHandler.Decode)
			skuRoutes.POST("/encode", skuHandler.Encode)
		}
	}

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware())
	internal.Use(middleware.RateLimitMiddleware(ipLimiter))
	{
		internal.GET("/health", healthHandler.Check)

		admin := internal.Group("/admin")
		{
			admin.POST("/reload", adminHandler.Reload)
			admin.POST("/import/options", adminHandler.ImportOptions)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

// buildSource selects the catalog backend from configuration. The returned
// close function is a no-op for stateless sources.
func buildSource(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (catalog.Source, func(), error) {
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
			return nil, nil, err
		}
		logger.Info().Msg("Database connected")
		return pg, pg.Close, nil
	case "directus", "":
		client := httpx.NewClient(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			MaxRetries:        cfg.RateLimit.MaxRetries,
			InitialBackoffMs:  cfg.RateLimit.InitialBackoffMs,
			MaxBackoffMs:      cfg.RateLimit.MaxBackoffMs,
		})
		src := catalog.NewDirectusSource(cfg.Catalog.BaseURL, cfg.Catalog.Token, client)
		return src, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

// limiterSweep drops per-IP limiter state for clients idle longer than an hour.
func limiterSweep(ctx context.Context, rl *middleware.IPRateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupOldLimiters(1 * time.Hour)
		}
	}
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "mirror-configurator").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
