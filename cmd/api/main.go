package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	appcfg "review-pulse/internal/config"
	hhttp "review-pulse/internal/handler/http"
	hproduct "review-pulse/internal/handler/http/product"
	"review-pulse/internal/handler/http/requestid"
	hstats "review-pulse/internal/handler/http/stats"
	pgRepo "review-pulse/internal/infra/adapter/persistence/postgres"
	sqliteRepo "review-pulse/internal/infra/adapter/persistence/sqlite"
	"review-pulse/internal/infra/cache"
	"review-pulse/internal/infra/db"
	"review-pulse/internal/infra/fetcher"
	"review-pulse/internal/infra/parser"
	"review-pulse/internal/observability/logging"
	"review-pulse/internal/observability/tracing"
	"review-pulse/internal/repository"
	"review-pulse/internal/usecase/scrape"
	statsUC "review-pulse/internal/usecase/stats"
	"review-pulse/internal/utils/sentiment"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg := loadConfig(logger)
	database := initDatabase(logger, cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	cacheLayer, cacheCleanup := setupCache(logger, cfg)
	defer cacheCleanup()

	version := getVersion()
	handler := setupServer(logger, cfg, database, cacheLayer, version)

	runServer(logger, cfg, handler, version)
}

// loadConfig loads the application configuration from CONFIG_FILE and the
// environment.
func loadConfig(logger *slog.Logger) *appcfg.App {
	cfg, err := appcfg.LoadFromEnv()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	return cfg
}

// initDatabase opens the database connection pool and runs migrations.
func initDatabase(logger *slog.Logger, cfg *appcfg.App) *sql.DB {
	if cfg.Database.DSN == "" {
		logger.Error("database DSN not configured, set DATABASE_URL or database.dsn")
		os.Exit(1)
	}
	database := db.OpenWith(cfg.Database.Driver, cfg.Database.DSN, db.ConnectionConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Std(),
		ConnMaxIdleTime: 30 * time.Minute,
	})
	if err := db.MigrateUp(database, cfg.Database.Driver); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// buildRepositories selects the persistence adapters for the configured
// driver. Validate already constrained the driver to a supported value.
func buildRepositories(driver string, database *sql.DB) (repository.ProductRepository, repository.ReviewRepository, repository.StatRepository) {
	if driver == appcfg.DriverSQLite {
		return sqliteRepo.NewProductRepo(database),
			sqliteRepo.NewReviewRepo(database),
			sqliteRepo.NewStatRepo(database)
	}
	return pgRepo.NewProductRepo(database),
		pgRepo.NewReviewRepo(database),
		pgRepo.NewStatRepo(database)
}

// setupCache builds the stats cache. With no Redis address configured the
// cache runs local-only; that is a supported degraded mode, not an error.
func setupCache(logger *slog.Logger, cfg *appcfg.App) (*cache.CircuitBreakerCache, func()) {
	cacheCfg := cache.DefaultConfig()
	cacheCfg.LocalCapacity = cfg.Cache.LocalCapacity
	cacheCfg.LocalBackstopTTL = cfg.Cache.LocalBackstopTTL.Std()

	if cfg.Cache.RedisAddr == "" {
		logger.Warn("no Redis address configured, stats cache runs local-only")
		return cache.New(nil, cacheCfg, logger), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	logger.Info("Redis cache configured",
		slog.String("addr", cfg.Cache.RedisAddr),
		slog.String("key_prefix", cfg.Cache.KeyPrefix))

	remote := cache.NewRedisCache(client, cfg.Cache.KeyPrefix)
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close Redis client", slog.Any("error", err))
		}
	}
	return cache.New(remote, cacheCfg, logger), cleanup
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires the repositories, services, routes and middleware, and
// returns the root HTTP handler.
func setupServer(logger *slog.Logger, cfg *appcfg.App, database *sql.DB, cacheLayer *cache.CircuitBreakerCache, version string) http.Handler {
	productRepo, reviewRepo, statRepo := buildRepositories(cfg.Database.Driver, database)

	statsSvc := statsUC.NewService(cacheLayer, statRepo, logger)

	pageFetcher, err := fetcher.New(fetcher.LoadConfigFromEnv(), logger)
	if err != nil {
		logger.Error("failed to create page fetcher", slog.Any("error", err))
		os.Exit(1)
	}

	reviewParser, err := parser.NewReviewParser(cfg.Selectors.ToParserConfig(), logger)
	if err != nil {
		logger.Error("failed to create review parser", slog.Any("error", err))
		os.Exit(1)
	}

	scrapeSvc := scrape.NewService(
		productRepo,
		reviewRepo,
		pageFetcher,
		reviewParser,
		sentiment.NewAnalyzer(),
		logger,
		scrape.Config{
			PagesPerProduct: cfg.Scrape.PagesPerProduct,
			PageParallelism: cfg.Scrape.PageParallelism,
			PageParam:       cfg.Scrape.PageParam,
		},
	)

	mux := http.NewServeMux()
	hproduct.Register(mux, productRepo, reviewRepo, scrapeSvc)
	hstats.Register(mux, statsSvc, scrapeSvc, cacheLayer)
	mux.Handle("GET    /health", &hhttp.HealthHandler{DB: database, Cache: cacheLayer, Version: version})
	mux.Handle("GET    /metrics", hhttp.MetricsHandler())

	return applyMiddleware(mux)
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): Request ID -> Tracing -> Metrics.
func applyMiddleware(handler http.Handler) http.Handler {
	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *appcfg.App, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      cfg.Server.WriteTimeout.Std(),
		IdleTimeout:       cfg.Server.IdleTimeout.Std(),
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
