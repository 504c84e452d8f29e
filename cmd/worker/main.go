package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	appcfg "review-pulse/internal/config"
	pgRepo "review-pulse/internal/infra/adapter/persistence/postgres"
	sqliteRepo "review-pulse/internal/infra/adapter/persistence/sqlite"
	"review-pulse/internal/infra/cache"
	"review-pulse/internal/infra/db"
	"review-pulse/internal/infra/fetcher"
	"review-pulse/internal/infra/parser"
	workerPkg "review-pulse/internal/infra/worker"
	"review-pulse/internal/observability/logging"
	"review-pulse/internal/repository"
	"review-pulse/internal/usecase/scrape"
	statsUC "review-pulse/internal/usecase/stats"
	"review-pulse/internal/utils/sentiment"
)

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM products LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	appConfig, err := appcfg.LoadFromEnv()
	if err != nil {
		logger.Error("failed to load application configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database := initDatabase(logger, appConfig)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("scrape_schedule", workerConfig.ScrapeSchedule),
		slog.String("sweep_schedule", workerConfig.SweepSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("scrape_max_concurrent", workerConfig.ScrapeMaxConcurrent),
		slog.Duration("scrape_timeout", workerConfig.ScrapeTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	cacheLayer, cacheCleanup := setupCache(logger, appConfig)
	defer cacheCleanup()

	scrapeSvc, statsSvc, productRepo := setupServices(logger, database, cacheLayer, appConfig, workerConfig)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, cacheLayer)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(logger, scrapeSvc, statsSvc, productRepo, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the database connection and waits for migrations to complete.
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
	waitForMigrations(logger, database)
	return database
}

// setupCache builds the stats cache shared by the sweep job. A missing Redis
// address degrades to local-only caching.
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
	remote := cache.NewRedisCache(client, cfg.Cache.KeyPrefix)
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close Redis client", slog.Any("error", err))
		}
	}
	return cache.New(remote, cacheCfg, logger), cleanup
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

// setupServices creates the scrape and stats services with all dependencies.
func setupServices(
	logger *slog.Logger,
	database *sql.DB,
	cacheLayer *cache.CircuitBreakerCache,
	appConfig *appcfg.App,
	workerConfig *workerPkg.WorkerConfig,
) (*scrape.Service, *statsUC.Service, repository.ProductRepository) {
	productRepo, reviewRepo, statRepo := buildRepositories(appConfig.Database.Driver, database)

	pageFetcher, err := fetcher.New(fetcher.LoadConfigFromEnv(), logger)
	if err != nil {
		logger.Error("failed to create page fetcher", slog.Any("error", err))
		os.Exit(1)
	}

	reviewParser, err := parser.NewReviewParser(appConfig.Selectors.ToParserConfig(), logger)
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
			PagesPerProduct: appConfig.Scrape.PagesPerProduct,
			PageParallelism: workerConfig.ScrapeMaxConcurrent,
			PageParam:       appConfig.Scrape.PageParam,
		},
	)
	statsSvc := statsUC.NewService(cacheLayer, statRepo, logger)
	return scrapeSvc, statsSvc, productRepo
}

// startCronWorker starts the cron scheduler with the scrape and sweep jobs.
func startCronWorker(
	logger *slog.Logger,
	scrapeSvc *scrape.Service,
	statsSvc *statsUC.Service,
	productRepo repository.ProductRepository,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.ScrapeSchedule, func() {
		runScrapeJob(logger, scrapeSvc, statsSvc, productRepo, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add scrape cron job", slog.Any("error", err))
		os.Exit(1)
	}

	_, err = c.AddFunc(cfg.SweepSchedule, func() {
		runSweepJob(logger, statsSvc, metrics)
	})
	if err != nil {
		logger.Error("failed to add sweep cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started",
		slog.String("scrape_schedule", cfg.ScrapeSchedule),
		slog.String("sweep_schedule", cfg.SweepSchedule),
		slog.String("timezone", cfg.Timezone))
	select {}
}

// runScrapeJob executes a single scrape run with timeout and error handling.
// After a successful run it force-refreshes the precomputed stats so readers
// see the new reviews without waiting for the cache to age out.
func runScrapeJob(
	logger *slog.Logger,
	svc *scrape.Service,
	statsSvc *statsUC.Service,
	productRepo repository.ProductRepository,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
) {
	startTime := time.Now()
	metrics.RecordJobRun(workerPkg.JobScrape, "started")
	logger.Info("scrape started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ScrapeTimeout)
	defer cancel()

	stats, err := svc.ScrapeAllProducts(ctx)
	if err != nil {
		logger.Error("scrape failed", slog.Any("error", err))
		metrics.RecordJobRun(workerPkg.JobScrape, "failure")
		metrics.RecordJobDuration(workerPkg.JobScrape, time.Since(startTime).Seconds())
		return
	}

	refreshProductStats(ctx, logger, svc, statsSvc, productRepo)

	metrics.RecordJobRun(workerPkg.JobScrape, "success")
	metrics.RecordJobDuration(workerPkg.JobScrape, time.Since(startTime).Seconds())
	metrics.RecordProductsProcessed(stats.Products)
	metrics.RecordLastSuccess(workerPkg.JobScrape)

	logger.Info("scrape completed",
		slog.Int("products", stats.Products),
		slog.Int64("pages", stats.Pages),
		slog.Int64("found", stats.Found),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("duplicate", stats.Duplicate),
		slog.Int64("skipped", stats.Skipped),
		slog.Duration("duration", stats.Duration),
	)
}

// refreshProductStats recomputes the rating summary and the default trend
// window for every product, bypassing both read tiers. Per-product failures
// are logged and skipped; a stale stat is not worth failing the whole run.
func refreshProductStats(
	ctx context.Context,
	logger *slog.Logger,
	scrapeSvc *scrape.Service,
	statsSvc *statsUC.Service,
	productRepo repository.ProductRepository,
) {
	products, err := productRepo.List(ctx)
	if err != nil {
		logger.Error("stats refresh: listing products failed", slog.Any("error", err))
		return
	}

	opts := statsUC.Options{ForceRefresh: true}
	for _, product := range products {
		if ctx.Err() != nil {
			return
		}
		id := strconv.FormatInt(product.ID, 10)

		if _, err := statsSvc.Resolve(ctx, scrape.StatsTypeRatingSummary, id,
			scrapeSvc.RatingSummaryFn(product.ID), opts); err != nil {
			logger.Warn("stats refresh: rating summary failed",
				slog.Int64("product_id", product.ID),
				slog.Any("error", err))
		}

		if _, err := statsSvc.Resolve(ctx, scrape.TrendStatsType(30, "day"), id,
			scrapeSvc.SentimentTrendFn(product.ID, 30, "day"), opts); err != nil {
			logger.Warn("stats refresh: sentiment trend failed",
				slog.Int64("product_id", product.ID),
				slog.Any("error", err))
		}
	}
	logger.Info("stats refresh completed", slog.Int("products", len(products)))
}

// runSweepJob removes aged-out durable stats in a single run.
func runSweepJob(logger *slog.Logger, svc *statsUC.Service, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordJobRun(workerPkg.JobSweep, "started")
	logger.Info("sweep started")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := svc.Sweep(ctx)
	if err != nil {
		logger.Error("sweep failed", slog.Any("error", err))
		metrics.RecordJobRun(workerPkg.JobSweep, "failure")
		metrics.RecordJobDuration(workerPkg.JobSweep, time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun(workerPkg.JobSweep, "success")
	metrics.RecordJobDuration(workerPkg.JobSweep, time.Since(startTime).Seconds())
	metrics.RecordLastSuccess(workerPkg.JobSweep)

	logger.Info("sweep completed",
		slog.Int64("deleted", deleted),
		slog.Duration("duration", time.Since(startTime)),
	)
}
