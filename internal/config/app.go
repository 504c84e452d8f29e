// Package config loads the application-level YAML configuration shared by the
// API server and the worker. A config file is optional: every field has a
// production default, and a handful of deployment-specific values (listen
// address, database DSN, Redis address) can additionally be overridden
// through environment variables so containerized deployments can patch a
// baked-in file without rebuilding the image.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"review-pulse/internal/infra/parser"
	pkgconfig "review-pulse/pkg/config"
)

// Duration is a time.Duration that unmarshals from YAML duration strings
// like "30s" or "1h30m". yaml.v3 only decodes integers into time.Duration,
// which would force nanosecond literals into the config file.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// App is the root of the YAML configuration file.
type App struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Scrape    ScrapeConfig    `yaml:"scrape"`
	Selectors SelectorsConfig `yaml:"selectors"`
}

// ServerConfig holds the HTTP server settings for the API binary.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8080"
	Addr string `yaml:"addr"`

	// ReadTimeout bounds reading the request including the body.
	// Default: 10s
	ReadTimeout Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. Default: 30s
	WriteTimeout Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive idle connections. Default: 120s
	IdleTimeout Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM. Default: 15s
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds the database connection settings.
type DatabaseConfig struct {
	// Driver selects the storage backend: "postgres" or "sqlite".
	// Overridable via DATABASE_DRIVER. Default: "postgres"
	Driver string `yaml:"driver"`

	// DSN is the connection string: a postgres URL, or a file path for
	// sqlite. Overridable via DATABASE_URL.
	DSN string `yaml:"dsn"`

	// MaxOpenConns caps the connection pool. Default: 25
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns caps idle pooled connections. Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// ConnMaxLifetime recycles connections older than this. Default: 30m
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig holds the stats cache settings: the Redis remote tier and the
// bounded in-process fallback tier.
type CacheConfig struct {
	// RedisAddr is the Redis host:port. Empty runs local-only, which is a
	// supported degraded mode, not an error. Overridable via REDIS_ADDR.
	RedisAddr string `yaml:"redis_addr"`

	// RedisPassword authenticates against Redis when set.
	// Overridable via REDIS_PASSWORD.
	RedisPassword string `yaml:"redis_password"`

	// RedisDB selects the Redis logical database. Default: 0
	RedisDB int `yaml:"redis_db"`

	// KeyPrefix namespaces this application's keys in a shared Redis.
	// Default: "reviewpulse:stats:"
	KeyPrefix string `yaml:"key_prefix"`

	// LocalCapacity bounds the in-process fallback cache. Default: 1000
	LocalCapacity int `yaml:"local_capacity"`

	// LocalBackstopTTL ages out local entries stored without an explicit
	// TTL. Default: 1h
	LocalBackstopTTL Duration `yaml:"local_backstop_ttl"`
}

// ScrapeConfig holds the scrape orchestration settings.
type ScrapeConfig struct {
	// PagesPerProduct is how many listing pages to walk per product.
	// Default: 1
	PagesPerProduct int `yaml:"pages_per_product"`

	// PageParallelism bounds concurrent page fetches. Default: 3
	PageParallelism int `yaml:"page_parallelism"`

	// PageParam is the query parameter carrying the page number.
	// Default: "page"
	PageParam string `yaml:"page_param"`
}

// SelectorsConfig holds the CSS selectors locating review fields in the
// scraped markup. Sites change their markup; keeping selectors in the config
// file means a redeploy, not a rebuild, when they do.
type SelectorsConfig struct {
	Review     string `yaml:"review"`
	Author     string `yaml:"author"`
	Rating     string `yaml:"rating"`
	Body       string `yaml:"body"`
	Date       string `yaml:"date"`
	DateFormat string `yaml:"date_format"`
}

// ToParserConfig converts the YAML selector section into the parser's
// configuration type.
func (s SelectorsConfig) ToParserConfig() parser.SelectorConfig {
	return parser.SelectorConfig{
		ReviewSelector: s.Review,
		AuthorSelector: s.Author,
		RatingSelector: s.Rating,
		BodySelector:   s.Body,
		DateSelector:   s.Date,
		DateFormat:     s.DateFormat,
	}
}

// Default returns the production defaults for every section.
func Default() App {
	sel := parser.DefaultSelectors()
	return App{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(10 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration(30 * time.Minute),
		},
		Cache: CacheConfig{
			KeyPrefix:        "reviewpulse:stats:",
			LocalCapacity:    1000,
			LocalBackstopTTL: Duration(time.Hour),
		},
		Scrape: ScrapeConfig{
			PagesPerProduct: 1,
			PageParallelism: 3,
			PageParam:       "page",
		},
		Selectors: SelectorsConfig{
			Review:     sel.ReviewSelector,
			Author:     sel.AuthorSelector,
			Rating:     sel.RatingSelector,
			Body:       sel.BodySelector,
			Date:       sel.DateSelector,
			DateFormat: sel.DateFormat,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies the
// environment overrides. Unknown YAML keys are rejected so typos surface at
// startup instead of silently falling back to defaults.
func Load(path string) (*App, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by CONFIG_FILE, or the defaults (plus
// environment overrides) when no file is configured.
func LoadFromEnv() (*App, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return Load(path)
	}
	cfg := Default()
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (a *App) applyEnvOverrides() {
	a.Server.Addr = pkgconfig.GetEnvString("SERVER_ADDR", a.Server.Addr)
	a.Database.Driver = pkgconfig.GetEnvString("DATABASE_DRIVER", a.Database.Driver)
	a.Database.DSN = pkgconfig.GetEnvString("DATABASE_URL", a.Database.DSN)
	a.Cache.RedisAddr = pkgconfig.GetEnvString("REDIS_ADDR", a.Cache.RedisAddr)
	a.Cache.RedisPassword = pkgconfig.GetEnvString("REDIS_PASSWORD", a.Cache.RedisPassword)
}

// Validate checks the configuration for values that would misbehave at
// runtime. The database DSN is not required here: the worker health server
// starts before the pool, and the API reports a missing DSN through its own
// startup error.
func (a *App) Validate() error {
	if a.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	if a.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive, got %v", a.Server.ShutdownTimeout.Std())
	}
	if a.Database.Driver != DriverPostgres && a.Database.Driver != DriverSQLite {
		return fmt.Errorf("database driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, a.Database.Driver)
	}
	if a.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database max open conns must be at least 1, got %d", a.Database.MaxOpenConns)
	}
	if a.Database.MaxIdleConns < 0 || a.Database.MaxIdleConns > a.Database.MaxOpenConns {
		return fmt.Errorf("database max idle conns must be between 0 and max open conns, got %d", a.Database.MaxIdleConns)
	}
	if a.Cache.LocalCapacity < 1 {
		return fmt.Errorf("cache local capacity must be at least 1, got %d", a.Cache.LocalCapacity)
	}
	if a.Scrape.PagesPerProduct < 1 {
		return fmt.Errorf("scrape pages per product must be at least 1, got %d", a.Scrape.PagesPerProduct)
	}
	if a.Scrape.PageParallelism < 1 {
		return fmt.Errorf("scrape page parallelism must be at least 1, got %d", a.Scrape.PageParallelism)
	}
	sel := a.Selectors.ToParserConfig()
	if err := sel.Validate(); err != nil {
		return fmt.Errorf("selectors: %w", err)
	}
	return nil
}
