// Package fetcher implements resilient HTTP page acquisition for review
// scraping. It combines politeness delays, identity rotation (user agent and
// optional proxy), retry with exponential backoff, and CAPTCHA detection.
package fetcher

import (
	"fmt"
	"time"

	"review-pulse/internal/resilience/retry"
	pkgconfig "review-pulse/pkg/config"
)

// DefaultCaptchaIndicators is the default list of anti-bot indicator phrases.
// A 2xx body containing any of them (case-insensitive) is treated as a
// challenge page, not content. Configurable via FETCH_CAPTCHA_INDICATORS.
var DefaultCaptchaIndicators = []string{
	"captcha",
	"verify you are human",
	"security check",
	"are you a robot",
	"unusual traffic",
}

// Config holds the configuration for the page fetcher.
//
// Politeness settings:
//   - MinDelay/MaxDelay: uniform-random sleep before every attempt. This is
//     politeness toward the target site, not backoff; backoff is separate.
//   - PerHostRPS: additional per-host rate limit across concurrent fetches.
//
// Security settings:
//   - DenyPrivateIPs: blocks URLs resolving to private ranges (SSRF)
//   - MaxBodySize: rejects oversized responses during reading
//   - MaxRedirects: bounds redirect chains; each target is re-validated
type Config struct {
	// MinDelay is the lower bound of the politeness delay.
	// Default: 1s
	MinDelay time.Duration

	// MaxDelay is the upper bound of the politeness delay.
	// Default: 3s
	MaxDelay time.Duration

	// AttemptTimeout is the per-attempt deadline. Expiry counts as a
	// transient failure, identical to a connection error.
	// Default: 15s
	AttemptTimeout time.Duration

	// MaxBodySize is the maximum response body size in bytes.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects bounds the number of redirects followed per request.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs blocks targets resolving to private/loopback ranges.
	// Default: true
	DenyPrivateIPs bool

	// PerHostRPS rate-limits attempts per target host. Zero disables it.
	// Default: 0.5 (one request per host every 2 seconds)
	PerHostRPS float64

	// Proxies is the optional proxy rotation pool. Empty means direct.
	Proxies []string

	// UserAgents overrides the built-in user agent pool when non-empty.
	UserAgents []string

	// CaptchaIndicators overrides DefaultCaptchaIndicators when non-empty.
	CaptchaIndicators []string

	// Backoff is the retry policy for transient failures.
	// Default: retry.PageFetchConfig (base 4s, x2, cap 60s, 5 attempts)
	Backoff retry.Config
}

// DefaultConfig returns the production defaults for page fetching.
func DefaultConfig() Config {
	return Config{
		MinDelay:          1 * time.Second,
		MaxDelay:          3 * time.Second,
		AttemptTimeout:    15 * time.Second,
		MaxBodySize:       10 * 1024 * 1024,
		MaxRedirects:      5,
		DenyPrivateIPs:    true,
		PerHostRPS:        0.5,
		CaptchaIndicators: DefaultCaptchaIndicators,
		Backoff:           retry.PageFetchConfig(),
	}
}

// LoadConfigFromEnv builds a Config from environment variables, falling back
// to defaults for anything unset or invalid.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.MinDelay = pkgconfig.GetEnvDuration("FETCH_MIN_DELAY", cfg.MinDelay)
	cfg.MaxDelay = pkgconfig.GetEnvDuration("FETCH_MAX_DELAY", cfg.MaxDelay)
	cfg.AttemptTimeout = pkgconfig.GetEnvDuration("FETCH_ATTEMPT_TIMEOUT", cfg.AttemptTimeout)
	cfg.MaxBodySize = int64(pkgconfig.GetEnvInt("FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize)))
	cfg.MaxRedirects = pkgconfig.GetEnvInt("FETCH_MAX_REDIRECTS", cfg.MaxRedirects)
	cfg.DenyPrivateIPs = pkgconfig.GetEnvBool("FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)
	cfg.Proxies = pkgconfig.GetEnvStringList("FETCH_PROXIES", cfg.Proxies)
	cfg.UserAgents = pkgconfig.GetEnvStringList("FETCH_USER_AGENTS", cfg.UserAgents)
	cfg.CaptchaIndicators = pkgconfig.GetEnvStringList("FETCH_CAPTCHA_INDICATORS", cfg.CaptchaIndicators)
	return cfg
}

// Validate checks that the configuration values are safe to run with.
func (c *Config) Validate() error {
	if c.MinDelay < 0 {
		return fmt.Errorf("min delay must be non-negative, got %v", c.MinDelay)
	}
	if c.MaxDelay < c.MinDelay {
		return fmt.Errorf("max delay (%v) must be >= min delay (%v)", c.MaxDelay, c.MinDelay)
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("attempt timeout must be positive, got %v", c.AttemptTimeout)
	}
	if c.MaxBodySize < 1024 || c.MaxBodySize > 100*1024*1024 {
		return fmt.Errorf("max body size must be between 1KB and 100MB, got %d", c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	if c.Backoff.MaxAttempts < 1 {
		return fmt.Errorf("backoff max attempts must be at least 1, got %d", c.Backoff.MaxAttempts)
	}
	return nil
}
