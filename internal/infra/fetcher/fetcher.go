package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"review-pulse/internal/resilience/retry"
	"review-pulse/internal/usecase/scrape"
)

// PageFetcher implements scrape.PageFetcher with retry, identity rotation and
// CAPTCHA detection.
//
// One fetch call may take up to MaxDelay + the full backoff schedule before
// returning. No state persists across calls besides the rotating pools and
// per-host rate limiters.
//
// Thread safety: PageFetcher is safe for concurrent use.
type PageFetcher struct {
	config     Config
	userAgents *UserAgentPool
	proxies    *ProxyPool
	logger     *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rng      *rand.Rand
}

// New creates a PageFetcher with the given configuration.
// Returns an error if the configuration or proxy pool is invalid.
func New(cfg Config, logger *slog.Logger) (*PageFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fetcher config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	seed := time.Now().UnixNano()
	proxies, err := NewProxyPool(cfg.Proxies, seed+1)
	if err != nil {
		return nil, err
	}
	// #nosec G404 -- politeness jitter does not need cryptographic randomness.
	return &PageFetcher{
		config:     cfg,
		userAgents: NewUserAgentPool(cfg.UserAgents, seed),
		proxies:    proxies,
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
		rng:        rand.New(rand.NewSource(seed + 2)),
	}, nil
}

// Fetch retrieves the page at req.URL.
//
// Each attempt sleeps a uniform-random politeness delay, picks a fresh user
// agent (and proxy, when the pool is non-empty), and runs under its own
// deadline. Transient failures follow the configured backoff schedule;
// a CAPTCHA page aborts immediately.
//
// Failures map onto the scrape package sentinels:
//   - scrape.ErrRetryExhausted: every attempt failed transiently
//   - scrape.ErrCaptchaDetected: the target served a challenge page
//   - scrape.ErrFatalTransport: non-retryable failure (bad URL, 4xx, oversize)
func (f *PageFetcher) Fetch(ctx context.Context, req scrape.PageRequest) ([]byte, error) {
	target, err := buildURL(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scrape.ErrFatalTransport, err)
	}
	if err := validateURL(target.String(), f.config.DenyPrivateIPs); err != nil {
		return nil, fmt.Errorf("%w: %v", scrape.ErrFatalTransport, err)
	}

	limiter := f.limiterFor(target.Hostname())
	attempt := 0
	var body []byte

	err = retry.WithBackoff(ctx, f.config.Backoff, func() error {
		attempt++
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := f.politenessDelay(ctx); err != nil {
			return err
		}

		b, err := f.doAttempt(ctx, req, target, attempt)
		if err != nil {
			return err
		}
		body = b
		return nil
	})

	if err != nil {
		var captcha *captchaError
		switch {
		case errors.As(err, &captcha):
			recordFetch(resultCaptcha)
			f.logger.Warn("captcha challenge detected",
				slog.String("url", target.String()),
				slog.String("indicator", captcha.Indicator),
				slog.Int("attempt", attempt))
			return nil, fmt.Errorf("%w: indicator %q", scrape.ErrCaptchaDetected, captcha.Indicator)
		case ctx.Err() != nil:
			return nil, fmt.Errorf("fetch %s: %w", target, err)
		case retry.IsRetryable(err):
			recordFetch(resultExhausted)
			return nil, fmt.Errorf("%w: %s after %d attempts: %v",
				scrape.ErrRetryExhausted, target, attempt, err)
		default:
			recordFetch(resultFatal)
			return nil, fmt.Errorf("%w: %v", scrape.ErrFatalTransport, err)
		}
	}

	recordFetch(resultSuccess)
	f.logger.Debug("page fetched",
		slog.String("url", target.String()),
		slog.Int("attempts", attempt),
		slog.Int("bytes", len(body)))
	return body, nil
}

// doAttempt performs one GET under its own deadline and classifies the result.
func (f *PageFetcher) doAttempt(ctx context.Context, req scrape.PageRequest, target *url.URL, attempt int) ([]byte, error) {
	timeout := f.config.AttemptTimeout
	if req.AttemptTimeout > 0 {
		timeout = req.AttemptTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", f.userAgents.Next())
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	proxy := f.proxies.Next()
	client := f.newClient(proxy)

	f.logger.Debug("fetch attempt",
		slog.String("url", target.String()),
		slog.Int("attempt", attempt),
		slog.Bool("via_proxy", proxy != nil))

	resp, err := client.Do(httpReq)
	if err != nil {
		// Per-attempt deadline expiry is a transient failure like any other
		// network error; only caller cancellation aborts the schedule.
		if attemptCtx.Err() != nil && ctx.Err() == nil {
			return nil, &retry.HTTPError{
				StatusCode: http.StatusRequestTimeout,
				Message:    "attempt deadline exceeded",
			}
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("response exceeds %d bytes", f.config.MaxBodySize)
	}

	if indicator := f.captchaIndicator(body); indicator != "" {
		return nil, &captchaError{Indicator: indicator}
	}
	return body, nil
}

// politenessDelay sleeps a uniform-random duration in [MinDelay, MaxDelay].
func (f *PageFetcher) politenessDelay(ctx context.Context) error {
	span := f.config.MaxDelay - f.config.MinDelay
	delay := f.config.MinDelay
	if span > 0 {
		f.mu.Lock()
		delay += time.Duration(f.rng.Int63n(int64(span)))
		f.mu.Unlock()
	}
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// captchaIndicator returns the first configured indicator phrase found in the
// body (case-insensitive), or "" when the body looks like real content.
func (f *PageFetcher) captchaIndicator(body []byte) string {
	haystack := strings.ToLower(string(body))
	for _, indicator := range f.config.CaptchaIndicators {
		if strings.Contains(haystack, strings.ToLower(indicator)) {
			return indicator
		}
	}
	return ""
}

// limiterFor returns the per-host rate limiter, creating it on first use.
// Returns nil when per-host limiting is disabled.
func (f *PageFetcher) limiterFor(host string) *rate.Limiter {
	if f.config.PerHostRPS <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(f.config.PerHostRPS), 1)
		f.limiters[host] = limiter
	}
	return limiter
}

// newClient builds an HTTP client for one attempt, optionally routed through
// a proxy. Redirect targets are re-validated against the SSRF rules.
func (f *PageFetcher) newClient(proxy *url.URL) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return validateURL(req.URL.String(), f.config.DenyPrivateIPs)
		},
	}
}

// buildURL parses req.URL and appends req.Query.
func buildURL(req scrape.PageRequest) (*url.URL, error) {
	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if len(req.Query) > 0 {
		q := target.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		target.RawQuery = q.Encode()
	}
	return target, nil
}

// captchaError carries the matched indicator phrase through the retry layer.
type captchaError struct {
	Indicator string
}

func (e *captchaError) Error() string {
	return fmt.Sprintf("captcha indicator %q in response body", e.Indicator)
}
