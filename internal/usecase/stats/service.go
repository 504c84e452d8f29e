package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/infra/cache"
	"review-pulse/internal/repository"
)

// cacheKeyPrefix namespaces resolver entries in the shared cache.
const cacheKeyPrefix = "stats"

// identifierSeparator joins multi-subject identifiers, e.g. "42,77".
const identifierSeparator = ","

// maxRecordAge is the hard ceiling on durable record lifetime: the sweep
// removes records computed more than this long ago regardless of expires_at.
const maxRecordAge = 30 * 24 * time.Hour

// ComputeFn produces a stats payload from scratch. It is invoked only when
// both cache tiers miss, and must be safe to run concurrently for the same
// key: the durable upsert makes duplicate computation harmless.
type ComputeFn func(ctx context.Context) (any, error)

// Options controls one Resolve call.
type Options struct {
	// MaxAge bounds durable-tier freshness: records computed longer ago
	// are treated as absent. Zero means DefaultMaxAge.
	MaxAge time.Duration

	// TTL is the cache lifetime and durable expiry for a newly computed
	// payload. Zero means DefaultTTL.
	TTL time.Duration

	// ForceRefresh skips both read tiers and recomputes unconditionally.
	// The fresh result still backfills both tiers.
	ForceRefresh bool
}

// Default freshness windows.
const (
	DefaultMaxAge = 6 * time.Hour
	DefaultTTL    = 24 * time.Hour
)

// Service resolves stats through three tiers: the circuit-breaker cache, the
// durable StatRecord store, and the compute function. Lower tiers backfill
// upper tiers so repeated reads get cheaper.
//
// Failures writing to either storage tier are logged and absorbed; the caller
// always receives the freshly computed payload.
type Service struct {
	Cache  *cache.CircuitBreakerCache
	Repo   repository.StatRepository
	Logger *slog.Logger

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates a stats resolver over the given cache and durable store.
func NewService(c *cache.CircuitBreakerCache, repo repository.StatRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Cache:  c,
		Repo:   repo,
		Logger: logger,
		Now:    time.Now,
	}
}

// canonicalIdentifier normalizes a multi-subject identifier: parts are
// trimmed and sorted so subject order never changes identity. Both storage
// tiers key on this form; the raw caller spelling is never stored.
func canonicalIdentifier(identifier string) string {
	parts := strings.Split(identifier, identifierSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	sort.Strings(parts)
	return strings.Join(parts, identifierSeparator)
}

// CacheKey builds the cache key for (statsType, identifier).
// Multi-subject identifiers are canonicalized, so subject order never changes
// key identity: ("compare", "9,3") and ("compare", "3,9") collide on purpose.
func CacheKey(statsType, identifier string) string {
	return cacheKeyPrefix + ":" + statsType + ":" + canonicalIdentifier(identifier)
}

// Resolve returns the payload for (statsType, identifier), consulting the fast
// cache, then the durable store (fresh within MaxAge), then computeFn.
//
// Durable hits backfill the cache; computed results are upserted durably and
// backfill the cache. Raw payload bytes are returned; callers unmarshal into
// their own result types.
func (s *Service) Resolve(ctx context.Context, statsType, identifier string, computeFn ComputeFn, opts Options) ([]byte, error) {
	if statsType == "" {
		return nil, ErrInvalidStatsType
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	// The canonical form keys the durable store too: "9,3" and "3,9" must
	// resolve to one record, not a cache hit sharing two durable rows.
	identifier = canonicalIdentifier(identifier)
	key := CacheKey(statsType, identifier)

	if !opts.ForceRefresh {
		if data, ok := s.Cache.Get(ctx, key); ok {
			recordResolution(tierCache)
			return data, nil
		}

		record, err := s.Repo.FindFresh(ctx, statsType, identifier, opts.MaxAge, s.Now())
		if err != nil {
			// A broken durable tier degrades to recomputation.
			s.Logger.Warn("durable stats lookup failed, recomputing",
				slog.String("stats_type", statsType),
				slog.String("identifier", identifier),
				slog.Any("error", err))
		} else if record != nil {
			s.Cache.Set(ctx, key, record.Payload, opts.TTL)
			recordResolution(tierDurable)
			return record.Payload, nil
		}
	}

	payload, err := s.compute(ctx, statsType, identifier, computeFn, opts, key)
	if err != nil {
		return nil, err
	}
	recordResolution(tierCompute)
	return payload, nil
}

// compute runs computeFn and backfills both storage tiers.
func (s *Service) compute(ctx context.Context, statsType, identifier string, computeFn ComputeFn, opts Options, key string) ([]byte, error) {
	value, err := computeFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrComputeFailed, statsType, identifier, err)
	}
	payload, err := marshalPayload(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrComputeFailed, statsType, identifier, err)
	}

	now := s.Now()
	record := &entity.StatRecord{
		StatsType:  statsType,
		Identifier: identifier,
		Payload:    payload,
		ComputedAt: now,
		ExpiresAt:  now.Add(opts.TTL),
	}
	if err := s.Repo.Upsert(ctx, record); err != nil {
		s.Logger.Warn("durable stats upsert failed, result served uncached",
			slog.String("stats_type", statsType),
			slog.String("identifier", identifier),
			slog.Any("error", err))
	}
	s.Cache.Set(ctx, key, payload, opts.TTL)

	s.Logger.Debug("stats computed",
		slog.String("stats_type", statsType),
		slog.String("identifier", identifier),
		slog.Int("payload_bytes", len(payload)))
	return payload, nil
}

// Invalidate removes stored stats matching the filter. Nil filter fields widen
// the match: Invalidate(nil, nil) clears everything.
// Durable rows are deleted first, then matching cache entries are evicted so
// the next Resolve recomputes. Returns the number of durable rows removed.
func (s *Service) Invalidate(ctx context.Context, statsType, identifier *string) (int64, error) {
	if identifier != nil {
		canonical := canonicalIdentifier(*identifier)
		identifier = &canonical
	}
	filter := repository.StatFilter{
		StatsType:  statsType,
		Identifier: identifier,
	}

	// Cache keys to evict must be collected before the durable delete:
	// enumerating matches afterwards would see nothing.
	var evictKeys []string
	if matches, err := s.Repo.ListMatching(ctx, filter); err != nil {
		s.Logger.Warn("listing stats for cache eviction failed, relying on TTL",
			slog.Any("error", err))
	} else {
		for _, m := range matches {
			evictKeys = append(evictKeys, CacheKey(m.StatsType, m.Identifier))
		}
	}
	// A cache entry can outlive its durable row when the upsert failed, so a
	// fully qualified filter evicts its key even without a matching row.
	if statsType != nil && identifier != nil {
		evictKeys = append(evictKeys, CacheKey(*statsType, *identifier))
	}

	deleted, err := s.Repo.DeleteMatching(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("invalidate stats: %w", err)
	}

	for _, key := range evictKeys {
		s.Cache.Delete(ctx, key)
	}

	s.Logger.Info("stats invalidated",
		slog.String("stats_type", strOrAll(statsType)),
		slog.String("identifier", strOrAll(identifier)),
		slog.Int64("durable_rows", deleted))
	return deleted, nil
}

// Types lists the distinct stats types currently stored durably.
func (s *Service) Types(ctx context.Context) ([]string, error) {
	types, err := s.Repo.ListDistinctTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stats types: %w", err)
	}
	return types, nil
}

// Sweep removes durable records past their expiry, plus anything computed more
// than 30 days ago regardless of expires_at. Returns the total rows removed.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	now := s.Now()

	expired, err := s.Repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("sweep expired stats: %w", err)
	}

	// The ceiling also catches records whose expires_at was set far in the
	// future by an older caller.
	aged, err := s.Repo.DeleteAgedOut(ctx, now.Add(-maxRecordAge))
	if err != nil {
		return expired, fmt.Errorf("sweep aged stats: %w", err)
	}

	if expired+aged > 0 {
		s.Logger.Info("stats sweep completed",
			slog.Int64("expired", expired),
			slog.Int64("aged_out", aged))
	}
	return expired + aged, nil
}

// marshalPayload serializes a compute result. Byte slices pass through so
// compute functions may pre-serialize.
func marshalPayload(value any) ([]byte, error) {
	if data, ok := value.([]byte); ok {
		return data, nil
	}
	return json.Marshal(value)
}

func strOrAll(s *string) string {
	if s == nil {
		return "*"
	}
	return *s
}
