package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"review-pulse/internal/resilience/circuitbreaker"
)

// Config holds the configuration for a CircuitBreakerCache.
type Config struct {
	// LocalCapacity bounds the in-process fallback cache.
	// Default: 1000 entries
	LocalCapacity int

	// LocalBackstopTTL ages out local entries stored without an explicit TTL.
	// Default: 1 hour
	LocalBackstopTTL time.Duration

	// Breaker configures the circuit guarding the remote tier.
	// Default: RemoteCacheConfig (3 consecutive failures, 30s retry interval)
	Breaker circuitbreaker.Config
}

// DefaultConfig returns the production defaults for the cache façade.
func DefaultConfig() Config {
	return Config{
		LocalCapacity:    DefaultLocalCapacity,
		LocalBackstopTTL: DefaultLocalBackstopTTL,
		Breaker:          circuitbreaker.RemoteCacheConfig(),
	}
}

// CircuitBreakerCache is a get/set/delete façade over a remote cache with a
// bounded in-process fallback. The remote tier sits behind a circuit breaker:
// after three consecutive transport failures the remote is skipped entirely
// until a probe succeeds, and callers are served from the local tier.
//
// The façade never surfaces remote unavailability to callers; a degraded
// backend only shows up as reduced hit ratio and in Stats().
type CircuitBreakerCache struct {
	remote RemoteCache
	local  *LocalCache
	cb     *circuitbreaker.CircuitBreaker
	logger *slog.Logger

	remoteHits   atomic.Uint64
	remoteMisses atomic.Uint64
	localHits    atomic.Uint64
	localMisses  atomic.Uint64
}

// New creates a CircuitBreakerCache over the given remote tier.
// remote may be nil, in which case only the local tier is used (degraded but
// functional, e.g. when no Redis is configured).
func New(remote RemoteCache, cfg Config, logger *slog.Logger) *CircuitBreakerCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &CircuitBreakerCache{
		remote: remote,
		local:  NewLocalCache(cfg.LocalCapacity, cfg.LocalBackstopTTL),
		cb:     circuitbreaker.New(cfg.Breaker),
		logger: logger,
	}
}

// Get returns the value stored under key, consulting the remote tier first
// while the circuit permits it and falling back to the local tier.
// A remote transport error is counted by the circuit and logged at warning
// level; it is never surfaced to the caller.
func (c *CircuitBreakerCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.remote != nil {
		res, err := c.cb.Execute(func() (interface{}, error) {
			data, err := c.remote.Get(ctx, key)
			if err != nil {
				if errors.Is(err, ErrMiss) {
					// A clean miss is a healthy remote, not a circuit failure.
					return nil, nil
				}
				return nil, err
			}
			return data, nil
		})
		switch {
		case err == nil:
			if data, ok := res.([]byte); ok {
				c.remoteHits.Add(1)
				recordTierLookup(tierRemote, resultHit)
				return data, true
			}
			c.remoteMisses.Add(1)
			recordTierLookup(tierRemote, resultMiss)
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			// Circuit open: remote skipped entirely.
			recordTierLookup(tierRemote, resultSkipped)
		default:
			c.logger.Warn("remote cache get failed, falling back to local",
				slog.String("key", key),
				slog.Any("error", err))
			recordTierLookup(tierRemote, resultError)
		}
	}

	if data, ok := c.local.Get(key); ok {
		c.localHits.Add(1)
		recordTierLookup(tierLocal, resultHit)
		return data, true
	}
	c.localMisses.Add(1)
	recordTierLookup(tierLocal, resultMiss)
	return nil, false
}

// Set stores value under key in the local tier and, while the circuit permits
// it, in the remote tier as well. The local write makes Set-then-Get hold even
// with the remote down; the remote write is best effort.
// Returns true when the value was stored in at least one tier.
func (c *CircuitBreakerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	c.local.Set(key, value, ttl)

	if c.remote != nil {
		_, err := c.cb.Execute(func() (interface{}, error) {
			return nil, c.remote.Set(ctx, key, value, ttl)
		})
		if err != nil && !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("remote cache set failed, value kept locally",
				slog.String("key", key),
				slog.Any("error", err))
		}
	}
	return true
}

// Delete evicts key from both tiers. Returns true if the key was removed from
// at least one tier.
func (c *CircuitBreakerCache) Delete(ctx context.Context, key string) bool {
	removed := c.local.Delete(key)

	if c.remote != nil {
		_, err := c.cb.Execute(func() (interface{}, error) {
			return nil, c.remote.Delete(ctx, key)
		})
		if err == nil {
			removed = true
		} else if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("remote cache delete failed",
				slog.String("key", key),
				slog.Any("error", err))
		}
	}
	return removed
}

// GetJSON reads the value under key and unmarshals it into dest.
// A payload that fails to unmarshal is purged from both tiers and reported as
// a miss; it does not count against the circuit.
func (c *CircuitBreakerCache) GetJSON(ctx context.Context, key string, dest any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("corrupt cache payload purged",
			slog.String("key", key),
			slog.Any("error", err))
		c.Delete(ctx, key)
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key with the given TTL.
// Returns false if v cannot be marshaled.
func (c *CircuitBreakerCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to marshal cache payload",
			slog.String("key", key),
			slog.Any("error", err))
		return false
	}
	return c.Set(ctx, key, data, ttl)
}

// Available reports whether the remote tier is currently being used.
// It turns false once the circuit opens and true again after a successful probe.
func (c *CircuitBreakerCache) Available() bool {
	if c.remote == nil {
		return false
	}
	return c.cb.State() == gobreaker.StateClosed
}

// Stats returns cumulative hit/miss counters per tier plus the circuit state.
func (c *CircuitBreakerCache) Stats() Stats {
	s := Stats{
		RemoteHits:      c.remoteHits.Load(),
		RemoteMisses:    c.remoteMisses.Load(),
		LocalHits:       c.localHits.Load(),
		LocalMisses:     c.localMisses.Load(),
		CircuitState:    c.cb.State().String(),
		RemoteAvailable: c.Available(),
	}
	hits := s.RemoteHits + s.LocalHits
	// Local lookups only happen after a remote miss or failure, so the
	// denominator is the number of Get calls, not the sum over tiers.
	total := hits + s.LocalMisses
	if total > 0 {
		s.HitRatio = float64(hits) / float64(total)
	}
	return s
}
