// Package cache provides the tier-1 caching layer for computed statistics.
// It combines a remote Redis cache with a bounded in-process fallback behind a
// circuit breaker, so cache reads and writes keep working when Redis is down.
//
// Read policy: a remote transport error counts as a circuit failure and falls
// through to the local tier. A deserialization failure of a successfully
// fetched remote value counts as a miss, not a circuit failure, and the
// corrupt entry is purged.
//
// Write policy: Set always writes the local tier, and additionally attempts
// the remote write while the circuit permits it. This is dual-write for
// resiliency, not consistency.
package cache

import (
	"errors"
	"time"
)

// ErrMiss indicates that a key was not present in the remote cache.
// It is distinct from transport errors, which count against the circuit.
var ErrMiss = errors.New("cache miss")

// Stats is a point-in-time snapshot of cache behavior for the monitoring surface.
type Stats struct {
	RemoteHits      uint64  `json:"remote_hits"`
	RemoteMisses    uint64  `json:"remote_misses"`
	LocalHits       uint64  `json:"local_hits"`
	LocalMisses     uint64  `json:"local_misses"`
	HitRatio        float64 `json:"hit_ratio"`
	CircuitState    string  `json:"circuit_state"`
	RemoteAvailable bool    `json:"remote_available"`
}

// Entry is a value stored in the local fallback tier together with its
// absolute expiry. A zero ExpiresAt means the entry only ages out via the
// LRU backstop TTL.
type Entry struct {
	Value     []byte
	ExpiresAt time.Time
}

// expired reports whether the entry is past its expiry at the given instant.
// The boundary itself is a miss: an entry with ttl=t is retrievable at t-ε
// and gone at t.
func (e Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}
