package repository

import (
	"context"
	"time"

	"review-pulse/internal/domain/entity"
)

// StatFilter narrows stat record deletion. Nil fields match everything, so the
// zero value matches all records of all types.
type StatFilter struct {
	// StatsType matches records of one computation type when non-nil.
	StatsType *string
	// Identifier matches records for one subject when non-nil.
	Identifier *string
}

// StatKey identifies one stored record without its payload.
type StatKey struct {
	StatsType  string
	Identifier string
}

// StatRepository is the durable middle tier of the stats resolver.
// (stats_type, identifier) is unique: Upsert replaces in place.
type StatRepository interface {
	// FindFresh retrieves the record for (statsType, identifier) only if it
	// was computed within maxAge of now. Returns (nil, nil) when the record
	// is absent or stale.
	FindFresh(ctx context.Context, statsType, identifier string, maxAge time.Duration, now time.Time) (*entity.StatRecord, error)
	// Upsert stores a computed result, replacing any previous record for the
	// same (stats_type, identifier) key.
	Upsert(ctx context.Context, record *entity.StatRecord) error
	// ListMatching returns the keys of records matching the filter, without
	// payloads. Callers enumerate cache keys for eviction before a delete.
	ListMatching(ctx context.Context, filter StatFilter) ([]StatKey, error)
	// DeleteMatching removes records matching the filter and returns the
	// number deleted.
	DeleteMatching(ctx context.Context, filter StatFilter) (int64, error)
	// DeleteExpired removes records whose expires_at is before cutoff and
	// returns the number deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	// DeleteAgedOut removes records whose computed_at is before cutoff,
	// regardless of expires_at, and returns the number deleted.
	DeleteAgedOut(ctx context.Context, cutoff time.Time) (int64, error)
	// ListDistinctTypes returns the distinct stats_type values currently stored.
	ListDistinctTypes(ctx context.Context) ([]string, error)
}
