package entity

import "time"

// StatRecord is a timestamped, durably stored result of an expensive aggregation,
// keyed by computation type and subject identifier. (StatsType, Identifier) is a
// unique key: the store upserts, it never duplicates rows.
//
// Freshness and expiry are two independent windows:
//   - freshness (max_age) is evaluated at read time against ComputedAt
//   - ExpiresAt bounds the record's lifetime for the expiration sweep
type StatRecord struct {
	ID         int64
	StatsType  string
	Identifier string
	Payload    []byte
	ComputedAt time.Time
	ExpiresAt  time.Time
}

// IsFresh reports whether the record was computed within maxAge of now.
// Freshness is evaluated at read time, not write time.
func (r *StatRecord) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(r.ComputedAt) <= maxAge
}

// IsExpired reports whether the record is past its absolute expiry.
func (r *StatRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
