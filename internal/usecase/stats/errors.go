// Package stats resolves expensive review aggregations through a tiered
// lookup: fast cache, durable store, then recomputation.
package stats

import "errors"

// Sentinel errors for stats resolver operations.
var (
	// ErrComputeFailed indicates that the compute function itself failed.
	// Storage failures never produce this; they are logged and absorbed.
	ErrComputeFailed = errors.New("stats computation failed")

	// ErrInvalidStatsType indicates an empty or malformed stats type.
	ErrInvalidStatsType = errors.New("invalid stats type")
)
