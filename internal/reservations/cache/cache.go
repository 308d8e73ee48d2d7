// Package cache maintains the availability projection: the set of calendar
// days occupied by any active reservation. The projection is derived state,
// rebuildable at any time from the reservation store, and expires on a TTL so
// days freed by elapsed reservations eventually drop out.
package cache

import (
	"context"
	"time"
)

// AvailabilityCache is the occupied-day set. Implementations must make each
// call atomic with respect to concurrent reads; the booking engine's lock
// already serializes writers.
type AvailabilityCache interface {
	IsInitialized(ctx context.Context) (bool, error)
	// Initialize replaces the whole occupied set and resets the TTL.
	Initialize(ctx context.Context, dates []time.Time) error
	AddDates(ctx context.Context, dates []time.Time) error
	RemoveDates(ctx context.Context, dates []time.Time) error
	// OccupiedDates returns the current occupied set keyed by canonical day.
	// An uninitialized or expired cache yields an empty set, not an error.
	OccupiedDates(ctx context.Context) (map[time.Time]struct{}, error)
}
