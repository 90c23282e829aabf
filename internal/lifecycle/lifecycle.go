// Package lifecycle holds the pure temporal predicates over a listing
// snapshot. There is no background job that closes listings; every caller
// re-derives openness from the stored deadline and the current instant.
package lifecycle

import (
	"time"

	"github.com/sealabid/sealabid/internal/model"
)

// IsOpen reports whether the listing accepts envelope writes at now.
// The boundary instant now == ClosesAt counts as closed.
func IsOpen(l *model.Listing, now time.Time) bool {
	return now.Before(l.ClosesAt)
}

// CanDecide reports whether the seller may currently decide the listing:
// the deadline has passed and no decision has been committed.
func CanDecide(l *model.Listing, now time.Time) bool {
	return !IsOpen(l, now) && l.Status == model.ListingActive
}
