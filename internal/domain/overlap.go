package domain

import (
	"context"
	"time"
)

// OverlapPolicy decides whether a new booking may be created for an item
// over [start, end). The shipped policy allows everything: the service has
// never enforced one-booking-per-slot, and keeping the decision behind an
// interface keeps that gap visible instead of baked into the call sites.
type OverlapPolicy interface {
	Check(ctx context.Context, itemID int64, start, end time.Time) error
}

type allowAllOverlaps struct{}

func (allowAllOverlaps) Check(ctx context.Context, itemID int64, start, end time.Time) error {
	return nil
}

// AllowAllOverlaps returns the default policy: concurrent bookings on the
// same item and interval are permitted.
func AllowAllOverlaps() OverlapPolicy {
	return allowAllOverlaps{}
}
