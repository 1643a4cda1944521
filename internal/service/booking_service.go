package service

import (
	"context"
	"time"

	"lendshare/internal/domain"
	"lendshare/internal/metrics"
	"lendshare/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking lifecycle: the creation guard, the
// approval state machine and the state-bucket listing queries. It keeps no
// state of its own; everything durable lives in the store.
type BookingService struct {
	store   domain.Store
	overlap domain.OverlapPolicy
	now     func() time.Time
	logger  *zerolog.Logger
}

func NewBookingService(store domain.Store, overlap domain.OverlapPolicy, logger *zerolog.Logger) *BookingService {
	if overlap == nil {
		overlap = domain.AllowAllOverlaps()
	}
	return &BookingService{
		store:   store,
		overlap: overlap,
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock overrides the service clock. Tests use this to pin "now".
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// CreateBooking validates a booking request and persists it in WAITING
// status. Self-booking is permitted, and nothing prevents two bookings on
// the same item and interval beyond the configured overlap policy.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	booker, err := s.store.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	if booker == nil {
		return nil, domain.NotFound("user not found: %d", bookerID)
	}

	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("item not found: %d", itemID)
	}

	if !item.Available {
		return nil, domain.NotAvailable(domain.ReasonItemUnavailable, "item is not available: %d", itemID)
	}

	if !end.After(start) {
		return nil, domain.ConditionsNotMet("booking end must be after start")
	}

	if err := s.overlap.Check(ctx, itemID, start, end); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Start:      start,
		End:        end,
		ItemID:     item.ID,
		ItemName:   item.Name,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		Status:     models.StatusWaiting,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", booker.ID).
		Msg("booking created")
	metrics.IncBookingCreated()

	return booking, nil
}

// SetApproval moves a booking to APPROVED or REJECTED. Only the owner of
// the booked item may call it. Repeat invocations are not guarded; the
// last write wins, matching the historical behavior.
func (s *BookingService) SetApproval(ctx context.Context, callerID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFound("booking not found: %d", bookingID)
	}

	item, err := s.store.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("item not found: %d", booking.ItemID)
	}

	if callerID != item.OwnerID {
		return nil, domain.NotAvailable(domain.ReasonNotOwner, "only the item's owner can approve a booking")
	}

	status := models.StatusApproved
	if !approved {
		status = models.StatusRejected
	}
	if err := s.store.UpdateBookingStatus(ctx, booking.ID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("status", status.String()).
		Msg("booking approval set")
	metrics.IncBookingApproval(status.String())

	return booking, nil
}

// GetBooking returns a booking to its booker or the item's owner. Anyone
// else gets NotFound, deliberately indistinguishable from a missing
// booking.
func (s *BookingService) GetBooking(ctx context.Context, callerID, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFound("booking not found: %d", bookingID)
	}

	item, err := s.store.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("item not found: %d", booking.ItemID)
	}

	if callerID != item.OwnerID && callerID != booking.BookerID {
		return nil, domain.NotFound("booking not found: %d", bookingID)
	}

	return booking, nil
}

// ListByState lists the caller's own bookings in the given state bucket,
// sorted by start descending.
func (s *BookingService) ListByState(ctx context.Context, userID int64, state string) ([]*models.Booking, error) {
	parsed, err := models.ParseState(state)
	if err != nil {
		return nil, domain.InvalidArgument("%s", err.Error())
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.store.ListBookingsByBooker(ctx, userID, parsed, s.now())
}

// ListByOwnerState lists bookings on items the caller owns, sorted by
// start descending.
func (s *BookingService) ListByOwnerState(ctx context.Context, ownerID int64, state string) ([]*models.Booking, error) {
	parsed, err := models.ParseState(state)
	if err != nil {
		return nil, domain.InvalidArgument("%s", err.Error())
	}

	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	return s.store.ListBookingsByOwner(ctx, ownerID, parsed, s.now())
}

// ListRange returns bookings starting within [from, to), oldest first.
// The admin export is the only consumer.
func (s *BookingService) ListRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	return s.store.ListBookingsInRange(ctx, from, to)
}

func (s *BookingService) requireUser(ctx context.Context, userID int64) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NotFound("user not found: %d", userID)
	}
	return nil
}
