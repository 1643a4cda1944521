package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lendshare/internal/models"
)

// bookingSelect joins in the item and booker names so listings can be
// rendered without extra lookups.
const bookingSelect = `
    SELECT b.id, b.start_at, b.end_at, b.item_id, i.name, b.booker_id, u.name, b.status
    FROM bookings b
    JOIN items i ON i.id = b.item_id
    JOIN users u ON u.id = b.booker_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_at, end_at, item_id, booker_id, status)
              VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		booking.Start.UTC(), booking.End.UTC(), booking.ItemID, booking.BookerID, booking.Status)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.id = ?`

	var booking models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID, &booking.Start, &booking.End,
		&booking.ItemID, &booking.ItemName,
		&booking.BookerID, &booking.BookerName, &booking.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.Status) error {
	_, err := db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// stateClause renders the WHERE fragment and args for a state bucket.
// CURRENT keeps the asymmetric boundary: start <= now, end > now.
func stateClause(state models.State, now time.Time) (string, []any) {
	now = now.UTC()
	switch state {
	case models.StatePast:
		return ` AND b.end_at < ?`, []any{now}
	case models.StateFuture:
		return ` AND b.start_at > ?`, []any{now}
	case models.StateCurrent:
		return ` AND b.start_at <= ? AND b.end_at > ?`, []any{now, now}
	case models.StateWaiting:
		return ` AND b.status = ?`, []any{models.StatusWaiting}
	case models.StateRejected:
		return ` AND b.status = ?`, []any{models.StatusRejected}
	default:
		return ``, nil
	}
}

func (db *DB) ListBookingsByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time) ([]*models.Booking, error) {
	clause, extra := stateClause(state, now)
	query := bookingSelect + ` WHERE b.booker_id = ?` + clause + ` ORDER BY b.start_at DESC`
	args := append([]any{bookerID}, extra...)
	return db.queryBookings(ctx, query, args...)
}

func (db *DB) ListBookingsByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time) ([]*models.Booking, error) {
	clause, extra := stateClause(state, now)
	query := bookingSelect + ` WHERE i.owner_id = ?` + clause + ` ORDER BY b.start_at DESC`
	args := append([]any{ownerID}, extra...)
	return db.queryBookings(ctx, query, args...)
}

func (db *DB) ListBookingsInRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	query := bookingSelect + ` WHERE b.start_at >= ? AND b.start_at < ? ORDER BY b.start_at`
	return db.queryBookings(ctx, query, from.UTC(), to.UTC())
}

// CurrentBookingsForItems returns, per item, the approved booking whose
// interval contains now, keeping the latest-starting one on ties.
func (db *DB) CurrentBookingsForItems(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return map[int64]*models.Booking{}, nil
	}
	marks, args := placeholders(itemIDs)
	query := bookingSelect + ` WHERE b.item_id IN (` + marks + `)
        AND b.status = ? AND b.start_at <= ? AND b.end_at > ?
        ORDER BY b.item_id, b.start_at DESC`
	args = append(args, models.StatusApproved, now.UTC(), now.UTC())
	return db.firstBookingPerItem(ctx, query, args...)
}

// NextBookingsForItems returns, per item, the earliest-starting approved
// booking strictly in the future.
func (db *DB) NextBookingsForItems(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return map[int64]*models.Booking{}, nil
	}
	marks, args := placeholders(itemIDs)
	query := bookingSelect + ` WHERE b.item_id IN (` + marks + `)
        AND b.status = ? AND b.start_at > ?
        ORDER BY b.item_id, b.start_at ASC`
	args = append(args, models.StatusApproved, now.UTC())
	return db.firstBookingPerItem(ctx, query, args...)
}

func (db *DB) HasCompletedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT EXISTS(
        SELECT 1 FROM bookings
        WHERE booker_id = ? AND item_id = ? AND status = ? AND end_at < ?)`

	var exists bool
	err := db.QueryRowContext(ctx, query, bookerID, itemID, models.StatusApproved, now.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check completed booking: %w", err)
	}
	return exists, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID, &b.Start, &b.End,
			&b.ItemID, &b.ItemName,
			&b.BookerID, &b.BookerName, &b.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

func (db *DB) firstBookingPerItem(ctx context.Context, query string, args ...any) (map[int64]*models.Booking, error) {
	bookings, err := db.queryBookings(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]*models.Booking, len(bookings))
	for _, b := range bookings {
		if _, ok := result[b.ItemID]; !ok {
			result[b.ItemID] = b
		}
	}
	return result, nil
}
