package service

import (
	"context"
	"io"
	"testing"
	"time"

	"lendshare/internal/database"
	"lendshare/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testNow is the pinned clock every service test runs against.
var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func setupStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *database.DB, email, name string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: name}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func seedItem(t *testing.T, db *database.DB, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, Description: name + " description", Available: available, OwnerID: ownerID}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func seedBooking(t *testing.T, db *database.DB, itemID, bookerID int64, start, end time.Time, status models.Status) *models.Booking {
	t.Helper()
	booking := &models.Booking{Start: start, End: end, ItemID: itemID, BookerID: bookerID, Status: status}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
	return booking
}
