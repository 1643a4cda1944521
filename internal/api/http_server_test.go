package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"lendshare/internal/config"
	"lendshare/internal/database"
	"lendshare/internal/models"
	"lendshare/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	db      *database.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srv := NewHTTPServer(
		config.HTTPConfig{Port: 0},
		config.RateLimitConfig{},
		service.NewBookingService(db, nil, &logger),
		service.NewItemService(db, nil, &logger),
		service.NewUserService(db, &logger),
		service.NewRequestService(db, &logger),
		&logger,
	)
	return &testServer{handler: srv.Handler(), db: db}
}

func (ts *testServer) do(t *testing.T, method, path string, callerID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if callerID != 0 {
		req.Header.Set(userIDHeader, strconv.FormatInt(callerID, 10))
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func (ts *testServer) createUser(t *testing.T, email, name string) models.User {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/users", 0, map[string]string{"email": email, "name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.User](t, rec)
}

func (ts *testServer) createItem(t *testing.T, ownerID int64, name string, available bool) models.Item {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/items", ownerID, map[string]any{
		"name": name, "description": name + " description", "available": available,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Item](t, rec)
}

func (ts *testServer) createBooking(t *testing.T, bookerID, itemID int64, start, end time.Time) models.Booking {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/bookings", bookerID, map[string]any{
		"itemId": itemID, "start": start, "end": end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Booking](t, rec)
}

func TestBookingFlow(t *testing.T) {
	ts := newTestServer(t)

	owner := ts.createUser(t, "owner@example.com", "Owner")
	booker := ts.createUser(t, "booker@example.com", "Booker")
	item := ts.createItem(t, owner.ID, "Drill", true)

	start := time.Now().UTC().Truncate(time.Second).AddDate(0, 0, 1)
	booking := ts.createBooking(t, booker.ID, item.ID, start, start.AddDate(0, 0, 2))
	assert.Equal(t, models.StatusWaiting, booking.Status)
	assert.Equal(t, "Drill", booking.ItemName)

	// The new booking shows up for the booker in FUTURE and WAITING.
	for _, state := range []string{"", "ALL", "FUTURE", "WAITING"} {
		rec := ts.do(t, http.MethodGet, "/bookings?state="+state, booker.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]models.Booking](t, rec)
		require.Len(t, list, 1, "state %q", state)
	}

	// And for the owner through the owner listing.
	rec := ts.do(t, http.MethodGet, "/bookings/owner?state=WAITING", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ownerList := decode[[]models.Booking](t, rec)
	require.Len(t, ownerList, 1)

	// Approve and read it back.
	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", booking.ID), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[models.Booking](t, rec)
	assert.Equal(t, models.StatusApproved, approved.Status)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/bookings/%d", booking.ID), booker.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Booking](t, rec)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestBookingErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	owner := ts.createUser(t, "owner@example.com", "Owner")
	booker := ts.createUser(t, "booker@example.com", "Booker")
	item := ts.createItem(t, owner.ID, "Drill", true)
	offline := ts.createItem(t, owner.ID, "Broken saw", false)

	start := time.Now().UTC().Truncate(time.Second).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 2)

	t.Run("unknown booker is 404", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/bookings", 999, map[string]any{"itemId": item.ID, "start": start, "end": end})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown item is 404", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{"itemId": int64(999), "start": start, "end": end})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unavailable item is 400", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{"itemId": offline.ID, "start": start, "end": end})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inverted interval is 422", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{"itemId": item.ID, "start": end, "end": start})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "booking end must be after start", body["error"])
	})

	t.Run("unknown state token is 400", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/bookings?state=BOGUS", booker.ID, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[map[string]string](t, rec)
		assert.Contains(t, body["error"], "unknown state: BOGUS")
	})

	t.Run("approval by non-owner is 400", func(t *testing.T) {
		booking := ts.createBooking(t, booker.ID, item.ID, start, end)
		rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", booking.ID), booker.ID, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stranger read is 404", func(t *testing.T) {
		stranger := ts.createUser(t, "stranger@example.com", "Stranger")
		booking := ts.createBooking(t, booker.ID, item.ID, start, end)
		rec := ts.do(t, http.MethodGet, fmt.Sprintf("/bookings/%d", booking.ID), stranger.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing approved parameter is 400", func(t *testing.T) {
		booking := ts.createBooking(t, booker.ID, item.ID, start, end)
		rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/bookings/%d", booking.ID), owner.ID, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMissingSharerHeader(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/bookings", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "missing X-Sharer-User-Id header", body["error"])
}

func TestInvalidSharerHeader(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set(userIDHeader, "not-a-number")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t)

	user := ts.createUser(t, "alice@example.com", "Alice")

	rec := ts.do(t, http.MethodPost, "/users", 0, map[string]string{"email": "alice@example.com", "name": "Impostor"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "No Email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/users/%d", user.ID), 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.User](t, rec)
	assert.Equal(t, "Alice", got.Name)

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", user.ID), 0, map[string]string{"name": "Alice B"})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[models.User](t, rec)
	assert.Equal(t, "Alice B", patched.Name)
	assert.Equal(t, "alice@example.com", patched.Email)

	// Resubmitting the unchanged email conflicts.
	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", user.ID), 0, map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", user.ID), 0, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/users/%d", user.ID), 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemEndpoints(t *testing.T) {
	ts := newTestServer(t)

	owner := ts.createUser(t, "owner@example.com", "Owner")
	booker := ts.createUser(t, "booker@example.com", "Booker")
	item := ts.createItem(t, owner.ID, "Drill", true)

	rec := ts.do(t, http.MethodPost, "/items", owner.ID, map[string]any{"name": "No available flag"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/items", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]models.ItemDetails](t, rec)
	require.Len(t, mine, 1)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/items/%d", item.ID), booker.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/items/search?text=drill", booker.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]models.Item](t, rec)
	require.Len(t, found, 1)

	rec = ts.do(t, http.MethodGet, "/items/search?text=", booker.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), owner.ID, map[string]any{"available": false})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[models.Item](t, rec)
	assert.False(t, patched.Available)

	// A non-owner patch reads as a missing item.
	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), booker.ID, map[string]any{"available": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), owner.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCommentEndpoint(t *testing.T) {
	ts := newTestServer(t)

	owner := ts.createUser(t, "owner@example.com", "Owner")
	booker := ts.createUser(t, "booker@example.com", "Booker")
	item := ts.createItem(t, owner.ID, "Drill", true)

	// No completed booking yet.
	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, map[string]string{"text": "nice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "user cannot leave a review", body["error"])

	// Seed a finished approved booking directly.
	now := time.Now().UTC().Truncate(time.Second)
	booking := &models.Booking{
		Start: now.AddDate(0, 0, -5), End: now.AddDate(0, 0, -3),
		ItemID: item.ID, BookerID: booker.ID, Status: models.StatusApproved,
	}
	require.NoError(t, ts.db.CreateBooking(context.Background(), booking))

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, map[string]string{"text": "great drill"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decode[models.CommentView](t, rec)
	assert.Equal(t, "great drill", view.Text)
	assert.Equal(t, "Booker", view.AuthorName)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestEndpoints(t *testing.T) {
	ts := newTestServer(t)

	requester := ts.createUser(t, "requester@example.com", "Requester")
	owner := ts.createUser(t, "owner@example.com", "Owner")

	rec := ts.do(t, http.MethodPost, "/requests", requester.ID, map[string]string{"description": "need a ladder"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	request := decode[models.ItemRequest](t, rec)
	assert.NotZero(t, request.ID)

	rec = ts.do(t, http.MethodPost, "/requests", requester.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The owner answers the request with an item.
	rec = ts.do(t, http.MethodPost, "/items", owner.ID, map[string]any{
		"name": "Ladder", "description": "3 meters", "available": true, "requestId": request.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/requests/%d", request.ID), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	withItems := decode[models.RequestWithItems](t, rec)
	require.Len(t, withItems.Items, 1)
	assert.Equal(t, "Ladder", withItems.Items[0].Name)

	rec = ts.do(t, http.MethodGet, "/requests", requester.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[[]models.RequestWithItems](t, rec)
	require.Len(t, own, 1)

	rec = ts.do(t, http.MethodGet, "/requests/all", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	others := decode[[]models.RequestWithItems](t, rec)
	require.Len(t, others, 1)

	// The requester's own posts are excluded from the board.
	rec = ts.do(t, http.MethodGet, "/requests/all", requester.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	none := decode[[]models.RequestWithItems](t, rec)
	assert.Empty(t, none)

	rec = ts.do(t, http.MethodGet, "/requests/all?from=-1", requester.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	ts := newTestServer(t)

	owner := ts.createUser(t, "owner@example.com", "Owner")
	booker := ts.createUser(t, "booker@example.com", "Booker")
	item := ts.createItem(t, owner.ID, "Drill", true)
	start := time.Now().UTC().Truncate(time.Second).AddDate(0, 0, 1)
	ts.createBooking(t, booker.ID, item.ID, start, start.AddDate(0, 0, 1))

	rec := ts.do(t, http.MethodGet, "/admin/bookings/export", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bookings.xlsx")
	assert.NotZero(t, rec.Body.Len())

	rec = ts.do(t, http.MethodGet, "/admin/bookings/export?from=nope", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/bookings/export?from=2026-09-01&to=2026-08-01", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRateLimiting(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srv := NewHTTPServer(
		config.HTTPConfig{Port: 0},
		config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1},
		service.NewBookingService(db, nil, &logger),
		service.NewItemService(db, nil, &logger),
		service.NewUserService(db, &logger),
		service.NewRequestService(db, &logger),
		&logger,
	)
	ts := &testServer{handler: srv.Handler(), db: db}

	first := ts.do(t, http.MethodGet, "/healthz", 7, nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := ts.do(t, http.MethodGet, "/healthz", 7, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// A different caller has its own bucket.
	other := ts.do(t, http.MethodGet, "/healthz", 8, nil)
	assert.Equal(t, http.StatusOK, other.Code)
}
