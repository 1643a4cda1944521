package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lendshare/internal/config"
	"lendshare/internal/domain"

	"github.com/rs/zerolog"
)

// userIDHeader carries the caller's identity. The surrounding deployment
// terminates authentication; this service trusts the header as-is.
const userIDHeader = "X-Sharer-User-Id"

// HTTPServer exposes the sharing service over JSON/HTTP.
type HTTPServer struct {
	cfg      config.HTTPConfig
	bookings domain.BookingService
	items    domain.ItemService
	users    domain.UserService
	requests domain.RequestService
	server   *http.Server
	logger   *zerolog.Logger
}

func NewHTTPServer(
	cfg config.HTTPConfig,
	rateLimit config.RateLimitConfig,
	bookings domain.BookingService,
	items domain.ItemService,
	users domain.UserService,
	requests domain.RequestService,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		items:    items,
		users:    users,
		requests: requests,
		logger:   logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", srv.handleCreateUser)
	mux.HandleFunc("GET /users/{userId}", srv.handleGetUser)
	mux.HandleFunc("PATCH /users/{userId}", srv.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{userId}", srv.handleDeleteUser)

	mux.HandleFunc("GET /items", srv.handleGetItems)
	mux.HandleFunc("GET /items/search", srv.handleSearchItems)
	mux.HandleFunc("GET /items/{itemId}", srv.handleGetItem)
	mux.HandleFunc("POST /items", srv.handleAddItem)
	mux.HandleFunc("PATCH /items/{itemId}", srv.handleUpdateItem)
	mux.HandleFunc("DELETE /items/{itemId}", srv.handleDeleteItem)
	mux.HandleFunc("POST /items/{itemId}/comment", srv.handleCreateComment)

	mux.HandleFunc("POST /bookings", srv.handleCreateBooking)
	mux.HandleFunc("PATCH /bookings/{bookingId}", srv.handleApproveBooking)
	mux.HandleFunc("GET /bookings/owner", srv.handleListOwnerBookings)
	mux.HandleFunc("GET /bookings/{bookingId}", srv.handleGetBooking)
	mux.HandleFunc("GET /bookings", srv.handleListBookings)

	mux.HandleFunc("POST /requests", srv.handleCreateRequest)
	mux.HandleFunc("GET /requests", srv.handleListOwnRequests)
	mux.HandleFunc("GET /requests/all", srv.handleListOtherRequests)
	mux.HandleFunc("GET /requests/{requestId}", srv.handleGetRequest)

	mux.HandleFunc("GET /admin/bookings/export", srv.handleExportBookings)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	handler := loggingMiddleware(newCallerLimiter(rateLimit).Wrap(mux), logger)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler exposes the full middleware chain; tests drive it directly.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// callerID extracts the sharer id header. ok=false means the response
// has already been written.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing "+userIDHeader+" header")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+userIDHeader+" header")
		return 0, false
	}
	return id, true
}

// pathID parses a numeric path segment; ok=false means the response has
// already been written.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
