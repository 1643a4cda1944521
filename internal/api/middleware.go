package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"lendshare/internal/config"
	"lendshare/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs each request with a generated request id and
// feeds the HTTP metrics. The route label is the mux pattern, not the
// raw path, to keep cardinality bounded.
func loggingMiddleware(next http.Handler, logger *zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		elapsed := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(route, strconv.Itoa(recorder.status), elapsed)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

// callerLimiter keeps a token bucket per caller id (or remote address
// when the sharer header is absent).
type callerLimiter struct {
	limiters sync.Map
	cfg      config.RateLimitConfig
}

func newCallerLimiter(cfg config.RateLimitConfig) *callerLimiter {
	return &callerLimiter{cfg: cfg}
}

func (l *callerLimiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}

func (l *callerLimiter) Wrap(next http.Handler) http.Handler {
	if !l.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(userIDHeader)
		if key == "" {
			key = r.RemoteAddr
		}
		if !l.get(key).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
