package api

import (
	"net/http"
	"time"

	"lendshare/internal/export"
)

// handleExportBookings streams an XLSX workbook of bookings starting in
// [from, to). Defaults cover one month back through two months ahead.
func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now.AddDate(0, 2, 0)

	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
			return
		}
	}
	if !to.After(from) {
		writeError(w, http.StatusBadRequest, "to must be after from")
		return
	}

	bookings, err := s.bookings.ListRange(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	if err := export.WriteBookings(w, bookings); err != nil {
		s.logger.Error().Err(err).Msg("export bookings failed")
	}
}
