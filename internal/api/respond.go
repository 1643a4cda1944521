package api

import (
	"encoding/json"
	"net/http"

	"lendshare/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError translates an error kind into a status code. The
// message goes to the client unchanged; messages are written with that
// in mind.
func writeDomainError(w http.ResponseWriter, err error) {
	de := domain.AsError(err)
	if de == nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindNotAvailable, domain.KindInvalidArgument:
		status = http.StatusBadRequest
	case domain.KindConditionsNotMet:
		status = http.StatusUnprocessableEntity
	case domain.KindConflict:
		status = http.StatusConflict
	}
	writeError(w, status, de.Error())
}
