package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"moodlog/internal/auth"
	"moodlog/internal/core"
	"moodlog/internal/store"
)

// validationErrors are the input problems reported back to the caller as 422.
var validationErrors = []error{
	core.ErrZeroDate,
	core.ErrUnknownMood,
	core.ErrUnknownSleep,
	core.ErrUnknownTag,
	core.ErrTooManyTags,
	core.ErrDuplicateTag,
	core.ErrJournalTooLong,
	core.ErrInvalidEmail,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	auth.ErrWeakPassword,
}

// statusFor maps service errors to a status code and a message that is safe
// to show the caller. Unknown errors become a generic 500.
func statusFor(err error) (int, string) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, err.Error()
		}
	}
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "email already registered"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError logs server-side failures and answers with JSON or an HTMX
// fragment depending on who asked.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, component, operation string) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.events.LogError(r.Context(), "Request failed", err, component, operation, nil)
	}
	if isHTMX(r) {
		ErrorResponse(status, message).Write(w)
		return
	}
	writeJSONError(w, status, message)
}
