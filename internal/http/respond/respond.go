// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Status returns the HTTP status for err. A failed compensation is always a
// 500, whatever the errors it wraps.
func Status(err error) int {
	switch {
	case errors.Is(err, pos.ErrCompensationFailed):
		return http.StatusInternalServerError
	case validation.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateIdentity),
		errors.Is(err, catalog.ErrDuplicateCategory),
		errors.Is(err, catalog.ErrInsufficientStock),
		errors.Is(err, catalog.ErrNegativeStock):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// Error writes err with the status from Status. Internal errors are logged
// and their text is not sent.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	resp := errorResponse{Error: err.Error()}

	var vErr *validation.Error
	if errors.As(err, &vErr) {
		resp = errorResponse{Error: vErr.Message, Field: vErr.Field}
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp = errorResponse{Error: "internal error"}
	}

	JSON(w, status, resp)
}

// BadRequest reports malformed input that never reached a service.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// Decode reads a JSON body into v.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "invalid request body: "+err.Error())
		return false
	}

	return true
}
