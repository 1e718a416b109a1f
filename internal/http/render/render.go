// Package render writes JSON responses and maps domain errors to status codes.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/spendly/internal/auth"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Ceiling string `json:"ceiling,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err with the status its kind maps to. Unexpected errors are
// logged and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var amountErr *ledger.AmountError
	if errors.As(err, &amountErr) {
		JSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   amountErr.Error(),
			Ceiling: amountErr.Ceiling.String(),
		})

		return
	}

	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, status, errorResponse{Error: "internal error"})

		return
	}

	JSON(w, status, errorResponse{Error: err.Error()})
}

func Status(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrProtectedTab):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest reports a malformed request that never reached the domain.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// UserID returns the authenticated user or writes 401.
func UserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		JSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	return id, ok
}
