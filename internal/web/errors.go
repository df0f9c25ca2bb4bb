package web

// errors.go provides unified error response handling for the API.
//
// Every error is logged server-side with full detail and the request ID,
// then returned to the client as a JSON envelope with a machine-readable
// code. Run-level sync errors map to distinct statuses so callers can tell
// "busy" from "total failure" from "source/auth failure".

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"crmsync/internal/crm"
	syncsvc "crmsync/internal/sync"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusForError maps run-level sync errors to HTTP statuses and codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, syncsvc.ErrSyncInProgress):
		return http.StatusConflict, "SYNC_BUSY"
	case errors.Is(err, syncsvc.ErrAllDeliveriesFailed):
		return http.StatusBadGateway, "SYNC_TOTAL_FAILURE"
	case errors.Is(err, crm.ErrAuth):
		return http.StatusBadGateway, "CRM_AUTH_FAILED"
	default:
		return http.StatusInternalServerError, "SYNC_FAILED"
	}
}

// respondError logs the technical error and writes the JSON envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
