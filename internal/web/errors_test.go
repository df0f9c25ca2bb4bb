package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"crmsync/internal/crm"
	syncsvc "crmsync/internal/sync"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"busy", syncsvc.ErrSyncInProgress, http.StatusConflict, "SYNC_BUSY"},
		{"wrapped busy", fmt.Errorf("products sync: %w", syncsvc.ErrSyncInProgress), http.StatusConflict, "SYNC_BUSY"},
		{"total failure", fmt.Errorf("products sync: %w", syncsvc.ErrAllDeliveriesFailed), http.StatusBadGateway, "SYNC_TOTAL_FAILURE"},
		{"auth", fmt.Errorf("%w: token endpoint returned 403", crm.ErrAuth), http.StatusBadGateway, "CRM_AUTH_FAILED"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "SYNC_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusForError(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("statusForError() = (%d, %q), want (%d, %q)", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestRespondErrorWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync/products", nil)

	respondError(rec, req, fmt.Errorf("products sync: %w", syncsvc.ErrAllDeliveriesFailed))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "SYNC_TOTAL_FAILURE" || body.Error == "" {
		t.Errorf("body = %+v, want SYNC_TOTAL_FAILURE with a message", body)
	}
}
