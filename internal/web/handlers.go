package web

import (
	"context"
	"net/http"
	"time"

	"crmsync/internal/logging"
	syncsvc "crmsync/internal/sync"
)

// statusResponse is the payload of GET /api/status.
type statusResponse struct {
	Watermark  time.Time                     `json:"watermark"`
	ActiveRuns []string                      `json:"active_runs"`
	LastRuns   map[string]syncsvc.RunSummary `json:"last_runs"`
}

// handleHealth reports liveness and row-source connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports the watermark and the most recent run per domain.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	session := s.svc.Session()
	respondJSON(w, http.StatusOK, statusResponse{
		Watermark:  session.Watermark(),
		ActiveRuns: s.svc.ActiveRuns(),
		LastRuns:   session.LastRuns(),
	})
}

// handleSyncProducts runs a product sync and returns its summary. Partial
// failure is a 200 with failure detail in the body; only total failure or
// a pre-delivery error is an error response.
func (s *Server) handleSyncProducts(w http.ResponseWriter, r *http.Request) {
	s.runSync(w, r, s.svc.SyncProducts)
}

// handleSyncPriceLists runs a price-list sync and returns its summary.
func (s *Server) handleSyncPriceLists(w http.ResponseWriter, r *http.Request) {
	s.runSync(w, r, s.svc.SyncPriceLists)
}

// handleSyncImages runs an image sync and returns its summary.
func (s *Server) handleSyncImages(w http.ResponseWriter, r *http.Request) {
	s.runSync(w, r, s.svc.SyncImages)
}

func (s *Server) runSync(w http.ResponseWriter, r *http.Request, run func(context.Context) (syncsvc.RunSummary, error)) {
	logger := logging.FromContext(r.Context())
	logger.Info("sync triggered", "path", r.URL.Path)

	sum, err := run(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}
