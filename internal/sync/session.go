package sync

// session.go holds the mutable per-process sync state: the watermark used
// as the lower bound for incremental fetches, and the last summary per
// domain for the status endpoint.
//
// Nothing here is persisted. A restart resets the watermark to the epoch
// default and the next run re-processes the full window (at-least-once
// delivery, by contract with the CRM's idempotent upsert).

import (
	"sync"
	"time"
)

// watermarkEpoch is the lower bound used before the first successful run of
// a process.
var watermarkEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Session is the explicit owner of process-wide sync state, created once at
// startup and passed by handle into the orchestrator and the status
// handler.
type Session struct {
	mu        sync.RWMutex
	watermark time.Time
	lastRuns  map[string]RunSummary
}

// NewSession creates a session with the epoch watermark and no run history.
func NewSession() *Session {
	return &Session{
		watermark: watermarkEpoch,
		lastRuns:  make(map[string]RunSummary),
	}
}

// Watermark returns the current incremental-fetch lower bound.
func (s *Session) Watermark() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watermark
}

// AdvanceWatermark replaces the watermark. Called only after a run with
// zero failures across all pages; any failure leaves it unchanged so the
// next run re-processes the same window.
func (s *Session) AdvanceWatermark(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watermark = t
}

// RecordRun stores the latest summary for a domain.
func (s *Session) RecordRun(sum RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRuns[sum.Domain] = sum
}

// LastRuns returns a copy of the latest summary per domain.
func (s *Session) LastRuns() map[string]RunSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]RunSummary, len(s.lastRuns))
	for k, v := range s.lastRuns {
		out[k] = v
	}
	return out
}
