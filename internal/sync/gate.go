package sync

// gate.go guards against overlapping sync runs for the same domain.
//
// The watermark is read at the start of a run and written at the end, so
// two concurrent runs of the same domain would race it. The gate turns a
// second trigger into a busy error instead.

import (
	"errors"
	"sync"
)

// ErrSyncInProgress is returned when a run is triggered for a domain that
// already has one in flight. Clients should retry after the current run
// completes.
var ErrSyncInProgress = errors.New("a sync run for this domain is already in progress")

// RunGate tracks which domains currently have a run in flight.
type RunGate struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewRunGate creates an empty gate.
func NewRunGate() *RunGate {
	return &RunGate{active: make(map[string]bool)}
}

// Acquire claims the run slot for a domain. Returns ErrSyncInProgress if it
// is already held. The caller MUST call Release when the run completes
// (use defer).
func (g *RunGate) Acquire(domain string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[domain] {
		return ErrSyncInProgress
	}
	g.active[domain] = true
	return nil
}

// Release frees the run slot for a domain.
func (g *RunGate) Release(domain string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, domain)
}

// Active returns the domains with a run currently in flight.
func (g *RunGate) Active() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	domains := make([]string, 0, len(g.active))
	for d := range g.active {
		domains = append(domains, d)
	}
	return domains
}
