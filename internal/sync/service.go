// Package sync implements the row-to-document mapping engine and the
// resilient batch-delivery pipeline for the CRM synchronizer.
//
// The package is pure orchestration over two collaborators it only knows as
// interfaces: a RowSource producing flat relational rows, and a Deliverer
// posting JSON documents to the CRM. Rows are grouped into nested records,
// built into documents, partitioned into delivery units, and pushed through
// a bounded worker pool where each unit is wrapped in linear-back-off
// retry. Per-unit failures are captured, aggregated, and reported; only
// total failure or a pre-delivery error aborts a run.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crmsync/internal/crm"

	"github.com/google/uuid"
)

// Sync domains, one per top-level operation.
const (
	DomainProducts   = "products"
	DomainPriceLists = "prices"
	DomainImages     = "images"
)

// CRM endpoint paths per domain. Products go to the bulk endpoint as an
// array; price lists and images are per-record endpoints.
const (
	productBulkPath = "/api/v1/products/bulk-upsert"
	priceListPath   = "/api/v1/price-lists/upsert"
	imagePath       = "/api/v1/images/upsert"
)

// RowSource produces flat rows from the relational data source. Product
// rows are paginated by offset/limit and filtered by the watermark; price
// and image rows use the unpaginated form. An empty product page signals
// pagination end.
type RowSource interface {
	ProductRows(ctx context.Context, since time.Time, offset, limit int) ([]ProductRow, error)
	PriceRows(ctx context.Context) ([]PriceRow, error)
	ImageRows(ctx context.Context) ([]ImageRow, error)
}

// Deliverer posts a JSON payload (one document or an array) to a CRM
// endpoint path and returns the verified response.
type Deliverer interface {
	Upsert(ctx context.Context, path string, payload any) (*crm.Response, error)
}

// Options tunes the delivery pipeline. Zero values fall back to defaults.
type Options struct {
	PageSize       int           // product rows fetched per page (default 500)
	Concurrency    int           // delivery units in flight at once (default 4)
	BatchSize      int           // documents per bulk delivery unit (default 20)
	MaxAttempts    int           // retry budget per unit (default 3)
	RetryBaseDelay time.Duration // back-off base, delay = base × attempt (default 2s)

	// TolerateTotalFailure downgrades the all-units-failed condition from a
	// hard error to a reported summary. Off by default.
	TolerateTotalFailure bool
}

func (o Options) withDefaults() Options {
	if o.PageSize < 1 {
		o.PageSize = 500
	}
	if o.Concurrency < 1 {
		o.Concurrency = 4
	}
	if o.BatchSize < 1 {
		o.BatchSize = 20
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 3
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 2 * time.Second
	}
	return o
}

// Service drives the three sync operations end to end.
type Service struct {
	source  RowSource
	crm     Deliverer
	session *Session
	gate    *RunGate
	opts    Options
}

// NewService wires the orchestrator to its collaborators.
func NewService(source RowSource, deliverer Deliverer, session *Session, opts Options) *Service {
	return &Service{
		source:  source,
		crm:     deliverer,
		session: session,
		gate:    NewRunGate(),
		opts:    opts.withDefaults(),
	}
}

// Session exposes the session handle for status reporting.
func (s *Service) Session() *Session { return s.session }

// ActiveRuns returns the domains with a run currently in flight.
func (s *Service) ActiveRuns() []string { return s.gate.Active() }

// SyncProducts fetches changed product rows page by page, maps them into
// bulk upsert documents, and delivers them. Pages are fetched and fully
// delivered strictly sequentially; within a page, batches run through the
// worker pool. The watermark advances only when every unit across all
// pages succeeded.
func (s *Service) SyncProducts(ctx context.Context) (RunSummary, error) {
	if err := s.gate.Acquire(DomainProducts); err != nil {
		return RunSummary{}, err
	}
	defer s.gate.Release(DomainProducts)

	sum := s.newSummary(DomainProducts)
	log := slog.With("run_id", sum.RunID, "domain", sum.Domain)
	since := s.session.Watermark()
	log.Info("sync started", "watermark", since)

	var outcomes []Outcome
	unitBase := 0
	for offset := 0; ; offset += s.opts.PageSize {
		rows, err := s.source.ProductRows(ctx, since, offset, s.opts.PageSize)
		if err != nil {
			return s.finish(sum, outcomes, fmt.Errorf("fetch product rows at offset %d: %w", offset, err))
		}
		if len(rows) == 0 {
			break
		}
		sum.Fetched += len(rows)

		docs := BuildProductDocuments(GroupProducts(rows))
		sum.Mapped += len(docs)
		batches := PartitionDocuments(docs, s.opts.BatchSize)

		tasks := make([]Task[Outcome], len(batches))
		for i, batch := range batches {
			unit := unitBase + i
			payload := batch
			tasks[i] = func(ctx context.Context) (Outcome, error) {
				codes := make([]string, len(payload))
				for j, d := range payload {
					codes[j] = d.ItemCode
				}
				return s.deliver(ctx, unit, productBulkPath, payload, codes), nil
			}
		}
		results := RunAll(ctx, tasks, s.opts.Concurrency)
		for _, r := range results {
			outcomes = append(outcomes, r.Value)
		}
		unitBase += len(batches)
		log.Info("page delivered", "offset", offset, "rows", len(rows), "batches", len(batches))
	}

	return s.finish(sum, outcomes, nil)
}

// SyncPriceLists fetches all price rows, folds them into per-item
// documents, and delivers them one document per call. The pool still
// bounds how many calls are in flight.
func (s *Service) SyncPriceLists(ctx context.Context) (RunSummary, error) {
	if err := s.gate.Acquire(DomainPriceLists); err != nil {
		return RunSummary{}, err
	}
	defer s.gate.Release(DomainPriceLists)

	sum := s.newSummary(DomainPriceLists)
	slog.Info("sync started", "run_id", sum.RunID, "domain", sum.Domain)

	rows, err := s.source.PriceRows(ctx)
	if err != nil {
		return s.finish(sum, nil, fmt.Errorf("fetch price rows: %w", err))
	}
	sum.Fetched = len(rows)

	docs := BuildPriceDocuments(GroupPriceLists(rows))
	sum.Mapped = len(docs)

	tasks := make([]Task[Outcome], len(docs))
	for i, doc := range docs {
		unit, payload := i, doc
		tasks[i] = func(ctx context.Context) (Outcome, error) {
			return s.deliver(ctx, unit, priceListPath, payload, []string{payload.ItemCode}), nil
		}
	}
	results := RunAll(ctx, tasks, s.opts.Concurrency)
	outcomes := make([]Outcome, 0, len(results))
	for _, r := range results {
		outcomes = append(outcomes, r.Value)
	}

	return s.finish(sum, outcomes, nil)
}

// SyncImages fetches all image rows and delivers a document per row, one
// call per document.
func (s *Service) SyncImages(ctx context.Context) (RunSummary, error) {
	if err := s.gate.Acquire(DomainImages); err != nil {
		return RunSummary{}, err
	}
	defer s.gate.Release(DomainImages)

	sum := s.newSummary(DomainImages)
	slog.Info("sync started", "run_id", sum.RunID, "domain", sum.Domain)

	rows, err := s.source.ImageRows(ctx)
	if err != nil {
		return s.finish(sum, nil, fmt.Errorf("fetch image rows: %w", err))
	}
	sum.Fetched = len(rows)

	docs := BuildImageDocuments(rows)
	sum.Mapped = len(docs)

	tasks := make([]Task[Outcome], len(docs))
	for i, doc := range docs {
		unit, payload := i, doc
		tasks[i] = func(ctx context.Context) (Outcome, error) {
			return s.deliver(ctx, unit, imagePath, payload, []string{payload.ItemCode}), nil
		}
	}
	results := RunAll(ctx, tasks, s.opts.Concurrency)
	outcomes := make([]Outcome, 0, len(results))
	for _, r := range results {
		outcomes = append(outcomes, r.Value)
	}

	return s.finish(sum, outcomes, nil)
}

// deliver pushes one unit through retry and records its terminal outcome.
// Failures never propagate out of the pool; they live in the Outcome.
func (s *Service) deliver(ctx context.Context, unit int, path string, payload any, codes []string) Outcome {
	label := fmt.Sprintf("%s unit %d", path, unit)
	resp, err := Retry(ctx, label, s.opts.MaxAttempts, s.opts.RetryBaseDelay, func(ctx context.Context) (*crm.Response, error) {
		return s.crm.Upsert(ctx, path, payload)
	})

	out := Outcome{Batch: unit, Codes: codes}
	if err != nil {
		out.Err = err
		out.Status = crm.StatusOf(err)
		return out
	}
	out.Status = resp.Status
	return out
}

func (s *Service) newSummary(domain string) RunSummary {
	return RunSummary{
		RunID:     uuid.NewString(),
		Domain:    domain,
		StartedAt: time.Now().UTC(),
	}
}

// finish folds outcomes into the summary, records it in the session, and
// advances the watermark for fully successful product runs. runErr, when
// non-nil, is a pre-delivery failure (source fetch) that aborts the run
// without partial-success semantics.
func (s *Service) finish(sum RunSummary, outcomes []Outcome, runErr error) (RunSummary, error) {
	sum.FinishedAt = time.Now().UTC()
	log := slog.With("run_id", sum.RunID, "domain", sum.Domain)

	if runErr != nil {
		log.Error("sync aborted", "error", runErr)
		return sum, runErr
	}

	report, err := Summarize(outcomes, s.opts.TolerateTotalFailure)
	sum.Succeeded = report.Succeeded
	sum.Failed = report.Failed
	sum.FailedCodes = report.FailedCodes
	sum.Batches = report.Batches
	s.session.RecordRun(sum)

	if err != nil {
		log.Error("sync failed", "units", len(outcomes), "error", err)
		return sum, fmt.Errorf("%s sync: %w", sum.Domain, err)
	}

	if sum.Domain == DomainProducts && sum.Failed == 0 {
		s.session.AdvanceWatermark(sum.StartedAt)
	}

	log.Info("sync finished",
		"fetched", sum.Fetched,
		"mapped", sum.Mapped,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
	)
	return sum, nil
}
