package sync

// outcome.go aggregates per-unit delivery outcomes into a run summary.
//
// Partial failure is normal output with failure detail attached; a run
// where every unit failed is a hard error so callers cannot mistake it for
// a degraded success.

import (
	"errors"
	"time"
)

// ErrAllDeliveriesFailed is returned when every delivery unit in a run
// failed. Partial failure never produces this error.
var ErrAllDeliveriesFailed = errors.New("all deliveries failed")

// Outcome records the terminal state of one delivery unit after all retry
// attempts. Immutable once created.
type Outcome struct {
	Batch  int      // unit index within the run
	Codes  []string // item codes carried by the unit
	Status int      // last HTTP status, 0 if none was received
	Err    error    // nil on success
}

// Failed reports whether the unit exhausted its attempts without success.
func (o Outcome) Failed() bool { return o.Err != nil }

// BatchDetail is the serializable per-unit diagnostic carried in a summary.
type BatchDetail struct {
	Batch  int      `json:"batch"`
	Codes  []string `json:"codes"`
	Status int      `json:"status,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// DeliveryReport is the aggregate of all outcomes in a run.
type DeliveryReport struct {
	Succeeded   int
	Failed      int
	FailedCodes []string
	Batches     []BatchDetail
}

// Summarize folds outcomes into a report. When tolerateTotalFailure is
// false and every outcome failed, it returns ErrAllDeliveriesFailed along
// with the report; mixed outcomes always return a normal report. Zero
// outcomes (nothing to deliver) is a successful empty report.
func Summarize(outcomes []Outcome, tolerateTotalFailure bool) (DeliveryReport, error) {
	var report DeliveryReport
	for _, o := range outcomes {
		detail := BatchDetail{Batch: o.Batch, Codes: o.Codes, Status: o.Status}
		if o.Failed() {
			report.Failed++
			report.FailedCodes = append(report.FailedCodes, o.Codes...)
			detail.Error = o.Err.Error()
			report.Batches = append(report.Batches, detail)
			continue
		}
		report.Succeeded++
	}

	if len(outcomes) > 0 && report.Succeeded == 0 && !tolerateTotalFailure {
		return report, ErrAllDeliveriesFailed
	}
	return report, nil
}

// RunSummary is the result record returned by every top-level sync
// operation, on success and on partial failure alike.
type RunSummary struct {
	RunID       string        `json:"run_id"`
	Domain      string        `json:"domain"`
	Fetched     int           `json:"fetched"`
	Mapped      int           `json:"mapped"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	FailedCodes []string      `json:"failed_codes,omitempty"`
	Batches     []BatchDetail `json:"batches,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
}
