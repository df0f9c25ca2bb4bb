package crm

// errors.go defines the failure taxonomy of the CRM boundary.
//
// Three shapes matter to callers: authentication failures (fatal to a sync
// run, never retried here), non-2xx HTTP statuses, and 2xx responses whose
// body encodes an application-level error. The latter two are equally
// retryable by the delivery pipeline.

import (
	"errors"
	"fmt"
)

// ErrAuth wraps any failure to obtain or refresh a credential. The sync
// layer treats it as fatal for the attempt; the next delivery attempt
// re-triggers credential acquisition.
var ErrAuth = errors.New("crm authentication failed")

// StatusError is a delivery response outside the 2xx range.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("crm returned status %d: %s", e.Status, e.Body)
}

// EnvelopeError is a 2xx response whose body signals failure: a success
// flag set false, a failed element in a sub-result array, or error-shaped
// keys anywhere in the payload.
type EnvelopeError struct {
	Status  int
	Message string
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("crm reported failure inside a %d response: %s", e.Status, e.Message)
}

// StatusOf extracts the HTTP status carried by err, unwrapping as needed.
// Returns 0 when no status is available (transport failures).
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	var ee *EnvelopeError
	if errors.As(err, &ee) {
		return ee.Status
	}
	return 0
}
