package crm

import (
	"errors"
	"testing"
)

func TestVerifyResponse_StatusRange(t *testing.T) {
	tests := []struct {
		status int
		wantOK bool
	}{
		{200, true},
		{201, true},
		{204, true},
		{299, true},
		{199, false},
		{301, false},
		{400, false},
		{401, false},
		{500, false},
		{503, false},
	}

	for _, tt := range tests {
		err := VerifyResponse(tt.status, nil)
		if tt.wantOK && err != nil {
			t.Errorf("VerifyResponse(%d) = %v, want nil", tt.status, err)
		}
		if !tt.wantOK {
			var se *StatusError
			if !errors.As(err, &se) {
				t.Errorf("VerifyResponse(%d) = %v, want *StatusError", tt.status, err)
			} else if se.Status != tt.status {
				t.Errorf("StatusError.Status = %d, want %d", se.Status, tt.status)
			}
		}
	}
}

func TestVerifyResponse_EnvelopeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		fail bool
	}{
		{"clean success", `{"success":true,"id":"A"}`, false},
		{"success flag false", `{"success":false}`, true},
		{"status string error", `{"status":"error"}`, true},
		{"status string failed", `{"status":"failed"}`, true},
		{"status string ok", `{"status":"ok"}`, false},
		{"status bool false", `{"status":false}`, true},
		{"error code", `{"errorCode":"E42"}`, true},
		{"snake error message", `{"error_message":"bad payload"}`, true},
		{"exception message", `{"exceptionMessage":"NullReference"}`, true},
		{"nested error", `{"result":{"detail":{"errorMessage":"deep"}}}`, true},
		{"failed element in sub-results", `{"results":[{"success":true},{"success":false}]}`, true},
		{"all sub-results succeed", `{"results":[{"success":true},{"success":true}]}`, false},
		{"top-level array with failure", `[{"success":true},{"errorCode":"E1"}]`, true},
		{"empty error message passes", `{"errorMessage":""}`, false},
		{"numeric error code", `{"errorCode":17}`, true},
		{"zero error code passes", `{"errorCode":0}`, false},
		{"non-json body passes", `OK`, false},
		{"empty body passes", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyResponse(200, []byte(tt.body))
			if tt.fail {
				var ee *EnvelopeError
				if !errors.As(err, &ee) {
					t.Fatalf("VerifyResponse = %v, want *EnvelopeError", err)
				}
				if ee.Status != 200 {
					t.Errorf("EnvelopeError.Status = %d, want 200", ee.Status)
				}
			} else if err != nil {
				t.Fatalf("VerifyResponse = %v, want nil", err)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(&StatusError{Status: 503}); got != 503 {
		t.Errorf("StatusOf(StatusError) = %d, want 503", got)
	}
	if got := StatusOf(&EnvelopeError{Status: 200}); got != 200 {
		t.Errorf("StatusOf(EnvelopeError) = %d, want 200", got)
	}
	if got := StatusOf(errors.New("dial tcp: timeout")); got != 0 {
		t.Errorf("StatusOf(transport error) = %d, want 0", got)
	}
}
