package crm

// verify.go checks delivery responses for failure, including failures the
// CRM hides inside a 200 envelope.

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Keys that carry an explicit success/failure flag.
var successFlagKeys = []string{"success", "issuccess", "ok"}

// Keys whose presence with a non-empty value marks the payload as an error.
var errorShapedKeys = []string{
	"errorcode", "error_code",
	"errormessage", "error_message",
	"exceptionmessage", "exception_message",
}

// maxErrorBody bounds how much response body is echoed into errors.
const maxErrorBody = 512

// VerifyResponse returns nil when status is 2xx and the body carries no
// embedded failure indicator. Non-2xx statuses yield a *StatusError; 2xx
// bodies with a false success flag, a failed sub-result element, or
// error-shaped keys anywhere in the decoded payload yield an
// *EnvelopeError. Non-JSON or empty 2xx bodies pass.
func VerifyResponse(status int, body []byte) error {
	if status < 200 || status > 299 {
		return &StatusError{Status: status, Body: truncate(body)}
	}
	if len(body) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil
	}
	if msg, failed := findFailure(decoded); failed {
		return &EnvelopeError{Status: status, Message: msg}
	}
	return nil
}

// findFailure walks the decoded payload looking for failure indicators.
// Arrays are walked element-wise so a single failed sub-result taints the
// whole response.
func findFailure(v any) (string, bool) {
	switch node := v.(type) {
	case map[string]any:
		for key, val := range node {
			lower := strings.ToLower(key)

			for _, flag := range successFlagKeys {
				if lower != flag {
					continue
				}
				if b, ok := val.(bool); ok && !b {
					return fmt.Sprintf("%s flag is false", key), true
				}
			}

			if lower == "status" {
				switch sv := val.(type) {
				case bool:
					if !sv {
						return "status flag is false", true
					}
				case string:
					switch strings.ToLower(sv) {
					case "error", "failed", "failure":
						return fmt.Sprintf("status is %q", sv), true
					}
				}
			}

			for _, errKey := range errorShapedKeys {
				if lower != errKey {
					continue
				}
				if msg, ok := val.(string); ok && msg != "" {
					return fmt.Sprintf("%s: %s", key, msg), true
				}
				if num, ok := val.(float64); ok && num != 0 {
					return fmt.Sprintf("%s: %v", key, num), true
				}
			}
		}
		// Recurse after scanning local keys so the most specific indicator
		// at this level wins.
		for _, val := range node {
			if msg, failed := findFailure(val); failed {
				return msg, true
			}
		}
	case []any:
		for _, elem := range node {
			if msg, failed := findFailure(elem); failed {
				return msg, true
			}
		}
	}
	return "", false
}

func truncate(body []byte) string {
	s := string(body)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
