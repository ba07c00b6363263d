// internal/api/errors.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error is a request-level failure reported by the backend. Message carries
// the server-provided text verbatim; when the body has no usable message the
// only fallback is the generic HTTP status line.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// errorEnvelope covers the backend's error body shapes:
// {"detail": "..."}, {"detail": {"message": "...", "error": "..."}} and
// {"message": "..."}.
type errorEnvelope struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type errorDetail struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// decodeError extracts the server's error message from a non-2xx body.
func decodeError(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Detail) > 0 {
			var detail errorDetail
			if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
				if msg := strings.TrimSpace(detail.Message); msg != "" {
					apiErr.Message = msg
					return apiErr
				}
				if msg := strings.TrimSpace(detail.Error); msg != "" {
					apiErr.Message = msg
					return apiErr
				}
			}
			var detailText string
			if err := json.Unmarshal(envelope.Detail, &detailText); err == nil {
				if msg := strings.TrimSpace(detailText); msg != "" {
					apiErr.Message = msg
					return apiErr
				}
			}
		}
		if msg := strings.TrimSpace(envelope.Message); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}

	text := http.StatusText(statusCode)
	if text == "" {
		text = "request failed"
	}
	apiErr.Message = fmt.Sprintf("HTTP %d: %s", statusCode, text)
	return apiErr
}
