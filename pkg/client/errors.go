package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rhuss/anfrage/pkg/api"
)

// Error is a non-success response from the backend. The structured fields
// are populated when the body parsed as an API error envelope.
type Error struct {
	StatusCode int
	Type       api.ErrorType
	Message    string
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("client: backend error (%d): %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("client: backend returned %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may be retried as-is. Rate limits
// and server-side failures qualify; client errors do not.
func (e *Error) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// statusError builds an Error from a non-200 response, preferring the
// structured error envelope when the body carries one.
func statusError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Message: string(body)}

	var envelope api.ErrorResponse
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
		e.Type = envelope.Error.Type
		e.Message = envelope.Error.Message
	}
	if status == http.StatusUnauthorized {
		e.Message += "; credentials were rejected, re-authenticate or refresh the token"
	}
	return e
}
