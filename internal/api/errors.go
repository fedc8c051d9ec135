package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable indicates the backend could not be reached.
var ErrUnavailable = errors.New("chat service unavailable")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// ErrInvalidResponse indicates a 2xx body that does not match the
// expected shape.
type ErrInvalidResponse struct {
	Endpoint string
	Body     json.RawMessage
	Err      error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid %s response: %v", e.Endpoint, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
