package tus

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUploadNotCreated is returned when the server answered a creation request without a Location
var ErrUploadNotCreated = errors.New("tus: server did not return an upload location")

// TransferError is a non successful response from the upload endpoint
type TransferError struct {
	Method     string
	StatusCode int
	Message    string
	RequestID  string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("tus: unexpected response while %s upload, response code: %d, response text: %s, request id: %s",
		e.Method, e.StatusCode, e.Message, e.RequestID)
}

// Retryable reports whether repeating the request may succeed.
// Client errors are final except offset conflicts and locked uploads.
func (e *TransferError) Retryable() bool {
	if e.StatusCode == http.StatusConflict || e.StatusCode == http.StatusLocked {
		return true
	}
	return e.StatusCode < 400 || e.StatusCode >= 500
}
