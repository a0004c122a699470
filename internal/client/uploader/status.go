package uploader

import (
	"errors"
	"filedrop/internal/client/tus"
	"net/http"
	"regexp"
	"slices"
	"strconv"
)

// Status is the lifecycle state of one file in the queue
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// NonRetryableStatusCodes are server answers a retry cannot fix
var NonRetryableStatusCodes = []int{
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusRequestEntityTooLarge,
}

// CanRetry reports whether a failure with statusCode may be retried. 0 means unknown.
func CanRetry(statusCode int) bool {
	return !slices.Contains(NonRetryableStatusCodes, statusCode)
}

var (
	codePattern    = regexp.MustCompile(`(?i)response code:\s*(\d+)`)
	messagePattern = regexp.MustCompile(`(?i)response text:\s*(.*?)\s*,\s*request id`)
)

// ExtractError pulls the status code and server message out of a transfer error text.
// The code is 0 and the message is the whole text when they cannot be found.
func ExtractError(text string) (int, string) {
	statusCode := 0
	if m := codePattern.FindStringSubmatch(text); m != nil {
		statusCode, _ = strconv.Atoi(m[1])
	}
	message := text
	if m := messagePattern.FindStringSubmatch(text); m != nil {
		message = m[1]
	}
	return statusCode, message
}

func errorDetails(err error) (int, string) {
	var transferErr *tus.TransferError
	if errors.As(err, &transferErr) {
		return transferErr.StatusCode, transferErr.Message
	}
	return ExtractError(err.Error())
}
