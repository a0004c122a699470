package domain

import "errors"

// ErrAlreadyExists is an error thrown when entity already exists
var ErrAlreadyExists = errors.New("already exists")

// ErrSessionNotFound is an error thrown when an upload session is not found
var ErrSessionNotFound = errors.New("upload not found")

// ErrFileNotFound is an error thrown when a file record is not found
var ErrFileNotFound = errors.New("file not found")

// ErrUnauthorized is an error thrown when the caller has no identity
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidAPIKey is an error thrown when an api key matches no user
var ErrInvalidAPIKey = errors.New("invalid api key")

// ErrQuotaExceeded is an error thrown when the storage quota is used up
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrFileCountLimit is an error thrown when the user reached the file count limit
var ErrFileCountLimit = errors.New("file count limit reached")

// ErrFileTypeNotAllowed is an error thrown when the extension is blacklisted
var ErrFileTypeNotAllowed = errors.New("file type not allowed")

// ErrFileSizeTooBig is an error thrown when file size is too big
var ErrFileSizeTooBig = errors.New("file size too big")

// ErrOffsetMismatch is an error thrown when a chunk does not start at the stored offset
var ErrOffsetMismatch = errors.New("upload offset mismatch")

// ErrInvalidUploadRequest is an error thrown when upload headers or metadata are malformed
var ErrInvalidUploadRequest = errors.New("invalid upload request")

// ErrUploadIncomplete is an error thrown when finalize is requested before every byte arrived
var ErrUploadIncomplete = errors.New("upload incomplete")

// ErrLockUnavailable is an error thrown when a session lock could not be acquired in time
var ErrLockUnavailable = errors.New("upload is locked")

// ErrFolderNotFound is an error thrown when a target folder does not exist or belongs to someone else
var ErrFolderNotFound = errors.New("folder not found")
