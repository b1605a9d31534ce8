package main

import (
	"errors"

	s3errors "github.com/jgru/stream-to-s3/errors"
)

// Process exit codes. Each failure kind gets its own code so surrounding
// tooling can react without parsing output.
const (
	exitOK                = 0
	exitUsage             = 1
	exitKeyfileRead       = 2
	exitKeyfileFormat     = 3
	exitConnection        = 4
	exitBucketUnavailable = 5
	exitObjectExists      = 6
	exitSessionInit       = 7
	exitUploadFailed      = 8
	exitIntegrityMismatch = 9
)

// exitCode maps an error from the library to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	switch {
	case errors.Is(err, s3errors.ErrKeyfileRead):
		return exitKeyfileRead
	case errors.Is(err, s3errors.ErrKeyfileFormat):
		return exitKeyfileFormat
	case errors.Is(err, s3errors.ErrBucketNotFound):
		return exitBucketUnavailable
	case errors.Is(err, s3errors.ErrObjectExists):
		return exitObjectExists
	case errors.Is(err, s3errors.ErrSessionInit):
		return exitSessionInit
	case errors.Is(err, s3errors.ErrPartUpload),
		errors.Is(err, s3errors.ErrCompleteFailed),
		errors.Is(err, s3errors.ErrObjectNotFound):
		return exitUploadFailed
	case errors.Is(err, s3errors.ErrIntegrityMismatch):
		return exitIntegrityMismatch
	case errors.Is(err, s3errors.ErrConnection),
		errors.Is(err, s3errors.ErrAccessDenied):
		return exitConnection
	case errors.Is(err, s3errors.ErrInvalidInput),
		errors.Is(err, s3errors.ErrInvalidBucketName),
		errors.Is(err, s3errors.ErrInvalidObjectKey),
		errors.Is(err, s3errors.ErrInvalidChunkSize),
		errors.Is(err, s3errors.ErrEmptyStream):
		return exitUsage
	default:
		return exitUploadFailed
	}
}
