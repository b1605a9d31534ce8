// Package errors provides error types and handling for streaming S3 uploads.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a streaming upload error with context about the operation
// that failed. It wraps the underlying AWS SDK error with additional context
// for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "stream", "upload_part", "verify")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Part is the 1-based part number (if the error concerns a single part)
	Part int32

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Part > 0 {
		return fmt.Sprintf("s3.%s %s/%s part %d: %v", e.Op, e.Bucket, e.Key, e.Part, e.Err)
	}
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithPart adds part number context to an existing error.
func (e *Error) WithPart(number int32) *Error {
	e.Part = number
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for streaming upload failures.
// These can be used with errors.Is() for error checking, so callers can map
// every failure kind to distinct handling without string matching.
var (
	// ErrSessionInit indicates that opening the multipart session failed
	ErrSessionInit = errors.New("s3: multipart session init failed")

	// ErrPartUpload indicates that a part exhausted its retry budget
	ErrPartUpload = errors.New("s3: part upload failed")

	// ErrETagMismatch indicates the backend ETag did not match the local
	// MD5 of the part body
	ErrETagMismatch = errors.New("s3: part etag does not match content md5")

	// ErrCompleteFailed indicates that completing the multipart session failed
	ErrCompleteFailed = errors.New("s3: complete multipart upload failed")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3: object not found")

	// ErrIntegrityMismatch indicates the composite checksum computed from
	// the uploaded parts disagrees with the backend-reported ETag
	ErrIntegrityMismatch = errors.New("s3: integrity mismatch")

	// ErrEmptyStream indicates the input produced zero bytes; the backend
	// session was aborted because a multipart upload needs at least one part
	ErrEmptyStream = errors.New("s3: empty input stream")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrObjectExists indicates the target object is already present and
	// would be clobbered by the upload
	ErrObjectExists = errors.New("s3: object already exists")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrConnection indicates a connection error
	ErrConnection = errors.New("s3: connection error")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3: invalid object key")

	// ErrInvalidChunkSize indicates that the chunk size is out of range
	ErrInvalidChunkSize = errors.New("s3: invalid chunk size")

	// ErrKeyfileRead indicates the credentials file could not be read
	ErrKeyfileRead = errors.New("keyfile: not readable")

	// ErrKeyfileFormat indicates the credentials file is malformed
	ErrKeyfileFormat = errors.New("keyfile: malformed, want <ACCESS_KEY_ID>:<SECRET_KEY>")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsObjectExists checks if an error indicates the target object already exists.
func IsObjectExists(err error) bool {
	return errors.Is(err, ErrObjectExists)
}

// IsPartUploadFailed checks if an error indicates a part ran out of retries.
func IsPartUploadFailed(err error) bool {
	return errors.Is(err, ErrPartUpload)
}

// IsIntegrityMismatch checks if an error indicates a composite checksum
// disagreement between the uploaded parts and the backend-reported ETag.
func IsIntegrityMismatch(err error) bool {
	return errors.Is(err, ErrIntegrityMismatch)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
