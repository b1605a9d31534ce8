// Package streamtypes provides shared type definitions for the stream-to-s3 module.
package streamtypes

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// Default tuning values applied when the corresponding config field is zero.
const (
	// DefaultChunkSize is the default part size in bytes (8 MiB)
	DefaultChunkSize int64 = 8 * 1024 * 1024

	// DefaultMaxRetries is the default number of upload attempts per part
	DefaultMaxRetries = 5

	// DefaultRetryDelay is the default wait between attempts for one part
	DefaultRetryDelay = 5 * time.Second
)

// Hard limits imposed by the multipart upload protocol.
const (
	// MinChunkSize is the smallest part size the backend accepts for any
	// part other than the last one (5 MiB)
	MinChunkSize int64 = 5 * 1024 * 1024

	// MaxChunkSize is the largest part size the backend accepts (5 GiB)
	MaxChunkSize int64 = 5 * 1024 * 1024 * 1024

	// MaxParts is the maximum number of parts in one multipart upload
	MaxParts = 10000
)

// StorageClass represents the S3 storage class for objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides reduced redundancy storage
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive provides Deep Archive storage
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"

	// StorageClassGlacierIR provides Glacier Instant Retrieval storage
	StorageClassGlacierIR StorageClass = "GLACIER_IR"
)

// Part records one successfully uploaded part of a multipart session.
type Part struct {
	// Number is the 1-based part number; parts are numbered sequentially
	// with no gaps
	Number int32

	// Size is the part payload length in bytes
	Size int64

	// MD5 is the raw 16-byte MD5 digest of the part body, computed locally
	// before upload
	MD5 []byte

	// ETag is the entity tag the backend returned for the part, exactly as
	// received (usually wrapped in double quotes)
	ETag string
}

// StreamResult contains the result of a completed streaming upload.
type StreamResult struct {
	// UploadID is the backend handle for the multipart session
	UploadID string

	// Bucket is the destination bucket
	Bucket string

	// Key is the destination object key
	Key string

	// Size is the total number of bytes streamed
	Size int64

	// MD5 is the hex MD5 digest over the entire input stream
	MD5 string

	// ETag is the locally computed composite checksum in the backend's
	// multipart convention: <hex md5-of-part-digests>-<part count>
	ETag string

	// ContentType is the MIME type recorded on the object
	ContentType string

	// Parts lists every uploaded part in ascending part-number order
	Parts []Part

	// Duration is how long the upload took
	Duration time.Duration
}

// VerifyResult contains the outcome of an integrity check against the
// finalized remote object.
type VerifyResult struct {
	// Bucket is the bucket that was checked
	Bucket string

	// Key is the object key that was checked
	Key string

	// LocalETag is the composite checksum recomputed from the uploaded
	// part digests
	LocalETag string

	// RemoteETag is the backend-reported ETag, quotes stripped
	RemoteETag string

	// Size is the remote object size in bytes
	Size int64

	// PartCount is the number of parts the checksum was computed over
	PartCount int

	// Match reports whether LocalETag and RemoteETag are equal
	Match bool
}

// Configuration types for functional options

// ClientConfig holds configuration for the streaming client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Filesystem       fs.Filesystem // Filesystem abstraction for file operations
	Logger           log.Logger    // Logger for progress and debug output
}

// StreamConfig holds per-upload tuning via functional options.
type StreamConfig struct {
	ChunkSize    int64
	MaxRetries   int
	RetryDelay   time.Duration
	ContentType  string
	Metadata     map[string]string
	StorageClass StorageClass
}

// Resolve fills zero-valued tuning fields with the package defaults.
func (c *StreamConfig) Resolve() {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
}

// Option is a functional option for configuring the streaming client.
type (
	Option func(*ClientConfig)
	// StreamOption is a functional option for configuring one streaming upload.
	StreamOption func(*StreamConfig)
)
