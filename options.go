// Package streamtos3 provides functional options for configuring client and
// upload behavior. These options follow the functional options pattern for
// clean, composable configuration.
package streamtos3

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/jgru/stream-to-s3/streamtypes"
)

// WithRegion sets the AWS region.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) streamtypes.Option {
	return func(c *streamtypes.ClientConfig) {
		c.Region = region
	}
}

// WithCredentials sets a static access key pair, bypassing the default
// credential chain. Use this when credentials come from a keyfile rather
// than the environment.
func WithCredentials(accessKeyID, secretAccessKey string) streamtypes.Option {
	return func(c *streamtypes.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
	}
}

// WithEndpoint sets a custom S3 endpoint URL and enables path-style
// addressing. This is useful for S3-compatible services like MinIO or local
// testing with LocalStack.
func WithEndpoint(endpoint string) streamtypes.Option {
	return func(c *streamtypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of
// virtual-hosted style, independent of a custom endpoint.
func WithForcePathStyle(forcePathStyle bool) streamtypes.Option {
	return func(c *streamtypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) streamtypes.Option {
	return func(c *streamtypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including timeouts and proxies.
func WithCustomHTTPClient(client *http.Client) streamtypes.Option {
	return func(c *streamtypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets a custom filesystem implementation for file input and
// keyfile access. This allows using in-memory filesystems for testing.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) streamtypes.Option {
	return func(c *streamtypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger used for per-part progress and debug output.
// If not specified, a default console logger is used.
func WithLogger(logger log.Logger) streamtypes.Option {
	return func(c *streamtypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithChunkSize sets the part size in bytes for one streaming upload.
// Default is 8 MiB. The backend requires at least 5 MiB for every part
// except the last one.
func WithChunkSize(size int64) streamtypes.StreamOption {
	return func(c *streamtypes.StreamConfig) {
		if size > 0 {
			c.ChunkSize = size
		}
	}
}

// WithMaxRetries sets the total number of upload attempts per part,
// including the first one. Default is 5.
func WithMaxRetries(attempts int) streamtypes.StreamOption {
	return func(c *streamtypes.StreamConfig) {
		if attempts > 0 {
			c.MaxRetries = attempts
		}
	}
}

// WithRetryDelay sets the fixed wait between attempts for one part.
// Default is 5 seconds.
func WithRetryDelay(delay time.Duration) streamtypes.StreamOption {
	return func(c *streamtypes.StreamConfig) {
		if delay > 0 {
			c.RetryDelay = delay
		}
	}
}

// WithContentType sets the content type recorded on the uploaded object,
// disabling content sniffing.
func WithContentType(contentType string) streamtypes.StreamOption {
	return func(c *streamtypes.StreamConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata sets metadata recorded on the uploaded object.
func WithMetadata(metadata map[string]string) streamtypes.StreamOption {
	return func(c *streamtypes.StreamConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
}

// WithStorageClass sets the storage class for the uploaded object.
func WithStorageClass(storageClass streamtypes.StorageClass) streamtypes.StreamOption {
	return func(c *streamtypes.StreamConfig) {
		c.StorageClass = storageClass
	}
}
