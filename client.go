// Package streamtos3 provides client initialization and configuration.
//
// The Client streams unbounded input (a pipe, stdin, or a file) into an S3
// object via multipart upload, with per-part retry, per-part checksum
// verification, and a post-upload integrity check against the backend's
// composite ETag.
package streamtos3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	s3errors "github.com/jgru/stream-to-s3/errors"
	"github.com/jgru/stream-to-s3/internal/s3api"
	"github.com/jgru/stream-to-s3/streamtypes"
)

// Client represents a streaming upload client with configurable options.
// One Client can run any number of sequential uploads; each call to Stream
// drives its own multipart session.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// rawClient holds the actual AWS S3 client when one was constructed
	rawClient *s3.Client

	// config holds the AWS configuration
	config aws.Config

	// fs is the filesystem abstraction for file operations
	fs fs.Filesystem

	// logger reports per-part progress and debug detail
	logger log.Logger
}

// New creates a new streaming client with the provided options.
// Without credential options it loads AWS credentials using the default
// credential chain.
//
// Example:
//
//	client, err := streamtos3.New(
//	    streamtos3.WithRegion("eu-central-1"),
//	    streamtos3.WithCredentials(keyID, secret),
//	)
func New(opts ...streamtypes.Option) (*Client, error) {
	clientCfg := &streamtypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(clientCfg.Region))
		}
		if clientCfg.AccessKeyID != "" && clientCfg.SecretAccessKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(clientCfg.AccessKeyID, clientCfg.SecretAccessKey, "")))
		}
		cfg, err = config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, s3errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
			// Custom endpoints are S3-compatible services, which rarely
			// support virtual-hosted bucket addressing.
			o.UsePathStyle = true
		})
	}
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.CustomHTTPClient != nil {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = clientCfg.CustomHTTPClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	return &Client{
		s3Client:  s3Client,
		rawClient: s3Client,
		config:    cfg,
		fs:        resolveFilesystem(clientCfg.Filesystem),
		logger:    resolveLogger(clientCfg.Logger),
	}, nil
}

// NewWithClient creates a streaming client with a custom S3API
// implementation. This is primarily used for testing with mocked or fake
// backends; WithFilesystem and WithLogger options are honored, AWS
// configuration options are ignored.
func NewWithClient(s3Client s3api.S3API, opts ...streamtypes.Option) *Client {
	clientCfg := &streamtypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		fs:       resolveFilesystem(clientCfg.Filesystem),
		logger:   resolveLogger(clientCfg.Logger),
	}
}

func resolveFilesystem(filesystem fs.Filesystem) fs.Filesystem {
	if filesystem != nil {
		return filesystem
	}
	return billy.NewOSFS("/")
}

func resolveLogger(logger log.Logger) log.Logger {
	if logger != nil {
		return logger
	}
	return log.NewLogger()
}
