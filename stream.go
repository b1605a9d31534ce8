package streamtos3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	s3errors "github.com/jgru/stream-to-s3/errors"
	"github.com/jgru/stream-to-s3/internal/upload"
	"github.com/jgru/stream-to-s3/internal/validation"
	"github.com/jgru/stream-to-s3/streamtypes"
)

const (
	// DefaultContentType is the content type recorded when detection fails
	DefaultContentType = "application/octet-stream"

	// sniffLen is how many leading bytes are inspected for content-type
	// detection before the stream is handed to the chunker
	sniffLen = 512
)

// Stream uploads everything read from src as one S3 object via multipart
// upload. It reads chunk by chunk, so src may be unbounded; memory use stays
// at one chunk buffer. Parts are uploaded strictly sequentially with
// per-part retry; any terminal part failure aborts the multipart session
// before the error is returned.
//
// Returns:
//   - *StreamResult: upload ID, total size, whole-stream MD5, the locally
//     computed composite ETag, and the ordered part list for Verify
//   - error: a distinguishable error kind on any terminal failure
//
// Errors:
//   - ErrInvalidInput: if bucket, key, or tuning parameters are invalid
//   - ErrSessionInit: if the multipart session could not be opened
//   - ErrPartUpload: if a part exhausted its retry budget (session aborted)
//   - ErrEmptyStream: if src yielded zero bytes (session aborted)
//   - ErrCompleteFailed: if completing the session failed (session kept)
//
// Example:
//
//	result, err := client.Stream(ctx, "my-bucket", "dump.sql.gz", os.Stdin,
//	    streamtos3.WithChunkSize(16*1024*1024),
//	    streamtos3.WithMaxRetries(3),
//	)
func (c *Client) Stream(
	ctx context.Context,
	bucket, key string,
	src io.Reader,
	opts ...streamtypes.StreamOption,
) (*streamtypes.StreamResult, error) {
	if src == nil {
		return nil, s3errors.NewObjectError("stream", bucket, key, s3errors.ErrInvalidInput).
			WithMessage("reader cannot be nil")
	}

	cfg, err := resolveStreamConfig(bucket, key, opts)
	if err != nil {
		return nil, err
	}

	return c.stream(ctx, bucket, key, src, cfg, "")
}

// StreamFile uploads a local file via multipart upload. It is a convenience
// wrapper around Stream that opens the file through the client's filesystem
// abstraction and falls back to extension-based content-type detection when
// sniffing the leading bytes is inconclusive.
func (c *Client) StreamFile(
	ctx context.Context,
	bucket, key, path string,
	opts ...streamtypes.StreamOption,
) (*streamtypes.StreamResult, error) {
	if path == "" {
		return nil, s3errors.NewObjectError("streamFile", bucket, key, s3errors.ErrInvalidInput).
			WithMessage("filepath cannot be empty")
	}

	cfg, err := resolveStreamConfig(bucket, key, opts)
	if err != nil {
		return nil, err
	}

	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, s3errors.NewObjectError("streamFile", bucket, key,
			errors.Join(s3errors.ErrInvalidInput, err))
	}
	if info.IsDir() {
		return nil, s3errors.NewObjectError("streamFile", bucket, key, s3errors.ErrInvalidInput).
			WithMessage("filepath points to a directory, not a file")
	}

	file, err := c.fs.Open(path)
	if err != nil {
		return nil, s3errors.NewObjectError("streamFile", bucket, key,
			errors.Join(s3errors.ErrInvalidInput, err))
	}
	defer file.Close()

	return c.stream(ctx, bucket, key, file, cfg, extensionContentType(path))
}

// stream runs the resolved upload. extFallback, when non-empty, replaces a
// generic sniffing result for file-based input.
func (c *Client) stream(
	ctx context.Context,
	bucket, key string,
	src io.Reader,
	cfg *streamtypes.StreamConfig,
	extFallback string,
) (*streamtypes.StreamResult, error) {
	if cfg.ContentType == "" {
		detected, rest, err := sniffContentType(src)
		if err != nil {
			return nil, s3errors.NewObjectError("stream", bucket, key, err)
		}
		if detected == DefaultContentType && extFallback != "" {
			detected = extFallback
		}
		cfg.ContentType = detected
		src = rest
	}

	sess := upload.NewSession(c.s3Client, c.logger, upload.Config{
		Bucket:       bucket,
		Key:          key,
		ChunkSize:    cfg.ChunkSize,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		ContentType:  cfg.ContentType,
		Metadata:     cfg.Metadata,
		StorageClass: cfg.StorageClass,
	})

	return sess.Run(ctx, src)
}

// resolveStreamConfig validates identifiers, applies the options, and fills
// in defaults.
func resolveStreamConfig(
	bucket, key string,
	opts []streamtypes.StreamOption,
) (*streamtypes.StreamConfig, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, s3errors.NewObjectError("stream", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, s3errors.NewObjectError("stream", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}

	cfg := &streamtypes.StreamConfig{
		StorageClass: streamtypes.StorageClassStandard,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Resolve()

	if err := validation.ValidateChunkSize(cfg.ChunkSize); err != nil {
		return nil, s3errors.NewObjectError("stream", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if err := validation.ValidateMetadata(cfg.Metadata); err != nil {
		return nil, s3errors.NewObjectError("stream", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}

	return cfg, nil
}

// sniffContentType reads up to sniffLen leading bytes from src, detects the
// content type, and returns a reader that replays the consumed bytes before
// continuing with the rest of the stream.
func sniffContentType(src io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]

	contentType := DefaultContentType
	if n > 0 {
		if mt := mimetype.Detect(head); mt != nil {
			contentType = mt.String()
		}
	}

	return contentType, io.MultiReader(bytes.NewReader(head), src), nil
}

// extensionContentType maps a file extension to a MIME type, or returns ""
// when the extension is unknown.
func extensionContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}
