// Package upload implements the multipart upload state machine that streams
// an unbounded input into S3 one fixed-size part at a time.
//
// A Session moves through Created → Uploading → Finalizing and terminates in
// either Completed or Aborted. Chunk N+1 is never read before part N has
// terminally succeeded or failed, so memory stays bounded by one chunk buffer.
package upload

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"

	s3errors "github.com/jgru/stream-to-s3/errors"
	"github.com/jgru/stream-to-s3/internal/chunk"
	"github.com/jgru/stream-to-s3/internal/s3api"
	"github.com/jgru/stream-to-s3/internal/verify"
	"github.com/jgru/stream-to-s3/streamtypes"
)

// state tracks where a Session is in its lifecycle.
type state int

const (
	stateCreated state = iota
	stateUploading
	stateFinalizing
	stateCompleted
	stateAborted
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateUploading:
		return "uploading"
	case stateFinalizing:
		return "finalizing"
	case stateCompleted:
		return "completed"
	case stateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Config holds everything a Session needs besides the input stream.
type Config struct {
	Bucket string
	Key    string

	// ChunkSize is the part size in bytes. The final part may be shorter.
	ChunkSize int64

	// MaxRetries is the total number of attempts per part, including the
	// first one. Must be at least 1.
	MaxRetries int

	// RetryDelay is the fixed wait between attempts for one part.
	RetryDelay time.Duration

	ContentType  string
	Metadata     map[string]string
	StorageClass streamtypes.StorageClass
}

// PartUploader uploads one chunk as one part, with bounded retry and
// per-part checksum verification against the backend-returned ETag.
type PartUploader struct {
	client      s3api.S3API
	logger      log.Logger
	maxAttempts int
	delay       time.Duration
}

// NewPartUploader creates a PartUploader. maxAttempts is the total number of
// attempts per part; delay is the fixed wait between attempts.
func NewPartUploader(client s3api.S3API, logger log.Logger, maxAttempts int, delay time.Duration) *PartUploader {
	return &PartUploader{
		client:      client,
		logger:      logger,
		maxAttempts: maxAttempts,
		delay:       delay,
	}
}

// Upload uploads body as part number of the given multipart session.
//
// The MD5 of body is computed up front and sent as the Content-MD5 header so
// the backend verifies the payload server-side. After a successful transport
// call the backend ETag must equal the local hex digest; a mismatch counts as
// a failed attempt exactly like a transport error. Attempts are bounded by
// the configured retry budget; exhaustion returns an error wrapping
// errors.ErrPartUpload together with the last underlying cause.
func (u *PartUploader) Upload(
	ctx context.Context,
	bucket, key, uploadID string,
	number int32,
	body []byte,
) (streamtypes.Part, error) {
	sum := md5.Sum(body)
	digest := hex.EncodeToString(sum[:])
	contentMD5 := base64.StdEncoding.EncodeToString(sum[:])
	size := units.BytesSize(float64(len(body)))

	var etag string
	err := retry.Times(uint(u.maxAttempts - 1)).Wait(u.delay).Try(func(attempt uint) error {
		out, err := u.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			UploadId:      aws.String(uploadID),
			PartNumber:    aws.Int32(number),
			Body:          bytes.NewReader(body),
			ContentLength: aws.Int64(int64(len(body))),
			ContentMD5:    aws.String(contentMD5),
		})
		if err == nil {
			etag = strings.Trim(aws.ToString(out.ETag), `"`)
			if etag != digest {
				err = fmt.Errorf("%w: part %d: got %q, want %q",
					s3errors.ErrETagMismatch, number, etag, digest)
			}
		}
		if err != nil {
			if int(attempt)+1 < u.maxAttempts {
				u.logger.Warnf("part %d try %d/%d failed: %v, retrying in %v",
					number, attempt+1, u.maxAttempts, err, u.delay)
			} else {
				u.logger.Errorf("part %d try %d/%d failed: %v, giving up",
					number, attempt+1, u.maxAttempts, err)
			}
			return err
		}

		u.logger.Donef("part %d - %s - %s - try %d/%d", number, size, digest, attempt+1, u.maxAttempts)
		return nil
	})
	if err != nil {
		return streamtypes.Part{}, s3errors.
			NewObjectError("uploadPart", bucket, key,
				fmt.Errorf("%w after %d attempts: %w", s3errors.ErrPartUpload, u.maxAttempts, err)).
			WithPart(number)
	}

	return streamtypes.Part{
		Number: number,
		Size:   int64(len(body)),
		MD5:    sum[:],
		ETag:   etag,
	}, nil
}

// Session drives one multipart upload from creation to completion or abort.
// It owns the part list and the running whole-stream digest; a Session is
// single-use and not safe for concurrent use.
type Session struct {
	client   s3api.S3API
	logger   log.Logger
	uploader *PartUploader
	cfg      Config

	state     state
	uploadID  string
	parts     []streamtypes.Part
	streamMD5 hash.Hash
	size      int64
}

// NewSession creates a Session for one upload run. The config is assumed to
// be validated and fully resolved by the caller.
func NewSession(client s3api.S3API, logger log.Logger, cfg Config) *Session {
	return &Session{
		client:    client,
		logger:    logger,
		uploader:  NewPartUploader(client, logger, cfg.MaxRetries, cfg.RetryDelay),
		cfg:       cfg,
		state:     stateCreated,
		streamMD5: md5.New(),
	}
}

// Run executes the full upload: open the backend session, upload src chunk by
// chunk with sequential part numbers starting at 1, then complete the session.
// Any terminal per-part failure aborts the backend session before returning.
// A zero-byte input also aborts, since a multipart upload cannot be completed
// with no parts, and returns errors.ErrEmptyStream.
func (s *Session) Run(ctx context.Context, src io.Reader) (*streamtypes.StreamResult, error) {
	start := time.Now()

	if err := s.create(ctx); err != nil {
		return nil, err
	}

	reader := chunk.NewReader(src, s.cfg.ChunkSize)
	defer reader.Release()

	s.state = stateUploading
	var number int32
	for {
		c, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.abort(ctx)
			return nil, s3errors.NewObjectError("stream", s.cfg.Bucket, s.cfg.Key,
				fmt.Errorf("read input: %w", err))
		}

		number++
		s.streamMD5.Write(c)
		s.size += int64(len(c))

		part, err := s.uploader.Upload(ctx, s.cfg.Bucket, s.cfg.Key, s.uploadID, number, c)
		if err != nil {
			s.abort(ctx)
			return nil, err
		}
		s.parts = append(s.parts, part)
	}

	if len(s.parts) == 0 {
		s.abort(ctx)
		return nil, s3errors.NewObjectError("stream", s.cfg.Bucket, s.cfg.Key, s3errors.ErrEmptyStream)
	}

	return s.complete(ctx, start)
}

// create opens the backend multipart session and records the upload ID.
func (s *Session) create(ctx context.Context) error {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.cfg.Key),
	}
	if s.cfg.ContentType != "" {
		input.ContentType = aws.String(s.cfg.ContentType)
	}
	if len(s.cfg.Metadata) > 0 {
		input.Metadata = s.cfg.Metadata
	}
	if s.cfg.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(s.cfg.StorageClass)
	}

	out, err := s.client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return s3errors.NewObjectError("createSession", s.cfg.Bucket, s.cfg.Key,
			fmt.Errorf("%w: %w", s3errors.ErrSessionInit, err))
	}

	s.uploadID = aws.ToString(out.UploadId)
	s.logger.Infof("multipart upload %s started for %s/%s", s.uploadID, s.cfg.Bucket, s.cfg.Key)
	return nil
}

// complete closes the backend session with the ordered part list. On failure
// the backend session is deliberately left in place: the remote state after a
// failed complete is ambiguous and an abort could destroy a finished
// assembly. The upload ID is carried in the error for manual cleanup.
func (s *Session) complete(ctx context.Context, start time.Time) (*streamtypes.StreamResult, error) {
	s.state = stateFinalizing

	completed := make([]awstypes.CompletedPart, len(s.parts))
	for i, p := range s.parts {
		completed[i] = awstypes.CompletedPart{
			PartNumber: aws.Int32(p.Number),
			ETag:       aws.String(p.ETag),
		}
	}

	_, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(s.cfg.Bucket),
		Key:      aws.String(s.cfg.Key),
		UploadId: aws.String(s.uploadID),
		MultipartUpload: &awstypes.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return nil, s3errors.NewObjectError("complete", s.cfg.Bucket, s.cfg.Key,
			fmt.Errorf("%w: upload ID %s: %w", s3errors.ErrCompleteFailed, s.uploadID, err))
	}

	s.state = stateCompleted
	s.logger.Infof("completed upload of %d parts (%s)", len(s.parts), units.BytesSize(float64(s.size)))

	return &streamtypes.StreamResult{
		UploadID:    s.uploadID,
		Bucket:      s.cfg.Bucket,
		Key:         s.cfg.Key,
		Size:        s.size,
		MD5:         hex.EncodeToString(s.streamMD5.Sum(nil)),
		ETag:        verify.CompositeETag(s.parts),
		ContentType: s.cfg.ContentType,
		Parts:       s.parts,
		Duration:    time.Since(start),
	}, nil
}

// abort tears down the backend session after a terminal failure. It is
// fire-and-forget: its own error is logged but never masks the failure that
// triggered it.
func (s *Session) abort(ctx context.Context) {
	if s.uploadID == "" {
		return
	}
	s.state = stateAborted

	_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.cfg.Bucket),
		Key:      aws.String(s.cfg.Key),
		UploadId: aws.String(s.uploadID),
	})
	if err != nil {
		s.logger.Warnf("abort multipart upload %s: %v", s.uploadID, err)
		return
	}
	s.logger.Infof("aborted multipart upload %s", s.uploadID)
}
