package streamtos3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	s3errors "github.com/jgru/stream-to-s3/errors"
	"github.com/jgru/stream-to-s3/internal/validation"
	"github.com/jgru/stream-to-s3/internal/verify"
	"github.com/jgru/stream-to-s3/streamtypes"
)

// Verify checks a finalized object against the part list collected during a
// streaming upload. It recomputes the composite checksum from the part
// digests and compares it to the backend-reported ETag.
//
// On a mismatch the returned VerifyResult still carries both tags and the
// error wraps ErrIntegrityMismatch; no remediation is attempted, the remote
// object is left in place. A failed metadata fetch wraps ErrObjectNotFound.
func (c *Client) Verify(
	ctx context.Context,
	bucket, key string,
	parts []streamtypes.Part,
) (*streamtypes.VerifyResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, s3errors.NewObjectError("verify", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, s3errors.NewObjectError("verify", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}

	return verify.NewVerifier(c.s3Client, c.logger).Verify(ctx, bucket, key, parts)
}

// CompositeETag computes the backend's multipart ETag convention over the
// given part list: hex MD5 of the concatenated raw part digests, suffixed
// with the part count. Exposed for callers that persist part lists and want
// to compare tags without a client.
func CompositeETag(parts []streamtypes.Part) string {
	return verify.CompositeETag(parts)
}

// BucketExists reports whether the bucket exists and is reachable.
// A missing bucket returns (false, nil); any other backend failure returns
// an error wrapping ErrConnection so callers can tell connectivity problems
// apart from an absent bucket.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return false, s3errors.NewError("headBucket", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, s3errors.NewError("headBucket",
			fmt.Errorf("%w: %w", s3errors.ErrConnection, err)).WithBucket(bucket)
	}
	return true, nil
}

// ObjectExists reports whether the object is already present in the bucket.
// The CLI uses this as a no-clobber precondition before streaming.
func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, s3errors.NewObjectError("headObject", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}

	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, s3errors.NewObjectError("headObject", bucket, key,
			fmt.Errorf("%w: %w", s3errors.ErrConnection, err))
	}
	return true, nil
}

// isNotFound reports whether an SDK error means the bucket or object does
// not exist, as opposed to a transport or permission failure.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.(type) {
	case *awstypes.NotFound, *awstypes.NoSuchBucket, *awstypes.NoSuchKey:
		return true
	}
	code := apiErr.ErrorCode()
	return code == "NotFound" || strings.HasPrefix(code, "NoSuch")
}
