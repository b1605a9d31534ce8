// Package verify implements the post-upload integrity check against the
// backend's multipart ETag convention.
//
// S3 tags an object assembled from parts with the MD5 of the concatenated
// raw part digests, suffixed with the part count ("<hex>-<N>"). Recomputing
// that value from the locally collected per-part checksums and comparing it
// to the head-object ETag confirms the remote object was assembled from
// exactly the bytes that were read from the input.
package verify

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/bitrise-io/go-utils/v2/log"

	s3errors "github.com/jgru/stream-to-s3/errors"
	"github.com/jgru/stream-to-s3/internal/s3api"
	"github.com/jgru/stream-to-s3/streamtypes"
)

// CompositeETag computes the multipart ETag for the given parts: the hex MD5
// over the byte-concatenation of the raw part digests in list order, followed
// by "-" and the part count. It is a pure function of the part list.
func CompositeETag(parts []streamtypes.Part) string {
	h := md5.New()
	for _, p := range parts {
		h.Write(p.MD5)
	}
	return fmt.Sprintf("%s-%d", hex.EncodeToString(h.Sum(nil)), len(parts))
}

// Verifier checks a finalized remote object against locally collected part
// checksums.
type Verifier struct {
	client s3api.S3API
	logger log.Logger
}

// NewVerifier creates a Verifier using the given backend client.
func NewVerifier(client s3api.S3API, logger log.Logger) *Verifier {
	return &Verifier{client: client, logger: logger}
}

// Verify fetches the remote object's metadata and compares its ETag, quotes
// stripped, to the composite checksum recomputed from parts.
//
// A failed metadata fetch returns an error wrapping errors.ErrObjectNotFound.
// A checksum disagreement returns the populated VerifyResult together with an
// error wrapping errors.ErrIntegrityMismatch; no remediation is attempted,
// the remote object stays in place.
func (v *Verifier) Verify(
	ctx context.Context,
	bucket, key string,
	parts []streamtypes.Part,
) (*streamtypes.VerifyResult, error) {
	out, err := v.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3errors.NewObjectError("verify", bucket, key, convertHeadError(err))
	}

	result := &streamtypes.VerifyResult{
		Bucket:     bucket,
		Key:        key,
		LocalETag:  CompositeETag(parts),
		RemoteETag: strings.Trim(aws.ToString(out.ETag), `"`),
		Size:       aws.ToInt64(out.ContentLength),
		PartCount:  len(parts),
	}
	result.Match = result.LocalETag == result.RemoteETag

	if !result.Match {
		v.logger.Errorf("etag mismatch for %s/%s: local %s, remote %s",
			bucket, key, result.LocalETag, result.RemoteETag)
		return result, s3errors.NewObjectError("verify", bucket, key, s3errors.ErrIntegrityMismatch)
	}

	v.logger.Debugf("etag %s verified over %d parts", result.LocalETag, result.PartCount)
	return result, nil
}

// convertHeadError maps a head-object failure to ErrObjectNotFound while
// keeping the SDK cause in the chain.
func convertHeadError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := apiErr.(*awstypes.NotFound); ok {
			return s3errors.ErrObjectNotFound
		}
	}
	return fmt.Errorf("%w: %w", s3errors.ErrObjectNotFound, err)
}
