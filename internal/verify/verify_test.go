package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/jgru/stream-to-s3/errors"
	"github.com/jgru/stream-to-s3/internal/testutil"
	"github.com/jgru/stream-to-s3/streamtypes"
)

func partsFromDigests(digests [][]byte) []streamtypes.Part {
	parts := make([]streamtypes.Part, len(digests))
	for i, d := range digests {
		parts[i] = streamtypes.Part{Number: int32(i + 1), MD5: d}
	}
	return parts
}

func TestCompositeETag(t *testing.T) {
	t.Run("zero parts", func(t *testing.T) {
		// MD5 of the empty string, suffixed with a zero part count.
		assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e-0", CompositeETag(nil))
	})

	t.Run("matches backend formula", func(t *testing.T) {
		data := testutil.PatternBytes(100)
		digests := testutil.PartDigests(data, 30)
		parts := partsFromDigests(digests)

		assert.Equal(t, testutil.CompositeETagOf(digests), CompositeETag(parts))
	})

	t.Run("pure function", func(t *testing.T) {
		parts := partsFromDigests(testutil.PartDigests(testutil.PatternBytes(64), 16))
		assert.Equal(t, CompositeETag(parts), CompositeETag(parts))
	})

	t.Run("part count is part of the tag", func(t *testing.T) {
		digests := testutil.PartDigests(testutil.PatternBytes(64), 16)
		four := CompositeETag(partsFromDigests(digests))
		three := CompositeETag(partsFromDigests(digests[:3]))
		assert.NotEqual(t, four, three)
	})
}

func TestVerifier_Verify_Match(t *testing.T) {
	digests := testutil.PartDigests(testutil.PatternBytes(100), 40)
	parts := partsFromDigests(digests)
	remote := testutil.CompositeETagOf(digests)

	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			assert.Equal(t, "test-bucket", aws.ToString(params.Bucket))
			assert.Equal(t, "test-object", aws.ToString(params.Key))
			return &s3.HeadObjectOutput{
				ETag:          aws.String(`"` + remote + `"`),
				ContentLength: aws.Int64(100),
			}, nil
		},
	}

	v := NewVerifier(mock, log.NewLogger())
	result, err := v.Verify(context.Background(), "test-bucket", "test-object", parts)
	require.NoError(t, err)

	assert.True(t, result.Match)
	assert.Equal(t, remote, result.LocalETag)
	assert.Equal(t, remote, result.RemoteETag)
	assert.Equal(t, int64(100), result.Size)
	assert.Equal(t, 3, result.PartCount)
}

func TestVerifier_Verify_Mismatch(t *testing.T) {
	digests := testutil.PartDigests(testutil.PatternBytes(100), 40)
	parts := partsFromDigests(digests)

	// Flip one byte of the reported tag.
	remote := []byte(testutil.CompositeETagOf(digests))
	if remote[0] == 'a' {
		remote[0] = 'b'
	} else {
		remote[0] = 'a'
	}

	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return &s3.HeadObjectOutput{ETag: aws.String(`"` + string(remote) + `"`)}, nil
		},
	}

	v := NewVerifier(mock, log.NewLogger())
	result, err := v.Verify(context.Background(), "test-bucket", "test-object", parts)
	require.Error(t, err)

	assert.ErrorIs(t, err, s3errors.ErrIntegrityMismatch)
	// The result still carries both tags so callers can report them.
	require.NotNil(t, result)
	assert.False(t, result.Match)
	assert.Equal(t, string(remote), result.RemoteETag)
	assert.NotEqual(t, result.LocalETag, result.RemoteETag)
}

func TestVerifier_Verify_ObjectNotFound(t *testing.T) {
	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return nil, &awstypes.NotFound{}
		},
	}

	v := NewVerifier(mock, log.NewLogger())
	result, err := v.Verify(context.Background(), "test-bucket", "test-object", nil)
	require.Error(t, err)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, s3errors.ErrObjectNotFound)
	assert.NotErrorIs(t, err, s3errors.ErrIntegrityMismatch, "missing object must be distinguishable from a mismatch")
}

func TestVerifier_Verify_HeadTransportError(t *testing.T) {
	cause := errors.New("connection reset")
	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return nil, cause
		},
	}

	v := NewVerifier(mock, log.NewLogger())
	_, err := v.Verify(context.Background(), "test-bucket", "test-object", nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, s3errors.ErrObjectNotFound)
	assert.ErrorIs(t, err, cause)
}
