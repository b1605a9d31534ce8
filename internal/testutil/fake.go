package testutil

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jgru/stream-to-s3/internal/s3api"
)

// FakeUploadID is the upload ID every FakeS3 session hands out.
const FakeUploadID = "fake-upload-0001"

// FakeS3 is a stateful in-memory multipart backend. It computes real per-part
// and composite ETags with the same math S3 uses, so end-to-end tests
// exercise the actual checksum formulas rather than canned strings.
//
// Failure injection is per part number: FailAttempts simulates transport
// errors, BadETagAttempts returns a corrupted ETag so the uploader's
// checksum comparison trips. All fields must be set before first use; the
// fake is safe for concurrent calls afterwards.
type FakeS3 struct {
	mu sync.Mutex

	// CreateErr and CompleteErr fail the corresponding operation outright.
	CreateErr   error
	CompleteErr error

	// MissingBucket makes HeadBucket report the bucket as absent.
	MissingBucket bool

	// FailAttempts maps part number to how many initial attempts fail with
	// a transport error; a negative count fails every attempt.
	FailAttempts map[int32]int

	// BadETagAttempts maps part number to how many initial attempts return
	// a corrupted ETag despite accepting the payload.
	BadETagAttempts map[int32]int

	// RemoteETagOverride, when non-empty, is reported by HeadObject instead
	// of the composite ETag computed at completion time.
	RemoteETagOverride string

	// Recorded state, readable after the run.
	Bucket         string
	Key            string
	ContentType    string
	Metadata       map[string]string
	Attempts       map[int32]int
	PartDigests    map[int32][]byte
	PartSizes      map[int32]int64
	CompletedOrder []int32
	Completed      bool
	AbortCalls     int
	AbortUploadID  string
	remoteETag     string
	totalSize      int64
}

// NewFakeS3 creates an empty fake backend.
func NewFakeS3() *FakeS3 {
	return &FakeS3{
		Attempts:    make(map[int32]int),
		PartDigests: make(map[int32][]byte),
		PartSizes:   make(map[int32]int64),
	}
}

// CreateMultipartUpload opens the fake session and records the target
// object's identity and content type.
func (f *FakeS3) CreateMultipartUpload(
	_ context.Context,
	params *s3.CreateMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.CreateMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	f.Bucket = aws.ToString(params.Bucket)
	f.Key = aws.ToString(params.Key)
	f.ContentType = aws.ToString(params.ContentType)
	f.Metadata = params.Metadata

	return &s3.CreateMultipartUploadOutput{
		UploadId: aws.String(FakeUploadID),
	}, nil
}

// UploadPart consumes the part body, stores its MD5 digest, and returns the
// quoted hex digest as ETag, subject to the configured failure injection.
func (f *FakeS3) UploadPart(
	_ context.Context,
	params *s3.UploadPartInput,
	_ ...func(*s3.Options),
) (*s3.UploadPartOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	number := aws.ToInt32(params.PartNumber)
	f.Attempts[number]++
	attempt := f.Attempts[number]

	if fail, ok := f.FailAttempts[number]; ok && (fail < 0 || attempt <= fail) {
		return nil, fmt.Errorf("injected transport failure for part %d attempt %d", number, attempt)
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, fmt.Errorf("read part body: %w", err)
	}

	sum := md5.Sum(body)
	etag := fmt.Sprintf("%x", sum)
	if bad, ok := f.BadETagAttempts[number]; ok && attempt <= bad {
		etag = corruptETag(etag)
	} else {
		digest := make([]byte, len(sum))
		copy(digest, sum[:])
		f.PartDigests[number] = digest
		f.PartSizes[number] = int64(len(body))
	}

	return &s3.UploadPartOutput{
		ETag: aws.String(`"` + etag + `"`),
	}, nil
}

// CompleteMultipartUpload assembles the object from the listed parts in the
// given order and computes the real composite ETag over their digests.
func (f *FakeS3) CompleteMultipartUpload(
	_ context.Context,
	params *s3.CompleteMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.CompleteMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CompleteErr != nil {
		return nil, f.CompleteErr
	}

	h := md5.New()
	f.CompletedOrder = nil
	f.totalSize = 0
	for _, p := range params.MultipartUpload.Parts {
		number := aws.ToInt32(p.PartNumber)
		digest, ok := f.PartDigests[number]
		if !ok {
			return nil, fmt.Errorf("complete references unknown part %d", number)
		}
		h.Write(digest)
		f.CompletedOrder = append(f.CompletedOrder, number)
		f.totalSize += f.PartSizes[number]
	}

	f.remoteETag = fmt.Sprintf("%x-%d", h.Sum(nil), len(params.MultipartUpload.Parts))
	f.Completed = true

	return &s3.CompleteMultipartUploadOutput{
		ETag: aws.String(`"` + f.remoteETag + `"`),
	}, nil
}

// AbortMultipartUpload records the abort call.
func (f *FakeS3) AbortMultipartUpload(
	_ context.Context,
	params *s3.AbortMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.AbortMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.AbortCalls++
	f.AbortUploadID = aws.ToString(params.UploadId)
	return &s3.AbortMultipartUploadOutput{}, nil
}

// HeadObject reports the assembled object once the session completed and
// NotFound before that.
func (f *FakeS3) HeadObject(
	_ context.Context,
	_ *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.Completed {
		return nil, &awstypes.NotFound{}
	}

	etag := f.remoteETag
	if f.RemoteETagOverride != "" {
		etag = f.RemoteETagOverride
	}

	return &s3.HeadObjectOutput{
		ETag:          aws.String(`"` + etag + `"`),
		ContentLength: aws.Int64(f.totalSize),
	}, nil
}

// HeadBucket succeeds unless MissingBucket is set.
func (f *FakeS3) HeadBucket(
	_ context.Context,
	_ *s3.HeadBucketInput,
	_ ...func(*s3.Options),
) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.MissingBucket {
		return nil, &awstypes.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

// RemoteETag returns the composite ETag computed at completion time.
func (f *FakeS3) RemoteETag() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remoteETag
}

// corruptETag flips the first hex digit so the tag stays well-formed but no
// longer matches.
func corruptETag(etag string) string {
	b := []byte(etag)
	if b[0] == '0' {
		b[0] = '1'
	} else {
		b[0] = '0'
	}
	return string(b)
}

// Ensure FakeS3 implements s3api.S3API interface
var _ s3api.S3API = (*FakeS3)(nil)
