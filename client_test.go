package streamtos3

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/jgru/stream-to-s3/errors"
	"github.com/jgru/stream-to-s3/internal/testutil"
)

func TestNew_WithCustomAWSConfig(t *testing.T) {
	// A pre-built config must be taken as-is, skipping the default
	// credential chain entirely.
	cfg := aws.Config{Region: "eu-central-1"}

	client, err := New(WithAWSConfig(&cfg))
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.Equal(t, "eu-central-1", client.config.Region)
	assert.NotNil(t, client.s3Client)
	assert.NotNil(t, client.rawClient)
	assert.NotNil(t, client.fs)
	assert.NotNil(t, client.logger)
}

func TestNew_RegionOptionOverridesConfig(t *testing.T) {
	cfg := aws.Config{Region: "eu-central-1"}

	client, err := New(WithAWSConfig(&cfg), WithRegion("us-west-2"))
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", client.config.Region)
}

func TestNew_DefaultRegionFallback(t *testing.T) {
	client, err := New(WithAWSConfig(&aws.Config{}))
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", client.config.Region)
}

func TestNewWithClient_Defaults(t *testing.T) {
	client := NewWithClient(testutil.NewFakeS3())

	require.NotNil(t, client)
	assert.NotNil(t, client.fs, "filesystem must default to the OS filesystem")
	assert.NotNil(t, client.logger, "logger must default to the console logger")
	assert.Nil(t, client.rawClient)
}

func TestNewWithClient_HonorsFilesystemOption(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	client := NewWithClient(testutil.NewFakeS3(), WithFilesystem(memFS))

	assert.Same(t, memFS, client.fs)
}

func TestClient_StreamFile(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	content := testutil.PatternBytes(4000)
	require.NoError(t, memFS.WriteFile("/data/dump.csv", content, 0o644))

	fake := testutil.NewFakeS3()
	client := NewWithClient(fake, WithFilesystem(memFS))

	result, err := client.StreamFile(context.Background(), "test-bucket", "dump.csv",
		"/data/dump.csv", fastOpts()...)
	require.NoError(t, err)

	assert.Equal(t, int64(4000), result.Size)
	assert.Equal(t, testutil.MD5Hex(content), result.MD5)
	// Binary pattern content is inconclusive for sniffing, so the extension
	// decides.
	assert.Equal(t, "text/csv; charset=utf-8", fake.ContentType)
	assert.True(t, fake.Completed)
}

func TestClient_StreamFile_MissingFile(t *testing.T) {
	client := NewWithClient(testutil.NewFakeS3(), WithFilesystem(billy.NewInMemoryFS()))

	_, err := client.StreamFile(context.Background(), "test-bucket", "obj", "/nope.bin")
	require.Error(t, err)
	assert.ErrorIs(t, err, s3errors.ErrInvalidInput)
}

func TestClient_StreamFile_Directory(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	require.NoError(t, memFS.MkdirAll("/data", 0o755))
	client := NewWithClient(testutil.NewFakeS3(), WithFilesystem(memFS))

	_, err := client.StreamFile(context.Background(), "test-bucket", "obj", "/data")
	require.Error(t, err)
	assert.ErrorIs(t, err, s3errors.ErrInvalidInput)
}

func TestClient_StreamFile_EmptyPath(t *testing.T) {
	client := NewWithClient(testutil.NewFakeS3())

	_, err := client.StreamFile(context.Background(), "test-bucket", "obj", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, s3errors.ErrInvalidInput)
}
