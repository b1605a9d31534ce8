package keyfile

import (
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/jgru/stream-to-s3/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Credentials
		wantErr error
	}{
		{
			name:    "valid",
			content: "AKIAEXAMPLE:sup3rs3cret",
			want:    Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "sup3rs3cret"},
		},
		{
			name:    "surrounding whitespace",
			content: " \tAKIAEXAMPLE:sup3rs3cret\n\r",
			want:    Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "sup3rs3cret"},
		},
		{
			name:    "trailing newline only",
			content: "AKIAEXAMPLE:sup3rs3cret\n",
			want:    Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "sup3rs3cret"},
		},
		{
			name:    "no colon",
			content: "AKIAEXAMPLE sup3rs3cret",
			wantErr: s3errors.ErrKeyfileFormat,
		},
		{
			name:    "too many colons",
			content: "AKIAEXAMPLE:sup3r:s3cret",
			wantErr: s3errors.ErrKeyfileFormat,
		},
		{
			name:    "empty key id",
			content: ":sup3rs3cret",
			wantErr: s3errors.ErrKeyfileFormat,
		},
		{
			name:    "empty secret",
			content: "AKIAEXAMPLE:",
			wantErr: s3errors.ErrKeyfileFormat,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: s3errors.ErrKeyfileFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memFS := billy.NewInMemoryFS()
			require.NoError(t, memFS.WriteFile("/keyfile", []byte(tt.content), 0o600))

			got, err := Parse(memFS, "/keyfile")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_UnreadableFile(t *testing.T) {
	memFS := billy.NewInMemoryFS()

	_, err := Parse(memFS, "/does-not-exist")
	require.Error(t, err)

	assert.ErrorIs(t, err, s3errors.ErrKeyfileRead)
	assert.NotErrorIs(t, err, s3errors.ErrKeyfileFormat,
		"unreadable and malformed keyfiles map to different exit codes")
}
