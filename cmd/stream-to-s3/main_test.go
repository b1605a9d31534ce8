package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	s3errors "github.com/jgru/stream-to-s3/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"keyfile unreadable", s3errors.ErrKeyfileRead, exitKeyfileRead},
		{"keyfile malformed", s3errors.ErrKeyfileFormat, exitKeyfileFormat},
		{"bucket missing", s3errors.ErrBucketNotFound, exitBucketUnavailable},
		{"object exists", s3errors.ErrObjectExists, exitObjectExists},
		{"session init", s3errors.ErrSessionInit, exitSessionInit},
		{"part upload exhausted", s3errors.ErrPartUpload, exitUploadFailed},
		{"complete failed", s3errors.ErrCompleteFailed, exitUploadFailed},
		{"object missing after upload", s3errors.ErrObjectNotFound, exitUploadFailed},
		{"integrity mismatch", s3errors.ErrIntegrityMismatch, exitIntegrityMismatch},
		{"connection", s3errors.ErrConnection, exitConnection},
		{"access denied", s3errors.ErrAccessDenied, exitConnection},
		{"invalid input", s3errors.ErrInvalidInput, exitUsage},
		{"bad bucket name", s3errors.ErrInvalidBucketName, exitUsage},
		{"bad chunk size", s3errors.ErrInvalidChunkSize, exitUsage},
		{"empty stream", s3errors.ErrEmptyStream, exitUsage},
		{"unknown error", errors.New("boom"), exitUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
			if tt.err != nil {
				// Wrapped errors must map the same way.
				wrapped := s3errors.NewObjectError("stream", "bkt", "obj",
					fmt.Errorf("context: %w", tt.err))
				assert.Equal(t, tt.want, exitCode(wrapped))
			}
		})
	}
}

func TestSelectInput(t *testing.T) {
	tests := []struct {
		name        string
		infile      string
		interactive bool
		wantStdin   bool
		wantErr     bool
	}{
		{"piped stdin", "-", false, true, false},
		{"interactive terminal, no file", "-", true, false, true},
		{"file with interactive terminal", "dump.tar", true, false, false},
		{"file and piped stdin", "dump.tar", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useStdin, err := selectInput(tt.infile, tt.interactive)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStdin, useStdin)
		})
	}
}
