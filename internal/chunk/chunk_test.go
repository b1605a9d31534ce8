package chunk

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pattern returns n deterministic non-repeating bytes so chunk contents can
// be checked against exact byte ranges.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestReader_Next_ChunkSizes(t *testing.T) {
	tests := []struct {
		name       string
		inputLen   int
		chunkSize  int64
		wantChunks []int
	}{
		{"exact multiple", 16, 4, []int{4, 4, 4, 4}},
		{"short tail", 10, 4, []int{4, 4, 2}},
		{"empty input", 0, 4, nil},
		{"chunk larger than input", 3, 8, []int{3}},
		{"single byte chunks", 3, 1, []int{1, 1, 1}},
		{"input equals chunk", 8, 8, []int{8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(pattern(tt.inputLen)), tt.chunkSize)
			defer r.Release()

			var got []int
			for {
				c, err := r.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err)
				require.NotEmpty(t, c, "chunks must never be empty")
				require.LessOrEqual(t, int64(len(c)), tt.chunkSize)
				got = append(got, len(c))
			}

			assert.Equal(t, tt.wantChunks, got)

			// EOF is sticky.
			_, err := r.Next()
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestReader_Next_ContentMatchesByteRanges(t *testing.T) {
	input := pattern(10)
	r := NewReader(bytes.NewReader(input), 4)
	defer r.Release()

	var rebuilt []byte
	for {
		c, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		// The slice is only valid until the next call, so copy.
		rebuilt = append(rebuilt, c...)
	}

	assert.Equal(t, input, rebuilt)
}

func TestReader_Next_ReusesBuffer(t *testing.T) {
	r := NewReader(bytes.NewReader(pattern(8)), 4)
	defer r.Release()

	c1, err := r.Next()
	require.NoError(t, err)
	c2, err := r.Next()
	require.NoError(t, err)

	assert.True(t, &c1[0] == &c2[0], "consecutive chunks should share the same backing buffer")
}

func TestReader_Next_SlowSource(t *testing.T) {
	// A source that trickles one byte per read still yields full chunks.
	input := pattern(10)
	r := NewReader(iotest.OneByteReader(bytes.NewReader(input)), 4)
	defer r.Release()

	c, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, input[:4], c)
}

func TestReader_Next_SourceError(t *testing.T) {
	wantErr := errors.New("read failed")
	r := NewReader(iotest.ErrReader(wantErr), 4)
	defer r.Release()

	_, err := r.Next()
	assert.ErrorIs(t, err, wantErr)
}

func TestReader_Release(t *testing.T) {
	r := NewReader(bytes.NewReader(pattern(8)), 4)
	r.Release()

	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)

	// Release twice is harmless.
	r.Release()
}
