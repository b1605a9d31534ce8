// Package chunk splits an unbounded input stream into fixed-size chunks
// suitable for multipart upload, without buffering more than one chunk.
package chunk

import (
	"errors"
	"io"

	"github.com/jgru/stream-to-s3/internal/pool"
)

// Reader pulls fixed-size chunks from an underlying stream. The final chunk
// may be shorter; no chunk is ever empty. Reads advance the stream
// monotonically; a Reader is not restartable.
type Reader struct {
	src  io.Reader
	buf  []byte
	done bool
}

// NewReader returns a Reader that yields chunks of up to size bytes from src.
// The chunk buffer comes from the shared pool; call Release when done with
// the Reader to return it.
func NewReader(src io.Reader, size int64) *Reader {
	return &Reader{
		src: src,
		buf: pool.GetChunkBuffer(int(size)),
	}
}

// Next returns the next chunk of the stream. It returns io.EOF once the
// stream is exhausted, and a shorter-than-size chunk only on the final read.
// The returned slice is only valid until the next call to Next or Release;
// callers that need the bytes afterwards must copy them.
func (r *Reader) Next() ([]byte, error) {
	if r.done {
		return nil, io.EOF
	}

	n, err := io.ReadFull(r.src, r.buf)
	switch {
	case errors.Is(err, io.EOF):
		// Nothing left, not even a partial chunk.
		r.done = true
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Short final chunk.
		r.done = true
		return r.buf[:n], nil
	case err != nil:
		r.done = true
		return nil, err
	}

	return r.buf, nil
}

// Release returns the chunk buffer to the shared pool. The Reader must not
// be used afterwards.
func (r *Reader) Release() {
	if r.buf != nil {
		pool.PutChunkBuffer(r.buf)
		r.buf = nil
	}
	r.done = true
}
