// Package pool provides memory management optimizations.
// This includes chunk-buffer pooling so repeated streaming sessions in one
// process reuse their large part buffers instead of reallocating them.
package pool

import (
	"sync"
)

// BufferPool manages reusable chunk buffers, grouped by capacity.
// Chunk sizes are caller-chosen, so size classes are created on demand
// rather than fixed up front.
type BufferPool struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

// NewBufferPool creates a new empty buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pools: make(map[int]*sync.Pool),
	}
}

// Get returns a buffer with length and capacity of exactly size bytes.
// The caller is responsible for calling Put to return the buffer to the pool.
func (bp *BufferPool) Get(size int) []byte {
	bp.mu.Lock()
	p, ok := bp.pools[size]
	if !ok {
		p = &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		}
		bp.pools[size] = p
	}
	bp.mu.Unlock()

	bufPtr := p.Get().(*[]byte)
	return (*bufPtr)[:size]
}

// Put returns a buffer to the pool matching its capacity.
// The buffer should not be used after calling Put.
func (bp *BufferPool) Put(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	bp.mu.Lock()
	p, ok := bp.pools[cap(buf)]
	bp.mu.Unlock()
	if !ok {
		// Foreign buffer; dropping it is cheaper than tracking a new class.
		return
	}
	buf = buf[:cap(buf)]
	p.Put(&buf)
}

// Global buffer pool instance for use throughout the module.
var globalBufferPool = NewBufferPool()

// GetChunkBuffer returns a chunk buffer of the given size from the global pool.
func GetChunkBuffer(size int) []byte {
	return globalBufferPool.Get(size)
}

// PutChunkBuffer returns a chunk buffer to the global pool.
func PutChunkBuffer(buf []byte) {
	globalBufferPool.Put(buf)
}
