package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferPool(t *testing.T) {
	bp := NewBufferPool()
	require.NotNil(t, bp)
	assert.NotNil(t, bp.pools)
	assert.Empty(t, bp.pools)
}

func TestBufferPool_Get(t *testing.T) {
	bp := NewBufferPool()

	tests := []struct {
		name string
		size int
	}{
		{"tiny chunk", 16},
		{"default chunk", 8 * 1024 * 1024},
		{"odd size", 12345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bp.Get(tt.size)
			require.NotNil(t, buf)
			assert.Equal(t, tt.size, len(buf))
			assert.Equal(t, tt.size, cap(buf))

			bp.Put(buf)
		})
	}
}

func TestBufferPool_SizeClassesAreIndependent(t *testing.T) {
	bp := NewBufferPool()

	small := bp.Get(64)
	large := bp.Get(1024)
	assert.Equal(t, 64, len(small))
	assert.Equal(t, 1024, len(large))

	bp.Put(small)
	bp.Put(large)

	// Each size keeps its own class.
	assert.Len(t, bp.pools, 2)
}

func TestBufferPool_BufferReuse(t *testing.T) {
	bp := NewBufferPool()

	buf1 := bp.Get(128)
	copy(buf1, []byte("first use"))
	bp.Put(buf1)

	// Full length again, regardless of how the previous user left it.
	buf2 := bp.Get(128)
	assert.Equal(t, 128, len(buf2))

	bp.Put(buf2)
}

func TestBufferPool_PutForeignBuffer(t *testing.T) {
	bp := NewBufferPool()

	// A buffer the pool never created is dropped, not tracked.
	bp.Put(make([]byte, 77))
	assert.Empty(t, bp.pools)

	bp.Put(nil)
	assert.Empty(t, bp.pools)
}

func TestGlobalBufferPool(t *testing.T) {
	buf := GetChunkBuffer(256)
	require.NotNil(t, buf)
	assert.Equal(t, 256, len(buf))

	PutChunkBuffer(buf)
}

func BenchmarkBufferPool_GetPut(b *testing.B) {
	bp := NewBufferPool()
	const chunkSize = 8 * 1024 * 1024

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := bp.Get(chunkSize)
			bp.Put(buf)
		}
	})
}

func BenchmarkBufferAllocation_NewEachTime(b *testing.B) {
	const chunkSize = 8 * 1024 * 1024

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := make([]byte, chunkSize)
			_ = buf
		}
	})
}
