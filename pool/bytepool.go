// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-tcp/api"
)

// DefaultBufferSize is the read chunk size used by connection handlers.
const DefaultBufferSize = 1024

// BytePool recycles fixed-size read buffers through a sync.Pool.
// Requests larger than the pool size are served by plain allocation and
// are not retained on Release.
type BytePool struct {
	size     int
	pool     sync.Pool
	acquired atomic.Int64
	released atomic.Int64
}

var _ api.BytePool = (*BytePool)(nil)

// NewBytePool creates a pool of size-byte buffers. size <= 0 selects DefaultBufferSize.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	bp := &BytePool{size: size}
	bp.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return bp
}

// Size returns the pooled buffer capacity.
func (b *BytePool) Size() int { return b.size }

// Acquire returns a buffer of length n.
func (b *BytePool) Acquire(n int) []byte {
	if n <= 0 {
		n = b.size
	}
	b.acquired.Add(1)
	if n > b.size {
		return make([]byte, n)
	}
	bp := b.pool.Get().(*[]byte)
	return (*bp)[:n]
}

// Release returns a buffer to the pool.
func (b *BytePool) Release(buf []byte) {
	if buf == nil {
		return
	}
	b.released.Add(1)
	if cap(buf) != b.size {
		// foreign or oversized buffer: GC handles memory
		return
	}
	buf = buf[:b.size]
	b.pool.Put(&buf)
}

// Stats reports acquire/release counters.
func (b *BytePool) Stats() api.BytePoolStats {
	acq := b.acquired.Load()
	rel := b.released.Load()
	return api.BytePoolStats{
		Size:     b.size,
		Acquired: acq,
		Released: rel,
		InUse:    acq - rel,
	}
}
