// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs for read buffer reuse.

package api

// BytePool provides reusable []byte buffers for connection read loops.
type BytePool interface {
	// Acquire returns a slice of exactly n bytes.
	Acquire(n int) []byte

	// Release returns a buffer to the pool.
	Release(buf []byte)

	// Stats exposes allocation/reuse counters for observability.
	Stats() BytePoolStats
}

// BytePoolStats aggregates buffer allocation/reuse stats.
type BytePoolStats struct {
	Size     int
	Acquired int64
	Released int64
	InUse    int64
}
