package pool_test

import (
	"testing"

	"github.com/momentics/hioload-tcp/pool"
)

func TestBytePoolReuse(t *testing.T) {
	bp := pool.NewBytePool(128)
	b1 := bp.Acquire(128)
	if len(b1) != 128 {
		t.Fatalf("len = %d, want 128", len(b1))
	}
	bp.Release(b1)

	b2 := bp.Acquire(64)
	if len(b2) != 64 {
		t.Fatalf("len = %d, want 64", len(b2))
	}
	if cap(b2) < 128 {
		t.Error("Buffer capacity too small; reuse failed")
	}
	bp.Release(b2)
}

func TestBytePoolDefaults(t *testing.T) {
	bp := pool.NewBytePool(0)
	if bp.Size() != pool.DefaultBufferSize {
		t.Fatalf("size = %d, want %d", bp.Size(), pool.DefaultBufferSize)
	}
	if got := len(bp.Acquire(0)); got != pool.DefaultBufferSize {
		t.Fatalf("Acquire(0) len = %d", got)
	}
}

func TestBytePoolOversized(t *testing.T) {
	bp := pool.NewBytePool(16)
	big := bp.Acquire(64)
	if len(big) != 64 {
		t.Fatalf("len = %d, want 64", len(big))
	}
	bp.Release(big)
	bp.Release(nil)

	st := bp.Stats()
	if st.Acquired != 1 || st.Released != 1 || st.InUse != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if st.Size != 16 {
		t.Fatalf("stats size = %d", st.Size)
	}
}
