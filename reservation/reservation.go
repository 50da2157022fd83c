// Package reservation hands out disjoint, contiguous slices of the global
// index range to concurrent device workers, per spec.md §5.
package reservation

import (
	"sync"
	"sync/atomic"
)

// Reservation is a mutex-guarded cursor over [lo, hi). Each call to Reserve
// advances the cursor by up to size and returns the slice it claimed; the
// claimed ranges across all callers partition [lo, hi) with no overlap and
// no gap.
type Reservation struct {
	mu      sync.Mutex
	cursor  uint64
	hi      uint64
	size    uint64
	aborted atomic.Bool
}

// New creates a Reservation over [lo, hi) handing out chunks of `size`
// indices at a time. size is typically 10_000 * globalWorkSize for the
// device it was sized for (spec.md §5), but any positive size is valid.
func New(lo, hi, size uint64) *Reservation {
	if size == 0 {
		size = 1
	}
	return &Reservation{cursor: lo, hi: hi, size: size}
}

// Reserve claims the next chunk of up to size indices. ok is false once the
// range is exhausted or Abort has been called; start == stop on that branch
// and callers must stop requesting further work.
//
// No lock is held while a device generates or matches against its claimed
// range (spec.md §5): Reserve only ever touches the shared cursor, never
// blocks on device work.
func (r *Reservation) Reserve() (start, stop uint64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.aborted.Load() || r.cursor >= r.hi {
		return r.cursor, r.cursor, false
	}
	start = r.cursor
	stop = start + r.size
	if stop > r.hi {
		stop = r.hi
	}
	r.cursor = stop
	return start, stop, true
}

// Abort stops every future Reserve call from handing out more work. Checked
// inside the same critical section as the cursor advance, so an abort can
// never race a concurrent Reserve into handing out one more chunk than
// intended (spec.md §5, "abort should take effect at the next reservation
// boundary").
func (r *Reservation) Abort() {
	r.aborted.Store(true)
}

// Aborted reports whether Abort has been called.
func (r *Reservation) Aborted() bool {
	return r.aborted.Load()
}

// Remaining returns how many indices have not yet been claimed.
func (r *Reservation) Remaining() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor >= r.hi {
		return 0
	}
	return r.hi - r.cursor
}
