package statelock

import "sync/atomic"

// liveCell is a reference-counted envelope around a [stateBox]. Every
// outstanding [RawHandle] holds a strong reference (accounted for by
// refs); the state instance lives exactly as long as refs stays above
// zero. StateLock never holds a strong reference itself - only a plain
// pointer it treats as logically weak, upgraded via tryAddRef (spec.md
// §4.3, §9 "Cyclic ownership hazard").
type liveCell struct {
	box  *stateBox
	lock *StateLock
	refs atomic.Int64
}

// newLiveCell creates a liveCell with an initial strong reference count
// of one, representing the handle about to be returned to its creator.
func newLiveCell(lock *StateLock, box *stateBox) *liveCell {
	c := &liveCell{box: box, lock: lock}
	c.refs.Store(1)
	return c
}

// tryAddRef attempts to add a strong reference, succeeding only if the
// cell is not already at zero (i.e. not already in, or past, its release
// path). This is the CAS-loop "upgrade a weak reference" analog to
// Rust's Weak::upgrade - see SPEC_FULL.md §2.
func (c *liveCell) tryAddRef() bool {
	for {
		v := c.refs.Load()
		if v <= 0 {
			return false
		}
		if c.refs.CompareAndSwap(v, v+1) {
			return true
		}
	}
}

// release drops one strong reference. If it was the last one, it runs
// the teardown/advance dance (stash into the reuse cache, then hand
// leadership to the next queued state group) via StateLock.cellReleased.
// release is called without the StateLock's mutex held; cellReleased
// runs tear-down before taking the mutex, and takes it only for the
// stash/advance bookkeeping, per spec.md §5's lock-discipline rules.
func (c *liveCell) release() {
	if c.refs.Add(-1) == 0 {
		c.lock.cellReleased(c)
	}
}
