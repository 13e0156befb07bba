package statelock

import "sync/atomic"

// RawHandle is a type-erased, reference-counted share of a live state.
// It must be released exactly once (idempotent if called more than
// once) via [RawHandle.Release] - Go has no destructors, so this stands
// in for the original's scope-based Drop.
type RawHandle struct {
	cell     *liveCell
	released atomic.Bool
}

// Name returns the live state's name.
func (h *RawHandle) Name() string { return h.cell.box.name() }

// Family returns the live state's family.
func (h *RawHandle) Family() string { return h.cell.box.family() }

// AsDyn exposes the live state as the abstract [State] interface, for
// consumer-defined capability casts (spec.md §6.4/§9): type-assert the
// result against whatever narrower interface the caller defines.
func (h *RawHandle) AsDyn() State { return h.cell.box.state }

// Release drops this handle's strong reference. Once every handle
// sharing the live cell has been released, the state is torn down and
// the lock advances to the next queued state, if any.
func (h *RawHandle) Release() {
	if h.released.CompareAndSwap(false, true) {
		h.cell.release()
	}
}

// AsConcrete downcasts h to *T, returning a [WrongCastError] if the live
// state's registered name doesn't match T's.
func AsConcrete[T any, PT StatePtr[T]](h *RawHandle) (*T, error) {
	return asConcrete[T, PT](h.cell.box)
}

// IntoGuard converts h into a [Guard], type-checking the downcast.
// On error, h retains its own reference - callers should Release h
// themselves (see [AcquireTyped] for the all-in-one convenience).
func IntoGuard[T any, PT StatePtr[T]](h *RawHandle) (Guard[T], error) {
	concrete, err := asConcrete[T, PT](h.cell.box)
	if err != nil {
		return Guard[T]{}, err
	}
	return Guard[T]{handle: h, value: concrete}, nil
}

// Guard is a typed, reference-counted share of a live state.
type Guard[T any] struct {
	handle *RawHandle
	value  *T
}

// Value returns a shared reference to the concrete state value.
func (g Guard[T]) Value() *T { return g.value }

// Name returns the live state's name.
func (g Guard[T]) Name() string { return g.handle.Name() }

// Family returns the live state's family.
func (g Guard[T]) Family() string { return g.handle.Family() }

// Release drops this guard's strong reference, same as [RawHandle.Release].
func (g Guard[T]) Release() { g.handle.Release() }

// AcquireTyped acquires the state registered under PT's StateName,
// asserting the concrete type on success. It is the generic-friendly
// substitute for the original's acquire_typed<T>() (spec.md §4.5,
// §6.1): PT is a pointer type implementing [State], e.g.
//
//	g, err := statelock.AcquireTyped[Idle](lock)
//
// where *Idle implements [State] and Idle is inferred as T.
func AcquireTyped[T any, PT StatePtr[T]](lock *StateLock) (Guard[T], error) {
	name := PT(nil).StateName()
	h, err := lock.Acquire(name)
	if err != nil {
		return Guard[T]{}, err
	}
	g, err := IntoGuard[T, PT](h)
	if err != nil {
		h.Release()
		return Guard[T]{}, err
	}
	return g, nil
}
