package statelock

// State is implemented by any value that can be managed by a [StateLock].
// A state is constructed by a [Factory] registered under its name and
// family (see [Register]), is live exactly as long as at least one handle
// references it, and is torn down via TearDown when that last handle's
// release completes the transition.
type State interface {
	// StateName returns the state's unique name within its family. It
	// must be a pure function of the type - implementations are expected
	// to return a constant, and must tolerate being called against a
	// nil receiver (see [StatePtr]).
	StateName() string

	// Family returns the name of the family this state belongs to.
	Family() string

	// TearDown runs once the last outstanding handle has been released,
	// before the value moves into the lock's one-slot reuse cache. A value
	// taken back out of that cache by a later acquisition of the same name
	// is handed out again without a new tear-up, and its TearDown does not
	// run a second time. It may
	// call back into the owning [StateLock] (e.g. Acquire a different
	// state) - see the package doc's Reentrancy section.
	TearDown()
}

// Factory constructs a new, torn-up instance of a registered state.
type Factory func() State

// StatePtr constrains a type parameter PT to "pointer to T, implementing
// State via methods safe to call against a nil receiver for StateName" -
// the idiomatic Go substitute for Rust's per-type static
// StateLock::lock::<T>() dispatch. [AcquireTyped] calls PT(nil).StateName()
// to recover the registered name from the type parameter alone, without
// constructing a value.
type StatePtr[T any] interface {
	*T
	State
}
