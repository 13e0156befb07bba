package statelock

import "sync"

// stateBox is an owning container for a single [State] instance. Its
// teardown path runs State.TearDown exactly once, no matter how many
// times tearDown is called (spec.md §4.2, invariant 6).
type stateBox struct {
	state    State
	tornDown sync.Once
}

func newStateBox(state State) *stateBox {
	return &stateBox{state: state}
}

func (b *stateBox) name() string   { return b.state.StateName() }
func (b *stateBox) family() string { return b.state.Family() }

// tearDown runs State.TearDown exactly once. Safe to call concurrently
// and redundantly; only the first caller's invocation actually runs the
// hook.
func (b *stateBox) tearDown() {
	b.tornDown.Do(b.state.TearDown)
}

// asConcrete downcasts the boxed state to *T, returning a
// [WrongCastError] on mismatch rather than panicking - callers that want
// a panic (matching the original's "wrong state cast" expect()) can wrap
// this at the handle layer.
func asConcrete[T any, PT StatePtr[T]](b *stateBox) (*T, error) {
	concrete, ok := b.state.(PT)
	if !ok {
		return nil, &WrongCastError{Expected: PT(nil).StateName(), Actual: b.name()}
	}
	return concrete, nil
}
