// Package statelock provides a state-exclusive synchronization primitive.
//
// A [StateLock] holds at most one live instance, drawn from a fixed
// catalog of named states, at any instant. A caller requests a state by
// name (or, via [AcquireTyped], by Go type); if that state is already
// live, the caller shares the existing instance, otherwise it either
// creates it (if no other state is live) or waits in a per-state queue
// until the live state is released and its turn comes up.
//
// States are registered at init time via [Register], populating a
// process-wide [Catalog]. The live instance is constructed lazily
// ("torn up") on first acquisition, and destroyed ("torn down") once the
// last outstanding [RawHandle]/[Guard] is released - the lock guarantees
// two different states are never alive simultaneously.
//
// Fairness is FIFO across both waiters of a single state and, when a
// state releases, across the states with outstanding waiters (the state
// whose first waiter arrived earliest goes next). A one-slot cache holds
// the most recently torn-down state across a single transition, so that
// identical consecutive acquisitions avoid repeated teardown/tear-up
// churn.
//
// # Reentrancy
//
// [State.TearDown] is permitted to call back into [StateLock.Acquire] on
// the same lock (e.g. to hand off to a specific successor state). This
// is a sharp edge: the lock's internal mutex is always released before
// TearDown runs, so such reentrancy does not deadlock, but it does mean
// TearDown runs with no lock held at all, concurrently with any other
// goroutine's Acquire.
//
// # No timeouts, no cancellation
//
// Acquire blocks indefinitely when it must wait; there is no context
// support at this layer. Callers needing cancellation must layer it on
// top, accepting that a cancelled waiter remains queued (and is simply
// never looked at again) until it would otherwise have been delivered.
package statelock
