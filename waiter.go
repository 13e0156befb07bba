package statelock

import "github.com/google/uuid"

// waiter is a one-shot rendezvous: a task blocked in [StateLock.Acquire]
// parks on ch until the producer side (StateLock.cellReleased or a concurrent
// Acquire discovering a pending queue) delivers a [*liveCell]. ch is
// buffered to size 1 so delivery never blocks the deliverer, and is
// written to at most once.
type waiter struct {
	id uuid.UUID
	ch chan *liveCell
}

func newWaiter() *waiter {
	return &waiter{id: uuid.New(), ch: make(chan *liveCell, 1)}
}

// deliver hands cell to the waiter. Safe to call exactly once per
// waiter; the buffered channel absorbs it without blocking.
func (w *waiter) deliver(cell *liveCell) {
	w.ch <- cell
}

// wait blocks until a cell is delivered, or the channel is closed
// without a value (a [DeliveryFailureError]), which can only happen via
// implementation-level misuse - this package never closes a waiter's
// channel.
func (w *waiter) wait(name string) (*liveCell, error) {
	cell, ok := <-w.ch
	if !ok {
		return nil, &DeliveryFailureError{Name: name}
	}
	return cell, nil
}

// waiterTable is an insertion-ordered mapping from state name to the
// FIFO queue of waiters for that name. Key order reflects the order in
// which each name first received a waiter since the last advance,
// encoding cross-state fairness (spec.md §4.4).
type waiterTable struct {
	order []string
	queue map[string][]*waiter
}

func newWaiterTable() *waiterTable {
	return &waiterTable{queue: make(map[string][]*waiter)}
}

// enqueue appends w to name's queue, adding name to the key order if
// this is its first waiter since the last advance.
func (t *waiterTable) enqueue(name string, w *waiter) {
	if _, ok := t.queue[name]; !ok {
		t.order = append(t.order, name)
	}
	t.queue[name] = append(t.queue[name], w)
}

// take removes and returns the queue for name, preserving the relative
// order of the remaining keys.
func (t *waiterTable) take(name string) ([]*waiter, bool) {
	waiters, ok := t.queue[name]
	if !ok {
		return nil, false
	}
	delete(t.queue, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return waiters, true
}

// takeFront removes and returns the first key in insertion order, along
// with its queue. Returns ok=false if the table is empty.
func (t *waiterTable) takeFront() (name string, waiters []*waiter, ok bool) {
	if len(t.order) == 0 {
		return "", nil, false
	}
	name = t.order[0]
	t.order = t.order[1:]
	waiters = t.queue[name]
	delete(t.queue, name)
	return name, waiters, true
}
