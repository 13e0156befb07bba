package statelock

import "sync"

// Option configures a [StateLock] at construction time.
type Option func(*StateLock)

// WithFactoryOverride replaces catalog-backed tear-up with factory for
// every acquisition on the lock. factory must be total over the names
// the lock's catalog reports via [StateLock.Names], and must return a
// state whose StateName/Family match what was requested - violating
// this is a user error the core does not validate (spec.md §6.3).
func WithFactoryOverride(factory func(name string) State) Option {
	return func(l *StateLock) { l.factoryOverride = factory }
}

// WithCatalog binds the lock to an explicit [Catalog] instead of the
// process-wide [GlobalCatalog] - mainly useful for tests that need
// isolation from global registration state (spec.md §9).
func WithCatalog(c *Catalog) Option {
	return func(l *StateLock) { l.catalog = c }
}

// StateLock is the public synchronization primitive: it holds at most
// one live, named state instance at a time, for one family, and
// arbitrates concurrent acquisitions. See the package doc for the full
// model.
type StateLock struct {
	family          string
	factoryOverride func(name string) State
	catalog         *Catalog

	mu           sync.Mutex
	current      *liveCell
	waiters      *waiterTable
	lastReleased *stateBox
}

// New constructs a StateLock for family, backed by the process-wide
// [GlobalCatalog] unless overridden via [WithCatalog]/[WithFactoryOverride].
func New(family string, opts ...Option) *StateLock {
	l := &StateLock{
		family:  family,
		waiters: newWaiterTable(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewWithFactory is sugar for New(family, WithFactoryOverride(factory)).
func NewWithFactory(family string, factory func(name string) State) *StateLock {
	return New(family, WithFactoryOverride(factory))
}

// Family returns the lock's family name.
func (l *StateLock) Family() string { return l.family }

// Names returns the lock's family's registered state names, in
// lexicographic order.
func (l *StateLock) Names() []string {
	return l.catalogOrGlobal().Names(l.family)
}

func (l *StateLock) catalogOrGlobal() *Catalog {
	if l.catalog != nil {
		return l.catalog
	}
	return GlobalCatalog()
}

func (l *StateLock) hasName(name string) bool {
	for _, n := range l.catalogOrGlobal().Names(l.family) {
		if n == name {
			return true
		}
	}
	return false
}

func (l *StateLock) makeState(name string) State {
	if l.factoryOverride != nil {
		return l.factoryOverride(name)
	}
	return l.catalogOrGlobal().Make(l.family, name)
}

// Current returns a handle sharing the currently live state, or nil if
// no state is live.
func (l *StateLock) Current() *RawHandle {
	l.mu.Lock()
	cur := l.current
	ok := cur != nil && cur.tryAddRef()
	l.mu.Unlock()
	if !ok {
		return nil
	}
	return &RawHandle{cell: cur}
}

// Acquire returns a handle to the live state named name, creating it if
// no state is currently live, or blocking until it is this name's turn
// otherwise. See the package doc and spec.md §4.5 for the full algorithm.
func (l *StateLock) Acquire(name string) (*RawHandle, error) {
	if !l.hasName(name) {
		return nil, &UnregisteredStateError{Name: name, Family: l.family}
	}

	l.mu.Lock()

	if cur := l.current; cur != nil && cur.tryAddRef() {
		if cur.box.name() == name {
			l.mu.Unlock()
			Logger.Debug().Str("family", l.family).Str("state", name).Msg("statelock: reused live state")
			return &RawHandle{cell: cur}, nil
		}

		// step 2: enqueue and wait for name; release the ref taken above
		// before blocking, and release the mutex before that, per
		// spec.md §5's lock-discipline rules.
		w := newWaiter()
		l.waiters.enqueue(name, w)
		l.mu.Unlock()
		cur.release()

		Logger.Debug().Str("family", l.family).Str("state", name).Msg("statelock: waiting")
		cell, err := w.wait(name)
		if err != nil {
			return nil, err
		}
		return &RawHandle{cell: cell}, nil
	}

	// step 3: become the live state - l.mu is still held.
	return l.becomeLive(name)
}

// becomeLive must be called with l.mu held; it always unlocks before
// returning.
func (l *StateLock) becomeLive(name string) (*RawHandle, error) {
	box := l.tearUpReuseOrBuild(name)
	if box == nil {
		l.mu.Unlock()
		return nil, &UnregisteredStateError{Name: name, Family: l.family}
	}

	cell := newLiveCell(l, box)
	l.current = cell

	// spec.md §4.5 step 3d: dispatch any waiters that queued for this
	// name between a prior transition and this call, immediately.
	pending, _ := l.waiters.take(name)
	l.mu.Unlock()

	for _, w := range pending {
		if cell.tryAddRef() {
			w.deliver(cell)
		}
	}

	Logger.Debug().Str("family", l.family).Str("state", name).Msg("statelock: became live from empty")
	return &RawHandle{cell: cell}, nil
}

// tearUpReuseOrBuild resolves a [*stateBox] for name, preferring the
// cached last-released instance when its name matches (spec.md §4.5
// steps 3a-b, reused verbatim by cellReleased). Must be called with l.mu
// held; returns nil if tear-up fails (name not producible).
func (l *StateLock) tearUpReuseOrBuild(name string) *stateBox {
	if l.lastReleased != nil && l.lastReleased.name() == name {
		box := l.lastReleased
		l.lastReleased = nil
		return box
	}
	// drop any mismatched cached box - it was already torn down when
	// originally stashed, so there's nothing left to do but let it go.
	l.lastReleased = nil

	state := l.makeState(name)
	if state == nil {
		return nil
	}
	return newStateBox(state)
}

// cellReleased is invoked by liveCell.release, without l.mu held, after
// a cell's last strong reference has dropped. It stashes the cell's box
// into the reuse cache (running tear-down), then advances leadership to
// the next queued state group, if any.
func (l *StateLock) cellReleased(cell *liveCell) {
	// tear-down runs arbitrary user code, which may re-enter this lock
	// (e.g. call Acquire on a different name) - it must complete before
	// l.mu is taken, never while held (spec.md §5, §9).
	cell.box.tearDown()

	l.mu.Lock()

	// stash_last_released: replace any prior cached box - its own
	// tear-down already ran when it was stashed.
	l.lastReleased = cell.box

	if l.current != cell {
		// A concurrent Acquire already raced us into becomeLive and
		// replaced l.current; nothing left for us to advance.
		l.mu.Unlock()
		return
	}

	name, waiters, ok := l.waiters.takeFront()
	if !ok {
		l.current = nil
		l.mu.Unlock()
		Logger.Debug().Str("family", l.family).Msg("statelock: cleared, no waiters")
		return
	}

	box := l.tearUpReuseOrBuild(name)
	if box == nil {
		// The factory override stopped producing a name it previously
		// promised to be total over (spec.md §6.3 violation by the
		// caller); there is no Acquire call left to report this to, so
		// the queued waiters are simply dropped along with leadership.
		l.current = nil
		l.mu.Unlock()
		Logger.Error().Str("family", l.family).Str("state", name).
			Msg("statelock: factory override failed to produce a queued state")
		return
	}

	// There is no creator holding a reference here, only the waiters being
	// delivered to, so the cell carries exactly one strong reference per
	// waiter. All of them are counted before the first delivery, so an
	// early waiter releasing its handle cannot drop the count to zero
	// while later waiters in the group are still undelivered.
	cell2 := newLiveCell(l, box)
	cell2.refs.Store(int64(len(waiters)))
	l.current = cell2
	l.mu.Unlock()

	for _, w := range waiters {
		w.deliver(cell2)
	}

	Logger.Debug().Str("family", l.family).Str("state", name).Msg("statelock: advanced")
}
