package statelock

import (
	"sort"
	"sync"
)

// registration is one entry contributed by a package-init-time call to
// [Register]. Entries are gathered into a process-wide slice, then
// indexed into the [Catalog] lazily, on first use.
type registration struct {
	family  string
	name    string
	factory Factory
}

var (
	registrationsMu sync.Mutex
	registrations   []registration
)

// Register contributes a (family, name, factory) entry to the
// process-wide registration set, consumed by [GlobalCatalog] on first
// use. Call it from an init function, once per state type:
//
//	func init() {
//	    statelock.Register("connection", "idle", func() statelock.State { return &Idle{} })
//	}
//
// Register is safe to call concurrently, though in practice it is only
// ever called from package-init code, which Go already serializes.
func Register(family, name string, factory Factory) {
	registrationsMu.Lock()
	defer registrationsMu.Unlock()
	registrations = append(registrations, registration{family: family, name: name, factory: factory})
}

// Catalog is an immutable family -> name -> [Factory] mapping. The
// process-wide instance is built once, idempotently, from entries
// contributed by [Register]; callers needing an isolated catalog (e.g.
// for tests) can build one directly with [NewCatalog].
type Catalog struct {
	families map[string]map[string]Factory
}

// CatalogEntry is one (family, name, factory) tuple, as passed to
// [NewCatalog].
type CatalogEntry struct {
	Family  string
	Name    string
	Factory Factory
}

// NewCatalog builds a Catalog from an explicit set of registrations,
// independent of the process-wide registry. Duplicate (family, name)
// pairs: the first one wins, later duplicates are ignored - matching
// [GlobalCatalog]'s behavior.
func NewCatalog(entries ...CatalogEntry) *Catalog {
	c := &Catalog{families: make(map[string]map[string]Factory)}
	for _, e := range entries {
		c.insert(e.Family, e.Name, e.Factory)
	}
	return c
}

func (c *Catalog) insert(family, name string, factory Factory) {
	names, ok := c.families[family]
	if !ok {
		names = make(map[string]Factory)
		c.families[family] = names
	}
	if _, exists := names[name]; !exists {
		names[name] = factory
	}
}

var (
	globalCatalogOnce sync.Once
	globalCatalog     *Catalog
)

// GlobalCatalog returns the process-wide [Catalog], built lazily (and
// idempotently) from every entry contributed by [Register] so far. Once
// built, it is frozen: registrations made after the first call to
// GlobalCatalog are not observed. This mirrors the original's
// program-initialization-time registration model (spec.md §4.1, §9).
func GlobalCatalog() *Catalog {
	globalCatalogOnce.Do(func() {
		registrationsMu.Lock()
		defer registrationsMu.Unlock()
		c := &Catalog{families: make(map[string]map[string]Factory)}
		for _, r := range registrations {
			c.insert(r.family, r.name, r.factory)
		}
		globalCatalog = c
	})
	return globalCatalog
}

// Names returns the registered state names for family, in lexicographic
// order. An unknown family yields an empty slice.
func (c *Catalog) Names(family string) []string {
	names := c.families[family]
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Make looks up and invokes the factory for (family, name), returning
// nil if the pair isn't registered.
func (c *Catalog) Make(family, name string) State {
	names, ok := c.families[family]
	if !ok {
		return nil
	}
	factory, ok := names[name]
	if !ok {
		return nil
	}
	return factory()
}
