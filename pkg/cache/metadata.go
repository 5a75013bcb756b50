// Package cache provides the per-graph metadata cache used when decoding replies.
//
// RedisGraph's compact reply format does not spell out node labels, relationship
// types or property keys. It sends small integer ids instead, and the client maps
// them back to names. The id of a name is its position in the list returned by
// the matching procedure:
//
//	CALL db.labels()            -> Labels
//	CALL db.relationshipTypes() -> RelationshipTypes
//	CALL db.propertyKeys()      -> PropertyKeys
//
// Features:
// - Lazy population: nothing is fetched until an unknown id is seen
// - Full-category reload on a miss, then one retry
// - Concurrent misses on the same category share one fetch
// - Read-mostly locking: lookups never block each other
// - Generation counter per category (versioned snapshots)
//
// Usage:
//
//	meta := cache.NewMetadata("social")
//
//	name, err := meta.Resolve(ctx, fetcher, cache.Labels, 3)
//	if errors.Is(err, cache.ErrInconsistentMetadata) {
//		// the server does not know id 3 either
//	}
//
// Entries are never evicted. Graphs carry a small, bounded number of distinct
// labels, types and keys, and a graph's ids only grow until the graph is deleted,
// which is the one case where Clear is called.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// ErrInconsistentMetadata is returned when an id is still unknown after the
// category was reloaded from the server.
var ErrInconsistentMetadata = errors.New("inconsistent graph metadata")

// Category selects one of the three id -> name mappings.
type Category int

const (
	Labels Category = iota
	RelationshipTypes
	PropertyKeys

	numCategories
)

// Categories lists every category in wire order.
var Categories = [...]Category{Labels, RelationshipTypes, PropertyKeys}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Labels:
		return "labels"
	case RelationshipTypes:
		return "relationship_types"
	case PropertyKeys:
		return "property_keys"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Procedure returns the server procedure that lists the category.
func (c Category) Procedure() string {
	switch c {
	case Labels:
		return "db.labels"
	case RelationshipTypes:
		return "db.relationshipTypes"
	case PropertyKeys:
		return "db.propertyKeys"
	default:
		return ""
	}
}

func (c Category) valid() bool { return c >= 0 && c < numCategories }

// Fetcher loads the complete, current list of names for one category.
//
// The returned slice is indexed by id. Fetch must return once ctx is done;
// Refresh waits for it before handing the caller's connection back.
type Fetcher interface {
	Fetch(ctx context.Context, graph string, category Category) ([]string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, graph string, category Category) ([]string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, graph string, category Category) ([]string, error) {
	return f(ctx, graph, category)
}

// Metadata is the id -> name cache of a single graph.
//
// All methods are safe for concurrent use.
type Metadata struct {
	graph string

	mu         sync.RWMutex
	names      [numCategories][]string
	generation [numCategories]uint64

	flight singleflight.Group

	// Statistics
	hits      uint64
	misses    uint64
	refreshes uint64
}

// NewMetadata creates an empty cache for the named graph.
func NewMetadata(graph string) *Metadata {
	return &Metadata{graph: graph}
}

// Graph returns the graph name this cache belongs to.
func (m *Metadata) Graph() string { return m.graph }

// Lookup returns the cached name for id without contacting the server.
func (m *Metadata) Lookup(category Category, id int64) (string, bool) {
	if !category.valid() || id < 0 {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := m.names[category]
	if id >= int64(len(names)) {
		return "", false
	}
	return names[id], true
}

// Resolve maps id to its name, reloading the category once on a miss.
//
// A miss triggers a full reload of the category through f followed by one more
// lookup. If the reload was shared with a concurrent caller it may predate id,
// so the category is fetched once more through f before giving up. If the id is
// still unknown the server and the client disagree and ErrInconsistentMetadata
// is returned; no placeholder name is ever produced. A failed or cancelled
// reload leaves the cache as it was.
func (m *Metadata) Resolve(ctx context.Context, f Fetcher, category Category, id int64) (string, error) {
	if !category.valid() {
		return "", fmt.Errorf("unknown metadata category %d", int(category))
	}
	if name, ok := m.Lookup(category, id); ok {
		atomic.AddUint64(&m.hits, 1)
		return name, nil
	}
	atomic.AddUint64(&m.misses, 1)

	shared, err := m.refresh(ctx, f, category)
	if err != nil {
		return "", err
	}
	if name, ok := m.Lookup(category, id); ok {
		return name, nil
	}
	if shared {
		if err := m.fetch(ctx, f, category); err != nil {
			return "", m.refreshError(category, err)
		}
		if name, ok := m.Lookup(category, id); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: graph %q has no %s id %d", ErrInconsistentMetadata, m.graph, category, id)
}

// Refresh reloads a whole category from the server.
//
// Concurrent refreshes of the same category are collapsed into one fetch. The
// fetch runs without holding the cache lock; only installing the result takes
// the write lock. Refresh always waits for the fetch to finish, so f is never
// in use after Refresh returns.
func (m *Metadata) Refresh(ctx context.Context, f Fetcher, category Category) error {
	if !category.valid() {
		return fmt.Errorf("unknown metadata category %d", int(category))
	}
	_, err := m.refresh(ctx, f, category)
	return err
}

// refresh reports whether the fetch was shared with other callers.
func (m *Metadata) refresh(ctx context.Context, f Fetcher, category Category) (bool, error) {
	ch := m.flight.DoChan(category.String(), func() (interface{}, error) {
		return nil, m.fetch(ctx, f, category)
	})
	res := <-ch
	if res.Err == nil {
		return res.Shared, nil
	}
	if res.Shared && ctx.Err() == nil {
		// The shared fetch may have run on another caller's context.
		if err := m.fetch(ctx, f, category); err != nil {
			return false, m.refreshError(category, err)
		}
		return false, nil
	}
	return false, m.refreshError(category, res.Err)
}

func (m *Metadata) fetch(ctx context.Context, f Fetcher, category Category) error {
	names, err := f.Fetch(ctx, m.graph, category)
	if err != nil {
		return err
	}
	m.install(category, names)
	atomic.AddUint64(&m.refreshes, 1)
	return nil
}

func (m *Metadata) refreshError(category Category, err error) error {
	return fmt.Errorf("refreshing %s of graph %q: %w", category, m.graph, err)
}

// install replaces the category list with a freshly fetched one.
//
// Ids are positions in an append-only server list, so a shorter list can only
// come from a fetch that raced with a newer one; it is dropped.
func (m *Metadata) install(category Category, names []string) {
	fresh := make([]string, len(names))
	copy(fresh, names)

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(fresh) < len(m.names[category]) {
		return
	}
	m.names[category] = fresh
	m.generation[category]++
}

// Generation returns how many times the category has been installed.
func (m *Metadata) Generation(category Category) uint64 {
	if !category.valid() {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation[category]
}

// Snapshot returns a copy of the cached names of one category and its generation.
func (m *Metadata) Snapshot(category Category) ([]string, uint64) {
	if !category.valid() {
		return nil, 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.names[category]))
	copy(out, m.names[category])
	return out, m.generation[category]
}

// Clear drops every cached name. Used when the graph is deleted, since the
// server reuses ids for the recreated graph.
func (m *Metadata) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.names {
		m.names[i] = nil
		m.generation[i]++
	}
}

// Stats returns cache statistics.
func (m *Metadata) Stats() Stats {
	m.mu.RLock()
	sizes := [numCategories]int{}
	for i := range m.names {
		sizes[i] = len(m.names[i])
	}
	m.mu.RUnlock()

	hits := atomic.LoadUint64(&m.hits)
	misses := atomic.LoadUint64(&m.misses)
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		Labels:            sizes[Labels],
		RelationshipTypes: sizes[RelationshipTypes],
		PropertyKeys:      sizes[PropertyKeys],
		Hits:              hits,
		Misses:            misses,
		Refreshes:         atomic.LoadUint64(&m.refreshes),
		HitRate:           hitRate,
	}
}

// Stats holds cache statistics.
type Stats struct {
	Labels            int     // Cached label names
	RelationshipTypes int     // Cached relationship type names
	PropertyKeys      int     // Cached property key names
	Hits              uint64  // Lookups answered from the cache
	Misses            uint64  // Lookups that required a reload
	Refreshes         uint64  // Completed category reloads
	HitRate           float64 // Hit rate percentage (0-100)
}

// Resolver binds a Metadata cache to a Fetcher so callers only pass ids.
type Resolver struct {
	meta  *Metadata
	fetch Fetcher
}

// Bind returns a Resolver that reloads through f.
func (m *Metadata) Bind(f Fetcher) Resolver {
	return Resolver{meta: m, fetch: f}
}

// Resolve maps id to its name. See Metadata.Resolve.
func (r Resolver) Resolve(ctx context.Context, category Category, id int64) (string, error) {
	return r.meta.Resolve(ctx, r.fetch, category, id)
}
