package cache

import (
	"sort"
	"sync"
)

// Registry holds one Metadata cache per graph name.
//
// A client keeps a single Registry for its lifetime; every pooled connection
// shares it, so a name learned on one connection is free on all others.
type Registry struct {
	mu     sync.RWMutex
	graphs map[string]*Metadata
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{graphs: make(map[string]*Metadata)}
}

// Get returns the cache of the named graph, creating it on first use.
func (r *Registry) Get(graph string) *Metadata {
	r.mu.RLock()
	m, ok := r.graphs[graph]
	r.mu.RUnlock()
	if ok {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check: another goroutine may have created it meanwhile.
	if m, ok := r.graphs[graph]; ok {
		return m
	}
	m = NewMetadata(graph)
	r.graphs[graph] = m
	return m
}

// Remove drops the cache of the named graph.
//
// Holders of the old *Metadata keep a usable but detached cache; it is also
// cleared so that stale names cannot leak into replies for a recreated graph.
func (r *Registry) Remove(graph string) {
	r.mu.Lock()
	m, ok := r.graphs[graph]
	delete(r.graphs, graph)
	r.mu.Unlock()

	if ok {
		m.Clear()
	}
}

// Graphs returns the names of all graphs with a cache, sorted.
func (r *Registry) Graphs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.graphs))
	for name := range r.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns statistics summed over every graph.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	caches := make([]*Metadata, 0, len(r.graphs))
	for _, m := range r.graphs {
		caches = append(caches, m)
	}
	r.mu.RUnlock()

	var total Stats
	for _, m := range caches {
		s := m.Stats()
		total.Labels += s.Labels
		total.RelationshipTypes += s.RelationshipTypes
		total.PropertyKeys += s.PropertyKeys
		total.Hits += s.Hits
		total.Misses += s.Misses
		total.Refreshes += s.Refreshes
	}
	if n := total.Hits + total.Misses; n > 0 {
		total.HitRate = float64(total.Hits) / float64(n) * 100
	}
	return total
}
