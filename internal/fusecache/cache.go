// Package fusecache is the Full-Use Cache (spec.md §4.5): it memoizes, per
// (function-or-class-template, resugar map), the set of types reported as
// fully used and the set of declarations reported as forward-declare uses
// during a prior instantiation replay.
// Grounded on internal/client/includes-cache.go's map+mutex cache shape,
// keyed here by (entity identity, xxhash of the resugar map) instead of
// (compiler name, default include dirs).
package fusecache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// CacheKey identifies one (entity, resugar) pair. Entity is the
// astutil.Node.IdentityKey() of the templated function or class; Resugar is
// a stable string encoding of the resugar map (canonical->as-written pairs,
// sorted), hashed with xxhash for a fixed-size comparable key.
type CacheKey struct {
	Entity      string
	ResugarHash uint64
}

func MakeCacheKey(entity string, resugarEncoding string) CacheKey {
	return CacheKey{Entity: entity, ResugarHash: xxhash.Sum64String(resugarEncoding)}
}

// CachedUses is the set of types and declarations an entity caused to be
// reported the last time it was analyzed under a given resugar.
type CachedUses struct {
	Types []string
	Decls []string
}

// FullUseCache is shared across one translation unit's traversal, never
// across translation units (spec.md §5).
type FullUseCache struct {
	mu      sync.RWMutex
	entries map[CacheKey]CachedUses

	precomputed map[string]PrecomputedContainer
}

func New() *FullUseCache {
	return &FullUseCache{
		entries:     make(map[CacheKey]CachedUses),
		precomputed: stdlibPrecomputedContainers(),
	}
}

func (c *FullUseCache) Lookup(key CacheKey) (CachedUses, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *FullUseCache) Store(key CacheKey, uses CachedUses) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = uses
}

// PrecomputedContainer describes what instantiating C<T1..Tn> requires for
// one of a small fixed set of standard-library class templates, so the
// Replayer can skip a full walk for well-known containers (spec.md §4.5).
type PrecomputedContainer struct {
	// ArgIndexesFullyUsed lists which template argument positions (0-based)
	// are fully used by instantiating the container, beyond what the
	// library header itself already provides.
	ArgIndexesFullyUsed []int
}

// LookupPrecomputed returns the precomputed container entry for a
// canonical template name like "std::vector" or "std::unordered_map".
func (c *FullUseCache) LookupPrecomputed(canonicalTemplateName string) (PrecomputedContainer, bool) {
	v, ok := c.precomputed[canonicalTemplateName]
	return v, ok
}

// stdlibPrecomputedContainers is a representative slice of the "small fixed
// set" spec.md §4.5 describes: sequence and associative containers whose
// element/key/value types must be fully known to instantiate the template
// (e.g. to compute sizeof, run the destructor on erase), versus a pointer
// container where only a forward declaration is required.
func stdlibPrecomputedContainers() map[string]PrecomputedContainer {
	return map[string]PrecomputedContainer{
		"std::vector":        {ArgIndexesFullyUsed: []int{0}},
		"std::deque":         {ArgIndexesFullyUsed: []int{0}},
		"std::list":          {ArgIndexesFullyUsed: []int{0}},
		"std::set":           {ArgIndexesFullyUsed: []int{0}},
		"std::multiset":      {ArgIndexesFullyUsed: []int{0}},
		"std::map":           {ArgIndexesFullyUsed: []int{0, 1}},
		"std::multimap":      {ArgIndexesFullyUsed: []int{0, 1}},
		"std::unordered_map": {ArgIndexesFullyUsed: []int{0, 1}},
		"std::unordered_set": {ArgIndexesFullyUsed: []int{0}},
	}
}
