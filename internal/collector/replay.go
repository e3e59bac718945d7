package collector

import (
	"github.com/iwyu-go/iwyu-go/internal/astutil"
	"github.com/iwyu-go/iwyu-go/internal/fusecache"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// Replayer is the Template Instantiation Replayer (spec.md §4.8): instead of
// re-walking a template's instantiated body for every instantiation, it
// walks the uninstantiated pattern once per distinct resugar map, skips
// nodes that read identically to the pattern (via astutil.Flatten), and
// short-circuits entirely for a small set of well-known standard-library
// containers and for any entity already present in the Full-Use Cache.
type Replayer struct {
	owner *Collector
	cache *fusecache.FullUseCache

	// scope is the currently active CacheStoringScope, nil when no
	// instantiation is being replayed. Collector.record consults it so
	// uses recorded mid-replay are credited to the instantiation's cache
	// entry as well as to the file ledger.
	scope *fusecache.CacheStoringScope

	// traversedDecls guards against infinite recursion on recursive
	// template instantiations (e.g. a Tuple<T, Tuple<T,...>> pattern).
	traversedDecls map[string]bool
}

func newReplayer(c *Collector) *Replayer {
	return &Replayer{
		owner:          c,
		cache:          c.Cache,
		traversedDecls: make(map[string]bool),
	}
}

// InstantiatedFunction describes one template-function instantiation site:
// the entity being instantiated, the uninstantiated pattern to walk, and a
// stable string encoding of the resugar map (canonical type -> as-written
// spelling, sorted) used as the cache key.
type InstantiatedFunction struct {
	EntityKey       string
	ResugarEncoding string
	Pattern         astutil.Node
}

// ScanInstantiatedFunction is the entry point for a function-template
// instantiation. It replays cached uses when available, otherwise walks the
// pattern once under a new cache scope and stores the result.
func (r *Replayer) ScanInstantiatedFunction(inst InstantiatedFunction) {
	key := fusecache.MakeCacheKey(inst.EntityKey, inst.ResugarEncoding)

	if cached, ok := r.cache.Lookup(key); ok {
		r.replayCachedUses(cached, inst.Pattern)
		return
	}

	if r.traversedDecls[inst.EntityKey] {
		return // recursive instantiation already in progress
	}
	r.traversedDecls[inst.EntityKey] = true
	defer delete(r.traversedDecls, inst.EntityKey)

	r.withScope(key, func() {
		nodesToIgnore := astutil.Flatten(inst.Pattern)
		r.walkSkippingIdentical(inst.Pattern, nodesToIgnore)
	})
}

// InstantiatedType describes one template-class instantiation site, e.g.
// std::vector<MyClass> or a user-defined template.
type InstantiatedType struct {
	EntityKey       string
	CanonicalName   string // e.g. "std::vector", "" for non-stdlib templates
	ResugarEncoding string
	TemplateArgs    []string // ordered argument type names
	Pattern         astutil.Node
}

// ScanInstantiatedType is the entry point for a class-template
// instantiation. It first checks the small fixed set of precomputed
// standard-library containers (spec.md §4.5), then the general cache, and
// only falls back to a full pattern walk when neither has an answer.
func (r *Replayer) ScanInstantiatedType(inst InstantiatedType) {
	if inst.CanonicalName != "" {
		if pre, ok := r.cache.LookupPrecomputed(inst.CanonicalName); ok {
			for _, idx := range pre.ArgIndexesFullyUsed {
				if idx >= 0 && idx < len(inst.TemplateArgs) {
					r.owner.recordProposed(ProposedUse{TypeName: inst.TemplateArgs[idx], Kind: ledger.UseFull}, inst.Pattern)
				}
			}
			return
		}
	}

	key := fusecache.MakeCacheKey(inst.EntityKey, inst.ResugarEncoding)
	if cached, ok := r.cache.Lookup(key); ok {
		r.replayCachedUses(cached, inst.Pattern)
		return
	}

	if r.traversedDecls[inst.EntityKey] {
		return
	}
	r.traversedDecls[inst.EntityKey] = true
	defer delete(r.traversedDecls, inst.EntityKey)

	r.withScope(key, func() {
		nodesToIgnore := astutil.Flatten(inst.Pattern)
		r.walkSkippingIdentical(inst.Pattern, nodesToIgnore)
	})
}

// withScope pushes a new cache-recording scope for key, runs body, and pops
// it, restoring whatever scope (if any) was active before.
func (r *Replayer) withScope(key fusecache.CacheKey, body func()) {
	previous := r.scope
	s := r.cache.NewScope()
	s.Push(key)
	r.scope = s

	body()

	s.Pop()
	r.scope = previous
}

// walkSkippingIdentical is owner.Visit, except a node already present in
// nodesToIgnore (i.e. it reads identically in the uninstantiated pattern)
// is skipped, since its uses were already recorded when the pattern itself
// was analyzed as ordinary code.
func (r *Replayer) walkSkippingIdentical(n astutil.Node, nodesToIgnore *astutil.NodeSet) {
	if nodesToIgnore.Contains(n) {
		return
	}
	r.owner.Visit(n)
}

// replayCachedUses re-applies a cache hit's recorded types/decls against the
// current context without re-walking the pattern.
func (r *Replayer) replayCachedUses(cached fusecache.CachedUses, at astutil.Node) {
	for _, t := range cached.Types {
		r.owner.recordProposed(ProposedUse{TypeName: t, Kind: ledger.UseFull}, at)
	}
	for _, d := range cached.Decls {
		r.owner.recordProposed(ProposedUse{TypeName: d, Kind: ledger.UseForwardDeclare}, at)
	}
}
