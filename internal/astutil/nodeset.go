package astutil

import (
	"github.com/cespare/xxhash/v2"
)

// NodeSet records every visited node's identity: plain pointer-derived
// identity for ordinary nodes (declarations, statements, types), and a
// content hash plus equality fallback for value-returned kinds (type
// locations, template names, template arguments), per spec.md §4.4.
type NodeSet struct {
	identityKeys map[string]bool
	valueHashes  map[uint64][]Node
}

func NewNodeSet() *NodeSet {
	return &NodeSet{
		identityKeys: make(map[string]bool),
		valueHashes:  make(map[uint64][]Node),
	}
}

func (s *NodeSet) add(n Node) {
	if n.Kind().IsValueKind() {
		h := xxhash.Sum64String(n.IdentityKey())
		for _, existing := range s.valueHashes[h] {
			if existing.IdentityKey() == n.IdentityKey() {
				return // already recorded
			}
		}
		s.valueHashes[h] = append(s.valueHashes[h], n)
		return
	}
	s.identityKeys[n.IdentityKey()] = true
}

// Contains reports whether n (or a structurally-equal value node) was
// recorded by Flatten.
func (s *NodeSet) Contains(n Node) bool {
	if n.Kind().IsValueKind() {
		h := xxhash.Sum64String(n.IdentityKey())
		for _, existing := range s.valueHashes[h] {
			if existing.IdentityKey() == n.IdentityKey() {
				return true
			}
		}
		return false
	}
	return s.identityKeys[n.IdentityKey()]
}

// flattenCache memoizes Flatten per declaration root, since the Replayer
// calls it once per template pattern and reuses it across every
// instantiation of that pattern (spec.md §4.4: "A per-declaration
// memoization cache is kept").
type flattenCache struct {
	byRoot map[string]*NodeSet
}

func newFlattenCache() *flattenCache {
	return &flattenCache{byRoot: make(map[string]*NodeSet)}
}

var sharedFlattenCache = newFlattenCache()

// Flatten traverses the subtree rooted at node and returns the set of every
// node reachable below it, memoized by the root's identity. It is used by
// the Replayer to skip nodes that appear identically in the uninstantiated
// template pattern.
func Flatten(root Node) *NodeSet {
	key := root.IdentityKey()
	if cached, ok := sharedFlattenCache.byRoot[key]; ok {
		return cached
	}

	set := NewNodeSet()
	var walk func(n Node)
	walk = func(n Node) {
		set.add(n)
		for _, child := range n.Children() {
			walk(child)
		}
	}
	walk(root)

	sharedFlattenCache.byRoot[key] = set
	return set
}

// ResetFlattenCache clears the memoization cache; call between independent
// analysis runs (the cache is scoped to one translation unit's traversal,
// like the Full-Use Cache — spec.md §5).
func ResetFlattenCache() {
	sharedFlattenCache = newFlattenCache()
}
