package fusecache

import "testing"

func TestStoreAndLookup(t *testing.T) {
	c := New()
	key := MakeCacheKey("tmpl::Foo", "T=MyClass")
	c.Store(key, CachedUses{Types: []string{"MyClass"}})

	got, ok := c.Lookup(key)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if len(got.Types) != 1 || got.Types[0] != "MyClass" {
		t.Errorf("Types = %v, want [MyClass]", got.Types)
	}

	otherKey := MakeCacheKey("tmpl::Foo", "T=OtherClass")
	if _, ok := c.Lookup(otherKey); ok {
		t.Error("did not expect a hit for a different resugar")
	}
}

func TestPrecomputedStdlibContainers(t *testing.T) {
	c := New()
	v, ok := c.LookupPrecomputed("std::vector")
	if !ok {
		t.Fatal("expected std::vector to be precomputed")
	}
	if len(v.ArgIndexesFullyUsed) != 1 || v.ArgIndexesFullyUsed[0] != 0 {
		t.Errorf("ArgIndexesFullyUsed = %v, want [0]", v.ArgIndexesFullyUsed)
	}
}

func TestCacheStoringScopeNestedCreditsParent(t *testing.T) {
	c := New()
	scope := c.NewScope()

	outer := MakeCacheKey("caller::f", "")
	inner := MakeCacheKey("callee::g", "")

	scope.Push(outer)
	scope.Push(inner)
	scope.RecordType("Inner")
	scope.Pop() // closes inner, credits outer
	scope.RecordType("Outer")
	scope.Pop() // closes outer

	outerUses, ok := c.Lookup(outer)
	if !ok {
		t.Fatal("expected outer scope to be cached")
	}
	found := map[string]bool{}
	for _, ty := range outerUses.Types {
		found[ty] = true
	}
	if !found["Inner"] || !found["Outer"] {
		t.Errorf("outer uses = %v, want both Inner and Outer credited", outerUses.Types)
	}
}
