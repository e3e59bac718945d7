package collector

import (
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/astutil"
	"github.com/iwyu-go/iwyu-go/internal/fusecache"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

type fakeNode struct {
	kind     astutil.NodeKind
	children []astutil.Node
	loc      ledger.SourceLocation
	key      string

	baseType    string // for MemberExprNode
	elementType string // for ArraySubscriptNode
}

func (n *fakeNode) Kind() astutil.NodeKind          { return n.kind }
func (n *fakeNode) Children() []astutil.Node        { return n.children }
func (n *fakeNode) Location() ledger.SourceLocation { return n.loc }
func (n *fakeNode) IdentityKey() string             { return n.key }
func (n *fakeNode) BaseType() string                { return n.baseType }
func (n *fakeNode) ElementType() string             { return n.elementType }

type fakeResolver struct {
	files map[string]string
}

func (r *fakeResolver) ResolveType(name string) (string, ledger.DeclHandle, string, bool) {
	f, ok := r.files[name]
	if !ok {
		return "", ledger.DeclHandle{}, "", false
	}
	return f, ledger.MakeDeclHandle("decl:" + name), name, true
}

func testLoc(file string) ledger.SourceLocation {
	fh := ledger.MakeFileHandle(file)
	return ledger.SourceLocation{SpellingFile: fh, SpellingLine: 10, ExpansionFile: fh, ExpansionLine: 10}
}

func TestVisitRecordsMemberExprAsFullUse(t *testing.T) {
	resolver := &fakeResolver{files: map[string]string{"MyClass": "myclass.h"}}
	c := NewCollector(resolver, fusecache.New())

	root := &fakeNode{kind: astutil.KindStatement, key: "root", loc: testLoc("main.cc")}
	member := &fakeNode{kind: astutil.KindStatement, key: "member-expr", loc: testLoc("main.cc"), baseType: "MyClass"}
	root.children = []astutil.Node{member}

	c.Visit(root)

	l, ok := c.Ledgers()[ledger.MakeFileHandle("main.cc")]
	if !ok {
		t.Fatal("expected a ledger for main.cc")
	}
	if len(l.RawUses) != 1 {
		t.Fatalf("RawUses = %d, want 1", len(l.RawUses))
	}
	use := l.RawUses[0]
	if use.SymbolName != "MyClass" || use.Kind != ledger.UseFull {
		t.Errorf("use = %+v, want full use of MyClass", use)
	}
	if use.DeclFilepath != "myclass.h" {
		t.Errorf("DeclFilepath = %q, want myclass.h", use.DeclFilepath)
	}
}

func TestVisitSkipsUnresolvableTypes(t *testing.T) {
	resolver := &fakeResolver{files: map[string]string{}}
	c := NewCollector(resolver, fusecache.New())

	root := &fakeNode{kind: astutil.KindStatement, key: "root", loc: testLoc("main.cc"), baseType: "Unknown"}
	c.Visit(root)

	if len(c.Ledgers()) != 0 {
		t.Errorf("expected no ledger to be created for an unresolvable use, got %v", c.Ledgers())
	}
}

func TestReplayerPrecomputedContainerRecordsArgType(t *testing.T) {
	resolver := &fakeResolver{files: map[string]string{"MyClass": "myclass.h"}}
	c := NewCollector(resolver, fusecache.New())

	site := &fakeNode{kind: astutil.KindType, key: "vector<MyClass>", loc: testLoc("main.cc")}
	c.replayer.ScanInstantiatedType(InstantiatedType{
		EntityKey:     "std::vector<MyClass>",
		CanonicalName: "std::vector",
		TemplateArgs:  []string{"MyClass"},
		Pattern:       site,
	})

	l, ok := c.Ledgers()[ledger.MakeFileHandle("main.cc")]
	if !ok || len(l.RawUses) != 1 || l.RawUses[0].SymbolName != "MyClass" {
		t.Fatalf("expected MyClass recorded as full use via precomputed container, got %+v", c.Ledgers())
	}
}

func TestReplayerCachesSecondInstantiation(t *testing.T) {
	resolver := &fakeResolver{files: map[string]string{"Foo": "foo.h"}}
	cache := fusecache.New()
	c := NewCollector(resolver, cache)

	pattern := &fakeNode{kind: astutil.KindStatement, key: "pattern", loc: testLoc("tmpl.h"), baseType: "Foo"}
	inst := InstantiatedFunction{EntityKey: "tmplFn<Foo>", ResugarEncoding: "T=Foo", Pattern: pattern}

	c.replayer.ScanInstantiatedFunction(inst)
	firstCount := len(c.Ledgers()[ledger.MakeFileHandle("tmpl.h")].RawUses)

	// A second instantiation with the same resugar should hit the cache and
	// not re-walk the pattern (no new cache entry is computed, but the
	// recorded use is replayed against the new site).
	site2 := &fakeNode{kind: astutil.KindStatement, key: "site2", loc: testLoc("caller.cc")}
	c.replayer.ScanInstantiatedFunction(InstantiatedFunction{EntityKey: "tmplFn<Foo>", ResugarEncoding: "T=Foo", Pattern: site2})

	if firstCount == 0 {
		t.Fatal("expected the first instantiation to record at least one use")
	}
	if _, ok := c.Ledgers()[ledger.MakeFileHandle("caller.cc")]; !ok {
		t.Error("expected the cached use to be replayed against the second instantiation's site")
	}
}
