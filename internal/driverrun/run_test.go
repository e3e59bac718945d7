package driverrun

import (
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/astutil"
	"github.com/iwyu-go/iwyu-go/internal/includepicker"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
)

type fakeNode struct {
	kind     astutil.NodeKind
	children []astutil.Node
	loc      ledger.SourceLocation
	key      string
	baseType string
}

func (n *fakeNode) Kind() astutil.NodeKind          { return n.kind }
func (n *fakeNode) Children() []astutil.Node        { return n.children }
func (n *fakeNode) Location() ledger.SourceLocation { return n.loc }
func (n *fakeNode) IdentityKey() string             { return n.key }
func (n *fakeNode) BaseType() string                { return n.baseType }

type fakeResolver struct{ files map[string]string }

func (r *fakeResolver) ResolveType(name string) (string, ledger.DeclHandle, string, bool) {
	f, ok := r.files[name]
	if !ok {
		return "", ledger.DeclHandle{}, "", false
	}
	return f, ledger.MakeDeclHandle(name), name, true
}

type fakeTypeInfo struct{}

func (fakeTypeInfo) IsClassOrClassTemplate(string) bool         { return true }
func (fakeTypeInfo) HasDefaultTemplateArgs(string) bool         { return false }
func (fakeTypeInfo) IsNestedClass(string) bool                  { return false }
func (fakeTypeInfo) IsBuiltin(string) bool                      { return false }
func (fakeTypeInfo) CanonicalDecl(ledger.DeclHandle) *ledger.CanonicalDecl { return nil }
func (fakeTypeInfo) IsMemberFunction(ledger.DeclHandle) bool    { return false }
func (fakeTypeInfo) ParentClassFile(ledger.DeclHandle) string   { return "" }

func testLoc(file string) ledger.SourceLocation {
	fh := ledger.MakeFileHandle(file)
	return ledger.SourceLocation{SpellingFile: fh, SpellingLine: 5, ExpansionFile: fh, ExpansionLine: 5}
}

func TestEngineRunProducesDesiredIncludeAndSummary(t *testing.T) {
	resolver := &fakeResolver{files: map[string]string{"MyClass": "myclass.h"}}
	picker := includepicker.NewIncludePicker()
	if err := picker.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	searchPaths := pathutil.NewSearchPathIndex(nil)

	engine := NewEngine(picker, searchPaths, fakeTypeInfo{})

	root := &fakeNode{kind: astutil.KindStatement, key: "root", loc: testLoc("main.cc")}
	member := &fakeNode{kind: astutil.KindStatement, key: "member", loc: testLoc("main.cc"), baseType: "MyClass"}
	root.children = []astutil.Node{member}

	summary, ledgers := engine.Run(resolver, []astutil.Node{root}, nil)

	if summary.FilesAnalyzed != 1 || summary.UsesRecorded != 1 {
		t.Errorf("summary = %+v, want 1 file, 1 use", summary)
	}
	l, ok := ledgers[ledger.MakeFileHandle("main.cc")]
	if !ok {
		t.Fatal("expected a ledger for main.cc")
	}
	if !l.DesiredIncludes[`"myclass.h"`] {
		t.Errorf("DesiredIncludes = %v, want myclass.h present in some quoted form", l.DesiredIncludes)
	}
}
