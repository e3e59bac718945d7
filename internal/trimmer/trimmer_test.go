package trimmer

import (
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/includepicker"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
)

type fakeTypeInfo struct {
	classes  map[string]bool
	nested   map[string]bool
	builtins map[string]bool
	members  map[string]bool
	parentOf map[string]string
	canon    map[string]*ledger.CanonicalDecl
}

func newFakeTypeInfo() *fakeTypeInfo {
	return &fakeTypeInfo{
		classes:  map[string]bool{},
		nested:   map[string]bool{},
		builtins: map[string]bool{},
		members:  map[string]bool{},
		parentOf: map[string]string{},
		canon:    map[string]*ledger.CanonicalDecl{},
	}
}

func (f *fakeTypeInfo) IsClassOrClassTemplate(s string) bool   { return f.classes[s] }
func (f *fakeTypeInfo) HasDefaultTemplateArgs(s string) bool   { return false }
func (f *fakeTypeInfo) IsNestedClass(s string) bool            { return f.nested[s] }
func (f *fakeTypeInfo) IsBuiltin(s string) bool                { return f.builtins[s] }
func (f *fakeTypeInfo) IsMemberFunction(h ledger.DeclHandle) bool { return f.members[h.String()] }
func (f *fakeTypeInfo) ParentClassFile(h ledger.DeclHandle) string {
	return f.parentOf[h.String()]
}
func (f *fakeTypeInfo) CanonicalDecl(h ledger.DeclHandle) *ledger.CanonicalDecl {
	return f.canon[h.String()]
}

func TestTrimFullUseSameFileDropped(t *testing.T) {
	file := ledger.MakeFileHandle("foo.cc")
	l := ledger.NewPerFileLedger(file, "\"foo.h\"")
	l.RecordUse(&ledger.OneUse{
		SymbolName:   "Helper",
		Declaration:  ledger.MakeDeclHandle("d1"),
		DeclFilepath: "foo.cc",
		Kind:         ledger.UseFull,
		UseLoc:       ledger.SourceLocation{SpellingFile: file, SpellingLine: 5, ExpansionFile: file, ExpansionLine: 5},
	})

	tr := New(includepicker.NewIncludePicker(), pathutil.NewSearchPathIndex(nil))
	info := newFakeTypeInfo()
	tr.trimForwardDeclareUses(l, info)
	tr.trimFullUses(l, info)

	if len(l.RawUses) != 0 {
		t.Errorf("expected the same-file use to be dropped, got %d uses", len(l.RawUses))
	}
}

func TestTrimForwardDeclarePromotedWhenNotClass(t *testing.T) {
	file := ledger.MakeFileHandle("foo.cc")
	l := ledger.NewPerFileLedger(file, "\"foo.h\"")
	l.RecordUse(&ledger.OneUse{
		SymbolName:   "SOME_CONST",
		Declaration:  ledger.MakeDeclHandle("d1"),
		DeclFilepath: "consts.h",
		Kind:         ledger.UseForwardDeclare,
		UseLoc:       ledger.SourceLocation{SpellingFile: file, SpellingLine: 5, ExpansionFile: file, ExpansionLine: 5},
	})

	tr := New(includepicker.NewIncludePicker(), pathutil.NewSearchPathIndex(nil))
	info := newFakeTypeInfo()
	tr.trimForwardDeclareUses(l, info)

	if len(l.RawUses) != 1 || l.RawUses[0].Kind != ledger.UseFull {
		t.Fatalf("expected the non-class use to be promoted to a full use, got %+v", l.RawUses)
	}
}

func TestSetCoverAssignsFromDirectIncludes(t *testing.T) {
	file := ledger.MakeFileHandle("foo.cc")
	l := ledger.NewPerFileLedger(file, "\"foo.h\"")
	l.DirectIncludes["\"bar.h\""] = true

	u := &ledger.OneUse{
		SymbolName:   "Bar",
		Declaration:  ledger.MakeDeclHandle("d1"),
		DeclFilepath: "bar.h",
		Kind:         ledger.UseFull,
		PublicHeaders: []ledger.QuotedInclude{"\"bar.h\""},
		UseLoc:       ledger.SourceLocation{SpellingFile: file, SpellingLine: 5, ExpansionFile: file, ExpansionLine: 5},
	}
	l.RecordUse(u)

	tr := New(includepicker.NewIncludePicker(), pathutil.NewSearchPathIndex(nil))
	eff := computeEffectiveAssociations(l, nil)
	tr.resolveSetCover(l, eff)

	if !u.HasSuggestedHeader() || u.SuggestedHeader != "\"bar.h\"" {
		t.Errorf("expected bar.h to be suggested from the direct-include pool, got %q", u.SuggestedHeader)
	}
}
