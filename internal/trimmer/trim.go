package trimmer

import (
	"github.com/iwyu-go/iwyu-go/internal/ledger"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
)

// trimForwardDeclareUses is step A: a forward-declare use survives only if
// it's of a class/class template with no default template arguments, isn't
// a nested class, and has no redeclaration already visible where it's used.
func (t *Trimmer) trimForwardDeclareUses(l *ledger.PerFileLedger, info TypeInfo) {
	var kept []*ledger.OneUse
	for _, u := range l.RawUses {
		if u.Kind != ledger.UseForwardDeclare {
			kept = append(kept, u)
			continue
		}

		if !info.IsClassOrClassTemplate(u.SymbolName) {
			u.Kind = ledger.UseFull
			kept = append(kept, u)
			continue
		}
		if info.HasDefaultTemplateArgs(u.SymbolName) {
			u.Kind = ledger.UseFull
			kept = append(kept, u)
			continue
		}
		if info.IsNestedClass(u.SymbolName) {
			continue // the parent class's use already supplies it
		}

		canon := info.CanonicalDecl(u.Declaration)
		if canon != nil && canon.VisibleBefore(u.UseLoc.ResolvedFile(), u.UseLoc.SpellingLine) {
			continue
		}

		kept = append(kept, u)
	}
	l.RawUses = kept
}

// trimFullUses is step B: drop full uses the compiler would have been able
// to satisfy on its own, or that belong to the same declaration the
// member-function rule already covers via its parent class's header.
func (t *Trimmer) trimFullUses(l *ledger.PerFileLedger, info TypeInfo) {
	var kept []*ledger.OneUse
	for _, u := range l.RawUses {
		if u.Kind != ledger.UseFull {
			kept = append(kept, u)
			continue
		}

		if u.DeclFilepath == l.File.Path() {
			continue // declared right here, nothing to include
		}
		if info.IsBuiltin(u.SymbolName) {
			continue
		}
		if pathutil.IsHeaderFile(l.File.Path()) && !pathutil.IsHeaderFile(u.DeclFilepath) {
			continue // a header must never pull in a .cc's declarations
		}
		if info.IsMemberFunction(u.Declaration) {
			parentFile := info.ParentClassFile(u.Declaration)
			if t.samePublicHeader(parentFile, u.DeclFilepath) {
				continue // the parent class's own use already requires this header
			}
		}

		kept = append(kept, u)
	}
	l.RawUses = kept
}

// samePublicHeader reports whether a and b resolve to the same public header
// once mapped through the picker (spec.md §4.9 step B: "same file after
// private->public mapping", not a raw path comparison).
func (t *Trimmer) samePublicHeader(a, b string) bool {
	if a == b {
		return true
	}
	for _, ha := range t.Picker.HeadersForPath(a, t.SearchPaths) {
		for _, hb := range t.Picker.HeadersForPath(b, t.SearchPaths) {
			if ha == hb {
				return true
			}
		}
	}
	return false
}
