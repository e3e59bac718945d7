// Package trimmer is the Use Trimmer & Set-Cover Resolver (spec.md §4.9): it
// runs once per file after traversal finishes, narrows the raw uses
// recorded by internal/collector down to what's actually required, and
// computes the minimal set of public headers that covers them.
package trimmer

import (
	"github.com/iwyu-go/iwyu-go/internal/includepicker"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
)

// TypeInfo is the seam to the out-of-scope front-end collaborator (mirrors
// collector.DeclResolver): the trimmer's classification rules need a little
// more than a OneUse record carries, so it asks back through this
// interface rather than the ledger growing a dozen speculative fields.
type TypeInfo interface {
	IsClassOrClassTemplate(symbolName string) bool
	HasDefaultTemplateArgs(symbolName string) bool
	IsNestedClass(symbolName string) bool
	IsBuiltin(symbolName string) bool
	CanonicalDecl(handle ledger.DeclHandle) *ledger.CanonicalDecl
	IsMemberFunction(handle ledger.DeclHandle) bool
	// ParentClassFile returns the file the member function's parent class
	// is declared in, after private->public mapping, for Step B's "same
	// file as its parent class" check.
	ParentClassFile(handle ledger.DeclHandle) string
}

type Trimmer struct {
	Picker      *includepicker.IncludePicker
	SearchPaths *pathutil.SearchPathIndex
}

func New(picker *includepicker.IncludePicker, searchPaths *pathutil.SearchPathIndex) *Trimmer {
	return &Trimmer{Picker: picker, SearchPaths: searchPaths}
}

// TrimFile runs steps A-F of spec.md §4.9 against one file's ledger.
// associated holds the ledgers of files l.Associated names (e.g. foo.h's
// ledger when l is foo.cc), already trimmed through step D so their
// direct/desired sets are final.
func (t *Trimmer) TrimFile(l *ledger.PerFileLedger, info TypeInfo, associated []*ledger.PerFileLedger) {
	t.trimForwardDeclareUses(l, info)
	t.trimFullUses(l, info)

	eff := computeEffectiveAssociations(l, associated)

	t.resolveSetCover(l, eff)
	classifyViolations(l, eff)
	reconcileDesiredLines(l, eff)
}
