// Package driverrun ties the engine's packages together into one analysis
// run over a translation unit and reports the supplemented per-run summary
// (SPEC_FULL.md §4.3). Grounded on the shape of the teacher's
// internal/client/invocation.go "build one invocation, run it, report a
// summary" loop, retargeted from compiling one file remotely to walking one
// translation unit's AST in-process.
package driverrun

import (
	"github.com/iwyu-go/iwyu-go/internal/astutil"
	"github.com/iwyu-go/iwyu-go/internal/collector"
	"github.com/iwyu-go/iwyu-go/internal/fusecache"
	"github.com/iwyu-go/iwyu-go/internal/includepicker"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
	"github.com/iwyu-go/iwyu-go/internal/trimmer"
)

// Engine owns the parts of an analysis run that outlive any single
// translation unit: the Include Picker's static and mapping-file maps, the
// Path Normalizer's search path index, and the Full-Use Cache.
type Engine struct {
	Picker      *includepicker.IncludePicker
	SearchPaths *pathutil.SearchPathIndex
	Cache       *fusecache.FullUseCache
	TypeInfo    trimmer.TypeInfo
}

func NewEngine(picker *includepicker.IncludePicker, searchPaths *pathutil.SearchPathIndex, typeInfo trimmer.TypeInfo) *Engine {
	return &Engine{
		Picker:      picker,
		SearchPaths: searchPaths,
		Cache:       fusecache.New(),
		TypeInfo:    typeInfo,
	}
}

// Run walks every root with a fresh Collector seeded by resolver, merges in
// each file's already-scanned present #include/forward-declare lines, then
// trims and set-covers every resulting ledger. presentLines is keyed by the
// same ledger.FileHandle the Collector resolves uses against, typically
// produced by frontend.ScanPresentLines for each file reachable from roots.
func (e *Engine) Run(resolver collector.DeclResolver, roots []astutil.Node, presentLines map[ledger.FileHandle][]*ledger.IncludeOrForwardDeclareLine) (*RunSummary, map[ledger.FileHandle]*ledger.PerFileLedger) {
	summary := NewRunSummary()

	c := collector.NewCollector(resolver, e.Cache)
	for _, root := range roots {
		c.Visit(root)
	}
	summary.AddTiming("collect")

	ledgers := c.Ledgers()
	for file, lines := range presentLines {
		if l, ok := ledgers[file]; ok {
			seedPresentLines(l, lines)
		}
	}

	tr := trimmer.New(e.Picker, e.SearchPaths)
	for _, l := range orderByAssociationDepth(ledgers) {
		associated := make([]*ledger.PerFileLedger, 0, len(l.Associated))
		for other := range l.Associated {
			if a, ok := ledgers[other]; ok {
				associated = append(associated, a)
			}
		}
		tr.TrimFile(l, e.TypeInfo, associated)
		summary.ViolationsFound += countViolations(l)
	}
	summary.AddTiming("trim")

	summary.FilesAnalyzed = len(ledgers)
	for _, l := range ledgers {
		summary.UsesRecorded += len(l.RawUses)
	}

	return summary, ledgers
}

// seedPresentLines folds a file's text-scanned #include/forward-declare
// lines into its ledger before trimming, so step F (reconcileDesiredLines)
// can match against what's already on disk instead of only what the
// Collector proposed.
func seedPresentLines(l *ledger.PerFileLedger, lines []*ledger.IncludeOrForwardDeclareLine) {
	for _, line := range lines {
		l.Lines = append(l.Lines, line)
		switch line.Kind {
		case ledger.LineInclude:
			l.DirectIncludes[line.Quoted] = true
		case ledger.LineForwardDecl:
			l.DirectForwardDeclares[line.Decl] = true
		}
	}
}

// orderByAssociationDepth trims files with no associated files first (the
// common case: a .h has none, the .cc that implements it has one), so
// TrimFile's "associated holds ledgers already trimmed through step D"
// precondition holds for the one-level associations this engine produces.
func orderByAssociationDepth(ledgers map[ledger.FileHandle]*ledger.PerFileLedger) []*ledger.PerFileLedger {
	ordered := make([]*ledger.PerFileLedger, 0, len(ledgers))
	var withAssociations []*ledger.PerFileLedger
	for _, l := range ledgers {
		if len(l.Associated) == 0 {
			ordered = append(ordered, l)
		} else {
			withAssociations = append(withAssociations, l)
		}
	}
	return append(ordered, withAssociations...)
}

func countViolations(l *ledger.PerFileLedger) int {
	n := 0
	for _, u := range l.RawUses {
		if u.IsViolation {
			n++
		}
	}
	return n
}
