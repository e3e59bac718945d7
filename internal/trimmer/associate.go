package trimmer

import "github.com/iwyu-go/iwyu-go/internal/ledger"

// effectiveAssociations is step C: an implementation file inherits its
// associated headers' direct-include set (for satisfaction checks in steps
// D/E) and their desired-include set (so a header already pulled in through
// the associated file isn't suggested again in step F).
type effectiveAssociations struct {
	directIncludes map[ledger.QuotedInclude]bool
	directFiles    map[ledger.FileHandle]bool
	desired        map[ledger.QuotedInclude]bool
}

func computeEffectiveAssociations(l *ledger.PerFileLedger, associated []*ledger.PerFileLedger) *effectiveAssociations {
	eff := &effectiveAssociations{
		directIncludes: make(map[ledger.QuotedInclude]bool),
		directFiles:    make(map[ledger.FileHandle]bool),
		desired:        make(map[ledger.QuotedInclude]bool),
	}
	for q := range l.DirectIncludes {
		eff.directIncludes[q] = true
	}
	for f := range l.DirectIncludeFiles {
		eff.directFiles[f] = true
	}
	for _, a := range associated {
		for q := range a.DirectIncludes {
			eff.directIncludes[q] = true
		}
		for f := range a.DirectIncludeFiles {
			eff.directFiles[f] = true
		}
		for q := range a.DesiredIncludes {
			eff.desired[q] = true
		}
	}
	return eff
}
