package trimmer

import "github.com/iwyu-go/iwyu-go/internal/ledger"

// classifyViolations is step E: a use is a violation unless the header (or
// redeclaration, for forward-declares) it needs is already effectively
// available without the trimmer's help.
func classifyViolations(l *ledger.PerFileLedger, eff *effectiveAssociations) {
	for _, u := range l.RawUses {
		if u.Ignored {
			continue
		}
		switch u.Kind {
		case ledger.UseForwardDeclare:
			u.IsViolation = !isForwardDeclareSatisfied(u, l, eff)
		case ledger.UseFull:
			u.IsViolation = !eff.directIncludes[u.SuggestedHeader]
		}
	}
}

func isForwardDeclareSatisfied(u *ledger.OneUse, l *ledger.PerFileLedger, eff *effectiveAssociations) bool {
	if eff.directFiles[ledger.MakeFileHandle(u.DeclFilepath)] {
		return true
	}
	if l.DirectForwardDeclares[u.Declaration] {
		return true
	}
	resolvedFile := u.UseLoc.ResolvedFile()
	if resolvedFile == ledger.MakeFileHandle(u.DeclFilepath) {
		return true // visible earlier in the same file
	}
	return false
}
