package trimmer

import "github.com/iwyu-go/iwyu-go/internal/ledger"

// reconcileDesiredLines is step F: turn the final desired-include and
// unsuggested-forward-declare sets into IncludeOrForwardDeclareLine entries,
// updating existing lines in place and creating new ones with -1/-1 spans.
func reconcileDesiredLines(l *ledger.PerFileLedger, eff *effectiveAssociations) {
	byInclude := make(map[ledger.QuotedInclude]*ledger.IncludeOrForwardDeclareLine)
	byDecl := make(map[ledger.DeclHandle]*ledger.IncludeOrForwardDeclareLine)
	for _, line := range l.Lines {
		switch line.Kind {
		case ledger.LineInclude:
			byInclude[line.Quoted] = line
		case ledger.LineForwardDecl:
			byDecl[line.Decl] = line
		}
	}

	for q := range l.DesiredIncludes {
		if eff.desired[q] {
			continue // already supplied through an associated file; don't re-add
		}
		line, ok := byInclude[q]
		if !ok {
			line = &ledger.IncludeOrForwardDeclareLine{
				Kind:      ledger.LineInclude,
				Quoted:    q,
				StartLine: -1, EndLine: -1,
			}
			l.Lines = append(l.Lines, line)
			byInclude[q] = line
		}
		line.IsDesired = true
		line.PrintedForm = "#include " + q.String()
	}

	for _, u := range l.RawUses {
		if u.Ignored || u.Kind != ledger.UseFull || !u.HasSuggestedHeader() {
			continue
		}
		if line, ok := byInclude[u.SuggestedHeader]; ok {
			line.RecordSymbolUse(u.ShortName)
		}
	}

	for _, u := range l.RawUses {
		if u.Ignored || u.Kind != ledger.UseForwardDeclare || u.HasSuggestedHeader() {
			continue
		}
		line, ok := byDecl[u.Declaration]
		if !ok {
			line = &ledger.IncludeOrForwardDeclareLine{
				Kind:      ledger.LineForwardDecl,
				Decl:      u.Declaration,
				StartLine: -1, EndLine: -1,
			}
			l.Lines = append(l.Lines, line)
			byDecl[u.Declaration] = line
		}
		if line.PrintedForm == "" {
			line.PrintedForm = "class " + u.ShortName + ";"
		}
		line.IsDesired = true
		line.RecordSymbolUse(u.ShortName)
	}
}
