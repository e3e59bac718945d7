package diffemit

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// UnifiedIncludeBlockDiff renders the present include/forward-declare block
// against the desired one as a unified-style diff, for verbosity levels high
// enough to want more than the should-add/should-remove line lists
// (SPEC_FULL.md §2 supplement "verbosity levels"). Grounded on
// google/kati's use of github.com/sergi/go-diff for build-graph diffing.
func UnifiedIncludeBlockDiff(l *ledger.PerFileLedger) string {
	present := blockText(l, func(line *ledger.IncludeOrForwardDeclareLine) bool { return line.IsPresent })
	desired := blockText(l, func(line *ledger.IncludeOrForwardDeclareLine) bool { return line.IsDesired })
	if present == desired {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(present, desired, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

func blockText(l *ledger.PerFileLedger, include func(*ledger.IncludeOrForwardDeclareLine) bool) string {
	var lines []string
	for _, line := range l.Lines {
		if include(line) {
			lines = append(lines, line.PrintedForm)
		}
	}
	return strings.Join(lines, "\n")
}
