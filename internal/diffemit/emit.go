package diffemit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// Emitter prints the trimmer's results as a human-readable diff, grounded on
// original_source/iwyu_output.cc's PrintableDiffs/FormatIncludeLine.
// Verbosity follows the original's levels: 0 prints only the full include
// list, 1 (the default) adds the should-add/should-remove sections, 3+
// prints every "why" comment symbol instead of truncating at 80 columns.
type Emitter struct {
	Verbosity int
}

func New(verbosity int) *Emitter {
	return &Emitter{Verbosity: verbosity}
}

// sortBucket is the six-way bucket from spec.md §4.10: 1 associated header,
// 2 associated -inl header, 3 C system header, 4 C++ system header, 5 other
// quoted header, 6 forward declaration.
func sortBucket(line *ledger.IncludeOrForwardDeclareLine, associatedQuoted map[ledger.QuotedInclude]bool) int {
	if line.Kind != ledger.LineInclude {
		return 6
	}
	q := string(line.Quoted)
	if associatedQuoted[line.Quoted] {
		if strings.HasSuffix(q, `-inl.h"`) {
			return 2
		}
		return 1
	}
	if strings.HasSuffix(q, `.h>`) {
		return 3
	}
	if strings.HasSuffix(q, `>`) {
		return 4
	}
	return 5
}

func lineNumberString(line *ledger.IncludeOrForwardDeclareLine) string {
	if line.StartLine < 0 {
		return "??" // not present on disk; no line number to show
	}
	if line.StartLine == line.EndLine {
		return strconv.Itoa(line.StartLine)
	}
	return fmt.Sprintf("%d-%d", line.StartLine, line.EndLine)
}

// formatOneLine is PrintableIncludeOrForwardDeclareLine: the bare line, plus
// a right-aligned "// for Symbol, Symbol2" comment built from the symbols
// that caused it, or a bare "// lines N-M" comment when there's nothing more
// useful to say.
func (e *Emitter) formatOneLine(line *ledger.IncludeOrForwardDeclareLine, associatedQuoted map[ledger.QuotedInclude]bool) string {
	if len(line.SymbolUses) == 0 && !line.IsPresent {
		return line.PrintedForm + "\n"
	}
	if len(line.SymbolUses) == 0 || !line.IsDesired {
		return line.PrintedForm + "  // lines " + lineNumberString(line) + "\n"
	}
	if line.Kind == ledger.LineInclude && associatedQuoted[line.Quoted] {
		return line.PrintedForm + "\n" // no need to explain why foo.cc includes foo.h
	}

	retval := line.PrintedForm
	prefix := ""
	if len(retval) < 38 {
		prefix = strings.Repeat(" ", 38-len(retval))
	}
	prefix += "  // for "

	symbolsPrinted := 0
	for _, sym := range line.SortedSymbolUses() {
		if sym == "" {
			continue
		}
		if e.Verbosity >= 3 || len(retval)+len(prefix)+len(sym) <= 74 {
			retval += prefix + sym
			symbolsPrinted++
			prefix = ", "
		} else {
			if symbolsPrinted > 0 {
				retval += ", etc"
			}
			break
		}
	}
	return retval + "\n"
}

// FormatFileDiff is PrintableDiffs: the full three-section report for one
// file, or the single "has correct #includes/fwd-decls" line when the
// trimmer made no changes.
func (e *Emitter) FormatFileDiff(l *ledger.PerFileLedger, associated []*ledger.PerFileLedger) string {
	associatedQuoted := make(map[ledger.QuotedInclude]bool, len(associated))
	for _, a := range associated {
		associatedQuoted[a.QuotedName] = true
	}

	sorted := append([]*ledger.IncludeOrForwardDeclareLine(nil), l.Lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sortBucket(sorted[i], associatedQuoted), sortBucket(sorted[j], associatedQuoted)
		if bi != bj {
			return bi < bj
		}
		return sorted[i].PrintedForm < sorted[j].PrintedForm
	})

	noAddsOrDeletes := true
	for _, line := range sorted {
		if (line.IsDesired && !line.IsPresent) || (line.IsPresent && !line.IsDesired) {
			noAddsOrDeletes = false
			break
		}
	}
	if noAddsOrDeletes {
		return fmt.Sprintf("\n(%s has correct #includes/fwd-decls)\n", l.QuotedName.String())
	}

	var out strings.Builder

	if e.Verbosity >= 1 {
		out.WriteString("\n" + l.QuotedName.String() + " should add these lines:\n")
		for _, line := range sorted {
			if line.IsDesired && !line.IsPresent {
				out.WriteString(e.formatOneLine(line, associatedQuoted))
			}
		}

		out.WriteString("\n" + l.QuotedName.String() + " should remove these lines:\n")
		for _, line := range sorted {
			if line.IsPresent && !line.IsDesired {
				out.WriteString("- " + e.formatOneLine(line, associatedQuoted))
			}
		}
	}

	out.WriteString("\nThe full include-list for " + l.QuotedName.String() + ":\n")
	for _, line := range sorted {
		if line.IsDesired {
			out.WriteString(e.formatOneLine(line, associatedQuoted))
		}
	}

	out.WriteString("---\n")
	return out.String()
}
