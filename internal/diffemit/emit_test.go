package diffemit

import (
	"strings"
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

func TestFormatFileDiffNoChanges(t *testing.T) {
	l := ledger.NewPerFileLedger(ledger.MakeFileHandle("foo.cc"), "\"foo.h\"")
	l.Lines = append(l.Lines, &ledger.IncludeOrForwardDeclareLine{
		Kind: ledger.LineInclude, Quoted: "\"foo.h\"",
		PrintedForm: "#include \"foo.h\"",
		IsPresent:   true, IsDesired: true,
		StartLine: 1, EndLine: 1,
	})

	e := New(1)
	got := e.FormatFileDiff(l, nil)
	if !strings.Contains(got, "has correct #includes/fwd-decls") {
		t.Errorf("got %q, want the no-changes summary", got)
	}
}

func TestFormatFileDiffShouldAddAndRemove(t *testing.T) {
	l := ledger.NewPerFileLedger(ledger.MakeFileHandle("foo.cc"), "\"foo.h\"")
	stale := &ledger.IncludeOrForwardDeclareLine{
		Kind: ledger.LineInclude, Quoted: "\"stale.h\"",
		PrintedForm: "#include \"stale.h\"",
		IsPresent:   true, IsDesired: false,
		StartLine: 2, EndLine: 2,
	}
	added := &ledger.IncludeOrForwardDeclareLine{
		Kind: ledger.LineInclude, Quoted: "<vector>",
		PrintedForm: "#include <vector>",
		IsPresent:   false, IsDesired: true,
		StartLine: -1, EndLine: -1,
	}
	added.RecordSymbolUse("std::vector")
	l.Lines = append(l.Lines, stale, added)

	e := New(1)
	got := e.FormatFileDiff(l, nil)

	if !strings.Contains(got, "should add these lines:") || !strings.Contains(got, "<vector>") {
		t.Errorf("missing should-add section: %q", got)
	}
	if !strings.Contains(got, "should remove these lines:") || !strings.Contains(got, "- #include \"stale.h\"") {
		t.Errorf("missing should-remove section: %q", got)
	}
	if !strings.Contains(got, "for std::vector") {
		t.Errorf("expected a 'for std::vector' comment, got %q", got)
	}
}

func TestSortBucketOrdering(t *testing.T) {
	assoc := map[ledger.QuotedInclude]bool{"\"foo.h\"": true}
	cases := []struct {
		line *ledger.IncludeOrForwardDeclareLine
		want int
	}{
		{&ledger.IncludeOrForwardDeclareLine{Kind: ledger.LineInclude, Quoted: "\"foo.h\""}, 1},
		{&ledger.IncludeOrForwardDeclareLine{Kind: ledger.LineInclude, Quoted: "\"foo-inl.h\""}, 5},
		{&ledger.IncludeOrForwardDeclareLine{Kind: ledger.LineInclude, Quoted: "<stdio.h>"}, 3},
		{&ledger.IncludeOrForwardDeclareLine{Kind: ledger.LineInclude, Quoted: "<vector>"}, 4},
		{&ledger.IncludeOrForwardDeclareLine{Kind: ledger.LineInclude, Quoted: "\"bar.h\""}, 5},
		{&ledger.IncludeOrForwardDeclareLine{Kind: ledger.LineForwardDecl}, 6},
	}
	for _, c := range cases {
		if got := sortBucket(c.line, assoc); got != c.want {
			t.Errorf("sortBucket(%v) = %d, want %d", c.line.Quoted, got, c.want)
		}
	}
}
