package diffemit

import (
	"strings"
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

func TestDepFileFromLedgerRoundTrips(t *testing.T) {
	l := ledger.NewPerFileLedger(ledger.MakeFileHandle("foo.cc"), "\"foo.h\"")
	l.DesiredIncludes["\"foo.h\""] = true
	l.DesiredIncludes["<vector>"] = true

	depFile := DepFileFromLedger(l)
	bytes := depFile.WriteToBytes()

	parsed, err := MakeDepFileFromBytes(bytes)
	if err != nil {
		t.Fatalf("MakeDepFileFromBytes: %v", err)
	}
	deps := parsed.FindDepListByTargetName("foo.cc")
	if len(deps) != 2 {
		t.Fatalf("deps = %v, want 2 entries", deps)
	}
}

func TestGenerateAndSaveDepFileUsesMFName(t *testing.T) {
	l := ledger.NewPerFileLedger(ledger.MakeFileHandle("foo.cc"), "\"foo.h\"")
	l.DesiredIncludes["\"foo.h\""] = true

	var deps DepCmdFlags
	deps.SetCmdFlagMF(t.TempDir() + "/out.d")

	name, err := deps.GenerateAndSaveDepFile(l)
	if err != nil {
		t.Fatalf("GenerateAndSaveDepFile: %v", err)
	}
	if !strings.HasSuffix(name, "out.d") {
		t.Errorf("name = %q, want suffix out.d", name)
	}
}
