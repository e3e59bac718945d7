package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/collector"
	"github.com/iwyu-go/iwyu-go/internal/fusecache"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFixtureDrivesCollector(t *testing.T) {
	path := writeFixture(t, `{
		"declarations": {
			"MyClass": {"file": "myclass.h", "shortName": "MyClass"}
		},
		"roots": [
			{
				"kind": "statement",
				"file": "main.cc",
				"line": 1,
				"children": [
					{"kind": "member-expr", "file": "main.cc", "line": 2, "baseType": "MyClass"}
				]
			}
		]
	}`)

	fixture, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(fixture.Roots) != 1 {
		t.Fatalf("Roots = %d, want 1", len(fixture.Roots))
	}

	c := collector.NewCollector(fixture.Resolver, fusecache.New())
	for _, root := range fixture.Roots {
		c.Visit(root)
	}

	l, ok := c.Ledgers()[ledger.MakeFileHandle("main.cc")]
	if !ok || len(l.RawUses) != 1 {
		t.Fatalf("expected one use recorded for main.cc, got %+v", c.Ledgers())
	}
	if l.RawUses[0].SymbolName != "MyClass" || l.RawUses[0].Kind != ledger.UseFull {
		t.Errorf("use = %+v, want full use of MyClass", l.RawUses[0])
	}
}
