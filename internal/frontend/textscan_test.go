package frontend

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foo.cc")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestScanPresentLinesFindsIncludes(t *testing.T) {
	path := writeTempFile(t, `#include "foo.h"
// #include "commented.h"
#include <vector>
int main() {}
`)

	lines, err := ScanPresentLines(path)
	if err != nil {
		t.Fatalf("ScanPresentLines: %v", err)
	}

	var quoted, angle bool
	for _, l := range lines {
		switch l.Quoted {
		case `"foo.h"`:
			quoted = true
			if l.StartLine != 1 {
				t.Errorf("foo.h StartLine = %d, want 1", l.StartLine)
			}
		case "<vector>":
			angle = true
			if l.StartLine != 3 {
				t.Errorf("vector StartLine = %d, want 3", l.StartLine)
			}
		}
		if string(l.Quoted) == `"commented.h"` {
			t.Errorf("commented-out include should not be matched")
		}
	}
	if !quoted || !angle {
		t.Fatalf("missing expected includes: %+v", lines)
	}
}

func TestScanPresentLinesFindsForwardDecl(t *testing.T) {
	path := writeTempFile(t, "class Foo;\nstruct Bar;\nclass Baz { };\n")

	lines, err := ScanPresentLines(path)
	if err != nil {
		t.Fatalf("ScanPresentLines: %v", err)
	}

	var names []string
	for _, l := range lines {
		names = append(names, l.Decl.String())
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want 2 forward decls", names)
	}
}

func TestScanCacheSkipsUnchangedFile(t *testing.T) {
	path := writeTempFile(t, `#include "foo.h"`)
	c := NewScanCache()

	first, err := c.ScanPresentLinesCached(path)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := c.ScanPresentLinesCached(path)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cached scan mismatch: %d vs %d", len(first), len(second))
	}
	if c.Count() != 1 {
		t.Errorf("Count() = %d, want 1", c.Count())
	}
}
