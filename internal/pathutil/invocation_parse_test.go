package pathutil

import "testing"

func TestParseCxxInvocation(t *testing.T) {
	cmdLine := []string{"g++", "-Iinclude", "-isystem", "/usr/include", "-DNDEBUG", "-Wall", "a.cc", "-o", "a.o"}

	inv, err := ParseCxxInvocation("/proj", cmdLine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.InputFile != "a.cc" {
		t.Errorf("InputFile = %q, want a.cc", inv.InputFile)
	}
	if len(inv.Defines) != 1 || inv.Defines[0] != "NDEBUG" {
		t.Errorf("Defines = %v, want [NDEBUG]", inv.Defines)
	}
	paths := inv.SearchDirs.AsHeaderSearchPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 search paths, got %d", len(paths))
	}
}

func TestParseCxxInvocationNoInputFile(t *testing.T) {
	if _, err := ParseCxxInvocation("/proj", []string{"g++", "-Wall"}); err == nil {
		t.Error("expected an error for a command line with no input file")
	}
}

func TestParseCxxInvocationMultipleInputFiles(t *testing.T) {
	if _, err := ParseCxxInvocation("/proj", []string{"g++", "a.cc", "b.cc"}); err == nil {
		t.Error("expected an error for multiple input files")
	}
}
