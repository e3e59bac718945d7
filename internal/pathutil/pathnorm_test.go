package pathutil

import "testing"

func TestIsHeaderFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"foo.h", true},
		{"foo.hpp", true},
		{"<string>", true},
		{"foo.cc", false},
		{"foo.cpp", false},
		{"\"foo.cxx\"", false},
	}
	for _, tt := range tests {
		if got := IsHeaderFile(tt.path); got != tt.want {
			t.Errorf("IsHeaderFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"foo/internal/bar.cc", "foo/public/bar"},
		{"foo/include/bar.h", "foo/src/bar"},
		{"foo_test.cc", "foo"},
		{"foo-inl.h", "foo"},
	}
	for _, tt := range tests {
		if got := CanonicalName(tt.path); got != tt.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestToQuotedIncludeLongestPrefix(t *testing.T) {
	idx := NewSearchPathIndex([]HeaderSearchPath{
		{Path: "/usr/include/", Kind: SystemPath},
		{Path: "/usr/include/c++/4.4/", Kind: SystemPath},
	})

	got := ToQuotedInclude("/usr/include/c++/4.4/foo", idx)
	want := "<foo>"
	if got != want {
		t.Errorf("ToQuotedInclude = %q, want %q (should prefer longest search path)", got, want)
	}

	got = ToQuotedInclude("/usr/include/stdio.h", idx)
	want = "<stdio.h>"
	if got != want {
		t.Errorf("ToQuotedInclude = %q, want %q", got, want)
	}
}

func TestToQuotedIncludeNoMatchIsLocal(t *testing.T) {
	idx := NewSearchPathIndex(nil)
	got := ToQuotedInclude("/home/me/project/foo.h", idx)
	if got[0] != '"' {
		t.Errorf("expected a quoted (user) include with no search-path match, got %q", got)
	}
}
