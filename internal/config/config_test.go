package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/pathutil"
)

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.MappingFiles) != 0 || len(cfg.SearchPaths) != 0 || len(cfg.IgnoreGlobs) != 0 || cfg.OutputFormat != "" {
		t.Errorf("want zero-value Config, got %+v", cfg)
	}
}

func TestLoadParsesAllSections(t *testing.T) {
	contents := `
mapping_files = ["extra.imp", "vendor.imp"]
ignore_globs = ["third_party/**", "*.generated.h"]
output_format = "make"

[[search_paths]]
path = "/usr/include/myproject/"
system = true

[[search_paths]]
path = "include/"
system = false
`
	path := filepath.Join(t.TempDir(), ".iwyugo.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantMappingFiles := []string{"extra.imp", "vendor.imp"}
	if len(cfg.MappingFiles) != len(wantMappingFiles) {
		t.Fatalf("want %d mapping files, got %v", len(wantMappingFiles), cfg.MappingFiles)
	}
	for i, want := range wantMappingFiles {
		if cfg.MappingFiles[i] != want {
			t.Errorf("mapping file %d: want %q, got %q", i, want, cfg.MappingFiles[i])
		}
	}

	if cfg.OutputFormat != "make" {
		t.Errorf("want output_format 'make', got %q", cfg.OutputFormat)
	}

	wantSearchPaths := []pathutil.HeaderSearchPath{
		{Path: "/usr/include/myproject/", Kind: pathutil.SystemPath},
		{Path: "include/", Kind: pathutil.UserPath},
	}
	if len(cfg.SearchPaths) != len(wantSearchPaths) {
		t.Fatalf("want %d search paths, got %v", len(wantSearchPaths), cfg.SearchPaths)
	}
	for i, want := range wantSearchPaths {
		if cfg.SearchPaths[i] != want {
			t.Errorf("search path %d: want %+v, got %+v", i, want, cfg.SearchPaths[i])
		}
	}
}

func TestIsIgnored(t *testing.T) {
	cfg := &Config{IgnoreGlobs: []string{"third_party/**", "*.generated.h"}}

	tests := []struct {
		path   string
		ignore bool
	}{
		{"third_party/zlib/zlib.h", true},
		{"foo.generated.h", true},
		{"src/main.cc", false},
		{"include/foo.h", false},
	}

	for _, tt := range tests {
		if got := cfg.IsIgnored(tt.path); got != tt.ignore {
			t.Errorf("IsIgnored(%q) = %t, want %t", tt.path, got, tt.ignore)
		}
	}
}
