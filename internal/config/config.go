// Package config loads a project-level .iwyugo.toml that supplies durable
// mapping-file paths, extra search paths, and ignore globs so they don't
// need repeating on every invocation (SPEC_FULL.md §2.2). How the file's
// values combine with command-line flags is decided by each cmd's main.
// Grounded on
// standardbeagle/lci's internal/config/build_artifact_detector.go's
// toml.Unmarshal(data, &struct) usage.
package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/iwyu-go/iwyu-go/internal/pathutil"
)

// searchPathEntry is one [[search_paths]] table in .iwyugo.toml.
type searchPathEntry struct {
	Path   string `toml:"path"`
	System bool   `toml:"system"`
}

// fileJSON is the on-disk shape of .iwyugo.toml.
type fileJSON struct {
	MappingFiles []string          `toml:"mapping_files"`
	SearchPaths  []searchPathEntry `toml:"search_paths"`
	IgnoreGlobs  []string          `toml:"ignore_globs"`
	OutputFormat string            `toml:"output_format"`
}

// Config is the parsed, ready-to-use form of a project's .iwyugo.toml.
type Config struct {
	MappingFiles []string
	SearchPaths  []pathutil.HeaderSearchPath
	IgnoreGlobs  []string
	OutputFormat string
}

// Load parses path and returns a zero-value Config (every field empty) if
// path doesn't exist, so callers can treat "no config file" the same as "an
// empty one".
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var raw fileJSON
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg := &Config{
		MappingFiles: raw.MappingFiles,
		IgnoreGlobs:  raw.IgnoreGlobs,
		OutputFormat: raw.OutputFormat,
		SearchPaths:  make([]pathutil.HeaderSearchPath, len(raw.SearchPaths)),
	}
	for i, p := range raw.SearchPaths {
		kind := pathutil.UserPath
		if p.System {
			kind = pathutil.SystemPath
		}
		cfg.SearchPaths[i] = pathutil.HeaderSearchPath{Path: p.Path, Kind: kind}
	}
	return cfg, nil
}

// IsIgnored reports whether filePath matches any of the config's ignore
// globs, each matched the way a build tool's `**`-aware exclude list would.
func (c *Config) IsIgnored(filePath string) bool {
	for _, pattern := range c.IgnoreGlobs {
		if matched, err := doublestar.Match(pattern, filePath); err == nil && matched {
			return true
		}
	}
	return false
}
