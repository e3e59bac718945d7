// Package pathutil is the Path Normalizer (spec.md §4.1): it canonicalizes
// filesystem paths, classifies them as system vs. user, and converts a path
// to a quoted-include spelling. Semantics are grounded on
// original_source/iwyu_path_util.cc so paths like
// /usr/include/c++/4.4/foo resolve to <foo>, not <c++/4.4/foo>.
package pathutil

import (
	"path/filepath"
	"sort"
	"strings"

	art "github.com/plar/go-adaptive-radix-tree"
)

// sourceExtensions mirrors iwyu_path_util.cc's source_extensions: anything
// not ending in one of these is treated as a header.
var sourceExtensions = []string{
	".c", ".C", ".cc", ".CC", ".cxx", ".CXX",
	".cpp", ".CPP", ".c++", ".C++", ".cp",
}

// headerExtSuffixes is the ordered list GetCanonicalName strips first,
// before falling back to the source-extension list.
var headerExtSuffixes = []string{".h", ".hpp", ".hxx", ".hh", ".inl"}

var testSuffixes = []string{"_unittest", "_regtest", "_test"}

// IsHeaderFile reports whether path names a header rather than a source
// file, based on a fixed set of non-header extensions (some headers, like
// <string>, have no extension at all).
func IsHeaderFile(path string) bool {
	path = strings.TrimSuffix(strings.TrimSuffix(path, "\""), ">")
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	return true
}

// Canonicalize collapses backslashes to forward slashes, cleans the path
// lexically with filepath.Clean (which folds "." and ".." segments without
// looking at the filesystem, so symlinks are not resolved the way realpath
// would), and strips leading "./" segments; callers that have an absolute,
// already-resolved path can skip straight to ToQuotedInclude.
func Canonicalize(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = filepath.Clean(path)
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return path
}

func stripSuffix(s, suffix string) (string, bool) {
	if strings.HasSuffix(s, suffix) {
		return s[:len(s)-len(suffix)], true
	}
	return s, false
}

// CanonicalName strips a known set of suffixes and extensions and maps
// /internal/ <-> /public/, /include/ <-> /src/, so an implementation file
// can be paired with its associated header (spec.md §4.1).
func CanonicalName(filePath string) string {
	filePath = strings.TrimPrefix(filePath, "\"")
	filePath = strings.TrimPrefix(filePath, "<")
	filePath = strings.TrimSuffix(filePath, "\"")
	filePath = strings.TrimSuffix(filePath, ">")

	filePath = Canonicalize(filePath)

	stripped := false
	for _, ext := range headerExtSuffixes {
		if s, ok := stripSuffix(filePath, ext); ok {
			filePath = s
			stripped = true
			break
		}
	}
	if !stripped {
		for _, ext := range sourceExtensions {
			if s, ok := stripSuffix(filePath, ext); ok {
				filePath = s
				break
			}
		}
	}

	for _, suffix := range testSuffixes {
		if s, ok := stripSuffix(filePath, suffix); ok {
			filePath = s
			break
		}
	}
	filePath = strings.TrimPrefix(filePath, "test_headercompile_")
	filePath, _ = stripSuffix(filePath, "-inl")

	if idx := strings.Index(filePath, "/internal/"); idx >= 0 {
		filePath = filePath[:idx] + "/public/" + filePath[idx+len("/internal/"):]
	}
	if idx := strings.Index(filePath, "/include/"); idx >= 0 {
		filePath = filePath[:idx] + "/src/" + filePath[idx+len("/include/"):]
	}
	return filePath
}

// SearchPathIndex supports the longest-matching-prefix lookup ToQuotedInclude
// needs. It is backed by an adaptive radix tree keyed by the search path
// itself; a query path is probed by repeatedly trimming trailing path
// components, which yields the longest inserted prefix in O(depth) lookups.
type SearchPathIndex struct {
	tree  art.Tree
	byKey map[string]HeaderSearchPath
}

// NewSearchPathIndex builds an index over paths, longest-first as the
// original tool documents ("HeaderSearchPaths is sorted to be longest-first,
// so this loop will prefer the longest prefix").
func NewSearchPathIndex(paths []HeaderSearchPath) *SearchPathIndex {
	sorted := make([]HeaderSearchPath, len(paths))
	copy(sorted, paths)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i].Path) > len(sorted[j].Path) })

	idx := &SearchPathIndex{tree: art.New(), byKey: make(map[string]HeaderSearchPath, len(sorted))}
	for _, p := range sorted {
		idx.tree.Insert(art.Key(p.Path), p)
		idx.byKey[p.Path] = p
	}
	return idx
}

// LongestPrefix returns the longest inserted search path that is a prefix of
// path, and the remainder after stripping it.
func (idx *SearchPathIndex) LongestPrefix(path string) (HeaderSearchPath, string, bool) {
	candidate := path
	for {
		slash := strings.LastIndexByte(candidate, '/')
		if slash < 0 {
			break
		}
		candidate = candidate[:slash+1]
		if v, found := idx.tree.Search(art.Key(candidate)); found {
			hsp := v.(HeaderSearchPath)
			return hsp, strings.TrimPrefix(path, hsp.Path), true
		}
		candidate = candidate[:len(candidate)-1]
		if slash == 0 {
			break
		}
	}
	return HeaderSearchPath{}, path, false
}

// ToQuotedInclude converts a file-path, such as /usr/include/stdio.h, to a
// quoted include, such as <stdio.h>, preferring the longest matching header
// search path; with no match it falls back to a local quoted include.
func ToQuotedInclude(path string, searchPaths *SearchPathIndex) string {
	clean := Canonicalize(path)
	if searchPaths != nil {
		if hsp, rest, ok := searchPaths.LongestPrefix(clean); ok {
			if hsp.Kind == SystemPath {
				return "<" + rest + ">"
			}
			return "\"" + rest + "\""
		}
	}
	return "\"" + clean + "\""
}

// IsQuotedInclude reports whether s already carries <> or "" quoting.
func IsQuotedInclude(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")) ||
		(strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\""))
}

// IsSystemInclude reports whether the quoted form of path is angle-bracketed.
func IsSystemInclude(path string, searchPaths *SearchPathIndex) bool {
	q := ToQuotedInclude(path, searchPaths)
	return len(q) > 0 && q[0] == '<'
}
