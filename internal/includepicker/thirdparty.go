package includepicker

import (
	"sort"
	"strings"

	art "github.com/plar/go-adaptive-radix-tree"
)

// prefixIndex answers "which public header does this path-prefix belong
// to", used for the third-party map whose keys are directory prefixes
// rather than exact paths (spec.md §4.2's "third-party prefix map (keys are
// path prefixes, matched by starts-with)"). Backed by the same adaptive
// radix tree technique as pathutil.SearchPathIndex.
type prefixIndex struct {
	tree art.Tree
}

func newPrefixIndex(entries []mapEntry) *prefixIndex {
	sorted := make([]mapEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i].key) > len(sorted[j].key) })

	idx := &prefixIndex{tree: art.New()}
	for _, e := range sorted {
		idx.tree.Insert(art.Key(e.key), e.value)
	}
	return idx
}

func (idx *prefixIndex) longestPrefixMatch(path string) (string, bool) {
	candidate := path
	for len(candidate) > 0 {
		if v, found := idx.tree.Search(art.Key(candidate)); found {
			return v.(string), true
		}
		slash := strings.LastIndexByte(candidate[:len(candidate)-1], '/')
		if slash < 0 {
			break
		}
		candidate = candidate[:slash+1]
	}
	return "", false
}
