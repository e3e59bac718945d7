// Package includepicker is the Include Picker (spec.md §4.2): it owns a
// mapping from private header paths / symbol names to one-or-more public
// header spellings, combining static hard-coded maps with dynamic mappings
// learned from observed #include chains, and computes the transitive
// closure of that mapping. Grounded on
// original_source/iwyu_include_picker.cc.
package includepicker

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/iwyu-go/iwyu-go/internal/engineerr"
	"github.com/iwyu-go/iwyu-go/internal/pathutil"
)

// IncludeMap is a multi-map key -> ordered list of values, where keys are
// private header paths or symbol names, and a value without surrounding
// quotes is itself a private key that must be expanded transitively
// (spec.md §3's IncludeMap entity).
type IncludeMap map[string][]string

func newIncludeMapFromEntries(entries []mapEntry) IncludeMap {
	m := make(IncludeMap, len(entries))
	for _, e := range entries {
		m[e.key] = append(m[e.key], e.value)
	}
	return m
}

// unquoteHeader strips <> or "" from v; returns the bare value and whether
// stripping happened (i.e. v was already a public, quoted header).
func unquoteHeader(v string) (string, bool) {
	if pathutil.IsQuotedInclude(v) {
		return v[1 : len(v)-1], true
	}
	return v, false
}

// augmentValuesForKey is the DFS from AugmentValuesForKey in
// iwyu_include_picker.cc: recurse whenever a value is itself a key in the
// map, collecting every quoted value reached along the way. seenKeys guards
// against a cycle on private keys.
func augmentValuesForKey(m IncludeMap, key string, value string, seenKeys map[string]bool, out *[]string) error {
	if seenKeys[key] {
		return fmt.Errorf("%w: %s", engineerr.CycleInMapping, key)
	}
	bareNewKey, wasQuoted := unquoteHeader(value)
	if wasQuoted {
		*out = append(*out, value)
	}
	if bareNewKey == key { // self-mapping, e.g. "ios" -> "<ios>"
		return nil
	}
	newSeen := make(map[string]bool, len(seenKeys)+1)
	for k := range seenKeys {
		newSeen[k] = true
	}
	newSeen[key] = true
	for _, v := range m[bareNewKey] {
		if err := augmentValuesForKey(m, bareNewKey, v, newSeen, out); err != nil {
			return err
		}
	}
	return nil
}

func uniqueStable(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// makeTransitiveIncludeMap computes the closure described in spec.md §4.2's
// "Mapping algorithm": for each key, follow private re-exports until public
// headers are reached, keeping first-seen order for stable tie-breaks.
func makeTransitiveIncludeMap(basic IncludeMap) (IncludeMap, error) {
	keys := make([]string, 0, len(basic))
	for k := range basic {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic iteration; doesn't affect per-key results

	retval := make(IncludeMap, len(basic))
	for _, key := range keys {
		var allValues []string
		for _, v := range basic[key] {
			if err := augmentValuesForKey(basic, key, v, map[string]bool{}, &allValues); err != nil {
				return nil, err
			}
		}
		retval[key] = uniqueStable(allValues)
	}
	return retval, nil
}

// IncludePicker is process-wide state with a two-phase lifecycle: mutate via
// AddDirectInclude/AddMapping, then Finalize(), after which it is read-only.
type IncludePicker struct {
	mu sync.RWMutex

	cLibrary    IncludeMap
	cppStd      IncludeMap
	thirdParty  *prefixIndex
	symbolMap   IncludeMap
	dynamicRaw  IncludeMap // mutated by AddDirectInclude/AddMapping before finalize
	dynamic     IncludeMap // closure of dynamicRaw, computed in Finalize
	sysProbe    *SysProbe
	frozen      bool
}

func NewIncludePicker() *IncludePicker {
	return &IncludePicker{
		cLibrary:   newIncludeMapFromEntries(cLibraryEntries),
		cppStd:     newIncludeMapFromEntries(cppStdEntries),
		thirdParty: newPrefixIndex(thirdPartyPrefixEntries),
		symbolMap:  newIncludeMapFromEntries(symbolEntries),
		dynamicRaw: make(IncludeMap),
		sysProbe:   NewSysProbe(),
	}
}

// AddDirectInclude records an observed `#include` edge: if included is
// private and includer is not, record included -> quoted(includer) as a
// public exposure; if both are private, record a private-to-private hop.
func (p *IncludePicker) AddDirectInclude(includer, included string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return engineerr.PickerAlreadyFinalized
	}

	includerIsPrivate := isPrivatePath(includer)
	includedIsPrivate := isPrivatePath(included)

	if !includedIsPrivate {
		return nil // included is already public, nothing to learn
	}

	if includerIsPrivate {
		p.dynamicRaw[included] = append(p.dynamicRaw[included], includer)
	} else {
		p.dynamicRaw[included] = append(p.dynamicRaw[included], "\""+includer+"\"")
	}
	return nil
}

// AddMapping is an explicit private -> public override, as used by
// LoadMappingFile.
func (p *IncludePicker) AddMapping(privateHeader, publicHeader string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return engineerr.PickerAlreadyFinalized
	}
	p.dynamicRaw[privateHeader] = append(p.dynamicRaw[privateHeader], publicHeader)
	return nil
}

// Finalize computes the transitive closure of the static C and C++ maps and
// of the dynamic map, and freezes the picker; mutation after this point is
// a programmer error.
func (p *IncludePicker) Finalize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return nil
	}
	for _, static := range []*IncludeMap{&p.cLibrary, &p.cppStd} {
		closedStatic, err := makeTransitiveIncludeMap(*static)
		if err != nil {
			return err
		}
		*static = closedStatic
	}
	closed, err := makeTransitiveIncludeMap(p.dynamicRaw)
	if err != nil {
		return err
	}
	p.dynamic = closed
	p.frozen = true
	return nil
}

func isPrivatePath(path string) bool {
	return strings.Contains(path, "/internal/") || strings.Contains(path, "bits/") ||
		strings.HasPrefix(path, "bits/") || strings.Contains(path, "/detail/")
}

// HeadersForSymbol is an exact lookup in the symbol map.
func (p *IncludePicker) HeadersForSymbol(name string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.symbolMap[name]...)
}

// HeadersForPath normalizes path, dispatches to the appropriate static map,
// falls back to the dynamic map, and finally falls back to the path quoted
// as-is (spec.md §4.2).
func (p *IncludePicker) HeadersForPath(path string, searchPaths *pathutil.SearchPathIndex) []string {
	canon := pathutil.Canonicalize(path)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if hs, ok := p.cppStd[canon]; ok {
		return append([]string(nil), hs...)
	}
	if hs, ok := p.cLibrary[canon]; ok {
		return append([]string(nil), hs...)
	}
	if pub, ok := p.thirdParty.longestPrefixMatch(canon); ok {
		return []string{pub}
	}
	if hs, ok := p.dynamic[canon]; ok {
		return append([]string(nil), hs...)
	}

	return []string{pathutil.ToQuotedInclude(path, searchPaths)}
}

// PublicHeaderProvides reports whether includerPath is among the public
// headers includeePath maps to.
func (p *IncludePicker) PublicHeaderProvides(includerPath, includeePath string, searchPaths *pathutil.SearchPathIndex) bool {
	includerQuoted := pathutil.ToQuotedInclude(includerPath, searchPaths)
	for _, h := range p.HeadersForPath(includeePath, searchPaths) {
		if h == includerQuoted {
			return true
		}
	}
	return false
}
