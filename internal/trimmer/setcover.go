package trimmer

import (
	"sort"

	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// resolveSetCover is step D: build up l.DesiredIncludes by first trying to
// satisfy each full use through one of four existing-header pools, then
// greedily covering what's left with new headers (spec.md §4.9).
func (t *Trimmer) resolveSetCover(l *ledger.PerFileLedger, eff *effectiveAssociations) {
	if l.DesiredIncludes == nil {
		l.DesiredIncludes = make(map[ledger.QuotedInclude]bool)
	}

	var unassigned []*ledger.OneUse
	for _, u := range l.RawUses {
		if u.Ignored || u.Kind != ledger.UseFull || u.HasSuggestedHeader() {
			continue
		}
		t.ensurePublicHeaders(u)

		if t.assignFromPools(u, l, eff) {
			continue
		}
		unassigned = append(unassigned, u)
	}

	greedilyAssign(unassigned, l)
}

// ensurePublicHeaders computes u.PublicHeaders on first use, per OneUse's
// "computed lazily by the trimmer" contract (spec.md §3).
func (t *Trimmer) ensurePublicHeaders(u *ledger.OneUse) {
	if u.PublicHeaders != nil {
		return
	}
	for _, h := range t.Picker.HeadersForPath(u.DeclFilepath, t.SearchPaths) {
		u.PublicHeaders = append(u.PublicHeaders, ledger.QuotedInclude(h))
	}
}

// assignFromPools tries the four choice pools from spec.md §4.9 step D in
// order, returning true (and setting u.SuggestedHeader) on the first match.
func (t *Trimmer) assignFromPools(u *ledger.OneUse, l *ledger.PerFileLedger, eff *effectiveAssociations) bool {
	pools := []func(ledger.QuotedInclude) bool{
		func(h ledger.QuotedInclude) bool { return eff.directIncludes[h] }, // 1: associated direct includes
		func(h ledger.QuotedInclude) bool { return l.DirectIncludes[h] && l.DesiredIncludes[h] }, // 2
		func(h ledger.QuotedInclude) bool { return l.DesiredIncludes[h] },                        // 3
		func(h ledger.QuotedInclude) bool { return l.DirectIncludes[h] },                         // 4
	}
	for _, pool := range pools {
		for _, h := range u.PublicHeaders {
			if pool(h) {
				u.SuggestedHeader = h
				l.DesiredIncludes[h] = true
				return true
			}
		}
	}
	return false
}

// greedilyAssign repeatedly picks the header that satisfies the most
// remaining uses, breaking ties toward the header that is first in the most
// priority lists, then alphabetically, until every use has a header.
func greedilyAssign(uses []*ledger.OneUse, l *ledger.PerFileLedger) {
	for len(uses) > 0 {
		counts := make(map[ledger.QuotedInclude]int)
		firstCounts := make(map[ledger.QuotedInclude]int)
		for _, u := range uses {
			for i, h := range u.PublicHeaders {
				counts[h]++
				if i == 0 {
					firstCounts[h]++
				}
			}
		}
		if len(counts) == 0 {
			break // no candidate headers at all; nothing more can be assigned
		}

		candidates := make([]ledger.QuotedInclude, 0, len(counts))
		for h := range counts {
			candidates = append(candidates, h)
		}
		sort.Slice(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if counts[a] != counts[b] {
				return counts[a] > counts[b]
			}
			if firstCounts[a] != firstCounts[b] {
				return firstCounts[a] > firstCounts[b]
			}
			return a < b
		})
		best := candidates[0]
		l.DesiredIncludes[best] = true

		var remaining []*ledger.OneUse
		for _, u := range uses {
			satisfied := false
			for _, h := range u.PublicHeaders {
				if h == best {
					satisfied = true
					break
				}
			}
			if satisfied {
				u.SuggestedHeader = best
			} else {
				remaining = append(remaining, u)
			}
		}
		uses = remaining
	}
}
