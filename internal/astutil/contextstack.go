package astutil

import "github.com/iwyu-go/iwyu-go/internal/ledger"

type stackEntry struct {
	node                    Node
	inForwardDeclareContext bool
}

// ContextStack maintains the current ancestor chain of syntax-tree nodes
// during traversal, with a flag "in forward-declare context" that
// propagates down and can be toggled by component logic before recursing
// into children (spec.md §4.3).
type ContextStack struct {
	entries []stackEntry
}

func NewContextStack() *ContextStack {
	return &ContextStack{entries: make([]stackEntry, 0, 32)}
}

// Push enters a subtree. The new node inherits the current top's
// forward-declare flag unless overridden is non-nil.
func (s *ContextStack) Push(node Node, overridden *bool) {
	inFwd := false
	if len(s.entries) > 0 {
		inFwd = s.entries[len(s.entries)-1].inForwardDeclareContext
	}
	if overridden != nil {
		inFwd = *overridden
	}
	s.entries = append(s.entries, stackEntry{node: node, inForwardDeclareContext: inFwd})
}

// Pop leaves the current subtree.
func (s *ContextStack) Pop() {
	if len(s.entries) > 0 {
		s.entries = s.entries[:len(s.entries)-1]
	}
}

// Current returns the node at the top of the stack, or nil if empty.
func (s *ContextStack) Current() Node {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1].node
}

// InForwardDeclareContext reports the current top's flag.
func (s *ContextStack) InForwardDeclareContext() bool {
	if len(s.entries) == 0 {
		return false
	}
	return s.entries[len(s.entries)-1].inForwardDeclareContext
}

// SetForwardDeclareContext toggles the flag for the current top entry;
// children pushed afterward inherit the new value.
func (s *ContextStack) SetForwardDeclareContext(v bool) {
	if len(s.entries) > 0 {
		s.entries[len(s.entries)-1].inForwardDeclareContext = v
	}
}

// Parent returns the node one level above the current top, or nil at the
// root — mirrors AncestorTracker.Parent().
func (s *ContextStack) Parent() Node {
	if len(s.entries) < 2 {
		return nil
	}
	return s.entries[len(s.entries)-2].node
}

// AncestorOfKind returns the nearest ancestor (including the current node)
// with the given kind, or nil if none exists. depth < 0 means "any depth".
func (s *ContextStack) AncestorOfKind(kind NodeKind, depth int) Node {
	steps := 0
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].node.Kind() == kind {
			return s.entries[i].node
		}
		steps++
		if depth >= 0 && steps > depth {
			break
		}
	}
	return nil
}

// ParentIsKind reports whether the immediate parent has the given kind.
func (s *ContextStack) ParentIsKind(kind NodeKind) bool {
	p := s.Parent()
	return p != nil && p.Kind() == kind
}

// CurrentLocation returns the best location known: the current node's
// location if valid, otherwise it walks up the stack until a node with a
// valid location is found. If the spelling and expansion files of that
// location differ (see IsInMacro), it returns an invalid location.
func (s *ContextStack) CurrentLocation() ledger.SourceLocation {
	for i := len(s.entries) - 1; i >= 0; i-- {
		loc := s.entries[i].node.Location()
		if loc.IsValid() {
			if s.IsInMacro(loc) {
				return ledger.SourceLocation{}
			}
			return loc
		}
	}
	return ledger.SourceLocation{}
}

// IsInMacro reports whether loc's spelling and expansion locations disagree,
// i.e. the token was produced by macro expansion.
func (s *ContextStack) IsInMacro(loc ledger.SourceLocation) bool {
	return loc.SpellingFile.IsValid() && loc.ExpansionFile.IsValid() &&
		loc.SpellingFile != loc.ExpansionFile
}
