package astutil

import (
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

type fakeNode struct {
	id       string
	kind     NodeKind
	children []Node
	loc      ledger.SourceLocation
}

func (n *fakeNode) Kind() NodeKind                  { return n.kind }
func (n *fakeNode) Children() []Node                { return n.children }
func (n *fakeNode) Location() ledger.SourceLocation { return n.loc }
func (n *fakeNode) IdentityKey() string             { return n.id }

func TestContextStackAncestorOfKind(t *testing.T) {
	s := NewContextStack()
	root := &fakeNode{id: "decl1", kind: KindDeclaration}
	stmt := &fakeNode{id: "stmt1", kind: KindStatement}
	typ := &fakeNode{id: "type1", kind: KindType}

	s.Push(root, nil)
	s.Push(stmt, nil)
	s.Push(typ, nil)

	if got := s.AncestorOfKind(KindDeclaration, -1); got != root {
		t.Errorf("AncestorOfKind(Declaration) = %v, want root", got)
	}
	if !s.ParentIsKind(KindStatement) {
		t.Error("expected parent to be a statement")
	}
}

func TestContextStackForwardDeclareInheritance(t *testing.T) {
	s := NewContextStack()
	root := &fakeNode{id: "a", kind: KindDeclaration}
	s.Push(root, nil)
	s.SetForwardDeclareContext(true)

	child := &fakeNode{id: "b", kind: KindType}
	s.Push(child, nil)
	if !s.InForwardDeclareContext() {
		t.Error("expected child to inherit forward-declare context")
	}
}

func TestFlattenContainsReachableNodes(t *testing.T) {
	ResetFlattenCache()
	leaf := &fakeNode{id: "leaf", kind: KindType}
	root := &fakeNode{id: "root", kind: KindDeclaration, children: []Node{leaf}}

	set := Flatten(root)
	if !set.Contains(leaf) {
		t.Error("expected flattener to record the leaf node")
	}
	other := &fakeNode{id: "other", kind: KindType}
	if set.Contains(other) {
		t.Error("did not expect flattener to record an unrelated node")
	}
}
