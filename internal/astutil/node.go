// Package astutil provides the Node Context Stack (spec.md §4.3) and the
// AST Flattener (spec.md §4.4). Both operate over a generic Node interface
// instead of a concrete syntax tree, since the source-language front end is
// an out-of-scope collaborator (spec.md §1, §6); any front end that can
// produce Nodes can drive the collector package built on top of this one.
//
// Grounded on kralicky/protocompile's ast/walk.go: its Visitor/Walk
// double-dispatch shape for traversal, and its AncestorTracker
// (push/pop slice with Parent()/Path() queries) for the context stack.
package astutil

import "github.com/iwyu-go/iwyu-go/internal/ledger"

// NodeKind is the closed set of tagged variants spec.md §9 asks for in
// place of virtual-function polymorphism on syntax-tree node kinds.
type NodeKind int

const (
	KindDeclaration NodeKind = iota
	KindStatement
	KindType
	KindTypeLocation
	KindNestedNameSpecifier
	KindTemplateName
	KindTemplateArgument
)

func (k NodeKind) String() string {
	switch k {
	case KindDeclaration:
		return "declaration"
	case KindStatement:
		return "statement"
	case KindType:
		return "type"
	case KindTypeLocation:
		return "type-location"
	case KindNestedNameSpecifier:
		return "nested-name-specifier"
	case KindTemplateName:
		return "template-name"
	case KindTemplateArgument:
		return "template-argument"
	default:
		return "unknown"
	}
}

// IsValueKind reports whether nodes of this kind are value-returned by the
// tree API (spec.md §4.4) rather than identity-stable — type locations,
// template names, and template arguments — and so need an IdentityKey-based
// comparison instead of pointer identity in a NodeSet.
func (k NodeKind) IsValueKind() bool {
	switch k {
	case KindTypeLocation, KindTemplateName, KindTemplateArgument:
		return true
	default:
		return false
	}
}

// Node is the minimal contract the front-end collaborator provides: enough
// structure to walk, locate, and identify a syntax-tree node.
type Node interface {
	Kind() NodeKind
	Children() []Node
	Location() ledger.SourceLocation

	// IdentityKey distinguishes this node from its siblings. For
	// identity-stable kinds it is typically a pointer-derived string; for
	// value kinds (see IsValueKind) it must be derived from the node's
	// content so that two structurally-equal value nodes compare equal.
	IdentityKey() string
}
