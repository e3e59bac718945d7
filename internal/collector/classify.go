package collector

import (
	"github.com/iwyu-go/iwyu-go/internal/astutil"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// ProposedUse is one classification result before it is turned into a
// ledger.OneUse and attributed to a file (the caller fills in symbol name,
// location, and declaration).
type ProposedUse struct {
	TypeName string
	Kind     ledger.UseKind
}

// TypeRefNode is a plain reference to a type (a variable declaration, a
// parameter, a field) that isn't one of the more specific constructs below.
// It drives the general forward-declarability rule (spec.md §4.7).
type TypeRefNode interface {
	astutil.Node
	TypeName() string
	IsEnum() bool
	IsPointerOrReference() bool
	IsNestedNameSpecifierUse() bool
}

// IsForwardDeclarable reports whether a type node is forward-declarable: it
// is not an enum, it is used through a pointer or reference (as reported by
// IsPointerOrReference), it is not used as a nested name specifier, and the
// context has not already been marked as requiring the full type. Whether
// the type is the target of a typedef is not checked; TypeRefNode carries
// no such information.
func IsForwardDeclarable(n TypeRefNode, alreadyRequiresFullType bool) bool {
	if n.IsEnum() {
		return false
	}
	if n.IsNestedNameSpecifierUse() {
		return false
	}
	if alreadyRequiresFullType {
		return false
	}
	return n.IsPointerOrReference()
}

// ClassifyNode dispatches one visited node to the classification rule table
// in spec.md §4.7, returning zero or more proposed uses. The generic
// TypeRefNode case is handled by the caller (it needs the ambient
// "already requires full type" flag from the context stack), so it is
// deliberately absent here.
func ClassifyNode(n interface{}) []ProposedUse {
	switch v := n.(type) {
	case MemberExprNode:
		// a.b: the base type must be complete because layout of b is required.
		return []ProposedUse{{TypeName: v.BaseType(), Kind: ledger.UseFull}}

	case ArraySubscriptNode:
		// a[i]: address arithmetic requires the element size.
		return []ProposedUse{{TypeName: v.ElementType(), Kind: ledger.UseFull}}

	case SizeofNode:
		if v.OperandIsReference() {
			// sizeof(T) on a reference type: size of a reference equals the referent's.
			return []ProposedUse{{TypeName: v.OperandType(), Kind: ledger.UseFull}}
		}
		if v.OperandIsClass() {
			return []ProposedUse{{TypeName: v.OperandType(), Kind: ledger.UseFull}}
		}
		return nil

	case CastNode:
		switch v.CastKind() {
		case CastStaticOrDynamic:
			// up-or-down casts between class pointers require both ends, even C-style.
			return []ProposedUse{
				{TypeName: v.SourceType(), Kind: ledger.UseFull},
				{TypeName: v.TargetType(), Kind: ledger.UseFull},
			}
		case CastUserDefinedOrConstructor:
			// constructor conversion needs the to-type; a user-defined
			// conversion operator needs the from-type.
			if v.TargetType() != "" {
				return []ProposedUse{{TypeName: v.TargetType(), Kind: ledger.UseFull}}
			}
			return []ProposedUse{{TypeName: v.SourceType(), Kind: ledger.UseFull}}
		default: // reinterpret / const / no-op: no full-type requirement
			return nil
		}

	case DeleteExprNode:
		// destructor must be known.
		return []ProposedUse{{TypeName: v.DeletedType(), Kind: ledger.UseFull}}

	case VariadicArgNode:
		if v.IsLValue() {
			// the compiler dereferences before passing.
			return []ProposedUse{{TypeName: v.ArgType(), Kind: ledger.UseFull}}
		}
		return nil

	case FunctionDeclNode:
		// the return type needs a full declaration unless the author already
		// forward-declared it themselves (spec.md §4.7); parameters are
		// classified separately as they're visited, in forward-declare context.
		if v.ReturnType() == "" || v.ForwardDeclaredInSameFile(v.ReturnType()) {
			return nil
		}
		return []ProposedUse{{TypeName: v.ReturnType(), Kind: ledger.UseFull}}

	case AutocastParamNode:
		if v.ForwardDeclaredByAuthor() {
			return []ProposedUse{{TypeName: v.ParamType(), Kind: ledger.UseForwardDeclare}}
		}
		if v.HasConvertingConstructor() {
			return []ProposedUse{{TypeName: v.ParamType(), Kind: ledger.UseFull}}
		}
		return nil

	case TypedefNode:
		if v.TargetIsDependentTemplateParam() {
			return nil
		}
		if v.ForwardDeclaredInSameFile() {
			return []ProposedUse{{TypeName: v.TargetType(), Kind: ledger.UseForwardDeclare}}
		}
		return []ProposedUse{{TypeName: v.TargetType(), Kind: ledger.UseFull}}

	case FriendDeclNode:
		return []ProposedUse{{TypeName: v.FriendedType(), Kind: ledger.UseForwardDeclare}}

	case EnumDeclNode:
		// enums are never forward-declarable in this model.
		return []ProposedUse{{TypeName: v.EnumName(), Kind: ledger.UseFull}}
	}
	return nil
}
