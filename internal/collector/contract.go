// Package collector is the Base Use Collector, IWYU Use Collector, and
// Template Instantiation Replayer (spec.md §4.6-4.8). None of the example
// repositories do AST-use classification, so this package is built directly
// from spec.md, with composition over inheritance per spec.md §9: one
// Collector owns a classifier and a replayer and dispatches callbacks to
// them, instead of three embedded visitor types (Base -> IWYU -> Replayer).
package collector

import (
	"github.com/iwyu-go/iwyu-go/internal/astutil"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// CallKind tags the five syntactic forms that ultimately invoke a function,
// all of which must reach handle_function_call (spec.md §4.6).
type CallKind int

const (
	CallOrdinary CallKind = iota
	CallMember
	CallOperator
	CallNew
	CallDelete
	CallDeclRefToFunction
)

// CastKind tags the cast-kind switch from spec.md §4.7's classification
// table.
type CastKind int

const (
	CastStaticOrDynamic CastKind = iota
	CastUserDefinedOrConstructor
	CastReinterpretConstOrNoOp
)

// CallExprNode is implemented by any astutil.Node representing a call,
// construction, new, delete, or bare function reference. The front-end
// collaborator resolves Callee(); it may be the zero DeclHandle for calls
// through dependent names (spec.md §6).
type CallExprNode interface {
	astutil.Node
	CallKind() CallKind
	Callee() ledger.DeclHandle
	CalleeFile() string
	CalleeSymbolName() string
	// ArgClassTypes are the static class types of each argument, empty
	// string for non-class arguments; used to resolve an operator call's
	// parent type (spec.md §4.6).
	ArgClassTypes() []string
	ReceiverType() string // type of `a` in `a.b()`, for member calls
	NewedType() string    // type of `T` in `new T`, "" if not class-scoped
	DeletedType() string  // type of `e` in `delete e`
}

type MemberExprNode interface {
	astutil.Node
	BaseType() string // type of `a` in `a.b`, after ref/ptr removal
}

type ArraySubscriptNode interface {
	astutil.Node
	ElementType() string
}

type SizeofNode interface {
	astutil.Node
	OperandIsReference() bool
	OperandType() string
	OperandIsClass() bool
}

type CastNode interface {
	astutil.Node
	CastKind() CastKind
	SourceType() string
	TargetType() string
}

type DeleteExprNode interface {
	astutil.Node
	DeletedType() string
}

type VariadicArgNode interface {
	astutil.Node
	IsLValue() bool
	ArgType() string
}

type FunctionDeclNode interface {
	astutil.Node
	IsDefinition() bool
	ReturnType() string
	ForwardDeclaredInSameFile(typeName string) bool
}

type AutocastParamNode interface {
	astutil.Node
	ParamType() string
	HasConvertingConstructor() bool
	ForwardDeclaredByAuthor() bool
}

type TypedefNode interface {
	astutil.Node
	TargetType() string
	ForwardDeclaredInSameFile() bool
	TargetIsDependentTemplateParam() bool
}

type FriendDeclNode interface {
	astutil.Node
	FriendedType() string
}

type EnumDeclNode interface {
	astutil.Node
	EnumName() string
}

// ImplicitSpecialMembersNode is implemented by class declarations so the
// Base Use Collector can force instantiation of implicit constructors and
// destructors before entering the class body (spec.md §4.6).
type ImplicitSpecialMembersNode interface {
	astutil.Node
	ImplicitSpecialMembers() []astutil.Node
}
