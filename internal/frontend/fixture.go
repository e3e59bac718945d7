package frontend

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iwyu-go/iwyu-go/internal/astutil"
	"github.com/iwyu-go/iwyu-go/internal/collector"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
	"github.com/iwyu-go/iwyu-go/internal/trimmer"
)

// fixtureNodeJSON is the on-disk shape of one synthetic AST node: enough to
// drive every contract interface in internal/collector/contract.go without a
// real C/C++ front end (spec.md §1, §6 explicitly put that front end out of
// scope). A real front end would produce astutil.Node values directly; this
// is the "something runnable without one" stand-in SPEC_FULL.md §5 asks
// `internal/frontend` to provide.
type fixtureNodeJSON struct {
	Kind string `json:"kind"`
	File string `json:"file"`
	Line int    `json:"line"`

	BaseType        string   `json:"baseType,omitempty"`        // member-expr
	ElementType     string   `json:"elementType,omitempty"`     // array-subscript
	OperandType     string   `json:"operandType,omitempty"`     // sizeof
	OperandIsRef    bool     `json:"operandIsRef,omitempty"`    // sizeof
	OperandIsClass  bool     `json:"operandIsClass,omitempty"`  // sizeof
	CastKind        string   `json:"castKind,omitempty"`        // cast: static|userdefined|noop
	SourceType      string   `json:"sourceType,omitempty"`      // cast
	TargetType      string   `json:"targetType,omitempty"`      // cast
	DeletedType     string   `json:"deletedType,omitempty"`     // delete-expr
	IsLValue        bool     `json:"isLValue,omitempty"`        // variadic-arg
	ArgType         string   `json:"argType,omitempty"`         // variadic-arg
	IsDefinition    bool     `json:"isDefinition,omitempty"`     // function-decl
	ReturnType      string   `json:"returnType,omitempty"`      // function-decl
	FwdDeclaredSelf []string `json:"fwdDeclaredInSameFile,omitempty"` // function-decl, typedef
	ParamType       string   `json:"paramType,omitempty"`        // autocast-param
	HasConvertingCtor bool   `json:"hasConvertingConstructor,omitempty"`
	FwdDeclaredByAuthor bool `json:"fwdDeclaredByAuthor,omitempty"`
	TargetIsDependent bool   `json:"targetIsDependentTemplateParam,omitempty"`
	FriendedType    string   `json:"friendedType,omitempty"`    // friend-decl
	EnumName        string   `json:"enumName,omitempty"`        // enum-decl
	TypeName        string   `json:"typeName,omitempty"`        // type-ref
	IsEnum          bool     `json:"isEnum,omitempty"`          // type-ref
	IsPointerOrRef  bool     `json:"isPointerOrReference,omitempty"` // type-ref
	IsNestedNameUse bool     `json:"isNestedNameSpecifierUse,omitempty"` // type-ref

	CallKindStr   string   `json:"callKind,omitempty"` // call-expr: ordinary|member|operator|new|delete|declref
	CalleeSymbol  string   `json:"calleeSymbol,omitempty"`
	CalleeFile    string   `json:"calleeFile,omitempty"`
	CalleeUnresolved bool  `json:"calleeUnresolved,omitempty"`
	ArgClassTypes []string `json:"argClassTypes,omitempty"`
	ReceiverType  string   `json:"receiverType,omitempty"`
	NewedType     string   `json:"newedType,omitempty"`

	ImplicitMembers []fixtureNodeJSON `json:"implicitMembers,omitempty"`
	Children        []fixtureNodeJSON `json:"children,omitempty"`
}

// TranslationUnitFixture is the root of one parsed fixture file: one or more
// independent syntax trees (normally one per analyzed file) sharing a
// DeclResolver built from the fixture's own declaration table.
type TranslationUnitFixture struct {
	Roots    []astutil.Node
	Resolver collector.DeclResolver
	TypeInfo trimmer.TypeInfo
}

// declTableJSON maps a qualified type/function name to where it's declared,
// standing in for the real front end's symbol table (spec.md §6). The
// IsClassOrClassTemplate/... fields stand in for the type-system questions a
// real front end would answer directly from its AST node, feeding
// trimmer.TypeInfo the same way ResolveType feeds collector.DeclResolver.
type declTableJSON struct {
	File      string `json:"file"`
	ShortName string `json:"shortName"`
	Line      int    `json:"line,omitempty"`

	IsClassOrClassTemplate bool   `json:"isClassOrClassTemplate,omitempty"`
	HasDefaultTemplateArgs bool   `json:"hasDefaultTemplateArgs,omitempty"`
	IsNestedClass          bool   `json:"isNestedClass,omitempty"`
	IsBuiltin              bool   `json:"isBuiltin,omitempty"`
	IsMemberFunction       bool   `json:"isMemberFunction,omitempty"`
	ParentClassFile        string `json:"parentClassFile,omitempty"`
}

type fixtureFileJSON struct {
	Declarations map[string]declTableJSON `json:"declarations"`
	Roots        []fixtureNodeJSON        `json:"roots"`
}

// LoadFixture reads a JSON translation-unit fixture from path. See
// fixtureNodeJSON for the node shape and declTableJSON for the declaration
// table; cmd/iwyu-go reads these via -fixture so the engine has something to
// run against when no real C/C++ front end is wired in.
func LoadFixture(path string) (*TranslationUnitFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw fixtureFileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	resolver := &fixtureResolver{decls: raw.Declarations}
	roots := make([]astutil.Node, 0, len(raw.Roots))
	for _, r := range raw.Roots {
		node, err := buildFixtureNode(r)
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}
	typeInfo := &fixtureTypeInfo{decls: raw.Declarations}
	return &TranslationUnitFixture{Roots: roots, Resolver: resolver, TypeInfo: typeInfo}, nil
}

// fixtureTypeInfo answers trimmer.TypeInfo's questions from the same
// declaration table fixtureResolver uses, since a fixture has no separate
// notion of "the type system" beyond what's written in its JSON.
type fixtureTypeInfo struct {
	decls map[string]declTableJSON
}

func (t *fixtureTypeInfo) lookup(symbolOrHandle string) (declTableJSON, bool) {
	d, ok := t.decls[symbolOrHandle]
	return d, ok
}

func (t *fixtureTypeInfo) IsClassOrClassTemplate(symbolName string) bool {
	d, ok := t.lookup(symbolName)
	return ok && d.IsClassOrClassTemplate
}

func (t *fixtureTypeInfo) HasDefaultTemplateArgs(symbolName string) bool {
	d, ok := t.lookup(symbolName)
	return ok && d.HasDefaultTemplateArgs
}

func (t *fixtureTypeInfo) IsNestedClass(symbolName string) bool {
	d, ok := t.lookup(symbolName)
	return ok && d.IsNestedClass
}

func (t *fixtureTypeInfo) IsBuiltin(symbolName string) bool {
	d, ok := t.lookup(symbolName)
	return ok && d.IsBuiltin
}

func (t *fixtureTypeInfo) CanonicalDecl(handle ledger.DeclHandle) *ledger.CanonicalDecl {
	d, ok := t.lookup(handle.String())
	if !ok {
		return nil
	}
	fh := ledger.MakeFileHandle(d.File)
	loc := ledger.SourceLocation{SpellingFile: fh, SpellingLine: d.Line, ExpansionFile: fh, ExpansionLine: d.Line}
	return &ledger.CanonicalDecl{Handle: handle, Redeclarations: []ledger.SourceLocation{loc}}
}

func (t *fixtureTypeInfo) IsMemberFunction(handle ledger.DeclHandle) bool {
	d, ok := t.lookup(handle.String())
	return ok && d.IsMemberFunction
}

func (t *fixtureTypeInfo) ParentClassFile(handle ledger.DeclHandle) string {
	d, _ := t.lookup(handle.String())
	return d.ParentClassFile
}

type fixtureResolver struct {
	decls map[string]declTableJSON
}

func (r *fixtureResolver) ResolveType(qualifiedName string) (declFile string, handle ledger.DeclHandle, shortName string, ok bool) {
	d, found := r.decls[qualifiedName]
	if !found {
		return "", ledger.DeclHandle{}, "", false
	}
	short := d.ShortName
	if short == "" {
		short = qualifiedName
	}
	return d.File, ledger.MakeDeclHandle(qualifiedName), short, true
}

func buildFixtureNode(n fixtureNodeJSON) (astutil.Node, error) {
	loc := ledger.SourceLocation{}
	if n.File != "" {
		fh := ledger.MakeFileHandle(n.File)
		loc = ledger.SourceLocation{SpellingFile: fh, SpellingLine: n.Line, ExpansionFile: fh, ExpansionLine: n.Line}
	}

	children, err := buildFixtureChildren(n.Children)
	if err != nil {
		return nil, err
	}
	implicit, err := buildFixtureChildren(n.ImplicitMembers)
	if err != nil {
		return nil, err
	}

	base := fixtureBase{
		kind:            fixtureNodeKind(n.Kind),
		loc:             loc,
		children:        children,
		implicitMembers: implicit,
		identity:        fmt.Sprintf("%s@%s:%d", n.Kind, n.File, n.Line),
	}

	switch n.Kind {
	case "member-expr":
		return &fixtureMemberExpr{base, n.BaseType}, nil
	case "array-subscript":
		return &fixtureArraySubscript{base, n.ElementType}, nil
	case "sizeof":
		return &fixtureSizeof{base, n.OperandIsRef, n.OperandType, n.OperandIsClass}, nil
	case "cast":
		return &fixtureCast{base, parseCastKind(n.CastKind), n.SourceType, n.TargetType}, nil
	case "delete-expr":
		return &fixtureDeleteExpr{base, n.DeletedType}, nil
	case "variadic-arg":
		return &fixtureVariadicArg{base, n.IsLValue, n.ArgType}, nil
	case "function-decl":
		return &fixtureFunctionDecl{base, n.IsDefinition, n.ReturnType, stringSet(n.FwdDeclaredSelf)}, nil
	case "autocast-param":
		return &fixtureAutocastParam{base, n.ParamType, n.HasConvertingCtor, n.FwdDeclaredByAuthor}, nil
	case "typedef":
		return &fixtureTypedef{base, n.TargetType, len(n.FwdDeclaredSelf) > 0, n.TargetIsDependent}, nil
	case "friend-decl":
		return &fixtureFriendDecl{base, n.FriendedType}, nil
	case "enum-decl":
		return &fixtureEnumDecl{base, n.EnumName}, nil
	case "type-ref":
		return &fixtureTypeRef{base, n.TypeName, n.IsEnum, n.IsPointerOrRef, n.IsNestedNameUse}, nil
	case "call-expr":
		return &fixtureCallExpr{base, parseCallKind(n.CallKindStr), n.CalleeSymbol, n.CalleeFile, !n.CalleeUnresolved, n.ArgClassTypes, n.ReceiverType, n.NewedType, n.DeletedType}, nil
	default:
		return &base, nil
	}
}

func buildFixtureChildren(nodes []fixtureNodeJSON) ([]astutil.Node, error) {
	out := make([]astutil.Node, 0, len(nodes))
	for _, c := range nodes {
		node, err := buildFixtureNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func stringSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func parseCastKind(s string) collector.CastKind {
	switch s {
	case "userdefined":
		return collector.CastUserDefinedOrConstructor
	case "noop":
		return collector.CastReinterpretConstOrNoOp
	default:
		return collector.CastStaticOrDynamic
	}
}

func parseCallKind(s string) collector.CallKind {
	switch s {
	case "member":
		return collector.CallMember
	case "operator":
		return collector.CallOperator
	case "new":
		return collector.CallNew
	case "delete":
		return collector.CallDelete
	case "declref":
		return collector.CallDeclRefToFunction
	default:
		return collector.CallOrdinary
	}
}

func fixtureNodeKind(kind string) astutil.NodeKind {
	switch kind {
	case "type-ref", "cast", "enum-decl":
		return astutil.KindType
	case "typedef":
		return astutil.KindDeclaration
	case "function-decl", "friend-decl":
		return astutil.KindDeclaration
	default:
		return astutil.KindStatement
	}
}

// fixtureBase implements astutil.Node and ImplicitSpecialMembersNode for
// every fixture node; the specific contract interfaces below are satisfied
// by the wrapper types that embed it, never by fixtureBase itself, so the
// collector's type-switch dispatches on kind rather than happening to match
// an unrelated interface through structural typing (see collector_test.go's
// fakeNode for why that matters).
type fixtureBase struct {
	kind            astutil.NodeKind
	loc             ledger.SourceLocation
	children        []astutil.Node
	implicitMembers []astutil.Node
	identity        string
}

func (b *fixtureBase) Kind() astutil.NodeKind          { return b.kind }
func (b *fixtureBase) Children() []astutil.Node        { return b.children }
func (b *fixtureBase) Location() ledger.SourceLocation { return b.loc }
func (b *fixtureBase) IdentityKey() string             { return b.identity }
func (b *fixtureBase) ImplicitSpecialMembers() []astutil.Node { return b.implicitMembers }

type fixtureMemberExpr struct {
	fixtureBase
	baseType string
}

func (n *fixtureMemberExpr) BaseType() string { return n.baseType }

type fixtureArraySubscript struct {
	fixtureBase
	elementType string
}

func (n *fixtureArraySubscript) ElementType() string { return n.elementType }

type fixtureSizeof struct {
	fixtureBase
	operandIsRef   bool
	operandType    string
	operandIsClass bool
}

func (n *fixtureSizeof) OperandIsReference() bool { return n.operandIsRef }
func (n *fixtureSizeof) OperandType() string      { return n.operandType }
func (n *fixtureSizeof) OperandIsClass() bool     { return n.operandIsClass }

type fixtureCast struct {
	fixtureBase
	kind       collector.CastKind
	sourceType string
	targetType string
}

func (n *fixtureCast) CastKind() collector.CastKind { return n.kind }
func (n *fixtureCast) SourceType() string           { return n.sourceType }
func (n *fixtureCast) TargetType() string           { return n.targetType }

type fixtureDeleteExpr struct {
	fixtureBase
	deletedType string
}

func (n *fixtureDeleteExpr) DeletedType() string { return n.deletedType }

type fixtureVariadicArg struct {
	fixtureBase
	isLValue bool
	argType  string
}

func (n *fixtureVariadicArg) IsLValue() bool  { return n.isLValue }
func (n *fixtureVariadicArg) ArgType() string { return n.argType }

type fixtureFunctionDecl struct {
	fixtureBase
	isDefinition bool
	returnType   string
	fwdDeclared  map[string]bool
}

func (n *fixtureFunctionDecl) IsDefinition() bool { return n.isDefinition }
func (n *fixtureFunctionDecl) ReturnType() string { return n.returnType }
func (n *fixtureFunctionDecl) ForwardDeclaredInSameFile(typeName string) bool {
	return n.fwdDeclared[typeName]
}

type fixtureAutocastParam struct {
	fixtureBase
	paramType             string
	hasConvertingCtor     bool
	fwdDeclaredByAuthor   bool
}

func (n *fixtureAutocastParam) ParamType() string             { return n.paramType }
func (n *fixtureAutocastParam) HasConvertingConstructor() bool { return n.hasConvertingCtor }
func (n *fixtureAutocastParam) ForwardDeclaredByAuthor() bool  { return n.fwdDeclaredByAuthor }

type fixtureTypedef struct {
	fixtureBase
	targetType        string
	fwdDeclaredInSame bool
	targetIsDependent bool
}

func (n *fixtureTypedef) TargetType() string                    { return n.targetType }
func (n *fixtureTypedef) ForwardDeclaredInSameFile() bool        { return n.fwdDeclaredInSame }
func (n *fixtureTypedef) TargetIsDependentTemplateParam() bool   { return n.targetIsDependent }

type fixtureFriendDecl struct {
	fixtureBase
	friendedType string
}

func (n *fixtureFriendDecl) FriendedType() string { return n.friendedType }

type fixtureEnumDecl struct {
	fixtureBase
	enumName string
}

func (n *fixtureEnumDecl) EnumName() string { return n.enumName }

type fixtureTypeRef struct {
	fixtureBase
	typeName         string
	isEnum           bool
	isPointerOrRef   bool
	isNestedNameUse  bool
}

func (n *fixtureTypeRef) TypeName() string               { return n.typeName }
func (n *fixtureTypeRef) IsEnum() bool                    { return n.isEnum }
func (n *fixtureTypeRef) IsPointerOrReference() bool      { return n.isPointerOrRef }
func (n *fixtureTypeRef) IsNestedNameSpecifierUse() bool  { return n.isNestedNameUse }

type fixtureCallExpr struct {
	fixtureBase
	callKind      collector.CallKind
	calleeSymbol  string
	calleeFile    string
	calleeOK      bool
	argClassTypes []string
	receiverType  string
	newedType     string
	deletedType   string
}

func (n *fixtureCallExpr) CallKind() collector.CallKind { return n.callKind }
func (n *fixtureCallExpr) Callee() ledger.DeclHandle {
	if !n.calleeOK || n.calleeSymbol == "" {
		return ledger.DeclHandle{}
	}
	return ledger.MakeDeclHandle(n.calleeSymbol)
}
func (n *fixtureCallExpr) CalleeFile() string         { return n.calleeFile }
func (n *fixtureCallExpr) CalleeSymbolName() string   { return n.calleeSymbol }
func (n *fixtureCallExpr) ArgClassTypes() []string    { return n.argClassTypes }
func (n *fixtureCallExpr) ReceiverType() string       { return n.receiverType }
func (n *fixtureCallExpr) NewedType() string          { return n.newedType }
func (n *fixtureCallExpr) DeletedType() string         { return n.deletedType }
