package collector

import (
	"github.com/iwyu-go/iwyu-go/internal/astutil"
	"github.com/iwyu-go/iwyu-go/internal/fusecache"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// DeclResolver is supplied by the front-end collaborator (spec.md §6): given
// the name of a type or function as produced by one of the contract
// interfaces in contract.go, it resolves where that entity is declared. The
// collector package never parses source itself, so every ProposedUse must
// be turned into a full ledger.OneUse through this seam.
type DeclResolver interface {
	// ResolveType returns the file the type/function is declared in, a
	// stable DeclHandle shared by all of its redeclarations, and its short
	// (unqualified) name for comment generation. ok is false for a
	// dependent or otherwise unresolvable name, in which case the use is
	// dropped rather than recorded against a wrong file.
	ResolveType(qualifiedName string) (declFile string, handle ledger.DeclHandle, shortName string, ok bool)
}

// Collector is the single owner of classification, use-recording, and
// template replay for one translation unit: composition over inheritance
// per spec.md §9, rather than a Base -> IWYU -> Replayer embedding chain.
type Collector struct {
	Stack    *astutil.ContextStack
	Cache    *fusecache.FullUseCache
	Resolver DeclResolver

	ledgers map[ledger.FileHandle]*ledger.PerFileLedger

	replayer *Replayer
}

func NewCollector(resolver DeclResolver, cache *fusecache.FullUseCache) *Collector {
	c := &Collector{
		Stack:    astutil.NewContextStack(),
		Cache:    cache,
		Resolver: resolver,
		ledgers:  make(map[ledger.FileHandle]*ledger.PerFileLedger),
	}
	c.replayer = newReplayer(c)
	return c
}

// LedgerFor returns the per-file ledger for file, creating it on first use.
func (c *Collector) LedgerFor(file ledger.FileHandle, quotedName ledger.QuotedInclude) *ledger.PerFileLedger {
	if l, ok := c.ledgers[file]; ok {
		return l
	}
	l := ledger.NewPerFileLedger(file, quotedName)
	c.ledgers[file] = l
	return l
}

// Ledgers exposes every per-file ledger built up during the walk, for the
// trimmer to consume once traversal of the translation unit is complete.
func (c *Collector) Ledgers() map[ledger.FileHandle]*ledger.PerFileLedger {
	return c.ledgers
}

// Visit is the Base Use Collector's traversal entry point (spec.md §4.6): it
// pushes n onto the context stack, classifies it, dispatches call handling
// and implicit-special-member synthesis, recurses into children, then pops.
func (c *Collector) Visit(n astutil.Node) {
	c.Stack.Push(n, nil)
	defer c.Stack.Pop()

	for _, proposed := range ClassifyNode(n) {
		c.recordProposed(proposed, n)
	}

	if tr, ok := n.(TypeRefNode); ok {
		alreadyRequiresFullType := !c.Stack.InForwardDeclareContext()
		kind := ledger.UseForwardDeclare
		if !IsForwardDeclarable(tr, alreadyRequiresFullType) {
			kind = ledger.UseFull
		}
		c.recordProposed(ProposedUse{TypeName: tr.TypeName(), Kind: kind}, n)
	}

	if _, ok := n.(FunctionDeclNode); ok {
		// a pointer/reference parameter only needs a forward declaration,
		// never the full type a by-value call would require (spec.md §4.7).
		c.Stack.SetForwardDeclareContext(true)
	}

	if call, ok := n.(CallExprNode); ok {
		c.handleFunctionCall(call, n)
	}

	if withImplicit, ok := n.(ImplicitSpecialMembersNode); ok {
		for _, implicit := range withImplicit.ImplicitSpecialMembers() {
			c.Visit(implicit)
		}
	}

	for _, child := range n.Children() {
		c.Visit(child)
	}
}

// handleFunctionCall is handle_function_call from spec.md §4.6: every
// syntactic form that invokes a function (ordinary call, member call,
// operator call, new, delete, bare reference to a function) funnels through
// here so the callee's declaration and the parent type governing the call
// are recorded uniformly.
func (c *Collector) handleFunctionCall(call CallExprNode, n astutil.Node) {
	if call.Callee().IsValid() {
		c.record(ProposedUse{TypeName: call.CalleeSymbolName(), Kind: ledger.UseFull}, n, call.CalleeFile(), call.Callee())
	}

	switch call.CallKind() {
	case CallMember:
		if t := call.ReceiverType(); t != "" {
			c.recordProposed(ProposedUse{TypeName: t, Kind: ledger.UseFull}, n)
		}
	case CallOperator:
		for _, t := range call.ArgClassTypes() {
			if t != "" {
				c.recordProposed(ProposedUse{TypeName: t, Kind: ledger.UseFull}, n)
			}
		}
	case CallNew:
		if t := call.NewedType(); t != "" {
			c.recordProposed(ProposedUse{TypeName: t, Kind: ledger.UseFull}, n)
		}
	case CallDelete:
		if t := call.DeletedType(); t != "" {
			c.recordProposed(ProposedUse{TypeName: t, Kind: ledger.UseFull}, n)
		}
	}
}

// recordProposed resolves a ProposedUse's declaration through the
// DeclResolver and, if resolvable, records it against the file currently on
// top of the context stack.
func (c *Collector) recordProposed(p ProposedUse, n astutil.Node) {
	declFile, handle, _, ok := c.Resolver.ResolveType(p.TypeName)
	if !ok {
		return
	}
	c.record(p, n, declFile, handle)
}

func (c *Collector) record(p ProposedUse, n astutil.Node, declFile string, handle ledger.DeclHandle) {
	loc := n.Location()
	if !loc.IsValid() {
		loc = c.Stack.CurrentLocation()
	}
	if !loc.IsValid() {
		return
	}
	_, _, shortName, ok := c.Resolver.ResolveType(p.TypeName)
	if !ok {
		shortName = p.TypeName
	}

	currentFile := loc.ResolvedFile()
	l := c.LedgerFor(currentFile, "")

	use := &ledger.OneUse{
		SymbolName:   p.TypeName,
		ShortName:    shortName,
		Declaration:  handle,
		DeclFilepath: declFile,
		UseLoc:       loc,
		Kind:         p.Kind,
		InMethodBody: c.Stack.AncestorOfKind(astutil.KindDeclaration, -1) != nil,
	}
	l.RecordUse(use)

	if c.replayer != nil && c.replayer.scope != nil {
		if p.Kind == ledger.UseFull {
			c.replayer.scope.RecordType(p.TypeName)
		} else {
			c.replayer.scope.RecordDecl(p.TypeName)
		}
	}
}
