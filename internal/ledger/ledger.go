// Package ledger holds the data model that flows between the collector,
// trimmer, and diff emitter: per-file records of what a translation unit
// currently includes/forward-declares and what symbols it actually uses.
package ledger

import "sort"

// FileHandle is the opaque identity of a physical source file. Two handles
// are equal iff they name the same on-disk file; the frontend package is
// responsible for handing out exactly one handle per path.
type FileHandle struct {
	path string
}

func MakeFileHandle(canonicalPath string) FileHandle {
	return FileHandle{path: canonicalPath}
}

func (h FileHandle) Path() string {
	return h.path
}

func (h FileHandle) IsValid() bool {
	return h.path != ""
}

// SourceLocation is a compact reference to a position in a translation unit.
// Spelling is where the token is written; Expansion is where the macro that
// produced it was invoked. They differ only inside macro expansions.
type SourceLocation struct {
	SpellingFile FileHandle
	SpellingLine int
	ExpansionFile FileHandle
	ExpansionLine int
}

// IsValid reports whether this location can be attributed to a real file:
// true when either the spelling or the expansion file is set. It does not
// compare the two; ContextStack.CurrentLocation is what rejects a location
// whose spelling and expansion files differ.
func (loc SourceLocation) IsValid() bool {
	return loc.SpellingFile.IsValid() || loc.ExpansionFile.IsValid()
}

// ResolvedFile picks the spelling location, falling back to the expansion
// location when the token lives in a macro-scratch buffer.
func (loc SourceLocation) ResolvedFile() FileHandle {
	if loc.SpellingFile.IsValid() {
		return loc.SpellingFile
	}
	return loc.ExpansionFile
}

type UseKind int

const (
	UseForwardDeclare UseKind = iota
	UseFull
)

func (k UseKind) String() string {
	if k == UseFull {
		return "full"
	}
	return "fwd-decl"
}

// DeclHandle identifies a declaration across redeclarations. A type with
// several redeclarations shares one canonical DeclHandle but keeps a
// location for each redeclaration (see CanonicalDecl below).
type DeclHandle struct {
	id string
}

func MakeDeclHandle(id string) DeclHandle {
	return DeclHandle{id: id}
}

func (d DeclHandle) IsValid() bool {
	return d.id != ""
}

func (d DeclHandle) String() string {
	return d.id
}

// CanonicalDecl tracks every redeclaration of one class/struct/union identity
// so "visible earlier in the file" can be answered by a location comparison
// instead of guessing from a single declaration site.
type CanonicalDecl struct {
	Handle         DeclHandle
	Redeclarations []SourceLocation
}

// VisibleBefore reports whether any redeclaration of this type appears
// strictly before loc in the same file.
func (c *CanonicalDecl) VisibleBefore(file FileHandle, lineOffset int) bool {
	for _, r := range c.Redeclarations {
		if r.ResolvedFile() == file && r.SpellingLine < lineOffset {
			return true
		}
	}
	return false
}

// QuotedInclude is the textual form of an #include target, angle brackets
// or quotes included. It is produced only by the path normalizer.
type QuotedInclude string

func (q QuotedInclude) IsSystem() bool {
	return len(q) > 0 && q[0] == '<'
}

func (q QuotedInclude) String() string {
	return string(q)
}

// OneUse is one recorded reference to a symbol, as described by spec §3.
type OneUse struct {
	SymbolName     string
	ShortName      string
	Declaration    DeclHandle
	DeclFilepath   string
	UseLoc         SourceLocation
	Kind           UseKind
	InMethodBody   bool
	PublicHeaders  []QuotedInclude // candidates, computed lazily by the trimmer
	SuggestedHeader QuotedInclude  // chosen after set-cover; empty until assigned
	Ignored        bool
	IsViolation    bool
}

func (u *OneUse) HasSuggestedHeader() bool {
	return u.SuggestedHeader != ""
}

// IncludeOrForwardDeclareLine is one desired-or-present element of a file.
type LineKind int

const (
	LineInclude LineKind = iota
	LineForwardDecl
)

type IncludeOrForwardDeclareLine struct {
	Kind          LineKind
	Quoted        QuotedInclude // set when Kind == LineInclude
	Decl          DeclHandle    // set when Kind == LineForwardDecl
	PrintedForm   string        // e.g. `class Foo;`, possibly namespace-wrapped

	StartLine, EndLine int // -1,-1 while only proposed, never present on disk

	IsPresent bool
	IsDesired bool

	SymbolUses map[string]int // short symbol name -> count, for comment generation
}

func (l *IncludeOrForwardDeclareLine) RecordSymbolUse(shortName string) {
	if l.SymbolUses == nil {
		l.SymbolUses = make(map[string]int)
	}
	l.SymbolUses[shortName]++
}

// SortedSymbolUses returns short symbol names sorted by decreasing use count,
// then alphabetically, as required for comment generation (spec §4.10).
func (l *IncludeOrForwardDeclareLine) SortedSymbolUses() []string {
	names := make([]string, 0, len(l.SymbolUses))
	for n := range l.SymbolUses {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := l.SymbolUses[names[i]], l.SymbolUses[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}

// PerFileLedger is the per-analyzed-file record consumed by the trimmer and
// diff emitter.
type PerFileLedger struct {
	File       FileHandle
	QuotedName QuotedInclude

	Associated map[FileHandle]bool

	DirectIncludes     map[QuotedInclude]bool
	DirectIncludeFiles map[FileHandle]bool
	DirectForwardDeclares map[DeclHandle]bool

	RawUses []*OneUse

	Lines []*IncludeOrForwardDeclareLine

	DesiredIncludes map[QuotedInclude]bool

	// CallerResponsibleTypes holds the per-file set of types that the code
	// author forward-declared and explicitly did not #include, so callers
	// (not this file) are responsible for the full type (spec §4.7).
	CallerResponsibleTypes map[string]bool
}

func NewPerFileLedger(file FileHandle, quotedName QuotedInclude) *PerFileLedger {
	return &PerFileLedger{
		File:                  file,
		QuotedName:            quotedName,
		Associated:            make(map[FileHandle]bool),
		DirectIncludes:        make(map[QuotedInclude]bool),
		DirectIncludeFiles:    make(map[FileHandle]bool),
		DirectForwardDeclares: make(map[DeclHandle]bool),
		DesiredIncludes:       make(map[QuotedInclude]bool),
		CallerResponsibleTypes: make(map[string]bool),
	}
}

func (l *PerFileLedger) RecordUse(u *OneUse) {
	l.RawUses = append(l.RawUses, u)
}

// IsAssociatedWith reports whether other is listed as an associated file
// (e.g. the .h of the .cc being analyzed).
func (l *PerFileLedger) IsAssociatedWith(other FileHandle) bool {
	return l.Associated[other]
}
