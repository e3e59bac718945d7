package pathutil

// SearchPathKind classifies a header search path as supplying system
// headers (<angle.h>) or user headers ("quoted.h").
type SearchPathKind int

const (
	UserPath SearchPathKind = iota
	SystemPath
)

// HeaderSearchPath is one entry of the include-resolution list, initialized
// once from the driver and immutable thereafter (spec.md §3).
type HeaderSearchPath struct {
	Path string
	Kind SearchPathKind
}

// SearchDirs holds the directories a compiler invocation would pass via
// -I/-iquote/-isystem/-include, retargeted from nocc's remote-compilation
// bookkeeping into the plain list the Path Normalizer needs.
type SearchDirs struct {
	dirsI       []string // -I dir (user path)
	dirsIquote  []string // -iquote dir (user path, quote-form only)
	dirsIsystem []string // -isystem dir (system path)
	filesI      []string // -include file (forced includes)
}

func MakeSearchDirs() SearchDirs {
	return SearchDirs{
		dirsI:       make([]string, 0, 2),
		dirsIquote:  make([]string, 0, 2),
		dirsIsystem: make([]string, 0, 2),
		filesI:      make([]string, 0),
	}
}

func (dirs *SearchDirs) AddI(path string)       { dirs.dirsI = append(dirs.dirsI, path) }
func (dirs *SearchDirs) AddIquote(path string)   { dirs.dirsIquote = append(dirs.dirsIquote, path) }
func (dirs *SearchDirs) AddIsystem(path string)  { dirs.dirsIsystem = append(dirs.dirsIsystem, path) }
func (dirs *SearchDirs) AddForcedInclude(f string) { dirs.filesI = append(dirs.filesI, f) }

func (dirs *SearchDirs) ForcedIncludes() []string {
	return dirs.filesI
}

func (dirs *SearchDirs) IsEmpty() bool {
	return len(dirs.dirsI) == 0 && len(dirs.dirsIquote) == 0 && len(dirs.dirsIsystem) == 0
}

func (dirs *SearchDirs) MergeWith(other SearchDirs) {
	dirs.dirsI = append(dirs.dirsI, other.dirsI...)
	dirs.dirsIquote = append(dirs.dirsIquote, other.dirsIquote...)
	dirs.dirsIsystem = append(dirs.dirsIsystem, other.dirsIsystem...)
	dirs.filesI = append(dirs.filesI, other.filesI...)
}

// AsHeaderSearchPaths converts the raw -I/-iquote/-isystem bookkeeping into
// the HeaderSearchPath list the Path Normalizer consumes, trailing-slashed
// per original_source/iwyu_path_util.cc's CanonicalizeHeaderSearchPath (a
// trailing slash makes longest-common-prefix stripping exact).
func (dirs *SearchDirs) AsHeaderSearchPaths() []HeaderSearchPath {
	paths := make([]HeaderSearchPath, 0, dirs.Count())
	add := func(p string, kind SearchPathKind) {
		paths = append(paths, HeaderSearchPath{Path: withTrailingSlash(p), Kind: kind})
	}
	for _, p := range dirs.dirsIsystem {
		add(p, SystemPath)
	}
	for _, p := range dirs.dirsI {
		add(p, UserPath)
	}
	for _, p := range dirs.dirsIquote {
		add(p, UserPath)
	}
	return paths
}

func (dirs *SearchDirs) Count() int {
	return len(dirs.dirsI) + len(dirs.dirsIquote) + len(dirs.dirsIsystem)
}

func withTrailingSlash(p string) string {
	if len(p) == 0 || p[len(p)-1] == '/' {
		return p
	}
	return p + "/"
}
