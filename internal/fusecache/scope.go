package fusecache

// pendingRecord accumulates uses reported while a CacheStoringScope is
// active, so they can be written to the cache when the scope closes.
type pendingRecord struct {
	key   CacheKey
	types map[string]bool
	decls map[string]bool
}

// CacheStoringScope is a RAII-style recorder, kept as a stack on the cache
// itself rather than a standalone type: while active, every reported use is
// appended to the top pending record; on Pop, the record is written to the
// cache. Nested scopes let a caller be credited with all transitive uses of
// its callees, since closing an inner scope also merges its record into the
// parent's (spec.md §4.5).
type CacheStoringScope struct {
	cache *FullUseCache
	stack []*pendingRecord
}

func (c *FullUseCache) NewScope() *CacheStoringScope {
	return &CacheStoringScope{cache: c}
}

// Push begins recording uses attributed to key.
func (s *CacheStoringScope) Push(key CacheKey) {
	s.stack = append(s.stack, &pendingRecord{
		key:   key,
		types: make(map[string]bool),
		decls: make(map[string]bool),
	})
}

// RecordType records a fully-used type against the innermost active scope.
func (s *CacheStoringScope) RecordType(typeName string) {
	if len(s.stack) == 0 {
		return
	}
	s.stack[len(s.stack)-1].types[typeName] = true
}

// RecordDecl records a declaration used only through a forward declaration
// against the innermost active scope; a cache hit replays it as a
// forward-declare use.
func (s *CacheStoringScope) RecordDecl(declName string) {
	if len(s.stack) == 0 {
		return
	}
	s.stack[len(s.stack)-1].decls[declName] = true
}

// Pop closes the innermost scope: writes its accumulated record to the
// cache, then merges the same record into the new top (the caller), so the
// caller is credited with everything its callee caused to be used.
func (s *CacheStoringScope) Pop() {
	if len(s.stack) == 0 {
		return
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	s.cache.Store(top.key, toCachedUses(top))

	if len(s.stack) > 0 {
		parent := s.stack[len(s.stack)-1]
		for t := range top.types {
			parent.types[t] = true
		}
		for d := range top.decls {
			parent.decls[d] = true
		}
	}
}

func toCachedUses(r *pendingRecord) CachedUses {
	types := make([]string, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	decls := make([]string, 0, len(r.decls))
	for d := range r.decls {
		decls = append(decls, d)
	}
	return CachedUses{Types: types, Decls: decls}
}

// Depth reports the number of active nested scopes.
func (s *CacheStoringScope) Depth() int {
	return len(s.stack)
}
