package cache

// This is a cache of the leaves of the source trees built for a bundle. The
// idea is to reuse the memoized text and maps of unchanged modules between
// builds so a rebuild after a single edit only streams the modules that
// changed. This only works if:
//
//   - The cached sources are never mutated. Every variant in the sources
//     package is immutable once built, and CachedSource is safe to share
//     between chunks that are emitted in parallel.
//
//   - The key of an entry covers everything its source was built from. A
//     leaf built from a file plus its input map must change key when either
//     file changes, otherwise stale mappings could be reused.
//
//   - Only leaves are cached. Replacements and wrappers depend on the
//     manifest and are rebuilt every time, which is cheap because they
//     stream their cached children.
type CacheSet struct {
	FSCache     FSCache
	SourceCache SourceCache
}

func MakeCacheSet() *CacheSet {
	return &CacheSet{
		FSCache: FSCache{
			entries: make(map[string]*fsEntry),
		},
		SourceCache: SourceCache{
			entries: make(map[sourceCacheKey]*sourceEntry),
		},
	}
}

// Invalidate drops everything derived from the file at path. It returns true
// if anything was cached for it.
func (c *CacheSet) Invalidate(path string) bool {
	fromFS := c.FSCache.Invalidate(path)
	fromSources := c.SourceCache.Invalidate(path)
	return fromFS || fromSources
}
