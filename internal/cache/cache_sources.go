package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/webpack/webpack-sources/internal/sources"
)

// SourceKey says which leaf is wanted and what it was built from
type SourceKey struct {
	Path string
	ID   string

	// Every file the leaf is built from, including Path. Invalidating any of
	// them drops the entry.
	Inputs []string

	// From ContentHash over the contents of the inputs and any option that
	// changes how the leaf is built
	Hash uint64
}

type sourceCacheKey struct {
	path string
	id   string
}

type sourceEntry struct {
	source *sources.CachedSource
	inputs []string
	hash   uint64
}

type SourceCache struct {
	entries map[sourceCacheKey]*sourceEntry
	mutex   sync.Mutex
	hits    int
	misses  int
}

// ContentHash folds parts into a cache key. Each part is terminated so that
// moving bytes from one part to the next changes the result.
func ContentHash(parts ...string) uint64 {
	digest := xxhash.New()
	for _, part := range parts {
		digest.WriteString(part)
		digest.Write([]byte{0})
	}
	return digest.Sum64()
}

// Get returns the cached leaf for key, calling build to replace the entry if
// there is none or its hash doesn't match. The build function runs without
// the lock held, so two goroutines missing at the same time may both build.
func (c *SourceCache) Get(key SourceKey, build func() sources.Source) *sources.CachedSource {
	mapKey := sourceCacheKey{path: key.Path, id: key.ID}
	c.mutex.Lock()
	entry := c.entries[mapKey]
	if entry != nil && entry.hash == key.Hash {
		c.hits++
		c.mutex.Unlock()
		return entry.source
	}
	c.misses++
	c.mutex.Unlock()

	source := sources.NewCachedSource(build())

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if entry := c.entries[mapKey]; entry != nil && entry.hash == key.Hash {
		return entry.source
	}
	c.entries[mapKey] = &sourceEntry{
		source: source,
		inputs: append([]string{}, key.Inputs...),
		hash:   key.Hash,
	}
	return source
}

// Invalidate drops every entry built from the file at path
func (c *SourceCache) Invalidate(path string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	found := false
	for key, entry := range c.entries {
		if key.path == path {
			delete(c.entries, key)
			found = true
			continue
		}
		for _, input := range entry.inputs {
			if input == path {
				delete(c.entries, key)
				found = true
				break
			}
		}
	}
	return found
}

// Prune drops the entries whose path isn't in live. It's meant to be called
// after a build with the set of module paths that build used.
func (c *SourceCache) Prune(live map[string]bool) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	count := 0
	for key := range c.entries {
		if !live[key.path] {
			delete(c.entries, key)
			count++
		}
	}
	return count
}

func (c *SourceCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

// Stats reports how many lookups were served from the cache so far
func (c *SourceCache) Stats() (hits int, misses int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.hits, c.misses
}
