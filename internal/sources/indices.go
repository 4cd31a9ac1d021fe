package sources

// Each compositor that merges several streams renumbers their sources and
// names into one dense index space. That space is owned by a single call to
// "StreamChunks" and is never shared between calls.

type indexAllocator map[string]int

func newIndexAllocator() indexAllocator {
	return make(indexAllocator)
}

// Returns the index for "key", allocating the next free one if needed
func (a indexAllocator) allocate(key string) (index int, isNew bool) {
	if index, ok := a[key]; ok {
		return index, false
	}
	index = len(a)
	a[key] = index
	return index, true
}

const (
	unmapped     = -1
	pendingIndex = -2
)

// Translates indices reported by a child stream into the combined stream
type indexMapping []int

func (m *indexMapping) set(index int, value int) {
	for len(*m) <= index {
		*m = append(*m, unmapped)
	}
	(*m)[index] = value
}

func (m indexMapping) get(index int) int {
	if index < 0 || index >= len(m) {
		return unmapped
	}
	return m[index]
}
