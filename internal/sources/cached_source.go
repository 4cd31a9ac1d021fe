package sources

import (
	"hash"
	"sync"

	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// CachedSource remembers everything computed from another source. Leaves are
// often shared between several output chunks, so it's safe to use from
// multiple goroutines as long as the wrapped source is.
type CachedSource struct {
	// Either "source" is set or "getSource" produces it on first use
	source     Source
	getSource  func() Source
	sourceOnce sync.Once

	mutex   sync.Mutex
	text    *string
	bytes   []byte
	size    int
	hasSize bool
	maps    map[bool]cachedMap
	hash    [][]byte
	hasHash bool
}

// A nil map is a valid result, so presence is tracked separately. A source
// can announce sources without mapping anything, and because callers merge
// index spaces as sources are announced, that has to be replayed too. It's
// only known when the map was captured from a stream.
type cachedMap struct {
	sm        *sourcemap.SourceMap
	announced *Announcements
}

// Announcements are the sources and names a stream reported
type Announcements struct {
	Sources        []string
	SourcesContent []*string
	Names          []string
}

func NewCachedSource(source Source) *CachedSource {
	c := &CachedSource{source: source, maps: make(map[bool]cachedMap)}
	return c
}

// CachedData is everything a CachedSource needs to answer queries without
// touching the source it wraps
type CachedData struct {
	Bytes []byte
	Maps  []CachedMap

	// The sequence of writes the wrapped source made to a hash
	Hash [][]byte
}

type CachedMap struct {
	LinesOnly bool
	Map       *sourcemap.SourceMap

	// Only set for a nil map that was captured from a stream
	Announced *Announcements
}

// Restores a CachedSource from data exported with "CachedData". The wrapped
// source is only created if a query can't be answered from the data.
func NewCachedSourceFromData(getSource func() Source, data CachedData) *CachedSource {
	c := &CachedSource{getSource: getSource, maps: make(map[bool]cachedMap)}
	if data.Bytes != nil {
		c.bytes = data.Bytes
		c.size = len(data.Bytes)
		c.hasSize = true
	}
	for _, m := range data.Maps {
		c.maps[m.LinesOnly] = cachedMap{sm: m.Map, announced: m.Announced}
	}
	if data.Hash != nil {
		c.hash = data.Hash
		c.hasHash = true
	}
	return c
}

func (*CachedSource) isSource() {}

// Original returns the wrapped source, creating it if needed
func (c *CachedSource) Original() Source {
	c.sourceOnce.Do(func() {
		if c.source == nil && c.getSource != nil {
			c.source = c.getSource()
			c.getSource = nil
		}
	})
	return c.source
}

// Forces text, size and hash to be computed so that the exported data is
// self-contained. Maps are only included if they were requested before.
func (c *CachedSource) CachedData() CachedData {
	bytes := c.Bytes()
	c.recordHash()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	data := CachedData{Bytes: bytes, Hash: c.hash}
	for _, linesOnly := range []bool{false, true} {
		if m, ok := c.maps[linesOnly]; ok {
			data.Maps = append(data.Maps, CachedMap{LinesOnly: linesOnly, Map: m.sm, Announced: m.announced})
		}
	}
	return data
}

func (c *CachedSource) cachedText() (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.text != nil {
		return *c.text, true
	}
	if c.bytes != nil {
		text := string(c.bytes)
		c.text = &text
		return text, true
	}
	return "", false
}

func (c *CachedSource) storeText(text string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.text == nil {
		c.text = &text
	}
	if !c.hasSize {
		c.size = len(text)
		c.hasSize = true
	}
}

func (c *CachedSource) cachedMap(linesOnly bool) (*sourcemap.SourceMap, bool) {
	m, ok := c.cachedEntry(linesOnly)
	return m.sm, ok
}

func (c *CachedSource) cachedEntry(linesOnly bool) (cachedMap, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	m, ok := c.maps[linesOnly]
	return m, ok
}

func (c *CachedSource) storeMap(linesOnly bool, sm *sourcemap.SourceMap) {
	c.storeEntry(linesOnly, cachedMap{sm: sm})
}

func (c *CachedSource) storeEntry(linesOnly bool, m cachedMap) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.maps[linesOnly] = m
}

func (c *CachedSource) Text() string {
	if text, ok := c.cachedText(); ok {
		return text
	}
	text := c.Original().Text()
	c.storeText(text)
	return text
}

func (c *CachedSource) Bytes() []byte {
	c.mutex.Lock()
	if c.bytes != nil {
		defer c.mutex.Unlock()
		return c.bytes
	}
	c.mutex.Unlock()

	var bytes []byte
	if text, ok := c.cachedText(); ok {
		bytes = []byte(text)
	} else {
		bytes = c.Original().Bytes()
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.bytes == nil {
		c.bytes = bytes
	}
	if !c.hasSize {
		c.size = len(bytes)
		c.hasSize = true
	}
	return c.bytes
}

func (c *CachedSource) Size() int {
	c.mutex.Lock()
	if c.hasSize {
		defer c.mutex.Unlock()
		return c.size
	}
	c.mutex.Unlock()

	size := c.Original().Size()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.size = size
	c.hasSize = true
	return size
}

// Maps are handed out as copies so that callers can modify them
func (c *CachedSource) Map(options Options) *sourcemap.SourceMap {
	if sm, ok := c.cachedMap(options.LinesOnly); ok {
		return sm.Clone()
	}
	sm := c.Original().Map(options)
	c.storeMap(options.LinesOnly, sm)
	return sm.Clone()
}

func (c *CachedSource) TextAndMap(options Options) (string, *sourcemap.SourceMap) {
	text, hasText := c.cachedText()
	sm, hasMap := c.cachedMap(options.LinesOnly)

	switch {
	case hasText && hasMap:
	case hasText:
		sm = c.Original().Map(options)
		c.storeMap(options.LinesOnly, sm)
	case hasMap:
		text = c.Original().Text()
		c.storeText(text)
	default:
		text, sm = c.Original().TextAndMap(options)
		c.storeText(text)
		c.storeMap(options.LinesOnly, sm)
	}
	return text, sm.Clone()
}

// Records the writes the wrapped source makes to a hash so that they can be
// replayed later
type hashRecorder struct {
	hash.Hash
	writes [][]byte
}

func (r *hashRecorder) Write(data []byte) (int, error) {
	r.writes = append(r.writes, append([]byte(nil), data...))
	return r.Hash.Write(data)
}

func (c *CachedSource) recordHash() {
	c.mutex.Lock()
	hasHash := c.hasHash
	c.mutex.Unlock()
	if hasHash {
		return
	}

	recorder := &hashRecorder{Hash: nopHash{}}
	c.Original().UpdateHash(recorder)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.hasHash {
		c.hash = recorder.writes
		c.hasHash = true
	}
}

func (c *CachedSource) UpdateHash(hash hash.Hash) {
	c.recordHash()
	c.mutex.Lock()
	writes := c.hash
	c.mutex.Unlock()
	for _, data := range writes {
		hash.Write(data)
	}
}

func (c *CachedSource) StreamChunks(options Options, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo {
	text, hasText := c.cachedText()
	entry, hasMap := c.cachedEntry(options.LinesOnly)

	// Everything is announced up front, in the order the stream announced it
	switch {
	case hasText && hasMap && entry.sm != nil:
		announceSources(entry.sm, onSource)
		announceNames(entry.sm, onName)
		return streamChunksOfSourceMap(text, entry.sm, onChunk, ignoreSource, ignoreName, options.FinalSource, !options.LinesOnly)

	case hasText && hasMap && entry.announced != nil:
		for i, source := range entry.announced.Sources {
			var content *string
			if i < len(entry.announced.SourcesContent) {
				content = entry.announced.SourcesContent[i]
			}
			onSource(i, source, content)
		}
		for i, name := range entry.announced.Names {
			onName(i, name)
		}
		return streamChunksOfRawSource(text, onChunk, options.FinalSource)
	}

	info, text, collector := streamAndGetTextAndMap(c.Original(), options, onChunk, onSource, onName)
	entry = cachedMap{sm: collector.sourceMap()}
	if entry.sm == nil {
		entry.announced = collector.announcements()
	}
	c.storeText(text)
	c.storeEntry(options.LinesOnly, entry)
	return info
}

func ignoreSource(int, string, *string) {}
func ignoreName(int, string)            {}

// A hash that discards everything, used when only the writes are wanted
type nopHash struct{}

func (nopHash) Write(data []byte) (int, error) { return len(data), nil }
func (nopHash) Sum(b []byte) []byte            { return b }
func (nopHash) Reset()                         {}
func (nopHash) Size() int                      { return 0 }
func (nopHash) BlockSize() int                 { return 1 }
