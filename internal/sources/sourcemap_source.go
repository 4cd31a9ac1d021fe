package sources

import (
	"hash"
	"sync"

	"github.com/webpack/webpack-sources/internal/sourcemap"
)

type SourceMapSourceOptions struct {
	// The code the map's source "name" refers to. This takes precedence over
	// the content embedded in the map.
	OriginalSource *string

	// A map from the code named by "name" back to its own sources. Mappings
	// into "name" are resolved through it.
	InnerSourceMap *sourcemap.SourceMap

	// Drop mappings into "name" that the inner map doesn't cover instead of
	// keeping them as they are
	RemoveOriginalSource bool
}

// SourceMapSource is generated code with a map that was produced elsewhere,
// usually by a loader
type SourceMapSource struct {
	text    string
	name    string
	sm      *sourcemap.SourceMap
	options SourceMapSourceOptions

	bytes     []byte
	bytesOnce sync.Once
}

func NewSourceMapSource(text string, name string, sm *sourcemap.SourceMap, options SourceMapSourceOptions) *SourceMapSource {
	if sm == nil {
		sm = &sourcemap.SourceMap{}
	}
	return &SourceMapSource{
		text:    text,
		name:    name,
		sm:      sm,
		options: options,
	}
}

// Like NewSourceMapSource but with the map still in its JSON form
func NewSourceMapSourceFromJSON(text string, name string, mapJSON []byte, options SourceMapSourceOptions) (*SourceMapSource, error) {
	sm, err := sourcemap.Parse(mapJSON)
	if err != nil {
		return nil, err
	}
	return NewSourceMapSource(text, name, sm, options), nil
}

func (*SourceMapSource) isSource() {}

func (s *SourceMapSource) Name() string {
	return s.name
}

func (s *SourceMapSource) Text() string {
	return s.text
}

func (s *SourceMapSource) Bytes() []byte {
	s.bytesOnce.Do(func() {
		s.bytes = []byte(s.text)
	})
	return s.bytes
}

func (s *SourceMapSource) Size() int {
	return len(s.text)
}

func (s *SourceMapSource) Map(options Options) *sourcemap.SourceMap {
	return GetMap(s, options)
}

func (s *SourceMapSource) TextAndMap(options Options) (string, *sourcemap.SourceMap) {
	return GetTextAndMap(s, options)
}

func (s *SourceMapSource) UpdateHash(hash hash.Hash) {
	hash.Write([]byte("SourceMapSource"))
	hash.Write(s.Bytes())
	hash.Write(s.sm.JSON(false))
	if s.options.OriginalSource != nil {
		hash.Write([]byte(*s.options.OriginalSource))
	}
	if s.options.InnerSourceMap != nil {
		hash.Write(s.options.InnerSourceMap.JSON(false))
	}
	if s.options.RemoveOriginalSource {
		hash.Write([]byte("true"))
	} else {
		hash.Write([]byte("false"))
	}
}

func (s *SourceMapSource) StreamChunks(options Options, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo {
	if s.options.InnerSourceMap != nil {
		return streamChunksOfCombinedSourceMap(
			s.text,
			s.sm,
			s.name,
			s.options.OriginalSource,
			s.options.InnerSourceMap,
			s.options.RemoveOriginalSource,
			onChunk,
			onSource,
			onName,
			options.FinalSource,
			!options.LinesOnly,
		)
	}
	return streamChunksOfSourceMap(s.text, s.sm, onChunk, onSource, onName, options.FinalSource, !options.LinesOnly)
}
