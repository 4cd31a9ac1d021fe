package sources

import (
	"hash"

	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// SourceLike is the least an object from outside this package must provide
// to take part in a composition. It can optionally also implement "Bytes",
// "Size", "Map", "UpdateHash" and "StreamChunks" with the same signatures as
// "Source" and those will be used instead of the derived versions.
type SourceLike interface {
	Text() string
}

type bytesProvider interface {
	Bytes() []byte
}

type sizeProvider interface {
	Size() int
}

type mapProvider interface {
	Map(options Options) *sourcemap.SourceMap
}

type hashProvider interface {
	UpdateHash(hash hash.Hash)
}

type chunkStreamer interface {
	StreamChunks(options Options, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo
}

type CompatSource struct {
	value SourceLike
}

func NewCompatSource(value SourceLike) *CompatSource {
	return &CompatSource{value: value}
}

// CompatSourceFrom returns "value" itself if it's already a source
func CompatSourceFrom(value SourceLike) Source {
	if source, ok := value.(Source); ok {
		return source
	}
	return NewCompatSource(value)
}

func (*CompatSource) isSource() {}

func (s *CompatSource) Text() string {
	return s.value.Text()
}

func (s *CompatSource) Bytes() []byte {
	if value, ok := s.value.(bytesProvider); ok {
		return value.Bytes()
	}
	return []byte(s.value.Text())
}

func (s *CompatSource) Size() int {
	if value, ok := s.value.(sizeProvider); ok {
		return value.Size()
	}
	return len(s.Bytes())
}

func (s *CompatSource) Map(options Options) *sourcemap.SourceMap {
	if value, ok := s.value.(mapProvider); ok {
		return value.Map(options)
	}
	return nil
}

func (s *CompatSource) TextAndMap(options Options) (string, *sourcemap.SourceMap) {
	return s.Text(), s.Map(options)
}

func (s *CompatSource) UpdateHash(hash hash.Hash) {
	if value, ok := s.value.(hashProvider); ok {
		value.UpdateHash(hash)
		return
	}

	// Hashing only the bytes would miss differences in the map
	if _, ok := s.value.(mapProvider); ok {
		panicWithUsageError(ErrMissingUpdateHash)
	}
	hash.Write(s.Bytes())
}

func (s *CompatSource) StreamChunks(options Options, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo {
	if value, ok := s.value.(chunkStreamer); ok {
		return value.StreamChunks(options, onChunk, onSource, onName)
	}
	text, sm := s.TextAndMap(options)
	if sm == nil {
		return streamChunksOfRawSource(text, onChunk, options.FinalSource)
	}
	return streamChunksOfSourceMap(text, sm, onChunk, onSource, onName, options.FinalSource, !options.LinesOnly)
}
