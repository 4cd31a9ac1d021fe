package sources

import (
	"hash"
	"sync"

	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// RawSource is generated code without any mapping, such as a runtime
// snippet or a module wrapper
type RawSource struct {
	text      string
	bytes     []byte
	bytesOnce sync.Once
}

func NewRawSource(text string) *RawSource {
	return &RawSource{text: text}
}

func NewRawSourceFromBytes(bytes []byte) *RawSource {
	s := &RawSource{text: string(bytes), bytes: bytes}
	s.bytesOnce.Do(func() {})
	return s
}

func (*RawSource) isSource() {}

func (s *RawSource) Text() string {
	return s.text
}

func (s *RawSource) Bytes() []byte {
	s.bytesOnce.Do(func() {
		s.bytes = []byte(s.text)
	})
	return s.bytes
}

func (s *RawSource) Size() int {
	return len(s.text)
}

func (s *RawSource) Map(Options) *sourcemap.SourceMap {
	return nil
}

func (s *RawSource) TextAndMap(Options) (string, *sourcemap.SourceMap) {
	return s.text, nil
}

func (s *RawSource) UpdateHash(hash hash.Hash) {
	hash.Write([]byte("RawSource"))
	hash.Write(s.Bytes())
}

func (s *RawSource) StreamChunks(options Options, onChunk OnChunk, _ OnSource, _ OnName) GeneratedInfo {
	return streamChunksOfRawSource(s.text, onChunk, options.FinalSource)
}

// There are no mappings to report in final source mode, so only the end
// position is computed
func streamChunksOfRawSource(text string, onChunk OnChunk, finalSource bool) GeneratedInfo {
	if finalSource {
		return infoForText(text, true)
	}

	line := 1
	lines := helpers.SplitIntoLines(text)
	for _, chunk := range lines {
		onChunk(chunk, line, 0, -1, -1, -1, -1)
		line++
	}

	if len(lines) == 0 {
		return GeneratedInfo{GeneratedLine: 1}
	}
	if last := lines[len(lines)-1]; last[len(last)-1] != '\n' {
		return GeneratedInfo{GeneratedLine: len(lines), GeneratedColumn: helpers.UTF16Len(last)}
	}
	return GeneratedInfo{GeneratedLine: len(lines) + 1}
}
