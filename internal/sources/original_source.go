package sources

import (
	"hash"
	"strings"
	"sync"

	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// OriginalSource is code that is identical to an input file. Every chunk
// maps to itself in that file, which lets edits layered on top be traced
// back to it.
type OriginalSource struct {
	text      string
	name      string
	bytes     []byte
	bytesOnce sync.Once
}

func NewOriginalSource(text string, name string) *OriginalSource {
	return &OriginalSource{text: text, name: name}
}

func (*OriginalSource) isSource() {}

func (s *OriginalSource) Name() string {
	return s.name
}

func (s *OriginalSource) Text() string {
	return s.text
}

func (s *OriginalSource) Bytes() []byte {
	s.bytesOnce.Do(func() {
		s.bytes = []byte(s.text)
	})
	return s.bytes
}

func (s *OriginalSource) Size() int {
	return len(s.text)
}

func (s *OriginalSource) Map(options Options) *sourcemap.SourceMap {
	return GetMap(s, options)
}

func (s *OriginalSource) TextAndMap(options Options) (string, *sourcemap.SourceMap) {
	return GetTextAndMap(s, options)
}

func (s *OriginalSource) UpdateHash(hash hash.Hash) {
	hash.Write([]byte("OriginalSource"))
	hash.Write(s.Bytes())
	hash.Write([]byte(s.name))
}

func (s *OriginalSource) StreamChunks(options Options, onChunk OnChunk, onSource OnSource, _ OnName) GeneratedInfo {
	onSource(0, s.name, strPtr(s.text))

	switch {
	case !options.LinesOnly:
		// Each potential token maps to its own position
		line := 1
		column := 0
		for _, token := range helpers.SplitIntoPotentialTokens(s.text) {
			isEndOfLine := strings.HasSuffix(token, "\n")
			if isEndOfLine && len(token) == 1 {
				// A blank line has nothing worth mapping
				if !options.FinalSource {
					onChunk(token, line, column, -1, -1, -1, -1)
				}
			} else if options.FinalSource {
				onChunk("", line, column, 0, line, column, -1)
			} else {
				onChunk(token, line, column, 0, line, column, -1)
			}
			if isEndOfLine {
				line++
				column = 0
			} else {
				column += helpers.UTF16Len(token)
			}
		}
		return GeneratedInfo{
			GeneratedLine:   line,
			GeneratedColumn: column,
			Source:          s.text,
			HasSource:       options.FinalSource,
		}

	case options.FinalSource:
		line := 1
		for _, chunk := range helpers.SplitIntoLines(s.text) {
			if chunk != "\n" {
				onChunk("", line, 0, 0, line, 0, -1)
			}
			line++
		}
		return infoForText(s.text, true)

	default:
		line := 1
		lines := helpers.SplitIntoLines(s.text)
		for _, chunk := range lines {
			if chunk == "\n" {
				onChunk(chunk, line, 0, -1, -1, -1, -1)
			} else {
				onChunk(chunk, line, 0, 0, line, 0, -1)
			}
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
}
