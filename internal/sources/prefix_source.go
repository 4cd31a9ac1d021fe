package sources

import (
	"hash"
	"strings"

	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// PrefixSource indents every line of another source, which is how module
// bodies end up nested inside their wrapper functions
type PrefixSource struct {
	prefix string
	source Source
}

func NewPrefixSource(prefix string, source Source) *PrefixSource {
	return &PrefixSource{prefix: prefix, source: source}
}

func (*PrefixSource) isSource() {}

func (s *PrefixSource) Prefix() string {
	return s.prefix
}

func (s *PrefixSource) Original() Source {
	return s.source
}

// Every line break that is followed by more text starts a new prefixed line.
// A trailing line break does not, and empty text has no line to prefix.
func applyPrefix(prefix string, text string) string {
	if prefix == "" || text == "" {
		return text
	}
	return string(appendPrefixed(make([]byte, 0, prefixedSize(prefix, text)), prefix, text))
}

func appendPrefixed(buffer []byte, prefix string, text string) []byte {
	if text == "" {
		return buffer
	}
	buffer = append(buffer, prefix...)
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 || i == len(text)-1 {
			return append(buffer, text...)
		}
		buffer = append(buffer, text[:i+1]...)
		buffer = append(buffer, prefix...)
		text = text[i+1:]
	}
}

func prefixedSize(prefix string, text string) int {
	if prefix == "" || text == "" {
		return len(text)
	}
	lineStarts := 1 + strings.Count(text, "\n")
	if text[len(text)-1] == '\n' {
		lineStarts--
	}
	return len(text) + len(prefix)*lineStarts
}

func (s *PrefixSource) Text() string {
	return applyPrefix(s.prefix, s.source.Text())
}

func (s *PrefixSource) Bytes() []byte {
	text := s.source.Text()
	return appendPrefixed(make([]byte, 0, prefixedSize(s.prefix, text)), s.prefix, text)
}

// The prefixed text is never built just to be measured
func (s *PrefixSource) Size() int {
	return prefixedSize(s.prefix, s.source.Text())
}

func (s *PrefixSource) Map(options Options) *sourcemap.SourceMap {
	return GetMap(s, options)
}

func (s *PrefixSource) TextAndMap(options Options) (string, *sourcemap.SourceMap) {
	return GetTextAndMap(s, options)
}

func (s *PrefixSource) UpdateHash(hash hash.Hash) {
	hash.Write([]byte("PrefixSource"))
	s.source.UpdateHash(hash)
	hash.Write([]byte(s.prefix))
}

func (s *PrefixSource) StreamChunks(options Options, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo {
	prefix := s.prefix
	prefixColumns := helpers.UTF16Len(prefix)
	linesOnly := options.LinesOnly

	info := s.source.StreamChunks(
		options,
		func(chunk string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
			switch {
			case generatedColumn != 0:
				generatedColumn += prefixColumns

			case chunk != "":
				// The prefix can only be glued onto the chunk if that doesn't
				// change what the chunk maps to
				if linesOnly || sourceIndex < 0 {
					chunk = prefix + chunk
				} else if prefixColumns > 0 {
					onChunk(prefix, generatedLine, 0, -1, -1, -1, -1)
					generatedColumn += prefixColumns
				}

			case !linesOnly:
				generatedColumn += prefixColumns
			}
			onChunk(chunk, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex)
		},
		onSource,
		onName,
	)

	if info.GeneratedColumn != 0 {
		info.GeneratedColumn += prefixColumns
	}
	if info.HasSource {
		info.Source = applyPrefix(prefix, info.Source)
	}
	return info
}
