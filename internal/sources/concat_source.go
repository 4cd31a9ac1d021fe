package sources

import (
	"hash"
	"strings"
	"sync"

	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// ConcatSource is a sequence of sources joined end to end
type ConcatSource struct {
	children []Source

	// Adjacent raw sources are merged before streaming. This is computed on
	// first use and reset by Add.
	merged      []Source
	mergedMutex sync.Mutex
}

func NewConcatSource(children ...Source) *ConcatSource {
	s := &ConcatSource{}
	s.AddAll(children...)
	return s
}

func (*ConcatSource) isSource() {}

// Add appends a child. The children of a nested ConcatSource are inlined.
// Add must not be called while the source is being read.
func (s *ConcatSource) Add(child Source) {
	if nested, ok := child.(*ConcatSource); ok {
		s.children = append(s.children, nested.children...)
	} else {
		s.children = append(s.children, child)
	}
	s.mergedMutex.Lock()
	s.merged = nil
	s.mergedMutex.Unlock()
}

func (s *ConcatSource) AddAll(children ...Source) {
	for _, child := range children {
		s.Add(child)
	}
}

func (s *ConcatSource) AddString(text string) {
	s.Add(NewRawSource(text))
}

func (s *ConcatSource) Children() []Source {
	return append([]Source(nil), s.children...)
}

func (s *ConcatSource) mergedChildren() []Source {
	s.mergedMutex.Lock()
	defer s.mergedMutex.Unlock()

	if s.merged != nil || len(s.children) == 0 {
		return s.merged
	}

	merged := make([]Source, 0, len(s.children))
	var pending []string
	flush := func() {
		switch len(pending) {
		case 0:
			return
		case 1:
			merged = append(merged, NewRawSource(pending[0]))
		default:
			merged = append(merged, NewRawSource(strings.Join(pending, "")))
		}
		pending = pending[:0]
	}
	for _, child := range s.children {
		if raw, ok := child.(*RawSource); ok {
			pending = append(pending, raw.text)
			continue
		}
		flush()
		merged = append(merged, child)
	}
	flush()

	s.merged = merged
	return merged
}

func (s *ConcatSource) Text() string {
	sb := strings.Builder{}
	for _, child := range s.mergedChildren() {
		sb.WriteString(child.Text())
	}
	return sb.String()
}

func (s *ConcatSource) Bytes() []byte {
	buffer := make([]byte, 0, s.Size())
	for _, child := range s.mergedChildren() {
		buffer = append(buffer, child.Bytes()...)
	}
	return buffer
}

func (s *ConcatSource) Size() int {
	size := 0
	for _, child := range s.children {
		size += child.Size()
	}
	return size
}

func (s *ConcatSource) Map(options Options) *sourcemap.SourceMap {
	return GetMap(s, options)
}

func (s *ConcatSource) TextAndMap(options Options) (string, *sourcemap.SourceMap) {
	return GetTextAndMap(s, options)
}

func (s *ConcatSource) UpdateHash(hash hash.Hash) {
	hash.Write([]byte("ConcatSource"))
	for _, child := range s.mergedChildren() {
		child.UpdateHash(hash)
	}
}

func (s *ConcatSource) StreamChunks(options Options, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo {
	children := s.mergedChildren()
	switch len(children) {
	case 0:
		return GeneratedInfo{GeneratedLine: 1, HasSource: options.FinalSource}
	case 1:
		return children[0].StreamChunks(options, onChunk, onSource, onName)
	}

	lineOffset := 0
	columnOffset := 0
	sources := newIndexAllocator()
	names := newIndexAllocator()
	code := strings.Builder{}

	// In final source mode a child that ends in the middle of a mapped line
	// leaves its last mapping open. The next child must close it unless it
	// starts with a chunk of its own at that exact position.
	needToCloseMapping := false
	closeMapping := func() {
		onChunk("", lineOffset+1, columnOffset, -1, -1, -1, -1)
		needToCloseMapping = false
	}

	for _, child := range children {
		var sourceIndexMapping indexMapping
		var nameIndexMapping indexMapping
		lastMappingLine := 0

		info := child.StreamChunks(
			options,
			func(chunk string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
				line := generatedLine + lineOffset
				column := generatedColumn
				if generatedLine == 1 {
					column += columnOffset
				}

				if needToCloseMapping {
					if generatedLine != 1 || generatedColumn != 0 {
						closeMapping()
					}
					needToCloseMapping = false
				}

				resultSourceIndex := sourceIndexMapping.get(sourceIndex)
				resultNameIndex := nameIndexMapping.get(nameIndex)
				if resultSourceIndex < 0 {
					lastMappingLine = 0
					originalLine, originalColumn, resultNameIndex = -1, -1, -1
				} else {
					lastMappingLine = generatedLine
				}

				if options.FinalSource {
					code.WriteString(chunk)
					chunk = ""
				}
				onChunk(chunk, line, column, resultSourceIndex, originalLine, originalColumn, resultNameIndex)
			},
			func(i int, source string, content *string) {
				index, isNew := sources.allocate(source)
				if isNew {
					onSource(index, source, content)
				}
				sourceIndexMapping.set(i, index)
			},
			func(i int, name string) {
				index, isNew := names.allocate(name)
				if isNew {
					onName(index, name)
				}
				nameIndexMapping.set(i, index)
			},
		)

		if info.HasSource {
			code.WriteString(info.Source)
		}
		if needToCloseMapping && (info.GeneratedLine != 1 || info.GeneratedColumn != 0) {
			closeMapping()
		}
		if info.GeneratedLine > 1 {
			columnOffset = info.GeneratedColumn
		} else {
			columnOffset += info.GeneratedColumn
		}
		needToCloseMapping = needToCloseMapping || (options.FinalSource && lastMappingLine == info.GeneratedLine)
		lineOffset += info.GeneratedLine - 1
	}

	return GeneratedInfo{
		GeneratedLine:   lineOffset + 1,
		GeneratedColumn: columnOffset,
		Source:          code.String(),
		HasSource:       options.FinalSource,
	}
}
