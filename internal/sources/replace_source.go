package sources

import (
	"fmt"
	"hash"
	"strings"

	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/sourcemap"
	"golang.org/x/exp/slices"
)

// Replacement substitutes "Content" for the bytes from "Start" to "End" of
// the generated text, both inclusive. An insertion is a replacement whose
// end is one before its start. Ranges must not overlap.
type Replacement struct {
	Start   int
	End     int
	Content string

	// Attached to the first line of "Content" if that line is mapped
	Name string
}

// ReplaceBuilder collects edits to a source. Call "Build" to get a source
// with the edits applied. The builder can keep collecting edits afterward
// without affecting sources it has already built.
type ReplaceBuilder struct {
	source       Source
	name         string
	replacements []Replacement
}

func NewReplaceBuilder(source Source, name string) *ReplaceBuilder {
	return &ReplaceBuilder{source: source, name: name}
}

func (b *ReplaceBuilder) Replace(start int, end int, content string, name string) {
	b.replacements = append(b.replacements, Replacement{Start: start, End: end, Content: content, Name: name})
}

// Insertions at the same position end up in the order they were made
func (b *ReplaceBuilder) Insert(pos int, content string, name string) {
	b.replacements = append(b.replacements, Replacement{Start: pos, End: pos - 1, Content: content, Name: name})
}

func (b *ReplaceBuilder) Len() int {
	return len(b.replacements)
}

func (b *ReplaceBuilder) Build() *ReplaceSource {
	replacements := append([]Replacement(nil), b.replacements...)
	slices.SortStableFunc(replacements, func(a Replacement, b Replacement) bool {
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
	return &ReplaceSource{
		source:       b.source,
		name:         b.name,
		replacements: replacements,
	}
}

// ReplaceSource is another source with a sorted list of edits applied
type ReplaceSource struct {
	source       Source
	name         string
	replacements []Replacement
}

func (*ReplaceSource) isSource() {}

func (s *ReplaceSource) Original() Source {
	return s.source
}

func (s *ReplaceSource) Name() string {
	return s.name
}

// The edits sorted by position. The returned slice must not be modified.
func (s *ReplaceSource) Replacements() []Replacement {
	return s.replacements
}

func (s *ReplaceSource) Text() string {
	if len(s.replacements) == 0 {
		return s.source.Text()
	}

	current := s.source.Text()
	pos := 0
	sb := strings.Builder{}
	sb.Grow(len(current))

	for _, r := range s.replacements {
		if pos < r.Start {
			offset := r.Start - pos
			if offset > len(current) {
				offset = len(current)
			}
			sb.WriteString(current[:offset])
			current = current[offset:]
			pos = r.Start
		}
		sb.WriteString(r.Content)
		if end := r.End + 1; pos < end {
			offset := end - pos
			if offset > len(current) {
				offset = len(current)
			}
			current = current[offset:]
			pos = end
		}
	}

	sb.WriteString(current)
	return sb.String()
}

func (s *ReplaceSource) Bytes() []byte {
	return []byte(s.Text())
}

func (s *ReplaceSource) Size() int {
	return len(s.Text())
}

func (s *ReplaceSource) Map(options Options) *sourcemap.SourceMap {
	if len(s.replacements) == 0 {
		return s.source.Map(options)
	}
	return GetMap(s, options)
}

func (s *ReplaceSource) TextAndMap(options Options) (string, *sourcemap.SourceMap) {
	if len(s.replacements) == 0 {
		return s.source.TextAndMap(options)
	}
	return GetTextAndMap(s, options)
}

func (s *ReplaceSource) UpdateHash(hash hash.Hash) {
	hash.Write([]byte("ReplaceSource"))
	s.source.UpdateHash(hash)
	hash.Write([]byte(s.name))
	for _, r := range s.replacements {
		fmt.Fprintf(hash, "%d:%d:%q:%q", r.Start, r.End, r.Content, r.Name)
	}
}

// Positions past this are treated as "no more replacements"
const maxSourcePosition = 0x20000000

type replaceState struct {
	replacements []Replacement

	// Byte offset into the generated text of the wrapped source
	pos int

	// Everything before this offset is covered by a replacement
	replacementEnd int

	i               int
	nextReplacement int

	// Deleting and inserting text moves everything after it. Lines shift by
	// "lineOffset" and columns on "columnOffsetLine" (in the output) shift by
	// "columnOffset".
	lineOffset       int
	columnOffset     int
	columnOffsetLine int

	// Lazily split contents of the wrapped source's sources
	sourceContents []*string
	contentLines   map[int][]string

	names            indexAllocator
	nameIndexMapping indexMapping

	onChunk OnChunk
	onName  OnName
}

func (r *replaceState) advance() {
	r.i++
	if r.i < len(r.replacements) {
		r.nextReplacement = r.replacements[r.i].Start
	} else {
		r.nextReplacement = maxSourcePosition
	}
}

// Original columns are only moved forward over text that demonstrably came
// from the original file. Otherwise the mapping stays where it was.
func (r *replaceState) checkOriginalContent(sourceIndex, originalLine, originalColumn int, expected string) bool {
	if sourceIndex < 0 || sourceIndex >= len(r.sourceContents) || r.sourceContents[sourceIndex] == nil {
		return false
	}
	lines, ok := r.contentLines[sourceIndex]
	if !ok {
		lines = helpers.SplitIntoLines(*r.sourceContents[sourceIndex])
		r.contentLines[sourceIndex] = lines
	}
	if originalLine < 1 || originalLine > len(lines) {
		return false
	}
	return helpers.HasPrefixAtColumn(lines[originalLine-1], originalColumn, expected)
}

func (r *replaceState) column(line int, generatedColumn int) int {
	if line == r.columnOffsetLine {
		return generatedColumn + r.columnOffset
	}
	return generatedColumn
}

// Moves the column correction of "line" by "delta"
func (r *replaceState) shiftColumns(line int, delta int) {
	if r.columnOffsetLine == line {
		r.columnOffset += delta
	} else {
		r.columnOffset = delta
		r.columnOffsetLine = line
	}
}

// Drops the rest of a chunk that is covered by a replacement. The chunk
// text from "chunkPos" onward is not emitted.
func (r *replaceState) skipRestOfChunk(chunk string, chunkPos int, generatedLine int, generatedColumn int) {
	line := generatedLine + r.lineOffset
	if strings.HasSuffix(chunk, "\n") {
		// The next line continues where this one was cut off
		r.lineOffset--
		r.shiftColumns(line, generatedColumn)
	} else {
		r.shiftColumns(line, -helpers.UTF16Len(chunk[chunkPos:]))
	}
}

// Emits replacement content split into lines. Returns the line that
// follows it.
func (r *replaceState) emitContent(content string, line int, generatedColumn int, sourceIndex, originalLine, originalColumn, nameIndex int) int {
	lines := helpers.SplitIntoLines(content)
	for m, contentLine := range lines {
		r.onChunk(contentLine, line, r.column(line, generatedColumn), sourceIndex, originalLine, originalColumn, nameIndex)

		// Only the first line carries the name
		nameIndex = -1

		if m == len(lines)-1 && !strings.HasSuffix(contentLine, "\n") {
			r.shiftColumns(line, helpers.UTF16Len(contentLine))
		} else {
			r.lineOffset++
			line++
			r.columnOffset = -generatedColumn
			r.columnOffsetLine = line
		}
	}
	return line
}

func (r *replaceState) onSource(sourceIndex int, source string, content *string, onSource OnSource) {
	for len(r.sourceContents) <= sourceIndex {
		r.sourceContents = append(r.sourceContents, nil)
	}
	r.sourceContents[sourceIndex] = content
	delete(r.contentLines, sourceIndex)
	onSource(sourceIndex, source, content)
}

func (r *replaceState) allocateName(name string) int {
	index, isNew := r.names.allocate(name)
	if isNew {
		r.onName(index, name)
	}
	return index
}

func (r *replaceState) onChildChunk(chunk string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
	chunkPos := 0
	endPos := r.pos + len(chunk)

	if r.replacementEnd > r.pos {
		if r.replacementEnd >= endPos {
			r.skipRestOfChunk(chunk, 0, generatedLine, generatedColumn)
			r.pos = endPos
			return
		}

		// Skip over the part of the chunk that was replaced
		chunkPos = r.replacementEnd - r.pos
		skipped := chunk[:chunkPos]
		columns := helpers.UTF16Len(skipped)
		if r.checkOriginalContent(sourceIndex, originalLine, originalColumn, skipped) {
			originalColumn += columns
		}
		r.pos += chunkPos
		r.shiftColumns(generatedLine+r.lineOffset, -columns)
		generatedColumn += columns
	}

	for r.nextReplacement < endPos {
		line := generatedLine + r.lineOffset

		if r.nextReplacement > r.pos {
			// Emit the chunk up to the replacement
			offset := r.nextReplacement - r.pos
			slice := chunk[chunkPos : chunkPos+offset]
			r.onChunk(slice, line, r.column(line, generatedColumn), sourceIndex, originalLine, originalColumn, r.nameIndexMapping.get(nameIndex))
			columns := helpers.UTF16Len(slice)
			generatedColumn += columns
			chunkPos += offset
			r.pos = r.nextReplacement
			if r.checkOriginalContent(sourceIndex, originalLine, originalColumn, slice) {
				originalColumn += columns
			}
		}

		replacement := r.replacements[r.i]
		replacementNameIndex := r.nameIndexMapping.get(nameIndex)
		if sourceIndex >= 0 && replacement.Name != "" {
			replacementNameIndex = r.allocateName(replacement.Name)
		}
		r.emitContent(replacement.Content, line, generatedColumn, sourceIndex, originalLine, originalColumn, replacementNameIndex)

		if end := replacement.End + 1; end > r.replacementEnd {
			r.replacementEnd = end
		}
		r.advance()

		// Skip over whatever the replacement covers
		if offset := r.replacementEnd - r.pos; offset > 0 {
			if r.replacementEnd >= endPos {
				r.skipRestOfChunk(chunk, chunkPos, generatedLine, generatedColumn)
				r.pos = endPos
				return
			}

			skipped := chunk[chunkPos : chunkPos+offset]
			columns := helpers.UTF16Len(skipped)
			if r.checkOriginalContent(sourceIndex, originalLine, originalColumn, skipped) {
				originalColumn += columns
			}
			chunkPos += offset
			r.pos += offset
			r.shiftColumns(generatedLine+r.lineOffset, -columns)
			generatedColumn += columns
		}
	}

	if chunkPos < len(chunk) {
		line := generatedLine + r.lineOffset
		r.onChunk(chunk[chunkPos:], line, r.column(line, generatedColumn), sourceIndex, originalLine, originalColumn, r.nameIndexMapping.get(nameIndex))
	}
	r.pos = endPos
}

func (s *ReplaceSource) StreamChunks(options Options, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo {
	if len(s.replacements) == 0 {
		return s.source.StreamChunks(options, onChunk, onSource, onName)
	}

	r := &replaceState{
		replacements:    s.replacements,
		replacementEnd:  -1,
		nextReplacement: s.replacements[0].Start,
		contentLines:    make(map[int][]string),
		names:           newIndexAllocator(),
		onChunk:         onChunk,
		onName:          onName,
	}

	// The wrapped source must spell out its text so that it can be cut. It
	// always streams with columns: cutting a whole-line chunk would start the
	// next line at a position the column map doesn't have. A lines-only
	// caller coarsens the result itself.
	info := s.source.StreamChunks(
		Options{},
		r.onChildChunk,
		func(sourceIndex int, source string, content *string) {
			r.onSource(sourceIndex, source, content, onSource)
		},
		func(nameIndex int, name string) {
			r.nameIndexMapping.set(nameIndex, r.allocateName(name))
		},
	)

	// Edits past the end of the text are appended without a mapping
	remainder := strings.Builder{}
	for ; r.i < len(s.replacements); r.i++ {
		remainder.WriteString(s.replacements[r.i].Content)
	}
	line := info.GeneratedLine + r.lineOffset
	line = r.emitContent(remainder.String(), line, info.GeneratedColumn, -1, -1, -1, -1)

	return GeneratedInfo{
		GeneratedLine:   line,
		GeneratedColumn: r.column(line, info.GeneratedColumn),
	}
}
