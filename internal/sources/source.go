package sources

// A source is a piece of generated code together with the knowledge of where
// each part of it came from. Sources compose: a chunk of a bundle is usually
// a concatenation of module wrappers, each of which prefixes and edits a leaf
// source that came straight out of a loader.
//
// Everything is built on top of one primitive, "StreamChunks", which walks
// the generated code in order and reports the mapping state at every point
// where it changes. Text, maps and hashes can all be derived from it, and
// variants only override those methods when they have a faster way to get
// the same answer.

import (
	"hash"

	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/sourcemap"
)

type Source interface {
	Text() string
	Bytes() []byte

	// The length of the generated code in bytes
	Size() int

	// Returns nil if the source doesn't carry any mappings
	Map(options Options) *sourcemap.SourceMap

	TextAndMap(options Options) (string, *sourcemap.SourceMap)
	UpdateHash(hash hash.Hash)
	StreamChunks(options Options, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo

	// Sources can only be created by this package. Other types must be
	// wrapped with "NewCompatSource".
	isSource()
}

// The zero value asks for column-accurate mappings and a full event stream
type Options struct {
	// Only track which line each generated line came from. Columns in the
	// resulting map are always zero and names are dropped.
	LinesOnly bool

	// The caller only wants the final text and map. Chunks that don't carry
	// new mapping information may be omitted and chunk text may be empty, in
	// which case the full text is returned in "GeneratedInfo.Source".
	FinalSource bool
}

// OnChunk is called for every chunk of generated code in order. Lines are
// 1-based and columns are 0-based counts of UTF-16 code units. A negative
// source index means the chunk is not mapped and a negative name index means
// it has no name. The chunk text is only ever empty in final source mode.
type OnChunk func(chunk string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int)

// OnSource is called once per original source before the first chunk that
// refers to it. Indices are dense and assigned in order of first use. The
// content is nil when it's unknown.
type OnSource func(sourceIndex int, source string, content *string)

// OnName is called once per name before the first chunk that refers to it
type OnName func(nameIndex int, name string)

// GeneratedInfo is the position just past the end of the generated code
type GeneratedInfo struct {
	GeneratedLine   int
	GeneratedColumn int

	// In final source mode some variants return their full text here instead
	// of spelling it out through the chunks
	Source    string
	HasSource bool
}

func infoForText(text string, finalSource bool) GeneratedInfo {
	line, column := helpers.GeneratedEnd(text)
	return GeneratedInfo{
		GeneratedLine:   line,
		GeneratedColumn: column,
		Source:          text,
		HasSource:       finalSource,
	}
}

func strPtr(text string) *string {
	return &text
}
