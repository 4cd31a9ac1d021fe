package sources

import (
	"strings"

	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// Collects the pieces of a source map from a chunk stream
type mapCollector struct {
	mappings       *sourcemap.MappingsBuilder
	sources        []string
	sourcesContent []*string
	names          []string
	hasContent     bool
}

func newMapCollector(linesOnly bool) *mapCollector {
	return &mapCollector{mappings: sourcemap.NewMappingsBuilder(linesOnly)}
}

func (c *mapCollector) addMapping(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
	c.mappings.AddMapping(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex)
}

func (c *mapCollector) onSource(sourceIndex int, source string, content *string) {
	for len(c.sources) <= sourceIndex {
		c.sources = append(c.sources, "")
		c.sourcesContent = append(c.sourcesContent, nil)
	}
	c.sources[sourceIndex] = source
	c.sourcesContent[sourceIndex] = content
	if content != nil {
		c.hasContent = true
	}
}

func (c *mapCollector) onName(nameIndex int, name string) {
	for len(c.names) <= nameIndex {
		c.names = append(c.names, "")
	}
	c.names[nameIndex] = name
}

// The sources and names that were announced, for streams that didn't map
// anything
func (c *mapCollector) announcements() *Announcements {
	return &Announcements{
		Sources:        c.sources,
		SourcesContent: c.sourcesContent,
		Names:          c.names,
	}
}

// Returns nil if no mapping was written
func (c *mapCollector) sourceMap() *sourcemap.SourceMap {
	if c.mappings.Len() == 0 {
		return nil
	}
	sm := &sourcemap.SourceMap{
		File:     "x",
		Sources:  c.sources,
		Names:    c.names,
		Mappings: c.mappings.String(),
	}
	if sm.Sources == nil {
		sm.Sources = []string{}
	}
	if sm.Names == nil {
		sm.Names = []string{}
	}
	if c.hasContent {
		sm.SourcesContent = c.sourcesContent
	}
	return sm
}

// GetMap computes the map of any source from its chunk stream
func GetMap(source Source, options Options) *sourcemap.SourceMap {
	collector := newMapCollector(options.LinesOnly)
	source.StreamChunks(
		Options{LinesOnly: options.LinesOnly, FinalSource: true},
		func(_ string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
			collector.addMapping(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex)
		},
		collector.onSource,
		collector.onName,
	)
	return collector.sourceMap()
}

// GetTextAndMap computes the text and map of any source in a single pass
func GetTextAndMap(source Source, options Options) (string, *sourcemap.SourceMap) {
	collector := newMapCollector(options.LinesOnly)
	sb := strings.Builder{}
	info := source.StreamChunks(
		Options{LinesOnly: options.LinesOnly, FinalSource: true},
		func(chunk string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
			sb.WriteString(chunk)
			collector.addMapping(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex)
		},
		collector.onSource,
		collector.onName,
	)
	if info.HasSource {
		return info.Source, collector.sourceMap()
	}
	return sb.String(), collector.sourceMap()
}

// GetText computes the text of any source from its chunk stream
func GetText(source Source) string {
	sb := strings.Builder{}
	info := source.StreamChunks(
		Options{FinalSource: true},
		func(chunk string, _, _, _, _, _, _ int) {
			sb.WriteString(chunk)
		},
		func(int, string, *string) {},
		func(int, string) {},
	)
	if info.HasSource {
		return info.Source
	}
	return sb.String()
}

// Streams a source while also capturing its text and map so that they can
// be cached. The map is serialized with the same fidelity the stream uses.
func streamAndGetTextAndMap(
	source Source,
	options Options,
	onChunk OnChunk,
	onSource OnSource,
	onName OnName,
) (GeneratedInfo, string, *mapCollector) {
	collector := newMapCollector(options.LinesOnly)
	sb := strings.Builder{}
	info := source.StreamChunks(
		options,
		func(chunk string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
			sb.WriteString(chunk)
			collector.addMapping(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex)
			if options.FinalSource {
				chunk = ""
			}
			onChunk(chunk, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex)
		},
		func(sourceIndex int, source string, content *string) {
			collector.onSource(sourceIndex, source, content)
			onSource(sourceIndex, source, content)
		},
		func(nameIndex int, name string) {
			collector.onName(nameIndex, name)
			onName(nameIndex, name)
		},
	)
	text := sb.String()
	if info.HasSource {
		text = info.Source
	}
	if options.FinalSource {
		info.Source = text
		info.HasSource = true
	} else {
		info.Source = ""
		info.HasSource = false
	}
	return info, text, collector
}
