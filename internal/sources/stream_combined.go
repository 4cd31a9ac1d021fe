package sources

import (
	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// The segments of one generated line of the inner map, with the chunk of
// code each one covers
type innerLineData struct {
	mappings []sourcemap.Mapping
	chunks   []string
}

type innerSourceInfo struct {
	name    string
	content *string
}

// Streams a source map whose source "innerSourceName" was itself generated
// from other code described by "innerSourceMap". Mappings that point into
// the inner source are resolved through the inner map, so the result points
// at the code the inner map refers to.
func streamChunksOfCombinedSourceMap(
	text string,
	sm *sourcemap.SourceMap,
	innerSourceName string,
	innerSource *string,
	innerSourceMap *sourcemap.SourceMap,
	removeInnerSource bool,
	onChunk OnChunk,
	onSource OnSource,
	onName OnName,
	finalSource bool,
	columns bool,
) GeneratedInfo {
	sourceAllocator := newIndexAllocator()
	nameAllocator := newIndexAllocator()

	// Outer indices
	var sourceIndexMapping indexMapping
	var nameIndexMapping indexMapping
	var nameIndexValues []string

	// The outer index of the inner source, or "pendingIndex" until it's seen
	innerSourceIndex := pendingIndex

	// Indices of the inner map
	var innerSourceIndexMapping indexMapping
	var innerSourceValues []innerSourceInfo
	var innerSourceContentLines [][]string
	var innerSourceContentSplit []bool
	var innerNameIndexMapping indexMapping
	var innerNameValues []string
	var innerLines []innerLineData

	// Returns the index of the last inner segment at or before the column,
	// or -1 if there is none
	findInnerMapping := func(line int, column int) int {
		if line < 1 || line > len(innerLines) {
			return -1
		}
		mappings := innerLines[line-1].mappings
		l, r := 0, len(mappings)
		for l < r {
			m := (l + r) >> 1
			if mappings[m].GeneratedColumn <= column {
				l = m + 1
			} else {
				r = m
			}
		}
		return l - 1
	}

	// Lazily splits the content of an inner source into lines
	contentLinesOf := func(index int) []string {
		if index < 0 || index >= len(innerSourceValues) {
			return nil
		}
		if !innerSourceContentSplit[index] {
			innerSourceContentSplit[index] = true
			if content := innerSourceValues[index].content; content != nil && *content != "" {
				innerSourceContentLines[index] = helpers.SplitIntoLines(*content)
			}
		}
		return innerSourceContentLines[index]
	}

	// Returns the global index of a name, announcing it if needed
	globalName := func(name string) int {
		index, isNew := nameAllocator.allocate(name)
		if isNew {
			onName(index, name)
		}
		return index
	}

	// Takes a mapping into the inner source through the inner map. Returns
	// false if the inner map doesn't cover that position.
	resolveInner := func(chunk string, generatedLine, generatedColumn, originalLine, originalColumn, nameIndex int) bool {
		idx := findInnerMapping(originalLine, originalColumn)
		if idx == -1 {
			return false
		}
		data := innerLines[originalLine-1]
		inner := data.mappings[idx]
		if inner.SourceIndex < 0 {
			return false
		}
		innerOriginalColumn := inner.OriginalColumn
		innerNameIndex := inner.NameIndex

		// When the inner chunk is an identity copy of its original code, the
		// offset into the chunk can be carried over to the original column
		if locationInChunk := originalColumn - inner.GeneratedColumn; locationInChunk > 0 {
			if lines := contentLinesOf(inner.SourceIndex); lines != nil {
				originalChunk := ""
				if inner.OriginalLine >= 1 && inner.OriginalLine <= len(lines) {
					originalChunk = helpers.SliceColumns(lines[inner.OriginalLine-1], innerOriginalColumn, innerOriginalColumn+locationInChunk)
				}
				if helpers.SliceColumns(data.chunks[idx], 0, locationInChunk) == originalChunk {
					innerOriginalColumn += locationInChunk
					innerNameIndex = -1
				}
			}
		}

		// Compute the global source index, announcing the source if needed
		sourceIndex := innerSourceIndexMapping.get(inner.SourceIndex)
		if sourceIndex == pendingIndex || sourceIndex == unmapped {
			var info innerSourceInfo
			if inner.SourceIndex < len(innerSourceValues) {
				info = innerSourceValues[inner.SourceIndex]
			}
			index, isNew := sourceAllocator.allocate(info.name)
			if isNew {
				onSource(index, info.name, info.content)
			}
			sourceIndex = index
			innerSourceIndexMapping.set(inner.SourceIndex, sourceIndex)
		}

		finalNameIndex := -1
		if innerNameIndex >= 0 {
			// The inner map has a name here
			finalNameIndex = innerNameIndexMapping.get(innerNameIndex)
			if finalNameIndex == pendingIndex {
				finalNameIndex = -1
				if innerNameIndex < len(innerNameValues) && innerNameValues[innerNameIndex] != "" {
					finalNameIndex = globalName(innerNameValues[innerNameIndex])
				}
				innerNameIndexMapping.set(innerNameIndex, finalNameIndex)
			}
		} else if nameIndex >= 0 && nameIndex < len(nameIndexValues) {
			// The outer name can be used if the original code at that position
			// is that name
			if lines := contentLinesOf(inner.SourceIndex); lines != nil {
				name := nameIndexValues[nameIndex]
				originalName := ""
				if inner.OriginalLine >= 1 && inner.OriginalLine <= len(lines) {
					originalName = helpers.SliceColumns(lines[inner.OriginalLine-1], innerOriginalColumn, innerOriginalColumn+helpers.UTF16Len(name))
				}
				if name != "" && name == originalName {
					finalNameIndex = nameIndexMapping.get(nameIndex)
					if finalNameIndex == pendingIndex {
						finalNameIndex = globalName(name)
						nameIndexMapping.set(nameIndex, finalNameIndex)
					}
				}
			}
		}

		onChunk(chunk, generatedLine, generatedColumn, sourceIndex, inner.OriginalLine, innerOriginalColumn, finalNameIndex)
		return true
	}

	return streamChunksOfSourceMap(
		text,
		sm,
		func(chunk string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
			if sourceIndex >= 0 && sourceIndex == innerSourceIndex {
				if resolveInner(chunk, generatedLine, generatedColumn, originalLine, originalColumn, nameIndex) {
					return
				}

				// The inner map has nothing at this position
				if removeInnerSource {
					onChunk(chunk, generatedLine, generatedColumn, -1, -1, -1, -1)
					return
				}
				if sourceIndexMapping.get(sourceIndex) == pendingIndex {
					index, isNew := sourceAllocator.allocate(innerSourceName)
					if isNew {
						onSource(index, innerSourceName, innerSource)
					}
					sourceIndexMapping.set(sourceIndex, index)
				}
			}

			finalSourceIndex := sourceIndexMapping.get(sourceIndex)
			if finalSourceIndex < 0 {
				// No source, so this is generated code
				onChunk(chunk, generatedLine, generatedColumn, -1, -1, -1, -1)
				return
			}

			finalNameIndex := -1
			if nameIndex >= 0 && nameIndex < len(nameIndexMapping) {
				finalNameIndex = nameIndexMapping[nameIndex]
				if finalNameIndex == pendingIndex {
					finalNameIndex = globalName(nameIndexValues[nameIndex])
					nameIndexMapping[nameIndex] = finalNameIndex
				}
			}
			onChunk(chunk, generatedLine, generatedColumn, finalSourceIndex, originalLine, originalColumn, finalNameIndex)
		},
		func(i int, source string, content *string) {
			if source != innerSourceName {
				index, isNew := sourceAllocator.allocate(source)
				if isNew {
					onSource(index, source, content)
				}
				sourceIndexMapping.set(i, index)
				return
			}

			// This is the source that the inner map describes
			innerSourceIndex = i
			if innerSource != nil {
				content = innerSource
			} else {
				innerSource = content
			}
			sourceIndexMapping.set(i, pendingIndex)

			innerText := ""
			if content != nil {
				innerText = *content
			}
			streamChunksOfSourceMap(
				innerText,
				innerSourceMap,
				func(chunk string, generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
					for len(innerLines) < generatedLine {
						innerLines = append(innerLines, innerLineData{})
					}
					data := &innerLines[generatedLine-1]
					data.mappings = append(data.mappings, sourcemap.Mapping{
						GeneratedLine:   generatedLine,
						GeneratedColumn: generatedColumn,
						SourceIndex:     sourceIndex,
						OriginalLine:    originalLine,
						OriginalColumn:  originalColumn,
						NameIndex:       nameIndex,
					})
					data.chunks = append(data.chunks, chunk)
				},
				func(i int, source string, content *string) {
					for len(innerSourceValues) <= i {
						innerSourceValues = append(innerSourceValues, innerSourceInfo{})
						innerSourceContentLines = append(innerSourceContentLines, nil)
						innerSourceContentSplit = append(innerSourceContentSplit, false)
					}
					innerSourceValues[i] = innerSourceInfo{name: source, content: content}
					innerSourceContentLines[i] = nil
					innerSourceContentSplit[i] = false
					innerSourceIndexMapping.set(i, pendingIndex)
				},
				func(i int, name string) {
					for len(innerNameValues) <= i {
						innerNameValues = append(innerNameValues, "")
					}
					innerNameValues[i] = name
					innerNameIndexMapping.set(i, pendingIndex)
				},
				false,
				columns,
			)
		},
		func(i int, name string) {
			for len(nameIndexValues) <= i {
				nameIndexValues = append(nameIndexValues, "")
			}
			nameIndexValues[i] = name
			nameIndexMapping.set(i, pendingIndex)
		},
		finalSource,
		columns,
	)
}
