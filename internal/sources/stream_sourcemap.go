package sources

import (
	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/sourcemap"
)

// Streams generated code that comes with a source map by slicing the code at
// every segment boundary of the map
func streamChunksOfSourceMap(
	text string,
	sm *sourcemap.SourceMap,
	onChunk OnChunk,
	onSource OnSource,
	onName OnName,
	finalSource bool,
	columns bool,
) GeneratedInfo {
	switch {
	case columns && finalSource:
		return streamChunksOfSourceMapFinal(text, sm, onChunk, onSource, onName)
	case columns:
		return streamChunksOfSourceMapFull(text, sm, onChunk, onSource, onName)
	case finalSource:
		return streamChunksOfSourceMapLinesFinal(text, sm, onChunk, onSource)
	default:
		return streamChunksOfSourceMapLinesFull(text, sm, onChunk, onSource)
	}
}

func announceSources(sm *sourcemap.SourceMap, onSource OnSource) {
	for i := range sm.Sources {
		onSource(i, sm.SourceAt(i), sm.ContentAt(i))
	}
}

func announceNames(sm *sourcemap.SourceMap, onName OnName) {
	for i, name := range sm.Names {
		onName(i, name)
	}
}

func endOfLines(lines []string) (int, int) {
	last := lines[len(lines)-1]
	if last[len(last)-1] == '\n' {
		return len(lines) + 1, 0
	}
	return len(lines), helpers.UTF16Len(last)
}

func streamChunksOfSourceMapFull(text string, sm *sourcemap.SourceMap, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo {
	lines := helpers.SplitIntoLines(text)
	if len(lines) == 0 {
		return GeneratedInfo{GeneratedLine: 1}
	}
	announceSources(sm, onSource)
	announceNames(sm, onName)

	finalLine, finalColumn := endOfLines(lines)

	// The current position is kept both as a column and as a byte offset
	// into the current line
	currentLine := 1
	currentColumn := 0
	currentOffset := 0

	mappingActive := false
	activeSourceIndex := -1
	activeOriginalLine := -1
	activeOriginalColumn := -1
	activeNameIndex := -1

	onMapping := func(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
		// Flush the chunk covered by the active mapping
		if mappingActive && currentLine <= len(lines) {
			line := lines[currentLine-1]
			mappingLine := currentLine
			mappingColumn := currentColumn
			var chunk string
			if generatedLine != currentLine {
				chunk = line[currentOffset:]
				currentLine++
				currentColumn = 0
				currentOffset = 0
			} else {
				end := helpers.AdvanceColumns(line, currentOffset, generatedColumn-currentColumn)
				chunk = line[currentOffset:end]
				currentColumn = generatedColumn
				currentOffset = end
			}
			if chunk != "" {
				onChunk(chunk, mappingLine, mappingColumn, activeSourceIndex, activeOriginalLine, activeOriginalColumn, activeNameIndex)
			}
			mappingActive = false
		}

		// Emit the unmapped rest of the current line
		if generatedLine > currentLine && currentColumn > 0 {
			if currentLine <= len(lines) {
				if chunk := lines[currentLine-1][currentOffset:]; chunk != "" {
					onChunk(chunk, currentLine, currentColumn, -1, -1, -1, -1)
				}
			}
			currentLine++
			currentColumn = 0
			currentOffset = 0
		}

		// Emit unmapped lines in between
		for generatedLine > currentLine {
			if currentLine <= len(lines) {
				onChunk(lines[currentLine-1], currentLine, 0, -1, -1, -1, -1)
			}
			currentLine++
		}

		// Emit the unmapped start of the line
		if generatedColumn > currentColumn {
			if currentLine <= len(lines) {
				line := lines[currentLine-1]
				end := helpers.AdvanceColumns(line, currentOffset, generatedColumn-currentColumn)
				if chunk := line[currentOffset:end]; chunk != "" {
					onChunk(chunk, currentLine, currentColumn, -1, -1, -1, -1)
				}
				currentOffset = end
			}
			currentColumn = generatedColumn
		}

		// Mappings past the end of the code are ignored
		if sourceIndex >= 0 && (generatedLine < finalLine || (generatedLine == finalLine && generatedColumn < finalColumn)) {
			mappingActive = true
			activeSourceIndex = sourceIndex
			activeOriginalLine = originalLine
			activeOriginalColumn = originalColumn
			activeNameIndex = nameIndex
		}
	}

	sourcemap.ReadMappings(sm.Mappings, onMapping)
	onMapping(finalLine, finalColumn, -1, -1, -1, -1)
	return GeneratedInfo{GeneratedLine: finalLine, GeneratedColumn: finalColumn}
}

func streamChunksOfSourceMapLinesFull(text string, sm *sourcemap.SourceMap, onChunk OnChunk, onSource OnSource) GeneratedInfo {
	lines := helpers.SplitIntoLines(text)
	if len(lines) == 0 {
		return GeneratedInfo{GeneratedLine: 1}
	}
	announceSources(sm, onSource)

	currentLine := 1

	sourcemap.ReadMappings(sm.Mappings, func(generatedLine, _, sourceIndex, originalLine, originalColumn, _ int) {
		if sourceIndex < 0 || generatedLine < currentLine || generatedLine > len(lines) {
			return
		}
		for generatedLine > currentLine {
			onChunk(lines[currentLine-1], currentLine, 0, -1, -1, -1, -1)
			currentLine++
		}
		onChunk(lines[generatedLine-1], generatedLine, 0, sourceIndex, originalLine, originalColumn, -1)
		currentLine++
	})

	for ; currentLine <= len(lines); currentLine++ {
		onChunk(lines[currentLine-1], currentLine, 0, -1, -1, -1, -1)
	}

	finalLine, finalColumn := endOfLines(lines)
	return GeneratedInfo{GeneratedLine: finalLine, GeneratedColumn: finalColumn}
}

func streamChunksOfSourceMapFinal(text string, sm *sourcemap.SourceMap, onChunk OnChunk, onSource OnSource, onName OnName) GeneratedInfo {
	info := infoForText(text, true)
	finalLine := info.GeneratedLine
	finalColumn := info.GeneratedColumn
	if finalLine == 1 && finalColumn == 0 {
		return info
	}
	announceSources(sm, onSource)
	announceNames(sm, onName)

	mappingActiveLine := 0

	sourcemap.ReadMappings(sm.Mappings, func(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
		if generatedLine >= finalLine && (generatedColumn >= finalColumn || generatedLine > finalLine) {
			return
		}
		if sourceIndex >= 0 {
			onChunk("", generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex)
			mappingActiveLine = generatedLine
		} else if mappingActiveLine == generatedLine {
			onChunk("", generatedLine, generatedColumn, -1, -1, -1, -1)
			mappingActiveLine = 0
		}
	})
	return info
}

func streamChunksOfSourceMapLinesFinal(text string, sm *sourcemap.SourceMap, onChunk OnChunk, onSource OnSource) GeneratedInfo {
	info := infoForText(text, true)
	if info.GeneratedLine == 1 && info.GeneratedColumn == 0 {
		return info
	}
	announceSources(sm, onSource)

	finalLine := info.GeneratedLine
	if info.GeneratedColumn == 0 {
		finalLine--
	}

	currentLine := 1

	sourcemap.ReadMappings(sm.Mappings, func(generatedLine, _, sourceIndex, originalLine, originalColumn, _ int) {
		if sourceIndex >= 0 && currentLine <= generatedLine && generatedLine <= finalLine {
			onChunk("", generatedLine, 0, sourceIndex, originalLine, originalColumn, -1)
			currentLine = generatedLine + 1
		}
	})
	return info
}
