package sourcemap

import "strconv"

type Mapping struct {
	GeneratedLine   int // 1-based
	GeneratedColumn int // 0-based count of UTF-16 code units

	SourceIndex    int // 0-based, or -1 for a segment without an original position
	OriginalLine   int // 1-based
	OriginalColumn int // 0-based count of UTF-16 code units
	NameIndex      int // 0-based, or -1 when there is no name
}

type OnMapping func(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int)

// ReadMappings decodes a "mappings" string and reports each segment with
// absolute values. Segments with one field are reported with all original
// fields set to -1. On a single line a segment is only reported if its
// generated column is past the previous one so that consumers always see
// increasing positions. Characters outside the VLQ alphabet are ignored.
func ReadMappings(mappings string, onMapping OnMapping) {
	// generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex
	data := [5]int{0, 0, 1, 0, 0}
	dataLen := 0
	vlq := 0
	shift := 0
	generatedLine := 1
	generatedColumn := -1

	emit := func() {
		switch dataLen {
		case 1:
			onMapping(generatedLine, data[0], -1, -1, -1, -1)
		case 4:
			onMapping(generatedLine, data[0], data[1], data[2], data[3], -1)
		case 5:
			onMapping(generatedLine, data[0], data[1], data[2], data[3], data[4])
		}
	}

	for i := 0; i < len(mappings); i++ {
		digit := digitValues[mappings[i]]

		switch {
		case digit == invalidDigit:
			continue

		case digit >= segmentEnd:
			if data[0] > generatedColumn {
				emit()
				generatedColumn = data[0]
			}
			dataLen = 0
			if digit == lineEnd {
				generatedLine++
				data[0] = 0
				generatedColumn = -1
			}

		case (digit & vlqContinuationBit) == 0:
			// This is the last digit of this value
			vlq |= int(digit) << shift
			value := vlq >> 1
			if (vlq & 1) != 0 {
				value = -value
			}
			if dataLen < len(data) {
				data[dataLen] += value
			}
			dataLen++
			vlq = 0
			shift = 0

		default:
			vlq |= int(digit&vlqDataMask) << shift
			shift += 5
		}
	}

	// The last segment has no terminator
	if data[0] > generatedColumn {
		emit()
	}
}

func DecodeMappings(mappings string) []Mapping {
	var result []Mapping
	ReadMappings(mappings, func(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
		result = append(result, Mapping{
			GeneratedLine:   generatedLine,
			GeneratedColumn: generatedColumn,
			SourceIndex:     sourceIndex,
			OriginalLine:    originalLine,
			OriginalColumn:  originalColumn,
			NameIndex:       nameIndex,
		})
	})
	return result
}

// MappingsBuilder serializes mappings in generated order. Redundant
// segments are dropped as they arrive: a segment at a column that already
// has one, a segment that repeats the active original position on the same
// line, or an unmapped segment when nothing is mapped. In lines-only mode
// only the first mapped segment of each generated line is written, always at
// column 0 and without a name.
type MappingsBuilder struct {
	buffer    []byte
	linesOnly bool

	prevLine           int
	prevColumn         int
	prevSourceIndex    int
	prevOriginalLine   int
	prevOriginalColumn int
	prevNameIndex      int

	lastWrittenLine int
	activeMapping   bool
	activeName      bool
	initial         bool
}

func NewMappingsBuilder(linesOnly bool) *MappingsBuilder {
	return &MappingsBuilder{
		linesOnly:        linesOnly,
		prevLine:         1,
		prevOriginalLine: 1,
		initial:          true,
	}
}

func (b *MappingsBuilder) AddMapping(generatedLine, generatedColumn, sourceIndex, originalLine, originalColumn, nameIndex int) {
	if b.linesOnly {
		b.addLineMapping(generatedLine, sourceIndex, originalLine)
		return
	}

	// Decoders keep the first segment at a column, so a later one would only
	// be lost on the next round trip
	if !b.initial && b.prevLine == generatedLine && b.prevColumn == generatedColumn {
		return
	}

	if b.activeMapping && b.prevLine == generatedLine {
		// Don't repeat the original position that is already active
		if sourceIndex == b.prevSourceIndex &&
			originalLine == b.prevOriginalLine &&
			originalColumn == b.prevOriginalColumn &&
			!b.activeName && nameIndex < 0 {
			return
		}
	} else if sourceIndex < 0 {
		// Nothing to terminate
		return
	}

	if b.prevLine < generatedLine {
		b.writeLineBreaks(generatedLine - b.prevLine)
		b.prevLine = generatedLine
		b.prevColumn = 0
		b.initial = false
	} else if b.initial {
		b.initial = false
	} else {
		b.buffer = append(b.buffer, ',')
	}

	b.buffer = encodeVLQ(b.buffer, generatedColumn-b.prevColumn)
	b.prevColumn = generatedColumn

	if sourceIndex < 0 {
		b.activeMapping = false
		return
	}
	b.activeMapping = true

	b.buffer = encodeVLQ(b.buffer, sourceIndex-b.prevSourceIndex)
	b.prevSourceIndex = sourceIndex
	b.buffer = encodeVLQ(b.buffer, originalLine-b.prevOriginalLine)
	b.prevOriginalLine = originalLine
	b.buffer = encodeVLQ(b.buffer, originalColumn-b.prevOriginalColumn)
	b.prevOriginalColumn = originalColumn

	if nameIndex >= 0 {
		b.buffer = encodeVLQ(b.buffer, nameIndex-b.prevNameIndex)
		b.prevNameIndex = nameIndex
		b.activeName = true
	} else {
		b.activeName = false
	}
}

func (b *MappingsBuilder) addLineMapping(generatedLine, sourceIndex, originalLine int) {
	if sourceIndex < 0 || b.lastWrittenLine == generatedLine {
		return
	}
	b.lastWrittenLine = generatedLine

	b.writeLineBreaks(generatedLine - b.prevLine)
	b.prevLine = generatedLine

	// The generated column is always zero
	b.buffer = append(b.buffer, 'A')

	if sourceIndex == b.prevSourceIndex {
		if originalLine == b.prevOriginalLine+1 {
			// By far the most common segment: same source, next line
			b.prevOriginalLine = originalLine
			b.buffer = append(b.buffer, "ACA"...)
			return
		}
		b.buffer = append(b.buffer, 'A')
	} else {
		b.buffer = encodeVLQ(b.buffer, sourceIndex-b.prevSourceIndex)
		b.prevSourceIndex = sourceIndex
	}
	b.buffer = encodeVLQ(b.buffer, originalLine-b.prevOriginalLine)
	b.prevOriginalLine = originalLine
	b.buffer = append(b.buffer, 'A')
}

func (b *MappingsBuilder) writeLineBreaks(count int) {
	for ; count > 0; count-- {
		b.buffer = append(b.buffer, ';')
	}
}

func (b *MappingsBuilder) Len() int {
	return len(b.buffer)
}

func (b *MappingsBuilder) String() string {
	return string(b.buffer)
}

func EncodeMappings(mappings []Mapping, linesOnly bool) string {
	b := NewMappingsBuilder(linesOnly)
	for _, m := range mappings {
		b.AddMapping(m.GeneratedLine, m.GeneratedColumn, m.SourceIndex, m.OriginalLine, m.OriginalColumn, m.NameIndex)
	}
	return b.String()
}

// Find returns the segment covering the given generated position, or nil if
// no segment starts at or before it on the same line. The mappings must be
// sorted in generated order.
func Find(mappings []Mapping, line int, column int) *Mapping {
	// Binary search
	count := len(mappings)
	index := 0
	for count > 0 {
		step := count / 2
		i := index + step
		mapping := mappings[i]
		if mapping.GeneratedLine < line || (mapping.GeneratedLine == line && mapping.GeneratedColumn <= column) {
			index = i + 1
			count -= step + 1
		} else {
			count = step
		}
	}

	// Match the behavior of the popular "source-map" library from Mozilla
	if index > 0 {
		if mapping := &mappings[index-1]; mapping.GeneratedLine == line {
			return mapping
		}
	}
	return nil
}

// String renders a segment as "line:column -> source:line:column #name"
func (m Mapping) String() string {
	text := strconv.Itoa(m.GeneratedLine) + ":" + strconv.Itoa(m.GeneratedColumn)
	if m.SourceIndex >= 0 {
		text += " -> " + strconv.Itoa(m.SourceIndex) + ":" + strconv.Itoa(m.OriginalLine) + ":" + strconv.Itoa(m.OriginalColumn)
		if m.NameIndex >= 0 {
			text += " #" + strconv.Itoa(m.NameIndex)
		}
	}
	return text
}
