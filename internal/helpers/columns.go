package helpers

import "unicode/utf8"

// Source map columns count UTF-16 code units while Go strings are indexed by
// bytes. These helpers convert between the two. Invalid UTF-8 bytes count as
// one code unit each, which matches what a decoder would substitute.

func UTF16Len(text string) int {
	n := 0
	for i := 0; i < len(text); {
		if text[i] < 0x80 {
			n++
			i++
			continue
		}
		c, width := utf8.DecodeRuneInString(text[i:])
		if c > 0xFFFF {
			n += 2
		} else {
			n++
		}
		i += width
	}
	return n
}

// AdvanceColumns moves forward from the byte offset "start" by "columns"
// UTF-16 code units and returns the resulting byte offset. The result is
// clamped to the end of the text. A column that falls in the middle of a
// surrogate pair resolves to the end of that code point.
func AdvanceColumns(text string, start int, columns int) int {
	i := start
	n := len(text)
	for columns > 0 && i < n {
		if text[i] < 0x80 {
			i++
			columns--
			continue
		}
		c, width := utf8.DecodeRuneInString(text[i:])
		if c > 0xFFFF {
			columns -= 2
		} else {
			columns--
		}
		i += width
	}
	if i > n {
		i = n
	}
	return i
}

func ColumnToByteOffset(text string, column int) int {
	return AdvanceColumns(text, 0, column)
}

// SliceColumns is like "text[from:to]" with both bounds in UTF-16 code units
func SliceColumns(text string, from int, to int) string {
	if to <= from {
		return ""
	}
	start := ColumnToByteOffset(text, from)
	return text[start:AdvanceColumns(text, start, to-from)]
}

// HasPrefixAtColumn reports whether "prefix" occurs in "text" starting at
// the given UTF-16 column
func HasPrefixAtColumn(text string, column int, prefix string) bool {
	start := ColumnToByteOffset(text, column)
	return len(text)-start >= len(prefix) && text[start:start+len(prefix)] == prefix
}
