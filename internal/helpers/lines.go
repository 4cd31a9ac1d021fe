package helpers

import "strings"

// SplitIntoLines partitions text into lines. Every fragment except possibly
// the last one ends with "\n". Empty text yields no fragments.
func SplitIntoLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		end := strings.IndexByte(text, '\n') + 1
		if end == 0 {
			end = len(text)
		}
		lines = append(lines, text[:end])
		text = text[end:]
	}
	return lines
}

// SplitIntoPotentialTokens partitions text into fragments that break after
// runs of statement and block punctuation (";", "{", "}") and after newlines.
// A newline only ever appears as the last character of a fragment. Empty text
// yields no fragments.
func SplitIntoPotentialTokens(text string) []string {
	var tokens []string
	n := len(text)
	i := 0

	for i < n {
		start := i

		// Scan up to the next boundary character
		for i < n {
			if c := text[i]; c == '\n' || c == ';' || c == '{' || c == '}' {
				break
			}
			i++
		}

		// Swallow the run of punctuation and whitespace after it
		for i < n {
			if c := text[i]; c != ';' && c != ' ' && c != '{' && c != '}' && c != '\r' && c != '\t' {
				break
			}
			i++
		}

		// A newline terminates the fragment
		if i < n && text[i] == '\n' {
			i++
		}

		tokens = append(tokens, text[start:i])
	}

	return tokens
}

// GeneratedEnd returns the position just past the end of text: the 1-based
// line and the 0-based UTF-16 column on that line.
func GeneratedEnd(text string) (line int, column int) {
	lastLineStart := strings.LastIndexByte(text, '\n')
	if lastLineStart == -1 {
		return 1, UTF16Len(text)
	}
	return strings.Count(text[:lastLineStart], "\n") + 2, UTF16Len(text[lastLineStart+1:])
}
