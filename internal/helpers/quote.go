package helpers

import "unicode/utf8"

const hexChars = "0123456789ABCDEF"
const firstASCII = 0x20
const lastASCII = 0x7E
const firstHighSurrogate = 0xD800
const firstLowSurrogate = 0xDC00
const lastLowSurrogate = 0xDFFF

func canPrintWithoutEscape(c rune, asciiOnly bool) bool {
	if c <= lastASCII {
		return c >= firstASCII && c != '\\' && c != '"'
	} else {
		return !asciiOnly && c != '\uFEFF' && c != '\u2028' && c != '\u2029' && (c < firstHighSurrogate || c > lastLowSurrogate)
	}
}

// QuoteForJSON returns text as a double-quoted JSON string. Invalid UTF-8 is
// replaced with U+FFFD. With "asciiOnly" every non-ASCII code point is
// written as a "\u" escape (pairs of them outside the BMP).
func QuoteForJSON(text string, asciiOnly bool) []byte {
	bytes := make([]byte, 0, len(text)+2)
	return AppendQuotedJSON(bytes, text, asciiOnly)
}

func AppendQuotedJSON(bytes []byte, text string, asciiOnly bool) []byte {
	i := 0
	n := len(text)
	bytes = append(bytes, '"')

	for i < n {
		c, width := utf8.DecodeRuneInString(text[i:])

		// Fast path: a run of characters that don't need escaping
		if canPrintWithoutEscape(c, asciiOnly) && (c != utf8.RuneError || width != 1) {
			start := i
			i += width
			for i < n {
				c, width = utf8.DecodeRuneInString(text[i:])
				if !canPrintWithoutEscape(c, asciiOnly) || (c == utf8.RuneError && width == 1) {
					break
				}
				i += width
			}
			bytes = append(bytes, text[start:i]...)
			continue
		}

		i += width

		switch c {
		case '\b':
			bytes = append(bytes, "\\b"...)

		case '\f':
			bytes = append(bytes, "\\f"...)

		case '\n':
			bytes = append(bytes, "\\n"...)

		case '\r':
			bytes = append(bytes, "\\r"...)

		case '\t':
			bytes = append(bytes, "\\t"...)

		case '\\':
			bytes = append(bytes, "\\\\"...)

		case '"':
			bytes = append(bytes, "\\\""...)

		default:
			if c <= 0xFFFF {
				bytes = append(
					bytes,
					'\\', 'u', hexChars[c>>12], hexChars[(c>>8)&15], hexChars[(c>>4)&15], hexChars[c&15],
				)
			} else {
				c -= 0x10000
				lo := firstHighSurrogate + ((c >> 10) & 0x3FF)
				hi := firstLowSurrogate + (c & 0x3FF)
				bytes = append(
					bytes,
					'\\', 'u', hexChars[lo>>12], hexChars[(lo>>8)&15], hexChars[(lo>>4)&15], hexChars[lo&15],
					'\\', 'u', hexChars[hi>>12], hexChars[(hi>>8)&15], hexChars[(hi>>4)&15], hexChars[hi&15],
				)
			}
		}
	}

	return append(bytes, '"')
}
