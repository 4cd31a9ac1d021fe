package helpers

import (
	"testing"

	"github.com/webpack/webpack-sources/internal/test"
)

func TestUTF16Len(t *testing.T) {
	test.AssertEqual(t, UTF16Len(""), 0)
	test.AssertEqual(t, UTF16Len("abc"), 3)
	test.AssertEqual(t, UTF16Len("π"), 1)
	test.AssertEqual(t, UTF16Len("a😀b"), 4)
	test.AssertEqual(t, UTF16Len("\xff"), 1)
}

func TestColumnConversions(t *testing.T) {
	text := "aπ😀b"
	test.AssertEqual(t, ColumnToByteOffset(text, 0), 0)
	test.AssertEqual(t, ColumnToByteOffset(text, 1), 1)
	test.AssertEqual(t, ColumnToByteOffset(text, 2), 3)
	test.AssertEqual(t, ColumnToByteOffset(text, 4), 7)
	test.AssertEqual(t, ColumnToByteOffset(text, 5), 8)
	test.AssertEqual(t, ColumnToByteOffset(text, 99), 8)
	test.AssertEqual(t, AdvanceColumns(text, 3, 2), 7)

	test.AssertEqual(t, SliceColumns(text, 1, 4), "π😀")
	test.AssertEqual(t, SliceColumns(text, 4, 2), "")
	test.AssertEqual(t, SliceColumns("abc", 1, 10), "bc")

	test.AssertEqual(t, HasPrefixAtColumn("let π = 1", 4, "π = "), true)
	test.AssertEqual(t, HasPrefixAtColumn("let π = 1", 4, "x"), false)
	test.AssertEqual(t, HasPrefixAtColumn("ab", 5, ""), true)
	test.AssertEqual(t, HasPrefixAtColumn("ab", 1, "bc"), false)
}

func TestQuoteForJSON(t *testing.T) {
	test.AssertEqual(t, string(QuoteForJSON("a\"b\\c\n", false)), `"a\"b\\c\n"`)
	test.AssertEqual(t, string(QuoteForJSON("\u03c0", false)), "\"\u03c0\"")
	test.AssertEqual(t, string(QuoteForJSON("\u03c0", true)), `"\u03C0"`)
	test.AssertEqual(t, string(QuoteForJSON("\U0001F600", true)), `"\uD83D\uDE00"`)
	test.AssertEqual(t, string(QuoteForJSON("\x01\xff", false)), `"\u0001\uFFFD"`)
	test.AssertEqual(t, string(QuoteForJSON("\u2028", false)), `"\u2028"`)
}

func TestSourceMapDataURL(t *testing.T) {
	url := SourceMapDataURL([]byte(`{"version":3}`))
	test.AssertEqual(t, url, "data:application/json;charset=utf-8;base64,eyJ2ZXJzaW9uIjozfQ==")

	decoded, ok := DecodeSourceMapDataURL(url)
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, string(decoded), `{"version":3}`)

	_, ok = DecodeSourceMapDataURL("data:text/plain;base64,AAAA")
	test.AssertEqual(t, ok, false)
}

func TestJoiner(t *testing.T) {
	j := Joiner{}
	j.AddString("ab")
	j.AddBytes([]byte("cd"))
	j.AddString("")
	j.EnsureNewlineAtEnd()
	test.AssertEqual(t, j.Length(), 5)
	test.AssertEqual(t, j.LastByte(), byte('\n'))
	test.AssertEqual(t, string(j.Done()), "abcd\n")
}
