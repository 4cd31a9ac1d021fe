package sources

import (
	"strings"
	"testing"

	"github.com/webpack/webpack-sources/internal/sourcemap"
	"github.com/webpack/webpack-sources/internal/test"
)

func TestReplaceHelloWorld(t *testing.T) {
	b := NewReplaceBuilder(NewOriginalSource("hello\nworld\n", "a.js"), "")
	b.Replace(6, 10, "WORLD", "")
	s := b.Build()

	test.AssertEqual(t, s.Text(), "hello\nWORLD\n")

	events, info := collectChunks(s, Options{})
	test.AssertEqualWithDiff(t, eventsString(events), strings.Join([]string{
		`"hello\n" 1:0 -> 0:1:0`,
		`"WORLD" 2:0 -> 0:2:0`,
		`"\n" 2:5 -> 0:2:5`,
	}, "\n"))
	test.AssertEqual(t, info.GeneratedLine, 3)
	test.AssertEqual(t, info.GeneratedColumn, 0)

	// The trailing newline of line 2 still points at line 2 of a.js
	sm := s.Map(Options{})
	test.AssertEqual(t, mappingsOf(sm), "1:0 -> 0:1:0, 2:0 -> 0:2:0, 2:5 -> 0:2:5")
	test.AssertEqual(t, sm.Sources[0], "a.js")

	checkConsistency(t, s)
}

func TestReplaceInsideToken(t *testing.T) {
	b := NewReplaceBuilder(NewOriginalSource("abc def\n", "a.js"), "")
	b.Replace(2, 4, "X", "")
	s := b.Build()

	test.AssertEqual(t, s.Text(), "abXef\n")
	test.AssertEqual(t, mappingsOf(s.Map(Options{})), "1:0 -> 0:1:0, 1:2 -> 0:1:2, 1:3 -> 0:1:5")
	test.AssertEqual(t, mappingsOf(s.Map(Options{LinesOnly: true})), "1:0 -> 0:1:0")
	checkConsistency(t, s)
}

func TestReplaceChecksOriginalContent(t *testing.T) {
	generated := "AAAA BBBB\n"
	build := func(content string) *ReplaceSource {
		sm := &sourcemap.SourceMap{
			Sources:        []string{"a.js"},
			SourcesContent: []*string{&content},
			Mappings:       "AAAA",
		}
		b := NewReplaceBuilder(NewSourceMapSource(generated, "out.js", sm, SourceMapSourceOptions{}), "")
		b.Replace(0, 4, "Z", "")
		return b.Build()
	}

	// The skipped text is really in a.js, so the rest moves along with it
	s := build(generated)
	test.AssertEqual(t, s.Text(), "ZBBBB\n")
	test.AssertEqual(t, mappingsOf(s.Map(Options{})), "1:0 -> 0:1:0, 1:1 -> 0:1:5")
	checkConsistency(t, s)

	// It isn't, so no column is claimed for the rest
	s = build("xxxxxxxxx\n")
	test.AssertEqual(t, s.Text(), "ZBBBB\n")
	test.AssertEqual(t, mappingsOf(s.Map(Options{})), "1:0 -> 0:1:0")
	checkConsistency(t, s)
}

func TestReplaceInsertOrder(t *testing.T) {
	b := NewReplaceBuilder(NewRawSource("ab"), "")
	b.Replace(1, 1, "Z", "")
	b.Insert(1, "X", "")
	b.Insert(1, "Y", "")
	s := b.Build()
	test.AssertEqual(t, s.Text(), "aXYZ")
	test.AssertEqual(t, GetText(s), "aXYZ")
	test.AssertEqual(t, s.Map(Options{}) == nil, true)
	checkConsistency(t, s)

	// Inserting is replacing an empty range
	b1 := NewReplaceBuilder(NewRawSource("abc"), "")
	b1.Insert(1, "--", "")
	b2 := NewReplaceBuilder(NewRawSource("abc"), "")
	b2.Replace(1, 0, "--", "")
	test.AssertEqual(t, b1.Build().Text(), "a--bc")
	test.AssertEqual(t, b2.Build().Text(), "a--bc")
}

func TestReplaceOrderIndependence(t *testing.T) {
	original := "var a = 1;\nvar b = 2;\nvar c = 3;\n"
	edits := []Replacement{
		{Start: 4, End: 4, Content: "x"},
		{Start: 15, End: 15, Content: "y"},
		{Start: 26, End: 26, Content: "z"},
		{Start: 33, End: 32, Content: "// end\n"},
	}

	var texts []string
	var maps []string
	for _, order := range [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}} {
		b := NewReplaceBuilder(NewOriginalSource(original, "a.js"), "")
		for _, i := range order {
			b.Replace(edits[i].Start, edits[i].End, edits[i].Content, edits[i].Name)
		}
		s := b.Build()
		checkConsistency(t, s)
		texts = append(texts, s.Text())
		maps = append(maps, s.Map(Options{}).Mappings)
	}
	for i := range texts {
		test.AssertEqual(t, texts[i], "var x = 1;\nvar y = 2;\nvar z = 3;\n// end\n")
		test.AssertEqual(t, maps[i], maps[0])
	}
}

func TestReplaceBuilderIsIndependent(t *testing.T) {
	b := NewReplaceBuilder(NewRawSource("0123456789"), "")
	b.Replace(0, 0, "a", "")
	first := b.Build()
	b.Replace(9, 9, "b", "")
	second := b.Build()

	test.AssertEqual(t, first.Text(), "a123456789")
	test.AssertEqual(t, second.Text(), "a12345678b")
	test.AssertEqual(t, len(first.Replacements()), 1)
	test.AssertEqual(t, len(second.Replacements()), 2)
	test.AssertEqual(t, b.Len(), 2)
}

func TestReplaceAcrossLines(t *testing.T) {
	// Removing a line break joins two lines
	b := NewReplaceBuilder(NewOriginalSource("ab\ncd\nef\n", "a.js"), "")
	b.Replace(2, 2, "", "")
	s := b.Build()
	test.AssertEqual(t, s.Text(), "abcd\nef\n")
	test.AssertEqual(t, mappingsOf(s.Map(Options{})), "1:0 -> 0:1:0, 1:2 -> 0:2:0, 2:0 -> 0:3:0")
	checkConsistency(t, s)

	// Adding line breaks pushes the following lines down
	b = NewReplaceBuilder(NewOriginalSource("ab\ncd\n", "a.js"), "")
	b.Insert(1, "\n\n", "")
	s = b.Build()
	test.AssertEqual(t, s.Text(), "a\n\nb\ncd\n")
	test.AssertEqual(t, mappingsOf(s.Map(Options{})), "1:0 -> 0:1:0, 1:1 -> 0:1:1, 2:0 -> 0:1:1, 3:0 -> 0:1:1, 4:0 -> 0:2:0")
	checkConsistency(t, s)

	// A replacement spanning several chunks
	b = NewReplaceBuilder(NewOriginalSource("a;\nb;\nc;\n", "a.js"), "")
	b.Replace(1, 4, "=", "")
	s = b.Build()
	test.AssertEqual(t, s.Text(), "a=\nc;\n")
	test.AssertEqual(t, mappingsOf(s.Map(Options{})), "1:0 -> 0:1:0, 1:1 -> 0:1:1, 1:2 -> 0:2:2, 2:0 -> 0:3:0")
	checkConsistency(t, s)
}

func TestReplacePastEnd(t *testing.T) {
	b := NewReplaceBuilder(NewOriginalSource("a;", "a.js"), "")
	b.Insert(2, "\nb;", "")
	b.Replace(10, 20, "c;", "")
	s := b.Build()
	test.AssertEqual(t, s.Text(), "a;\nb;c;")

	events, info := collectChunks(s, Options{})
	test.AssertEqualWithDiff(t, eventsString(events), strings.Join([]string{
		`"a;" 1:0 -> 0:1:0`,
		`"\n" 1:2`,
		`"b;c;" 2:0`,
	}, "\n"))
	test.AssertEqual(t, info.GeneratedLine, 2)
	test.AssertEqual(t, info.GeneratedColumn, 4)
	checkConsistency(t, s)
}

func TestReplaceNames(t *testing.T) {
	b := NewReplaceBuilder(NewOriginalSource("var foo = 1;\n", "a.js"), "")
	b.Replace(4, 6, "bar\nbaz", "foo")
	s := b.Build()
	test.AssertEqual(t, s.Text(), "var bar\nbaz = 1;\n")

	sm := s.Map(Options{})
	test.AssertEqual(t, mappingsOf(sm), "1:0 -> 0:1:0, 1:4 -> 0:1:4 #0, 2:0 -> 0:1:4, 2:3 -> 0:1:7")
	test.AssertEqual(t, strings.Join(sm.Names, ","), "foo")
	checkConsistency(t, s)

	// A name attached to unmapped code is dropped
	b = NewReplaceBuilder(NewRawSource("var foo = 1;\n"), "")
	b.Replace(4, 6, "bar", "foo")
	s = b.Build()
	test.AssertEqual(t, s.Map(Options{}) == nil, true)
	checkConsistency(t, s)
}

func TestReplaceCutsColumnChunksInLinesOnlyMode(t *testing.T) {
	// A prefixed child would stream "//b\n" as one line in lines-only mode.
	// Cutting it must not give the new line the position of the old one.
	b := NewReplaceBuilder(NewPrefixSource("//", NewOriginalSource("a\nb\n", "a.js")), "")
	b.Insert(5, "\n", "")
	s := b.Build()
	test.AssertEqual(t, s.Text(), "//a\n/\n/b\n")
	test.AssertEqual(t, mappingsOf(s.Map(Options{})), "1:2 -> 0:1:0, 3:1 -> 0:2:0")
	test.AssertEqual(t, mappingsOf(s.Map(Options{LinesOnly: true})), "1:0 -> 0:1:0, 3:0 -> 0:2:0")
	checkConsistency(t, s)

	// Only the end of the first line of the generated code is mapped
	sm := &sourcemap.SourceMap{Sources: []string{"a.js"}, Mappings: "GAAA"}
	b = NewReplaceBuilder(NewSourceMapSource("xx;b;\n", "out.js", sm, SourceMapSourceOptions{}), "")
	b.Insert(1, "\n", "")
	s = b.Build()
	test.AssertEqual(t, s.Text(), "x\nx;b;\n")
	test.AssertEqual(t, mappingsOf(s.Map(Options{})), "2:2 -> 0:1:0")
	test.AssertEqual(t, mappingsOf(s.Map(Options{LinesOnly: true})), "2:0 -> 0:1:0")
	checkConsistency(t, s)
}
