package helpers

import (
	"strings"
	"testing"

	"github.com/webpack/webpack-sources/internal/test"
)

var splitCorpus = []string{
	"",
	"\n",
	"\n\n\n",
	"a",
	"a\n",
	"a\nb",
	"a\r\nb\r\n",
	"var a = 1;\nvar b = 2;\n",
	"function f() { return 1; }",
	"if (x) {\n\tfoo();\n}\n",
	";;;{{}}\n",
	"  \t ;\n;",
	"const s = \"π = 3.14;\"; // ünïcödé\n",
	"a = {} ; b = {}\r\n\t}\n\n;",
}

func checkFragments(t *testing.T, input string, fragments []string) {
	t.Helper()
	test.AssertEqual(t, strings.Join(fragments, ""), input)
	for i, fragment := range fragments {
		if fragment == "" {
			t.Fatalf("empty fragment %d for %q", i, input)
		}
		if newline := strings.IndexByte(fragment, '\n'); newline != -1 && newline != len(fragment)-1 {
			t.Fatalf("fragment %q of %q continues after a newline", fragment, input)
		}
	}
}

func TestSplitIntoLinesRoundTrip(t *testing.T) {
	for _, input := range splitCorpus {
		lines := SplitIntoLines(input)
		checkFragments(t, input, lines)
		for i, line := range lines[:max(len(lines)-1, 0)] {
			if !strings.HasSuffix(line, "\n") {
				t.Fatalf("line %d of %q has no trailing newline", i, input)
			}
		}
	}
}

func TestSplitIntoPotentialTokensRoundTrip(t *testing.T) {
	for _, input := range splitCorpus {
		checkFragments(t, input, SplitIntoPotentialTokens(input))
	}
}

func TestSplitEmpty(t *testing.T) {
	test.AssertEqual(t, len(SplitIntoLines("")), 0)
	test.AssertEqual(t, len(SplitIntoPotentialTokens("")), 0)
}

func TestSplitIntoLines(t *testing.T) {
	lines := SplitIntoLines("a\n\nbc")
	test.AssertEqual(t, len(lines), 3)
	test.AssertEqual(t, lines[0], "a\n")
	test.AssertEqual(t, lines[1], "\n")
	test.AssertEqual(t, lines[2], "bc")
}

func TestSplitIntoPotentialTokens(t *testing.T) {
	tokens := SplitIntoPotentialTokens("if (a) { b(); }\nc;")
	test.AssertEqual(t, strings.Join(tokens, "|"), "if (a) { |b(); }\n|c;")

	tokens = SplitIntoPotentialTokens("\n\nx")
	test.AssertEqual(t, strings.Join(tokens, "|"), "\n|\n|x")
}

func TestGeneratedEnd(t *testing.T) {
	check := func(text string, line int, column int) {
		t.Helper()
		l, c := GeneratedEnd(text)
		test.AssertEqual(t, l, line)
		test.AssertEqual(t, c, column)
	}
	check("", 1, 0)
	check("abc", 1, 3)
	check("abc\n", 2, 0)
	check("a\nb\ncd", 3, 2)
	check("a\n😀", 2, 2)
}
