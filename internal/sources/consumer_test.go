package sources

import (
	"fmt"
	"strings"
	"testing"

	"github.com/webpack/webpack-sources/internal/sourcemap"
	"github.com/webpack/webpack-sources/internal/test"
	consumer "gopkg.in/sourcemap.v1"
	"gopkg.in/sourcemap.v1/base64vlq"
)

// Decodes mappings with an independent VLQ decoder
func decodeIndependently(t *testing.T, mappings string) string {
	t.Helper()
	var parts []string
	fields := [5]int{0, 0, 1, 0, 0}
	for i, line := range strings.Split(mappings, ";") {
		fields[0] = 0
		if line == "" {
			continue
		}
		for _, segment := range strings.Split(line, ",") {
			dec := base64vlq.NewDecoder(strings.NewReader(segment))
			count := 0
			for ; count < 5; count++ {
				value, err := dec.Decode()
				if err != nil {
					break
				}
				fields[count] += value
			}
			text := fmt.Sprintf("%d:%d", i+1, fields[0])
			if count >= 4 {
				text += fmt.Sprintf(" -> %d:%d:%d", fields[1], fields[2], fields[3])
			}
			if count == 5 {
				text += fmt.Sprintf(" #%d", fields[4])
			}
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ", ")
}

func TestMapsReadByIndependentConsumer(t *testing.T) {
	module := func(id string, code string) Source {
		b := NewReplaceBuilder(NewOriginalSource(code, id), "")
		b.Replace(0, 2, "let", "")
		b.Insert(len(code), "\nexports.x = x;", "")
		return NewConcatSource(
			NewRawSource("\""+id+"\": function(module, exports) {\n"),
			NewPrefixSource("\t", b.Build()),
			NewRawSource("\n},\n"),
		)
	}
	chunk := NewConcatSource(
		NewRawSource("({\n"),
		module("a.js", "var x = 1;\nif (x) { x++; }"),
		module("b.js", "var x = 'π';\n\nx += '😀';"),
		NewRawSource("})\n"),
	)

	for _, linesOnly := range []bool{false, true} {
		sm := chunk.Map(Options{LinesOnly: linesOnly})
		test.AssertEqual(t, strings.Join(sm.Sources, ","), "a.js,b.js")

		_, err := consumer.Parse("", sm.JSON(false))
		test.AssertEqual(t, err, nil)
		test.AssertEqualWithDiff(t, decodeIndependently(t, sm.Mappings), mappingsOf(sm))
	}

	checkConsistency(t, chunk)
}

func TestMappingsFind(t *testing.T) {
	b := NewReplaceBuilder(NewOriginalSource("var a = 1;\n", "a.js"), "")
	b.Replace(4, 4, "abc", "")
	mappings := sourcemap.DecodeMappings(b.Build().Map(Options{}).Mappings)

	// A position inside the replacement resolves to where it was inserted
	m := sourcemap.Find(mappings, 1, 5)
	test.AssertEqual(t, m.String(), "1:4 -> 0:1:4")
	m = sourcemap.Find(mappings, 1, 8)
	test.AssertEqual(t, m.String(), "1:7 -> 0:1:5")
}
