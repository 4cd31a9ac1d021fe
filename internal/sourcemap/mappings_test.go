package sourcemap

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/webpack/webpack-sources/internal/test"
)

func mappingsString(mappings []Mapping) string {
	parts := make([]string, len(mappings))
	for i, m := range mappings {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}

func TestEncodeMappingsFull(t *testing.T) {
	records := []Mapping{
		{1, 0, 0, 1, 0, -1},
		{1, 5, 0, 1, 5, -1},
		{1, 7, 0, 1, 5, -1}, // Same original position as the previous one
		{1, 9, -1, -1, -1, -1},
		{1, 12, -1, -1, -1, -1}, // Nothing to terminate
		{2, 0, 0, 2, 0, 0},
		{3, 2, 1, 1, 3, -1},
	}
	encoded := EncodeMappings(records, false)
	test.AssertEqual(t, encoded, "AAAA,KAAK,I;AACLA;ECDG")

	decoded := DecodeMappings(encoded)
	test.AssertEqual(t, mappingsString(decoded),
		"1:0 -> 0:1:0, 1:5 -> 0:1:5, 1:9, 2:0 -> 0:2:0 #0, 3:2 -> 1:1:3")
	test.AssertEqual(t, EncodeMappings(decoded, false), encoded)
}

func TestEncodeMappingsRepeatedName(t *testing.T) {
	// A named segment is never elided, and neither is the one following it
	records := []Mapping{
		{1, 0, 0, 1, 0, 0},
		{1, 3, 0, 1, 0, -1},
		{1, 6, 0, 1, 0, -1},
	}
	test.AssertEqual(t, EncodeMappings(records, false), "AAAAA,GAAA")
}

func TestEncodeMappingsLinesOnly(t *testing.T) {
	records := []Mapping{
		{1, 0, 0, 1, 0, -1},
		{1, 5, 0, 1, 5, -1},
		{2, 3, 0, 2, 3, 0},
		{3, 0, -1, -1, -1, -1},
		{4, 0, 0, 7, 0, -1},
		{5, 0, 1, 1, 0, -1},
	}
	test.AssertEqual(t, EncodeMappings(records, true), "AAAA;AACA;;AAKA;ACNA")
}

func TestEncodeMappingsSameColumn(t *testing.T) {
	// The first segment at a column wins, just like when decoding
	records := []Mapping{
		{1, 0, 0, 1, 0, -1},
		{1, 0, 0, 2, 0, -1},
		{1, 4, 0, 3, 0, -1},
		{1, 4, -1, -1, -1, -1},
		{2, 0, 0, 4, 0, -1},
	}
	encoded := EncodeMappings(records, false)
	test.AssertEqual(t, encoded, "AAAA,IAEA;AACA")
	test.AssertEqual(t, EncodeMappings(DecodeMappings(encoded), false), encoded)
	test.AssertEqual(t, EncodeMappings(DecodeMappings("AAAA,AACA,IACA"), false), "AAAA,IAEA")
}

func TestReadMappingsSkipsInvalidCharacters(t *testing.T) {
	clean := mappingsString(DecodeMappings("AAAA,CAAC;AACA"))
	test.AssertEqual(t, mappingsString(DecodeMappings("AA!AA,C AAC;\nAA*CA")), clean)
	test.AssertEqual(t, clean, "1:0 -> 0:1:0, 1:1 -> 0:1:1, 2:0 -> 0:2:1")
}

func TestReadMappingsSegmentLengths(t *testing.T) {
	// Segments with two, three or six fields are not valid and are dropped
	decoded := DecodeMappings("A,CA,CAA,CAAA,CAAAA,CAAAAA")
	test.AssertEqual(t, mappingsString(decoded), "1:0, 1:3 -> 0:1:0, 1:4 -> 0:1:0 #0")
}

func TestReadMappingsRequiresIncreasingColumns(t *testing.T) {
	decoded := DecodeMappings("EAAA,DAAC,EAAE")
	test.AssertEqual(t, mappingsString(decoded), "1:2 -> 0:1:0, 1:3 -> 0:1:3")

	decoded = DecodeMappings("EAAA,DAAC")
	test.AssertEqual(t, mappingsString(decoded), "1:2 -> 0:1:0")
}

func TestReadMappingsEmpty(t *testing.T) {
	test.AssertEqual(t, len(DecodeMappings("")), 0)
	test.AssertEqual(t, len(DecodeMappings(";;;")), 0)
}

func randomMappings(r *rand.Rand, count int) []Mapping {
	var records []Mapping
	line, column := 1, 0
	for i := 0; i < count; i++ {
		if r.Intn(4) == 0 {
			line += 1 + r.Intn(3)
			column = 0
		}
		// Several records may share a column
		column += r.Intn(20)
		m := Mapping{GeneratedLine: line, GeneratedColumn: column, SourceIndex: -1, NameIndex: -1}
		if r.Intn(5) != 0 {
			m.SourceIndex = r.Intn(4)
			m.OriginalLine = 1 + r.Intn(100)
			m.OriginalColumn = r.Intn(80)
			if r.Intn(3) == 0 {
				m.NameIndex = r.Intn(10)
			}
		}
		records = append(records, m)
	}
	return records
}

func TestMappingsRoundTripIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iteration := 0; iteration < 200; iteration++ {
		records := randomMappings(r, r.Intn(60))
		for _, linesOnly := range []bool{false, true} {
			encoded := EncodeMappings(records, linesOnly)
			again := EncodeMappings(DecodeMappings(encoded), linesOnly)
			test.AssertEqualWithDiff(t, again, encoded)
		}
	}
}

func TestMappingsRoundTripPreservesMappedPositions(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	records := randomMappings(r, 500)
	decoded := DecodeMappings(EncodeMappings(records, false))
	prevLine, prevColumn := 0, -1
	for _, m := range records {
		// Only the first record at a position counts
		isFirst := m.GeneratedLine != prevLine || m.GeneratedColumn != prevColumn
		prevLine, prevColumn = m.GeneratedLine, m.GeneratedColumn
		if m.SourceIndex < 0 || !isFirst {
			continue
		}
		found := Find(decoded, m.GeneratedLine, m.GeneratedColumn)
		if found == nil {
			t.Fatalf("missing mapping for %s", m)
		}
		test.AssertEqual(t, found.SourceIndex, m.SourceIndex)
		test.AssertEqual(t, found.OriginalLine, m.OriginalLine)
		test.AssertEqual(t, found.OriginalColumn, m.OriginalColumn)
	}
}

func TestFind(t *testing.T) {
	mappings := DecodeMappings("AAAA,KAAK;;ECAG")
	test.AssertEqual(t, Find(mappings, 1, 3).GeneratedColumn, 0)
	test.AssertEqual(t, Find(mappings, 1, 5).GeneratedColumn, 5)
	test.AssertEqual(t, Find(mappings, 1, 99).GeneratedColumn, 5)
	test.AssertEqual(t, Find(mappings, 2, 0) == nil, true)
	test.AssertEqual(t, Find(mappings, 3, 1) == nil, true)
	test.AssertEqual(t, Find(mappings, 3, 2).OriginalColumn, 8)
	test.AssertEqual(t, Find(mappings, 3, 2).SourceIndex, 1)
}
