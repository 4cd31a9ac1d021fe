package sources

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/webpack/webpack-sources/internal/sourcemap"
	"github.com/webpack/webpack-sources/internal/test"
)

// Inserted text uses letters original text doesn't, which keeps failures
// readable
const (
	originalAlphabet    = "ab; \n"
	replacementAlphabet = "XY\n"
)

var randomPrefixes = []string{"", "  ", "//", "\t"}

// Builds the same tree for the same seed
type randomTree struct {
	r      *rand.Rand
	leaves int
	cached []*CachedSource
}

func newRandomTree(seed int64) *randomTree {
	return &randomTree{r: rand.New(rand.NewSource(seed))}
}

func (g *randomTree) text(alphabet string, maxLen int) string {
	bytes := make([]byte, g.r.Intn(maxLen+1))
	for i := range bytes {
		bytes[i] = alphabet[g.r.Intn(len(alphabet))]
	}
	return string(bytes)
}

func (g *randomTree) leaf() Source {
	text := g.text(originalAlphabet, 12)
	g.leaves++
	name := fmt.Sprintf("%d.js", g.leaves)

	switch g.r.Intn(3) {
	case 0:
		return NewRawSource(text)
	case 1:
		return NewOriginalSource(text, name)
	default:
		sm := NewOriginalSource(text, name).Map(Options{LinesOnly: g.r.Intn(3) == 0})
		if sm == nil {
			return NewRawSource(text)
		}
		return NewSourceMapSource(text, "out-"+name, sm, SourceMapSourceOptions{})
	}
}

// A cached source is only replayed from its map, so it isn't put below a
// replacement that could cut it in the middle of a merged chunk
func (g *randomTree) source(depth int, allowCached bool) Source {
	if depth == 0 {
		return g.leaf()
	}

	switch g.r.Intn(5) {
	case 0:
		return g.leaf()

	case 1:
		children := make([]Source, 1+g.r.Intn(3))
		for i := range children {
			children[i] = g.source(depth-1, allowCached)
		}
		return NewConcatSource(children...)

	case 2:
		prefix := randomPrefixes[g.r.Intn(len(randomPrefixes))]
		return NewPrefixSource(prefix, g.source(depth-1, allowCached))

	case 3:
		return g.replace(g.source(depth-1, false))

	default:
		if !allowCached {
			return g.leaf()
		}
		c := NewCachedSource(g.source(depth-1, true))
		g.cached = append(g.cached, c)
		return c
	}
}

// Adds non-overlapping edits, including ones at the very end
func (g *randomTree) replace(child Source) Source {
	size := len(child.Text())
	b := NewReplaceBuilder(child, "")
	pos := 0
	for g.r.Intn(3) != 0 {
		pos += g.r.Intn(4)
		if pos > size {
			break
		}
		content := g.text(replacementAlphabet, 3)
		name := ""
		if g.r.Intn(4) == 0 {
			name = "N"
		}
		if pos == size || g.r.Intn(2) == 0 {
			b.Insert(pos, content, name)
			continue
		}
		end := pos + g.r.Intn(3)
		if end >= size {
			end = size - 1
		}
		b.Replace(pos, end, content, name)
		pos = end + 1
	}
	return b.Build()
}

func mapJSON(sm *sourcemap.SourceMap) string {
	if sm == nil {
		return "<nil>"
	}
	return string(sm.JSON(false))
}

func TestRandomTrees(t *testing.T) {
	for seed := int64(0); seed < 1000; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			fresh := newRandomTree(seed).source(3, true)
			text := fresh.Text()

			for _, options := range []Options{{}, {LinesOnly: true}} {
				expected := mapJSON(newRandomTree(seed).source(3, true).Map(options))

				// Prime every cache from the inside out, either with queries or
				// with streams, before using the tree
				g := newRandomTree(seed)
				primed := g.source(3, true)
				for _, c := range g.cached {
					for _, primeOptions := range []Options{{}, {LinesOnly: true}} {
						if seed%2 == 0 {
							c.TextAndMap(primeOptions)
						} else {
							collectChunks(c, primeOptions)
						}
					}
				}
				test.AssertEqualWithDiff(t, primed.Text(), text)
				test.AssertEqualWithDiff(t, mapJSON(primed.Map(options)), expected)
				checkConsistency(t, primed)
			}

			checkConsistency(t, fresh)
		})
	}
}
