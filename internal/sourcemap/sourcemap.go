package sourcemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/webpack/webpack-sources/internal/helpers"
)

// SourceMap is a version 3 source map with its mappings kept in the
// compact VLQ form. Decoding happens on demand with ReadMappings.
type SourceMap struct {
	File       string
	SourceRoot string
	Sources    []string

	// This is nil when the map has no "sourcesContent" field. Individual
	// entries are nil when the content of that source is unknown.
	SourcesContent []*string

	Names    []string
	Mappings string
}

var ErrIndexMap = errors.New("source maps with \"sections\" are not supported")

// SourceAt returns the name of source "index" with the source root applied
func (sm *SourceMap) SourceAt(index int) string {
	if index < 0 || index >= len(sm.Sources) {
		return ""
	}
	source := sm.Sources[index]
	switch {
	case sm.SourceRoot == "":
		return source
	case strings.HasSuffix(sm.SourceRoot, "/"):
		return sm.SourceRoot + source
	default:
		return sm.SourceRoot + "/" + source
	}
}

// ContentAt returns the content of source "index" or nil if it's unknown
func (sm *SourceMap) ContentAt(index int) *string {
	if index < 0 || index >= len(sm.SourcesContent) {
		return nil
	}
	return sm.SourcesContent[index]
}

func (sm *SourceMap) HasContent() bool {
	for _, content := range sm.SourcesContent {
		if content != nil {
			return true
		}
	}
	return false
}

// Clone returns a copy whose slices can be modified independently
func (sm *SourceMap) Clone() *SourceMap {
	if sm == nil {
		return nil
	}
	clone := *sm
	clone.Sources = append([]string(nil), sm.Sources...)
	clone.Names = append([]string(nil), sm.Names...)
	if sm.SourcesContent != nil {
		clone.SourcesContent = append([]*string{}, sm.SourcesContent...)
	}
	return &clone
}

type jsonSourceMap struct {
	Version        *int            `json:"version"`
	File           string          `json:"file"`
	SourceRoot     string          `json:"sourceRoot"`
	Sources        []*string       `json:"sources"`
	SourcesContent []*string       `json:"sourcesContent"`
	Names          []*string       `json:"names"`
	Mappings       string          `json:"mappings"`
	Sections       json.RawMessage `json:"sections"`
}

func Parse(data []byte) (*SourceMap, error) {
	var parsed jsonSourceMap
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("invalid source map: %w", err)
	}
	if parsed.Sections != nil {
		return nil, ErrIndexMap
	}
	if parsed.Version == nil {
		return nil, errors.New("invalid source map: missing \"version\"")
	}
	if *parsed.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", *parsed.Version)
	}

	sm := &SourceMap{
		File:           parsed.File,
		SourceRoot:     parsed.SourceRoot,
		Sources:        make([]string, len(parsed.Sources)),
		SourcesContent: parsed.SourcesContent,
		Names:          make([]string, len(parsed.Names)),
		Mappings:       parsed.Mappings,
	}
	for i, source := range parsed.Sources {
		if source != nil {
			sm.Sources[i] = *source
		}
	}
	for i, name := range parsed.Names {
		if name != nil {
			sm.Names[i] = *name
		}
	}
	return sm, nil
}

// JSON serializes the map. Keys are written in a fixed order so that the
// same map always produces the same bytes.
func (sm *SourceMap) JSON(asciiOnly bool) []byte {
	j := helpers.Joiner{}
	j.AddString("{\"version\":3")

	if sm.File != "" {
		j.AddString(",\"file\":")
		j.AddBytes(helpers.QuoteForJSON(sm.File, asciiOnly))
	}

	j.AddString(",\"mappings\":")
	j.AddBytes(helpers.QuoteForJSON(sm.Mappings, asciiOnly))

	if sm.SourceRoot != "" {
		j.AddString(",\"sourceRoot\":")
		j.AddBytes(helpers.QuoteForJSON(sm.SourceRoot, asciiOnly))
	}

	j.AddString(",\"sources\":[")
	for i, source := range sm.Sources {
		if i != 0 {
			j.AddString(",")
		}
		j.AddBytes(helpers.QuoteForJSON(source, asciiOnly))
	}
	j.AddString("]")

	if sm.SourcesContent != nil {
		j.AddString(",\"sourcesContent\":[")
		for i, content := range sm.SourcesContent {
			if i != 0 {
				j.AddString(",")
			}
			if content == nil {
				j.AddString("null")
			} else {
				j.AddBytes(helpers.QuoteForJSON(*content, asciiOnly))
			}
		}
		j.AddString("]")
	}

	j.AddString(",\"names\":[")
	for i, name := range sm.Names {
		if i != 0 {
			j.AddString(",")
		}
		j.AddBytes(helpers.QuoteForJSON(name, asciiOnly))
	}
	j.AddString("]}")

	return j.Done()
}
