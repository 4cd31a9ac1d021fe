package config

import (
	"fmt"
	"strings"
)

type SourceMap uint8

const (
	SourceMapNone SourceMap = iota
	SourceMapInline
	SourceMapLinkedWithComment
	SourceMapExternalWithoutComment
)

func ParseSourceMap(text string) (SourceMap, bool) {
	switch text {
	case "", "none", "false":
		return SourceMapNone, true
	case "inline":
		return SourceMapInline, true
	case "linked", "true":
		return SourceMapLinkedWithComment, true
	case "external":
		return SourceMapExternalWithoutComment, true
	}
	return SourceMapNone, false
}

func (sm SourceMap) String() string {
	switch sm {
	case SourceMapNone:
		return "none"
	case SourceMapInline:
		return "inline"
	case SourceMapLinkedWithComment:
		return "linked"
	case SourceMapExternalWithoutComment:
		return "external"
	default:
		panic("Internal error")
	}
}

const DefaultFileNameTemplate = "[name].js"

type Options struct {
	SourceMap SourceMap

	// Emit one mapping per generated line instead of one per token
	LinesOnly bool

	// Escape non-ASCII characters in the generated source map
	ASCIIOnly bool

	SourceRoot            string
	ExcludeSourcesContent bool

	OutputDir string

	// Supports the "[name]" and "[hash]" placeholders. The hash is computed
	// from the chunk's source tree, not from its rendered text.
	FileNameTemplate string
}

func DefaultOptions() Options {
	return Options{
		SourceMap:        SourceMapLinkedWithComment,
		FileNameTemplate: DefaultFileNameTemplate,
	}
}

func (options *Options) Validate() error {
	if options.FileNameTemplate == "" {
		return fmt.Errorf("the output file name template must not be empty")
	}
	if !strings.Contains(options.FileNameTemplate, "[name]") && !strings.Contains(options.FileNameTemplate, "[hash]") {
		return fmt.Errorf("the output file name template %q must contain \"[name]\" or \"[hash]\"", options.FileNameTemplate)
	}
	if options.SourceMap > SourceMapExternalWithoutComment {
		return fmt.Errorf("invalid source map mode %d", options.SourceMap)
	}
	return nil
}

func (options *Options) OutputFileName(name string, hash string) string {
	template := options.FileNameTemplate
	if template == "" {
		template = DefaultFileNameTemplate
	}
	return strings.NewReplacer("[name]", name, "[hash]", hash).Replace(template)
}
