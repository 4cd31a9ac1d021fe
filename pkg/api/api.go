// Package api is the public surface of the source composition library and
// of the small bundler built on top of it.
package api

import (
	"context"

	"github.com/webpack/webpack-sources/internal/sourcemap"
	"github.com/webpack/webpack-sources/internal/sources"
)

////////////////////////////////////////////////////////////////////////////////
// Source API

type Source = sources.Source
type Options = sources.Options
type GeneratedInfo = sources.GeneratedInfo
type OnChunk = sources.OnChunk
type OnSource = sources.OnSource
type OnName = sources.OnName

type RawSource = sources.RawSource
type OriginalSource = sources.OriginalSource
type SourceMapSource = sources.SourceMapSource
type SourceMapSourceOptions = sources.SourceMapSourceOptions
type ConcatSource = sources.ConcatSource
type PrefixSource = sources.PrefixSource
type ReplaceSource = sources.ReplaceSource
type ReplaceBuilder = sources.ReplaceBuilder
type Replacement = sources.Replacement
type CachedSource = sources.CachedSource
type CachedData = sources.CachedData
type CompatSource = sources.CompatSource
type SourceLike = sources.SourceLike
type SizeOnlySource = sources.SizeOnlySource

// Map is a parsed version 3 source map
type Map = sourcemap.SourceMap

var ErrContentUnavailable = sources.ErrContentUnavailable
var ErrMissingUpdateHash = sources.ErrMissingUpdateHash

func NewRawSource(text string) *RawSource {
	return sources.NewRawSource(text)
}

func NewOriginalSource(text string, name string) *OriginalSource {
	return sources.NewOriginalSource(text, name)
}

func NewSourceMapSource(text string, name string, sm *Map, options SourceMapSourceOptions) *SourceMapSource {
	return sources.NewSourceMapSource(text, name, sm, options)
}

func NewSourceMapSourceFromJSON(text string, name string, mapJSON []byte, options SourceMapSourceOptions) (*SourceMapSource, error) {
	return sources.NewSourceMapSourceFromJSON(text, name, mapJSON, options)
}

func NewConcatSource(children ...Source) *ConcatSource {
	return sources.NewConcatSource(children...)
}

func NewPrefixSource(prefix string, source Source) *PrefixSource {
	return sources.NewPrefixSource(prefix, source)
}

func NewReplaceBuilder(source Source, name string) *ReplaceBuilder {
	return sources.NewReplaceBuilder(source, name)
}

func NewCachedSource(source Source) *CachedSource {
	return sources.NewCachedSource(source)
}

func NewCachedSourceFromData(getSource func() Source, data CachedData) *CachedSource {
	return sources.NewCachedSourceFromData(getSource, data)
}

func NewCompatSource(value SourceLike) *CompatSource {
	return sources.NewCompatSource(value)
}

// CompatSourceFrom returns value itself if it's already a Source
func CompatSourceFrom(value SourceLike) Source {
	return sources.CompatSourceFrom(value)
}

func NewSizeOnlySource(size int) *SizeOnlySource {
	return sources.NewSizeOnlySource(size)
}

func ParseMap(data []byte) (*Map, error) {
	return sourcemap.Parse(data)
}

// TextAndMap renders a source and its map. Unlike calling the methods of
// Source directly, misuse such as asking a SizeOnlySource for its text is
// returned as an error instead of panicking.
func TextAndMap(source Source, options Options) (text string, sm *Map, err error) {
	err = sources.Catch(func() {
		text, sm = source.TextAndMap(options)
	})
	return
}

// MapJSON serializes the map of a source, or returns nil if it has none
func MapJSON(source Source, options Options, asciiOnly bool) (json []byte, err error) {
	err = sources.Catch(func() {
		if sm := source.Map(options); sm != nil {
			json = sm.JSON(asciiOnly)
		}
	})
	return
}

////////////////////////////////////////////////////////////////////////////////
// Build API

type SourceMap uint8

const (
	// Use the mode of the manifest, or linked if it has none
	SourceMapDefault SourceMap = iota
	SourceMapNone
	SourceMapInline
	SourceMapLinked
	SourceMapExternal
)

type Location struct {
	File   string
	Line   int // 1-based
	Column int // 0-based, in UTF-16 code units
}

type Message struct {
	Text     string
	Location *Location
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelVerbose
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

type BuildOptions struct {
	Color      StderrColor
	ErrorLimit int
	LogLevel   LogLevel

	// Path to the bundle manifest
	Manifest string

	// These override the "output" section of the manifest when set
	Sourcemap             SourceMap
	LinesOnly             bool
	ASCIIOnly             bool
	SourceRoot            string
	ExcludeSourcesContent bool
	Outdir                string
	FileName              string

	// Write the output files to disk instead of only returning them
	Write bool
}

type BuildResult struct {
	Errors   []Message
	Warnings []Message

	OutputFiles []OutputFile
}

type OutputFile struct {
	Path     string
	Contents []byte
}

func Build(options BuildOptions) BuildResult {
	result, _ := buildImpl(options, nil)
	return result
}

// Watch builds once and then rebuilds every time one of the files the build
// read changes. Each result is passed to onRebuild, the first one included.
// It returns when the context is done.
func Watch(ctx context.Context, options BuildOptions, onRebuild func(BuildResult)) error {
	return watchImpl(ctx, options, onRebuild)
}
