package bundler

import (
	"bytes"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/webpack/webpack-sources/internal/cache"
	"github.com/webpack/webpack-sources/internal/config"
	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/logger"
	"github.com/webpack/webpack-sources/internal/sourcemap"
	"github.com/webpack/webpack-sources/internal/sources"
)

type OutputFile struct {
	AbsPath  string
	Contents []byte

	// The name of the chunk this file was generated for
	Chunk string

	IsSourceMap bool
}

// Bundle renders every chunk of the manifest. Chunks are independent so they
// are emitted in parallel, sharing only the cached module leaves. Problems are
// reported to the log and the chunks that failed are left out of the result.
func Bundle(log logger.Log, options config.Options, manifest *config.Manifest, caches *cache.CacheSet) []OutputFile {
	timer := &helpers.Timer{}
	timer.Begin("Bundle")

	resultGroups := make([][]OutputFile, len(manifest.Chunks))
	chunkTimers := make([]*helpers.Timer, len(manifest.Chunks))
	waitGroup := sync.WaitGroup{}
	for i, chunk := range manifest.Chunks {
		waitGroup.Add(1)
		chunkTimers[i] = timer.Fork()
		go func(i int, chunk config.Chunk) {
			defer waitGroup.Done()
			c := chunkContext{
				log:     log,
				options: &options,
				caches:  caches,
				timer:   chunkTimers[i],
			}
			resultGroups[i] = c.emitChunk(chunk)
		}(i, chunk)
	}
	waitGroup.Wait()
	for _, chunkTimer := range chunkTimers {
		timer.Join(chunkTimer)
	}

	// Join the results in chunk order for determinism
	var outputFiles []OutputFile
	for _, group := range resultGroups {
		outputFiles = append(outputFiles, group...)
	}

	// Forget modules that are no longer part of the bundle
	live := make(map[string]bool)
	for _, chunk := range manifest.Chunks {
		for _, module := range chunk.Modules {
			live[module.Path] = true
		}
	}
	caches.SourceCache.Prune(live)

	outputFiles = removeDuplicateOutputFiles(log, outputFiles)
	timer.End("Bundle")
	timer.Log(log)
	return outputFiles
}

// Make sure an output file never overwrites another output file. Files with
// identical contents are silently merged, which can happen with a file name
// template that only contains "[hash]".
func removeDuplicateOutputFiles(log logger.Log, outputFiles []OutputFile) []OutputFile {
	outputFileMap := make(map[string][]byte)
	end := 0
	for _, outputFile := range outputFiles {
		lowerAbsPath := strings.ToLower(outputFile.AbsPath)
		contents, ok := outputFileMap[lowerAbsPath]

		// If this isn't a duplicate, keep the output file
		if !ok {
			outputFileMap[lowerAbsPath] = outputFile.Contents
			outputFiles[end] = outputFile
			end++
			continue
		}

		// If the names and contents are both the same, only keep the first one
		if bytes.Equal(contents, outputFile.Contents) {
			continue
		}

		log.AddError(nil, "Two output files share the same path but have different contents: "+outputFile.AbsPath)
	}
	return outputFiles[:end]
}

type chunkContext struct {
	log     logger.Log
	options *config.Options
	caches  *cache.CacheSet
	timer   *helpers.Timer
}

func (c *chunkContext) emitChunk(chunk config.Chunk) (results []OutputFile) {
	c.timer.Begin("Chunk " + chunk.Name)
	defer c.timer.End("Chunk " + chunk.Name)

	source, ok := c.chunkSource(chunk)
	if !ok {
		return nil
	}

	err := sources.Catch(func() {
		results = c.render(chunk.Name, source)
	})
	if err != nil {
		c.log.AddError(nil, fmt.Sprintf("Failed to emit chunk %q: %s", chunk.Name, err.Error()))
		return nil
	}
	return results
}

// The chunk follows webpack's JSONP layout. Ids are written as JSON strings
// so any id is valid.
func (c *chunkContext) chunkSource(chunk config.Chunk) (sources.Source, bool) {
	c.timer.Begin("Load modules")
	defer c.timer.End("Load modules")

	chunkSource := sources.NewConcatSource()
	if chunk.Banner != "" {
		chunkSource.AddString(chunk.Banner)
	}
	if chunk.Runtime != "" {
		runtime, err := c.caches.FSCache.ReadFile(chunk.Runtime)
		if err != nil {
			c.log.AddError(nil, fmt.Sprintf("Cannot read runtime file %q: %s", chunk.Runtime, err.Error()))
			return nil, false
		}
		chunkSource.Add(sources.NewRawSource(runtime))
	}

	chunkSource.AddString("webpackJsonp.push([[" + string(helpers.QuoteForJSON(chunk.Name, c.options.ASCIIOnly)) + "], {\n")
	ok := true
	for _, module := range chunk.Modules {
		wrapped, moduleOK := c.moduleSource(module)
		if !moduleOK {
			ok = false
			continue
		}
		chunkSource.Add(wrapped)
	}
	chunkSource.AddString("}]);\n")
	return chunkSource, ok
}

func (c *chunkContext) moduleSource(module config.Module) (sources.Source, bool) {
	leaf, ok := loadModule(c.log, c.caches, module)
	if !ok {
		return nil, false
	}

	var body sources.Source = leaf
	if len(module.Edits) > 0 {
		builder := sources.NewReplaceBuilder(leaf, module.ID)
		for _, edit := range module.Edits {
			if edit.IsInsert() {
				builder.Insert(edit.Start, edit.Content, edit.Name)
			} else {
				builder.Replace(edit.Start, *edit.End, edit.Content, edit.Name)
			}
		}
		body = builder.Build()
	}

	quotedID := string(helpers.QuoteForJSON(module.ID, c.options.ASCIIOnly))
	return sources.NewConcatSource(
		sources.NewRawSource("\t"+quotedID+": function(module, exports, require) {\n"),
		sources.NewPrefixSource("\t\t", body),
		sources.NewRawSource("\n\t},\n"),
	), true
}

func (c *chunkContext) render(name string, source sources.Source) []OutputFile {
	c.timer.Begin("Render")
	defer c.timer.End("Render")

	digest := xxhash.New()
	source.UpdateHash(digest)
	fileName := c.options.OutputFileName(name, hashForFileName(digest.Sum64()))
	absPath := filepath.Join(c.options.OutputDir, fileName)

	if c.options.SourceMap == config.SourceMapNone {
		return []OutputFile{{AbsPath: absPath, Contents: source.Bytes(), Chunk: name}}
	}

	text, sm := source.TextAndMap(sources.Options{LinesOnly: c.options.LinesOnly})
	if sm == nil {
		sm = &sourcemap.SourceMap{Sources: []string{}, Names: []string{}}
	}
	sm.File = filepath.Base(fileName)
	sm.SourceRoot = c.options.SourceRoot
	if c.options.ExcludeSourcesContent {
		sm.SourcesContent = nil
	}
	mapJSON := sm.JSON(c.options.ASCIIOnly)
	mapFileName := fileName + ".map"

	j := helpers.Joiner{}
	j.AddString(text)

	// Potentially write a trailing source map comment
	switch c.options.SourceMap {
	case config.SourceMapLinkedWithComment:
		importURL := url.URL{Path: filepath.Base(mapFileName)}
		j.EnsureNewlineAtEnd()
		j.AddString("//# sourceMappingURL=")
		j.AddString(importURL.EscapedPath())
		j.AddString("\n")

	case config.SourceMapInline:
		j.EnsureNewlineAtEnd()
		j.AddString("//# sourceMappingURL=")
		j.AddString(helpers.SourceMapDataURL(mapJSON))
		j.AddString("\n")
	}

	results := []OutputFile{{AbsPath: absPath, Contents: j.Done(), Chunk: name}}

	// Potentially write the external source map file
	switch c.options.SourceMap {
	case config.SourceMapLinkedWithComment, config.SourceMapExternalWithoutComment:
		results = append(results, OutputFile{
			AbsPath:     filepath.Join(c.options.OutputDir, mapFileName),
			Contents:    mapJSON,
			Chunk:       name,
			IsSourceMap: true,
		})
	}
	return results
}

func hashForFileName(hash uint64) string {
	var hashBytes [8]byte
	binary.BigEndian.PutUint64(hashBytes[:], hash)
	return base32.StdEncoding.EncodeToString(hashBytes[:])[:8]
}

// WriteOutputFiles writes the files to disk, creating directories as needed
func WriteOutputFiles(log logger.Log, outputFiles []OutputFile) {
	waitGroup := sync.WaitGroup{}
	for _, outputFile := range outputFiles {
		waitGroup.Add(1)
		go func(outputFile OutputFile) {
			defer waitGroup.Done()
			if err := os.MkdirAll(filepath.Dir(outputFile.AbsPath), 0755); err != nil {
				log.AddError(nil, fmt.Sprintf("Failed to create output directory: %s", err.Error()))
				return
			}
			if err := os.WriteFile(outputFile.AbsPath, outputFile.Contents, 0644); err != nil {
				log.AddError(nil, fmt.Sprintf("Failed to write to output file: %s", err.Error()))
			}
		}(outputFile)
	}
	waitGroup.Wait()
}
