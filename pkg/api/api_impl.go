package api

import (
	"path/filepath"
	"strings"

	"github.com/webpack/webpack-sources/internal/bundler"
	"github.com/webpack/webpack-sources/internal/cache"
	"github.com/webpack/webpack-sources/internal/config"
	"github.com/webpack/webpack-sources/internal/logger"
)

func validateSourceMap(value SourceMap) config.SourceMap {
	switch value {
	case SourceMapNone:
		return config.SourceMapNone
	case SourceMapLinked:
		return config.SourceMapLinkedWithComment
	case SourceMapInline:
		return config.SourceMapInline
	case SourceMapExternal:
		return config.SourceMapExternalWithoutComment
	default:
		panic("Invalid source map")
	}
}

func validateColor(value StderrColor) logger.StderrColor {
	switch value {
	case ColorIfTerminal:
		return logger.ColorIfTerminal
	case ColorNever:
		return logger.ColorNever
	case ColorAlways:
		return logger.ColorAlways
	default:
		panic("Invalid color")
	}
}

func validateLogLevel(value LogLevel) logger.LogLevel {
	switch value {
	case LogLevelVerbose:
		return logger.LevelVerbose
	case LogLevelInfo:
		return logger.LevelInfo
	case LogLevelWarning:
		return logger.LevelWarning
	case LogLevelError:
		return logger.LevelError
	default:
		panic("Invalid log level")
	}
}

func validatePath(log logger.Log, path string) string {
	if path == "" {
		return ""
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		log.AddError(nil, "Invalid path: "+path)
		return ""
	}
	return absPath
}

func newLog(options BuildOptions) logger.Log {
	if options.LogLevel == LogLevelSilent {
		return logger.NewDeferLog()
	}
	return logger.NewStderrLog(logger.StderrOptions{
		ErrorLimit: options.ErrorLimit,
		Color:      validateColor(options.Color),
		LogLevel:   validateLogLevel(options.LogLevel),
	})
}

// Returns the result and every file the build read, so that watch mode knows
// what to watch. A nil cache set means a one-off build.
func buildImpl(options BuildOptions, caches *cache.CacheSet) (BuildResult, []string) {
	log := newLog(options)
	if caches == nil {
		caches = cache.MakeCacheSet()
	}

	manifestPath := validatePath(log, options.Manifest)
	if manifestPath == "" && !log.HasErrors() {
		log.AddError(nil, "Must provide a manifest")
	}
	watchPaths := []string{}
	if manifestPath != "" {
		watchPaths = append(watchPaths, manifestPath)
	}
	if log.HasErrors() {
		return resultFromLog(log, nil), watchPaths
	}

	// The manifest itself is read every time so edits to it are picked up
	manifest, err := config.Load(manifestPath)
	if err != nil {
		log.AddError(nil, err.Error())
		return resultFromLog(log, nil), watchPaths
	}
	watchPaths = append(watchPaths, inputPaths(manifest)...)

	bundleOptions := config.DefaultOptions()
	bundleOptions.OutputDir = manifest.Dir
	manifest.Output.ApplyTo(&bundleOptions)
	if options.Sourcemap != SourceMapDefault {
		bundleOptions.SourceMap = validateSourceMap(options.Sourcemap)
	}
	if options.LinesOnly {
		bundleOptions.LinesOnly = true
	}
	if options.ASCIIOnly {
		bundleOptions.ASCIIOnly = true
	}
	if options.SourceRoot != "" {
		bundleOptions.SourceRoot = options.SourceRoot
	}
	if options.ExcludeSourcesContent {
		bundleOptions.ExcludeSourcesContent = true
	}
	if options.Outdir != "" {
		bundleOptions.OutputDir = validatePath(log, options.Outdir)
	}
	if options.FileName != "" {
		bundleOptions.FileNameTemplate = options.FileName
	}
	if err := bundleOptions.Validate(); err != nil {
		log.AddError(nil, err.Error())
	}
	if log.HasErrors() {
		return resultFromLog(log, nil), watchPaths
	}

	outputFiles := bundler.Bundle(log, bundleOptions, manifest, caches)
	if options.Write && !log.HasErrors() {
		bundler.WriteOutputFiles(log, outputFiles)
	}
	return resultFromLog(log, outputFiles), watchPaths
}

func inputPaths(manifest *config.Manifest) []string {
	var paths []string
	add := func(path string) {
		if path != "" && !strings.HasPrefix(path, "data:") {
			paths = append(paths, path)
		}
	}
	for _, chunk := range manifest.Chunks {
		add(chunk.Runtime)
		for _, module := range chunk.Modules {
			add(module.Path)
			add(module.Map)
			add(module.InnerMap)
			add(module.Original)

			// A map found through a "sourceMappingURL" comment usually sits next
			// to the module, and editing it should trigger a rebuild too
			if module.Map == "" {
				add(module.Path + ".map")
			}
		}
	}
	return paths
}

func resultFromLog(log logger.Log, outputFiles []bundler.OutputFile) BuildResult {
	msgs := log.Done()
	result := BuildResult{
		Errors:   messagesOfKind(logger.Error, msgs),
		Warnings: messagesOfKind(logger.Warning, msgs),
	}
	if len(result.Errors) == 0 {
		result.OutputFiles = make([]OutputFile, len(outputFiles))
		for i, outputFile := range outputFiles {
			result.OutputFiles[i] = OutputFile{
				Path:     outputFile.AbsPath,
				Contents: outputFile.Contents,
			}
		}
	}
	return result
}

func messagesOfKind(kind logger.MsgKind, msgs []logger.Msg) []Message {
	var filtered []Message
	for _, msg := range msgs {
		if msg.Kind == kind {
			var location *Location
			if msg.Location != nil {
				location = &Location{
					File:   msg.Location.File,
					Line:   msg.Location.Line,
					Column: msg.Location.Column,
				}
			}
			filtered = append(filtered, Message{
				Text:     msg.Text,
				Location: location,
			})
		}
	}
	return filtered
}
