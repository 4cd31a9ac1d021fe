package bundler

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/webpack/webpack-sources/internal/cache"
	"github.com/webpack/webpack-sources/internal/config"
	"github.com/webpack/webpack-sources/internal/helpers"
	"github.com/webpack/webpack-sources/internal/logger"
	"github.com/webpack/webpack-sources/internal/sourcemap"
	"github.com/webpack/webpack-sources/internal/sources"
)

// The raw inputs of a module leaf. A missing map is the empty string.
type moduleInputs struct {
	contents     string
	mapText      string
	mapPath      string
	innerMapText string
	innerMapPath string
	original     *string
}

// Builds the leaf of a module, which is the module's file together with its
// input maps. The leaf is shared through the source cache.
func loadModule(log logger.Log, caches *cache.CacheSet, module config.Module) (sources.Source, bool) {
	inputs, ok := readModuleInputs(log, caches, module)
	if !ok {
		return nil, false
	}

	originalText := ""
	if inputs.original != nil {
		originalText = *inputs.original
	}
	removeFlag := "keep"
	if module.RemoveOriginalSource {
		removeFlag = "remove"
	}
	key := cache.SourceKey{
		Path: module.Path,
		ID:   module.ID,
		Hash: cache.ContentHash(inputs.contents, inputs.mapText, inputs.innerMapText, originalText, removeFlag),
	}
	for _, path := range []string{module.Path, inputs.mapPath, inputs.innerMapPath, module.Original} {
		if path != "" {
			key.Inputs = append(key.Inputs, path)
		}
	}

	leaf := caches.SourceCache.Get(key, func() sources.Source {
		return buildLeaf(log, module, inputs)
	})
	return leaf, true
}

func buildLeaf(log logger.Log, module config.Module, inputs moduleInputs) sources.Source {
	if inputs.mapText == "" {
		return sources.NewOriginalSource(inputs.contents, module.ID)
	}

	sm, err := sourcemap.Parse([]byte(inputs.mapText))
	if err != nil {
		log.AddWarning(&logger.MsgLocation{File: describeMap(inputs.mapPath, module)},
			fmt.Sprintf("Ignoring invalid source map: %s", err.Error()))
		return sources.NewOriginalSource(inputs.contents, module.ID)
	}

	options := sources.SourceMapSourceOptions{
		OriginalSource:       inputs.original,
		RemoveOriginalSource: module.RemoveOriginalSource,
	}
	if inputs.innerMapText != "" {
		inner, err := sourcemap.Parse([]byte(inputs.innerMapText))
		if err != nil {
			log.AddWarning(&logger.MsgLocation{File: describeMap(inputs.innerMapPath, module)},
				fmt.Sprintf("Ignoring invalid inner source map: %s", err.Error()))
		} else {
			options.InnerSourceMap = inner
		}
	}
	return sources.NewSourceMapSource(inputs.contents, module.ID, sm, options)
}

func describeMap(path string, module config.Module) string {
	if path == "" {
		return module.Path
	}
	return path
}

func readModuleInputs(log logger.Log, caches *cache.CacheSet, module config.Module) (moduleInputs, bool) {
	contents, err := caches.FSCache.ReadFile(module.Path)
	if err != nil {
		log.AddError(nil, fmt.Sprintf("Cannot read file %q: %s", module.Path, err.Error()))
		return moduleInputs{}, false
	}
	inputs := moduleInputs{contents: contents}
	var ok bool

	if module.Map != "" {
		inputs.mapText, inputs.mapPath, ok = readMap(log, caches, module.Map, module)
		if !ok {
			return moduleInputs{}, false
		}
	} else if comment, start, ok := trailingSourceMappingURL(contents); ok {
		mapText, mapPath, found := extractSourceMapFromComment(log, caches, comment, module)
		if found {
			inputs.contents = contents[:start]
			inputs.mapText = mapText
			inputs.mapPath = mapPath
		}
	}

	if module.InnerMap != "" {
		inputs.innerMapText, inputs.innerMapPath, ok = readMap(log, caches, module.InnerMap, module)
		if !ok {
			return moduleInputs{}, false
		}
	}

	if module.Original != "" {
		original, err := caches.FSCache.ReadFile(module.Original)
		if err != nil {
			log.AddError(nil, fmt.Sprintf("Cannot read file %q: %s", module.Original, err.Error()))
			return moduleInputs{}, false
		}
		inputs.original = &original
	}
	return inputs, true
}

// Reads a map given as a path or as a data URL. Data URLs have no path.
func readMap(log logger.Log, caches *cache.CacheSet, pathOrURL string, module config.Module) (string, string, bool) {
	if strings.HasPrefix(pathOrURL, "data:") {
		decoded, ok := helpers.DecodeSourceMapDataURL(pathOrURL)
		if !ok {
			log.AddError(&logger.MsgLocation{File: module.Path}, "Unsupported source map data URL")
			return "", "", false
		}
		return string(decoded), "", true
	}
	contents, err := caches.FSCache.ReadFile(pathOrURL)
	if err != nil {
		log.AddError(nil, fmt.Sprintf("Cannot read file %q: %s", pathOrURL, err.Error()))
		return "", "", false
	}
	return contents, pathOrURL, true
}

// Finds a "//# sourceMappingURL=" comment on the last non-empty line. It
// returns the URL and the byte offset where the comment's line starts.
func trailingSourceMappingURL(contents string) (string, int, bool) {
	trimmed := strings.TrimRight(contents, " \t\r\n")
	start := strings.LastIndexByte(trimmed, '\n') + 1
	line := trimmed[start:]
	for _, prefix := range []string{"//# sourceMappingURL=", "//@ sourceMappingURL="} {
		if strings.HasPrefix(line, prefix) {
			url := strings.TrimSpace(line[len(prefix):])
			if url != "" {
				return url, start, true
			}
		}
	}
	return "", 0, false
}

func extractSourceMapFromComment(log logger.Log, caches *cache.CacheSet, comment string, module config.Module) (string, string, bool) {
	// Data URL
	if strings.HasPrefix(comment, "data:") {
		if decoded, ok := helpers.DecodeSourceMapDataURL(comment); ok {
			return string(decoded), "", true
		}

		// Anything else is unsupported
		log.AddWarning(&logger.MsgLocation{File: module.Path}, "Unsupported source map comment")
		return "", "", false
	}

	if strings.Contains(comment, "://") {
		log.AddWarning(&logger.MsgLocation{File: module.Path}, "Unsupported source map comment")
		return "", "", false
	}

	// Relative path next to the module
	absPath := filepath.Join(filepath.Dir(module.Path), filepath.FromSlash(comment))
	contents, err := caches.FSCache.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Don't report a warning because this is likely unactionable
			return "", "", false
		}
		log.AddError(&logger.MsgLocation{File: module.Path}, fmt.Sprintf("Cannot read file %q: %s", absPath, err.Error()))
		return "", "", false
	}
	return contents, absPath, true
}
