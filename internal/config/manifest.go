package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest describes the chunks of a bundle and the modules inside them.
// It is usually loaded from a "bundle.yaml" file.
type Manifest struct {
	// Absolute directory the manifest was loaded from. Relative paths in the
	// manifest have already been resolved against it.
	Dir string `yaml:"-"`

	Output OutputConfig `yaml:"output"`
	Chunks []Chunk      `yaml:"chunks"`
}

type OutputConfig struct {
	Dir                   string    `yaml:"dir"`
	FileName              string    `yaml:"fileName"`
	SourceMap             SourceMap `yaml:"sourceMap"`
	LinesOnly             bool      `yaml:"linesOnly"`
	ASCIIOnly             bool      `yaml:"asciiOnly"`
	SourceRoot            string    `yaml:"sourceRoot"`
	ExcludeSourcesContent bool      `yaml:"excludeSourcesContent"`

	hasSourceMap bool
}

type Chunk struct {
	Name    string   `yaml:"name"`
	Banner  string   `yaml:"banner"`
	Runtime string   `yaml:"runtime"`
	Modules []Module `yaml:"modules"`
}

type Module struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`

	// Source map for the file at Path, either a file or a base64 data URL.
	// Without it a trailing "sourceMappingURL" comment in the file is used.
	Map string `yaml:"map"`

	// Source map of an earlier step that produced the file the input map
	// points into, together with that file's contents
	InnerMap             string `yaml:"innerMap"`
	Original             string `yaml:"original"`
	RemoveOriginalSource bool   `yaml:"removeOriginalSource"`

	Edits []Edit `yaml:"edits"`
}

// Edit replaces the bytes Start through End (inclusive) of a module. An edit
// without End inserts Content before the byte at Start.
type Edit struct {
	Start   int    `yaml:"start"`
	End     *int   `yaml:"end"`
	Content string `yaml:"content"`
	Name    string `yaml:"name"`
}

func (edit Edit) IsInsert() bool {
	return edit.End == nil
}

func (sm *SourceMap) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, ok := ParseSourceMap(text)
	if !ok {
		return fmt.Errorf("line %d: invalid source map mode %q (valid: none, inline, linked, external)", value.Line, text)
	}
	*sm = parsed
	return nil
}

func (output *OutputConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain OutputConfig
	if err := value.Decode((*plain)(output)); err != nil {
		return err
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "sourceMap" {
			output.hasSourceMap = true
		}
	}
	return nil
}

// ApplyTo copies the values set in the manifest over the given options
func (output *OutputConfig) ApplyTo(options *Options) {
	if output.Dir != "" {
		options.OutputDir = output.Dir
	}
	if output.FileName != "" {
		options.FileNameTemplate = output.FileName
	}
	if output.hasSourceMap {
		options.SourceMap = output.SourceMap
	}
	if output.LinesOnly {
		options.LinesOnly = true
	}
	if output.ASCIIOnly {
		options.ASCIIOnly = true
	}
	if output.SourceRoot != "" {
		options.SourceRoot = output.SourceRoot
	}
	if output.ExcludeSourcesContent {
		options.ExcludeSourcesContent = true
	}
}

func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest directory: %w", err)
	}
	manifest, err := ParseManifest(data, dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

// ParseManifest decodes a manifest and resolves its relative paths against dir
func ParseManifest(data []byte, dir string) (*Manifest, error) {
	manifest := &Manifest{Dir: dir}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(manifest); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	manifest.resolvePaths()
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (manifest *Manifest) resolve(path *string) {
	if *path != "" && !filepath.IsAbs(*path) && !strings.HasPrefix(*path, "data:") {
		*path = filepath.Join(manifest.Dir, *path)
	}
}

func (manifest *Manifest) resolvePaths() {
	manifest.resolve(&manifest.Output.Dir)
	for i := range manifest.Chunks {
		chunk := &manifest.Chunks[i]
		manifest.resolve(&chunk.Runtime)
		for j := range chunk.Modules {
			module := &chunk.Modules[j]
			manifest.resolve(&module.Path)
			manifest.resolve(&module.Map)
			manifest.resolve(&module.InnerMap)
			manifest.resolve(&module.Original)
		}
	}
}

func (manifest *Manifest) Validate() error {
	if len(manifest.Chunks) == 0 {
		return errors.New("the manifest must contain at least one chunk")
	}
	chunkNames := make(map[string]bool)
	for i, chunk := range manifest.Chunks {
		if chunk.Name == "" {
			return fmt.Errorf("chunks[%d]: a name is required", i)
		}
		if chunkNames[chunk.Name] {
			return fmt.Errorf("chunks[%d]: duplicate chunk name %q", i, chunk.Name)
		}
		chunkNames[chunk.Name] = true

		moduleIDs := make(map[string]bool)
		for j, module := range chunk.Modules {
			where := fmt.Sprintf("chunk %q, modules[%d]", chunk.Name, j)
			if module.ID == "" {
				return fmt.Errorf("%s: an id is required", where)
			}
			if moduleIDs[module.ID] {
				return fmt.Errorf("%s: duplicate module id %q", where, module.ID)
			}
			moduleIDs[module.ID] = true
			if module.Path == "" {
				return fmt.Errorf("%s: a path is required", where)
			}
			if module.InnerMap != "" && module.Map == "" {
				return fmt.Errorf("%s: \"innerMap\" requires \"map\"", where)
			}
			if module.Original != "" && module.InnerMap == "" {
				return fmt.Errorf("%s: \"original\" requires \"innerMap\"", where)
			}
			for k, edit := range module.Edits {
				if edit.Start < 0 {
					return fmt.Errorf("%s, edits[%d]: start must not be negative", where, k)
				}
				if edit.End != nil && *edit.End < edit.Start {
					return fmt.Errorf("%s, edits[%d]: end %d is before start %d", where, k, *edit.End, edit.Start)
				}
			}
		}
	}
	return nil
}
