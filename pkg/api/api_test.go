package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/webpack/webpack-sources/internal/test"
)

const testManifest = `
output:
  dir: out
chunks:
  - name: main
    modules:
      - {id: ./a.js, path: a.js}
`

func writeProject(t *testing.T, moduleText string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bundle.yaml"), []byte(testManifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.js"), []byte(moduleText), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestBuild(t *testing.T) {
	dir := writeProject(t, "a();\n")
	result := Build(BuildOptions{Manifest: filepath.Join(dir, "bundle.yaml")})

	test.AssertEqual(t, len(result.Errors), 0)
	test.AssertEqual(t, len(result.OutputFiles), 2)
	test.AssertEqual(t, result.OutputFiles[0].Path, filepath.Join(dir, "out", "main.js"))
	test.AssertEqual(t, result.OutputFiles[1].Path, filepath.Join(dir, "out", "main.js.map"))
	test.AssertEqual(t, strings.Contains(string(result.OutputFiles[0].Contents), "\t\ta();\n"), true)

	// Nothing is written unless asked for
	_, err := os.Stat(filepath.Join(dir, "out"))
	test.AssertEqual(t, os.IsNotExist(err), true)
}

func TestBuildOverridesManifest(t *testing.T) {
	dir := writeProject(t, "a();\n")
	result := Build(BuildOptions{
		Manifest:  filepath.Join(dir, "bundle.yaml"),
		Sourcemap: SourceMapNone,
		Outdir:    filepath.Join(dir, "dist"),
		FileName:  "[name].bundle.js",
		Write:     true,
	})

	test.AssertEqual(t, len(result.Errors), 0)
	test.AssertEqual(t, len(result.OutputFiles), 1)
	contents, err := os.ReadFile(filepath.Join(dir, "dist", "main.bundle.js"))
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, string(contents), string(result.OutputFiles[0].Contents))
}

func TestBuildErrors(t *testing.T) {
	result := Build(BuildOptions{})
	test.AssertEqual(t, len(result.Errors), 1)
	test.AssertEqual(t, result.Errors[0].Text, "Must provide a manifest")

	result = Build(BuildOptions{Manifest: filepath.Join(t.TempDir(), "missing.yaml")})
	test.AssertEqual(t, len(result.Errors), 1)
	test.AssertEqual(t, strings.Contains(result.Errors[0].Text, "failed to read manifest"), true)

	dir := writeProject(t, "a();\n")
	result = Build(BuildOptions{Manifest: filepath.Join(dir, "bundle.yaml"), FileName: "bundle.js"})
	test.AssertEqual(t, len(result.Errors), 1)
	test.AssertEqual(t, len(result.OutputFiles), 0)
}

func TestTextAndMapReturnsUsageErrors(t *testing.T) {
	_, _, err := TextAndMap(NewSizeOnlySource(3), Options{})
	test.AssertEqual(t, errors.Is(err, ErrContentUnavailable), true)

	text, sm, err := TextAndMap(NewOriginalSource("a\n", "a.js"), Options{})
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, text, "a\n")
	test.AssertEqual(t, sm.Sources[0], "a.js")

	json, err := MapJSON(NewRawSource("a"), Options{}, false)
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, json == nil, true)
}

func TestComposeThroughFacade(t *testing.T) {
	builder := NewReplaceBuilder(NewOriginalSource("var x;\n", "x.js"), "x.js")
	builder.Replace(0, 2, "let", "")
	source := NewConcatSource(NewRawSource("// header\n"), NewPrefixSource("  ", builder.Build()))
	test.AssertEqual(t, source.Text(), "// header\n  let x;\n")

	json, err := MapJSON(NewCachedSource(source), Options{}, false)
	test.AssertEqual(t, err, nil)
	sm, err := ParseMap(json)
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, sm.Sources[0], "x.js")
}

func TestWatch(t *testing.T) {
	dir := writeProject(t, "a();\n")
	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan BuildResult, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, BuildOptions{Manifest: filepath.Join(dir, "bundle.yaml")}, func(result BuildResult) {
			results <- result
		})
	}()

	timeout := time.After(10 * time.Second)
	select {
	case result := <-results:
		test.AssertEqual(t, len(result.Errors), 0)
	case <-timeout:
		t.Fatal("timed out waiting for the first build")
	}

	// Keep touching the file in case the first write lands before the watch
	// is registered
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for rebuilt := false; !rebuilt; {
		select {
		case <-ticker.C:
			if err := os.WriteFile(filepath.Join(dir, "a.js"), []byte("b();\n"), 0644); err != nil {
				t.Fatal(err)
			}
		case result := <-results:
			test.AssertEqual(t, len(result.Errors), 0)
			if strings.Contains(string(result.OutputFiles[0].Contents), "\t\tb();\n") {
				rebuilt = true
			}
		case <-timeout:
			t.Fatal("timed out waiting for the rebuild")
		}
	}

	cancel()
	test.AssertEqual(t, <-done, nil)
}
