package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/webpack/webpack-sources/internal/sourcemap"
	"github.com/webpack/webpack-sources/internal/test"
)

func TestLookup(t *testing.T) {
	sm, err := sourcemap.Parse([]byte(`{"version":3,"sourceRoot":"src","sources":["a.js"],"names":["foo"],"mappings":"AAAA,EAAEA;AACA"}`))
	if err != nil {
		t.Fatal(err)
	}

	text, ok := lookup(sm, 1, 3)
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, text, "src/a.js:1:2 (foo)")

	text, ok = lookup(sm, 2, 0)
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, text, "src/a.js:2:2")

	_, ok = lookup(sm, 3, 0)
	test.AssertEqual(t, ok, false)
}

func TestLookupCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js.map")
	if err := os.WriteFile(path, []byte(`{"version":3,"sources":["a.js"],"names":[],"mappings":"AAAA"}`), 0644); err != nil {
		t.Fatal(err)
	}
	cmd := rootCmd()
	out := bytes.Buffer{}
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"lookup", path, "1", "0"})
	test.AssertEqual(t, cmd.Execute(), nil)
	test.AssertEqual(t, out.String(), "a.js:1:0\n")

	cmd.SetArgs([]string{"lookup", path, "0", "0"})
	test.AssertEqual(t, cmd.Execute() != nil, true)
}

func TestBuildFlags(t *testing.T) {
	flags := &buildFlags{manifest: "bundle.yaml", sourcemap: "external", logLevel: "silent", color: "false"}
	options, err := flags.options()
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, options.Manifest, "bundle.yaml")
	test.AssertEqual(t, options.Write, true)

	flags.sourcemap = "sometimes"
	_, err = flags.options()
	test.AssertEqual(t, err != nil, true)
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	out := bytes.Buffer{}
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	test.AssertEqual(t, cmd.Execute(), nil)
	test.AssertEqual(t, out.String(), wpsourcesVersion+"\n")
}
