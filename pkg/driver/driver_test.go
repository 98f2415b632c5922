package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/parser"
	"github.com/frxstrem/cain/pkg/rewriter"
	"github.com/frxstrem/cain/pkg/syntax"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInputFormat(t *testing.T) {
	cases := []struct {
		path, format, expected string
	}{
		{"main.rs", "", FormatSource},
		{"tree.json", "", FormatJSON},
		{"tree.YML", "", FormatYAML},
		{"tree.json", "source", FormatSource},
		{"noext", "", FormatSource},
	}
	for _, c := range cases {
		if got := InputFormat(c.path, c.format); got != c.expected {
			t.Errorf("InputFormat(%q, %q) = %s, want %s", c.path, c.format, got, c.expected)
		}
	}
}

func TestReadInputSource(t *testing.T) {
	input, err := ReadInput(strings.NewReader("let x = 1; x"), "main.rs", "")
	if err != nil {
		t.Fatal(err)
	}
	if input.Source != "let x = 1; x" {
		t.Errorf("Source = %q", input.Source)
	}
	if input.Tree.Name != common.NameBlock || input.Tree.Option(common.OptionSrc) != "main.rs" {
		t.Errorf("unexpected root %s %v", input.Tree.Name, input.Tree.Options)
	}
}

func TestReadInputTrees(t *testing.T) {
	b, err := parser.ParseBlock("let y = if c { 1 } else { 2 }; y")
	if err != nil {
		t.Fatal(err)
	}
	want := syntax.Format(b)
	for _, format := range []string{FormatJSON, FormatYAML} {
		printFunc, err := common.PickPrintFunc(format)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := printFunc(syntax.ToNode(b), "  ", &buf, &common.PrintOptions{IncludeSpans: true}); err != nil {
			t.Fatal(err)
		}
		input, err := ReadInput(&buf, "", format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		decoded, err := syntax.FromNode(input.Tree)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if got := syntax.Format(decoded); got != want {
			t.Errorf("%s: got %s, want %s", format, got, want)
		}
		if input.Source != "" {
			t.Errorf("%s: tree input has source %q", format, input.Source)
		}
	}
}

func TestReadInputRejectsNonBlock(t *testing.T) {
	_, err := ReadInput(strings.NewReader(`{"Name": "id", "Options": {"name": "x"}}`), "", FormatJSON)
	if err == nil {
		t.Error("expected an error for a non-block root")
	}
	_, err = ReadInput(strings.NewReader("x"), "", "XML")
	if err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestWriteOutput(t *testing.T) {
	b, err := parser.ParseBlock("let x = 1; x")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteOutput(&buf, syntax.ToNode(b), &common.PrintOptions{Format: "source"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{ let x = 1; x }\n" {
		t.Errorf("got %q", buf.String())
	}
	buf.Reset()
	if err := WriteOutput(&buf, syntax.ToNode(b), &common.PrintOptions{Format: "JSON"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"Name":"block"`) {
		t.Errorf("got %s", buf.String())
	}
	if err := WriteOutput(&buf, syntax.ToNode(b), &common.PrintOptions{Format: "XML"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestCompileAll(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()

	tree, err := parser.ParseBlock("f(match n { 0 => a, _ => b })")
	if err != nil {
		t.Fatal(err)
	}
	var treeJSON bytes.Buffer
	if err := common.PrintASTJSON(syntax.ToNode(tree), "", &treeJSON, &common.PrintOptions{}); err != nil {
		t.Fatal(err)
	}
	paths := []string{
		writeFile(t, dir, "one.rs", "1 + if x { a } else { b }"),
		writeFile(t, dir, "two.rs", "let z = match x { 1 => 123, _ => 0 }; fn square(v: i32) -> i32 { v * v } square(z)"),
		writeFile(t, dir, "three.json", treeJSON.String()),
	}

	bundle, err := OpenBundle(filepath.Join(dir, "bundle.db"), false)
	if err != nil {
		t.Fatal(err)
	}
	defer bundle.Close()

	c, err := NewCompiler(nil)
	if err != nil {
		t.Fatal(err)
	}
	c.OutputDir = outDir
	c.Bundle = bundle
	c.Jobs = 2
	results, err := c.CompileAll(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{
		"{ if x { 1 + { a } } else { 1 + { b } } }",
		"{ fn square(v: i32) -> i32 { v * v } match x { 1 => { let z = 123; square(z) }, _ => { let z = 0; square(z) } } }",
		"{ match n { 0 => f(a), _ => f(b) } }",
	}
	for i, result := range results {
		if result.Path != paths[i] {
			t.Errorf("result %d is for %s, want %s", i, result.Path, paths[i])
		}
		if got := syntax.Format(result.Output); got != expected[i] {
			t.Errorf("%s: got %s, want %s", result.Path, got, expected[i])
		}
		written, err := os.ReadFile(result.Written)
		if err != nil {
			t.Errorf("%s: %v", result.Path, err)
		} else if string(written) != expected[i]+"\n" {
			t.Errorf("%s: wrote %q", result.Written, written)
		}
		unit, err := bundle.Unit(result.Path)
		if err != nil {
			t.Errorf("%s: %v", result.Path, err)
			continue
		}
		if unit.Stats() != result.Stats {
			t.Errorf("%s: bundled stats %+v, want %+v", result.Path, unit.Stats(), result.Stats)
		}
	}
	if results[0].Stats.Hoisted != 1 {
		t.Errorf("Hoisted = %d, want 1", results[0].Stats.Hoisted)
	}
	if filepath.Base(results[2].Written) != "three.rs" {
		t.Errorf("output file %s", results[2].Written)
	}
}

func TestCompileCheckError(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "good.rs", "let y = 1; y"),
		writeFile(t, dir, "bad.rs", "let y = match x {}; y"),
	}
	c, err := NewCompiler(nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.CompileAll(context.Background(), paths)
	var checkErr *CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("expected a CheckError, got %v", err)
	}
	if checkErr.Path != paths[1] || len(checkErr.Checker.Issues) != 1 {
		t.Errorf("unexpected check error %v", checkErr)
	}
	if !strings.Contains(err.Error(), "match without arms") {
		t.Errorf("error text %q", err.Error())
	}
}

func TestCompileRewriteError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.rs", "let y = 1 +")
	c, err := NewCompiler(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.CompileFile(context.Background(), path); err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("expected a parse error naming %s, got %v", path, err)
	}
	if _, err := c.CompileFile(context.Background(), filepath.Join(dir, "missing.rs")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestCompileTrace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "one.rs", "1 + if x { a } else { b }")
	c, err := NewCompiler(nil)
	if err != nil {
		t.Fatal(err)
	}
	var trace bytes.Buffer
	c.Trace = &trace
	if _, err := c.CompileFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	want := path + ":1:5: hoist if around 1 + __cain_placeholder_0\n"
	if trace.String() != want {
		t.Errorf("trace = %q, want %q", trace.String(), want)
	}
}

func TestCompileCancelled(t *testing.T) {
	c, err := NewCompiler(nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.CompileFile(ctx, "whatever.rs"); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestNewCompilerVersion(t *testing.T) {
	config := rewriter.MustDefaultConfig()
	config.Requires = ">= 99.0.0"
	if _, err := NewCompiler(config); err == nil {
		t.Error("expected a version mismatch")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.rs", "let y = 1; y")
	c, err := NewCompiler(nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outputs := make(chan string, 64)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, []string{path}, func(result *Result, err error) {
			if err == nil {
				select {
				case outputs <- syntax.Format(result.Output):
				default:
				}
			}
		})
	}()

	want := "{ if c { 2 + { 1 } } else { 2 + { 3 } } }"
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case got := <-outputs:
			if got == want {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("Watch returned %v", err)
				}
				return
			}
		case <-tick.C:
			// The watcher may not be ready yet, so keep writing.
			writeFile(t, dir, "live.rs", "2 + if c { 1 } else { 3 }")
		case err := <-done:
			t.Fatalf("Watch returned early: %v", err)
		case <-deadline:
			t.Fatal("no compile observed after writing the file")
		}
	}
}
