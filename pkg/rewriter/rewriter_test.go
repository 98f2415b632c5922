package rewriter_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/frxstrem/cain/pkg/parser"
	"github.com/frxstrem/cain/pkg/rewriter"
	"github.com/frxstrem/cain/pkg/syntax"
)

func mustParse(t *testing.T, src string) *syntax.Block {
	t.Helper()
	b, err := parser.ParseBlock(src)
	if err != nil {
		t.Fatalf("ParseBlock(%q) failed: %v", src, err)
	}
	return b
}

func TestRewriteGolden(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"if operand",
			"1 + if x { a } else { b }",
			"{ if x { 1 + { a } } else { 1 + { b } } }",
		},
		{
			"match operand",
			"1 + match x { 1 => a, _ => b }",
			"{ match x { 1 => 1 + a, _ => 1 + b } }",
		},
		{
			"binding continuation",
			`let z = match x { 1 => 123, _ => "def" }; println!("{}", z);`,
			`{ match x { 1 => { let z = 123; println!("{}", z); }, _ => { let z = "def"; println!("{}", z); } } }`,
		},
		{
			"declarations first",
			"let z = match x { 1 => 123, _ => 0 }; fn square(x: i32) -> i32 { x * x } square(z)",
			"{ fn square(x: i32) -> i32 { x * x } match x { 1 => { let z = 123; square(z) }, _ => { let z = 0; square(z) } } }",
		},
		{
			"closure body is its own scope",
			"let f = || 1 + match x { 1 => 123, _ => 0 };",
			"{ let f = || match x { 1 => 1 + 123, _ => 1 + 0 }; }",
		},
		{
			"loop body is its own scope",
			"let f = match x { 1 => a, _ => b }; loop { match y { 1 => f(), _ => g() } }",
			"{ match x { 1 => { let f = a; loop { match y { 1 => f(), _ => g() } } }, _ => { let f = b; loop { match y { 1 => f(), _ => g() } } } } }",
		},
		{
			"missing else",
			"let u = if c { side(); }; done(u)",
			"{ if c { let u = { side(); }; done(u) } else { let u = {}; done(u) } }",
		},
		{
			"if let",
			"let r = if let Some(v) = opt { v } else { 0 }; r * 2",
			"{ if let Some(__cain_ident_0) = opt { let r = { let v = __cain_ident_0; v }; r * 2 } else { let r = { 0 }; r * 2 } }",
		},
		{
			"mutable binding",
			"let _ = match a.as_mut() { Some(mut b) => inc(&mut b), _ => {} }; inc(&mut b);",
			"{ match a.as_mut() { Some(__cain_ident_0) => { let _ = { let mut b = __cain_ident_0; inc(&mut b) }; inc(&mut b); }, _ => { let _ = {}; inc(&mut b); } } }",
		},
		{
			"sub-pattern is tested again",
			"let v = match n { x @ 1..=9 => x, _ => 0 }; v",
			"{ match n { __cain_ident_0 @ 1..=9 if matches!(&__cain_ident_0, 1..=9) => { let v = { let x = __cain_ident_0; x }; v }, _ => { let v = 0; v } } }",
		},
		{
			"plain let",
			"let x = 1; x",
			"{ let x = 1; x }",
		},
		{
			"statement conditional",
			"if c { x; }",
			"{ if c { x; } }",
		},
	}
	for _, c := range cases {
		out, err := rewriter.Rewrite(mustParse(t, c.input))
		if err != nil {
			t.Errorf("%s: Rewrite failed: %v", c.name, err)
			continue
		}
		if got := syntax.Format(out); got != c.expected {
			t.Errorf("%s:\n got  %s\n want %s", c.name, got, c.expected)
		}
	}
}

func TestRewriteLeavesInputUnchanged(t *testing.T) {
	src := "let z = match x { Some(v) => v, None => 0 }; z + 1"
	b := mustParse(t, src)
	before := syntax.Format(b)
	if _, err := rewriter.Rewrite(b); err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if after := syntax.Format(b); after != before {
		t.Errorf("input changed:\n before %s\n after  %s", before, after)
	}
}

func TestRewriteIsFixedPoint(t *testing.T) {
	inputs := []string{
		"1 + if x { a } else { b } + if y { c } else { d }",
		"let z = match x { Some(r) => r, None => 0 }; let w = match z { 0 => a, _ => b }; w",
		"let r = if let Some(v) = opt && v > 2 { v } else { 0 }; r",
		"let d = match n { x @ (1 | 2) => x, y => y + 1 }; d",
		"let g = if a { 1 } else if b { 2 } else { 3 }; g",
		"f(match x { (a, b) if a > b => a, (a, _) => a })",
	}
	config := rewriter.MustDefaultConfig()
	config.FixedPoint = true
	r, err := rewriter.NewRewriter(config)
	if err != nil {
		t.Fatal(err)
	}
	for _, input := range inputs {
		out, _, err := r.Rewrite(mustParse(t, input))
		if err != nil {
			t.Errorf("Rewrite(%q) failed: %v", input, err)
			continue
		}
		// The same check by hand, reparsing the statements of the printed
		// output. Parsing the whole text would add a block layer.
		text := syntax.Format(out)
		inner := strings.TrimSuffix(strings.TrimPrefix(text, "{ "), " }")
		again, err := rewriter.Rewrite(mustParse(t, inner))
		if err != nil {
			t.Errorf("Rewrite(%q) failed: %v", text, err)
			continue
		}
		if got := syntax.Format(again); got != text {
			t.Errorf("not a fixed point:\n once  %s\n twice %s", text, got)
		}
	}
}

func TestRewriteSiblingOrder(t *testing.T) {
	// The conditional discovered first ends up outermost.
	out, err := rewriter.Rewrite(mustParse(t, "f(if a { 1 } else { 2 }, match b { _ => 3 })"))
	if err != nil {
		t.Fatal(err)
	}
	want := "{ if a { match b { _ => f({ 1 }, 3) } } else { match b { _ => f({ 2 }, 3) } } }"
	if got := syntax.Format(out); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRewriteCaptureNamesAvoidInput(t *testing.T) {
	src := "let y = match p { Some(v) => v, None => 0 }; let __cain_ident_4 = 1; y"
	out, err := rewriter.Rewrite(mustParse(t, src))
	if err != nil {
		t.Fatal(err)
	}
	if got := syntax.Format(out); !strings.Contains(got, "Some(__cain_ident_5)") {
		t.Errorf("expected the capture after __cain_ident_4, got %s", got)
	}
}

func TestRewriteDistinctCaptures(t *testing.T) {
	src := `
		let a = match p { Some(r) => r, None => 0 };
		let b = match q { Some(r) => r, None => 1 };
		a + b
	`
	out, err := rewriter.Rewrite(mustParse(t, src))
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	syntax.Inspect(out, func(n syntax.Node) bool {
		m, ok := n.(*syntax.Match)
		if !ok {
			return true
		}
		for _, arm := range m.Arms {
			syntax.Inspect(arm.Pat, func(n syntax.Node) bool {
				if id, ok := n.(*syntax.IdentPat); ok {
					seen[id.Name] = true
				}
				return true
			})
		}
		return true
	})
	if !seen["__cain_ident_0"] || !seen["__cain_ident_1"] || len(seen) != 2 {
		t.Errorf("expected two distinct captures, got %v", seen)
	}
}

func TestRewriteErrors(t *testing.T) {
	cases := []struct {
		input string
		kind  rewriter.ErrorKind
	}{
		{"let y = 1 + match x { m!(a) => 1, _ => 2 };", rewriter.UnsupportedPattern},
		{"let __cain_placeholder_3 = 1;", rewriter.ReservedName},
		{"f(__cain_placeholder_0)", rewriter.ReservedName},
	}
	for _, c := range cases {
		_, err := rewriter.Rewrite(mustParse(t, c.input))
		var rerr *rewriter.Error
		if !errors.As(err, &rerr) {
			t.Errorf("Rewrite(%q): expected *rewriter.Error, got %v", c.input, err)
			continue
		}
		if rerr.Kind != c.kind {
			t.Errorf("Rewrite(%q): got %s, want %s", c.input, rerr.Kind, c.kind)
		}
		if rerr.IsBug() {
			t.Errorf("Rewrite(%q): input errors are not bugs", c.input)
		}
		if rerr.Span.IsZero() {
			t.Errorf("Rewrite(%q): error has no position", c.input)
		}
	}
}

func TestRewriteStats(t *testing.T) {
	r := &rewriter.Rewriter{}
	_, stats, err := r.Rewrite(mustParse(t, "let v = 1 + match n { x @ 1..=9 => x, _ => 0 }; if v > 0 { f(); }"))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Conditionals != 2 {
		t.Errorf("Conditionals = %d, want 2", stats.Conditionals)
	}
	if stats.Hoisted != 1 {
		t.Errorf("Hoisted = %d, want 1", stats.Hoisted)
	}
	if stats.Captures != 1 {
		t.Errorf("Captures = %d, want 1", stats.Captures)
	}
	if stats.Scopes == 0 {
		t.Errorf("Scopes = 0")
	}
}

func TestRewriteTrace(t *testing.T) {
	var trace bytes.Buffer
	r := &rewriter.Rewriter{Trace: &trace}
	if _, _, err := r.Rewrite(mustParse(t, "1 + if x { a } else { b }")); err != nil {
		t.Fatal(err)
	}
	want := "1:5: hoist if around 1 + __cain_placeholder_0\n"
	if trace.String() != want {
		t.Errorf("trace = %q, want %q", trace.String(), want)
	}
}

func TestRewriteNodeTidiesFirst(t *testing.T) {
	r, err := rewriter.NewRewriter(rewriter.MustDefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	node, stats, err := r.RewriteNode(syntax.ToNode(mustParse(t, "let y = (x) + if c { 1 } else { 2 };")))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Tidied != 1 {
		t.Errorf("Tidied = %d, want 1", stats.Tidied)
	}
	out, err := syntax.FromNode(node)
	if err != nil {
		t.Fatal(err)
	}
	want := "{ if c { let y = x + { 1 }; } else { let y = x + { 2 }; } }"
	if got := syntax.Format(out); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestConfig(t *testing.T) {
	config := rewriter.MustDefaultConfig()
	if !config.Verify || !config.Tidy || config.FixedPoint {
		t.Errorf("unexpected defaults: %+v", config)
	}
	if config.Print.Format != "SOURCE" {
		t.Errorf("default print format = %q", config.Print.Format)
	}

	config, err := rewriter.LoadConfigFromString("name: future\nrequires: \">= 9.0.0\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rewriter.NewRewriter(config); err == nil {
		t.Error("expected a version mismatch")
	}

	config.Requires = "not a constraint"
	if err := config.CheckVersion(rewriter.Version); err == nil {
		t.Error("expected a bad constraint to be reported")
	}

	config.Requires = "~0.3"
	if err := config.CheckVersion(rewriter.Version); err != nil {
		t.Errorf("CheckVersion: %v", err)
	}

	config, err = rewriter.LoadConfigFromString("fixedPoint: true\nprint:\n  option-format: JSON\n")
	if err != nil {
		t.Fatal(err)
	}
	if !config.FixedPoint || !config.Verify || !config.Tidy || config.Print.Format != "JSON" {
		t.Errorf("overrides not applied over the defaults: %+v", config)
	}
}
