package checker_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/frxstrem/cain/pkg/checker"
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

func TestCheckInputAccepts(t *testing.T) {
	inputs := []string{
		"let z = match x { 1 => 123, _ => 0 }; z",
		"let r = if let Some(v) = opt && v > 2 { v } else { 0 }; r",
		"let __cain_ident_3 = 1; __cain_ident_3",
		"fn f(&self) -> i32 { 1 } f()",
		"let f = |x: i32| x + 1; for (i, v) in xs { f(v); }",
	}
	for _, input := range inputs {
		c := checker.NewChecker()
		if !c.CheckInput(mustParse(t, input)) {
			var buf bytes.Buffer
			c.ReportErrors(&buf)
			t.Errorf("CheckInput(%q) rejected:\n%s", input, buf.String())
		}
	}
}

func TestCheckInputIssues(t *testing.T) {
	cases := []struct {
		input   string
		message string
	}{
		{"let __cain_placeholder_2 = 1;", "reserved for the rewriter"},
		{"f(__cain_placeholder_0)", "reserved for the rewriter"},
		{"let __cain_thing = 1;", "are reserved"},
		{"let y = match x {};", "match without arms"},
		{"let y = match x { m!(a) => 1, _ => 2 };", "macros in patterns"},
		{"if let m!(a) = x { 1 } else { 2 }", "macros in patterns"},
	}
	for _, c := range cases {
		ch := checker.NewChecker()
		if ch.CheckInput(mustParse(t, c.input)) {
			t.Errorf("CheckInput(%q) accepted", c.input)
			continue
		}
		if len(ch.Bugs) != 0 {
			t.Errorf("CheckInput(%q) reported bugs: %v", c.input, ch.Bugs)
		}
		if len(ch.Issues) == 0 || !strings.Contains(ch.Issues[0].Message, c.message) {
			t.Errorf("CheckInput(%q) issues = %v, want %q", c.input, ch.Issues, c.message)
		}
	}
}

func TestCheckInputMalformed(t *testing.T) {
	b := &syntax.Block{Stmts: []syntax.Stmt{
		&syntax.ExprStmt{X: &syntax.If{Cond: &syntax.Ident{Name: "c"}}},
	}}
	c := checker.NewChecker()
	if c.CheckInput(b) || len(c.Bugs) != 1 {
		t.Errorf("expected one bug, got %v", c.Bugs)
	}
}

func TestCheckOutputAcceptsRewrites(t *testing.T) {
	inputs := []string{
		"1 + if x { a } else { b }",
		"let z = match x { 1 => 123, _ => 0 }; fn square(x: i32) -> i32 { x * x } square(z)",
		"f(if a { 1 } else { 2 }, match b { _ => 3 })",
		"let f = || 1 + match x { 1 => 123, _ => 0 };",
		"let r = if let Some(v) = opt && v > 2 { v } else { 0 }; r",
		"let g = if a { 1 } else if b { 2 + if c { 3 } else { 4 } } else { 5 }; g",
		"while match n { 0 => false, _ => true } { n -= 1; }",
		"let k = 1 + if (if flag { 1 } else { 0 }) == 1 { 10 } else { 20 }; k",
		"let s = match n { k if k > if flag { 1 } else { 5 } => 1, _ => 2 }; s",
		"let ok = a && f(if b { 1 } else { 2 }); ok",
	}
	for _, input := range inputs {
		out, err := rewriter.Rewrite(mustParse(t, input))
		if err != nil {
			t.Errorf("Rewrite(%q) failed: %v", input, err)
			continue
		}
		c := checker.NewChecker()
		if !c.CheckOutput(out) {
			var buf bytes.Buffer
			c.ReportErrors(&buf)
			t.Errorf("CheckOutput(%s) rejected:\n%s", syntax.Format(out), buf.String())
		}
	}
}

func TestCheckOutputBugs(t *testing.T) {
	cases := []struct {
		output  string
		message string
	}{
		{"1 + if x { a } else { b }", "conditional left inside an expression"},
		{"let y = match x { _ => 1 };", "conditional left inside an expression"},
		{"if (if a { b } else { c }) { x; }", "conditional left inside an expression"},
		{"f(__cain_placeholder_0)", "placeholder __cain_placeholder_0 left in the output"},
		{"x; fn f() {}", "declaration after a statement"},
	}
	for _, c := range cases {
		ch := checker.NewChecker()
		if ch.CheckOutput(mustParse(t, c.output)) {
			t.Errorf("CheckOutput(%q) accepted", c.output)
			continue
		}
		if len(ch.Bugs) == 0 || ch.Bugs[0].Message != c.message {
			t.Errorf("CheckOutput(%q) bugs = %v, want %q", c.output, ch.Bugs, c.message)
		}
	}
}

func TestCheckOutputIgnoresNestedScopes(t *testing.T) {
	inputs := []string{
		"let f = |x| match x { 0 => a, _ => b };",
		"let v = { if c { 1 } else { 2 } };",
		"loop { match y { 1 => a(), _ => b() }; }",
		"let ok = a || if b { c } else { d };",
		"let t = if c { 1 } else { 2 };",
	}
	for _, input := range inputs[:4] {
		c := checker.NewChecker()
		if !c.CheckOutput(mustParse(t, input)) {
			t.Errorf("CheckOutput(%q) rejected: %v", input, c.Bugs)
		}
	}
	if checker.NewChecker().CheckOutput(mustParse(t, inputs[4])) {
		t.Errorf("CheckOutput(%q) accepted", inputs[4])
	}
}

func TestReportErrors(t *testing.T) {
	c := checker.NewChecker()
	c.CheckInput(mustParse(t, "let y = match x {};"))
	var buf bytes.Buffer
	c.ReportErrors(&buf)
	want := "Errors found in the source code:\n  [1]. match without arms, at line 1, column 9\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
