package parser

import (
	"testing"

	"github.com/frxstrem/cain/pkg/syntax"
)

func TestParseBlockFormat(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"let x = 1 + 2 * 3;", "{ let x = 1 + 2 * 3; }"},
		{"(1 + 2) * 3", "{ (1 + 2) * 3 }"},
		{"a = b = c;", "{ a = b = c; }"},
		{"let x: Vec<u8> = v;", "{ let x: Vec<u8> = v; }"},
		{"let y;", "{ let y; }"},
		{"if a { 1 } else if b { 2 } else { 3 }", "{ if a { 1 } else if b { 2 } else { 3 } }"},
		{"match x { Some(y) if y > 0 => y, None => 0, _ => { 1 } }", "{ match x { Some(y) if y > 0 => y, None => 0, _ => { 1 } } }"},
		{"for i in 0..n { sum += i; }", "{ for i in 0..n { sum += i; } }"},
		{"'outer: loop { break 'outer 5; }", "{ 'outer: loop { break 'outer 5; } }"},
		{"while i < 10 { i += 1; continue; }", "{ while i < 10 { i += 1; continue; } }"},
		{"let f = move |a, b: i32| a + b;", "{ let f = move |a, b: i32| a + b; }"},
		{"v.iter().map(|x| x * 2).collect::<Vec<_>>()", "{ v.iter().map(|x| x * 2).collect::<Vec<_>>() }"},
		{"x as u64 + 1", "{ x as u64 + 1 }"},
		{"let Point { x, y: ref mut z, .. } = p;", "{ let Point { x, y: ref mut z, .. } = p; }"},
		{"if let Some(x) = opt && x > 1 { x }", "{ if let Some(x) = opt && x > 1 { x } }"},
		{"let t = (1,);", "{ let t = (1,); }"},
		{"match n { 1..=9 | 20 => a, -5 => b, x @ 10..=19 => x, _ => c }", "{ match n { 1..=9 | 20 => a, -5 => b, x @ 10..=19 => x, _ => c } }"},
		{"struct S { a: i32 } fn f(x: i32) -> i32 { x + 1 } f(2)", "{ struct S { a: i32 } fn f(x: i32) -> i32 { x + 1 } f(2) }"},
		{`println!("{}", x);`, `{ println!("{}", x); }`},
		{"x?.y", "{ x?.y }"},
		{"&mut v[0]", "{ &mut v[0] }"},
		{"-a.b()", "{ -a.b() }"},
		{"t.0.1", "{ t.0.1 }"},
		{"if a { b } c", "{ if a { b } c }"},
		{"match x { A => {} B => {} }", "{ match x { A => {}, B => {} } }"},
		{"let v = vec![1, 2];", "{ let v = vec![1, 2]; }"},
		{"matches!(x, Some(_) | None)", "{ matches!(x, Some(_) | None) }"},
		{"unsafe { f() }", "{ unsafe { f() } }"},
		{"return;", "{ return; }"},
		{"let [first, .., last] = xs;", "{ let [first, .., last] = xs; }"},
		{"let &(a, mut b) = r;", "{ let &(a, mut b) = r; }"},
		{"use std::fmt; 1", "{ use std::fmt; 1 }"},
		{"", "{}"},
	}
	for _, c := range cases {
		b, err := ParseBlock(c.input)
		if err != nil {
			t.Errorf("ParseBlock(%q) failed: %v", c.input, err)
			continue
		}
		if got := syntax.Format(b); got != c.expected {
			t.Errorf("ParseBlock(%q):\n got  %s\n want %s", c.input, got, c.expected)
		}
	}
}

func TestParseExprPrecedence(t *testing.T) {
	e, err := ParseExpr("a || b && c")
	if err != nil {
		t.Fatalf("ParseExpr failed: %v", err)
	}
	or, ok := e.(*syntax.Binary)
	if !ok || or.Op != "||" {
		t.Fatalf("expected || at the root, got %s", syntax.FormatExpr(e))
	}
	if and, ok := or.Y.(*syntax.Binary); !ok || and.Op != "&&" {
		t.Fatalf("expected && on the right, got %s", syntax.FormatExpr(or.Y))
	}

	e, err = ParseExpr("a - b - c")
	if err != nil {
		t.Fatalf("ParseExpr failed: %v", err)
	}
	sub := e.(*syntax.Binary)
	if _, ok := sub.X.(*syntax.Binary); !ok {
		t.Errorf("subtraction should associate to the left")
	}
}

func TestParseExprRange(t *testing.T) {
	e, err := ParseExpr("..=n")
	if err != nil {
		t.Fatalf("ParseExpr failed: %v", err)
	}
	r, ok := e.(*syntax.Range)
	if !ok || r.Lo != nil || r.Hi == nil || !r.Inclusive {
		t.Fatalf("unexpected range %s", syntax.FormatExpr(e))
	}
}

func TestParsePat(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"Some(x) | None", "Some(x) | None"},
		{"ref mut x", "ref mut x"},
		{"Ok(n @ 1..=5)", "Ok(n @ 1..=5)"},
		{"(a, b,)", "(a, b)"},
		{"(a)", "a"},
		{"(..)", "(..)"},
		{"E::V { a: _, b }", "E::V { a: _, b }"},
		{"box p", "box p"},
		{"-3..0", "-3..0"},
		{"my_macro!(a b)", "my_macro!(a b)"},
		{"CONST", "CONST"},
	}
	for _, c := range cases {
		pat, err := ParsePat(c.input)
		if err != nil {
			t.Errorf("ParsePat(%q) failed: %v", c.input, err)
			continue
		}
		if got := syntax.FormatPat(pat); got != c.expected {
			t.Errorf("ParsePat(%q): got %s, want %s", c.input, got, c.expected)
		}
	}
}

func TestParsePatClassifiesNames(t *testing.T) {
	pat, err := ParsePat("x")
	if err != nil {
		t.Fatalf("ParsePat failed: %v", err)
	}
	if _, ok := pat.(*syntax.IdentPat); !ok {
		t.Errorf("lower case name should bind, got %T", pat)
	}
	pat, err = ParsePat("None")
	if err != nil {
		t.Fatalf("ParsePat failed: %v", err)
	}
	if _, ok := pat.(*syntax.PathPat); !ok {
		t.Errorf("capitalized name should be a path, got %T", pat)
	}
}

func TestParseSelfParam(t *testing.T) {
	b, err := ParseBlock("fn len(&self, extra: usize) -> usize { self.n + extra }")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	fn := b.Stmts[0].(*syntax.ItemStmt).Item.(*syntax.FnItem)
	if v, ok := fn.Params[0].(*syntax.VerbatimPat); !ok || v.Text != "&self" {
		t.Errorf("expected verbatim &self receiver, got %s", syntax.FormatPat(fn.Params[0]))
	}
	if fn.Result != "usize" {
		t.Errorf("unexpected result type %q", fn.Result)
	}
}

func TestParseAttributes(t *testing.T) {
	b, err := ParseBlock("#[allow(unused)] x")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	id := b.Stmts[0].(*syntax.ExprStmt).X.(*syntax.Ident)
	if len(id.Attrs) != 1 || id.Attrs[0] != "allow(unused)" {
		t.Errorf("unexpected attrs %q", id.Attrs)
	}
}

func TestParseSpans(t *testing.T) {
	b, err := ParseBlock("let x = 1;\nx")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	span := b.Stmts[0].NodeSpan()
	if span.StartLine != 1 || span.StartColumn != 1 || span.EndColumn != 11 {
		t.Errorf("unexpected let span %s", span.SpanString())
	}
	if span := b.Stmts[1].NodeSpan(); span.StartLine != 2 {
		t.Errorf("unexpected expression span %s", span.SpanString())
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"let x = 1",
		"a b",
		"let Some(x) = y else { return };",
		"(1 + ",
		"match x { A => 1 B => 2 }",
		"'a: x",
		"#[inline] a::b",
	} {
		if _, err := ParseBlock(input); err == nil {
			t.Errorf("expected a parse error for %q", input)
		}
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := ParseBlock("let x = 1;\nlet y = ;")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Span.StartLine != 2 {
		t.Errorf("expected error on line 2, got %s", perr.Span)
	}
}
