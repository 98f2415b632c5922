package rewriter

import (
	"testing"

	"github.com/frxstrem/cain/pkg/parser"
	"github.com/frxstrem/cain/pkg/syntax"
)

func mustParseExpr(t *testing.T, src string) syntax.Expr {
	t.Helper()
	e, err := parser.ParseExpr(src)
	if err != nil {
		t.Fatalf("ParseExpr(%q) failed: %v", src, err)
	}
	return e
}

func mustParsePat(t *testing.T, src string) syntax.Pat {
	t.Helper()
	p, err := parser.ParsePat(src)
	if err != nil {
		t.Fatalf("ParsePat(%q) failed: %v", src, err)
	}
	return p
}

func TestSubstituteCopies(t *testing.T) {
	outer := mustParseExpr(t, "f(__cain_placeholder_0, __cain_placeholder_0, __cain_placeholder_1)")
	target := mustParseExpr(t, "a + b")
	out, err := substitute(outer, 0, target)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := syntax.FormatExpr(out), "f(a + b, a + b, __cain_placeholder_1)"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if got := syntax.FormatExpr(outer); got != "f(__cain_placeholder_0, __cain_placeholder_0, __cain_placeholder_1)" {
		t.Errorf("outer changed: %s", got)
	}
	call := out.(*syntax.Call)
	if call.Args[0] == call.Args[1] || call.Args[0] == target {
		t.Errorf("substituted copies share nodes")
	}
}

func TestSubstituteRejectsAttributes(t *testing.T) {
	outer := &syntax.Ident{Name: syntax.PlaceholderName(2), Attrs: []string{"#[allow(unused)]"}}
	_, err := substitute(outer, 2, mustParseExpr(t, "x"))
	rerr, ok := err.(*Error)
	if !ok || !rerr.IsBug() {
		t.Fatalf("expected an internal error, got %v", err)
	}
}

func TestMarkAndWrap(t *testing.T) {
	s := NewSession()
	e := mustParseExpr(t, "g(h(1))")
	arg := &e.(*syntax.Call).Args[0]
	id, saved := s.mark(arg)
	if got := syntax.FormatExpr(e); got != "g(__cain_placeholder_0)" {
		t.Errorf("after mark: %s", got)
	}
	if err := wrapExpr(&saved, id, e); err != nil {
		t.Fatal(err)
	}
	if got := syntax.FormatExpr(saved); got != "g(h(1))" {
		t.Errorf("after wrap: %s", got)
	}
}

func TestWrapBlock(t *testing.T) {
	b := &syntax.Block{Stmts: []syntax.Stmt{&syntax.ExprStmt{X: mustParseExpr(t, "x")}}}
	if err := wrapBlock(b, 0, mustParseExpr(t, "1 + __cain_placeholder_0")); err != nil {
		t.Fatal(err)
	}
	if got := syntax.Format(b); got != "{ 1 + { x } }" {
		t.Errorf("got %s", got)
	}

	b = &syntax.Block{Stmts: []syntax.Stmt{&syntax.ExprStmt{X: mustParseExpr(t, "x")}}}
	if err := wrapBlock(b, 0, mustParseExpr(t, "{ let y = __cain_placeholder_0; y }")); err != nil {
		t.Fatal(err)
	}
	if got := syntax.Format(b); got != "{ let y = { x }; y }" {
		t.Errorf("got %s", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		pattern  string
		dispatch string
		guard    string
		rebind   string
	}{
		{"Some(x)", "Some(__cain_ident_0)", "", "let x = __cain_ident_0;"},
		{"(a, b)", "(__cain_ident_0, __cain_ident_1)", "", "let (a, b) = (__cain_ident_0, __cain_ident_1);"},
		{"mut n", "__cain_ident_0", "", "let mut n = __cain_ident_0;"},
		{"ref mut n", "ref mut __cain_ident_0", "", "let n = __cain_ident_0;"},
		{"x @ 1..=9", "__cain_ident_0 @ 1..=9", "matches!(&__cain_ident_0, 1..=9)", "let x = __cain_ident_0;"},
		{"x @ Some(y)", "__cain_ident_0 @ Some(__cain_ident_1)", "matches!(&__cain_ident_0, Some(_))", "let (x, y) = (__cain_ident_0, __cain_ident_1);"},
		{"(x @ 1, _) | (x @ 2, _)", "(__cain_ident_0 @ 1, _) | (__cain_ident_0 @ 2, _)", "matches!(&__cain_ident_0, 1 | 2)", "let x = __cain_ident_0;"},
		{"(x @ 1, _) | (_, x)", "(__cain_ident_0 @ 1, _) | (_, __cain_ident_0)", "", "let x = __cain_ident_0;"},
		{"Ok(x) | Err(mut x)", "Ok(__cain_ident_0) | Err(__cain_ident_0)", "", "let mut x = __cain_ident_0;"},
		{"None", "None", "", ""},
		{"[first, .., last]", "[__cain_ident_0, .., __cain_ident_1]", "", "let (first, last) = (__cain_ident_0, __cain_ident_1);"},
	}
	for _, c := range cases {
		norm, err := NewSession().normalize(mustParsePat(t, c.pattern))
		if err != nil {
			t.Errorf("normalize(%s) failed: %v", c.pattern, err)
			continue
		}
		if got := syntax.FormatPat(norm.Dispatch); got != c.dispatch {
			t.Errorf("normalize(%s) dispatch = %s, want %s", c.pattern, got, c.dispatch)
		}
		guard := ""
		if norm.Guard != nil {
			guard = syntax.FormatExpr(norm.Guard)
		}
		if guard != c.guard {
			t.Errorf("normalize(%s) guard = %q, want %q", c.pattern, guard, c.guard)
		}
		rebind := ""
		if norm.Rebind != nil {
			rebind = syntax.FormatStmt(norm.Rebind)
		}
		if rebind != c.rebind {
			t.Errorf("normalize(%s) rebind = %q, want %q", c.pattern, rebind, c.rebind)
		}
	}
}

func TestNormalizeRejectsMacros(t *testing.T) {
	_, err := NewSession().normalize(mustParsePat(t, "Some(m!(x))"))
	rerr, ok := err.(*Error)
	if !ok || rerr.Kind != UnsupportedPattern {
		t.Fatalf("expected an unsupported pattern error, got %v", err)
	}
}

func TestFreshNamesAreDistinct(t *testing.T) {
	s := NewSession()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name := s.FreshName()
		if seen[name] {
			t.Fatalf("%s returned twice", name)
		}
		if !syntax.IsReserved(name) {
			t.Fatalf("%s is not reserved", name)
		}
		seen[name] = true
	}
}
