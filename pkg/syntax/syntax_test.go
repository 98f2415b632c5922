package syntax_test

import (
	"bytes"
	"testing"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/parser"
	"github.com/frxstrem/cain/pkg/syntax"
)

var roundTripSources = []string{
	"let x = 1 + 2 * 3; x",
	"if let Some(v) = opt && v > 0 { v } else if b { 2 } else { 3 }",
	"match x { Some(ref mut y) if *y > 0 => y, A | B => 0, n @ 1..=9 => n, _ => { 1 } }",
	"'outer: for (i, x) in xs.iter().enumerate() { while i < 3 { break 'outer; } }",
	"let f = move |a: i32, b| a + b; f(1, 2)",
	"struct S { a: i32 } fn g(&self, n: u8) -> u8 { n } g(1)",
	"let Point { x, y: _, .. } = p; let [a, .., b] = xs; let &(c, mut d) = r;",
	"#[allow(unused)] x; vec![1, 2]; println!(\"{}\", y); matches!(z, Some(_))",
	"let v = -(a as i64) .. b; &mut w[0]; t.0.1; x?.y; unsafe { f() }; loop { continue; }",
	"let t = (1,); let u = (); return Some([1, 2]);",
}

func mustParse(t *testing.T, source string) *syntax.Block {
	t.Helper()
	b, err := parser.ParseBlock(source)
	if err != nil {
		t.Fatalf("ParseBlock(%q) failed: %v", source, err)
	}
	return b
}

func TestNodeRoundTrip(t *testing.T) {
	for _, source := range roundTripSources {
		b := mustParse(t, source)
		back, err := syntax.FromNode(syntax.ToNode(b))
		if err != nil {
			t.Errorf("FromNode(%q) failed: %v", source, err)
			continue
		}
		if got, want := syntax.Format(back), syntax.Format(b); got != want {
			t.Errorf("round trip changed the tree:\n got  %s\n want %s", got, want)
		}
	}
}

func TestJSONAndYAMLRoundTrip(t *testing.T) {
	options := &common.PrintOptions{IncludeSpans: true}
	for _, source := range roundTripSources {
		b := mustParse(t, source)
		want := syntax.Format(b)

		var js bytes.Buffer
		if err := common.PrintASTJSON(syntax.ToNode(b), "  ", &js, options); err != nil {
			t.Fatalf("PrintASTJSON failed: %v", err)
		}
		node, err := common.ReadASTJSON(&js)
		if err != nil {
			t.Fatalf("ReadASTJSON failed: %v", err)
		}
		back, err := syntax.FromNode(node)
		if err != nil {
			t.Fatalf("FromNode after JSON failed: %v", err)
		}
		if got := syntax.Format(back); got != want {
			t.Errorf("JSON round trip:\n got  %s\n want %s", got, want)
		}
		if back.Span != b.Span {
			t.Errorf("JSON round trip lost the block span")
		}

		var ys bytes.Buffer
		if err := common.PrintASTYAML(syntax.ToNode(b), "  ", &ys, options); err != nil {
			t.Fatalf("PrintASTYAML failed: %v", err)
		}
		node, err = common.ReadASTYAML(&ys)
		if err != nil {
			t.Fatalf("ReadASTYAML failed: %v", err)
		}
		if back, err = syntax.FromNode(node); err != nil {
			t.Fatalf("FromNode after YAML failed: %v", err)
		}
		if got := syntax.Format(back); got != want {
			t.Errorf("YAML round trip:\n got  %s\n want %s", got, want)
		}
	}
}

func TestFromNodeRejectsMalformedTrees(t *testing.T) {
	cases := []*common.Node{
		common.NewNode(common.NameIf),
		common.NewNode(common.NameBlock, common.NewNode("bogus")),
		common.NewNode(common.NameBlock, common.NewNode(common.NameExprStmt, common.NewNode(common.NameBinary))),
		common.NewNode(common.NameBlock, common.NewNode(common.NameLet)),
	}
	for _, n := range cases {
		if _, err := syntax.FromNode(n); err == nil {
			t.Errorf("expected an error decoding %s", n.Name)
		}
	}
}

func TestFormatParenthesizes(t *testing.T) {
	e := &syntax.Binary{
		Op: "*",
		X:  &syntax.Binary{Op: "+", X: &syntax.Ident{Name: "a"}, Y: &syntax.Ident{Name: "b"}},
		Y:  &syntax.Ident{Name: "c"},
	}
	if got := syntax.FormatExpr(e); got != "(a + b) * c" {
		t.Errorf("got %s", got)
	}
	cmp := &syntax.Binary{
		Op: "==",
		X:  &syntax.Binary{Op: "<", X: &syntax.Ident{Name: "a"}, Y: &syntax.Ident{Name: "b"}},
		Y:  &syntax.Lit{Kind: syntax.BoolLit, Value: "true"},
	}
	if got := syntax.FormatExpr(cmp); got != "(a < b) == true" {
		t.Errorf("comparison chains need parentheses, got %s", got)
	}
	m := &syntax.MethodCall{Recv: &syntax.If{Cond: &syntax.Ident{Name: "c"}, Then: &syntax.Block{}}, Name: "len"}
	if got := syntax.FormatExpr(m); got != "if c {}.len()" {
		t.Errorf("got %s", got)
	}
}

func TestFormatLiterals(t *testing.T) {
	cases := []struct {
		lit  *syntax.Lit
		want string
	}{
		{&syntax.Lit{Kind: syntax.StrLit, Value: "a\"b\n"}, `"a\"b\n"`},
		{&syntax.Lit{Kind: syntax.CharLit, Value: "'"}, `'\''`},
		{&syntax.Lit{Kind: syntax.IntLit, Value: "0xff"}, "0xff"},
		{&syntax.Lit{Kind: syntax.BoolLit, Value: "false"}, "false"},
	}
	for _, c := range cases {
		if got := syntax.FormatExpr(c.lit); got != c.want {
			t.Errorf("got %s, want %s", got, c.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := mustParse(t, "let x = if a { f(1) } else { 2 }; match x { Some(y) => y, _ => 0 }")
	want := syntax.Format(b)
	c := syntax.CloneBlock(b)
	syntax.WalkBlockSlots(c, func(slot *syntax.Expr) bool {
		if id, ok := (*slot).(*syntax.Ident); ok {
			id.Name = "changed"
		}
		if lit, ok := (*slot).(*syntax.Lit); ok {
			*slot = &syntax.Lit{Kind: lit.Kind, Value: "9"}
		}
		return true
	})
	syntax.Inspect(c, func(n syntax.Node) bool {
		if p, ok := n.(*syntax.IdentPat); ok {
			p.Name = "changed"
		}
		return true
	})
	if got := syntax.Format(b); got != want {
		t.Errorf("mutating the clone changed the original:\n got  %s\n want %s", got, want)
	}
	if syntax.Format(c) == want {
		t.Errorf("clone was not mutated")
	}
}

func TestChildSlotsSkipMacroArguments(t *testing.T) {
	b := mustParse(t, "println!(\"{}\", if a { 1 } else { 2 }); g(if b { 3 } else { 4 })")
	count := 0
	syntax.WalkBlockSlots(b, func(slot *syntax.Expr) bool {
		if _, ok := (*slot).(*syntax.If); ok {
			count++
		}
		return true
	})
	if count != 1 {
		t.Errorf("expected the walk to reach only the call argument, found %d conditionals", count)
	}
	count = 0
	syntax.Inspect(b, func(n syntax.Node) bool {
		if _, ok := n.(*syntax.If); ok {
			count++
		}
		return true
	})
	if count != 2 {
		t.Errorf("Inspect should see macro arguments, found %d conditionals", count)
	}
}

func TestReservedNames(t *testing.T) {
	name := syntax.PlaceholderName(7)
	if name != "__cain_placeholder_7" || !syntax.IsReserved(name) {
		t.Errorf("unexpected placeholder name %s", name)
	}
	if n, ok := syntax.ParsePlaceholder(name); !ok || n != 7 {
		t.Errorf("ParsePlaceholder(%s) = %d, %v", name, n, ok)
	}
	if n, ok := syntax.ParseCapture(syntax.CaptureName(12)); !ok || n != 12 {
		t.Errorf("ParseCapture round trip gave %d, %v", n, ok)
	}
	for _, bad := range []string{"__cain_placeholder_", "__cain_ident_x", "x", "__cain_ident_1_2"} {
		if _, ok := syntax.ParseCapture(bad); ok {
			t.Errorf("ParseCapture(%q) should fail", bad)
		}
	}
	if syntax.IsReserved("cain") {
		t.Errorf("cain is not reserved")
	}
}
