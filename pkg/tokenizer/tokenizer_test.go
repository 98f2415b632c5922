package tokenizer

import (
	"strings"
	"testing"

	"github.com/frxstrem/cain/pkg/common"
)

func mustTokenize(t *testing.T, input string) []*common.Token {
	t.Helper()
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", input, err)
	}
	return tokens
}

func TestTokenizeClassifiesWords(t *testing.T) {
	tokens := mustTokenize(t, "let mut x = self.len;")
	expected := []struct {
		text      string
		tokenType common.TokenType
	}{
		{"let", common.KeywordTokenType},
		{"mut", common.KeywordTokenType},
		{"x", common.VariableTokenType},
		{"=", common.OperatorTokenType},
		{"self", common.VariableTokenType},
		{".", common.MarkTokenType},
		{"len", common.VariableTokenType},
		{";", common.MarkTokenType},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, e := range expected {
		if tokens[i].Text != e.text || tokens[i].Type != e.tokenType {
			t.Errorf("token %d: expected %q (%s), got %q (%s)", i, e.text, e.tokenType, tokens[i].Text, tokens[i].Type)
		}
	}
}

func TestTokenizeMaximalMunch(t *testing.T) {
	tokens := mustTokenize(t, "a..=b >>= c :: d => e")
	var texts []string
	for _, token := range tokens {
		texts = append(texts, token.Text)
	}
	got := strings.Join(texts, " ")
	if got != "a ..= b >>= c :: d => e" {
		t.Errorf("unexpected split: %s", got)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	cases := []struct {
		input  string
		value  string
		suffix string
		float  bool
	}{
		{"42", "42", "", false},
		{"1_000u32", "1000", "u32", false},
		{"0xff", "0xff", "", false},
		{"2.5", "2.5", "", true},
		{"1e10", "1e10", "", true},
		{"3f64", "3", "f64", true},
	}
	for _, c := range cases {
		tokens := mustTokenize(t, c.input)
		if len(tokens) != 1 {
			t.Fatalf("%q: expected one token, got %d", c.input, len(tokens))
		}
		token := tokens[0]
		if token.Type != common.NumericLiteralTokenType {
			t.Errorf("%q: expected numeric token, got %s", c.input, token.Type)
			continue
		}
		if *token.Value != c.value || token.Suffix != c.suffix || token.Float != c.float {
			t.Errorf("%q: got value=%q suffix=%q float=%v", c.input, *token.Value, token.Suffix, token.Float)
		}
	}
}

func TestTokenizeRangeAfterInteger(t *testing.T) {
	tokens := mustTokenize(t, "0..10")
	if len(tokens) != 3 || tokens[1].Text != ".." {
		t.Fatalf("expected 0 .. 10, got %d tokens", len(tokens))
	}
	if tokens[0].Float {
		t.Errorf("0 in 0..10 should not be a float")
	}
}

func TestTokenizeStringsAndChars(t *testing.T) {
	tokens := mustTokenize(t, `"a\tb" r#"raw "x""# 'c' '\n'`)
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}
	if *tokens[0].Value != "a\tb" {
		t.Errorf("escape not decoded: %q", *tokens[0].Value)
	}
	if *tokens[1].Value != `raw "x"` {
		t.Errorf("raw string value: %q", *tokens[1].Value)
	}
	if tokens[2].Type != common.CharLiteralTokenType || *tokens[2].Value != "c" {
		t.Errorf("char literal: %s %q", tokens[2].Type, tokens[2].Text)
	}
	if *tokens[3].Value != "\n" {
		t.Errorf("escaped char literal: %q", *tokens[3].Value)
	}
}

func TestTokenizeWordsBeginningWithStringPrefixes(t *testing.T) {
	tokens := mustTokenize(t, `break x.branch r#type rb b br"a" r"b" b"c"`)
	expected := []struct {
		text      string
		tokenType common.TokenType
	}{
		{"break", common.KeywordTokenType},
		{"x", common.VariableTokenType},
		{".", common.MarkTokenType},
		{"branch", common.VariableTokenType},
		{"r#type", common.VariableTokenType},
		{"rb", common.VariableTokenType},
		{"b", common.VariableTokenType},
		{`br"a"`, common.StringLiteralTokenType},
		{`r"b"`, common.StringLiteralTokenType},
		{`b"c"`, common.StringLiteralTokenType},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, e := range expected {
		if tokens[i].Text != e.text || tokens[i].Type != e.tokenType {
			t.Errorf("token %d: expected %q (%s), got %q (%s)", i, e.text, e.tokenType, tokens[i].Text, tokens[i].Type)
		}
	}
}

func TestTokenizeLabels(t *testing.T) {
	tokens := mustTokenize(t, "'outer: loop { break 'outer; }")
	if tokens[0].Type != common.LabelTokenType || tokens[0].Text != "'outer" {
		t.Errorf("expected label 'outer, got %s %q", tokens[0].Type, tokens[0].Text)
	}
	if tokens[5].Type != common.LabelTokenType {
		t.Errorf("expected label after break, got %s %q", tokens[5].Type, tokens[5].Text)
	}
}

func TestTokenizeComments(t *testing.T) {
	tokens := mustTokenize(t, "a /* outer /* nested */ still */ b // tail\nc")
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[2].LnBefore == nil || !*tokens[2].LnBefore {
		t.Errorf("expected newline before c")
	}
	if tokens[1].LnBefore != nil {
		t.Errorf("unexpected newline before b")
	}
}

func TestTokenizeSpans(t *testing.T) {
	tokens := mustTokenize(t, "x\n  foo")
	span := tokens[1].Span
	if span.StartLine != 2 || span.StartColumn != 3 || span.EndColumn != 6 {
		t.Errorf("unexpected span %v", span.SpanString())
	}
	if tokens[1].Start != 4 || tokens[1].End != 7 {
		t.Errorf("unexpected offsets %d..%d", tokens[1].Start, tokens[1].End)
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, input := range []string{`"open`, "/* open", "12abc", "a ~ b", `'\q'`} {
		if _, err := Tokenize(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestBuildTokenLookupRejectsConflicts(t *testing.T) {
	rules := DefaultRules()
	rules.MarkTokens["+"] = true
	if err := rules.BuildTokenLookup(); err == nil {
		t.Fatalf("expected conflict between mark and operator '+'")
	}
}
