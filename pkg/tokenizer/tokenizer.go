// Package tokenizer splits source text into the token stream read by the
// parser.
package tokenizer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/frxstrem/cain/pkg/common"
)

type Tokenizer struct {
	rules  *TokenizerRules
	input  string
	pos    int
	line   int
	col    int
	lnSeen bool
	tokens []*common.Token
}

func NewTokenizer(input string, rules *TokenizerRules) *Tokenizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Tokenizer{rules: rules, input: input, line: 1, col: 1}
}

// Tokenize splits input using the default rules.
func Tokenize(input string) ([]*common.Token, error) {
	return NewTokenizer(input, nil).Tokenize()
}

// Tokenize runs the tokenizer to completion. Malformed input produces an
// error carrying the position of the offending text.
func (t *Tokenizer) Tokenize() ([]*common.Token, error) {
	for {
		if err := t.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if t.pos >= len(t.input) {
			return t.tokens, nil
		}
		token, err := t.next()
		if err != nil {
			return nil, err
		}
		if token.Type == common.ExceptionTokenType {
			return nil, fmt.Errorf("%s: %s '%s'", token.Span, *token.Reason, token.Text)
		}
		if t.lnSeen {
			lnBefore := true
			token.LnBefore = &lnBefore
			t.lnSeen = false
		}
		t.tokens = append(t.tokens, token)
	}
}

func (t *Tokenizer) peekRune(offset int) rune {
	i := t.pos
	for ; offset > 0 && i < len(t.input); offset-- {
		_, size := utf8.DecodeRuneInString(t.input[i:])
		i += size
	}
	if i >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[i:])
	return r
}

func (t *Tokenizer) advance() rune {
	r, size := utf8.DecodeRuneInString(t.input[t.pos:])
	t.pos += size
	if r == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	return r
}

func (t *Tokenizer) skipSpaceAndComments() error {
	for t.pos < len(t.input) {
		r := t.peekRune(0)
		switch {
		case r == '\n':
			t.lnSeen = true
			t.advance()
		case unicode.IsSpace(r):
			t.advance()
		case r == '/' && t.peekRune(1) == '/':
			for t.pos < len(t.input) && t.peekRune(0) != '\n' {
				t.advance()
			}
		case r == '/' && t.peekRune(1) == '*':
			line, col := t.line, t.col
			t.advance()
			t.advance()
			depth := 1
			for depth > 0 {
				if t.pos >= len(t.input) {
					return fmt.Errorf("%d:%d: unterminated block comment", line, col)
				}
				switch {
				case t.peekRune(0) == '/' && t.peekRune(1) == '*':
					t.advance()
					t.advance()
					depth++
				case t.peekRune(0) == '*' && t.peekRune(1) == '/':
					t.advance()
					t.advance()
					depth--
				default:
					if t.advance() == '\n' {
						t.lnSeen = true
					}
				}
			}
		default:
			return nil
		}
	}
	return nil
}

// finish stamps the span and offsets of a token that started at the given
// position and ends at the current one.
func (t *Tokenizer) finish(token *common.Token, start, line, col int) *common.Token {
	token.Start = start
	token.End = t.pos
	token.Span = common.Span{StartLine: line, StartColumn: col, EndLine: t.line, EndColumn: t.col}
	if token.Text == "" {
		token.Text = t.input[start:t.pos]
	}
	return token
}

// rawStringAhead reports whether the runes from offset on are `r`, any
// number of `#` and then `"`.
func (t *Tokenizer) rawStringAhead(offset int) bool {
	if t.peekRune(offset) != 'r' {
		return false
	}
	i := offset + 1
	for t.peekRune(i) == '#' {
		i++
	}
	return t.peekRune(i) == '"'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (t *Tokenizer) next() (*common.Token, error) {
	start, line, col := t.pos, t.line, t.col
	r := t.peekRune(0)
	switch {
	case r == '"':
		return t.readString(start, line, col)
	case r == 'b' && (t.peekRune(1) == '"' || t.rawStringAhead(1)), r == 'r' && t.rawStringAhead(0):
		return t.readPrefixedString(start, line, col)
	case r == 'r' && t.peekRune(1) == '#' && isIdentStart(t.peekRune(2)):
		// Raw identifier: never a keyword.
		t.advance()
		t.advance()
		for t.pos < len(t.input) && isIdentPart(t.peekRune(0)) {
			t.advance()
		}
		return t.finish(common.NewToken(t.input[start:t.pos], common.VariableTokenType, common.Span{}), start, line, col), nil
	case r == '\'':
		return t.readQuote(start, line, col)
	case unicode.IsDigit(r):
		return t.readNumber(start, line, col)
	case isIdentStart(r):
		for t.pos < len(t.input) && isIdentPart(t.peekRune(0)) {
			t.advance()
		}
		text := t.input[start:t.pos]
		tokenType := common.VariableTokenType
		if entry, ok := t.rules.TokenLookup[text]; ok && entry.Type == CustomKeyword {
			tokenType = common.KeywordTokenType
		}
		return t.finish(common.NewToken(text, tokenType, common.Span{}), start, line, col), nil
	}
	sym, entry, ok := t.rules.matchSymbol(t.input[t.pos:])
	if !ok {
		t.advance()
		token := common.NewExceptionToken(t.input[start:t.pos], "unexpected character", common.Span{})
		return t.finish(token, start, line, col), nil
	}
	for range sym {
		t.advance()
	}
	var token *common.Token
	switch entry.Type {
	case CustomOperator:
		prec := entry.Data.([3]int)
		token = common.NewOperatorToken(sym, prec[0], prec[1], prec[2], common.Span{})
	case CustomOpenDelimiter:
		token = common.NewDelimiterToken(sym, entry.Data.([]string), common.Span{})
	case CustomCloseDelimiter:
		token = common.NewToken(sym, common.CloseDelimiterTokenType, common.Span{})
	case CustomMark:
		token = common.NewToken(sym, common.MarkTokenType, common.Span{})
	default:
		token = common.NewUnclassifiedToken(sym, common.Span{})
	}
	return t.finish(token, start, line, col), nil
}

func (t *Tokenizer) readEscape(line, col int) (string, error) {
	t.advance() // the backslash
	if t.pos >= len(t.input) {
		return "", fmt.Errorf("%d:%d: unterminated escape", line, col)
	}
	r := t.advance()
	switch r {
	case 'n':
		return "\n", nil
	case 't':
		return "\t", nil
	case 'r':
		return "\r", nil
	case '0':
		return "\x00", nil
	case '\\', '\'', '"':
		return string(r), nil
	case 'x':
		hex := ""
		for i := 0; i < 2 && t.pos < len(t.input); i++ {
			hex += string(t.advance())
		}
		n, err := strconv.ParseUint(hex, 16, 8)
		if err != nil {
			return "", fmt.Errorf("%d:%d: invalid escape \\x%s", line, col, hex)
		}
		return string(rune(n)), nil
	case 'u':
		if t.peekRune(0) != '{' {
			return "", fmt.Errorf("%d:%d: invalid unicode escape", line, col)
		}
		t.advance()
		hex := ""
		for t.pos < len(t.input) && t.peekRune(0) != '}' {
			if c := t.advance(); c != '_' {
				hex += string(c)
			}
		}
		if t.pos >= len(t.input) {
			return "", fmt.Errorf("%d:%d: unterminated unicode escape", line, col)
		}
		t.advance()
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return "", fmt.Errorf("%d:%d: invalid unicode escape \\u{%s}", line, col, hex)
		}
		return string(rune(n)), nil
	case '\n':
		for t.pos < len(t.input) && unicode.IsSpace(t.peekRune(0)) {
			t.advance()
		}
		return "", nil
	}
	return "", fmt.Errorf("%d:%d: unknown escape \\%c", line, col, r)
}

func (t *Tokenizer) readString(start, line, col int) (*common.Token, error) {
	t.advance() // opening quote
	var value strings.Builder
	for {
		if t.pos >= len(t.input) {
			return nil, fmt.Errorf("%d:%d: unterminated string", line, col)
		}
		switch t.peekRune(0) {
		case '"':
			t.advance()
			return t.finish(common.NewStringToken("", value.String(), common.Span{}), start, line, col), nil
		case '\\':
			s, err := t.readEscape(line, col)
			if err != nil {
				return nil, err
			}
			value.WriteString(s)
		default:
			value.WriteRune(t.advance())
		}
	}
}

// readPrefixedString handles raw strings r"..", r#".."# and byte strings
// b"..", br"..".
func (t *Tokenizer) readPrefixedString(start, line, col int) (*common.Token, error) {
	if t.peekRune(0) == 'b' {
		t.advance()
		if t.peekRune(0) == '"' {
			token, err := t.readString(t.pos, line, col)
			if err != nil {
				return nil, err
			}
			token.Text = ""
			return t.finish(token, start, line, col), nil
		}
	}
	t.advance() // r
	hashes := 0
	for t.peekRune(0) == '#' {
		t.advance()
		hashes++
	}
	if t.peekRune(0) != '"' {
		return nil, fmt.Errorf("%d:%d: malformed raw string", line, col)
	}
	t.advance()
	closing := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(t.input[t.pos:], closing)
	if end < 0 {
		return nil, fmt.Errorf("%d:%d: unterminated raw string", line, col)
	}
	value := t.input[t.pos : t.pos+end]
	for range value + closing {
		t.advance()
	}
	return t.finish(common.NewStringToken("", value, common.Span{}), start, line, col), nil
}

// readQuote distinguishes character literals from labels and lifetimes.
func (t *Tokenizer) readQuote(start, line, col int) (*common.Token, error) {
	r1 := t.peekRune(1)
	if isIdentStart(r1) && t.peekRune(2) != '\'' {
		t.advance()
		for t.pos < len(t.input) && isIdentPart(t.peekRune(0)) {
			t.advance()
		}
		return t.finish(common.NewToken("", common.LabelTokenType, common.Span{}), start, line, col), nil
	}
	t.advance() // opening quote
	var value string
	if t.peekRune(0) == '\\' {
		s, err := t.readEscape(line, col)
		if err != nil {
			return nil, err
		}
		value = s
	} else if t.pos < len(t.input) {
		value = string(t.advance())
	}
	if t.peekRune(0) != '\'' {
		return nil, fmt.Errorf("%d:%d: unterminated character literal", line, col)
	}
	t.advance()
	return t.finish(common.NewCharToken("", value, common.Span{}), start, line, col), nil
}

var numericSuffixes = []string{
	"i8", "i16", "i32", "i64", "i128", "isize",
	"u8", "u16", "u32", "u64", "u128", "usize",
	"f32", "f64",
}

func (t *Tokenizer) readDigits(radix int) string {
	var digits strings.Builder
	for t.pos < len(t.input) {
		r := t.peekRune(0)
		if r == '_' {
			t.advance()
			continue
		}
		if !isDigitForRadix(r, radix) {
			break
		}
		digits.WriteRune(t.advance())
	}
	return digits.String()
}

func isDigitForRadix(r rune, radix int) bool {
	switch {
	case r >= '0' && r <= '9':
		return int(r-'0') < radix
	case r >= 'a' && r <= 'f':
		return radix == 16
	case r >= 'A' && r <= 'F':
		return radix == 16
	}
	return false
}

func (t *Tokenizer) readNumber(start, line, col int) (*common.Token, error) {
	radix := 10
	prefix := ""
	if t.peekRune(0) == '0' {
		switch t.peekRune(1) {
		case 'x':
			radix, prefix = 16, "0x"
		case 'o':
			radix, prefix = 8, "0o"
		case 'b':
			radix, prefix = 2, "0b"
		}
		if prefix != "" {
			t.advance()
			t.advance()
		}
	}
	value := prefix + t.readDigits(radix)
	float := false
	if radix == 10 {
		// A dot starts a fraction only when a digit follows, so that ranges
		// and method calls on integers still tokenize.
		if t.peekRune(0) == '.' && unicode.IsDigit(t.peekRune(1)) {
			t.advance()
			value += "." + t.readDigits(10)
			float = true
		}
		if r := t.peekRune(0); r == 'e' || r == 'E' {
			r1 := t.peekRune(1)
			if unicode.IsDigit(r1) || ((r1 == '+' || r1 == '-') && unicode.IsDigit(t.peekRune(2))) {
				value += string(t.advance())
				if r1 == '+' || r1 == '-' {
					value += string(t.advance())
				}
				value += t.readDigits(10)
				float = true
			}
		}
	}
	suffix := ""
	for _, s := range numericSuffixes {
		if strings.HasPrefix(t.input[t.pos:], s) && !isIdentPart(t.peekRuneAt(t.pos+len(s))) {
			suffix = s
			for range s {
				t.advance()
			}
			break
		}
	}
	if suffix == "f32" || suffix == "f64" {
		float = true
	}
	if t.pos < len(t.input) && isIdentStart(t.peekRune(0)) {
		for t.pos < len(t.input) && isIdentPart(t.peekRune(0)) {
			t.advance()
		}
		token := common.NewExceptionToken(t.input[start:t.pos], "invalid numeric literal", common.Span{})
		return t.finish(token, start, line, col), nil
	}
	return t.finish(common.NewNumericToken("", value, suffix, float, common.Span{}), start, line, col), nil
}

func (t *Tokenizer) peekRuneAt(offset int) rune {
	if offset >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[offset:])
	return r
}
