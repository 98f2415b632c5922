package common

import (
	"strings"
)

// TokenType represents the different types of tokens.
type TokenType string

const (
	// Literal constants
	NumericLiteralTokenType TokenType = "n" // Integer and float literals, any radix
	StringLiteralTokenType  TokenType = "s" // String literals, plain, raw or byte
	CharLiteralTokenType    TokenType = "c" // Character literals

	// Identifier tokens
	KeywordTokenType  TokenType = "K" // Reserved words (if, match, let, fn)
	VariableTokenType TokenType = "V" // Identifiers, including self and Self
	LabelTokenType    TokenType = "L" // Loop labels and lifetimes ('outer)

	// Other tokens
	OperatorTokenType       TokenType = "O" // Prefix/infix/postfix operators
	OpenDelimiterTokenType  TokenType = "[" // Opening brackets/braces/parentheses
	CloseDelimiterTokenType TokenType = "]" // Closing brackets/braces/parentheses
	MarkTokenType           TokenType = "M" // Marks (commas, semicolons, paths, arrows)
	UnclassifiedTokenType   TokenType = "U" // Unclassified tokens
	ExceptionTokenType      TokenType = "X" // Exception tokens for invalid constructs
)

// Token represents a single token of the source text.
type Token struct {
	// Common fields for all tokens
	Text string    `json:"text"`
	Span Span      `json:"span"`
	Type TokenType `json:"type"`

	// Byte offsets into the source, used to recover verbatim text.
	Start int `json:"-"`
	End   int `json:"-"`

	// String, char and numeric token fields. Value is the interpreted text:
	// unescaped for strings and chars, separators and suffix removed for
	// numbers.
	Value  *string `json:"value,omitempty"`
	Float  bool    `json:"float,omitempty"`
	Suffix string  `json:"suffix,omitempty"`

	// Operator token fields
	Precedence *[3]int `json:"precedence,omitempty"` // [prefix, infix, postfix] precedence values

	// Delimiter fields
	ClosedBy []string `json:"closed_by,omitempty"`

	// Exception token fields
	Reason *string `json:"reason,omitempty"` // For exception tokens - explanation of the error

	// Newline tracking fields
	LnBefore *bool `json:"ln_before,omitempty"` // True if token was preceded by a newline
}

// NewToken creates a new token with the basic required fields.
func NewToken(text string, tokenType TokenType, span Span) *Token {
	return &Token{
		Text: text,
		Type: tokenType,
		Span: span,
	}
}

// NewStringToken creates a new string token with interpreted value.
func NewStringToken(text, value string, span Span) *Token {
	return &Token{
		Text:  text,
		Type:  StringLiteralTokenType,
		Span:  span,
		Value: &value,
	}
}

// NewCharToken creates a new character token with interpreted value.
func NewCharToken(text, value string, span Span) *Token {
	return &Token{
		Text:  text,
		Type:  CharLiteralTokenType,
		Span:  span,
		Value: &value,
	}
}

// NewNumericToken creates a new numeric token.
func NewNumericToken(text, value, suffix string, float bool, span Span) *Token {
	return &Token{
		Text:   text,
		Type:   NumericLiteralTokenType,
		Span:   span,
		Value:  &value,
		Float:  float,
		Suffix: suffix,
	}
}

// NewOperatorToken creates a new operator token with precedence values.
func NewOperatorToken(text string, prefix, infix, postfix int, span Span) *Token {
	token := &Token{
		Text: text,
		Type: OperatorTokenType,
		Span: span,
	}

	// Only set precedence if at least one value is non-zero.
	if prefix > 0 || infix > 0 || postfix > 0 {
		precedence := [3]int{prefix, infix, postfix}
		token.Precedence = &precedence
	}

	return token
}

// NewDelimiterToken creates a new open delimiter token.
func NewDelimiterToken(text string, closedBy []string, span Span) *Token {
	return &Token{
		Text:     text,
		Type:     OpenDelimiterTokenType,
		Span:     span,
		ClosedBy: closedBy,
	}
}

// NewUnclassifiedToken creates a new unclassified token.
func NewUnclassifiedToken(text string, span Span) *Token {
	return &Token{
		Text: text,
		Type: UnclassifiedTokenType,
		Span: span,
	}
}

// NewExceptionToken creates a new exception token with an error reason.
func NewExceptionToken(text, reason string, span Span) *Token {
	return &Token{
		Text:   text,
		Type:   ExceptionTokenType,
		Span:   span,
		Reason: &reason,
	}
}

// Is reports whether the token has the given type and text.
func (t *Token) Is(tokenType TokenType, text string) bool {
	return t != nil && t.Type == tokenType && t.Text == text
}

// ToKind returns a string representing the kind of delimiter token.
func (t *Token) ToKind() string {
	switch t.Text {
	case "[", "]":
		return "brackets"
	case "{", "}":
		return "braces"
	case "(", ")":
		return "parentheses"
	default:
		return t.Text
	}
}

// InfixPrec returns the infix precedence of the token.
func (t *Token) InfixPrec() int {
	if t.Precedence != nil {
		return t.Precedence[1]
	}
	return 0
}

// PrefixPrec returns the prefix precedence of the token.
func (t *Token) PrefixPrec() int {
	if t.Precedence != nil {
		return t.Precedence[0]
	}
	return 0
}

// PostfixPrec returns the postfix precedence of the token.
func (t *Token) PostfixPrec() int {
	if t.Precedence != nil {
		return t.Precedence[2]
	}
	return 0
}

// Describe renders the token for error messages.
func (t *Token) Describe() string {
	if t == nil {
		return "end of input"
	}
	var b strings.Builder
	b.WriteByte('\'')
	b.WriteString(t.Text)
	b.WriteString("' at ")
	b.WriteString(t.Span.String())
	return b.String()
}
