// Package parser reads source text into the typed syntax tree. It accepts
// the expression-oriented subset of Rust the rewriter works on: blocks,
// statements, fn items, expressions, closures, loops and patterns. Other
// items are kept as verbatim text.
package parser

import (
	"fmt"
	"slices"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
	"github.com/frxstrem/cain/pkg/tokenizer"
)

// ParseError reports malformed input.
type ParseError struct {
	Span    common.Span
	Message string
}

func (e *ParseError) Error() string {
	if e.Span.IsZero() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

type TokenQueue struct {
	tokens []*common.Token
	pos    int
}

func NewPeekQueue(tokens []*common.Token) TokenQueue {
	return TokenQueue{
		tokens: tokens,
	}
}

func (q *TokenQueue) IsEmpty() bool {
	return q.pos >= len(q.tokens)
}

func (q *TokenQueue) PeekAt(n int) *common.Token {
	if q.pos+n >= len(q.tokens) {
		return nil
	}
	return q.tokens[q.pos+n]
}

func (q *TokenQueue) Pop() *common.Token {
	if q.IsEmpty() {
		return nil
	}
	token := q.tokens[q.pos]
	q.pos++
	return token
}

type Parser struct {
	source string
	peeked TokenQueue
	last   *common.Token
}

func NewParser(source string) (*Parser, error) {
	tokens, err := tokenizer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return &Parser{
		source: source,
		peeked: NewPeekQueue(tokens),
	}, nil
}

// ParseBlock parses source text as the statements of a block body.
func ParseBlock(source string) (*syntax.Block, error) {
	p, err := NewParser(source)
	if err != nil {
		return nil, err
	}
	b, err := p.ReadStmts()
	if err != nil {
		return nil, err
	}
	if token := p.PeekToken(); token != nil {
		return nil, p.errorf(token, "unexpected %s", token.Describe())
	}
	return b, nil
}

// ParseExpr parses source text holding a single expression.
func ParseExpr(source string) (syntax.Expr, error) {
	p, err := NewParser(source)
	if err != nil {
		return nil, err
	}
	e, err := p.MustReadExpr()
	if err != nil {
		return nil, err
	}
	if token := p.PeekToken(); token != nil {
		return nil, p.errorf(token, "unexpected %s after expression", token.Describe())
	}
	return e, nil
}

// ParsePat parses source text holding a single pattern.
func ParsePat(source string) (syntax.Pat, error) {
	p, err := NewParser(source)
	if err != nil {
		return nil, err
	}
	pat, err := p.ReadPat()
	if err != nil {
		return nil, err
	}
	if token := p.PeekToken(); token != nil {
		return nil, p.errorf(token, "unexpected %s after pattern", token.Describe())
	}
	return pat, nil
}

func (p *Parser) errorf(token *common.Token, format string, args ...any) error {
	err := &ParseError{Message: fmt.Sprintf(format, args...)}
	if token != nil {
		err.Span = token.Span
	} else if p.last != nil {
		err.Span = p.last.Span
	}
	return err
}

// PeekToken returns the next token without consuming it. If there are no more
// tokens, it returns nil.
func (p *Parser) PeekToken() *common.Token {
	return p.peeked.PeekAt(0)
}

// PeekTokenAt looks n tokens past the next one.
func (p *Parser) PeekTokenAt(n int) *common.Token {
	return p.peeked.PeekAt(n)
}

// DropPeekedToken consumes the next token.
func (p *Parser) DropPeekedToken() {
	if token := p.peeked.Pop(); token != nil {
		p.last = token
	}
}

func (p *Parser) GetToken() *common.Token {
	token := p.peeked.Pop()
	if token != nil {
		p.last = token
	}
	return token
}

func (p *Parser) MustReadToken(expectedType common.TokenType, text string) (*common.Token, error) {
	token := p.PeekToken()
	if !token.Is(expectedType, text) {
		if token == nil {
			return nil, p.errorf(nil, "found end of input while expecting '%s'", text)
		}
		return nil, p.errorf(token, "found '%s' while expecting '%s'", token.Text, text)
	}
	return p.GetToken(), nil
}

func (p *Parser) TryReadToken(expectedType common.TokenType, text string) *common.Token {
	token := p.PeekToken()
	if token.Is(expectedType, text) {
		return p.GetToken()
	}
	return nil
}

func (p *Parser) TryReadOneOf(expectedType common.TokenType, texts []string) *common.Token {
	token := p.PeekToken()
	if token != nil && token.Type == expectedType && slices.Contains(texts, token.Text) {
		return p.GetToken()
	}
	return nil
}

func (p *Parser) MustReadIdent() (*common.Token, error) {
	token := p.PeekToken()
	if token == nil || token.Type != common.VariableTokenType {
		if token == nil {
			return nil, p.errorf(nil, "found end of input while expecting an identifier")
		}
		return nil, p.errorf(token, "found '%s' while expecting an identifier", token.Text)
	}
	return p.GetToken(), nil
}

// peekIs reports whether the token n places ahead has the given type and text.
func (p *Parser) peekIs(n int, tokenType common.TokenType, text string) bool {
	return p.PeekTokenAt(n).Is(tokenType, text)
}

func (p *Parser) isMark(text string) bool {
	return p.peekIs(0, common.MarkTokenType, text)
}

func (p *Parser) isOperator(text string) bool {
	return p.peekIs(0, common.OperatorTokenType, text)
}

func (p *Parser) isKeyword(text string) bool {
	return p.peekIs(0, common.KeywordTokenType, text)
}

func (p *Parser) isOpen(text string) bool {
	return p.peekIs(0, common.OpenDelimiterTokenType, text)
}

func (p *Parser) isClose() bool {
	token := p.PeekToken()
	return token != nil && token.Type == common.CloseDelimiterTokenType
}

// spanFrom covers the tokens from start up to the last consumed one.
func (p *Parser) spanFrom(start *common.Token) syntax.Spanned {
	if start == nil || p.last == nil {
		return syntax.Spanned{}
	}
	return syntax.Spanned{Span: *start.Span.ToSpan(&p.last.Span)}
}

// textFrom returns the verbatim source of the tokens from start up to the
// last consumed one.
func (p *Parser) textFrom(start *common.Token) string {
	if start == nil || p.last == nil || p.last.End < start.Start {
		return ""
	}
	return p.source[start.Start:p.last.End]
}

// skipBalanced consumes an open delimiter and everything up to its matching
// close.
func (p *Parser) skipBalanced() error {
	open := p.GetToken()
	if open == nil || open.Type != common.OpenDelimiterTokenType {
		return p.errorf(open, "expected an opening bracket")
	}
	depth := 1
	for depth > 0 {
		token := p.GetToken()
		if token == nil {
			return p.errorf(open, "unclosed '%s'", open.Text)
		}
		switch token.Type {
		case common.OpenDelimiterTokenType:
			depth++
		case common.CloseDelimiterTokenType:
			depth--
		}
	}
	return nil
}

// skipGenerics consumes a balanced <...> group.
func (p *Parser) skipGenerics() error {
	open := p.GetToken()
	depth := 1
	for depth > 0 {
		token := p.PeekToken()
		if token == nil {
			return p.errorf(open, "unclosed '<'")
		}
		switch {
		case token.Type == common.OpenDelimiterTokenType:
			if err := p.skipBalanced(); err != nil {
				return err
			}
			continue
		case token.Is(common.OperatorTokenType, "<"), token.Is(common.OperatorTokenType, "<<"):
			depth += len(token.Text)
		case token.Is(common.OperatorTokenType, ">"), token.Is(common.OperatorTokenType, ">>"):
			depth -= len(token.Text)
		case token.Is(common.OperatorTokenType, ">="), token.Is(common.OperatorTokenType, ">>="):
			return p.errorf(token, "unsupported token '%s' in generic arguments", token.Text)
		}
		p.DropPeekedToken()
	}
	if depth < 0 {
		return p.errorf(p.last, "unbalanced '>'")
	}
	return nil
}

// ReadType consumes a type and returns its verbatim text.
func (p *Parser) ReadType() (string, error) {
	start := p.PeekToken()
	if err := p.skipType(); err != nil {
		return "", err
	}
	return p.textFrom(start), nil
}

func (p *Parser) skipType() error {
	token := p.PeekToken()
	if token == nil {
		return p.errorf(nil, "found end of input while expecting a type")
	}
	switch {
	case token.Is(common.OperatorTokenType, "&"), token.Is(common.OperatorTokenType, "&&"):
		p.DropPeekedToken()
		if p.PeekToken() != nil && p.PeekToken().Type == common.LabelTokenType {
			p.DropPeekedToken()
		}
		p.TryReadToken(common.KeywordTokenType, "mut")
		return p.skipType()
	case token.Is(common.OperatorTokenType, "*"):
		p.DropPeekedToken()
		if p.TryReadToken(common.KeywordTokenType, "mut") == nil && p.TryReadToken(common.KeywordTokenType, "const") == nil {
			return p.errorf(p.PeekToken(), "expected 'const' or 'mut' in pointer type")
		}
		return p.skipType()
	case token.Is(common.OperatorTokenType, "!"):
		p.DropPeekedToken()
		return nil
	case token.Type == common.OpenDelimiterTokenType && token.Text != "{":
		return p.skipBalanced()
	case token.Is(common.KeywordTokenType, "fn"):
		p.DropPeekedToken()
		if err := p.skipBalanced(); err != nil {
			return err
		}
		if p.TryReadToken(common.MarkTokenType, "->") != nil {
			return p.skipType()
		}
		return nil
	case token.Is(common.KeywordTokenType, "impl"), token.Is(common.VariableTokenType, "dyn"):
		p.DropPeekedToken()
		if err := p.skipType(); err != nil {
			return err
		}
		for p.TryReadToken(common.OperatorTokenType, "+") != nil {
			if err := p.skipType(); err != nil {
				return err
			}
		}
		return nil
	case token.Type == common.VariableTokenType:
		for {
			name, err := p.MustReadIdent()
			if err != nil {
				return err
			}
			if p.isOperator("<") {
				if err := p.skipGenerics(); err != nil {
					return err
				}
			}
			if p.isOpen("(") && slices.Contains([]string{"Fn", "FnMut", "FnOnce"}, name.Text) {
				if err := p.skipBalanced(); err != nil {
					return err
				}
				if p.TryReadToken(common.MarkTokenType, "->") != nil {
					return p.skipType()
				}
			}
			if p.TryReadToken(common.MarkTokenType, "::") == nil {
				return nil
			}
		}
	}
	return p.errorf(token, "found '%s' while expecting a type", token.Text)
}
