package parser

import (
	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
)

// itemKeywords start declarations that are kept as verbatim text.
var itemKeywords = map[string]bool{
	"struct": true, "enum": true, "type": true, "const": true, "static": true,
	"use": true, "impl": true, "trait": true, "mod": true, "extern": true,
	"pub": true, "unsafe": true, "async": true,
}

// ReadStmts reads statements up to a closing bracket or the end of input.
func (p *Parser) ReadStmts() (*syntax.Block, error) {
	start := p.PeekToken()
	b := &syntax.Block{}
	for {
		for p.TryReadToken(common.MarkTokenType, ";") != nil {
		}
		if p.PeekToken() == nil || p.isClose() {
			break
		}
		s, err := p.readStmt()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	if len(b.Stmts) > 0 {
		b.Spanned = p.spanFrom(start)
	}
	return b, nil
}

// ReadBlock reads a braced block.
func (p *Parser) ReadBlock() (*syntax.Block, error) {
	open, err := p.MustReadToken(common.OpenDelimiterTokenType, "{")
	if err != nil {
		return nil, err
	}
	b, err := p.ReadStmts()
	if err != nil {
		return nil, err
	}
	if _, err := p.MustReadToken(common.CloseDelimiterTokenType, "}"); err != nil {
		return nil, err
	}
	b.Spanned = p.spanFrom(open)
	return b, nil
}

// attrsEnd returns the lookahead index just past any outer attributes
// starting at index n.
func (p *Parser) attrsEnd(n int) int {
	for p.peekIs(n, common.MarkTokenType, "#") && p.peekIs(n+1, common.OpenDelimiterTokenType, "[") {
		depth := 0
		n++
		for {
			token := p.PeekTokenAt(n)
			if token == nil {
				return n
			}
			n++
			if token.Type == common.OpenDelimiterTokenType {
				depth++
			} else if token.Type == common.CloseDelimiterTokenType {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	}
	return n
}

func (p *Parser) isItemStart(n int) bool {
	token := p.PeekTokenAt(n)
	if token == nil || token.Type != common.KeywordTokenType {
		return false
	}
	if token.Text == "fn" {
		return true
	}
	if !itemKeywords[token.Text] {
		return false
	}
	// unsafe { }, async { }, async move { } and const { } are block
	// expressions.
	next := p.PeekTokenAt(n + 1)
	if next.Is(common.OpenDelimiterTokenType, "{") {
		return false
	}
	if token.Text == "async" && next.Is(common.KeywordTokenType, "move") {
		return false
	}
	return true
}

func (p *Parser) readStmt() (syntax.Stmt, error) {
	start := p.PeekToken()
	if n := p.attrsEnd(0); p.isItemStart(n) {
		return p.readItem(n)
	}
	if p.isKeyword("let") {
		return p.readLet()
	}
	if p.startsBlockLike() {
		x, err := p.readBlockLikeExpr()
		if err != nil {
			return nil, err
		}
		if x, err = p.readPostfix(x, true); err != nil {
			return nil, err
		}
		semi := p.TryReadToken(common.MarkTokenType, ";") != nil
		return &syntax.ExprStmt{Spanned: p.spanFrom(start), X: x, Semi: semi}, nil
	}
	x, err := p.MustReadExpr()
	if err != nil {
		return nil, err
	}
	stmt := &syntax.ExprStmt{X: x}
	if p.TryReadToken(common.MarkTokenType, ";") != nil {
		stmt.Semi = true
	} else if token := p.PeekToken(); token != nil && !p.isClose() {
		return nil, p.errorf(token, "found '%s' but expected ';' after expression", token.Text)
	}
	stmt.Spanned = p.spanFrom(start)
	return stmt, nil
}

func (p *Parser) readLet() (syntax.Stmt, error) {
	start := p.GetToken()
	pat, err := p.ReadPat()
	if err != nil {
		return nil, err
	}
	let := &syntax.LetStmt{Pat: pat}
	if p.TryReadToken(common.MarkTokenType, ":") != nil {
		if let.Type, err = p.ReadType(); err != nil {
			return nil, err
		}
	}
	if p.TryReadToken(common.OperatorTokenType, "=") != nil {
		if let.Init, err = p.MustReadExpr(); err != nil {
			return nil, err
		}
		if p.isKeyword("else") {
			return nil, p.errorf(p.PeekToken(), "let-else is not supported")
		}
	}
	if _, err := p.MustReadToken(common.MarkTokenType, ";"); err != nil {
		return nil, err
	}
	let.Spanned = p.spanFrom(start)
	return let, nil
}

// readItem reads a declaration whose keyword sits n tokens ahead, past any
// attributes.
func (p *Parser) readItem(n int) (syntax.Stmt, error) {
	start := p.PeekToken()
	if n == 0 && p.isKeyword("fn") {
		fn, err := p.readFn()
		if err != nil {
			return nil, err
		}
		return &syntax.ItemStmt{Spanned: fn.Spanned, Item: fn}, nil
	}
	keyword, name := p.itemHeader(n)
	// Consume up to a top level ';' or the close of the first braced group.
	for {
		token := p.PeekToken()
		if token == nil {
			return nil, p.errorf(start, "unterminated declaration")
		}
		if token.Is(common.MarkTokenType, ";") {
			p.DropPeekedToken()
			break
		}
		if token.Type == common.OpenDelimiterTokenType {
			braced := token.Text == "{"
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
			if braced {
				break
			}
			continue
		}
		if token.Type == common.CloseDelimiterTokenType {
			return nil, p.errorf(token, "unexpected '%s' in declaration", token.Text)
		}
		p.DropPeekedToken()
	}
	item := &syntax.OpaqueItem{
		Spanned: p.spanFrom(start),
		Keyword: keyword,
		Name:    name,
		Text:    p.textFrom(start),
	}
	return &syntax.ItemStmt{Spanned: item.Spanned, Item: item}, nil
}

var itemModifiers = map[string]bool{"pub": true, "unsafe": true, "async": true, "extern": true}

// itemHeader finds the defining keyword of a declaration and the name that
// follows it.
func (p *Parser) itemHeader(n int) (keyword, name string) {
	for i := n; ; i++ {
		token := p.PeekTokenAt(i)
		if token == nil {
			return "", ""
		}
		if token.Type != common.KeywordTokenType {
			// pub(crate), extern "C" and similar qualifiers.
			continue
		}
		next := p.PeekTokenAt(i + 1)
		if itemModifiers[token.Text] {
			continue
		}
		if (token.Text == "const" || token.Text == "static") && next != nil && next.Type == common.KeywordTokenType && next.Text != "mut" {
			continue
		}
		if next.Is(common.KeywordTokenType, "mut") {
			next = p.PeekTokenAt(i + 2)
		}
		if next != nil && next.Type == common.VariableTokenType {
			name = next.Text
		}
		return token.Text, name
	}
}

func (p *Parser) readFn() (*syntax.FnItem, error) {
	start := p.GetToken()
	nameToken, err := p.MustReadIdent()
	if err != nil {
		return nil, err
	}
	name := nameToken.Text
	if p.isOperator("<") {
		genericsStart := p.PeekToken()
		if err := p.skipGenerics(); err != nil {
			return nil, err
		}
		name += p.textFrom(genericsStart)
	}
	if !p.isOpen("(") {
		return nil, p.errorf(p.PeekToken(), "expected '(' after fn name")
	}
	p.DropPeekedToken()
	var params []syntax.Pat
	for p.TryReadToken(common.CloseDelimiterTokenType, ")") == nil {
		if len(params) > 0 {
			if _, err := p.MustReadToken(common.MarkTokenType, ","); err != nil {
				return nil, err
			}
			if p.TryReadToken(common.CloseDelimiterTokenType, ")") != nil {
				break
			}
		}
		param, err := p.readParam(true)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	fn := &syntax.FnItem{Name: name, Params: params}
	if p.TryReadToken(common.MarkTokenType, "->") != nil {
		if fn.Result, err = p.ReadType(); err != nil {
			return nil, err
		}
	}
	if p.isKeyword("where") {
		for p.PeekToken() != nil && !p.isOpen("{") {
			p.DropPeekedToken()
		}
	}
	if fn.Body, err = p.ReadBlock(); err != nil {
		return nil, err
	}
	fn.Spanned = p.spanFrom(start)
	return fn, nil
}

// readParam reads a fn or closure parameter. Fn parameters require a type;
// self receivers are kept as verbatim patterns.
func (p *Parser) readParam(typed bool) (syntax.Pat, error) {
	start := p.PeekToken()
	if typed {
		n := 0
		if p.peekIs(n, common.OperatorTokenType, "&") {
			n++
			if p.peekIs(n, common.KeywordTokenType, "mut") {
				n++
			}
		} else if p.peekIs(n, common.KeywordTokenType, "mut") {
			n++
		}
		if p.peekIs(n, common.VariableTokenType, "self") && !p.peekIs(n+1, common.MarkTokenType, ":") {
			for i := 0; i <= n; i++ {
				p.DropPeekedToken()
			}
			return &syntax.VerbatimPat{Spanned: p.spanFrom(start), Text: p.textFrom(start)}, nil
		}
	}
	pat, err := p.readPatNoAlt()
	if err != nil {
		return nil, err
	}
	if p.TryReadToken(common.MarkTokenType, ":") != nil {
		ty, err := p.ReadType()
		if err != nil {
			return nil, err
		}
		return &syntax.TypedPat{Spanned: p.spanFrom(start), Pat: pat, Type: ty}, nil
	}
	if typed {
		return nil, p.errorf(p.PeekToken(), "expected ':' and a type after parameter")
	}
	return pat, nil
}
