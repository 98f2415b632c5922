package parser

import (
	"math"
	"slices"
	"strings"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
	"github.com/frxstrem/cain/pkg/tokenizer"
)

var compoundAssignOps = []string{"=", "+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "<<=", ">>="}

func (p *Parser) MustReadExpr() (syntax.Expr, error) {
	return p.readExprPrec(math.MaxInt)
}

// MustReadExprPrec reads an expression whose operators bind at least as
// tightly as outerPrec.
func (p *Parser) MustReadExprPrec(outerPrec int) (syntax.Expr, error) {
	return p.readExprPrec(outerPrec)
}

// startsExpr reports whether token can begin an expression.
func startsExpr(token *common.Token) bool {
	if token == nil {
		return false
	}
	switch token.Type {
	case common.CloseDelimiterTokenType:
		return false
	case common.MarkTokenType:
		return token.Text == "#" || token.Text == "::"
	case common.OperatorTokenType:
		return token.PrefixPrec() > 0 || token.Text == "|" || token.Text == "||"
	case common.KeywordTokenType:
		return token.Text != "else" && token.Text != "as" && token.Text != "in"
	case common.OpenDelimiterTokenType:
		return token.Text != "{"
	}
	return true
}

// readExprPrec reads an expression with the given precedence, returning an
// error if no expression is found.
func (p *Parser) readExprPrec(outerPrec int) (syntax.Expr, error) {
	start := p.PeekToken()
	lhs, err := p.readUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.PeekToken()
		if op == nil {
			return lhs, nil
		}
		if op.Is(common.KeywordTokenType, "as") && tokenizer.PrecCast <= outerPrec {
			p.DropPeekedToken()
			ty, err := p.ReadType()
			if err != nil {
				return nil, err
			}
			lhs = &syntax.Cast{Spanned: p.spanFrom(start), X: lhs, Type: ty}
			continue
		}
		if op.Type != common.OperatorTokenType {
			return lhs, nil
		}
		prec := op.InfixPrec()
		if prec <= 0 || prec > outerPrec {
			return lhs, nil
		}
		p.DropPeekedToken()
		switch {
		case op.Text == ".." || op.Text == "..=":
			var hi syntax.Expr
			if startsExpr(p.PeekToken()) {
				if hi, err = p.MustReadExprPrec(prec - 1); err != nil {
					return nil, err
				}
			}
			lhs = &syntax.Range{Spanned: p.spanFrom(start), Lo: lhs, Hi: hi, Inclusive: op.Text == "..="}
		case slices.Contains(compoundAssignOps, op.Text):
			rhs, err := p.MustReadExprPrec(prec)
			if err != nil {
				return nil, err
			}
			lhs = &syntax.Assign{Spanned: p.spanFrom(start), Op: op.Text, Lhs: lhs, Rhs: rhs}
		default:
			rhs, err := p.MustReadExprPrec(prec - 1)
			if err != nil {
				return nil, err
			}
			lhs = &syntax.Binary{Spanned: p.spanFrom(start), Op: op.Text, X: lhs, Y: rhs}
		}
	}
}

// readUnary reads prefix operators and then a postfix expression.
func (p *Parser) readUnary() (syntax.Expr, error) {
	start := p.PeekToken()
	if start == nil {
		return nil, p.errorf(nil, "unexpected end of input while reading expression")
	}
	if start.Type == common.OperatorTokenType && start.PrefixPrec() > 0 {
		p.DropPeekedToken()
		switch start.Text {
		case "&", "&&":
			mut := p.TryReadToken(common.KeywordTokenType, "mut") != nil
			x, err := p.MustReadExprPrec(tokenizer.PrecPrefix)
			if err != nil {
				return nil, err
			}
			ref := &syntax.Ref{Spanned: p.spanFrom(start), Mut: mut, X: x}
			if start.Text == "&&" {
				return &syntax.Ref{Spanned: ref.Spanned, X: ref}, nil
			}
			return ref, nil
		case "..", "..=":
			var hi syntax.Expr
			if startsExpr(p.PeekToken()) {
				var err error
				if hi, err = p.MustReadExprPrec(tokenizer.PrecRange - 1); err != nil {
					return nil, err
				}
			}
			return &syntax.Range{Spanned: p.spanFrom(start), Hi: hi, Inclusive: start.Text == "..="}, nil
		default:
			x, err := p.MustReadExprPrec(tokenizer.PrecPrefix)
			if err != nil {
				return nil, err
			}
			return &syntax.Unary{Spanned: p.spanFrom(start), Op: start.Text, X: x}, nil
		}
	}
	x, err := p.readPrimary()
	if err != nil {
		return nil, err
	}
	return p.readPostfix(x, false)
}

// readPostfix applies field access, calls, indexing and '?'. A block-like
// expression in statement position only takes method calls, fields and '?'.
func (p *Parser) readPostfix(x syntax.Expr, stmtLike bool) (syntax.Expr, error) {
	span := x.NodeSpan()
	spanned := func() syntax.Spanned {
		if p.last == nil {
			return syntax.Spanned{Span: span}
		}
		return syntax.Spanned{Span: *span.ToSpan(&p.last.Span)}
	}
	for {
		token := p.PeekToken()
		switch {
		case token.Is(common.MarkTokenType, "."):
			p.DropPeekedToken()
			member := p.GetToken()
			if member == nil || (member.Type != common.VariableTokenType && member.Type != common.NumericLiteralTokenType) {
				return nil, p.errorf(member, "expected a field or method name after '.'")
			}
			name := member.Text
			if member.Type == common.NumericLiteralTokenType && strings.Contains(name, ".") {
				// t.0.1 reads as a float after the first dot.
				first, second, _ := strings.Cut(name, ".")
				x = &syntax.Field{Spanned: spanned(), X: x, Name: first}
				name = second
			}
			if p.isMark("::") && p.peekIs(1, common.OperatorTokenType, "<") {
				p.DropPeekedToken()
				turbofish := p.PeekToken()
				if err := p.skipGenerics(); err != nil {
					return nil, err
				}
				name += "::" + p.textFrom(turbofish)
			}
			if p.isOpen("(") {
				args, err := p.readExprList("(", ")")
				if err != nil {
					return nil, err
				}
				x = &syntax.MethodCall{Spanned: spanned(), Recv: x, Name: name, Args: args}
			} else {
				x = &syntax.Field{Spanned: spanned(), X: x, Name: name}
			}
		case token.Is(common.OperatorTokenType, "?"):
			p.DropPeekedToken()
			x = &syntax.Unary{Spanned: spanned(), Op: "?", X: x}
		case !stmtLike && token.Is(common.OpenDelimiterTokenType, "("):
			args, err := p.readExprList("(", ")")
			if err != nil {
				return nil, err
			}
			x = &syntax.Call{Spanned: spanned(), Fun: x, Args: args}
		case !stmtLike && token.Is(common.OpenDelimiterTokenType, "["):
			p.DropPeekedToken()
			index, err := p.MustReadExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.MustReadToken(common.CloseDelimiterTokenType, "]"); err != nil {
				return nil, err
			}
			x = &syntax.Index{Spanned: spanned(), X: x, Index: index}
		default:
			return x, nil
		}
		stmtLike = false
	}
}

// readExprList reads a delimited, comma separated expression list.
func (p *Parser) readExprList(open, close string) ([]syntax.Expr, error) {
	if _, err := p.MustReadToken(common.OpenDelimiterTokenType, open); err != nil {
		return nil, err
	}
	xs := []syntax.Expr{}
	for p.TryReadToken(common.CloseDelimiterTokenType, close) == nil {
		if len(xs) > 0 {
			if _, err := p.MustReadToken(common.MarkTokenType, ","); err != nil {
				return nil, err
			}
			if p.TryReadToken(common.CloseDelimiterTokenType, close) != nil {
				break
			}
		}
		x, err := p.MustReadExpr()
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}

// startsBlockLike reports whether the next tokens begin an expression that
// ends with a block and may stand as a statement without a semicolon.
func (p *Parser) startsBlockLike() bool {
	token := p.PeekToken()
	if token == nil {
		return false
	}
	if token.Type == common.LabelTokenType {
		return p.peekIs(1, common.MarkTokenType, ":")
	}
	if token.Is(common.OpenDelimiterTokenType, "{") {
		return true
	}
	if token.Type != common.KeywordTokenType {
		return false
	}
	switch token.Text {
	case "if", "match", "loop", "while", "for":
		return true
	case "unsafe", "try", "const":
		return p.peekIs(1, common.OpenDelimiterTokenType, "{")
	case "async":
		return p.peekIs(1, common.OpenDelimiterTokenType, "{") ||
			p.peekIs(1, common.KeywordTokenType, "move") && p.peekIs(2, common.OpenDelimiterTokenType, "{")
	}
	return false
}

func (p *Parser) readBlockLikeExpr() (syntax.Expr, error) {
	start := p.PeekToken()
	label := ""
	if start.Type == common.LabelTokenType {
		p.DropPeekedToken()
		p.DropPeekedToken() // ':'
		label = start.Text[1:]
	}
	token := p.PeekToken()
	if token == nil {
		return nil, p.errorf(nil, "unexpected end of input after label")
	}
	if token.Is(common.OpenDelimiterTokenType, "{") {
		b, err := p.ReadBlock()
		if err != nil {
			return nil, err
		}
		return &syntax.BlockExpr{Spanned: p.spanFrom(start), Label: label, Block: b}, nil
	}
	switch {
	case token.Is(common.KeywordTokenType, "if") && label == "":
		return p.readIf()
	case token.Is(common.KeywordTokenType, "match") && label == "":
		return p.readMatch()
	case token.Is(common.KeywordTokenType, "loop"):
		p.DropPeekedToken()
		body, err := p.ReadBlock()
		if err != nil {
			return nil, err
		}
		return &syntax.Loop{Spanned: p.spanFrom(start), Label: label, Body: body}, nil
	case token.Is(common.KeywordTokenType, "while"):
		p.DropPeekedToken()
		cond, err := p.MustReadExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.ReadBlock()
		if err != nil {
			return nil, err
		}
		return &syntax.While{Spanned: p.spanFrom(start), Label: label, Cond: cond, Body: body}, nil
	case token.Is(common.KeywordTokenType, "for"):
		p.DropPeekedToken()
		pat, err := p.ReadPat()
		if err != nil {
			return nil, err
		}
		if _, err := p.MustReadToken(common.KeywordTokenType, "in"); err != nil {
			return nil, err
		}
		iter, err := p.MustReadExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.ReadBlock()
		if err != nil {
			return nil, err
		}
		return &syntax.For{Spanned: p.spanFrom(start), Label: label, Pat: pat, Iter: iter, Body: body}, nil
	case token.Type == common.KeywordTokenType && label == "":
		keyword := token.Text
		p.DropPeekedToken()
		if keyword == "async" && p.TryReadToken(common.KeywordTokenType, "move") != nil {
			keyword = "async move"
		}
		b, err := p.ReadBlock()
		if err != nil {
			return nil, err
		}
		return &syntax.BlockExpr{Spanned: p.spanFrom(start), Keyword: keyword, Block: b}, nil
	}
	return nil, p.errorf(token, "found '%s' after label, expecting a loop or block", token.Text)
}

func (p *Parser) readIf() (syntax.Expr, error) {
	start := p.GetToken()
	cond, err := p.MustReadExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.ReadBlock()
	if err != nil {
		return nil, err
	}
	e := &syntax.If{Cond: cond, Then: then}
	if p.TryReadToken(common.KeywordTokenType, "else") != nil {
		if p.isKeyword("if") {
			if e.Else, err = p.readIf(); err != nil {
				return nil, err
			}
		} else {
			elseStart := p.PeekToken()
			b, err := p.ReadBlock()
			if err != nil {
				return nil, err
			}
			e.Else = &syntax.BlockExpr{Spanned: p.spanFrom(elseStart), Block: b}
		}
	}
	e.Spanned = p.spanFrom(start)
	return e, nil
}

func (p *Parser) readMatch() (syntax.Expr, error) {
	start := p.GetToken()
	x, err := p.MustReadExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.MustReadToken(common.OpenDelimiterTokenType, "{"); err != nil {
		return nil, err
	}
	m := &syntax.Match{X: x}
	for p.TryReadToken(common.CloseDelimiterTokenType, "}") == nil {
		armStart := p.PeekToken()
		pat, err := p.ReadPat()
		if err != nil {
			return nil, err
		}
		arm := &syntax.Arm{Pat: pat}
		if p.TryReadToken(common.KeywordTokenType, "if") != nil {
			if arm.Guard, err = p.MustReadExpr(); err != nil {
				return nil, err
			}
		}
		if _, err := p.MustReadToken(common.MarkTokenType, "=>"); err != nil {
			return nil, err
		}
		if p.startsBlockLike() {
			if arm.Body, err = p.readBlockLikeExpr(); err != nil {
				return nil, err
			}
			if arm.Body, err = p.readPostfix(arm.Body, true); err != nil {
				return nil, err
			}
			p.TryReadToken(common.MarkTokenType, ",")
		} else {
			if arm.Body, err = p.MustReadExpr(); err != nil {
				return nil, err
			}
			if p.TryReadToken(common.MarkTokenType, ",") == nil && !p.peekIs(0, common.CloseDelimiterTokenType, "}") {
				return nil, p.errorf(p.PeekToken(), "expected ',' after match arm")
			}
		}
		arm.Spanned = p.spanFrom(armStart)
		m.Arms = append(m.Arms, arm)
	}
	m.Spanned = p.spanFrom(start)
	return m, nil
}

func (p *Parser) readPrimary() (syntax.Expr, error) {
	token := p.PeekToken()
	if token == nil {
		return nil, p.errorf(nil, "unexpected end of input while reading expression")
	}
	if p.startsBlockLike() {
		return p.readBlockLikeExpr()
	}
	switch token.Type {
	case common.NumericLiteralTokenType:
		p.DropPeekedToken()
		kind := syntax.IntLit
		if token.Float {
			kind = syntax.FloatLit
		}
		return &syntax.Lit{Spanned: syntax.Spanned{Span: token.Span}, Kind: kind, Value: *token.Value}, nil
	case common.StringLiteralTokenType:
		p.DropPeekedToken()
		return &syntax.Lit{Spanned: syntax.Spanned{Span: token.Span}, Kind: syntax.StrLit, Value: *token.Value}, nil
	case common.CharLiteralTokenType:
		p.DropPeekedToken()
		return &syntax.Lit{Spanned: syntax.Spanned{Span: token.Span}, Kind: syntax.CharLit, Value: *token.Value}, nil
	case common.VariableTokenType:
		return p.readPathExpr(nil)
	case common.MarkTokenType:
		if token.Text == "#" {
			return p.readAttributed()
		}
	case common.OpenDelimiterTokenType:
		switch token.Text {
		case "(":
			return p.readParenOrTuple()
		case "[":
			elems, err := p.readExprList("[", "]")
			if err != nil {
				return nil, err
			}
			return &syntax.Array{Spanned: p.spanFrom(token), Elems: elems}, nil
		}
	case common.OperatorTokenType:
		if token.Text == "|" || token.Text == "||" {
			return p.readClosure()
		}
	case common.KeywordTokenType:
		return p.readKeywordExpr(token)
	}
	return nil, p.errorf(token, "unexpected '%s' at start of expression", token.Text)
}

func (p *Parser) readKeywordExpr(token *common.Token) (syntax.Expr, error) {
	switch token.Text {
	case "true", "false":
		p.DropPeekedToken()
		return &syntax.Lit{Spanned: syntax.Spanned{Span: token.Span}, Kind: syntax.BoolLit, Value: token.Text}, nil
	case "move":
		return p.readClosure()
	case "let":
		p.DropPeekedToken()
		pat, err := p.ReadPat()
		if err != nil {
			return nil, err
		}
		if _, err := p.MustReadToken(common.OperatorTokenType, "="); err != nil {
			return nil, err
		}
		x, err := p.MustReadExprPrec(tokenizer.PrecCompare)
		if err != nil {
			return nil, err
		}
		return &syntax.LetCond{Spanned: p.spanFrom(token), Pat: pat, X: x}, nil
	case "return":
		p.DropPeekedToken()
		var x syntax.Expr
		if startsExpr(p.PeekToken()) {
			var err error
			if x, err = p.MustReadExpr(); err != nil {
				return nil, err
			}
		}
		return &syntax.Return{Spanned: p.spanFrom(token), X: x}, nil
	case "break":
		p.DropPeekedToken()
		e := &syntax.Break{}
		if label := p.PeekToken(); label != nil && label.Type == common.LabelTokenType {
			p.DropPeekedToken()
			e.Label = label.Text[1:]
		}
		if startsExpr(p.PeekToken()) {
			var err error
			if e.X, err = p.MustReadExpr(); err != nil {
				return nil, err
			}
		}
		e.Spanned = p.spanFrom(token)
		return e, nil
	case "continue":
		p.DropPeekedToken()
		e := &syntax.Continue{}
		if label := p.PeekToken(); label != nil && label.Type == common.LabelTokenType {
			p.DropPeekedToken()
			e.Label = label.Text[1:]
		}
		e.Spanned = p.spanFrom(token)
		return e, nil
	}
	return nil, p.errorf(token, "unexpected keyword '%s' in expression", token.Text)
}

// readPathExpr reads an identifier, a path or a macro invocation. attrs are
// outer attributes already read.
func (p *Parser) readPathExpr(attrs []string) (syntax.Expr, error) {
	start := p.PeekToken()
	var segments []string
	for {
		ident, err := p.MustReadIdent()
		if err != nil {
			return nil, err
		}
		segments = append(segments, ident.Text)
		if !p.isMark("::") {
			break
		}
		p.DropPeekedToken()
		if p.isOperator("<") {
			generics := p.PeekToken()
			if err := p.skipGenerics(); err != nil {
				return nil, err
			}
			segments = append(segments, p.textFrom(generics))
			if !p.isMark("::") {
				break
			}
			p.DropPeekedToken()
		}
	}
	if len(segments) == 1 && p.isOperator("!") && p.PeekTokenAt(1) != nil && p.PeekTokenAt(1).Type == common.OpenDelimiterTokenType {
		p.DropPeekedToken()
		return p.readMacro(start, segments[0])
	}
	if len(segments) > 1 {
		if len(attrs) > 0 {
			return nil, p.errorf(start, "attributes are only supported on identifiers")
		}
		return &syntax.Path{Spanned: p.spanFrom(start), Segments: segments}, nil
	}
	return &syntax.Ident{Spanned: p.spanFrom(start), Name: segments[0], Attrs: attrs}, nil
}

func (p *Parser) readAttributed() (syntax.Expr, error) {
	var attrs []string
	for p.isMark("#") {
		p.DropPeekedToken()
		if !p.isOpen("[") {
			return nil, p.errorf(p.PeekToken(), "expected '[' after '#'")
		}
		p.DropPeekedToken()
		inner := p.PeekToken()
		for !p.peekIs(0, common.CloseDelimiterTokenType, "]") {
			if p.PeekToken() == nil {
				return nil, p.errorf(nil, "unterminated attribute")
			}
			if p.PeekToken().Type == common.OpenDelimiterTokenType {
				if err := p.skipBalanced(); err != nil {
					return nil, err
				}
				continue
			}
			p.DropPeekedToken()
		}
		attrs = append(attrs, p.textFrom(inner))
		p.DropPeekedToken()
	}
	token := p.PeekToken()
	if token == nil || token.Type != common.VariableTokenType {
		return nil, p.errorf(token, "attributes are only supported on identifiers")
	}
	return p.readPathExpr(attrs)
}

// readMacro reads the arguments of name!(...). matches! is read into its
// own node; other macros take comma separated expressions.
func (p *Parser) readMacro(start *common.Token, name string) (syntax.Expr, error) {
	open := p.PeekToken()
	closer := open.ClosedBy[0]
	if name == "matches" {
		p.DropPeekedToken()
		x, err := p.MustReadExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.MustReadToken(common.MarkTokenType, ","); err != nil {
			return nil, err
		}
		pat, err := p.ReadPat()
		if err != nil {
			return nil, err
		}
		p.TryReadToken(common.MarkTokenType, ",")
		if _, err := p.MustReadToken(common.CloseDelimiterTokenType, closer); err != nil {
			return nil, err
		}
		return &syntax.Matches{Spanned: p.spanFrom(start), X: x, Pat: pat}, nil
	}
	args, err := p.readExprList(open.Text, closer)
	if err != nil {
		return nil, err
	}
	return &syntax.MacroCall{Spanned: p.spanFrom(start), Name: name, Args: args}, nil
}

func (p *Parser) readParenOrTuple() (syntax.Expr, error) {
	start := p.GetToken()
	var elems []syntax.Expr
	trailingComma := false
	for p.TryReadToken(common.CloseDelimiterTokenType, ")") == nil {
		if len(elems) > 0 {
			if _, err := p.MustReadToken(common.MarkTokenType, ","); err != nil {
				return nil, err
			}
			trailingComma = true
			if p.TryReadToken(common.CloseDelimiterTokenType, ")") != nil {
				break
			}
		}
		x, err := p.MustReadExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, x)
		trailingComma = false
	}
	if len(elems) == 1 && !trailingComma {
		return &syntax.Paren{Spanned: p.spanFrom(start), X: elems[0]}, nil
	}
	return &syntax.Tuple{Spanned: p.spanFrom(start), Elems: elems}, nil
}

func (p *Parser) readClosure() (syntax.Expr, error) {
	start := p.PeekToken()
	move := p.TryReadToken(common.KeywordTokenType, "move") != nil
	var params []syntax.Pat
	if p.TryReadToken(common.OperatorTokenType, "||") == nil {
		if _, err := p.MustReadToken(common.OperatorTokenType, "|"); err != nil {
			return nil, err
		}
		for p.TryReadToken(common.OperatorTokenType, "|") == nil {
			if len(params) > 0 {
				if _, err := p.MustReadToken(common.MarkTokenType, ","); err != nil {
					return nil, err
				}
				if p.TryReadToken(common.OperatorTokenType, "|") != nil {
					break
				}
			}
			param, err := p.readParam(false)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
		}
	}
	var body syntax.Expr
	var err error
	if p.TryReadToken(common.MarkTokenType, "->") != nil {
		if _, err := p.ReadType(); err != nil {
			return nil, err
		}
		if !p.isOpen("{") {
			return nil, p.errorf(p.PeekToken(), "closure with a return type needs a block body")
		}
	}
	if body, err = p.MustReadExpr(); err != nil {
		return nil, err
	}
	return &syntax.Closure{Spanned: p.spanFrom(start), Move: move, Params: params, Body: body}, nil
}
