package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
)

// ReadPat reads a pattern, including top level alternatives.
func (p *Parser) ReadPat() (syntax.Pat, error) {
	start := p.PeekToken()
	p.TryReadToken(common.OperatorTokenType, "|")
	first, err := p.readPatNoAlt()
	if err != nil {
		return nil, err
	}
	if !p.isOperator("|") {
		return first, nil
	}
	cases := []syntax.Pat{first}
	for p.TryReadToken(common.OperatorTokenType, "|") != nil {
		next, err := p.readPatNoAlt()
		if err != nil {
			return nil, err
		}
		cases = append(cases, next)
	}
	return &syntax.OrPat{Spanned: p.spanFrom(start), Cases: cases}, nil
}

// readPatNoAlt reads a pattern without top level '|'. Closure parameters and
// or-pattern cases use it.
func (p *Parser) readPatNoAlt() (syntax.Pat, error) {
	token := p.PeekToken()
	if token == nil {
		return nil, p.errorf(nil, "found end of input while expecting a pattern")
	}
	switch token.Type {
	case common.VariableTokenType:
		if token.Text == "_" {
			p.DropPeekedToken()
			return &syntax.WildPat{Spanned: syntax.Spanned{Span: token.Span}}, nil
		}
		return p.readPathPat()
	case common.NumericLiteralTokenType, common.StringLiteralTokenType, common.CharLiteralTokenType:
		return p.readLitPat()
	case common.KeywordTokenType:
		switch token.Text {
		case "true", "false":
			return p.readLitPat()
		case "ref", "mut":
			return p.readIdentPat()
		case "box":
			p.DropPeekedToken()
			inner, err := p.readPatNoAlt()
			if err != nil {
				return nil, err
			}
			return &syntax.BoxPat{Spanned: p.spanFrom(token), Pat: inner}, nil
		}
	case common.OperatorTokenType:
		switch token.Text {
		case "-":
			return p.readLitPat()
		case "..":
			p.DropPeekedToken()
			return &syntax.RestPat{Spanned: syntax.Spanned{Span: token.Span}}, nil
		case "..=":
			p.DropPeekedToken()
			hi, err := p.readRangeBound()
			if err != nil {
				return nil, err
			}
			return &syntax.RangePat{Spanned: p.spanFrom(token), Hi: hi, Inclusive: true}, nil
		case "&", "&&":
			p.DropPeekedToken()
			mut := p.TryReadToken(common.KeywordTokenType, "mut") != nil
			inner, err := p.readPatNoAlt()
			if err != nil {
				return nil, err
			}
			ref := &syntax.RefPat{Spanned: p.spanFrom(token), Mut: mut, Pat: inner}
			if token.Text == "&&" {
				return &syntax.RefPat{Spanned: ref.Spanned, Pat: ref}, nil
			}
			return ref, nil
		}
	case common.OpenDelimiterTokenType:
		switch token.Text {
		case "(":
			elems, trailingComma, err := p.readPatList("(", ")")
			if err != nil {
				return nil, err
			}
			if len(elems) == 1 && !trailingComma {
				if _, rest := elems[0].(*syntax.RestPat); !rest {
					// Parenthesized pattern.
					return elems[0], nil
				}
			}
			return &syntax.TuplePat{Spanned: p.spanFrom(token), Elems: elems}, nil
		case "[":
			elems, _, err := p.readPatList("[", "]")
			if err != nil {
				return nil, err
			}
			return &syntax.SlicePat{Spanned: p.spanFrom(token), Elems: elems}, nil
		}
	}
	return nil, p.errorf(token, "unexpected '%s' at start of pattern", token.Text)
}

// readPatList reads a delimited, comma separated list of patterns. It reports
// whether the list ended with a comma.
func (p *Parser) readPatList(open, close string) ([]syntax.Pat, bool, error) {
	if _, err := p.MustReadToken(common.OpenDelimiterTokenType, open); err != nil {
		return nil, false, err
	}
	elems := []syntax.Pat{}
	trailingComma := false
	for p.TryReadToken(common.CloseDelimiterTokenType, close) == nil {
		if len(elems) > 0 {
			if _, err := p.MustReadToken(common.MarkTokenType, ","); err != nil {
				return nil, false, err
			}
			trailingComma = true
			if p.TryReadToken(common.CloseDelimiterTokenType, close) != nil {
				break
			}
		}
		elem, err := p.ReadPat()
		if err != nil {
			return nil, false, err
		}
		elems = append(elems, elem)
		trailingComma = false
	}
	return elems, trailingComma, nil
}

// readIdentPat reads [ref] [mut] name [@ sub].
func (p *Parser) readIdentPat() (syntax.Pat, error) {
	start := p.PeekToken()
	pat := &syntax.IdentPat{}
	pat.ByRef = p.TryReadToken(common.KeywordTokenType, "ref") != nil
	pat.Mut = p.TryReadToken(common.KeywordTokenType, "mut") != nil
	name, err := p.MustReadIdent()
	if err != nil {
		return nil, err
	}
	pat.Name = name.Text
	if p.TryReadToken(common.MarkTokenType, "@") != nil {
		if pat.Sub, err = p.readPatNoAlt(); err != nil {
			return nil, err
		}
	}
	pat.Spanned = p.spanFrom(start)
	return pat, nil
}

func (p *Parser) readLit() (*syntax.Lit, error) {
	token := p.GetToken()
	if token == nil {
		return nil, p.errorf(nil, "found end of input while expecting a literal")
	}
	lit := &syntax.Lit{Spanned: syntax.Spanned{Span: token.Span}}
	switch token.Type {
	case common.NumericLiteralTokenType:
		lit.Kind = syntax.IntLit
		if token.Float {
			lit.Kind = syntax.FloatLit
		}
		lit.Value = *token.Value
	case common.StringLiteralTokenType:
		lit.Kind, lit.Value = syntax.StrLit, *token.Value
	case common.CharLiteralTokenType:
		lit.Kind, lit.Value = syntax.CharLit, *token.Value
	case common.KeywordTokenType:
		if token.Text != "true" && token.Text != "false" {
			return nil, p.errorf(token, "found '%s' while expecting a literal", token.Text)
		}
		lit.Kind, lit.Value = syntax.BoolLit, token.Text
	default:
		return nil, p.errorf(token, "found '%s' while expecting a literal", token.Text)
	}
	return lit, nil
}

// readRangeBound reads a literal range bound. A negative bound keeps its sign
// in the literal value.
func (p *Parser) readRangeBound() (*syntax.Lit, error) {
	start := p.PeekToken()
	neg := p.TryReadToken(common.OperatorTokenType, "-") != nil
	lit, err := p.readLit()
	if err != nil {
		return nil, err
	}
	if neg {
		lit.Value = "-" + lit.Value
		lit.Spanned = p.spanFrom(start)
	}
	return lit, nil
}

// readLitPat reads a literal pattern or a range pattern starting with a
// literal.
func (p *Parser) readLitPat() (syntax.Pat, error) {
	start := p.PeekToken()
	neg := p.TryReadToken(common.OperatorTokenType, "-") != nil
	lit, err := p.readLit()
	if err != nil {
		return nil, err
	}
	if op := p.TryReadOneOf(common.OperatorTokenType, []string{"..", "..="}); op != nil {
		if neg {
			lit.Value = "-" + lit.Value
		}
		pat := &syntax.RangePat{Lo: lit, Inclusive: op.Text == "..="}
		if t := p.PeekToken(); t != nil && (t.Type == common.NumericLiteralTokenType || t.Type == common.CharLiteralTokenType || t.Is(common.OperatorTokenType, "-")) {
			if pat.Hi, err = p.readRangeBound(); err != nil {
				return nil, err
			}
		}
		pat.Spanned = p.spanFrom(start)
		return pat, nil
	}
	return &syntax.LitPat{Spanned: p.spanFrom(start), Lit: lit, Neg: neg}, nil
}

// readPathPat reads binding names, paths, tuple-struct, struct and macro
// patterns.
func (p *Parser) readPathPat() (syntax.Pat, error) {
	start := p.PeekToken()
	if !p.peekIs(1, common.MarkTokenType, "::") && !p.peekIs(1, common.OpenDelimiterTokenType, "(") &&
		!p.peekIs(1, common.OpenDelimiterTokenType, "{") && !p.peekIs(1, common.OperatorTokenType, "!") &&
		!isConstantName(start.Text) {
		return p.readIdentPat()
	}
	var path []string
	for {
		ident, err := p.MustReadIdent()
		if err != nil {
			return nil, err
		}
		path = append(path, ident.Text)
		if p.TryReadToken(common.MarkTokenType, "::") == nil {
			break
		}
		if p.isOperator("<") {
			generics := p.PeekToken()
			if err := p.skipGenerics(); err != nil {
				return nil, err
			}
			path = append(path, p.textFrom(generics))
			if p.TryReadToken(common.MarkTokenType, "::") == nil {
				break
			}
		}
	}
	switch {
	case len(path) == 1 && p.isOperator("!"):
		p.DropPeekedToken()
		open := p.PeekToken()
		if open == nil || open.Type != common.OpenDelimiterTokenType {
			return nil, p.errorf(open, "expected macro arguments")
		}
		p.DropPeekedToken()
		inner := p.PeekToken()
		for !p.isClose() {
			if p.PeekToken() == nil {
				return nil, p.errorf(open, "unclosed '%s'", open.Text)
			}
			if p.PeekToken().Type == common.OpenDelimiterTokenType {
				if err := p.skipBalanced(); err != nil {
					return nil, err
				}
				continue
			}
			p.DropPeekedToken()
		}
		text := ""
		if inner != p.PeekToken() {
			text = p.textFrom(inner)
		}
		if _, err := p.MustReadToken(common.CloseDelimiterTokenType, open.ClosedBy[0]); err != nil {
			return nil, err
		}
		return &syntax.MacroPat{Spanned: p.spanFrom(start), Name: path[0], Text: text}, nil
	case p.isOpen("("):
		elems, _, err := p.readPatList("(", ")")
		if err != nil {
			return nil, err
		}
		return &syntax.TupleStructPat{Spanned: p.spanFrom(start), Path: path, Elems: elems}, nil
	case p.isOpen("{"):
		return p.readStructPat(start, path)
	case p.isOperator("..") || p.isOperator("..="):
		return nil, p.errorf(p.PeekToken(), "range patterns with path bounds are not supported")
	}
	return &syntax.PathPat{Spanned: p.spanFrom(start), Segments: path}, nil
}

func (p *Parser) readStructPat(start *common.Token, path []string) (syntax.Pat, error) {
	p.DropPeekedToken()
	pat := &syntax.StructPat{Path: path}
	for p.TryReadToken(common.CloseDelimiterTokenType, "}") == nil {
		if len(pat.Fields) > 0 || pat.Rest {
			if _, err := p.MustReadToken(common.MarkTokenType, ","); err != nil {
				return nil, err
			}
			if p.TryReadToken(common.CloseDelimiterTokenType, "}") != nil {
				break
			}
		}
		if pat.Rest {
			return nil, p.errorf(p.PeekToken(), "'..' must be the last field of a struct pattern")
		}
		if p.TryReadToken(common.OperatorTokenType, "..") != nil {
			pat.Rest = true
			continue
		}
		fieldStart := p.PeekToken()
		if fieldStart != nil && (fieldStart.Type == common.VariableTokenType || fieldStart.Type == common.NumericLiteralTokenType) && p.peekIs(1, common.MarkTokenType, ":") {
			p.DropPeekedToken()
			p.DropPeekedToken()
			sub, err := p.ReadPat()
			if err != nil {
				return nil, err
			}
			pat.Fields = append(pat.Fields, &syntax.FieldPat{Spanned: p.spanFrom(fieldStart), Name: fieldStart.Text, Pat: sub})
			continue
		}
		// Shorthand: [ref] [mut] name.
		ident, err := p.readIdentPat()
		if err != nil {
			return nil, err
		}
		pat.Fields = append(pat.Fields, &syntax.FieldPat{Spanned: p.spanFrom(fieldStart), Name: ident.(*syntax.IdentPat).Name, Pat: ident})
	}
	pat.Spanned = p.spanFrom(start)
	return pat, nil
}

// isConstantName reports whether a lone identifier names a constant or unit
// variant rather than introducing a binding. Capitalized names are treated
// as paths.
func isConstantName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
