package syntax

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Operator precedence levels, loosest first.
const (
	precJump = iota // return, break, closures
	precAssign
	precRange
	precOr
	precAnd
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precSum
	precProduct
	precCast
	precPrefix
	precPostfix
	precPrimary
)

var binaryPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"==": precCompare, "!=": precCompare, "<": precCompare, ">": precCompare, "<=": precCompare, ">=": precCompare,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"<<": precShift, ">>": precShift,
	"+": precSum, "-": precSum,
	"*": precProduct, "/": precProduct, "%": precProduct,
}

// Format renders b on a single line as Rust-like source text.
func Format(b *Block) string {
	var p printer
	p.block(b)
	return p.String()
}

func FormatExpr(e Expr) string {
	var p printer
	p.expr(e, precJump)
	return p.String()
}

func FormatPat(pat Pat) string {
	var p printer
	p.pat(pat, false)
	return p.String()
}

func FormatStmt(s Stmt) string {
	var p printer
	p.stmt(s)
	return p.String()
}

type printer struct {
	strings.Builder
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p, format, args...)
}

func (p *printer) block(b *Block) {
	if b == nil || len(b.Stmts) == 0 {
		p.WriteString("{}")
		return
	}
	p.WriteString("{ ")
	for i, s := range b.Stmts {
		if i > 0 {
			p.WriteByte(' ')
		}
		p.stmt(s)
	}
	p.WriteString(" }")
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *ItemStmt:
		p.item(s.Item)
	case *LetStmt:
		p.WriteString("let ")
		p.pat(s.Pat, false)
		if s.Type != "" {
			p.printf(": %s", s.Type)
		}
		if s.Init != nil {
			p.WriteString(" = ")
			p.expr(s.Init, precJump)
		}
		p.WriteByte(';')
	case *ExprStmt:
		p.leading(s.X)
		if s.Semi {
			p.WriteByte(';')
		}
	default:
		p.printf("<%T>", s)
	}
}

func (p *printer) item(it Item) {
	switch it := it.(type) {
	case *FnItem:
		p.printf("fn %s(", it.Name)
		p.patList(it.Params)
		p.WriteByte(')')
		if it.Result != "" {
			p.printf(" -> %s", it.Result)
		}
		p.WriteByte(' ')
		p.block(it.Body)
	case *OpaqueItem:
		p.WriteString(it.Text)
	default:
		p.printf("<%T>", it)
	}
}

func exprPrec(e Expr) int {
	switch e := e.(type) {
	case *Binary:
		if prec, ok := binaryPrec[e.Op]; ok {
			return prec
		}
		return precCompare
	case *Unary:
		if e.Op == "?" {
			return precPostfix
		}
		return precPrefix
	case *Ref:
		return precPrefix
	case *Call, *MethodCall, *Field, *Index:
		return precPostfix
	case *Cast:
		return precCast
	case *Range:
		return precRange
	case *Assign:
		return precAssign
	case *Closure, *Return:
		return precJump
	case *Break:
		if e.X != nil {
			return precJump
		}
		return precPrimary
	case *LetCond:
		return precAnd
	default:
		return precPrimary
	}
}

func (p *printer) exprList(xs []Expr) {
	for i, x := range xs {
		if i > 0 {
			p.WriteString(", ")
		}
		p.expr(x, precJump)
	}
}

func (p *printer) expr(e Expr, min int) {
	if e == nil {
		p.WriteString("()")
		return
	}
	if exprPrec(e) < min {
		p.WriteByte('(')
		p.expr(e, precJump)
		p.WriteByte(')')
		return
	}
	switch e := e.(type) {
	case *Lit:
		p.lit(e)
	case *Ident:
		for _, attr := range e.Attrs {
			p.printf("#[%s] ", attr)
		}
		p.WriteString(e.Name)
	case *Path:
		p.WriteString(strings.Join(e.Segments, "::"))
	case *Binary:
		prec := exprPrec(e)
		left, right := prec, prec+1
		if prec == precCompare {
			left = prec + 1
		}
		if _, ok := e.Y.(*LetCond); ok && e.Op == "&&" {
			right = prec
		}
		p.expr(e.X, left)
		p.printf(" %s ", e.Op)
		p.expr(e.Y, right)
	case *Unary:
		if e.Op == "?" {
			p.expr(e.X, precPostfix)
			p.WriteByte('?')
			return
		}
		p.WriteString(e.Op)
		p.expr(e.X, precPrefix)
	case *Ref:
		p.WriteByte('&')
		if e.Mut {
			p.WriteString("mut ")
		}
		p.expr(e.X, precPrefix)
	case *Call:
		p.expr(e.Fun, precPostfix)
		p.WriteByte('(')
		p.exprList(e.Args)
		p.WriteByte(')')
	case *MethodCall:
		p.expr(e.Recv, precPostfix)
		p.printf(".%s(", e.Name)
		p.exprList(e.Args)
		p.WriteByte(')')
	case *Field:
		p.expr(e.X, precPostfix)
		p.printf(".%s", e.Name)
	case *Index:
		p.expr(e.X, precPostfix)
		p.WriteByte('[')
		p.expr(e.Index, precJump)
		p.WriteByte(']')
	case *Tuple:
		p.WriteByte('(')
		p.exprList(e.Elems)
		if len(e.Elems) == 1 {
			p.WriteByte(',')
		}
		p.WriteByte(')')
	case *Array:
		p.WriteByte('[')
		p.exprList(e.Elems)
		p.WriteByte(']')
	case *Paren:
		p.WriteByte('(')
		p.expr(e.X, precJump)
		p.WriteByte(')')
	case *Range:
		if e.Lo != nil {
			p.expr(e.Lo, precRange+1)
		}
		if e.Inclusive {
			p.WriteString("..=")
		} else {
			p.WriteString("..")
		}
		if e.Hi != nil {
			p.expr(e.Hi, precRange+1)
		}
	case *Assign:
		p.expr(e.Lhs, precAssign+1)
		p.printf(" %s ", e.Op)
		p.expr(e.Rhs, precAssign)
	case *Cast:
		p.expr(e.X, precCast)
		p.printf(" as %s", e.Type)
	case *MacroCall:
		if e.Name == "vec" {
			p.WriteString("vec![")
			p.exprList(e.Args)
			p.WriteByte(']')
			return
		}
		p.printf("%s!(", e.Name)
		p.exprList(e.Args)
		p.WriteByte(')')
	case *Break:
		p.WriteString("break")
		if e.Label != "" {
			p.printf(" '%s", e.Label)
		}
		if e.X != nil {
			p.WriteByte(' ')
			p.expr(e.X, precJump)
		}
	case *Continue:
		p.WriteString("continue")
		if e.Label != "" {
			p.printf(" '%s", e.Label)
		}
	case *Return:
		p.WriteString("return")
		if e.X != nil {
			p.WriteByte(' ')
			p.expr(e.X, precJump)
		}
	case *Matches:
		p.WriteString("matches!(")
		p.expr(e.X, precJump)
		p.WriteString(", ")
		p.pat(e.Pat, false)
		p.WriteByte(')')
	case *If:
		p.ifExpr(e)
	case *LetCond:
		p.WriteString("let ")
		p.pat(e.Pat, false)
		p.WriteString(" = ")
		p.expr(e.X, precCompare)
	case *Match:
		p.WriteString("match ")
		p.expr(e.X, precOr)
		p.WriteString(" {")
		for i, arm := range e.Arms {
			if i > 0 {
				p.WriteByte(',')
			}
			p.WriteByte(' ')
			p.pat(arm.Pat, false)
			if arm.Guard != nil {
				p.WriteString(" if ")
				p.expr(arm.Guard, precJump)
			}
			p.WriteString(" => ")
			p.leading(arm.Body)
		}
		p.WriteString(" }")
	case *BlockExpr:
		p.label(e.Label)
		if e.Keyword != "" {
			p.printf("%s ", e.Keyword)
		}
		p.block(e.Block)
	case *Closure:
		if e.Move {
			p.WriteString("move ")
		}
		p.WriteByte('|')
		p.patList(e.Params)
		p.WriteString("| ")
		p.expr(e.Body, precJump)
	case *Loop:
		p.label(e.Label)
		p.WriteString("loop ")
		p.block(e.Body)
	case *While:
		p.label(e.Label)
		p.WriteString("while ")
		p.expr(e.Cond, precOr)
		p.WriteByte(' ')
		p.block(e.Body)
	case *For:
		p.label(e.Label)
		p.WriteString("for ")
		p.pat(e.Pat, false)
		p.WriteString(" in ")
		p.expr(e.Iter, precRange)
		p.WriteByte(' ')
		p.block(e.Body)
	default:
		p.printf("<%T>", e)
	}
}

// leading prints an expression in a position where a leading block-like
// expression would end it early: statements and match arm bodies.
func (p *printer) leading(e Expr) {
	if leadsWithBlock(e) {
		p.WriteByte('(')
		p.expr(e, precJump)
		p.WriteByte(')')
		return
	}
	p.expr(e, precJump)
}

func blockLike(e Expr) bool {
	switch e.(type) {
	case *If, *Match, *BlockExpr, *Loop, *While, *For:
		return true
	}
	return false
}

// leadsWithBlock reports whether the leftmost operand of e is block-like
// while e itself is not.
func leadsWithBlock(e Expr) bool {
	for {
		var next Expr
		switch x := e.(type) {
		case *Binary:
			next = x.X
		case *Assign:
			next = x.Lhs
		case *Cast:
			next = x.X
		case *Range:
			next = x.Lo
		case *Call:
			next = x.Fun
		case *MethodCall:
			next = x.Recv
		case *Field:
			next = x.X
		case *Index:
			next = x.X
		case *Unary:
			if x.Op != "?" {
				return false
			}
			next = x.X
		default:
			return false
		}
		if next == nil {
			return false
		}
		if blockLike(next) {
			return true
		}
		e = next
	}
}

func (p *printer) label(label string) {
	if label != "" {
		p.printf("'%s: ", label)
	}
}

func (p *printer) ifExpr(e *If) {
	p.WriteString("if ")
	p.expr(e.Cond, precOr)
	p.WriteByte(' ')
	p.block(e.Then)
	switch els := e.Else.(type) {
	case nil:
	case *If:
		p.WriteString(" else ")
		p.ifExpr(els)
	case *BlockExpr:
		if els.Keyword == "" && els.Label == "" {
			p.WriteString(" else ")
			p.block(els.Block)
			return
		}
		p.WriteString(" else { ")
		p.expr(els, precJump)
		p.WriteString(" }")
	default:
		p.WriteString(" else { ")
		p.expr(els, precJump)
		p.WriteString(" }")
	}
}

func (p *printer) lit(l *Lit) {
	switch l.Kind {
	case StrLit:
		p.WriteString(strconv.Quote(l.Value))
	case CharLit:
		r, size := utf8.DecodeRuneInString(l.Value)
		if size == len(l.Value) && r != utf8.RuneError {
			p.WriteString(strconv.QuoteRune(r))
		} else {
			p.printf("'%s'", l.Value)
		}
	default:
		p.WriteString(l.Value)
	}
}

func (p *printer) patList(ps []Pat) {
	for i, sub := range ps {
		if i > 0 {
			p.WriteString(", ")
		}
		p.pat(sub, false)
	}
}

// pat renders a pattern. Or-patterns in a nested position are parenthesised.
func (p *printer) pat(pat Pat, nested bool) {
	switch pat := pat.(type) {
	case nil:
		p.WriteString("_")
	case *IdentPat:
		if pat.ByRef {
			p.WriteString("ref ")
		}
		if pat.Mut {
			p.WriteString("mut ")
		}
		p.WriteString(pat.Name)
		if pat.Sub != nil {
			p.WriteString(" @ ")
			p.pat(pat.Sub, true)
		}
	case *WildPat:
		p.WriteByte('_')
	case *RestPat:
		p.WriteString("..")
	case *LitPat:
		if pat.Neg {
			p.WriteByte('-')
		}
		p.lit(pat.Lit)
	case *PathPat:
		p.WriteString(strings.Join(pat.Segments, "::"))
	case *RangePat:
		if pat.Lo != nil {
			p.lit(pat.Lo)
		}
		if pat.Inclusive {
			p.WriteString("..=")
		} else {
			p.WriteString("..")
		}
		if pat.Hi != nil {
			p.lit(pat.Hi)
		}
	case *TuplePat:
		p.WriteByte('(')
		p.patList(pat.Elems)
		if len(pat.Elems) == 1 {
			if _, rest := pat.Elems[0].(*RestPat); !rest {
				p.WriteByte(',')
			}
		}
		p.WriteByte(')')
	case *TupleStructPat:
		p.printf("%s(", strings.Join(pat.Path, "::"))
		p.patList(pat.Elems)
		p.WriteByte(')')
	case *StructPat:
		p.printf("%s {", strings.Join(pat.Path, "::"))
		for i, f := range pat.Fields {
			if i > 0 {
				p.WriteByte(',')
			}
			p.WriteByte(' ')
			if ip, ok := f.Pat.(*IdentPat); ok && ip.Name == f.Name && ip.Sub == nil {
				p.pat(ip, false)
				continue
			}
			p.printf("%s: ", f.Name)
			p.pat(f.Pat, false)
		}
		if pat.Rest {
			if len(pat.Fields) > 0 {
				p.WriteByte(',')
			}
			p.WriteString(" ..")
		}
		p.WriteString(" }")
	case *SlicePat:
		p.WriteByte('[')
		p.patList(pat.Elems)
		p.WriteByte(']')
	case *RefPat:
		p.WriteByte('&')
		if pat.Mut {
			p.WriteString("mut ")
		}
		p.pat(pat.Pat, true)
	case *OrPat:
		if nested {
			p.WriteByte('(')
		}
		for i, c := range pat.Cases {
			if i > 0 {
				p.WriteString(" | ")
			}
			p.pat(c, true)
		}
		if nested {
			p.WriteByte(')')
		}
	case *TypedPat:
		p.pat(pat.Pat, true)
		p.printf(": %s", pat.Type)
	case *BoxPat:
		p.WriteString("box ")
		p.pat(pat.Pat, true)
	case *MacroPat:
		p.printf("%s!(%s)", pat.Name, pat.Text)
	case *VerbatimPat:
		p.WriteString(pat.Text)
	default:
		p.printf("<%T>", pat)
	}
}
