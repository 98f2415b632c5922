package rewriter

import (
	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
)

// capture records one distinct binding name of a pattern.
type capture struct {
	Name    string
	Capture string
	Mut     bool
	Span    common.Span
	// Subs holds the binding-free `@` sub-patterns of the occurrences of
	// the name. An occurrence without one makes the re-test trivial.
	Subs    []syntax.Pat
	trivial bool
}

// normalized is the result of normalizing a pattern. Guard and Rebind are nil
// when the pattern binds nothing.
type normalized struct {
	Dispatch syntax.Pat
	Guard    syntax.Expr
	Rebind   *syntax.LetStmt
	Captures []*capture
}

type normalizer struct {
	s        *Session
	byName   map[string]*capture
	captures []*capture
}

// normalize renames the bindings of p to fresh capture names. The dispatch
// pattern has the shape of p; the guard re-tests `@` sub-patterns through a
// reference and the rebinding restores the original names.
func (s *Session) normalize(p syntax.Pat) (*normalized, error) {
	n := &normalizer{s: s, byName: map[string]*capture{}}
	dispatch := syntax.ClonePat(p)
	if err := n.rename(dispatch, p); err != nil {
		return nil, err
	}
	if len(n.captures) == 0 {
		return &normalized{Dispatch: p}, nil
	}
	span := p.NodeSpan()
	var guard syntax.Expr
	for _, c := range n.captures {
		if c.trivial || len(c.Subs) == 0 {
			continue
		}
		sub := c.Subs[0]
		if len(c.Subs) > 1 {
			sub = &syntax.OrPat{Spanned: syntax.Spanned{Span: c.Span}, Cases: c.Subs}
		}
		test := &syntax.Matches{
			Spanned: syntax.Spanned{Span: c.Span},
			X: &syntax.Ref{
				Spanned: syntax.Spanned{Span: c.Span},
				X:       &syntax.Ident{Spanned: syntax.Spanned{Span: c.Span}, Name: c.Capture},
			},
			Pat: sub,
		}
		guard = conjoin(guard, test)
	}
	return &normalized{
		Dispatch: dispatch,
		Guard:    guard,
		Rebind:   rebinding(n.captures, span),
		Captures: n.captures,
	}, nil
}

func (n *normalizer) rename(p syntax.Pat, original syntax.Pat) error {
	switch p := p.(type) {
	case nil:
		return errorf(UnsupportedPattern, original.NodeSpan(), "missing pattern")
	case *syntax.IdentPat:
		if _, ok := syntax.ParseCapture(p.Name); ok {
			if p.Sub != nil {
				return n.rename(p.Sub, original)
			}
			return nil
		}
		c, seen := n.byName[p.Name]
		if !seen {
			c = &capture{Name: p.Name, Capture: n.s.FreshName(), Span: p.Span}
			n.byName[p.Name] = c
			n.captures = append(n.captures, c)
		}
		if p.Mut && !p.ByRef {
			c.Mut = true
			p.Mut = false
		}
		if p.Sub == nil {
			c.trivial = true
		} else {
			erased, err := erase(p.Sub)
			if err != nil {
				return err
			}
			if _, wild := erased.(*syntax.WildPat); wild {
				c.trivial = true
			} else {
				c.Subs = append(c.Subs, erased)
			}
			if err := n.rename(p.Sub, original); err != nil {
				return err
			}
		}
		p.Name = c.Capture
		return nil
	case *syntax.WildPat, *syntax.RestPat, *syntax.LitPat, *syntax.PathPat, *syntax.RangePat:
		return nil
	case *syntax.TuplePat:
		return n.renameAll(p.Elems, original)
	case *syntax.TupleStructPat:
		return n.renameAll(p.Elems, original)
	case *syntax.StructPat:
		for _, f := range p.Fields {
			if err := n.rename(f.Pat, original); err != nil {
				return err
			}
		}
		return nil
	case *syntax.SlicePat:
		return n.renameAll(p.Elems, original)
	case *syntax.RefPat:
		return n.rename(p.Pat, original)
	case *syntax.OrPat:
		return n.renameAll(p.Cases, original)
	case *syntax.TypedPat:
		return n.rename(p.Pat, original)
	case *syntax.BoxPat:
		return n.rename(p.Pat, original)
	case *syntax.MacroPat:
		return errorf(UnsupportedPattern, p.Span, "macros in patterns are not supported: %s!(%s)", p.Name, p.Text)
	default:
		return errorf(UnsupportedPattern, p.NodeSpan(), "this pattern is not supported: %s", syntax.FormatPat(p))
	}
}

func (n *normalizer) renameAll(ps []syntax.Pat, original syntax.Pat) error {
	for _, p := range ps {
		if err := n.rename(p, original); err != nil {
			return err
		}
	}
	return nil
}

// erase returns a copy of p with every binding replaced by its sub-pattern,
// or by a wildcard.
func erase(p syntax.Pat) (syntax.Pat, error) {
	var err error
	var walk func(syntax.Pat) syntax.Pat
	walk = func(p syntax.Pat) syntax.Pat {
		switch p := p.(type) {
		case *syntax.IdentPat:
			if p.Sub != nil {
				return walk(p.Sub)
			}
			return &syntax.WildPat{Spanned: p.Spanned}
		case *syntax.TuplePat:
			p.Elems = walkAll(p.Elems, walk)
		case *syntax.TupleStructPat:
			p.Elems = walkAll(p.Elems, walk)
		case *syntax.StructPat:
			for _, f := range p.Fields {
				f.Pat = walk(f.Pat)
			}
		case *syntax.SlicePat:
			p.Elems = walkAll(p.Elems, walk)
		case *syntax.RefPat:
			p.Pat = walk(p.Pat)
		case *syntax.OrPat:
			p.Cases = walkAll(p.Cases, walk)
		case *syntax.TypedPat:
			p.Pat = walk(p.Pat)
		case *syntax.BoxPat:
			p.Pat = walk(p.Pat)
		case *syntax.MacroPat, *syntax.VerbatimPat:
			if err == nil {
				err = errorf(UnsupportedPattern, p.NodeSpan(), "this pattern is not supported: %s", syntax.FormatPat(p))
			}
		}
		return p
	}
	out := walk(syntax.ClonePat(p))
	return out, err
}

func walkAll(ps []syntax.Pat, walk func(syntax.Pat) syntax.Pat) []syntax.Pat {
	for i, p := range ps {
		ps[i] = walk(p)
	}
	return ps
}

// rebinding builds `let (a, b) = (c0, c1);`, or `let a = c0;` for a single
// name.
func rebinding(captures []*capture, span common.Span) *syntax.LetStmt {
	spanned := syntax.Spanned{Span: span}
	pats := make([]syntax.Pat, len(captures))
	values := make([]syntax.Expr, len(captures))
	for i, c := range captures {
		pats[i] = &syntax.IdentPat{Spanned: syntax.Spanned{Span: c.Span}, Name: c.Name, Mut: c.Mut}
		values[i] = &syntax.Ident{Spanned: syntax.Spanned{Span: c.Span}, Name: c.Capture}
	}
	if len(captures) == 1 {
		return &syntax.LetStmt{Spanned: spanned, Pat: pats[0], Init: values[0]}
	}
	return &syntax.LetStmt{
		Spanned: spanned,
		Pat:     &syntax.TuplePat{Spanned: spanned, Elems: pats},
		Init:    &syntax.Tuple{Spanned: spanned, Elems: values},
	}
}

func conjoin(x, y syntax.Expr) syntax.Expr {
	if x == nil {
		return y
	}
	if y == nil {
		return x
	}
	return &syntax.Binary{Spanned: syntax.Spanned{Span: x.NodeSpan()}, Op: "&&", X: x, Y: y}
}

// withRebind returns `{ <rebind>; <body> }`. A plain block body is inlined
// after its declarations.
func withRebind(rebind []syntax.Stmt, body syntax.Expr) syntax.Expr {
	span := body.NodeSpan()
	var stmts []syntax.Stmt
	if block, ok := body.(*syntax.BlockExpr); ok && isPlainBlock(block) {
		stmts = prependStmts(block.Block.Stmts, rebind)
	} else {
		stmts = append(cloneStmts(rebind), &syntax.ExprStmt{Spanned: syntax.Spanned{Span: span}, X: body})
	}
	return &syntax.BlockExpr{
		Spanned: syntax.Spanned{Span: span},
		Block:   &syntax.Block{Spanned: syntax.Spanned{Span: span}, Stmts: stmts},
	}
}

// prependStmts inserts copies of front after the leading declarations of
// stmts.
func prependStmts(stmts []syntax.Stmt, front []syntax.Stmt) []syntax.Stmt {
	i := 0
	for i < len(stmts) {
		if _, ok := stmts[i].(*syntax.ItemStmt); !ok {
			break
		}
		i++
	}
	out := make([]syntax.Stmt, 0, len(stmts)+len(front))
	out = append(out, stmts[:i]...)
	out = append(out, cloneStmts(front)...)
	return append(out, stmts[i:]...)
}

func cloneStmts(stmts []syntax.Stmt) []syntax.Stmt {
	out := make([]syntax.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = syntax.CloneStmt(s)
	}
	return out
}
