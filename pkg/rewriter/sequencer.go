package rewriter

import (
	"github.com/frxstrem/cain/pkg/syntax"
)

// continuation is the code a binding statement splices into every branch of
// its initializer: `{ let P = <id>; <rest> }`.
type continuation struct {
	id    PlaceholderID
	outer syntax.Expr
}

func (s *Session) sequenceBlock(b *syntax.Block) error {
	if b == nil {
		return nil
	}
	s.stats.Scopes++
	stmts, err := s.sequenceStmts(b.Stmts)
	if err != nil {
		return err
	}
	b.Stmts = stmts
	return nil
}

// resolveExpr rewrites the expression in slot as an independent scope.
func (s *Session) resolveExpr(slot *syntax.Expr) error {
	s.stats.Scopes++
	x, _, err := s.sequenceExpr(*slot, nil)
	if err != nil {
		return err
	}
	*slot = x
	return nil
}

// sequenceStmts hoists the declarations of a statement list and folds the
// other statements from last to first.
func (s *Session) sequenceStmts(stmts []syntax.Stmt) ([]syntax.Stmt, error) {
	var items, rest []syntax.Stmt
	for _, stmt := range stmts {
		if _, ok := stmt.(*syntax.ItemStmt); ok {
			items = append(items, stmt)
		}
	}
	for i := len(stmts) - 1; i >= 0; i-- {
		switch stmt := stmts[i].(type) {
		case *syntax.ItemStmt:
			continue
		case *syntax.ExprStmt:
			x, _, err := s.sequenceExpr(stmt.X, nil)
			if err != nil {
				return nil, err
			}
			stmt.X = x
			rest = append([]syntax.Stmt{stmt}, rest...)
		case *syntax.LetStmt:
			if stmt.Init == nil {
				rest = append([]syntax.Stmt{stmt}, rest...)
				continue
			}
			id, init := s.mark(&stmt.Init)
			cont := &continuation{
				id: id,
				outer: &syntax.BlockExpr{
					Spanned: stmt.Spanned,
					Block: &syntax.Block{
						Spanned: stmt.Spanned,
						Stmts:   append([]syntax.Stmt{stmt}, rest...),
					},
				},
			}
			x, hoisted, err := s.sequenceExpr(init, cont)
			if err != nil {
				return nil, err
			}
			if block, ok := x.(*syntax.BlockExpr); ok && !hoisted {
				rest = block.Block.Stmts
			} else {
				rest = []syntax.Stmt{&syntax.ExprStmt{Spanned: syntax.Spanned{Span: x.NodeSpan()}, X: x}}
			}
		default:
			return nil, errorf(InternalInvariant, stmt.NodeSpan(), "unexpected statement %T", stmt)
		}
	}
	return append(items, rest...), nil
}

// sequenceExpr collects the conditionals of x and folds them back around it,
// the first discovered outermost. With a continuation, x is first spliced
// into it. The result reports whether any conditional was found.
func (s *Session) sequenceExpr(x syntax.Expr, cont *continuation) (syntax.Expr, bool, error) {
	v := &visitor{s: s}
	if err := v.visit(&x); err != nil {
		return nil, false, err
	}
	if cont != nil {
		if err := wrapExpr(&x, cont.id, cont.outer); err != nil {
			return nil, false, err
		}
	}
	acc := x
	for i := len(v.branches) - 1; i >= 0; i-- {
		b := v.branches[i]
		if !isPlaceholder(acc, b.id) {
			s.stats.Hoisted++
			s.tracef(b.node.NodeSpan(), "hoist %s around %s", describe(b.node), syntax.FormatExpr(acc))
		}
		var err error
		switch node := b.node.(type) {
		case *syntax.If:
			err = s.foldIf(node, b.id, acc)
		case *syntax.Match:
			err = s.foldMatch(node, b.id, acc)
		default:
			err = errorf(InternalInvariant, node.NodeSpan(), "recorded branch is %T", node)
		}
		if err != nil {
			return nil, false, err
		}
		acc = b.node
	}
	return acc, len(v.branches) > 0, nil
}

func describe(e syntax.Expr) string {
	if _, ok := e.(*syntax.Match); ok {
		return "match"
	}
	return "if"
}

// foldMatch places acc in every arm, with the arm body standing for the
// placeholder.
func (s *Session) foldMatch(m *syntax.Match, id PlaceholderID, acc syntax.Expr) error {
	identity := isPlaceholder(acc, id)
	for _, arm := range m.Arms {
		norm, err := s.normalize(arm.Pat)
		if err != nil {
			return err
		}
		if norm.Rebind != nil {
			rebind := []syntax.Stmt{norm.Rebind}
			arm.Pat = norm.Dispatch
			arm.Body = withRebind(rebind, arm.Body)
			if arm.Guard != nil {
				arm.Guard = withRebind(rebind, arm.Guard)
			}
			arm.Guard = conjoin(norm.Guard, arm.Guard)
		}
		if identity {
			continue
		}
		if err := wrapExpr(&arm.Body, id, acc); err != nil {
			return err
		}
	}
	return nil
}

// foldIf places acc in the then block and in every else branch. A missing
// else becomes an empty block so that acc also runs when the test fails.
func (s *Session) foldIf(e *syntax.If, id PlaceholderID, acc syntax.Expr) error {
	identity := isPlaceholder(acc, id)
	rebind, err := s.normalizeCond(&e.Cond)
	if err != nil {
		return err
	}
	if len(rebind) > 0 {
		e.Then.Stmts = prependStmts(e.Then.Stmts, rebind)
	}
	if !identity {
		if err := wrapBlock(e.Then, id, acc); err != nil {
			return err
		}
	}
	switch els := e.Else.(type) {
	case nil:
		if identity {
			return nil
		}
		block := &syntax.Block{Spanned: e.Spanned}
		if err := wrapBlock(block, id, acc); err != nil {
			return err
		}
		e.Else = &syntax.BlockExpr{Spanned: e.Spanned, Block: block}
	case *syntax.If:
		return s.foldIf(els, id, acc)
	default:
		if identity {
			return nil
		}
		if block, ok := els.(*syntax.BlockExpr); ok && isPlainBlock(block) {
			return wrapBlock(block.Block, id, acc)
		}
		block := &syntax.Block{
			Spanned: syntax.Spanned{Span: els.NodeSpan()},
			Stmts:   []syntax.Stmt{&syntax.ExprStmt{Spanned: syntax.Spanned{Span: els.NodeSpan()}, X: els}},
		}
		if err := wrapBlock(block, id, acc); err != nil {
			return err
		}
		e.Else = &syntax.BlockExpr{Spanned: syntax.Spanned{Span: els.NodeSpan()}, Block: block}
	}
	return nil
}

// normalizeCond normalizes the let tests of a condition. Conjuncts after a
// let test see its bindings through a rebinding block. The returned
// statements restore every binding for the then block.
func (s *Session) normalizeCond(slot *syntax.Expr) ([]syntax.Stmt, error) {
	if !hasLetCond(*slot) {
		return nil, nil
	}
	var rebind []syntax.Stmt
	var chain syntax.Expr
	for _, conj := range conjuncts(*slot) {
		lc, ok := conj.(*syntax.LetCond)
		if !ok {
			if len(rebind) > 0 {
				conj = withRebind(rebind, conj)
			}
			chain = conjoin(chain, conj)
			continue
		}
		norm, err := s.normalize(lc.Pat)
		if err != nil {
			return nil, err
		}
		lc.Pat = norm.Dispatch
		chain = conjoin(chain, lc)
		chain = conjoin(chain, norm.Guard)
		if norm.Rebind != nil {
			rebind = append(rebind, norm.Rebind)
		}
	}
	*slot = chain
	return rebind, nil
}

func conjuncts(e syntax.Expr) []syntax.Expr {
	if b, ok := e.(*syntax.Binary); ok && b.Op == "&&" {
		return append(conjuncts(b.X), conjuncts(b.Y)...)
	}
	return []syntax.Expr{e}
}
