package rewriter

import (
	"github.com/frxstrem/cain/pkg/syntax"
)

func placeholderExpr(id PlaceholderID, expr syntax.Expr) *syntax.Ident {
	return &syntax.Ident{
		Spanned: syntax.Spanned{Span: expr.NodeSpan()},
		Name:    syntax.PlaceholderName(uint64(id)),
	}
}

func placeholderOf(e syntax.Expr) (*syntax.Ident, PlaceholderID, bool) {
	ident, ok := e.(*syntax.Ident)
	if !ok {
		return nil, 0, false
	}
	n, ok := syntax.ParsePlaceholder(ident.Name)
	return ident, PlaceholderID(n), ok
}

func isPlaceholder(e syntax.Expr, id PlaceholderID) bool {
	_, got, ok := placeholderOf(e)
	return ok && got == id
}

// mark swaps the content of slot for a fresh placeholder and returns the
// removed subtree.
func (s *Session) mark(slot *syntax.Expr) (PlaceholderID, syntax.Expr) {
	id := s.newPlaceholder()
	saved := *slot
	*slot = placeholderExpr(id, saved)
	return id, saved
}

// substitute returns a copy of tree in which every placeholder tagged id is
// replaced by its own copy of target. Other placeholders are kept.
func substitute(tree syntax.Expr, id PlaceholderID, target syntax.Expr) (syntax.Expr, error) {
	out := syntax.CloneExpr(tree)
	var err error
	syntax.WalkSlots(&out, func(slot *syntax.Expr) bool {
		if err != nil {
			return false
		}
		ident, got, ok := placeholderOf(*slot)
		if !ok {
			return true
		}
		if got != id {
			return false
		}
		if len(ident.Attrs) > 0 {
			err = errorf(InternalInvariant, ident.Span, "placeholder %s carries attributes", ident.Name)
			return false
		}
		*slot = syntax.CloneExpr(target)
		return false
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// wrapExpr replaces the content of slot by outer, with the placeholder id
// standing for the old content.
func wrapExpr(slot *syntax.Expr, id PlaceholderID, outer syntax.Expr) error {
	out, err := substitute(outer, id, *slot)
	if err != nil {
		return err
	}
	*slot = out
	return nil
}

// wrapBlock is wrapExpr for a block that is used as a value: the block is
// substituted as a block expression and then holds the result as its only
// statement. A plain block result is inlined.
func wrapBlock(b *syntax.Block, id PlaceholderID, outer syntax.Expr) error {
	target := &syntax.BlockExpr{Spanned: b.Spanned, Block: b}
	out, err := substitute(outer, id, target)
	if err != nil {
		return err
	}
	if inner, ok := out.(*syntax.BlockExpr); ok && isPlainBlock(inner) {
		b.Stmts = inner.Block.Stmts
		return nil
	}
	b.Stmts = []syntax.Stmt{&syntax.ExprStmt{Spanned: syntax.Spanned{Span: out.NodeSpan()}, X: out}}
	return nil
}

func isPlainBlock(e *syntax.BlockExpr) bool {
	return e.Keyword == "" && e.Label == ""
}
