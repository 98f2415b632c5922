package rewriter

import (
	"github.com/frxstrem/cain/pkg/syntax"
)

// branch is a conditional taken out of an expression. Its place is held by
// the placeholder id.
type branch struct {
	id   PlaceholderID
	node syntax.Expr // *syntax.If or *syntax.Match
}

// visitor collects the conditionals of one scope. Nested scopes are resolved
// by their own pass and then left alone.
type visitor struct {
	s        *Session
	branches []branch
}

func (v *visitor) visit(slot *syntax.Expr) error {
	switch e := (*slot).(type) {
	case *syntax.If:
		id, _ := v.s.mark(slot)
		if err := v.visitIf(e); err != nil {
			return err
		}
		v.record(id, e)
		return nil
	case *syntax.Match:
		id, _ := v.s.mark(slot)
		if err := v.visitMatch(e); err != nil {
			return err
		}
		v.record(id, e)
		return nil
	case *syntax.BlockExpr:
		return v.s.sequenceBlock(e.Block)
	case *syntax.Closure:
		return v.s.resolveExpr(&e.Body)
	case *syntax.Loop:
		return v.s.sequenceBlock(e.Body)
	case *syntax.While:
		if err := v.s.resolveCond(&e.Cond); err != nil {
			return err
		}
		return v.s.sequenceBlock(e.Body)
	case *syntax.For:
		if err := v.visit(&e.Iter); err != nil {
			return err
		}
		return v.s.sequenceBlock(e.Body)
	case *syntax.Binary:
		if e.Op == "&&" || e.Op == "||" {
			// The right operand may not run.
			if err := v.visit(&e.X); err != nil {
				return err
			}
			return v.s.resolveCond(&e.Y)
		}
	}
	for _, child := range syntax.ChildSlots(*slot) {
		if err := v.visit(child); err != nil {
			return err
		}
	}
	return nil
}

func (v *visitor) record(id PlaceholderID, node syntax.Expr) {
	v.s.stats.Conditionals++
	v.branches = append(v.branches, branch{id: id, node: node})
}

// visitIf walks the test of the first condition in this scope. Everything
// else of the conditional runs only when selected and gets its own pass.
func (v *visitor) visitIf(e *syntax.If) error {
	if err := v.visit(&e.Cond); err != nil {
		return err
	}
	if err := v.s.sequenceBlock(e.Then); err != nil {
		return err
	}
	return v.s.resolveElse(e)
}

func (v *visitor) visitMatch(e *syntax.Match) error {
	if err := v.visit(&e.X); err != nil {
		return err
	}
	for _, arm := range e.Arms {
		if arm.Guard != nil {
			if err := v.s.resolveExpr(&arm.Guard); err != nil {
				return err
			}
		}
		if err := v.s.resolveExpr(&arm.Body); err != nil {
			return err
		}
	}
	return nil
}

// resolveElse resolves an else branch. The conditions and blocks of an
// else-if chain each get their own pass.
func (s *Session) resolveElse(e *syntax.If) error {
	switch els := e.Else.(type) {
	case nil:
		return nil
	case *syntax.If:
		if err := s.resolveCond(&els.Cond); err != nil {
			return err
		}
		if err := s.sequenceBlock(els.Then); err != nil {
			return err
		}
		return s.resolveElse(els)
	default:
		return s.resolveExpr(&e.Else)
	}
}

// resolveCond resolves a condition that may contain let tests. Only the
// scrutinees and plain conjuncts are rewritten, so that no let test ends up
// inside a hoisted conditional.
func (s *Session) resolveCond(slot *syntax.Expr) error {
	switch e := (*slot).(type) {
	case *syntax.LetCond:
		return s.resolveExpr(&e.X)
	case *syntax.Binary:
		if e.Op == "&&" && hasLetCond(e) {
			if err := s.resolveCond(&e.X); err != nil {
				return err
			}
			return s.resolveCond(&e.Y)
		}
	}
	return s.resolveExpr(slot)
}

func hasLetCond(e syntax.Expr) bool {
	switch e := e.(type) {
	case *syntax.LetCond:
		return true
	case *syntax.Binary:
		return e.Op == "&&" && (hasLetCond(e.X) || hasLetCond(e.Y))
	}
	return false
}
