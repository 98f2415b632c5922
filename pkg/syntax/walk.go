package syntax

import "fmt"

// blockSlots returns the expression slots of the statements of b. Item
// statements have none.
func blockSlots(b *Block) []*Expr {
	if b == nil {
		return nil
	}
	var slots []*Expr
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *LetStmt:
			if s.Init != nil {
				slots = append(slots, &s.Init)
			}
		case *ExprStmt:
			slots = append(slots, &s.X)
		}
	}
	return slots
}

func listSlots(xs []Expr) []*Expr {
	slots := make([]*Expr, 0, len(xs))
	for i := range xs {
		slots = append(slots, &xs[i])
	}
	return slots
}

func appendNonNil(slots []*Expr, candidates ...*Expr) []*Expr {
	for _, c := range candidates {
		if *c != nil {
			slots = append(slots, c)
		}
	}
	return slots
}

// ChildSlots returns the direct sub-expression slots of e in evaluation
// order. Statements of nested blocks contribute their expression slots; items
// and macro arguments contribute nothing.
func ChildSlots(e Expr) []*Expr {
	switch e := e.(type) {
	case nil, *Lit, *Ident, *Path, *Continue, *MacroCall:
		return nil
	case *Binary:
		return []*Expr{&e.X, &e.Y}
	case *Unary:
		return []*Expr{&e.X}
	case *Ref:
		return []*Expr{&e.X}
	case *Call:
		return append([]*Expr{&e.Fun}, listSlots(e.Args)...)
	case *MethodCall:
		return append([]*Expr{&e.Recv}, listSlots(e.Args)...)
	case *Field:
		return []*Expr{&e.X}
	case *Index:
		return []*Expr{&e.X, &e.Index}
	case *Tuple:
		return listSlots(e.Elems)
	case *Array:
		return listSlots(e.Elems)
	case *Paren:
		return []*Expr{&e.X}
	case *Range:
		return appendNonNil(nil, &e.Lo, &e.Hi)
	case *Assign:
		return []*Expr{&e.Lhs, &e.Rhs}
	case *Cast:
		return []*Expr{&e.X}
	case *Break:
		return appendNonNil(nil, &e.X)
	case *Return:
		return appendNonNil(nil, &e.X)
	case *Matches:
		return []*Expr{&e.X}
	case *If:
		slots := append([]*Expr{&e.Cond}, blockSlots(e.Then)...)
		return appendNonNil(slots, &e.Else)
	case *LetCond:
		return []*Expr{&e.X}
	case *Match:
		slots := []*Expr{&e.X}
		for _, arm := range e.Arms {
			slots = appendNonNil(slots, &arm.Guard, &arm.Body)
		}
		return slots
	case *BlockExpr:
		return blockSlots(e.Block)
	case *Closure:
		return []*Expr{&e.Body}
	case *Loop:
		return blockSlots(e.Body)
	case *While:
		return append([]*Expr{&e.Cond}, blockSlots(e.Body)...)
	case *For:
		return append([]*Expr{&e.Iter}, blockSlots(e.Body)...)
	default:
		panic(fmt.Sprintf("syntax: unknown expression %T", e))
	}
}

// WalkSlots calls fn for slot and, depth first, for every slot below it. When
// fn returns false the children of that slot are skipped. fn may replace the
// content of the slot it is given; the walk then descends into the new
// content.
func WalkSlots(slot *Expr, fn func(*Expr) bool) {
	if !fn(slot) {
		return
	}
	for _, child := range ChildSlots(*slot) {
		WalkSlots(child, fn)
	}
}

// WalkBlockSlots runs WalkSlots over every statement slot of b.
func WalkBlockSlots(b *Block, fn func(*Expr) bool) {
	for _, slot := range blockSlots(b) {
		WalkSlots(slot, fn)
	}
}

// Inspect visits every node below n, patterns, items and macro arguments
// included, in depth-first order. When fn returns false the children of that
// node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, fn)
		}
	case *ItemStmt:
		Inspect(n.Item, fn)
	case *FnItem:
		for _, p := range n.Params {
			Inspect(p, fn)
		}
		inspectBlock(n.Body, fn)
	case *LetStmt:
		Inspect(n.Pat, fn)
		inspectExpr(n.Init, fn)
	case *ExprStmt:
		inspectExpr(n.X, fn)
	case *MacroCall:
		for _, arg := range n.Args {
			inspectExpr(arg, fn)
		}
	case *Matches:
		inspectExpr(n.X, fn)
		Inspect(n.Pat, fn)
	case *LetCond:
		Inspect(n.Pat, fn)
		inspectExpr(n.X, fn)
	case *If:
		inspectExpr(n.Cond, fn)
		inspectBlock(n.Then, fn)
		inspectExpr(n.Else, fn)
	case *Match:
		inspectExpr(n.X, fn)
		for _, arm := range n.Arms {
			Inspect(arm.Pat, fn)
			inspectExpr(arm.Guard, fn)
			inspectExpr(arm.Body, fn)
		}
	case *BlockExpr:
		inspectBlock(n.Block, fn)
	case *Closure:
		for _, p := range n.Params {
			Inspect(p, fn)
		}
		inspectExpr(n.Body, fn)
	case *Loop:
		inspectBlock(n.Body, fn)
	case *While:
		inspectExpr(n.Cond, fn)
		inspectBlock(n.Body, fn)
	case *For:
		Inspect(n.Pat, fn)
		inspectExpr(n.Iter, fn)
		inspectBlock(n.Body, fn)
	case Expr:
		for _, slot := range ChildSlots(n) {
			inspectExpr(*slot, fn)
		}
	case Pat:
		for _, sub := range subPats(n) {
			Inspect(sub, fn)
		}
	}
}

func inspectExpr(e Expr, fn func(Node) bool) {
	if e != nil {
		Inspect(e, fn)
	}
}

func inspectBlock(b *Block, fn func(Node) bool) {
	if b != nil {
		Inspect(b, fn)
	}
}

// subPats returns the direct sub-patterns of p.
func subPats(p Pat) []Pat {
	switch p := p.(type) {
	case *IdentPat:
		if p.Sub != nil {
			return []Pat{p.Sub}
		}
	case *TuplePat:
		return p.Elems
	case *TupleStructPat:
		return p.Elems
	case *StructPat:
		subs := make([]Pat, 0, len(p.Fields))
		for _, f := range p.Fields {
			subs = append(subs, f.Pat)
		}
		return subs
	case *SlicePat:
		return p.Elems
	case *RefPat:
		return []Pat{p.Pat}
	case *OrPat:
		return p.Cases
	case *TypedPat:
		return []Pat{p.Pat}
	case *BoxPat:
		return []Pat{p.Pat}
	}
	return nil
}
