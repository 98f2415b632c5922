package syntax

import "fmt"

// CloneBlock returns a deep copy of b. Copies never share mutable state with
// the original.
func CloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	return &Block{Spanned: b.Spanned, Stmts: cloneStmts(b.Stmts)}
}

func cloneStmts(stmts []Stmt) []Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = CloneStmt(s)
	}
	return out
}

func CloneStmt(s Stmt) Stmt {
	switch s := s.(type) {
	case nil:
		return nil
	case *ItemStmt:
		return &ItemStmt{Spanned: s.Spanned, Item: cloneItem(s.Item)}
	case *LetStmt:
		return &LetStmt{Spanned: s.Spanned, Pat: ClonePat(s.Pat), Type: s.Type, Init: CloneExpr(s.Init)}
	case *ExprStmt:
		return &ExprStmt{Spanned: s.Spanned, X: CloneExpr(s.X), Semi: s.Semi}
	default:
		panic(fmt.Sprintf("syntax: unknown statement %T", s))
	}
}

func cloneItem(it Item) Item {
	switch it := it.(type) {
	case nil:
		return nil
	case *FnItem:
		return &FnItem{Spanned: it.Spanned, Name: it.Name, Params: clonePats(it.Params), Result: it.Result, Body: CloneBlock(it.Body)}
	case *OpaqueItem:
		c := *it
		return &c
	default:
		panic(fmt.Sprintf("syntax: unknown item %T", it))
	}
}

func cloneExprs(xs []Expr) []Expr {
	if xs == nil {
		return nil
	}
	out := make([]Expr, len(xs))
	for i, x := range xs {
		out[i] = CloneExpr(x)
	}
	return out
}

func cloneStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss...)
}

func CloneExpr(e Expr) Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *Lit:
		c := *e
		return &c
	case *Ident:
		return &Ident{Spanned: e.Spanned, Name: e.Name, Attrs: cloneStrings(e.Attrs)}
	case *Path:
		return &Path{Spanned: e.Spanned, Segments: cloneStrings(e.Segments)}
	case *Binary:
		return &Binary{Spanned: e.Spanned, Op: e.Op, X: CloneExpr(e.X), Y: CloneExpr(e.Y)}
	case *Unary:
		return &Unary{Spanned: e.Spanned, Op: e.Op, X: CloneExpr(e.X)}
	case *Ref:
		return &Ref{Spanned: e.Spanned, Mut: e.Mut, X: CloneExpr(e.X)}
	case *Call:
		return &Call{Spanned: e.Spanned, Fun: CloneExpr(e.Fun), Args: cloneExprs(e.Args)}
	case *MethodCall:
		return &MethodCall{Spanned: e.Spanned, Recv: CloneExpr(e.Recv), Name: e.Name, Args: cloneExprs(e.Args)}
	case *Field:
		return &Field{Spanned: e.Spanned, X: CloneExpr(e.X), Name: e.Name}
	case *Index:
		return &Index{Spanned: e.Spanned, X: CloneExpr(e.X), Index: CloneExpr(e.Index)}
	case *Tuple:
		return &Tuple{Spanned: e.Spanned, Elems: cloneExprs(e.Elems)}
	case *Array:
		return &Array{Spanned: e.Spanned, Elems: cloneExprs(e.Elems)}
	case *Paren:
		return &Paren{Spanned: e.Spanned, X: CloneExpr(e.X)}
	case *Range:
		return &Range{Spanned: e.Spanned, Lo: CloneExpr(e.Lo), Hi: CloneExpr(e.Hi), Inclusive: e.Inclusive}
	case *Assign:
		return &Assign{Spanned: e.Spanned, Op: e.Op, Lhs: CloneExpr(e.Lhs), Rhs: CloneExpr(e.Rhs)}
	case *Cast:
		return &Cast{Spanned: e.Spanned, X: CloneExpr(e.X), Type: e.Type}
	case *MacroCall:
		return &MacroCall{Spanned: e.Spanned, Name: e.Name, Args: cloneExprs(e.Args)}
	case *Break:
		return &Break{Spanned: e.Spanned, Label: e.Label, X: CloneExpr(e.X)}
	case *Continue:
		c := *e
		return &c
	case *Return:
		return &Return{Spanned: e.Spanned, X: CloneExpr(e.X)}
	case *Matches:
		return &Matches{Spanned: e.Spanned, X: CloneExpr(e.X), Pat: ClonePat(e.Pat)}
	case *If:
		return &If{Spanned: e.Spanned, Cond: CloneExpr(e.Cond), Then: CloneBlock(e.Then), Else: CloneExpr(e.Else)}
	case *LetCond:
		return &LetCond{Spanned: e.Spanned, Pat: ClonePat(e.Pat), X: CloneExpr(e.X)}
	case *Match:
		arms := make([]*Arm, len(e.Arms))
		for i, arm := range e.Arms {
			arms[i] = CloneArm(arm)
		}
		return &Match{Spanned: e.Spanned, X: CloneExpr(e.X), Arms: arms}
	case *BlockExpr:
		return &BlockExpr{Spanned: e.Spanned, Keyword: e.Keyword, Label: e.Label, Block: CloneBlock(e.Block)}
	case *Closure:
		return &Closure{Spanned: e.Spanned, Move: e.Move, Params: clonePats(e.Params), Body: CloneExpr(e.Body)}
	case *Loop:
		return &Loop{Spanned: e.Spanned, Label: e.Label, Body: CloneBlock(e.Body)}
	case *While:
		return &While{Spanned: e.Spanned, Label: e.Label, Cond: CloneExpr(e.Cond), Body: CloneBlock(e.Body)}
	case *For:
		return &For{Spanned: e.Spanned, Label: e.Label, Pat: ClonePat(e.Pat), Iter: CloneExpr(e.Iter), Body: CloneBlock(e.Body)}
	default:
		panic(fmt.Sprintf("syntax: unknown expression %T", e))
	}
}

func CloneArm(a *Arm) *Arm {
	if a == nil {
		return nil
	}
	return &Arm{Spanned: a.Spanned, Pat: ClonePat(a.Pat), Guard: CloneExpr(a.Guard), Body: CloneExpr(a.Body)}
}

func clonePats(ps []Pat) []Pat {
	if ps == nil {
		return nil
	}
	out := make([]Pat, len(ps))
	for i, p := range ps {
		out[i] = ClonePat(p)
	}
	return out
}

func cloneLit(l *Lit) *Lit {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func ClonePat(p Pat) Pat {
	switch p := p.(type) {
	case nil:
		return nil
	case *IdentPat:
		return &IdentPat{Spanned: p.Spanned, Name: p.Name, ByRef: p.ByRef, Mut: p.Mut, Sub: ClonePat(p.Sub)}
	case *WildPat:
		return &WildPat{Spanned: p.Spanned}
	case *RestPat:
		return &RestPat{Spanned: p.Spanned}
	case *LitPat:
		return &LitPat{Spanned: p.Spanned, Lit: cloneLit(p.Lit), Neg: p.Neg}
	case *PathPat:
		return &PathPat{Spanned: p.Spanned, Segments: cloneStrings(p.Segments)}
	case *RangePat:
		return &RangePat{Spanned: p.Spanned, Lo: cloneLit(p.Lo), Hi: cloneLit(p.Hi), Inclusive: p.Inclusive}
	case *TuplePat:
		return &TuplePat{Spanned: p.Spanned, Elems: clonePats(p.Elems)}
	case *TupleStructPat:
		return &TupleStructPat{Spanned: p.Spanned, Path: cloneStrings(p.Path), Elems: clonePats(p.Elems)}
	case *StructPat:
		fields := make([]*FieldPat, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = &FieldPat{Spanned: f.Spanned, Name: f.Name, Pat: ClonePat(f.Pat)}
		}
		return &StructPat{Spanned: p.Spanned, Path: cloneStrings(p.Path), Fields: fields, Rest: p.Rest}
	case *SlicePat:
		return &SlicePat{Spanned: p.Spanned, Elems: clonePats(p.Elems)}
	case *RefPat:
		return &RefPat{Spanned: p.Spanned, Mut: p.Mut, Pat: ClonePat(p.Pat)}
	case *OrPat:
		return &OrPat{Spanned: p.Spanned, Cases: clonePats(p.Cases)}
	case *TypedPat:
		return &TypedPat{Spanned: p.Spanned, Pat: ClonePat(p.Pat), Type: p.Type}
	case *BoxPat:
		return &BoxPat{Spanned: p.Spanned, Pat: ClonePat(p.Pat)}
	case *MacroPat:
		c := *p
		return &c
	case *VerbatimPat:
		c := *p
		return &c
	default:
		panic(fmt.Sprintf("syntax: unknown pattern %T", p))
	}
}
