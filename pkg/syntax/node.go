package syntax

import (
	"strings"

	"github.com/frxstrem/cain/pkg/common"
)

var litKindNames = map[LitKind]string{
	IntLit:   "int",
	FloatLit: "float",
	StrLit:   "str",
	CharLit:  "char",
	BoolLit:  "bool",
}

func (k LitKind) String() string {
	if name, ok := litKindNames[k]; ok {
		return name
	}
	return "unknown"
}

func parseLitKind(name string) (LitKind, bool) {
	for k, n := range litKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

const attrSeparator = "\n"

// ToNode converts a block into the generic wire tree.
func ToNode(b *Block) *common.Node {
	n := common.NewNode(common.NameBlock)
	if b == nil {
		return n
	}
	n.Span = b.Span
	for _, s := range b.Stmts {
		n.Children = append(n.Children, stmtNode(s))
	}
	return n
}

func newNode(name string, span common.Span, children ...*common.Node) *common.Node {
	n := common.NewNode(name, children...)
	n.Span = span
	return n
}

func stmtNode(s Stmt) *common.Node {
	switch s := s.(type) {
	case *ItemStmt:
		return itemNode(s.Item)
	case *LetStmt:
		n := newNode(common.NameLet, s.Span, patNode(s.Pat))
		if s.Type != "" {
			n.Options[common.OptionType] = s.Type
		}
		if s.Init != nil {
			n.SetFlag(common.OptionInit, true)
			n.Children = append(n.Children, exprNode(s.Init))
		}
		return n
	case *ExprStmt:
		n := newNode(common.NameExprStmt, s.Span, exprNode(s.X))
		n.SetFlag(common.OptionSemi, s.Semi)
		return n
	}
	return nil
}

func itemNode(it Item) *common.Node {
	switch it := it.(type) {
	case *FnItem:
		n := newNode(common.NameFn, it.Span, patNodes(it.Params)...)
		n.Options[common.OptionName] = it.Name
		if it.Result != "" {
			n.Options[common.OptionResult] = it.Result
		}
		n.Children = append(n.Children, ToNode(it.Body))
		return n
	case *OpaqueItem:
		n := newNode(common.NameItem, it.Span)
		n.Options[common.OptionKeyword] = it.Keyword
		n.Options[common.OptionName] = it.Name
		n.Options[common.OptionText] = it.Text
		return n
	}
	return nil
}

func exprNodes(xs []Expr) []*common.Node {
	nodes := make([]*common.Node, 0, len(xs))
	for _, x := range xs {
		nodes = append(nodes, exprNode(x))
	}
	return nodes
}

func litNode(l *Lit) *common.Node {
	n := newNode(common.NameLiteral, l.Span)
	n.Options[common.OptionKind] = l.Kind.String()
	n.Options[common.OptionValue] = l.Value
	return n
}

func exprNode(e Expr) *common.Node {
	switch e := e.(type) {
	case *Lit:
		return litNode(e)
	case *Ident:
		n := newNode(common.NameIdentifier, e.Span)
		n.Options[common.OptionName] = e.Name
		if len(e.Attrs) > 0 {
			n.Options[common.OptionAttrs] = strings.Join(e.Attrs, attrSeparator)
		}
		return n
	case *Path:
		n := newNode(common.NamePath, e.Span)
		n.Options[common.OptionPath] = strings.Join(e.Segments, "::")
		return n
	case *Binary:
		n := newNode(common.NameBinary, e.Span, exprNode(e.X), exprNode(e.Y))
		n.Options[common.OptionOp] = e.Op
		return n
	case *Unary:
		n := newNode(common.NameUnary, e.Span, exprNode(e.X))
		n.Options[common.OptionOp] = e.Op
		return n
	case *Ref:
		n := newNode(common.NameRef, e.Span, exprNode(e.X))
		n.SetFlag(common.OptionMut, e.Mut)
		return n
	case *Call:
		return newNode(common.NameCall, e.Span, append([]*common.Node{exprNode(e.Fun)}, exprNodes(e.Args)...)...)
	case *MethodCall:
		n := newNode(common.NameMethodCall, e.Span, append([]*common.Node{exprNode(e.Recv)}, exprNodes(e.Args)...)...)
		n.Options[common.OptionName] = e.Name
		return n
	case *Field:
		n := newNode(common.NameField, e.Span, exprNode(e.X))
		n.Options[common.OptionName] = e.Name
		return n
	case *Index:
		return newNode(common.NameIndex, e.Span, exprNode(e.X), exprNode(e.Index))
	case *Tuple:
		return newNode(common.NameTuple, e.Span, exprNodes(e.Elems)...)
	case *Array:
		return newNode(common.NameArray, e.Span, exprNodes(e.Elems)...)
	case *Paren:
		return newNode(common.NameParen, e.Span, exprNode(e.X))
	case *Range:
		n := newNode(common.NameRange, e.Span)
		n.SetFlag(common.OptionInclusive, e.Inclusive)
		if e.Lo != nil {
			n.SetFlag(common.OptionLo, true)
			n.Children = append(n.Children, exprNode(e.Lo))
		}
		if e.Hi != nil {
			n.SetFlag(common.OptionHi, true)
			n.Children = append(n.Children, exprNode(e.Hi))
		}
		return n
	case *Assign:
		n := newNode(common.NameAssign, e.Span, exprNode(e.Lhs), exprNode(e.Rhs))
		n.Options[common.OptionOp] = e.Op
		return n
	case *Cast:
		n := newNode(common.NameCast, e.Span, exprNode(e.X))
		n.Options[common.OptionType] = e.Type
		return n
	case *MacroCall:
		n := newNode(common.NameMacro, e.Span, exprNodes(e.Args)...)
		n.Options[common.OptionName] = e.Name
		return n
	case *Break:
		n := newNode(common.NameBreak, e.Span)
		if e.Label != "" {
			n.Options[common.OptionLabel] = e.Label
		}
		if e.X != nil {
			n.Children = append(n.Children, exprNode(e.X))
		}
		return n
	case *Continue:
		n := newNode(common.NameContinue, e.Span)
		if e.Label != "" {
			n.Options[common.OptionLabel] = e.Label
		}
		return n
	case *Return:
		n := newNode(common.NameReturn, e.Span)
		if e.X != nil {
			n.Children = append(n.Children, exprNode(e.X))
		}
		return n
	case *Matches:
		return newNode(common.NameMatches, e.Span, exprNode(e.X), patNode(e.Pat))
	case *If:
		n := newNode(common.NameIf, e.Span, exprNode(e.Cond), ToNode(e.Then))
		if e.Else != nil {
			n.SetFlag(common.OptionElse, true)
			n.Children = append(n.Children, exprNode(e.Else))
		}
		return n
	case *LetCond:
		return newNode(common.NameLetCond, e.Span, patNode(e.Pat), exprNode(e.X))
	case *Match:
		n := newNode(common.NameMatch, e.Span, exprNode(e.X))
		for _, arm := range e.Arms {
			a := newNode(common.NameArm, arm.Span, patNode(arm.Pat))
			if arm.Guard != nil {
				a.SetFlag(common.OptionGuard, true)
				a.Children = append(a.Children, exprNode(arm.Guard))
			}
			a.Children = append(a.Children, exprNode(arm.Body))
			n.Children = append(n.Children, a)
		}
		return n
	case *BlockExpr:
		n := newNode(common.NameBlockExpr, e.Span, ToNode(e.Block))
		setLabel(n, e.Label)
		if e.Keyword != "" {
			n.Options[common.OptionKeyword] = e.Keyword
		}
		return n
	case *Closure:
		n := newNode(common.NameClosure, e.Span, patNodes(e.Params)...)
		n.SetFlag(common.OptionMove, e.Move)
		n.Children = append(n.Children, exprNode(e.Body))
		return n
	case *Loop:
		n := newNode(common.NameLoop, e.Span, ToNode(e.Body))
		setLabel(n, e.Label)
		return n
	case *While:
		n := newNode(common.NameWhile, e.Span, exprNode(e.Cond), ToNode(e.Body))
		setLabel(n, e.Label)
		return n
	case *For:
		n := newNode(common.NameFor, e.Span, patNode(e.Pat), exprNode(e.Iter), ToNode(e.Body))
		setLabel(n, e.Label)
		return n
	}
	return nil
}

func setLabel(n *common.Node, label string) {
	if label != "" {
		n.Options[common.OptionLabel] = label
	}
}

func patNodes(ps []Pat) []*common.Node {
	nodes := make([]*common.Node, 0, len(ps))
	for _, p := range ps {
		nodes = append(nodes, patNode(p))
	}
	return nodes
}

func patNode(p Pat) *common.Node {
	switch p := p.(type) {
	case *IdentPat:
		n := newNode(common.NamePatIdent, p.Span)
		n.Options[common.OptionName] = p.Name
		n.SetFlag(common.OptionByRef, p.ByRef)
		n.SetFlag(common.OptionMut, p.Mut)
		if p.Sub != nil {
			n.SetFlag(common.OptionSub, true)
			n.Children = append(n.Children, patNode(p.Sub))
		}
		return n
	case *WildPat:
		return newNode(common.NamePatWild, p.Span)
	case *RestPat:
		return newNode(common.NamePatRest, p.Span)
	case *LitPat:
		n := newNode(common.NamePatLiteral, p.Span, litNode(p.Lit))
		if p.Neg {
			n.Options[common.OptionOp] = "-"
		}
		return n
	case *PathPat:
		n := newNode(common.NamePatPath, p.Span)
		n.Options[common.OptionPath] = strings.Join(p.Segments, "::")
		return n
	case *RangePat:
		n := newNode(common.NamePatRange, p.Span)
		n.SetFlag(common.OptionInclusive, p.Inclusive)
		if p.Lo != nil {
			n.SetFlag(common.OptionLo, true)
			n.Children = append(n.Children, litNode(p.Lo))
		}
		if p.Hi != nil {
			n.SetFlag(common.OptionHi, true)
			n.Children = append(n.Children, litNode(p.Hi))
		}
		return n
	case *TuplePat:
		return newNode(common.NamePatTuple, p.Span, patNodes(p.Elems)...)
	case *TupleStructPat:
		n := newNode(common.NamePatTupleStruct, p.Span, patNodes(p.Elems)...)
		n.Options[common.OptionPath] = strings.Join(p.Path, "::")
		return n
	case *StructPat:
		n := newNode(common.NamePatStruct, p.Span)
		n.Options[common.OptionPath] = strings.Join(p.Path, "::")
		n.SetFlag(common.OptionRest, p.Rest)
		for _, f := range p.Fields {
			field := newNode(common.NamePatField, f.Span, patNode(f.Pat))
			field.Options[common.OptionName] = f.Name
			n.Children = append(n.Children, field)
		}
		return n
	case *SlicePat:
		return newNode(common.NamePatSlice, p.Span, patNodes(p.Elems)...)
	case *RefPat:
		n := newNode(common.NamePatRef, p.Span, patNode(p.Pat))
		n.SetFlag(common.OptionMut, p.Mut)
		return n
	case *OrPat:
		return newNode(common.NamePatOr, p.Span, patNodes(p.Cases)...)
	case *TypedPat:
		n := newNode(common.NamePatTyped, p.Span, patNode(p.Pat))
		n.Options[common.OptionType] = p.Type
		return n
	case *BoxPat:
		return newNode(common.NamePatBox, p.Span, patNode(p.Pat))
	case *MacroPat:
		n := newNode(common.NamePatMacro, p.Span)
		n.Options[common.OptionName] = p.Name
		n.Options[common.OptionText] = p.Text
		return n
	case *VerbatimPat:
		n := newNode(common.NamePatVerbatim, p.Span)
		n.Options[common.OptionText] = p.Text
		return n
	}
	return nil
}
