package syntax

import (
	"fmt"
	"strings"

	"github.com/frxstrem/cain/pkg/common"
)

// DecodeError reports a wire tree that does not describe a valid syntax
// tree.
type DecodeError struct {
	Span    common.Span
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

func decodeErrorf(n *common.Node, format string, args ...any) error {
	return &DecodeError{Span: n.Span, Message: fmt.Sprintf(format, args...)}
}

// FromNode converts a generic wire tree rooted at a block node into a typed
// syntax tree.
func FromNode(n *common.Node) (*Block, error) {
	if n == nil {
		return nil, fmt.Errorf("missing block")
	}
	if n.Name != common.NameBlock {
		return nil, decodeErrorf(n, "expected %s, got %s", common.NameBlock, n.Name)
	}
	b := &Block{Spanned: Spanned{n.Span}}
	for _, child := range n.Children {
		s, err := decodeStmt(child)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func checkArity(n *common.Node, want int) error {
	if len(n.Children) != want {
		return decodeErrorf(n, "%s expects %d children, got %d", n.Name, want, len(n.Children))
	}
	return nil
}

func checkMinArity(n *common.Node, want int) error {
	if len(n.Children) < want {
		return decodeErrorf(n, "%s expects at least %d children, got %d", n.Name, want, len(n.Children))
	}
	return nil
}

func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "::")
}

func decodeStmt(n *common.Node) (Stmt, error) {
	if n == nil {
		return nil, fmt.Errorf("missing statement")
	}
	span := Spanned{n.Span}
	switch n.Name {
	case common.NameFn, common.NameItem:
		it, err := decodeItem(n)
		if err != nil {
			return nil, err
		}
		return &ItemStmt{Spanned: span, Item: it}, nil
	case common.NameLet:
		want := 1
		if n.Flag(common.OptionInit) {
			want = 2
		}
		if err := checkArity(n, want); err != nil {
			return nil, err
		}
		pat, err := decodePat(n.Children[0])
		if err != nil {
			return nil, err
		}
		let := &LetStmt{Spanned: span, Pat: pat, Type: n.Option(common.OptionType)}
		if want == 2 {
			if let.Init, err = decodeExpr(n.Children[1]); err != nil {
				return nil, err
			}
		}
		return let, nil
	case common.NameExprStmt:
		if err := checkArity(n, 1); err != nil {
			return nil, err
		}
		x, err := decodeExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Spanned: span, X: x, Semi: n.Flag(common.OptionSemi)}, nil
	}
	return nil, decodeErrorf(n, "unexpected statement node %q", n.Name)
}

func decodeItem(n *common.Node) (Item, error) {
	span := Spanned{n.Span}
	if n.Name == common.NameItem {
		return &OpaqueItem{
			Spanned: span,
			Keyword: n.Option(common.OptionKeyword),
			Name:    n.Option(common.OptionName),
			Text:    n.Option(common.OptionText),
		}, nil
	}
	if err := checkMinArity(n, 1); err != nil {
		return nil, err
	}
	last := len(n.Children) - 1
	params, err := decodePats(n.Children[:last])
	if err != nil {
		return nil, err
	}
	body, err := FromNode(n.Children[last])
	if err != nil {
		return nil, err
	}
	return &FnItem{
		Spanned: span,
		Name:    n.Option(common.OptionName),
		Params:  params,
		Result:  n.Option(common.OptionResult),
		Body:    body,
	}, nil
}

func decodeExprs(nodes []*common.Node) ([]Expr, error) {
	xs := make([]Expr, 0, len(nodes))
	for _, child := range nodes {
		x, err := decodeExpr(child)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}

func decodeLit(n *common.Node) (*Lit, error) {
	if n == nil || n.Name != common.NameLiteral {
		return nil, fmt.Errorf("expected literal")
	}
	kind, ok := parseLitKind(n.Option(common.OptionKind))
	if !ok {
		return nil, decodeErrorf(n, "unknown literal kind %q", n.Option(common.OptionKind))
	}
	return &Lit{Spanned: Spanned{n.Span}, Kind: kind, Value: n.Option(common.OptionValue)}, nil
}

// optionalChildren decodes the children flagged by lo/hi style options, in
// order.
func optionalChildren(n *common.Node, flags ...string) ([]*common.Node, error) {
	out := make([]*common.Node, len(flags))
	next := 0
	for i, flag := range flags {
		if !n.Flag(flag) {
			continue
		}
		if next >= len(n.Children) {
			return nil, decodeErrorf(n, "%s is missing its %s child", n.Name, flag)
		}
		out[i] = n.Children[next]
		next++
	}
	if next != len(n.Children) {
		return nil, decodeErrorf(n, "%s has %d unexpected children", n.Name, len(n.Children)-next)
	}
	return out, nil
}

func decodeOptionalExpr(n *common.Node) (Expr, error) {
	if n == nil {
		return nil, nil
	}
	return decodeExpr(n)
}

func decodeExpr(n *common.Node) (Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("missing expression")
	}
	span := Spanned{n.Span}
	kids := n.Children
	switch n.Name {
	case common.NameLiteral:
		return decodeLit(n)
	case common.NameIdentifier:
		var attrs []string
		if a := n.Option(common.OptionAttrs); a != "" {
			attrs = strings.Split(a, attrSeparator)
		}
		return &Ident{Spanned: span, Name: n.Option(common.OptionName), Attrs: attrs}, nil
	case common.NamePath:
		return &Path{Spanned: span, Segments: splitPath(n.Option(common.OptionPath))}, nil
	case common.NameBinary, common.NameAssign, common.NameIndex:
		if err := checkArity(n, 2); err != nil {
			return nil, err
		}
		x, err := decodeExpr(kids[0])
		if err != nil {
			return nil, err
		}
		y, err := decodeExpr(kids[1])
		if err != nil {
			return nil, err
		}
		switch n.Name {
		case common.NameBinary:
			return &Binary{Spanned: span, Op: n.Option(common.OptionOp), X: x, Y: y}, nil
		case common.NameAssign:
			op := n.Option(common.OptionOp)
			if op == "" {
				op = "="
			}
			return &Assign{Spanned: span, Op: op, Lhs: x, Rhs: y}, nil
		default:
			return &Index{Spanned: span, X: x, Index: y}, nil
		}
	case common.NameUnary, common.NameRef, common.NameField, common.NameParen, common.NameCast:
		if err := checkArity(n, 1); err != nil {
			return nil, err
		}
		x, err := decodeExpr(kids[0])
		if err != nil {
			return nil, err
		}
		switch n.Name {
		case common.NameUnary:
			return &Unary{Spanned: span, Op: n.Option(common.OptionOp), X: x}, nil
		case common.NameRef:
			return &Ref{Spanned: span, Mut: n.Flag(common.OptionMut), X: x}, nil
		case common.NameField:
			return &Field{Spanned: span, X: x, Name: n.Option(common.OptionName)}, nil
		case common.NameParen:
			return &Paren{Spanned: span, X: x}, nil
		default:
			return &Cast{Spanned: span, X: x, Type: n.Option(common.OptionType)}, nil
		}
	case common.NameCall, common.NameMethodCall:
		if err := checkMinArity(n, 1); err != nil {
			return nil, err
		}
		xs, err := decodeExprs(kids)
		if err != nil {
			return nil, err
		}
		if n.Name == common.NameCall {
			return &Call{Spanned: span, Fun: xs[0], Args: xs[1:]}, nil
		}
		return &MethodCall{Spanned: span, Recv: xs[0], Name: n.Option(common.OptionName), Args: xs[1:]}, nil
	case common.NameTuple, common.NameArray, common.NameMacro:
		xs, err := decodeExprs(kids)
		if err != nil {
			return nil, err
		}
		switch n.Name {
		case common.NameTuple:
			return &Tuple{Spanned: span, Elems: xs}, nil
		case common.NameArray:
			return &Array{Spanned: span, Elems: xs}, nil
		default:
			return &MacroCall{Spanned: span, Name: n.Option(common.OptionName), Args: xs}, nil
		}
	case common.NameRange:
		parts, err := optionalChildren(n, common.OptionLo, common.OptionHi)
		if err != nil {
			return nil, err
		}
		lo, err := decodeOptionalExpr(parts[0])
		if err != nil {
			return nil, err
		}
		hi, err := decodeOptionalExpr(parts[1])
		if err != nil {
			return nil, err
		}
		return &Range{Spanned: span, Lo: lo, Hi: hi, Inclusive: n.Flag(common.OptionInclusive)}, nil
	case common.NameBreak, common.NameReturn:
		if len(kids) > 1 {
			return nil, decodeErrorf(n, "%s expects at most 1 child", n.Name)
		}
		var x Expr
		if len(kids) == 1 {
			var err error
			if x, err = decodeExpr(kids[0]); err != nil {
				return nil, err
			}
		}
		if n.Name == common.NameBreak {
			return &Break{Spanned: span, Label: n.Option(common.OptionLabel), X: x}, nil
		}
		return &Return{Spanned: span, X: x}, nil
	case common.NameContinue:
		return &Continue{Spanned: span, Label: n.Option(common.OptionLabel)}, nil
	case common.NameMatches, common.NameLetCond:
		if err := checkArity(n, 2); err != nil {
			return nil, err
		}
		if n.Name == common.NameMatches {
			x, err := decodeExpr(kids[0])
			if err != nil {
				return nil, err
			}
			pat, err := decodePat(kids[1])
			if err != nil {
				return nil, err
			}
			return &Matches{Spanned: span, X: x, Pat: pat}, nil
		}
		pat, err := decodePat(kids[0])
		if err != nil {
			return nil, err
		}
		x, err := decodeExpr(kids[1])
		if err != nil {
			return nil, err
		}
		return &LetCond{Spanned: span, Pat: pat, X: x}, nil
	case common.NameIf:
		want := 2
		if n.Flag(common.OptionElse) {
			want = 3
		}
		if err := checkArity(n, want); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(kids[0])
		if err != nil {
			return nil, err
		}
		then, err := FromNode(kids[1])
		if err != nil {
			return nil, err
		}
		e := &If{Spanned: span, Cond: cond, Then: then}
		if want == 3 {
			if e.Else, err = decodeExpr(kids[2]); err != nil {
				return nil, err
			}
		}
		return e, nil
	case common.NameMatch:
		return decodeMatch(n)
	case common.NameBlockExpr:
		if err := checkArity(n, 1); err != nil {
			return nil, err
		}
		b, err := FromNode(kids[0])
		if err != nil {
			return nil, err
		}
		return &BlockExpr{Spanned: span, Keyword: n.Option(common.OptionKeyword), Label: n.Option(common.OptionLabel), Block: b}, nil
	case common.NameClosure:
		if err := checkMinArity(n, 1); err != nil {
			return nil, err
		}
		last := len(kids) - 1
		params, err := decodePats(kids[:last])
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(kids[last])
		if err != nil {
			return nil, err
		}
		return &Closure{Spanned: span, Move: n.Flag(common.OptionMove), Params: params, Body: body}, nil
	case common.NameLoop:
		if err := checkArity(n, 1); err != nil {
			return nil, err
		}
		body, err := FromNode(kids[0])
		if err != nil {
			return nil, err
		}
		return &Loop{Spanned: span, Label: n.Option(common.OptionLabel), Body: body}, nil
	case common.NameWhile:
		if err := checkArity(n, 2); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(kids[0])
		if err != nil {
			return nil, err
		}
		body, err := FromNode(kids[1])
		if err != nil {
			return nil, err
		}
		return &While{Spanned: span, Label: n.Option(common.OptionLabel), Cond: cond, Body: body}, nil
	case common.NameFor:
		if err := checkArity(n, 3); err != nil {
			return nil, err
		}
		pat, err := decodePat(kids[0])
		if err != nil {
			return nil, err
		}
		iter, err := decodeExpr(kids[1])
		if err != nil {
			return nil, err
		}
		body, err := FromNode(kids[2])
		if err != nil {
			return nil, err
		}
		return &For{Spanned: span, Label: n.Option(common.OptionLabel), Pat: pat, Iter: iter, Body: body}, nil
	}
	return nil, decodeErrorf(n, "unexpected expression node %q", n.Name)
}

func decodeMatch(n *common.Node) (Expr, error) {
	if err := checkMinArity(n, 1); err != nil {
		return nil, err
	}
	x, err := decodeExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	m := &Match{Spanned: Spanned{n.Span}, X: x}
	for _, a := range n.Children[1:] {
		if a == nil || a.Name != common.NameArm {
			return nil, decodeErrorf(n, "match expects arm children")
		}
		want := 2
		if a.Flag(common.OptionGuard) {
			want = 3
		}
		if err := checkArity(a, want); err != nil {
			return nil, err
		}
		pat, err := decodePat(a.Children[0])
		if err != nil {
			return nil, err
		}
		arm := &Arm{Spanned: Spanned{a.Span}, Pat: pat}
		if want == 3 {
			if arm.Guard, err = decodeExpr(a.Children[1]); err != nil {
				return nil, err
			}
		}
		if arm.Body, err = decodeExpr(a.Children[want-1]); err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, arm)
	}
	return m, nil
}

func decodePats(nodes []*common.Node) ([]Pat, error) {
	ps := make([]Pat, 0, len(nodes))
	for _, child := range nodes {
		p, err := decodePat(child)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func decodeSinglePat(n *common.Node) (Pat, error) {
	if err := checkArity(n, 1); err != nil {
		return nil, err
	}
	return decodePat(n.Children[0])
}

func decodePat(n *common.Node) (Pat, error) {
	if n == nil {
		return nil, fmt.Errorf("missing pattern")
	}
	span := Spanned{n.Span}
	switch n.Name {
	case common.NamePatIdent:
		p := &IdentPat{Spanned: span, Name: n.Option(common.OptionName), ByRef: n.Flag(common.OptionByRef), Mut: n.Flag(common.OptionMut)}
		if n.Flag(common.OptionSub) {
			sub, err := decodeSinglePat(n)
			if err != nil {
				return nil, err
			}
			p.Sub = sub
		}
		return p, nil
	case common.NamePatWild:
		return &WildPat{Spanned: span}, nil
	case common.NamePatRest:
		return &RestPat{Spanned: span}, nil
	case common.NamePatLiteral:
		if err := checkArity(n, 1); err != nil {
			return nil, err
		}
		lit, err := decodeLit(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &LitPat{Spanned: span, Lit: lit, Neg: n.Option(common.OptionOp) == "-"}, nil
	case common.NamePatPath:
		return &PathPat{Spanned: span, Segments: splitPath(n.Option(common.OptionPath))}, nil
	case common.NamePatRange:
		parts, err := optionalChildren(n, common.OptionLo, common.OptionHi)
		if err != nil {
			return nil, err
		}
		p := &RangePat{Spanned: span, Inclusive: n.Flag(common.OptionInclusive)}
		if parts[0] != nil {
			if p.Lo, err = decodeLit(parts[0]); err != nil {
				return nil, err
			}
		}
		if parts[1] != nil {
			if p.Hi, err = decodeLit(parts[1]); err != nil {
				return nil, err
			}
		}
		return p, nil
	case common.NamePatTuple, common.NamePatTupleStruct, common.NamePatSlice, common.NamePatOr:
		elems, err := decodePats(n.Children)
		if err != nil {
			return nil, err
		}
		switch n.Name {
		case common.NamePatTuple:
			return &TuplePat{Spanned: span, Elems: elems}, nil
		case common.NamePatTupleStruct:
			return &TupleStructPat{Spanned: span, Path: splitPath(n.Option(common.OptionPath)), Elems: elems}, nil
		case common.NamePatSlice:
			return &SlicePat{Spanned: span, Elems: elems}, nil
		default:
			return &OrPat{Spanned: span, Cases: elems}, nil
		}
	case common.NamePatStruct:
		p := &StructPat{Spanned: span, Path: splitPath(n.Option(common.OptionPath)), Rest: n.Flag(common.OptionRest)}
		for _, f := range n.Children {
			if f == nil || f.Name != common.NamePatField {
				return nil, decodeErrorf(n, "struct pattern expects field children")
			}
			sub, err := decodeSinglePat(f)
			if err != nil {
				return nil, err
			}
			p.Fields = append(p.Fields, &FieldPat{Spanned: Spanned{f.Span}, Name: f.Option(common.OptionName), Pat: sub})
		}
		return p, nil
	case common.NamePatRef, common.NamePatTyped, common.NamePatBox:
		sub, err := decodeSinglePat(n)
		if err != nil {
			return nil, err
		}
		switch n.Name {
		case common.NamePatRef:
			return &RefPat{Spanned: span, Mut: n.Flag(common.OptionMut), Pat: sub}, nil
		case common.NamePatTyped:
			return &TypedPat{Spanned: span, Pat: sub, Type: n.Option(common.OptionType)}, nil
		default:
			return &BoxPat{Spanned: span, Pat: sub}, nil
		}
	case common.NamePatMacro:
		return &MacroPat{Spanned: span, Name: n.Option(common.OptionName), Text: n.Option(common.OptionText)}, nil
	case common.NamePatVerbatim:
		return &VerbatimPat{Spanned: span, Text: n.Option(common.OptionText)}, nil
	}
	return nil, decodeErrorf(n, "unexpected pattern node %q", n.Name)
}
