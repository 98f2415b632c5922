// Package syntax defines the typed syntax tree the rewriter operates on.
//
// The tree is a closed sum type: Expr, Stmt, Pat and Item are sealed
// interfaces and each variant is a pointer to a struct. Consumers dispatch
// with type switches. Every node carries the span it was read from so that
// diagnostics can point back into the source.
package syntax

import "github.com/frxstrem/cain/pkg/common"

// Spanned is embedded in every node.
type Spanned struct {
	Span common.Span
}

func (s Spanned) NodeSpan() common.Span { return s.Span }

// Node is implemented by every syntax node.
type Node interface {
	NodeSpan() common.Span
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type Pat interface {
	Node
	patNode()
}

type Item interface {
	Node
	itemNode()
}

// Block is an ordered statement sequence. Its value is the value of the last
// statement when that statement is an expression without a semicolon.
type Block struct {
	Spanned
	Stmts []Stmt
}

////////////////////////////////////////////////////////////////////////////////
/// Statements
////////////////////////////////////////////////////////////////////////////////

// ItemStmt is a declaration. Declarations are order independent.
type ItemStmt struct {
	Spanned
	Item Item
}

// LetStmt binds a pattern to the value of Init. Init may be nil.
type LetStmt struct {
	Spanned
	Pat  Pat
	Type string
	Init Expr
}

// ExprStmt evaluates X. With Semi set the value is discarded.
type ExprStmt struct {
	Spanned
	X    Expr
	Semi bool
}

func (*ItemStmt) stmtNode() {}
func (*LetStmt) stmtNode()  {}
func (*ExprStmt) stmtNode() {}

////////////////////////////////////////////////////////////////////////////////
/// Items
////////////////////////////////////////////////////////////////////////////////

type FnItem struct {
	Spanned
	Name   string
	Params []Pat
	Result string
	Body   *Block
}

// OpaqueItem is a declaration the engine never looks into (struct, enum,
// type, const, use ...). Text is its source rendering.
type OpaqueItem struct {
	Spanned
	Keyword string
	Name    string
	Text    string
}

func (*FnItem) itemNode()     {}
func (*OpaqueItem) itemNode() {}

////////////////////////////////////////////////////////////////////////////////
/// Expressions
////////////////////////////////////////////////////////////////////////////////

type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StrLit
	CharLit
	BoolLit
)

// Lit is a literal. Value holds the unquoted text.
type Lit struct {
	Spanned
	Kind  LitKind
	Value string
}

// Ident is a single-segment path expression. Attrs are outer attributes
// attached to the expression.
type Ident struct {
	Spanned
	Name  string
	Attrs []string
}

// Path is a multi-segment path expression such as Option::None.
type Path struct {
	Spanned
	Segments []string
}

type Binary struct {
	Spanned
	Op string
	X  Expr
	Y  Expr
}

// Unary covers prefix "-", "!" and "*", and the postfix "?" operator.
type Unary struct {
	Spanned
	Op string
	X  Expr
}

// Ref is a borrow, &X or &mut X.
type Ref struct {
	Spanned
	Mut bool
	X   Expr
}

type Call struct {
	Spanned
	Fun  Expr
	Args []Expr
}

type MethodCall struct {
	Spanned
	Recv Expr
	Name string
	Args []Expr
}

type Field struct {
	Spanned
	X    Expr
	Name string
}

type Index struct {
	Spanned
	X     Expr
	Index Expr
}

type Tuple struct {
	Spanned
	Elems []Expr
}

type Array struct {
	Spanned
	Elems []Expr
}

type Paren struct {
	Spanned
	X Expr
}

// Range is Lo..Hi or Lo..=Hi; either bound may be nil.
type Range struct {
	Spanned
	Lo        Expr
	Hi        Expr
	Inclusive bool
}

// Assign is plain or compound assignment; Op is "=", "+=", ...
type Assign struct {
	Spanned
	Op  string
	Lhs Expr
	Rhs Expr
}

type Cast struct {
	Spanned
	X    Expr
	Type string
}

// MacroCall is a macro invocation in expression position. Its arguments are
// token trees as far as the rewriter is concerned: they are never walked.
type MacroCall struct {
	Spanned
	Name string
	Args []Expr
}

type Break struct {
	Spanned
	Label string
	X     Expr
}

type Continue struct {
	Spanned
	Label string
}

type Return struct {
	Spanned
	X Expr
}

// Matches is matches!(X, Pat).
type Matches struct {
	Spanned
	X   Expr
	Pat Pat
}

// If is a conditional. Cond may be a *LetCond or a let-chain joined with &&.
// Else is nil, a *BlockExpr or an *If.
type If struct {
	Spanned
	Cond Expr
	Then *Block
	Else Expr
}

// LetCond is the `let Pat = X` test of a conditional binding.
type LetCond struct {
	Spanned
	Pat Pat
	X   Expr
}

// Match is a multi-way pattern match. Arms are tried in order.
type Match struct {
	Spanned
	X    Expr
	Arms []*Arm
}

type Arm struct {
	Spanned
	Pat   Pat
	Guard Expr
	Body  Expr
}

// BlockExpr is a block in expression position. Keyword is "" for a plain
// block, or one of "async", "async move", "try", "unsafe", "const".
type BlockExpr struct {
	Spanned
	Keyword string
	Label   string
	Block   *Block
}

type Closure struct {
	Spanned
	Move   bool
	Params []Pat
	Body   Expr
}

type Loop struct {
	Spanned
	Label string
	Body  *Block
}

type While struct {
	Spanned
	Label string
	Cond  Expr
	Body  *Block
}

type For struct {
	Spanned
	Label string
	Pat   Pat
	Iter  Expr
	Body  *Block
}

func (*Lit) exprNode()        {}
func (*Ident) exprNode()      {}
func (*Path) exprNode()       {}
func (*Binary) exprNode()     {}
func (*Unary) exprNode()      {}
func (*Ref) exprNode()        {}
func (*Call) exprNode()       {}
func (*MethodCall) exprNode() {}
func (*Field) exprNode()      {}
func (*Index) exprNode()      {}
func (*Tuple) exprNode()      {}
func (*Array) exprNode()      {}
func (*Paren) exprNode()      {}
func (*Range) exprNode()      {}
func (*Assign) exprNode()     {}
func (*Cast) exprNode()       {}
func (*MacroCall) exprNode()  {}
func (*Break) exprNode()      {}
func (*Continue) exprNode()   {}
func (*Return) exprNode()     {}
func (*Matches) exprNode()    {}
func (*If) exprNode()         {}
func (*LetCond) exprNode()    {}
func (*Match) exprNode()      {}
func (*BlockExpr) exprNode()  {}
func (*Closure) exprNode()    {}
func (*Loop) exprNode()       {}
func (*While) exprNode()      {}
func (*For) exprNode()        {}

////////////////////////////////////////////////////////////////////////////////
/// Patterns
////////////////////////////////////////////////////////////////////////////////

// IdentPat binds Name. ByRef selects `ref`; Mut is `mut x`, or `ref mut x`
// together with ByRef. Sub is the optional `@` sub-pattern.
type IdentPat struct {
	Spanned
	Name  string
	ByRef bool
	Mut   bool
	Sub   Pat
}

type WildPat struct {
	Spanned
}

// RestPat is `..` inside tuple, slice and tuple-struct patterns.
type RestPat struct {
	Spanned
}

type LitPat struct {
	Spanned
	Lit *Lit
	Neg bool
}

type PathPat struct {
	Spanned
	Segments []string
}

type RangePat struct {
	Spanned
	Lo        *Lit
	Hi        *Lit
	Inclusive bool
}

type TuplePat struct {
	Spanned
	Elems []Pat
}

type TupleStructPat struct {
	Spanned
	Path  []string
	Elems []Pat
}

type StructPat struct {
	Spanned
	Path   []string
	Fields []*FieldPat
	Rest   bool
}

type FieldPat struct {
	Spanned
	Name string
	Pat  Pat
}

type SlicePat struct {
	Spanned
	Elems []Pat
}

type RefPat struct {
	Spanned
	Mut bool
	Pat Pat
}

type OrPat struct {
	Spanned
	Cases []Pat
}

type TypedPat struct {
	Spanned
	Pat  Pat
	Type string
}

type BoxPat struct {
	Spanned
	Pat Pat
}

// MacroPat is a macro invocation in pattern position.
type MacroPat struct {
	Spanned
	Name string
	Text string
}

// VerbatimPat is a pattern the front door could not classify.
type VerbatimPat struct {
	Spanned
	Text string
}

func (*IdentPat) patNode()       {}
func (*WildPat) patNode()        {}
func (*RestPat) patNode()        {}
func (*LitPat) patNode()         {}
func (*PathPat) patNode()        {}
func (*RangePat) patNode()       {}
func (*TuplePat) patNode()       {}
func (*TupleStructPat) patNode() {}
func (*StructPat) patNode()      {}
func (*SlicePat) patNode()       {}
func (*RefPat) patNode()         {}
func (*OrPat) patNode()          {}
func (*TypedPat) patNode()       {}
func (*BoxPat) patNode()         {}
func (*MacroPat) patNode()       {}
func (*VerbatimPat) patNode()    {}
