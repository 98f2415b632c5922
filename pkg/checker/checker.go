package checker

import (
	"fmt"
	"io"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
)

type Bug struct {
	Message string
	Span    common.Span
}

type Issue struct {
	Message string
	Span    common.Span
}

// Checker validates syntax trees before and after rewriting.
type Checker struct {
	Bugs   []Bug   // Accumulated internal errors (bugs).
	Issues []Issue // Accumulated validation errors.
}

func (c *Checker) ReportErrors(w io.Writer) {
	// First report any bugs and then move onto issues.
	if len(c.Bugs) > 0 {
		fmt.Fprintln(w, "Bug in rewriter detected; the tree is faulty:")
		for i, bug := range c.Bugs {
			fmt.Fprintf(w, "  [%d]. %s, at line %d, column %d\n", i+1, bug.Message, bug.Span.StartLine, bug.Span.StartColumn)
		}
	}
	if len(c.Issues) > 0 {
		fmt.Fprintln(w, "Errors found in the source code:")
		for i, issue := range c.Issues {
			fmt.Fprintf(w, "  [%d]. %s, at line %d, column %d\n", i+1, issue.Message, issue.Span.StartLine, issue.Span.StartColumn)
		}
	}
}

// NewChecker creates a new checker instance.
func NewChecker() *Checker {
	return &Checker{
		Bugs:   []Bug{},
		Issues: []Issue{},
	}
}

func (c *Checker) ok() bool {
	return len(c.Issues) == 0 && len(c.Bugs) == 0
}

////////////////////////////////////////////////////////////////////////////////
/// Input
////////////////////////////////////////////////////////////////////////////////

// CheckInput reports input the rewriter would reject or that a decoder built
// wrongly.
func (c *Checker) CheckInput(b *syntax.Block) bool {
	if b == nil {
		c.addBug("invalid block: nil", common.Span{})
		return false
	}
	syntax.Inspect(b, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Ident:
			c.validateName(n.Name, n.Span)
		case *syntax.IdentPat:
			c.validateName(n.Name, n.Span)
		case *syntax.FnItem:
			c.validateFn(n)
			// Parameters may be verbatim; the body is checked below.
			if n.Body != nil {
				c.CheckInput(n.Body)
			}
			return false
		case *syntax.Match:
			c.validateMatch(n)
		case *syntax.If:
			if n.Then == nil {
				c.addBug("if without a then block", n.Span)
			}
		case *syntax.LetStmt:
			if n.Pat == nil {
				c.addBug("let without a pattern", n.Span)
			}
		case *syntax.LetCond:
			c.validatePattern(n.Pat)
		}
		return true
	})
	return c.ok()
}

func (c *Checker) validateName(name string, span common.Span) {
	if _, ok := syntax.ParsePlaceholder(name); ok {
		c.addIssue(fmt.Sprintf("%s is reserved for the rewriter", name), span)
		return
	}
	if _, ok := syntax.ParseCapture(name); ok {
		return
	}
	if syntax.IsReserved(name) {
		c.addIssue(fmt.Sprintf("names starting with %s are reserved", syntax.ReservedPrefix), span)
	}
}

func (c *Checker) validateFn(fn *syntax.FnItem) {
	if fn.Name == "" {
		c.addBug("fn item without a name", fn.Span)
	}
	if fn.Body == nil {
		c.addBug(fmt.Sprintf("fn %s has no body", fn.Name), fn.Span)
	}
}

func (c *Checker) validateMatch(m *syntax.Match) {
	if len(m.Arms) == 0 {
		c.addIssue("match without arms", m.Span)
	}
	for _, arm := range m.Arms {
		if arm.Body == nil {
			c.addBug("match arm without a body", arm.Span)
		}
		c.validatePattern(arm.Pat)
	}
}

func (c *Checker) validatePattern(p syntax.Pat) {
	if p == nil {
		c.addBug("missing pattern", common.Span{})
		return
	}
	syntax.Inspect(p, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.MacroPat:
			c.addIssue(fmt.Sprintf("macros in patterns are not supported: %s!", n.Name), n.Span)
		case *syntax.VerbatimPat:
			c.addIssue(fmt.Sprintf("unsupported pattern %s", n.Text), n.Span)
		case *syntax.StructPat:
			if len(n.Path) == 0 {
				c.addBug("struct pattern without a path", n.Span)
			}
		}
		return true
	})
}

////////////////////////////////////////////////////////////////////////////////
/// Output
////////////////////////////////////////////////////////////////////////////////

// CheckOutput verifies the shape of a rewritten block: declarations come
// first, no placeholder is left, and within a scope conditionals only occur
// at the root of an expression statement or of a nested scope.
func (c *Checker) CheckOutput(b *syntax.Block) bool {
	if b == nil {
		c.addBug("invalid block: nil", common.Span{})
		return false
	}
	syntax.Inspect(b, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			if _, ok := syntax.ParsePlaceholder(id.Name); ok {
				c.addBug(fmt.Sprintf("placeholder %s left in the output", id.Name), id.Span)
			}
		}
		return true
	})
	c.validateBlock(b)
	return c.ok()
}

func (c *Checker) validateBlock(b *syntax.Block) {
	if b == nil {
		return
	}
	declarations := true
	for _, stmt := range b.Stmts {
		switch stmt := stmt.(type) {
		case *syntax.ItemStmt:
			if !declarations {
				c.addBug("declaration after a statement", stmt.Span)
			}
		case *syntax.LetStmt:
			declarations = false
			c.validateFlat(stmt.Init)
		case *syntax.ExprStmt:
			declarations = false
			c.validateRoot(stmt.X)
		}
	}
}

// validateRoot checks an expression that a rewrite pass sequences on its
// own. It may be a tree of conditionals whose tests are flat.
func (c *Checker) validateRoot(e syntax.Expr) {
	switch e := e.(type) {
	case *syntax.If:
		c.validateFlat(e.Cond)
		c.validateBlock(e.Then)
		c.validateElse(e)
	case *syntax.Match:
		c.validateFlat(e.X)
		for _, arm := range e.Arms {
			if arm.Guard != nil {
				c.validateRoot(arm.Guard)
			}
			c.validateRoot(arm.Body)
		}
	default:
		c.validateFlat(e)
	}
}

func (c *Checker) validateElse(e *syntax.If) {
	switch els := e.Else.(type) {
	case nil:
	case *syntax.If:
		c.validateCond(els.Cond)
		c.validateBlock(els.Then)
		c.validateElse(els)
	default:
		c.validateRoot(els)
	}
}

// validateCond checks a condition whose let tests and plain conjuncts are
// sequenced separately.
func (c *Checker) validateCond(e syntax.Expr) {
	switch e := e.(type) {
	case *syntax.LetCond:
		c.validateRoot(e.X)
		return
	case *syntax.Binary:
		if e.Op == "&&" && hasLetCond(e) {
			c.validateCond(e.X)
			c.validateCond(e.Y)
			return
		}
	}
	c.validateRoot(e)
}

// validateFlat checks that e holds no conditional outside nested scopes.
func (c *Checker) validateFlat(e syntax.Expr) {
	switch e := e.(type) {
	case nil:
		return
	case *syntax.If, *syntax.Match:
		c.addBug("conditional left inside an expression", e.NodeSpan())
		return
	case *syntax.BlockExpr:
		c.validateBlock(e.Block)
		return
	case *syntax.Closure:
		c.validateRoot(e.Body)
		return
	case *syntax.Loop:
		c.validateBlock(e.Body)
		return
	case *syntax.While:
		c.validateCond(e.Cond)
		c.validateBlock(e.Body)
		return
	case *syntax.For:
		c.validateFlat(e.Iter)
		c.validateBlock(e.Body)
		return
	case *syntax.Binary:
		if e.Op == "&&" || e.Op == "||" {
			c.validateFlat(e.X)
			c.validateCond(e.Y)
			return
		}
	case *syntax.MacroCall:
		return
	}
	for _, child := range syntax.ChildSlots(e) {
		c.validateFlat(*child)
	}
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

// We add a bug if the rewriter or a decoder is supposed to guarantee the
// condition but it is violated.
func (c *Checker) addBug(message string, span common.Span) {
	c.Bugs = append(c.Bugs, Bug{Message: message, Span: span})
}

// We add an issue if the user can write code that the parser accepts but
// that the rewriter cannot handle.
func (c *Checker) addIssue(message string, span common.Span) {
	c.Issues = append(c.Issues, Issue{Message: message, Span: span})
}
