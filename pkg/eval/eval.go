// Package eval is a small dynamic interpreter for syntax trees. It runs a
// block before and after rewriting so that the two runs can be compared:
// values are untyped, so branches of one conditional may produce values of
// different kinds.
package eval

import (
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
)

const DefaultMaxSteps = 1_000_000

// Interpreter evaluates blocks. It is not safe for concurrent use.
type Interpreter struct {
	// Out receives println! and print! output. Nil discards it.
	Out io.Writer
	// MaxSteps bounds the number of expressions one Run evaluates. Zero
	// means no bound.
	MaxSteps int
	hosts    map[string]Host
	steps    int
}

func NewInterpreter() *Interpreter {
	in := &Interpreter{MaxSteps: DefaultMaxSteps, hosts: make(map[string]Host)}
	in.defineBuiltins()
	return in
}

// Define makes fn callable under name, which may be a path such as
// "String::from". Variables of the program shadow it.
func (in *Interpreter) Define(name string, fn Host) {
	in.hosts[name] = fn
}

// Run evaluates b as a function body and returns its value.
func (in *Interpreter) Run(b *syntax.Block) (Value, error) {
	in.steps = 0
	v, err := in.evalBlock(b, newGlobalScope())
	switch sig := err.(type) {
	case nil:
		return v, nil
	case *returnSignal:
		return sig.value, nil
	case *breakSignal, *continueSignal:
		return nil, &Error{Message: sig.Error()}
	}
	return nil, err
}

func (in *Interpreter) tick(span common.Span) error {
	in.steps++
	if in.MaxSteps > 0 && in.steps > in.MaxSteps {
		return errorAt(span, "step limit of %d exceeded", in.MaxSteps)
	}
	return nil
}

func (in *Interpreter) evalBlock(b *syntax.Block, outer *Scope) (Value, error) {
	if err := in.tick(b.Span); err != nil {
		return nil, err
	}
	scope := outer.NewChildScope()
	for _, stmt := range b.Stmts {
		if item, ok := stmt.(*syntax.ItemStmt); ok {
			if fn, ok := item.Item.(*syntax.FnItem); ok {
				scope.define(fn.Name, &Func{Name: fn.Name, Params: fn.Params, Block: fn.Body, env: scope})
			}
		}
	}
	var result Value = Unit{}
	for i, stmt := range b.Stmts {
		switch stmt := stmt.(type) {
		case *syntax.ItemStmt:
			continue
		case *syntax.LetStmt:
			// Every binding opens a scope so that closures keep seeing the
			// bindings they were created with.
			scope = scope.NewChildScope()
			if stmt.Init == nil {
				if err := declare(stmt.Pat, scope); err != nil {
					return nil, err
				}
				continue
			}
			v, err := in.evalExpr(stmt.Init, scope.Parent)
			if err != nil {
				return nil, err
			}
			ok, err := in.matchPat(stmt.Pat, v, scope)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errorAt(stmt.Span, "pattern %s does not match %s", syntax.FormatPat(stmt.Pat), Debug(v))
			}
		case *syntax.ExprStmt:
			v, err := in.evalExpr(stmt.X, scope)
			if err != nil {
				return nil, err
			}
			if i == len(b.Stmts)-1 && !stmt.Semi {
				result = v
			}
		}
	}
	return result, nil
}

func declare(p syntax.Pat, scope *Scope) error {
	switch p := p.(type) {
	case *syntax.IdentPat:
		scope.define(p.Name, nil)
		return nil
	case *syntax.TypedPat:
		return declare(p.Pat, scope)
	case *syntax.WildPat:
		return nil
	}
	return errorAt(p.NodeSpan(), "cannot declare %s without a value", syntax.FormatPat(p))
}

func (in *Interpreter) evalAll(es []syntax.Expr, scope *Scope) ([]Value, error) {
	out := make([]Value, 0, len(es))
	for _, e := range es {
		v, err := in.evalExpr(e, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (in *Interpreter) evalExpr(e syntax.Expr, scope *Scope) (Value, error) {
	if err := in.tick(e.NodeSpan()); err != nil {
		return nil, err
	}
	switch e := e.(type) {
	case *syntax.Lit:
		return literal(e)
	case *syntax.Ident:
		return in.lookup(e.Name, e.Span, scope)
	case *syntax.Path:
		return in.lookupPath(e.Segments, e.Span)
	case *syntax.Paren:
		return in.evalExpr(e.X, scope)
	case *syntax.Tuple:
		elems, err := in.evalAll(e.Elems, scope)
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return Unit{}, nil
		}
		return Tuple(elems), nil
	case *syntax.Array:
		elems, err := in.evalAll(e.Elems, scope)
		if err != nil {
			return nil, err
		}
		return Vec(elems), nil
	case *syntax.Binary:
		return in.evalBinary(e, scope)
	case *syntax.LetCond:
		ok, err := in.evalCond(e, scope.NewChildScope())
		return Bool(ok), err
	case *syntax.Unary:
		return in.evalUnary(e, scope)
	case *syntax.Ref:
		p, err := in.evalPlace(e.X, scope)
		if err != nil {
			return nil, err
		}
		return Ref{place: p, Mut: e.Mut}, nil
	case *syntax.Call:
		f, err := in.evalExpr(e.Fun, scope)
		if err != nil {
			return nil, err
		}
		args, err := in.evalAll(e.Args, scope)
		if err != nil {
			return nil, err
		}
		return in.call(f, args, e.Span)
	case *syntax.MethodCall:
		return in.evalMethodCall(e, scope)
	case *syntax.Field:
		p, err := in.evalPlace(e, scope)
		if err != nil {
			return nil, err
		}
		return p.get()
	case *syntax.Index:
		return in.evalIndex(e, scope)
	case *syntax.Range:
		return in.evalRange(e, scope)
	case *syntax.Assign:
		return Unit{}, in.evalAssign(e, scope)
	case *syntax.Cast:
		v, err := in.evalExpr(e.X, scope)
		if err != nil {
			return nil, err
		}
		return cast(v, e.Type, e.Span)
	case *syntax.MacroCall:
		return in.evalMacro(e, scope)
	case *syntax.Matches:
		v, err := in.evalExpr(e.X, scope)
		if err != nil {
			return nil, err
		}
		ok, err := in.matchPat(e.Pat, v, scope.NewChildScope())
		return Bool(ok), err
	case *syntax.Break:
		var v Value = Unit{}
		if e.X != nil {
			var err error
			if v, err = in.evalExpr(e.X, scope); err != nil {
				return nil, err
			}
		}
		return nil, &breakSignal{label: e.Label, value: v}
	case *syntax.Continue:
		return nil, &continueSignal{label: e.Label}
	case *syntax.Return:
		var v Value = Unit{}
		if e.X != nil {
			var err error
			if v, err = in.evalExpr(e.X, scope); err != nil {
				return nil, err
			}
		}
		return nil, &returnSignal{value: v}
	case *syntax.If:
		s := scope.NewChildScope()
		ok, err := in.evalCond(e.Cond, s)
		if err != nil {
			return nil, err
		}
		if ok {
			return in.evalBlock(e.Then, s)
		}
		if e.Else == nil {
			return Unit{}, nil
		}
		return in.evalExpr(e.Else, scope)
	case *syntax.Match:
		return in.evalMatch(e, scope)
	case *syntax.BlockExpr:
		switch e.Keyword {
		case "", "unsafe", "const":
		default:
			return nil, errorAt(e.Span, "%s blocks are not supported", e.Keyword)
		}
		v, err := in.evalBlock(e.Block, scope)
		if brk, ok := err.(*breakSignal); ok && e.Label != "" && brk.label == e.Label {
			return brk.value, nil
		}
		return v, err
	case *syntax.Closure:
		return &Func{Params: e.Params, Body: e.Body, env: scope}, nil
	case *syntax.Loop:
		for {
			_, err := in.evalBlock(e.Body, scope)
			if stop, v, err := loopControl(err, e.Label); stop {
				return v, err
			}
		}
	case *syntax.While:
		for {
			s := scope.NewChildScope()
			ok, err := in.evalCond(e.Cond, s)
			if err != nil {
				return nil, err
			}
			if !ok {
				return Unit{}, nil
			}
			_, err = in.evalBlock(e.Body, s)
			if stop, _, err := loopControl(err, e.Label); stop {
				return Unit{}, err
			}
		}
	case *syntax.For:
		iterable, err := in.evalExpr(e.Iter, scope)
		if err != nil {
			return nil, err
		}
		elems, err := iterate(iterable)
		if err != nil {
			return nil, errorAt(e.Iter.NodeSpan(), "%v", err)
		}
		for _, elem := range elems {
			s := scope.NewChildScope()
			ok, err := in.matchPat(e.Pat, elem, s)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errorAt(e.Pat.NodeSpan(), "pattern %s does not match %s", syntax.FormatPat(e.Pat), Debug(elem))
			}
			_, err = in.evalBlock(e.Body, s)
			if stop, _, err := loopControl(err, e.Label); stop {
				return Unit{}, err
			}
		}
		return Unit{}, nil
	}
	return nil, errorAt(e.NodeSpan(), "cannot evaluate %T", e)
}

// loopControl decides what the error of one iteration means for the loop
// labelled label: stop with a value, stop with an error, or go on.
func loopControl(err error, label string) (bool, Value, error) {
	switch sig := err.(type) {
	case nil:
		return false, nil, nil
	case *breakSignal:
		if sig.label == "" || sig.label == label {
			return true, sig.value, nil
		}
	case *continueSignal:
		if sig.label == "" || sig.label == label {
			return false, nil, nil
		}
	}
	return true, nil, err
}

func literal(l *syntax.Lit) (Value, error) {
	switch l.Kind {
	case syntax.IntLit:
		n, err := strconv.ParseInt(l.Value, 0, 64)
		if err != nil {
			return nil, errorAt(l.Span, "bad integer literal %s", l.Value)
		}
		return Int(n), nil
	case syntax.FloatLit:
		f, err := strconv.ParseFloat(l.Value, 64)
		if err != nil {
			return nil, errorAt(l.Span, "bad float literal %s", l.Value)
		}
		return Float(f), nil
	case syntax.StrLit:
		return Str(l.Value), nil
	case syntax.CharLit:
		r, _ := utf8.DecodeRuneInString(l.Value)
		return Char(r), nil
	case syntax.BoolLit:
		return Bool(l.Value == "true"), nil
	}
	return nil, errorAt(l.Span, "unknown literal kind %d", l.Kind)
}

func (in *Interpreter) lookup(name string, span common.Span, scope *Scope) (Value, error) {
	if c, ok := scope.lookup(name); ok {
		v, err := c.get()
		if err != nil {
			return nil, errorAt(span, "%s: %v", name, err)
		}
		return v, nil
	}
	return in.lookupPath([]string{name}, span)
}

// lookupPath resolves names the program does not bind: host functions, and
// capitalised constructors, which evaluate to a variant without fields.
func (in *Interpreter) lookupPath(segments []string, span common.Span) (Value, error) {
	name := strings.Join(segments, "::")
	if fn, ok := in.hosts[name]; ok {
		return &Func{Name: name, host: fn}, nil
	}
	last := segments[len(segments)-1]
	if r, _ := utf8.DecodeRuneInString(last); unicode.IsUpper(r) {
		return Variant{Name: last}, nil
	}
	return nil, errorAt(span, "cannot find %s in this scope", name)
}

func (in *Interpreter) call(f Value, args []Value, span common.Span) (Value, error) {
	f, err := deref(f)
	if err != nil {
		return nil, errorAt(span, "%v", err)
	}
	switch f := f.(type) {
	case Variant:
		if len(f.Fields) == 0 {
			return Variant{Name: f.Name, Fields: args}, nil
		}
	case *Func:
		if f.host != nil {
			v, err := f.host(args)
			if err == nil {
				return v, nil
			}
			if p, ok := err.(*Panic); ok {
				return nil, p
			}
			return nil, errorAt(span, "%s: %v", f.Name, err)
		}
		if len(args) != len(f.Params) {
			return nil, errorAt(span, "%s takes %d arguments, got %d", f, len(f.Params), len(args))
		}
		scope := f.env.NewChildScope()
		for i, p := range f.Params {
			ok, err := in.matchPat(p, args[i], scope)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errorAt(p.NodeSpan(), "argument %s does not match %s", Debug(args[i]), syntax.FormatPat(p))
			}
		}
		var v Value
		if f.Block != nil {
			v, err = in.evalBlock(f.Block, scope)
		} else {
			v, err = in.evalExpr(f.Body, scope)
		}
		if ret, ok := err.(*returnSignal); ok {
			return ret.value, nil
		}
		return v, err
	}
	return nil, errorAt(span, "%s is not callable", Debug(f))
}

func (in *Interpreter) evalBinary(e *syntax.Binary, scope *Scope) (Value, error) {
	if e.Op == "&&" || e.Op == "||" {
		ok, err := in.evalCond(e, scope.NewChildScope())
		return Bool(ok), err
	}
	x, err := in.evalExpr(e.X, scope)
	if err != nil {
		return nil, err
	}
	y, err := in.evalExpr(e.Y, scope)
	if err != nil {
		return nil, err
	}
	v, err := binop(e.Op, x, y)
	if err != nil {
		return nil, at(e.Span, err)
	}
	return v, nil
}

// evalCond evaluates a condition. The bindings of its let tests go into
// scope.
func (in *Interpreter) evalCond(e syntax.Expr, scope *Scope) (bool, error) {
	switch e := e.(type) {
	case *syntax.LetCond:
		v, err := in.evalExpr(e.X, scope)
		if err != nil {
			return false, err
		}
		return in.matchPat(e.Pat, v, scope)
	case *syntax.Binary:
		switch e.Op {
		case "&&":
			ok, err := in.evalCond(e.X, scope)
			if err != nil || !ok {
				return false, err
			}
			return in.evalCond(e.Y, scope)
		case "||":
			ok, err := in.evalCond(e.X, scope.NewChildScope())
			if err != nil || ok {
				return ok, err
			}
			return in.evalCond(e.Y, scope.NewChildScope())
		}
	}
	v, err := in.evalExpr(e, scope)
	if err != nil {
		return false, err
	}
	v, err = deref(v)
	if err != nil {
		return false, at(e.NodeSpan(), err)
	}
	b, ok := v.(Bool)
	if !ok {
		return false, errorAt(e.NodeSpan(), "expected a bool, got %s", Debug(v))
	}
	return bool(b), nil
}

func (in *Interpreter) evalUnary(e *syntax.Unary, scope *Scope) (Value, error) {
	v, err := in.evalExpr(e.X, scope)
	if err != nil {
		return nil, err
	}
	if e.Op == "*" {
		r, ok := v.(Ref)
		if !ok {
			return v, nil
		}
		return r.place.get()
	}
	v, err = deref(v)
	if err != nil {
		return nil, at(e.Span, err)
	}
	switch e.Op {
	case "-":
		switch v := v.(type) {
		case Int:
			return -v, nil
		case Float:
			return -v, nil
		}
	case "!":
		switch v := v.(type) {
		case Bool:
			return !v, nil
		case Int:
			return ^v, nil
		}
	case "?":
		if variant, ok := v.(Variant); ok {
			switch variant.Name {
			case "Some", "Ok":
				if len(variant.Fields) == 1 {
					return variant.Fields[0], nil
				}
			case "None", "Err":
				return nil, &returnSignal{value: variant}
			}
		}
	}
	return nil, errorAt(e.Span, "cannot apply %s to %s", e.Op, Debug(v))
}

// evalPlace evaluates e as a location. Expressions that do not name one
// evaluate to a fresh temporary.
func (in *Interpreter) evalPlace(e syntax.Expr, scope *Scope) (place, error) {
	switch e := e.(type) {
	case *syntax.Ident:
		if c, ok := scope.lookup(e.Name); ok {
			return c, nil
		}
	case *syntax.Paren:
		return in.evalPlace(e.X, scope)
	case *syntax.Unary:
		if e.Op == "*" {
			v, err := in.evalExpr(e.X, scope)
			if err != nil {
				return nil, err
			}
			if r, ok := v.(Ref); ok {
				return r.place, nil
			}
			return &cell{v: v}, nil
		}
	case *syntax.Field:
		i, err := strconv.Atoi(e.Name)
		if err != nil {
			return nil, errorAt(e.Span, "named field %s is not supported", e.Name)
		}
		base, err := in.evalPlace(e.X, scope)
		if err != nil {
			return nil, err
		}
		return &elemPlace{base: base, i: i}, nil
	case *syntax.Index:
		base, err := in.evalPlace(e.X, scope)
		if err != nil {
			return nil, err
		}
		idx, err := in.evalExpr(e.Index, scope)
		if err != nil {
			return nil, err
		}
		idx, err = deref(idx)
		if err != nil {
			return nil, at(e.Span, err)
		}
		if i, ok := idx.(Int); ok {
			return &elemPlace{base: base, i: int(i)}, nil
		}
	}
	v, err := in.evalExpr(e, scope)
	if err != nil {
		return nil, err
	}
	return &cell{v: v}, nil
}

func (in *Interpreter) evalIndex(e *syntax.Index, scope *Scope) (Value, error) {
	x, err := in.evalExpr(e.X, scope)
	if err != nil {
		return nil, err
	}
	idx, err := in.evalExpr(e.Index, scope)
	if err != nil {
		return nil, err
	}
	if x, err = deref(x); err != nil {
		return nil, at(e.Span, err)
	}
	if idx, err = deref(idx); err != nil {
		return nil, at(e.Span, err)
	}
	switch idx := idx.(type) {
	case Int:
		elems, err := elementsOf(x)
		if err != nil {
			return nil, at(e.Span, err)
		}
		if idx < 0 || int(idx) >= len(elems) {
			return nil, &Panic{Message: "index out of bounds: the len is " + strconv.Itoa(len(elems)) + " but the index is " + idx.String(), Span: e.Span}
		}
		return elems[idx], nil
	case Range:
		switch x := x.(type) {
		case Vec:
			lo, hi, err := idx.bounds(len(x))
			if err != nil {
				return nil, &Panic{Message: err.Error(), Span: e.Span}
			}
			return append(Vec(nil), x[lo:hi]...), nil
		case Str:
			lo, hi, err := idx.bounds(len(x))
			if err != nil {
				return nil, &Panic{Message: err.Error(), Span: e.Span}
			}
			return x[lo:hi], nil
		}
	}
	return nil, errorAt(e.Span, "cannot index %s with %s", Debug(x), Debug(idx))
}

func (in *Interpreter) evalRange(e *syntax.Range, scope *Scope) (Value, error) {
	r := Range{Inclusive: e.Inclusive}
	bound := func(x syntax.Expr) (int64, error) {
		v, err := in.evalExpr(x, scope)
		if err != nil {
			return 0, err
		}
		if v, err = deref(v); err != nil {
			return 0, at(x.NodeSpan(), err)
		}
		n, ok := v.(Int)
		if !ok {
			return 0, errorAt(x.NodeSpan(), "range bound %s is not an integer", Debug(v))
		}
		return int64(n), nil
	}
	var err error
	if e.Lo != nil {
		r.HasLo = true
		if r.Lo, err = bound(e.Lo); err != nil {
			return nil, err
		}
	}
	if e.Hi != nil {
		r.HasHi = true
		if r.Hi, err = bound(e.Hi); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (in *Interpreter) evalAssign(e *syntax.Assign, scope *Scope) error {
	rhs, err := in.evalExpr(e.Rhs, scope)
	if err != nil {
		return err
	}
	if id, ok := e.Lhs.(*syntax.Ident); ok && id.Name == "_" {
		return nil
	}
	p, err := in.evalPlace(e.Lhs, scope)
	if err != nil {
		return err
	}
	if e.Op != "=" {
		cur, err := getThrough(p)
		if err != nil {
			return at(e.Span, err)
		}
		if rhs, err = binop(strings.TrimSuffix(e.Op, "="), cur, rhs); err != nil {
			return at(e.Span, err)
		}
	}
	if err := p.set(rhs); err != nil {
		return at(e.Span, err)
	}
	return nil
}

func (in *Interpreter) evalMatch(e *syntax.Match, scope *Scope) (Value, error) {
	v, err := in.evalExpr(e.X, scope)
	if err != nil {
		return nil, err
	}
	for _, arm := range e.Arms {
		s := scope.NewChildScope()
		ok, err := in.matchPat(arm.Pat, v, s)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if arm.Guard != nil {
			ok, err := in.evalCond(arm.Guard, s)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		return in.evalExpr(arm.Body, s)
	}
	return nil, errorAt(e.Span, "no arm matches %s", Debug(v))
}

// at attaches a span to an error that does not carry one yet.
func at(span common.Span, err error) error {
	switch err := err.(type) {
	case *Panic:
		if err.Span.IsZero() {
			err.Span = span
		}
		return err
	case *Error:
		if err.Span.IsZero() {
			err.Span = span
		}
		return err
	}
	return &Error{Message: err.Error(), Span: span}
}
