package eval

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
)

func (in *Interpreter) defineBuiltins() {
	in.Define("String::from", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected one argument")
		}
		return Str(args[0].String()), nil
	})
	in.Define("String::new", func([]Value) (Value, error) { return Str(""), nil })
	in.Define("Vec::new", func([]Value) (Value, error) { return Vec{}, nil })
	in.Define("Box::new", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected one argument")
		}
		return args[0], nil
	})
	in.Define("drop", func([]Value) (Value, error) { return Unit{}, nil })
}

////////////////////////////////////////////////////////////////////////////////
/// Operators
////////////////////////////////////////////////////////////////////////////////

func binop(op string, x, y Value) (Value, error) {
	x, err := deref(x)
	if err != nil {
		return nil, err
	}
	y, err = deref(y)
	if err != nil {
		return nil, err
	}
	switch op {
	case "==":
		return Bool(Equal(x, y)), nil
	case "!=":
		return Bool(!Equal(x, y)), nil
	case "<", "<=", ">", ">=":
		c, err := compare(x, y)
		if err != nil {
			return nil, err
		}
		switch op {
		case "<":
			return Bool(c < 0), nil
		case "<=":
			return Bool(c <= 0), nil
		case ">":
			return Bool(c > 0), nil
		}
		return Bool(c >= 0), nil
	}
	switch x := x.(type) {
	case Int:
		switch y := y.(type) {
		case Int:
			return intOp(op, x, y)
		case Float:
			return floatOp(op, Float(x), y)
		}
	case Float:
		switch y := y.(type) {
		case Float:
			return floatOp(op, x, y)
		case Int:
			return floatOp(op, x, Float(y))
		}
	case Str:
		if op == "+" {
			switch y := y.(type) {
			case Str:
				return x + y, nil
			case Char:
				return x + Str(y.String()), nil
			}
		}
	case Bool:
		if y, ok := y.(Bool); ok {
			switch op {
			case "&":
				return x && y, nil
			case "|":
				return x || y, nil
			case "^":
				return Bool(x != y), nil
			}
		}
	}
	return nil, fmt.Errorf("cannot apply %s to %s and %s", op, Debug(x), Debug(y))
}

func intOp(op string, x, y Int) (Value, error) {
	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/", "%":
		if y == 0 {
			if op == "/" {
				return nil, &Panic{Message: "attempt to divide by zero"}
			}
			return nil, &Panic{Message: "attempt to calculate the remainder with a divisor of zero"}
		}
		if op == "/" {
			return x / y, nil
		}
		return x % y, nil
	case "&":
		return x & y, nil
	case "|":
		return x | y, nil
	case "^":
		return x ^ y, nil
	case "<<":
		return x << uint64(y), nil
	case ">>":
		return x >> uint64(y), nil
	}
	return nil, fmt.Errorf("cannot apply %s to integers", op)
}

func floatOp(op string, x, y Float) (Value, error) {
	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		return x / y, nil
	case "%":
		return Float(math.Mod(float64(x), float64(y))), nil
	}
	return nil, fmt.Errorf("cannot apply %s to floats", op)
}

// compare orders two values of the same kind.
func compare(x, y Value) (int, error) {
	x, err := deref(x)
	if err != nil {
		return 0, err
	}
	y, err = deref(y)
	if err != nil {
		return 0, err
	}
	switch x := x.(type) {
	case Int:
		switch y := y.(type) {
		case Int:
			return cmpOrdered(x, y), nil
		case Float:
			return cmpOrdered(Float(x), y), nil
		}
	case Float:
		switch y := y.(type) {
		case Float:
			return cmpOrdered(x, y), nil
		case Int:
			return cmpOrdered(x, Float(y)), nil
		}
	case Str:
		if y, ok := y.(Str); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case Char:
		if y, ok := y.(Char); ok {
			return cmpOrdered(x, y), nil
		}
	case Bool:
		if y, ok := y.(Bool); ok {
			return cmpOrdered(boolInt(x), boolInt(y)), nil
		}
	case Tuple:
		if y, ok := y.(Tuple); ok {
			return compareAll(x, y)
		}
	case Vec:
		if y, ok := y.(Vec); ok {
			return compareAll(x, y)
		}
	}
	return 0, fmt.Errorf("cannot compare %s with %s", Debug(x), Debug(y))
}

func cmpOrdered[T Int | Float | Char](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func boolInt(b Bool) Int {
	if b {
		return 1
	}
	return 0
}

func compareAll(x, y []Value) (int, error) {
	for i := 0; i < len(x) && i < len(y); i++ {
		c, err := compare(x[i], y[i])
		if err != nil || c != 0 {
			return c, err
		}
	}
	return cmpOrdered(Int(len(x)), Int(len(y))), nil
}

var integerTypes = []string{"i8", "i16", "i32", "i64", "i128", "isize", "u8", "u16", "u32", "u64", "u128", "usize"}

func cast(v Value, typ string, span common.Span) (Value, error) {
	v, err := deref(v)
	if err != nil {
		return nil, at(span, err)
	}
	switch {
	case typ == "f32" || typ == "f64":
		switch v := v.(type) {
		case Int:
			return Float(v), nil
		case Float:
			return v, nil
		}
	case typ == "char":
		switch v := v.(type) {
		case Int:
			return Char(rune(v)), nil
		case Char:
			return v, nil
		}
	case slices.Contains(integerTypes, typ):
		switch v := v.(type) {
		case Int:
			return v, nil
		case Float:
			return Int(math.Trunc(float64(v))), nil
		case Char:
			return Int(v), nil
		case Bool:
			return boolInt(v), nil
		}
	default:
		return v, nil
	}
	return nil, errorAt(span, "cannot cast %s as %s", Debug(v), typ)
}

// iterate lists the elements a for loop or an iterator method visits.
func iterate(v Value) ([]Value, error) {
	v, err := deref(v)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case Vec:
		return append([]Value(nil), v...), nil
	case Range:
		if !v.HasLo || !v.HasHi {
			return nil, fmt.Errorf("cannot iterate over the unbounded range %s", Debug(v))
		}
		hi := v.Hi
		if v.Inclusive {
			hi++
		}
		var out []Value
		for i := v.Lo; i < hi; i++ {
			out = append(out, Int(i))
		}
		return out, nil
	case Variant:
		switch v.Name {
		case "Some", "Ok":
			return append([]Value(nil), v.Fields...), nil
		case "None", "Err":
			return nil, nil
		}
	case Str:
		var out []Value
		for _, r := range string(v) {
			out = append(out, Char(r))
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot iterate over %s", Debug(v))
}

////////////////////////////////////////////////////////////////////////////////
/// Methods
////////////////////////////////////////////////////////////////////////////////

func (in *Interpreter) evalMethodCall(e *syntax.MethodCall, scope *Scope) (Value, error) {
	recv, err := in.evalPlace(e.Recv, scope)
	if err != nil {
		return nil, err
	}
	args, err := in.evalAll(e.Args, scope)
	if err != nil {
		return nil, err
	}
	name, generics, _ := strings.Cut(e.Name, "::")
	v, err := in.method(name, generics, recv, args, e.Span)
	if err != nil {
		return nil, at(e.Span, err)
	}
	return v, nil
}

func wantArgs(name string, args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s takes %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// method runs a builtin method. Methods that modify their receiver write the
// new value back to the place it came from.
func (in *Interpreter) method(name, generics string, recv place, args []Value, span common.Span) (Value, error) {
	v, err := getThrough(recv)
	if err != nil {
		return nil, err
	}
	switch name {
	case "push":
		vec, ok := v.(Vec)
		if !ok {
			break
		}
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		return Unit{}, baseTarget(recv).set(append(slices.Clone(vec), args[0]))
	case "pop":
		vec, ok := v.(Vec)
		if !ok {
			break
		}
		if len(vec) == 0 {
			return None, nil
		}
		last := vec[len(vec)-1]
		return Some(last), baseTarget(recv).set(slices.Clone(vec[:len(vec)-1]))
	case "clear":
		if _, ok := v.(Vec); ok {
			return Unit{}, baseTarget(recv).set(Vec{})
		}
	case "take":
		if variant, ok := v.(Variant); ok {
			return variant, baseTarget(recv).set(None)
		}
	case "as_mut", "as_ref":
		variant, ok := v.(Variant)
		if !ok {
			break
		}
		if len(variant.Fields) != 1 {
			return variant, nil
		}
		field := Ref{place: &elemPlace{base: baseTarget(recv), i: 0}, Mut: name == "as_mut"}
		return Variant{Name: variant.Name, Fields: []Value{field}}, nil
	}
	return in.pureMethod(name, generics, v, args, span)
}

func (in *Interpreter) pureMethod(name, generics string, v Value, args []Value, span common.Span) (Value, error) {
	call := func(f Value, args ...Value) (Value, error) {
		return in.call(f, args, span)
	}
	switch name {
	case "to_string":
		return Str(v.String()), nil
	case "to_owned", "into", "as_str", "clone", "borrow", "as_slice", "to_vec":
		return v, nil
	case "copied", "cloned":
		switch v := v.(type) {
		case Variant:
			return mapValues(v.Fields, deref, func(fields []Value) Value { return Variant{Name: v.Name, Fields: fields} })
		case Vec:
			return mapValues(v, deref, func(elems []Value) Value { return Vec(elems) })
		}
		return v, nil
	case "len":
		switch v := v.(type) {
		case Vec:
			return Int(len(v)), nil
		case Str:
			return Int(len(v)), nil
		}
	case "is_empty":
		switch v := v.(type) {
		case Vec:
			return Bool(len(v) == 0), nil
		case Str:
			return Bool(len(v) == 0), nil
		}
	case "iter", "into_iter", "iter_mut", "chars", "rev", "enumerate":
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		switch name {
		case "rev":
			slices.Reverse(elems)
		case "enumerate":
			for i, e := range elems {
				elems[i] = Tuple{Int(i), e}
			}
		}
		return Vec(elems), nil
	case "collect":
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		if strings.Contains(generics, "String") {
			var sb strings.Builder
			for _, e := range elems {
				sb.WriteString(e.String())
			}
			return Str(sb.String()), nil
		}
		return Vec(elems), nil
	case "map":
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		if variant, ok := v.(Variant); ok {
			if variant.Name != "Some" && variant.Name != "Ok" {
				return variant, nil
			}
			x, err := call(args[0], variant.Fields...)
			if err != nil {
				return nil, err
			}
			return Variant{Name: variant.Name, Fields: []Value{x}}, nil
		}
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		return mapValues(elems, func(e Value) (Value, error) { return call(args[0], e) }, func(out []Value) Value { return Vec(out) })
	case "and_then":
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		if variant, ok := v.(Variant); ok {
			if variant.Name != "Some" && variant.Name != "Ok" {
				return variant, nil
			}
			return call(args[0], variant.Fields...)
		}
	case "filter", "any", "all", "find", "position", "for_each", "count":
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		var kept []Value
		for i, e := range elems {
			if name == "count" {
				kept = append(kept, e)
				continue
			}
			if err := wantArgs(name, args, 1); err != nil {
				return nil, err
			}
			r, err := call(args[0], e)
			if err != nil {
				return nil, err
			}
			if name == "for_each" {
				continue
			}
			ok, isBool := r.(Bool)
			if !isBool {
				return nil, fmt.Errorf("%s expects a predicate, got %s", name, Debug(r))
			}
			switch {
			case name == "any" && bool(ok):
				return Bool(true), nil
			case name == "all" && !bool(ok):
				return Bool(false), nil
			case name == "find" && bool(ok):
				return Some(e), nil
			case name == "position" && bool(ok):
				return Some(Int(i)), nil
			case name == "filter" && bool(ok):
				kept = append(kept, e)
			}
		}
		switch name {
		case "any":
			return Bool(false), nil
		case "all":
			return Bool(true), nil
		case "find", "position":
			return None, nil
		case "for_each":
			return Unit{}, nil
		case "count":
			return Int(len(kept)), nil
		}
		return Vec(kept), nil
	case "fold":
		if err := wantArgs(name, args, 2); err != nil {
			return nil, err
		}
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		acc := args[0]
		for _, e := range elems {
			if acc, err = call(args[1], acc, e); err != nil {
				return nil, err
			}
		}
		return acc, nil
	case "sum", "product":
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		var acc Value = Int(0)
		op := "+"
		if name == "product" {
			acc, op = Int(1), "*"
		}
		for _, e := range elems {
			if acc, err = binop(op, acc, e); err != nil {
				return nil, err
			}
		}
		return acc, nil
	case "first", "last", "get":
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		i := 0
		switch name {
		case "last":
			i = len(elems) - 1
		case "get":
			if err := wantArgs(name, args, 1); err != nil {
				return nil, err
			}
			n, ok := args[0].(Int)
			if !ok {
				return nil, fmt.Errorf("get expects an index, got %s", Debug(args[0]))
			}
			i = int(n)
		}
		if i < 0 || i >= len(elems) {
			return None, nil
		}
		return Some(elems[i]), nil
	case "contains":
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		if s, ok := v.(Str); ok {
			return Bool(strings.Contains(string(s), args[0].String())), nil
		}
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		return Bool(slices.ContainsFunc(elems, func(e Value) bool { return Equal(e, args[0]) })), nil
	case "join":
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		elems, err := iterate(v)
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.String()
		}
		return Str(strings.Join(parts, args[0].String())), nil
	case "unwrap", "expect":
		if variant, ok := v.(Variant); ok {
			switch variant.Name {
			case "Some", "Ok":
				if len(variant.Fields) == 1 {
					return variant.Fields[0], nil
				}
			case "None":
				if name == "expect" && len(args) == 1 {
					return nil, &Panic{Message: args[0].String(), Span: span}
				}
				return nil, &Panic{Message: "called `Option::unwrap()` on a `None` value", Span: span}
			case "Err":
				return nil, &Panic{Message: "called `Result::unwrap()` on an `Err` value: " + Debug(Tuple(variant.Fields)), Span: span}
			}
		}
	case "unwrap_or", "unwrap_or_else":
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		if variant, ok := v.(Variant); ok {
			if (variant.Name == "Some" || variant.Name == "Ok") && len(variant.Fields) == 1 {
				return variant.Fields[0], nil
			}
			if name == "unwrap_or" {
				return args[0], nil
			}
			return call(args[0])
		}
	case "is_some", "is_none", "is_ok", "is_err":
		if variant, ok := v.(Variant); ok {
			want := map[string]string{"is_some": "Some", "is_none": "None", "is_ok": "Ok", "is_err": "Err"}[name]
			return Bool(variant.Name == want), nil
		}
	case "ok":
		if variant, ok := v.(Variant); ok {
			if variant.Name == "Ok" && len(variant.Fields) == 1 {
				return Some(variant.Fields[0]), nil
			}
			return None, nil
		}
	case "abs":
		switch v := v.(type) {
		case Int:
			if v < 0 {
				return -v, nil
			}
			return v, nil
		case Float:
			return Float(math.Abs(float64(v))), nil
		}
	case "pow":
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		base, ok := v.(Int)
		exp, ok2 := args[0].(Int)
		if ok && ok2 && exp >= 0 {
			r := Int(1)
			for i := Int(0); i < exp; i++ {
				r *= base
			}
			return r, nil
		}
	case "min", "max":
		if len(args) == 0 {
			elems, err := iterate(v)
			if err != nil {
				return nil, err
			}
			if len(elems) == 0 {
				return None, nil
			}
			best := elems[0]
			for _, e := range elems[1:] {
				if better, err := prefer(name, e, best); err != nil {
					return nil, err
				} else if better {
					best = e
				}
			}
			return Some(best), nil
		}
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		better, err := prefer(name, args[0], v)
		if err != nil {
			return nil, err
		}
		if better {
			return args[0], nil
		}
		return v, nil
	case "to_uppercase", "to_lowercase", "trim":
		if s, ok := v.(Str); ok {
			switch name {
			case "to_uppercase":
				return Str(strings.ToUpper(string(s))), nil
			case "to_lowercase":
				return Str(strings.ToLower(string(s))), nil
			}
			return Str(strings.TrimSpace(string(s))), nil
		}
	case "starts_with", "ends_with":
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		if s, ok := v.(Str); ok {
			if name == "starts_with" {
				return Bool(strings.HasPrefix(string(s), args[0].String())), nil
			}
			return Bool(strings.HasSuffix(string(s), args[0].String())), nil
		}
	}
	return nil, fmt.Errorf("no method %s on %s", name, Debug(v))
}

// prefer reports whether x should replace best for min or max. Ties keep
// the earlier value for min and the later one for max.
func prefer(name string, x, best Value) (bool, error) {
	c, err := compare(x, best)
	if err != nil {
		return false, err
	}
	if name == "min" {
		return c < 0, nil
	}
	return c >= 0, nil
}

func mapValues(in []Value, f func(Value) (Value, error), build func([]Value) Value) (Value, error) {
	out := make([]Value, len(in))
	for i, v := range in {
		x, err := f(v)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return build(out), nil
}

////////////////////////////////////////////////////////////////////////////////
/// Macros
////////////////////////////////////////////////////////////////////////////////

func (in *Interpreter) evalMacro(e *syntax.MacroCall, scope *Scope) (Value, error) {
	switch e.Name {
	case "format", "print", "println", "eprint", "eprintln":
		s, err := in.format(e, scope)
		if err != nil {
			return nil, err
		}
		switch e.Name {
		case "format":
			return Str(s), nil
		case "print", "println":
			if in.Out != nil {
				if e.Name == "println" {
					s += "\n"
				}
				if _, err := io.WriteString(in.Out, s); err != nil {
					return nil, at(e.Span, err)
				}
			}
		}
		return Unit{}, nil
	case "panic", "unreachable", "todo", "unimplemented":
		msg := map[string]string{
			"panic":         "explicit panic",
			"unreachable":   "internal error: entered unreachable code",
			"todo":          "not yet implemented",
			"unimplemented": "not implemented",
		}[e.Name]
		if len(e.Args) > 0 {
			s, err := in.format(e, scope)
			if err != nil {
				return nil, err
			}
			if e.Name == "panic" {
				msg = s
			} else {
				msg += ": " + s
			}
		}
		return nil, &Panic{Message: msg, Span: e.Span}
	case "vec":
		elems, err := in.evalAll(e.Args, scope)
		if err != nil {
			return nil, err
		}
		return Vec(elems), nil
	case "dbg":
		if len(e.Args) != 1 {
			return nil, errorAt(e.Span, "dbg! takes one argument")
		}
		return in.evalExpr(e.Args[0], scope)
	case "assert":
		if len(e.Args) == 0 {
			return nil, errorAt(e.Span, "assert! needs a condition")
		}
		ok, err := in.evalCond(e.Args[0], scope.NewChildScope())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &Panic{Message: "assertion failed: " + syntax.FormatExpr(e.Args[0]), Span: e.Span}
		}
		return Unit{}, nil
	case "assert_eq", "assert_ne":
		if len(e.Args) < 2 {
			return nil, errorAt(e.Span, "%s! needs two arguments", e.Name)
		}
		vs, err := in.evalAll(e.Args[:2], scope)
		if err != nil {
			return nil, err
		}
		if Equal(vs[0], vs[1]) != (e.Name == "assert_eq") {
			op := map[string]string{"assert_eq": "==", "assert_ne": "!="}[e.Name]
			return nil, &Panic{Message: fmt.Sprintf("assertion `left %s right` failed: %s vs %s", op, Debug(vs[0]), Debug(vs[1])), Span: e.Span}
		}
		return Unit{}, nil
	}
	return nil, errorAt(e.Span, "macro %s! is not supported", e.Name)
}

// format renders the format string and arguments of a formatting macro.
// Arguments are `{}`, `{:?}`, `{0}`, `{name}` and `{:.N}` for floats.
func (in *Interpreter) format(e *syntax.MacroCall, scope *Scope) (string, error) {
	if len(e.Args) == 0 {
		return "", nil
	}
	lit, ok := e.Args[0].(*syntax.Lit)
	if !ok || lit.Kind != syntax.StrLit {
		return "", errorAt(e.Span, "%s! needs a string literal", e.Name)
	}
	var positional []Value
	named := map[string]Value{}
	for _, arg := range e.Args[1:] {
		if assign, ok := arg.(*syntax.Assign); ok && assign.Op == "=" {
			if id, ok := assign.Lhs.(*syntax.Ident); ok {
				v, err := in.evalExpr(assign.Rhs, scope)
				if err != nil {
					return "", err
				}
				named[id.Name] = v
				continue
			}
		}
		v, err := in.evalExpr(arg, scope)
		if err != nil {
			return "", err
		}
		positional = append(positional, v)
	}

	var sb strings.Builder
	s := lit.Value
	next := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "{{"):
			sb.WriteByte('{')
			i += 2
		case strings.HasPrefix(s[i:], "}}"):
			sb.WriteByte('}')
			i += 2
		case s[i] == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return "", errorAt(lit.Span, "unterminated format argument")
			}
			arg, spec, _ := strings.Cut(s[i+1:i+end], ":")
			i += end + 1
			var v Value
			if arg == "" {
				if next >= len(positional) {
					return "", errorAt(lit.Span, "missing format argument %d", next)
				}
				v = positional[next]
				next++
			} else if n, err := strconv.Atoi(arg); err == nil {
				if n >= len(positional) {
					return "", errorAt(lit.Span, "missing format argument %d", n)
				}
				v = positional[n]
			} else if x, ok := named[arg]; ok {
				v = x
			} else {
				x, err := in.lookup(arg, lit.Span, scope)
				if err != nil {
					return "", err
				}
				v = x
			}
			sb.WriteString(formatValue(v, spec))
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			sb.WriteRune(r)
			i += size
		}
	}
	return sb.String(), nil
}

func formatValue(v Value, spec string) string {
	if strings.HasSuffix(spec, "?") {
		return Debug(v)
	}
	if _, prec, ok := strings.Cut(spec, "."); ok {
		target, err := deref(v)
		if n, convErr := strconv.Atoi(prec); err == nil && convErr == nil {
			if f, isFloat := target.(Float); isFloat {
				return strconv.FormatFloat(float64(f), 'f', n, 64)
			}
		}
	}
	return v.String()
}
