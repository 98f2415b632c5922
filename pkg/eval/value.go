package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/frxstrem/cain/pkg/syntax"
)

// Value is a runtime value. String renders it the way `{}` formats it.
type Value interface {
	String() string
}

type Int int64
type Float float64
type Str string
type Char rune
type Bool bool
type Unit struct{}

// Tuple and Vec are immutable; updates through a place build a new value.
type Tuple []Value
type Vec []Value

// Variant is an enum value such as Some(1) or None. Name is the last segment
// of the constructor path.
type Variant struct {
	Name   string
	Fields []Value
}

// Ref is a reference to a place.
type Ref struct {
	place place
	Mut   bool
}

// Range is an integer range with optional bounds.
type Range struct {
	Lo, Hi       int64
	HasLo, HasHi bool
	Inclusive    bool
}

// Host is a function implemented in Go and registered with Define.
type Host func(args []Value) (Value, error)

// Func is a closure, a fn item or a host function.
type Func struct {
	Name   string
	Params []syntax.Pat
	Body   syntax.Expr  // closures
	Block  *syntax.Block // fn items
	env    *Scope
	host   Host
}

func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (v Str) String() string   { return string(v) }
func (v Char) String() string  { return string(rune(v)) }
func (v Bool) String() string  { return strconv.FormatBool(bool(v)) }
func (Unit) String() string    { return "()" }
func (v Tuple) String() string { return Debug(v) }
func (v Vec) String() string   { return Debug(v) }
func (v Variant) String() string {
	return Debug(v)
}
func (v Ref) String() string {
	target, err := v.place.get()
	if err != nil {
		return "<dangling>"
	}
	return target.String()
}
func (v Range) String() string { return Debug(v) }
func (v *Func) String() string {
	if v.Name == "" {
		return "<closure>"
	}
	return "<fn " + v.Name + ">"
}

// Some and None build Option values.
func Some(v Value) Variant { return Variant{Name: "Some", Fields: []Value{v}} }

var None = Variant{Name: "None"}

// Debug renders v the way `{:?}` formats it.
func Debug(v Value) string {
	var sb strings.Builder
	writeDebug(&sb, v)
	return sb.String()
}

func writeDebug(sb *strings.Builder, v Value) {
	switch v := v.(type) {
	case Str:
		sb.WriteString(strconv.Quote(string(v)))
	case Char:
		sb.WriteString(strconv.QuoteRune(rune(v)))
	case Tuple:
		sb.WriteByte('(')
		for i, e := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDebug(sb, e)
		}
		if len(v) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case Vec:
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDebug(sb, e)
		}
		sb.WriteByte(']')
	case Variant:
		sb.WriteString(v.Name)
		if len(v.Fields) > 0 {
			sb.WriteByte('(')
			for i, e := range v.Fields {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeDebug(sb, e)
			}
			sb.WriteByte(')')
		}
	case Ref:
		target, err := v.place.get()
		if err != nil {
			sb.WriteString("<dangling>")
			return
		}
		writeDebug(sb, target)
	case Range:
		if v.HasLo {
			fmt.Fprint(sb, v.Lo)
		}
		sb.WriteString("..")
		if v.Inclusive {
			sb.WriteByte('=')
		}
		if v.HasHi {
			fmt.Fprint(sb, v.Hi)
		}
	case nil:
		sb.WriteString("<uninitialized>")
	default:
		sb.WriteString(v.String())
	}
}

// deref follows references to the value they point at.
func deref(v Value) (Value, error) {
	for {
		r, ok := v.(Ref)
		if !ok {
			return v, nil
		}
		var err error
		v, err = r.place.get()
		if err != nil {
			return nil, err
		}
	}
}

// Equal compares two values structurally, looking through references.
func Equal(a, b Value) bool {
	a, errA := deref(a)
	b, errB := deref(b)
	if errA != nil || errB != nil {
		return false
	}
	switch a := a.(type) {
	case Tuple:
		b, ok := b.(Tuple)
		return ok && equalAll(a, b)
	case Vec:
		b, ok := b.(Vec)
		return ok && equalAll(a, b)
	case Variant:
		b, ok := b.(Variant)
		return ok && a.Name == b.Name && equalAll(a.Fields, b.Fields)
	case *Func:
		return a == b
	case Int:
		if f, ok := b.(Float); ok {
			return Float(a) == f
		}
	case Float:
		if i, ok := b.(Int); ok {
			return a == Float(i)
		}
	}
	return a == b
}

func equalAll(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
