package eval

import (
	"fmt"

	"github.com/frxstrem/cain/pkg/syntax"
)

// matchPat tests v against p and binds the names of p in scope. Bindings of
// a failed match may be left behind, so callers match into a fresh scope.
func (in *Interpreter) matchPat(p syntax.Pat, v Value, scope *Scope) (bool, error) {
	switch p := p.(type) {
	case *syntax.IdentPat:
		if p.Sub != nil {
			ok, err := in.matchPat(p.Sub, v, scope)
			if err != nil || !ok {
				return false, err
			}
		}
		if p.ByRef {
			// The binding refers to its own copy of the value.
			scope.define(p.Name, Ref{place: &cell{v: v}, Mut: p.Mut})
		} else {
			scope.define(p.Name, v)
		}
		return true, nil
	case *syntax.WildPat:
		return true, nil
	case *syntax.TypedPat:
		return in.matchPat(p.Pat, v, scope)
	case *syntax.BoxPat:
		return in.matchPat(p.Pat, v, scope)
	case *syntax.RefPat:
		target, err := deref(v)
		if err != nil {
			return false, at(p.Span, err)
		}
		return in.matchPat(p.Pat, target, scope)
	case *syntax.OrPat:
		for _, c := range p.Cases {
			ok, err := in.matchPat(c, v, scope)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case *syntax.VerbatimPat:
		// self parameters
		scope.define("self", v)
		return true, nil
	case *syntax.MacroPat:
		return false, errorAt(p.Span, "macro patterns cannot be matched")
	}

	// The remaining patterns look through references, like default binding
	// modes do.
	target, err := deref(v)
	if err != nil {
		return false, at(p.NodeSpan(), err)
	}
	switch p := p.(type) {
	case *syntax.LitPat:
		lit, err := literal(p.Lit)
		if err != nil {
			return false, err
		}
		if p.Neg {
			switch l := lit.(type) {
			case Int:
				lit = -l
			case Float:
				lit = -l
			}
		}
		return Equal(lit, target), nil
	case *syntax.PathPat:
		variant, ok := target.(Variant)
		return ok && len(variant.Fields) == 0 && variant.Name == p.Segments[len(p.Segments)-1], nil
	case *syntax.RangePat:
		return inRange(p, target)
	case *syntax.TuplePat:
		var elems []Value
		switch t := target.(type) {
		case Tuple:
			elems = t
		case Unit:
		default:
			return false, nil
		}
		return in.matchElems(p.Elems, elems, scope)
	case *syntax.TupleStructPat:
		variant, ok := target.(Variant)
		if !ok || variant.Name != p.Path[len(p.Path)-1] {
			return false, nil
		}
		return in.matchElems(p.Elems, variant.Fields, scope)
	case *syntax.SlicePat:
		elems, ok := target.(Vec)
		if !ok {
			return false, nil
		}
		return in.matchElems(p.Elems, elems, scope)
	case *syntax.StructPat:
		return false, errorAt(p.Span, "struct patterns are not supported")
	case *syntax.RestPat:
		return false, errorAt(p.Span, ".. is only allowed inside tuple and slice patterns")
	}
	return false, errorAt(p.NodeSpan(), "cannot match %s", syntax.FormatPat(p))
}

// matchElems matches a sequence of patterns, at most one of them `..`,
// against elems.
func (in *Interpreter) matchElems(ps []syntax.Pat, elems []Value, scope *Scope) (bool, error) {
	rest := -1
	for i, p := range ps {
		if _, ok := p.(*syntax.RestPat); ok {
			rest = i
			break
		}
	}
	if rest < 0 {
		if len(ps) != len(elems) {
			return false, nil
		}
		return in.matchEach(ps, elems, scope)
	}
	before, after := ps[:rest], ps[rest+1:]
	if len(before)+len(after) > len(elems) {
		return false, nil
	}
	ok, err := in.matchEach(before, elems[:len(before)], scope)
	if err != nil || !ok {
		return false, err
	}
	return in.matchEach(after, elems[len(elems)-len(after):], scope)
}

func (in *Interpreter) matchEach(ps []syntax.Pat, elems []Value, scope *Scope) (bool, error) {
	for i, p := range ps {
		ok, err := in.matchPat(p, elems[i], scope)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func inRange(p *syntax.RangePat, v Value) (bool, error) {
	if p.Lo != nil {
		lo, err := literal(p.Lo)
		if err != nil {
			return false, err
		}
		c, err := compare(lo, v)
		if err != nil {
			return false, nil
		}
		if c > 0 {
			return false, nil
		}
	}
	if p.Hi != nil {
		hi, err := literal(p.Hi)
		if err != nil {
			return false, err
		}
		c, err := compare(v, hi)
		if err != nil {
			return false, nil
		}
		if c > 0 || (c == 0 && !p.Inclusive) {
			return false, nil
		}
	}
	return true, nil
}

func (r Range) bounds(n int) (int, int, error) {
	lo, hi := 0, n
	if r.HasLo {
		lo = int(r.Lo)
	}
	if r.HasHi {
		hi = int(r.Hi)
		if r.Inclusive {
			hi++
		}
	}
	if lo < 0 || lo > hi || hi > n {
		return 0, 0, fmt.Errorf("range %s out of bounds for length %d", Debug(r), n)
	}
	return lo, hi, nil
}
