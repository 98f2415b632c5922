package eval

import (
	"fmt"
)

// Scope represents a single scope level in the scope chain.
type Scope struct {
	Level  int              // Nesting level (0 = global).
	Parent *Scope           // Parent scope for lookups.
	vars   map[string]*cell // Variables defined at this level.
}

func newGlobalScope() *Scope {
	return &Scope{vars: make(map[string]*cell)}
}

// NewChildScope creates a new child scope of the current scope.
func (s *Scope) NewChildScope() *Scope {
	return &Scope{
		Level:  s.Level + 1,
		Parent: s,
		vars:   make(map[string]*cell),
	}
}

// define binds name in this scope, shadowing any outer binding.
func (s *Scope) define(name string, v Value) *cell {
	c := &cell{v: v}
	s.vars[name] = c
	return c
}

func (s *Scope) lookup(name string) (*cell, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if c, ok := scope.vars[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// place is a location that can be read and written: a variable, an element
// of a vector, or a field of a tuple or variant.
type place interface {
	get() (Value, error)
	set(Value) error
}

type cell struct {
	v Value
}

func (c *cell) get() (Value, error) {
	if c.v == nil {
		return nil, fmt.Errorf("use of an uninitialized variable")
	}
	return c.v, nil
}

func (c *cell) set(v Value) error {
	c.v = v
	return nil
}

// elemPlace is element i of the vector, tuple or variant stored at base.
type elemPlace struct {
	base place
	i    int
}

func (p *elemPlace) get() (Value, error) {
	v, err := getThrough(p.base)
	if err != nil {
		return nil, err
	}
	elems, err := elementsOf(v)
	if err != nil {
		return nil, err
	}
	if p.i < 0 || p.i >= len(elems) {
		return nil, &Panic{Message: fmt.Sprintf("index out of bounds: the len is %d but the index is %d", len(elems), p.i)}
	}
	return elems[p.i], nil
}

func (p *elemPlace) set(x Value) error {
	target := baseTarget(p.base)
	v, err := target.get()
	if err != nil {
		return err
	}
	elems, err := elementsOf(v)
	if err != nil {
		return err
	}
	if p.i < 0 || p.i >= len(elems) {
		return &Panic{Message: fmt.Sprintf("index out of bounds: the len is %d but the index is %d", len(elems), p.i)}
	}
	updated := append([]Value(nil), elems...)
	updated[p.i] = x
	switch v := v.(type) {
	case Vec:
		return target.set(Vec(updated))
	case Tuple:
		return target.set(Tuple(updated))
	case Variant:
		return target.set(Variant{Name: v.Name, Fields: updated})
	}
	return fmt.Errorf("cannot assign into %s", Debug(v))
}

// getThrough reads a place and follows references.
func getThrough(p place) (Value, error) {
	v, err := p.get()
	if err != nil {
		return nil, err
	}
	return deref(v)
}

// baseTarget returns the place a chain of references stored at p ends in.
func baseTarget(p place) place {
	for {
		v, err := p.get()
		if err != nil {
			return p
		}
		r, ok := v.(Ref)
		if !ok {
			return p
		}
		p = r.place
	}
}

func elementsOf(v Value) ([]Value, error) {
	switch v := v.(type) {
	case Vec:
		return v, nil
	case Tuple:
		return v, nil
	case Variant:
		return v.Fields, nil
	}
	return nil, fmt.Errorf("%s has no elements", Debug(v))
}
