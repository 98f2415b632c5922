package eval

import (
	"fmt"

	"github.com/frxstrem/cain/pkg/common"
)

// Error is a program the interpreter cannot run, such as an unbound name or
// an operator applied to the wrong kind of value.
type Error struct {
	Message string
	Span    common.Span
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// Panic is raised by panic!, unreachable!, failed unwraps and out of bounds
// indexing. Two runs that panic with the same message behave the same.
type Panic struct {
	Message string
	Span    common.Span
}

func (p *Panic) Error() string {
	return "panicked: " + p.Message
}

func errorAt(span common.Span, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Span: span}
}

// Control flow travels as errors until the construct it targets.

type breakSignal struct {
	label string
	value Value
}

func (*breakSignal) Error() string { return "break outside of a loop" }

type continueSignal struct {
	label string
}

func (*continueSignal) Error() string { return "continue outside of a loop" }

type returnSignal struct {
	value Value
}

func (*returnSignal) Error() string { return "return outside of a function" }
