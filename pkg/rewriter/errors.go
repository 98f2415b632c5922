package rewriter

import (
	"fmt"

	"github.com/frxstrem/cain/pkg/common"
)

type ErrorKind int

const (
	// UnsupportedPattern is a pattern form the normalizer cannot analyse.
	UnsupportedPattern ErrorKind = iota
	// ReservedName is user input that uses a name the rewriter synthesises.
	ReservedName
	// InternalInvariant is a defect in the rewriter itself.
	InternalInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedPattern:
		return "unsupported pattern"
	case ReservedName:
		return "reserved name"
	case InternalInvariant:
		return "internal error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the only error type the rewriter returns. No partial output is
// produced when one is raised.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    common.Span
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Message)
}

// IsBug reports whether the error points at a defect in the rewriter rather
// than at the input.
func (e *Error) IsBug() bool {
	return e.Kind == InternalInvariant
}

func errorf(kind ErrorKind, span common.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}
