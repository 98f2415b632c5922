package rewriter

import (
	"fmt"
	"io"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
)

// PlaceholderID identifies one placeholder for the duration of a rewrite.
type PlaceholderID uint64

// Stats counts what a rewrite did.
type Stats struct {
	Conditionals int // if and match expressions discovered
	Hoisted      int // of those, folded around a non-trivial continuation
	Captures     int // capture names allocated by the pattern normalizer
	Scopes       int // independent scope passes
	Tidied       int // tree rule applications before decoding
}

func (s *Stats) Add(other Stats) {
	s.Conditionals += other.Conditionals
	s.Hoisted += other.Hoisted
	s.Captures += other.Captures
	s.Scopes += other.Scopes
	s.Tidied += other.Tidied
}

// Session holds the counters of one rewrite. Sessions are not shared, so
// concurrent rewrites are independent and the names they produce are
// deterministic.
type Session struct {
	nextPlaceholder uint64
	nextCapture     uint64
	stats           Stats
	trace           io.Writer
}

func NewSession() *Session {
	return &Session{}
}

// FreshName returns a capture name that no other call on this session has
// returned and that no reserved input name uses.
func (s *Session) FreshName() string {
	name := syntax.CaptureName(s.nextCapture)
	s.nextCapture++
	s.stats.Captures++
	return name
}

func (s *Session) newPlaceholder() PlaceholderID {
	id := PlaceholderID(s.nextPlaceholder)
	s.nextPlaceholder++
	return id
}

// reserve scans the input. Capture names already present advance the
// capture counter past them, placeholder names are rejected.
func (s *Session) reserve(b *syntax.Block) error {
	var err error
	check := func(name string, span common.Span) {
		if err != nil {
			return
		}
		if _, ok := syntax.ParsePlaceholder(name); ok {
			err = errorf(ReservedName, span, "%s is reserved for the rewriter", name)
			return
		}
		if n, ok := syntax.ParseCapture(name); ok && n >= s.nextCapture {
			s.nextCapture = n + 1
		}
	}
	syntax.Inspect(b, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Ident:
			check(n.Name, n.Span)
		case *syntax.IdentPat:
			check(n.Name, n.Span)
		}
		return err == nil
	})
	return err
}

func (s *Session) tracef(span common.Span, format string, args ...any) {
	if s.trace == nil {
		return
	}
	fmt.Fprintf(s.trace, "%s: %s\n", span, fmt.Sprintf(format, args...))
}
