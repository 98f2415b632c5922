package eval

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/frxstrem/cain/pkg/syntax"
)

// Outcome is everything a run of a program can be observed by.
type Outcome struct {
	Value  Value
	Output string
	Panic  string
	Err    error
}

// Observe runs b in a fresh interpreter and records its outcome.
func Observe(b *syntax.Block, maxSteps int) Outcome {
	var out bytes.Buffer
	in := NewInterpreter()
	in.Out = &out
	if maxSteps > 0 {
		in.MaxSteps = maxSteps
	}
	v, err := in.Run(b)
	o := Outcome{Value: v, Output: out.String()}
	var p *Panic
	switch {
	case errors.As(err, &p):
		o.Panic = p.Message
		o.Value = nil
	case err != nil:
		o.Err = err
		o.Value = nil
	}
	return o
}

// Same reports whether two successful or panicking runs are
// indistinguishable. Runs that failed to evaluate are never the same.
func (o Outcome) Same(other Outcome) bool {
	if o.Err != nil || other.Err != nil {
		return false
	}
	if o.Output != other.Output || o.Panic != other.Panic {
		return false
	}
	return o.Panic != "" || Equal(o.Value, other.Value)
}

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return "error: " + o.Err.Error()
	case o.Panic != "":
		return fmt.Sprintf("panic: %s (output %q)", o.Panic, o.Output)
	}
	return fmt.Sprintf("%s (output %q)", Debug(o.Value), o.Output)
}
