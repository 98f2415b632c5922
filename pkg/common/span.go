package common

import (
	"encoding/json"
	"fmt"
)

type Span struct {
	StartLine   int // The starting line number of the node
	StartColumn int // The starting column number of the node
	EndLine     int // The ending line number of the node
	EndColumn   int // The ending column number of the node
}

func (x *Span) SpanString() string {
	return fmt.Sprintf("%d %d %d %d", x.StartLine, x.StartColumn, x.EndLine, x.EndColumn)
}

// String renders the start position as "line:col", the form used in diagnostics.
func (x Span) String() string {
	return fmt.Sprintf("%d:%d", x.StartLine, x.StartColumn)
}

// IsZero reports whether the span carries no position.
func (x Span) IsZero() bool {
	return x == Span{}
}

func (x *Span) ToSpan(y *Span) *Span {
	return &Span{
		StartLine:   x.StartLine,
		StartColumn: x.StartColumn,
		EndLine:     y.EndLine,
		EndColumn:   y.EndColumn,
	}
}

// MarshalJSON implements custom JSON marshaling for Span.
func (s Span) MarshalJSON() ([]byte, error) {
	arr := [4]int{s.StartLine, s.StartColumn, s.EndLine, s.EndColumn}
	return json.Marshal(arr)
}

// UnmarshalJSON implements custom JSON unmarshaling for Span.
func (s *Span) UnmarshalJSON(data []byte) error {
	var arr [4]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	s.StartLine = arr[0]
	s.StartColumn = arr[1]
	s.EndLine = arr[2]
	s.EndColumn = arr[3]
	return nil
}
