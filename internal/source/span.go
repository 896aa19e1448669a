package source

import (
	"fmt"
)

// Span is a half-open byte range inside a single document.
type Span struct {
	Start int `json:"start"` // inclusive
	End   int `json:"end"`   // exclusive
}

// SpanAt returns the span of length n that begins at start.
func SpanAt(start, n int) Span {
	return Span{Start: start, End: start + n}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Contains reports whether off lies inside the span; the end offset counts
// as inside so a cursor placed right after a word still hits it.
func (s Span) Contains(off int) bool {
	return off >= s.Start && off <= s.End
}

func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

func (s Span) ShiftRight(n int) Span {
	return Span{
		Start: s.Start + n,
		End:   s.End + n,
	}
}
