package cfparse

import "fmt"

// TokType is a category type for a grammar terminal or non-terminal symbol.
// Nothing in this module assigns TokType values; the grammar package
// identifies rules and productions by grammar.RuleID and grammar.ProdID.
type TokType int32

// Span captures a half-open range [From, To) of byte offsets into an input
// string. Every terminal and non-terminal node in a parse tree or info tree
// carries a Span denoting the slice of input it covers.
type Span [2]int

// NewSpan builds a Span from…to.
func NewSpan(from, to int) Span {
	return Span{from, to}
}

// From returns the start offset of the span.
func (s Span) From() int {
	return s[0]
}

// To returns the offset just behind the end of the span.
func (s Span) To() int {
	return s[1]
}

// Len returns the length of the span, i.e. To()-From().
func (s Span) Len() int {
	return s[1] - s[0]
}

// IsNull returns true for the zero Span.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend grows s so that it also covers other.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
