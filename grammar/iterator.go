package grammar

import "strconv"

// ProductionIter is an iterator over the positions of a Production.
//
// A production without extended operators is a plain linear sequence:
// NextA always advances by one token and NextB is never valid. A repeated
// or optional token range introduces exactly one extra branch, which is why
// an iterator only ever needs two successors (NextA, NextB) rather than an
// arbitrary fan-out:
//
//   - at RepStart, for '?' and '*': NextB skips the whole range, landing on
//     RepEnd directly (the zero-repetitions path); NextA enters the range.
//   - at RepEnd, for '*' and '+': NextB loops back to RepStart for another
//     pass; NextA falls through past the range.
//
// This is the sole place in the grammar package that understands ?, * and
// +; every backend drives its closure/prediction loop from NextA/NextB
// alone and never inspects Repeat/RepStart/RepEnd directly.
//
// Ported from Compiler/Syntax/Production.h's ProductionIter.
type ProductionIter struct {
	p   *Production
	pos int
}

// NewIter creates an iterator positioned at pos within p. Use FirstA to
// start at the beginning of the production instead.
func NewIter(p *Production, pos int) ProductionIter {
	return ProductionIter{p: p, pos: pos}
}

// FirstA returns an iterator at the start of p (position 0).
func FirstA(p *Production) ProductionIter {
	return ProductionIter{p: p, pos: 0}
}

// FirstB returns an iterator at the start of p taking the "B" branch
// immediately, i.e. skipping a leading repeat range if p opens with one and
// that range allows zero repetitions. It is invalid (Valid() == false) if p
// does not open with such a range.
func FirstB(p *Production) ProductionIter {
	it := ProductionIter{p: p, pos: 0}
	return it.NextB()
}

// Valid reports whether it refers to an in-range position of a production.
func (it ProductionIter) Valid() bool {
	return it.p != nil && it.pos >= 0 && it.pos <= len(it.p.Tokens)
}

// End reports whether it is positioned past the last token.
func (it ProductionIter) End() bool {
	return it.Valid() && it.pos == len(it.p.Tokens)
}

// Position returns the position into the production's token slice.
func (it ProductionIter) Position() int {
	return it.pos
}

// Production returns the production this iterator walks.
func (it ProductionIter) Production() *Production {
	return it.p
}

// Rule returns the id of the rule this iterator's production belongs to.
func (it ProductionIter) Rule() RuleID {
	return it.p.Rule
}

// Token returns the token at the current position, or nil at End().
func (it ProductionIter) Token() *Token {
	if it.End() || !it.Valid() {
		return nil
	}
	return &it.p.Tokens[it.pos]
}

// AtRepStart reports whether it sits at the opening position of a repeat
// range.
func (it ProductionIter) AtRepStart() bool {
	return it.p.Repeat != RepNone && it.pos == it.p.RepStart
}

// AtRepEnd reports whether it sits at the closing position of a repeat
// range.
func (it ProductionIter) AtRepEnd() bool {
	return it.p.Repeat != RepNone && it.pos == it.p.RepEnd
}

// NextA advances linearly by one token. Invalid (Valid() == false) at End().
func (it ProductionIter) NextA() ProductionIter {
	if it.End() {
		return ProductionIter{}
	}
	return ProductionIter{p: it.p, pos: it.pos + 1}
}

// NextB takes the extended-operator branch, if any is available from the
// current position; otherwise it returns an invalid iterator.
func (it ProductionIter) NextB() ProductionIter {
	p := it.p
	switch {
	case it.AtRepStart() && (p.Repeat == RepOptional || p.Repeat == RepStar):
		// Skip the whole range: zero repetitions.
		return ProductionIter{p: p, pos: p.RepEnd}
	case it.AtRepEnd() && (p.Repeat == RepStar || p.Repeat == RepPlus):
		// Loop back for another pass through the range.
		return ProductionIter{p: p, pos: p.RepStart}
	default:
		return ProductionIter{}
	}
}

func (it ProductionIter) String() string {
	if !it.Valid() {
		return "<invalid>"
	}
	return it.p.String() + "@" + strconv.Itoa(it.pos)
}
