/*
Package iteratable implements a sorted, iterable, destructive-by-default Set,
reconstructed from the call sites of github.com/npillmayer/gorgo/lr/iteratable
(the package's own source was not available, only its usage throughout
lr/tables.go and lr/earley/earley.go: Copy, Union, Subset, Each, FirstMatch,
IterateOnce/Next/Item). In this module it backs the GLR parser's per-node
table of already-reduced productions.

Unusually — matching the teacher's documented behavior — the combining
operations Union and Subset are destructive: they mutate and return the
receiver. Difference and Copy return a new set.
*/
package iteratable

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// Set is an ordered, iterable collection of comparable values, backed by a
// red-black tree (github.com/emirpasic/gods/sets/treeset) for O(log n)
// membership and insertion, matching the storage choice the teacher makes
// for its CFSM.states.
type Set struct {
	tree     *treeset.Set
	cmp      utils.Comparator
	iterPos  int
	iterKeys []interface{}
}

// NewSet creates an empty set ordered by cmp. The capacity hint is accepted
// for API parity with the teacher's iteratable.NewSet(cap) but unused, since
// treeset.Set grows on its own.
func NewSet(_ int, cmp utils.Comparator) *Set {
	return &Set{tree: treeset.NewWith(cmp), cmp: cmp}
}

// Add inserts v into the set if not already present.
func (s *Set) Add(v interface{}) {
	s.tree.Add(v)
}

// Remove deletes v from the set.
func (s *Set) Remove(v interface{}) {
	s.tree.Remove(v)
}

// Contains reports whether v is a member.
func (s *Set) Contains(v interface{}) bool {
	return s.tree.Contains(v)
}

// Size returns the number of elements.
func (s *Set) Size() int {
	return s.tree.Size()
}

// Empty reports whether the set has no elements.
func (s *Set) Empty() bool {
	return s.tree.Empty()
}

// Values returns all elements in sorted order. The returned slice must not be
// mutated by callers.
func (s *Set) Values() []interface{} {
	return s.tree.Values()
}

// Copy returns an independent copy of s.
func (s *Set) Copy() *Set {
	n := NewSet(0, s.cmp)
	for _, v := range s.tree.Values() {
		n.tree.Add(v)
	}
	return n
}

// Equals reports whether s and o contain the same elements.
func (s *Set) Equals(o *Set) bool {
	if o == nil || s.Size() != o.Size() {
		return false
	}
	for _, v := range s.Values() {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

// Union destructively merges other's elements into s and returns s.
func (s *Set) Union(other *Set) *Set {
	for _, v := range other.Values() {
		s.tree.Add(v)
	}
	return s
}

// Difference returns the elements of s not present in other, as a new set;
// s is left unmodified (the teacher's Difference() is likewise used only for
// read-only "what is new" checks, never followed by further mutation of the
// receiver).
func (s *Set) Difference(other *Set) *Set {
	n := NewSet(0, s.cmp)
	for _, v := range s.Values() {
		if !other.Contains(v) {
			n.tree.Add(v)
		}
	}
	return n
}

// Subset destructively filters s down to only the elements matching
// predicate, and returns s.
func (s *Set) Subset(predicate func(interface{}) bool) *Set {
	var drop []interface{}
	for _, v := range s.Values() {
		if !predicate(v) {
			drop = append(drop, v)
		}
	}
	for _, v := range drop {
		s.tree.Remove(v)
	}
	return s
}

// Each calls f once for every element, in sorted order.
func (s *Set) Each(f func(interface{})) {
	for _, v := range s.Values() {
		f(v)
	}
}

// FirstMatch returns the first element (in sorted order) for which predicate
// returns true, or nil.
func (s *Set) FirstMatch(predicate func(interface{}) bool) interface{} {
	for _, v := range s.Values() {
		if predicate(v) {
			return v
		}
	}
	return nil
}

// Set has no Sort method: elements are always kept in sorted order by the
// underlying tree, so an explicit Sort with a custom less-function could not
// reorder storage. Use Values() and sort.Slice directly if you need a
// different order for a one-off traversal.

// IterateOnce begins a fresh external iteration from the start of the set.
func (s *Set) IterateOnce() {
	s.iterKeys = s.Values()
	s.iterPos = -1
}

// Next advances the external iterator; returns false once exhausted.
func (s *Set) Next() bool {
	s.iterPos++
	return s.iterPos < len(s.iterKeys)
}

// Item returns the current element of an external iteration started with
// IterateOnce.
func (s *Set) Item() interface{} {
	return s.iterKeys[s.iterPos]
}
