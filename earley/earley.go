/*
Package earley implements a scannerless Earley parser: state sets keyed by
byte offset into the input rather than by token index, predictor/completer/
scanner driven from a single worklist per offset, and tree construction via
the shared forest.Store.

Grounded on github.com/npillmayer/gorgo/lr/earley/earley.go for the overall
Parser shape (functional Option, mode bitmask, predict/complete/scan named
steps, structhash-keyed memoization) and on
Compiler/Syntax/Earley/Parser.cpp for the parts a token-based Earley parser
doesn't need: scanning a regex of arbitrary match length instead of a single
token, and tracking the furthest position at which the start rule has
completed (used to report a useful error location on a failed parse, Parser
cpp's "last finish").
*/
package earley

import (
	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/grammar"
)

// tracer traces with key "cfparse.earley".
func tracer() tracing.Trace {
	return tracing.Select("cfparse.earley")
}

// Option configures a Parser at construction time.
type Option func(*Parser)

const (
	modeGenerateTree uint = 1 << iota
)

// GenerateTree requests that Parse build a parse tree (via the shared
// forest.Store) in addition to recognizing the input. Without it, Parse
// only answers whether the input is in the language.
func GenerateTree() Option {
	return func(p *Parser) { p.mode |= modeGenerateTree }
}

// Parser recognizes strings of a grammar via the Earley algorithm.
type Parser struct {
	g     *grammar.Grammar
	store *forest.Store
	mode  uint
}

// NewParser creates an Earley parser for grammar g, sharing tree storage
// with store (pass forest.NewStore() for a parser that owns its own arena).
func NewParser(g *grammar.Grammar, store *forest.Store, opts ...Option) *Parser {
	p := &Parser{g: g, store: store.WithGrammar(g)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// item is one partially-matched production in a state set: the position
// within its production, the state set it started in, and (when tree
// generation is on) the tree ids matched so far for its captured tokens.
type item struct {
	it       grammar.ProductionIter
	origin   int
	children []forest.TreeID

	completed   bool
	completedID forest.TreeID
}

func itemKey(prod grammar.ProdID, pos, origin int) string {
	key, err := structhash.Hash(struct {
		Prod   grammar.ProdID
		Pos    int
		Origin int
	}{prod, pos, origin}, 1)
	if err != nil {
		panic(err)
	}
	return key
}

// stateSet holds every item discovered at one input offset, keyed by
// (production, dot position, origin) so a second derivation reaching the
// same key can be merged into the first instead of explored independently,
// plus an index from "rule this item's dot is waiting on" to the waiting
// items so the completer can find them in O(1) instead of rescanning every
// earlier state.
//
// items stays a plain growable slice (rather than e.g. an iteratable.Set):
// closure below is a classic worklist that appends to it mid-iteration (new
// items discovered this pass must be visited this pass too, including an
// existing item re-enqueued after push upgrades it — see push), which needs
// index-stable append-only growth, not a sorted tree's snapshot-then-walk
// shape. byKey is what lets push find (and upgrade) the item already
// occupying a key instead of just testing membership, so it is a map from
// key to the item itself rather than a set.
type stateSet struct {
	items   []*item
	byKey   map[string]*item
	waiting map[grammar.RuleID][]*item
}

func newStateSet() *stateSet {
	return &stateSet{byKey: make(map[string]*item), waiting: make(map[grammar.RuleID][]*item)}
}

// Result is the outcome of a Parse call.
type Result struct {
	// Ok reports whether the start rule matched a prefix of the input.
	Ok bool
	// MatchEnd is the furthest offset at which the start rule was found to
	// be complete (== len(text) for a full match).
	MatchEnd int
	// Tree is the root of the parse tree, valid iff Ok and GenerateTree was
	// requested.
	Tree    forest.TreeID
	HasTree bool
	// StateCount is the number of (non-empty) state sets allocated during
	// this parse, one per distinct offset the worklist ever touched.
	StateCount int
}

// Parse recognizes text against startRule, from offset 0.
func (p *Parser) Parse(startRule grammar.RuleID, text []rune) Result {
	states := map[int]*stateSet{0: newStateSet()}
	ensure := func(pos int) *stateSet {
		s, ok := states[pos]
		if !ok {
			s = newStateSet()
			states[pos] = s
		}
		return s
	}

	for _, pid := range p.g.Productions(startRule) {
		prod, _ := p.g.Production(pid)
		p.push(states[0], &item{it: grammar.FirstA(prod), origin: 0})
	}

	result := Result{MatchEnd: -1}
	for pos := 0; pos <= len(text); pos++ {
		s := states[pos]
		if s == nil {
			continue
		}
		p.closure(ensure, s, pos, text)

		for _, it := range s.items {
			if it.it.End() && it.it.Rule() == startRule && it.origin == 0 {
				if pos > result.MatchEnd {
					result.MatchEnd = pos
					result.Ok = true
					if p.mode&modeGenerateTree != 0 {
						result.Tree = p.completedTree(it)
						result.HasTree = true
					}
				} else if pos == result.MatchEnd && p.mode&modeGenerateTree != 0 && result.HasTree {
					if cand := p.completedTree(it); p.store.Compare(cand, result.Tree) == forest.Higher {
						result.Tree = cand
					}
				}
			}
		}
	}
	result.StateCount = len(states)
	tracer().Debugf("earley: parsed %d chars, matchEnd=%d, %d state sets", len(text), result.MatchEnd, result.StateCount)
	return result
}

// register indexes it under s.waiting if its current token refers to a rule
// (directly, or via the delimiter slot), so a later completion of that rule
// can find it.
func (p *Parser) register(s *stateSet, it *item) {
	if it.it.End() {
		return
	}
	tok := it.it.Token()
	switch tok.Kind {
	case grammar.TokRule:
		s.waiting[tok.Rule] = append(s.waiting[tok.Rule], it)
	case grammar.TokDelim:
		s.waiting[p.g.Delimiter()] = append(s.waiting[p.g.Delimiter()], it)
	}
}

// push appends it to s if no item with the same (production, position,
// origin) key is present there yet. If one already is, the two are
// alternative derivations of the same state: when tree generation is on,
// the one reaching it with the higher-priority children (per
// forest.Store.Compare, compared slot by slot — see betterChildren) wins
// and replaces the stored item's children in place. An upgraded item that
// had already been processed this pass is re-enqueued onto items so
// closure revisits it with the new children, re-running whatever
// predict/complete/scan follows and so propagating the upgrade to anything
// derived from it — the scannerless-Earley counterpart of GLR's limited
// reduce (spec.md §4.E/§4.F/§8: ambiguity resolution applies to every
// backend, not just GLR).
func (p *Parser) push(s *stateSet, it *item) *item {
	key := itemKey(it.it.Production().ID, it.it.Position(), it.origin)
	if existing, ok := s.byKey[key]; ok {
		if p.mode&modeGenerateTree != 0 && betterChildren(p.store, it.children, existing.children) {
			existing.children = it.children
			existing.completed = false
			existing.completedID = 0
			s.items = append(s.items, existing)
		}
		return nil
	}
	s.byKey[key] = it
	s.items = append(s.items, it)
	p.register(s, it)
	return it
}

// betterChildren reports whether a should replace b as the children of a
// shared (production, position, origin) item: the same slot-by-slot
// comparison forest.Store.Compare does for a completed node's child list,
// since two items at the same key have matched the same number of tokens
// and so their children correspond 1:1.
func betterChildren(store *forest.Store, a, b []forest.TreeID) bool {
	to := len(a)
	if len(b) < to {
		to = len(b)
	}
	for i := 0; i < to; i++ {
		switch store.Compare(a[i], b[i]) {
		case forest.Higher:
			return true
		case forest.Lower:
			return false
		}
	}
	return len(a) > len(b)
}

func copyChildren(children []forest.TreeID, extra ...forest.TreeID) []forest.TreeID {
	out := make([]forest.TreeID, 0, len(children)+len(extra))
	out = append(out, children...)
	out = append(out, extra...)
	return out
}

// closure runs predict/complete/scan(zero-width)/repeat-branch to a fixed
// point at a single offset, and feeds non-empty scans into future states.
func (p *Parser) closure(ensure func(int) *stateSet, s *stateSet, pos int, text []rune) {
	for i := 0; i < len(s.items); i++ {
		it := s.items[i]
		cur := it.it

		// Repeat-range epsilon branch: always available independent of
		// whatever token sits at this position.
		if nb := cur.NextB(); nb.Valid() {
			p.push(s, &item{it: nb, origin: it.origin, children: it.children})
		}

		if cur.End() {
			p.complete(ensure, s, pos, it)
			continue
		}

		tok := cur.Token()
		switch tok.Kind {
		case grammar.TokRule, grammar.TokDelim:
			rule := tok.Rule
			if tok.Kind == grammar.TokDelim {
				rule = p.g.Delimiter()
			}
			if rule == 0 {
				continue
			}
			for _, pid := range p.g.Productions(rule) {
				prod, _ := p.g.Production(pid)
				p.push(s, &item{it: grammar.FirstA(prod), origin: pos})
			}
		case grammar.TokRegex:
			end := tok.Regex.Match(text, pos)
			if end == -1 {
				continue
			}
			var leaf forest.TreeID
			if p.mode&modeGenerateTree != 0 {
				leaf = p.store.PushLeaf(pos)
			}
			advanced := &item{it: cur.NextA(), origin: it.origin, children: copyChildren(it.children, leaf)}
			if end == pos {
				p.push(s, advanced)
			} else {
				p.push(ensure(end), advanced)
			}
		}
	}
}

// complete advances every item waiting (in the origin state) on the rule
// it just finished, pushing the advanced items into the current state.
func (p *Parser) complete(ensure func(int) *stateSet, s *stateSet, pos int, it *item) {
	origin := ensure(it.origin)
	finishedRule := it.it.Rule()
	var childID forest.TreeID
	if p.mode&modeGenerateTree != 0 {
		childID = p.completedTree(it)
	}
	for _, waiter := range origin.waiting[finishedRule] {
		adv := &item{it: waiter.it.NextA(), origin: waiter.origin, children: copyChildren(waiter.children, childID)}
		p.push(s, adv)
	}
}

// completedTree builds (once) and caches the tree node for a completed item.
func (p *Parser) completedTree(it *item) forest.TreeID {
	if it.completed {
		return it.completedID
	}
	id := p.store.PushNode(it.origin, it.it.Production().ID, it.children)
	it.completed = true
	it.completedID = id
	return id
}
