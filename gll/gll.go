/*
Package gll implements a generalized LL parser: ordinary recursive descent,
continuation-passing so a rule invocation can have many callers, with a
per-(rule, input offset) memo table that both avoids repeating work and
makes left recursion terminate instead of looping forever.

Grounded on Compiler/Syntax/GLL/{Parser.cpp,Parser.h,Stack.h,RuleInfo.cpp} —
no Go implementation of GLL exists anywhere in the retrieved pack, so this
backend is built directly from the C++ original, kept in the teacher's
general idiom (Option/mode-bitmask construction, forest.Store integration)
established by earley and glr.

The original drives a priority queue of StackItem descriptors ordered by
(input position, depth) so the highest-priority derivation is extracted and
extended first (Parser.h's pqPush/pqPop, StackItem::operator<). Go's call
stack gives the same effect for free here: parseRule/parseItem recurse
directly rather than pushing a descriptor onto an explicit queue, so a
derivation that can be extended synchronously is extended synchronously,
with no separate scheduler to maintain. What the original's priority queue
additionally gave — picking, among several completed derivations of the
same (rule, start, end), the best one by production priority — is instead
done by frame.record calling the shared forest.Store.Compare, the same
function earley and glr use for the identical purpose.
*/
package gll

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/grammar"
)

// tracer traces with key "cfparse.gll".
func tracer() tracing.Trace {
	return tracing.Select("cfparse.gll")
}

// Option configures a Parser at construction time.
type Option func(*Parser)

const (
	modeGenerateTree uint = 1 << iota
)

// GenerateTree requests that Parse build a parse tree in the shared
// forest.Store in addition to recognizing the input.
func GenerateTree() Option {
	return func(p *Parser) { p.mode |= modeGenerateTree }
}

// Parser recognizes strings of a grammar via generalized recursive
// descent.
type Parser struct {
	g     *grammar.Grammar
	store *forest.Store
	mode  uint

	text   []rune
	frames map[callKey]*frame
}

// NewParser creates a GLL parser for grammar g, sharing tree storage with
// store.
func NewParser(g *grammar.Grammar, store *forest.Store, opts ...Option) *Parser {
	p := &Parser{g: g, store: store.WithGrammar(g)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// callKey identifies one invocation of a rule: which rule, starting where.
// Corresponds to the original's RuleInfo+offset pair that Parser::parse
// dispatches on.
type callKey struct {
	rule grammar.RuleID
	pos  int
}

// resume is the continuation a caller registers with a rule invocation: it
// is called once for every distinct (end offset, tree) the callee
// eventually produces, including ones discovered after registration —
// this replay is what lets a left-recursive alternative, which registers
// while its own rule's frame is still open, pick up results found by
// sibling productions after it stalled.
type resume func(end int, tree forest.TreeID)

// frame is the memo entry for one callKey: every caller waiting on it, and
// the best tree found so far for each end offset reached. Corresponds to
// the original's StackFirst, minus the GC-array bookkeeping Go doesn't
// need; its morePrev (merged callers of the same rule at the same
// position) is this frame's waiters.
type frame struct {
	results map[int]forest.TreeID
	order   []int
	waiters []resume
}

func newFrame() *frame {
	return &frame{results: make(map[int]forest.TreeID)}
}

// record keeps tree as the result for end if it is new, or if it beats the
// tree already on file there per forest.Store.Compare; reports whether the
// result at end changed (and so should be (re-)propagated to waiters).
func (f *frame) record(store *forest.Store, end int, tree forest.TreeID) bool {
	existing, ok := f.results[end]
	if !ok {
		f.results[end] = tree
		f.order = append(f.order, end)
		return true
	}
	if store.Compare(tree, existing) == forest.Higher {
		f.results[end] = tree
		return true
	}
	return false
}

// Result is the outcome of a Parse call.
type Result struct {
	Ok       bool
	MatchEnd int
	Tree     forest.TreeID
	HasTree  bool
	// StateCount is the number of distinct (rule, offset) invocations
	// memoized during this parse.
	StateCount int
}

// Parse recognizes text against startRule, from offset 0.
func (p *Parser) Parse(startRule grammar.RuleID, text []rune) Result {
	p.text = text
	p.frames = make(map[callKey]*frame)

	result := Result{MatchEnd: -1}
	p.parseRule(startRule, 0, func(end int, tree forest.TreeID) {
		if end > result.MatchEnd {
			result.MatchEnd = end
			result.Ok = true
			if p.mode&modeGenerateTree != 0 {
				result.Tree = tree
				result.HasTree = true
			}
		} else if end == result.MatchEnd && p.mode&modeGenerateTree != 0 && result.HasTree {
			if p.store.Compare(tree, result.Tree) == forest.Higher {
				result.Tree = tree
			}
		}
	})
	result.StateCount = len(p.frames)
	tracer().Debugf("gll: parsed %d chars, matchEnd=%d, %d frames", len(text), result.MatchEnd, result.StateCount)
	return result
}

// parseRule drives every production of rule from pos, registering cb to
// hear about every result (existing or future) the invocation produces.
// A rule already being parsed at pos (including, critically, by an
// enclosing call on the same Go call stack — the left-recursive case)
// just registers cb and replays what is known so far, rather than
// recursing again.
func (p *Parser) parseRule(rule grammar.RuleID, pos int, cb resume) {
	key := callKey{rule, pos}
	f, ok := p.frames[key]
	if ok {
		f.waiters = append(f.waiters, cb)
		for _, end := range f.order {
			cb(end, f.results[end])
		}
		return
	}
	f = newFrame()
	p.frames[key] = f
	f.waiters = append(f.waiters, cb)

	for _, pid := range p.g.Productions(rule) {
		prod, _ := p.g.Production(pid)
		p.parseItem(grammar.FirstA(prod), pos, pos, nil, f)
	}
}

func copyChildren(children []forest.TreeID, extra forest.TreeID) []forest.TreeID {
	out := make([]forest.TreeID, 0, len(children)+1)
	out = append(out, children...)
	return append(out, extra)
}

// parseItem advances one item of one production one token at a time,
// trying both the plain continuation (NextA) and — independent of
// whatever token sits at the current position — the repeat-range's
// epsilon branch (NextB), finishing into origin's frame when the
// production completes.
func (p *Parser) parseItem(it grammar.ProductionIter, pos, origin int, children []forest.TreeID, f *frame) {
	if nb := it.NextB(); nb.Valid() {
		p.parseItem(nb, pos, origin, children, f)
	}

	if it.End() {
		var tree forest.TreeID
		if p.mode&modeGenerateTree != 0 {
			tree = p.store.PushNode(origin, it.Production().ID, children)
		}
		if f.record(p.store, pos, tree) {
			for _, w := range f.waiters {
				w(pos, tree)
			}
		}
		return
	}

	tok := it.Token()
	switch tok.Kind {
	case grammar.TokRegex:
		end := tok.Regex.Match(p.text, pos)
		if end == -1 {
			return
		}
		var leaf forest.TreeID
		if p.mode&modeGenerateTree != 0 {
			leaf = p.store.PushLeaf(pos)
		}
		p.parseItem(it.NextA(), end, origin, copyChildren(children, leaf), f)
	case grammar.TokRule, grammar.TokDelim:
		rule := tok.Rule
		if tok.Kind == grammar.TokDelim {
			rule = p.g.Delimiter()
		}
		if rule == 0 {
			return
		}
		p.parseRule(rule, pos, func(end int, childTree forest.TreeID) {
			p.parseItem(it.NextA(), end, origin, copyChildren(children, childTree), f)
		})
	}
}
