package glr

import (
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/grammar"
	"github.com/pillwright/cfparse/internal/iteratable"
)

// tracer traces with key "cfparse.glr".
func tracer() tracing.Trace {
	return tracing.Select("cfparse.glr")
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

// Parser recognizes strings of a grammar via generalized LR: a lazily
// built CFSM (cfsm.go) drives a graph-structured stack (stack.go) that
// forks instead of failing on a shift/reduce or reduce/reduce conflict,
// and merges stack tops that land on the same (state, offset), resolving
// ambiguity between merged derivations via forest.Store.Compare.
type Parser struct {
	g     *grammar.Grammar
	store *forest.Store
	mode  uint

	v    *view
	cfsm *cfsm
}

// NewParser creates a GLR parser for grammar g, sharing tree storage with
// store.
func NewParser(g *grammar.Grammar, store *forest.Store, opts ...Option) *Parser {
	v := newView(g)
	p := &Parser{g: g, store: store.WithGrammar(g), v: v, cfsm: newCFSM(v)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Result is the outcome of a Parse call.
type Result struct {
	Ok       bool
	MatchEnd int
	Tree     forest.TreeID
	HasTree  bool
	// StateCount is the number of distinct (CFSM state, offset) nodes the
	// graph-structured stack allocated during this parse, a rough measure
	// of how much the grammar's ambiguity made the stack fork.
	StateCount int
}

// Parse recognizes text against startRule, from offset 0.
func (p *Parser) Parse(startRule grammar.RuleID, text []rune) Result {
	start := p.cfsm.stateOf(p.startKernel(startRule))
	s := newGSS()
	root, _ := s.getOrCreate(start, 0)

	result := Result{MatchEnd: -1}

	// worklist[pos] holds nodes at offset pos awaiting their reduce
	// fixed-point pass; a node may be re-enqueued as it gains incoming
	// edges for a rule it has already partly processed.
	worklist := map[int][]*gssNode{0: {root}}

	enqueue := func(pos int, n *gssNode) {
		worklist[pos] = append(worklist[pos], n)
	}

	// reduced tracks, per GSS node, which productions have already had
	// their reduce fixed-point run against it during this parse. An entry
	// is dropped outright (not merely marked done) whenever stack.addEdge
	// upgrades or extends that node's incoming edges, so the next time the
	// node is pulled off the worklist every one of its reduce items runs
	// again and picks up the better derivation — the limited-reduce
	// revival spec.md §4.F calls for, rather than a permanent latch.
	reduced := make(map[nodeID]*iteratable.Set)

	markReduced := func(id nodeID, prodID grammar.ProdID) bool {
		set, ok := reduced[id]
		if !ok {
			set = iteratable.NewSet(0, utils.IntComparator)
			reduced[id] = set
		}
		if set.Contains(int(prodID)) {
			return false
		}
		set.Add(int(prodID))
		return true
	}

	for pos := 0; pos <= len(text); pos++ {
		for i := 0; i < len(worklist[pos]); i++ {
			n := worklist[pos][i]
			for _, it := range p.cfsm.state(n.state).items {
				if !it.end() {
					continue
				}
				if !markReduced(n.id, it.prod.id) {
					continue
				}
				p.reduce(s, n, it.prod, pos, startRule, root.id, &result, reduced, enqueue)
			}
		}

		if pos == len(text) {
			break
		}
		// Shift: every node still live at pos tries every regex item in its
		// state against the input; a match creates or merges a node at the
		// match's end offset.
		for _, n := range dedupeNodes(worklist[pos]) {
			for _, it := range p.cfsm.state(n.state).items {
				if it.end() {
					continue
				}
				tok := it.token()
				if tok.virtual || tok.real.Kind != grammar.TokRegex {
					continue
				}
				end := tok.real.Regex.Match(text, pos)
				if end == -1 {
					continue
				}
				var leaf forest.TreeID
				if p.mode&modeGenerateTree != 0 {
					leaf = p.store.PushLeaf(pos)
				}
				target := p.cfsm.shift(n.state, it)
				tn, _ := s.getOrCreate(target, end)
				if s.addEdge(tn, n.id, leaf, p.store) {
					delete(reduced, tn.id)
					enqueue(end, tn)
				}
			}
		}
	}

	result.StateCount = s.nodes.Size()
	tracer().Debugf("glr: parsed %d chars, matchEnd=%d, %d gss nodes", len(text), result.MatchEnd, result.StateCount)
	return result
}

func dedupeNodes(nodes []*gssNode) []*gssNode {
	seen := make(map[nodeID]bool)
	var out []*gssNode
	for _, n := range nodes {
		if seen[n.id] {
			continue
		}
		seen[n.id] = true
		out = append(out, n)
	}
	return out
}

func (p *Parser) startKernel(startRule grammar.RuleID) []item {
	var kernel []item
	for _, pred := range p.cfsm.predictions(startRule) {
		kernel = append(kernel, item{prod: pred, pos: 0})
	}
	return kernel
}

// reduce applies every distinct way of popping prod's (fixed) RHS length
// off the stack from n, building (and deduplicating, via forest.Store's own
// structural dedup) one tree per path, and transitioning via goto. When a
// path's target edge already carries a tree for the same predecessor,
// stack.addEdge resolves the two via forest.Store.Compare and reports
// whether the stored edge changed; a change means some node downstream may
// have already reduced through the stale edge, so its production(s) are
// marked not-yet-reduced again and it is re-enqueued, letting the better
// derivation propagate forward instead of being silently dominated by
// whichever path was explored first (spec.md §4.F's limited reduce).
func (p *Parser) reduce(s *gss, n *gssNode, prod *effProd, pos int, startRule grammar.RuleID, rootID nodeID, result *Result, reduced map[nodeID]*iteratable.Set, enqueue func(int, *gssNode)) {
	rhsLen := len(prod.tokens)
	for _, path := range s.paths(n, rhsLen) {
		var treeID forest.TreeID
		if p.mode&modeGenerateTree != 0 {
			treeID = p.store.PushNode(path.origin.pos, prod.id, path.trees)
		}
		if target, ok := p.cfsm.gotoRule(path.origin.state, prod.rule); ok {
			tn, _ := s.getOrCreate(target, pos)
			if s.addEdge(tn, path.origin.id, treeID, p.store) {
				delete(reduced, tn.id)
				enqueue(pos, tn)
			}
		}
		if prod.rule == startRule && path.origin.id == rootID {
			if pos > result.MatchEnd {
				result.MatchEnd = pos
				result.Ok = true
				if p.mode&modeGenerateTree != 0 {
					result.Tree = treeID
					result.HasTree = true
				}
			} else if pos == result.MatchEnd && p.mode&modeGenerateTree != 0 && result.HasTree {
				if p.store.Compare(treeID, result.Tree) == forest.Higher {
					result.Tree = treeID
				}
			}
		}
	}
}
