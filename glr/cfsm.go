/*
Package glr implements a generalized-LR parser: a lazily built LR(0)
automaton driving a graph-structured stack (GSS) that forks on conflicts
and merges stack tops that reach the same (state, input offset) pair,
resolving ambiguity at merge time via the shared forest.Store.Compare
instead of picking one action up front.

Grounded on github.com/npillmayer/gorgo/lr/tables.go for the overall
closure/goto shape and on Compiler/Syntax/GLR/{Syntax.cpp,Stack.cpp} for the
two things a token-based LR table doesn't need: treating a production's
repeat range as a reference to a synthesized virtual rule so every
reduction has a statically known, fixed RHS length (ported from
Syntax::ruleInfo — see grammar/ids.go), and popping the GSS along every
distinct incoming path of a merged node rather than a single linear stack.
*/
package glr

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/pillwright/cfparse/grammar"
	"github.com/pillwright/cfparse/internal/sparse"
)

// effTok is one slot of an effective production: either a real grammar
// token (regex/rule/delimiter) or a reference to a rule synthesized for a
// collapsed repeat range (grammar.RepeatRuleID/ESkipRuleID).
type effTok struct {
	real    *grammar.Token
	virtual bool
	rule    grammar.RuleID // set iff virtual
}

func (t effTok) isRuleRef() bool {
	return t.virtual || t.real.Kind == grammar.TokRule || t.real.Kind == grammar.TokDelim
}

// effProd is a production rewritten so a repeat range appears as a single
// nonterminal slot referencing a virtual rule, giving it — unlike the
// grammar.ProductionIter view Earley and GLL use — a fixed RHS length
// known without walking any particular derivation.
type effProd struct {
	id       grammar.ProdID
	rule     grammar.RuleID
	priority int
	tokens   []effTok
}

// view builds and caches the effective form of every production and every
// virtual rule's synthesized productions, lazily, on first use.
type view struct {
	g        *grammar.Grammar
	byProd   map[grammar.ProdID]*effProd
	byVirt   map[grammar.RuleID][]*effProd
}

func newView(g *grammar.Grammar) *view {
	return &view{g: g, byProd: make(map[grammar.ProdID]*effProd), byVirt: make(map[grammar.RuleID][]*effProd)}
}

// effectiveOf builds the effective form of a production. Called with a
// plain production id it returns the form used when any repeat range is
// taken at least once (absent for RepNone, which has no range at all);
// called with grammar.ESkipProdID(pid) on a RepOptional production it
// returns the alternative that skips the range entirely — the
// "doesn't match" half of '?', tagged transparent (grammar.IsTransparent)
// so forest.Store.Compare treats the present/absent choice as equal rather
// than ranking one over the other.
func (v *view) effectiveOf(pid grammar.ProdID) *effProd {
	if e, ok := v.byProd[pid]; ok {
		return e
	}
	base := grammar.BaseProd(pid)
	p, ok := v.g.Production(base)
	if !ok {
		panic(fmt.Sprintf("glr: unknown production %d", base))
	}
	if grammar.IsTransparent(pid) {
		e := &effProd{id: pid, rule: p.Rule, priority: p.Priority}
		for i := 0; i < p.RepStart; i++ {
			e.tokens = append(e.tokens, effTok{real: &p.Tokens[i]})
		}
		for i := p.RepEnd; i < len(p.Tokens); i++ {
			e.tokens = append(e.tokens, effTok{real: &p.Tokens[i]})
		}
		v.byProd[pid] = e
		return e
	}
	e := &effProd{id: p.ID, rule: p.Rule, priority: p.Priority}
	if p.Repeat == grammar.RepNone {
		for i := range p.Tokens {
			e.tokens = append(e.tokens, effTok{real: &p.Tokens[i]})
		}
		v.byProd[pid] = e
		return e
	}

	var vrule grammar.RuleID
	if p.Repeat == grammar.RepOptional {
		vrule = grammar.ESkipRuleID(p.ID)
	} else {
		vrule = grammar.RepeatRuleID(p.ID)
	}
	for i := 0; i < p.RepStart; i++ {
		e.tokens = append(e.tokens, effTok{real: &p.Tokens[i]})
	}
	if p.Repeat == grammar.RepPlus {
		// a '+' requires exactly one mandatory pass through the body inline;
		// the virtual rule alone then covers zero-or-more additional passes.
		for i := p.RepStart; i < p.RepEnd; i++ {
			e.tokens = append(e.tokens, effTok{real: &p.Tokens[i]})
		}
	}
	e.tokens = append(e.tokens, effTok{virtual: true, rule: vrule})
	for i := p.RepEnd; i < len(p.Tokens); i++ {
		e.tokens = append(e.tokens, effTok{real: &p.Tokens[i]})
	}
	v.byProd[pid] = e
	return e
}

// alternativesOf returns the effective production(s) a single stored
// production base contributes to its rule's CFSM predictions: one, for
// RepNone/RepStar/RepPlus, or two for RepOptional — the "range taken" form
// and the transparent "range skipped" form.
func (v *view) alternativesOf(base grammar.ProdID) []*effProd {
	p, ok := v.g.Production(base)
	if !ok {
		panic(fmt.Sprintf("glr: unknown production %d", base))
	}
	mandatory := v.effectiveOf(base)
	if p.Repeat != grammar.RepOptional {
		return []*effProd{mandatory}
	}
	return []*effProd{mandatory, v.effectiveOf(grammar.ESkipProdID(base))}
}

// virtualProductionsOf returns the (one or two) synthesized effective
// productions of a virtual rule id, mirroring Syntax::ruleInfo: a
// grammar.IsESkipRule rule has one production (a copy of the collapsed
// body, RHS length == body length); a grammar.IsRepeatRule rule has two —
// the empty alternative (RHS length 0) and the left-recursive "X' -> X'
// body" alternative (RHS length == 1 + body length), referencing itself as
// its own first slot.
func (v *view) virtualProductionsOf(vrule grammar.RuleID) []*effProd {
	if es, ok := v.byVirt[vrule]; ok {
		return es
	}
	base := grammar.BaseRule(vrule)
	p, ok := v.g.Production(base)
	if !ok {
		panic(fmt.Sprintf("glr: unknown base production %d for virtual rule %d", base, vrule))
	}
	body := p.Tokens[p.RepStart:p.RepEnd]

	var out []*effProd
	for _, pid := range v.g.VirtualProductions(vrule) {
		e := &effProd{id: pid, rule: vrule, priority: p.Priority}
		switch {
		case grammar.IsESkipRule(vrule):
			// "X' -> body", the non-recursive zero-or-one alternative.
			for i := range body {
				e.tokens = append(e.tokens, effTok{real: &body[i]})
			}
		case pid == grammar.EpsilonProdID(base):
			// e.tokens stays empty: the zero-repetitions alternative.
		default:
			// the left-recursive "X' -> X' body" alternative.
			e.tokens = append(e.tokens, effTok{virtual: true, rule: vrule})
			for i := range body {
				e.tokens = append(e.tokens, effTok{real: &body[i]})
			}
		}
		out = append(out, e)
	}
	v.byVirt[vrule] = out
	return out
}

// item is an LR(0) item over an effective production: how far into its
// (fixed-length) token slice a derivation has progressed.
type item struct {
	prod *effProd
	pos  int
}

func (it item) end() bool { return it.pos == len(it.prod.tokens) }

func (it item) token() effTok { return it.prod.tokens[it.pos] }

func (it item) advance() item { return item{prod: it.prod, pos: it.pos + 1} }

func itemKey(it item) string {
	return fmt.Sprintf("%d:%d", it.prod.id, it.pos)
}

// state is one node of the lazily constructed CFSM: a closed item set.
type state struct {
	id    int
	items []item
}

// cfsm is the lazy LR(0) automaton: states and their shift/goto edges are
// computed and memoized on first query rather than built eagerly over the
// whole grammar up front. States are stored in an arraylist rather than a
// plain slice — the same append-and-index-by-small-int table shape the
// teacher backs its CFSM state table with — so stateOf's "append if new"
// step and state(id)'s lookup both go through the one list type used
// throughout the pack for this kind of table. The GOTO table itself
// (state, rule) -> state is an internal/sparse.IntMatrix, the same
// triplet-encoded sparse table the teacher's LR tables use — a CFSM this
// lazily explored only ever fills a small fraction of a state-count ×
// rule-count grid, exactly the shape that format is for.
type cfsm struct {
	v          *view
	states     *arraylist.List
	byKey      map[string]int
	gotoTable  *sparse.IntMatrix // (state,rule) -> state, sparse.DefaultNullValue if absent
	shiftCache map[string]int    // (state,item) -> state; keyed by item, not a finite symbol, so not matrix-shaped
}

func newCFSM(v *view) *cfsm {
	return &cfsm{
		v:          v,
		states:     arraylist.New(),
		byKey:      make(map[string]int),
		gotoTable:  sparse.NewIntMatrix(0, 0, sparse.DefaultNullValue),
		shiftCache: make(map[string]int),
	}
}

// stateOf returns the id of the (lazily built, deduplicated) state whose
// kernel is kernel, closing over rule references transitively.
func (c *cfsm) stateOf(kernel []item) int {
	closed := c.closure(kernel)
	key := stateKey(closed)
	if id, ok := c.byKey[key]; ok {
		return id
	}
	id := c.states.Size()
	c.states.Add(&state{id: id, items: closed})
	c.byKey[key] = id
	return id
}

func stateKey(items []item) string {
	s := ""
	for _, it := range items {
		s += itemKey(it) + "|"
	}
	return s
}

func (c *cfsm) closure(kernel []item) []item {
	seen := make(map[string]bool)
	var out []item
	queue := append([]item{}, kernel...)
	for i := 0; i < len(queue); i++ {
		it := queue[i]
		k := itemKey(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
		if it.end() {
			continue
		}
		tok := it.token()
		if !tok.isRuleRef() {
			continue
		}
		var rule grammar.RuleID
		switch {
		case tok.virtual:
			rule = tok.rule
		case tok.real.Kind == grammar.TokDelim:
			rule = c.v.g.Delimiter()
		default:
			rule = tok.real.Rule
		}
		if rule == 0 {
			continue
		}
		for _, pred := range c.predictions(rule) {
			queue = append(queue, item{prod: pred, pos: 0})
		}
	}
	return out
}

func (c *cfsm) predictions(rule grammar.RuleID) []*effProd {
	if grammar.SpecialRule(rule) != 0 {
		return c.v.virtualProductionsOf(rule)
	}
	var out []*effProd
	for _, pid := range c.v.g.Productions(rule) {
		out = append(out, c.v.alternativesOf(pid)...)
	}
	return out
}

// state returns the state by id.
func (c *cfsm) state(id int) *state {
	v, _ := c.states.Get(id)
	return v.(*state)
}

// gotoRule computes (memoized) the target state reached from stateID after
// a completed parse of rule, i.e. after popping the frames consumed by one
// of rule's reductions.
func (c *cfsm) gotoRule(stateID int, rule grammar.RuleID) (int, bool) {
	if v := c.gotoTable.Value(stateID, int(rule)); v != sparse.DefaultNullValue {
		return int(v), true
	}
	var kernel []item
	for _, it := range c.state(stateID).items {
		if it.end() {
			continue
		}
		tok := it.token()
		var r grammar.RuleID
		switch {
		case tok.virtual:
			r = tok.rule
		case tok.real.Kind == grammar.TokDelim:
			r = c.v.g.Delimiter()
		case tok.real.Kind == grammar.TokRule:
			r = tok.real.Rule
		default:
			continue
		}
		if r == rule {
			kernel = append(kernel, it.advance())
		}
	}
	if len(kernel) == 0 {
		return 0, false
	}
	id := c.stateOf(kernel)
	c.gotoTable.Set(stateID, int(rule), int32(id))
	return id, true
}

// shift computes (memoized) the target state reached from stateID after
// shifting the single item it by one position (used for regex matches,
// which — unlike rule completions — are not grouped by a finite symbol
// table since the terminal alphabet is effectively unbounded).
func (c *cfsm) shift(stateID int, it item) int {
	key := fmt.Sprintf("%d/%s", stateID, itemKey(it))
	if id, ok := c.shiftCache[key]; ok {
		return id
	}
	id := c.stateOf([]item{it.advance()})
	c.shiftCache[key] = id
	return id
}
