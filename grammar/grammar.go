/*
Package grammar holds the shared grammar representation consumed by all
three parsing backends: rules, productions, tokens, the extended-operator
encoding (?, *, +, and capture ranges), and the production iterator that
turns that encoding into the two-way (nextA/nextB) branching every backend
drives its closure/prediction loop from.

Grounded on Compiler/Syntax/{Rule.h,Production.h,Token.h} from the reference
sources, and on github.com/npillmayer/gorgo/lr's Grammar/Symbol surface for
the Go-idiomatic builder shape (AddRule returning a stable id).
*/
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pillwright/cfparse/grammar/regex"
)

// RepeatType classifies the extended-operator wrapping a production's
// captured token range [RepStart, RepEnd).
type RepeatType int

const (
	// RepNone means the production has no repeated/optional section.
	RepNone RepeatType = iota
	// RepOptional is '?': the range matches zero or one time.
	RepOptional
	// RepStar is '*': the range matches zero or more times.
	RepStar
	// RepPlus is '+': the range matches one or more times.
	RepPlus
)

func (r RepeatType) String() string {
	switch r {
	case RepOptional:
		return "?"
	case RepStar:
		return "*"
	case RepPlus:
		return "+"
	default:
		return ""
	}
}

// IndentKind classifies how a production's matched text affects the
// indentation tracked alongside an info tree. Storm's Production carries an
// indentType of the same shape (Compiler/Syntax/Earley/Parser.cpp builds an
// InfoIndent node whenever indentType != indentNone); the exact symbolic
// names for its non-"none" values were not present in the retrieved
// original sources, so the three below are inferred from how indentStart,
// indentEnd and the comparison against indentNone are used at the call site.
type IndentKind int

const (
	IndentNone IndentKind = iota
	IndentIncrease
	IndentDecrease
	IndentWeak // a line continuation: indent increases only if the next line is otherwise too shallow
)

// TokenKind discriminates the three kinds of token a production can hold.
type TokenKind int

const (
	// TokRegex matches a compiled regex directly against the input text.
	TokRegex TokenKind = iota
	// TokRule invokes another rule (by id) as a nonterminal reference.
	TokRule
	// TokDelim invokes the grammar's delimiter rule; delimiter tokens are
	// listed explicitly in a production's Tokens (the backends do not insert
	// them) and never participate in capture.
	TokDelim
)

// Token is one element of a production's right-hand side.
type Token struct {
	Kind  TokenKind
	Regex *regex.Regex // set iff Kind == TokRegex
	Rule  RuleID       // set iff Kind == TokRule or TokDelim

	// Target is the capture slot this token's match is stored under, or -1
	// if the token is not captured (anonymous token, or delimiter).
	Target int

	// Color is the semantic color attached to leaves produced by this
	// token, used by syntax highlighters walking the info tree. Empty means
	// no color.
	Color string
}

// MatchesEmpty reports whether this single token, taken by itself, could
// match the empty string. For a rule/delimiter token the caller must consult
// the owning Grammar, since only it knows whether the referenced rule is
// nullable.
func (t Token) MatchesEmpty(g *Grammar) bool {
	switch t.Kind {
	case TokRegex:
		return t.Regex.MatchesEmpty()
	default:
		return g.Nullable(t.Rule)
	}
}

// Production is one alternative of a rule: a sequence of tokens, a priority
// used to break ambiguity when more than one parse of equal length and
// coverage exists, and the extended-operator encoding for at most one
// repeated/optional token range.
//
// The range [RepStart, RepEnd) is always a single contiguous run of Tokens;
// a Production has room for only one such range (overlapping or disjoint
// repeats are expressed as nested productions via an explicit auxiliary
// rule instead).
type Production struct {
	ID       ProdID
	Rule     RuleID
	Priority int
	Tokens   []Token

	RepStart, RepEnd int
	Repeat           RepeatType

	// HasDelim marks a production that uses the grammar's delimiter rule.
	// It is checked by grammar validation and included in syntax
	// signatures; no backend inserts TokDelim tokens on its behalf.
	HasDelim bool

	IndentStart, IndentEnd int
	IndentKind             IndentKind
}

// InRepeat reports whether position pos (an index into Tokens, or
// len(Tokens) for the end position) lies inside the repeated range.
func (p *Production) InRepeat(pos int) bool {
	return p.Repeat != RepNone && pos >= p.RepStart && pos < p.RepEnd
}

func (p *Production) String() string {
	return fmt.Sprintf("prod#%d(rule#%d, %d tokens, prio %d)", p.ID, p.Rule, len(p.Tokens), p.Priority)
}

// Rule is a nonterminal: a name and the set of productions defining it.
type Rule struct {
	ID          RuleID
	Name        string
	Productions []ProdID
}

type triState int

const (
	unknown triState = iota
	no
	yes
	computing
)

// Grammar is a mutable collection of rules and productions. Zero value is
// not usable; create one with New.
type Grammar struct {
	rules       map[RuleID]*Rule
	ruleByName  map[string]RuleID
	productions map[ProdID]*Production
	nextRule    uint32
	nextProd    uint32

	delim RuleID // 0 means "no delimiter rule registered"

	nullable map[RuleID]triState
}

// New creates an empty grammar.
func New() *Grammar {
	return &Grammar{
		rules:       make(map[RuleID]*Rule),
		ruleByName:  make(map[string]RuleID),
		productions: make(map[ProdID]*Production),
		nullable:    make(map[RuleID]triState),
	}
}

// AddRule registers (or looks up) a rule by name and returns its id.
// Idempotent: calling it twice with the same name returns the same id.
func (g *Grammar) AddRule(name string) RuleID {
	if id, ok := g.ruleByName[name]; ok {
		return id
	}
	g.nextRule++
	id := RuleID(g.nextRule)
	g.rules[id] = &Rule{ID: id, Name: name}
	g.ruleByName[name] = id
	g.invalidateNullable()
	return id
}

// SetDelimiter registers the rule used to satisfy TokDelim tokens.
func (g *Grammar) SetDelimiter(rule RuleID) {
	g.delim = rule
}

// Delimiter returns the grammar's delimiter rule id, or 0 if none was set.
func (g *Grammar) Delimiter() RuleID {
	return g.delim
}

// Rule looks up a rule by id.
func (g *Grammar) Rule(id RuleID) (*Rule, bool) {
	r, ok := g.rules[id]
	return r, ok
}

// RuleNamed looks up a rule by name.
func (g *Grammar) RuleNamed(name string) (RuleID, bool) {
	id, ok := g.ruleByName[name]
	return id, ok
}

// AddProduction adds p to its owning rule (p.Rule) and assigns p.ID,
// returning the finished production's id. p.Rule must already be registered
// with AddRule.
func (g *Grammar) AddProduction(p *Production) ProdID {
	rule, ok := g.rules[p.Rule]
	if !ok {
		panic(fmt.Sprintf("grammar: AddProduction: unknown rule id %d", p.Rule))
	}
	g.nextProd++
	p.ID = ProdID(g.nextProd)
	g.productions[p.ID] = p
	rule.Productions = append(rule.Productions, p.ID)
	g.invalidateNullable()
	return p.ID
}

// Production looks up a production by its base id (tag bits, if any, are
// stripped first).
func (g *Grammar) Production(id ProdID) (*Production, bool) {
	p, ok := g.productions[BaseProd(id)]
	return p, ok
}

// Rules returns every registered rule id, in no particular order.
func (g *Grammar) Rules() []RuleID {
	out := make([]RuleID, 0, len(g.rules))
	for id := range g.rules {
		out = append(out, id)
	}
	return out
}

// Productions returns the (stored, non-virtual) production ids of rule.
func (g *Grammar) Productions(rule RuleID) []ProdID {
	r, ok := g.rules[rule]
	if !ok {
		return nil
	}
	return r.Productions
}

// VirtualProductions returns the productions of a tagged (ruleRepeat or
// ruleESkip) virtual rule id, synthesizing them on the fly rather than
// storing them, mirroring Syntax::ruleInfo in the reference sources: a
// ruleESkip rule has exactly one production ("X' -> body"); a ruleRepeat
// rule has exactly two ("X' -> e" and the left-recursive "X' -> X' body").
// Calling this with an ordinary (untagged) rule id returns nil; use
// Productions instead.
func (g *Grammar) VirtualProductions(rule RuleID) []ProdID {
	base := BaseRule(rule)
	switch SpecialRule(rule) {
	case ruleESkipTag:
		return []ProdID{ESkipProdID(base)}
	case ruleRepeatTag:
		return []ProdID{EpsilonProdID(base), RepeatProdID(base)}
	default:
		return nil
	}
}

func (g *Grammar) invalidateNullable() {
	for k := range g.nullable {
		delete(g.nullable, k)
	}
}

// Nullable reports whether rule can derive the empty string, computed by
// recursion over the stored productions (tri-state memoized; a rule found
// "computing" when revisited is provisionally reported nullable, which ends
// the recursion on cyclic rules, and the rule's own final answer then
// overwrites its memo entry).
func (g *Grammar) Nullable(rule RuleID) bool {
	if SpecialRule(rule) != 0 {
		// Virtual rules are always reported nullable: a ruleRepeat rule has
		// an epsilon alternative, and a ruleESkip rule stands for a '?'
		// range, which may be skipped.
		return true
	}
	switch g.nullable[rule] {
	case yes, computing:
		return true
	case no:
		return false
	}
	g.nullable[rule] = computing
	r, ok := g.rules[rule]
	if !ok {
		g.nullable[rule] = no
		return false
	}
	for _, pid := range r.Productions {
		p := g.productions[pid]
		if g.productionNullable(p) {
			g.nullable[rule] = yes
			return true
		}
	}
	g.nullable[rule] = no
	return false
}

func (g *Grammar) productionNullable(p *Production) bool {
	for i, t := range p.Tokens {
		if p.InRepeat(i) && p.Repeat != RepPlus {
			continue // zero repetitions is allowed by ? and *
		}
		if p.InRepeat(i) && p.Repeat == RepPlus {
			// a + still needs at least one pass through the body to be
			// skippable, so fall through to the normal nullability check
		}
		if t.Kind == TokDelim {
			continue
		}
		if !t.MatchesEmpty(g) {
			return false
		}
	}
	return true
}

// SameSyntax reports whether g and o define structurally identical grammars:
// same rule names, and for each rule the same multiset of production
// shapes, independent of the order rules or productions were registered in.
// Raw RuleID/ProdID values are instance-local (assigned sequentially by
// AddRule/AddProduction) and so are never compared directly; rules are
// matched by name and productions by a name-resolved signature, mirroring
// Syntax::sameSyntax's use as a cache key for "has this grammar already been
// compiled" regardless of how it was built up.
func (g *Grammar) SameSyntax(o *Grammar) bool {
	if len(g.rules) != len(o.rules) {
		return false
	}
	for name, gid := range g.ruleByName {
		oid, ok := o.ruleByName[name]
		if !ok {
			return false
		}
		gProds := g.rules[gid].Productions
		oProds := o.rules[oid].Productions
		if len(gProds) != len(oProds) {
			return false
		}
		gSigs := make([]string, len(gProds))
		for i, pid := range gProds {
			gSigs[i] = g.productionSignature(g.productions[pid])
		}
		oSigs := make([]string, len(oProds))
		for i, pid := range oProds {
			oSigs[i] = o.productionSignature(o.productions[pid])
		}
		sort.Strings(gSigs)
		sort.Strings(oSigs)
		for i := range gSigs {
			if gSigs[i] != oSigs[i] {
				return false
			}
		}
	}
	return true
}

// productionSignature renders p in a form comparable across two different
// Grammar instances: every reference to another rule (direct, via TokRule,
// or the grammar's own delimiter rule) is resolved to that rule's name
// rather than its instance-local id, so the same grammar built up in a
// different registration order (different ids, same names) signs
// identically.
func (g *Grammar) productionSignature(p *Production) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|prio%d|rep%d:%d/%d|delim%v|", g.ruleName(p.Rule), p.Priority, p.RepStart, p.RepEnd, p.Repeat, p.HasDelim)
	for _, t := range p.Tokens {
		switch t.Kind {
		case TokRegex:
			fmt.Fprintf(&b, "[regex %s t%d]", t.Regex.String(), t.Target)
		case TokRule:
			fmt.Fprintf(&b, "[rule %s t%d]", g.ruleName(t.Rule), t.Target)
		case TokDelim:
			fmt.Fprintf(&b, "[delim %s t%d]", g.ruleName(g.delim), t.Target)
		}
	}
	return b.String()
}

// ruleName looks up id's name, falling back to a placeholder for an unset
// (zero) or otherwise unregistered id so signatures never panic.
func (g *Grammar) ruleName(id RuleID) string {
	if r, ok := g.rules[id]; ok {
		return r.Name
	}
	return fmt.Sprintf("#%d", id)
}
