/*
Package parser is a backend-agnostic facade over earley, glr and gll: one
grammar, one tree store, and a single Parse/ParseApprox/inspection contract,
so host code can pick a backend without re-wiring its call sites. None of
the teacher's three backends (lr/earley, lr/glr, lr/gll) shares a facade of
its own; this package is the generalization SPEC_FULL.md's façade component
calls for, modeled on the shape every backend's own Parser already exposes
(functional Option, NewParser(grammar, store, opts...), Parse(rule, text)).

Logs through a package-local tracer, selected under "cfparse.parser", the
same github.com/npillmayer/schuko/tracing convention the backends use.
*/
package parser

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pillwright/cfparse/earley"
	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/glr"
	"github.com/pillwright/cfparse/gll"
	"github.com/pillwright/cfparse/grammar"
	"github.com/pillwright/cfparse/infotree"
)

func tracer() tracing.Trace {
	return tracing.Select("cfparse.parser")
}

// Backend selects which parsing algorithm a Parser runs.
type Backend int

const (
	// Earley is the default backend: simplest to reason about, handles
	// arbitrary ambiguous grammars without a precomputed automaton.
	Earley Backend = iota
	// GLR drives a lazily built LR(0) automaton over a graph-structured
	// stack; cheaper per character on grammars close to deterministic.
	GLR
	// GLL is continuation-passing recursive descent with a memo table;
	// handles left recursion without an explicit automaton.
	GLL
)

func (b Backend) String() string {
	switch b {
	case GLR:
		return "glr"
	case GLL:
		return "gll"
	default:
		return "earley"
	}
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithBackend selects the parsing algorithm. Default is Earley.
func WithBackend(b Backend) Option {
	return func(p *Parser) { p.backend = b }
}

// GenerateTree requests that Parse/ParseApprox build a parse tree in
// addition to recognizing the input.
func GenerateTree() Option {
	return func(p *Parser) { p.genTree = true }
}

// StoreTokens requests that the façade retain the exact input slice passed
// to the most recent Parse call, so InfoTree and other accessors can be
// called without the caller keeping their own copy around.
func StoreTokens() Option {
	return func(p *Parser) { p.storeTokens = true }
}

// WithTracer overrides the package-default tracer, e.g. to route a single
// Parser's diagnostics to a differently configured sink.
func WithTracer(t tracing.Trace) Option {
	return func(p *Parser) { p.trace = t }
}

// Parser is a uniform facade over the three backends, sharing one grammar
// and one tree store across whichever is selected.
type Parser struct {
	g     *grammar.Grammar
	store *forest.Store

	backend     Backend
	genTree     bool
	storeTokens bool
	trace       tracing.Trace

	text     []rune
	lastErr  error
	result   backendResult
	infoTree infotree.Node
}

// backendResult is the common shape of earley.Result / glr.Result /
// gll.Result, read out of whichever one actually ran.
type backendResult struct {
	ok         bool
	matchEnd   int
	tree       forest.TreeID
	hasTree    bool
	stateCount int
}

// New creates a Parser wrapping a fresh grammar.
func New(opts ...Option) *Parser {
	return NewWithGrammar(grammar.New(), opts...)
}

// NewWithGrammar creates a Parser over an already-built grammar, e.g. one
// shared with another Parser instance for a side-by-side backend
// comparison.
func NewWithGrammar(g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{g: g, store: forest.NewStore().WithGrammar(g), result: backendResult{matchEnd: -1}}
	for _, o := range opts {
		o(p)
	}
	if p.trace == nil {
		p.trace = tracer()
	}
	return p
}

// AddRule registers (or looks up) a rule by name. Valid at any time;
// calling it after Parse invalidates cached per-parse state — each Parse
// call already rebuilds that state from scratch, so nothing further is
// required here.
func (p *Parser) AddRule(name string) grammar.RuleID {
	return p.g.AddRule(name)
}

// AddProduction registers one alternative of an already-added rule.
func (p *Parser) AddProduction(prod *grammar.Production) grammar.ProdID {
	return p.g.AddProduction(prod)
}

// SameSyntax reports whether p and other have structurally identical
// registered grammars.
func (p *Parser) SameSyntax(other *Parser) bool {
	return p.g.SameSyntax(other.g)
}

// Grammar exposes the shared grammar for direct inspection or for wiring a
// second Parser (e.g. a different Backend) onto the same rules.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.g
}

// Clear discards per-parse state (tree store, last result, remembered
// input) but retains the registered grammar.
func (p *Parser) Clear() {
	p.store = forest.NewStore().WithGrammar(p.g)
	p.text = nil
	p.lastErr = nil
	p.result = backendResult{matchEnd: -1}
	p.infoTree = nil
}

// Parse runs the selected backend against text from offset 0, returning
// whether any prefix matched. Calling Parse again on the same instance
// without an intervening Clear behaves as if Clear had been called first:
// every backend already starts each Parse from a clean state set/stack/
// memo table, so no extra bookkeeping is needed to make repeat calls
// idempotent.
func (p *Parser) Parse(root grammar.RuleID, text []rune) (bool, error) {
	if err := validate(p.g); err != nil {
		p.lastErr = err
		return false, err
	}
	p.store = forest.NewStore().WithGrammar(p.g)
	p.infoTree = nil
	p.lastErr = nil
	if p.storeTokens {
		p.text = append([]rune(nil), text...)
	} else {
		p.text = text
	}

	p.result = p.runBackend(root, text)
	p.trace.Debugf("parse[%s]: ok=%v matchEnd=%d states=%d", p.backend, p.result.ok, p.result.matchEnd, p.result.stateCount)
	return p.result.ok, nil
}

func (p *Parser) runBackend(root grammar.RuleID, text []rune) backendResult {
	switch p.backend {
	case GLR:
		var opts []glr.Option
		if p.genTree {
			opts = append(opts, glr.GenerateTree())
		}
		r := glr.NewParser(p.g, p.store, opts...).Parse(root, text)
		return backendResult{ok: r.Ok, matchEnd: r.MatchEnd, tree: r.Tree, hasTree: r.HasTree, stateCount: r.StateCount}
	case GLL:
		var opts []gll.Option
		if p.genTree {
			opts = append(opts, gll.GenerateTree())
		}
		r := gll.NewParser(p.g, p.store, opts...).Parse(root, text)
		return backendResult{ok: r.Ok, matchEnd: r.MatchEnd, tree: r.Tree, hasTree: r.HasTree, stateCount: r.StateCount}
	default:
		var opts []earley.Option
		if p.genTree {
			opts = append(opts, earley.GenerateTree())
		}
		r := earley.NewParser(p.g, p.store, opts...).Parse(root, text)
		return backendResult{ok: r.Ok, matchEnd: r.MatchEnd, tree: r.Tree, hasTree: r.HasTree, stateCount: r.StateCount}
	}
}

// HasError reports whether the most recent Parse/ParseApprox call found a
// fatal (GrammarInternal) fault rather than just an unmatched input.
func (p *Parser) HasError() bool {
	return p.lastErr != nil
}

// HasTree reports whether the most recent call produced a parse tree
// (requires GenerateTree and at least a prefix match).
func (p *Parser) HasTree() bool {
	return p.result.hasTree
}

// MatchEnd returns the furthest input offset covered by the best match
// found, or -1 if nothing matched at all.
func (p *Parser) MatchEnd() int {
	return p.result.matchEnd
}

// ErrorMsg reports the unexpected character (or end of stream) at
// ErrorPos, for diagnostic display. It does not enumerate in-progress
// productions at that offset — none of the three backends currently
// expose their internal state set, stack, or memo table for that purpose
// (see DESIGN.md).
func (p *Parser) ErrorMsg() string {
	if p.lastErr != nil {
		return p.lastErr.Error()
	}
	pos := p.ErrorPos()
	if pos < 0 || pos >= len(p.text) {
		return "unexpected end of stream"
	}
	return fmt.Sprintf("unexpected character %q at offset %d", p.text[pos], pos)
}

// ErrorPos is the largest input offset reached by the best match, i.e. the
// offset at which recognition stalled.
func (p *Parser) ErrorPos() int {
	if p.result.matchEnd < 0 {
		return 0
	}
	return p.result.matchEnd
}

// Tree returns the root of the most recent match's parse tree.
func (p *Parser) Tree() (forest.TreeID, bool) {
	return p.result.tree, p.result.hasTree
}

// InfoTree builds (and caches) the loss-free information tree covering the
// most recent match, for syntax highlighting or pretty-printing. Returns
// nil if there is no tree to build one from.
func (p *Parser) InfoTree() infotree.Node {
	if p.infoTree != nil {
		return p.infoTree
	}
	if !p.result.hasTree {
		return nil
	}
	p.infoTree = infotree.Build(p.store, p.g, p.text, p.result.tree, p.result.matchEnd)
	return p.infoTree
}

// StateCount reports how many internal states/stack-nodes/memo-frames (the
// unit varies per backend) the most recent Parse call allocated — a rough
// proxy for how much work the grammar's ambiguity cost.
func (p *Parser) StateCount() int {
	return p.result.stateCount
}

// ByteCount returns the length of the input passed to the most recent
// Parse call.
func (p *Parser) ByteCount() int {
	return len(p.text)
}

// Store exposes the shared tree arena, for callers walking the tree
// directly via forest.Store.Node rather than through InfoTree.
func (p *Parser) Store() *forest.Store {
	return p.store
}
