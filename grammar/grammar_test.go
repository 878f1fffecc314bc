package grammar

import (
	"testing"

	"github.com/pillwright/cfparse/grammar/regex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRuleIdempotent(t *testing.T) {
	g := New()
	a := g.AddRule("Expr")
	b := g.AddRule("Expr")
	assert.Equal(t, a, b)

	id, ok := g.RuleNamed("Expr")
	require.True(t, ok)
	assert.Equal(t, a, id)
}

func TestNullableDirect(t *testing.T) {
	g := New()
	opt := g.AddRule("Opt")
	g.AddProduction(&Production{Rule: opt, Tokens: nil})
	assert.True(t, g.Nullable(opt))

	req := g.AddRule("Req")
	g.AddProduction(&Production{Rule: req, Tokens: []Token{
		{Kind: TokRegex, Regex: regex.MustNew("a")},
	}})
	assert.False(t, g.Nullable(req))
}

func TestNullableThroughRuleReference(t *testing.T) {
	g := New()
	opt := g.AddRule("Opt")
	g.AddProduction(&Production{Rule: opt})

	wrapper := g.AddRule("Wrapper")
	g.AddProduction(&Production{Rule: wrapper, Tokens: []Token{
		{Kind: TokRule, Rule: opt},
	}})
	assert.True(t, g.Nullable(wrapper))
}

func TestVirtualProductionsOfRepeatAndESkipRules(t *testing.T) {
	g := New()
	list := g.AddRule("List")
	p := &Production{Rule: list, Repeat: RepStar, RepStart: 1, RepEnd: 2, Tokens: []Token{
		{Kind: TokRegex, Regex: regex.MustNew("\\[")},
		{Kind: TokRegex, Regex: regex.MustNew("[0-9]+")},
		{Kind: TokRegex, Regex: regex.MustNew("\\]")},
	}}
	g.AddProduction(p)

	rep := RepeatRuleID(p.ID)
	prods := g.VirtualProductions(rep)
	require.Len(t, prods, 2)
	assert.Equal(t, EpsilonProdID(p.ID), prods[0])
	assert.Equal(t, RepeatProdID(p.ID), prods[1])
	assert.False(t, IsTransparent(RepeatProdID(p.ID))) // prodRepeat, not prodESkip
	assert.True(t, IsTransparent(ESkipProdID(p.ID)))

	skip := ESkipRuleID(p.ID)
	prods = g.VirtualProductions(skip)
	require.Len(t, prods, 1)
	assert.Equal(t, ESkipProdID(p.ID), prods[0])
}

func TestProductionIterStarRange(t *testing.T) {
	p := &Production{Repeat: RepStar, RepStart: 1, RepEnd: 2, Tokens: []Token{
		{Kind: TokRegex}, {Kind: TokRegex}, {Kind: TokRegex},
	}}

	it := FirstA(p)
	assert.Equal(t, 0, it.Position())

	it = it.NextA() // -> 1, RepStart
	assert.True(t, it.AtRepStart())

	// Taking the B branch at RepStart skips straight to RepEnd (zero reps).
	skip := it.NextB()
	assert.True(t, skip.Valid())
	assert.Equal(t, 2, skip.Position())

	// Taking A enters the range; at RepEnd, B loops back to RepStart.
	it = it.NextA() // -> 2, RepEnd
	assert.True(t, it.AtRepEnd())
	loop := it.NextB()
	assert.True(t, loop.Valid())
	assert.Equal(t, 1, loop.Position())

	end := it.NextA() // -> 3, end of tokens
	assert.True(t, end.End())
	assert.False(t, end.NextA().Valid())
}

func TestProductionIterOptionalHasNoLoopBranch(t *testing.T) {
	p := &Production{Repeat: RepOptional, RepStart: 0, RepEnd: 1, Tokens: []Token{
		{Kind: TokRegex},
	}}
	it := FirstA(p)
	assert.True(t, it.AtRepStart())
	skip := it.NextB()
	assert.Equal(t, 1, skip.Position())
	// At RepEnd (== RepStart+1 == len(Tokens), the end), NextB is invalid
	// for '?' since there is no loop-back branch.
	assert.False(t, skip.NextB().Valid())
}

func TestSameSyntax(t *testing.T) {
	g1 := New()
	r1 := g1.AddRule("A")
	g1.AddProduction(&Production{Rule: r1, Tokens: []Token{{Kind: TokRegex, Regex: regex.MustNew("a")}}})

	g2 := New()
	r2 := g2.AddRule("A")
	g2.AddProduction(&Production{Rule: r2, Tokens: []Token{{Kind: TokRegex, Regex: regex.MustNew("a")}}})

	assert.True(t, g1.SameSyntax(g2))
}

// TestSameSyntaxIgnoresRegistrationOrder builds the same grammar twice with
// rules and productions added in a different order each time, so the two
// instances assign different raw RuleID/ProdID values to structurally
// matching rules/productions. SameSyntax must still report them equal.
func TestSameSyntaxIgnoresRegistrationOrder(t *testing.T) {
	g1 := New()
	a1 := g1.AddRule("A")
	b1 := g1.AddRule("B")
	g1.AddProduction(&Production{Rule: a1, Tokens: []Token{{Kind: TokRegex, Regex: regex.MustNew("a")}}})
	g1.AddProduction(&Production{Rule: a1, Tokens: []Token{{Kind: TokRule, Rule: b1, Target: 0}}})
	g1.AddProduction(&Production{Rule: b1, Tokens: []Token{{Kind: TokRegex, Regex: regex.MustNew("b")}}})

	g2 := New()
	b2 := g2.AddRule("B")
	a2 := g2.AddRule("A")
	// Same two A-productions as g1, registered in the opposite order.
	g2.AddProduction(&Production{Rule: a2, Tokens: []Token{{Kind: TokRule, Rule: b2, Target: 0}}})
	g2.AddProduction(&Production{Rule: a2, Tokens: []Token{{Kind: TokRegex, Regex: regex.MustNew("a")}}})
	g2.AddProduction(&Production{Rule: b2, Tokens: []Token{{Kind: TokRegex, Regex: regex.MustNew("b")}}})

	assert.NotEqual(t, a1, a2, "test is only meaningful if ids actually differ across instances")
	assert.True(t, g1.SameSyntax(g2))
	assert.True(t, g2.SameSyntax(g1))
}

// TestSameSyntaxDetectsStructuralDifference guards against SameSyntax
// degenerating into "same rule/production counts" after the order-
// insensitive rewrite.
func TestSameSyntaxDetectsStructuralDifference(t *testing.T) {
	g1 := New()
	r1 := g1.AddRule("A")
	g1.AddProduction(&Production{Rule: r1, Tokens: []Token{{Kind: TokRegex, Regex: regex.MustNew("a")}}})

	g2 := New()
	r2 := g2.AddRule("A")
	g2.AddProduction(&Production{Rule: r2, Tokens: []Token{{Kind: TokRegex, Regex: regex.MustNew("b")}}})

	assert.False(t, g1.SameSyntax(g2))
}
