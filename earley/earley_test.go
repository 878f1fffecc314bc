package earley

import (
	"testing"

	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/grammar"
	"github.com/pillwright/cfparse/grammar/regex"
	"github.com/pillwright/cfparse/infotree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSumGrammar builds: Sum -> Num ('+' Num)*   Num -> [0-9]+
func buildSumGrammar() (*grammar.Grammar, grammar.RuleID) {
	g := grammar.New()
	num := g.AddRule("Num")
	g.AddProduction(&grammar.Production{Rule: num, Tokens: []grammar.Token{
		{Kind: grammar.TokRegex, Regex: regex.MustNew("[0-9]+")},
	}})

	sum := g.AddRule("Sum")
	g.AddProduction(&grammar.Production{
		Rule: sum,
		Tokens: []grammar.Token{
			{Kind: grammar.TokRule, Rule: num},
			{Kind: grammar.TokRegex, Regex: regex.MustNew("\\+")},
			{Kind: grammar.TokRule, Rule: num},
		},
		Repeat:   grammar.RepStar,
		RepStart: 1,
		RepEnd:   3,
	})
	return g, sum
}

func TestParseSimpleSum(t *testing.T) {
	g, sum := buildSumGrammar()
	store := forest.NewStore()
	p := NewParser(g, store, GenerateTree())

	res := p.Parse(sum, []rune("1+2+3"))
	require.True(t, res.Ok)
	assert.Equal(t, 5, res.MatchEnd)
	require.True(t, res.HasTree)

	tree := infotree.Build(store.WithGrammar(g), g, []rune("1+2+3"), res.Tree, res.MatchEnd)
	assert.Equal(t, 0, tree.Span().From())
	assert.Equal(t, 5, tree.Span().To())
}

func TestParseSingleNumber(t *testing.T) {
	g, sum := buildSumGrammar()
	store := forest.NewStore()
	p := NewParser(g, store, GenerateTree())

	res := p.Parse(sum, []rune("42"))
	require.True(t, res.Ok)
	assert.Equal(t, 2, res.MatchEnd)
}

func TestParseRejectsGarbage(t *testing.T) {
	g, sum := buildSumGrammar()
	store := forest.NewStore()
	p := NewParser(g, store)

	res := p.Parse(sum, []rune("abc"))
	assert.False(t, res.Ok)
}

func TestParsePrefixReportsFurthestMatch(t *testing.T) {
	g, sum := buildSumGrammar()
	store := forest.NewStore()
	p := NewParser(g, store)

	res := p.Parse(sum, []rune("1+2+"))
	require.True(t, res.Ok)
	assert.Equal(t, 3, res.MatchEnd)
}

// TestAmbiguousGrammarPicksHigherPriority builds spec.md §8 scenario 2's
// classically ambiguous expression grammar (E -> E '+' E | E '*' E | Num)
// and checks that the winning tree's root is the higher-priority '*'
// production, not merely that some tree was found.
func TestAmbiguousGrammarPicksHigherPriority(t *testing.T) {
	g := grammar.New()
	num := g.AddRule("Num")
	g.AddProduction(&grammar.Production{Rule: num, Tokens: []grammar.Token{
		{Kind: grammar.TokRegex, Regex: regex.MustNew("[0-9]+")},
	}})

	expr := g.AddRule("Expr")
	g.AddProduction(&grammar.Production{Rule: expr, Tokens: []grammar.Token{
		{Kind: grammar.TokRule, Rule: num},
	}})
	g.AddProduction(&grammar.Production{
		Rule:     expr,
		Priority: 2,
		Tokens: []grammar.Token{
			{Kind: grammar.TokRule, Rule: expr},
			{Kind: grammar.TokRegex, Regex: regex.MustNew("\\*")},
			{Kind: grammar.TokRule, Rule: expr},
		},
	})
	g.AddProduction(&grammar.Production{
		Rule:     expr,
		Priority: 1,
		Tokens: []grammar.Token{
			{Kind: grammar.TokRule, Rule: expr},
			{Kind: grammar.TokRegex, Regex: regex.MustNew("\\+")},
			{Kind: grammar.TokRule, Rule: expr},
		},
	})

	store := forest.NewStore()
	p := NewParser(g, store, GenerateTree())
	res := p.Parse(expr, []rune("1+2*3"))
	require.True(t, res.Ok)
	assert.Equal(t, 5, res.MatchEnd)
	require.True(t, res.HasTree)

	root := store.Node(res.Tree)
	rootProd, ok := g.Production(root.Production)
	require.True(t, ok)
	assert.Equal(t, 2, rootProd.Priority, "expected the higher-priority '*' production to win the root")
}

// buildGreedyStarGrammar builds spec.md §8 scenario 3's grammar exactly:
// A -> "a"* "a".
func buildGreedyStarGrammar() (*grammar.Grammar, grammar.RuleID) {
	g := grammar.New()
	a := g.AddRule("A")
	g.AddProduction(&grammar.Production{
		Rule: a,
		Tokens: []grammar.Token{
			{Kind: grammar.TokRegex, Regex: regex.MustNew("a")},
			{Kind: grammar.TokRegex, Regex: regex.MustNew("a")},
		},
		Repeat:   grammar.RepStar,
		RepStart: 0,
		RepEnd:   1,
	})
	return g, a
}

// TestGreedyStarPrefersLongerDerivation is spec.md §8 scenario 3, verbatim:
// input "aaa" accepts with the '*' matching two a's, not zero or one.
func TestGreedyStarPrefersLongerDerivation(t *testing.T) {
	g, a := buildGreedyStarGrammar()
	store := forest.NewStore()
	p := NewParser(g, store, GenerateTree())

	res := p.Parse(a, []rune("aaa"))
	require.True(t, res.Ok)
	assert.Equal(t, 3, res.MatchEnd)
	require.True(t, res.HasTree)

	root := store.Node(res.Tree)
	// Two repetitions of the starred "a" plus the one mandatory trailing
	// "a" is three leaf children; zero or one repetitions would leave a
	// suffix of the input unconsumed and so never reach MatchEnd == 3.
	assert.Len(t, root.Children, 3)
}
