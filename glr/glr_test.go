package glr

import (
	"testing"

	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/grammar"
	"github.com/pillwright/cfparse/grammar/regex"
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

// TestAmbiguousGrammarPicksHigherPriority builds a classically ambiguous
// expression grammar (E -> E '+' E | E '*' E | Num) and checks that Parse
// still reports a single best tree via priority rather than erroring out.
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

	// The whole string can be parsed as either the '*' production applied
	// at the top (splitting "1+2" | "3") or the '+' production applied at
	// the top (splitting "1" | "2*3"); both cover the same (pos, end). Only
	// the '*' alternative carries the higher declared priority, so it must
	// be the one forest.Store.Compare kept as the root.
	root := store.Node(res.Tree)
	rootProd, ok := g.Production(root.Production)
	require.True(t, ok)
	assert.Equal(t, 2, rootProd.Priority, "expected the higher-priority '*' production to win the root")
}
