package infotree

import (
	"testing"

	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/grammar"
	"github.com/pillwright/cfparse/grammar/regex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSum builds a forest for "1+2" parsed as Sum -> Num '+' Num.
func buildSum(t *testing.T) (*forest.Store, *grammar.Grammar, forest.TreeID, []rune) {
	t.Helper()
	g := grammar.New()
	num := g.AddRule("Num")
	g.AddProduction(&grammar.Production{Rule: num, Tokens: []grammar.Token{
		{Kind: grammar.TokRegex, Regex: regex.MustNew("[0-9]+")},
	}})

	sum := g.AddRule("Sum")
	p := &grammar.Production{Rule: sum, Tokens: []grammar.Token{
		{Kind: grammar.TokRule, Rule: num, Target: 0, Color: "number"},
		{Kind: grammar.TokRegex, Regex: regex.MustNew("\\+"), Target: -1, Color: "operator"},
		{Kind: grammar.TokRule, Rule: num, Target: 1, Color: "number"},
	}}
	g.AddProduction(p)

	s := forest.NewStore().WithGrammar(g)
	n1 := s.PushLeaf(0)
	num1 := s.PushNode(0, numProdID(g, num), []forest.TreeID{n1})
	plus := s.PushLeaf(1)
	n2 := s.PushLeaf(2)
	num2 := s.PushNode(2, numProdID(g, num), []forest.TreeID{n2})
	root := s.PushNode(0, p.ID, []forest.TreeID{num1, plus, num2})
	return s, g, root, []rune("1+2")
}

func numProdID(g *grammar.Grammar, rule grammar.RuleID) grammar.ProdID {
	return g.Productions(rule)[0]
}

func TestBuildAndFormat(t *testing.T) {
	s, g, root, text := buildSum(t)
	tree := Build(s, g, text, root, 3)
	str := Format(tree)
	assert.Contains(t, str, `"1"`)
	assert.Contains(t, str, `"+"`)
	assert.Contains(t, str, `"2"`)
}

func TestLeafAt(t *testing.T) {
	s, g, root, text := buildSum(t)
	tree := Build(s, g, text, root, 3)

	leaf := LeafAt(tree, 1)
	require.NotNil(t, leaf)
	assert.Equal(t, "+", leaf.Text)
	assert.Equal(t, "operator", leaf.Color)
}

func TestLeafAtOutOfRange(t *testing.T) {
	s, g, root, text := buildSum(t)
	tree := Build(s, g, text, root, 3)
	assert.Nil(t, LeafAt(tree, 10))
}
