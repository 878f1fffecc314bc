package glr

import (
	"testing"

	"github.com/pillwright/cfparse/grammar"
	"github.com/pillwright/cfparse/grammar/regex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlternativesOfOptionalYieldsPresentAndSkipForms(t *testing.T) {
	g := grammar.New()
	word := g.AddRule("Word")
	g.AddProduction(&grammar.Production{Rule: word, Tokens: []grammar.Token{
		{Kind: grammar.TokRegex, Regex: regex.MustNew("[a-z]+")},
	}})

	greet := g.AddRule("Greet")
	pid := g.AddProduction(&grammar.Production{
		Rule: greet,
		Tokens: []grammar.Token{
			{Kind: grammar.TokRegex, Regex: regex.MustNew("hi")},
			{Kind: grammar.TokRule, Rule: word},
		},
		Repeat:   grammar.RepOptional,
		RepStart: 0,
		RepEnd:   2,
	})

	v := newView(g)
	alts := v.alternativesOf(pid)
	require.Len(t, alts, 2)
	assert.Equal(t, 1, len(alts[0].tokens))
	assert.Equal(t, 0, len(alts[1].tokens))
	assert.True(t, grammar.IsTransparent(alts[1].id))
}

func TestCFSMStateOfDedupesIdenticalKernels(t *testing.T) {
	g, sum := buildSumGrammar()
	v := newView(g)
	c := newCFSM(v)

	var kernel []item
	for _, pred := range c.predictions(sum) {
		kernel = append(kernel, item{prod: pred, pos: 0})
	}
	id1 := c.stateOf(kernel)
	id2 := c.stateOf(kernel)
	assert.Equal(t, id1, id2)
}
