/*
Cfdump builds a small demonstration grammar in-process and dumps the chosen
backend's parse of a fixed or user-supplied input to stdout, as an info
tree. There is no grammar-file loader in this module (spec.md leaves the
BNF surface syntax to an external collaborator), so unlike a real driver
cfdump picks its grammar from a fixed menu rather than reading one.

Usage:

	cfdump [flags]

The flags are:

	-b, --backend NAME
		Which backend to run: earley (default), glr, or gll.

	-g, --grammar NAME
		Which demonstration grammar to parse: sentence (default) or arith.

	-i, --input TEXT
		Override the grammar's default sample input.
*/
package main

import (
	"fmt"
	"os"

	"github.com/pillwright/cfparse/grammar"
	"github.com/pillwright/cfparse/grammar/regex"
	"github.com/pillwright/cfparse/infotree"
	"github.com/pillwright/cfparse/parser"
	"github.com/spf13/pflag"
)

const (
	ExitSuccess = iota
	ExitGrammarError
	ExitParseFailure
)

var (
	returnCode  = ExitSuccess
	flagBackend = pflag.StringP("backend", "b", "earley", "Backend to run: earley, glr, or gll")
	flagGrammar = pflag.StringP("grammar", "g", "sentence", "Demonstration grammar: sentence or arith")
	flagInput   = pflag.StringP("input", "i", "", "Input text to parse (defaults to the grammar's own sample)")
)

func main() {
	defer func() { os.Exit(returnCode) }()
	pflag.Parse()

	var backend parser.Backend
	switch *flagBackend {
	case "glr":
		backend = parser.GLR
	case "gll":
		backend = parser.GLL
	case "earley":
		backend = parser.Earley
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown backend %q (want earley, glr, or gll)\n", *flagBackend)
		returnCode = ExitGrammarError
		return
	}

	var (
		root  grammar.RuleID
		g     *parser.Parser
		input string
	)
	g = parser.New(parser.WithBackend(backend), parser.GenerateTree())
	switch *flagGrammar {
	case "arith":
		root, input = buildArithGrammar(g)
	case "sentence":
		root, input = buildSentenceGrammar(g)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown grammar %q (want sentence or arith)\n", *flagGrammar)
		returnCode = ExitGrammarError
		return
	}
	if *flagInput != "" {
		input = *flagInput
	}

	ok, err := g.Parse(root, []rune(input))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "no match: %s\n", g.ErrorMsg())
		returnCode = ExitParseFailure
		return
	}

	fmt.Printf("input:     %q\n", input)
	fmt.Printf("backend:   %s\n", backend)
	fmt.Printf("match_end: %d (of %d)\n", g.MatchEnd(), g.ByteCount())
	fmt.Printf("states:    %d\n", g.StateCount())
	if tree := g.InfoTree(); tree != nil {
		fmt.Println(infotree.Format(tree))
	}
}

// buildSentenceGrammar registers spec.md §8 scenario 1: a tiny subject-verb
// sentence grammar, returning its start rule and the sample sentence
// "the cat runs".
func buildSentenceGrammar(p *parser.Parser) (grammar.RuleID, string) {
	ident := p.AddRule("Ident")
	p.AddProduction(&grammar.Production{Rule: ident, Tokens: []grammar.Token{
		{Kind: grammar.TokRegex, Regex: regex.MustNew("[a-z]+"), Target: 0},
	}})

	sentence := p.AddRule("Sentence")
	p.AddProduction(&grammar.Production{Rule: sentence, Tokens: []grammar.Token{
		{Kind: grammar.TokRegex, Regex: regex.MustNew("the")},
		{Kind: grammar.TokRegex, Regex: regex.MustNew(" ")},
		{Kind: grammar.TokRule, Rule: ident, Target: 0},
		{Kind: grammar.TokRegex, Regex: regex.MustNew(" ")},
		{Kind: grammar.TokRegex, Regex: regex.MustNew("runs")},
	}})
	return sentence, "the cat runs"
}

// buildArithGrammar registers spec.md §8 scenario 2: the classic ambiguous
// E -> E "+" E [0] | E "*" E [1] | number grammar, where the ambiguity is
// resolved purely by production priority: the higher-priority '*'
// production wins at the root, so the sample "1+2*3" parses as (1+2)*3.
// Returns the start rule and that sample.
func buildArithGrammar(p *parser.Parser) (grammar.RuleID, string) {
	expr := p.AddRule("E")
	num := grammar.Token{Kind: grammar.TokRegex, Regex: regex.MustNew("[0-9]+")}
	p.AddProduction(&grammar.Production{Rule: expr, Priority: 0, Tokens: []grammar.Token{
		{Kind: grammar.TokRule, Rule: expr},
		{Kind: grammar.TokRegex, Regex: regex.MustNew("\\+")},
		{Kind: grammar.TokRule, Rule: expr},
	}})
	p.AddProduction(&grammar.Production{Rule: expr, Priority: 1, Tokens: []grammar.Token{
		{Kind: grammar.TokRule, Rule: expr},
		{Kind: grammar.TokRegex, Regex: regex.MustNew("\\*")},
		{Kind: grammar.TokRule, Rule: expr},
	}})
	p.AddProduction(&grammar.Production{Rule: expr, Tokens: []grammar.Token{num}})
	return expr, "1+2*3"
}
