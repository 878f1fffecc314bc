/*
Package infotree builds the loss-free information tree from a parsed forest
node: every byte of the original input is accounted for by exactly one leaf,
including whitespace and comments matched by delimiter tokens, so the tree
can drive syntax highlighting or be pretty-printed back into source text.

Grounded on Compiler/Syntax/Earley/Parser.cpp's Parser::infoTree: an
internal node's children span is derived from consecutive start positions
(this node's Pos, then each child's Pos, then the next child's Pos, ...,
then the enclosing end), rather than storing an explicit end on every node —
the same trick Parser::infoTree uses when walking the Earley state chain
(at->prev giving a child's start, atPtr giving its end). The
visitor/walk shape follows gorgo's lr/sppf package (RuleNode/Cursor).
*/
package infotree

import (
	"strconv"
	"strings"

	"github.com/pillwright/cfparse"
	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/grammar"
)

// Node is either a Leaf or an Internal.
type Node interface {
	Span() cfparse.Span
	isInfoNode()
}

// Leaf is a terminal: the literal text it matched, its semantic color (if
// any), and whether it came from the grammar's delimiter rule (whitespace,
// comments — present for losslessness, usually skipped by consumers).
type Leaf struct {
	span      cfparse.Span
	Text      string
	Color     string
	Delimiter bool
}

func (l *Leaf) Span() cfparse.Span { return l.span }
func (l *Leaf) isInfoNode()        {}

// IndentDescriptor marks the subrange of an Internal node's children across
// which an indentation rule (block open, block close, line continuation)
// applies.
type IndentDescriptor struct {
	Start, End int // child indices, not source offsets
	Kind       grammar.IndentKind
}

// Internal is a reduction: the production applied and its ordered children.
type Internal struct {
	span       cfparse.Span
	Production grammar.ProdID
	Children   []Node
	Indent     *IndentDescriptor
	Delimiter  bool
	Color      string
}

func (n *Internal) Span() cfparse.Span { return n.span }
func (n *Internal) isInfoNode()        {}

// Build walks the tree rooted at id in store, consulting g for production
// metadata (tokens, indent range, colors) and text for leaf substrings, and
// returns the corresponding information tree. end is the source offset the
// whole subtree finishes at; callers building a top-level tree pass the
// parser's overall match end.
func Build(store *forest.Store, g *grammar.Grammar, text []rune, id forest.TreeID, end int) Node {
	n := store.Node(id)
	start := n.Pos
	if n.IsLeaf() {
		return &Leaf{span: cfparse.NewSpan(start, end), Text: string(text[start:end])}
	}

	prod, _ := g.Production(n.Production)
	children := make([]Node, len(n.Children))
	var indent *IndentDescriptor
	if prod != nil && prod.IndentKind != grammar.IndentNone {
		indent = &IndentDescriptor{Kind: prod.IndentKind}
	}

	for i, childID := range n.Children {
		childEnd := end
		if i+1 < len(n.Children) {
			childEnd = store.Node(n.Children[i+1]).Pos
		}
		child := Build(store, g, text, childID, childEnd)

		// Tokens and children line up one-to-one only for a production with
		// no repeat range collapsed away; best-effort only past that point
		// (a full correspondence would require carrying the repetition
		// count through the reduction, which the flat tree node does not).
		if prod != nil && i < len(prod.Tokens) {
			tok := prod.Tokens[i]
			switch c := child.(type) {
			case *Leaf:
				c.Color = tok.Color
				c.Delimiter = tok.Kind == grammar.TokDelim
			case *Internal:
				c.Color = tok.Color
				c.Delimiter = tok.Kind == grammar.TokDelim
			}
			if indent != nil {
				if i == prod.IndentStart {
					indent.Start = i
				}
				if i == prod.IndentEnd {
					indent.End = i
				}
			}
		}
		children[i] = child
	}

	return &Internal{span: cfparse.NewSpan(start, end), Production: n.Production, Children: children, Indent: indent}
}

// LeafAt returns the leaf covering source offset, or nil if offset lies
// outside n's span.
func LeafAt(n Node, offset int) *Leaf {
	if offset < n.Span().From() || offset >= n.Span().To() {
		return nil
	}
	switch t := n.(type) {
	case *Leaf:
		return t
	case *Internal:
		for _, c := range t.Children {
			if l := LeafAt(c, offset); l != nil {
				return l
			}
		}
	}
	return nil
}

// IndentAt returns the innermost IndentDescriptor (and the node it belongs
// to) among the nodes whose span covers offset, walking from the root down
// to the deepest match. Only the node's span is checked; the descriptor's
// child range is not consulted.
func IndentAt(n Node, offset int) (*Internal, *IndentDescriptor) {
	internal, ok := n.(*Internal)
	if !ok || offset < n.Span().From() || offset >= n.Span().To() {
		return nil, nil
	}
	for _, c := range internal.Children {
		if found, ind := IndentAt(c, offset); found != nil {
			return found, ind
		}
	}
	if internal.Indent != nil {
		return internal, internal.Indent
	}
	return nil, nil
}

// Format renders n as a parenthesized s-expression for debugging, e.g.
// "(prod#3 \"1\" \"+\" \"2\")".
func Format(n Node) string {
	var b strings.Builder
	format(&b, n)
	return b.String()
}

func format(b *strings.Builder, n Node) {
	switch t := n.(type) {
	case *Leaf:
		b.WriteByte('"')
		b.WriteString(t.Text)
		b.WriteByte('"')
	case *Internal:
		b.WriteByte('(')
		b.WriteString("prod#")
		b.WriteString(strconv.FormatUint(uint64(t.Production), 10))
		for _, c := range t.Children {
			b.WriteByte(' ')
			format(b, c)
		}
		b.WriteByte(')')
	}
}
