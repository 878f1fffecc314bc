package glr

import (
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/pillwright/cfparse/forest"
)

// nodeID addresses a gssNode within a single parse's graph-structured
// stack.
type nodeID int

// edge is one incoming link of a gssNode: the previous node, and the tree
// (if any) built for the symbol consumed crossing this edge. Shifting a
// regex token or completing a rule both produce an edge; a completed
// virtual epsilon production produces an edge too, carrying its (empty)
// tree, so a reduce of a right-hand side of length N is always a walk back
// of exactly N edges (see paths) with no special-casing for zero-width steps.
type edge struct {
	prev nodeID
	tree forest.TreeID
}

// gssNode is one node of the graph-structured stack: a CFSM state reached
// at a given input offset, and every distinct way a derivation has reached
// it so far. Two stack tops that land on the same (state, pos) merge into
// one node (new incoming edges appended) rather than duplicating work —
// this is what keeps GLR's exploration of ambiguous grammars polynomial
// instead of tracking every derivation as a wholly separate stack.
type gssNode struct {
	id       nodeID
	state    int
	pos      int
	incoming []edge
}

// gss is the graph-structured stack for one Parse call. Nodes are stored in
// an arraylist, the same append-and-index-by-small-int table the cfsm's
// state table uses, rather than a plain slice.
type gss struct {
	nodes *arraylist.List
	byKey map[[2]int]nodeID
}

func newGSS() *gss {
	return &gss{nodes: arraylist.New(), byKey: make(map[[2]int]nodeID)}
}

// node returns the node by id.
func (s *gss) node(id nodeID) *gssNode {
	v, _ := s.nodes.Get(int(id))
	return v.(*gssNode)
}

// getOrCreate returns the node for (state, pos), creating it if absent.
// The second result reports whether it was newly created.
func (s *gss) getOrCreate(state, pos int) (*gssNode, bool) {
	key := [2]int{state, pos}
	if id, ok := s.byKey[key]; ok {
		return s.node(id), false
	}
	id := nodeID(s.nodes.Size())
	n := &gssNode{id: id, state: state, pos: pos}
	s.nodes.Add(n)
	s.byKey[key] = id
	return n, true
}

// addEdge links from onto prev via an edge carrying tree. A second edge
// discovered from the very same prev is not a new path — it is an
// alternative derivation of the one step from prev to from — so it is
// merged rather than appended: an identical (prev, tree) rediscovery
// (routine during the fixed-point closure at one offset) is a no-op, and a
// differing tree is resolved via store.Compare, with the higher-priority
// tree replacing the one already on the edge in place. Reports whether
// from's incoming set actually changed (new edge appended, or an existing
// edge's tree upgraded), which the caller uses to decide whether anything
// that already walked through from needs to be reduced again ("limited
// reduce", spec.md §4.F) — a false return, same as before this existed,
// means from was already known in exactly this shape.
func (s *gss) addEdge(from *gssNode, prev nodeID, tree forest.TreeID, store *forest.Store) bool {
	for i, e := range from.incoming {
		if e.prev != prev {
			continue
		}
		if e.tree == tree {
			return false
		}
		if store.Compare(tree, e.tree) == forest.Higher {
			from.incoming[i].tree = tree
			return true
		}
		return false
	}
	from.incoming = append(from.incoming, edge{prev: prev, tree: tree})
	return true
}

// path is one way of walking back a fixed number of edges from a gssNode:
// the node the walk bottomed out at (the frame the reduced production
// started from), and the trees crossed, oldest first.
type path struct {
	origin *gssNode
	trees  []forest.TreeID
}

// paths enumerates every distinct way to walk back steps edges from n.
// A production with repeat ranges reduced through the virtual-rule
// mechanism always has a fixed RHS length (see cfsm.go's effProd), so
// "walk back N edges" is well defined independent of how many times any
// inner repeat actually looped — that looping is already baked into how
// many edges separate the repeat's virtual-rule reduction from its own
// start.
func (s *gss) paths(n *gssNode, steps int) []path {
	if steps == 0 {
		return []path{{origin: n}}
	}
	var out []path
	for _, e := range n.incoming {
		prev := s.node(e.prev)
		for _, rest := range s.paths(prev, steps-1) {
			trees := make([]forest.TreeID, 0, len(rest.trees)+1)
			trees = append(trees, rest.trees...)
			trees = append(trees, e.tree)
			out = append(out, path{origin: rest.origin, trees: trees})
		}
	}
	return out
}
