// Package precgraph implements the precedence relation graph: a directed
// graph of ">" relations between tokens, the equivalence-class grouping
// that collapses nodes with identical neighbor sets, transitive
// reduction, and DOT emission for diagnostic visualization.
package precgraph

import "sort"

// NodeID indexes a Graph's node slice. IDs [0, nsyms) correspond 1:1 to
// symbol numbers, one node per symbol; IDs >= nsyms are synthetic group
// nodes allocated as grouping proceeds.
type NodeID int

const NilNode NodeID = -1

// Node is one precedence-graph vertex: either a plain symbol or a
// synthetic group representing an equivalence class of symbols with
// identical successor/predecessor sets.
type Node struct {
	id   NodeID
	succ []NodeID // sorted, deduplicated
	pred []NodeID // sorted, deduplicated

	// isGroup, membersHead and groupNext model the group-chain structure:
	// a plain member's GroupID points at the
	// group it was absorbed into (NilNode if never grouped); group nodes
	// chain their members via GroupNext starting at MembersHead.
	isGroup     bool
	membersHead NodeID
	groupNext   NodeID
	groupID     NodeID
}

func (n *Node) IsGroup() bool     { return n.isGroup }
func (n *Node) OutDegree() int    { return len(n.succ) }
func (n *Node) InDegree() int     { return len(n.pred) }
func (n *Node) Succ() []NodeID    { return n.succ }
func (n *Node) Pred() []NodeID    { return n.pred }
func (n *Node) GroupID() NodeID   { return n.groupID }
func (n *Node) MembersHead() NodeID { return n.membersHead }
func (n *Node) GroupNext() NodeID { return n.groupNext }

// Members walks a group node's member chain.
func (g *Graph) Members(group NodeID) []NodeID {
	n := g.node(group)
	if !n.isGroup {
		return nil
	}
	var out []NodeID
	for m := n.membersHead; m != NilNode; m = g.node(m).groupNext {
		out = append(out, m)
	}
	return out
}

// Graph is the precedence relation graph over nsyms symbol-backed nodes
// plus any group nodes GroupRelations allocates.
type Graph struct {
	nsyms       int
	nodes       []*Node
	usedAssoc   []bool
	initialized bool
}

// NewGraph returns an uninitialized Graph. RegisterPrecedence and
// RegisterAssoc both lazily initialize it on first use.
func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) ensureInit(nsyms int) {
	if g.initialized {
		return
	}
	g.nsyms = nsyms
	g.nodes = make([]*Node, nsyms)
	for i := range g.nodes {
		g.nodes[i] = &Node{id: NodeID(i), groupID: NilNode, groupNext: NilNode, membersHead: NilNode}
	}
	g.usedAssoc = make([]bool, nsyms)
	g.initialized = true
}

func (g *Graph) node(id NodeID) *Node {
	if id == NilNode || int(id) < 0 || int(id) >= len(g.nodes) || g.nodes[id] == nil {
		panic("precgraph: invalid node id")
	}
	return g.nodes[id]
}

// NSyms returns the symbol-backed node count the graph was initialized
// with (0 if RegisterPrecedence/RegisterAssoc were never called).
func (g *Graph) NSyms() int { return g.nsyms }

// Node exposes a node's edges and group membership for read-only use
// (diagnostics, DOT emission).
func (g *Graph) Node(id NodeID) *Node { return g.node(id) }

func insertSorted(list *[]NodeID, id NodeID) bool {
	i := sort.Search(len(*list), func(i int) bool { return (*list)[i] >= id })
	if i < len(*list) && (*list)[i] == id {
		return false
	}
	*list = append(*list, NilNode)
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = id
	return true
}

func removeID(list *[]NodeID, id NodeID) {
	i := sort.Search(len(*list), func(i int) bool { return (*list)[i] >= id })
	if i < len(*list) && (*list)[i] == id {
		*list = append((*list)[:i], (*list)[i+1:]...)
	}
}

// RegisterPrecedence records hi > lo: hi takes strictly higher precedence
// than lo. Re-registering the same pair is a no-op: outdegree/indegree
// only grow when an edge is actually new.
func (g *Graph) RegisterPrecedence(nsyms int, hi, lo NodeID) {
	g.ensureInit(nsyms)
	insertSorted(&g.nodes[hi].succ, lo)
	insertSorted(&g.nodes[lo].pred, hi)
}

// RegisterAssoc marks both i and j as having had their associativity
// consulted while resolving a conflict, lazily initializing usedAssoc on
// first use.
func (g *Graph) RegisterAssoc(nsyms int, i, j NodeID) {
	g.ensureInit(nsyms)
	g.usedAssoc[i] = true
	g.usedAssoc[j] = true
}

// UsedAssoc reports whether sym's associativity was ever consulted.
func (g *Graph) UsedAssoc(sym NodeID) bool {
	if !g.initialized || int(sym) >= len(g.usedAssoc) {
		return false
	}
	return g.usedAssoc[sym]
}
