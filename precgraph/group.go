package precgraph

// GroupRelations collapses nodes with identical successor and predecessor
// multisets (ignoring edges among the candidate group's own members) into
// synthetic group nodes. Only the first DFS pass is implemented; the
// second ("with internal links") pass the original tool carries never runs
// in practice and this reimplementation omits it.
//
// GroupRelations is idempotent to call on an already-grouped graph only in
// the sense that it will not re-group existing group nodes into bigger
// groups; call it exactly once after all register_precedence calls for a
// grammar have been made.
func (g *Graph) GroupRelations() {
	if g.nsyms == 0 {
		return
	}

	root := g.addVirtualRoot()
	visited := make(map[NodeID]bool)
	g.visit(root, visited)
	g.removeVirtualRoot(root)
}

// addVirtualRoot implements step 1: a scratch node with an edge to every
// currently root-less node (no predecessors, or its only predecessor is
// the virtual root) that has outgoing edges.
func (g *Graph) addVirtualRoot() NodeID {
	root := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{id: root, groupID: NilNode, groupNext: NilNode, membersHead: NilNode})
	rnode := g.nodes[root]

	for i := 0; i < g.nsyms; i++ {
		n := g.node(NodeID(i))
		if len(n.succ) == 0 {
			continue
		}
		if isRootless(n, root) {
			insertSorted(&rnode.succ, NodeID(i))
			insertSorted(&n.pred, root)
		}
	}
	return root
}

func isRootless(n *Node, root NodeID) bool {
	if len(n.pred) == 0 {
		return true
	}
	return len(n.pred) == 1 && n.pred[0] == root
}

// removeVirtualRoot undoes the scratch edges addVirtualRoot added and
// discards the root node; it never participates in transitive reduction
// or DOT output.
func (g *Graph) removeVirtualRoot(root NodeID) {
	rnode := g.node(root)
	for _, s := range rnode.succ {
		removeID(&g.node(s).pred, root)
	}
	g.nodes[root] = nil
}

// visit is the DFS of step 2-5: at each node, partition its successors
// into equivalence classes and collapse each non-trivial class into one
// group node, then recurse into the (now collapsed) successor set.
func (g *Graph) visit(n NodeID, visited map[NodeID]bool) {
	if visited[n] {
		return
	}
	visited[n] = true

	sons := append([]NodeID(nil), g.node(n).succ...)
	done := make(map[NodeID]bool, len(sons))

	for _, s := range sons {
		if done[s] {
			continue
		}
		if len(g.node(s).succ) == 0 {
			// A node with no outgoing edges is never a grouping candidate,
			// the same restriction addVirtualRoot applies when it decides
			// which nodes get a root edge. Without this, a sink reached by
			// two distinct paths (e.g. two leaf targets of a just-formed
			// group) would look "equivalent" to any other sink purely
			// because both have empty successor/predecessor sets once the
			// group's own edges are ignored, collapsing unrelated leaves
			// into a group they don't belong to.
			done[s] = true
			continue
		}
		class := []NodeID{s}
		inClass := map[NodeID]bool{s: true}
		for _, o := range sons {
			if o == s || done[o] || inClass[o] || len(g.node(o).succ) == 0 {
				continue
			}
			if g.equivalentIgnoring(s, o, inClass) {
				class = append(class, o)
				inClass[o] = true
			}
		}
		for _, m := range class {
			done[m] = true
		}
		if len(class) > 1 {
			g.collapse(class, inClass)
		}
	}

	for _, next := range append([]NodeID(nil), g.node(n).succ...) {
		g.visit(next, visited)
	}
}

// equivalentIgnoring reports whether a and b have identical successor and
// predecessor sets once edges into/out of the candidate group (`ignore`)
// are discarded from both sides: a two-list walk that skips any id
// currently marked as being in the candidate group.
func (g *Graph) equivalentIgnoring(a, b NodeID, ignore map[NodeID]bool) bool {
	na, nb := g.node(a), g.node(b)
	return sameFiltered(na.succ, nb.succ, ignore) && sameFiltered(na.pred, nb.pred, ignore)
}

func sameFiltered(a, b []NodeID, ignore map[NodeID]bool) bool {
	fa := filterOut(a, ignore)
	fb := filterOut(b, ignore)
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}

func filterOut(ids []NodeID, ignore map[NodeID]bool) []NodeID {
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if !ignore[id] {
			out = append(out, id)
		}
	}
	return out
}

// collapse allocates a group node for the given equivalence class (step
// 3), rewires every external neighbor to point at the group instead of an
// individual member, and drops intra-group edges (step 4).
func (g *Graph) collapse(members []NodeID, memberSet map[NodeID]bool) {
	group := NodeID(len(g.nodes))
	gnode := &Node{id: group, groupID: NilNode, groupNext: NilNode, membersHead: members[0], isGroup: true}
	g.nodes = append(g.nodes, gnode)

	for _, m := range members {
		mnode := g.node(m)
		for _, x := range mnode.pred {
			if memberSet[x] {
				continue
			}
			xnode := g.node(x)
			removeID(&xnode.succ, m)
			insertSorted(&xnode.succ, group)
			insertSorted(&gnode.pred, x)
		}
		for _, x := range mnode.succ {
			if memberSet[x] {
				continue
			}
			xnode := g.node(x)
			removeID(&xnode.pred, m)
			insertSorted(&xnode.pred, group)
			insertSorted(&gnode.succ, x)
		}
		mnode.succ = nil
		mnode.pred = nil
		mnode.groupID = group
	}

	for i, m := range members {
		if i+1 < len(members) {
			g.node(m).groupNext = members[i+1]
		} else {
			g.node(m).groupNext = NilNode
		}
	}
}
