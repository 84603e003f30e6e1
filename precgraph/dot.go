package precgraph

import (
	"fmt"
	"io"
)

// Palette controls the colors DOT emission uses. The DOT writers use each
// color exactly as given; the zero value does not fall back to
// DefaultPalette's colors. config.Palette supplies the palette for a CLI
// run.
type Palette struct {
	BothDegreeOne  string
	TailDegreeOne  string
	HeadDegreeOne  string
	Default        string
	ReductionEdge  string
}

// DefaultPalette is bison's own literal color choices for precedence DOT
// output.
func DefaultPalette() Palette {
	return Palette{
		BothDegreeOne: "red",
		TailDegreeOne: "blue",
		HeadDegreeOne: "green",
		Default:       "black",
		ReductionEdge: "black",
	}
}

// Namer renders a node's label for DOT output. A group node's label is
// irrelevant to the legend; callers typically use the member symbols' text
// for plain nodes and a synthetic "group N" label for group nodes.
type Namer func(NodeID) string

func edgeColor(p Palette, tailOutDeg, headInDeg int) string {
	switch {
	case tailOutDeg == 1 && headInDeg == 1:
		return p.BothDegreeOne
	case tailOutDeg == 1:
		return p.TailDegreeOne
	case headInDeg == 1:
		return p.HeadDegreeOne
	default:
		return p.Default
	}
}

// WriteRelationDot emits the full precedence relation graph, including
// group clusters. Node ids are walked in descending order so that a
// group's `subgraph cluster_N` declaration
// always precedes its members' node statements, matching dot's
// forward-reference requirement for cluster anchors.
func (g *Graph) WriteRelationDot(w io.Writer, name string, namer Namer, p Palette) error {
	live := g.liveNodes()
	byDesc := make([]NodeID, len(live))
	copy(byDesc, live)
	for i, j := 0, len(byDesc)-1; i < j; i, j = i+1, j-1 {
		byDesc[i], byDesc[j] = byDesc[j], byDesc[i]
	}

	bw := &errWriter{w: w}
	fmt.Fprintf(bw, "digraph %s {\n", name)
	fmt.Fprintf(bw, "  subgraph cluster_legend {\n")
	fmt.Fprintf(bw, "    label=\"legend\";\n")
	fmt.Fprintf(bw, "    %s [label=\"both sides unique\", color=%s];\n", "legend_both", p.BothDegreeOne)
	fmt.Fprintf(bw, "    %s [label=\"source unique\", color=%s];\n", "legend_tail", p.TailDegreeOne)
	fmt.Fprintf(bw, "    %s [label=\"target unique\", color=%s];\n", "legend_head", p.HeadDegreeOne)
	fmt.Fprintf(bw, "  }\n")

	for _, id := range byDesc {
		n := g.node(id)
		if n.isGroup {
			fmt.Fprintf(bw, "  subgraph cluster_%d {\n", id)
			fmt.Fprintf(bw, "    label=\"group %d\";\n", id)
			for _, m := range g.Members(id) {
				fmt.Fprintf(bw, "    n%d [label=%q];\n", m, namer(m))
			}
			fmt.Fprintf(bw, "  }\n")
		} else if n.groupID == NilNode {
			fmt.Fprintf(bw, "  n%d [label=%q];\n", id, namer(id))
		}
	}

	for _, id := range live {
		n := g.node(id)
		for _, s := range n.succ {
			color := edgeColor(p, n.OutDegree(), g.node(s).InDegree())
			from, fromTail := dotAnchor(g, id)
			to, toHead := dotAnchor(g, s)
			fmt.Fprintf(bw, "  %s -> %s [color=%s%s%s];\n", from, to, color, fromTail, toHead)
		}
	}
	fmt.Fprintf(bw, "}\n")
	return bw.err
}

// dotAnchor returns the node statement id to use as an edge endpoint, plus
// an ltail/lhead attribute fragment when the endpoint is itself a group
// (dot requires edges between cluster members to name the cluster via
// ltail/lhead for the arrowhead to land on the cluster boundary).
func dotAnchor(g *Graph, id NodeID) (anchor string, clusterAttr string) {
	n := g.node(id)
	if n.isGroup {
		members := g.Members(id)
		return fmt.Sprintf("n%d", members[0]), fmt.Sprintf(", ltail=cluster_%d, lhead=cluster_%d", id, id)
	}
	return fmt.Sprintf("n%d", id), ""
}

// WriteTransitiveReductionDot emits the transitive reduction graph: same
// group-declaration protocol as the relation graph, every edge colored
// uniformly.
func (g *Graph) WriteTransitiveReductionDot(w io.Writer, name string, namer Namer, p Palette) error {
	edges := g.TransitiveReduction()
	live := g.liveNodes()
	byDesc := make([]NodeID, len(live))
	copy(byDesc, live)
	for i, j := 0, len(byDesc)-1; i < j; i, j = i+1, j-1 {
		byDesc[i], byDesc[j] = byDesc[j], byDesc[i]
	}

	bw := &errWriter{w: w}
	fmt.Fprintf(bw, "digraph %s {\n", name)
	for _, id := range byDesc {
		n := g.node(id)
		if n.isGroup {
			fmt.Fprintf(bw, "  subgraph cluster_%d {\n", id)
			fmt.Fprintf(bw, "    label=\"group %d\";\n", id)
			for _, m := range g.Members(id) {
				fmt.Fprintf(bw, "    n%d [label=%q];\n", m, namer(m))
			}
			fmt.Fprintf(bw, "  }\n")
		} else if n.groupID == NilNode {
			fmt.Fprintf(bw, "  n%d [label=%q];\n", id, namer(id))
		}
	}
	for _, e := range edges {
		from, fromTail := dotAnchor(g, e.From)
		to, toHead := dotAnchor(g, e.To)
		fmt.Fprintf(bw, "  %s -> %s [color=%s%s%s];\n", from, to, p.ReductionEdge, fromTail, toHead)
	}
	fmt.Fprintf(bw, "}\n")
	return bw.err
}

// errWriter lets a sequence of fmt.Fprintf calls share one error check,
// the same shape cmd/vartan's text/template renderers use to bail out on
// the first write failure.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
