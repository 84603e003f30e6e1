package precgraph

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPrecedenceIdempotent(t *testing.T) {
	g := NewGraph()
	g.RegisterPrecedence(4, 0, 1)
	g.RegisterPrecedence(4, 0, 1)

	assert.Equal(t, 1, g.Node(0).OutDegree(), "registering the same edge twice must not grow outdegree")
	assert.Equal(t, 1, g.Node(1).InDegree())
}

func TestTransitiveReductionDropsShortcut(t *testing.T) {
	g := NewGraph()
	// A>B, B>C, A>C
	g.RegisterPrecedence(3, 0, 1)
	g.RegisterPrecedence(3, 1, 2)
	g.RegisterPrecedence(3, 0, 2)

	edges := g.TransitiveReduction()
	want := map[[2]NodeID]bool{{0, 1}: true, {1, 2}: true}
	require.Len(t, edges, 2)
	for _, e := range edges {
		assert.True(t, want[[2]NodeID{e.From, e.To}], "unexpected edge %v->%v survived reduction", e.From, e.To)
	}
}

func TestGroupRelationsCollapsesIdenticalNeighborSets(t *testing.T) {
	g := NewGraph()
	// A=0, B=1, X=2, Y=3: A>X, A>Y, B>X, B>Y
	g.RegisterPrecedence(4, 0, 2)
	g.RegisterPrecedence(4, 0, 3)
	g.RegisterPrecedence(4, 1, 2)
	g.RegisterPrecedence(4, 1, 3)

	g.GroupRelations()

	groupID := g.Node(0).GroupID()
	require.NotEqual(t, NilNode, groupID, "A must have been absorbed into a group")
	assert.Equal(t, groupID, g.Node(1).GroupID(), "B must be in the same group as A")

	members := g.Members(groupID)
	assert.ElementsMatch(t, []NodeID{0, 1}, members)

	gnode := g.Node(groupID)
	assert.ElementsMatch(t, []NodeID{2, 3}, gnode.Succ(), "the group inherits the shared successor set")
}

func TestGroupRelationsLeavesUniqueNodesAlone(t *testing.T) {
	g := NewGraph()
	g.RegisterPrecedence(3, 0, 1)
	g.RegisterPrecedence(3, 1, 2)

	g.GroupRelations()

	assert.Equal(t, NilNode, g.Node(0).GroupID())
	assert.Equal(t, NilNode, g.Node(1).GroupID())
	assert.Equal(t, NilNode, g.Node(2).GroupID())
}

func TestWriteRelationDotDeclaresGroupBeforeMembers(t *testing.T) {
	g := NewGraph()
	g.RegisterPrecedence(4, 0, 2)
	g.RegisterPrecedence(4, 0, 3)
	g.RegisterPrecedence(4, 1, 2)
	g.RegisterPrecedence(4, 1, 3)
	g.GroupRelations()

	var buf bytes.Buffer
	names := map[NodeID]string{0: "A", 1: "B", 2: "X", 3: "Y"}
	err := g.WriteRelationDot(&buf, "prec", func(id NodeID) string { return names[id] }, DefaultPalette())
	require.NoError(t, err)
	groupID := g.Node(0).GroupID()
	cluster := fmt.Sprintf("  subgraph cluster_%d {\n    label=\"group %d\";\n    n0 [label=\"A\"];\n    n1 [label=\"B\"];\n  }\n", groupID, groupID)
	assert.Contains(t, buf.String(), cluster)
}
