// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGraph constructs an unfrozen graph from edge pairs, creating
// module nodes as needed.
func buildGraph(t *testing.T, edges [][2]string) *Graph {
	t.Helper()
	g := NewGraph()
	for _, e := range edges {
		require.NoError(t, g.AddNode(Node{ID: e[0], Kind: NodeKindModule}))
		require.NoError(t, g.AddNode(Node{ID: e[1], Kind: NodeKindModule}))
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

// triangle is the reference cyclic corpus:
// app -> lib.utils -> lib.core -> app.
func triangle(t *testing.T) *Graph {
	t.Helper()
	g := buildGraph(t, [][2]string{
		{"app", "lib.utils"},
		{"lib.utils", "lib.core"},
		{"lib.core", "app"},
	})
	g.Freeze()
	return g
}

func TestGraph_AddNodeUpgradesModuleToFile(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(Node{ID: "lib.utils", Kind: NodeKindModule}))
	require.NoError(t, g.AddNode(Node{ID: "lib.utils", Kind: NodeKindFile, Path: "lib/utils.py"}))

	n, ok := g.GetNode("lib.utils")
	require.True(t, ok)
	assert.Equal(t, NodeKindFile, n.Kind)
	assert.Equal(t, "lib/utils.py", n.Path)
	assert.Equal(t, 1, g.NodeCount(), "upgrade must not duplicate the node")
}

func TestGraph_AddNodeNeverDowngradesFile(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(Node{ID: "app", Kind: NodeKindFile, Path: "app.py"}))
	require.NoError(t, g.AddNode(Node{ID: "app", Kind: NodeKindModule}))

	n, _ := g.GetNode("app")
	assert.Equal(t, NodeKindFile, n.Kind)
}

func TestGraph_AddEdgeIsSetNotMultiset(t *testing.T) {
	g := buildGraph(t, [][2]string{{"a", "b"}})
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "b"))

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []string{"b"}, g.Successors("a"))
	assert.Equal(t, []string{"a"}, g.Predecessors("b"))
}

func TestGraph_AddEdgeRequiresEndpoints(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(Node{ID: "a"}))

	err := g.AddEdge("a", "ghost")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	err = g.AddEdge("ghost", "a")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGraph_FreezeMakesReadOnly(t *testing.T) {
	g := buildGraph(t, [][2]string{{"a", "b"}})
	g.Freeze()

	assert.Equal(t, GraphStateReadOnly, g.State())
	assert.ErrorIs(t, g.AddNode(Node{ID: "c"}), ErrGraphFrozen)
	assert.ErrorIs(t, g.AddEdge("a", "b"), ErrGraphFrozen)
}

func TestGraph_AddNodeRejectsEmptyID(t *testing.T) {
	g := NewGraph()
	assert.ErrorIs(t, g.AddNode(Node{}), ErrInvalidNode)
}

func TestTransitiveClosure_TerminatesOnCycle(t *testing.T) {
	g := triangle(t)

	got, err := g.TransitiveClosure("app", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.core", "lib.utils"}, got,
		"start node is excluded even when the cycle returns to it")
}

func TestTransitiveClosure_DepthLimits(t *testing.T) {
	g := triangle(t)

	cases := []struct {
		depth int
		want  []string
	}{
		{0, []string{}},
		{1, []string{"lib.utils"}},
		{2, []string{"lib.core", "lib.utils"}},
		{3, []string{"lib.core", "lib.utils"}},
	}
	for _, tc := range cases {
		got, err := g.TransitiveClosure("app", tc.depth)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "depth %d", tc.depth)
	}
}

func TestTransitiveClosure_LexicographicOrder(t *testing.T) {
	g := buildGraph(t, [][2]string{
		{"root", "zeta"},
		{"root", "alpha"},
		{"root", "mid"},
	})
	g.Freeze()

	got, err := g.TransitiveClosure("root", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, got)
}

func TestTransitiveClosure_UnknownStart(t *testing.T) {
	g := triangle(t)
	_, err := g.TransitiveClosure("ghost", 1)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestShortestPath_Triangle(t *testing.T) {
	g := triangle(t)

	path, err := g.ShortestPath("app", "lib.core")
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "lib.utils", "lib.core"}, path)
}

func TestShortestPath_SelfIsSingleton(t *testing.T) {
	g := triangle(t)

	path, err := g.ShortestPath("app", "app")
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, path)
}

func TestShortestPath_PrefersFewerHops(t *testing.T) {
	g := buildGraph(t, [][2]string{
		{"a", "b"},
		{"b", "c"},
		{"a", "c"},
	})
	g.Freeze()

	path, err := g.ShortestPath("a", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, path)
}

func TestShortestPath_Errors(t *testing.T) {
	g := buildGraph(t, [][2]string{{"a", "b"}})
	g.Freeze()

	_, err := g.ShortestPath("ghost", "a")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = g.ShortestPath("a", "ghost")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	// b has no outgoing edges, so a is unreachable from it.
	_, err = g.ShortestPath("b", "a")
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestFindCycles_TriangleReportedOnce(t *testing.T) {
	g := triangle(t)

	cycles := g.FindCycles(0)
	require.Len(t, cycles, 1,
		"one elementary cycle regardless of which node discovery starts at")
	assert.Equal(t, []string{"app", "lib.core", "lib.utils"}[0], cycles[0][0],
		"cycle is rooted at its lexicographically smallest member")
	assert.ElementsMatch(t, []string{"app", "lib.utils", "lib.core"}, cycles[0])
}

func TestFindCycles_AcyclicGraphIsEmpty(t *testing.T) {
	g := buildGraph(t, [][2]string{
		{"a", "b"},
		{"b", "c"},
		{"a", "c"},
	})
	g.Freeze()

	assert.Empty(t, g.FindCycles(0))
	assert.True(t, g.IsAcyclic())
}

func TestFindCycles_SelfLoop(t *testing.T) {
	g := buildGraph(t, [][2]string{{"a", "a"}})
	g.Freeze()

	cycles := g.FindCycles(0)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a"}, cycles[0])
	assert.False(t, g.IsAcyclic())
}

func TestFindCycles_MultipleDistinctCycles(t *testing.T) {
	g := buildGraph(t, [][2]string{
		{"a", "b"}, {"b", "a"}, // 2-cycle
		{"c", "d"}, {"d", "e"}, {"e", "c"}, // 3-cycle
	})
	g.Freeze()

	cycles := g.FindCycles(0)
	require.Len(t, cycles, 2)
	assert.Equal(t, []string{"a", "b"}, cycles[0], "shorter cycle sorts first")
	assert.Equal(t, "c", cycles[1][0])
}

func TestFindCycles_LimitCapsResults(t *testing.T) {
	// Two node-disjoint 2-cycles; limit 1 keeps only the first.
	g := buildGraph(t, [][2]string{
		{"a", "b"}, {"b", "a"},
		{"c", "d"}, {"d", "c"},
	})
	g.Freeze()

	assert.Len(t, g.FindCycles(1), 1)
}

func TestStats(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(Node{ID: "app", Kind: NodeKindFile, Path: "app.py"}))
	require.NoError(t, g.AddNode(Node{ID: "lib.utils", Kind: NodeKindModule}))
	require.NoError(t, g.AddNode(Node{ID: "lib.core", Kind: NodeKindModule}))
	require.NoError(t, g.AddEdge("app", "lib.utils"))
	require.NoError(t, g.AddEdge("lib.utils", "lib.core"))
	g.Freeze()

	stats := g.Stats()
	assert.Equal(t, 3, stats.NodeCount)
	assert.Equal(t, 2, stats.EdgeCount)
	assert.Equal(t, 1, stats.FileNodes)
	assert.Equal(t, 2, stats.ModuleNodes)
	assert.InDelta(t, 2.0/6.0, stats.Density, 1e-9)
	assert.True(t, stats.IsAcyclic)
}

func TestStats_EmptyAndSingleton(t *testing.T) {
	g := NewGraph()
	assert.Zero(t, g.Stats().Density)

	require.NoError(t, g.AddNode(Node{ID: "only"}))
	assert.Zero(t, g.Stats().Density, "density is 0 when N <= 1")
}
