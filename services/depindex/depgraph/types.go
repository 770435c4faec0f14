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
	"fmt"
	"sort"
)

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is accepting AddNode/AddEdge calls.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// NodeKind distinguishes nodes backed by a fact record from nodes that
// exist only as import targets.
type NodeKind int

const (
	// NodeKindModule is an import target with no fact record of its own
	// (external library, or a corpus file the extractor skipped).
	NodeKindModule NodeKind = iota

	// NodeKindFile is a corpus file with a fact record.
	NodeKindFile
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case NodeKindFile:
		return "file"
	default:
		return "module"
	}
}

// Node represents a file or module in the dependency graph.
type Node struct {
	// ID is the normalized module name ("lib.utils" for "lib/utils.py").
	ID string

	// Kind is file or module. A module node is upgraded to a file node
	// when a fact record for that file is seen.
	Kind NodeKind

	// Path is the corpus-relative source path. Empty for module nodes.
	Path string
}

// Graph is the directed dependency graph.
//
// Edges are stored as adjacency sets in both directions so successor
// and predecessor walks are O(degree). Adding an existing edge is a
// no-op: edges between the same pair are a set.
type Graph struct {
	state GraphState

	nodes map[string]*Node
	succ  map[string]map[string]struct{}
	pred  map[string]map[string]struct{}

	edgeCount int
}

// NewGraph creates an empty graph in the building state.
func NewGraph() *Graph {
	return &Graph{
		state: GraphStateBuilding,
		nodes: make(map[string]*Node),
		succ:  make(map[string]map[string]struct{}),
		pred:  make(map[string]map[string]struct{}),
	}
}

// State returns the graph's lifecycle state.
func (g *Graph) State() GraphState {
	return g.state
}

// Freeze finalizes the graph. After Freeze the graph is read-only and
// safe for concurrent reads. Idempotent.
func (g *Graph) Freeze() {
	g.state = GraphStateReadOnly
}

// AddNode adds a node, or upgrades an existing module node to a file
// node when the new node carries a fact record.
//
// Outputs:
//   - error: ErrGraphFrozen after Freeze, ErrInvalidNode for empty IDs.
func (g *Graph) AddNode(node Node) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	if node.ID == "" {
		return fmt.Errorf("%w: empty ID", ErrInvalidNode)
	}

	if existing, ok := g.nodes[node.ID]; ok {
		if node.Kind == NodeKindFile && existing.Kind == NodeKindModule {
			existing.Kind = NodeKindFile
			existing.Path = node.Path
		}
		return nil
	}

	n := node
	g.nodes[node.ID] = &n
	g.succ[node.ID] = make(map[string]struct{})
	g.pred[node.ID] = make(map[string]struct{})
	return nil
}

// AddEdge adds a directed imports edge. Both endpoints must exist.
// Re-adding an existing edge is a no-op.
//
// Outputs:
//   - error: ErrGraphFrozen after Freeze, ErrNodeNotFound for a
//     missing endpoint.
func (g *Graph) AddEdge(from, to string) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, to)
	}

	if _, dup := g.succ[from][to]; dup {
		return nil
	}
	g.succ[from][to] = struct{}{}
	g.pred[to][from] = struct{}{}
	g.edgeCount++
	return nil
}

// GetNode returns the node with the given ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Successors returns the IDs this node imports, sorted.
func (g *Graph) Successors(id string) []string {
	return sortedKeys(g.succ[id])
}

// Predecessors returns the IDs that import this node, sorted.
func (g *Graph) Predecessors(id string) []string {
	return sortedKeys(g.pred[id])
}

// NodeIDs returns all node IDs, sorted.
func (g *Graph) NodeIDs() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
