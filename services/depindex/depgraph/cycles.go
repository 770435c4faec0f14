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

import "sort"

// DefaultMaxCycles caps cycle enumeration; pathological graphs can hold
// exponentially many elementary cycles.
const DefaultMaxCycles = 1000

// FindCycles enumerates the elementary directed cycles in the graph.
//
// Description:
//
//	Runs a DFS rooted at each node in lexicographic order, restricted
//	to nodes >= the root, and records a cycle whenever an edge closes
//	back to the root. The restriction means every cycle is discovered
//	exactly once, rooted at its lexicographically smallest member, so
//	rotations of the same cycle never produce duplicates.
//
// Inputs:
//   - limit: Maximum number of cycles to return. <= 0 uses
//     DefaultMaxCycles.
//
// Outputs:
//   - [][]string: Each cycle as a node sequence starting at its
//     smallest member; the closing edge back to the start is implied.
//     Sorted by length ascending, then by root node.
func (g *Graph) FindCycles(limit int) [][]string {
	if limit <= 0 {
		limit = DefaultMaxCycles
	}

	var cycles [][]string
	roots := g.NodeIDs()

	for _, root := range roots {
		if len(cycles) >= limit {
			break
		}
		onPath := map[string]bool{root: true}
		path := []string{root}
		g.cycleDFS(root, root, path, onPath, &cycles, limit)
	}

	sort.Slice(cycles, func(i, j int) bool {
		if len(cycles[i]) != len(cycles[j]) {
			return len(cycles[i]) < len(cycles[j])
		}
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}

// cycleDFS explores successors of current, visiting only nodes >= root
// so each cycle is found from its smallest member only.
func (g *Graph) cycleDFS(root, current string, path []string, onPath map[string]bool, cycles *[][]string, limit int) {
	for _, next := range g.Successors(current) {
		if len(*cycles) >= limit {
			return
		}
		if next == root {
			cycle := make([]string, len(path))
			copy(cycle, path)
			*cycles = append(*cycles, cycle)
			continue
		}
		if next < root || onPath[next] {
			continue
		}
		onPath[next] = true
		g.cycleDFS(root, next, append(path, next), onPath, cycles, limit)
		onPath[next] = false
	}
}

// IsAcyclic reports whether the graph contains no directed cycle.
// Cheaper than FindCycles: it stops at the first one.
func (g *Graph) IsAcyclic() bool {
	const (
		unvisited  = 0
		inProgress = 1
		done       = 2
	)
	state := make(map[string]int, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = inProgress
		for next := range g.succ[id] {
			switch state[next] {
			case inProgress:
				return false
			case unvisited:
				if !visit(next) {
					return false
				}
			}
		}
		state[id] = done
		return true
	}

	for id := range g.nodes {
		if state[id] == unvisited && !visit(id) {
			return false
		}
	}
	return true
}
