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

// queueItem tracks a node and its BFS depth during traversal.
type queueItem struct {
	nodeID string
	depth  int
}

// TransitiveClosure returns everything reachable from start within
// maxDepth import hops.
//
// Description:
//
//	Iterative BFS over successor edges. Each node is visited at most
//	once, so traversal terminates on cyclic graphs. The start node is
//	excluded from the result even when a cycle leads back to it.
//
// Inputs:
//   - start: Node ID to start from.
//   - maxDepth: Maximum number of hops. 0 returns an empty result.
//
// Outputs:
//   - []string: Reachable node IDs in lexicographic order.
//   - error: ErrNodeNotFound if start is absent.
func (g *Graph) TransitiveClosure(start string, maxDepth int) ([]string, error) {
	if !g.HasNode(start) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, start)
	}
	if maxDepth <= 0 {
		return []string{}, nil
	}

	visited := map[string]struct{}{start: {}}
	queue := []queueItem{{nodeID: start, depth: 0}}
	var result []string

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth >= maxDepth {
			continue
		}
		for next := range g.succ[item.nodeID] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			result = append(result, next)
			queue = append(queue, queueItem{nodeID: next, depth: item.depth + 1})
		}
	}

	sort.Strings(result)
	if result == nil {
		result = []string{}
	}
	return result, nil
}

// ShortestPath returns a minimum-hop import path from source to target.
//
// Description:
//
//	Unweighted BFS with parent-map path reconstruction. When several
//	shortest paths exist, neighbor expansion order (lexicographic)
//	makes the returned one deterministic.
//
// Outputs:
//   - []string: The path including both endpoints; [source] when
//     source == target.
//   - error: ErrNodeNotFound for an absent endpoint, ErrNoPath when
//     target is unreachable.
func (g *Graph) ShortestPath(source, target string) ([]string, error) {
	if !g.HasNode(source) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, source)
	}
	if !g.HasNode(target) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
	}
	if source == target {
		return []string{source}, nil
	}

	parent := map[string]string{source: ""}
	queue := []string{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.Successors(current) {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == target {
				return reconstructPath(parent, source, target), nil
			}
			queue = append(queue, next)
		}
	}

	return nil, fmt.Errorf("%w: %s -> %s", ErrNoPath, source, target)
}

// reconstructPath walks the parent map back from target to source.
func reconstructPath(parent map[string]string, source, target string) []string {
	var reversed []string
	for node := target; node != ""; node = parent[node] {
		reversed = append(reversed, node)
		if node == source {
			break
		}
	}

	path := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}
