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

// GraphStats summarizes the graph's size and shape.
type GraphStats struct {
	NodeCount   int     `json:"node_count"`
	EdgeCount   int     `json:"edge_count"`
	FileNodes   int     `json:"file_nodes"`
	ModuleNodes int     `json:"module_nodes"`
	Density     float64 `json:"density"`
	IsAcyclic   bool    `json:"is_acyclic"`
}

// Stats computes summary statistics for the graph.
//
// Density is E / (N * (N-1)), the filled fraction of possible directed
// edges without self-loops; it is 0 when N <= 1.
func (g *Graph) Stats() GraphStats {
	stats := GraphStats{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		IsAcyclic: g.IsAcyclic(),
	}

	for _, n := range g.nodes {
		if n.Kind == NodeKindFile {
			stats.FileNodes++
		} else {
			stats.ModuleNodes++
		}
	}

	if n := stats.NodeCount; n > 1 {
		stats.Density = float64(stats.EdgeCount) / float64(n*(n-1))
	}
	return stats
}
