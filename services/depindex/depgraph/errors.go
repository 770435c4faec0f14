// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package depgraph provides the dependency graph over files and modules.
//
// Nodes are identified by normalized module name (the file path with
// its extension stripped and separators dotted), so a file and the
// import target that resolves to it are the same node. Edges are
// directed "imports" relationships and form a set per (source, target)
// pair, never a multiset.
//
// # Lifecycle
//
// A typical graph lifecycle:
//  1. Create with NewGraph()
//  2. Build with AddNode() and AddEdge() calls (or BuildFromRecords)
//  3. Call Freeze() to finalize
//  4. Query with TransitiveClosure(), FindCycles(), ShortestPath(), Stats()
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. After Freeze()
// it is read-only and safe to read from multiple goroutines.
package depgraph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	// Once Freeze() is called, the graph becomes read-only and no further
	// nodes or edges can be added.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNodeNotFound is returned when an operation references a node
	// that does not exist in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPath is returned by ShortestPath when both endpoints exist
	// but the target is unreachable from the source.
	ErrNoPath = errors.New("no path between nodes")

	// ErrInvalidNode is returned when adding a node with an empty ID.
	ErrInvalidNode = errors.New("invalid node")
)
