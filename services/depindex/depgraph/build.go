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
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/depindex/pkg/logging"
	"github.com/AleutianAI/depindex/services/depindex/record"
)

// BuildFromRecords builds a frozen dependency graph from the full fact
// corpus.
//
// Description:
//
//	Walks every record, adding a file node per record and a module
//	node per import target, with a deduplicated file→target imports
//	edge for each import. Malformed records are logged and skipped.
//	The returned graph is already frozen.
//
// Inputs:
//   - ctx: Cancels the corpus walk.
//   - source: The fact source. Must not be nil.
//   - logger: Optional; defaults to the package default logger.
//
// Outputs:
//   - *Graph: The frozen graph.
//   - error: Non-nil if the walk fails or ctx is cancelled.
func BuildFromRecords(ctx context.Context, source record.Source, logger *logging.Logger) (*Graph, error) {
	if logger == nil {
		logger = logging.Default()
	}

	g := NewGraph()
	skipped := 0

	err := source.Walk(func(filePath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := source.Load(filePath)
		if err != nil {
			if errors.Is(err, record.ErrMalformedRecord) {
				logger.Warn("skipping malformed record during graph build",
					"file", filePath, "error", err)
				skipped++
				return nil
			}
			return err
		}

		fileID := record.ModuleName(filePath)
		if err := g.AddNode(Node{ID: fileID, Kind: NodeKindFile, Path: filePath}); err != nil {
			return err
		}
		for _, imp := range rec.Imports {
			targetID := imp.Resolved()
			if targetID == "" {
				continue
			}
			if err := g.AddNode(Node{ID: targetID, Kind: NodeKindModule}); err != nil {
				return err
			}
			if err := g.AddEdge(fileID, targetID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build dependency graph: %w", err)
	}

	g.Freeze()
	logger.Info("dependency graph built",
		"nodes", g.NodeCount(), "edges", g.EdgeCount(), "skipped", skipped)
	return g, nil
}
