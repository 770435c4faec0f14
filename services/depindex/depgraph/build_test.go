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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/depindex/pkg/logging"
	"github.com/AleutianAI/depindex/services/depindex/record"
)

func writeFact(t *testing.T, root, filePath, content string) {
	t.Helper()
	full := filepath.Join(root, filePath+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func fixtureSource(t *testing.T) record.Source {
	t.Helper()
	root := t.TempDir()
	writeFact(t, root, "app.py", `{
		"imports": [{"module": "lib.utils", "resolved_module": "lib.utils"}]
	}`)
	writeFact(t, root, "lib/utils.py", `{
		"imports": [{"module": "lib.core", "resolved_module": "lib.core"}]
	}`)
	writeFact(t, root, "lib/core.py", `{
		"imports": [{"module": "app", "resolved_module": "app"}]
	}`)
	src, err := record.NewDirSource(root)
	require.NoError(t, err)
	return src
}

func TestBuildFromRecords_Fixture(t *testing.T) {
	g, err := BuildFromRecords(context.Background(), fixtureSource(t), logging.Nop())
	require.NoError(t, err)

	assert.Equal(t, GraphStateReadOnly, g.State(), "built graphs arrive frozen")
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())

	// Every node has a record, so all three are file nodes.
	for _, id := range []string{"app", "lib.utils", "lib.core"} {
		n, ok := g.GetNode(id)
		require.True(t, ok, id)
		assert.Equal(t, NodeKindFile, n.Kind, id)
	}

	assert.Equal(t, []string{"lib.utils"}, g.Successors("app"))
	assert.Equal(t, []string{"app"}, g.Predecessors("lib.utils"))

	cycles := g.FindCycles(0)
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"app", "lib.utils", "lib.core"}, cycles[0])

	path, err := g.ShortestPath("app", "lib.core")
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "lib.utils", "lib.core"}, path)
}

func TestBuildFromRecords_ExternalImportBecomesModuleNode(t *testing.T) {
	root := t.TempDir()
	writeFact(t, root, "main.py", `{
		"imports": [{"module": "requests", "resolved_module": "requests"}]
	}`)
	src, err := record.NewDirSource(root)
	require.NoError(t, err)

	g, err := BuildFromRecords(context.Background(), src, logging.Nop())
	require.NoError(t, err)

	n, ok := g.GetNode("requests")
	require.True(t, ok)
	assert.Equal(t, NodeKindModule, n.Kind)
	assert.Empty(t, n.Path)
}

func TestBuildFromRecords_SkipsMalformed(t *testing.T) {
	root := t.TempDir()
	writeFact(t, root, "good.py", `{"imports": []}`)
	writeFact(t, root, "bad.py", `{"imports": [`)
	src, err := record.NewDirSource(root)
	require.NoError(t, err)

	g, err := BuildFromRecords(context.Background(), src, logging.Nop())
	require.NoError(t, err)
	assert.True(t, g.HasNode("good"))
	assert.False(t, g.HasNode("bad"))
}

func TestBuildFromRecords_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildFromRecords(ctx, fixtureSource(t), logging.Nop())
	assert.Error(t, err)
}
