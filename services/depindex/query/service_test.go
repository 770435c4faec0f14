// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/depindex/pkg/logging"
	"github.com/AleutianAI/depindex/services/depindex/depgraph"
	"github.com/AleutianAI/depindex/services/depindex/record"
	"github.com/AleutianAI/depindex/services/depindex/revindex"
	"github.com/AleutianAI/depindex/services/depindex/storage/badger"
)

func writeFact(t *testing.T, root, filePath, content string) {
	t.Helper()
	full := filepath.Join(root, filePath+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// fixtureService builds a service over the reference corpus:
// app imports lib.utils, lib.utils imports lib.core, lib.core imports
// app (closing the cycle).
func fixtureService(t *testing.T, opts Options) *Service {
	t.Helper()
	root := t.TempDir()
	writeFact(t, root, "app.py", `{
		"imports": [{"module": "lib.utils", "resolved_module": "lib.utils"}],
		"function_calls": [{"name": "utils.load_config"}],
		"config_files": ["settings.yaml"]
	}`)
	writeFact(t, root, "lib/utils.py", `{
		"imports": [{"module": "lib.core", "resolved_module": "lib.core"}]
	}`)
	writeFact(t, root, "lib/core.py", `{
		"imports": [{"module": "app", "resolved_module": "app"}]
	}`)

	src, err := record.NewDirSource(root)
	require.NoError(t, err)
	store := record.NewStore(src, record.WithLogger(logging.Nop()))

	db, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	idx := revindex.New(src, db, logging.Nop())

	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return NewService(store, idx, opts)
}

func TestService_DirectDependencies(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})

	res, err := svc.DirectDependencies(context.Background(), "app.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.utils"}, res.Imports)
	assert.Equal(t, []string{"settings.yaml"}, res.ConfigFiles)
}

func TestService_DirectDependenciesUnknownFile(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})

	_, err := svc.DirectDependencies(context.Background(), "ghost.py")
	assert.ErrorIs(t, err, record.ErrRecordNotFound)
}

func TestService_ReverseDependencies(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})

	res, err := svc.ReverseDependencies(context.Background(), "lib/utils.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, res.Referencers)
	assert.NotEqual(t, revindex.IndexUnloaded, svc.IndexState(),
		"first reverse query must load or build the index")
}

func TestService_TransitiveDependencies(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})

	res, err := svc.TransitiveDependencies(context.Background(), "app.py", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.core", "lib.utils"}, res.Modules)

	res, err = svc.TransitiveDependencies(context.Background(), "app.py", 0)
	require.NoError(t, err)
	assert.Empty(t, res.Modules)
}

func TestService_Cycles(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})

	res, err := svc.Cycles(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Cycles, 1)
	assert.ElementsMatch(t, []string{"app", "lib.utils", "lib.core"}, res.Cycles[0])
}

func TestService_ShortestPath(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})

	res, err := svc.ShortestPath(context.Background(), "app.py", "lib/core.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "lib.utils", "lib.core"}, res.Path)
}

func TestService_ShortestPathErrors(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})
	ctx := context.Background()

	_, err := svc.ShortestPath(ctx, "ghost.py", "app.py")
	assert.ErrorIs(t, err, depgraph.ErrNodeNotFound)
}

func TestService_GraphStats(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})

	res, err := svc.GraphStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.NodeCount)
	assert.Equal(t, 3, res.EdgeCount)
	assert.False(t, res.IsAcyclic)
}

func TestService_GraphDisabledDegrades(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: false})
	ctx := context.Background()

	_, err := svc.TransitiveDependencies(ctx, "app.py", 2)
	assert.ErrorIs(t, err, ErrGraphUnavailable)
	_, err = svc.Cycles(ctx)
	assert.ErrorIs(t, err, ErrGraphUnavailable)
	_, err = svc.ShortestPath(ctx, "app.py", "lib/core.py")
	assert.ErrorIs(t, err, ErrGraphUnavailable)
	_, err = svc.GraphStats(ctx)
	assert.ErrorIs(t, err, ErrGraphUnavailable)

	// Non-graph operations keep working.
	_, err = svc.DirectDependencies(ctx, "app.py")
	assert.NoError(t, err)
	_, err = svc.ReverseDependencies(ctx, "lib/utils.py")
	assert.NoError(t, err)
}

func TestService_RebuildIndexFreshens(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})
	ctx := context.Background()

	require.NoError(t, svc.RebuildIndex(ctx))
	assert.Equal(t, revindex.IndexFresh, svc.IndexState())

	res, err := svc.ReverseDependencies(ctx, "lib/utils.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, res.Referencers)
}

func TestService_CacheStatsAndClear(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})
	ctx := context.Background()

	svc.DirectDependencies(ctx, "app.py")
	svc.DirectDependencies(ctx, "app.py")

	stats := svc.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	svc.ClearCache()
	assert.Zero(t, svc.CacheStats().Hits)
	assert.Zero(t, svc.CacheStats().Size)
}

func TestService_ConcurrentFirstQueries(t *testing.T) {
	svc := fixtureService(t, Options{GraphEnabled: true})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.TransitiveDependencies(ctx, "app.py", 2); err != nil {
				errs <- err
			}
			if _, err := svc.ReverseDependencies(ctx, "lib/utils.py"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent query failed: %v", err)
	}
}
