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
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/depindex/pkg/logging"
	"github.com/AleutianAI/depindex/services/depindex/depgraph"
	"github.com/AleutianAI/depindex/services/depindex/record"
	"github.com/AleutianAI/depindex/services/depindex/revindex"
)

// tracer spans every service operation.
var tracer = otel.Tracer("depindex.query")

// DirectResult categorizes a file's direct dependencies.
type DirectResult struct {
	File        string   `json:"file"`
	Imports     []string `json:"imports"`
	ConfigFiles []string `json:"config_files,omitempty"`
	FileReads   []string `json:"file_reads,omitempty"`
	FileWrites  []string `json:"file_writes,omitempty"`
}

// ReverseResult lists the files that reference the queried file.
type ReverseResult struct {
	File        string   `json:"file"`
	Referencers []string `json:"referencers"`
}

// TransitiveResult lists everything reachable within the depth bound.
type TransitiveResult struct {
	File    string   `json:"file"`
	Depth   int      `json:"depth"`
	Modules []string `json:"modules"`
}

// CyclesResult lists the elementary import cycles.
type CyclesResult struct {
	Cycles [][]string `json:"cycles"`
}

// PathResult is a shortest import path between two files.
type PathResult struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Path   []string `json:"path"`
}

// StatsResult wraps graph statistics for rendering.
type StatsResult struct {
	depgraph.GraphStats
}

// Options configures Service construction.
type Options struct {
	// GraphEnabled gates the graph-backed operations. When false they
	// return ErrGraphUnavailable instead of building a graph.
	GraphEnabled bool

	// MaxCycles caps cycle enumeration. <= 0 uses the depgraph default.
	MaxCycles int

	// Logger defaults to the package default logger.
	Logger *logging.Logger
}

// Service composes the record store, reverse index, and dependency
// graph behind one query surface.
//
// Locking: the graph pointer has its own RWMutex; the index carries its
// own internal lock; builds of either are deduplicated through a
// singleflight group, so a burst of first queries triggers exactly one
// corpus scan.
type Service struct {
	store  *record.Store
	idx    *revindex.Index
	logger *logging.Logger

	graphEnabled bool
	maxCycles    int

	sf singleflight.Group

	graphMu sync.RWMutex
	graph   *depgraph.Graph
}

// NewService creates a Service over the given store and index.
func NewService(store *record.Store, idx *revindex.Index, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:        store,
		idx:          idx,
		logger:       logger,
		graphEnabled: opts.GraphEnabled,
		maxCycles:    opts.MaxCycles,
	}
}

// DirectDependencies returns the categorized direct dependencies of a
// file, straight from its fact record.
func (s *Service) DirectDependencies(ctx context.Context, file string) (*DirectResult, error) {
	ctx, span := tracer.Start(ctx, "QueryService.DirectDependencies")
	defer span.End()
	span.SetAttributes(attribute.String("depindex.file", file))

	rec, err := s.store.Load(ctx, file)
	if err != nil {
		return nil, err
	}

	imports := make([]string, 0, len(rec.Imports))
	seen := make(map[string]struct{})
	for _, imp := range rec.Imports {
		mod := imp.Resolved()
		if mod == "" {
			continue
		}
		if _, dup := seen[mod]; dup {
			continue
		}
		seen[mod] = struct{}{}
		imports = append(imports, mod)
	}

	return &DirectResult{
		File:        file,
		Imports:     imports,
		ConfigFiles: rec.ConfigFiles,
		FileReads:   rec.FileReads,
		FileWrites:  rec.FileWrites,
	}, nil
}

// ReverseDependencies returns the files referencing the given file,
// loading or building the reverse index on first use.
func (s *Service) ReverseDependencies(ctx context.Context, file string) (*ReverseResult, error) {
	ctx, span := tracer.Start(ctx, "QueryService.ReverseDependencies")
	defer span.End()
	span.SetAttributes(attribute.String("depindex.file", file))

	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}
	refs, err := s.idx.Lookup(file)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []string{}
	}
	return &ReverseResult{File: file, Referencers: refs}, nil
}

// TransitiveDependencies returns everything reachable from the file
// within maxDepth import hops.
func (s *Service) TransitiveDependencies(ctx context.Context, file string, maxDepth int) (*TransitiveResult, error) {
	ctx, span := tracer.Start(ctx, "QueryService.TransitiveDependencies")
	defer span.End()
	span.SetAttributes(
		attribute.String("depindex.file", file),
		attribute.Int("depindex.depth", maxDepth),
	)

	g, err := s.ensureGraph(ctx)
	if err != nil {
		return nil, err
	}
	modules, err := g.TransitiveClosure(record.ModuleName(file), maxDepth)
	if err != nil {
		return nil, err
	}
	return &TransitiveResult{File: file, Depth: maxDepth, Modules: modules}, nil
}

// Cycles returns the elementary import cycles in the corpus.
func (s *Service) Cycles(ctx context.Context) (*CyclesResult, error) {
	ctx, span := tracer.Start(ctx, "QueryService.Cycles")
	defer span.End()

	g, err := s.ensureGraph(ctx)
	if err != nil {
		return nil, err
	}
	cycles := g.FindCycles(s.maxCycles)
	if cycles == nil {
		cycles = [][]string{}
	}
	span.SetAttributes(attribute.Int("depindex.cycles", len(cycles)))
	return &CyclesResult{Cycles: cycles}, nil
}

// ShortestPath returns a minimum-hop import path between two files.
func (s *Service) ShortestPath(ctx context.Context, source, target string) (*PathResult, error) {
	ctx, span := tracer.Start(ctx, "QueryService.ShortestPath")
	defer span.End()
	span.SetAttributes(
		attribute.String("depindex.source", source),
		attribute.String("depindex.target", target),
	)

	g, err := s.ensureGraph(ctx)
	if err != nil {
		return nil, err
	}
	path, err := g.ShortestPath(record.ModuleName(source), record.ModuleName(target))
	if err != nil {
		return nil, err
	}
	return &PathResult{Source: source, Target: target, Path: path}, nil
}

// GraphStats returns summary statistics for the dependency graph.
func (s *Service) GraphStats(ctx context.Context) (*StatsResult, error) {
	ctx, span := tracer.Start(ctx, "QueryService.GraphStats")
	defer span.End()

	g, err := s.ensureGraph(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsResult{GraphStats: g.Stats()}, nil
}

// RebuildIndex rescans the corpus: full reverse index rebuild plus a
// fresh graph when the graph capability is enabled.
func (s *Service) RebuildIndex(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "QueryService.RebuildIndex")
	defer span.End()

	if err := s.idx.BuildFull(ctx); err != nil {
		return err
	}
	if !s.graphEnabled {
		return nil
	}

	g, err := depgraph.BuildFromRecords(ctx, s.store.Source(), s.logger)
	if err != nil {
		return fmt.Errorf("rebuild graph: %w", err)
	}
	s.graphMu.Lock()
	s.graph = g
	s.graphMu.Unlock()
	return nil
}

// ClearCache empties the record cache and resets its counters.
func (s *Service) ClearCache() {
	s.store.Clear()
}

// CacheStats returns record cache effectiveness counters.
func (s *Service) CacheStats() record.StoreStats {
	return s.store.Stats()
}

// IndexState returns the reverse index state.
func (s *Service) IndexState() revindex.IndexState {
	return s.idx.State()
}

// ensureIndex makes the reverse index usable, deduplicating concurrent
// first loads.
func (s *Service) ensureIndex(ctx context.Context) error {
	if s.idx.State() != revindex.IndexUnloaded {
		return nil
	}
	_, err, _ := s.sf.Do("index", func() (interface{}, error) {
		return nil, s.idx.LoadOrBuild(ctx)
	})
	return err
}

// ensureGraph returns the built graph, building it once per process
// under singleflight.
func (s *Service) ensureGraph(ctx context.Context) (*depgraph.Graph, error) {
	if !s.graphEnabled {
		return nil, ErrGraphUnavailable
	}

	s.graphMu.RLock()
	g := s.graph
	s.graphMu.RUnlock()
	if g != nil {
		return g, nil
	}

	_, err, _ := s.sf.Do("graph", func() (interface{}, error) {
		s.graphMu.RLock()
		built := s.graph != nil
		s.graphMu.RUnlock()
		if built {
			return nil, nil
		}
		g, err := depgraph.BuildFromRecords(ctx, s.store.Source(), s.logger)
		if err != nil {
			return nil, err
		}
		s.graphMu.Lock()
		s.graph = g
		s.graphMu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.graphMu.RLock()
	defer s.graphMu.RUnlock()
	return s.graph, nil
}
