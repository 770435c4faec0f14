// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// depindex queries per-file dependency facts: direct and reverse
// dependencies, transitive closure, import cycles, shortest paths, and
// graph statistics, over an extracted fact corpus.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/depindex/pkg/logging"
	"github.com/AleutianAI/depindex/services/depindex/config"
	"github.com/AleutianAI/depindex/services/depindex/query"
	"github.com/AleutianAI/depindex/services/depindex/record"
	"github.com/AleutianAI/depindex/services/depindex/revindex"
	"github.com/AleutianAI/depindex/services/depindex/storage/badger"
)

// app carries flag state shared across subcommands.
type app struct {
	cfgPath  string
	factsDir string
	indexDir string
	logLevel string
	jsonLogs bool
	format   string
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:           "depindex",
		Short:         "Query the dependency graph index of an extracted fact corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&a.factsDir, "facts-dir", "", "directory of per-file JSON fact records")
	root.PersistentFlags().StringVar(&a.indexDir, "index-dir", "", "directory for the persisted reverse index (default: in-memory)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.jsonLogs, "json-logs", false, "emit logs as JSON")
	root.PersistentFlags().StringVar(&a.format, "format", "text", "output format: text, structured, diagram")

	root.AddCommand(
		a.directCmd(),
		a.reverseCmd(),
		a.transitiveCmd(),
		a.cyclesCmd(),
		a.pathCmd(),
		a.statsCmd(),
		a.rebuildCmd(),
		a.cacheCmd(),
		a.serveCmd(),
	)

	if err := root.Execute(); err != nil {
		fail(err)
	}
}

// loadConfig merges the config file (when given) with flag overrides.
func (a *app) loadConfig() (config.Config, error) {
	var cfg config.Config
	if a.cfgPath != "" {
		loaded, err := config.Load(a.cfgPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	if a.factsDir != "" {
		cfg.FactsDir = a.factsDir
	}
	if a.indexDir != "" {
		cfg.IndexDir = a.indexDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.jsonLogs {
		cfg.Log.JSON = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Log.Level),
		Service: "depindex",
		JSON:    cfg.Log.JSON,
	})
}

// buildService wires source, store, index, and service from config.
// The returned cleanup closes the index store.
func buildService(cfg config.Config, logger *logging.Logger) (*query.Service, func(), error) {
	src, err := record.NewDirSource(cfg.FactsDir)
	if err != nil {
		return nil, nil, err
	}
	store := record.NewStore(src,
		record.WithCapacity(cfg.CacheCapacity),
		record.WithLogger(logger),
	)

	badgerCfg := badger.InMemoryConfig()
	if cfg.IndexDir != "" {
		badgerCfg = badger.DefaultConfig()
		badgerCfg.Path = cfg.IndexDir
		badgerCfg.Logger = logger.Slog()
	}
	db, err := badger.OpenDB(badgerCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open index store: %w", err)
	}

	idx := revindex.New(src, db.DB, logger)
	svc := query.NewService(store, idx, query.Options{
		GraphEnabled: cfg.GraphEnabled,
		MaxCycles:    cfg.MaxCycles,
		Logger:       logger,
	})
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("closing index store", "error", err)
		}
	}
	return svc, cleanup, nil
}

// runQuery is the shared skeleton of the query subcommands: load
// config, build the service, run the operation, render, print.
func (a *app) runQuery(cmd *cobra.Command, op func(*query.Service) (query.Renderable, error)) {
	cfg, err := a.loadConfig()
	if err != nil {
		fail(err)
	}
	logger := newLogger(cfg)

	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		fail(err)
	}
	defer cleanup()

	result, err := op(svc)
	if err != nil {
		cleanup()
		fail(err)
	}

	format, err := query.ParseFormat(a.format)
	if err != nil {
		cleanup()
		fail(err)
	}
	renderer := &query.Renderer{DiagramMaxNodes: cfg.DiagramMaxNodes}
	out, err := renderer.Render(result, format)
	if err != nil {
		cleanup()
		fail(err)
	}
	fmt.Fprintln(os.Stdout, out)
}
