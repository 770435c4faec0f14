// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/depindex/services/depindex/query"
)

func (a *app) rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rescan the corpus: rebuild the reverse index and graph",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.withService(func(svc *query.Service) error {
				if err := svc.RebuildIndex(cmd.Context()); err != nil {
					return err
				}
				fmt.Printf("index rebuilt, state: %s\n", svc.IndexState())
				return nil
			})
		},
	}
}

func (a *app) cacheCmd() *cobra.Command {
	cache := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the record cache",
	}

	cache.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show record cache counters",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.withService(func(svc *query.Service) error {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(svc.CacheStats())
			})
		},
	})

	cache.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the record cache and reset counters",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.withService(func(svc *query.Service) error {
				svc.ClearCache()
				fmt.Println("cache cleared")
				return nil
			})
		},
	})

	return cache
}

// withService runs fn against a freshly wired service, handling config
// and construction failures with the standard exit mapping.
func (a *app) withService(fn func(*query.Service) error) {
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

	if err := fn(svc); err != nil {
		cleanup()
		fail(err)
	}
}
