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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/depindex/services/depindex/query"
)

func (a *app) directCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "direct <file>",
		Short: "Show the direct dependencies recorded for a file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a.runQuery(cmd, func(svc *query.Service) (query.Renderable, error) {
				return svc.DirectDependencies(cmd.Context(), args[0])
			})
		},
	}
}

func (a *app) reverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <file>",
		Short: "Show the files that reference a file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a.runQuery(cmd, func(svc *query.Service) (query.Renderable, error) {
				return svc.ReverseDependencies(cmd.Context(), args[0])
			})
		},
	}
}

func (a *app) transitiveCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "transitive <file>",
		Short: "Show everything reachable from a file within a depth bound",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a.runQuery(cmd, func(svc *query.Service) (query.Renderable, error) {
				return svc.TransitiveDependencies(cmd.Context(), args[0], depth)
			})
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 3, "maximum number of import hops")
	return cmd
}

func (a *app) cyclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List the elementary import cycles in the corpus",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.runQuery(cmd, func(svc *query.Service) (query.Renderable, error) {
				return svc.Cycles(cmd.Context())
			})
		},
	}
}

func (a *app) pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <source> <target>",
		Short: "Show a shortest import path between two files",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a.runQuery(cmd, func(svc *query.Service) (query.Renderable, error) {
				return svc.ShortestPath(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dependency graph statistics",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.runQuery(cmd, func(svc *query.Service) (query.Renderable, error) {
				return svc.GraphStats(cmd.Context())
			})
		},
	}
}
