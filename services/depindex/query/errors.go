// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query is the façade over the record store, reverse index,
// and dependency graph.
//
// The index and the graph build lazily on first use: concurrent first
// callers share one build via singleflight, and subsequent calls take
// a read lock only. Graph-backed operations degrade to a typed error
// when the graph capability is disabled.
package query

import "errors"

// Sentinel errors for query operations.
var (
	// ErrGraphUnavailable is returned by graph-backed operations when
	// the graph capability is disabled in configuration.
	ErrGraphUnavailable = errors.New("dependency graph capability unavailable")

	// ErrUnknownFormat is returned by Render for an unrecognized output
	// format name.
	ErrUnknownFormat = errors.New("unknown output format")
)
