// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package record provides per-file dependency records and the cached
// store that loads them from an external fact source.
//
// A Record holds the raw dependency facts the upstream extractor produced
// for one source file: imports, function calls, config references, and
// file reads/writes. Records are read-only here; the extractor owns them.
//
// # Ownership Model
//
// The store caches pointers to records but never mutates them:
//   - A cached Record is replaced wholesale or evicted, never edited
//   - Callers MUST treat returned records as immutable
//
// # Thread Safety
//
// Store is safe for concurrent use. Source implementations must be safe
// for concurrent reads.
package record

import "errors"

// Sentinel errors for record operations.
var (
	// ErrRecordNotFound is returned when no fact record exists for the
	// requested file path.
	ErrRecordNotFound = errors.New("record not found")

	// ErrMalformedRecord is returned when a fact record exists but fails
	// to parse. The store logs the failure and treats the record as
	// absent; the process never crashes on extractor output.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrSourceMissing is returned at construction time when the fact
	// source directory does not exist. This is fatal: without facts
	// there is nothing to index.
	ErrSourceMissing = errors.New("fact source directory missing")
)
