// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package revindex maintains the persisted reverse-dependency index:
// a map from referenced symbol to the files that reference it.
//
// The index is built by a full corpus scan and stored in BadgerDB as a
// single canonically-serialized map, so rebuilding over an unchanged
// corpus produces byte-identical persisted state. A corrupt persisted
// value is never fatal: load falls back to a rebuild.
//
// # State Machine
//
//	Unloaded --LoadOrBuild (disk hit)--> Loaded
//	Unloaded --LoadOrBuild (disk miss or corrupt)--> Fresh
//	any      --BuildFull--> Fresh
//
// Fresh means the in-memory map was produced by a scan in this process;
// Loaded means it came from disk and may predate corpus changes.
package revindex

import "errors"

// Sentinel errors for index operations.
var (
	// ErrIndexNotLoaded is returned when a lookup is attempted before
	// LoadOrBuild or BuildFull has run.
	ErrIndexNotLoaded = errors.New("reverse index not loaded")

	// ErrBuildFailed wraps scan failures during a full index build.
	ErrBuildFailed = errors.New("reverse index build failed")

	// ErrIndexCorrupt marks a persisted index value that failed to
	// deserialize. Handled internally: LoadOrBuild logs it and rebuilds.
	ErrIndexCorrupt = errors.New("persisted reverse index corrupt")
)
