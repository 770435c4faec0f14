// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package revindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/depindex/pkg/logging"
	"github.com/AleutianAI/depindex/services/depindex/record"
)

// indexKey is the Badger key holding the serialized symbol map.
// The version suffix guards against format changes across releases.
const indexKey = "revindex/v1"

// IndexState tracks how the in-memory map relates to the corpus.
type IndexState int

const (
	// IndexUnloaded means no map is in memory; lookups fail.
	IndexUnloaded IndexState = iota

	// IndexLoaded means the map was deserialized from disk. It may
	// predate corpus changes; staleness is unknown.
	IndexLoaded

	// IndexFresh means the map was produced by a scan in this process.
	IndexFresh
)

// String returns the lowercase state name.
func (s IndexState) String() string {
	switch s {
	case IndexLoaded:
		return "loaded"
	case IndexFresh:
		return "fresh"
	default:
		return "unloaded"
	}
}

// Index is the reverse-dependency index over a fact corpus.
//
// Description:
//
//	Maps each referenced symbol (module names, their stems, and call
//	qualifiers) to the ordered list of files that reference it. The
//	whole map persists in Badger as one canonical JSON value, so a
//	rebuild over an unchanged corpus writes byte-identical state.
//
// Thread Safety: Safe for concurrent use. Builds swap the map
// atomically under a write lock; lookups take a read lock.
type Index struct {
	source record.Source
	db     *badgerdb.DB
	logger *logging.Logger

	mu      sync.RWMutex
	symbols map[string][]string
	state   IndexState
}

// New creates an Index over the given fact source and Badger store.
// The index starts Unloaded; call LoadOrBuild or BuildFull before
// looking anything up.
func New(source record.Source, db *badgerdb.DB, logger *logging.Logger) *Index {
	if logger == nil {
		logger = logging.Default()
	}
	return &Index{
		source: source,
		db:     db,
		logger: logger,
	}
}

// State returns the current index state.
func (idx *Index) State() IndexState {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.state
}

// Size returns the number of distinct symbols in the index, or 0 when
// unloaded.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.symbols)
}

// BuildFull scans the whole corpus and rebuilds the index.
//
// Description:
//
//	Walks every fact record, extracts its referenced symbols, and
//	appends the owning file to each symbol's bucket (deduplicated).
//	The finished map is persisted to Badger as canonical JSON, then
//	swapped in atomically. Malformed records are logged and skipped.
//
// Outputs:
//   - error: ErrBuildFailed (wrapped) on walk or persistence failure.
//     On error the previous in-memory map is left untouched.
func (idx *Index) BuildFull(ctx context.Context) error {
	symbols := make(map[string][]string)
	seen := make(map[string]map[string]struct{})

	add := func(symbol, filePath string) {
		if symbol == "" {
			return
		}
		bucket, ok := seen[symbol]
		if !ok {
			bucket = make(map[string]struct{})
			seen[symbol] = bucket
		}
		if _, dup := bucket[filePath]; dup {
			return
		}
		bucket[filePath] = struct{}{}
		symbols[symbol] = append(symbols[symbol], filePath)
	}

	files := 0
	err := idx.source.Walk(func(filePath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := idx.source.Load(filePath)
		if err != nil {
			if errors.Is(err, record.ErrMalformedRecord) {
				idx.logger.Warn("skipping malformed record during index build",
					"file", filePath, "error", err)
				return nil
			}
			return err
		}
		files++
		for _, sym := range recordSymbols(rec) {
			add(sym, filePath)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	// Buckets keep first-seen order, which is deterministic because the
	// walk visits the tree lexically.
	data, err := json.Marshal(symbols)
	if err != nil {
		return fmt.Errorf("%w: serialize: %v", ErrBuildFailed, err)
	}
	if err := idx.persist(data); err != nil {
		return fmt.Errorf("%w: persist: %v", ErrBuildFailed, err)
	}

	idx.mu.Lock()
	idx.symbols = symbols
	idx.state = IndexFresh
	idx.mu.Unlock()

	idx.logger.Info("reverse index built",
		"files", files, "symbols", len(symbols))
	return nil
}

// LoadOrBuild makes the index usable with the cheapest available path.
//
// Description:
//
//	Already loaded in memory: no-op. Persisted map on disk: load it
//	(state Loaded; staleness unknown). Nothing on disk, or a corrupt
//	value: full rebuild. Corruption is logged, never fatal.
func (idx *Index) LoadOrBuild(ctx context.Context) error {
	idx.mu.RLock()
	ready := idx.state != IndexUnloaded
	idx.mu.RUnlock()
	if ready {
		return nil
	}

	symbols, err := idx.loadPersisted()
	switch {
	case err == nil && symbols != nil:
		idx.mu.Lock()
		// Another caller may have finished a build while we read disk.
		if idx.state == IndexUnloaded {
			idx.symbols = symbols
			idx.state = IndexLoaded
		}
		idx.mu.Unlock()
		return nil
	case errors.Is(err, ErrIndexCorrupt):
		idx.logger.Warn("persisted reverse index corrupt, rebuilding",
			"error", err)
	case err != nil:
		return err
	}

	return idx.BuildFull(ctx)
}

// Lookup returns the files that reference the given file, resolved
// through the file's stem and normalized module name buckets.
//
// Outputs:
//   - []string: referencing file paths, order-preserving and
//     deduplicated. Empty (non-nil semantics not guaranteed) when
//     nothing references the file.
//   - error: ErrIndexNotLoaded before the first LoadOrBuild/BuildFull.
func (idx *Index) Lookup(filePath string) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.state == IndexUnloaded {
		return nil, ErrIndexNotLoaded
	}

	var out []string
	seen := make(map[string]struct{})
	for _, key := range []string{record.Stem(filePath), record.ModuleName(filePath)} {
		for _, f := range idx.symbols[key] {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out, nil
}

// Symbols returns a sorted snapshot of all indexed symbols. Intended
// for diagnostics.
func (idx *Index) Symbols() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]string, 0, len(idx.symbols))
	for sym := range idx.symbols {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// persist writes the serialized map under the index key.
func (idx *Index) persist(data []byte) error {
	return idx.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(indexKey), data)
	})
}

// loadPersisted reads and deserializes the persisted map.
// Returns (nil, nil) when no persisted value exists.
func (idx *Index) loadPersisted() (map[string][]string, error) {
	var data []byte
	err := idx.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(indexKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read persisted index: %w", err)
	}

	var symbols map[string][]string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	return symbols, nil
}

// PersistedBytes returns the raw persisted index value, or nil when
// none exists. Intended for tests and diagnostics.
func (idx *Index) PersistedBytes() ([]byte, error) {
	var data []byte
	err := idx.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(indexKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	return data, err
}

// recordSymbols extracts the symbols a record references: each import's
// resolved module name, that name's final dotted component, and the
// qualifier prefixes of each dotted function call. Deduplicated,
// first-seen order.
func recordSymbols(rec *record.Record) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(sym string) {
		if sym == "" {
			return
		}
		if _, dup := seen[sym]; dup {
			return
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}

	for _, imp := range rec.Imports {
		mod := imp.Resolved()
		add(mod)
		if idx := lastDot(mod); idx >= 0 {
			add(mod[idx+1:])
		}
	}
	for _, call := range rec.FunctionCalls {
		// "lib.utils.helper" references qualifiers "lib.utils" and "lib".
		q := call.Qualifier()
		for q != "" {
			add(q)
			if idx := lastDot(q); idx >= 0 {
				q = q[:idx]
			} else {
				q = ""
			}
		}
	}
	return out
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
