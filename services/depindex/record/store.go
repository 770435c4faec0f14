// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AleutianAI/depindex/pkg/logging"
)

// DefaultCapacity is the record cache capacity used when none is
// configured.
const DefaultCapacity = 1000

// StoreStats is a snapshot of cache effectiveness counters.
type StoreStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Evictions int64   `json:"evictions"`
}

// Store is the cached façade over a fact Source.
//
// Description:
//
//	Load goes through a fixed-size LRU cache: a hit promotes the entry
//	to most-recently-used, a miss reads the fact source and inserts the
//	parsed record, evicting the least recently used entry when full.
//	Malformed fact files are logged and reported as absent; they never
//	crash the process.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	source Source
	cache  *lruCache[string, *Record]
	logger *logging.Logger
}

// StoreOption customizes Store construction.
type StoreOption func(*Store)

// WithCapacity sets the cache capacity. Non-positive values keep the
// default.
func WithCapacity(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.cache = newLRUCache[string, *Record](n)
		}
	}
}

// WithLogger sets the logger used for load failures.
func WithLogger(logger *logging.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store over the given fact source.
//
// Inputs:
//   - source: The fact source. Must not be nil.
//   - opts: Optional capacity and logger overrides.
//
// Outputs:
//   - *Store: The store. Never nil.
func NewStore(source Source, opts ...StoreOption) *Store {
	s := &Store{
		source: source,
		cache:  newLRUCache[string, *Record](DefaultCapacity),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the record for the given source file path, consulting
// the cache first.
//
// Outputs:
//   - *Record: The record. Callers must treat it as immutable.
//   - error: ErrRecordNotFound when no usable facts exist for the path
//     (including the malformed case); other errors for I/O failures.
func (s *Store) Load(ctx context.Context, filePath string) (*Record, error) {
	if rec, ok := s.cache.get(filePath); ok {
		recordHit(ctx)
		return rec, nil
	}
	recordMiss(ctx)

	before := s.cache.evictionCount()
	start := time.Now()
	rec, err := s.source.Load(filePath)
	recordLoad(ctx, time.Since(start), err == nil)
	if err != nil {
		if errors.Is(err, ErrMalformedRecord) {
			s.logger.Warn("skipping malformed record",
				"file", filePath, "error", err)
			recordMalformedSkip(ctx)
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, filePath)
		}
		return nil, err
	}

	s.cache.set(filePath, rec)
	recordEviction(ctx, s.cache.evictionCount()-before)
	return rec, nil
}

// Contains reports whether the record is currently cached, without
// touching recency or counters.
func (s *Store) Contains(filePath string) bool {
	return s.cache.contains(filePath)
}

// Stats returns a snapshot of cache counters. HitRate is 0 when no
// lookups have happened yet.
func (s *Store) Stats() StoreStats {
	hits, misses := s.cache.stats()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return StoreStats{
		Hits:      hits,
		Misses:    misses,
		HitRate:   rate,
		Size:      s.cache.len(),
		Capacity:  s.cache.capacity,
		Evictions: s.cache.evictionCount(),
	}
}

// Clear empties the cache and resets all counters.
func (s *Store) Clear() {
	s.cache.purge()
}

// Source exposes the underlying fact source for corpus-wide walks
// (index and graph builds read every record exactly once and should
// not churn the cache).
func (s *Store) Source() Source {
	return s.source
}
