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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for record store operations.
var meter = otel.Meter("depindex.record")

// Metrics for record store operations.
var (
	recordHits        metric.Int64Counter
	recordMisses      metric.Int64Counter
	recordEvictions   metric.Int64Counter
	recordLoadLatency metric.Float64Histogram
	recordMalformed   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		recordHits, err = meter.Int64Counter(
			"record_cache_hits_total",
			metric.WithDescription("Total number of record cache hits"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		recordMisses, err = meter.Int64Counter(
			"record_cache_misses_total",
			metric.WithDescription("Total number of record cache misses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		recordEvictions, err = meter.Int64Counter(
			"record_cache_evictions_total",
			metric.WithDescription("Total number of record cache evictions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		recordLoadLatency, err = meter.Float64Histogram(
			"record_load_duration_seconds",
			metric.WithDescription("Duration of record loads from the fact source"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		recordMalformed, err = meter.Int64Counter(
			"record_malformed_total",
			metric.WithDescription("Total number of malformed fact records skipped"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordHit records a cache hit metric.
func recordHit(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	recordHits.Add(ctx, 1)
}

// recordMiss records a cache miss metric.
func recordMiss(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	recordMisses.Add(ctx, 1)
}

// recordEviction records cache evictions observed since the last load.
func recordEviction(ctx context.Context, n int64) {
	if err := initMetrics(); err != nil || n <= 0 {
		return
	}
	recordEvictions.Add(ctx, n)
}

// recordLoad records the latency of a source load.
func recordLoad(ctx context.Context, duration time.Duration, ok bool) {
	if err := initMetrics(); err != nil {
		return
	}
	recordLoadLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool("ok", ok)),
	)
}

// recordMalformedSkip records a malformed record being treated as absent.
func recordMalformedSkip(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	recordMalformed.Add(ctx, 1)
}
