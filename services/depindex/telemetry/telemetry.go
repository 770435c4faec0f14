// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry installs the OpenTelemetry providers that back the
// instruments used across the service.
//
// Without Init, otel.Meter and otel.Tracer resolve to the no-op
// globals: counters record nowhere and spans vanish. Init wires a
// metric provider through the Prometheus exporter so /metrics exposes
// the service counters, and a tracer provider so spans carry real
// context.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrNilContext is returned when Init is called without a context.
var ErrNilContext = errors.New("context must not be nil")

// Config controls telemetry behavior.
type Config struct {
	// ServiceName identifies this service in metrics and traces.
	ServiceName string

	// ServiceVersion is the version string for this service.
	ServiceVersion string

	// Registry receives the exported metrics. When nil a private
	// registry is created; either way the returned handler serves it.
	Registry *prometheus.Registry
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "depindex",
		ServiceVersion: "1.0.0",
	}
}

// Init initializes the telemetry stack with the given configuration.
//
// Description:
//
//	Sets up the OpenTelemetry MeterProvider (bridged to Prometheus)
//	and TracerProvider. After Init returns successfully, otel.Meter()
//	and otel.Tracer() instruments created anywhere in the process are
//	live, and the returned handler serves them.
//
// Inputs:
//
//	ctx - Context for initialization. Must not be nil.
//	cfg - Telemetry configuration.
//
// Outputs:
//
//	handler - The /metrics HTTP handler over the configured registry.
//	shutdown - Function to call on application exit. Must be called.
//	error - Non-nil if initialization fails.
//
// Thread Safety: Call once at application startup.
func Init(ctx context.Context, cfg Config) (handler http.Handler, shutdown func(context.Context) error, err error) {
	if ctx == nil {
		return nil, nil, ErrNilContext
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	// No span exporter: spans exist for context propagation and local
	// attributes, not for remote collection.
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	shutdown = func(ctx context.Context) error {
		var errs []error
		if err := meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), shutdown, nil
}
