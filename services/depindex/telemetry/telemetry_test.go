// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_RequiresContext(t *testing.T) {
	var ctx context.Context
	_, _, err := Init(ctx, Config{})
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_InstrumentsReachMetricsHandler(t *testing.T) {
	ctx := context.Background()
	handler, shutdown, err := Init(ctx, Config{
		ServiceName: "depindex-test",
		Registry:    prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	defer shutdown(ctx)

	counter, err := otel.Meter("depindex.test").Int64Counter("telemetry_smoke_total")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "telemetry_smoke",
		"instruments recorded through the global meter must appear in scrapes")
}

func TestInit_ShutdownIsClean(t *testing.T) {
	ctx := context.Background()
	_, shutdown, err := Init(ctx, Config{ServiceName: "depindex-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))
}
