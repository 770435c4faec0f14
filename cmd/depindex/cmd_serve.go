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
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/depindex/services/depindex/query"
	"github.com/AleutianAI/depindex/services/depindex/telemetry"
)

// shutdownTimeout bounds how long in-flight requests may take after a
// termination signal.
const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var addr string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query operations over HTTP",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := a.loadConfig()
			if err != nil {
				fail(err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := newLogger(cfg)

			svc, cleanup, err := buildService(cfg, logger)
			if err != nil {
				fail(err)
			}
			defer cleanup()

			metricsHandler, telemetryShutdown, err := telemetry.Init(cmd.Context(), telemetry.DefaultConfig())
			if err != nil {
				cleanup()
				fail(err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := telemetryShutdown(ctx); err != nil {
					logger.Warn("telemetry shutdown", "error", err)
				}
			}()

			if debug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			renderer := &query.Renderer{DiagramMaxNodes: cfg.DiagramMaxNodes}
			router := newRouter(svc, renderer, logger, metricsHandler)

			srv := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: router,
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting depindex server", "addr", cfg.Server.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case sig := <-quit:
				logger.Info("shutting down depindex server", "signal", sig.String())
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("shutdown failed", "error", err)
					cleanup()
					os.Exit(CLIExitError)
				}
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					cleanup()
					fail(err)
				}
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable gin debug mode")
	return cmd
}
