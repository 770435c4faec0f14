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
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/depindex/pkg/logging"
	"github.com/AleutianAI/depindex/services/depindex/depgraph"
	"github.com/AleutianAI/depindex/services/depindex/query"
	"github.com/AleutianAI/depindex/services/depindex/record"
)

// server holds the HTTP layer's dependencies.
type server struct {
	svc      *query.Service
	renderer *query.Renderer
	logger   *logging.Logger
}

// newRouter builds the gin engine with all depindex routes. metrics is
// the /metrics handler from telemetry.Init; nil falls back to the
// default Prometheus handler (runtime metrics only).
func newRouter(svc *query.Service, renderer *query.Renderer, logger *logging.Logger, metrics http.Handler) *gin.Engine {
	s := &server{svc: svc, renderer: renderer, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestID())

	if metrics == nil {
		metrics = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metrics))

	v1 := router.Group("/v1/depindex")
	v1.GET("/health", s.handleHealth)
	v1.GET("/direct/*file", s.handleDirect)
	v1.GET("/reverse/*file", s.handleReverse)
	v1.GET("/transitive/*file", s.handleTransitive)
	v1.GET("/cycles", s.handleCycles)
	v1.GET("/path", s.handlePath)
	v1.GET("/stats", s.handleStats)
	v1.GET("/cache", s.handleCacheStats)
	v1.POST("/cache/clear", s.handleCacheClear)
	v1.POST("/rebuild", s.handleRebuild)

	return router
}

// requestID tags every request with a UUID for log correlation.
func (s *server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"index_state": s.svc.IndexState().String(),
	})
}

func (s *server) handleDirect(c *gin.Context) {
	res, err := s.svc.DirectDependencies(c.Request.Context(), fileParam(c))
	s.respond(c, res, err)
}

func (s *server) handleReverse(c *gin.Context) {
	res, err := s.svc.ReverseDependencies(c.Request.Context(), fileParam(c))
	s.respond(c, res, err)
}

func (s *server) handleTransitive(c *gin.Context) {
	depth := 3
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "depth must be a non-negative integer"})
			return
		}
		depth = parsed
	}
	res, err := s.svc.TransitiveDependencies(c.Request.Context(), fileParam(c), depth)
	s.respond(c, res, err)
}

func (s *server) handleCycles(c *gin.Context) {
	res, err := s.svc.Cycles(c.Request.Context())
	s.respond(c, res, err)
}

func (s *server) handlePath(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return
	}
	res, err := s.svc.ShortestPath(c.Request.Context(), from, to)
	s.respond(c, res, err)
}

func (s *server) handleStats(c *gin.Context) {
	res, err := s.svc.GraphStats(c.Request.Context())
	s.respond(c, res, err)
}

func (s *server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.CacheStats())
}

func (s *server) handleCacheClear(c *gin.Context) {
	s.svc.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *server) handleRebuild(c *gin.Context) {
	if err := s.svc.RebuildIndex(c.Request.Context()); err != nil {
		s.respond(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "rebuilt",
		"index_state": s.svc.IndexState().String(),
	})
}

// respond renders a result in the requested format, or maps the error
// to a status code.
func (s *server) respond(c *gin.Context, result query.Renderable, err error) {
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	formatName := c.DefaultQuery("format", string(query.FormatStructured))
	format, perr := query.ParseFormat(formatName)
	if perr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
		return
	}

	if format == query.FormatStructured {
		c.JSON(http.StatusOK, result)
		return
	}
	out, rerr := s.renderer.Render(result, format)
	if rerr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": rerr.Error()})
		return
	}
	c.String(http.StatusOK, out)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, record.ErrRecordNotFound),
		errors.Is(err, depgraph.ErrNodeNotFound),
		errors.Is(err, depgraph.ErrNoPath):
		return http.StatusNotFound
	case errors.Is(err, query.ErrGraphUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fileParam strips the leading slash gin keeps on wildcard captures.
func fileParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("file"), "/")
}
