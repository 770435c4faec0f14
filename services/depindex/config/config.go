// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates depindex configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration loading.
var (
	// ErrInvalidConfig is returned when a loaded config fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// LogConfig controls logging output.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info.
	Level string `yaml:"level"`

	// JSON switches output to JSON format.
	JSON bool `yaml:"json"`
}

// ServerConfig controls the HTTP serving surface.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8085".
	Addr string `yaml:"addr"`
}

// Config is the top-level depindex configuration.
type Config struct {
	// FactsDir is the directory of per-file JSON fact records.
	// Required; a missing directory is fatal at startup.
	FactsDir string `yaml:"facts_dir"`

	// IndexDir is the Badger directory for the persisted reverse index.
	// Empty runs the index in memory only.
	IndexDir string `yaml:"index_dir"`

	// CacheCapacity bounds the record LRU cache. Default: 1000.
	CacheCapacity int `yaml:"cache_capacity"`

	// GraphEnabled gates graph-backed operations. Default: true.
	GraphEnabled bool `yaml:"graph_enabled"`

	// MaxCycles caps cycle enumeration. Default: 1000.
	MaxCycles int `yaml:"max_cycles"`

	// DiagramMaxNodes caps Mermaid diagram size. Default: 50.
	DiagramMaxNodes int `yaml:"diagram_max_nodes"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// DefaultConfig returns the defaults applied before any file values.
func DefaultConfig() Config {
	return Config{
		CacheCapacity:   1000,
		GraphEnabled:    true,
		MaxCycles:       1000,
		DiagramMaxNodes: 50,
		Log:             LogConfig{Level: "info"},
		Server:          ServerConfig{Addr: ":8085"},
	}
}

// Load reads a YAML config file over the defaults and validates the
// result. An empty path returns validated defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges. It does not touch the filesystem; the
// facts directory is verified where the source is constructed.
func (c *Config) Validate() error {
	if c.FactsDir == "" {
		return fmt.Errorf("%w: facts_dir is required", ErrInvalidConfig)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("%w: cache_capacity must be positive", ErrInvalidConfig)
	}
	if c.MaxCycles <= 0 {
		return fmt.Errorf("%w: max_cycles must be positive", ErrInvalidConfig)
	}
	if c.DiagramMaxNodes <= 0 {
		return fmt.Errorf("%w: diagram_max_nodes must be positive", ErrInvalidConfig)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}
