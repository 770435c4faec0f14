// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depindex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "facts_dir: /tmp/facts\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/facts", cfg.FactsDir)
	assert.Equal(t, 1000, cfg.CacheCapacity)
	assert.True(t, cfg.GraphEnabled)
	assert.Equal(t, 50, cfg.DiagramMaxNodes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8085", cfg.Server.Addr)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
facts_dir: /data/facts
index_dir: /data/index
cache_capacity: 25
graph_enabled: false
log:
  level: debug
  json: true
server:
  addr: ":9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.CacheCapacity)
	assert.False(t, cfg.GraphEnabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "facts_dir: [broken\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing facts_dir", func(c *Config) { c.FactsDir = "" }},
		{"zero cache capacity", func(c *Config) { c.CacheCapacity = 0 }},
		{"zero max cycles", func(c *Config) { c.MaxCycles = 0 }},
		{"zero diagram nodes", func(c *Config) { c.DiagramMaxNodes = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.FactsDir = "/tmp/facts"
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
