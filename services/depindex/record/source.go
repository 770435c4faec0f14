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
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Source supplies raw dependency records keyed by corpus-relative file
// path. Implementations must be safe for concurrent reads.
type Source interface {
	// Load returns the record for the given source file path.
	// Returns ErrRecordNotFound when no facts exist for the path and
	// ErrMalformedRecord (wrapped) when facts exist but fail to parse.
	Load(filePath string) (*Record, error)

	// Walk calls fn for every source file path that has a fact record,
	// in unspecified order. fn returning an error stops the walk.
	Walk(fn func(filePath string) error) error
}

// DirSource reads fact records from a directory tree where the facts
// for source file "lib/utils.py" live at "<root>/lib/utils.py.json".
type DirSource struct {
	root string
}

// NewDirSource creates a DirSource rooted at dir.
// Returns ErrSourceMissing when dir does not exist or is not a directory.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceMissing, dir)
	}
	return &DirSource{root: dir}, nil
}

// Load reads and parses <root>/<filePath>.json.
func (s *DirSource) Load(filePath string) (*Record, error) {
	data, err := os.ReadFile(s.factPath(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, filePath)
		}
		return nil, fmt.Errorf("reading facts for %s: %w", filePath, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, filePath, err)
	}

	// The file's position on disk is authoritative; extractors have been
	// seen emitting stale or empty file_path fields.
	rec.FilePath = filePath
	return &rec, nil
}

// Walk visits every *.json fact file under the root and reports the
// corresponding source file path (the .json suffix stripped).
func (s *DirSource) Walk(fn func(filePath string) error) error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		return fn(strings.TrimSuffix(filepath.ToSlash(rel), ".json"))
	})
}

func (s *DirSource) factPath(filePath string) string {
	return filepath.Join(s.root, filepath.FromSlash(filePath)+".json")
}
