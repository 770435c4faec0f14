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
	"path/filepath"
	"strings"
)

// Import describes a single import statement found in a source file.
type Import struct {
	// Module is the module name as written in the source.
	Module string `json:"module"`

	// ResolvedModule is the module name after the extractor resolved
	// relative imports and aliases. Empty when resolution failed; use
	// Resolved() to fall back to Module.
	ResolvedModule string `json:"resolved_module"`

	// Alias is the local binding name, when the import used one.
	Alias string `json:"alias,omitempty"`
}

// Resolved returns the resolved module name, falling back to the module
// name as written when the extractor could not resolve it.
func (i Import) Resolved() string {
	if i.ResolvedModule != "" {
		return i.ResolvedModule
	}
	return i.Module
}

// FunctionCall describes a single call expression found in a source file.
type FunctionCall struct {
	// Name is the call target as written, possibly dotted
	// (e.g. "utils.load_config").
	Name string `json:"name"`
}

// Qualifier returns the dotted prefix of the call name, or "" for an
// unqualified call. For "lib.utils.helper" it returns "lib.utils".
func (c FunctionCall) Qualifier() string {
	idx := strings.LastIndex(c.Name, ".")
	if idx <= 0 {
		return ""
	}
	return c.Name[:idx]
}

// Record holds the raw dependency facts for one source file.
//
// Records are produced by the external fact extractor and are read-only
// in this repository. Once cached, a Record is never partially mutated;
// it is replaced wholesale or evicted.
type Record struct {
	// FilePath is the corpus-relative path of the source file.
	FilePath string `json:"file_path"`

	// Imports lists the file's import statements.
	Imports []Import `json:"imports"`

	// FunctionCalls lists call expressions found in the file.
	FunctionCalls []FunctionCall `json:"function_calls"`

	// ConfigFiles lists configuration files the file references.
	ConfigFiles []string `json:"config_files"`

	// FileReads lists paths the file reads at runtime.
	FileReads []string `json:"file_reads"`

	// FileWrites lists paths the file writes at runtime.
	FileWrites []string `json:"file_writes"`
}

// ModuleName returns the normalized module name for a corpus-relative
// file path: the extension is stripped, path separators become dots,
// and a trailing package marker (".__init__") is trimmed.
//
// Examples:
//
//	ModuleName("app.py")           -> "app"
//	ModuleName("lib/utils.py")     -> "lib.utils"
//	ModuleName("lib/__init__.py")  -> "lib"
func ModuleName(filePath string) string {
	p := filepath.ToSlash(filePath)
	if ext := filepath.Ext(p); ext != "" {
		p = p[:len(p)-len(ext)]
	}
	name := strings.ReplaceAll(strings.Trim(p, "/"), "/", ".")
	name = strings.TrimSuffix(name, ".__init__")
	return name
}

// Stem returns the final dotted component of a file's module name.
// For "lib/utils.py" it returns "utils".
func Stem(filePath string) string {
	name := ModuleName(filePath)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
