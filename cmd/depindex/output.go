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
	"fmt"
	"os"

	"github.com/AleutianAI/depindex/services/depindex/depgraph"
	"github.com/AleutianAI/depindex/services/depindex/query"
	"github.com/AleutianAI/depindex/services/depindex/record"
	"github.com/AleutianAI/depindex/services/depindex/revindex"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess  = 0 // Operation completed successfully
	CLIExitFindings = 1 // Operation failed with a typed, user-facing error
	CLIExitError    = 2 // Operation failed internally
)

// typedErrors are the failures a user can cause with valid tooling:
// asking about files or paths that do not exist, or features that are
// disabled. Everything else is an internal failure.
var typedErrors = []error{
	record.ErrRecordNotFound,
	record.ErrSourceMissing,
	depgraph.ErrNodeNotFound,
	depgraph.ErrNoPath,
	query.ErrGraphUnavailable,
	query.ErrUnknownFormat,
	revindex.ErrIndexNotLoaded,
}

// exitCodeFor maps an error to the CLI exit code convention.
func exitCodeFor(err error) int {
	if err == nil {
		return CLIExitSuccess
	}
	for _, sentinel := range typedErrors {
		if errors.Is(err, sentinel) {
			return CLIExitFindings
		}
	}
	return CLIExitError
}

// fail prints a one-line diagnostic and exits with the mapped code.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "depindex: %v\n", err)
	os.Exit(exitCodeFor(err))
}
