// Package mcp provides an MCP (Model Context Protocol) server adapter for Lexis.
// It lets AI assistants ask questions against the legal corpora and
// uploaded documents.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
