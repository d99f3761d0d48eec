// Package mcp provides an MCP (Model Context Protocol) server adapter
// for Lectern. It lets AI assistants query the indexed collection and
// feed new documents into it.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("mcp: ingest service is required")
