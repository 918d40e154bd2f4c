// Package mcp provides an MCP (Model Context Protocol) server adapter for Adam.
// It exposes the document tools to MCP clients such as Claude Desktop.
package mcp

import "errors"

// ErrMissingToolDispatcher is returned when the tool dispatcher is not provided.
var ErrMissingToolDispatcher = errors.New("mcp: tool dispatcher is required")
