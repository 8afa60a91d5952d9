// Package mcp provides an MCP (Model Context Protocol) server adapter for folio.
// It lets AI assistants ask questions about, search and outline the open document.
package mcp

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")

// errChatUnavailable is returned by the ask tool when no chat service is wired.
var errChatUnavailable = errors.New("mcp: chat is not available")

// errSearchUnavailable is returned by the search tool when no embedding store is wired.
var errSearchUnavailable = errors.New("mcp: semantic search is not available")
