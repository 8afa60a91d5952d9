// Package httpapi serves the open document to a browser viewer over HTTP.
//
// It is a driving adapter: every handler calls a driving port and maps
// domain errors to status codes. Routes live under /api; GET /health is
// the liveness check.
package httpapi
