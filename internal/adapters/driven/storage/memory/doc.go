// Package memory provides in-memory implementations of driven ports.
//
// They back tests and the --ephemeral mode of the CLI, where nothing
// should be written to ~/.folio.
package memory
