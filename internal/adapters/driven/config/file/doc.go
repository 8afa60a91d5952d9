// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML settings in ~/.folio/config.toml
//   - PromptStore: editable prompt templates in ~/.folio/prompts, reloaded on change
package file
