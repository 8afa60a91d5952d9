// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ByteSource: Resolves a path or URL to PDF bytes
//   - PDFLoader / PDFDocument: Page text, text runs and outline of a PDF
//   - TextSplitter: Splits text into overlapping chunks
//   - StateStore: Versioned per-document state persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, indexing and chat are disabled.
//   - LLMService: Text completion. Without it, generators, chat and title enhancement are disabled.
//   - PromptStore: Customisable prompt templates. Without it, built-in prompts are used.
//   - Scroller: Scrolls a rendered page into view. Without it, navigation only tracks state.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
