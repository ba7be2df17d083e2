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
//   - Normaliser: One text extraction strategy (pdftotext, parser, OCR, cloud OCR)
//   - TextExtractor: The ordered fallback chain over normalisers
//   - Chunker: Splits extracted text into passages
//   - EmbeddingService: Generates vector embeddings for passages and queries
//   - VectorIndex: Nearest-neighbour search over embeddings
//   - IndexStore: Persisted tier of the index cache
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, ask endpoints return ErrLLMUnavailable.
//   - Transcriber: Without it, the cloud OCR strategy is skipped.
//   - FileWatcher: Only used when an inbox directory is watched.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
