// Package domain defines the core business entities for Lexis.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Uploaded bytes plus their content fingerprint
//   - Passage: A bounded span of extracted text, the unit of retrieval
//   - Corpus: A named collection of indexed passages
//   - IndexSnapshot: The persisted form of a semantic index
//   - RetrievalMatch: One scored passage returned by a query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
