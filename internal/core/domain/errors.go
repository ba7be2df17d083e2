package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extraction strategy handles a MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrExtractionFailed indicates every extraction strategy was exhausted
	// without producing usable text. Retrying needs a different document.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmptyCompletion indicates the language model returned blank output.
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrNoMatchFound indicates no corpus yielded a retrievable passage.
	ErrNoMatchFound = errors.New("no match found")

	// ErrBuildFailed indicates an index build failed. Nothing is cached,
	// so the next call retries the build.
	ErrBuildFailed = errors.New("index build failed")

	// ErrNoCorpora indicates no predefined corpus is loaded. With nothing
	// to search there is no match either, so it wraps ErrNoMatchFound.
	ErrNoCorpora = fmt.Errorf("%w: no corpora loaded", ErrNoMatchFound)
)
