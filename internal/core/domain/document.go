package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// MIME types understood by the extraction chain.
const (
	MIMETypePDF       = "application/pdf"
	MIMETypePlainText = "text/plain"
	MIMETypeMarkdown  = "text/markdown"
	MIMETypeHTML      = "text/html"
	MIMETypeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// RawDocument represents an uploaded document before extraction.
// The bytes live only for the duration of the request that carried them.
type RawDocument struct {
	// Name is the original filename or a display name. It never affects identity.
	Name string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Fingerprint is the content hash (see Fingerprint).
	Fingerprint string
}

// NewRawDocument builds a RawDocument and computes its fingerprint.
// An empty MIME type is inferred from the name, defaulting to PDF.
func NewRawDocument(name, mimeType string, content []byte) *RawDocument {
	if mimeType == "" {
		mimeType = MIMETypeFromName(name)
	}
	return &RawDocument{
		Name:        name,
		MIMEType:    mimeType,
		Content:     content,
		Fingerprint: Fingerprint(content),
	}
}

// Fingerprint returns the hex-encoded SHA-256 digest of content.
// Identical bytes always map to the same fingerprint regardless of
// filename or upload time.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// MIMETypeFromName guesses a supported MIME type from a filename extension.
func MIMETypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return MIMETypePlainText
	case ".md", ".markdown":
		return MIMETypeMarkdown
	case ".html", ".htm":
		return MIMETypeHTML
	case ".docx":
		return MIMETypeDOCX
	default:
		return MIMETypePDF
	}
}

// Passage is a contiguous span of extracted text produced by the chunker.
// Passages are values and must not be modified after creation.
type Passage struct {
	// ID is a deterministic identifier derived from Source, Position and Text.
	ID string

	// Source is the human-readable label of the originating corpus
	// (a predefined corpus name or a document fingerprint).
	Source string

	// Text is the passage content.
	Text string

	// Position is the ordinal position within the source's split.
	Position int
}

// IndexedPassage pairs a passage with its embedding vector.
type IndexedPassage struct {
	Passage   Passage
	Embedding []float32
}
