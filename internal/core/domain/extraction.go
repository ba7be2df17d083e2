package domain

import "strings"

// ExtractionStatus is the outcome of a single extraction strategy attempt.
type ExtractionStatus int

const (
	// ExtractionUsable means the strategy produced non-blank text.
	ExtractionUsable ExtractionStatus = iota

	// ExtractionEmpty means the strategy ran but found no text.
	ExtractionEmpty

	// ExtractionFailed means the strategy errored, timed out or panicked.
	ExtractionFailed
)

// String returns the string representation.
func (s ExtractionStatus) String() string {
	switch s {
	case ExtractionUsable:
		return "usable"
	case ExtractionEmpty:
		return "empty"
	case ExtractionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsUsableText reports whether text contains anything besides whitespace.
func IsUsableText(text string) bool {
	return strings.TrimSpace(text) != ""
}

// ExtractionAttempt records what one strategy did.
type ExtractionAttempt struct {
	Strategy string
	Status   ExtractionStatus
	Err      error
}

// ExtractionResult is the output of the extraction chain.
type ExtractionResult struct {
	// Pages holds the extracted text, one entry per page when the
	// strategy can tell pages apart, otherwise a single entry.
	Pages []string

	// Strategy is the name of the strategy that produced the text.
	Strategy string

	// Attempts lists every strategy tried, in order.
	Attempts []ExtractionAttempt
}

// Text returns all pages joined by newlines.
func (r ExtractionResult) Text() string {
	return strings.Join(r.Pages, "\n")
}
