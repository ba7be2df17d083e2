package domain

// RetrievalMatch is one passage returned by a query against one corpus.
// Score is a non-negative distance: lower means more similar.
type RetrievalMatch struct {
	Source string
	Text   string
	Score  float64
}

// RetrievalResult is the aggregated context chosen for a query.
type RetrievalResult struct {
	// Source is the label of the winning corpus.
	Source string

	// Context is the winning corpus's passages joined by blank lines.
	Context string

	// Matches are the winning corpus's matches in retrieval order.
	Matches []RetrievalMatch

	// MeanScore is the winning corpus's mean distance.
	MeanScore float64
}

// Answer is a normalised model response and where its context came from.
type Answer struct {
	// Text is the cleaned model output.
	Text string

	// Source is the corpus label the context came from, if any.
	Source string

	// FileID is the fingerprint of an uploaded document, if any.
	FileID string
}
