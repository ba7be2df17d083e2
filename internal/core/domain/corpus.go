package domain

import "time"

// CorpusKind distinguishes how a corpus came to exist.
type CorpusKind string

const (
	// CorpusPredefined is loaded once at startup and keyed by display name.
	CorpusPredefined CorpusKind = "predefined"

	// CorpusAdHoc is created on demand from an upload and keyed by fingerprint.
	CorpusAdHoc CorpusKind = "adhoc"
)

// IsValid returns true if the kind is recognised.
func (k CorpusKind) IsValid() bool {
	return k == CorpusPredefined || k == CorpusAdHoc
}

// String returns the string representation.
func (k CorpusKind) String() string {
	return string(k)
}

// Corpus describes a named collection of passages embedded into a semantic index.
type Corpus struct {
	// Key is the cache key: the display name for predefined corpora,
	// the fingerprint for ad hoc corpora.
	Key string

	// Name is the human-readable label used as the passages' Source.
	Name string

	// Kind is predefined or ad hoc.
	Kind CorpusKind

	// Passages is the number of passages in the index.
	Passages int

	// Model is the embedding model that produced the vectors.
	Model string

	// Dimensions is the embedding vector size.
	Dimensions int

	// CreatedAt is when the index was built.
	CreatedAt time.Time
}

// CorpusDefinition names a predefined corpus and the file it is built from.
type CorpusDefinition struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// IndexSnapshot is the persisted form of a semantic index.
type IndexSnapshot struct {
	Corpus  Corpus
	Entries []IndexedPassage
}
