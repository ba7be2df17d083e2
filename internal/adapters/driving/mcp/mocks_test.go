package mcp

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// mockAskService records the last call and returns a canned answer.
type mockAskService struct {
	answer domain.Answer
	err    error

	lastMethod      string
	lastQuery       string
	lastFileID      string
	lastRaw         *domain.RawDocument
	lastDescription string
}

func (m *mockAskService) AskExisting(_ context.Context, query string) (domain.Answer, error) {
	m.lastMethod, m.lastQuery = "existing", query
	return m.answer, m.err
}

func (m *mockAskService) AskUpload(_ context.Context, query string, raw *domain.RawDocument) (domain.Answer, error) {
	m.lastMethod, m.lastQuery, m.lastRaw = "upload", query, raw
	return m.answer, m.err
}

func (m *mockAskService) AskContext(_ context.Context, query, fileID string) (domain.Answer, error) {
	m.lastMethod, m.lastQuery, m.lastFileID = "context", query, fileID
	return m.answer, m.err
}

func (m *mockAskService) DefendCase(_ context.Context, raw *domain.RawDocument, description string) (domain.Answer, error) {
	m.lastMethod, m.lastRaw, m.lastDescription = "defend", raw, description
	return m.answer, m.err
}

func (m *mockAskService) Chat(_ context.Context, query string) (domain.Answer, error) {
	m.lastMethod, m.lastQuery = "chat", query
	return m.answer, m.err
}

// mockCorpusService serves a fixed corpus list.
type mockCorpusService struct {
	corpora  []domain.Corpus
	ingested *domain.RawDocument
	err      error
}

func (m *mockCorpusService) Preload(_ context.Context, defs []domain.CorpusDefinition) (int, error) {
	return len(defs), m.err
}

func (m *mockCorpusService) Ingest(_ context.Context, raw *domain.RawDocument) (domain.Corpus, error) {
	m.ingested = raw
	if m.err != nil {
		return domain.Corpus{}, m.err
	}
	return domain.Corpus{Key: raw.Fingerprint, Name: raw.Fingerprint, Kind: domain.CorpusAdHoc, Passages: 3}, nil
}

func (m *mockCorpusService) Predefined() []domain.Corpus {
	var out []domain.Corpus
	for _, c := range m.corpora {
		if c.Kind == domain.CorpusPredefined {
			out = append(out, c)
		}
	}
	return out
}

func (m *mockCorpusService) List(_ context.Context) ([]domain.Corpus, error) {
	return m.corpora, m.err
}
