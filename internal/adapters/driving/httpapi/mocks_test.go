package httpapi

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

type fakeAsk struct {
	answer domain.Answer
	err    error

	method      string
	query       string
	fileID      string
	raw         *domain.RawDocument
	description string
}

func (f *fakeAsk) AskExisting(_ context.Context, query string) (domain.Answer, error) {
	f.method, f.query = "existing", query
	return f.answer, f.err
}

func (f *fakeAsk) AskUpload(_ context.Context, query string, raw *domain.RawDocument) (domain.Answer, error) {
	f.method, f.query, f.raw = "upload", query, raw
	return f.answer, f.err
}

func (f *fakeAsk) AskContext(_ context.Context, query, fileID string) (domain.Answer, error) {
	f.method, f.query, f.fileID = "context", query, fileID
	return f.answer, f.err
}

func (f *fakeAsk) DefendCase(_ context.Context, raw *domain.RawDocument, description string) (domain.Answer, error) {
	f.method, f.raw, f.description = "defend", raw, description
	return f.answer, f.err
}

func (f *fakeAsk) Chat(_ context.Context, query string) (domain.Answer, error) {
	f.method, f.query = "chat", query
	return f.answer, f.err
}

type fakeCorpora struct {
	corpora []domain.Corpus
	err     error
}

func (f *fakeCorpora) Preload(_ context.Context, defs []domain.CorpusDefinition) (int, error) {
	return len(defs), f.err
}

func (f *fakeCorpora) Ingest(_ context.Context, raw *domain.RawDocument) (domain.Corpus, error) {
	return domain.Corpus{Key: raw.Fingerprint, Kind: domain.CorpusAdHoc}, f.err
}

func (f *fakeCorpora) Predefined() []domain.Corpus {
	return nil
}

func (f *fakeCorpora) List(_ context.Context) ([]domain.Corpus, error) {
	return f.corpora, f.err
}
