package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

func newTestServer(t *testing.T, ask *mockAskService, corpora *mockCorpusService) *Server {
	t.Helper()
	ports := &Ports{Ask: ask}
	if corpora != nil {
		ports.Corpora = corpora
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestHandleAskExisting(t *testing.T) {
	ask := &mockAskService{answer: domain.Answer{Text: "Article 21 protects life.", Source: "Constitution of India"}}
	server := newTestServer(t, ask, nil)

	_, out, err := server.handleAskExisting(context.Background(), nil, QueryInput{Query: "right to life?"})
	require.NoError(t, err)

	assert.Equal(t, "existing", ask.lastMethod)
	assert.Equal(t, "right to life?", ask.lastQuery)
	assert.Equal(t, AnswerOutput{Answer: "Article 21 protects life.", Source: "Constitution of India"}, out)
}

func TestHandleAskDocument(t *testing.T) {
	ask := &mockAskService{answer: domain.Answer{Text: "Clause 4.", FileID: "abc"}}
	server := newTestServer(t, ask, nil)
	path := writeDoc(t, "lease.txt", "The tenant shall pay rent monthly.")

	_, out, err := server.handleAskDocument(context.Background(), nil, DocumentQueryInput{Query: "rent?", Path: path})
	require.NoError(t, err)

	require.NotNil(t, ask.lastRaw)
	assert.Equal(t, "lease.txt", ask.lastRaw.Name)
	assert.Equal(t, "text/plain", ask.lastRaw.MIMEType)
	assert.Equal(t, domain.Fingerprint([]byte("The tenant shall pay rent monthly.")), ask.lastRaw.Fingerprint)
	assert.Equal(t, "abc", out.FileID)
}

func TestHandleAskDocument_BadPath(t *testing.T) {
	server := newTestServer(t, &mockAskService{}, nil)

	_, _, err := server.handleAskDocument(context.Background(), nil, DocumentQueryInput{Query: "q"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = server.handleAskDocument(context.Background(), nil, DocumentQueryInput{Query: "q", Path: "/does/not/exist.pdf"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHandleAskContext(t *testing.T) {
	ask := &mockAskService{err: domain.ErrNotFound}
	server := newTestServer(t, ask, nil)

	_, _, err := server.handleAskContext(context.Background(), nil, ContextQueryInput{Query: "q", FileID: "f1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "f1", ask.lastFileID)
}

func TestHandleDefendCase(t *testing.T) {
	t.Run("description", func(t *testing.T) {
		ask := &mockAskService{answer: domain.Answer{Text: "### Overview"}}
		server := newTestServer(t, ask, nil)

		_, out, err := server.handleDefendCase(context.Background(), nil, DefendInput{Description: "accused of theft"})
		require.NoError(t, err)
		assert.Nil(t, ask.lastRaw)
		assert.Equal(t, "accused of theft", ask.lastDescription)
		assert.Equal(t, "### Overview", out.Answer)
	})

	t.Run("file", func(t *testing.T) {
		ask := &mockAskService{}
		server := newTestServer(t, ask, nil)
		path := writeDoc(t, "fir.pdf", "%PDF-1.4")

		_, _, err := server.handleDefendCase(context.Background(), nil, DefendInput{Path: path})
		require.NoError(t, err)
		require.NotNil(t, ask.lastRaw)
		assert.Equal(t, "application/pdf", ask.lastRaw.MIMEType)
	})
}

func TestHandleChat_Error(t *testing.T) {
	ask := &mockAskService{err: domain.ErrLLMUnavailable}
	server := newTestServer(t, ask, nil)

	_, _, err := server.handleChat(context.Background(), nil, QueryInput{Query: "hello"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestHandleIngest(t *testing.T) {
	corpora := &mockCorpusService{}
	server := newTestServer(t, &mockAskService{}, corpora)
	path := writeDoc(t, "act.txt", "Section 1. Short title.")

	_, out, err := server.handleIngest(context.Background(), nil, IngestInput{Path: path})
	require.NoError(t, err)

	fp := domain.Fingerprint([]byte("Section 1. Short title."))
	assert.Equal(t, fp, out.Key)
	assert.Equal(t, "adhoc", out.Kind)
	assert.Equal(t, 3, out.Passages)
	assert.Equal(t, "act.txt", corpora.ingested.Name)
}

func TestHandleListCorpora(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	corpora := &mockCorpusService{corpora: []domain.Corpus{
		{Key: "Indian Penal Code", Name: "Indian Penal Code", Kind: domain.CorpusPredefined, Passages: 120, Model: "all-minilm", CreatedAt: created},
		{Key: "f00d", Name: "f00d", Kind: domain.CorpusAdHoc, Passages: 4},
	}}
	server := newTestServer(t, &mockAskService{}, corpora)

	_, out, err := server.handleListCorpora(context.Background(), nil, ListCorporaInput{})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "predefined", out.Corpora[0].Kind)
	assert.Equal(t, "2025-03-01T12:00:00Z", out.Corpora[0].CreatedAt)
	assert.Empty(t, out.Corpora[1].CreatedAt)

	corpora.err = errors.New("store offline")
	_, _, err = server.handleListCorpora(context.Background(), nil, ListCorporaInput{})
	assert.Error(t, err)
}
