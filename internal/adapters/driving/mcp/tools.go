package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// QueryInput is the input schema for tools that take a question only.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the legal question to answer"`
}

// DocumentQueryInput is the input schema for ask_document.
type DocumentQueryInput struct {
	Query string `json:"query" jsonschema:"the question to answer from the document"`
	Path  string `json:"path" jsonschema:"local path of the PDF, DOCX, HTML, Markdown or text file to index"`
}

// ContextQueryInput is the input schema for ask_context.
type ContextQueryInput struct {
	Query  string `json:"query" jsonschema:"the question to answer from the document"`
	FileID string `json:"file_id" jsonschema:"file_id returned by an earlier ask_document or ingest_document call"`
}

// DefendInput is the input schema for defend_case.
type DefendInput struct {
	Description string `json:"description,omitempty" jsonschema:"plain text description of the case"`
	Path        string `json:"path,omitempty" jsonschema:"local path of a case file; used instead of description when set"`
}

// IngestInput is the input schema for ingest_document.
type IngestInput struct {
	Path string `json:"path" jsonschema:"local path of the PDF, DOCX, HTML, Markdown or text file to index"`
}

// AnswerOutput is the output schema for every answering tool.
type AnswerOutput struct {
	Answer string `json:"answer"`
	Source string `json:"source,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

// CorpusOutput describes one corpus.
type CorpusOutput struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Passages  int    `json:"passages"`
	Model     string `json:"model,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ListCorporaInput takes no arguments.
type ListCorporaInput struct{}

// CorporaOutput is the output schema for list_corpora.
type CorporaOutput struct {
	Corpora []CorpusOutput `json:"corpora"`
	Count   int            `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_existing",
		Description: "Answer a legal question from the best matching preloaded legal document",
	}, s.handleAskExisting)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_document",
		Description: "Index a local document (cached by content) and answer a question from it",
	}, s.handleAskDocument)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_context",
		Description: "Answer a question from a document indexed earlier, by file_id",
	}, s.handleAskContext)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "defend_case",
		Description: "Draft a defense strategy from a case file or description",
	}, s.handleDefendCase)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "General legal assistant without document retrieval",
	}, s.handleChat)

	if s.ports.Corpora == nil {
		return
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Index a local document and return its file_id",
	}, s.handleIngest)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_corpora",
		Description: "List preloaded legal documents and cached uploads",
	}, s.handleListCorpora)
}

func (s *Server) handleAskExisting(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Ask.AskExisting(ctx, input.Query)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(answer), nil
}

func (s *Server) handleAskDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentQueryInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	raw, err := s.readDocument(input.Path)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	answer, err := s.ports.Ask.AskUpload(ctx, input.Query, raw)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(answer), nil
}

func (s *Server) handleAskContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ContextQueryInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Ask.AskContext(ctx, input.Query, input.FileID)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(answer), nil
}

func (s *Server) handleDefendCase(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DefendInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	var raw *domain.RawDocument
	if input.Path != "" {
		var err error
		if raw, err = s.readDocument(input.Path); err != nil {
			return nil, AnswerOutput{}, err
		}
	}
	answer, err := s.ports.Ask.DefendCase(ctx, raw, input.Description)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(answer), nil
}

func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Ask.Chat(ctx, input.Query)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(answer), nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, CorpusOutput, error) {
	raw, err := s.readDocument(input.Path)
	if err != nil {
		return nil, CorpusOutput{}, err
	}
	corpus, err := s.ports.Corpora.Ingest(ctx, raw)
	if err != nil {
		return nil, CorpusOutput{}, err
	}
	return nil, toCorpusOutput(corpus), nil
}

func (s *Server) handleListCorpora(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCorporaInput,
) (*mcp.CallToolResult, CorporaOutput, error) {
	corpora, err := s.ports.Corpora.List(ctx)
	if err != nil {
		return nil, CorporaOutput{}, err
	}

	out := CorporaOutput{Corpora: make([]CorpusOutput, len(corpora)), Count: len(corpora)}
	for i, c := range corpora {
		out.Corpora[i] = toCorpusOutput(c)
	}
	return nil, out, nil
}

// readDocument loads a local file for indexing.
func (s *Server) readDocument(path string) (*domain.RawDocument, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}
	content, err := s.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.NewRawDocument(filepath.Base(path), "", content), nil
}

func toAnswerOutput(a domain.Answer) AnswerOutput {
	return AnswerOutput{Answer: a.Text, Source: a.Source, FileID: a.FileID}
}

func toCorpusOutput(c domain.Corpus) CorpusOutput {
	out := CorpusOutput{
		Key:      c.Key,
		Name:     c.Name,
		Kind:     string(c.Kind),
		Passages: c.Passages,
		Model:    c.Model,
	}
	if !c.CreatedAt.IsZero() {
		out.CreatedAt = c.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}
