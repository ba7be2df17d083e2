package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

const (
	// MinCaseTextLength is the shortest case text worth analysing.
	MinCaseTextLength = 50

	// MaxCaseTextLength caps the case text placed in the prompt.
	MaxCaseTextLength = 4000
)

// ErrCaseTextTooShort is returned when a case file or description is too short.
var ErrCaseTextTooShort = fmt.Errorf("%w: case text is too short or could not be extracted properly", domain.ErrInvalidInput)

// Generation settings per kind of request.
var (
	answerOptions = driven.GenerateOptions{
		MaxTokens:   2048,
		Temperature: 0.2,
		TopP:        0.8,
		TopK:        40,
	}
	defenseOptions = driven.GenerateOptions{
		MaxTokens:   8192,
		Temperature: 0.3,
		TopP:        0.9,
		TopK:        40,
	}
)

// AskService answers questions with retrieval-augmented generation.
type AskService struct {
	corpora    *CorpusService
	aggregator *Aggregator
	extractor  driven.TextExtractor
	llm        driven.LLMService
	prompts    driven.PromptStore
	normaliser driven.ResponseNormaliser
}

// NewAskService creates an ask service. llm may be nil, in which case every
// question fails with domain.ErrLLMUnavailable.
func NewAskService(
	corpora *CorpusService,
	aggregator *Aggregator,
	extractor driven.TextExtractor,
	llm driven.LLMService,
	prompts driven.PromptStore,
	normaliser driven.ResponseNormaliser,
) *AskService {
	return &AskService{
		corpora:    corpora,
		aggregator: aggregator,
		extractor:  extractor,
		llm:        llm,
		prompts:    prompts,
		normaliser: normaliser,
	}
}

// AskExisting answers from the best matching predefined corpus.
func (s *AskService) AskExisting(ctx context.Context, query string) (domain.Answer, error) {
	if err := validateQuery(query); err != nil {
		return domain.Answer{}, err
	}
	logger.Section("Ask existing")

	result, err := s.aggregator.RetrieveBest(ctx, query, s.corpora.PredefinedIndexes())
	if err != nil {
		return domain.Answer{}, err
	}

	text, err := s.generate(ctx, driven.PromptAskExisting, answerOptions, result.Context, query)
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.Answer{Text: text, Source: result.Source}, nil
}

// AskUpload indexes raw, reusing the cached index for identical bytes, and
// answers from its passages.
func (s *AskService) AskUpload(ctx context.Context, query string, raw *domain.RawDocument) (domain.Answer, error) {
	if err := validateQuery(query); err != nil {
		return domain.Answer{}, err
	}
	logger.Section("Ask upload")

	idx, err := s.corpora.IngestIndex(ctx, raw)
	if err != nil {
		return domain.Answer{}, err
	}
	return s.answerFrom(ctx, query, idx, driven.PromptAskUpload)
}

// AskContext answers from a document uploaded earlier.
func (s *AskService) AskContext(ctx context.Context, query, fileID string) (domain.Answer, error) {
	if err := validateQuery(query); err != nil {
		return domain.Answer{}, err
	}
	if strings.TrimSpace(fileID) == "" {
		return domain.Answer{}, fmt.Errorf("%w: file id is required", domain.ErrInvalidInput)
	}
	logger.Section("Ask context")

	idx, err := s.corpora.Lookup(ctx, fileID)
	if err != nil {
		return domain.Answer{}, err
	}
	return s.answerFrom(ctx, query, idx, driven.PromptAskUpload)
}

func (s *AskService) answerFrom(ctx context.Context, query string, idx *SemanticIndex, prompt string) (domain.Answer, error) {
	fileID := idx.Corpus().Key
	result, err := s.aggregator.RetrieveBest(ctx, query, []NamedIndex{{Label: fileID, Index: idx}})
	if err != nil {
		return domain.Answer{}, err
	}

	text, err := s.generate(ctx, prompt, answerOptions, result.Context, query)
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.Answer{Text: text, FileID: fileID}, nil
}

// DefendCase drafts a defense strategy from a case file or description.
func (s *AskService) DefendCase(ctx context.Context, raw *domain.RawDocument, description string) (domain.Answer, error) {
	logger.Section("Defend case")

	var caseText string
	switch {
	case raw != nil:
		result, err := s.extractor.Extract(ctx, raw)
		if err != nil {
			return domain.Answer{}, err
		}
		caseText = result.Text()
	case strings.TrimSpace(description) != "":
		caseText = description
	default:
		return domain.Answer{}, fmt.Errorf("%w: upload a case file or provide a case description", domain.ErrInvalidInput)
	}

	caseText = strings.TrimSpace(caseText)
	if utf8.RuneCountInString(caseText) < MinCaseTextLength {
		return domain.Answer{}, ErrCaseTextTooShort
	}

	text, err := s.generate(ctx, driven.PromptDefendCase, defenseOptions, truncateRunes(caseText, MaxCaseTextLength))
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.Answer{Text: text}, nil
}

// Chat answers without retrieval.
func (s *AskService) Chat(ctx context.Context, query string) (domain.Answer, error) {
	if err := validateQuery(query); err != nil {
		return domain.Answer{}, err
	}
	text, err := s.generate(ctx, driven.PromptChat, answerOptions, query)
	if err != nil {
		return domain.Answer{}, err
	}
	return domain.Answer{Text: text}, nil
}

// generate fills the named prompt with args, calls the LLM and normalises
// the answer. Blank completions are reported as domain.ErrEmptyCompletion.
func (s *AskService) generate(ctx context.Context, prompt string, opts driven.GenerateOptions, args ...any) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	template, err := s.prompts.Load(prompt)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", prompt, err)
	}

	done := logger.Timed("generate %s with %s", prompt, s.llm.ModelName())
	completion, err := s.llm.Generate(ctx, fmt.Sprintf(template, args...), opts)
	done()
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCompletion) {
			return "", err
		}
		return "", fmt.Errorf("generate: %w", err)
	}
	if strings.TrimSpace(completion) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return s.normaliser.Normalise(completion), nil
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	return nil
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
