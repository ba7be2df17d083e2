// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/lexis/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/lexis/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/lexis/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/lexis/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/lexis/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/lexis/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Transcriber      driven.Transcriber // nil when cloud OCR is off.
	Warnings         []string           // Non-fatal issues; the affected service is nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
	if r.Transcriber != nil {
		_ = r.Transcriber.Close()
	}
}

// Initialise builds every AI service the settings describe. Embeddings are
// required and fail the call; an unreachable LLM or a broken cloud OCR
// setup is reported as a warning so retrieval-only commands still work.
func Initialise(settings *domain.AppSettings) (*InitResult, error) {
	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured. Run 'lexis settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	result := &InitResult{EmbeddingService: embedder}

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case llm == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("LLM provider %q is not configured; answering is disabled", settings.LLM.Provider))
	default:
		result.LLMService = llm
	}

	transcriber, err := CreateTranscriber(settings.CloudOCR)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("cloud OCR disabled: %v", err))
	} else {
		result.Transcriber = transcriber
	}

	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'lexis settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'lexis settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'lexis settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'lexis settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates an embedding service from settings and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc.Ping)
}

// ValidateLLMConfig creates an LLM service from settings and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc.Ping)
}

func ping(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderAnthropic, domain.AIProviderGemini:
		return nil, fmt.Errorf("%s embeddings are not supported, use ollama or openai", settings.Provider)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.NewLLMService(geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateTranscriber creates the Gemini transcriber used by cloud OCR.
// Returns nil when cloud OCR is disabled.
func CreateTranscriber(settings domain.CloudOCRSettings) (driven.Transcriber, error) {
	if !settings.Enabled {
		return nil, nil
	}
	if settings.APIKey == "" {
		return nil, errors.New("no Gemini API key set")
	}
	return geminillm.NewTranscriber(geminillm.Config{
		APIKey:            settings.APIKey,
		Model:             settings.Model,
		RequestsPerMinute: settings.RequestsPerMinute,
	})
}
