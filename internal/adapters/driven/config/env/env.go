// Package env overlays environment variables, optionally read from .env
// files, onto application settings.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// Recognised variables.
const (
	GeminiAPIKey    = "GEMINI_API_KEY"
	OpenAIAPIKey    = "OPENAI_API_KEY"
	AnthropicAPIKey = "ANTHROPIC_API_KEY"
	PopplerPath     = "POPPLER_PATH"
	TesseractPath   = "TESSERACT_PATH"

	EmbeddingProvider = "LEXIS_EMBEDDING_PROVIDER"
	EmbeddingModel    = "LEXIS_EMBEDDING_MODEL"
	LLMProvider       = "LEXIS_LLM_PROVIDER"
	LLMModel          = "LEXIS_LLM_MODEL"
	OllamaURL         = "LEXIS_OLLAMA_URL"
	OCRLanguage       = "LEXIS_OCR_LANGUAGE"
	CloudOCR          = "LEXIS_CLOUD_OCR"
	ServerAddr        = "LEXIS_ADDR"
	MaxUploadBytes    = "LEXIS_MAX_UPLOAD_BYTES"
	IndexDir          = "LEXIS_INDEX_DIR"
	CorpusManifest    = "LEXIS_CORPORA"
)

// LoadDotEnv reads each file into the process environment. Variables that
// are already set win, and missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// Apply overlays the process environment onto settings.
func Apply(settings *domain.AppSettings) error {
	return ApplyFrom(settings, os.LookupEnv)
}

// ApplyFrom overlays variables from lookup onto settings. Provider and model
// overrides are applied before API keys so a key always lands on the
// provider that ends up selected.
func ApplyFrom(settings *domain.AppSettings, lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	set := func(dst *string, key string) {
		if v := get(key); v != "" {
			*dst = v
		}
	}

	if v := get(EmbeddingProvider); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	set(&settings.Embedding.Model, EmbeddingModel)
	if v := get(LLMProvider); v != "" {
		settings.LLM.Provider = domain.AIProvider(v)
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	set(&settings.LLM.Model, LLMModel)

	if v := get(OllamaURL); v != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama {
			settings.Embedding.BaseURL = v
		}
		if settings.LLM.Provider == domain.AIProviderOllama {
			settings.LLM.BaseURL = v
		}
	}

	keys := map[domain.AIProvider]string{
		domain.AIProviderGemini:    get(GeminiAPIKey),
		domain.AIProviderOpenAI:    get(OpenAIAPIKey),
		domain.AIProviderAnthropic: get(AnthropicAPIKey),
	}
	if k := keys[settings.Embedding.Provider]; k != "" {
		settings.Embedding.APIKey = k
	}
	if k := keys[settings.LLM.Provider]; k != "" {
		settings.LLM.APIKey = k
	}
	if k := keys[domain.AIProviderGemini]; k != "" {
		settings.CloudOCR.APIKey = k
	}

	set(&settings.OCR.PopplerPath, PopplerPath)
	set(&settings.OCR.TesseractPath, TesseractPath)
	set(&settings.OCR.Language, OCRLanguage)
	if v := get(CloudOCR); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", domain.ErrInvalidInput, CloudOCR, v)
		}
		settings.CloudOCR.Enabled = enabled
	}

	set(&settings.Server.Addr, ServerAddr)
	if v := get(MaxUploadBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s=%q is not a positive integer", domain.ErrInvalidInput, MaxUploadBytes, v)
		}
		settings.Server.MaxUploadBytes = n
	}
	set(&settings.Storage.IndexDir, IndexDir)
	set(&settings.Storage.CorpusManifest, CorpusManifest)

	return nil
}
