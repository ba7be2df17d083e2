package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
)

type stubValidator struct {
	embedErr error
	llmErr   error
	llmSeen  *domain.LLMSettings
}

func (v *stubValidator) ValidateEmbedding(*domain.EmbeddingSettings) error { return v.embedErr }

func (v *stubValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	v.llmSeen = cfg
	return v.llmErr
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"embedding.provider":      "openai",
		"embedding.model":         "text-embedding-3-large",
		"llm.provider":            "ollama",
		"ocr.enabled":             false,
		"ocr.dpi":                 int64(200),
		"server.addr":             "127.0.0.1:9000",
		"server.max_upload_bytes": 1024,
		"storage.index_dir":       "/var/lib/lexis",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.False(t, settings.OCR.Enabled)
	assert.Equal(t, 200, settings.OCR.DPI)
	assert.Equal(t, "127.0.0.1:9000", settings.Server.Addr)
	assert.Equal(t, int64(1024), settings.Server.MaxUploadBytes)
	assert.Equal(t, "/var/lib/lexis", settings.Storage.IndexDir)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{"embedding.provider": "cohere"})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
}

func TestSettingsService_Get_CloudOCRSharesGeminiKey(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"llm.provider": "gemini",
		"llm.api_key":  "gem-key",
	})
	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)
	assert.Equal(t, "gem-key", settings.CloudOCR.APIKey)
	assert.True(t, settings.CloudOCR.IsConfigured())

	_ = store.Set("cloud_ocr.api_key", "own-key")
	settings, err = NewSettingsService(store, nil).Get()
	require.NoError(t, err)
	assert.Equal(t, "own-key", settings.CloudOCR.APIKey)

	_ = store.Set("cloud_ocr.api_key", "")
	_ = store.Set("llm.provider", "openai")
	settings, err = NewSettingsService(store, nil).Get()
	require.NoError(t, err)
	assert.Empty(t, settings.CloudOCR.APIKey)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.LLM.APIKey = "secret"
	settings.OCR.Language = "hin"
	settings.Server.MaxUploadBytes = 4096
	require.NoError(t, service.Save(&settings))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.LLM.APIKey)
	assert.Equal(t, "hin", loaded.OCR.Language)
	assert.Equal(t, int64(4096), loaded.Server.MaxUploadBytes)
}

func TestSettingsService_Save_EmptyKeysNotWritten(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{"llm.api_key": "kept"})
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "kept", store.GetString("llm.api_key"))
	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.AIProvider
		model    string
		apiKey   string
		wantErr  bool
		want     string
	}{
		{"ollama default model", domain.AIProviderOllama, "", "", false, "all-minilm"},
		{"openai with key", domain.AIProviderOpenAI, "text-embedding-3-large", "sk", false, "text-embedding-3-large"},
		{"openai without key", domain.AIProviderOpenAI, "", "", true, ""},
		{"anthropic has no embeddings", domain.AIProviderAnthropic, "", "k", true, ""},
		{"unknown provider", domain.AIProvider("x"), "", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			err := service.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			settings, _ := service.Get()
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, tt.want, settings.Embedding.Model)
		})
	}
}

func TestSettingsService_SetLLMProvider_BaseURL(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))
	settings, _ := service.Get()
	assert.Equal(t, defaultOllamaURL, settings.LLM.BaseURL)
	assert.Equal(t, "llama3.2", settings.LLM.Model)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderGemini, "gemini-2.5-pro", "key"))
	settings, _ = service.Get()
	assert.Empty(t, settings.LLM.BaseURL)
	assert.Equal(t, "gemini-2.5-pro", settings.LLM.Model)
	assert.Equal(t, "key", settings.LLM.APIKey)

	assert.Error(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", ""))
}

func TestSettingsService_SetOCR(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	err := service.SetOCR(
		domain.OCRSettings{Enabled: true, PopplerPath: "/opt/poppler/bin"},
		domain.CloudOCRSettings{Enabled: false},
	)
	require.NoError(t, err)

	settings, _ := service.Get()
	assert.Equal(t, "/opt/poppler/bin", settings.OCR.PopplerPath)
	assert.Equal(t, "eng", settings.OCR.Language)
	assert.Equal(t, 300, settings.OCR.DPI)
	assert.False(t, settings.CloudOCR.Enabled)
	assert.Equal(t, 15, settings.CloudOCR.RequestsPerMinute)

	assert.Error(t, service.SetOCR(domain.OCRSettings{DPI: -1}, domain.CloudOCRSettings{}))
	assert.Error(t, service.SetOCR(domain.OCRSettings{}, domain.CloudOCRSettings{RequestsPerMinute: -5}))
}

func TestSettingsService_Validate(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.ErrorIs(t, service.Validate(), domain.ErrLLMUnavailable)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderGemini, "", "key"))
	assert.NoError(t, service.Validate())

	store := memory.NewConfigStoreWith(map[string]any{
		"embedding.provider": "openai",
		"llm.provider":       "ollama",
	})
	assert.ErrorIs(t, NewSettingsService(store, nil).Validate(), domain.ErrEmbeddingUnavailable)
}

func TestSettingsService_ValidateConfigs(t *testing.T) {
	assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).ValidateLLMConfig())

	failure := errors.New("connection refused")
	validator := &stubValidator{embedErr: failure}
	service := NewSettingsService(memory.NewConfigStore(), validator)

	assert.ErrorIs(t, service.ValidateEmbeddingConfig(), failure)
	require.NoError(t, service.ValidateLLMConfig())
	require.NotNil(t, validator.llmSeen)
	assert.Equal(t, domain.AIProviderGemini, validator.llmSeen.Provider)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
