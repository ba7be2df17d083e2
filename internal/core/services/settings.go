package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyOCREnabled      = "ocr.enabled"
	keyOCRTesseract    = "ocr.tesseract_path"
	keyOCRPoppler      = "ocr.poppler_path"
	keyOCRLanguage     = "ocr.language"
	keyOCRDPI          = "ocr.dpi"
	keyCloudOCREnabled = "cloud_ocr.enabled"
	keyCloudOCRModel   = "cloud_ocr.model"
	keyCloudOCRAPIKey  = "cloud_ocr.api_key"
	keyCloudOCRRate    = "cloud_ocr.requests_per_minute"
	keyServerAddr      = "server.addr"
	keyServerMaxUpload = "server.max_upload_bytes"
	keyStorageIndexDir = "storage.index_dir"
	keyStorageManifest = "storage.corpus_manifest"
	defaultOllamaURL   = "http://localhost:11434"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		OCR: domain.OCRSettings{
			Enabled:       s.getBool(keyOCREnabled, defaults.OCR.Enabled),
			TesseractPath: s.configStore.GetString(keyOCRTesseract),
			PopplerPath:   s.configStore.GetString(keyOCRPoppler),
			Language:      s.getString(keyOCRLanguage, defaults.OCR.Language),
			DPI:           s.getInt(keyOCRDPI, defaults.OCR.DPI),
		},
		CloudOCR: domain.CloudOCRSettings{
			Enabled:           s.getBool(keyCloudOCREnabled, defaults.CloudOCR.Enabled),
			Model:             s.getString(keyCloudOCRModel, defaults.CloudOCR.Model),
			APIKey:            s.configStore.GetString(keyCloudOCRAPIKey),
			RequestsPerMinute: s.getInt(keyCloudOCRRate, defaults.CloudOCR.RequestsPerMinute),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
			MaxUploadBytes: int64(s.getInt(keyServerMaxUpload, int(defaults.Server.MaxUploadBytes))),
		},
		Storage: domain.StorageSettings{
			IndexDir:       s.getString(keyStorageIndexDir, defaults.Storage.IndexDir),
			CorpusManifest: s.getString(keyStorageManifest, defaults.Storage.CorpusManifest),
		},
	}

	// Cloud OCR shares the Gemini key unless it has its own.
	if settings.CloudOCR.APIKey == "" && settings.LLM.Provider == domain.AIProviderGemini {
		settings.CloudOCR.APIKey = settings.LLM.APIKey
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyOCREnabled, settings.OCR.Enabled, false},
		{keyOCRTesseract, settings.OCR.TesseractPath, false},
		{keyOCRPoppler, settings.OCR.PopplerPath, false},
		{keyOCRLanguage, settings.OCR.Language, false},
		{keyOCRDPI, settings.OCR.DPI, false},
		{keyCloudOCREnabled, settings.CloudOCR.Enabled, false},
		{keyCloudOCRModel, settings.CloudOCR.Model, false},
		{keyCloudOCRAPIKey, settings.CloudOCR.APIKey, settings.CloudOCR.APIKey == ""},
		{keyCloudOCRRate, settings.CloudOCR.RequestsPerMinute, false},
		{keyServerAddr, settings.Server.Addr, false},
		{keyServerMaxUpload, int(settings.Server.MaxUploadBytes), false},
		{keyStorageIndexDir, settings.Storage.IndexDir, false},
		{keyStorageManifest, settings.Storage.CorpusManifest, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetOCR configures local and cloud OCR.
func (s *SettingsService) SetOCR(ocr domain.OCRSettings, cloud domain.CloudOCRSettings) error {
	if ocr.DPI < 0 {
		return fmt.Errorf("invalid OCR resolution: %d", ocr.DPI)
	}
	if cloud.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid cloud OCR rate: %d", cloud.RequestsPerMinute)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	defaults := domain.DefaultAppSettings()
	if ocr.Language == "" {
		ocr.Language = defaults.OCR.Language
	}
	if ocr.DPI == 0 {
		ocr.DPI = defaults.OCR.DPI
	}
	if cloud.Model == "" {
		cloud.Model = defaults.CloudOCR.Model
	}
	if cloud.RequestsPerMinute == 0 {
		cloud.RequestsPerMinute = defaults.CloudOCR.RequestsPerMinute
	}
	settings.OCR = ocr
	settings.CloudOCR = cloud

	return s.Save(settings)
}

// Validate checks that the settings can serve requests: embeddings are
// always needed, the LLM only for answering.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a configured URL for local providers and clears it for
// cloud providers, which use their fixed endpoints.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
