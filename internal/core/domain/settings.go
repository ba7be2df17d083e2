package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings, LLM or cloud OCR.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// OCRSettings configures local optical character recognition.
type OCRSettings struct {
	// Enabled turns the local OCR strategy on.
	Enabled bool

	// TesseractPath is the tesseract binary (default: looked up on PATH).
	TesseractPath string

	// PopplerPath is the directory holding pdftotext and pdftoppm.
	PopplerPath string

	// Language is the tesseract language code.
	Language string

	// DPI is the page rasterisation resolution.
	DPI int
}

// CloudOCRSettings configures the hosted multimodal OCR fallback.
type CloudOCRSettings struct {
	// Enabled turns the cloud OCR strategy on.
	Enabled bool

	// Model is the multimodal model used for transcription.
	Model string

	// APIKey is the Gemini API key.
	APIKey string

	// RequestsPerMinute throttles transcription calls.
	RequestsPerMinute int
}

// IsConfigured returns true if cloud OCR can be used.
func (c CloudOCRSettings) IsConfigured() bool {
	return c.Enabled && c.APIKey != ""
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// MaxUploadBytes bounds multipart uploads.
	MaxUploadBytes int64
}

// StorageSettings configures where indexes and manifests live.
type StorageSettings struct {
	// IndexDir holds one persisted index per corpus.
	IndexDir string

	// CorpusManifest is the YAML file listing predefined corpora.
	CorpusManifest string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// OCR holds local OCR settings.
	OCR OCRSettings

	// CloudOCR holds hosted OCR settings.
	CloudOCR CloudOCRSettings

	// Server holds HTTP API settings.
	Server ServerSettings

	// Storage holds index storage settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings default to a local all-minilm model; the LLM defaults to Gemini
// and stays unconfigured until an API key is supplied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "all-minilm",
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
		},
		OCR: OCRSettings{
			Enabled:  true,
			Language: "eng",
			DPI:      300,
		},
		CloudOCR: CloudOCRSettings{
			Enabled:           true,
			Model:             "gemini-2.0-flash",
			RequestsPerMinute: 15,
		},
		Server: ServerSettings{
			Addr:           ":8000",
			MaxUploadBytes: 32 << 20,
		},
		Storage: StorageSettings{
			IndexDir:       "",
			CorpusManifest: "corpora.yaml",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.5-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
