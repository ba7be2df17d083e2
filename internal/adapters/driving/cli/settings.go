package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, OCR and server options.

Settings are stored in ~/.lexis/config.toml. Environment variables and a
.env file in the working directory override them at startup.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index passages.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that writes answers and defense strategies.`,
	RunE:  runSettingsLLM,
}

var settingsOCRCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Configure OCR for scanned documents",
	Long: `Configure local OCR (tesseract and poppler) and the hosted Gemini OCR
fallback used when a PDF has no usable text layer.`,
	RunE: runSettingsOCR,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsOCRCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

	cmd.Println("[OCR]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.OCR.Enabled))
	cmd.Printf("  Language: %s\n", settings.OCR.Language)
	cmd.Printf("  DPI: %d\n", settings.OCR.DPI)
	cmd.Printf("  Tesseract: %s\n", orDefault(settings.OCR.TesseractPath, "(PATH)"))
	cmd.Printf("  Poppler: %s\n", orDefault(settings.OCR.PopplerPath, "(PATH)"))
	cmd.Println()

	cmd.Println("[Cloud OCR]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.CloudOCR.Enabled))
	cmd.Printf("  Model: %s\n", settings.CloudOCR.Model)
	cmd.Printf("  API Key: %s\n", keyStatus(settings.CloudOCR.APIKey))
	cmd.Printf("  Requests per minute: %d\n", settings.CloudOCR.RequestsPerMinute)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Max upload: %d bytes\n", settings.Server.MaxUploadBytes)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Index directory: %s\n", orDefault(settings.Storage.IndexDir, "~/.lexis/indexes"))
	cmd.Printf("  Corpus manifest: %s\n", settings.Storage.CorpusManifest)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'lexis settings embedding' or 'lexis settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orDefault(baseURL, "(default)"))
	}
	if provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", keyStatus(apiKey))
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureLLMProvider(cmd, reader)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsOCR(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return configureOCR(cmd, bufio.NewReader(os.Stdin), current.OCR, current.CloudOCR)
}

func configureOCR(cmd *cobra.Command, reader *bufio.Reader, local domain.OCRSettings, cloud domain.CloudOCRSettings) error {
	cmd.Printf("Enable local OCR with tesseract? [%s]: ", yesNo(local.Enabled))
	local.Enabled = parseYesNo(readLine(reader), local.Enabled)

	if local.Enabled {
		cmd.Printf("OCR language [%s]: ", local.Language)
		if lang := readLine(reader); lang != "" {
			local.Language = lang
		}
		cmd.Printf("Tesseract binary [%s]: ", orDefault(local.TesseractPath, "PATH"))
		if path := readLine(reader); path != "" {
			local.TesseractPath = path
		}
		cmd.Printf("Poppler directory [%s]: ", orDefault(local.PopplerPath, "PATH"))
		if path := readLine(reader); path != "" {
			local.PopplerPath = path
		}
	}

	cmd.Printf("Enable Gemini cloud OCR fallback? [%s]: ", yesNo(cloud.Enabled))
	cloud.Enabled = parseYesNo(readLine(reader), cloud.Enabled)

	if cloud.Enabled && cloud.APIKey == "" {
		cmd.Print("Enter Gemini API key: ")
		cloud.APIKey = readPassword(reader)
		cmd.Println()
		if cloud.APIKey == "" {
			return errors.New("API key is required for cloud OCR")
		}
	}

	if err := settingsService.SetOCR(local, cloud); err != nil {
		return fmt.Errorf("failed to configure OCR: %w", err)
	}

	cmd.Printf("OCR configured: local %s, cloud %s\n", yesNo(local.Enabled), yesNo(cloud.Enabled))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo on a terminal, otherwise from reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func keyStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseYesNo(input string, defaultVal bool) bool {
	switch strings.ToLower(input) {
	case "y", "yes", "true", "1":
		return true
	case "n", "no", "false", "0":
		return false
	default:
		return defaultVal
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
