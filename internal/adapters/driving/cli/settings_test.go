package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexis/internal/core/services"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func useSettings(t *testing.T) *services.SettingsService {
	t.Helper()
	svc := services.NewSettingsService(memory.NewConfigStore(), nil)
	old := settingsService
	settingsService = svc
	t.Cleanup(func() { settingsService = old })
	return svc
}

func TestSettingsShow(t *testing.T) {
	useSettings(t)

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "all-minilm")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "[Cloud OCR]")
	assert.Contains(t, out, "Address: :8000")
	assert.Contains(t, out, "lexis settings llm")
}

func TestSettingsShow_NotConfigured(t *testing.T) {
	old := settingsService
	settingsService = nil
	defer func() { settingsService = old }()

	_, err := execute(t, "settings")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestConfigureOCR(t *testing.T) {
	svc := useSettings(t)
	current, err := svc.Get()
	require.NoError(t, err)

	input := strings.Join([]string{"y", "hin", "/opt/tesseract", "", "yes", "AIzaTestKey123456"}, "\n") + "\n"
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err = configureOCR(rootCmd, bufio.NewReader(strings.NewReader(input)), current.OCR, current.CloudOCR)
	require.NoError(t, err)

	updated, err := svc.Get()
	require.NoError(t, err)
	assert.True(t, updated.OCR.Enabled)
	assert.Equal(t, "hin", updated.OCR.Language)
	assert.Equal(t, "/opt/tesseract", updated.OCR.TesseractPath)
	assert.Empty(t, updated.OCR.PopplerPath)
	assert.True(t, updated.CloudOCR.Enabled)
	assert.Equal(t, "AIzaTestKey123456", updated.CloudOCR.APIKey)
	assert.Contains(t, buf.String(), "OCR configured: local yes, cloud yes")
}

func TestConfigureOCR_CloudNeedsKey(t *testing.T) {
	svc := useSettings(t)
	current, err := svc.Get()
	require.NoError(t, err)
	rootCmd.SetOut(new(bytes.Buffer))

	err = configureOCR(rootCmd, bufio.NewReader(strings.NewReader("n\ny\n\n")), current.OCR, current.CloudOCR)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestParseYesNo(t *testing.T) {
	assert.True(t, parseYesNo("Y", false))
	assert.True(t, parseYesNo("yes", false))
	assert.False(t, parseYesNo("no", true))
	assert.True(t, parseYesNo("", true))
	assert.False(t, parseYesNo("maybe", false))
}

func TestKeyStatus(t *testing.T) {
	assert.Equal(t, "(not set)", keyStatus(""))
	assert.Equal(t, "sk-1...cdef", keyStatus("sk-1234567890abcdef"))
}
