// Package gemini provides Google Gemini adapters: an LLM service and a
// document transcriber used as the last-resort OCR strategy.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// Default configuration values.
const (
	DefaultBaseURL           = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel             = "gemini-2.5-flash"
	DefaultTranscribeModel   = "gemini-2.0-flash"
	DefaultTimeout           = 180 * time.Second
	DefaultRequestsPerMinute = 15
)

// ErrRateLimited is returned when the API rejects a request for quota.
var ErrRateLimited = errors.New("gemini: rate limited")

// Config holds configuration shared by the Gemini adapters.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: the public v1beta endpoint).
	BaseURL string

	// Model is the model name without the "models/" prefix.
	Model string

	// Timeout is the request timeout (default: 180s).
	Timeout time.Duration

	// RequestsPerMinute throttles outgoing requests (default: 15, negative: unlimited).
	RequestsPerMinute int
}

// client issues generateContent calls for one model.
type client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *RateLimiter
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     float64  `json:"temperature,omitempty"`
	TopP            float64  `json:"topP,omitempty"`
	TopK            int      `json:"topK,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func newClient(cfg Config, defaultModel string) (*client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	return &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   strings.TrimPrefix(cfg.Model, "models/"),
		limiter: NewRateLimiter(cfg.RequestsPerMinute),
	}, nil
}

func (c *client) modelURL(suffix string) string {
	return c.baseURL + "/models/" + url.PathEscape(c.model) + suffix
}

// generate sends one user turn and returns the concatenated text parts of
// the first candidate.
func (c *client) generate(ctx context.Context, parts []part, cfg *generationConfig) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	jsonBody, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL(":generateContent"), bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
		return "", fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(string(body)))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("decode response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("gemini error (%s): %s", genResp.Error.Status, genResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}
	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", genResp.PromptFeedback.BlockReason)
	}
	if len(genResp.Candidates) == 0 {
		return "", domain.ErrEmptyCompletion
	}

	var b strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return b.String(), nil
}

// ping fetches the model description, which checks the key and model name.
func (c *client) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(""), http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
